package catalog

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Upstream wire shapes. Every payload crossing the trust boundary is
// decoded into these structs and validated before the normalizer sees
// it; raw JSON never travels further than this file.

type rawCollection struct {
	Result string      `json:"result" validate:"required,eq=ok"`
	Data   []rawEntity `json:"data" validate:"dive"` // empty result pages are valid
	Limit  int         `json:"limit" validate:"gte=0"`
	Offset int         `json:"offset" validate:"gte=0"`
	Total  int         `json:"total" validate:"gte=0"`
}

type rawSingle struct {
	Result string    `json:"result" validate:"required,eq=ok"`
	Data   rawEntity `json:"data" validate:"required"`
}

type rawEntity struct {
	ID            string            `json:"id" validate:"required"`
	Type          string            `json:"type" validate:"required"`
	Attributes    rawAttributes     `json:"attributes"`
	Relationships []rawRelationship `json:"relationships" validate:"dive"`
}

// rawAttributes is the union of attribute fields across entity types
// (manga, chapter, tag, author, scanlation_group); absent fields stay
// zero. Closed sets are validated here so a drifting upstream enum is
// caught at the boundary instead of deep in the app.
type rawAttributes struct {
	// manga (title is a locale map; for chapters the same slot is a string)
	Title            json.RawMessage     `json:"title"`
	AltTitles        []map[string]string `json:"altTitles"`
	Description      json.RawMessage     `json:"description"` // map for manga, string for group
	Status           string              `json:"status" validate:"omitempty,oneof=ongoing completed hiatus cancelled"`
	Year             int                 `json:"year"`
	ContentRating    string              `json:"contentRating" validate:"omitempty,oneof=safe suggestive erotica pornographic"`
	OriginalLanguage string              `json:"originalLanguage"`
	Tags             []rawEntity         `json:"tags" validate:"dive"`

	// chapter
	Volume             string `json:"volume"`
	Chapter            string `json:"chapter"`
	TranslatedLanguage string `json:"translatedLanguage"`
	Pages              int    `json:"pages" validate:"gte=0"`
	PublishAt          string `json:"publishAt"`

	// tag / author / group
	Name      json.RawMessage   `json:"name"` // map for tags, string for author/group
	Group     string            `json:"group"`
	Biography map[string]string `json:"biography"`
	Website   string            `json:"website"`
}

type rawRelationship struct {
	ID         string        `json:"id" validate:"required"`
	Type       string        `json:"type" validate:"required"`
	Attributes relAttributes `json:"attributes"`
}

// relAttributes carries the expanded attributes of reference-expanded
// relationships (includes[]=author,artist,cover_art,scanlation_group).
type relAttributes struct {
	Name     string `json:"name"`
	FileName string `json:"fileName"`
}

// Validator checks decoded upstream payloads against the declarative
// schema above. Pure: no side effects, same input same verdict.
type Validator struct {
	v *validator.Validate
}

func NewValidator() *Validator {
	return &Validator{v: validator.New(validator.WithRequiredStructEnabled())}
}

// Collection decodes and validates a paginated upstream response.
func (s *Validator) Collection(raw []byte) (*rawCollection, error) {
	var c rawCollection
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, &ValidationError{Fields: []FieldError{{Field: "$", Reason: "malformed JSON: " + err.Error()}}}
	}
	if err := s.check(&c); err != nil {
		return nil, err
	}
	return &c, nil
}

// Single decodes and validates a single-entity upstream response.
func (s *Validator) Single(raw []byte) (*rawSingle, error) {
	var e rawSingle
	if err := json.Unmarshal(raw, &e); err != nil {
		return nil, &ValidationError{Fields: []FieldError{{Field: "$", Reason: "malformed JSON: " + err.Error()}}}
	}
	if err := s.check(&e); err != nil {
		return nil, err
	}
	return &e, nil
}

// check runs the validator and folds every failed field into one
// ValidationError, so the log shows the whole contract violation at
// once instead of the first offender.
func (s *Validator) check(v any) error {
	err := s.v.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &ValidationError{Fields: []FieldError{{Field: "$", Reason: err.Error()}}}
	}

	fields := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		reason := fmt.Sprintf("failed %q", fe.Tag())
		if fe.Param() != "" {
			reason = fmt.Sprintf("failed %q (want %s)", fe.Tag(), fe.Param())
		}
		fields = append(fields, FieldError{Field: fe.Namespace(), Reason: reason})
	}
	return &ValidationError{Fields: fields}
}

// localizedTitle returns the manga-style localized title map.
func (a rawAttributes) localizedTitle() map[string]string {
	var m map[string]string
	if len(a.Title) > 0 && json.Unmarshal(a.Title, &m) == nil {
		return m
	}
	return nil
}

// plainTitle returns the string form of the title field (chapter).
func (a rawAttributes) plainTitle() string {
	var s string
	if len(a.Title) > 0 && json.Unmarshal(a.Title, &s) == nil {
		return s
	}
	return ""
}

// localizedName returns the tag-style localized name map, which shares
// a JSON slot with the plain string names of authors and groups.
func (a rawAttributes) localizedName() map[string]string {
	var m map[string]string
	if len(a.Name) > 0 && json.Unmarshal(a.Name, &m) == nil {
		return m
	}
	return nil
}

// plainName returns the string form of the name field (author, group).
func (a rawAttributes) plainName() string {
	var s string
	if len(a.Name) > 0 && json.Unmarshal(a.Name, &s) == nil {
		return s
	}
	return ""
}

// localizedDescription returns the manga-style description map.
func (a rawAttributes) localizedDescription() map[string]string {
	var m map[string]string
	if len(a.Description) > 0 && json.Unmarshal(a.Description, &m) == nil {
		return m
	}
	return nil
}

// plainDescription returns the string form of the description (group).
func (a rawAttributes) plainDescription() string {
	var s string
	if len(a.Description) > 0 && json.Unmarshal(a.Description, &s) == nil {
		return s
	}
	return ""
}
