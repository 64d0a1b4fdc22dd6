package models

// Manga is the application-facing shape of a catalog entry. Upstream
// responses are normalized into this structure before anything else in
// the app (or the browser client) sees them: localized title maps are
// resolved to a single display string, the flat relationship list is
// projected into named fields, and enum values carry a display text.
type Manga struct {
	ID                string   `json:"id"`
	Title             string   `json:"title"`
	AltTitles         []string `json:"alt_titles,omitempty"`
	Description       string   `json:"description,omitempty"`
	Status            string   `json:"status"`
	StatusText        string   `json:"status_text"`
	ContentRating     string   `json:"content_rating"`
	ContentRatingText string   `json:"content_rating_text"`
	Year              int      `json:"year,omitempty"`
	OriginalLanguage  string   `json:"original_language,omitempty"`
	Tags              []Tag    `json:"tags"`
	Author            Ref      `json:"author"`
	Artist            Ref      `json:"artist"`
	CoverURL          string   `json:"cover_url,omitempty"`
}

// Ref is a resolved relationship reference (author, artist, group).
// A missing relationship is an explicit "Unknown" ref, never a nil.
type Ref struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
}

// Tag is a catalog taxonomy entry (genre, theme, format...).
type Tag struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Group string `json:"group,omitempty"`
}

// MangaList is a paginated list of manga as returned by the
// search/list endpoint.
type MangaList struct {
	Items  []Manga `json:"items"`
	Total  int     `json:"total"`
	Limit  int     `json:"limit"`
	Offset int     `json:"offset"`
}
