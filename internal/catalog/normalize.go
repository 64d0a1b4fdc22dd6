package catalog

import (
	"fmt"
	"sort"
	"time"

	"mangaproxy/pkg/models"
)

// Sentinels for data the upstream simply does not have.
const (
	unknownName   = "Unknown"
	untitledTitle = "Untitled"
)

const coversBase = "https://uploads.mangadex.org/covers"

// Display-text tables for the closed enum sets. Unknown values resolve
// to the sentinel, never to an error.
var statusText = map[string]string{
	"ongoing":   "Ongoing",
	"completed": "Completed",
	"hiatus":    "On Hiatus",
	"cancelled": "Cancelled",
}

var contentRatingText = map[string]string{
	"safe":         "Safe",
	"suggestive":   "Suggestive",
	"erotica":      "Erotica",
	"pornographic": "Explicit",
}

// pickLocalized resolves a localized string map to one display string:
// requested locale, then English, then the first available value by
// sorted locale key (so the fallback is deterministic). Empty map
// resolves to "".
func pickLocalized(m map[string]string, locale string) string {
	if len(m) == 0 {
		return ""
	}
	if v := m[locale]; v != "" {
		return v
	}
	if v := m["en"]; v != "" {
		return v
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if m[k] != "" {
			return m[k]
		}
	}
	return ""
}

func displayStatus(s string) string {
	if t, ok := statusText[s]; ok {
		return t
	}
	return unknownName
}

func displayContentRating(s string) string {
	if t, ok := contentRatingText[s]; ok {
		return t
	}
	return unknownName
}

// relRef finds the first relationship of the given type and returns it
// as a resolved reference. Absence degrades to an explicit Unknown ref.
func relRef(rels []rawRelationship, relType string) models.Ref {
	for _, rel := range rels {
		if rel.Type == relType {
			name := rel.Attributes.Name
			if name == "" {
				name = unknownName
			}
			return models.Ref{ID: rel.ID, Name: name}
		}
	}
	return models.Ref{Name: unknownName}
}

func normalizeManga(e rawEntity, locale string) models.Manga {
	title := pickLocalized(e.Attributes.localizedTitle(), locale)
	if title == "" {
		title = untitledTitle
	}

	altTitles := make([]string, 0, len(e.Attributes.AltTitles))
	for _, m := range e.Attributes.AltTitles {
		if at := pickLocalized(m, locale); at != "" && at != title {
			altTitles = appendIfMissing(altTitles, at)
		}
	}

	tags := make([]models.Tag, 0, len(e.Attributes.Tags))
	for _, t := range e.Attributes.Tags {
		tags = append(tags, normalizeTag(t, locale))
	}

	coverURL := ""
	for _, rel := range e.Relationships {
		if rel.Type == "cover_art" && rel.Attributes.FileName != "" {
			coverURL = fmt.Sprintf("%s/%s/%s", coversBase, e.ID, rel.Attributes.FileName)
			break
		}
	}

	return models.Manga{
		ID:                e.ID,
		Title:             title,
		AltTitles:         altTitles,
		Description:       pickLocalized(e.Attributes.localizedDescription(), locale),
		Status:            e.Attributes.Status,
		StatusText:        displayStatus(e.Attributes.Status),
		ContentRating:     e.Attributes.ContentRating,
		ContentRatingText: displayContentRating(e.Attributes.ContentRating),
		Year:              e.Attributes.Year,
		OriginalLanguage:  e.Attributes.OriginalLanguage,
		Tags:              tags,
		Author:            relRef(e.Relationships, "author"),
		Artist:            relRef(e.Relationships, "artist"),
		CoverURL:          coverURL,
	}
}

func normalizeMangaList(c *rawCollection, locale string) models.MangaList {
	items := make([]models.Manga, 0, len(c.Data))
	for _, e := range c.Data {
		items = append(items, normalizeManga(e, locale))
	}
	return models.MangaList{Items: items, Total: c.Total, Limit: c.Limit, Offset: c.Offset}
}

func normalizeChapter(e rawEntity) models.Chapter {
	var published time.Time
	if e.Attributes.PublishAt != "" {
		// tolerate a missing or malformed timestamp; zero means unknown
		published, _ = time.Parse(time.RFC3339, e.Attributes.PublishAt)
	}

	mangaID := ""
	for _, rel := range e.Relationships {
		if rel.Type == "manga" {
			mangaID = rel.ID
			break
		}
	}

	return models.Chapter{
		ID:          e.ID,
		MangaID:     mangaID,
		Title:       e.Attributes.plainTitle(),
		Volume:      e.Attributes.Volume,
		Chapter:     e.Attributes.Chapter,
		Language:    e.Attributes.TranslatedLanguage,
		Pages:       e.Attributes.Pages,
		PublishedAt: published,
		Group:       relRef(e.Relationships, "scanlation_group"),
	}
}

func normalizeFeed(c *rawCollection) models.ChapterFeed {
	items := make([]models.Chapter, 0, len(c.Data))
	for _, e := range c.Data {
		items = append(items, normalizeChapter(e))
	}
	return models.ChapterFeed{Items: items, Total: c.Total, Limit: c.Limit, Offset: c.Offset}
}

func normalizeTag(e rawEntity, locale string) models.Tag {
	name := pickLocalized(e.Attributes.localizedName(), locale)
	if name == "" {
		name = unknownName
	}
	return models.Tag{ID: e.ID, Name: name, Group: e.Attributes.Group}
}

func normalizeTags(c *rawCollection, locale string) []models.Tag {
	tags := make([]models.Tag, 0, len(c.Data))
	for _, e := range c.Data {
		tags = append(tags, normalizeTag(e, locale))
	}
	return tags
}

func normalizeAuthor(e rawEntity, locale string) models.Author {
	name := e.Attributes.plainName()
	if name == "" {
		name = unknownName
	}
	return models.Author{
		ID:        e.ID,
		Name:      name,
		Biography: pickLocalized(e.Attributes.Biography, locale),
	}
}

func normalizeGroup(e rawEntity) models.Group {
	name := e.Attributes.plainName()
	if name == "" {
		name = unknownName
	}
	return models.Group{
		ID:          e.ID,
		Name:        name,
		Description: e.Attributes.plainDescription(),
		Website:     e.Attributes.Website,
	}
}

func appendIfMissing(slice []string, v string) []string {
	for _, x := range slice {
		if x == v {
			return slice
		}
	}
	return append(slice, v)
}
