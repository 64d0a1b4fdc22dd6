package models

import "time"

// Chapter is the normalized shape of a catalog chapter entry.
type Chapter struct {
	ID          string    `json:"id"`
	MangaID     string    `json:"manga_id,omitempty"`
	Title       string    `json:"title"`
	Volume      string    `json:"volume,omitempty"`
	Chapter     string    `json:"chapter,omitempty"`
	Language    string    `json:"language"`
	Pages       int       `json:"pages"`
	PublishedAt time.Time `json:"published_at,omitzero"`
	Group       Ref       `json:"group"`
}

// ChapterFeed is a paginated chapter listing for one manga.
type ChapterFeed struct {
	Items  []Chapter `json:"items"`
	Total  int       `json:"total"`
	Limit  int       `json:"limit"`
	Offset int       `json:"offset"`
}

// Author is the normalized shape of an author/artist detail entry.
type Author struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Biography string `json:"biography,omitempty"`
}

// Group is the normalized shape of a scanlation group entry.
type Group struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Website     string `json:"website,omitempty"`
}
