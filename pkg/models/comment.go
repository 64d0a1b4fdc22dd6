package models

import "time"

// Comment is a user comment on a manga.
type Comment struct {
	ID        string    `json:"id"`
	MangaID   string    `json:"manga_id"`
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// Preferences are per-user reader settings. Locale drives the catalog
// normalizer's requested display language; MaxContentRating caps what the
// catalog search shows by default.
type Preferences struct {
	UserID           string    `json:"-"`
	Locale           string    `json:"locale"`
	MaxContentRating string    `json:"max_content_rating"`
	UpdatedAt        time.Time `json:"updated_at"`
}
