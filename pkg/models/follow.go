package models

import "time"

// Follow statuses. Stored lowercase in the DB.
const (
	FollowReading = "reading"
	FollowPlan    = "plan"
	FollowDone    = "done"
	FollowDropped = "dropped"
)

// Follow is one user's subscription to a manga, with reading state.
type Follow struct {
	UserID      string    `json:"user_id"`
	MangaID     string    `json:"manga_id"`
	Status      string    `json:"status"`
	LastChapter string    `json:"last_chapter,omitempty"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ValidFollowStatus reports whether s is one of the accepted statuses.
func ValidFollowStatus(s string) bool {
	switch s {
	case FollowReading, FollowPlan, FollowDone, FollowDropped:
		return true
	}
	return false
}
