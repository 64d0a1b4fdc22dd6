package prefs

import (
	"context"
	"database/sql"
	"fmt"

	"mangaproxy/pkg/models"
)

// Defaults applied when the user has never saved preferences.
const (
	DefaultLocale           = "en"
	DefaultMaxContentRating = "suggestive"
)

type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

// Get returns the user's preferences, falling back to the defaults
// when no row exists. Callers never see a nil.
func (r *Repo) Get(ctx context.Context, userID string) (models.Preferences, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT user_id, locale, max_content_rating, updated_at
		FROM preferences
		WHERE user_id = ?
	`, userID)

	var p models.Preferences
	if err := row.Scan(&p.UserID, &p.Locale, &p.MaxContentRating, &p.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return models.Preferences{
				UserID:           userID,
				Locale:           DefaultLocale,
				MaxContentRating: DefaultMaxContentRating,
			}, nil
		}
		return models.Preferences{}, fmt.Errorf("get preferences: %w", err)
	}
	return p, nil
}

func (r *Repo) Upsert(ctx context.Context, p models.Preferences) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO preferences (user_id, locale, max_content_rating, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(user_id) DO UPDATE SET
			locale = excluded.locale,
			max_content_rating = excluded.max_content_rating,
			updated_at = CURRENT_TIMESTAMP
	`, p.UserID, p.Locale, p.MaxContentRating)

	if err != nil {
		return fmt.Errorf("upsert preferences: %w", err)
	}
	return nil
}
