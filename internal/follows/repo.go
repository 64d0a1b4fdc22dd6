package follows

import (
	"context"
	"database/sql"
	"fmt"

	"mangaproxy/pkg/models"
)

type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

// Upsert creates or replaces the user's follow entry for a manga.
func (r *Repo) Upsert(ctx context.Context, f models.Follow) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO follows (user_id, manga_id, status, last_chapter, updated_at)
		VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(user_id, manga_id) DO UPDATE SET
			status = excluded.status,
			last_chapter = excluded.last_chapter,
			updated_at = CURRENT_TIMESTAMP
	`, f.UserID, f.MangaID, f.Status, f.LastChapter)

	if err != nil {
		return fmt.Errorf("upsert follow: %w", err)
	}
	return nil
}

func (r *Repo) GetOne(ctx context.Context, userID, mangaID string) (*models.Follow, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT user_id, manga_id, status, last_chapter, updated_at
		FROM follows
		WHERE user_id = ? AND manga_id = ?
	`, userID, mangaID)

	var f models.Follow
	if err := row.Scan(&f.UserID, &f.MangaID, &f.Status, &f.LastChapter, &f.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get follow: %w", err)
	}
	return &f, nil
}

func (r *Repo) List(ctx context.Context, userID string) ([]models.Follow, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT user_id, manga_id, status, last_chapter, updated_at
		FROM follows
		WHERE user_id = ?
		ORDER BY updated_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list follows: %w", err)
	}
	defer rows.Close()

	out := make([]models.Follow, 0)
	for rows.Next() {
		var f models.Follow
		if err := rows.Scan(&f.UserID, &f.MangaID, &f.Status, &f.LastChapter, &f.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan follow: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// Remove deletes the follow and reports whether it existed.
func (r *Repo) Remove(ctx context.Context, userID, mangaID string) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
		DELETE FROM follows WHERE user_id = ? AND manga_id = ?
	`, userID, mangaID)
	if err != nil {
		return false, fmt.Errorf("remove follow: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("remove follow rows: %w", err)
	}
	return affected > 0, nil
}
