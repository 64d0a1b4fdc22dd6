package comments

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"mangaproxy/pkg/models"
)

type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

func (r *Repo) Create(ctx context.Context, userID, mangaID, text string) (*models.Comment, error) {
	id := uuid.NewString()
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO comments (id, manga_id, user_id, text)
		VALUES (?, ?, ?, ?)
	`, id, mangaID, userID, text)
	if err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	return r.GetByID(ctx, id)
}

func (r *Repo) GetByID(ctx context.Context, id string) (*models.Comment, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT c.id, c.manga_id, c.user_id, u.username, c.text, c.created_at
		FROM comments c
		JOIN users u ON u.id = c.user_id
		WHERE c.id = ?
	`, id)

	var cm models.Comment
	if err := row.Scan(&cm.ID, &cm.MangaID, &cm.UserID, &cm.Username, &cm.Text, &cm.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get comment: %w", err)
	}
	return &cm, nil
}

func (r *Repo) ListByManga(ctx context.Context, mangaID string, limit, offset int) ([]models.Comment, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT c.id, c.manga_id, c.user_id, u.username, c.text, c.created_at
		FROM comments c
		JOIN users u ON u.id = c.user_id
		WHERE c.manga_id = ?
		ORDER BY c.created_at DESC
		LIMIT ? OFFSET ?
	`, mangaID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	out := make([]models.Comment, 0)
	for rows.Next() {
		var cm models.Comment
		if err := rows.Scan(&cm.ID, &cm.MangaID, &cm.UserID, &cm.Username, &cm.Text, &cm.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		out = append(out, cm)
	}
	return out, rows.Err()
}

// Delete removes a comment owned by userID and reports whether a row
// was deleted. Ownership is enforced in the query itself.
func (r *Repo) Delete(ctx context.Context, id, userID string) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
		DELETE FROM comments WHERE id = ? AND user_id = ?
	`, id, userID)
	if err != nil {
		return false, fmt.Errorf("delete comment: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete comment rows: %w", err)
	}
	return affected > 0, nil
}
