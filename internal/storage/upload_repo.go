package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_upload_store.go -package=mocks manualrag/internal/storage UploadStore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// UploadStore records successful manual uploads.
type UploadStore interface {
	// Record inserts u, assigning an ID when empty.
	Record(ctx context.Context, u *Upload) error
	// List returns uploads for title, or all uploads when title is empty, newest first.
	List(ctx context.Context, title string) ([]Upload, error)
	// DeleteByTitle removes every upload of title and returns how many were removed.
	DeleteByTitle(ctx context.Context, title string) (int, error)
}

// UploadRepo implements UploadStore on SQLite.
type UploadRepo struct {
	db *sql.DB
}

// NewUploadRepo creates a new UploadRepo.
func NewUploadRepo(db *sql.DB) *UploadRepo {
	return &UploadRepo{db: db}
}

// Record inserts u.
func (r *UploadRepo) Record(ctx context.Context, u *Upload) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	files, err := json.Marshal(u.Files)
	if err != nil {
		return fmt.Errorf("failed to encode files: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		"INSERT INTO uploads (id, title, num_chunks, files) VALUES (?, ?, ?, ?)",
		u.ID, u.Title, u.NumChunks, string(files),
	)
	if err != nil {
		return fmt.Errorf("failed to insert upload: %w", err)
	}
	return nil
}

// List returns uploads, newest first.
func (r *UploadRepo) List(ctx context.Context, title string) ([]Upload, error) {
	query := "SELECT id, title, num_chunks, files, created_at FROM uploads"
	var args []any
	if title != "" {
		query += " WHERE title = ?"
		args = append(args, title)
	}
	query += " ORDER BY created_at DESC, rowid DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query uploads: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	uploads := []Upload{}
	for rows.Next() {
		var (
			u                Upload
			files, createdAt string
		)
		if err := rows.Scan(&u.ID, &u.Title, &u.NumChunks, &files, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan upload: %w", err)
		}
		if err := json.Unmarshal([]byte(files), &u.Files); err != nil {
			return nil, fmt.Errorf("failed to decode files of upload %s: %w", u.ID, err)
		}
		if u.CreatedAt, err = parseTimestamp(createdAt); err != nil {
			return nil, err
		}
		uploads = append(uploads, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate uploads: %w", err)
	}
	return uploads, nil
}

// DeleteByTitle removes every upload of title.
func (r *UploadRepo) DeleteByTitle(ctx context.Context, title string) (int, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM uploads WHERE title = ?", title)
	if err != nil {
		return 0, fmt.Errorf("failed to delete uploads: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return int(n), nil
}
