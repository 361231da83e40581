package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-sql-driver/mysql"
	"github.com/passforge/passforge-go/internal/model"
)

var (
	ErrUploadNotFound = errors.New("upload not found")
	ErrDuplicateID    = errors.New("upload id already exists")
)

// UploadRepository handles upload metadata persistence operations.
type UploadRepository struct {
	db *sql.DB
}

// NewUploadRepository creates a new UploadRepository.
func NewUploadRepository(db *sql.DB) *UploadRepository {
	return &UploadRepository{db: db}
}

// Create inserts the metadata of a stored upload.
func (r *UploadRepository) Create(ctx context.Context, u *model.Upload) error {
	query := `INSERT INTO uploads (id, original_name, stored_name, content_type, size, digest, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		u.ID, u.OriginalName, u.StoredName, u.ContentType, u.Size, u.Digest, u.CreatedAt,
	)
	if err != nil {
		if isDuplicateEntryError(err) {
			return ErrDuplicateID
		}
		return err
	}

	return nil
}

// GetByID retrieves an upload by its ID.
func (r *UploadRepository) GetByID(ctx context.Context, id string) (*model.Upload, error) {
	query := `SELECT id, original_name, stored_name, content_type, size, digest, created_at
		FROM uploads WHERE id = ?`

	u := &model.Upload{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&u.ID, &u.OriginalName, &u.StoredName, &u.ContentType, &u.Size, &u.Digest, &u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUploadNotFound
		}
		return nil, err
	}

	return u, nil
}

// ListRecent retrieves up to limit uploads, newest first.
func (r *UploadRepository) ListRecent(ctx context.Context, limit int) ([]model.Upload, error) {
	query := `SELECT id, original_name, stored_name, content_type, size, digest, created_at
		FROM uploads ORDER BY created_at DESC LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var uploads []model.Upload
	for rows.Next() {
		var u model.Upload
		if err := rows.Scan(
			&u.ID, &u.OriginalName, &u.StoredName, &u.ContentType, &u.Size, &u.Digest, &u.CreatedAt,
		); err != nil {
			return nil, err
		}
		uploads = append(uploads, u)
	}

	return uploads, rows.Err()
}

// isDuplicateEntryError checks if a MySQL error is a duplicate entry error (code 1062).
func isDuplicateEntryError(err error) bool {
	var myErr *mysql.MySQLError
	return errors.As(err, &myErr) && myErr.Number == 1062
}
