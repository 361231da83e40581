package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/passforge/passforge-go/internal/crypto"
	"github.com/passforge/passforge-go/internal/model"
	"github.com/passforge/passforge-go/internal/repository"
)

const DefaultRecentLimit = 20

var (
	ErrUploadNotFound      = errors.New("upload not found")
	ErrNoFile              = errors.New("no file selected")
	ErrInvalidFileName     = errors.New("invalid file name")
	ErrExtensionNotAllowed = errors.New("file type not allowed")
)

// UploadStore persists upload metadata.
type UploadStore interface {
	Create(ctx context.Context, u *model.Upload) error
	GetByID(ctx context.Context, id string) (*model.Upload, error)
	ListRecent(ctx context.Context, limit int) ([]model.Upload, error)
}

// UploadService handles file upload business logic.
type UploadService struct {
	files   *repository.FileStore
	store   UploadStore
	allowed map[string]bool
	now     func() time.Time
}

// NewUploadService creates a new UploadService. store may be nil, in which
// case files are kept on disk but no metadata is recorded.
// An empty allowedExtensions accepts any extension.
func NewUploadService(files *repository.FileStore, store UploadStore, allowedExtensions []string) *UploadService {
	allowed := make(map[string]bool, len(allowedExtensions))
	for _, ext := range allowedExtensions {
		allowed[ext] = true
	}

	return &UploadService{
		files:   files,
		store:   store,
		allowed: allowed,
		now:     time.Now,
	}
}

// Upload stores the content read from r under a sanitized, collision free
// name and records its metadata.
func (s *UploadService) Upload(ctx context.Context, filename, contentType string, r io.Reader) (model.Upload, error) {
	if filename == "" {
		return model.Upload{}, ErrNoFile
	}

	safe := SanitizeFilename(filename)
	if safe == "" {
		return model.Upload{}, ErrInvalidFileName
	}
	if len(s.allowed) > 0 && !s.allowed[extension(safe)] {
		return model.Upload{}, ErrExtensionNotAllowed
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	id := uuid.NewString()
	upload := model.Upload{
		ID:           id,
		OriginalName: safe,
		StoredName:   id + "-" + safe,
		ContentType:  contentType,
		CreatedAt:    s.now().UTC().Truncate(time.Second),
	}

	digester := crypto.NewDigester()
	size, err := s.files.Save(upload.StoredName, io.TeeReader(r, digester))
	if err != nil {
		return model.Upload{}, fmt.Errorf("storing upload: %w", err)
	}
	upload.Size = size
	upload.Digest = digester.Sum()

	if s.store != nil {
		if err := s.store.Create(ctx, &upload); err != nil {
			if rmErr := s.files.Remove(upload.StoredName); rmErr != nil {
				slog.Error("failed to remove orphaned upload", "stored_name", upload.StoredName, "error", rmErr)
			}
			return model.Upload{}, fmt.Errorf("recording upload: %w", err)
		}
	}

	slog.Info("file uploaded", "id", upload.ID, "name", upload.OriginalName, "size", upload.Size)
	return upload, nil
}

// ListRecent returns up to limit uploads, newest first. Without a metadata
// store the list is always empty.
func (s *UploadService) ListRecent(ctx context.Context, limit int) ([]model.Upload, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	if s.store == nil {
		return []model.Upload{}, nil
	}

	uploads, err := s.store.ListRecent(ctx, limit)
	if err != nil {
		return nil, err
	}
	if uploads == nil {
		uploads = []model.Upload{}
	}
	return uploads, nil
}

// Open returns the metadata and an open handle to the content of upload id.
// The caller closes the file.
func (s *UploadService) Open(ctx context.Context, id string) (model.Upload, *os.File, error) {
	if s.store == nil {
		return model.Upload{}, nil, ErrUploadNotFound
	}

	upload, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUploadNotFound) {
			return model.Upload{}, nil, ErrUploadNotFound
		}
		return model.Upload{}, nil, err
	}

	f, err := s.files.Open(upload.StoredName)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return model.Upload{}, nil, ErrUploadNotFound
		}
		return model.Upload{}, nil, err
	}

	return *upload, f, nil
}

// IsUploadValidationError reports whether err was caused by bad client input.
func IsUploadValidationError(err error) bool {
	return errors.Is(err, ErrNoFile) ||
		errors.Is(err, ErrInvalidFileName) ||
		errors.Is(err, ErrExtensionNotAllowed)
}
