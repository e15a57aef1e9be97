package services

import (
	"context"
	"fmt"
	"log/slog"
	"mime/multipart"

	"github.com/darab-cement/cms-service/internal/models"
	"github.com/darab-cement/cms-service/internal/storage"
)

const maxPageSize = 100

// normalizePage applies the default limit and clamps both values
func normalizePage(page, limit, defaultLimit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return page, limit
}

func pageMeta(page, limit int, total int64) models.PageMeta {
	return models.PageMeta{
		CurrentPage:  page,
		ItemsPerPage: limit,
		TotalItems:   total,
		TotalPages:   models.TotalPages(total, limit),
	}
}

// saveUpload checks the file against rules before handing it to the store
func saveUpload(ctx context.Context, store storage.FileStore, rules storage.Rules, folder string, file *multipart.FileHeader) (*storage.StoredFile, error) {
	mime, err := rules.Check(file)
	if err != nil {
		return nil, err
	}
	if folder == "" {
		folder = storage.FolderFor(mime)
	}

	stored, err := store.Save(ctx, folder, file)
	if err != nil {
		return nil, fmt.Errorf("failed to store file: %w", err)
	}
	stored.MimeType = mime
	return stored, nil
}

// removeStoredURL deletes a file previously produced by the store; failures are only logged
func removeStoredURL(ctx context.Context, store storage.FileStore, logger *slog.Logger, url *string) {
	if url == nil || *url == "" {
		return
	}
	path, ok := store.PathFromURL(*url)
	if !ok {
		return
	}
	if err := store.Delete(ctx, path); err != nil {
		logger.Warn("Failed to delete stored file", "path", path, "error", err)
	}
}

func ptr[T any](v T) *T {
	return &v
}

func deref[T any](p *T, fallback T) T {
	if p == nil {
		return fallback
	}
	return *p
}
