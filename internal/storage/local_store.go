package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// LocalStore writes files under a directory served statically at baseURL
type LocalStore struct {
	dir     string
	baseURL string
}

func NewLocalStore(dir, baseURL string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}
	return &LocalStore{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (s *LocalStore) Backend() string { return "local" }

func (s *LocalStore) Save(ctx context.Context, folder string, file *multipart.FileHeader) (*StoredFile, error) {
	if file == nil {
		return nil, ErrNoFile
	}

	src, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()

	targetDir := filepath.Join(s.dir, folder)
	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create folder: %w", err)
	}

	name := uuid.NewString() + extensionOf(file)
	dst, err := os.Create(filepath.Join(targetDir, name))
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	defer dst.Close()

	written, err := io.Copy(dst, src)
	if err != nil {
		return nil, fmt.Errorf("failed to write file: %w", err)
	}

	rel := path.Join(folder, name)
	return &StoredFile{
		URL:          s.baseURL + "/" + rel,
		Path:         rel,
		Filename:     name,
		OriginalName: file.Filename,
		MimeType:     file.Header.Get("Content-Type"),
		Size:         written,
		Backend:      s.Backend(),
	}, nil
}

// Delete removes a stored file; a missing file is not an error
func (s *LocalStore) Delete(ctx context.Context, rel string) error {
	if rel == "" {
		return nil
	}
	clean := filepath.Clean("/" + rel)
	err := os.Remove(filepath.Join(s.dir, clean))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// PathFromURL maps a public URL produced by this store back to its relative path
func (s *LocalStore) PathFromURL(url string) (string, bool) {
	prefix := s.baseURL + "/"
	if !strings.HasPrefix(url, prefix) {
		return "", false
	}
	return strings.TrimPrefix(url, prefix), true
}
