package storage

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

var (
	ErrFileTooLarge    = errors.New("file too large")
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrNoFile          = errors.New("no file uploaded")
)

// StoredFile describes a file persisted by a FileStore
type StoredFile struct {
	URL          string
	Path         string
	Filename     string
	OriginalName string
	MimeType     string
	Size         int64
	Backend      string
}

// FileStore persists uploaded files under a folder and deletes them by path
type FileStore interface {
	Save(ctx context.Context, folder string, file *multipart.FileHeader) (*StoredFile, error)
	Delete(ctx context.Context, path string) error
	// PathFromURL maps a public URL produced by the store back to the path Delete expects
	PathFromURL(url string) (string, bool)
	Backend() string
}

// Rules limit what a given endpoint accepts
type Rules struct {
	MaxSize      int64
	AllowedMIMEs []string
}

var (
	MediaRules = Rules{
		MaxSize:      10 << 20,
		AllowedMIMEs: []string{"image/jpeg", "image/png", "image/gif", "image/webp", "video/mp4", "video/webm"},
	}
	PersonnelImageRules = Rules{
		MaxSize:      5 << 20,
		AllowedMIMEs: []string{"image/jpeg", "image/png", "image/gif"},
	}
	ImageRules = Rules{
		MaxSize:      10 << 20,
		AllowedMIMEs: []string{"image/jpeg", "image/png", "image/gif", "image/webp"},
	}
	// Attachments accept any type
	AttachmentRules = Rules{
		MaxSize: 10 << 20,
	}
)

// Check validates size and sniffed content type, returning the detected MIME type
func (r Rules) Check(file *multipart.FileHeader) (string, error) {
	if file == nil {
		return "", ErrNoFile
	}
	if r.MaxSize > 0 && file.Size > r.MaxSize {
		return "", fmt.Errorf("%w: %d bytes exceeds %d", ErrFileTooLarge, file.Size, r.MaxSize)
	}

	mime, err := DetectMIME(file)
	if err != nil {
		return "", err
	}

	if len(r.AllowedMIMEs) == 0 {
		return mime, nil
	}
	for _, allowed := range r.AllowedMIMEs {
		if strings.EqualFold(mime, allowed) {
			return mime, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedType, mime)
}

// DetectMIME sniffs the content instead of trusting the client header
func DetectMIME(file *multipart.FileHeader) (string, error) {
	f, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open upload: %w", err)
	}
	defer f.Close()

	detected, err := mimetype.DetectReader(f)
	if err != nil {
		return "", fmt.Errorf("failed to detect file type: %w", err)
	}
	// Strip parameters such as "; charset=utf-8"
	return strings.SplitN(detected.String(), ";", 2)[0], nil
}

// FolderFor picks the media folder from the content type
func FolderFor(mime string) string {
	if strings.HasPrefix(mime, "video/") {
		return "videos"
	}
	return "images"
}

func extensionOf(file *multipart.FileHeader) string {
	return strings.ToLower(filepath.Ext(file.Filename))
}
