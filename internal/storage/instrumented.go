package storage

import (
	"context"
	"mime/multipart"
)

// UploadObserver is notified of each write; metrics implement it
type UploadObserver interface {
	ObserveUpload(backend string, err error)
}

type instrumentedStore struct {
	FileStore
	observer UploadObserver
}

// Instrument reports every Save to observer
func Instrument(store FileStore, observer UploadObserver) FileStore {
	if observer == nil {
		return store
	}
	return &instrumentedStore{FileStore: store, observer: observer}
}

func (s *instrumentedStore) Save(ctx context.Context, folder string, file *multipart.FileHeader) (*StoredFile, error) {
	stored, err := s.FileStore.Save(ctx, folder, file)
	s.observer.ObserveUpload(s.Backend(), err)
	return stored, err
}
