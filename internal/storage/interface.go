package storage

import (
	"context"
	"errors"
	"io"
)

var (
	ErrInvalidKey   = errors.New("invalid storage key")
	ErrFileNotFound = errors.New("file not found")
)

// StorageInterface is the file storage collaborator behind uploads.
// The mock backend keeps files on the local filesystem.
type StorageInterface interface {
	// SaveFile writes the reader under key and returns the number of bytes stored
	SaveFile(ctx context.Context, key string, reader io.Reader) (int64, error)

	// ReadFile opens a stored file. Callers close it.
	ReadFile(ctx context.Context, key string) (io.ReadCloser, error)

	// FileExists checks if a file exists and returns its size
	FileExists(ctx context.Context, key string) (exists bool, size int64, err error)

	// DeleteFile removes a file. Deleting a missing file is not an error.
	DeleteFile(ctx context.Context, key string) error

	// DownloadURL returns the URL clients use to fetch key
	DownloadURL(key string) string
}
