package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"srm-agent-portal/internal/logger"
)

// MockStorageService stores uploads on the local filesystem.
type MockStorageService struct {
	baseURL  string // Server URL (e.g., "http://localhost:8080")
	filesDir string // Root for stored files
}

// NewMockStorageService creates the files directory under uploadsDir if needed
func NewMockStorageService(baseURL, uploadsDir string) (*MockStorageService, error) {
	filesDir := filepath.Join(uploadsDir, "files")
	if err := os.MkdirAll(filesDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create files directory: %w", err)
	}

	return &MockStorageService{
		baseURL:  strings.TrimRight(baseURL, "/"),
		filesDir: filesDir,
	}, nil
}

// resolve maps a key onto a path inside filesDir, rejecting keys that escape it.
func (m *MockStorageService) resolve(key string) (string, error) {
	clean := filepath.Clean("/" + key)
	if key == "" || clean == "/" || strings.Contains(key, "..") {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return filepath.Join(m.filesDir, clean), nil
}

// SaveFile saves an uploaded file to the local filesystem
func (m *MockStorageService) SaveFile(ctx context.Context, key string, reader io.Reader) (int64, error) {
	fullPath, err := m.resolve(key)
	if err != nil {
		return 0, err
	}

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return 0, fmt.Errorf("failed to create directories: %w", err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return 0, fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	n, err := io.Copy(file, reader)
	if err != nil {
		return n, fmt.Errorf("failed to write file: %w", err)
	}

	logger.Debug("Stored file", "key", key, "size", n)
	return n, nil
}

// ReadFile opens a file for streaming
func (m *MockStorageService) ReadFile(ctx context.Context, key string) (io.ReadCloser, error) {
	fullPath, err := m.resolve(key)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrFileNotFound
		}
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return file, nil
}

// FileExists checks if file exists in local filesystem
func (m *MockStorageService) FileExists(ctx context.Context, key string) (bool, int64, error) {
	fullPath, err := m.resolve(key)
	if err != nil {
		return false, 0, err
	}

	info, err := os.Stat(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return false, 0, nil
		}
		return false, 0, err
	}
	return true, info.Size(), nil
}

// DeleteFile deletes file from local filesystem
func (m *MockStorageService) DeleteFile(ctx context.Context, key string) error {
	fullPath, err := m.resolve(key)
	if err != nil {
		return err
	}

	err = os.Remove(fullPath)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// DownloadURL points at the authenticated download route
func (m *MockStorageService) DownloadURL(key string) string {
	return fmt.Sprintf("%s/api/v1/files?key=%s", m.baseURL, url.QueryEscape(key))
}
