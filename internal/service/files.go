package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"srm-agent-portal/internal/domain"
	"srm-agent-portal/internal/logger"
	"srm-agent-portal/internal/repository"
	"srm-agent-portal/internal/storage"
)

var (
	ErrFileTooLarge     = errors.New("file exceeds the maximum upload size")
	ErrFileTypeRejected = errors.New("file type is not allowed")
	ErrFileAccessDenied = errors.New("file belongs to another agent")
	ErrFileNameRequired = errors.New("file name is required")
)

type fileService struct {
	storage      storage.StorageInterface
	files        repository.StoredFileRepository
	maxSize      int64
	allowedTypes map[string]bool
	now          func() time.Time
}

func NewFileService(store storage.StorageInterface, files repository.StoredFileRepository, maxSizeBytes int64, allowedTypes []string) FileService {
	allowed := make(map[string]bool, len(allowedTypes))
	for _, t := range allowedTypes {
		allowed[strings.ToLower(t)] = true
	}
	return &fileService{
		storage:      store,
		files:        files,
		maxSize:      maxSizeBytes,
		allowedTypes: allowed,
		now:          time.Now,
	}
}

// Upload stores the body under agent/flow and records it as PENDING until a step confirms it.
func (s *fileService) Upload(ctx context.Context, agentID, flowID, fileName, mimeType string, body io.Reader) (*domain.StoredFile, error) {
	name := filepath.Base(strings.TrimSpace(fileName))
	if name == "" || name == "." || name == "/" {
		return nil, ErrFileNameRequired
	}
	mimeType = strings.ToLower(strings.TrimSpace(strings.Split(mimeType, ";")[0]))
	if len(s.allowedTypes) > 0 && !s.allowedTypes[mimeType] {
		return nil, fmt.Errorf("%w: %s", ErrFileTypeRejected, mimeType)
	}

	key := fmt.Sprintf("%s/%s/%s_%s", agentID, flowID, uuid.NewString(), name)

	reader := body
	if s.maxSize > 0 {
		reader = io.LimitReader(body, s.maxSize+1)
	}
	size, err := s.storage.SaveFile(ctx, key, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to store file: %w", err)
	}
	if s.maxSize > 0 && size > s.maxSize {
		_ = s.storage.DeleteFile(ctx, key)
		return nil, ErrFileTooLarge
	}

	file := &domain.StoredFile{
		AgentID:  agentID,
		FlowID:   flowID,
		Path:     key,
		FileName: name,
		MimeType: mimeType,
		FileSize: size,
		Status:   domain.StoredFileStatusPending,
	}
	if err := s.files.Create(ctx, file); err != nil {
		_ = s.storage.DeleteFile(ctx, key)
		return nil, fmt.Errorf("failed to save file metadata: %w", err)
	}

	logger.Info("File uploaded", "agentID", agentID, "flowID", flowID, "path", key, "size", size)
	return file, nil
}

func (s *fileService) Open(ctx context.Context, agentID, path string) (io.ReadCloser, *domain.StoredFile, error) {
	file, err := s.files.GetByPath(ctx, path)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil, storage.ErrFileNotFound
		}
		return nil, nil, err
	}
	if file.AgentID != agentID {
		return nil, nil, ErrFileAccessDenied
	}
	if file.Status == domain.StoredFileStatusDeleted {
		return nil, nil, storage.ErrFileNotFound
	}
	rc, err := s.storage.ReadFile(ctx, path)
	if err != nil {
		return nil, nil, err
	}
	return rc, file, nil
}

// DeleteStoredFile removes a file the agent owns. Paths without a record are ignored.
func (s *fileService) DeleteStoredFile(ctx context.Context, agentID, path string) error {
	file, err := s.files.GetByPath(ctx, path)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			logger.Warn("Skipping delete of untracked file", "path", path)
			return nil
		}
		return err
	}
	if file.AgentID != agentID {
		return ErrFileAccessDenied
	}
	if file.Status == domain.StoredFileStatusDeleted {
		return nil
	}

	logger.ExternalServiceCall("storage", "DeleteFile", "path", path)
	err = s.storage.DeleteFile(ctx, path)
	logger.ExternalServiceResult("storage", "DeleteFile", err, "path", path)
	if err != nil {
		return err
	}
	return s.files.MarkDeleted(ctx, file.ID)
}

// ConfirmStoredFiles keeps the agent's files referenced by a successful step. Paths
// without a record or owned by another agent are skipped.
func (s *fileService) ConfirmStoredFiles(ctx context.Context, agentID string, paths []string) error {
	owned := make([]string, 0, len(paths))
	for _, path := range paths {
		file, err := s.files.GetByPath(ctx, path)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				logger.Warn("Skipping confirm of untracked file", "path", path)
				continue
			}
			return err
		}
		if file.AgentID != agentID {
			logger.Warn("Skipping confirm of file owned by another agent", "path", path, "agentID", agentID)
			continue
		}
		owned = append(owned, path)
	}
	if len(owned) == 0 {
		return nil
	}
	return s.files.MarkConfirmed(ctx, owned)
}

// ReleaseStoredFiles hands unconfirmed uploads to the purge job.
func (s *fileService) ReleaseStoredFiles(ctx context.Context, paths []string) error {
	return s.files.MarkPendingDeletion(ctx, paths)
}

// ReleaseStale releases unconfirmed uploads older than age that no live flow tracks anymore.
func (s *fileService) ReleaseStale(ctx context.Context, age time.Duration) (int, error) {
	n, err := s.files.ReleaseStale(ctx, s.now().Add(-age))
	return int(n), err
}

// PurgeReleased deletes released uploads older than grace. It keeps going past
// individual failures and reports how many files were removed.
func (s *fileService) PurgeReleased(ctx context.Context, grace time.Duration, limit int) (int, error) {
	files, err := s.files.ListPendingDeletion(ctx, s.now().Add(-grace), limit)
	if err != nil {
		return 0, err
	}

	purged := 0
	for _, f := range files {
		if err := s.storage.DeleteFile(ctx, f.Path); err != nil {
			logger.Error("Failed to delete released file", "path", f.Path, "error", err)
			continue
		}
		if err := s.files.MarkDeleted(ctx, f.ID); err != nil {
			logger.Error("Failed to mark released file deleted", "fileID", f.ID, "error", err)
			continue
		}
		purged++
	}
	return purged, nil
}
