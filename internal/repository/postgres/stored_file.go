package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"srm-agent-portal/internal/domain"
	"srm-agent-portal/internal/logger"
	"srm-agent-portal/internal/repository"
)

type storedFileRepository struct {
	db *sql.DB
}

func NewStoredFileRepository(db *sql.DB) repository.StoredFileRepository {
	return &storedFileRepository{db: db}
}

const storedFileColumns = `id, agent_id, COALESCE(flow_id, ''), path, file_name, mime_type, file_size, status, created_on, confirmed_on, deleted_on`

func scanStoredFile(row rowScanner) (*domain.StoredFile, error) {
	f := &domain.StoredFile{}
	err := row.Scan(&f.ID, &f.AgentID, &f.FlowID, &f.Path, &f.FileName, &f.MimeType, &f.FileSize,
		&f.Status, &f.CreatedOn, &f.ConfirmedOn, &f.DeletedOn)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (r *storedFileRepository) Create(ctx context.Context, f *domain.StoredFile) error {
	logger.EnterMethod("storedFileRepository.Create", "agentID", f.AgentID, "path", f.Path)

	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	if f.Status == "" {
		f.Status = domain.StoredFileStatusPending
	}
	f.CreatedOn = time.Now().UTC()

	query := `INSERT INTO stored_files (id, agent_id, flow_id, path, file_name, mime_type, file_size, status, created_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	logger.DatabaseCall("INSERT", query, "path", f.Path)

	_, err := r.db.ExecContext(ctx, query, f.ID, f.AgentID, f.FlowID, f.Path, f.FileName, f.MimeType, f.FileSize, f.Status, f.CreatedOn)
	if err != nil {
		logger.ExitMethodWithError("storedFileRepository.Create", err, "path", f.Path)
		return err
	}

	logger.ExitMethod("storedFileRepository.Create", "fileID", f.ID)
	return nil
}

func (r *storedFileRepository) GetByPath(ctx context.Context, path string) (*domain.StoredFile, error) {
	logger.EnterMethod("storedFileRepository.GetByPath", "path", path)

	query := `SELECT ` + storedFileColumns + ` FROM stored_files WHERE path = $1`
	logger.DatabaseCall("SELECT", query, "path", path)

	f, err := scanStoredFile(r.db.QueryRowContext(ctx, query, path))
	if err != nil {
		logger.ExitMethodWithError("storedFileRepository.GetByPath", err, "path", path)
		return nil, notFound(err)
	}

	logger.ExitMethod("storedFileRepository.GetByPath", "fileID", f.ID)
	return f, nil
}

// MarkConfirmed promotes files referenced by a successful step. Files already released are left alone.
func (r *storedFileRepository) MarkConfirmed(ctx context.Context, paths []string) error {
	if len(paths) == 0 {
		return nil
	}
	logger.EnterMethod("storedFileRepository.MarkConfirmed", "count", len(paths))

	query := `UPDATE stored_files SET status = $1, confirmed_on = $2 WHERE path = ANY($3) AND status = $4`
	logger.DatabaseCall("UPDATE", query, "count", len(paths))

	res, err := r.db.ExecContext(ctx, query, domain.StoredFileStatusConfirmed, time.Now().UTC(), pq.Array(paths), domain.StoredFileStatusPending)
	if err != nil {
		logger.DatabaseResult("UPDATE", 0, err)
		logger.ExitMethodWithError("storedFileRepository.MarkConfirmed", err)
		return err
	}
	n, _ := res.RowsAffected()
	logger.DatabaseResult("UPDATE", n, nil)

	logger.ExitMethod("storedFileRepository.MarkConfirmed", "confirmed", n)
	return nil
}

// MarkPendingDeletion hands unconfirmed uploads over to the purge job.
func (r *storedFileRepository) MarkPendingDeletion(ctx context.Context, paths []string) error {
	if len(paths) == 0 {
		return nil
	}
	logger.EnterMethod("storedFileRepository.MarkPendingDeletion", "count", len(paths))

	query := `UPDATE stored_files SET status = $1 WHERE path = ANY($2) AND status = $3`
	logger.DatabaseCall("UPDATE", query, "count", len(paths))

	res, err := r.db.ExecContext(ctx, query, domain.StoredFileStatusPendingDeletion, pq.Array(paths), domain.StoredFileStatusPending)
	if err != nil {
		logger.DatabaseResult("UPDATE", 0, err)
		logger.ExitMethodWithError("storedFileRepository.MarkPendingDeletion", err)
		return err
	}
	n, _ := res.RowsAffected()
	logger.DatabaseResult("UPDATE", n, nil)

	logger.ExitMethod("storedFileRepository.MarkPendingDeletion", "released", n)
	return nil
}

// ReleaseStale releases every PENDING upload created before olderThan. These belong
// to flows that no longer exist, typically after a restart.
func (r *storedFileRepository) ReleaseStale(ctx context.Context, olderThan time.Time) (int64, error) {
	logger.EnterMethod("storedFileRepository.ReleaseStale", "olderThan", olderThan)

	query := `UPDATE stored_files SET status = $1 WHERE status = $2 AND created_on < $3`
	logger.DatabaseCall("UPDATE", query)

	res, err := r.db.ExecContext(ctx, query, domain.StoredFileStatusPendingDeletion, domain.StoredFileStatusPending, olderThan)
	if err != nil {
		logger.DatabaseResult("UPDATE", 0, err)
		logger.ExitMethodWithError("storedFileRepository.ReleaseStale", err)
		return 0, err
	}
	n, _ := res.RowsAffected()
	logger.DatabaseResult("UPDATE", n, nil)

	logger.ExitMethod("storedFileRepository.ReleaseStale", "released", n)
	return n, nil
}

func (r *storedFileRepository) MarkDeleted(ctx context.Context, id string) error {
	logger.EnterMethod("storedFileRepository.MarkDeleted", "fileID", id)

	query := `UPDATE stored_files SET status = $1, deleted_on = $2 WHERE id = $3`
	logger.DatabaseCall("UPDATE", query, "fileID", id)

	_, err := r.db.ExecContext(ctx, query, domain.StoredFileStatusDeleted, time.Now().UTC(), id)
	if err != nil {
		logger.ExitMethodWithError("storedFileRepository.MarkDeleted", err, "fileID", id)
		return err
	}

	logger.ExitMethod("storedFileRepository.MarkDeleted", "fileID", id)
	return nil
}

func (r *storedFileRepository) ListPendingDeletion(ctx context.Context, olderThan time.Time, limit int) ([]domain.StoredFile, error) {
	logger.EnterMethod("storedFileRepository.ListPendingDeletion", "olderThan", olderThan, "limit", limit)

	query := `SELECT ` + storedFileColumns + ` FROM stored_files
	          WHERE status = $1 AND created_on < $2 ORDER BY created_on LIMIT $3`
	logger.DatabaseCall("SELECT", query)

	rows, err := r.db.QueryContext(ctx, query, domain.StoredFileStatusPendingDeletion, olderThan, limit)
	if err != nil {
		logger.ExitMethodWithError("storedFileRepository.ListPendingDeletion", err)
		return nil, err
	}
	defer rows.Close()

	var files []domain.StoredFile
	for rows.Next() {
		f, err := scanStoredFile(rows)
		if err != nil {
			logger.ExitMethodWithError("storedFileRepository.ListPendingDeletion", err)
			return nil, err
		}
		files = append(files, *f)
	}
	if err := rows.Err(); err != nil {
		logger.ExitMethodWithError("storedFileRepository.ListPendingDeletion", err)
		return nil, err
	}

	logger.ExitMethod("storedFileRepository.ListPendingDeletion", "count", len(files))
	return files, nil
}
