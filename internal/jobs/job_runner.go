package jobs

import (
	"context"
	"time"

	"srm-agent-portal/internal/config"
	"srm-agent-portal/internal/logger"
	"srm-agent-portal/internal/service"
)

const (
	// staleUploadAge is how old an unconfirmed upload must be before it is released
	// without a live flow to vouch for it.
	staleUploadAge = 24 * time.Hour

	// purgeGrace keeps released files around briefly before they are deleted.
	purgeGrace = time.Hour

	purgeBatchSize = 500
	probeTimeout   = 5 * time.Second
	jobTimeout     = 10 * time.Minute
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthStatus receives the outcome of each database probe.
type HealthStatus interface {
	SetServing(serving bool)
}

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	db       Pinger
	services *Services
	health   HealthStatus
	config   *config.Config
}

// Services holds the service dependencies needed by jobs. Flows is nil when the
// runner lives outside the API process and has no in-memory flows to sweep.
type Services struct {
	Flows service.BookingFlowService
	Files service.FileService
}

// NewJobRunner creates a new job runner. health may be nil.
func NewJobRunner(db Pinger, services *Services, health HealthStatus, cfg *config.Config) *JobRunner {
	return &JobRunner{
		db:       db,
		services: services,
		health:   health,
		config:   cfg,
	}
}

func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

// runWithRecovery wraps job execution with panic recovery
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func(ctx context.Context)) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Job panicked", "job", jobName, "panic", r)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	logger.Debug("Starting job", "job", jobName)
	jobFunc(ctx)
	logger.Debug("Job completed", "job", jobName)
}

// SweepAbandonedFlows drops idle flows and releases uploads that no flow will confirm.
func (jr *JobRunner) SweepAbandonedFlows() {
	jr.runWithRecovery("SweepAbandonedFlows", func(ctx context.Context) {
		if jr.services.Flows != nil {
			abandoned, err := jr.services.Flows.SweepAbandoned(ctx)
			if err != nil {
				logger.Error("Failed to sweep abandoned flows", "error", err)
			} else if abandoned > 0 {
				logger.Info("Swept abandoned booking flows", "count", abandoned)
			}
		}

		released, err := jr.services.Files.ReleaseStale(ctx, staleUploadAge)
		if err != nil {
			logger.Error("Failed to release stale uploads", "error", err)
			return
		}
		if released > 0 {
			logger.Info("Released stale uploads", "count", released)
		}
	})
}

// PurgeDiscardedUploads deletes released uploads from storage.
func (jr *JobRunner) PurgeDiscardedUploads() {
	jr.runWithRecovery("PurgeDiscardedUploads", func(ctx context.Context) {
		purged, err := jr.services.Files.PurgeReleased(ctx, purgeGrace, purgeBatchSize)
		if err != nil {
			logger.Error("Failed to purge discarded uploads", "error", err)
			return
		}
		logger.Info("Purged discarded uploads", "count", purged)
	})
}

// ProbeDatabase pings the database and reports the result as the serving status.
func (jr *JobRunner) ProbeDatabase() {
	jr.runWithRecovery("ProbeDatabase", func(ctx context.Context) {
		ctx, cancel := context.WithTimeout(ctx, probeTimeout)
		defer cancel()

		err := jr.db.PingContext(ctx)
		if err != nil {
			logger.Error("Database probe failed", "error", err)
		}
		if jr.health != nil {
			jr.health.SetServing(err == nil)
		}
	})
}

// RunAll runs every maintenance job once (for manual execution)
func (jr *JobRunner) RunAll() {
	jr.SweepAbandonedFlows()
	jr.PurgeDiscardedUploads()
}
