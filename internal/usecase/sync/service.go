package sync

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/voxdesk-app/voxdesk/pkg/config"
	"github.com/voxdesk-app/voxdesk/pkg/jobcontext"
)

// Job names, used for lock keys and cached run summaries.
const (
	JobCallSync           = "sync_calls"
	JobLeadSync           = "sync_leads"
	JobAssistantBackfill  = "backfill_assistants"
	JobCallerNameBackfill = "backfill_caller_names"
	JobScoreScaleBackfill = "backfill_score_scale"
	JobEvaluationBackfill = "backfill_evaluations"
	JobTranscriptBackfill = "backfill_transcripts"
	JobRecordingArchive   = "archive_recordings"
)

// lockTTL bounds how long a crashed batch job can hold its tenant lock.
const lockTTL = 10 * time.Minute

// Options are the per-request knobs shared by every batch job.
type Options struct {
	DryRun    bool
	ForceAll  bool
	Limit     int
	BatchSize int
	Days      int
}

// ChangePreview is one would-be mutation reported by a dry run.
type ChangePreview struct {
	CallID string `json:"call_id"`
	Field  string `json:"field"`
	From   string `json:"from,omitempty"`
	To     string `json:"to"`
}

// JobLocker serializes batch jobs per tenant. Acquire returns false when
// another run of the same job already holds the lock.
type JobLocker interface {
	Acquire(ctx context.Context, tenantID uuid.UUID, job string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, tenantID uuid.UUID, job string) error
}

// StatusStore keeps the last-run summary of each job for the status
// endpoint. Best effort: a store failure never fails the job itself.
type StatusStore interface {
	RecordRun(ctx context.Context, tenantID uuid.UUID, job string, summary interface{}) error
	LastRuns(ctx context.Context, tenantID uuid.UUID) (map[string]json.RawMessage, error)
}

// itemFailureFields builds the shared log fields for a per-item failure:
// the run identity carried by the job context and whether the failure is
// worth another attempt on a later run.
func itemFailureFields(ctx context.Context, err error) []zap.Field {
	fields := []zap.Field{
		zap.Error(err),
		zap.Bool("retryable", jobcontext.IsRetryableError(err)),
	}
	if id, ok := jobcontext.JobID(ctx); ok {
		fields = append(fields, zap.String("job_id", id.String()))
	}
	if name, ok := jobcontext.JobName(ctx); ok {
		fields = append(fields, zap.String("job_name", name))
	}
	if start, ok := jobcontext.JobStartTime(ctx); ok {
		fields = append(fields, zap.Duration("job_elapsed", time.Since(start)))
	}
	return fields
}

// effectiveBatchSize resolves the group size from request options and
// config, clamped to the configured maximum.
func effectiveBatchSize(opts Options, cfg *config.Config) int {
	size := opts.BatchSize
	if size < 1 {
		size = cfg.Sync.BatchSize
	}
	if size > cfg.Sync.MaxBatchSize {
		size = cfg.Sync.MaxBatchSize
	}
	return size
}

// forEachGroup walks n items in fixed-size groups, pausing between groups
// and stopping between them when the context is cancelled. Items inside a
// group run sequentially; fn must do its own per-item failure accounting.
func forEachGroup(ctx context.Context, n, groupSize int, delay time.Duration, fn func(i int)) error {
	for start := 0; start < n; start += groupSize {
		if err := ctx.Err(); err != nil {
			return err
		}
		end := start + groupSize
		if end > n {
			end = n
		}
		for i := start; i < end; i++ {
			fn(i)
		}
		if end < n && delay > 0 {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	return nil
}

// appendPreview caps dry-run previews so large batches stay readable.
func appendPreview(preview []ChangePreview, entry ChangePreview, limit int) []ChangePreview {
	if len(preview) >= limit {
		return preview
	}
	return append(preview, entry)
}
