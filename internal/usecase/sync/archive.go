package sync

import (
	"context"
	"fmt"
	"io"
	"path"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/voxdesk-app/voxdesk/errors"
	"github.com/voxdesk-app/voxdesk/internal/domain/repositories"
	"github.com/voxdesk-app/voxdesk/pkg/config"
)

// ArchiveStore is the slice of the object store recording archival needs.
type ArchiveStore interface {
	UploadRecording(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) (string, error)
	IsArchivedURL(url string) bool
}

// RecordingFetcher streams a provider-hosted recording.
type RecordingFetcher interface {
	FetchRecording(ctx context.Context, recordingURL string) (io.ReadCloser, int64, string, error)
}

// RecordingArchiveService copies provider-hosted recordings into the
// archive bucket before the provider retention window deletes them.
type RecordingArchiveService interface {
	ArchiveRecordings(ctx context.Context, tenantID uuid.UUID, opts Options) (*BackfillSummary, error)
}

type recordingArchiveService struct {
	callRepo repositories.CallRepository
	store    ArchiveStore
	fetcher  RecordingFetcher
	locks    JobLocker
	status   StatusStore
	cfg      *config.Config
	logger   *zap.Logger
}

// NewRecordingArchiveService constructs the archival job. store may be
// nil when no object storage is configured.
func NewRecordingArchiveService(
	callRepo repositories.CallRepository,
	store ArchiveStore,
	fetcher RecordingFetcher,
	locks JobLocker,
	status StatusStore,
	cfg *config.Config,
	logger *zap.Logger,
) RecordingArchiveService {
	return &recordingArchiveService{
		callRepo: callRepo,
		store:    store,
		fetcher:  fetcher,
		locks:    locks,
		status:   status,
		cfg:      cfg,
		logger:   logger,
	}
}

// ArchiveRecordings re-homes each recording reference into the archive
// bucket and rewrites the call to point at the stable copy. References
// already inside the bucket are skipped, so re-runs are safe.
func (s *recordingArchiveService) ArchiveRecordings(ctx context.Context, tenantID uuid.UUID, opts Options) (*BackfillSummary, error) {
	if s.store == nil {
		return nil, errors.ErrStorageNotConfigured()
	}

	if !opts.DryRun {
		ok, err := s.locks.Acquire(ctx, tenantID, JobRecordingArchive, lockTTL)
		if err != nil {
			return nil, errors.ErrBackfillFailed(err)
		}
		if !ok {
			return nil, errors.ErrSyncInProgress(JobRecordingArchive)
		}
		defer s.locks.Release(ctx, tenantID, JobRecordingArchive)
	}

	hasRecording := true
	calls, err := s.callRepo.ListCalls(ctx, tenantID, repositories.CallFilters{
		HasRecording: &hasRecording,
		Limit:        opts.Limit,
	})
	if err != nil {
		return nil, errors.ErrBackfillFailed(err)
	}

	summary := &BackfillSummary{Total: len(calls)}
	groupSize := effectiveBatchSize(opts, s.cfg)

	err = forEachGroup(ctx, len(calls), groupSize, s.cfg.Sync.BatchDelay, func(i int) {
		call := calls[i]
		if call.RecordingURL == nil || *call.RecordingURL == "" {
			summary.Skipped++
			return
		}
		sourceURL := *call.RecordingURL
		if s.store.IsArchivedURL(sourceURL) {
			summary.Skipped++
			return
		}

		objectName := archiveObjectName(tenantID, call.ID, sourceURL)

		if opts.DryRun {
			summary.Updated++
			summary.Preview = appendPreview(summary.Preview, ChangePreview{
				CallID: call.ID.String(),
				Field:  "recording_url",
				From:   sourceURL,
				To:     objectName,
			}, s.cfg.Sync.PreviewLimit)
			return
		}

		body, size, contentType, fetchErr := s.fetcher.FetchRecording(ctx, sourceURL)
		if fetchErr != nil {
			summary.Failed++
			s.logger.Error("recording fetch failed",
				append(itemFailureFields(ctx, fetchErr), zap.String("call_id", call.ID.String()))...)
			return
		}
		archivedURL, uploadErr := s.store.UploadRecording(ctx, objectName, body, size, contentType)
		body.Close()
		if uploadErr != nil {
			summary.Failed++
			s.logger.Error("recording upload failed",
				append(itemFailureFields(ctx, uploadErr), zap.String("call_id", call.ID.String()))...)
			return
		}

		call.RecordingURL = &archivedURL
		if updErr := s.callRepo.UpdateCall(ctx, call); updErr != nil {
			summary.Failed++
			s.logger.Error("recording reference update failed",
				append(itemFailureFields(ctx, updErr), zap.String("call_id", call.ID.String()))...)
			return
		}
		summary.Updated++
	})
	if err != nil {
		return summary, errors.ErrBackfillFailed(err)
	}

	s.logger.Info("recording archival finished",
		zap.String("tenant_id", tenantID.String()),
		zap.Int("archived", summary.Updated),
		zap.Int("skipped", summary.Skipped),
		zap.Int("failed", summary.Failed))

	if !opts.DryRun && s.status != nil {
		if recErr := s.status.RecordRun(ctx, tenantID, JobRecordingArchive, summary); recErr != nil {
			s.logger.Warn("failed to record archival status", zap.Error(recErr))
		}
	}
	return summary, nil
}

// archiveObjectName keys archived recordings by tenant and call so
// re-archiving the same call overwrites rather than duplicates.
func archiveObjectName(tenantID, callID uuid.UUID, sourceURL string) string {
	ext := path.Ext(sourceURL)
	if ext == "" || len(ext) > 5 {
		ext = ".wav"
	}
	return fmt.Sprintf("recordings/%s/%s%s", tenantID, callID, ext)
}
