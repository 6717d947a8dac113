package sync

import (
	"context"
	"fmt"

	aai "github.com/AssemblyAI/assemblyai-go-sdk"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/voxdesk-app/voxdesk/errors"
	"github.com/voxdesk-app/voxdesk/internal/domain/repositories"
	"github.com/voxdesk-app/voxdesk/pkg/config"
)

// Transcriber turns a hosted audio URL into transcript text.
type Transcriber interface {
	Transcribe(ctx context.Context, audioURL string) (string, error)
}

// assemblyTranscriber adapts the official AssemblyAI SDK. TranscribeFromURL
// polls until the job completes, so one call is one finished transcript.
type assemblyTranscriber struct {
	client *aai.Client
}

// NewAssemblyTranscriber wraps an AssemblyAI API key into a Transcriber.
func NewAssemblyTranscriber(apiKey string) Transcriber {
	return &assemblyTranscriber{client: aai.NewClient(apiKey)}
}

func (t *assemblyTranscriber) Transcribe(ctx context.Context, audioURL string) (string, error) {
	params := &aai.TranscriptOptionalParams{
		LanguageDetection: aai.Bool(true),
		SpeakerLabels:     aai.Bool(true),
	}
	transcript, err := t.client.Transcripts.TranscribeFromURL(ctx, audioURL, params)
	if err != nil {
		return "", err
	}
	if transcript.Status == aai.TranscriptStatusError {
		return "", fmt.Errorf("transcription failed: %s", aai.ToString(transcript.Error))
	}
	return aai.ToString(transcript.Text), nil
}

// TranscriptBackfillService fills missing transcripts for calls that still
// have a recording to transcribe from.
type TranscriptBackfillService interface {
	BackfillTranscripts(ctx context.Context, tenantID uuid.UUID, opts Options) (*BackfillSummary, error)
}

type transcriptBackfillService struct {
	callRepo    repositories.CallRepository
	transcriber Transcriber
	locks       JobLocker
	status      StatusStore
	cfg         *config.Config
	logger      *zap.Logger
}

// NewTranscriptBackfillService constructs the transcript backfill job.
// transcriber may be nil when no transcription key is configured.
func NewTranscriptBackfillService(
	callRepo repositories.CallRepository,
	transcriber Transcriber,
	locks JobLocker,
	status StatusStore,
	cfg *config.Config,
	logger *zap.Logger,
) TranscriptBackfillService {
	return &transcriptBackfillService{
		callRepo:    callRepo,
		transcriber: transcriber,
		locks:       locks,
		status:      status,
		cfg:         cfg,
		logger:      logger,
	}
}

// BackfillTranscripts submits recordings of transcript-less calls for
// transcription and stores the returned text. Calls that already carry a
// transcript are never touched.
func (s *transcriptBackfillService) BackfillTranscripts(ctx context.Context, tenantID uuid.UUID, opts Options) (*BackfillSummary, error) {
	if s.transcriber == nil {
		return nil, errors.ErrTranscriptionNotConfigured()
	}

	if !opts.DryRun {
		ok, err := s.locks.Acquire(ctx, tenantID, JobTranscriptBackfill, lockTTL)
		if err != nil {
			return nil, errors.ErrBackfillFailed(err)
		}
		if !ok {
			return nil, errors.ErrSyncInProgress(JobTranscriptBackfill)
		}
		defer s.locks.Release(ctx, tenantID, JobTranscriptBackfill)
	}

	hasRecording := true
	calls, err := s.callRepo.ListCalls(ctx, tenantID, repositories.CallFilters{
		HasRecording:      &hasRecording,
		MissingTranscript: true,
		Limit:             opts.Limit,
	})
	if err != nil {
		return nil, errors.ErrBackfillFailed(err)
	}

	summary := &BackfillSummary{Total: len(calls)}
	groupSize := effectiveBatchSize(opts, s.cfg)

	err = forEachGroup(ctx, len(calls), groupSize, s.cfg.Sync.BatchDelay, func(i int) {
		call := calls[i]
		if call.RecordingURL == nil || *call.RecordingURL == "" || call.Transcript != nil {
			summary.Skipped++
			return
		}

		if opts.DryRun {
			summary.Updated++
			summary.Preview = appendPreview(summary.Preview, ChangePreview{
				CallID: call.ID.String(),
				Field:  "transcript",
				To:     fmt.Sprintf("transcribe %s", *call.RecordingURL),
			}, s.cfg.Sync.PreviewLimit)
			return
		}

		text, trErr := s.transcriber.Transcribe(ctx, *call.RecordingURL)
		if trErr != nil {
			summary.Failed++
			s.logger.Error("transcription failed",
				append(itemFailureFields(ctx, trErr), zap.String("call_id", call.ID.String()))...)
			return
		}
		if text == "" {
			summary.Skipped++
			return
		}

		call.Transcript = &text
		if updErr := s.callRepo.UpdateCall(ctx, call); updErr != nil {
			summary.Failed++
			s.logger.Error("transcript update failed",
				append(itemFailureFields(ctx, updErr), zap.String("call_id", call.ID.String()))...)
			return
		}
		summary.Updated++
	})
	if err != nil {
		return summary, errors.ErrBackfillFailed(err)
	}

	s.logger.Info("transcript backfill finished",
		zap.String("tenant_id", tenantID.String()),
		zap.Int("updated", summary.Updated),
		zap.Int("skipped", summary.Skipped),
		zap.Int("failed", summary.Failed))

	if !opts.DryRun && s.status != nil {
		if recErr := s.status.RecordRun(ctx, tenantID, JobTranscriptBackfill, summary); recErr != nil {
			s.logger.Warn("failed to record backfill status", zap.Error(recErr))
		}
	}
	return summary, nil
}
