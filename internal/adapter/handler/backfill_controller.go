package handler

import (
	"context"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	syncdto "github.com/voxdesk-app/voxdesk/internal/adapter/dto/sync"
	syncuc "github.com/voxdesk-app/voxdesk/internal/usecase/sync"
	"github.com/voxdesk-app/voxdesk/pkg/jobcontext"
)

// Backfill exposes the admin repair jobs over stored calls.
type Backfill struct {
	backfills   syncuc.BackfillService
	transcripts syncuc.TranscriptBackfillService
	archive     syncuc.RecordingArchiveService
	logger      *zap.Logger
}

// NewBackfillHandler creates the backfill endpoint handler.
func NewBackfillHandler(
	backfills syncuc.BackfillService,
	transcripts syncuc.TranscriptBackfillService,
	archive syncuc.RecordingArchiveService,
	logger *zap.Logger,
) *Backfill {
	return &Backfill{
		backfills:   backfills,
		transcripts: transcripts,
		archive:     archive,
		logger:      logger,
	}
}

// runBackfill shares the bind/authorize/execute shape of every endpoint.
func (h *Backfill) runBackfill(
	c echo.Context,
	job string,
	run func(ctx context.Context, tenant uuid.UUID, opts syncuc.Options) (*syncuc.BackfillSummary, error),
) error {
	tenant, err := tenantID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	req := new(syncdto.BatchRequest)
	if err := bindBatchRequest(c, req); err != nil {
		return HandleError(h.logger, c, err)
	}

	ctx, cancel := jobcontext.JobBegin(c.Request().Context(), job)
	defer cancel()

	summary, err := run(ctx, tenant, toOptions(req))
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, summary)
}

// Assistants godoc
// @Summary      Attribute calls to assistants by greeting fingerprint
// @Tags         Backfill
// @Accept       json
// @Produce      json
// @Param        request  body      sync.BatchRequest  false  "Batch options"
// @Success      200      {object}  syncuc.BackfillSummary  "Run summary"
// @Router       /admin/backfill/assistants [post]
func (h *Backfill) Assistants(c echo.Context) error {
	return h.runBackfill(c, syncuc.JobAssistantBackfill, h.backfills.BackfillAssistants)
}

// CallerNames godoc
// @Summary      Fill missing caller names from lead phone matches
// @Tags         Backfill
// @Accept       json
// @Produce      json
// @Param        request  body      sync.BatchRequest  false  "Batch options"
// @Success      200      {object}  syncuc.BackfillSummary  "Run summary"
// @Router       /admin/backfill/caller-names [post]
func (h *Backfill) CallerNames(c echo.Context) error {
	return h.runBackfill(c, syncuc.JobCallerNameBackfill, h.backfills.BackfillCallerNames)
}

// ScoreScale godoc
// @Summary      Migrate legacy 1-5 scores to the 1-10 scale
// @Tags         Backfill
// @Accept       json
// @Produce      json
// @Param        request  body      sync.BatchRequest  false  "Batch options"
// @Success      200      {object}  syncuc.BackfillSummary  "Run summary"
// @Router       /admin/backfill/score-scale [post]
func (h *Backfill) ScoreScale(c echo.Context) error {
	return h.runBackfill(c, syncuc.JobScoreScaleBackfill, h.backfills.MigrateScoreScale)
}

// Evaluations godoc
// @Summary      Re-parse evaluations and correct failed-connection scores
// @Tags         Backfill
// @Accept       json
// @Produce      json
// @Param        request  body      sync.BatchRequest  false  "Batch options"
// @Success      200      {object}  syncuc.BackfillSummary  "Run summary"
// @Router       /admin/backfill/evaluations [post]
func (h *Backfill) Evaluations(c echo.Context) error {
	return h.runBackfill(c, syncuc.JobEvaluationBackfill, h.backfills.BackfillEvaluations)
}

// Transcripts godoc
// @Summary      Transcribe recordings of transcript-less calls
// @Tags         Backfill
// @Accept       json
// @Produce      json
// @Param        request  body      sync.BatchRequest  false  "Batch options"
// @Success      200      {object}  syncuc.BackfillSummary  "Run summary"
// @Router       /admin/backfill/transcripts [post]
func (h *Backfill) Transcripts(c echo.Context) error {
	return h.runBackfill(c, syncuc.JobTranscriptBackfill, h.transcripts.BackfillTranscripts)
}

// ArchiveRecordings godoc
// @Summary      Copy provider recordings into the archive bucket
// @Tags         Backfill
// @Accept       json
// @Produce      json
// @Param        request  body      sync.BatchRequest  false  "Batch options"
// @Success      200      {object}  syncuc.BackfillSummary  "Run summary"
// @Router       /admin/backfill/recordings/archive [post]
func (h *Backfill) ArchiveRecordings(c echo.Context) error {
	return h.runBackfill(c, syncuc.JobRecordingArchive, h.archive.ArchiveRecordings)
}
