package handler

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	syncdto "github.com/voxdesk-app/voxdesk/internal/adapter/dto/sync"
	syncuc "github.com/voxdesk-app/voxdesk/internal/usecase/sync"
	"github.com/voxdesk-app/voxdesk/pkg/jobcontext"
)

// Sync exposes the batch sync endpoints.
type Sync struct {
	callSync syncuc.CallSyncService
	leadSync syncuc.LeadSyncService
	status   syncuc.StatusStore
	logger   *zap.Logger
}

// NewSyncHandler creates the sync endpoint handler.
func NewSyncHandler(callSync syncuc.CallSyncService, leadSync syncuc.LeadSyncService, status syncuc.StatusStore, logger *zap.Logger) *Sync {
	return &Sync{
		callSync: callSync,
		leadSync: leadSync,
		status:   status,
		logger:   logger,
	}
}

func toOptions(req *syncdto.BatchRequest) syncuc.Options {
	return syncuc.Options{
		DryRun:    req.DryRun,
		ForceAll:  req.ForceAll,
		Limit:     req.Limit,
		BatchSize: req.BatchSize,
		Days:      req.Days,
	}
}

// SyncCalls godoc
// @Summary      Pull provider calls into the tenant's call history
// @Tags         Sync
// @Accept       json
// @Produce      json
// @Param        request  body      sync.BatchRequest  false  "Batch options"
// @Success      200      {object}  syncuc.CallSyncSummary  "Run summary"
// @Router       /sync/calls [post]
func (h *Sync) SyncCalls(c echo.Context) error {
	tenant, err := tenantID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	req := new(syncdto.BatchRequest)
	if err := bindBatchRequest(c, req); err != nil {
		return HandleError(h.logger, c, err)
	}

	ctx, cancel := jobcontext.JobBegin(c.Request().Context(), syncuc.JobCallSync)
	defer cancel()

	summary, err := h.callSync.SyncCalls(ctx, tenant, toOptions(req))
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, summary)
}

// SyncLeads godoc
// @Summary      Derive and upsert leads from stored call transcripts
// @Tags         Sync
// @Accept       json
// @Produce      json
// @Param        request  body      sync.BatchRequest  false  "Batch options"
// @Success      200      {object}  syncuc.LeadSyncSummary  "Run summary"
// @Router       /sync/leads [post]
func (h *Sync) SyncLeads(c echo.Context) error {
	tenant, err := tenantID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	req := new(syncdto.BatchRequest)
	if err := bindBatchRequest(c, req); err != nil {
		return HandleError(h.logger, c, err)
	}

	ctx, cancel := jobcontext.JobBegin(c.Request().Context(), syncuc.JobLeadSync)
	defer cancel()

	summary, err := h.leadSync.SyncLeads(ctx, tenant, toOptions(req))
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, summary)
}

// Status godoc
// @Summary      Last-run summaries of all batch jobs
// @Tags         Sync
// @Produce      json
// @Success      200  {object}  sync.StatusResponse  "Cached summaries per job"
// @Router       /sync/status [get]
func (h *Sync) Status(c echo.Context) error {
	tenant, err := tenantID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	runs, err := h.status.LastRuns(c.Request().Context(), tenant)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, syncdto.StatusResponse{Jobs: runs})
}
