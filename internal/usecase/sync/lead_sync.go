package sync

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/voxdesk-app/voxdesk/errors"
	"github.com/voxdesk-app/voxdesk/internal/domain/entities"
	"github.com/voxdesk-app/voxdesk/internal/domain/repositories"
	"github.com/voxdesk-app/voxdesk/internal/usecase/leadgen"
	"github.com/voxdesk-app/voxdesk/pkg/config"
	"github.com/voxdesk-app/voxdesk/pkg/phone"
)

// LeadSyncSummary reports one lead sync run.
type LeadSyncSummary struct {
	Created int             `json:"created"`
	Updated int             `json:"updated"`
	Skipped int             `json:"skipped"`
	Failed  int             `json:"failed"`
	Total   int             `json:"total"`
	Preview []ChangePreview `json:"preview,omitempty"`
}

// LeadSyncService derives and upserts leads from stored call transcripts.
type LeadSyncService interface {
	SyncLeads(ctx context.Context, tenantID uuid.UUID, opts Options) (*LeadSyncSummary, error)
}

type leadSyncService struct {
	callRepo  repositories.CallRepository
	leadRepo  repositories.LeadRepository
	extractor *leadgen.Extractor
	locks     JobLocker
	status    StatusStore
	cfg       *config.Config
	logger    *zap.Logger
}

// NewLeadSyncService constructs the lead sync orchestrator.
func NewLeadSyncService(
	callRepo repositories.CallRepository,
	leadRepo repositories.LeadRepository,
	extractor *leadgen.Extractor,
	locks JobLocker,
	status StatusStore,
	cfg *config.Config,
	logger *zap.Logger,
) LeadSyncService {
	return &leadSyncService{
		callRepo:  callRepo,
		leadRepo:  leadRepo,
		extractor: extractor,
		locks:     locks,
		status:    status,
		cfg:       cfg,
		logger:    logger,
	}
}

// SyncLeads walks the tenant's transcript-bearing calls, extracts lead
// identity from each, and updates the matching lead or creates a new one.
// Phone match comes first; exact-name fallback can be disabled in config.
func (s *leadSyncService) SyncLeads(ctx context.Context, tenantID uuid.UUID, opts Options) (*LeadSyncSummary, error) {
	if !opts.DryRun {
		ok, err := s.locks.Acquire(ctx, tenantID, JobLeadSync, lockTTL)
		if err != nil {
			return nil, errors.ErrSyncFailed(err)
		}
		if !ok {
			return nil, errors.ErrSyncInProgress(JobLeadSync)
		}
		defer s.locks.Release(ctx, tenantID, JobLeadSync)
	}

	hasTranscript := true
	calls, err := s.callRepo.ListCalls(ctx, tenantID, repositories.CallFilters{
		HasTranscript: &hasTranscript,
		Limit:         opts.Limit,
	})
	if err != nil {
		return nil, errors.ErrSyncFailed(err)
	}

	summary := &LeadSyncSummary{Total: len(calls)}
	groupSize := effectiveBatchSize(opts, s.cfg)

	err = forEachGroup(ctx, len(calls), groupSize, s.cfg.Sync.BatchDelay, func(i int) {
		s.processCall(ctx, tenantID, calls[i], opts, summary)
	})
	if err != nil {
		return summary, errors.ErrSyncFailed(err)
	}

	s.logger.Info("lead sync finished",
		zap.String("tenant_id", tenantID.String()),
		zap.Int("created", summary.Created),
		zap.Int("updated", summary.Updated),
		zap.Int("skipped", summary.Skipped),
		zap.Int("failed", summary.Failed))

	if !opts.DryRun && s.status != nil {
		if recErr := s.status.RecordRun(ctx, tenantID, JobLeadSync, summary); recErr != nil {
			s.logger.Warn("failed to record sync status", zap.Error(recErr))
		}
	}
	return summary, nil
}

func (s *leadSyncService) processCall(ctx context.Context, tenantID uuid.UUID, call *entities.Call, opts Options, summary *LeadSyncSummary) {
	extracted := s.extractor.Extract(
		deref(call.Transcript),
		deref(call.Summary),
		call.Sentiment,
		call.Type,
		deref(call.CallerPhone),
	)

	if extracted.FullName == "" && extracted.Phone == "" {
		summary.Skipped++
		return
	}

	normalizedPhone := ""
	if extracted.Phone != "" {
		normalizedPhone = phone.NormalizeToE164(extracted.Phone, s.cfg.Sync.DefaultCountry)
		if normalizedPhone == "" {
			normalizedPhone = extracted.Phone
		}
	}

	existing, findErr := s.findLead(ctx, tenantID, extracted.FullName, normalizedPhone)
	if findErr != nil {
		summary.Failed++
		s.logger.Error("lead lookup failed",
			append(itemFailureFields(ctx, findErr), zap.String("call_id", call.ID.String()))...)
		return
	}

	if existing != nil {
		if opts.DryRun {
			summary.Updated++
			summary.Preview = appendPreview(summary.Preview, ChangePreview{
				CallID: call.ID.String(),
				Field:  "lead",
				From:   existing.Status,
				To:     fmt.Sprintf("update %s (status=%s)", existing.ID, leadgen.DetermineStatus(extracted)),
			}, s.cfg.Sync.PreviewLimit)
			return
		}
		if updErr := s.updateLead(ctx, existing, call, extracted, normalizedPhone); updErr != nil {
			summary.Failed++
			s.logger.Error("lead update failed",
				append(itemFailureFields(ctx, updErr), zap.String("lead_id", existing.ID.String()))...)
			return
		}
		summary.Updated++
		return
	}

	if opts.DryRun {
		summary.Created++
		summary.Preview = appendPreview(summary.Preview, ChangePreview{
			CallID: call.ID.String(),
			Field:  "lead",
			To:     fmt.Sprintf("create (name=%s, phone=%s)", extracted.FullName, normalizedPhone),
		}, s.cfg.Sync.PreviewLimit)
		return
	}

	lead := s.buildLead(tenantID, call, extracted, normalizedPhone)
	if createErr := s.leadRepo.CreateLead(ctx, lead); createErr != nil {
		summary.Failed++
		s.logger.Error("lead insert failed",
			append(itemFailureFields(ctx, createErr), zap.String("call_id", call.ID.String()))...)
		return
	}
	summary.Created++
}

// findLead matches by phone variants first, then by exact full name when
// the fallback is enabled. Name matching is a weaker guarantee and only
// runs when no phone match exists.
func (s *leadSyncService) findLead(ctx context.Context, tenantID uuid.UUID, fullName, normalizedPhone string) (*entities.Lead, error) {
	if normalizedPhone != "" {
		lead, err := s.leadRepo.FindLeadByPhone(ctx, tenantID, phone.Variants(normalizedPhone))
		if err != nil {
			return nil, err
		}
		if lead != nil {
			return lead, nil
		}
	}
	if s.cfg.Sync.MatchByName && fullName != "" {
		return s.leadRepo.FindLeadByName(ctx, tenantID, fullName)
	}
	return nil, nil
}

func (s *leadSyncService) updateLead(ctx context.Context, lead *entities.Lead, call *entities.Call, extracted leadgen.Extracted, normalizedPhone string) error {
	now := time.Now()
	callTime := call.CallTime

	lead.LastContactDate = &callTime
	lead.NextContactDate = &now
	lead.Status = leadgen.DetermineStatus(extracted)
	lead.Notes = leadNotes(call, extracted)

	if lead.FullName == nil && extracted.FullName != "" {
		name := extracted.FullName
		lead.FullName = &name
	}
	if lead.Phone == nil && normalizedPhone != "" {
		p := normalizedPhone
		lead.Phone = &p
	}
	if extracted.Treatment != "" {
		lead.Treatment = extracted.Treatment
	}

	return s.leadRepo.UpdateLead(ctx, lead)
}

func (s *leadSyncService) buildLead(tenantID uuid.UUID, call *entities.Call, extracted leadgen.Extracted, normalizedPhone string) *entities.Lead {
	now := time.Now()
	callTime := call.CallTime

	lead := entities.NewLead(tenantID)
	if extracted.FullName != "" {
		name := extracted.FullName
		lead.FullName = &name
	}
	if normalizedPhone != "" {
		p := normalizedPhone
		lead.Phone = &p
	}
	lead.Treatment = extracted.Treatment
	lead.Notes = leadNotes(call, extracted)
	lead.Status = leadgen.DetermineStatus(extracted)
	lead.Priority = leadgen.DeterminePriority(extracted)
	lead.ContactAttempts = 1
	lead.FirstContactDate = &callTime
	lead.LastContactDate = &callTime
	lead.NextContactDate = &now
	return lead
}

// leadNotes prefers the call summary over the extracted interest. Replace
// semantics keep repeated runs from stacking duplicate notes.
func leadNotes(call *entities.Call, extracted leadgen.Extracted) string {
	if call.Summary != nil && *call.Summary != "" {
		return *call.Summary
	}
	return extracted.Treatment
}
