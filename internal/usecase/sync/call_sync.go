package sync

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/voxdesk-app/voxdesk/errors"
	"github.com/voxdesk-app/voxdesk/internal/domain/entities"
	"github.com/voxdesk-app/voxdesk/internal/domain/repositories"
	"github.com/voxdesk-app/voxdesk/internal/infrastructure/external/voice"
	"github.com/voxdesk-app/voxdesk/internal/usecase/evaluation"
	"github.com/voxdesk-app/voxdesk/pkg/config"
	"github.com/voxdesk-app/voxdesk/pkg/phone"
)

// CallProvider is the slice of the voice provider client call sync needs.
type CallProvider interface {
	IsConfigured() bool
	ListCalls(ctx context.Context, since time.Time, limit int) ([]voice.Call, error)
}

// CallSyncSummary reports one call sync run.
type CallSyncSummary struct {
	Synced  int             `json:"synced"`
	Skipped int             `json:"skipped"`
	Failed  int             `json:"failed"`
	Total   int             `json:"total"`
	Preview []ChangePreview `json:"preview,omitempty"`
}

// CallSyncService pulls provider call history into the tenant's call table.
type CallSyncService interface {
	SyncCalls(ctx context.Context, tenantID uuid.UUID, opts Options) (*CallSyncSummary, error)
}

type callSyncService struct {
	callRepo repositories.CallRepository
	leadRepo repositories.LeadRepository
	provider CallProvider
	parser   *evaluation.Parser
	locks    JobLocker
	status   StatusStore
	cfg      *config.Config
	logger   *zap.Logger
}

// NewCallSyncService constructs the call sync orchestrator.
func NewCallSyncService(
	callRepo repositories.CallRepository,
	leadRepo repositories.LeadRepository,
	provider CallProvider,
	parser *evaluation.Parser,
	locks JobLocker,
	status StatusStore,
	cfg *config.Config,
	logger *zap.Logger,
) CallSyncService {
	return &callSyncService{
		callRepo: callRepo,
		leadRepo: leadRepo,
		provider: provider,
		parser:   parser,
		locks:    locks,
		status:   status,
		cfg:      cfg,
		logger:   logger,
	}
}

// SyncCalls fetches provider calls inside the lookback window and inserts
// the ones this tenant has not stored yet. Existing rows are never
// mutated, so re-running over the same window is safe.
func (s *callSyncService) SyncCalls(ctx context.Context, tenantID uuid.UUID, opts Options) (*CallSyncSummary, error) {
	if !s.provider.IsConfigured() {
		return nil, errors.ErrVoiceProviderNotConfigured()
	}

	if !opts.DryRun {
		ok, err := s.locks.Acquire(ctx, tenantID, JobCallSync, lockTTL)
		if err != nil {
			return nil, errors.ErrSyncFailed(err)
		}
		if !ok {
			return nil, errors.ErrSyncInProgress(JobCallSync)
		}
		defer s.locks.Release(ctx, tenantID, JobCallSync)
	}

	days := opts.Days
	if days < 1 || days > s.cfg.Voice.RetentionDays {
		days = s.cfg.Voice.RetentionDays
	}
	since := time.Now().AddDate(0, 0, -days)

	providerCalls, err := s.provider.ListCalls(ctx, since, opts.Limit)
	if err != nil {
		if stderrors.Is(err, voice.ErrNotConfigured) {
			return nil, errors.ErrVoiceProviderNotConfigured()
		}
		return nil, errors.ErrVoiceFetchFailed(err)
	}

	summary := &CallSyncSummary{Total: len(providerCalls)}
	groupSize := effectiveBatchSize(opts, s.cfg)

	err = forEachGroup(ctx, len(providerCalls), groupSize, s.cfg.Sync.BatchDelay, func(i int) {
		pc := providerCalls[i]

		existing, lookupErr := s.callRepo.GetCallByExternalID(ctx, tenantID, pc.ID)
		if lookupErr != nil {
			summary.Failed++
			s.logger.Error("call lookup failed",
				append(itemFailureFields(ctx, lookupErr), zap.String("external_call_id", pc.ID))...)
			return
		}
		if existing != nil {
			summary.Skipped++
			return
		}

		call := s.buildCall(ctx, tenantID, pc)

		if opts.DryRun {
			summary.Synced++
			summary.Preview = appendPreview(summary.Preview, ChangePreview{
				CallID: pc.ID,
				Field:  "call",
				To:     fmt.Sprintf("insert (caller=%s, score=%s)", deref(call.CallerName), scoreLabel(call.Score)),
			}, s.cfg.Sync.PreviewLimit)
			return
		}

		if createErr := s.callRepo.CreateCall(ctx, call); createErr != nil {
			summary.Failed++
			s.logger.Error("call insert failed",
				append(itemFailureFields(ctx, createErr), zap.String("external_call_id", pc.ID))...)
			return
		}
		summary.Synced++
	})
	if err != nil {
		return summary, errors.ErrSyncFailed(err)
	}

	s.logger.Info("call sync finished",
		zap.String("tenant_id", tenantID.String()),
		zap.Int("synced", summary.Synced),
		zap.Int("skipped", summary.Skipped),
		zap.Int("failed", summary.Failed))

	if !opts.DryRun && s.status != nil {
		if recErr := s.status.RecordRun(ctx, tenantID, JobCallSync, summary); recErr != nil {
			s.logger.Warn("failed to record sync status", zap.Error(recErr))
		}
	}
	return summary, nil
}

// buildCall maps one provider record onto a new call row, resolving
// duration, caller identity and evaluation along the way.
func (s *callSyncService) buildCall(ctx context.Context, tenantID uuid.UUID, pc voice.Call) *entities.Call {
	call := entities.NewCall(tenantID)
	externalID := pc.ID
	call.ExternalCallID = &externalID

	if pc.Transcript != "" {
		t := pc.Transcript
		call.Transcript = &t
	}
	if sum := firstNonEmpty(pc.Summary, analysisSummary(pc)); sum != "" {
		call.Summary = &sum
	}
	if pc.RecordingURL != "" {
		u := pc.RecordingURL
		call.RecordingURL = &u
	}
	if pc.AssistantID != "" {
		a := pc.AssistantID
		call.AssistantID = &a
	}

	if pc.StartedAt != nil && pc.EndedAt != nil {
		d := int(pc.EndedAt.Sub(*pc.StartedAt).Seconds())
		call.Duration = &d
	}
	if pc.StartedAt != nil {
		call.CallTime = *pc.StartedAt
	} else if !pc.CreatedAt.IsZero() {
		call.CallTime = pc.CreatedAt
	}

	if pc.Customer != nil && pc.Customer.Number != "" {
		if normalized := phone.NormalizeToE164(pc.Customer.Number, s.cfg.Sync.DefaultCountry); normalized != "" {
			call.CallerPhone = &normalized
		} else {
			n := pc.Customer.Number
			call.CallerPhone = &n
		}
	}
	s.resolveCallerName(ctx, tenantID, pc, call)

	rawEval := ""
	endedReason := pc.EndedReason
	if pc.Analysis != nil {
		rawEval = pc.Analysis.SuccessEvaluation
	}
	result := s.parser.Parse(rawEval, endedReason)
	call.Score = result.Score
	call.Tags = result.Tags
	call.Sentiment = result.Sentiment
	if result.Summary != "" {
		es := result.Summary
		call.EvalSummary = &es
	}

	call.Type = resolveCallType(pc.Transcript, pc.Summary)

	call.Metadata = datatypes.JSONMap{
		"org_id":             pc.OrgID,
		"status":             pc.Status,
		"ended_reason":       pc.EndedReason,
		"cost":               pc.Cost,
		"provider_type":      pc.Type,
		"success_evaluation": rawEval,
		"created_at":         pc.CreatedAt,
	}
	if pc.StartedAt != nil {
		call.Metadata["started_at"] = pc.StartedAt
	}
	if pc.EndedAt != nil {
		call.Metadata["ended_at"] = pc.EndedAt
	}
	if len(result.Tags) > 0 {
		call.Metadata["tags"] = result.Tags
	}
	for k, v := range pc.Metadata {
		call.Metadata["source_"+k] = v
	}
	return call
}

// resolveCallerName fills the caller name by preference: provider-supplied
// name, then a lead referenced from call metadata, then a phone variant
// match against the tenant's leads.
func (s *callSyncService) resolveCallerName(ctx context.Context, tenantID uuid.UUID, pc voice.Call, call *entities.Call) {
	if pc.Customer != nil && strings.TrimSpace(pc.Customer.Name) != "" {
		name := strings.TrimSpace(pc.Customer.Name)
		call.CallerName = &name
		return
	}

	if ref, ok := pc.Metadata["leadId"].(string); ok && ref != "" {
		if leadID, parseErr := uuid.Parse(ref); parseErr == nil {
			if lead, findErr := s.leadRepo.GetLeadByID(ctx, tenantID, leadID); findErr == nil && lead != nil {
				call.LeadID = &lead.ID
				if lead.FullName != nil {
					call.CallerName = lead.FullName
				}
				return
			}
		}
	}

	if call.CallerPhone == nil {
		return
	}
	variants := phone.Variants(*call.CallerPhone)
	lead, findErr := s.leadRepo.FindLeadByPhone(ctx, tenantID, variants)
	if findErr != nil || lead == nil {
		return
	}
	call.LeadID = &lead.ID
	if lead.FullName != nil {
		call.CallerName = lead.FullName
	}
}

// resolveCallType classifies a call from its text. Coarse by design: the
// lead extractor re-derives intent with the full dictionaries later.
func resolveCallType(transcript, summary string) string {
	lowered := strings.ToLower(transcript + " " + summary)
	switch {
	case strings.Contains(lowered, "iptal") || strings.Contains(lowered, "cancel"):
		return entities.CallTypeCancellation
	case strings.Contains(lowered, "randevu") || strings.Contains(lowered, "appointment"):
		return entities.CallTypeAppointment
	case strings.Contains(lowered, "tekrar ara") || strings.Contains(lowered, "follow up"):
		return entities.CallTypeFollowUp
	case strings.TrimSpace(lowered) != "":
		return entities.CallTypeInquiry
	default:
		return entities.CallTypeOther
	}
}

func analysisSummary(pc voice.Call) string {
	if pc.Analysis == nil {
		return ""
	}
	return pc.Analysis.Summary
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func scoreLabel(score *float64) string {
	if score == nil {
		return "null"
	}
	return fmt.Sprintf("%.1f", *score)
}
