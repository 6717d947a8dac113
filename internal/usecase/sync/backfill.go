package sync

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/voxdesk-app/voxdesk/errors"
	"github.com/voxdesk-app/voxdesk/internal/domain/entities"
	"github.com/voxdesk-app/voxdesk/internal/domain/repositories"
	"github.com/voxdesk-app/voxdesk/internal/usecase/evaluation"
	"github.com/voxdesk-app/voxdesk/pkg/config"
	"github.com/voxdesk-app/voxdesk/pkg/phone"
)

// placeholderAssistantID marks a greeting rule whose real assistant is not
// known yet. Placeholder rules are never applied.
const placeholderAssistantID = "unknown"

// AssistantRule maps an opening-greeting pattern to the assistant that
// uses it.
type AssistantRule struct {
	Pattern     *regexp.Regexp
	AssistantID string
}

// DefaultAssistantRules returns the known greeting fingerprints.
func DefaultAssistantRules() []AssistantRule {
	return []AssistantRule{
		{Pattern: regexp.MustCompile(`(?i)diş\s+kliniği`), AssistantID: "asst_dental_tr"},
		{Pattern: regexp.MustCompile(`(?i)güzellik\s+merkezi`), AssistantID: "asst_beauty_tr"},
		{Pattern: regexp.MustCompile(`(?i)randevu\s+asistanı`), AssistantID: "asst_booking_tr"},
		{Pattern: regexp.MustCompile(`(?i)how can i help you today`), AssistantID: placeholderAssistantID},
	}
}

// failedConnectionReasons mark ended reasons that can never carry a
// meaningful evaluation.
var failedConnectionReasons = []string{"no-answer", "did-not-answer", "voicemail", "busy"}

// BackfillSummary reports one backfill run.
type BackfillSummary struct {
	Updated int             `json:"updated"`
	Skipped int             `json:"skipped"`
	Failed  int             `json:"failed"`
	Total   int             `json:"total"`
	Preview []ChangePreview `json:"preview,omitempty"`
}

// BackfillService runs the one-off repair jobs over stored calls. Every
// job supports dry runs and is safe to re-run.
type BackfillService interface {
	BackfillAssistants(ctx context.Context, tenantID uuid.UUID, opts Options) (*BackfillSummary, error)
	BackfillCallerNames(ctx context.Context, tenantID uuid.UUID, opts Options) (*BackfillSummary, error)
	MigrateScoreScale(ctx context.Context, tenantID uuid.UUID, opts Options) (*BackfillSummary, error)
	BackfillEvaluations(ctx context.Context, tenantID uuid.UUID, opts Options) (*BackfillSummary, error)
}

type backfillService struct {
	callRepo       repositories.CallRepository
	leadRepo       repositories.LeadRepository
	parser         *evaluation.Parser
	assistantRules []AssistantRule
	locks          JobLocker
	status         StatusStore
	cfg            *config.Config
	logger         *zap.Logger
}

// NewBackfillService constructs the backfill jobs.
func NewBackfillService(
	callRepo repositories.CallRepository,
	leadRepo repositories.LeadRepository,
	parser *evaluation.Parser,
	assistantRules []AssistantRule,
	locks JobLocker,
	status StatusStore,
	cfg *config.Config,
	logger *zap.Logger,
) BackfillService {
	if assistantRules == nil {
		assistantRules = DefaultAssistantRules()
	}
	return &backfillService{
		callRepo:       callRepo,
		leadRepo:       leadRepo,
		parser:         parser,
		assistantRules: assistantRules,
		locks:          locks,
		status:         status,
		cfg:            cfg,
		logger:         logger,
	}
}

// run wraps the shared lock, iteration and status-recording mechanics of
// every backfill job. process returns whether the call was updated and
// the preview entry to report.
func (s *backfillService) run(
	ctx context.Context,
	tenantID uuid.UUID,
	job string,
	opts Options,
	filters repositories.CallFilters,
	process func(call *entities.Call) (*ChangePreview, bool),
) (*BackfillSummary, error) {
	if !opts.DryRun {
		ok, err := s.locks.Acquire(ctx, tenantID, job, lockTTL)
		if err != nil {
			return nil, errors.ErrBackfillFailed(err)
		}
		if !ok {
			return nil, errors.ErrSyncInProgress(job)
		}
		defer s.locks.Release(ctx, tenantID, job)
	}

	filters.Limit = opts.Limit
	calls, err := s.callRepo.ListCalls(ctx, tenantID, filters)
	if err != nil {
		return nil, errors.ErrBackfillFailed(err)
	}

	summary := &BackfillSummary{Total: len(calls)}
	groupSize := effectiveBatchSize(opts, s.cfg)

	err = forEachGroup(ctx, len(calls), groupSize, s.cfg.Sync.BatchDelay, func(i int) {
		call := calls[i]
		preview, changed := process(call)
		if !changed {
			summary.Skipped++
			return
		}

		if opts.DryRun {
			summary.Updated++
			if preview != nil {
				summary.Preview = appendPreview(summary.Preview, *preview, s.cfg.Sync.PreviewLimit)
			}
			return
		}

		if updErr := s.callRepo.UpdateCall(ctx, call); updErr != nil {
			summary.Failed++
			s.logger.Error("backfill update failed",
				append(itemFailureFields(ctx, updErr),
					zap.String("job", job),
					zap.String("call_id", call.ID.String()))...)
			return
		}
		summary.Updated++
	})
	if err != nil {
		return summary, errors.ErrBackfillFailed(err)
	}

	s.logger.Info("backfill finished",
		zap.String("job", job),
		zap.String("tenant_id", tenantID.String()),
		zap.Int("updated", summary.Updated),
		zap.Int("skipped", summary.Skipped),
		zap.Int("failed", summary.Failed))

	if !opts.DryRun && s.status != nil {
		if recErr := s.status.RecordRun(ctx, tenantID, job, summary); recErr != nil {
			s.logger.Warn("failed to record backfill status", zap.Error(recErr))
		}
	}
	return summary, nil
}

// BackfillAssistants attributes calls to assistants by matching the
// opening greeting line against the known fingerprints. Placeholder
// rules never apply.
func (s *backfillService) BackfillAssistants(ctx context.Context, tenantID uuid.UUID, opts Options) (*BackfillSummary, error) {
	filters := repositories.CallFilters{}
	if !opts.ForceAll {
		filters.MissingAssistantID = true
	}

	return s.run(ctx, tenantID, JobAssistantBackfill, opts, filters, func(call *entities.Call) (*ChangePreview, bool) {
		if call.Transcript == nil {
			return nil, false
		}
		greeting := firstAssistantLine(*call.Transcript)
		if greeting == "" {
			return nil, false
		}

		for _, rule := range s.assistantRules {
			if rule.AssistantID == "" || rule.AssistantID == placeholderAssistantID {
				continue
			}
			if !rule.Pattern.MatchString(greeting) {
				continue
			}
			if call.AssistantID != nil && *call.AssistantID == rule.AssistantID {
				return nil, false
			}
			assistantID := rule.AssistantID
			call.AssistantID = &assistantID
			return &ChangePreview{
				CallID: call.ID.String(),
				Field:  "assistant_id",
				To:     assistantID,
			}, true
		}
		return nil, false
	})
}

// BackfillCallerNames fills missing caller names from the tenant's leads,
// matched by phone number variants.
func (s *backfillService) BackfillCallerNames(ctx context.Context, tenantID uuid.UUID, opts Options) (*BackfillSummary, error) {
	filters := repositories.CallFilters{MissingCallerName: true}

	return s.run(ctx, tenantID, JobCallerNameBackfill, opts, filters, func(call *entities.Call) (*ChangePreview, bool) {
		if call.CallerPhone == nil || *call.CallerPhone == "" {
			return nil, false
		}

		lead, err := s.leadRepo.FindLeadByPhone(ctx, tenantID, phone.Variants(*call.CallerPhone))
		if err != nil || lead == nil || lead.FullName == nil {
			return nil, false
		}

		call.CallerName = lead.FullName
		if call.LeadID == nil {
			call.LeadID = &lead.ID
		}
		return &ChangePreview{
			CallID: call.ID.String(),
			Field:  "caller_name",
			To:     *lead.FullName,
		}, true
	})
}

// MigrateScoreScale doubles legacy 1-5 scores onto the 1-10 scale. The
// range check is the re-run guard: a doubled score is at least 6 and will
// not match again.
func (s *backfillService) MigrateScoreScale(ctx context.Context, tenantID uuid.UUID, opts Options) (*BackfillSummary, error) {
	return s.run(ctx, tenantID, JobScoreScaleBackfill, opts, repositories.CallFilters{}, func(call *entities.Call) (*ChangePreview, bool) {
		if call.Score == nil {
			return nil, false
		}
		old := *call.Score
		if old < 1 || old > 5 {
			return nil, false
		}

		doubled := old * 2
		call.Score = &doubled
		return &ChangePreview{
			CallID: call.ID.String(),
			Field:  "score",
			From:   fmt.Sprintf("%.1f", old),
			To:     fmt.Sprintf("%.1f", doubled),
		}, true
	})
}

// BackfillEvaluations re-parses stored evaluations for calls missing a
// score, and force-corrects calls whose ended reason shows the connection
// never happened.
func (s *backfillService) BackfillEvaluations(ctx context.Context, tenantID uuid.UUID, opts Options) (*BackfillSummary, error) {
	return s.run(ctx, tenantID, JobEvaluationBackfill, opts, repositories.CallFilters{}, func(call *entities.Call) (*ChangePreview, bool) {
		endedReason := metadataString(call, "ended_reason")

		if isFailedConnection(endedReason) {
			if call.Score != nil && *call.Score == 1 && call.Sentiment == entities.SentimentNegative {
				return nil, false
			}
			oldScore := scoreLabel(call.Score)
			one := float64(1)
			call.Score = &one
			call.Sentiment = entities.SentimentNegative
			return &ChangePreview{
				CallID: call.ID.String(),
				Field:  "score",
				From:   oldScore,
				To:     "1.0 (failed connection)",
			}, true
		}

		if call.Score != nil {
			return nil, false
		}

		result := s.parser.Parse(metadataString(call, "success_evaluation"), endedReason)
		if result.Score == nil {
			return nil, false
		}

		call.Score = result.Score
		call.Sentiment = result.Sentiment
		call.Tags = evaluation.MergeTags(call.Tags, result.Tags)
		if result.Summary != "" {
			es := result.Summary
			call.EvalSummary = &es
		}
		return &ChangePreview{
			CallID: call.ID.String(),
			Field:  "score",
			To:     scoreLabel(result.Score),
		}, true
	})
}

// firstAssistantLine returns the first utterance attributed to the
// assistant, or the opening line when the transcript has no speaker tags.
func firstAssistantLine(transcript string) string {
	for _, line := range strings.Split(transcript, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lowered := strings.ToLower(line)
		for _, prefix := range []string{"ai:", "assistant:", "asistan:", "bot:", "system:"} {
			if strings.HasPrefix(lowered, prefix) {
				return strings.TrimSpace(line[len(prefix):])
			}
		}
	}

	for _, line := range strings.Split(transcript, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			return line
		}
	}
	return ""
}

func isFailedConnection(endedReason string) bool {
	lowered := strings.ToLower(endedReason)
	for _, marker := range failedConnectionReasons {
		if strings.Contains(lowered, marker) {
			return true
		}
	}
	return false
}

func metadataString(call *entities.Call, key string) string {
	if call.Metadata == nil {
		return ""
	}
	if v, ok := call.Metadata[key].(string); ok {
		return v
	}
	return ""
}
