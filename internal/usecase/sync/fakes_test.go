package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/voxdesk-app/voxdesk/internal/domain/entities"
	"github.com/voxdesk-app/voxdesk/internal/domain/repositories"
	"github.com/voxdesk-app/voxdesk/internal/infrastructure/external/voice"
	"github.com/voxdesk-app/voxdesk/pkg/config"
)

func testConfig() *config.Config {
	return &config.Config{
		Voice: config.VoiceConfig{RetentionDays: 30},
		Sync: config.SyncConfig{
			BatchSize:      20,
			MaxBatchSize:   50,
			BatchDelay:     0,
			DefaultCountry: "TR",
			MatchByName:    true,
			PreviewLimit:   50,
		},
	}
}

func testLogger() *zap.Logger {
	return zap.NewNop()
}

type fakeCallRepo struct {
	calls              []*entities.Call
	failOnExternalID   string
	failUpdateOnCallID uuid.UUID
}

func (r *fakeCallRepo) CreateCall(_ context.Context, call *entities.Call) error {
	if r.failOnExternalID != "" && call.ExternalCallID != nil && *call.ExternalCallID == r.failOnExternalID {
		return fmt.Errorf("simulated insert failure")
	}
	r.calls = append(r.calls, call)
	return nil
}

func (r *fakeCallRepo) GetCallByExternalID(_ context.Context, userID uuid.UUID, externalID string) (*entities.Call, error) {
	for _, c := range r.calls {
		if c.UserID == userID && c.ExternalCallID != nil && *c.ExternalCallID == externalID {
			return c, nil
		}
	}
	return nil, nil
}

func (r *fakeCallRepo) ListCalls(_ context.Context, userID uuid.UUID, filters repositories.CallFilters) ([]*entities.Call, error) {
	var out []*entities.Call
	for _, c := range r.calls {
		if c.UserID != userID {
			continue
		}
		if filters.HasTranscript != nil && *filters.HasTranscript && c.Transcript == nil {
			continue
		}
		if filters.HasRecording != nil && *filters.HasRecording && c.RecordingURL == nil {
			continue
		}
		if filters.MissingTranscript && c.Transcript != nil {
			continue
		}
		if filters.MissingCallerName && c.CallerName != nil {
			continue
		}
		if filters.MissingScore && c.Score != nil {
			continue
		}
		if filters.MissingAssistantID && c.AssistantID != nil {
			continue
		}
		out = append(out, c)
		if filters.Limit > 0 && len(out) >= filters.Limit {
			break
		}
	}
	return out, nil
}

func (r *fakeCallRepo) UpdateCall(_ context.Context, call *entities.Call) error {
	if r.failUpdateOnCallID != uuid.Nil && call.ID == r.failUpdateOnCallID {
		return fmt.Errorf("simulated update failure")
	}
	return nil
}

func (r *fakeCallRepo) CountCalls(_ context.Context, userID uuid.UUID) (int64, error) {
	var n int64
	for _, c := range r.calls {
		if c.UserID == userID {
			n++
		}
	}
	return n, nil
}

type fakeLeadRepo struct {
	leads []*entities.Lead
}

func (r *fakeLeadRepo) CreateLead(_ context.Context, lead *entities.Lead) error {
	r.leads = append(r.leads, lead)
	return nil
}

func (r *fakeLeadRepo) UpdateLead(_ context.Context, _ *entities.Lead) error {
	return nil
}

func (r *fakeLeadRepo) GetLeadByID(_ context.Context, userID, id uuid.UUID) (*entities.Lead, error) {
	for _, l := range r.leads {
		if l.UserID == userID && l.ID == id {
			return l, nil
		}
	}
	return nil, nil
}

func (r *fakeLeadRepo) FindLeadByPhone(_ context.Context, userID uuid.UUID, variants []string) (*entities.Lead, error) {
	for _, l := range r.leads {
		if l.UserID != userID || l.Phone == nil {
			continue
		}
		for _, v := range variants {
			if *l.Phone == v {
				return l, nil
			}
		}
	}
	return nil, nil
}

func (r *fakeLeadRepo) FindLeadByName(_ context.Context, userID uuid.UUID, fullName string) (*entities.Lead, error) {
	for _, l := range r.leads {
		if l.UserID == userID && l.FullName != nil && *l.FullName == fullName {
			return l, nil
		}
	}
	return nil, nil
}

func (r *fakeLeadRepo) ListLeads(_ context.Context, userID uuid.UUID) ([]*entities.Lead, error) {
	var out []*entities.Lead
	for _, l := range r.leads {
		if l.UserID == userID {
			out = append(out, l)
		}
	}
	return out, nil
}

type fakeProvider struct {
	configured bool
	calls      []voice.Call
	err        error
}

func (p *fakeProvider) IsConfigured() bool { return p.configured }

func (p *fakeProvider) ListCalls(_ context.Context, _ time.Time, limit int) ([]voice.Call, error) {
	if p.err != nil {
		return nil, p.err
	}
	if limit > 0 && limit < len(p.calls) {
		return p.calls[:limit], nil
	}
	return p.calls, nil
}

type fakeLocker struct {
	held map[string]bool
}

func newFakeLocker() *fakeLocker {
	return &fakeLocker{held: map[string]bool{}}
}

func (l *fakeLocker) key(tenantID uuid.UUID, job string) string {
	return tenantID.String() + ":" + job
}

func (l *fakeLocker) Acquire(_ context.Context, tenantID uuid.UUID, job string, _ time.Duration) (bool, error) {
	k := l.key(tenantID, job)
	if l.held[k] {
		return false, nil
	}
	l.held[k] = true
	return true, nil
}

func (l *fakeLocker) Release(_ context.Context, tenantID uuid.UUID, job string) error {
	delete(l.held, l.key(tenantID, job))
	return nil
}

type fakeStatusStore struct {
	runs map[string]interface{}
}

func newFakeStatusStore() *fakeStatusStore {
	return &fakeStatusStore{runs: map[string]interface{}{}}
}

func (s *fakeStatusStore) RecordRun(_ context.Context, tenantID uuid.UUID, job string, summary interface{}) error {
	s.runs[tenantID.String()+":"+job] = summary
	return nil
}

func (s *fakeStatusStore) LastRuns(_ context.Context, tenantID uuid.UUID) (map[string]json.RawMessage, error) {
	out := map[string]json.RawMessage{}
	for k, v := range s.runs {
		b, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		out[k] = b
	}
	return out, nil
}

func newTestLead(tenantID uuid.UUID, fullName, phoneNumber string) *entities.Lead {
	lead := entities.NewLead(tenantID)
	if fullName != "" {
		lead.FullName = strPtr(fullName)
	}
	if phoneNumber != "" {
		lead.Phone = strPtr(phoneNumber)
	}
	return lead
}

func strPtr(s string) *string { return &s }

func floatPtr(f float64) *float64 { return &f }

func timePtr(t time.Time) *time.Time { return &t }
