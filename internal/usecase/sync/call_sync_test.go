package sync

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/voxdesk-app/voxdesk/errors"
	"github.com/voxdesk-app/voxdesk/internal/infrastructure/external/voice"
	"github.com/voxdesk-app/voxdesk/internal/usecase/evaluation"
)

func newCallSyncFixture(provider *fakeProvider) (CallSyncService, *fakeCallRepo, *fakeLeadRepo) {
	callRepo := &fakeCallRepo{}
	leadRepo := &fakeLeadRepo{}
	svc := NewCallSyncService(
		callRepo,
		leadRepo,
		provider,
		evaluation.NewParser(evaluation.DefaultConfig()),
		newFakeLocker(),
		newFakeStatusStore(),
		testConfig(),
		testLogger(),
	)
	return svc, callRepo, leadRepo
}

func providerCall(id string) voice.Call {
	started := time.Now().Add(-10 * time.Minute)
	ended := started.Add(95 * time.Second)
	return voice.Call{
		ID:          id,
		OrgID:       "org-1",
		Type:        "inboundPhoneCall",
		Status:      "ended",
		EndedReason: "customer-ended-call",
		StartedAt:   &started,
		EndedAt:     &ended,
		CreatedAt:   started,
		Transcript:  "AI: Merhaba\nUser: Randevu almak istiyorum",
		Summary:     "Müşteri randevu talep etti",
		Customer:    &voice.Customer{Number: "0532 123 45 67"},
		Analysis:    &voice.Analysis{SuccessEvaluation: "8/10 görüşme başarılı geçti"},
	}
}

func TestSyncCallsInsertsNewCalls(t *testing.T) {
	tenantID := uuid.New()
	provider := &fakeProvider{configured: true, calls: []voice.Call{providerCall("call-1"), providerCall("call-2")}}
	svc, callRepo, _ := newCallSyncFixture(provider)

	summary, err := svc.SyncCalls(context.Background(), tenantID, Options{})
	if err != nil {
		t.Fatalf("SyncCalls failed: %v", err)
	}
	if summary.Synced != 2 || summary.Skipped != 0 || summary.Failed != 0 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if len(callRepo.calls) != 2 {
		t.Fatalf("expected 2 stored calls, got %d", len(callRepo.calls))
	}

	call := callRepo.calls[0]
	if call.ExternalCallID == nil || *call.ExternalCallID != "call-1" {
		t.Errorf("external id not stored: %+v", call.ExternalCallID)
	}
	if call.CallerPhone == nil || *call.CallerPhone != "+905321234567" {
		t.Errorf("expected normalized caller phone, got %v", call.CallerPhone)
	}
	if call.Score == nil || *call.Score != 8 {
		t.Errorf("expected score 8 from evaluation, got %v", call.Score)
	}
	if call.Duration == nil || *call.Duration != 95 {
		t.Errorf("expected duration 95s, got %v", call.Duration)
	}
	if call.Type != "appointment" {
		t.Errorf("expected appointment type, got %q", call.Type)
	}
	if call.Metadata["ended_reason"] != "customer-ended-call" {
		t.Errorf("ended reason not preserved in metadata: %v", call.Metadata["ended_reason"])
	}
}

func TestSyncCallsDedupIdempotent(t *testing.T) {
	tenantID := uuid.New()
	provider := &fakeProvider{configured: true, calls: []voice.Call{providerCall("call-1"), providerCall("call-2")}}
	svc, callRepo, _ := newCallSyncFixture(provider)

	if _, err := svc.SyncCalls(context.Background(), tenantID, Options{}); err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	second, err := svc.SyncCalls(context.Background(), tenantID, Options{})
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}

	if second.Synced != 0 || second.Skipped != 2 {
		t.Errorf("expected full skip on second run, got %+v", second)
	}
	if len(callRepo.calls) != 2 {
		t.Errorf("duplicate rows after second run: %d", len(callRepo.calls))
	}
}

func TestSyncCallsNotConfigured(t *testing.T) {
	svc, _, _ := newCallSyncFixture(&fakeProvider{configured: false})

	_, err := svc.SyncCalls(context.Background(), uuid.New(), Options{})
	appErr, ok := err.(errors.AppError)
	if !ok {
		t.Fatalf("expected AppError, got %T", err)
	}
	if appErr.Code != errors.ErrorCode_VOICE_NOT_CONFIGURED {
		t.Errorf("expected VOICE_NOT_CONFIGURED, got %v", appErr.Code)
	}
}

func TestSyncCallsDryRunWritesNothing(t *testing.T) {
	tenantID := uuid.New()
	provider := &fakeProvider{configured: true, calls: []voice.Call{providerCall("call-1")}}
	svc, callRepo, _ := newCallSyncFixture(provider)

	summary, err := svc.SyncCalls(context.Background(), tenantID, Options{DryRun: true})
	if err != nil {
		t.Fatalf("dry run failed: %v", err)
	}
	if summary.Synced != 1 {
		t.Errorf("dry run should count would-be inserts, got %+v", summary)
	}
	if len(summary.Preview) != 1 {
		t.Errorf("expected 1 preview entry, got %d", len(summary.Preview))
	}
	if len(callRepo.calls) != 0 {
		t.Errorf("dry run must not persist, found %d rows", len(callRepo.calls))
	}
}

func TestSyncCallsLockConflict(t *testing.T) {
	tenantID := uuid.New()
	provider := &fakeProvider{configured: true}
	callRepo := &fakeCallRepo{}
	leadRepo := &fakeLeadRepo{}
	locker := newFakeLocker()
	locker.held[locker.key(tenantID, JobCallSync)] = true

	svc := NewCallSyncService(callRepo, leadRepo, provider,
		evaluation.NewParser(evaluation.DefaultConfig()),
		locker, newFakeStatusStore(), testConfig(), testLogger())

	_, err := svc.SyncCalls(context.Background(), tenantID, Options{})
	appErr, ok := err.(errors.AppError)
	if !ok || appErr.Code != errors.ErrorCode_SYNC_IN_PROGRESS {
		t.Fatalf("expected SYNC_IN_PROGRESS, got %v", err)
	}
}

func TestSyncCallsResolvesCallerNameFromLeadPhone(t *testing.T) {
	tenantID := uuid.New()
	pc := providerCall("call-1")
	provider := &fakeProvider{configured: true, calls: []voice.Call{pc}}
	svc, callRepo, leadRepo := newCallSyncFixture(provider)

	leadRepo.leads = append(leadRepo.leads, newTestLead(tenantID, "Ahmet Yılmaz", "+905321234567"))

	if _, err := svc.SyncCalls(context.Background(), tenantID, Options{}); err != nil {
		t.Fatalf("SyncCalls failed: %v", err)
	}

	call := callRepo.calls[0]
	if call.CallerName == nil || *call.CallerName != "Ahmet Yılmaz" {
		t.Errorf("expected caller name resolved from lead, got %v", call.CallerName)
	}
	if call.LeadID == nil {
		t.Error("expected call linked to matched lead")
	}
}

func TestSyncCallsPerItemFailureDoesNotAbort(t *testing.T) {
	tenantID := uuid.New()
	provider := &fakeProvider{configured: true, calls: []voice.Call{providerCall("call-1"), providerCall("call-2"), providerCall("call-3")}}
	callRepo := &fakeCallRepo{failOnExternalID: "call-2"}
	svc := NewCallSyncService(callRepo, &fakeLeadRepo{}, provider,
		evaluation.NewParser(evaluation.DefaultConfig()),
		newFakeLocker(), newFakeStatusStore(), testConfig(), testLogger())

	summary, err := svc.SyncCalls(context.Background(), tenantID, Options{})
	if err != nil {
		t.Fatalf("SyncCalls failed: %v", err)
	}
	if summary.Synced != 2 || summary.Failed != 1 {
		t.Errorf("expected 2 synced 1 failed, got %+v", summary)
	}
}
