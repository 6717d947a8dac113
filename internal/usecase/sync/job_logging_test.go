package sync

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/voxdesk-app/voxdesk/internal/infrastructure/external/voice"
	"github.com/voxdesk-app/voxdesk/internal/usecase/evaluation"
	"github.com/voxdesk-app/voxdesk/pkg/jobcontext"
)

func TestItemFailureLogsCarryJobIdentity(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	logger := zap.New(core)

	repo := &fakeCallRepo{failOnExternalID: "call-1"}
	provider := &fakeProvider{configured: true, calls: []voice.Call{providerCall("call-1")}}

	svc := NewCallSyncService(repo, &fakeLeadRepo{}, provider,
		evaluation.NewParser(evaluation.DefaultConfig()), newFakeLocker(), newFakeStatusStore(), testConfig(), logger)

	ctx, cancel := jobcontext.JobBegin(context.Background(), JobCallSync)
	defer cancel()

	summary, err := svc.SyncCalls(ctx, uuid.New(), Options{})
	if err != nil {
		t.Fatalf("sync failed: %v", err)
	}
	if summary.Failed != 1 {
		t.Fatalf("expected 1 failed call, got %d", summary.Failed)
	}

	entries := logs.FilterMessage("call insert failed").All()
	if len(entries) != 1 {
		t.Fatalf("expected one insert failure log, got %d", len(entries))
	}

	fields := entries[0].ContextMap()
	if _, ok := fields["job_id"]; !ok {
		t.Error("expected job_id field on failure log")
	}
	if got, ok := fields["job_name"]; !ok || got != JobCallSync {
		t.Errorf("expected job_name %q, got %v", JobCallSync, got)
	}
	retryable, ok := fields["retryable"].(bool)
	if !ok {
		t.Fatal("expected retryable field on failure log")
	}
	if retryable {
		t.Error("a plain repository error should not be classified retryable")
	}
}
