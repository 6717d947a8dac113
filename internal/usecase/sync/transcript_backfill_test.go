package sync

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"

	"github.com/voxdesk-app/voxdesk/errors"
	"github.com/voxdesk-app/voxdesk/internal/domain/entities"
)

type fakeTranscriber struct {
	text  string
	err   error
	calls int
}

func (t *fakeTranscriber) Transcribe(_ context.Context, _ string) (string, error) {
	t.calls++
	if t.err != nil {
		return "", t.err
	}
	return t.text, nil
}

func TestBackfillTranscripts(t *testing.T) {
	tenantID := uuid.New()
	callRepo := &fakeCallRepo{}
	transcriber := &fakeTranscriber{text: "Merhaba, randevu almak istiyorum"}
	svc := NewTranscriptBackfillService(callRepo, transcriber,
		newFakeLocker(), newFakeStatusStore(), testConfig(), testLogger())

	pending := entities.NewCall(tenantID)
	pending.RecordingURL = strPtr("https://storage.vapi.ai/rec-1.wav")
	done := entities.NewCall(tenantID)
	done.RecordingURL = strPtr("https://storage.vapi.ai/rec-2.wav")
	done.Transcript = strPtr("already transcribed")
	callRepo.calls = append(callRepo.calls, pending, done)

	summary, err := svc.BackfillTranscripts(context.Background(), tenantID, Options{})
	if err != nil {
		t.Fatalf("BackfillTranscripts failed: %v", err)
	}
	if summary.Updated != 1 || summary.Failed != 0 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if transcriber.calls != 1 {
		t.Errorf("calls with transcripts must not be resubmitted, got %d submissions", transcriber.calls)
	}
	if pending.Transcript == nil || *pending.Transcript != "Merhaba, randevu almak istiyorum" {
		t.Errorf("transcript not stored: %v", pending.Transcript)
	}
	if *done.Transcript != "already transcribed" {
		t.Errorf("existing transcript overwritten: %q", *done.Transcript)
	}
}

func TestBackfillTranscriptsNotConfigured(t *testing.T) {
	svc := NewTranscriptBackfillService(&fakeCallRepo{}, nil,
		newFakeLocker(), newFakeStatusStore(), testConfig(), testLogger())

	_, err := svc.BackfillTranscripts(context.Background(), uuid.New(), Options{})
	appErr, ok := err.(errors.AppError)
	if !ok || appErr.Code != errors.ErrorCode_TRANSCRIPTION_NOT_CONFIGURED {
		t.Fatalf("expected TRANSCRIPTION_NOT_CONFIGURED, got %v", err)
	}
}

func TestBackfillTranscriptsCountsFailures(t *testing.T) {
	tenantID := uuid.New()
	callRepo := &fakeCallRepo{}
	transcriber := &fakeTranscriber{err: fmt.Errorf("upstream rejected audio")}
	svc := NewTranscriptBackfillService(callRepo, transcriber,
		newFakeLocker(), newFakeStatusStore(), testConfig(), testLogger())

	pending := entities.NewCall(tenantID)
	pending.RecordingURL = strPtr("https://storage.vapi.ai/rec-1.wav")
	callRepo.calls = append(callRepo.calls, pending)

	summary, err := svc.BackfillTranscripts(context.Background(), tenantID, Options{})
	if err != nil {
		t.Fatalf("BackfillTranscripts failed: %v", err)
	}
	if summary.Failed != 1 || summary.Updated != 0 {
		t.Errorf("expected counted failure, got %+v", summary)
	}
	if pending.Transcript != nil {
		t.Errorf("failed call must stay transcript-less, got %v", pending.Transcript)
	}
}
