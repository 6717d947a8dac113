package sync

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/voxdesk-app/voxdesk/internal/domain/entities"
	"github.com/voxdesk-app/voxdesk/internal/usecase/evaluation"
)

func newBackfillFixture() (BackfillService, *fakeCallRepo, *fakeLeadRepo) {
	callRepo := &fakeCallRepo{}
	leadRepo := &fakeLeadRepo{}
	svc := NewBackfillService(
		callRepo,
		leadRepo,
		evaluation.NewParser(evaluation.DefaultConfig()),
		nil,
		newFakeLocker(),
		newFakeStatusStore(),
		testConfig(),
		testLogger(),
	)
	return svc, callRepo, leadRepo
}

func TestMigrateScoreScaleAppliedExactlyOnce(t *testing.T) {
	tenantID := uuid.New()
	svc, callRepo, _ := newBackfillFixture()

	legacy := entities.NewCall(tenantID)
	legacy.Score = floatPtr(3)
	modern := entities.NewCall(tenantID)
	modern.Score = floatPtr(7)
	unscored := entities.NewCall(tenantID)
	callRepo.calls = append(callRepo.calls, legacy, modern, unscored)

	first, err := svc.MigrateScoreScale(context.Background(), tenantID, Options{})
	if err != nil {
		t.Fatalf("first pass failed: %v", err)
	}
	if first.Updated != 1 || first.Skipped != 2 {
		t.Fatalf("unexpected first pass: %+v", first)
	}
	if *legacy.Score != 6 {
		t.Errorf("expected doubled score 6, got %v", *legacy.Score)
	}
	if *modern.Score != 7 {
		t.Errorf("score 7 must be untouched, got %v", *modern.Score)
	}

	second, err := svc.MigrateScoreScale(context.Background(), tenantID, Options{})
	if err != nil {
		t.Fatalf("second pass failed: %v", err)
	}
	if second.Updated != 0 {
		t.Errorf("second pass must be a no-op, got %+v", second)
	}
	if *legacy.Score != 6 {
		t.Errorf("score doubled twice: %v", *legacy.Score)
	}
}

func TestMigrateScoreScaleDryRun(t *testing.T) {
	tenantID := uuid.New()
	svc, callRepo, _ := newBackfillFixture()

	legacy := entities.NewCall(tenantID)
	legacy.Score = floatPtr(4)
	callRepo.calls = append(callRepo.calls, legacy)

	summary, err := svc.MigrateScoreScale(context.Background(), tenantID, Options{DryRun: true})
	if err != nil {
		t.Fatalf("dry run failed: %v", err)
	}
	if summary.Updated != 1 || len(summary.Preview) != 1 {
		t.Errorf("expected counted preview, got %+v", summary)
	}
	if summary.Preview[0].From != "4.0" || summary.Preview[0].To != "8.0" {
		t.Errorf("unexpected preview: %+v", summary.Preview[0])
	}
}

func TestBackfillEvaluationsReparsesMissingScores(t *testing.T) {
	tenantID := uuid.New()
	svc, callRepo, _ := newBackfillFixture()

	call := entities.NewCall(tenantID)
	call.Metadata = datatypes.JSONMap{
		"success_evaluation": "Görüşme 8/10 başarılı geçti",
		"ended_reason":       "customer-ended-call",
	}
	callRepo.calls = append(callRepo.calls, call)

	summary, err := svc.BackfillEvaluations(context.Background(), tenantID, Options{})
	if err != nil {
		t.Fatalf("BackfillEvaluations failed: %v", err)
	}
	if summary.Updated != 1 {
		t.Fatalf("expected 1 update, got %+v", summary)
	}
	if call.Score == nil || *call.Score != 8 {
		t.Errorf("expected re-parsed score 8, got %v", call.Score)
	}
	if call.Sentiment != entities.SentimentPositive {
		t.Errorf("expected positive sentiment, got %q", call.Sentiment)
	}
}

func TestBackfillEvaluationsForceCorrectsFailedConnections(t *testing.T) {
	tenantID := uuid.New()
	svc, callRepo, _ := newBackfillFixture()

	call := entities.NewCall(tenantID)
	call.Score = floatPtr(5)
	call.Metadata = datatypes.JSONMap{"ended_reason": "customer-did-not-answer"}
	callRepo.calls = append(callRepo.calls, call)

	first, err := svc.BackfillEvaluations(context.Background(), tenantID, Options{})
	if err != nil {
		t.Fatalf("first pass failed: %v", err)
	}
	if first.Updated != 1 {
		t.Fatalf("expected force correction, got %+v", first)
	}
	if call.Score == nil || *call.Score != 1 {
		t.Errorf("expected forced score 1, got %v", call.Score)
	}
	if call.Sentiment != entities.SentimentNegative {
		t.Errorf("expected negative sentiment, got %q", call.Sentiment)
	}

	second, err := svc.BackfillEvaluations(context.Background(), tenantID, Options{})
	if err != nil {
		t.Fatalf("second pass failed: %v", err)
	}
	if second.Updated != 0 || second.Skipped != 1 {
		t.Errorf("second pass must skip corrected call, got %+v", second)
	}
}

func TestBackfillAssistantsByGreeting(t *testing.T) {
	tenantID := uuid.New()
	svc, callRepo, _ := newBackfillFixture()

	dental := entities.NewCall(tenantID)
	dental.Transcript = strPtr("AI: Merhaba, Özel Diş Kliniği'ne hoş geldiniz\nUser: Merhaba")
	placeholder := entities.NewCall(tenantID)
	placeholder.Transcript = strPtr("AI: Hello! How can I help you today?\nUser: Hi")
	noTranscript := entities.NewCall(tenantID)
	callRepo.calls = append(callRepo.calls, dental, placeholder, noTranscript)

	summary, err := svc.BackfillAssistants(context.Background(), tenantID, Options{})
	if err != nil {
		t.Fatalf("BackfillAssistants failed: %v", err)
	}
	if summary.Updated != 1 || summary.Skipped != 2 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if dental.AssistantID == nil || *dental.AssistantID != "asst_dental_tr" {
		t.Errorf("expected dental assistant match, got %v", dental.AssistantID)
	}
	if placeholder.AssistantID != nil {
		t.Errorf("placeholder rule must never apply, got %v", placeholder.AssistantID)
	}
}

func TestBackfillCallerNamesByPhoneVariants(t *testing.T) {
	tenantID := uuid.New()
	svc, callRepo, leadRepo := newBackfillFixture()

	// Lead stored in national format, call in E.164: variant matching
	// must bridge the two.
	leadRepo.leads = append(leadRepo.leads, newTestLead(tenantID, "Zeynep Demir", "05321234567"))

	call := entities.NewCall(tenantID)
	call.CallerPhone = strPtr("+905321234567")
	noPhone := entities.NewCall(tenantID)
	callRepo.calls = append(callRepo.calls, call, noPhone)

	summary, err := svc.BackfillCallerNames(context.Background(), tenantID, Options{})
	if err != nil {
		t.Fatalf("BackfillCallerNames failed: %v", err)
	}
	if summary.Updated != 1 || summary.Skipped != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if call.CallerName == nil || *call.CallerName != "Zeynep Demir" {
		t.Errorf("expected matched lead name, got %v", call.CallerName)
	}
	if call.LeadID == nil {
		t.Error("expected call linked to matched lead")
	}
}
