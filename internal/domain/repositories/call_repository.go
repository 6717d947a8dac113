package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/voxdesk-app/voxdesk/internal/domain/entities"
)

// CallFilters narrows tenant call listings for sync and backfill jobs.
// Zero values mean "no constraint".
type CallFilters struct {
	HasTranscript      *bool
	HasRecording       *bool
	MissingTranscript  bool
	MissingCallerName  bool
	MissingScore       bool
	MissingAssistantID bool
	Limit              int
}

// CallRepository defines persistence operations for call records
type CallRepository interface {
	CreateCall(ctx context.Context, call *entities.Call) error
	GetCallByExternalID(ctx context.Context, userID uuid.UUID, externalID string) (*entities.Call, error)
	ListCalls(ctx context.Context, userID uuid.UUID, filters CallFilters) ([]*entities.Call, error)
	UpdateCall(ctx context.Context, call *entities.Call) error
	CountCalls(ctx context.Context, userID uuid.UUID) (int64, error)
}
