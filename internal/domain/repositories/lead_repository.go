package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/voxdesk-app/voxdesk/internal/domain/entities"
)

// LeadRepository defines persistence operations for lead records
type LeadRepository interface {
	CreateLead(ctx context.Context, lead *entities.Lead) error
	UpdateLead(ctx context.Context, lead *entities.Lead) error
	GetLeadByID(ctx context.Context, userID, id uuid.UUID) (*entities.Lead, error)

	// FindLeadByPhone matches any of the given phone format variants.
	// Returns nil when no lead matches.
	FindLeadByPhone(ctx context.Context, userID uuid.UUID, variants []string) (*entities.Lead, error)

	// FindLeadByName matches the exact full name. Returns nil when no
	// lead matches.
	FindLeadByName(ctx context.Context, userID uuid.UUID, fullName string) (*entities.Lead, error)

	ListLeads(ctx context.Context, userID uuid.UUID) ([]*entities.Lead, error)
}
