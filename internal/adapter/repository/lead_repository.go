package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/voxdesk-app/voxdesk/internal/domain/entities"
	repo "github.com/voxdesk-app/voxdesk/internal/domain/repositories"
)

type leadRepository struct {
	db *gorm.DB
}

// NewLeadRepository creates a new lead repository backed by GORM
func NewLeadRepository(db *gorm.DB) repo.LeadRepository {
	return &leadRepository{db: db}
}

// CreateLead inserts a new lead row
func (r *leadRepository) CreateLead(ctx context.Context, lead *entities.Lead) error {
	if lead == nil {
		return errors.New("lead cannot be nil")
	}
	return r.db.WithContext(ctx).Create(lead).Error
}

// UpdateLead persists changes to an existing lead
func (r *leadRepository) UpdateLead(ctx context.Context, lead *entities.Lead) error {
	if lead == nil {
		return errors.New("lead cannot be nil")
	}
	return r.db.WithContext(ctx).
		Where("user_id = ? AND id = ?", lead.UserID, lead.ID).
		Save(lead).Error
}

// GetLeadByID retrieves a tenant lead by id
func (r *leadRepository) GetLeadByID(ctx context.Context, userID, id uuid.UUID) (*entities.Lead, error) {
	var lead entities.Lead
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, id).
		First(&lead).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &lead, nil
}

// FindLeadByPhone matches any of the given phone format variants
func (r *leadRepository) FindLeadByPhone(ctx context.Context, userID uuid.UUID, variants []string) (*entities.Lead, error) {
	if len(variants) == 0 {
		return nil, nil
	}

	var lead entities.Lead
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND phone IN ?", userID, variants).
		First(&lead).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &lead, nil
}

// FindLeadByName matches the exact full name
func (r *leadRepository) FindLeadByName(ctx context.Context, userID uuid.UUID, fullName string) (*entities.Lead, error) {
	if fullName == "" {
		return nil, nil
	}

	var lead entities.Lead
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND full_name = ?", userID, fullName).
		First(&lead).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &lead, nil
}

// ListLeads retrieves all leads for a tenant
func (r *leadRepository) ListLeads(ctx context.Context, userID uuid.UUID) ([]*entities.Lead, error) {
	var leads []*entities.Lead
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&leads).Error
	if err != nil {
		return nil, err
	}
	return leads, nil
}
