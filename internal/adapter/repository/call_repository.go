package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/voxdesk-app/voxdesk/internal/domain/entities"
	repo "github.com/voxdesk-app/voxdesk/internal/domain/repositories"
)

type callRepository struct {
	db *gorm.DB
}

// NewCallRepository creates a new call repository backed by GORM
func NewCallRepository(db *gorm.DB) repo.CallRepository {
	return &callRepository{db: db}
}

// CreateCall inserts a new call row
func (r *callRepository) CreateCall(ctx context.Context, call *entities.Call) error {
	if call == nil {
		return errors.New("call cannot be nil")
	}
	return r.db.WithContext(ctx).Create(call).Error
}

// GetCallByExternalID retrieves a call by its provider call id
func (r *callRepository) GetCallByExternalID(ctx context.Context, userID uuid.UUID, externalID string) (*entities.Call, error) {
	var call entities.Call
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND external_call_id = ?", userID, externalID).
		First(&call).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &call, nil
}

// ListCalls retrieves tenant calls matching the given filters, newest first
func (r *callRepository) ListCalls(ctx context.Context, userID uuid.UUID, filters repo.CallFilters) ([]*entities.Call, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)

	if filters.HasTranscript != nil {
		if *filters.HasTranscript {
			q = q.Where("transcript IS NOT NULL AND transcript <> ''")
		} else {
			q = q.Where("transcript IS NULL OR transcript = ''")
		}
	}
	if filters.HasRecording != nil {
		if *filters.HasRecording {
			q = q.Where("recording_url IS NOT NULL AND recording_url <> ''")
		} else {
			q = q.Where("recording_url IS NULL OR recording_url = ''")
		}
	}
	if filters.MissingTranscript {
		q = q.Where("transcript IS NULL OR transcript = ''")
	}
	if filters.MissingCallerName {
		q = q.Where("caller_name IS NULL OR caller_name = ''")
	}
	if filters.MissingScore {
		q = q.Where("score IS NULL")
	}
	if filters.MissingAssistantID {
		q = q.Where("assistant_id IS NULL OR assistant_id = ''")
	}
	if filters.Limit > 0 {
		q = q.Limit(filters.Limit)
	}

	var calls []*entities.Call
	if err := q.Order("call_time DESC").Find(&calls).Error; err != nil {
		return nil, err
	}
	return calls, nil
}

// UpdateCall persists changes to an existing call
func (r *callRepository) UpdateCall(ctx context.Context, call *entities.Call) error {
	if call == nil {
		return errors.New("call cannot be nil")
	}
	return r.db.WithContext(ctx).
		Where("user_id = ? AND id = ?", call.UserID, call.ID).
		Save(call).Error
}

// CountCalls returns the number of calls stored for a tenant
func (r *callRepository) CountCalls(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entities.Call{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}
