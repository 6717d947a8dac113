package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Call types
const (
	CallTypeAppointment  = "appointment"
	CallTypeInquiry      = "inquiry"
	CallTypeFollowUp     = "follow_up"
	CallTypeCancellation = "cancellation"
	CallTypeOther        = "other"
)

// Sentiment values derived by the evaluation parser
const (
	SentimentPositive = "positive"
	SentimentNeutral  = "neutral"
	SentimentNegative = "negative"
)

// Call is one completed or attempted voice interaction, owned by a single
// tenant (user). Evaluation fields are owned by the evaluation parser and
// may be rewritten by backfill operations; everything else is written once
// at ingestion.
type Call struct {
	ID             uuid.UUID          `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID         uuid.UUID          `json:"user_id" gorm:"type:uuid;not null;index"`
	ExternalCallID *string            `json:"external_call_id,omitempty" gorm:"type:varchar(255);uniqueIndex"`
	Transcript     *string            `json:"transcript,omitempty" gorm:"type:text"`
	Summary        *string            `json:"summary,omitempty" gorm:"type:text"`
	RecordingURL   *string            `json:"recording_url,omitempty" gorm:"type:text"`
	Score          *float64           `json:"score,omitempty"`
	Sentiment      string             `json:"sentiment" gorm:"type:varchar(20);default:'neutral'"`
	Tags           []string           `json:"tags,omitempty" gorm:"type:jsonb;serializer:json"`
	EvalSummary    *string            `json:"eval_summary,omitempty" gorm:"type:text"`
	CallerPhone    *string            `json:"caller_phone,omitempty" gorm:"type:varchar(50);index"`
	CallerName     *string            `json:"caller_name,omitempty" gorm:"type:varchar(255)"`
	Type           string             `json:"type" gorm:"type:varchar(50);default:'other'"`
	Duration       *int               `json:"duration,omitempty"` // in seconds
	AssistantID    *string            `json:"assistant_id,omitempty" gorm:"type:varchar(255);index"`
	LeadID         *uuid.UUID         `json:"lead_id,omitempty" gorm:"type:uuid;index"`
	Metadata       datatypes.JSONMap  `json:"metadata,omitempty" gorm:"type:jsonb"`
	CallTime       time.Time          `json:"call_time" gorm:"index"`
	CreatedAt      time.Time          `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt      time.Time          `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (Call) TableName() string {
	return "calls"
}

// NewCall creates a new call for a tenant
func NewCall(userID uuid.UUID) *Call {
	return &Call{
		ID:        uuid.New(),
		UserID:    userID,
		Sentiment: SentimentNeutral,
		Type:      CallTypeOther,
		CallTime:  time.Now(),
	}
}
