package entities

import (
	"time"

	"github.com/google/uuid"
)

// Lead lifecycle states
const (
	LeadStatusNew            = "new"
	LeadStatusContacted      = "contacted"
	LeadStatusInterested     = "interested"
	LeadStatusAppointmentSet = "appointment_set"
	LeadStatusConverted      = "converted"
	LeadStatusLost           = "lost"
	LeadStatusUnreachable    = "unreachable"
)

// Lead priorities
const (
	LeadPriorityLow    = "low"
	LeadPriorityMedium = "medium"
	LeadPriorityHigh   = "high"
)

// Lead is a sales prospect derived from one or more calls. Within a tenant
// at most one lead should exist per distinct phone number; name matching is
// a best-effort fallback when the phone is unknown.
type Lead struct {
	ID               uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID           uuid.UUID  `json:"user_id" gorm:"type:uuid;not null;index"`
	FullName         *string    `json:"full_name,omitempty" gorm:"type:varchar(255);index"`
	Phone            *string    `json:"phone,omitempty" gorm:"type:varchar(50);index"`
	Source           string     `json:"source" gorm:"type:varchar(50);default:'voice_call'"`
	Treatment        string     `json:"treatment,omitempty" gorm:"type:text"`
	Notes            string     `json:"notes,omitempty" gorm:"type:text"`
	Status           string     `json:"status" gorm:"type:varchar(30);default:'new'"`
	Priority         string     `json:"priority" gorm:"type:varchar(20);default:'low'"`
	Language         string     `json:"language,omitempty" gorm:"type:varchar(10);default:'tr'"`
	ContactAttempts  int        `json:"contact_attempts" gorm:"default:0"`
	FirstContactDate *time.Time `json:"first_contact_date,omitempty"`
	LastContactDate  *time.Time `json:"last_contact_date,omitempty"`
	NextContactDate  *time.Time `json:"next_contact_date,omitempty"`
	CreatedAt        time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt        time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (Lead) TableName() string {
	return "leads"
}

// NewLead creates a new lead for a tenant
func NewLead(userID uuid.UUID) *Lead {
	return &Lead{
		ID:       uuid.New(),
		UserID:   userID,
		Source:   "voice_call",
		Status:   LeadStatusNew,
		Priority: LeadPriorityLow,
		Language: "tr",
	}
}
