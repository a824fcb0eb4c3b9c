package model

import "time"

// ChecklistItem is one inspectable question instance within an audit.
// Question text is copied verbatim from the template at snapshot time and
// never re-synced. Outcome starts as pending and stays mutable until the
// parent audit is closed.
type ChecklistItem struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	AuditID        uint      `json:"audit_id" gorm:"index;not null"`
	OrganizationID uint      `json:"organization_id" gorm:"index;not null"`
	Question       string    `json:"question" gorm:"type:varchar(1000);not null"`
	Outcome        string    `json:"outcome" gorm:"type:varchar(20);not null;default:'pending'"`
	Notes          string    `json:"notes" gorm:"type:text"`
	EvidenceURL    *string   `json:"evidence_url,omitempty" gorm:"type:text"`
	SortOrder      int       `json:"sort_order" gorm:"not null;default:0"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
