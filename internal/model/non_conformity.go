package model

import "time"

// NonConformity is a recorded failure tied to a specific non-compliant
// checklist item. It references the item but does not own it.
type NonConformity struct {
	ID              uint       `json:"id" gorm:"primaryKey"`
	AuditID         uint       `json:"audit_id" gorm:"index;not null"`
	ChecklistItemID uint       `json:"checklist_item_id" gorm:"index;not null"`
	OrganizationID  uint       `json:"organization_id" gorm:"index;not null"`
	Title           string     `json:"title" gorm:"type:varchar(200);not null"`
	Description     string     `json:"description" gorm:"type:text"`
	Severity        string     `json:"severity" gorm:"type:varchar(20);not null;default:'major'"`
	Status          string     `json:"status" gorm:"type:varchar(20);not null;default:'open'"`
	ClosedAt        *time.Time `json:"closed_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}
