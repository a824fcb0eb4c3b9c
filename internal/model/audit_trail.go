package model

import "time"

// AuditTrailEntry records one status transition. Rows are append-only:
// nothing in the codebase updates or deletes them.
type AuditTrailEntry struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	AuditID        uint      `json:"audit_id" gorm:"index;not null"`
	OrganizationID uint      `json:"organization_id" gorm:"index;not null"`
	OldStatus      string    `json:"old_status" gorm:"type:varchar(20)"`
	NewStatus      string    `json:"new_status" gorm:"type:varchar(20);not null"`
	ChangedBy      uint      `json:"changed_by" gorm:"index"`
	ChangedAt      time.Time `json:"changed_at"`
}

// TableName keeps the original table name
func (AuditTrailEntry) TableName() string {
	return "audit_trail"
}
