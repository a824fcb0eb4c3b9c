package model

import "time"

// Audit is one inspection cycle, tracked from scheduling to closure.
// Status moves through Scheduled -> In Progress -> Review -> Closed and is
// only ever mutated by the status-transition handlers, which also append
// a trail entry in the same transaction.
type Audit struct {
	ID             uint            `json:"id" gorm:"primaryKey"`
	OrganizationID uint            `json:"organization_id" gorm:"index;not null"`
	Title          string          `json:"title" gorm:"type:varchar(200);not null"`
	ScheduledDate  time.Time       `json:"scheduled_date"`
	Status         string          `json:"status" gorm:"type:varchar(20);not null;default:'Scheduled'"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	Items          []ChecklistItem `json:"items,omitempty" gorm:"foreignKey:AuditID"`
}
