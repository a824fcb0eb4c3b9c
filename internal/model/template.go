package model

import (
	"time"

	"gorm.io/gorm"
)

// ChecklistTemplate is a reusable question set. Audits snapshot its
// active questions at creation time and never reference it again.
type ChecklistTemplate struct {
	ID             uint               `json:"id" gorm:"primaryKey"`
	OrganizationID uint               `json:"organization_id" gorm:"index;not null"`
	Title          string             `json:"title" gorm:"type:varchar(200);not null"`
	Description    string             `json:"description" gorm:"type:text"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`
	Questions      []TemplateQuestion `json:"questions,omitempty" gorm:"foreignKey:TemplateID"`
}

// TemplateQuestion is soft-deleted only: audits already snapshotted from
// the template must keep their history, so rows are never physically removed.
type TemplateQuestion struct {
	ID             uint           `json:"id" gorm:"primaryKey"`
	TemplateID     uint           `json:"template_id" gorm:"index;not null"`
	OrganizationID uint           `json:"organization_id" gorm:"index;not null"`
	Question       string         `json:"question" gorm:"type:varchar(1000);not null"`
	SortOrder      int            `json:"sort_order" gorm:"not null;default:0"`
	CreatedAt      time.Time      `json:"created_at"`
	DeletedAt      gorm.DeletedAt `json:"-" gorm:"index"`
}
