package model

import "time"

// CorrectiveAction is a remediation plan addressing one non-conformity.
// Completing it never cascades back to the parent non-conformity, which
// must be closed manually.
type CorrectiveAction struct {
	ID                     uint       `json:"id" gorm:"primaryKey"`
	NonConformityID        uint       `json:"non_conformity_id" gorm:"index;not null"`
	OrganizationID         uint       `json:"organization_id" gorm:"index;not null"`
	Description            string     `json:"description" gorm:"type:text;not null"`
	RootCause              string     `json:"root_cause" gorm:"type:text"`
	ActionPlan             string     `json:"action_plan" gorm:"type:text"`
	ResponsiblePersonName  string     `json:"responsible_person_name" gorm:"type:varchar(100)"`
	ResponsiblePersonEmail string     `json:"responsible_person_email" gorm:"type:varchar(100)"`
	TargetCompletionDate   *time.Time `json:"target_completion_date,omitempty"`
	Status                 string     `json:"status" gorm:"type:varchar(20);not null;default:'pending'"`
	CompletedAt            *time.Time `json:"completed_at,omitempty"`
	CreatedAt              time.Time  `json:"created_at"`
	UpdatedAt              time.Time  `json:"updated_at"`
}
