package model

import "time"

// User represents an authenticated principal. A user without an
// OrganizationID can log in but cannot reach any tenant-scoped resource.
type User struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	Email          string    `json:"email" gorm:"type:varchar(100);uniqueIndex;not null"`
	Password       string    `json:"-" gorm:"type:varchar(255);not null"`
	OrganizationID *uint     `json:"organization_id,omitempty" gorm:"index"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
