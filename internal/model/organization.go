package model

import "time"

// Organization is the tenant: the unit of data isolation. Every other
// row in the schema carries its id and every query filters on it.
type Organization struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"type:varchar(120);not null"`
	VATNumber string    `json:"vat_number" gorm:"type:varchar(20)"`
	Slug      string    `json:"slug" gorm:"type:varchar(50);uniqueIndex;not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
