package models

import "time"

type DiscountCode struct {
	ID         uint      `gorm:"primaryKey"`
	Code       string    `gorm:"size:50;uniqueIndex;not null"`
	PercentOff int       `gorm:"not null"`
	ExpiresAt  time.Time `gorm:"not null"`
	Active     bool      `gorm:"not null"`
	UsedCount  int       `gorm:"not null"`
	MaxUse     int       `gorm:"not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// IsValid reports whether the code can still be applied at now.
func (d *DiscountCode) IsValid(now time.Time) bool {
	return d.Active && d.UsedCount < d.MaxUse && now.Before(d.ExpiresAt)
}
