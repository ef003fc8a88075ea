package models

import "time"

type TableStatus string

const (
	TableFree     TableStatus = "free"
	TableOccupied TableStatus = "occupied"
	TableReserved TableStatus = "reserved"
)

func (s TableStatus) Valid() bool {
	switch s {
	case TableFree, TableOccupied, TableReserved:
		return true
	}
	return false
}

type Table struct {
	ID        uint        `gorm:"primaryKey"`
	Number    int         `gorm:"uniqueIndex;not null"`
	Capacity  int         `gorm:"not null"`
	Status    TableStatus `gorm:"size:20;not null"`
	WaiterID  *uint       `gorm:"index"`
	Waiter    *User       `gorm:"constraint:OnDelete:SET NULL"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
