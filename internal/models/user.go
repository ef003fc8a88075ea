package models

import "time"

type UserRole string

const (
	RoleAdmin    UserRole = "admin"
	RoleManager  UserRole = "manager"
	RoleChef     UserRole = "chef"
	RoleWaiter   UserRole = "waiter"
	RoleEditor   UserRole = "editor"
	RoleCustomer UserRole = "customer"

	// Never stored; returned by the resolver for missing or unrecognised principals.
	RoleAnonymous UserRole = "anonymous"
	RoleUnknown   UserRole = "unknown"
)

// StaffAssignableRoles are the roles a staff account can be created with or moved to.
var StaffAssignableRoles = []UserRole{RoleChef, RoleWaiter, RoleManager, RoleAdmin}

func (r UserRole) IsStaffAssignable() bool {
	for _, s := range StaffAssignableRoles {
		if s == r {
			return true
		}
	}
	return false
}

type User struct {
	ID           uint     `gorm:"primaryKey"`
	Username     string   `gorm:"size:150;uniqueIndex;not null"`
	Email        string   `gorm:"size:254;uniqueIndex;not null"`
	PasswordHash string   `gorm:"size:255;not null"`
	Role         UserRole `gorm:"size:20;not null;index"`
	IsSuperuser  bool     `gorm:"not null"`
	IsStaff      bool     `gorm:"not null"`
	IsActive     bool     `gorm:"not null;index"`
	Phone        string   `gorm:"size:15"`
	Address      string   `gorm:"size:255"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	StaffProfile    *StaffProfile    `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	CustomerProfile *CustomerProfile `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// StaffProfile is the role payload of a staff or editor account. Role always
// mirrors User.Role; a user carries at most one row (unique user_id).
type StaffProfile struct {
	ID         uint     `gorm:"primaryKey"`
	UserID     uint     `gorm:"uniqueIndex;not null"`
	Role       UserRole `gorm:"size:20;not null"`
	Department string   `gorm:"size:100"` // managers only
	CreatedAt  time.Time
}

type CustomerProfile struct {
	ID             uint `gorm:"primaryKey"`
	UserID         uint `gorm:"uniqueIndex;not null"`
	CurrentTableID *uint
	CurrentTable   *Table `gorm:"constraint:OnDelete:SET NULL"`
	CreatedAt      time.Time
}
