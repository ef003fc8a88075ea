// Package staff manages staff accounts: creation, role moves and disabling.
package staff

import (
	"context"
	"fmt"
	"strings"

	"github.com/Parsa-Nasirikhah/SE-Lab-ResturantManagement/internal/access"
	"github.com/Parsa-Nasirikhah/SE-Lab-ResturantManagement/internal/apperr"
	"github.com/Parsa-Nasirikhah/SE-Lab-ResturantManagement/internal/audit"
	"github.com/Parsa-Nasirikhah/SE-Lab-ResturantManagement/internal/auth"
	"github.com/Parsa-Nasirikhah/SE-Lab-ResturantManagement/internal/models"

	"gorm.io/gorm"
)

type CreateInput struct {
	Username   string `json:"username"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	Role       string `json:"role"`
	Department string `json:"department"`
	Phone      string `json:"phone"`
}

func parseRole(s string) (models.UserRole, error) {
	role := models.UserRole(strings.ToLower(strings.TrimSpace(s)))
	if !role.IsStaffAssignable() {
		return "", apperr.Validation("role must be one of chef, waiter, manager, admin")
	}
	return role, nil
}

type actor struct {
	id   uint
	name string
}

func actorOf(p *auth.Principal) actor {
	if p == nil {
		return actor{name: "system"}
	}
	return actor{id: p.UserID, name: p.Username}
}

// List returns active accounts that resolve to a staff role, by username.
func List(ctx context.Context, db *gorm.DB) ([]models.User, error) {
	var users []models.User
	err := db.WithContext(ctx).
		Preload("StaffProfile").Preload("CustomerProfile").
		Where("is_active = ?", true).
		Order("username asc").
		Find(&users).Error
	if err != nil {
		return nil, apperr.FromDB(err, "")
	}

	out := make([]models.User, 0, len(users))
	for i := range users {
		if access.Staff.Has(auth.ResolveRole(&users[i])) {
			out = append(out, users[i])
		}
	}
	return out, nil
}

// Create adds an identity with exactly one staff profile matching its role.
func Create(ctx context.Context, db *gorm.DB, p *auth.Principal, in CreateInput) (*models.User, error) {
	username, email := auth.NormalizeAccount(in.Username, in.Email)
	if username == "" || email == "" || in.Password == "" || strings.TrimSpace(in.Role) == "" {
		return nil, apperr.Validation("username, email, password and role are required")
	}
	if !strings.Contains(email, "@") {
		return nil, apperr.Validation("email is not valid")
	}
	role, err := parseRole(in.Role)
	if err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
		Phone:        strings.TrimSpace(in.Phone),
	}
	by := actorOf(p)

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := auth.EnsureUnique(tx, username, email); err != nil {
			return err
		}
		if err := tx.Create(user).Error; err != nil {
			return apperr.FromDB(err, "")
		}
		profile := &models.StaffProfile{UserID: user.ID, Role: role, Department: strings.TrimSpace(in.Department)}
		if err := tx.Create(profile).Error; err != nil {
			return apperr.FromDB(err, "")
		}
		user.StaffProfile = profile

		return audit.WriteLog(tx, audit.LogOptions{
			UserID:      by.id,
			UserName:    by.name,
			EntityType:  "staff",
			EntityID:    user.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("created %s as %s", username, role),
			After:       map[string]any{"username": username, "role": role},
		})
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// ReassignRole swaps the user's staff profile for one matching role. The
// delete and insert share a transaction, so the user is never left with zero
// or two profiles.
func ReassignRole(ctx context.Context, db *gorm.DB, p *auth.Principal, userID uint, newRole string) (*models.User, error) {
	role, err := parseRole(newRole)
	if err != nil {
		return nil, err
	}
	by := actorOf(p)

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Preload("StaffProfile").Preload("CustomerProfile").First(&user, userID).Error; err != nil {
			return apperr.FromDB(err, "user not found")
		}
		if user.Role == models.RoleCustomer || user.CustomerProfile != nil {
			return apperr.Validation("customer accounts cannot be given a staff role")
		}

		before := user.Role
		department := ""
		if user.StaffProfile != nil {
			department = user.StaffProfile.Department
		}

		if err := tx.Where("user_id = ?", user.ID).Delete(&models.StaffProfile{}).Error; err != nil {
			return apperr.FromDB(err, "")
		}
		// The admin flags outrank the role tag, so they go with any demotion.
		updates := map[string]any{"role": role}
		if role != models.RoleAdmin {
			updates["is_staff"] = false
			updates["is_superuser"] = false
		}
		if err := tx.Model(&models.User{}).Where("id = ?", user.ID).Updates(updates).Error; err != nil {
			return apperr.FromDB(err, "")
		}
		profile := &models.StaffProfile{UserID: user.ID, Role: role, Department: department}
		if err := tx.Create(profile).Error; err != nil {
			return apperr.FromDB(err, "")
		}

		return audit.WriteLog(tx, audit.LogOptions{
			UserID:      by.id,
			UserName:    by.name,
			EntityType:  "staff",
			EntityID:    user.ID,
			Action:      models.AuditActionUpdate,
			Description: fmt.Sprintf("role %s -> %s", before, role),
			Before:      map[string]any{"role": before},
			After:       map[string]any{"role": role},
		})
	})
	if err != nil {
		return nil, err
	}
	return auth.LoadUser(ctx, db, userID)
}

// Disable deactivates an account. Owned records are left untouched.
func Disable(ctx context.Context, db *gorm.DB, p *auth.Principal, userID uint) (*models.User, error) {
	if p != nil && p.UserID == userID {
		return nil, apperr.Conflict("you cannot disable your own account")
	}
	by := actorOf(p)

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, userID).Error; err != nil {
			return apperr.FromDB(err, "user not found")
		}
		if !user.IsActive {
			return nil
		}
		if err := tx.Model(&user).Update("is_active", false).Error; err != nil {
			return apperr.FromDB(err, "")
		}

		return audit.WriteLog(tx, audit.LogOptions{
			UserID:      by.id,
			UserName:    by.name,
			EntityType:  "staff",
			EntityID:    user.ID,
			Action:      models.AuditActionUpdate,
			Description: "account disabled",
			Before:      map[string]any{"is_active": true},
			After:       map[string]any{"is_active": false},
		})
	})
	if err != nil {
		return nil, err
	}
	return auth.LoadUser(ctx, db, userID)
}

// BootstrapAdmin creates the first administrator from the command line.
func BootstrapAdmin(ctx context.Context, db *gorm.DB, username, email, password string) (*models.User, error) {
	user, err := Create(ctx, db, nil, CreateInput{
		Username: username,
		Email:    email,
		Password: password,
		Role:     string(models.RoleAdmin),
	})
	if err != nil {
		return nil, err
	}
	if err := db.WithContext(ctx).Model(user).Update("is_staff", true).Error; err != nil {
		return nil, apperr.FromDB(err, "")
	}
	user.IsStaff = true
	return user, nil
}
