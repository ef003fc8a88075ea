package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/Parsa-Nasirikhah/SE-Lab-ResturantManagement/internal/apperr"
	"github.com/Parsa-Nasirikhah/SE-Lab-ResturantManagement/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type RegisterInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", apperr.Validation("password must be at most 72 bytes")
	}
	if err != nil {
		return "", apperr.Internal(err, "could not hash password")
	}
	return string(hash), nil
}

// NormalizeAccount trims the identity fields and lower-cases the email.
func NormalizeAccount(username, email string) (string, string) {
	return strings.TrimSpace(username), strings.ToLower(strings.TrimSpace(email))
}

// EnsureUnique rejects a username or email that is already taken.
func EnsureUnique(db *gorm.DB, username, email string) error {
	var count int64
	if err := db.Model(&models.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return apperr.FromDB(err, "")
	}
	if count > 0 {
		return apperr.Validation("username already exists")
	}
	if err := db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return apperr.FromDB(err, "")
	}
	if count > 0 {
		return apperr.Validation("email already exists")
	}
	return nil
}

// RegisterCustomer creates the identity and its customer profile in one transaction.
func RegisterCustomer(ctx context.Context, db *gorm.DB, in RegisterInput) (*models.User, error) {
	in.Username, in.Email = NormalizeAccount(in.Username, in.Email)
	if in.Username == "" || in.Email == "" || in.Password == "" {
		return nil, apperr.Validation("username, email and password are required")
	}
	if !strings.Contains(in.Email, "@") {
		return nil, apperr.Validation("email is not valid")
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         models.RoleCustomer,
		IsActive:     true,
	}
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := EnsureUnique(tx, in.Username, in.Email); err != nil {
			return err
		}
		if err := tx.Create(user).Error; err != nil {
			return apperr.FromDB(err, "")
		}
		profile := &models.CustomerProfile{UserID: user.ID}
		if err := tx.Create(profile).Error; err != nil {
			return apperr.FromDB(err, "")
		}
		user.CustomerProfile = profile
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Authenticate accepts either the username or the email as login.
func Authenticate(ctx context.Context, db *gorm.DB, login, password string) (*models.User, error) {
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return nil, apperr.Authentication("username and password are required")
	}

	var user models.User
	err := db.WithContext(ctx).
		Where("username = ? OR email = ?", login, strings.ToLower(login)).
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Authentication("invalid credentials")
	}
	if err != nil {
		return nil, apperr.FromDB(err, "")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, apperr.Authentication("invalid credentials")
	}
	if !user.IsActive {
		return nil, apperr.Authentication("account is disabled")
	}
	return LoadUser(ctx, db, user.ID)
}

// LoadUser fetches a user with both profile payloads preloaded.
func LoadUser(ctx context.Context, db *gorm.DB, id uint) (*models.User, error) {
	var user models.User
	err := db.WithContext(ctx).
		Preload("StaffProfile").
		Preload("CustomerProfile").
		First(&user, id).Error
	if err != nil {
		return nil, apperr.FromDB(err, "user not found")
	}
	return &user, nil
}
