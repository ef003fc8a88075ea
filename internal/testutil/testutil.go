// Package testutil builds throwaway sqlite databases and fixtures for tests.
package testutil

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Parsa-Nasirikhah/SE-Lab-ResturantManagement/internal/config"
	"github.com/Parsa-Nasirikhah/SE-Lab-ResturantManagement/internal/database"
	"github.com/Parsa-Nasirikhah/SE-Lab-ResturantManagement/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var dbSeq atomic.Int64

// NewDB returns a migrated in-memory database private to the test.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := fmt.Sprintf("test_%d_%s", dbSeq.Add(1), strings.NewReplacer("/", "_", " ", "_").Replace(t.Name()))
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// One connection keeps the in-memory database alive and serialises writers.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

func Config() *config.Config {
	return &config.Config{
		HTTPPort:        "0",
		JWTSecret:       strings.Repeat("k", 32),
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: time.Hour,
		CORSOrigins:     "*",
		MediaPath:       "",
		MediaURLPrefix:  "/media",
		AuthRateLimit:   1000,
	}
}

const Password = "secret-pass"

var passwordHash = func() string {
	h, err := bcrypt.GenerateFromPassword([]byte(Password), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	return string(h)
}()

// CreateUser inserts an active user with the given role and the matching
// profile row. Every fixture user has the password Password.
func CreateUser(t *testing.T, db *gorm.DB, username string, role models.UserRole) *models.User {
	t.Helper()
	u := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: passwordHash,
		Role:         role,
		IsActive:     true,
	}
	require.NoError(t, db.Create(u).Error)

	if role == models.RoleCustomer {
		cp := &models.CustomerProfile{UserID: u.ID}
		require.NoError(t, db.Create(cp).Error)
		u.CustomerProfile = cp
	} else {
		sp := &models.StaffProfile{UserID: u.ID, Role: role}
		require.NoError(t, db.Create(sp).Error)
		u.StaffProfile = sp
	}
	return u
}

func CreateMenuItem(t *testing.T, db *gorm.DB, name, price string) *models.MenuItem {
	t.Helper()
	m := &models.MenuItem{
		Name:      name,
		Price:     decimal.RequireFromString(price),
		Available: true,
	}
	require.NoError(t, db.Create(m).Error)
	return m
}

func CreateTable(t *testing.T, db *gorm.DB, number int) *models.Table {
	t.Helper()
	tbl := &models.Table{Number: number, Capacity: 4, Status: models.TableFree}
	require.NoError(t, db.Create(tbl).Error)
	return tbl
}

func CreateDiscount(t *testing.T, db *gorm.DB, code string, percent, maxUse int) *models.DiscountCode {
	t.Helper()
	d := &models.DiscountCode{
		Code:       code,
		PercentOff: percent,
		ExpiresAt:  time.Now().Add(24 * time.Hour),
		Active:     true,
		MaxUse:     maxUse,
	}
	require.NoError(t, db.Create(d).Error)
	return d
}
