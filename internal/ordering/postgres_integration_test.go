//go:build integration

package ordering_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/Parsa-Nasirikhah/SE-Lab-ResturantManagement/internal/apperr"
	"github.com/Parsa-Nasirikhah/SE-Lab-ResturantManagement/internal/auth"
	"github.com/Parsa-Nasirikhah/SE-Lab-ResturantManagement/internal/database"
	"github.com/Parsa-Nasirikhah/SE-Lab-ResturantManagement/internal/models"
	"github.com/Parsa-Nasirikhah/SE-Lab-ResturantManagement/internal/ordering"
	"github.com/Parsa-Nasirikhah/SE-Lab-ResturantManagement/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	pgdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func postgresDB(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("restaurant"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("terminate container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := gorm.Open(pgdriver.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func TestConcurrentDiscountClaims(t *testing.T) {
	db := postgresDB(t)
	burger := testutil.CreateMenuItem(t, db, "Burger", "9.00")
	testutil.CreateDiscount(t, db, "RUSH", 20, 3)

	const customers = 12
	principals := make([]*auth.Principal, customers)
	for i := range principals {
		principals[i] = auth.NewPrincipal(testutil.CreateUser(t, db, fmt.Sprintf("c%d", i), models.RoleCustomer))
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		rejected  int
	)
	for _, p := range principals {
		wg.Add(1)
		go func(p *auth.Principal) {
			defer wg.Done()
			_, err := ordering.Create(context.Background(), db, p, ordering.CreateInput{
				DiscountCode: "RUSH",
				Items:        []ordering.ItemInput{{MenuItemID: burger.ID, Quantity: 1}},
			}, time.Now())

			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				succeeded++
				return
			}
			if apperr.Is(err, apperr.KindConflict) || apperr.Is(err, apperr.KindValidation) {
				rejected++
				return
			}
			t.Errorf("unexpected error: %v", err)
		}(p)
	}
	wg.Wait()

	assert.Equal(t, 3, succeeded)
	assert.Equal(t, customers-3, rejected)

	var d models.DiscountCode
	require.NoError(t, db.Where("code = ?", "RUSH").First(&d).Error)
	assert.Equal(t, 3, d.UsedCount)

	var orders, items int64
	require.NoError(t, db.Model(&models.Order{}).Count(&orders).Error)
	require.NoError(t, db.Model(&models.OrderItem{}).Count(&items).Error)
	assert.Equal(t, int64(3), orders)
	assert.Equal(t, int64(3), items)
}

func TestMenuItemOnOrderIsRestricted(t *testing.T) {
	db := postgresDB(t)
	bob := auth.NewPrincipal(testutil.CreateUser(t, db, "bob", models.RoleCustomer))
	burger := testutil.CreateMenuItem(t, db, "Burger", "9.00")

	_, err := ordering.Create(context.Background(), db, bob, ordering.CreateInput{
		Items: []ordering.ItemInput{{MenuItemID: burger.ID, Quantity: 1}},
	}, time.Now())
	require.NoError(t, err)

	// The foreign key refuses the delete even when the application check is bypassed.
	err = apperr.FromDB(db.Delete(&models.MenuItem{}, burger.ID).Error, "")
	assert.True(t, apperr.Is(err, apperr.KindConflict))
}
