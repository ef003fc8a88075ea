package staff

import (
	"context"
	"strings"
	"testing"

	"github.com/Parsa-Nasirikhah/SE-Lab-ResturantManagement/internal/apperr"
	"github.com/Parsa-Nasirikhah/SE-Lab-ResturantManagement/internal/auth"
	"github.com/Parsa-Nasirikhah/SE-Lab-ResturantManagement/internal/models"
	"github.com/Parsa-Nasirikhah/SE-Lab-ResturantManagement/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func profileCount(t *testing.T, db *gorm.DB, userID uint, role models.UserRole) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&models.StaffProfile{}).Where("user_id = ? AND role = ?", userID, role).Count(&n).Error)
	return n
}

func TestCreateThenReassign(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	root := auth.NewPrincipal(testutil.CreateUser(t, db, "root", models.RoleAdmin))

	alice, err := Create(ctx, db, root, CreateInput{Username: "alice", Email: "a@x.com", Password: "pw", Role: "chef"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleChef, auth.ResolveRole(alice))
	assert.Equal(t, int64(1), profileCount(t, db, alice.ID, models.RoleChef))

	alice, err = ReassignRole(ctx, db, root, alice.ID, "manager")
	require.NoError(t, err)
	assert.Equal(t, models.RoleManager, auth.ResolveRole(alice))
	assert.Equal(t, int64(1), profileCount(t, db, alice.ID, models.RoleManager))
	assert.Zero(t, profileCount(t, db, alice.ID, models.RoleChef))

	var all int64
	require.NoError(t, db.Model(&models.StaffProfile{}).Where("user_id = ?", alice.ID).Count(&all).Error)
	assert.Equal(t, int64(1), all)

	var logs int64
	require.NoError(t, db.Model(&models.AuditLog{}).Where("entity_type = ? AND entity_id = ?", "staff", alice.ID).Count(&logs).Error)
	assert.Equal(t, int64(2), logs)
}

func TestCreateValidation(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	testutil.CreateUser(t, db, "taken", models.RoleWaiter)

	cases := []CreateInput{
		{Username: "", Email: "a@x.com", Password: "pw", Role: "chef"},
		{Username: "x", Email: "a@x.com", Password: "", Role: "chef"},
		{Username: "x", Email: "a@x.com", Password: "pw", Role: ""},
		{Username: "x", Email: "nope", Password: "pw", Role: "chef"},
		{Username: "x", Email: "a@x.com", Password: "pw", Role: "editor"},
		{Username: "x", Email: "a@x.com", Password: "pw", Role: "customer"},
		{Username: "taken", Email: "new@x.com", Password: "pw", Role: "chef"},
		{Username: "x", Email: "taken@example.com", Password: "pw", Role: "chef"},
	}
	for _, in := range cases {
		_, err := Create(ctx, db, nil, in)
		assert.True(t, apperr.Is(err, apperr.KindValidation), "%+v", in)
	}

	var users int64
	require.NoError(t, db.Model(&models.User{}).Count(&users).Error)
	assert.Equal(t, int64(1), users)
}

func TestReassignValidation(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	chef := testutil.CreateUser(t, db, "carl", models.RoleChef)
	bob := testutil.CreateUser(t, db, "bob", models.RoleCustomer)

	_, err := ReassignRole(ctx, db, nil, chef.ID, "editor")
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	_, err = ReassignRole(ctx, db, nil, bob.ID, "waiter")
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	_, err = ReassignRole(ctx, db, nil, 999, "waiter")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	assert.Equal(t, int64(1), profileCount(t, db, chef.ID, models.RoleChef))
}

func TestDisable(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	rootUser := testutil.CreateUser(t, db, "root", models.RoleAdmin)
	root := auth.NewPrincipal(rootUser)
	waiter := testutil.CreateUser(t, db, "wendy", models.RoleWaiter)

	_, err := Disable(ctx, db, root, rootUser.ID)
	assert.True(t, apperr.Is(err, apperr.KindConflict))
	var stored models.User
	require.NoError(t, db.First(&stored, rootUser.ID).Error)
	assert.True(t, stored.IsActive)

	got, err := Disable(ctx, db, root, waiter.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)
	// The profile stays; only the flag changes.
	assert.Equal(t, int64(1), profileCount(t, db, waiter.ID, models.RoleWaiter))

	_, err = auth.Authenticate(ctx, db, "wendy", testutil.Password)
	assert.True(t, apperr.Is(err, apperr.KindAuthentication))
}

func TestList(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	testutil.CreateUser(t, db, "root", models.RoleAdmin)
	testutil.CreateUser(t, db, "carl", models.RoleChef)
	testutil.CreateUser(t, db, "bob", models.RoleCustomer)
	testutil.CreateUser(t, db, "ed", models.RoleEditor)
	gone := testutil.CreateUser(t, db, "gone", models.RoleWaiter)
	require.NoError(t, db.Model(gone).Update("is_active", false).Error)

	users, err := List(ctx, db)
	require.NoError(t, err)
	names := make([]string, 0, len(users))
	for _, u := range users {
		names = append(names, u.Username)
	}
	assert.Equal(t, []string{"carl", "root"}, names)
}

func TestBootstrapAdmin(t *testing.T) {
	db := testutil.NewDB(t)
	u, err := BootstrapAdmin(context.Background(), db, "boss", "boss@x.com", "pw")
	require.NoError(t, err)
	assert.True(t, u.IsStaff)
	assert.Equal(t, models.RoleAdmin, auth.ResolveRole(u))
}

func TestReassignBootstrappedAdmin(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	root, err := BootstrapAdmin(ctx, db, "root", "root@x.com", "pw")
	require.NoError(t, err)
	require.NoError(t, db.Model(root).Update("is_superuser", true).Error)

	u, err := ReassignRole(ctx, db, nil, root.ID, "chef")
	require.NoError(t, err)
	assert.False(t, u.IsStaff)
	assert.False(t, u.IsSuperuser)
	assert.Equal(t, models.RoleChef, auth.ResolveRole(u))
	assert.Equal(t, int64(1), profileCount(t, db, u.ID, models.RoleChef))

	u, err = ReassignRole(ctx, db, nil, u.ID, "admin")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, auth.ResolveRole(u))
}

func TestCreateRejectsOverlongPassword(t *testing.T) {
	db := testutil.NewDB(t)
	_, err := Create(context.Background(), db, nil, CreateInput{
		Username: "long", Email: "long@x.com", Password: strings.Repeat("p", 73), Role: "waiter",
	})
	assert.True(t, apperr.Is(err, apperr.KindValidation), "%v", err)

	var n int64
	require.NoError(t, db.Model(&models.User{}).Where("username = ?", "long").Count(&n).Error)
	assert.Zero(t, n)
}
