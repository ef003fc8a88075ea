package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/Parsa-Nasirikhah/SE-Lab-ResturantManagement/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = strings.Repeat("x", 32)

func TestTokenRoundTrip(t *testing.T) {
	u := &models.User{ID: 9, Username: "alice", Role: models.RoleChef}

	access, err := GenerateToken(testSecret, u, TokenAccess, time.Minute)
	require.NoError(t, err)

	claims, err := ParseToken(testSecret, access, TokenAccess)
	require.NoError(t, err)
	assert.Equal(t, uint(9), claims.UserID)
	assert.Equal(t, models.RoleChef, claims.Role)
	assert.NotEmpty(t, claims.ID)
}

func TestParseTokenRejects(t *testing.T) {
	u := &models.User{ID: 9, Username: "alice", Role: models.RoleChef}

	refresh, err := GenerateToken(testSecret, u, TokenRefresh, time.Minute)
	require.NoError(t, err)
	_, err = ParseToken(testSecret, refresh, TokenAccess)
	assert.Error(t, err, "refresh token must not authenticate requests")

	expired, err := GenerateToken(testSecret, u, TokenAccess, -time.Minute)
	require.NoError(t, err)
	_, err = ParseToken(testSecret, expired, TokenAccess)
	assert.Error(t, err)

	_, err = ParseToken(strings.Repeat("y", 32), refresh, TokenRefresh)
	assert.Error(t, err, "wrong secret")

	_, err = ParseToken(testSecret, "not-a-jwt", TokenAccess)
	assert.Error(t, err)
}
