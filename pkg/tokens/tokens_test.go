package tokens

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-jwt-secret")

func TestIssueAccessToken_SetsExpectedClaims(t *testing.T) {
	t.Parallel()

	userID := uuid.NewString()
	exp := time.Now().Add(15 * time.Minute).UTC()

	token, err := IssueAccessToken(testSecret, userID, "alice", RoleAdmin, true, exp)
	require.NoError(t, err)

	claims, err := AccessClaimsFromToken(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.Subject)
	assert.Equal(t, "alice", claims.Username)
	assert.True(t, claims.Verified)
	assert.True(t, claims.IsAdmin())
	require.NotNil(t, claims.ExpiresAt)
	assert.WithinDuration(t, exp, claims.ExpiresAt.Time, time.Second)
}

func TestAccessClaimsFromToken_Rejects(t *testing.T) {
	t.Parallel()

	expired, err := IssueAccessToken(testSecret, "u", "bob", RoleCustomer, false, time.Now().Add(-time.Minute))
	require.NoError(t, err)
	valid, err := IssueAccessToken(testSecret, "u", "bob", RoleCustomer, false, time.Now().Add(time.Minute))
	require.NoError(t, err)
	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, AccessClaims{}).SignedString(testSecret)
	require.NoError(t, err)

	tests := []struct {
		name   string
		token  string
		secret []byte
	}{
		{name: "garbage", token: "not-a-jwt", secret: testSecret},
		{name: "expired", token: expired, secret: testSecret},
		{name: "wrong secret", token: valid, secret: []byte("other")},
		{name: "wrong alg", token: hs512, secret: testSecret},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			claims, err := AccessClaimsFromToken(tt.token, tt.secret)
			require.Error(t, err)
			assert.Nil(t, claims)
		})
	}
}

func TestExpired(t *testing.T) {
	t.Parallel()

	now := time.Now()
	live, err := IssueAccessToken(testSecret, "u", "c", RoleCustomer, false, now.Add(time.Hour))
	require.NoError(t, err)
	dead, err := IssueAccessToken(testSecret, "u", "c", RoleCustomer, false, now.Add(-time.Hour))
	require.NoError(t, err)

	assert.False(t, Expired(live, now))
	assert.True(t, Expired(dead, now))
	assert.False(t, Expired("opaque-token", now))

	exp, ok := ExpiresAt(live)
	require.True(t, ok)
	assert.WithinDuration(t, now.Add(time.Hour), exp, time.Second)
}
