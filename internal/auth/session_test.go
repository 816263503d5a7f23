package auth

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hospital-onboarding/internal/common/apperr"
	"hospital-onboarding/internal/common/logger"
)

func testStore(t *testing.T, ttl time.Duration) (*SessionStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewSessionStore(client, "session:", ttl, logger.NewTestLogger(t)), mr
}

func TestSessionRoundTrip(t *testing.T) {
	store, _ := testStore(t, time.Hour)
	ctx := context.Background()

	created, err := store.Create(ctx, Principal{
		UserID: "u-1",
		Email:  "admin@example.com",
		Role:   RoleAdmin,
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.Token)

	principal, err := store.Authenticate(ctx, created.Token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", principal.UserID)
	assert.Equal(t, RoleAdmin, principal.Role)
}

func TestAuthenticateUnknownToken(t *testing.T) {
	store, _ := testStore(t, time.Hour)

	_, err := store.Authenticate(context.Background(), "no-such-token")
	require.Error(t, err)
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))
}

func TestAuthenticateEmptyToken(t *testing.T) {
	store, _ := testStore(t, time.Hour)

	_, err := store.Authenticate(context.Background(), "")
	require.Error(t, err)
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))
}

func TestAuthenticateExpiredSession(t *testing.T) {
	store, mr := testStore(t, time.Minute)
	ctx := context.Background()

	created, err := store.Create(ctx, Principal{UserID: "u-2", Role: RoleDoctor})
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)

	_, err = store.Authenticate(ctx, created.Token)
	require.Error(t, err)
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))
}

func TestRevokeSession(t *testing.T) {
	store, _ := testStore(t, time.Hour)
	ctx := context.Background()

	created, err := store.Create(ctx, Principal{UserID: "u-3", Role: RoleAdmin})
	require.NoError(t, err)

	require.NoError(t, store.Revoke(ctx, created.Token))

	_, err = store.Authenticate(ctx, created.Token)
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))
}

func TestRolePermissions(t *testing.T) {
	tests := []struct {
		role Role
		perm Permission
		want bool
	}{
		{RoleSuperAdmin, PermContractsManage, true},
		{RoleSuperAdmin, PermMetricsRead, true},
		{RoleAdmin, PermApplicationsReview, true},
		{RoleAdmin, PermContractsSign, true},
		{RoleHospitalAdmin, PermApplicationsRead, true},
		{RoleHospitalAdmin, PermApplicationsReview, false},
		{RoleDoctor, PermApplicationsRead, true},
		{RoleDoctor, PermEvaluationsWrite, false},
		{RolePatient, PermApplicationsRead, false},
	}

	for _, tt := range tests {
		p := &Principal{Role: tt.role}
		assert.Equal(t, tt.want, p.Can(tt.perm), "%s %s", tt.role, tt.perm)
	}
}
