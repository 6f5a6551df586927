package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/b-cinema/internal/model"
)

func TestGateOrder(t *testing.T) {
	admin := Principal{UserID: 2, Role: model.RoleAdmin}
	customer := Principal{UserID: 3, Role: model.RoleCustomer}
	system := &model.User{ID: 1, IsSystem: true}
	regular := &model.User{ID: 4}

	// the role check comes first, even for a protected target
	assert.ErrorIs(t, RequireManageable(customer, system), ErrUnauthorized)
	assert.ErrorIs(t, RequireManageable(Principal{}, regular), ErrUnauthorized)
	assert.ErrorIs(t, RequireManageable(admin, system), ErrProtectedAccount)
	assert.NoError(t, RequireManageable(admin, regular))
	assert.NoError(t, RequireManageable(admin, nil))
}

func TestRequireAdminAndLogin(t *testing.T) {
	assert.ErrorIs(t, RequireLogin(Principal{}), ErrUnauthorized)
	assert.NoError(t, RequireLogin(Principal{UserID: 3, Role: model.RoleCustomer}))

	assert.ErrorIs(t, RequireAdmin(Principal{Role: model.RoleAdmin}), ErrUnauthorized, "role without a user")
	assert.ErrorIs(t, RequireAdmin(Principal{UserID: 3, Role: "admin"}), ErrUnauthorized, "role is case sensitive")
	assert.NoError(t, RequireAdmin(Principal{UserID: 3, Role: model.RoleAdmin}))
}

func TestPrincipalContext(t *testing.T) {
	ctx := context.Background()
	assert.True(t, FromContext(ctx).Anonymous())

	p := Principal{SessionID: "x", UserID: 9, UserName: "Ana", Role: model.RoleAdmin}
	assert.Equal(t, p, FromContext(WithPrincipal(ctx, p)))
}

func TestMemorySessionStore(t *testing.T) {
	ctx := context.Background()
	st := NewMemorySessionStore(30 * time.Minute)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	st.now = func() time.Time { return now }

	id, err := st.Create(ctx, Session{UserID: 5, UserName: "Ana", UserRole: model.RoleCustomer})
	require.NoError(t, err)

	// each read slides the idle window
	now = now.Add(20 * time.Minute)
	s, err := st.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), s.UserID)

	now = now.Add(20 * time.Minute)
	_, err = st.Get(ctx, id)
	require.NoError(t, err)

	now = now.Add(31 * time.Minute)
	_, err = st.Get(ctx, id)
	assert.ErrorIs(t, err, ErrNoSession)

	id, err = st.Create(ctx, Session{UserID: 6})
	require.NoError(t, err)
	require.NoError(t, st.Delete(ctx, id))
	_, err = st.Get(ctx, id)
	assert.ErrorIs(t, err, ErrNoSession)
}
