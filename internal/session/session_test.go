package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/shopsync/internal/apperr"
	"github.com/roach88/shopsync/internal/identity"
	"github.com/roach88/shopsync/internal/idgen"
	"github.com/roach88/shopsync/internal/model"
	"github.com/roach88/shopsync/internal/store"
)

func newTestManager(t *testing.T) (*Manager, *store.Store) {
	t.Helper()
	s := store.New(store.NewMemory(0))
	m, err := New(Deps{Store: s, IDs: idgen.NewSequenceGenerator("user")})
	require.NoError(t, err)
	return m, s
}

func TestLogin_ManagerGetsStoreID(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t)

	u, err := m.Login(ctx, model.UserSession{Name: " Mia ", Role: "Manager"})
	require.NoError(t, err)

	assert.Equal(t, identity.ID("user-1"), u.ID)
	assert.Equal(t, "Mia", u.Name)
	assert.Equal(t, model.RoleManager, u.Role)
	assert.Equal(t, identity.ID("store-user-1"), u.StoreID)
	assert.Equal(t, "Mia's Store", u.StoreLabel())
}

func TestLogin_KeepsGivenStore(t *testing.T) {
	m, _ := newTestManager(t)

	u, err := m.Login(context.Background(), model.UserSession{ID: "7", Name: "Mia", Role: model.RoleManager, StoreID: "S1", StoreName: "Gadgets"})
	require.NoError(t, err)
	assert.Equal(t, identity.ID("S1"), u.StoreID)
	assert.Equal(t, "Gadgets", u.StoreLabel())
}

func TestLogin_NonManagerHasNoStore(t *testing.T) {
	m, _ := newTestManager(t)

	u, err := m.Login(context.Background(), model.UserSession{Name: "Sam", Role: model.RoleShipper, StoreID: "S1"})
	require.NoError(t, err)
	assert.True(t, u.StoreID.IsZero())
}

func TestLogin_Validation(t *testing.T) {
	m, s := newTestManager(t)

	_, err := m.Login(context.Background(), model.UserSession{Role: "admin"})
	assert.Equal(t, []string{"name", "role"}, apperr.FieldsOf(err))

	exists, err := s.Exists(context.Background(), model.CollectionCurrentUser)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestCurrentAndLogout(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t)

	_, found, err := m.Current(ctx)
	require.NoError(t, err)
	assert.False(t, found)

	_, err = m.Login(ctx, model.UserSession{Name: "Cleo", Role: model.RoleCustomer})
	require.NoError(t, err)
	u, found, err := m.Current(ctx)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "Cleo", u.Name)

	require.NoError(t, m.Logout(ctx))
	require.NoError(t, m.Logout(ctx))
	_, found, err = m.Current(ctx)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestCurrent_LegacyNullSession(t *testing.T) {
	ctx := context.Background()
	m, s := newTestManager(t)
	require.NoError(t, s.Medium().Apply(ctx, []store.Mutation{{Key: model.CollectionCurrentUser, Value: []byte(`null`)}}))

	_, found, err := m.Current(ctx)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRequire(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t)

	_, err := m.Require(ctx)
	assert.Equal(t, apperr.CodeNotLoggedIn, apperr.CodeOf(err))

	_, err = m.Login(ctx, model.UserSession{Name: "Sam", Role: model.RoleShipper})
	require.NoError(t, err)

	u, err := m.Require(ctx, model.RoleShipper, model.RoleManager)
	require.NoError(t, err)
	assert.Equal(t, "Sam", u.Name)

	_, err = m.Require(ctx, model.RoleManager)
	assert.Equal(t, apperr.CodeRoleMismatch, apperr.CodeOf(err))
	assert.Contains(t, apperr.UserMessage(err), "manager")
}
