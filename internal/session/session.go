// Package session manages the single process-wide currentUser record.
package session

import (
	"context"
	"errors"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/roach88/shopsync/internal/apperr"
	"github.com/roach88/shopsync/internal/identity"
	"github.com/roach88/shopsync/internal/idgen"
	"github.com/roach88/shopsync/internal/model"
	"github.com/roach88/shopsync/internal/store"
)

var errStoreRequired = errors.New("session manager: store is required")

// Deps wires the session manager.
type Deps struct {
	Store  *store.Store
	IDs    idgen.Generator
	Logger *zap.Logger
}

// Manager reads and writes currentUser.
type Manager struct {
	store *store.Store
	ids   idgen.Generator
	log   *zap.Logger
}

// New constructs a Manager.
func New(deps Deps) (*Manager, error) {
	if deps.Store == nil {
		return nil, errStoreRequired
	}
	m := &Manager{store: deps.Store, ids: deps.IDs, log: deps.Logger}
	if m.ids == nil {
		m.ids = idgen.UUIDv7Generator{}
	}
	if m.log == nil {
		m.log = zap.NewNop()
	}
	return m, nil
}

// Login stores user as the current session, replacing any previous one.
// A missing id is generated; a manager without a store gets one derived
// from the user id.
func (m *Manager) Login(ctx context.Context, user model.UserSession) (model.UserSession, error) {
	user.Name = strings.TrimSpace(user.Name)
	user.Role = model.Role(strings.ToLower(strings.TrimSpace(string(user.Role))))

	var fields []string
	if user.Name == "" {
		fields = append(fields, "name")
	}
	if !user.Role.Valid() {
		fields = append(fields, "role")
	}
	if len(fields) > 0 {
		return model.UserSession{}, apperr.Validation("Please enter a name and choose a role", fields...)
	}

	user.ID = identity.Normalize(user.ID.String())
	if user.ID.IsZero() {
		user.ID = m.ids.Generate()
	}
	user.StoreName = strings.TrimSpace(user.StoreName)
	if user.Role == model.RoleManager {
		user.StoreID = identity.Normalize(user.StoreID.String())
		if user.StoreID.IsZero() {
			user.StoreID = identity.ID("store-" + user.ID.String())
		}
	} else {
		user.StoreID = ""
		user.StoreName = ""
	}

	if err := store.WriteRecord(ctx, m.store, model.CollectionCurrentUser, user); err != nil {
		return model.UserSession{}, err
	}
	m.log.Info("session_started", zap.String("user_id", user.ID.String()), zap.String("role", string(user.Role)))
	return user, nil
}

// Logout clears the current session. Logging out twice is not an error.
func (m *Manager) Logout(ctx context.Context) error {
	if err := m.store.Remove(ctx, model.CollectionCurrentUser); err != nil {
		return err
	}
	m.log.Info("session_ended")
	return nil
}

// Current returns the logged-in user, if any.
func (m *Manager) Current(ctx context.Context) (model.UserSession, bool, error) {
	u, found, err := store.ReadRecord[model.UserSession](ctx, m.store, model.CollectionCurrentUser)
	if err != nil || !found || u.ID.IsZero() {
		return model.UserSession{}, false, err
	}
	return u, true, nil
}

// Require returns the current session when one exists and, if roles are
// given, its role is one of them.
func (m *Manager) Require(ctx context.Context, roles ...model.Role) (model.UserSession, error) {
	u, found, err := m.Current(ctx)
	if err != nil {
		return model.UserSession{}, err
	}
	if !found {
		return model.UserSession{}, apperr.NotLoggedIn()
	}
	if len(roles) > 0 && !slices.Contains(roles, u.Role) {
		want := make([]string, len(roles))
		for i, r := range roles {
			want[i] = string(r)
		}
		return model.UserSession{}, apperr.RoleMismatch(string(u.Role), want...)
	}
	return u, nil
}
