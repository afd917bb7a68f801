// Package authz implements the in-process authorization manager.
// Permissions are registered once at startup, roles are named permission
// sets, and authorization checks are a linear scan over the permissions of
// the caller's roles. The registry is process local and not persisted.
package authz

import (
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
)

// Permission scope constants.
const (
	// ScopeGlobal grants the action on every resource of the type.
	ScopeGlobal = "global"
	// ScopeAny is an alias of ScopeGlobal kept for registered permission data.
	ScopeAny = "any"
	// ScopeOwn grants the action only on resources owned by the caller.
	ScopeOwn = "own"
)

// Permission describes one grantable capability. Key has the shape
// "object:action" and is unique within the registry. Action, Resource,
// Scope and ID are only set on permissions used for authorization checks;
// plain catalog entries carry just Key, Name and Description.
type Permission struct {
	Key         string
	Name        string
	Description string
	Action      string
	Resource    string
	Scope       string
	ID          *int64
}

// Request carries one authorization question.
type Request struct {
	Roles           []string
	Action          string
	Resource        string
	ResourceID      *int64
	ResourceOwnerID *int64
	UserID          *int64
}

// Manager holds the registered permissions and role definitions.
// Mutating calls are serialized with a mutex; checks take a read lock.
type Manager struct {
	mu          sync.RWMutex
	permissions []Permission
	roles       map[string][]Permission
}

// NewManager creates an empty authorization manager.
func NewManager() *Manager {
	return &Manager{
		roles: make(map[string][]Permission),
	}
}

// RegisterPermissions adds permissions to the registry. Malformed records
// (missing key, name or description, key without the ":" separator) and
// duplicate keys are skipped with a warning, never an error: registration
// is a bulk startup operation and one bad record should not abort the rest.
// Registration order is preserved.
func (m *Manager) RegisterPermissions(permissions []Permission) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, perm := range permissions {
		if perm.Key == "" || perm.Name == "" || perm.Description == "" {
			log.Warn().
				Str("key", perm.Key).
				Msg("skipping permission with missing key, name or description")

			continue
		}

		if !strings.Contains(perm.Key, ":") {
			log.Warn().
				Str("key", perm.Key).
				Msg("skipping permission with invalid key format")

			continue
		}

		if m.findRegistered(perm.Key) != nil {
			log.Warn().
				Str("key", perm.Key).
				Msg("permission already registered, skipping")

			continue
		}

		m.permissions = append(m.permissions, perm)

		log.Info().Str("key", perm.Key).Msg("registered permission")
	}
}

// findRegistered returns the registered permission for a key, or nil.
// Caller must hold the lock.
func (m *Manager) findRegistered(key string) *Permission {
	for i := range m.permissions {
		if m.permissions[i].Key == key {
			return &m.permissions[i]
		}
	}

	return nil
}

// RegisteredPermissions returns all registered permissions in registration
// order.
func (m *Manager) RegisteredPermissions() []Permission {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Permission, len(m.permissions))
	copy(out, m.permissions)

	return out
}

// DefineRole assigns a permission set to a role name. Redefining a role
// overwrites it. Permissions with an unregistered key are logged but still
// assigned; keys without registration carry authorization data of their own.
func (m *Manager) DefineRole(name string, permissions []Permission) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, perm := range permissions {
		if perm.Key != "" && m.findRegistered(perm.Key) == nil {
			log.Warn().
				Str("role", name).
				Str("key", perm.Key).
				Msg("assigning unregistered permission to role")
		}
	}

	role := make([]Permission, len(permissions))
	copy(role, permissions)
	m.roles[name] = role

	log.Info().Str("role", name).Int("permissions", len(role)).Msg("defined role")
}

// RolePermissions returns the permissions of a role. Undefined roles yield
// an empty set.
func (m *Manager) RolePermissions(name string) []Permission {
	m.mu.RLock()
	defer m.mu.RUnlock()

	role, ok := m.roles[name]
	if !ok {
		return nil
	}

	out := make([]Permission, len(role))
	copy(out, role)

	return out
}

// IsAuthorized evaluates whether the roles of the request grant the action
// on the resource. The check is default-deny: no roles means no access, and
// undefined roles contribute no permissions. Permissions are scanned in
// role order; the first match grants and there are no deny overrides.
func (m *Manager) IsAuthorized(req Request) bool {
	if len(req.Roles) == 0 {
		log.Debug().Msg("authorization denied: no roles")
		return false
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, roleName := range req.Roles {
		for _, perm := range m.roles[roleName] {
			if perm.Action != req.Action || perm.Resource != req.Resource {
				continue
			}

			switch perm.Scope {
			case ScopeGlobal, ScopeAny:
				log.Debug().
					Str("key", perm.Key).
					Str("role", roleName).
					Msg("authorization granted by global scope")

				return true
			case ScopeOwn:
				if req.UserID != nil && req.ResourceOwnerID != nil &&
					*req.UserID == *req.ResourceOwnerID {
					log.Debug().
						Str("key", perm.Key).
						Str("role", roleName).
						Msg("authorization granted by own scope")

					return true
				}
			default:
				if perm.ID != nil && req.ResourceID != nil && *perm.ID == *req.ResourceID {
					log.Debug().
						Str("key", perm.Key).
						Str("role", roleName).
						Msg("authorization granted by specific resource id")

					return true
				}
			}
		}
	}

	log.Debug().
		Str("action", req.Action).
		Str("resource", req.Resource).
		Msg("authorization denied: no matching permission")

	return false
}
