package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func int64Ptr(v int64) *int64 {
	return &v
}

func TestRegisterPermissions(t *testing.T) {
	m := NewManager()

	m.RegisterPermissions([]Permission{
		{Key: "tier:create", Name: "Tier Create", Description: "Allows creation of tiers."},
		{Key: "tier:read", Name: "Tier Read", Description: "Allows reading tiers."},
	})

	registered := m.RegisteredPermissions()
	require.Len(t, registered, 2)

	// registration order is preserved
	assert.Equal(t, "tier:create", registered[0].Key)
	assert.Equal(t, "tier:read", registered[1].Key)
}

func TestRegisterPermissionsSkipsMalformed(t *testing.T) {
	testCases := []struct {
		name string
		perm Permission
	}{
		{
			name: "missing key",
			perm: Permission{Name: "No Key", Description: "d"},
		},
		{
			name: "missing name",
			perm: Permission{Key: "a:b", Description: "d"},
		},
		{
			name: "missing description",
			perm: Permission{Key: "a:b", Name: "n"},
		},
		{
			name: "key without separator",
			perm: Permission{Key: "noseparator", Name: "n", Description: "d"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			m := NewManager()
			m.RegisterPermissions([]Permission{tc.perm})
			assert.Empty(t, m.RegisteredPermissions())
		})
	}
}

func TestRegisterPermissionsDuplicateKeyIsNoOp(t *testing.T) {
	m := NewManager()

	perm := Permission{Key: "user:read", Name: "User Read", Description: "d"}
	m.RegisterPermissions([]Permission{perm})
	m.RegisterPermissions([]Permission{
		{Key: "user:read", Name: "Another Name", Description: "other"},
	})

	registered := m.RegisteredPermissions()
	require.Len(t, registered, 1)

	// the original entry survives, never duplicated or replaced
	assert.Equal(t, "User Read", registered[0].Name)
}

func TestDefineRoleOverwrites(t *testing.T) {
	m := NewManager()
	m.RegisterPermissions([]Permission{
		{Key: "user:read", Name: "User Read", Description: "d"},
		{Key: "user:update", Name: "User Update", Description: "d"},
	})

	m.DefineRole("support", []Permission{{Key: "user:read"}})
	require.Len(t, m.RolePermissions("support"), 1)

	m.DefineRole("support", []Permission{{Key: "user:read"}, {Key: "user:update"}})
	assert.Len(t, m.RolePermissions("support"), 2)

	assert.Empty(t, m.RolePermissions("undefined"))
}

func TestIsAuthorizedDefaultDeny(t *testing.T) {
	m := NewManager()
	m.DefineRole("admin", []Permission{
		{Key: "user:manage", Action: "manage", Resource: "user", Scope: ScopeGlobal},
	})

	// empty roles is always denied
	assert.False(t, m.IsAuthorized(Request{Action: "manage", Resource: "user"}))

	// undefined roles contribute nothing
	assert.False(t, m.IsAuthorized(Request{
		Roles: []string{"ghost"}, Action: "manage", Resource: "user",
	}))
}

func TestIsAuthorizedGlobalScope(t *testing.T) {
	m := NewManager()
	m.DefineRole("admin", []Permission{
		{Key: "user:manage", Action: "manage", Resource: "user", Scope: ScopeGlobal},
	})
	m.DefineRole("anyrole", []Permission{
		{Key: "tier:view", Action: "view", Resource: "tier", Scope: ScopeAny},
	})

	assert.True(t, m.IsAuthorized(Request{
		Roles: []string{"admin"}, Action: "manage", Resource: "user",
	}))

	// "any" behaves like "global"
	assert.True(t, m.IsAuthorized(Request{
		Roles: []string{"anyrole"}, Action: "view", Resource: "tier",
	}))

	// action or resource mismatch denies
	assert.False(t, m.IsAuthorized(Request{
		Roles: []string{"admin"}, Action: "delete", Resource: "user",
	}))
	assert.False(t, m.IsAuthorized(Request{
		Roles: []string{"admin"}, Action: "manage", Resource: "account",
	}))
}

func TestIsAuthorizedOwnScope(t *testing.T) {
	m := NewManager()
	m.DefineRole("member", []Permission{
		{Key: "user:manage", Action: "manage", Resource: "user", Scope: ScopeOwn},
	})

	testCases := []struct {
		name     string
		request  Request
		expected bool
	}{
		{
			name: "owner matches user",
			request: Request{
				Roles: []string{"member"}, Action: "manage", Resource: "user",
				ResourceOwnerID: int64Ptr(7), UserID: int64Ptr(7),
			},
			expected: true,
		},
		{
			name: "owner differs from user",
			request: Request{
				Roles: []string{"member"}, Action: "manage", Resource: "user",
				ResourceOwnerID: int64Ptr(7), UserID: int64Ptr(8),
			},
			expected: false,
		},
		{
			name: "missing user id",
			request: Request{
				Roles: []string{"member"}, Action: "manage", Resource: "user",
				ResourceOwnerID: int64Ptr(7),
			},
			expected: false,
		},
		{
			name: "missing owner id",
			request: Request{
				Roles: []string{"member"}, Action: "manage", Resource: "user",
				UserID: int64Ptr(7),
			},
			expected: false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, m.IsAuthorized(tc.request))
		})
	}
}

func TestIsAuthorizedSpecificResourceID(t *testing.T) {
	m := NewManager()
	m.DefineRole("editor", []Permission{
		{Key: "doc:edit", Action: "edit", Resource: "doc", ID: int64Ptr(42)},
	})

	assert.True(t, m.IsAuthorized(Request{
		Roles: []string{"editor"}, Action: "edit", Resource: "doc",
		ResourceID: int64Ptr(42),
	}))

	assert.False(t, m.IsAuthorized(Request{
		Roles: []string{"editor"}, Action: "edit", Resource: "doc",
		ResourceID: int64Ptr(43),
	}))

	assert.False(t, m.IsAuthorized(Request{
		Roles: []string{"editor"}, Action: "edit", Resource: "doc",
	}))
}

func TestIsAuthorizedUnionsRoles(t *testing.T) {
	m := NewManager()
	m.DefineRole("viewer", []Permission{
		{Key: "doc:view", Action: "view", Resource: "doc", Scope: ScopeGlobal},
	})
	m.DefineRole("editor", []Permission{
		{Key: "doc:edit", Action: "edit", Resource: "doc", Scope: ScopeGlobal},
	})

	// permission granted by the second role of the caller
	assert.True(t, m.IsAuthorized(Request{
		Roles: []string{"viewer", "editor"}, Action: "edit", Resource: "doc",
	}))
}
