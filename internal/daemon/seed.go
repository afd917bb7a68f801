package daemon

import (
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/saas-foundation/saas-foundation/internal/authz"
	"github.com/saas-foundation/saas-foundation/internal/tenant"
)

const (
	systemAccountName = "System"
	adminUsername     = "admin"
	adminRoleName     = "admin"
)

// seed defines the admin role over every registered permission and creates
// the initial system account with a default admin user on first start.
func seed(az *authz.Manager, tenants *tenant.Manager) error {
	az.DefineRole(adminRoleName, az.RegisteredPermissions())

	_, err := tenants.UserByUsername(adminUsername)
	if err == nil {
		return nil
	}

	if !errors.Is(err, tenant.ErrUserNotFound) {
		return err
	}

	account, err := tenants.AccountByName(systemAccountName)
	if errors.Is(err, tenant.ErrAccountNotFound) {
		account, err = tenants.CreateAccount(systemAccountName)
	}

	if err != nil {
		return err
	}

	// change this password right after first login
	if _, err := tenants.CreateUser(account.ID, adminUsername, "changeme"); err != nil {
		return err
	}

	log.Warn().Msg("created default admin user with password 'changeme'")

	return nil
}
