package tenant

import (
	"github.com/saas-foundation/saas-foundation/internal/authz"
)

// ModulePermissions is the permission catalog exposed by the tenant module.
var ModulePermissions = []authz.Permission{
	{Key: "account:create", Name: "Account Create", Description: "Allows creation of new accounts."},
	{Key: "account:read", Name: "Account Read", Description: "Allows reading account details."},
	{Key: "account:update", Name: "Account Update", Description: "Allows updating account details."},
	{Key: "account:delete", Name: "Account Delete", Description: "Allows deletion of accounts."},
	{Key: "user:create", Name: "User Create", Description: "Allows creation of new users within an account."},
	{Key: "user:read", Name: "User Read", Description: "Allows reading user details."},
	{Key: "user:update", Name: "User Update", Description: "Allows updating user details."},
	{Key: "user:delete", Name: "User Delete", Description: "Allows deletion of users."},
	{Key: "user:authenticate", Name: "User Authenticate", Description: "Allows users to authenticate."},
	{Key: "user:reset_password", Name: "User Reset Password", Description: "Allows users to reset their password."},
}
