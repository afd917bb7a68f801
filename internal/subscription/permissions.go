package subscription

import (
	"github.com/saas-foundation/saas-foundation/internal/authz"
)

// ModulePermissions is the permission catalog exposed by the subscription
// module.
var ModulePermissions = []authz.Permission{
	{Key: "limit:create", Name: "Limit Create", Description: "Allows creation of new limits."},
	{Key: "limit:read", Name: "Limit Read", Description: "Allows reading limit details."},
	{Key: "limit:update", Name: "Limit Update", Description: "Allows updating limit details."},
	{Key: "limit:delete", Name: "Limit Delete", Description: "Allows deletion of limits."},
	{Key: "feature:create", Name: "Feature Create", Description: "Allows creation of new features."},
	{Key: "feature:read", Name: "Feature Read", Description: "Allows reading feature details."},
	{Key: "feature:update", Name: "Feature Update", Description: "Allows updating feature details."},
	{Key: "feature:delete", Name: "Feature Delete", Description: "Allows deletion of features."},
	{Key: "tier:create", Name: "Tier Create", Description: "Allows creation of new tiers."},
	{Key: "tier:read", Name: "Tier Read", Description: "Allows reading tier details."},
	{Key: "tier:update", Name: "Tier Update", Description: "Allows updating tier details."},
	{Key: "tier:delete", Name: "Tier Delete", Description: "Allows deletion of tiers."},
	{Key: "tier:activate", Name: "Tier Activate", Description: "Allows activating tiers."},
	{Key: "tier:deactivate", Name: "Tier Deactivate", Description: "Allows deactivating tiers."},
}
