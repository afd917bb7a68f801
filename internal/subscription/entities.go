// Package subscription implements tiers, features, limits and subscriptions
// on top of the datastore, and orchestrates the billing gateway: tier
// creation mirrors products and prices at the gateway, checkout webhooks
// create accounts and local subscription records.
package subscription

import (
	"github.com/saas-foundation/saas-foundation/internal/datastore"
)

const (
	limitsTable        = "limits"
	featuresTable      = "features"
	tiersTable         = "tiers"
	subscriptionsTable = "subscriptions"
)

// Tier lifecycle states.
const (
	TierStatusDraft         = "draft"
	TierStatusActivePublic  = "active:public"
	TierStatusActivePrivate = "active:private"
	TierStatusDeactivated   = "deactivated"
)

// SubscriptionStatusActive is the gateway status that blocks tier
// deactivation.
const SubscriptionStatusActive = "active"

// Entities returns the entity descriptors of the subscription module.
// Structured values (feature lists, limit overrides) are stored as JSON
// text.
func Entities() []datastore.Entity {
	return []datastore.Entity{
		{
			Table: limitsTable,
			Fields: []datastore.Field{
				{Name: "key", Type: datastore.Text, Unique: true},
				{Name: "name", Type: datastore.Text},
				{Name: "description", Type: datastore.Text},
				{Name: "default_value", Type: datastore.JSON},
				{Name: "created_at", Type: datastore.Timestamp, Nullable: true},
			},
		},
		{
			Table: featuresTable,
			Fields: []datastore.Field{
				{Name: "key", Type: datastore.Text, Unique: true},
				{Name: "name", Type: datastore.Text},
				{Name: "description", Type: datastore.Text},
				{Name: "permissions", Type: datastore.JSON},
				{Name: "created_at", Type: datastore.Timestamp, Nullable: true},
			},
		},
		{
			Table: tiersTable,
			Fields: []datastore.Field{
				{Name: "key", Type: datastore.Text, Unique: true},
				{Name: "status", Type: datastore.Text},
				{Name: "name", Type: datastore.Text},
				{Name: "description", Type: datastore.Text},
				{Name: "monthly_cost", Type: datastore.Real},
				{Name: "yearly_cost", Type: datastore.Real},
				{Name: "stripe_product_id", Type: datastore.Text, Nullable: true},
				{Name: "monthly_price_id", Type: datastore.Text, Nullable: true},
				{Name: "yearly_price_id", Type: datastore.Text, Nullable: true},
				{Name: "features", Type: datastore.JSON},
				{Name: "limits", Type: datastore.JSON},
				{Name: "created_at", Type: datastore.Timestamp, Nullable: true},
				{Name: "updated_at", Type: datastore.Timestamp, Nullable: true},
			},
		},
		{
			Table: subscriptionsTable,
			Fields: []datastore.Field{
				{Name: "account_id", Type: datastore.Integer},
				{Name: "tier_id", Type: datastore.Integer},
				{Name: "stripe_subscription_id", Type: datastore.Text, Unique: true},
				{Name: "status", Type: datastore.Text},
				{Name: "current_period_start", Type: datastore.Timestamp},
				{Name: "current_period_end", Type: datastore.Timestamp},
				{Name: "cancel_at_period_end", Type: datastore.Boolean},
				{Name: "created_at", Type: datastore.Timestamp, Nullable: true},
				{Name: "updated_at", Type: datastore.Timestamp, Nullable: true},
			},
		},
	}
}
