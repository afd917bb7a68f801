package subscription

import (
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/saas-foundation/saas-foundation/internal/datastore"
)

// Limit is a named quantity with a default value, overridable per tier.
type Limit struct {
	ID           int64
	Key          string
	Name         string
	Description  string
	DefaultValue any
	CreatedAt    time.Time
}

// Feature bundles a set of permission keys under one marketable name.
type Feature struct {
	ID          int64
	Key         string
	Name        string
	Description string
	Permissions []string
	CreatedAt   time.Time
}

// Tier is a purchasable plan. Features holds feature keys; Limits holds
// limit key to value overrides. The Stripe identifiers mirror the product
// and recurring prices created at the gateway.
type Tier struct {
	ID              int64
	Key             string
	Status          string
	Name            string
	Description     string
	MonthlyCost     float64
	YearlyCost      float64
	StripeProductID string
	MonthlyPriceID  string
	YearlyPriceID   string
	Features        []string
	Limits          map[string]any
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Active reports whether the tier is in one of the two active states.
func (t *Tier) Active() bool {
	return t.Status == TierStatusActivePublic || t.Status == TierStatusActivePrivate
}

// Subscription links an account to a tier and mirrors the gateway
// subscription state.
type Subscription struct {
	ID                   int64
	AccountID            int64
	TierID               int64
	StripeSubscriptionID string
	Status               string
	CurrentPeriodStart   time.Time
	CurrentPeriodEnd     time.Time
	CancelAtPeriodEnd    bool
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

func decodeJSON(raw any, target any) {
	text := datastore.AsString(raw)
	if text == "" {
		return
	}

	if err := json.Unmarshal([]byte(text), target); err != nil {
		log.Warn().Err(err).Msg("failed to decode stored JSON value")
	}
}

func limitFromRow(row datastore.Row) *Limit {
	limit := &Limit{
		Key:         datastore.AsString(row["key"]),
		Name:        datastore.AsString(row["name"]),
		Description: datastore.AsString(row["description"]),
	}

	if id, ok := datastore.AsInt64(row["id"]); ok {
		limit.ID = id
	}

	decodeJSON(row["default_value"], &limit.DefaultValue)

	if t, ok := datastore.ParseTime(row["created_at"]); ok {
		limit.CreatedAt = t
	}

	return limit
}

func featureFromRow(row datastore.Row) *Feature {
	feature := &Feature{
		Key:         datastore.AsString(row["key"]),
		Name:        datastore.AsString(row["name"]),
		Description: datastore.AsString(row["description"]),
	}

	if id, ok := datastore.AsInt64(row["id"]); ok {
		feature.ID = id
	}

	decodeJSON(row["permissions"], &feature.Permissions)

	if t, ok := datastore.ParseTime(row["created_at"]); ok {
		feature.CreatedAt = t
	}

	return feature
}

func tierFromRow(row datastore.Row) *Tier {
	tier := &Tier{
		Key:             datastore.AsString(row["key"]),
		Status:          datastore.AsString(row["status"]),
		Name:            datastore.AsString(row["name"]),
		Description:     datastore.AsString(row["description"]),
		StripeProductID: datastore.AsString(row["stripe_product_id"]),
		MonthlyPriceID:  datastore.AsString(row["monthly_price_id"]),
		YearlyPriceID:   datastore.AsString(row["yearly_price_id"]),
	}

	if id, ok := datastore.AsInt64(row["id"]); ok {
		tier.ID = id
	}

	if cost, ok := datastore.AsFloat64(row["monthly_cost"]); ok {
		tier.MonthlyCost = cost
	}

	if cost, ok := datastore.AsFloat64(row["yearly_cost"]); ok {
		tier.YearlyCost = cost
	}

	decodeJSON(row["features"], &tier.Features)
	decodeJSON(row["limits"], &tier.Limits)

	if t, ok := datastore.ParseTime(row["created_at"]); ok {
		tier.CreatedAt = t
	}

	if t, ok := datastore.ParseTime(row["updated_at"]); ok {
		tier.UpdatedAt = t
	}

	return tier
}

func subscriptionFromRow(row datastore.Row) *Subscription {
	sub := &Subscription{
		StripeSubscriptionID: datastore.AsString(row["stripe_subscription_id"]),
		Status:               datastore.AsString(row["status"]),
		CancelAtPeriodEnd:    datastore.AsBool(row["cancel_at_period_end"]),
	}

	if id, ok := datastore.AsInt64(row["id"]); ok {
		sub.ID = id
	}

	if accountID, ok := datastore.AsInt64(row["account_id"]); ok {
		sub.AccountID = accountID
	}

	if tierID, ok := datastore.AsInt64(row["tier_id"]); ok {
		sub.TierID = tierID
	}

	if t, ok := datastore.ParseTime(row["current_period_start"]); ok {
		sub.CurrentPeriodStart = t
	}

	if t, ok := datastore.ParseTime(row["current_period_end"]); ok {
		sub.CurrentPeriodEnd = t
	}

	if t, ok := datastore.ParseTime(row["created_at"]); ok {
		sub.CreatedAt = t
	}

	if t, ok := datastore.ParseTime(row["updated_at"]); ok {
		sub.UpdatedAt = t
	}

	return sub
}
