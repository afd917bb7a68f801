package subscription

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/saas-foundation/saas-foundation/internal/authz"
	"github.com/saas-foundation/saas-foundation/internal/datastore"
	"github.com/saas-foundation/saas-foundation/internal/payment"
	"github.com/saas-foundation/saas-foundation/internal/tenant"
)

// CheckoutCompletedEvent is the only webhook event type acted upon.
const CheckoutCompletedEvent = "checkout.session.completed"

const defaultCurrency = "usd"

// Manager implements the subscription module on top of the datastore and
// the billing gateway.
type Manager struct {
	limits        *datastore.DAO
	features      *datastore.DAO
	tiers         *datastore.DAO
	subscriptions *datastore.DAO
	gateway       payment.Adapter
	tenants       *tenant.Manager
	currency      string
}

// NewManager registers the subscription entities with the datastore and,
// when an authorization manager is given, the module permission catalog.
// The tenant manager is used by webhook handling to create accounts for
// new customers.
func NewManager(ds *datastore.Manager, gateway payment.Adapter, az *authz.Manager, tenants *tenant.Manager, currency string) (*Manager, error) {
	if err := ds.Register(Entities()...); err != nil {
		return nil, err
	}

	m := &Manager{gateway: gateway, tenants: tenants, currency: currency}
	if m.currency == "" {
		m.currency = defaultCurrency
	}

	var err error

	if m.limits, err = ds.DAO(limitsTable); err != nil {
		return nil, err
	}

	if m.features, err = ds.DAO(featuresTable); err != nil {
		return nil, err
	}

	if m.tiers, err = ds.DAO(tiersTable); err != nil {
		return nil, err
	}

	if m.subscriptions, err = ds.DAO(subscriptionsTable); err != nil {
		return nil, err
	}

	if az != nil {
		az.RegisterPermissions(ModulePermissions)
	}

	return m, nil
}

func encodeJSON(v any) (string, error) {
	encoded, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to encode JSON value: %w", err)
	}

	return string(encoded), nil
}

func (m *Manager) checkKeyFree(dao *datastore.DAO, key string) error {
	_, err := dao.FindOneByColumn("key", key)
	if err == nil {
		return ErrKeyTaken
	}

	if !errors.Is(err, datastore.ErrRowNotFound) {
		return err
	}

	return nil
}

// CreateLimit stores a new limit. The default value may be any
// JSON-encodable value.
func (m *Manager) CreateLimit(key, name, description string, defaultValue any) (*Limit, error) {
	if err := m.checkKeyFree(m.limits, key); err != nil {
		return nil, err
	}

	encoded, err := encodeJSON(defaultValue)
	if err != nil {
		return nil, err
	}

	id, err := m.limits.Insert(datastore.Row{
		"key":           key,
		"name":          name,
		"description":   description,
		"default_value": encoded,
	})
	if err != nil {
		return nil, err
	}

	return m.LimitByID(id)
}

// LimitByID retrieves a limit by identifier.
func (m *Manager) LimitByID(id int64) (*Limit, error) {
	row, err := m.limits.GetByID(id)
	if errors.Is(err, datastore.ErrRowNotFound) {
		return nil, ErrLimitNotFound
	}

	if err != nil {
		return nil, err
	}

	return limitFromRow(row), nil
}

// LimitByKey retrieves a limit by its unique key.
func (m *Manager) LimitByKey(key string) (*Limit, error) {
	row, err := m.limits.FindOneByColumn("key", key)
	if errors.Is(err, datastore.ErrRowNotFound) {
		return nil, ErrLimitNotFound
	}

	if err != nil {
		return nil, err
	}

	return limitFromRow(row), nil
}

// Limits lists all limits.
func (m *Manager) Limits() ([]*Limit, error) {
	rows, err := m.limits.GetAll()
	if err != nil {
		return nil, err
	}

	limits := make([]*Limit, 0, len(rows))
	for _, row := range rows {
		limits = append(limits, limitFromRow(row))
	}

	return limits, nil
}

// CreateFeature stores a new feature bundling the given permission keys.
func (m *Manager) CreateFeature(key, name, description string, permissions []string) (*Feature, error) {
	if err := m.checkKeyFree(m.features, key); err != nil {
		return nil, err
	}

	if permissions == nil {
		permissions = []string{}
	}

	encoded, err := encodeJSON(permissions)
	if err != nil {
		return nil, err
	}

	id, err := m.features.Insert(datastore.Row{
		"key":         key,
		"name":        name,
		"description": description,
		"permissions": encoded,
	})
	if err != nil {
		return nil, err
	}

	return m.FeatureByID(id)
}

// FeatureByID retrieves a feature by identifier.
func (m *Manager) FeatureByID(id int64) (*Feature, error) {
	row, err := m.features.GetByID(id)
	if errors.Is(err, datastore.ErrRowNotFound) {
		return nil, ErrFeatureNotFound
	}

	if err != nil {
		return nil, err
	}

	return featureFromRow(row), nil
}

// FeatureByKey retrieves a feature by its unique key.
func (m *Manager) FeatureByKey(key string) (*Feature, error) {
	row, err := m.features.FindOneByColumn("key", key)
	if errors.Is(err, datastore.ErrRowNotFound) {
		return nil, ErrFeatureNotFound
	}

	if err != nil {
		return nil, err
	}

	return featureFromRow(row), nil
}

// Features lists all features.
func (m *Manager) Features() ([]*Feature, error) {
	rows, err := m.features.GetAll()
	if err != nil {
		return nil, err
	}

	features := make([]*Feature, 0, len(rows))
	for _, row := range rows {
		features = append(features, featureFromRow(row))
	}

	return features, nil
}

// TierParams holds the input of CreateTier. Costs are in major currency
// units; a cost of zero skips price creation for that interval. When
// StripeProductID is empty a product is created at the gateway.
type TierParams struct {
	Key             string
	Name            string
	Description     string
	MonthlyCost     float64
	YearlyCost      float64
	Status          string
	Features        []string
	Limits          map[string]any
	StripeProductID string
}

func toUnitAmount(cost float64) int64 {
	return int64(math.Round(cost * 100))
}

// CreateTier stores a new tier and mirrors it at the billing gateway as a
// product with recurring monthly and yearly prices.
func (m *Manager) CreateTier(params TierParams) (*Tier, error) {
	if err := m.checkKeyFree(m.tiers, params.Key); err != nil {
		return nil, err
	}

	if params.Status == "" {
		params.Status = TierStatusDraft
	}

	if params.Features == nil {
		params.Features = []string{}
	}

	if params.Limits == nil {
		params.Limits = map[string]any{}
	}

	productID := params.StripeProductID
	if productID == "" {
		product, err := m.gateway.CreateProduct(params.Name, params.Description)
		if err != nil {
			return nil, fmt.Errorf("failed to create gateway product: %w", err)
		}

		productID = product.ID
	}

	var monthlyPriceID, yearlyPriceID string

	if params.MonthlyCost > 0 {
		price, err := m.gateway.CreatePrice(productID, toUnitAmount(params.MonthlyCost), m.currency, "month")
		if err != nil {
			return nil, fmt.Errorf("failed to create monthly price: %w", err)
		}

		monthlyPriceID = price.ID
	}

	if params.YearlyCost > 0 {
		price, err := m.gateway.CreatePrice(productID, toUnitAmount(params.YearlyCost), m.currency, "year")
		if err != nil {
			return nil, fmt.Errorf("failed to create yearly price: %w", err)
		}

		yearlyPriceID = price.ID
	}

	features, err := encodeJSON(params.Features)
	if err != nil {
		return nil, err
	}

	limits, err := encodeJSON(params.Limits)
	if err != nil {
		return nil, err
	}

	id, err := m.tiers.Insert(datastore.Row{
		"key":               params.Key,
		"status":            params.Status,
		"name":              params.Name,
		"description":       params.Description,
		"monthly_cost":      params.MonthlyCost,
		"yearly_cost":       params.YearlyCost,
		"stripe_product_id": productID,
		"monthly_price_id":  monthlyPriceID,
		"yearly_price_id":   yearlyPriceID,
		"features":          features,
		"limits":            limits,
	})
	if err != nil {
		return nil, err
	}

	log.Info().Int64("tier_id", id).Str("key", params.Key).Str("product_id", productID).Msg("created tier")

	return m.TierByID(id)
}

// TierByID retrieves a tier by identifier.
func (m *Manager) TierByID(id int64) (*Tier, error) {
	row, err := m.tiers.GetByID(id)
	if errors.Is(err, datastore.ErrRowNotFound) {
		return nil, ErrTierNotFound
	}

	if err != nil {
		return nil, err
	}

	return tierFromRow(row), nil
}

// TierByKey retrieves a tier by its unique key.
func (m *Manager) TierByKey(key string) (*Tier, error) {
	row, err := m.tiers.FindOneByColumn("key", key)
	if errors.Is(err, datastore.ErrRowNotFound) {
		return nil, ErrTierNotFound
	}

	if err != nil {
		return nil, err
	}

	return tierFromRow(row), nil
}

// Tiers lists all tiers.
func (m *Manager) Tiers() ([]*Tier, error) {
	rows, err := m.tiers.GetAll()
	if err != nil {
		return nil, err
	}

	tiers := make([]*Tier, 0, len(rows))
	for _, row := range rows {
		tiers = append(tiers, tierFromRow(row))
	}

	return tiers, nil
}

// PublicTiers lists the tiers visible on public pages.
func (m *Manager) PublicTiers() ([]*Tier, error) {
	tiers, err := m.Tiers()
	if err != nil {
		return nil, err
	}

	public := make([]*Tier, 0, len(tiers))
	for _, tier := range tiers {
		if tier.Status == TierStatusActivePublic {
			public = append(public, tier)
		}
	}

	return public, nil
}

// TierUpdate holds optional tier changes; nil fields are left untouched.
type TierUpdate struct {
	Name        *string
	Description *string
	MonthlyCost *float64
	YearlyCost  *float64
	Status      *string
	Features    *[]string
	Limits      *map[string]any
}

// UpdateTier applies the non-nil fields of the update and stamps
// updated_at.
func (m *Manager) UpdateTier(id int64, update TierUpdate) (*Tier, error) {
	row := datastore.Row{}

	if update.Name != nil {
		row["name"] = *update.Name
	}

	if update.Description != nil {
		row["description"] = *update.Description
	}

	if update.MonthlyCost != nil {
		row["monthly_cost"] = *update.MonthlyCost
	}

	if update.YearlyCost != nil {
		row["yearly_cost"] = *update.YearlyCost
	}

	if update.Status != nil {
		row["status"] = *update.Status
	}

	if update.Features != nil {
		encoded, err := encodeJSON(*update.Features)
		if err != nil {
			return nil, err
		}

		row["features"] = encoded
	}

	if update.Limits != nil {
		encoded, err := encodeJSON(*update.Limits)
		if err != nil {
			return nil, err
		}

		row["limits"] = encoded
	}

	row["updated_at"] = datastore.FormatTime(time.Now())

	err := m.tiers.Update(id, row)
	if errors.Is(err, datastore.ErrRowNotFound) {
		return nil, ErrTierNotFound
	}

	if err != nil {
		return nil, err
	}

	return m.TierByID(id)
}

// ActivateTier moves a tier into an active state. An empty status defaults
// to active:public.
func (m *Manager) ActivateTier(id int64, status string) (*Tier, error) {
	if status == "" {
		status = TierStatusActivePublic
	}

	if status != TierStatusActivePublic && status != TierStatusActivePrivate {
		return nil, ErrInvalidTierStatus
	}

	return m.UpdateTier(id, TierUpdate{Status: &status})
}

// DeactivateTier moves a tier into the deactivated state. It is refused
// while any active subscription references the tier.
func (m *Manager) DeactivateTier(id int64) (*Tier, error) {
	subs, err := m.subscriptions.FindByColumn("tier_id", id)
	if err != nil {
		return nil, err
	}

	for _, row := range subs {
		if datastore.AsString(row["status"]) == SubscriptionStatusActive {
			log.Error().Int64("tier_id", id).Msg("cannot deactivate tier with active subscriptions")

			return nil, ErrTierHasActiveSubscriptions
		}
	}

	status := TierStatusDeactivated

	return m.UpdateTier(id, TierUpdate{Status: &status})
}

// DeleteTier removes a deactivated tier. The gateway product is archived
// best effort; an archive failure is logged and does not block local
// deletion.
func (m *Manager) DeleteTier(id int64) error {
	tier, err := m.TierByID(id)
	if err != nil {
		return err
	}

	if tier.Status != TierStatusDeactivated {
		log.Error().Int64("tier_id", id).Str("status", tier.Status).Msg("tier must be deactivated before deletion")

		return ErrTierNotDeactivated
	}

	if tier.StripeProductID != "" {
		if _, err := m.gateway.ArchiveProduct(tier.StripeProductID); err != nil {
			log.Error().Err(err).Str("product_id", tier.StripeProductID).Msg("failed to archive gateway product")
		} else {
			log.Info().Str("product_id", tier.StripeProductID).Int64("tier_id", id).Msg("archived gateway product")
		}
	}

	return m.tiers.Delete(id)
}

// CreateSubscription stores a local subscription record mirroring gateway
// state. The referenced tier must exist.
func (m *Manager) CreateSubscription(accountID, tierID int64, stripeSubscriptionID, status string, periodStart, periodEnd time.Time, cancelAtPeriodEnd bool) (*Subscription, error) {
	if _, err := m.TierByID(tierID); err != nil {
		return nil, err
	}

	id, err := m.subscriptions.Insert(datastore.Row{
		"account_id":             accountID,
		"tier_id":                tierID,
		"stripe_subscription_id": stripeSubscriptionID,
		"status":                 status,
		"current_period_start":   datastore.FormatTime(periodStart),
		"current_period_end":     datastore.FormatTime(periodEnd),
		"cancel_at_period_end":   cancelAtPeriodEnd,
	})
	if err != nil {
		return nil, err
	}

	return m.SubscriptionByID(id)
}

// SubscriptionByID retrieves a subscription by identifier.
func (m *Manager) SubscriptionByID(id int64) (*Subscription, error) {
	row, err := m.subscriptions.GetByID(id)
	if errors.Is(err, datastore.ErrRowNotFound) {
		return nil, ErrSubscriptionNotFound
	}

	if err != nil {
		return nil, err
	}

	return subscriptionFromRow(row), nil
}

// SubscriptionByStripeID retrieves a subscription by its gateway
// identifier.
func (m *Manager) SubscriptionByStripeID(stripeSubscriptionID string) (*Subscription, error) {
	row, err := m.subscriptions.FindOneByColumn("stripe_subscription_id", stripeSubscriptionID)
	if errors.Is(err, datastore.ErrRowNotFound) {
		return nil, ErrSubscriptionNotFound
	}

	if err != nil {
		return nil, err
	}

	return subscriptionFromRow(row), nil
}

// Subscriptions lists all subscriptions.
func (m *Manager) Subscriptions() ([]*Subscription, error) {
	rows, err := m.subscriptions.GetAll()
	if err != nil {
		return nil, err
	}

	subs := make([]*Subscription, 0, len(rows))
	for _, row := range rows {
		subs = append(subs, subscriptionFromRow(row))
	}

	return subs, nil
}

// SubscriptionUpdate holds optional subscription changes; nil fields are
// left untouched.
type SubscriptionUpdate struct {
	Status             *string
	CurrentPeriodStart *time.Time
	CurrentPeriodEnd   *time.Time
	CancelAtPeriodEnd  *bool
}

// UpdateSubscription applies the non-nil fields of the update and stamps
// updated_at.
func (m *Manager) UpdateSubscription(id int64, update SubscriptionUpdate) (*Subscription, error) {
	row := datastore.Row{}

	if update.Status != nil {
		row["status"] = *update.Status
	}

	if update.CurrentPeriodStart != nil {
		row["current_period_start"] = datastore.FormatTime(*update.CurrentPeriodStart)
	}

	if update.CurrentPeriodEnd != nil {
		row["current_period_end"] = datastore.FormatTime(*update.CurrentPeriodEnd)
	}

	if update.CancelAtPeriodEnd != nil {
		row["cancel_at_period_end"] = *update.CancelAtPeriodEnd
	}

	row["updated_at"] = datastore.FormatTime(time.Now())

	err := m.subscriptions.Update(id, row)
	if errors.Is(err, datastore.ErrRowNotFound) {
		return nil, ErrSubscriptionNotFound
	}

	if err != nil {
		return nil, err
	}

	return m.SubscriptionByID(id)
}

// HandleWebhook processes a verified gateway event. Only checkout session
// completion is acted upon: the gateway subscription is fetched, the tier
// resolved by product identifier, an account created for the customer and
// a local subscription record stored. Unrecognized event types return
// (nil, nil).
func (m *Manager) HandleWebhook(event *payment.WebhookEvent) (*Subscription, error) {
	if event == nil || event.Type != CheckoutCompletedEvent {
		return nil, nil
	}

	gatewaySub, err := m.gateway.GetSubscription(event.SubscriptionID)
	if err != nil {
		log.Error().Err(err).Str("subscription_id", event.SubscriptionID).Msg("gateway subscription not found")

		return nil, fmt.Errorf("failed to fetch gateway subscription %q: %w", event.SubscriptionID, err)
	}

	tierRow, err := m.tiers.FindOneByColumn("stripe_product_id", gatewaySub.ProductID)
	if errors.Is(err, datastore.ErrRowNotFound) {
		log.Error().Str("product_id", gatewaySub.ProductID).Msg("no tier matches gateway product")

		return nil, fmt.Errorf("%w: no tier for gateway product %q", ErrTierNotFound, gatewaySub.ProductID)
	}

	if err != nil {
		return nil, err
	}

	tier := tierFromRow(tierRow)

	account, err := m.tenants.CreateAccount(fmt.Sprintf("Stripe Customer %s", event.CustomerID))
	if err != nil {
		return nil, fmt.Errorf("failed to create account for customer %q: %w", event.CustomerID, err)
	}

	sub, err := m.CreateSubscription(
		account.ID,
		tier.ID,
		gatewaySub.ID,
		gatewaySub.Status,
		gatewaySub.CurrentPeriodStart,
		gatewaySub.CurrentPeriodEnd,
		gatewaySub.CancelAtPeriodEnd,
	)
	if err != nil {
		return nil, err
	}

	log.Info().
		Int64("subscription_id", sub.ID).
		Int64("account_id", account.ID).
		Int64("tier_id", tier.ID).
		Str("gateway_subscription_id", gatewaySub.ID).
		Msg("created subscription from checkout webhook")

	return sub, nil
}
