package web

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/saas-foundation/saas-foundation/internal/authz"
	"github.com/saas-foundation/saas-foundation/internal/config"
	"github.com/saas-foundation/saas-foundation/internal/datastore"
	"github.com/saas-foundation/saas-foundation/internal/email"
	"github.com/saas-foundation/saas-foundation/internal/payment"
	"github.com/saas-foundation/saas-foundation/internal/subscription"
	"github.com/saas-foundation/saas-foundation/internal/tenant"
)

// setupService wires a web service onto in-memory managers with the fake
// payment adapter.
func setupService(t *testing.T) (*Service, *payment.FakeAdapter, *subscription.Manager) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to create test database")

	// a single connection keeps the in-memory database alive across calls
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	ds, err := datastore.NewManager(db)
	require.NoError(t, err)

	az := authz.NewManager()

	tenants, err := tenant.NewManager(ds, az)
	require.NoError(t, err)

	fake := payment.NewFakeAdapter()

	subs, err := subscription.NewManager(ds, fake, az, tenants, "usd")
	require.NoError(t, err)

	cfg := &config.Config{Title: "saas-foundation"}

	return New(cfg, tenants, subs, fake, email.NewManager(config.SMTP{})), fake, subs
}

func TestHealthz(t *testing.T) {
	service, _, _ := setupService(t)

	resp, err := service.App.Test(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	service.alive.Store(false)

	resp, err = service.App.Test(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestTiersEndpoint(t *testing.T) {
	service, _, subs := setupService(t)

	tier, err := subs.CreateTier(subscription.TierParams{
		Key:         "starter",
		Name:        "Starter",
		MonthlyCost: 9.99,
	})
	require.NoError(t, err)

	_, err = subs.ActivateTier(tier.ID, subscription.TierStatusActivePublic)
	require.NoError(t, err)

	// drafts stay hidden
	_, err = subs.CreateTier(subscription.TierParams{Key: "hidden", Name: "Hidden"})
	require.NoError(t, err)

	resp, err := service.App.Test(httptest.NewRequest(http.MethodGet, "/tiers", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var tiers []map[string]any
	require.NoError(t, json.Unmarshal(body, &tiers))
	require.Len(t, tiers, 1)
	assert.Equal(t, "starter", tiers[0]["key"])
}

func TestSignup(t *testing.T) {
	service, _, _ := setupService(t)

	testCases := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{
			name:       "valid signup",
			body:       `{"account_name":"Acme","username":"alice","password":"longenough"}`,
			wantStatus: http.StatusCreated,
		},
		{
			name:       "duplicate account name",
			body:       `{"account_name":"Acme","username":"bob","password":"longenough"}`,
			wantStatus: http.StatusConflict,
		},
		{
			name:       "short password",
			body:       `{"account_name":"Other","username":"carol","password":"short"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "missing fields",
			body:       `{"username":"dave"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "malformed body",
			body:       `not json`,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/signup", strings.NewReader(tc.body))
			req.Header.Set("Content-Type", "application/json")

			resp, err := service.App.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tc.wantStatus, resp.StatusCode)
		})
	}
}

func TestStripeWebhook(t *testing.T) {
	service, fake, subs := setupService(t)

	tier, err := subs.CreateTier(subscription.TierParams{Key: "starter", Name: "Starter", MonthlyCost: 10})
	require.NoError(t, err)

	customer, err := fake.CreateCustomer("buyer@example.com", "buyer")
	require.NoError(t, err)

	price, err := fake.CreatePrice(tier.StripeProductID, 1000, "usd", "month")
	require.NoError(t, err)

	gatewaySub, err := fake.CreateSubscription(customer.ID, price.ID)
	require.NoError(t, err)

	fake.Events["valid"] = &payment.WebhookEvent{
		ID:             "evt_1",
		Type:           subscription.CheckoutCompletedEvent,
		CustomerID:     customer.ID,
		SubscriptionID: gatewaySub.ID,
	}
	fake.Events["other"] = &payment.WebhookEvent{
		ID:   "evt_2",
		Type: "invoice.payment_succeeded",
	}

	testCases := []struct {
		name       string
		signature  string
		wantStatus int
	}{
		{name: "checkout completed", signature: "valid", wantStatus: http.StatusOK},
		{name: "ignored event type", signature: "other", wantStatus: http.StatusOK},
		{name: "bad signature", signature: "forged", wantStatus: http.StatusBadRequest},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/webhooks/stripe", strings.NewReader(`{}`))
			req.Header.Set(stripeSignatureHeader, tc.signature)

			resp, err := service.App.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tc.wantStatus, resp.StatusCode)
		})
	}

	// the checkout event created a local subscription
	local, err := subs.SubscriptionByStripeID(gatewaySub.ID)
	require.NoError(t, err)
	assert.Equal(t, tier.ID, local.TierID)
}

func TestPasswordReset(t *testing.T) {
	service, _, _ := setupService(t)

	signup := httptest.NewRequest(http.MethodPost, "/signup",
		strings.NewReader(`{"account_name":"Acme","username":"alice","password":"longenough"}`))
	signup.Header.Set("Content-Type", "application/json")

	resp, err := service.App.Test(signup)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	testCases := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{name: "existing user", body: `{"username":"alice"}`, wantStatus: http.StatusOK},
		{name: "unknown user gets the same answer", body: `{"username":"nobody"}`, wantStatus: http.StatusOK},
		{name: "missing username", body: `{}`, wantStatus: http.StatusBadRequest},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/password-reset", strings.NewReader(tc.body))
			req.Header.Set("Content-Type", "application/json")

			resp, err := service.App.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tc.wantStatus, resp.StatusCode)
		})
	}

	// a token was stored for the existing user
	user, err := service.tenants.UserByUsername("alice")
	require.NoError(t, err)
	assert.NotEmpty(t, user.ResetToken)
}

func TestStopEndpointOnlyInDevMode(t *testing.T) {
	service, _, _ := setupService(t)

	resp, err := service.App.Test(httptest.NewRequest(http.MethodPost, "/stop", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
