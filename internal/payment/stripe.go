package payment

import (
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	stripe "github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/client"
	"github.com/stripe/stripe-go/v78/webhook"

	"github.com/saas-foundation/saas-foundation/internal/config"
)

// StripeAdapter talks to the Stripe API. Without credentials it runs in
// mock mode: product and price operations fabricate deterministic objects
// so tier management works offline, everything else fails with
// ErrNotConfigured.
type StripeAdapter struct {
	api           *client.API
	webhookSecret string
	mock          bool
}

// NewStripeAdapter builds the adapter from the Stripe configuration
// section.
func NewStripeAdapter(cfg config.Stripe) *StripeAdapter {
	if cfg.SecretKey == "" || cfg.WebhookSecret == "" {
		log.Warn().Msg("Stripe credentials missing, billing adapter runs in mock mode")

		return &StripeAdapter{mock: true}
	}

	api := &client.API{}
	api.Init(cfg.SecretKey, nil)

	return &StripeAdapter{api: api, webhookSecret: cfg.WebhookSecret}
}

// Name implements Adapter.
func (a *StripeAdapter) Name() string {
	return StripeAdapterName
}

// Mock reports whether the adapter fabricates responses instead of calling
// the Stripe API.
func (a *StripeAdapter) Mock() bool {
	return a.mock
}

func mockID(prefix, seed string) string {
	seed = strings.ToLower(strings.TrimSpace(seed))
	seed = strings.ReplaceAll(seed, " ", "_")

	return prefix + "_mock_" + seed
}

// ProcessPayment charges a customer once with a stored payment method.
func (a *StripeAdapter) ProcessPayment(customerID, paymentMethodID string, amount int64, currency string) (*Payment, error) {
	if a.mock {
		return nil, ErrNotConfigured
	}

	intent, err := a.api.PaymentIntents.New(&stripe.PaymentIntentParams{
		Amount:        stripe.Int64(amount),
		Currency:      stripe.String(currency),
		Customer:      stripe.String(customerID),
		PaymentMethod: stripe.String(paymentMethodID),
		Confirm:       stripe.Bool(true),
		OffSession:    stripe.Bool(true),
	})
	if err != nil {
		return nil, vendorError("process payment", err)
	}

	return &Payment{
		ID:       intent.ID,
		Amount:   intent.Amount,
		Currency: string(intent.Currency),
		Status:   string(intent.Status),
	}, nil
}

// VerifyWebhook checks the Stripe signature header and decodes the event.
func (a *StripeAdapter) VerifyWebhook(payload []byte, signature string) (*WebhookEvent, error) {
	if a.mock {
		return nil, ErrNotConfigured
	}

	event, err := webhook.ConstructEvent(payload, signature, a.webhookSecret)
	if err != nil {
		log.Warn().Err(err).Msg("webhook signature verification failed")

		return nil, ErrInvalidSignature
	}

	decoded := &WebhookEvent{
		ID:   event.ID,
		Type: string(event.Type),
	}

	if customer, ok := event.Data.Object["customer"].(string); ok {
		decoded.CustomerID = customer
	}

	if sub, ok := event.Data.Object["subscription"].(string); ok {
		decoded.SubscriptionID = sub
	}

	return decoded, nil
}

// CreateCustomer registers a billing customer at the gateway.
func (a *StripeAdapter) CreateCustomer(email, name string) (*Customer, error) {
	if a.mock {
		return nil, ErrNotConfigured
	}

	customer, err := a.api.Customers.New(&stripe.CustomerParams{
		Email: stripe.String(email),
		Name:  stripe.String(name),
	})
	if err != nil {
		return nil, vendorError("create customer", err)
	}

	return &Customer{ID: customer.ID, Email: customer.Email, Name: customer.Name}, nil
}

// AttachPaymentMethod attaches a payment method to a customer.
func (a *StripeAdapter) AttachPaymentMethod(customerID, paymentMethodID string) (*PaymentMethod, error) {
	if a.mock {
		return nil, ErrNotConfigured
	}

	method, err := a.api.PaymentMethods.Attach(paymentMethodID, &stripe.PaymentMethodAttachParams{
		Customer: stripe.String(customerID),
	})
	if err != nil {
		return nil, vendorError("attach payment method", err)
	}

	return stripePaymentMethod(method, customerID), nil
}

// CustomerPaymentMethods lists the card payment methods of a customer.
func (a *StripeAdapter) CustomerPaymentMethods(customerID string) ([]*PaymentMethod, error) {
	if a.mock {
		return nil, ErrNotConfigured
	}

	iter := a.api.PaymentMethods.List(&stripe.PaymentMethodListParams{
		Customer: stripe.String(customerID),
		Type:     stripe.String(string(stripe.PaymentMethodTypeCard)),
	})

	var methods []*PaymentMethod
	for iter.Next() {
		methods = append(methods, stripePaymentMethod(iter.PaymentMethod(), customerID))
	}

	if err := iter.Err(); err != nil {
		return nil, vendorError("list payment methods", err)
	}

	return methods, nil
}

func stripePaymentMethod(method *stripe.PaymentMethod, customerID string) *PaymentMethod {
	converted := &PaymentMethod{
		ID:         method.ID,
		CustomerID: customerID,
		Type:       string(method.Type),
	}

	if method.Card != nil {
		converted.Last4 = method.Card.Last4
	}

	return converted
}

// CreateSubscription subscribes a customer to a recurring price.
func (a *StripeAdapter) CreateSubscription(customerID, priceID string) (*Subscription, error) {
	if a.mock {
		return nil, ErrNotConfigured
	}

	sub, err := a.api.Subscriptions.New(&stripe.SubscriptionParams{
		Customer: stripe.String(customerID),
		Items: []*stripe.SubscriptionItemsParams{
			{Price: stripe.String(priceID)},
		},
	})
	if err != nil {
		return nil, vendorError("create subscription", err)
	}

	return stripeSubscription(sub), nil
}

// GetSubscription fetches a subscription by gateway identifier.
func (a *StripeAdapter) GetSubscription(subscriptionID string) (*Subscription, error) {
	if a.mock {
		return nil, ErrNotConfigured
	}

	sub, err := a.api.Subscriptions.Get(subscriptionID, nil)
	if err != nil {
		return nil, vendorError("get subscription", err)
	}

	return stripeSubscription(sub), nil
}

// CancelSubscription cancels a subscription immediately.
func (a *StripeAdapter) CancelSubscription(subscriptionID string) (*Subscription, error) {
	if a.mock {
		return nil, ErrNotConfigured
	}

	sub, err := a.api.Subscriptions.Cancel(subscriptionID, nil)
	if err != nil {
		return nil, vendorError("cancel subscription", err)
	}

	return stripeSubscription(sub), nil
}

func stripeSubscription(sub *stripe.Subscription) *Subscription {
	converted := &Subscription{
		ID:                 sub.ID,
		Status:             string(sub.Status),
		CurrentPeriodStart: time.Unix(sub.CurrentPeriodStart, 0).UTC(),
		CurrentPeriodEnd:   time.Unix(sub.CurrentPeriodEnd, 0).UTC(),
		CancelAtPeriodEnd:  sub.CancelAtPeriodEnd,
	}

	if sub.Customer != nil {
		converted.CustomerID = sub.Customer.ID
	}

	if sub.Items != nil && len(sub.Items.Data) > 0 {
		item := sub.Items.Data[0]
		if item.Price != nil {
			converted.PriceID = item.Price.ID
			if item.Price.Product != nil {
				converted.ProductID = item.Price.Product.ID
			}
		}
	}

	return converted
}

// CreateProduct creates a product at the gateway. In mock mode the product
// identifier derives from the name so repeated calls are deterministic.
func (a *StripeAdapter) CreateProduct(name, description string) (*Product, error) {
	if a.mock {
		return &Product{
			ID:          mockID("prod", name),
			Name:        name,
			Description: description,
			Active:      true,
		}, nil
	}

	product, err := a.api.Products.New(&stripe.ProductParams{
		Name:        stripe.String(name),
		Description: stripe.String(description),
	})
	if err != nil {
		return nil, vendorError("create product", err)
	}

	return stripeProduct(product), nil
}

// RetrieveProduct fetches a product by identifier.
func (a *StripeAdapter) RetrieveProduct(productID string) (*Product, error) {
	if a.mock {
		return &Product{ID: productID, Name: productID, Active: true}, nil
	}

	product, err := a.api.Products.Get(productID, nil)
	if err != nil {
		return nil, vendorError("retrieve product", err)
	}

	return stripeProduct(product), nil
}

// UpdateProduct changes name and description of a product.
func (a *StripeAdapter) UpdateProduct(productID, name, description string) (*Product, error) {
	if a.mock {
		return &Product{ID: productID, Name: name, Description: description, Active: true}, nil
	}

	product, err := a.api.Products.Update(productID, &stripe.ProductParams{
		Name:        stripe.String(name),
		Description: stripe.String(description),
	})
	if err != nil {
		return nil, vendorError("update product", err)
	}

	return stripeProduct(product), nil
}

// ArchiveProduct deactivates a product so it can no longer be sold.
func (a *StripeAdapter) ArchiveProduct(productID string) (*Product, error) {
	if a.mock {
		return &Product{ID: productID, Name: productID, Active: false}, nil
	}

	product, err := a.api.Products.Update(productID, &stripe.ProductParams{
		Active: stripe.Bool(false),
	})
	if err != nil {
		return nil, vendorError("archive product", err)
	}

	return stripeProduct(product), nil
}

func stripeProduct(product *stripe.Product) *Product {
	return &Product{
		ID:          product.ID,
		Name:        product.Name,
		Description: product.Description,
		Active:      product.Active,
	}
}

// CreatePrice attaches a recurring price to a product.
func (a *StripeAdapter) CreatePrice(productID string, unitAmount int64, currency, interval string) (*Price, error) {
	if a.mock {
		return &Price{
			ID:         mockID("price", productID+"_"+interval),
			ProductID:  productID,
			UnitAmount: unitAmount,
			Currency:   currency,
			Interval:   interval,
		}, nil
	}

	price, err := a.api.Prices.New(&stripe.PriceParams{
		Product:    stripe.String(productID),
		UnitAmount: stripe.Int64(unitAmount),
		Currency:   stripe.String(currency),
		Recurring: &stripe.PriceRecurringParams{
			Interval: stripe.String(interval),
		},
	})
	if err != nil {
		return nil, vendorError("create price", err)
	}

	converted := &Price{
		ID:         price.ID,
		UnitAmount: price.UnitAmount,
		Currency:   string(price.Currency),
	}

	if price.Product != nil {
		converted.ProductID = price.Product.ID
	}

	if price.Recurring != nil {
		converted.Interval = string(price.Recurring.Interval)
	}

	return converted, nil
}
