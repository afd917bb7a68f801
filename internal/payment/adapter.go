// Package payment abstracts the billing gateway behind a small adapter
// interface so the rest of the application never talks to a vendor SDK
// directly. The Stripe adapter is the production implementation; a fake
// adapter backs tests and local development.
package payment

import (
	"time"
)

// Product is a sellable product mirrored at the gateway.
type Product struct {
	ID          string
	Name        string
	Description string
	Active      bool
}

// Price attaches a recurring amount to a product. Interval is "month" or
// "year"; UnitAmount is in the smallest currency unit.
type Price struct {
	ID         string
	ProductID  string
	UnitAmount int64
	Currency   string
	Interval   string
}

// Customer is a billing customer at the gateway.
type Customer struct {
	ID    string
	Email string
	Name  string
}

// PaymentMethod is a stored payment instrument of a customer.
type PaymentMethod struct {
	ID         string
	CustomerID string
	Type       string
	Last4      string
}

// Subscription is the gateway view of a recurring subscription.
type Subscription struct {
	ID                 string
	CustomerID         string
	ProductID          string
	PriceID            string
	Status             string
	CurrentPeriodStart time.Time
	CurrentPeriodEnd   time.Time
	CancelAtPeriodEnd  bool
}

// Payment is the result of a one-off charge.
type Payment struct {
	ID       string
	Amount   int64
	Currency string
	Status   string
}

// WebhookEvent is a verified gateway notification.
type WebhookEvent struct {
	ID             string
	Type           string
	CustomerID     string
	SubscriptionID string
}

// Adapter is the gateway contract. Implementations must be safe for
// concurrent use.
type Adapter interface {
	// Name returns the registry key of the adapter.
	Name() string

	// ProcessPayment charges a customer once with a stored payment method.
	ProcessPayment(customerID, paymentMethodID string, amount int64, currency string) (*Payment, error)

	// VerifyWebhook checks the payload signature and decodes the event.
	VerifyWebhook(payload []byte, signature string) (*WebhookEvent, error)

	CreateCustomer(email, name string) (*Customer, error)
	AttachPaymentMethod(customerID, paymentMethodID string) (*PaymentMethod, error)
	CustomerPaymentMethods(customerID string) ([]*PaymentMethod, error)

	CreateSubscription(customerID, priceID string) (*Subscription, error)
	GetSubscription(subscriptionID string) (*Subscription, error)
	CancelSubscription(subscriptionID string) (*Subscription, error)

	CreateProduct(name, description string) (*Product, error)
	RetrieveProduct(productID string) (*Product, error)
	UpdateProduct(productID, name, description string) (*Product, error)
	ArchiveProduct(productID string) (*Product, error)

	CreatePrice(productID string, unitAmount int64, currency, interval string) (*Price, error)
}
