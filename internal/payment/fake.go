package payment

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// FakeAdapterName is the registry key of the in-memory adapter.
const FakeAdapterName = "fake"

// ErrFakeObjectNotFound is returned by the fake adapter for unknown
// identifiers.
var ErrFakeObjectNotFound = errors.New("object not found")

// FakeAdapter is a deterministic in-memory gateway used by tests and by
// local development. Identifiers are sequential per object type and every
// webhook payload verifies as long as the signature is non-empty.
type FakeAdapter struct {
	mu sync.Mutex

	sequence      int
	products      map[string]*Product
	prices        map[string]*Price
	customers     map[string]*Customer
	methods       map[string]*PaymentMethod
	subscriptions map[string]*Subscription

	// Events holds canned webhook events keyed by signature, delivered by
	// VerifyWebhook.
	Events map[string]*WebhookEvent
}

// NewFakeAdapter builds an empty fake gateway.
func NewFakeAdapter() *FakeAdapter {
	return &FakeAdapter{
		products:      make(map[string]*Product),
		prices:        make(map[string]*Price),
		customers:     make(map[string]*Customer),
		methods:       make(map[string]*PaymentMethod),
		subscriptions: make(map[string]*Subscription),
		Events:        make(map[string]*WebhookEvent),
	}
}

// Name implements Adapter.
func (a *FakeAdapter) Name() string {
	return FakeAdapterName
}

func (a *FakeAdapter) nextID(prefix string) string {
	a.sequence++

	return fmt.Sprintf("%s_fake_%d", prefix, a.sequence)
}

// ProcessPayment records a successful charge.
func (a *FakeAdapter) ProcessPayment(customerID, paymentMethodID string, amount int64, currency string) (*Payment, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, ok := a.customers[customerID]; !ok {
		return nil, ErrFakeObjectNotFound
	}

	if _, ok := a.methods[paymentMethodID]; !ok {
		return nil, ErrFakeObjectNotFound
	}

	return &Payment{
		ID:       a.nextID("pi"),
		Amount:   amount,
		Currency: currency,
		Status:   "succeeded",
	}, nil
}

// VerifyWebhook returns the canned event registered under the signature.
func (a *FakeAdapter) VerifyWebhook(_ []byte, signature string) (*WebhookEvent, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	event, ok := a.Events[signature]
	if !ok {
		return nil, ErrInvalidSignature
	}

	return event, nil
}

// CreateCustomer registers a customer.
func (a *FakeAdapter) CreateCustomer(email, name string) (*Customer, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	customer := &Customer{ID: a.nextID("cus"), Email: email, Name: name}
	a.customers[customer.ID] = customer

	return customer, nil
}

// AttachPaymentMethod stores a payment method for a customer.
func (a *FakeAdapter) AttachPaymentMethod(customerID, paymentMethodID string) (*PaymentMethod, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, ok := a.customers[customerID]; !ok {
		return nil, ErrFakeObjectNotFound
	}

	method := &PaymentMethod{
		ID:         paymentMethodID,
		CustomerID: customerID,
		Type:       "card",
		Last4:      "4242",
	}
	a.methods[method.ID] = method

	return method, nil
}

// CustomerPaymentMethods lists the stored payment methods of a customer.
func (a *FakeAdapter) CustomerPaymentMethods(customerID string) ([]*PaymentMethod, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	var methods []*PaymentMethod
	for _, method := range a.methods {
		if method.CustomerID == customerID {
			methods = append(methods, method)
		}
	}

	return methods, nil
}

// CreateSubscription subscribes a customer to a price with a one month
// billing period.
func (a *FakeAdapter) CreateSubscription(customerID, priceID string) (*Subscription, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, ok := a.customers[customerID]; !ok {
		return nil, ErrFakeObjectNotFound
	}

	price, ok := a.prices[priceID]
	if !ok {
		return nil, ErrFakeObjectNotFound
	}

	now := time.Now().UTC().Truncate(time.Second)
	sub := &Subscription{
		ID:                 a.nextID("sub"),
		CustomerID:         customerID,
		ProductID:          price.ProductID,
		PriceID:            priceID,
		Status:             "active",
		CurrentPeriodStart: now,
		CurrentPeriodEnd:   now.AddDate(0, 1, 0),
	}
	a.subscriptions[sub.ID] = sub

	return sub, nil
}

// GetSubscription fetches a subscription.
func (a *FakeAdapter) GetSubscription(subscriptionID string) (*Subscription, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	sub, ok := a.subscriptions[subscriptionID]
	if !ok {
		return nil, ErrFakeObjectNotFound
	}

	copied := *sub

	return &copied, nil
}

// CancelSubscription cancels a subscription immediately.
func (a *FakeAdapter) CancelSubscription(subscriptionID string) (*Subscription, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	sub, ok := a.subscriptions[subscriptionID]
	if !ok {
		return nil, ErrFakeObjectNotFound
	}

	sub.Status = "canceled"
	copied := *sub

	return &copied, nil
}

// CreateProduct stores a product.
func (a *FakeAdapter) CreateProduct(name, description string) (*Product, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	product := &Product{
		ID:          a.nextID("prod"),
		Name:        name,
		Description: description,
		Active:      true,
	}
	a.products[product.ID] = product

	return product, nil
}

// RetrieveProduct fetches a product.
func (a *FakeAdapter) RetrieveProduct(productID string) (*Product, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	product, ok := a.products[productID]
	if !ok {
		return nil, ErrFakeObjectNotFound
	}

	copied := *product

	return &copied, nil
}

// UpdateProduct changes name and description of a product.
func (a *FakeAdapter) UpdateProduct(productID, name, description string) (*Product, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	product, ok := a.products[productID]
	if !ok {
		return nil, ErrFakeObjectNotFound
	}

	product.Name = name
	product.Description = description
	copied := *product

	return &copied, nil
}

// ArchiveProduct deactivates a product.
func (a *FakeAdapter) ArchiveProduct(productID string) (*Product, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	product, ok := a.products[productID]
	if !ok {
		return nil, ErrFakeObjectNotFound
	}

	product.Active = false
	copied := *product

	return &copied, nil
}

// CreatePrice attaches a recurring price to a product.
func (a *FakeAdapter) CreatePrice(productID string, unitAmount int64, currency, interval string) (*Price, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, ok := a.products[productID]; !ok {
		return nil, ErrFakeObjectNotFound
	}

	price := &Price{
		ID:         a.nextID("price"),
		ProductID:  productID,
		UnitAmount: unitAmount,
		Currency:   currency,
		Interval:   interval,
	}
	a.prices[price.ID] = price

	return price, nil
}
