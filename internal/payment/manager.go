package payment

import (
	"sync"

	"github.com/saas-foundation/saas-foundation/internal/config"
)

// StripeAdapterName is the registry key of the Stripe adapter.
const StripeAdapterName = "stripe"

// Manager keeps the registered gateway adapters.
type Manager struct {
	mu       sync.RWMutex
	adapters map[string]Adapter
}

// NewManager builds a manager with the Stripe adapter registered from the
// given configuration.
func NewManager(cfg config.Stripe) *Manager {
	m := &Manager{adapters: make(map[string]Adapter)}
	m.Register(NewStripeAdapter(cfg))

	return m
}

// Register adds an adapter under its own name, replacing any previous one.
func (m *Manager) Register(adapter Adapter) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.adapters[adapter.Name()] = adapter
}

// Adapter returns the adapter registered under the given name.
func (m *Manager) Adapter(name string) (Adapter, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	adapter, ok := m.adapters[name]
	if !ok {
		return nil, ErrAdapterNotFound
	}

	return adapter, nil
}

// Stripe returns the Stripe adapter.
func (m *Manager) Stripe() Adapter {
	adapter, err := m.Adapter(StripeAdapterName)
	if err != nil {
		return nil
	}

	return adapter
}
