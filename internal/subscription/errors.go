package subscription

import (
	"errors"
)

var (
	// ErrLimitNotFound is returned when a limit lookup finds nothing.
	ErrLimitNotFound = errors.New("limit not found")

	// ErrFeatureNotFound is returned when a feature lookup finds nothing.
	ErrFeatureNotFound = errors.New("feature not found")

	// ErrTierNotFound is returned when a tier lookup finds nothing.
	ErrTierNotFound = errors.New("tier not found")

	// ErrSubscriptionNotFound is returned when a subscription lookup finds
	// nothing.
	ErrSubscriptionNotFound = errors.New("subscription not found")

	// ErrKeyTaken is returned when a limit, feature or tier key is already
	// in use.
	ErrKeyTaken = errors.New("key already in use")

	// ErrTierHasActiveSubscriptions blocks deactivation of a tier that is
	// still referenced by active subscriptions.
	ErrTierHasActiveSubscriptions = errors.New("cannot deactivate tier with active subscriptions")

	// ErrTierNotDeactivated blocks deletion of a tier that has not been
	// deactivated first.
	ErrTierNotDeactivated = errors.New("tier must be deactivated before deletion")

	// ErrInvalidTierStatus is returned when an activation status is not one
	// of the active states.
	ErrInvalidTierStatus = errors.New("invalid tier status")
)
