package enums

import "fmt"

// CartStatus tracks an employee cart through the request lifecycle.
type CartStatus string

const (
	CartStatusActive   CartStatus = "active"
	CartStatusPending  CartStatus = "pending"
	CartStatusApproved CartStatus = "approved"
	CartStatusRejected CartStatus = "rejected"
	CartStatusReleased CartStatus = "released"
)

var validCartStatuses = []CartStatus{
	CartStatusActive,
	CartStatusPending,
	CartStatusApproved,
	CartStatusRejected,
	CartStatusReleased,
}

// cartTransitions lists the forward moves allowed from each status.
var cartTransitions = map[CartStatus][]CartStatus{
	CartStatusActive:   {CartStatusPending},
	CartStatusPending:  {CartStatusApproved, CartStatusRejected},
	CartStatusApproved: {CartStatusReleased},
}

// String implements fmt.Stringer.
func (c CartStatus) String() string {
	return string(c)
}

// IsValid reports whether the value is a known CartStatus.
func (c CartStatus) IsValid() bool {
	for _, candidate := range validCartStatuses {
		if candidate == c {
			return true
		}
	}
	return false
}

// CanTransitionTo reports whether moving from c to next keeps the lifecycle
// monotonic. A cart never re-enters active.
func (c CartStatus) CanTransitionTo(next CartStatus) bool {
	for _, candidate := range cartTransitions[c] {
		if candidate == next {
			return true
		}
	}
	return false
}

// ParseCartStatus converts raw input into a CartStatus.
func ParseCartStatus(value string) (CartStatus, error) {
	for _, candidate := range validCartStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid cart status %q", value)
}
