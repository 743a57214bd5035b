package enums

import "fmt"

// CartItemStatus is the per-line approval sub-status of a submitted cart.
type CartItemStatus string

const (
	CartItemStatusPending  CartItemStatus = "pending"
	CartItemStatusApproved CartItemStatus = "approved"
	CartItemStatusRejected CartItemStatus = "rejected"
)

var validCartItemStatuses = []CartItemStatus{
	CartItemStatusPending,
	CartItemStatusApproved,
	CartItemStatusRejected,
}

// String implements fmt.Stringer.
func (c CartItemStatus) String() string {
	return string(c)
}

// IsValid reports whether the value is known.
func (c CartItemStatus) IsValid() bool {
	for _, candidate := range validCartItemStatuses {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCartItemStatus converts raw input into a CartItemStatus.
func ParseCartItemStatus(value string) (CartItemStatus, error) {
	for _, candidate := range validCartItemStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid cart item status %q", value)
}
