package enums

import "fmt"

// MovementReason maps to the stock_movement_reason enum in Postgres.
type MovementReason string

const (
	MovementReasonInboundReceive MovementReason = "inbound_receive"
	MovementReasonInboundEdit    MovementReason = "inbound_edit"
	MovementReasonInboundDelete  MovementReason = "inbound_delete"
	MovementReasonCartReserve    MovementReason = "cart_reserve"
	MovementReasonCartRestore    MovementReason = "cart_restore"
	MovementReasonRequestReject  MovementReason = "request_reject"
	MovementReasonGuestRelease   MovementReason = "guest_release"
)

var validMovementReasons = []MovementReason{
	MovementReasonInboundReceive,
	MovementReasonInboundEdit,
	MovementReasonInboundDelete,
	MovementReasonCartReserve,
	MovementReasonCartRestore,
	MovementReasonRequestReject,
	MovementReasonGuestRelease,
}

// String implements fmt.Stringer.
func (r MovementReason) String() string {
	return string(r)
}

// IsValid reports whether the value matches the canonical movement reasons.
func (r MovementReason) IsValid() bool {
	for _, candidate := range validMovementReasons {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseMovementReason converts raw input into MovementReason.
func ParseMovementReason(value string) (MovementReason, error) {
	for _, candidate := range validMovementReasons {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid movement reason %q", value)
}
