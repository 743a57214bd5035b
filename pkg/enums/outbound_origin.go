package enums

import "fmt"

// OutboundOrigin tags what produced an outbound record.
type OutboundOrigin string

const (
	// OutboundOriginEmployeeCart references an approved employee cart.
	OutboundOriginEmployeeCart OutboundOrigin = "employee_cart"
	// OutboundOriginGuestRelease references the guest whose cart was released.
	OutboundOriginGuestRelease OutboundOrigin = "guest_release"
)

var validOutboundOrigins = []OutboundOrigin{
	OutboundOriginEmployeeCart,
	OutboundOriginGuestRelease,
}

// String implements fmt.Stringer.
func (o OutboundOrigin) String() string {
	return string(o)
}

// IsValid reports whether the value is a known OutboundOrigin.
func (o OutboundOrigin) IsValid() bool {
	for _, candidate := range validOutboundOrigins {
		if candidate == o {
			return true
		}
	}
	return false
}

// ParseOutboundOrigin converts raw input into an OutboundOrigin.
func ParseOutboundOrigin(value string) (OutboundOrigin, error) {
	for _, candidate := range validOutboundOrigins {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid outbound origin %q", value)
}
