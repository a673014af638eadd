package enums

import "fmt"

// OrderKind distinguishes inbound (receiving) from outbound (dispatch) orders.
type OrderKind string

const (
	OrderKindInbound  OrderKind = "inbound"
	OrderKindOutbound OrderKind = "outbound"
)

var validOrderKinds = []OrderKind{
	OrderKindInbound,
	OrderKindOutbound,
}

// String implements fmt.Stringer.
func (k OrderKind) String() string {
	return string(k)
}

// IsValid reports whether the value is a known OrderKind.
func (k OrderKind) IsValid() bool {
	for _, candidate := range validOrderKinds {
		if candidate == k {
			return true
		}
	}
	return false
}

// Prefix returns the order-number prefix for the kind.
func (k OrderKind) Prefix() string {
	if k == OrderKindOutbound {
		return "OUT"
	}
	return "IN"
}

// ParseOrderKind converts raw input into an OrderKind.
func ParseOrderKind(value string) (OrderKind, error) {
	for _, candidate := range validOrderKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order kind %q", value)
}
