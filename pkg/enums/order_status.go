package enums

import "fmt"

// OrderStatus tracks the lifecycle of an inbound or outbound order.
// Pending orders may be edited, approved, or voided; approved and void are
// both terminal.
type OrderStatus string

const (
	OrderStatusPending  OrderStatus = "pending"
	OrderStatusApproved OrderStatus = "approved"
	OrderStatusVoid     OrderStatus = "void"
)

var validOrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusApproved,
	OrderStatusVoid,
}

// String implements fmt.Stringer.
func (s OrderStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known OrderStatus.
func (s OrderStatus) IsValid() bool {
	for _, candidate := range validOrderStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition leaves the status.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusApproved || s == OrderStatusVoid
}

// CanTransitionTo encodes the closed transition table: pending may move to
// approved or void, and a pending order may be re-saved while still pending.
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	if s != OrderStatusPending {
		return false
	}
	switch target {
	case OrderStatusPending, OrderStatusApproved, OrderStatusVoid:
		return true
	default:
		return false
	}
}

// ParseOrderStatus converts raw input into an OrderStatus.
func ParseOrderStatus(value string) (OrderStatus, error) {
	for _, candidate := range validOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order status %q", value)
}
