package model

// OrderStatus is the payment lifecycle state of an order.
//
// The set is closed: every persisted value must be one of the
// constants below, and every status change must be permitted by
// CanTransitionTo. PARTIALLY_REFUNDED is a first-class member of the
// enum, not an ad-hoc extension.
type OrderStatus string

const (
	StatusPending           OrderStatus = "PENDING"
	StatusAuthorized        OrderStatus = "AUTHORIZED"
	StatusPaid              OrderStatus = "PAID"
	StatusCancelled         OrderStatus = "CANCELLED"
	StatusRefunded          OrderStatus = "REFUNDED"
	StatusPartiallyRefunded OrderStatus = "PARTIALLY_REFUNDED"
)

// transitions maps each status to the statuses it may move to.
// Terminal statuses have no entries.
var transitions = map[OrderStatus][]OrderStatus{
	StatusPending:    {StatusAuthorized, StatusPaid, StatusCancelled},
	StatusAuthorized: {StatusPaid, StatusCancelled},
	StatusPaid:       {StatusRefunded, StatusPartiallyRefunded},
}

// Valid reports whether s is a member of the status enum.
func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPending, StatusAuthorized, StatusPaid,
		StatusCancelled, StatusRefunded, StatusPartiallyRefunded:
		return true
	}
	return false
}

// CanTransitionTo reports whether moving from s to next is a legal
// transition of the payment state machine.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, t := range transitions[s] {
		if t == next {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transitions are possible from s.
func (s OrderStatus) Terminal() bool {
	return len(transitions[s]) == 0
}
