package order

import (
	"slices"
	"time"
)

// ExpectedDeliveryWindow is added to the confirmation time.
const ExpectedDeliveryWindow = 48 * time.Hour

var transitions = map[Status][]Status{
	StatusPending:    {StatusConfirmed, StatusCancelled},
	StatusConfirmed:  {StatusDispatched, StatusCancelled},
	StatusDispatched: {StatusDelivered},
}

var allStatuses = []Status{StatusPending, StatusConfirmed, StatusDispatched, StatusDelivered, StatusCancelled}

func (s Status) Valid() bool {
	return slices.Contains(allStatuses, s)
}

// Terminal statuses have no outgoing transitions.
func (s Status) Terminal() bool {
	return len(transitions[s]) == 0
}

func CanTransition(from, to Status) bool {
	return slices.Contains(transitions[from], to)
}

// ParseStatus validates a requested target status.
func ParseStatus(raw string) (Status, error) {
	if raw == "" {
		return "", ErrStatusRequired
	}
	s := Status(raw)
	if !s.Valid() {
		return "", ErrInvalidStatus
	}
	return s, nil
}

// Transition moves the order to next and stamps the dates tied to it.
// The order is left untouched when the move is not allowed.
func (o *Order) Transition(next Status, now time.Time) error {
	if !CanTransition(o.Status, next) {
		return errIllegalTransition(o.Status, next)
	}

	o.Status = next
	o.UpdatedAt = now

	switch next {
	case StatusConfirmed:
		expected := now.Add(ExpectedDeliveryWindow)
		o.ExpectedDeliveryDate = &expected
	case StatusDelivered:
		delivered := now
		o.ActualDeliveryDate = &delivered
	}
	return nil
}

const (
	DeliveryDelivered = "delivered"
	DeliveryCancelled = "cancelled"
	DeliveryDelayed   = "delayed"
	DeliveryOnTime    = "on_time"
)

func (o Order) DeliveryStatus(now time.Time) string {
	switch {
	case o.Status == StatusDelivered:
		return DeliveryDelivered
	case o.Status == StatusCancelled:
		return DeliveryCancelled
	case o.ExpectedDeliveryDate != nil && now.After(*o.ExpectedDeliveryDate):
		return DeliveryDelayed
	default:
		return DeliveryOnTime
	}
}

// StatusFilter maps the listing query value to the statuses it selects.
// "pending" also selects confirmed orders; "" and "all" select everything.
func StatusFilter(raw string) ([]Status, error) {
	switch raw {
	case "", "all":
		return nil, nil
	case string(StatusPending):
		return []Status{StatusPending, StatusConfirmed}, nil
	}
	s := Status(raw)
	if !s.Valid() {
		return nil, ErrInvalidStatus
	}
	return []Status{s}, nil
}
