package order

import (
	"bazaar-be/internal/apperr"
)

var (
	ErrOrderNotFound       = apperr.NotFound("order not found")
	ErrItemsRequired       = apperr.Validation("order items are required")
	ErrContactRequired     = apperr.Validation("delivery address and phone are required")
	ErrAddressTooLong      = apperr.Validation("delivery address cannot exceed 500 characters")
	ErrPhoneTooLong        = apperr.Validation("phone number cannot exceed 15 characters")
	ErrNotesTooLong        = apperr.Validation("notes cannot exceed 500 characters")
	ErrReviewTooLong       = apperr.Validation("review cannot exceed 500 characters")
	ErrProductsUnavailable = apperr.Validation("some products not found or inactive")
	ErrMixedSuppliers      = apperr.Validation("all items must be from the same supplier")
	ErrStatusRequired      = apperr.Validation("status is required")
	ErrInvalidStatus       = apperr.Validation("invalid status")
	ErrNotOrderParty       = apperr.Forbidden("not authorized to view this order")
	ErrNotOrderSupplier    = apperr.Forbidden("not authorized to update this order")
	ErrNotOrderVendor      = apperr.Forbidden("not authorized to rate this order")
	ErrNotDelivered        = apperr.Conflict("order must be delivered before rating")
	ErrAlreadyRated        = apperr.Conflict("order has already been rated")
	ErrInsufficientStock   = apperr.Conflict("insufficient stock for some items")
)

func errBelowMinimum(name string, min int) error {
	return apperr.Validationf("minimum order quantity for %s is %d", name, min)
}

func errIllegalTransition(from, to Status) error {
	return apperr.Conflictf("cannot change status from %s to %s", from, to)
}
