package cart

import "bazaar-be/internal/apperr"

var (
	ErrInvalidQuantity = apperr.Validation("quantity must be at least 1")
	ErrItemNotFound    = apperr.NotFound("cart item not found")
	ErrCartEmpty       = apperr.Validation("cart is empty")
)

const msgMixedSuppliers = "All items in cart must be from the same supplier."
