package product

import "bazaar-be/internal/apperr"

var (
	ErrProductNotFound  = apperr.NotFound("product not found")
	ErrNotOwner         = apperr.Forbidden("not authorized to modify this product")
	ErrRequiredFields   = apperr.Validation("name, price, unit, stock, and category are required")
	ErrInvalidPrice     = apperr.Validation("price must be greater than 0")
	ErrPriceScale       = apperr.Validation("price cannot have more than 2 decimal places")
	ErrNegativeStock    = apperr.Validation("stock cannot be negative")
	ErrInvalidUnit      = apperr.Validation("unit must be one of kg, g, l, ml, piece, dozen, packet")
	ErrInvalidCategory  = apperr.Validation("invalid product category")
	ErrInvalidMinOrder  = apperr.Validation("minimum order quantity must be at least 1")
	ErrNameTooLong      = apperr.Validation("product name cannot exceed 200 characters")
	ErrDescriptionLong  = apperr.Validation("description cannot exceed 1000 characters")
	ErrInvalidPriceSpan = apperr.Validation("minPrice cannot be greater than maxPrice")
)
