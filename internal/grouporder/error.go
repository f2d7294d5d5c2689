package grouporder

import "bazaar-be/internal/apperr"

var (
	ErrNotFound      = apperr.NotFound("group order not found")
	ErrNameRequired  = apperr.Validation("group order name is required")
	ErrAlreadyJoined = apperr.Conflict("you have already joined")
)
