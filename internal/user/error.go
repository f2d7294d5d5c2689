package user

import "bazaar-be/internal/apperr"

var (
	ErrEmailExists         = apperr.Conflict("user with this email already exists")
	ErrInvalidCredentials  = apperr.Unauthenticated("invalid email or password")
	ErrAccountDeactivated  = apperr.Unauthenticated("account is deactivated, please contact support")
	ErrUserNotFound        = apperr.NotFound("user not found")
	ErrCredentialsRequired = apperr.Validation("email and password are required")
	ErrNameRequired        = apperr.Validation("name is required")
	ErrInvalidEmail        = apperr.Validation("please enter a valid email")
	ErrPasswordTooShort    = apperr.Validation("password must be at least 6 characters")
	ErrInvalidRole         = apperr.Validation("role must be vendor or supplier")
)
