package services

import "errors"

// Sentinel errors returned (wrapped) by the services. Handlers map them to
// HTTP status codes with errors.Is.
var (
	ErrUserNotFound         = errors.New("user not found")
	ErrProductNotFound      = errors.New("product not found")
	ErrCategoryNotFound     = errors.New("category not found")
	ErrOrderNotFound        = errors.New("order not found")
	ErrCartItemNotFound     = errors.New("product is not in the cart")
	ErrFileNotFound         = errors.New("file not found")
	ErrEmailTaken           = errors.New("email is already taken")
	ErrCategoryExists       = errors.New("category already exists")
	ErrInvalidRole          = errors.New("invalid role")
	ErrRoleNotAllowed       = errors.New("role cannot be self-assigned")
	ErrPasswordTooLong      = errors.New("password is too long")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrInvalidToken         = errors.New("invalid token")
	ErrForbidden            = errors.New("access denied")
	ErrInsufficientStock    = errors.New("insufficient stock")
	ErrInvalidQuantity      = errors.New("quantity must be positive")
	ErrInvalidPrice         = errors.New("price must be positive")
	ErrInvalidProduct       = errors.New("invalid product")
	ErrInvalidCategory      = errors.New("invalid category")
	ErrInvalidStatus        = errors.New("invalid order status")
	ErrInvalidTransition    = errors.New("order status change not allowed")
	ErrEmptyOrder           = errors.New("order must contain at least one item")
	ErrEmptyCart            = errors.New("cart is empty")
	ErrInvalidAmount        = errors.New("amount must be positive")
	ErrInvalidPaymentIntent = errors.New("payment intent id is required")
	ErrInvalidFilename      = errors.New("invalid file name")
	ErrPaymentUnavailable   = errors.New("payment provider is not configured")
	ErrPaymentGateway       = errors.New("payment provider error")
)
