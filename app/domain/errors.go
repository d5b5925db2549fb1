package domain

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrBadRequest         = errors.New("bad request")
	ErrInvalidRequest     = errors.New("invalid request")
	ErrValidation         = errors.New("validation error")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInternal           = errors.New("internal server error")
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrInvariantViolation = errors.New("invariant violation")
	ErrInvalidTransition  = errors.New("invalid state transition")
	ErrNoOpTransition     = errors.New("entity already in requested state")
	ErrInvalidState       = errors.New("operation not permitted in current state")
	ErrCouponInvalid      = errors.New("coupon invalid, expired or out of uses")
	ErrAmountMismatch     = errors.New("payment amount does not match order total")
	ErrInvalidQuantity    = errors.New("invalid quantity")
	ErrConstraintConflict = errors.New("operation blocked by dependent records")
)
