package domain

import (
	"context"
	"errors"
)

type Service interface {
	// Calculate prices the cart without side effects.
	Calculate(ctx context.Context, input CalculationInput) (*CalculationResult, error)

	// Checkout recalculates and commits coupon usage for the order.
	Checkout(ctx context.Context, req CheckoutRequest) (*CheckoutResult, error)
}

var (
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrInvalidMode         = errors.New("invalid_mode")
	ErrMissingFrame        = errors.New("missing_frame")
	ErrMissingLens         = errors.New("missing_lens")
	ErrMissingItems        = errors.New("missing_items")
	ErrInvalidFrame        = errors.New("invalid_frame")
	ErrInvalidStore        = errors.New("invalid_store")
	ErrInvalidOrder        = errors.New("invalid_order")
)
