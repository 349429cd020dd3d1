package domain

import (
	"context"
	"errors"
	"time"
)

// Validation reasons surfaced as informational strings on the calculation
// result, never as hard failures.
const (
	ReasonNotFound         = "coupon_not_found"
	ReasonInactive         = "coupon_inactive"
	ReasonNotStarted       = "coupon_not_started"
	ReasonExpired          = "coupon_expired"
	ReasonUsageLimitHit    = "coupon_usage_limit_reached"
	ReasonMinCartNotMet    = "coupon_min_cart_not_met"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Coupon, error)
	List(ctx context.Context) ([]Coupon, error)
	GetByCode(ctx context.Context, code string) (*Coupon, error)

	// Validate checks eligibility against the cart value at the given
	// instant. An empty reason means the coupon applies.
	Validate(ctx context.Context, code string, cartValue int64, now time.Time) (*Coupon, string, error)

	// Redeem increments used_count exactly once per (coupon, order). Called
	// only on confirmed checkout, never during simulation.
	Redeem(ctx context.Context, code, orderID string) error
}

type CreateRequest struct {
	Code          string       `json:"code"`
	DiscountType  DiscountType `json:"discount_type"`
	DiscountValue int64        `json:"discount_value"`
	MinCartValue  *int64       `json:"min_cart_value"`
	MaxDiscount   *int64       `json:"max_discount"`
	UsageLimit    *int64       `json:"usage_limit"`
	ValidFrom     time.Time    `json:"valid_from"`
	ValidUntil    *time.Time   `json:"valid_until"`
}

var (
	ErrInvalidOrganization  = errors.New("invalid_organization")
	ErrInvalidCode          = errors.New("invalid_code")
	ErrInvalidDiscountType  = errors.New("invalid_discount_type")
	ErrInvalidDiscountValue = errors.New("invalid_discount_value")
	ErrInvalidWindow        = errors.New("invalid_validity_window")
	ErrInvalidUsageLimit    = errors.New("invalid_usage_limit")
	ErrDuplicateCoupon      = errors.New("duplicate_coupon")
	ErrInvalidOrder         = errors.New("invalid_order")
	ErrNotFound             = errors.New("not_found")
	ErrUsageLimitReached    = errors.New("usage_limit_reached")
	ErrRedemptionContended  = errors.New("redemption_contended")
)
