// Package domain contains coupon configuration and redemption records.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type DiscountType string

const (
	DiscountPercentage DiscountType = "PERCENTAGE"
	DiscountFlatAmount DiscountType = "FLAT_AMOUNT"
)

func (t DiscountType) Valid() bool {
	return t == DiscountPercentage || t == DiscountFlatAmount
}

type Coupon struct {
	ID            snowflake.ID `json:"id" gorm:"primaryKey"`
	OrgID         snowflake.ID `json:"organization_id" gorm:"column:org_id;not null;uniqueIndex:idx_coupon_org_code"`
	Code          string       `json:"code" gorm:"type:text;not null;uniqueIndex:idx_coupon_org_code"`
	DiscountType  DiscountType `json:"discount_type" gorm:"type:text;not null"`
	DiscountValue int64        `json:"discount_value" gorm:"not null"`
	MinCartValue  *int64       `json:"min_cart_value,omitempty"`
	MaxDiscount   *int64       `json:"max_discount,omitempty"`
	UsageLimit    *int64       `json:"usage_limit,omitempty"`
	UsedCount     int64        `json:"used_count" gorm:"not null;default:0"`
	ValidFrom     time.Time    `json:"valid_from" gorm:"not null"`
	ValidUntil    *time.Time   `json:"valid_until,omitempty"`
	IsActive      bool         `json:"is_active" gorm:"not null;default:true"`
	CreatedAt     time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt     time.Time    `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Coupon) TableName() string { return "coupons" }

// CouponRedemption makes redemption idempotent per order.
type CouponRedemption struct {
	ID         snowflake.ID `json:"id" gorm:"primaryKey"`
	OrgID      snowflake.ID `json:"organization_id" gorm:"column:org_id;not null;index"`
	CouponID   snowflake.ID `json:"coupon_id" gorm:"not null;uniqueIndex:idx_redemption_coupon_order"`
	OrderID    string       `json:"order_id" gorm:"type:text;not null;uniqueIndex:idx_redemption_coupon_order"`
	RedeemedAt time.Time    `json:"redeemed_at" gorm:"not null"`
}

func (CouponRedemption) TableName() string { return "coupon_redemptions" }

// Discount computes the coupon discount against a cart value. The result is
// capped so the cart can never go negative.
func (c Coupon) Discount(cart int64) int64 {
	if cart <= 0 {
		return 0
	}
	var discount int64
	switch c.DiscountType {
	case DiscountPercentage:
		discount = cart * c.DiscountValue / 100
		if c.MaxDiscount != nil && discount > *c.MaxDiscount {
			discount = *c.MaxDiscount
		}
	case DiscountFlatAmount:
		discount = c.DiscountValue
	}
	if discount > cart {
		discount = cart
	}
	if discount < 0 {
		discount = 0
	}
	return discount
}
