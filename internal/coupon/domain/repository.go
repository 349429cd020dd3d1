package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, coupon *Coupon) error
	List(ctx context.Context, db *gorm.DB, orgID snowflake.ID) ([]Coupon, error)
	FindByCode(ctx context.Context, db *gorm.DB, orgID snowflake.ID, code string) (*Coupon, error)

	FindRedemption(ctx context.Context, db *gorm.DB, couponID snowflake.ID, orderID string) (*CouponRedemption, error)
	InsertRedemption(ctx context.Context, db *gorm.DB, redemption *CouponRedemption) error

	// IncrementUsage performs the conditional compare-and-increment; it
	// returns false when the usage limit is exhausted.
	IncrementUsage(ctx context.Context, db *gorm.DB, couponID snowflake.ID) (bool, error)
}
