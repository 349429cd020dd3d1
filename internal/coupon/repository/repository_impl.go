package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	coupondomain "github.com/smallbiznis/optora/internal/coupon/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() coupondomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, coupon *coupondomain.Coupon) error {
	return db.WithContext(ctx).Create(coupon).Error
}

func (r *repo) List(ctx context.Context, db *gorm.DB, orgID snowflake.ID) ([]coupondomain.Coupon, error) {
	var items []coupondomain.Coupon
	err := db.WithContext(ctx).
		Where("org_id = ?", orgID).
		Order("code ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) FindByCode(ctx context.Context, db *gorm.DB, orgID snowflake.ID, code string) (*coupondomain.Coupon, error) {
	var coupon coupondomain.Coupon
	err := db.WithContext(ctx).
		Where("org_id = ? AND code = ?", orgID, code).
		First(&coupon).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &coupon, nil
}

func (r *repo) FindRedemption(ctx context.Context, db *gorm.DB, couponID snowflake.ID, orderID string) (*coupondomain.CouponRedemption, error) {
	var redemption coupondomain.CouponRedemption
	err := db.WithContext(ctx).
		Where("coupon_id = ? AND order_id = ?", couponID, orderID).
		First(&redemption).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &redemption, nil
}

func (r *repo) InsertRedemption(ctx context.Context, db *gorm.DB, redemption *coupondomain.CouponRedemption) error {
	return db.WithContext(ctx).Create(redemption).Error
}

func (r *repo) IncrementUsage(ctx context.Context, db *gorm.DB, couponID snowflake.ID) (bool, error) {
	result := db.WithContext(ctx).Exec(
		`UPDATE coupons
		 SET used_count = used_count + 1, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND (usage_limit IS NULL OR used_count < usage_limit)`,
		couponID,
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}
