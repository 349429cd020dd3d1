// Package migration applies the schema on startup. The engine reads every
// table through gorm, so AutoMigrate over the domain models keeps the schema
// definition next to the structs it serves.
package migration

import (
	catalogdomain "github.com/smallbiznis/optora/internal/catalog/domain"
	catdiscdomain "github.com/smallbiznis/optora/internal/categorydiscount/domain"
	combodomain "github.com/smallbiznis/optora/internal/combo/domain"
	coupondomain "github.com/smallbiznis/optora/internal/coupon/domain"
	offerruledomain "github.com/smallbiznis/optora/internal/offerrule/domain"
	rewarddomain "github.com/smallbiznis/optora/internal/reward/domain"
	"gorm.io/gorm"
)

// Models lists every persisted entity in dependency order.
func Models() []any {
	return []any{
		&catalogdomain.Brand{},
		&catalogdomain.LensSKU{},
		&catalogdomain.LensBandPricing{},
		&catalogdomain.LensPowerAddOnPricing{},
		&catdiscdomain.CategoryDiscount{},
		&coupondomain.Coupon{},
		&coupondomain.CouponRedemption{},
		&combodomain.ComboTier{},
		&combodomain.ComboBenefit{},
		&combodomain.ComboRule{},
		&offerruledomain.OfferRule{},
		&offerruledomain.StoreOfferMap{},
		&rewarddomain.RewardThreshold{},
	}
}

func Run(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}
