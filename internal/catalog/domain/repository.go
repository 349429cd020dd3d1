package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	InsertBrand(ctx context.Context, db *gorm.DB, brand *Brand) error
	ListBrands(ctx context.Context, db *gorm.DB, orgID snowflake.ID) ([]Brand, error)
	FindBrandByCode(ctx context.Context, db *gorm.DB, orgID snowflake.ID, code string) (*Brand, error)

	InsertLens(ctx context.Context, db *gorm.DB, lens *LensSKU) error
	ListLenses(ctx context.Context, db *gorm.DB, orgID snowflake.ID) ([]LensSKU, error)
	FindLensByItCode(ctx context.Context, db *gorm.DB, orgID snowflake.ID, itCode string) (*LensSKU, error)
	FindLensByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*LensSKU, error)

	InsertBand(ctx context.Context, db *gorm.DB, band *LensBandPricing) error
	ListActiveBands(ctx context.Context, db *gorm.DB, orgID, lensID snowflake.ID) ([]LensBandPricing, error)

	InsertAddOn(ctx context.Context, db *gorm.DB, addOn *LensPowerAddOnPricing) error
	ListActiveAddOns(ctx context.Context, db *gorm.DB, orgID, lensID snowflake.ID) ([]LensPowerAddOnPricing, error)
}
