package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/smallbiznis/optora/internal/catalog/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() catalogdomain.Repository {
	return &repo{}
}

func (r *repo) InsertBrand(ctx context.Context, db *gorm.DB, brand *catalogdomain.Brand) error {
	return db.WithContext(ctx).Create(brand).Error
}

func (r *repo) ListBrands(ctx context.Context, db *gorm.DB, orgID snowflake.ID) ([]catalogdomain.Brand, error) {
	var items []catalogdomain.Brand
	err := db.WithContext(ctx).
		Where("org_id = ?", orgID).
		Order("code ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) FindBrandByCode(ctx context.Context, db *gorm.DB, orgID snowflake.ID, code string) (*catalogdomain.Brand, error) {
	var brand catalogdomain.Brand
	err := db.WithContext(ctx).
		Where("org_id = ? AND code = ?", orgID, code).
		First(&brand).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &brand, nil
}

func (r *repo) InsertLens(ctx context.Context, db *gorm.DB, lens *catalogdomain.LensSKU) error {
	return db.WithContext(ctx).Create(lens).Error
}

func (r *repo) ListLenses(ctx context.Context, db *gorm.DB, orgID snowflake.ID) ([]catalogdomain.LensSKU, error) {
	var items []catalogdomain.LensSKU
	err := db.WithContext(ctx).
		Where("org_id = ?", orgID).
		Order("it_code ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) FindLensByItCode(ctx context.Context, db *gorm.DB, orgID snowflake.ID, itCode string) (*catalogdomain.LensSKU, error) {
	var lens catalogdomain.LensSKU
	err := db.WithContext(ctx).
		Where("org_id = ? AND it_code = ?", orgID, itCode).
		First(&lens).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &lens, nil
}

func (r *repo) FindLensByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*catalogdomain.LensSKU, error) {
	var lens catalogdomain.LensSKU
	err := db.WithContext(ctx).
		Where("org_id = ? AND id = ?", orgID, id).
		First(&lens).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &lens, nil
}

func (r *repo) InsertBand(ctx context.Context, db *gorm.DB, band *catalogdomain.LensBandPricing) error {
	return db.WithContext(ctx).Create(band).Error
}

func (r *repo) ListActiveBands(ctx context.Context, db *gorm.DB, orgID, lensID snowflake.ID) ([]catalogdomain.LensBandPricing, error) {
	var items []catalogdomain.LensBandPricing
	err := db.WithContext(ctx).
		Where("org_id = ? AND lens_id = ? AND is_active = ?", orgID, lensID, true).
		Order("min_power ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) InsertAddOn(ctx context.Context, db *gorm.DB, addOn *catalogdomain.LensPowerAddOnPricing) error {
	return db.WithContext(ctx).Create(addOn).Error
}

func (r *repo) ListActiveAddOns(ctx context.Context, db *gorm.DB, orgID, lensID snowflake.ID) ([]catalogdomain.LensPowerAddOnPricing, error) {
	var items []catalogdomain.LensPowerAddOnPricing
	err := db.WithContext(ctx).
		Where("org_id = ? AND lens_id = ? AND is_active = ?", orgID, lensID, true).
		Order("created_at ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
