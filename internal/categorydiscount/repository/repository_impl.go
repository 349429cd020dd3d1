package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	catdiscdomain "github.com/smallbiznis/optora/internal/categorydiscount/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() catdiscdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, discount *catdiscdomain.CategoryDiscount) error {
	return db.WithContext(ctx).Create(discount).Error
}

func (r *repo) List(ctx context.Context, db *gorm.DB, orgID snowflake.ID) ([]catdiscdomain.CategoryDiscount, error) {
	var items []catdiscdomain.CategoryDiscount
	err := db.WithContext(ctx).
		Where("org_id = ?", orgID).
		Order("customer_category ASC, brand_code ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) FindByKey(ctx context.Context, db *gorm.DB, orgID snowflake.ID, category catdiscdomain.CustomerCategory, brandCode string) (*catdiscdomain.CategoryDiscount, error) {
	var discount catdiscdomain.CategoryDiscount
	err := db.WithContext(ctx).
		Where("org_id = ? AND customer_category = ? AND brand_code = ?", orgID, category, brandCode).
		First(&discount).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &discount, nil
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*catdiscdomain.CategoryDiscount, error) {
	var discount catdiscdomain.CategoryDiscount
	err := db.WithContext(ctx).
		Where("org_id = ? AND id = ?", orgID, id).
		First(&discount).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &discount, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, discount *catdiscdomain.CategoryDiscount) error {
	return db.WithContext(ctx).Save(discount).Error
}
