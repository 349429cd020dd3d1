package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	combodomain "github.com/smallbiznis/optora/internal/combo/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() combodomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, tier *combodomain.ComboTier) error {
	return db.WithContext(ctx).Create(tier).Error
}

func (r *repo) List(ctx context.Context, db *gorm.DB, orgID snowflake.ID) ([]combodomain.ComboTier, error) {
	var items []combodomain.ComboTier
	err := db.WithContext(ctx).
		Preload("Benefits").
		Preload("Rules").
		Where("org_id = ?", orgID).
		Order("sort_order ASC, combo_code ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) ListActive(ctx context.Context, db *gorm.DB, orgID snowflake.ID) ([]combodomain.ComboTier, error) {
	var items []combodomain.ComboTier
	err := db.WithContext(ctx).
		Preload("Benefits").
		Preload("Rules").
		Where("org_id = ? AND is_active = ?", orgID, true).
		Order("sort_order ASC, combo_code ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) FindByCode(ctx context.Context, db *gorm.DB, orgID snowflake.ID, comboCode string) (*combodomain.ComboTier, error) {
	var tier combodomain.ComboTier
	err := db.WithContext(ctx).
		Preload("Benefits").
		Preload("Rules").
		Where("org_id = ? AND combo_code = ?", orgID, comboCode).
		First(&tier).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &tier, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, tier *combodomain.ComboTier) error {
	return db.WithContext(ctx).Omit("Benefits", "Rules").Save(tier).Error
}
