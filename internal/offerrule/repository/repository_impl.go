package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	offerruledomain "github.com/smallbiznis/optora/internal/offerrule/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() offerruledomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, rule *offerruledomain.OfferRule) error {
	return db.WithContext(ctx).Create(rule).Error
}

func (r *repo) List(ctx context.Context, db *gorm.DB, orgID snowflake.ID) ([]offerruledomain.OfferRule, error) {
	var items []offerruledomain.OfferRule
	err := db.WithContext(ctx).
		Where("org_id = ?", orgID).
		Order("priority ASC, code ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) FindByCode(ctx context.Context, db *gorm.DB, orgID snowflake.ID, code string) (*offerruledomain.OfferRule, error) {
	var rule offerruledomain.OfferRule
	err := db.WithContext(ctx).
		Where("org_id = ? AND code = ?", orgID, code).
		First(&rule).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &rule, nil
}

func (r *repo) ListActive(ctx context.Context, db *gorm.DB, orgID snowflake.ID) ([]offerruledomain.OfferRule, error) {
	var items []offerruledomain.OfferRule
	err := db.WithContext(ctx).
		Where("org_id = ? AND is_active = ?", orgID, true).
		Order("priority ASC, code ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
