package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, rule *OfferRule) error
	List(ctx context.Context, db *gorm.DB, orgID snowflake.ID) ([]OfferRule, error)
	FindByCode(ctx context.Context, db *gorm.DB, orgID snowflake.ID, code string) (*OfferRule, error)
	ListActive(ctx context.Context, db *gorm.DB, orgID snowflake.ID) ([]OfferRule, error)
}
