package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, tier *ComboTier) error
	List(ctx context.Context, db *gorm.DB, orgID snowflake.ID) ([]ComboTier, error)
	ListActive(ctx context.Context, db *gorm.DB, orgID snowflake.ID) ([]ComboTier, error)
	FindByCode(ctx context.Context, db *gorm.DB, orgID snowflake.ID, comboCode string) (*ComboTier, error)
	Update(ctx context.Context, db *gorm.DB, tier *ComboTier) error
}
