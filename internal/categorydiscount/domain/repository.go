package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, discount *CategoryDiscount) error
	List(ctx context.Context, db *gorm.DB, orgID snowflake.ID) ([]CategoryDiscount, error)
	FindByKey(ctx context.Context, db *gorm.DB, orgID snowflake.ID, category CustomerCategory, brandCode string) (*CategoryDiscount, error)
	FindByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*CategoryDiscount, error)
	Update(ctx context.Context, db *gorm.DB, discount *CategoryDiscount) error
}
