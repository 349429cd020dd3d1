package domain

import (
	"context"
	"errors"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*CategoryDiscount, error)
	List(ctx context.Context) ([]CategoryDiscount, error)
	Find(ctx context.Context, category CustomerCategory, brandCode string) (*CategoryDiscount, error)
	Deactivate(ctx context.Context, id string) error
}

type CreateRequest struct {
	CustomerCategory     CustomerCategory `json:"customer_category"`
	BrandCode            string           `json:"brand_code"`
	DiscountPercent      float64          `json:"discount_percent"`
	MaxDiscount          *int64           `json:"max_discount"`
	VerificationRequired bool             `json:"verification_required"`
	AllowedIDTypes       []string         `json:"allowed_id_types"`
}

var (
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrInvalidCategory     = errors.New("invalid_customer_category")
	ErrInvalidBrandCode    = errors.New("invalid_brand_code")
	ErrInvalidPercent      = errors.New("invalid_discount_percent")
	ErrInvalidMaxDiscount  = errors.New("invalid_max_discount")
	ErrDuplicateDiscount   = errors.New("duplicate_category_discount")
	ErrInvalidID           = errors.New("invalid_id")
	ErrNotFound            = errors.New("not_found")
)
