package domain

import (
	"context"
	"errors"
)

type Service interface {
	CreateBrand(ctx context.Context, req CreateBrandRequest) (*Brand, error)
	ListBrands(ctx context.Context) ([]Brand, error)
	GetBrandByCode(ctx context.Context, code string) (*Brand, error)

	CreateLensSKU(ctx context.Context, req CreateLensSKURequest) (*LensSKU, error)
	ListLensSKUs(ctx context.Context) ([]LensSKU, error)
	GetLensByItCode(ctx context.Context, itCode string) (*LensSKU, error)

	CreateBandPricing(ctx context.Context, req CreateBandPricingRequest) (*LensBandPricing, error)
	ListBandPricing(ctx context.Context, lensID string) ([]LensBandPricing, error)

	CreateAddOnPricing(ctx context.Context, req CreateAddOnPricingRequest) (*LensPowerAddOnPricing, error)
	ListAddOnPricing(ctx context.Context, lensID string) ([]LensPowerAddOnPricing, error)

	PriceLens(ctx context.Context, itCode string, rx Prescription) (*LensPricing, error)
}

type CreateBrandRequest struct {
	Code         string   `json:"code"`
	Name         string   `json:"name"`
	SubBrands    []string `json:"sub_brands"`
	FrameType    *string  `json:"frame_type"`
	ComboAllowed bool     `json:"combo_allowed"`
}

type CreateLensSKURequest struct {
	ItCode       string   `json:"it_code"`
	BrandLine    string   `json:"brand_line"`
	BasePrice    int64    `json:"base_price"`
	YopoEligible bool     `json:"yopo_eligible"`
	ComboAllowed bool     `json:"combo_allowed"`
	AxisSteps    []int64  `json:"axis_steps"`
	ColorOptions []string `json:"color_options"`
}

type CreateBandPricingRequest struct {
	LensID      string  `json:"lens_id"`
	MinPower    float64 `json:"min_power"`
	MaxPower    float64 `json:"max_power"`
	ExtraCharge int64   `json:"extra_charge"`
}

type CreateAddOnPricingRequest struct {
	LensID      string   `json:"lens_id"`
	SphMin      *float64 `json:"sph_min"`
	SphMax      *float64 `json:"sph_max"`
	CylMin      *float64 `json:"cyl_min"`
	CylMax      *float64 `json:"cyl_max"`
	AddMin      *float64 `json:"add_min"`
	AddMax      *float64 `json:"add_max"`
	ExtraCharge int64    `json:"extra_charge"`
}

// LensPricing is the priced output of a catalog lookup. BandMatched stays
// false when the prescription falls outside every configured band; coverage
// is additive, not mandatory.
type LensPricing struct {
	LensID       string `json:"lens_id"`
	ItCode       string `json:"it_code"`
	BasePrice    int64  `json:"base_price"`
	BandSurcharge int64 `json:"band_surcharge"`
	BandMatched  bool   `json:"band_matched"`
	AddOnCharges int64  `json:"addon_charges"`
	Total        int64  `json:"total"`
	YopoEligible bool   `json:"yopo_eligible"`
	ComboAllowed bool   `json:"combo_allowed"`
	BrandLine    string `json:"brand_line"`
}

var (
	ErrInvalidOrganization  = errors.New("invalid_organization")
	ErrInvalidBrandCode     = errors.New("invalid_brand_code")
	ErrDuplicateBrand       = errors.New("duplicate_brand")
	ErrInvalidItCode        = errors.New("invalid_it_code")
	ErrDuplicateLens        = errors.New("duplicate_lens")
	ErrInvalidBasePrice     = errors.New("invalid_base_price")
	ErrInvalidLens          = errors.New("invalid_lens")
	ErrInvalidPowerBand     = errors.New("invalid_power_band")
	ErrOverlappingPowerBand = errors.New("overlapping_power_band")
	ErrInvalidAddOnRange    = errors.New("invalid_addon_range")
	ErrInvalidExtraCharge   = errors.New("invalid_extra_charge")
	ErrLensNotFound         = errors.New("lens_not_found")
	ErrBrandNotFound        = errors.New("brand_not_found")
	ErrNotFound             = errors.New("not_found")
)
