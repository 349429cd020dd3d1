package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/smallbiznis/optora/internal/catalog/domain"
	"github.com/smallbiznis/optora/internal/orgcontext"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  catalogdomain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  catalogdomain.Repository
}

func New(p Params) catalogdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("catalog.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) CreateBrand(ctx context.Context, req catalogdomain.CreateBrandRequest) (*catalogdomain.Brand, error) {
	orgID, err := s.orgIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if code == "" {
		return nil, catalogdomain.ErrInvalidBrandCode
	}

	existing, err := s.repo.FindBrandByCode(ctx, s.db, orgID, code)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, catalogdomain.ErrDuplicateBrand
	}

	now := time.Now().UTC()
	brand := &catalogdomain.Brand{
		ID:           s.genID.Generate(),
		OrgID:        orgID,
		Code:         code,
		Name:         strings.TrimSpace(req.Name),
		FrameType:    req.FrameType,
		ComboAllowed: req.ComboAllowed,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if len(req.SubBrands) > 0 {
		brand.SubBrands = datatypes.NewJSONSlice(req.SubBrands)
	}

	if err := s.repo.InsertBrand(ctx, s.db, brand); err != nil {
		return nil, err
	}
	return brand, nil
}

func (s *Service) ListBrands(ctx context.Context) ([]catalogdomain.Brand, error) {
	orgID, err := s.orgIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.ListBrands(ctx, s.db, orgID)
}

func (s *Service) GetBrandByCode(ctx context.Context, code string) (*catalogdomain.Brand, error) {
	orgID, err := s.orgIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	brand, err := s.repo.FindBrandByCode(ctx, s.db, orgID, strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return nil, err
	}
	if brand == nil {
		return nil, catalogdomain.ErrBrandNotFound
	}
	return brand, nil
}

func (s *Service) CreateLensSKU(ctx context.Context, req catalogdomain.CreateLensSKURequest) (*catalogdomain.LensSKU, error) {
	orgID, err := s.orgIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	itCode := strings.ToUpper(strings.TrimSpace(req.ItCode))
	if itCode == "" {
		return nil, catalogdomain.ErrInvalidItCode
	}
	if req.BasePrice <= 0 {
		return nil, catalogdomain.ErrInvalidBasePrice
	}

	existing, err := s.repo.FindLensByItCode(ctx, s.db, orgID, itCode)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, catalogdomain.ErrDuplicateLens
	}

	now := time.Now().UTC()
	lens := &catalogdomain.LensSKU{
		ID:           s.genID.Generate(),
		OrgID:        orgID,
		ItCode:       itCode,
		BrandLine:    strings.TrimSpace(req.BrandLine),
		BasePrice:    req.BasePrice,
		YopoEligible: req.YopoEligible,
		ComboAllowed: req.ComboAllowed,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if len(req.AxisSteps) > 0 {
		lens.AxisSteps = datatypes.NewJSONSlice(req.AxisSteps)
	}
	if len(req.ColorOptions) > 0 {
		lens.ColorOptions = datatypes.NewJSONSlice(req.ColorOptions)
	}

	if err := s.repo.InsertLens(ctx, s.db, lens); err != nil {
		return nil, err
	}
	return lens, nil
}

func (s *Service) ListLensSKUs(ctx context.Context) ([]catalogdomain.LensSKU, error) {
	orgID, err := s.orgIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.ListLenses(ctx, s.db, orgID)
}

func (s *Service) GetLensByItCode(ctx context.Context, itCode string) (*catalogdomain.LensSKU, error) {
	orgID, err := s.orgIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	lens, err := s.repo.FindLensByItCode(ctx, s.db, orgID, strings.ToUpper(strings.TrimSpace(itCode)))
	if err != nil {
		return nil, err
	}
	if lens == nil {
		return nil, catalogdomain.ErrLensNotFound
	}
	return lens, nil
}

func (s *Service) CreateBandPricing(ctx context.Context, req catalogdomain.CreateBandPricingRequest) (*catalogdomain.LensBandPricing, error) {
	orgID, err := s.orgIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	lensID, err := parseID(req.LensID)
	if err != nil {
		return nil, catalogdomain.ErrInvalidLens
	}
	if req.MinPower >= req.MaxPower {
		return nil, catalogdomain.ErrInvalidPowerBand
	}
	if req.ExtraCharge < 0 {
		return nil, catalogdomain.ErrInvalidExtraCharge
	}

	lens, err := s.repo.FindLensByID(ctx, s.db, orgID, lensID)
	if err != nil {
		return nil, err
	}
	if lens == nil {
		return nil, catalogdomain.ErrLensNotFound
	}

	existing, err := s.repo.ListActiveBands(ctx, s.db, orgID, lensID)
	if err != nil {
		return nil, err
	}
	for _, band := range existing {
		if bandsOverlap(req.MinPower, req.MaxPower, band.MinPower, band.MaxPower) {
			return nil, catalogdomain.ErrOverlappingPowerBand
		}
	}

	now := time.Now().UTC()
	band := &catalogdomain.LensBandPricing{
		ID:          s.genID.Generate(),
		OrgID:       orgID,
		LensID:      lensID,
		MinPower:    req.MinPower,
		MaxPower:    req.MaxPower,
		ExtraCharge: req.ExtraCharge,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.InsertBand(ctx, s.db, band); err != nil {
		return nil, err
	}
	return band, nil
}

func (s *Service) ListBandPricing(ctx context.Context, lensID string) ([]catalogdomain.LensBandPricing, error) {
	orgID, err := s.orgIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	id, err := parseID(lensID)
	if err != nil {
		return nil, catalogdomain.ErrInvalidLens
	}
	return s.repo.ListActiveBands(ctx, s.db, orgID, id)
}

func (s *Service) CreateAddOnPricing(ctx context.Context, req catalogdomain.CreateAddOnPricingRequest) (*catalogdomain.LensPowerAddOnPricing, error) {
	orgID, err := s.orgIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	lensID, err := parseID(req.LensID)
	if err != nil {
		return nil, catalogdomain.ErrInvalidLens
	}
	if req.ExtraCharge < 0 {
		return nil, catalogdomain.ErrInvalidExtraCharge
	}
	if err := validateAddOnRanges(req); err != nil {
		return nil, err
	}

	lens, err := s.repo.FindLensByID(ctx, s.db, orgID, lensID)
	if err != nil {
		return nil, err
	}
	if lens == nil {
		return nil, catalogdomain.ErrLensNotFound
	}

	now := time.Now().UTC()
	addOn := &catalogdomain.LensPowerAddOnPricing{
		ID:          s.genID.Generate(),
		OrgID:       orgID,
		LensID:      lensID,
		SphMin:      req.SphMin,
		SphMax:      req.SphMax,
		CylMin:      req.CylMin,
		CylMax:      req.CylMax,
		AddMin:      req.AddMin,
		AddMax:      req.AddMax,
		ExtraCharge: req.ExtraCharge,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.InsertAddOn(ctx, s.db, addOn); err != nil {
		return nil, err
	}
	return addOn, nil
}

func (s *Service) ListAddOnPricing(ctx context.Context, lensID string) ([]catalogdomain.LensPowerAddOnPricing, error) {
	orgID, err := s.orgIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	id, err := parseID(lensID)
	if err != nil {
		return nil, catalogdomain.ErrInvalidLens
	}
	return s.repo.ListActiveAddOns(ctx, s.db, orgID, id)
}

// PriceLens resolves base price, band surcharge and Rx add-on charges for a
// lens SKU. A prescription outside every band yields no surcharge; add-on
// rows are summed across all matches.
func (s *Service) PriceLens(ctx context.Context, itCode string, rx catalogdomain.Prescription) (*catalogdomain.LensPricing, error) {
	orgID, err := s.orgIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	lens, err := s.repo.FindLensByItCode(ctx, s.db, orgID, strings.ToUpper(strings.TrimSpace(itCode)))
	if err != nil {
		return nil, err
	}
	if lens == nil {
		return nil, catalogdomain.ErrLensNotFound
	}

	pricing := &catalogdomain.LensPricing{
		LensID:       lens.ID.String(),
		ItCode:       lens.ItCode,
		BasePrice:    lens.BasePrice,
		YopoEligible: lens.YopoEligible,
		ComboAllowed: lens.ComboAllowed,
		BrandLine:    lens.BrandLine,
	}

	if power, ok := rx.BandPower(); ok {
		bands, err := s.repo.ListActiveBands(ctx, s.db, orgID, lens.ID)
		if err != nil {
			return nil, err
		}
		for _, band := range bands {
			if power >= band.MinPower && power < band.MaxPower {
				pricing.BandSurcharge = band.ExtraCharge
				pricing.BandMatched = true
				break
			}
		}
	}

	addOns, err := s.repo.ListActiveAddOns(ctx, s.db, orgID, lens.ID)
	if err != nil {
		return nil, err
	}
	for _, row := range addOns {
		if addOnMatches(row, rx) {
			pricing.AddOnCharges += row.ExtraCharge
		}
	}

	pricing.Total = pricing.BasePrice + pricing.BandSurcharge + pricing.AddOnCharges
	return pricing, nil
}

func (s *Service) orgIDFromContext(ctx context.Context) (snowflake.ID, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return 0, catalogdomain.ErrInvalidOrganization
	}
	return orgID, nil
}

// Two bands conflict when the intervals intersect in either direction,
// nesting included.
func bandsOverlap(min1, max1, min2, max2 float64) bool {
	return min1 < max2 && max1 > min2
}

func validateAddOnRanges(req catalogdomain.CreateAddOnPricingRequest) error {
	populated := 0

	check := func(min, max *float64, magnitude bool) error {
		if min == nil && max == nil {
			return nil
		}
		if min == nil || max == nil {
			return catalogdomain.ErrInvalidAddOnRange
		}
		lo, hi := *min, *max
		if magnitude {
			if lo < 0 || hi < 0 {
				return catalogdomain.ErrInvalidAddOnRange
			}
		}
		if lo >= hi {
			return catalogdomain.ErrInvalidAddOnRange
		}
		populated++
		return nil
	}

	if err := check(req.SphMin, req.SphMax, false); err != nil {
		return err
	}
	if err := check(req.CylMin, req.CylMax, true); err != nil {
		return err
	}
	if err := check(req.AddMin, req.AddMax, false); err != nil {
		return err
	}
	if populated == 0 {
		return catalogdomain.ErrInvalidAddOnRange
	}
	return nil
}

// addOnMatches evaluates the populated ranges with closed-interval semantics.
// An unset range matches any prescription.
func addOnMatches(row catalogdomain.LensPowerAddOnPricing, rx catalogdomain.Prescription) bool {
	if row.SphMin != nil && row.SphMax != nil {
		power, ok := rx.BandPower()
		if !ok || power < *row.SphMin || power > *row.SphMax {
			return false
		}
	}
	if row.CylMin != nil && row.CylMax != nil {
		mag, ok := rx.CylMagnitude()
		if !ok || mag < *row.CylMin || mag > *row.CylMax {
			return false
		}
	}
	if row.AddMin != nil && row.AddMax != nil {
		add, ok := rx.AddPower()
		if !ok || add < *row.AddMin || add > *row.AddMax {
			return false
		}
	}
	return true
}

func parseID(value string) (snowflake.ID, error) {
	return snowflake.ParseString(strings.TrimSpace(value))
}
