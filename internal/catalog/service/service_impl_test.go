package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	catalogdomain "github.com/smallbiznis/optora/internal/catalog/domain"
	"github.com/smallbiznis/optora/internal/catalog/repository"
	"github.com/smallbiznis/optora/internal/orgcontext"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (catalogdomain.Service, context.Context) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&catalogdomain.Brand{},
		&catalogdomain.LensSKU{},
		&catalogdomain.LensBandPricing{},
		&catalogdomain.LensPowerAddOnPricing{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  repository.Provide(),
	})
	ctx := orgcontext.WithOrgID(context.Background(), node.Generate())
	return svc, ctx
}

func seedLens(t *testing.T, svc catalogdomain.Service, ctx context.Context) *catalogdomain.LensSKU {
	t.Helper()
	lens, err := svc.CreateLensSKU(ctx, catalogdomain.CreateLensSKURequest{
		ItCode:       "LN-TEST-1",
		BrandLine:    "BLU",
		BasePrice:    2000,
		YopoEligible: true,
		ComboAllowed: true,
	})
	require.NoError(t, err)
	return lens
}

func TestBandPricing_HalfOpenIntervalMatch(t *testing.T) {
	svc, ctx := newTestService(t)
	lens := seedLens(t, svc, ctx)

	_, err := svc.CreateBandPricing(ctx, catalogdomain.CreateBandPricingRequest{
		LensID:      lens.ID.String(),
		MinPower:    -6,
		MaxPower:    -2,
		ExtraCharge: 200,
	})
	require.NoError(t, err)

	rx := catalogdomain.Prescription{Right: &catalogdomain.EyeRx{Sphere: -4}}
	pricing, err := svc.PriceLens(ctx, "LN-TEST-1", rx)
	require.NoError(t, err)
	require.True(t, pricing.BandMatched)
	require.Equal(t, int64(200), pricing.BandSurcharge)
	require.Equal(t, int64(2200), pricing.Total)
}

func TestBandPricing_OutsideAllBandsIsNoSurcharge(t *testing.T) {
	svc, ctx := newTestService(t)
	lens := seedLens(t, svc, ctx)

	_, err := svc.CreateBandPricing(ctx, catalogdomain.CreateBandPricingRequest{
		LensID:      lens.ID.String(),
		MinPower:    -6,
		MaxPower:    -2,
		ExtraCharge: 200,
	})
	require.NoError(t, err)

	rx := catalogdomain.Prescription{Right: &catalogdomain.EyeRx{Sphere: -8}}
	pricing, err := svc.PriceLens(ctx, "LN-TEST-1", rx)
	require.NoError(t, err)
	require.False(t, pricing.BandMatched)
	require.Equal(t, int64(0), pricing.BandSurcharge)
	require.Equal(t, int64(2000), pricing.Total)
}

func TestBandPricing_UpperBoundExcluded(t *testing.T) {
	svc, ctx := newTestService(t)
	lens := seedLens(t, svc, ctx)

	_, err := svc.CreateBandPricing(ctx, catalogdomain.CreateBandPricingRequest{
		LensID:      lens.ID.String(),
		MinPower:    -6,
		MaxPower:    -2,
		ExtraCharge: 200,
	})
	require.NoError(t, err)

	// -2 sits on the open end of [-6, -2) and must not match.
	rx := catalogdomain.Prescription{Left: &catalogdomain.EyeRx{Sphere: -2}}
	pricing, err := svc.PriceLens(ctx, "LN-TEST-1", rx)
	require.NoError(t, err)
	require.False(t, pricing.BandMatched)
}

func TestBandPricing_StrongerEyeDrivesMatch(t *testing.T) {
	svc, ctx := newTestService(t)
	lens := seedLens(t, svc, ctx)

	_, err := svc.CreateBandPricing(ctx, catalogdomain.CreateBandPricingRequest{
		LensID:      lens.ID.String(),
		MinPower:    -6,
		MaxPower:    -2,
		ExtraCharge: 200,
	})
	require.NoError(t, err)

	rx := catalogdomain.Prescription{
		Right: &catalogdomain.EyeRx{Sphere: -1},
		Left:  &catalogdomain.EyeRx{Sphere: -5},
	}
	pricing, err := svc.PriceLens(ctx, "LN-TEST-1", rx)
	require.NoError(t, err)
	require.True(t, pricing.BandMatched)
	require.Equal(t, int64(200), pricing.BandSurcharge)
}

func TestBandPricing_OverlapRejected(t *testing.T) {
	svc, ctx := newTestService(t)
	lens := seedLens(t, svc, ctx)

	_, err := svc.CreateBandPricing(ctx, catalogdomain.CreateBandPricingRequest{
		LensID:      lens.ID.String(),
		MinPower:    -6,
		MaxPower:    -2,
		ExtraCharge: 200,
	})
	require.NoError(t, err)

	cases := []struct {
		name     string
		min, max float64
	}{
		{"partial overlap", -3, 0},
		{"nested", -5, -4},
		{"enclosing", -8, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateBandPricing(ctx, catalogdomain.CreateBandPricingRequest{
				LensID:      lens.ID.String(),
				MinPower:    tc.min,
				MaxPower:    tc.max,
				ExtraCharge: 100,
			})
			require.ErrorIs(t, err, catalogdomain.ErrOverlappingPowerBand)
		})
	}

	// Touching intervals are fine.
	_, err = svc.CreateBandPricing(ctx, catalogdomain.CreateBandPricingRequest{
		LensID:      lens.ID.String(),
		MinPower:    -2,
		MaxPower:    2,
		ExtraCharge: 0,
	})
	require.NoError(t, err)
}

func TestAddOnPricing_AllMatchingRowsSum(t *testing.T) {
	svc, ctx := newTestService(t)
	lens := seedLens(t, svc, ctx)

	sphMin, sphMax := -10.0, 0.0
	_, err := svc.CreateAddOnPricing(ctx, catalogdomain.CreateAddOnPricingRequest{
		LensID:      lens.ID.String(),
		SphMin:      &sphMin,
		SphMax:      &sphMax,
		ExtraCharge: 100,
	})
	require.NoError(t, err)

	cylMin, cylMax := 1.0, 4.0
	_, err = svc.CreateAddOnPricing(ctx, catalogdomain.CreateAddOnPricingRequest{
		LensID:      lens.ID.String(),
		CylMin:      &cylMin,
		CylMax:      &cylMax,
		ExtraCharge: 150,
	})
	require.NoError(t, err)

	// Both rows match, so both extra charges apply. Add-on pricing sums
	// every matching row; band pricing picks exactly one band.
	rx := catalogdomain.Prescription{Right: &catalogdomain.EyeRx{Sphere: -4, Cylinder: -2}}
	pricing, err := svc.PriceLens(ctx, "LN-TEST-1", rx)
	require.NoError(t, err)
	require.Equal(t, int64(250), pricing.AddOnCharges)
	require.Equal(t, int64(2250), pricing.Total)
}

func TestAddOnPricing_CylComparedByMagnitude(t *testing.T) {
	svc, ctx := newTestService(t)
	lens := seedLens(t, svc, ctx)

	cylMin, cylMax := 1.0, 4.0
	_, err := svc.CreateAddOnPricing(ctx, catalogdomain.CreateAddOnPricingRequest{
		LensID:      lens.ID.String(),
		CylMin:      &cylMin,
		CylMax:      &cylMax,
		ExtraCharge: 150,
	})
	require.NoError(t, err)

	rx := catalogdomain.Prescription{Right: &catalogdomain.EyeRx{Cylinder: -2.5}}
	pricing, err := svc.PriceLens(ctx, "LN-TEST-1", rx)
	require.NoError(t, err)
	require.Equal(t, int64(150), pricing.AddOnCharges)
}

func TestAddOnPricing_RequiresAtLeastOneRange(t *testing.T) {
	svc, ctx := newTestService(t)
	lens := seedLens(t, svc, ctx)

	_, err := svc.CreateAddOnPricing(ctx, catalogdomain.CreateAddOnPricingRequest{
		LensID:      lens.ID.String(),
		ExtraCharge: 100,
	})
	require.ErrorIs(t, err, catalogdomain.ErrInvalidAddOnRange)
}

func TestPriceLens_UnknownSKU(t *testing.T) {
	svc, ctx := newTestService(t)

	_, err := svc.PriceLens(ctx, "NOPE", catalogdomain.Prescription{})
	require.ErrorIs(t, err, catalogdomain.ErrLensNotFound)
}
