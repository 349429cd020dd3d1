package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	catalogdomain "github.com/smallbiznis/optora/internal/catalog/domain"
	catalogrepo "github.com/smallbiznis/optora/internal/catalog/repository"
	catalogservice "github.com/smallbiznis/optora/internal/catalog/service"
	catdiscdomain "github.com/smallbiznis/optora/internal/categorydiscount/domain"
	catdiscrepo "github.com/smallbiznis/optora/internal/categorydiscount/repository"
	catdiscservice "github.com/smallbiznis/optora/internal/categorydiscount/service"
	"github.com/smallbiznis/optora/internal/clock"
	combodomain "github.com/smallbiznis/optora/internal/combo/domain"
	comborepo "github.com/smallbiznis/optora/internal/combo/repository"
	comboservice "github.com/smallbiznis/optora/internal/combo/service"
	"github.com/smallbiznis/optora/internal/config"
	coupondomain "github.com/smallbiznis/optora/internal/coupon/domain"
	couponrepo "github.com/smallbiznis/optora/internal/coupon/repository"
	couponservice "github.com/smallbiznis/optora/internal/coupon/service"
	"github.com/smallbiznis/optora/internal/migration"
	offerdomain "github.com/smallbiznis/optora/internal/offer/domain"
	offerruledomain "github.com/smallbiznis/optora/internal/offerrule/domain"
	offerrulerepo "github.com/smallbiznis/optora/internal/offerrule/repository"
	offerruleservice "github.com/smallbiznis/optora/internal/offerrule/service"
	"github.com/smallbiznis/optora/internal/orgcontext"
	rewarddomain "github.com/smallbiznis/optora/internal/reward/domain"
	rewardservice "github.com/smallbiznis/optora/internal/reward/service"
	"github.com/smallbiznis/optora/internal/ruleset"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type harness struct {
	svc     offerdomain.Service
	catalog catalogdomain.Service
	catDisc catdiscdomain.Service
	coupons coupondomain.Service
	combos  combodomain.Service
	rules   offerruledomain.Service
	rewards rewarddomain.Service
	clk     *clock.FakeClock
	ctx     context.Context
	node    *snowflake.Node
	storeID snowflake.ID
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(migration.Models()...))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	log := zap.NewNop()
	clk := clock.NewFakeClock(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))

	// Zero TTL disables snapshot caching so rule edits inside a test are
	// visible to the next calculation.
	cfg := config.Config{RuleSnapshotTTL: 0, UpsellProximity: 500}

	catalogSvc := catalogservice.New(catalogservice.Params{DB: db, Log: log, GenID: node, Repo: catalogrepo.Provide()})
	catDiscSvc := catdiscservice.New(catdiscservice.Params{DB: db, Log: log, GenID: node, Repo: catdiscrepo.Provide()})
	couponSvc := couponservice.New(couponservice.Params{DB: db, Log: log, GenID: node, Repo: couponrepo.Provide()})
	comboSvc := comboservice.New(comboservice.Params{DB: db, Log: log, GenID: node, Repo: comborepo.Provide()})
	ruleSvc := offerruleservice.New(offerruleservice.Params{DB: db, Log: log, GenID: node, Repo: offerrulerepo.Provide(), Combo: comboSvc})
	rewardSvc := rewardservice.New(rewardservice.Params{DB: db, Log: log, GenID: node})
	loader := ruleset.New(ruleset.Params{DB: db, Log: log, Cfg: cfg, Clock: clk})

	svc := New(Params{
		Log:     log,
		Cfg:     cfg,
		Clock:   clk,
		Catalog: catalogSvc,
		Coupons: couponSvc,
		Rewards: rewardSvc,
		Rules:   loader,
	})

	return &harness{
		svc:     svc,
		catalog: catalogSvc,
		catDisc: catDiscSvc,
		coupons: couponSvc,
		combos:  comboSvc,
		rules:   ruleSvc,
		rewards: rewardSvc,
		clk:     clk,
		ctx:     orgcontext.WithOrgID(context.Background(), node.Generate()),
		node:    node,
		storeID: node.Generate(),
	}
}

func (h *harness) seedBrand(t *testing.T, code string, comboAllowed bool) {
	t.Helper()
	_, err := h.catalog.CreateBrand(h.ctx, catalogdomain.CreateBrandRequest{
		Code: code, Name: code, ComboAllowed: comboAllowed,
	})
	require.NoError(t, err)
}

func (h *harness) seedLens(t *testing.T, itCode string, price int64, yopo, combo bool) {
	t.Helper()
	_, err := h.catalog.CreateLensSKU(h.ctx, catalogdomain.CreateLensSKURequest{
		ItCode: itCode, BrandLine: "BLU", BasePrice: price,
		YopoEligible: yopo, ComboAllowed: combo,
	})
	require.NoError(t, err)
}

func (h *harness) seedStudentDiscount(t *testing.T) {
	t.Helper()
	maxDiscount := int64(300)
	_, err := h.catDisc.Create(h.ctx, catdiscdomain.CreateRequest{
		CustomerCategory: catdiscdomain.CategoryStudent,
		BrandCode:        "*",
		DiscountPercent:  10,
		MaxDiscount:      &maxDiscount,
	})
	require.NoError(t, err)
}

func (h *harness) seedFlat50Coupon(t *testing.T) {
	t.Helper()
	_, err := h.coupons.Create(h.ctx, coupondomain.CreateRequest{
		Code:          "FLAT50OFF",
		DiscountType:  coupondomain.DiscountFlatAmount,
		DiscountValue: 50,
		ValidFrom:     h.clk.Now().Add(-time.Hour),
	})
	require.NoError(t, err)
}

func (h *harness) seedComboRule(t *testing.T, comboCode string, effectivePrice int64, rules []combodomain.RuleRequest) {
	t.Helper()
	_, err := h.combos.Create(h.ctx, combodomain.CreateRequest{
		ComboCode:      comboCode,
		DisplayName:    comboCode,
		EffectivePrice: effectivePrice,
		SortOrder:      1,
		Rules:          rules,
	})
	require.NoError(t, err)
	_, err = h.rules.Create(h.ctx, offerruledomain.CreateRequest{
		Code:      comboCode + "-COMBO",
		Name:      comboCode + " bundle",
		RuleType:  offerruledomain.RuleCombo,
		ComboCode: &comboCode,
		Priority:  10,
	})
	require.NoError(t, err)
}

func frameAndLensInput() offerdomain.CalculationInput {
	return offerdomain.CalculationInput{
		Mode:  offerdomain.ModeFrameAndLens,
		Frame: &offerdomain.FrameInput{Brand: "VINCENT", MRP: 3000},
		Lens:  &offerdomain.LensInput{ItCode: "LN-BLU"},
	}
}

func TestCalculate_LayeredDiscountFixture(t *testing.T) {
	h := newHarness(t)
	h.seedBrand(t, "VINCENT", true)
	h.seedLens(t, "LN-BLU", 2000, true, true)
	h.seedStudentDiscount(t)
	h.seedFlat50Coupon(t)

	student := catdiscdomain.CategoryStudent
	couponCode := "FLAT50OFF"
	input := frameAndLensInput()
	input.CustomerCategory = &student
	input.CouponCode = &couponCode

	result, err := h.svc.Calculate(h.ctx, input)
	require.NoError(t, err)

	require.Equal(t, int64(3000), result.FrameMRP)
	require.Equal(t, int64(2000), result.LensPrice)
	require.Equal(t, int64(5000), result.BaseTotal)
	require.Equal(t, int64(5000), result.EffectiveBase)
	require.Equal(t, int64(300), result.CategoryDiscount)
	require.Equal(t, int64(50), result.CouponDiscount)
	require.Empty(t, result.CouponError)
	require.Equal(t, int64(4650), result.FinalPayable)

	var sum int64
	for _, comp := range result.PriceComponents {
		sum += comp.Amount
	}
	require.Equal(t, result.FinalPayable, sum)
}

func TestCalculate_BandSurchargeInLensPrice(t *testing.T) {
	h := newHarness(t)
	h.seedBrand(t, "VINCENT", true)
	h.seedLens(t, "LN-BLU", 2000, true, true)

	lens, err := h.catalog.GetLensByItCode(h.ctx, "LN-BLU")
	require.NoError(t, err)
	_, err = h.catalog.CreateBandPricing(h.ctx, catalogdomain.CreateBandPricingRequest{
		LensID: lens.ID.String(), MinPower: -6, MaxPower: -2, ExtraCharge: 200,
	})
	require.NoError(t, err)

	input := frameAndLensInput()
	input.Lens.Prescription = &catalogdomain.Prescription{Right: &catalogdomain.EyeRx{Sphere: -4}}
	result, err := h.svc.Calculate(h.ctx, input)
	require.NoError(t, err)
	require.Equal(t, int64(2200), result.LensPrice)
	require.Equal(t, int64(5200), result.BaseTotal)

	input.Lens.Prescription = &catalogdomain.Prescription{Right: &catalogdomain.EyeRx{Sphere: -8}}
	result, err = h.svc.Calculate(h.ctx, input)
	require.NoError(t, err)
	require.Equal(t, int64(2000), result.LensPrice)
}

func TestCalculate_PriorityPicksOneRule(t *testing.T) {
	h := newHarness(t)
	h.seedBrand(t, "VINCENT", true)
	h.seedLens(t, "LN-BLU", 2000, true, true)

	_, err := h.rules.Create(h.ctx, offerruledomain.CreateRequest{
		Code: "FLAT100", Name: "Flat 100 off", RuleType: offerruledomain.RuleFlat, Value: 100, Priority: 10,
	})
	require.NoError(t, err)
	_, err = h.rules.Create(h.ctx, offerruledomain.CreateRequest{
		Code: "FESTIVE5", Name: "Festive 5% off", RuleType: offerruledomain.RulePercent, Value: 5, Priority: 50,
	})
	require.NoError(t, err)

	result, err := h.svc.Calculate(h.ctx, frameAndLensInput())
	require.NoError(t, err)

	require.Equal(t, int64(4900), result.EffectiveBase)
	require.Len(t, result.OffersApplied, 1)
	require.Equal(t, "FLAT100", result.OffersApplied[0].RuleCode)

	require.Len(t, result.RuleDecisions, 2)
	require.True(t, result.RuleDecisions[0].Applied)
	require.Equal(t, "FESTIVE5", result.RuleDecisions[1].RuleCode)
	require.Equal(t, offerdomain.ReasonLowerPriorityRuleWon, result.RuleDecisions[1].Reason)
}

func TestCalculate_ComboDoubleLock(t *testing.T) {
	cases := []struct {
		name         string
		brandCombo   bool
		lensCombo    bool
		storeActive  bool
		wantEligible bool
	}{
		{"all allowed", true, true, true, true},
		{"brand locked", false, true, true, false},
		{"lens locked", true, false, true, false},
		{"store disabled", true, true, false, false},
		{"brand and lens locked", false, false, true, false},
		{"brand and store locked", false, true, false, false},
		{"lens and store locked", true, false, false, false},
		{"all locked", false, false, false, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t)
			h.seedBrand(t, "VINCENT", tc.brandCombo)
			h.seedLens(t, "LN-BLU", 2000, true, tc.lensCombo)
			h.seedComboRule(t, "SILVER", 4500, nil)

			if !tc.storeActive {
				_, err := h.rules.SetStoreActivation(h.ctx, offerruledomain.StoreActivationRequest{
					StoreID: h.storeID.String(), RuleCode: "SILVER-COMBO", IsActive: false,
				})
				require.NoError(t, err)
			}

			input := frameAndLensInput()
			input.StoreID = h.storeID.String()
			result, err := h.svc.Calculate(h.ctx, input)
			require.NoError(t, err)

			if tc.wantEligible {
				require.Equal(t, int64(4500), result.EffectiveBase)
				require.Len(t, result.OffersApplied, 1)
			} else {
				require.Equal(t, int64(5000), result.EffectiveBase)
				require.Empty(t, result.OffersApplied)
			}
		})
	}
}

func TestCalculate_ComboAttachesBenefits(t *testing.T) {
	h := newHarness(t)
	h.seedBrand(t, "VINCENT", true)
	h.seedLens(t, "LN-BLU", 2000, true, true)

	_, err := h.combos.Create(h.ctx, combodomain.CreateRequest{
		ComboCode:      "SILVER",
		DisplayName:    "Silver",
		EffectivePrice: 4500,
		Benefits: []combodomain.BenefitRequest{
			{BenefitType: combodomain.BenefitAddOn, Label: "Anti-fog spray", MaxValue: 350},
			{BenefitType: combodomain.BenefitVoucher, Label: "500 off next visit", MaxValue: 500},
		},
	})
	require.NoError(t, err)
	comboCode := "SILVER"
	_, err = h.rules.Create(h.ctx, offerruledomain.CreateRequest{
		Code: "SILVER-COMBO", Name: "Silver bundle", RuleType: offerruledomain.RuleCombo,
		ComboCode: &comboCode, Priority: 10,
	})
	require.NoError(t, err)

	result, err := h.svc.Calculate(h.ctx, frameAndLensInput())
	require.NoError(t, err)

	require.Equal(t, int64(4500), result.FinalPayable)
	require.Len(t, result.BonusProducts, 2)
	deferred := map[string]bool{}
	for _, bonus := range result.BonusProducts {
		deferred[bonus.Label] = bonus.Deferred
	}
	require.False(t, deferred["Anti-fog spray"])
	require.True(t, deferred["500 off next visit"])
}

func TestCalculate_YopoChargesHigherPair(t *testing.T) {
	h := newHarness(t)
	h.seedBrand(t, "VINCENT", true)
	h.seedLens(t, "LN-BLU", 2000, true, true)

	_, err := h.rules.Create(h.ctx, offerruledomain.CreateRequest{
		Code: "YOPO", Name: "Second pair offer", RuleType: offerruledomain.RuleYopo, Priority: 20,
	})
	require.NoError(t, err)

	// Second pair costs more: the customer pays the second pair's price
	// and the first pair is the saving.
	input := frameAndLensInput()
	input.SecondPair = &offerdomain.SecondPairInput{Enabled: true, FrameMRP: 4000, LensPrice: 3000}
	result, err := h.svc.Calculate(h.ctx, input)
	require.NoError(t, err)
	require.Equal(t, int64(7000), result.EffectiveBase)
	require.Equal(t, int64(5000), result.SecondPairDiscount)
	require.Equal(t, int64(7000), result.FinalPayable)

	// Cheaper second pair: charge stays at the first pair's total.
	input.SecondPair = &offerdomain.SecondPairInput{Enabled: true, FrameMRP: 1500, LensPrice: 1000}
	result, err = h.svc.Calculate(h.ctx, input)
	require.NoError(t, err)
	require.Equal(t, int64(5000), result.EffectiveBase)
	require.Equal(t, int64(2500), result.SecondPairDiscount)
}

func TestCalculate_YopoHonorsSuppliedFirstPairTotal(t *testing.T) {
	h := newHarness(t)
	h.seedBrand(t, "VINCENT", true)
	h.seedLens(t, "LN-BLU", 2000, true, true)

	_, err := h.rules.Create(h.ctx, offerruledomain.CreateRequest{
		Code: "YOPO", Name: "Second pair offer", RuleType: offerruledomain.RuleYopo, Priority: 20,
	})
	require.NoError(t, err)

	// First pair priced outside this cart: the comparison must use the
	// supplied total, not the cart's 5000.
	input := frameAndLensInput()
	input.SecondPair = &offerdomain.SecondPairInput{
		Enabled:        true,
		FirstPairTotal: 8000,
		FrameMRP:       4000,
		LensPrice:      3000,
	}
	result, err := h.svc.Calculate(h.ctx, input)
	require.NoError(t, err)
	require.Equal(t, int64(8000), result.EffectiveBase)
	require.Equal(t, int64(7000), result.SecondPairDiscount)

	// Zero means the cart's base total stands in as the first pair.
	input.SecondPair.FirstPairTotal = 0
	result, err = h.svc.Calculate(h.ctx, input)
	require.NoError(t, err)
	require.Equal(t, int64(7000), result.EffectiveBase)
	require.Equal(t, int64(5000), result.SecondPairDiscount)
}

func TestCalculate_YopoRequiresEligibleLens(t *testing.T) {
	h := newHarness(t)
	h.seedBrand(t, "VINCENT", true)
	h.seedLens(t, "LN-BLU", 2000, false, true)

	_, err := h.rules.Create(h.ctx, offerruledomain.CreateRequest{
		Code: "YOPO", Name: "Second pair offer", RuleType: offerruledomain.RuleYopo, Priority: 20,
	})
	require.NoError(t, err)

	input := frameAndLensInput()
	input.SecondPair = &offerdomain.SecondPairInput{Enabled: true, FrameMRP: 1500, LensPrice: 1000}
	result, err := h.svc.Calculate(h.ctx, input)
	require.NoError(t, err)

	require.Empty(t, result.OffersApplied)
	require.Len(t, result.RuleDecisions, 1)
	require.Equal(t, offerdomain.ReasonLensNotYopoEligible, result.RuleDecisions[0].Reason)
}

func TestCalculate_CategoryVerification(t *testing.T) {
	h := newHarness(t)
	h.seedBrand(t, "VINCENT", true)
	h.seedLens(t, "LN-BLU", 2000, true, true)

	maxDiscount := int64(300)
	_, err := h.catDisc.Create(h.ctx, catdiscdomain.CreateRequest{
		CustomerCategory:     catdiscdomain.CategoryStudent,
		BrandCode:            "*",
		DiscountPercent:      10,
		MaxDiscount:          &maxDiscount,
		VerificationRequired: true,
		AllowedIDTypes:       []string{"STUDENT_ID"},
	})
	require.NoError(t, err)

	student := catdiscdomain.CategoryStudent
	input := frameAndLensInput()
	input.CustomerCategory = &student

	// No proof supplied: discount withheld, checkout still possible.
	result, err := h.svc.Calculate(h.ctx, input)
	require.NoError(t, err)
	require.Zero(t, result.CategoryDiscount)
	require.NotEmpty(t, result.CategoryError)
	require.Equal(t, int64(5000), result.FinalPayable)

	input.Verification = &offerdomain.Verification{IDType: "PASSPORT"}
	result, err = h.svc.Calculate(h.ctx, input)
	require.NoError(t, err)
	require.Zero(t, result.CategoryDiscount)

	input.Verification = &offerdomain.Verification{IDType: "STUDENT_ID"}
	result, err = h.svc.Calculate(h.ctx, input)
	require.NoError(t, err)
	require.Equal(t, int64(300), result.CategoryDiscount)
	require.Empty(t, result.CategoryError)
}

func TestCalculate_CouponSoftErrors(t *testing.T) {
	h := newHarness(t)
	h.seedBrand(t, "VINCENT", true)
	h.seedLens(t, "LN-BLU", 2000, true, true)

	_, err := h.coupons.Create(h.ctx, coupondomain.CreateRequest{
		Code:          "LATER",
		DiscountType:  coupondomain.DiscountFlatAmount,
		DiscountValue: 50,
		ValidFrom:     h.clk.Now().Add(time.Hour),
	})
	require.NoError(t, err)

	cases := []struct {
		code   string
		reason string
	}{
		{"NOPE", coupondomain.ReasonNotFound},
		{"LATER", coupondomain.ReasonNotStarted},
	}
	for _, tc := range cases {
		code := tc.code
		input := frameAndLensInput()
		input.CouponCode = &code

		result, err := h.svc.Calculate(h.ctx, input)
		require.NoError(t, err)
		require.Equal(t, tc.reason, result.CouponError)
		require.Zero(t, result.CouponDiscount)
		require.Equal(t, int64(5000), result.FinalPayable)
	}
}

func TestCalculate_MonotonicAndNonNegative(t *testing.T) {
	h := newHarness(t)
	h.seedBrand(t, "VINCENT", true)
	h.seedLens(t, "LN-BLU", 2000, true, true)
	h.seedStudentDiscount(t)

	_, err := h.coupons.Create(h.ctx, coupondomain.CreateRequest{
		Code:          "HUGE",
		DiscountType:  coupondomain.DiscountFlatAmount,
		DiscountValue: 100000,
		ValidFrom:     h.clk.Now().Add(-time.Hour),
	})
	require.NoError(t, err)

	base, err := h.svc.Calculate(h.ctx, frameAndLensInput())
	require.NoError(t, err)

	student := catdiscdomain.CategoryStudent
	withCategory := frameAndLensInput()
	withCategory.CustomerCategory = &student
	catResult, err := h.svc.Calculate(h.ctx, withCategory)
	require.NoError(t, err)
	require.LessOrEqual(t, catResult.FinalPayable, base.FinalPayable)

	huge := "HUGE"
	withCoupon := withCategory
	withCoupon.CouponCode = &huge
	couponResult, err := h.svc.Calculate(h.ctx, withCoupon)
	require.NoError(t, err)
	require.LessOrEqual(t, couponResult.FinalPayable, catResult.FinalPayable)
	require.GreaterOrEqual(t, couponResult.FinalPayable, int64(0))
}

func TestCalculate_Deterministic(t *testing.T) {
	h := newHarness(t)
	h.seedBrand(t, "VINCENT", true)
	h.seedLens(t, "LN-BLU", 2000, true, true)
	h.seedStudentDiscount(t)
	h.seedComboRule(t, "SILVER", 4500, nil)

	student := catdiscdomain.CategoryStudent
	input := frameAndLensInput()
	input.CustomerCategory = &student

	first, err := h.svc.Calculate(h.ctx, input)
	require.NoError(t, err)
	second, err := h.svc.Calculate(h.ctx, input)
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestCalculate_UpgradeAdvisor(t *testing.T) {
	h := newHarness(t)
	h.seedBrand(t, "VINCENT", true)
	h.seedLens(t, "LN-BLU", 2000, true, true)

	_, err := h.combos.Create(h.ctx, combodomain.CreateRequest{
		ComboCode: "BRONZE", DisplayName: "Bronze", EffectivePrice: 3500, SortOrder: 1,
		Rules: []combodomain.RuleRequest{
			{RuleType: combodomain.RuleAllowedBrands, Values: []string{"JOHNJACOBS"}},
		},
	})
	require.NoError(t, err)
	_, err = h.combos.Create(h.ctx, combodomain.CreateRequest{
		ComboCode: "SILVER", DisplayName: "Silver", EffectivePrice: 4500, SortOrder: 2,
		Rules: []combodomain.RuleRequest{
			{RuleType: combodomain.RuleAllowedBrands, Values: []string{"VINCENT", "JOHNJACOBS"}},
		},
	})
	require.NoError(t, err)

	requested := "BRONZE"
	input := frameAndLensInput()
	input.RequestedCombo = &requested

	result, err := h.svc.Calculate(h.ctx, input)
	require.NoError(t, err)

	require.NotNil(t, result.Upgrade)
	require.Equal(t, offerdomain.UpgradeBrandNotEligible, result.Upgrade.ReasonCode)
	require.Equal(t, "BRONZE", result.Upgrade.FromTier)
	require.Equal(t, "SILVER", result.Upgrade.ToTier)
}

func TestCalculate_UpsellNearThreshold(t *testing.T) {
	h := newHarness(t)
	h.seedBrand(t, "VINCENT", true)
	h.seedLens(t, "LN-BLU", 2000, true, true)

	_, err := h.rewards.Create(h.ctx, rewarddomain.CreateRequest{Threshold: 5200, Label: "Free cleaning kit"})
	require.NoError(t, err)

	result, err := h.svc.Calculate(h.ctx, frameAndLensInput())
	require.NoError(t, err)

	require.NotNil(t, result.Upsell)
	require.Equal(t, int64(5200), result.Upsell.NextThreshold)
	require.Equal(t, int64(200), result.Upsell.Remaining)

	// Far from the threshold: no nudge.
	h2 := newHarness(t)
	h2.seedBrand(t, "VINCENT", true)
	h2.seedLens(t, "LN-BLU", 2000, true, true)
	_, err = h2.rewards.Create(h2.ctx, rewarddomain.CreateRequest{Threshold: 9000, Label: "Gold"})
	require.NoError(t, err)

	result, err = h2.svc.Calculate(h2.ctx, frameAndLensInput())
	require.NoError(t, err)
	require.Nil(t, result.Upsell)
}

func TestCalculate_Modes(t *testing.T) {
	h := newHarness(t)
	h.seedBrand(t, "VINCENT", true)
	h.seedLens(t, "LN-BLU", 2000, true, true)

	_, err := h.svc.Calculate(h.ctx, offerdomain.CalculationInput{
		Mode: offerdomain.ModeFrameAndLens,
		Lens: &offerdomain.LensInput{ItCode: "LN-BLU"},
	})
	require.ErrorIs(t, err, offerdomain.ErrMissingFrame)

	_, err = h.svc.Calculate(h.ctx, offerdomain.CalculationInput{Mode: offerdomain.ModeOnlyLens})
	require.ErrorIs(t, err, offerdomain.ErrMissingLens)

	_, err = h.svc.Calculate(h.ctx, offerdomain.CalculationInput{Mode: offerdomain.ModeContactLensOnly})
	require.ErrorIs(t, err, offerdomain.ErrMissingItems)

	result, err := h.svc.Calculate(h.ctx, offerdomain.CalculationInput{
		Mode: offerdomain.ModeContactLensOnly,
		OtherItems: []offerdomain.OtherItem{
			{Label: "Contact lens pack", FinalPrice: 1200},
			{Label: "Solution", FinalPrice: 300},
		},
	})
	require.NoError(t, err)
	require.Equal(t, int64(1500), result.BaseTotal)
	require.Zero(t, result.FrameMRP)
	require.Zero(t, result.LensPrice)
}

func TestCheckout_CommitsCouponOnce(t *testing.T) {
	h := newHarness(t)
	h.seedBrand(t, "VINCENT", true)
	h.seedLens(t, "LN-BLU", 2000, true, true)

	limit := int64(1)
	_, err := h.coupons.Create(h.ctx, coupondomain.CreateRequest{
		Code:          "ONEUSE",
		DiscountType:  coupondomain.DiscountFlatAmount,
		DiscountValue: 50,
		UsageLimit:    &limit,
		ValidFrom:     h.clk.Now().Add(-time.Hour),
	})
	require.NoError(t, err)

	code := "ONEUSE"
	input := frameAndLensInput()
	input.CouponCode = &code

	first, err := h.svc.Checkout(h.ctx, offerdomain.CheckoutRequest{OrderID: "order-1", Input: input})
	require.NoError(t, err)
	require.True(t, first.CouponRedeemed)
	require.Equal(t, int64(4950), first.Calculation.FinalPayable)

	coupon, err := h.coupons.GetByCode(h.ctx, "ONEUSE")
	require.NoError(t, err)
	require.Equal(t, int64(1), coupon.UsedCount)

	// Limit exhausted: second order keeps pricing but loses the coupon.
	second, err := h.svc.Checkout(h.ctx, offerdomain.CheckoutRequest{OrderID: "order-2", Input: input})
	require.NoError(t, err)
	require.False(t, second.CouponRedeemed)
	require.Equal(t, coupondomain.ReasonUsageLimitHit, second.Calculation.CouponError)
	require.Equal(t, int64(5000), second.Calculation.FinalPayable)
}

func TestStripLostCoupon_RevertsDiscountAndUpsell(t *testing.T) {
	h := newHarness(t)
	h.seedBrand(t, "VINCENT", true)
	h.seedLens(t, "LN-BLU", 2000, true, true)

	limit := int64(1)
	_, err := h.coupons.Create(h.ctx, coupondomain.CreateRequest{
		Code:          "ONEUSE",
		DiscountType:  coupondomain.DiscountFlatAmount,
		DiscountValue: 50,
		UsageLimit:    &limit,
		ValidFrom:     h.clk.Now().Add(-time.Hour),
	})
	require.NoError(t, err)
	_, err = h.rewards.Create(h.ctx, rewarddomain.CreateRequest{Threshold: 5000, Label: "Cleaning kit"})
	require.NoError(t, err)

	code := "ONEUSE"
	input := frameAndLensInput()
	input.CouponCode = &code

	// Discounted to 4950, the 5000 threshold is 50 away.
	calc, err := h.svc.Calculate(h.ctx, input)
	require.NoError(t, err)
	require.Equal(t, int64(4950), calc.FinalPayable)
	require.NotNil(t, calc.Upsell)
	require.Equal(t, int64(50), calc.Upsell.Remaining)

	// Losing the last redemption restores the payable to 5000; the nudge
	// computed at the discounted price must not survive.
	h.svc.(*service).stripLostCoupon(h.ctx, calc)
	require.Equal(t, int64(5000), calc.FinalPayable)
	require.Zero(t, calc.CouponDiscount)
	require.Equal(t, coupondomain.ReasonUsageLimitHit, calc.CouponError)
	require.Nil(t, calc.Upsell)

	var sum int64
	for _, comp := range calc.PriceComponents {
		sum += comp.Amount
	}
	require.Equal(t, calc.FinalPayable, sum)
}

func TestCheckout_RequiresOrderID(t *testing.T) {
	h := newHarness(t)
	h.seedBrand(t, "VINCENT", true)
	h.seedLens(t, "LN-BLU", 2000, true, true)

	_, err := h.svc.Checkout(h.ctx, offerdomain.CheckoutRequest{Input: frameAndLensInput()})
	require.ErrorIs(t, err, offerdomain.ErrInvalidOrder)
}
