package service

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/smallbiznis/optora/internal/catalog/domain"
	combodomain "github.com/smallbiznis/optora/internal/combo/domain"
	"github.com/smallbiznis/optora/internal/clock"
	"github.com/smallbiznis/optora/internal/config"
	coupondomain "github.com/smallbiznis/optora/internal/coupon/domain"
	"github.com/smallbiznis/optora/internal/observability/metrics"
	offerdomain "github.com/smallbiznis/optora/internal/offer/domain"
	offerruledomain "github.com/smallbiznis/optora/internal/offerrule/domain"
	"github.com/smallbiznis/optora/internal/orgcontext"
	rewarddomain "github.com/smallbiznis/optora/internal/reward/domain"
	"github.com/smallbiznis/optora/internal/ruleset"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log     *zap.Logger
	Cfg     config.Config
	Clock   clock.Clock
	Catalog catalogdomain.Service
	Coupons coupondomain.Service
	Rewards rewarddomain.Service
	Rules   ruleset.Loader
	Metrics *metrics.EngineMetrics
}

type service struct {
	log     *zap.Logger
	cfg     config.Config
	clock   clock.Clock
	catalog catalogdomain.Service
	coupons coupondomain.Service
	rewards rewarddomain.Service
	rules   ruleset.Loader
	metrics *metrics.EngineMetrics
}

func New(p Params) offerdomain.Service {
	return &service{
		log:     p.Log.Named("offer.service"),
		cfg:     p.Cfg,
		clock:   p.Clock,
		catalog: p.Catalog,
		coupons: p.Coupons,
		rewards: p.Rewards,
		rules:   p.Rules,
		metrics: p.Metrics,
	}
}

func (s *service) Calculate(ctx context.Context, input offerdomain.CalculationInput) (*offerdomain.CalculationResult, error) {
	started := s.clock.Now()

	if _, ok := orgcontext.OrgIDFromContext(ctx); !ok {
		return nil, offerdomain.ErrInvalidOrganization
	}
	if err := validateInput(input); err != nil {
		return nil, err
	}

	c, err := s.buildCart(ctx, &input)
	if err != nil {
		return nil, err
	}

	result := &offerdomain.CalculationResult{
		BaseTotal:     c.baseTotal,
		EffectiveBase: c.baseTotal,
		OffersApplied: []offerdomain.OfferApplied{},
	}
	if input.Frame != nil {
		result.FrameMRP = input.Frame.MRP
	}
	if c.lens != nil {
		result.LensPrice = c.lens.Total
	}

	primaryRule := "none"
	outcome := s.resolvePrimary(c, result)
	if outcome != nil {
		primaryRule = outcome.ruleType
		result.EffectiveBase = outcome.effectiveBase
		result.SecondPairDiscount = outcome.secondPairDiscount
		result.BonusProducts = outcome.bonuses
	}

	s.applyCategoryDiscount(c, result)
	if err := s.applyCoupon(ctx, c, result); err != nil {
		return nil, err
	}

	result.FinalPayable = result.EffectiveBase - result.CategoryDiscount - result.CouponDiscount
	if result.FinalPayable < 0 {
		result.FinalPayable = 0
	}

	result.PriceComponents = buildComponents(c, result, outcome)
	result.Upgrade = s.adviseUpgrade(c)
	result.Upsell = s.adviseUpsell(ctx, result.FinalPayable)

	s.metrics.RecordCalculation(primaryRule, s.clock.Now().Sub(started))
	return result, nil
}

func (s *service) Checkout(ctx context.Context, req offerdomain.CheckoutRequest) (*offerdomain.CheckoutResult, error) {
	orderID := strings.TrimSpace(req.OrderID)
	if orderID == "" {
		return nil, offerdomain.ErrInvalidOrder
	}

	calc, err := s.Calculate(ctx, req.Input)
	if err != nil {
		return nil, err
	}

	out := &offerdomain.CheckoutResult{Calculation: calc}
	if req.Input.CouponCode == nil || calc.CouponError != "" || calc.CouponDiscount == 0 {
		return out, nil
	}

	err = s.coupons.Redeem(ctx, *req.Input.CouponCode, orderID)
	switch {
	case err == nil:
		out.CouponRedeemed = true
		s.metrics.RecordRedemption("committed")
	case errors.Is(err, coupondomain.ErrUsageLimitReached):
		// Lost the race for the last redemption; strip the coupon and let
		// the order proceed at the undiscounted amount.
		s.stripLostCoupon(ctx, calc)
		s.metrics.RecordRedemption("limit_reached")
	default:
		s.metrics.RecordRedemption("error")
		return nil, err
	}
	return out, nil
}

// stripLostCoupon reverts a calculation whose coupon could not be committed:
// the discount comes off, the component disappears, and advisory output is
// recomputed at the restored payable.
func (s *service) stripLostCoupon(ctx context.Context, calc *offerdomain.CalculationResult) {
	calc.FinalPayable += calc.CouponDiscount
	calc.CouponDiscount = 0
	calc.CouponError = coupondomain.ReasonUsageLimitHit
	calc.PriceComponents = dropComponent(calc.PriceComponents, couponComponentLabel)
	calc.Upsell = s.adviseUpsell(ctx, calc.FinalPayable)
}

func validateInput(input offerdomain.CalculationInput) error {
	if !input.Mode.Valid() {
		return offerdomain.ErrInvalidMode
	}
	switch input.Mode {
	case offerdomain.ModeFrameAndLens:
		if input.Frame == nil {
			return offerdomain.ErrMissingFrame
		}
		if input.Lens == nil {
			return offerdomain.ErrMissingLens
		}
	case offerdomain.ModeOnlyLens:
		if input.Lens == nil {
			return offerdomain.ErrMissingLens
		}
	case offerdomain.ModeContactLensOnly:
		if len(input.OtherItems) == 0 {
			return offerdomain.ErrMissingItems
		}
	}
	if input.Frame != nil && input.Frame.MRP <= 0 {
		return offerdomain.ErrInvalidFrame
	}
	return nil
}

func (s *service) buildCart(ctx context.Context, input *offerdomain.CalculationInput) (*cart, error) {
	c := &cart{input: input}

	if input.Lens != nil {
		var rx catalogdomain.Prescription
		if input.Lens.Prescription != nil {
			rx = *input.Lens.Prescription
		}
		pricing, err := s.catalog.PriceLens(ctx, input.Lens.ItCode, rx)
		if err != nil {
			return nil, err
		}
		if input.Lens.Price > 0 {
			pricing.BasePrice = input.Lens.Price
			pricing.Total = pricing.BasePrice + pricing.BandSurcharge + pricing.AddOnCharges
		}
		c.lens = pricing
	}

	if input.Frame != nil {
		c.baseTotal += input.Frame.MRP
		brand, err := s.catalog.GetBrandByCode(ctx, input.Frame.Brand)
		switch {
		case err == nil:
			c.brandComboAllowed = brand.ComboAllowed
		case errors.Is(err, catalogdomain.ErrBrandNotFound):
			// Unknown brands price normally but never unlock combos.
		default:
			return nil, err
		}
	}
	if c.lens != nil {
		c.baseTotal += c.lens.Total
	}
	for _, item := range input.OtherItems {
		c.baseTotal += item.FinalPrice
	}

	var storeID snowflake.ID
	if strings.TrimSpace(input.StoreID) != "" {
		parsed, err := snowflake.ParseString(strings.TrimSpace(input.StoreID))
		if err != nil {
			return nil, offerdomain.ErrInvalidStore
		}
		storeID = parsed
	}
	snapshot, err := s.rules.Snapshot(ctx, storeID)
	if err != nil {
		return nil, err
	}
	c.snapshot = snapshot

	c.selection = combodomain.Selection{
		Needs: input.Needs,
	}
	if input.Frame != nil {
		c.selection.BrandCode = input.Frame.Brand
		c.selection.FrameMRP = input.Frame.MRP
	}
	if c.lens != nil {
		c.selection.LensLine = c.lens.BrandLine
	}
	return c, nil
}

// resolvedPrimary pairs the winning outcome with the rule that produced it.
type resolvedPrimary struct {
	primaryOutcome
	ruleCode string
	ruleType string
}

func (s *service) resolvePrimary(c *cart, result *offerdomain.CalculationResult) *resolvedPrimary {
	candidates := make([]offerruledomain.OfferRule, len(c.snapshot.OfferRules))
	copy(candidates, c.snapshot.OfferRules)
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Priority != candidates[j].Priority {
			return candidates[i].Priority < candidates[j].Priority
		}
		if ri, rj := typeRank(candidates[i].RuleType), typeRank(candidates[j].RuleType); ri != rj {
			return ri < rj
		}
		return candidates[i].Code < candidates[j].Code
	})

	var winner *resolvedPrimary
	for _, rule := range candidates {
		decision := offerdomain.RuleDecision{
			RuleCode: rule.Code,
			RuleType: string(rule.RuleType),
		}
		if winner != nil {
			decision.Reason = offerdomain.ReasonLowerPriorityRuleWon
			result.RuleDecisions = append(result.RuleDecisions, decision)
			continue
		}

		applicable, outcome, reason := strategyFor(rule.RuleType).Evaluate(rule, c)
		if !applicable {
			decision.Reason = reason
			result.RuleDecisions = append(result.RuleDecisions, decision)
			continue
		}

		decision.Applied = true
		result.RuleDecisions = append(result.RuleDecisions, decision)
		result.OffersApplied = append(result.OffersApplied, offerdomain.OfferApplied{
			RuleCode:    rule.Code,
			Description: outcome.description,
			Savings:     outcome.savings,
		})
		winner = &resolvedPrimary{
			primaryOutcome: outcome,
			ruleCode:       rule.Code,
			ruleType:       string(rule.RuleType),
		}
	}
	return winner
}

func (s *service) applyCategoryDiscount(c *cart, result *offerdomain.CalculationResult) {
	input := c.input
	if input.CustomerCategory == nil || !input.CustomerCategory.Valid() {
		return
	}

	brandCode := "*"
	if input.Frame != nil {
		brandCode = strings.ToUpper(strings.TrimSpace(input.Frame.Brand))
	}
	discount := c.snapshot.CategoryDiscount(*input.CustomerCategory, brandCode)
	if discount == nil {
		return
	}

	if discount.VerificationRequired {
		if input.Verification == nil {
			result.CategoryError = "category_verification_required"
			return
		}
		if !discount.AllowsIDType(input.Verification.IDType) {
			result.CategoryError = "category_id_type_not_accepted"
			return
		}
	}

	saved := int64(float64(result.EffectiveBase) * discount.DiscountPercent / 100)
	if discount.MaxDiscount != nil && saved > *discount.MaxDiscount {
		saved = *discount.MaxDiscount
	}
	if saved > result.EffectiveBase {
		saved = result.EffectiveBase
	}
	result.CategoryDiscount = saved
}

func (s *service) applyCoupon(ctx context.Context, c *cart, result *offerdomain.CalculationResult) error {
	if c.input.CouponCode == nil || strings.TrimSpace(*c.input.CouponCode) == "" {
		return nil
	}

	cartValue := result.EffectiveBase - result.CategoryDiscount
	cpn, reason, err := s.coupons.Validate(ctx, *c.input.CouponCode, cartValue, s.clock.Now())
	if err != nil {
		return err
	}
	if reason != "" {
		result.CouponError = reason
		return nil
	}
	result.CouponDiscount = cpn.Discount(cartValue)
	return nil
}

const (
	primaryComponentLabel  = "Offer adjustment"
	categoryComponentLabel = "Category discount"
	couponComponentLabel   = "Coupon discount"
)

// buildComponents itemizes the cart so the signed amounts sum to the final
// payable figure.
func buildComponents(c *cart, result *offerdomain.CalculationResult, outcome *resolvedPrimary) []offerdomain.PriceComponent {
	components := []offerdomain.PriceComponent{}
	if c.input.Frame != nil {
		components = append(components, offerdomain.PriceComponent{Label: "Frame MRP", Amount: c.input.Frame.MRP})
	}
	if c.lens != nil {
		components = append(components, offerdomain.PriceComponent{Label: "Lens price", Amount: c.lens.Total})
	}
	for _, item := range c.input.OtherItems {
		components = append(components, offerdomain.PriceComponent{Label: item.Label, Amount: item.FinalPrice})
	}

	itemized := c.baseTotal
	if outcome != nil && outcome.secondPairTotal > 0 {
		components = append(components, offerdomain.PriceComponent{Label: "Second pair", Amount: outcome.secondPairTotal})
		itemized += outcome.secondPairTotal
	}
	if adjustment := result.EffectiveBase - itemized; adjustment != 0 {
		label := primaryComponentLabel
		if outcome != nil && outcome.description != "" {
			label = outcome.description
		}
		components = append(components, offerdomain.PriceComponent{Label: label, Amount: adjustment})
	}
	if result.CategoryDiscount > 0 {
		components = append(components, offerdomain.PriceComponent{Label: categoryComponentLabel, Amount: -result.CategoryDiscount})
	}
	if result.CouponDiscount > 0 {
		components = append(components, offerdomain.PriceComponent{Label: couponComponentLabel, Amount: -result.CouponDiscount})
	}
	return components
}

func dropComponent(components []offerdomain.PriceComponent, label string) []offerdomain.PriceComponent {
	out := components[:0]
	for _, comp := range components {
		if comp.Label == label {
			continue
		}
		out = append(out, comp)
	}
	return out
}

func (s *service) adviseUpgrade(c *cart) *offerdomain.UpgradeSuggestion {
	input := c.input
	if input.RequestedCombo == nil {
		return nil
	}
	requested, ok := c.snapshot.Tier(strings.ToUpper(strings.TrimSpace(*input.RequestedCombo)))
	if !ok {
		return nil
	}

	eval := requested.Evaluate(c.selection)
	brandOK := eval.BrandEligible && eval.FrameEligible && c.brandComboAllowed
	lensOK := eval.LensEligible && (c.lens == nil || c.lens.ComboAllowed)
	if brandOK && lensOK && eval.NeedsEligible {
		return nil
	}

	target := c.findUpgradeTarget(requested)
	if target == nil {
		return nil
	}

	reason := offerdomain.UpgradeNeedsMismatch
	switch {
	case !brandOK && !lensOK:
		reason = offerdomain.UpgradeBothOptions
	case !brandOK:
		reason = offerdomain.UpgradeBrandNotEligible
	case !lensOK:
		reason = offerdomain.UpgradeLensNotEligible
	}

	return &offerdomain.UpgradeSuggestion{
		ReasonCode: reason,
		FromTier:   requested.ComboCode,
		ToTier:     target.ComboCode,
		Message:    "Your selection qualifies for " + target.DisplayName + ". Upgrade to keep these picks, or adjust your selection.",
	}
}

// findUpgradeTarget returns the cheapest higher tier whose rules accept the
// current selection.
func (c *cart) findUpgradeTarget(from combodomain.ComboTier) *combodomain.ComboTier {
	tiers := make([]combodomain.ComboTier, 0, len(c.snapshot.ComboTiers))
	for _, tier := range c.snapshot.ComboTiers {
		tiers = append(tiers, tier)
	}
	sort.Slice(tiers, func(i, j int) bool {
		if tiers[i].SortOrder != tiers[j].SortOrder {
			return tiers[i].SortOrder < tiers[j].SortOrder
		}
		return tiers[i].ComboCode < tiers[j].ComboCode
	})

	for i := range tiers {
		tier := tiers[i]
		if tier.ComboCode == from.ComboCode || tier.SortOrder <= from.SortOrder {
			continue
		}
		if tier.Evaluate(c.selection).Eligible() {
			return &tiers[i]
		}
	}
	return nil
}

func (s *service) adviseUpsell(ctx context.Context, finalPayable int64) *offerdomain.Upsell {
	next, err := s.rewards.Next(ctx, finalPayable)
	if err != nil {
		s.log.Warn("reward threshold lookup failed", zap.Error(err))
		return nil
	}
	if next == nil {
		return nil
	}
	remaining := next.Threshold - finalPayable
	if remaining > s.cfg.UpsellProximity {
		return nil
	}
	return &offerdomain.Upsell{
		NextThreshold: next.Threshold,
		Remaining:     remaining,
		Label:         next.Label,
	}
}
