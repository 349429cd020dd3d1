package service

import (
	"fmt"

	catalogdomain "github.com/smallbiznis/optora/internal/catalog/domain"
	combodomain "github.com/smallbiznis/optora/internal/combo/domain"
	offerdomain "github.com/smallbiznis/optora/internal/offer/domain"
	offerruledomain "github.com/smallbiznis/optora/internal/offerrule/domain"
	"github.com/smallbiznis/optora/internal/ruleset"
)

// cart is the working state a primary strategy evaluates against.
type cart struct {
	input             *offerdomain.CalculationInput
	baseTotal         int64
	lens              *catalogdomain.LensPricing
	brandComboAllowed bool
	selection         combodomain.Selection
	snapshot          *ruleset.RuleSet
}

// primaryOutcome is what a winning strategy contributes to the result.
type primaryOutcome struct {
	effectiveBase      int64
	savings            int64
	secondPairTotal    int64
	secondPairDiscount int64
	description        string
	bonuses            []offerdomain.BonusProduct
}

// primaryStrategy evaluates one rule type. The resolver walks eligible
// rules in (priority, type precedence, code) order and applies the first
// strategy that reports applicable.
type primaryStrategy interface {
	Evaluate(rule offerruledomain.OfferRule, c *cart) (bool, primaryOutcome, string)
}

// typeRank fixes precedence among rules sharing a priority: combo beats
// YOPO beats flat/percent.
func typeRank(t offerruledomain.RuleType) int {
	switch t {
	case offerruledomain.RuleCombo:
		return 0
	case offerruledomain.RuleYopo:
		return 1
	default:
		return 2
	}
}

type comboStrategy struct{}

func (comboStrategy) Evaluate(rule offerruledomain.OfferRule, c *cart) (bool, primaryOutcome, string) {
	if c.input.Mode != offerdomain.ModeFrameAndLens || c.lens == nil {
		return false, primaryOutcome{}, offerdomain.ReasonModeNotApplicable
	}
	if rule.ComboCode == nil {
		return false, primaryOutcome{}, offerdomain.ReasonComboTierNotFound
	}
	tier, ok := c.snapshot.Tier(*rule.ComboCode)
	if !ok {
		return false, primaryOutcome{}, offerdomain.ReasonComboTierNotFound
	}
	if !c.brandComboAllowed {
		return false, primaryOutcome{}, offerdomain.ReasonBrandNotComboAllowed
	}
	if !c.lens.ComboAllowed {
		return false, primaryOutcome{}, offerdomain.ReasonLensNotComboAllowed
	}
	if !tier.Evaluate(c.selection).Eligible() {
		return false, primaryOutcome{}, offerdomain.ReasonTierRulesNotMet
	}

	out := primaryOutcome{
		effectiveBase: tier.EffectivePrice,
		description:   fmt.Sprintf("%s combo bundle", tier.DisplayName),
	}
	if c.baseTotal > tier.EffectivePrice {
		out.savings = c.baseTotal - tier.EffectivePrice
	}
	for _, b := range tier.Benefits {
		out.bonuses = append(out.bonuses, offerdomain.BonusProduct{
			BenefitType: string(b.BenefitType),
			Label:       b.Label,
			MaxValue:    b.MaxValue,
			Deferred:    b.BenefitType == combodomain.BenefitVoucher,
		})
	}
	return true, out, ""
}

// yopoStrategy charges the higher-priced pair; the cheaper pair is the
// saving, not a free item.
type yopoStrategy struct{}

func (yopoStrategy) Evaluate(rule offerruledomain.OfferRule, c *cart) (bool, primaryOutcome, string) {
	sp := c.input.SecondPair
	if sp == nil || !sp.Enabled {
		return false, primaryOutcome{}, offerdomain.ReasonSecondPairMissing
	}
	if c.lens == nil || !c.lens.YopoEligible {
		return false, primaryOutcome{}, offerdomain.ReasonLensNotYopoEligible
	}

	first := c.baseTotal
	if sp.FirstPairTotal > 0 {
		first = sp.FirstPairTotal
	}
	second := sp.FrameMRP + sp.LensPrice
	charged := first
	saved := second
	if second > first {
		charged = second
		saved = first
	}
	return true, primaryOutcome{
		effectiveBase:      charged,
		savings:            saved,
		secondPairTotal:    second,
		secondPairDiscount: saved,
		description:        rule.Name,
	}, ""
}

type flatPercentStrategy struct{}

func (flatPercentStrategy) Evaluate(rule offerruledomain.OfferRule, c *cart) (bool, primaryOutcome, string) {
	if rule.Value <= 0 {
		return false, primaryOutcome{}, offerdomain.ReasonNoDiscountValue
	}

	var savings int64
	switch rule.RuleType {
	case offerruledomain.RuleFlat:
		savings = rule.Value
	case offerruledomain.RulePercent:
		savings = c.baseTotal * rule.Value / 100
	default:
		return false, primaryOutcome{}, offerdomain.ReasonNoDiscountValue
	}
	if savings > c.baseTotal {
		savings = c.baseTotal
	}
	return true, primaryOutcome{
		effectiveBase: c.baseTotal - savings,
		savings:       savings,
		description:   rule.Name,
	}, ""
}

func strategyFor(t offerruledomain.RuleType) primaryStrategy {
	switch t {
	case offerruledomain.RuleCombo:
		return comboStrategy{}
	case offerruledomain.RuleYopo:
		return yopoStrategy{}
	default:
		return flatPercentStrategy{}
	}
}
