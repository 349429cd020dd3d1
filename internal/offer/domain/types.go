// Package domain defines the calculation contract of the pricing engine.
// Every calculation is a pure transformation from input to result; the only
// stateful step is the separate coupon commit on checkout.
package domain

import (
	catalogdomain "github.com/smallbiznis/optora/internal/catalog/domain"
	catdiscdomain "github.com/smallbiznis/optora/internal/categorydiscount/domain"
)

type Mode string

const (
	ModeFrameAndLens    Mode = "FRAME_AND_LENS"
	ModeOnlyLens        Mode = "ONLY_LENS"
	ModeContactLensOnly Mode = "CONTACT_LENS_ONLY"
)

func (m Mode) Valid() bool {
	switch m {
	case ModeFrameAndLens, ModeOnlyLens, ModeContactLensOnly:
		return true
	default:
		return false
	}
}

// FrameInput is the frame half of the cart, immutable per calculation.
type FrameInput struct {
	Brand       string  `json:"brand"`
	SubCategory *string `json:"sub_category,omitempty"`
	MRP         int64   `json:"mrp"`
	FrameType   *string `json:"frame_type,omitempty"`
}

// LensInput identifies the lens by catalog SKU. When a prescription is
// supplied the catalog resolves band and add-on surcharges; Price overrides
// the catalog base price when positive.
type LensInput struct {
	ItCode       string                      `json:"it_code"`
	Price        int64                       `json:"price,omitempty"`
	Prescription *catalogdomain.Prescription `json:"prescription,omitempty"`
}

// SecondPairInput carries the independently priced second pair for YOPO
// rules. FirstPairTotal overrides the first pair's total when positive, for
// a first pair priced outside the current cart; zero means the cart's base
// total is the first pair.
type SecondPairInput struct {
	Enabled        bool  `json:"enabled"`
	FirstPairTotal int64 `json:"first_pair_total,omitempty"`
	FrameMRP       int64 `json:"frame_mrp"`
	LensPrice      int64 `json:"lens_price"`
}

// OtherItem is a contact-lens or accessory line item priced upstream.
type OtherItem struct {
	Label      string `json:"label"`
	FinalPrice int64  `json:"final_price"`
}

// Verification is the ID-proof metadata backing a category discount claim.
type Verification struct {
	IDType   string `json:"id_type"`
	IDNumber string `json:"id_number,omitempty"`
}

type CalculationInput struct {
	Mode             Mode                              `json:"mode"`
	StoreID          string                            `json:"store_id,omitempty"`
	Frame            *FrameInput                       `json:"frame,omitempty"`
	Lens             *LensInput                        `json:"lens,omitempty"`
	OtherItems       []OtherItem                       `json:"other_items,omitempty"`
	CustomerCategory *catdiscdomain.CustomerCategory   `json:"customer_category,omitempty"`
	Verification     *Verification                     `json:"verification,omitempty"`
	CouponCode       *string                           `json:"coupon_code,omitempty"`
	SecondPair       *SecondPairInput                  `json:"second_pair,omitempty"`
	RequestedCombo   *string                           `json:"requested_combo,omitempty"`
	Needs            []string                          `json:"needs,omitempty"`
}

// PriceComponent is a signed line item on the itemized breakdown.
type PriceComponent struct {
	Label  string `json:"label"`
	Amount int64  `json:"amount"`
}

// OfferApplied records a rule that fired and what it saved.
type OfferApplied struct {
	RuleCode    string `json:"rule_code"`
	Description string `json:"description"`
	Savings     int64  `json:"savings"`
}

// RuleDecision explains, per candidate primary rule, why it did or did not
// apply. Consumed by the admin simulator.
type RuleDecision struct {
	RuleCode string `json:"rule_code"`
	RuleType string `json:"rule_type"`
	Applied  bool   `json:"applied"`
	Reason   string `json:"reason,omitempty"`
}

// Skip reasons recorded on RuleDecision.
const (
	ReasonLowerPriorityRuleWon = "lower_priority_rule_won"
	ReasonComboTierNotFound    = "combo_tier_not_found"
	ReasonBrandNotComboAllowed = "brand_not_combo_allowed"
	ReasonLensNotComboAllowed  = "lens_not_combo_allowed"
	ReasonTierRulesNotMet      = "tier_rules_not_met"
	ReasonSecondPairMissing    = "second_pair_missing"
	ReasonLensNotYopoEligible  = "lens_not_yopo_eligible"
	ReasonModeNotApplicable    = "mode_not_applicable"
	ReasonNoDiscountValue      = "no_discount_value"
)

// Upgrade advisor reason codes.
const (
	UpgradeBrandNotEligible = "BRAND_NOT_ELIGIBLE"
	UpgradeLensNotEligible  = "LENS_NOT_ELIGIBLE"
	UpgradeNeedsMismatch    = "NEEDS_MISMATCH"
	UpgradeBothOptions      = "BOTH_OPTIONS"
)

// UpgradeSuggestion is advisory only and never mutates price.
type UpgradeSuggestion struct {
	ReasonCode string `json:"reason_code"`
	FromTier   string `json:"from_tier"`
	ToTier     string `json:"to_tier"`
	Message    string `json:"message"`
}

// Upsell nudges the customer toward the next reward threshold.
type Upsell struct {
	NextThreshold int64  `json:"next_threshold"`
	Remaining     int64  `json:"remaining"`
	Label         string `json:"label"`
}

// BonusProduct is a combo benefit attached to the cart at no charge.
// Vouchers are deferred credits, never cart reductions.
type BonusProduct struct {
	BenefitType string `json:"benefit_type"`
	Label       string `json:"label"`
	MaxValue    int64  `json:"max_value"`
	Deferred    bool   `json:"deferred"`
}

type CalculationResult struct {
	FrameMRP           int64               `json:"frame_mrp"`
	LensPrice          int64               `json:"lens_price"`
	BaseTotal          int64               `json:"base_total"`
	EffectiveBase      int64               `json:"effective_base"`
	OffersApplied      []OfferApplied      `json:"offers_applied"`
	RuleDecisions      []RuleDecision      `json:"rule_decisions"`
	PriceComponents    []PriceComponent    `json:"price_components"`
	CategoryDiscount   int64               `json:"category_discount"`
	CategoryError      string              `json:"category_error,omitempty"`
	CouponDiscount     int64               `json:"coupon_discount"`
	CouponError        string              `json:"coupon_error,omitempty"`
	SecondPairDiscount int64               `json:"second_pair_discount"`
	BonusProducts      []BonusProduct      `json:"bonus_products,omitempty"`
	Upgrade            *UpgradeSuggestion  `json:"upgrade,omitempty"`
	Upsell             *Upsell             `json:"upsell,omitempty"`
	FinalPayable       int64               `json:"final_payable"`
}

// CheckoutRequest commits a calculation: the coupon, if one applied, is
// redeemed exactly once for the order.
type CheckoutRequest struct {
	OrderID string           `json:"order_id"`
	Input   CalculationInput `json:"input"`
}

type CheckoutResult struct {
	Calculation    *CalculationResult `json:"calculation"`
	CouponRedeemed bool               `json:"coupon_redeemed"`
}
