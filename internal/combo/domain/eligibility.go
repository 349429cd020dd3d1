package domain

import "strings"

// Selection is the customer's current frame/lens choice plus the needs
// profile supplied by the questionnaire subsystem.
type Selection struct {
	BrandCode string
	LensLine  string
	FrameMRP  int64
	Needs     []string
}

// Evaluation reports per-dimension rule outcomes for a tier, feeding both
// the resolver and the upgrade advisor.
type Evaluation struct {
	BrandEligible bool
	LensEligible  bool
	NeedsEligible bool
	FrameEligible bool
}

func (e Evaluation) Eligible() bool {
	return e.BrandEligible && e.LensEligible && e.NeedsEligible && e.FrameEligible
}

// Evaluate runs the tier's rules against a selection. Absent rule types
// accept everything.
func (t ComboTier) Evaluate(sel Selection) Evaluation {
	eval := Evaluation{
		BrandEligible: true,
		LensEligible:  true,
		NeedsEligible: true,
		FrameEligible: true,
	}

	for _, rule := range t.Rules {
		switch rule.RuleType {
		case RuleAllowedBrands:
			if len(rule.Values) > 0 && !containsFold(rule.Values, sel.BrandCode) {
				eval.BrandEligible = false
			}
		case RuleAllowedLensLines:
			if len(rule.Values) > 0 && !containsFold(rule.Values, sel.LensLine) {
				eval.LensEligible = false
			}
		case RuleMinFrameMRP:
			if rule.MinAmount != nil && sel.FrameMRP < *rule.MinAmount {
				eval.FrameEligible = false
			}
		case RuleNeedsProfile:
			if len(rule.Values) > 0 && !containsAll(rule.Values, sel.Needs) {
				eval.NeedsEligible = false
			}
		}
	}

	return eval
}

func containsFold(values []string, target string) bool {
	for _, v := range values {
		if strings.EqualFold(v, target) {
			return true
		}
	}
	return false
}

// containsAll reports whether every required need is present in the
// customer's needs profile.
func containsAll(required, supplied []string) bool {
	for _, need := range required {
		if !containsFold(supplied, need) {
			return false
		}
	}
	return true
}
