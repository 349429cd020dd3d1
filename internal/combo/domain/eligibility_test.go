package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func tierWithRules(rules ...ComboRule) ComboTier {
	return ComboTier{ComboCode: "SILVER", Rules: rules}
}

func TestEvaluate_NoRulesAcceptsEverything(t *testing.T) {
	eval := tierWithRules().Evaluate(Selection{BrandCode: "ANY", LensLine: "ANY"})
	require.True(t, eval.Eligible())
}

func TestEvaluate_AllowedBrands(t *testing.T) {
	tier := tierWithRules(ComboRule{
		RuleType: RuleAllowedBrands,
		Values:   datatypes.NewJSONSlice([]string{"VINCENT"}),
	})

	require.True(t, tier.Evaluate(Selection{BrandCode: "vincent"}).BrandEligible)

	eval := tier.Evaluate(Selection{BrandCode: "JOHNJACOBS"})
	require.False(t, eval.BrandEligible)
	require.False(t, eval.Eligible())
	require.True(t, eval.LensEligible)
}

func TestEvaluate_AllowedLensLines(t *testing.T) {
	tier := tierWithRules(ComboRule{
		RuleType: RuleAllowedLensLines,
		Values:   datatypes.NewJSONSlice([]string{"BLU", "AIR"}),
	})

	require.True(t, tier.Evaluate(Selection{LensLine: "blu"}).LensEligible)
	require.False(t, tier.Evaluate(Selection{LensLine: "HD"}).LensEligible)
}

func TestEvaluate_MinFrameMRP(t *testing.T) {
	min := int64(1500)
	tier := tierWithRules(ComboRule{RuleType: RuleMinFrameMRP, MinAmount: &min})

	require.True(t, tier.Evaluate(Selection{FrameMRP: 1500}).FrameEligible)
	require.False(t, tier.Evaluate(Selection{FrameMRP: 1499}).FrameEligible)
}

func TestEvaluate_NeedsProfile(t *testing.T) {
	tier := tierWithRules(ComboRule{
		RuleType: RuleNeedsProfile,
		Values:   datatypes.NewJSONSlice([]string{"screen_heavy", "driving"}),
	})

	require.True(t, tier.Evaluate(Selection{Needs: []string{"driving", "screen_heavy", "reading"}}).NeedsEligible)
	require.False(t, tier.Evaluate(Selection{Needs: []string{"driving"}}).NeedsEligible)
	require.False(t, tier.Evaluate(Selection{}).NeedsEligible)
}

func TestEvaluate_MultipleRulesReportPerDimension(t *testing.T) {
	min := int64(2000)
	tier := tierWithRules(
		ComboRule{RuleType: RuleAllowedBrands, Values: datatypes.NewJSONSlice([]string{"VINCENT"})},
		ComboRule{RuleType: RuleAllowedLensLines, Values: datatypes.NewJSONSlice([]string{"BLU"})},
		ComboRule{RuleType: RuleMinFrameMRP, MinAmount: &min},
	)

	eval := tier.Evaluate(Selection{BrandCode: "OTHER", LensLine: "BLU", FrameMRP: 2500})
	require.False(t, eval.BrandEligible)
	require.True(t, eval.LensEligible)
	require.True(t, eval.FrameEligible)
	require.False(t, eval.Eligible())
}
