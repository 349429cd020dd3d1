// Package seed loads a small demo dataset so a fresh install can price
// carts immediately. Every insert is idempotent on the natural key.
package seed

import (
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/smallbiznis/optora/internal/catalog/domain"
	catdiscdomain "github.com/smallbiznis/optora/internal/categorydiscount/domain"
	combodomain "github.com/smallbiznis/optora/internal/combo/domain"
	coupondomain "github.com/smallbiznis/optora/internal/coupon/domain"
	offerruledomain "github.com/smallbiznis/optora/internal/offerrule/domain"
	rewarddomain "github.com/smallbiznis/optora/internal/reward/domain"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// EnsureDemoData populates the catalog and rule tables for one organization.
func EnsureDemoData(db *gorm.DB, orgID int64) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}
	if orgID == 0 {
		orgID = 1
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}
	org := snowflake.ParseInt64(orgID)

	return db.Transaction(func(tx *gorm.DB) error {
		if err := seedCatalog(tx, node, org); err != nil {
			return err
		}
		if err := seedRules(tx, node, org); err != nil {
			return err
		}
		return seedRewards(tx, node, org)
	})
}

func seedCatalog(tx *gorm.DB, node *snowflake.Node, org snowflake.ID) error {
	brands := []catalogdomain.Brand{
		{
			ID: node.Generate(), OrgID: org, Code: "VINCENT", Name: "Vincent Chase",
			SubBrands:    datatypes.NewJSONSlice([]string{"VC-CLASSIC", "VC-SLEEK"}),
			ComboAllowed: true, IsActive: true,
		},
		{
			ID: node.Generate(), OrgID: org, Code: "JOHNJACOBS", Name: "John Jacobs",
			ComboAllowed: false, IsActive: true,
		},
	}
	for i := range brands {
		err := tx.Where("org_id = ? AND code = ?", org, brands[i].Code).
			FirstOrCreate(&brands[i]).Error
		if err != nil {
			return err
		}
	}

	lenses := []catalogdomain.LensSKU{
		{
			ID: node.Generate(), OrgID: org, ItCode: "LN-BLU-156", BrandLine: "BLU",
			BasePrice: 2000, YopoEligible: true, ComboAllowed: true,
			AxisSteps: datatypes.NewJSONSlice([]int64{10, 20, 90, 180}),
			IsActive:  true,
		},
		{
			ID: node.Generate(), OrgID: org, ItCode: "LN-AIR-160", BrandLine: "AIR",
			BasePrice: 3500, YopoEligible: false, ComboAllowed: false,
			IsActive: true,
		},
	}
	for i := range lenses {
		err := tx.Where("org_id = ? AND it_code = ?", org, lenses[i].ItCode).
			FirstOrCreate(&lenses[i]).Error
		if err != nil {
			return err
		}
	}

	bands := []catalogdomain.LensBandPricing{
		{ID: node.Generate(), OrgID: org, LensID: lenses[0].ID, MinPower: -6, MaxPower: -2, ExtraCharge: 200, IsActive: true},
		{ID: node.Generate(), OrgID: org, LensID: lenses[0].ID, MinPower: -2, MaxPower: 2, ExtraCharge: 0, IsActive: true},
	}
	for i := range bands {
		err := tx.Where("org_id = ? AND lens_id = ? AND min_power = ?", org, bands[i].LensID, bands[i].MinPower).
			FirstOrCreate(&bands[i]).Error
		if err != nil {
			return err
		}
	}

	cylMin, cylMax := 2.0, 6.0
	addOn := catalogdomain.LensPowerAddOnPricing{
		ID: node.Generate(), OrgID: org, LensID: lenses[0].ID,
		CylMin: &cylMin, CylMax: &cylMax, ExtraCharge: 150, IsActive: true,
	}
	return tx.Where("org_id = ? AND lens_id = ? AND cyl_min = ?", org, addOn.LensID, cylMin).
		FirstOrCreate(&addOn).Error
}

func seedRules(tx *gorm.DB, node *snowflake.Node, org snowflake.ID) error {
	maxDiscount := int64(300)
	discount := catdiscdomain.CategoryDiscount{
		ID: node.Generate(), OrgID: org,
		CustomerCategory: catdiscdomain.CategoryStudent, BrandCode: "*",
		DiscountPercent: 10, MaxDiscount: &maxDiscount, IsActive: true,
	}
	err := tx.Where("org_id = ? AND customer_category = ? AND brand_code = ?", org, discount.CustomerCategory, discount.BrandCode).
		FirstOrCreate(&discount).Error
	if err != nil {
		return err
	}

	coupon := coupondomain.Coupon{
		ID: node.Generate(), OrgID: org, Code: "FLAT50OFF",
		DiscountType: coupondomain.DiscountFlatAmount, DiscountValue: 50,
		ValidFrom: time.Now().UTC().AddDate(0, -1, 0), IsActive: true,
	}
	err = tx.Where("org_id = ? AND code = ?", org, coupon.Code).
		FirstOrCreate(&coupon).Error
	if err != nil {
		return err
	}

	minFrame := int64(1500)
	tiers := []combodomain.ComboTier{
		{
			ID: node.Generate(), OrgID: org, ComboCode: "BRONZE", DisplayName: "Bronze",
			EffectivePrice: 3500, SortOrder: 1, IsActive: true,
			Rules: []combodomain.ComboRule{
				{ID: node.Generate(), RuleType: combodomain.RuleAllowedBrands, Values: datatypes.NewJSONSlice([]string{"JOHNJACOBS"})},
			},
		},
		{
			ID: node.Generate(), OrgID: org, ComboCode: "SILVER", DisplayName: "Silver",
			EffectivePrice: 4500, SortOrder: 2, IsActive: true,
			Benefits: []combodomain.ComboBenefit{
				{ID: node.Generate(), BenefitType: combodomain.BenefitAddOn, Label: "Anti-fog spray", MaxValue: 350},
				{ID: node.Generate(), BenefitType: combodomain.BenefitVoucher, Label: "500 off next visit", MaxValue: 500},
			},
			Rules: []combodomain.ComboRule{
				{ID: node.Generate(), RuleType: combodomain.RuleAllowedBrands, Values: datatypes.NewJSONSlice([]string{"VINCENT", "JOHNJACOBS"})},
				{ID: node.Generate(), RuleType: combodomain.RuleMinFrameMRP, MinAmount: &minFrame},
			},
		},
	}
	comboCode := "SILVER"
	for i := range tiers {
		err := tx.Where("org_id = ? AND combo_code = ?", org, tiers[i].ComboCode).
			FirstOrCreate(&tiers[i]).Error
		if err != nil {
			return err
		}
	}

	rules := []offerruledomain.OfferRule{
		{
			ID: node.Generate(), OrgID: org, Code: "SILVER-COMBO", Name: "Silver combo bundle",
			RuleType: offerruledomain.RuleCombo, ComboCode: &comboCode, Priority: 10, IsActive: true,
		},
		{
			ID: node.Generate(), OrgID: org, Code: "YOPO", Name: "Second pair, pay the higher price",
			RuleType: offerruledomain.RuleYopo, Priority: 20, IsActive: true,
		},
		{
			ID: node.Generate(), OrgID: org, Code: "FESTIVE5", Name: "Festive 5% off",
			RuleType: offerruledomain.RulePercent, Value: 5, Priority: 50, IsActive: true,
		},
	}
	for i := range rules {
		err := tx.Where("org_id = ? AND code = ?", org, rules[i].Code).
			FirstOrCreate(&rules[i]).Error
		if err != nil {
			return err
		}
	}
	return nil
}

func seedRewards(tx *gorm.DB, node *snowflake.Node, org snowflake.ID) error {
	thresholds := []rewarddomain.RewardThreshold{
		{ID: node.Generate(), OrgID: org, Threshold: 5000, Label: "Free lens cleaning kit", IsActive: true},
		{ID: node.Generate(), OrgID: org, Threshold: 8000, Label: "Gold membership", IsActive: true},
	}
	for i := range thresholds {
		err := tx.Where("org_id = ? AND threshold = ?", org, thresholds[i].Threshold).
			FirstOrCreate(&thresholds[i]).Error
		if err != nil {
			return err
		}
	}
	return nil
}
