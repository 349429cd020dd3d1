// Package domain contains fixed-price combo bundle configuration.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

type BenefitType string

const (
	BenefitFrame   BenefitType = "frame"
	BenefitLens    BenefitType = "lens"
	BenefitEyewear BenefitType = "eyewear"
	BenefitAddOn   BenefitType = "addon"
	BenefitVoucher BenefitType = "voucher"
)

func (t BenefitType) Valid() bool {
	switch t {
	case BenefitFrame, BenefitLens, BenefitEyewear, BenefitAddOn, BenefitVoucher:
		return true
	default:
		return false
	}
}

type RuleType string

const (
	RuleAllowedBrands    RuleType = "ALLOWED_BRANDS"
	RuleAllowedLensLines RuleType = "ALLOWED_LENS_LINES"
	RuleMinFrameMRP      RuleType = "MIN_FRAME_MRP"
	RuleNeedsProfile     RuleType = "NEEDS_PROFILE"
)

func (t RuleType) Valid() bool {
	switch t {
	case RuleAllowedBrands, RuleAllowedLensLines, RuleMinFrameMRP, RuleNeedsProfile:
		return true
	default:
		return false
	}
}

// ComboTier is a fixed-price bundle competing with itemized pricing. The
// combo code is immutable once created.
type ComboTier struct {
	ID              snowflake.ID   `json:"id" gorm:"primaryKey"`
	OrgID           snowflake.ID   `json:"organization_id" gorm:"column:org_id;not null;uniqueIndex:idx_combo_org_code"`
	ComboCode       string         `json:"combo_code" gorm:"type:text;not null;uniqueIndex:idx_combo_org_code"`
	DisplayName     string         `json:"display_name" gorm:"type:text;not null"`
	EffectivePrice  int64          `json:"effective_price" gorm:"not null"`
	TotalComboValue *int64         `json:"total_combo_value,omitempty"`
	Badge           string         `json:"badge" gorm:"type:text"`
	SortOrder       int            `json:"sort_order" gorm:"not null;default:0"`
	IsActive        bool           `json:"is_active" gorm:"not null;default:true"`
	Benefits        []ComboBenefit `json:"benefits" gorm:"foreignKey:TierID"`
	Rules           []ComboRule    `json:"rules" gorm:"foreignKey:TierID"`
	CreatedAt       time.Time      `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt       time.Time      `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (ComboTier) TableName() string { return "combo_tiers" }

// ComboBenefit is a non-price-reducing addendum attached when a tier wins.
// Voucher benefits are deferred credits, never cart reductions.
type ComboBenefit struct {
	ID          snowflake.ID      `json:"id" gorm:"primaryKey"`
	TierID      snowflake.ID      `json:"tier_id" gorm:"not null;index"`
	BenefitType BenefitType       `json:"benefit_type" gorm:"type:text;not null"`
	Label       string            `json:"label" gorm:"type:text;not null"`
	MaxValue    int64             `json:"max_value" gorm:"not null;default:0"`
	Constraints datatypes.JSONMap `json:"constraints,omitempty" gorm:"type:jsonb"`
	CreatedAt   time.Time         `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (ComboBenefit) TableName() string { return "combo_benefits" }

// ComboRule is a ruleType-keyed eligibility predicate.
type ComboRule struct {
	ID        snowflake.ID                `json:"id" gorm:"primaryKey"`
	TierID    snowflake.ID                `json:"tier_id" gorm:"not null;index"`
	RuleType  RuleType                    `json:"rule_type" gorm:"type:text;not null"`
	Values    datatypes.JSONSlice[string] `json:"values,omitempty" gorm:"type:jsonb"`
	MinAmount *int64                      `json:"min_amount,omitempty"`
	CreatedAt time.Time                   `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (ComboRule) TableName() string { return "combo_rules" }
