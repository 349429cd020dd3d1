// Package domain contains the persisted catalog entities: brands, lens SKUs
// and the power-based surcharge tables.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

type Brand struct {
	ID           snowflake.ID                 `json:"id" gorm:"primaryKey"`
	OrgID        snowflake.ID                 `json:"organization_id" gorm:"column:org_id;not null;index"`
	Code         string                       `json:"code" gorm:"type:text;not null;uniqueIndex:idx_brand_org_code"`
	Name         string                       `json:"name" gorm:"type:text;not null"`
	SubBrands    datatypes.JSONSlice[string]  `json:"sub_brands,omitempty" gorm:"type:jsonb"`
	FrameType    *string                      `json:"frame_type,omitempty" gorm:"type:text"`
	ComboAllowed bool                         `json:"combo_allowed" gorm:"not null;default:false"`
	IsActive     bool                         `json:"is_active" gorm:"not null;default:true"`
	CreatedAt    time.Time                    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt    time.Time                    `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Brand) TableName() string { return "brands" }

type LensSKU struct {
	ID           snowflake.ID                `json:"id" gorm:"primaryKey"`
	OrgID        snowflake.ID                `json:"organization_id" gorm:"column:org_id;not null;index"`
	ItCode       string                      `json:"it_code" gorm:"type:text;not null;uniqueIndex:idx_lens_org_itcode"`
	BrandLine    string                      `json:"brand_line" gorm:"type:text;not null"`
	BasePrice    int64                       `json:"base_price" gorm:"not null"`
	YopoEligible bool                        `json:"yopo_eligible" gorm:"not null;default:false"`
	ComboAllowed bool                        `json:"combo_allowed" gorm:"not null;default:false"`
	AxisSteps    datatypes.JSONSlice[int64]  `json:"axis_steps,omitempty" gorm:"type:jsonb"`
	ColorOptions datatypes.JSONSlice[string] `json:"color_options,omitempty" gorm:"type:jsonb"`
	IsActive     bool                        `json:"is_active" gorm:"not null;default:true"`
	CreatedAt    time.Time                   `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt    time.Time                   `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (LensSKU) TableName() string { return "lens_skus" }

// LensBandPricing surcharges a lens when the prescription sphere falls inside
// the half-open interval [MinPower, MaxPower). Active bands for a lens must
// never overlap.
type LensBandPricing struct {
	ID          snowflake.ID `json:"id" gorm:"primaryKey"`
	OrgID       snowflake.ID `json:"organization_id" gorm:"column:org_id;not null;index"`
	LensID      snowflake.ID `json:"lens_id" gorm:"not null;index"`
	MinPower    float64      `json:"min_power" gorm:"type:numeric;not null"`
	MaxPower    float64      `json:"max_power" gorm:"type:numeric;not null"`
	ExtraCharge int64        `json:"extra_charge" gorm:"not null"`
	IsActive    bool         `json:"is_active" gorm:"not null;default:true"`
	CreatedAt   time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt   time.Time    `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (LensBandPricing) TableName() string { return "lens_band_pricing" }

// LensPowerAddOnPricing surcharges a lens per matching Rx add-on row. All
// populated ranges are closed intervals; cylinder is compared by magnitude.
// Unlike band pricing, every matching row contributes its charge.
type LensPowerAddOnPricing struct {
	ID          snowflake.ID `json:"id" gorm:"primaryKey"`
	OrgID       snowflake.ID `json:"organization_id" gorm:"column:org_id;not null;index"`
	LensID      snowflake.ID `json:"lens_id" gorm:"not null;index"`
	SphMin      *float64     `json:"sph_min,omitempty" gorm:"type:numeric"`
	SphMax      *float64     `json:"sph_max,omitempty" gorm:"type:numeric"`
	CylMin      *float64     `json:"cyl_min,omitempty" gorm:"type:numeric"`
	CylMax      *float64     `json:"cyl_max,omitempty" gorm:"type:numeric"`
	AddMin      *float64     `json:"add_min,omitempty" gorm:"type:numeric"`
	AddMax      *float64     `json:"add_max,omitempty" gorm:"type:numeric"`
	ExtraCharge int64        `json:"extra_charge" gorm:"not null"`
	IsActive    bool         `json:"is_active" gorm:"not null;default:true"`
	CreatedAt   time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt   time.Time    `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (LensPowerAddOnPricing) TableName() string { return "lens_power_addon_pricing" }
