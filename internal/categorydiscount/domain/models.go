// Package domain contains customer-category discount configuration.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// CustomerCategory identifies the discountable customer classes.
type CustomerCategory string

const (
	CategoryStudent       CustomerCategory = "STUDENT"
	CategoryDoctor        CustomerCategory = "DOCTOR"
	CategoryTeacher       CustomerCategory = "TEACHER"
	CategoryArmedForces   CustomerCategory = "ARMED_FORCES"
	CategorySeniorCitizen CustomerCategory = "SENIOR_CITIZEN"
	CategoryCorporate     CustomerCategory = "CORPORATE"
	CategoryRegular       CustomerCategory = "REGULAR"
)

// Valid reports whether the category is a known value.
func (c CustomerCategory) Valid() bool {
	switch c {
	case CategoryStudent, CategoryDoctor, CategoryTeacher, CategoryArmedForces,
		CategorySeniorCitizen, CategoryCorporate, CategoryRegular:
		return true
	default:
		return false
	}
}

// CategoryDiscount is unique per (org, customer category, brand code).
type CategoryDiscount struct {
	ID                   snowflake.ID                `json:"id" gorm:"primaryKey"`
	OrgID                snowflake.ID                `json:"organization_id" gorm:"column:org_id;not null;uniqueIndex:idx_catdisc_key"`
	CustomerCategory     CustomerCategory            `json:"customer_category" gorm:"type:text;not null;uniqueIndex:idx_catdisc_key"`
	BrandCode            string                      `json:"brand_code" gorm:"type:text;not null;uniqueIndex:idx_catdisc_key"`
	DiscountPercent      float64                     `json:"discount_percent" gorm:"type:numeric;not null"`
	MaxDiscount          *int64                      `json:"max_discount,omitempty"`
	VerificationRequired bool                        `json:"verification_required" gorm:"not null;default:false"`
	AllowedIDTypes       datatypes.JSONSlice[string] `json:"allowed_id_types,omitempty" gorm:"type:jsonb"`
	IsActive             bool                        `json:"is_active" gorm:"not null;default:true"`
	CreatedAt            time.Time                   `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt            time.Time                   `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (CategoryDiscount) TableName() string { return "category_discounts" }

// AllowsIDType reports whether the supplied proof type satisfies the
// verification policy.
func (d CategoryDiscount) AllowsIDType(idType string) bool {
	if len(d.AllowedIDTypes) == 0 {
		return true
	}
	for _, allowed := range d.AllowedIDTypes {
		if allowed == idType {
			return true
		}
	}
	return false
}
