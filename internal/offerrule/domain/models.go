// Package domain contains primary offer rules and their per-store activation.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type RuleType string

const (
	RuleCombo   RuleType = "COMBO"
	RuleYopo    RuleType = "YOPO"
	RuleFlat    RuleType = "FLAT"
	RulePercent RuleType = "PERCENT"
)

func (t RuleType) Valid() bool {
	switch t {
	case RuleCombo, RuleYopo, RuleFlat, RulePercent:
		return true
	default:
		return false
	}
}

// OfferRule is a candidate primary offer. Lower priority wins; ties break on
// lexical code order so resolution stays deterministic.
type OfferRule struct {
	ID        snowflake.ID `json:"id" gorm:"primaryKey"`
	OrgID     snowflake.ID `json:"organization_id" gorm:"column:org_id;not null;uniqueIndex:idx_offerrule_org_code"`
	Code      string       `json:"code" gorm:"type:text;not null;uniqueIndex:idx_offerrule_org_code"`
	Name      string       `json:"name" gorm:"type:text;not null"`
	RuleType  RuleType     `json:"rule_type" gorm:"type:text;not null"`
	Value     int64        `json:"value" gorm:"not null;default:0"`
	ComboCode *string      `json:"combo_code,omitempty" gorm:"type:text"`
	Priority  int          `json:"priority" gorm:"not null;default:100"`
	IsActive  bool         `json:"is_active" gorm:"not null;default:true"`
	CreatedAt time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time    `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (OfferRule) TableName() string { return "offer_rules" }

// StoreOfferMap gates an org-level rule per store. No row means the rule is
// usable at the store; an inactive row disables it.
type StoreOfferMap struct {
	ID            snowflake.ID `json:"id" gorm:"primaryKey"`
	OrgID         snowflake.ID `json:"organization_id" gorm:"column:org_id;not null;index"`
	StoreID       snowflake.ID `json:"store_id" gorm:"not null;uniqueIndex:idx_storeoffer_store_rule"`
	OfferRuleID   snowflake.ID `json:"offer_rule_id" gorm:"not null;uniqueIndex:idx_storeoffer_store_rule"`
	IsActive      bool         `json:"is_active" gorm:"not null;default:true"`
	ActivatedAt   time.Time    `json:"activated_at" gorm:"not null"`
	DeactivatedAt *time.Time   `json:"deactivated_at,omitempty"`
}

func (StoreOfferMap) TableName() string { return "store_offer_map" }
