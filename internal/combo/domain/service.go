package domain

import (
	"context"
	"errors"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*ComboTier, error)
	List(ctx context.Context) ([]ComboTier, error)
	GetByCode(ctx context.Context, comboCode string) (*ComboTier, error)
	Deactivate(ctx context.Context, comboCode string) error
}

type CreateRequest struct {
	ComboCode       string           `json:"combo_code"`
	DisplayName     string           `json:"display_name"`
	EffectivePrice  int64            `json:"effective_price"`
	TotalComboValue *int64           `json:"total_combo_value"`
	Badge           string           `json:"badge"`
	SortOrder       int              `json:"sort_order"`
	Benefits        []BenefitRequest `json:"benefits"`
	Rules           []RuleRequest    `json:"rules"`
}

type BenefitRequest struct {
	BenefitType BenefitType    `json:"benefit_type"`
	Label       string         `json:"label"`
	MaxValue    int64          `json:"max_value"`
	Constraints map[string]any `json:"constraints"`
}

type RuleRequest struct {
	RuleType  RuleType `json:"rule_type"`
	Values    []string `json:"values"`
	MinAmount *int64   `json:"min_amount"`
}

var (
	ErrInvalidOrganization   = errors.New("invalid_organization")
	ErrInvalidComboCode      = errors.New("invalid_combo_code")
	ErrInvalidDisplayName    = errors.New("invalid_display_name")
	ErrInvalidEffectivePrice = errors.New("invalid_effective_price")
	ErrInvalidBenefitType    = errors.New("invalid_benefit_type")
	ErrInvalidRuleType       = errors.New("invalid_rule_type")
	ErrDuplicateCombo        = errors.New("duplicate_combo")
	ErrNotFound              = errors.New("not_found")
)
