package domain

import (
	"context"
	"errors"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*OfferRule, error)
	List(ctx context.Context) ([]OfferRule, error)
	GetByCode(ctx context.Context, code string) (*OfferRule, error)

	// ListActiveForStore returns org-active rules not disabled for the
	// store, sorted by (priority, code).
	ListActiveForStore(ctx context.Context, storeID string) ([]OfferRule, error)

	SetStoreActivation(ctx context.Context, req StoreActivationRequest) (*StoreOfferMap, error)
	ListStoreActivations(ctx context.Context, storeID string) ([]StoreOfferMap, error)
}

type CreateRequest struct {
	Code      string   `json:"code"`
	Name      string   `json:"name"`
	RuleType  RuleType `json:"rule_type"`
	Value     int64    `json:"value"`
	ComboCode *string  `json:"combo_code"`
	Priority  int      `json:"priority"`
}

type StoreActivationRequest struct {
	StoreID   string `json:"store_id"`
	RuleCode  string `json:"rule_code"`
	IsActive  bool   `json:"is_active"`
}

var (
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrInvalidCode         = errors.New("invalid_code")
	ErrInvalidRuleType     = errors.New("invalid_rule_type")
	ErrInvalidValue        = errors.New("invalid_value")
	ErrInvalidComboCode    = errors.New("invalid_combo_code")
	ErrInvalidStore        = errors.New("invalid_store")
	ErrDuplicateRule       = errors.New("duplicate_rule")
	ErrNotFound            = errors.New("not_found")
)
