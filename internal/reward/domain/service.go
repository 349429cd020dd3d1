package domain

import (
	"context"
	"errors"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*RewardThreshold, error)
	List(ctx context.Context) ([]RewardThreshold, error)
	Deactivate(ctx context.Context, id string) error

	// Next returns the lowest active threshold strictly above amount, or
	// nil when the cart already clears every threshold.
	Next(ctx context.Context, amount int64) (*RewardThreshold, error)
}

type CreateRequest struct {
	Threshold int64  `json:"threshold"`
	Label     string `json:"label"`
}

var (
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrInvalidThreshold    = errors.New("invalid_threshold")
	ErrDuplicateThreshold  = errors.New("duplicate_threshold")
	ErrNotFound            = errors.New("not_found")
)
