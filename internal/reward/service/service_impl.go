package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/optora/internal/orgcontext"
	rewarddomain "github.com/smallbiznis/optora/internal/reward/domain"
	"github.com/smallbiznis/optora/pkg/db/option"
	dbrepo "github.com/smallbiznis/optora/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
}

type service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	store dbrepo.Repository[rewarddomain.RewardThreshold]
}

func New(p Params) rewarddomain.Service {
	return &service{
		db:    p.DB,
		log:   p.Log.Named("reward.service"),
		genID: p.GenID,
		store: dbrepo.ProvideStore[rewarddomain.RewardThreshold](p.DB),
	}
}

func (s *service) Create(ctx context.Context, req rewarddomain.CreateRequest) (*rewarddomain.RewardThreshold, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok {
		return nil, rewarddomain.ErrInvalidOrganization
	}
	if req.Threshold <= 0 {
		return nil, rewarddomain.ErrInvalidThreshold
	}

	existing, err := s.store.FindOne(ctx, &rewarddomain.RewardThreshold{OrgID: orgID, Threshold: req.Threshold})
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, rewarddomain.ErrDuplicateThreshold
	}

	threshold := &rewarddomain.RewardThreshold{
		ID:        s.genID.Generate(),
		OrgID:     orgID,
		Threshold: req.Threshold,
		Label:     strings.TrimSpace(req.Label),
		IsActive:  true,
	}
	if err := s.store.Create(ctx, threshold); err != nil {
		return nil, err
	}

	s.log.Info("reward threshold created", zap.Int64("threshold", threshold.Threshold))
	return threshold, nil
}

func (s *service) List(ctx context.Context) ([]rewarddomain.RewardThreshold, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok {
		return nil, rewarddomain.ErrInvalidOrganization
	}
	items, err := s.store.Find(ctx, &rewarddomain.RewardThreshold{OrgID: orgID}, option.WithOrderBy("threshold ASC"))
	if err != nil {
		return nil, err
	}
	out := make([]rewarddomain.RewardThreshold, 0, len(items))
	for _, item := range items {
		out = append(out, *item)
	}
	return out, nil
}

func (s *service) Deactivate(ctx context.Context, id string) error {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok {
		return rewarddomain.ErrInvalidOrganization
	}

	tid, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return rewarddomain.ErrNotFound
	}
	existing, err := s.store.FindOne(ctx, &rewarddomain.RewardThreshold{ID: tid, OrgID: orgID})
	if err != nil {
		return err
	}
	if existing == nil {
		return rewarddomain.ErrNotFound
	}
	return s.store.Update(ctx, tid.String(), map[string]any{"is_active": false})
}

func (s *service) Next(ctx context.Context, amount int64) (*rewarddomain.RewardThreshold, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok {
		return nil, rewarddomain.ErrInvalidOrganization
	}

	var next rewarddomain.RewardThreshold
	err := s.db.WithContext(ctx).
		Where("org_id = ? AND is_active = ? AND threshold > ?", orgID, true, amount).
		Order("threshold ASC").
		First(&next).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &next, nil
}
