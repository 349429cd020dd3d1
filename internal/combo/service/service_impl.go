package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	combodomain "github.com/smallbiznis/optora/internal/combo/domain"
	"github.com/smallbiznis/optora/internal/orgcontext"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  combodomain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  combodomain.Repository
}

func New(p Params) combodomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("combo.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req combodomain.CreateRequest) (*combodomain.ComboTier, error) {
	orgID, err := s.orgIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	comboCode := strings.ToUpper(strings.TrimSpace(req.ComboCode))
	if comboCode == "" {
		return nil, combodomain.ErrInvalidComboCode
	}
	if strings.TrimSpace(req.DisplayName) == "" {
		return nil, combodomain.ErrInvalidDisplayName
	}
	if req.EffectivePrice <= 0 {
		return nil, combodomain.ErrInvalidEffectivePrice
	}
	for _, benefit := range req.Benefits {
		if !benefit.BenefitType.Valid() {
			return nil, combodomain.ErrInvalidBenefitType
		}
	}
	for _, rule := range req.Rules {
		if !rule.RuleType.Valid() {
			return nil, combodomain.ErrInvalidRuleType
		}
	}

	existing, err := s.repo.FindByCode(ctx, s.db, orgID, comboCode)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, combodomain.ErrDuplicateCombo
	}

	now := time.Now().UTC()
	tier := &combodomain.ComboTier{
		ID:              s.genID.Generate(),
		OrgID:           orgID,
		ComboCode:       comboCode,
		DisplayName:     strings.TrimSpace(req.DisplayName),
		EffectivePrice:  req.EffectivePrice,
		TotalComboValue: req.TotalComboValue,
		Badge:           strings.TrimSpace(req.Badge),
		SortOrder:       req.SortOrder,
		IsActive:        true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	for _, benefit := range req.Benefits {
		entity := combodomain.ComboBenefit{
			ID:          s.genID.Generate(),
			TierID:      tier.ID,
			BenefitType: benefit.BenefitType,
			Label:       strings.TrimSpace(benefit.Label),
			MaxValue:    benefit.MaxValue,
			CreatedAt:   now,
		}
		if benefit.Constraints != nil {
			entity.Constraints = datatypes.JSONMap(benefit.Constraints)
		}
		tier.Benefits = append(tier.Benefits, entity)
	}

	for _, rule := range req.Rules {
		entity := combodomain.ComboRule{
			ID:        s.genID.Generate(),
			TierID:    tier.ID,
			RuleType:  rule.RuleType,
			MinAmount: rule.MinAmount,
			CreatedAt: now,
		}
		if len(rule.Values) > 0 {
			entity.Values = datatypes.NewJSONSlice(rule.Values)
		}
		tier.Rules = append(tier.Rules, entity)
	}

	if err := s.repo.Insert(ctx, s.db, tier); err != nil {
		return nil, err
	}
	return tier, nil
}

func (s *Service) List(ctx context.Context) ([]combodomain.ComboTier, error) {
	orgID, err := s.orgIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.List(ctx, s.db, orgID)
}

func (s *Service) GetByCode(ctx context.Context, comboCode string) (*combodomain.ComboTier, error) {
	orgID, err := s.orgIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	tier, err := s.repo.FindByCode(ctx, s.db, orgID, strings.ToUpper(strings.TrimSpace(comboCode)))
	if err != nil {
		return nil, err
	}
	if tier == nil {
		return nil, combodomain.ErrNotFound
	}
	return tier, nil
}

func (s *Service) Deactivate(ctx context.Context, comboCode string) error {
	orgID, err := s.orgIDFromContext(ctx)
	if err != nil {
		return err
	}

	tier, err := s.repo.FindByCode(ctx, s.db, orgID, strings.ToUpper(strings.TrimSpace(comboCode)))
	if err != nil {
		return err
	}
	if tier == nil {
		return combodomain.ErrNotFound
	}

	tier.IsActive = false
	tier.UpdatedAt = time.Now().UTC()
	return s.repo.Update(ctx, s.db, tier)
}

func (s *Service) orgIDFromContext(ctx context.Context) (snowflake.ID, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return 0, combodomain.ErrInvalidOrganization
	}
	return orgID, nil
}
