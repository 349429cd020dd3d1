package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	combodomain "github.com/smallbiznis/optora/internal/combo/domain"
	offerruledomain "github.com/smallbiznis/optora/internal/offerrule/domain"
	"github.com/smallbiznis/optora/internal/orgcontext"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  offerruledomain.Repository
	Combo combodomain.Service
}

type service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  offerruledomain.Repository
	combo combodomain.Service
}

func New(p Params) offerruledomain.Service {
	return &service{
		db:    p.DB,
		log:   p.Log.Named("offerrule.service"),
		genID: p.GenID,
		repo:  p.Repo,
		combo: p.Combo,
	}
}

func (s *service) Create(ctx context.Context, req offerruledomain.CreateRequest) (*offerruledomain.OfferRule, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok {
		return nil, offerruledomain.ErrInvalidOrganization
	}

	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if code == "" {
		return nil, offerruledomain.ErrInvalidCode
	}
	if !req.RuleType.Valid() {
		return nil, offerruledomain.ErrInvalidRuleType
	}

	switch req.RuleType {
	case offerruledomain.RuleFlat:
		if req.Value <= 0 {
			return nil, offerruledomain.ErrInvalidValue
		}
	case offerruledomain.RulePercent:
		if req.Value <= 0 || req.Value > 100 {
			return nil, offerruledomain.ErrInvalidValue
		}
	case offerruledomain.RuleCombo:
		if req.ComboCode == nil || strings.TrimSpace(*req.ComboCode) == "" {
			return nil, offerruledomain.ErrInvalidComboCode
		}
		if _, err := s.combo.GetByCode(ctx, *req.ComboCode); err != nil {
			return nil, offerruledomain.ErrInvalidComboCode
		}
	}

	existing, err := s.repo.FindByCode(ctx, s.db, orgID, code)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, offerruledomain.ErrDuplicateRule
	}

	priority := req.Priority
	if priority <= 0 {
		priority = 100
	}

	rule := &offerruledomain.OfferRule{
		ID:        s.genID.Generate(),
		OrgID:     orgID,
		Code:      code,
		Name:      strings.TrimSpace(req.Name),
		RuleType:  req.RuleType,
		Value:     req.Value,
		ComboCode: req.ComboCode,
		Priority:  priority,
		IsActive:  true,
	}
	if err := s.repo.Insert(ctx, s.db, rule); err != nil {
		return nil, err
	}

	s.log.Info("offer rule created",
		zap.String("code", rule.Code),
		zap.String("rule_type", string(rule.RuleType)),
		zap.Int("priority", rule.Priority),
	)
	return rule, nil
}

func (s *service) List(ctx context.Context) ([]offerruledomain.OfferRule, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok {
		return nil, offerruledomain.ErrInvalidOrganization
	}
	return s.repo.List(ctx, s.db, orgID)
}

func (s *service) GetByCode(ctx context.Context, code string) (*offerruledomain.OfferRule, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok {
		return nil, offerruledomain.ErrInvalidOrganization
	}
	rule, err := s.repo.FindByCode(ctx, s.db, orgID, strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return nil, err
	}
	if rule == nil {
		return nil, offerruledomain.ErrNotFound
	}
	return rule, nil
}

func (s *service) ListActiveForStore(ctx context.Context, storeID string) ([]offerruledomain.OfferRule, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok {
		return nil, offerruledomain.ErrInvalidOrganization
	}

	sid, err := snowflake.ParseString(strings.TrimSpace(storeID))
	if err != nil {
		return nil, offerruledomain.ErrInvalidStore
	}

	rules, err := s.repo.ListActive(ctx, s.db, orgID)
	if err != nil {
		return nil, err
	}

	var maps []offerruledomain.StoreOfferMap
	err = s.db.WithContext(ctx).
		Where("org_id = ? AND store_id = ?", orgID, sid).
		Find(&maps).Error
	if err != nil {
		return nil, err
	}

	disabled := make(map[snowflake.ID]bool, len(maps))
	for _, m := range maps {
		if !m.IsActive {
			disabled[m.OfferRuleID] = true
		}
	}

	out := make([]offerruledomain.OfferRule, 0, len(rules))
	for _, r := range rules {
		if disabled[r.ID] {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (s *service) SetStoreActivation(ctx context.Context, req offerruledomain.StoreActivationRequest) (*offerruledomain.StoreOfferMap, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok {
		return nil, offerruledomain.ErrInvalidOrganization
	}

	sid, err := snowflake.ParseString(strings.TrimSpace(req.StoreID))
	if err != nil {
		return nil, offerruledomain.ErrInvalidStore
	}

	rule, err := s.GetByCode(ctx, req.RuleCode)
	if err != nil {
		return nil, err
	}

	now := s.db.NowFunc()

	var existing offerruledomain.StoreOfferMap
	err = s.db.WithContext(ctx).
		Where("org_id = ? AND store_id = ? AND offer_rule_id = ?", orgID, sid, rule.ID).
		First(&existing).Error
	switch {
	case err == nil:
		existing.IsActive = req.IsActive
		if req.IsActive {
			existing.ActivatedAt = now
			existing.DeactivatedAt = nil
		} else {
			existing.DeactivatedAt = &now
		}
		if err := s.db.WithContext(ctx).Save(&existing).Error; err != nil {
			return nil, err
		}
		return &existing, nil
	case err == gorm.ErrRecordNotFound:
		entry := &offerruledomain.StoreOfferMap{
			ID:          s.genID.Generate(),
			OrgID:       orgID,
			StoreID:     sid,
			OfferRuleID: rule.ID,
			IsActive:    req.IsActive,
			ActivatedAt: now,
		}
		if !req.IsActive {
			entry.DeactivatedAt = &now
		}
		if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
			return nil, err
		}
		return entry, nil
	default:
		return nil, err
	}
}

func (s *service) ListStoreActivations(ctx context.Context, storeID string) ([]offerruledomain.StoreOfferMap, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok {
		return nil, offerruledomain.ErrInvalidOrganization
	}
	sid, err := snowflake.ParseString(strings.TrimSpace(storeID))
	if err != nil {
		return nil, offerruledomain.ErrInvalidStore
	}
	var maps []offerruledomain.StoreOfferMap
	err = s.db.WithContext(ctx).
		Where("org_id = ? AND store_id = ?", orgID, sid).
		Order("id ASC").
		Find(&maps).Error
	if err != nil {
		return nil, err
	}
	return maps, nil
}
