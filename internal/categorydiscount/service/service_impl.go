package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	catdiscdomain "github.com/smallbiznis/optora/internal/categorydiscount/domain"
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
	Repo  catdiscdomain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  catdiscdomain.Repository
}

func New(p Params) catdiscdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("categorydiscount.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req catdiscdomain.CreateRequest) (*catdiscdomain.CategoryDiscount, error) {
	orgID, err := s.orgIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	if !req.CustomerCategory.Valid() {
		return nil, catdiscdomain.ErrInvalidCategory
	}
	brandCode := strings.ToUpper(strings.TrimSpace(req.BrandCode))
	if brandCode == "" {
		return nil, catdiscdomain.ErrInvalidBrandCode
	}
	if req.DiscountPercent <= 0 || req.DiscountPercent > 100 {
		return nil, catdiscdomain.ErrInvalidPercent
	}
	if req.MaxDiscount != nil && *req.MaxDiscount <= 0 {
		return nil, catdiscdomain.ErrInvalidMaxDiscount
	}

	existing, err := s.repo.FindByKey(ctx, s.db, orgID, req.CustomerCategory, brandCode)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, catdiscdomain.ErrDuplicateDiscount
	}

	now := time.Now().UTC()
	discount := &catdiscdomain.CategoryDiscount{
		ID:                   s.genID.Generate(),
		OrgID:                orgID,
		CustomerCategory:     req.CustomerCategory,
		BrandCode:            brandCode,
		DiscountPercent:      req.DiscountPercent,
		MaxDiscount:          req.MaxDiscount,
		VerificationRequired: req.VerificationRequired,
		IsActive:             true,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	if len(req.AllowedIDTypes) > 0 {
		discount.AllowedIDTypes = datatypes.NewJSONSlice(req.AllowedIDTypes)
	}

	if err := s.repo.Insert(ctx, s.db, discount); err != nil {
		return nil, err
	}
	return discount, nil
}

func (s *Service) List(ctx context.Context) ([]catdiscdomain.CategoryDiscount, error) {
	orgID, err := s.orgIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.List(ctx, s.db, orgID)
}

func (s *Service) Find(ctx context.Context, category catdiscdomain.CustomerCategory, brandCode string) (*catdiscdomain.CategoryDiscount, error) {
	orgID, err := s.orgIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	discount, err := s.repo.FindByKey(ctx, s.db, orgID, category, strings.ToUpper(strings.TrimSpace(brandCode)))
	if err != nil {
		return nil, err
	}
	if discount == nil || !discount.IsActive {
		return nil, catdiscdomain.ErrNotFound
	}
	return discount, nil
}

func (s *Service) Deactivate(ctx context.Context, id string) error {
	orgID, err := s.orgIDFromContext(ctx)
	if err != nil {
		return err
	}

	discountID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return catdiscdomain.ErrInvalidID
	}

	discount, err := s.repo.FindByID(ctx, s.db, orgID, discountID)
	if err != nil {
		return err
	}
	if discount == nil {
		return catdiscdomain.ErrNotFound
	}

	discount.IsActive = false
	discount.UpdatedAt = time.Now().UTC()
	return s.repo.Update(ctx, s.db, discount)
}

func (s *Service) orgIDFromContext(ctx context.Context) (snowflake.ID, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return 0, catdiscdomain.ErrInvalidOrganization
	}
	return orgID, nil
}
