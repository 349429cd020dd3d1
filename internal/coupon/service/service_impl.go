package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	coupondomain "github.com/smallbiznis/optora/internal/coupon/domain"
	"github.com/smallbiznis/optora/internal/lock"
	"github.com/smallbiznis/optora/internal/orgcontext"
	"github.com/smallbiznis/optora/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	redeemLockTTL      = 5 * time.Second
	redeemLockAttempts = 3
	redeemLockBackoff  = 50 * time.Millisecond
)

type Params struct {
	fx.In

	DB     *gorm.DB
	Log    *zap.Logger
	GenID  *snowflake.Node
	Repo   coupondomain.Repository
	Locker *lock.Locker `optional:"true"`
}

type Service struct {
	db     *gorm.DB
	log    *zap.Logger
	genID  *snowflake.Node
	repo   coupondomain.Repository
	locker *lock.Locker
}

func New(p Params) coupondomain.Service {
	return &Service{
		db:     p.DB,
		log:    p.Log.Named("coupon.service"),
		genID:  p.GenID,
		repo:   p.Repo,
		locker: p.Locker,
	}
}

func (s *Service) Create(ctx context.Context, req coupondomain.CreateRequest) (*coupondomain.Coupon, error) {
	orgID, err := s.orgIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if code == "" {
		return nil, coupondomain.ErrInvalidCode
	}
	if !req.DiscountType.Valid() {
		return nil, coupondomain.ErrInvalidDiscountType
	}
	if req.DiscountValue <= 0 {
		return nil, coupondomain.ErrInvalidDiscountValue
	}
	if req.DiscountType == coupondomain.DiscountPercentage && req.DiscountValue > 100 {
		return nil, coupondomain.ErrInvalidDiscountValue
	}
	if req.ValidFrom.IsZero() {
		return nil, coupondomain.ErrInvalidWindow
	}
	if req.ValidUntil != nil && !req.ValidUntil.After(req.ValidFrom) {
		return nil, coupondomain.ErrInvalidWindow
	}
	if req.UsageLimit != nil && *req.UsageLimit <= 0 {
		return nil, coupondomain.ErrInvalidUsageLimit
	}

	existing, err := s.repo.FindByCode(ctx, s.db, orgID, code)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, coupondomain.ErrDuplicateCoupon
	}

	now := time.Now().UTC()
	coupon := &coupondomain.Coupon{
		ID:            s.genID.Generate(),
		OrgID:         orgID,
		Code:          code,
		DiscountType:  req.DiscountType,
		DiscountValue: req.DiscountValue,
		MinCartValue:  req.MinCartValue,
		MaxDiscount:   req.MaxDiscount,
		UsageLimit:    req.UsageLimit,
		ValidFrom:     req.ValidFrom.UTC(),
		ValidUntil:    req.ValidUntil,
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.Insert(ctx, s.db, coupon); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, coupondomain.ErrDuplicateCoupon
		}
		return nil, err
	}
	return coupon, nil
}

func (s *Service) List(ctx context.Context) ([]coupondomain.Coupon, error) {
	orgID, err := s.orgIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.List(ctx, s.db, orgID)
}

func (s *Service) GetByCode(ctx context.Context, code string) (*coupondomain.Coupon, error) {
	orgID, err := s.orgIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	coupon, err := s.repo.FindByCode(ctx, s.db, orgID, strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return nil, err
	}
	if coupon == nil {
		return nil, coupondomain.ErrNotFound
	}
	return coupon, nil
}

func (s *Service) Validate(ctx context.Context, code string, cartValue int64, now time.Time) (*coupondomain.Coupon, string, error) {
	orgID, err := s.orgIDFromContext(ctx)
	if err != nil {
		return nil, "", err
	}

	coupon, err := s.repo.FindByCode(ctx, s.db, orgID, strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return nil, "", err
	}
	if coupon == nil {
		return nil, coupondomain.ReasonNotFound, nil
	}
	if !coupon.IsActive {
		return nil, coupondomain.ReasonInactive, nil
	}
	if now.Before(coupon.ValidFrom) {
		return nil, coupondomain.ReasonNotStarted, nil
	}
	if coupon.ValidUntil != nil && now.After(*coupon.ValidUntil) {
		return nil, coupondomain.ReasonExpired, nil
	}
	if coupon.UsageLimit != nil && coupon.UsedCount >= *coupon.UsageLimit {
		return nil, coupondomain.ReasonUsageLimitHit, nil
	}
	if coupon.MinCartValue != nil && cartValue < *coupon.MinCartValue {
		return nil, coupondomain.ReasonMinCartNotMet, nil
	}
	return coupon, "", nil
}

// Redeem serializes the increment-and-check behind a per-coupon lock and
// re-validates inside the transaction. A second call with the same order ID
// is a no-op.
func (s *Service) Redeem(ctx context.Context, code, orderID string) error {
	orgID, err := s.orgIDFromContext(ctx)
	if err != nil {
		return err
	}

	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return coupondomain.ErrInvalidOrder
	}

	coupon, err := s.repo.FindByCode(ctx, s.db, orgID, strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return err
	}
	if coupon == nil {
		return coupondomain.ErrNotFound
	}

	release, err := s.acquireLock(ctx, coupon.ID)
	if err != nil {
		return err
	}
	defer release()

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.repo.FindRedemption(ctx, tx, coupon.ID, orderID)
		if err != nil {
			return err
		}
		if existing != nil {
			return nil
		}

		ok, err := s.repo.IncrementUsage(ctx, tx, coupon.ID)
		if err != nil {
			return err
		}
		if !ok {
			return coupondomain.ErrUsageLimitReached
		}

		redemption := &coupondomain.CouponRedemption{
			ID:         s.genID.Generate(),
			OrgID:      orgID,
			CouponID:   coupon.ID,
			OrderID:    orderID,
			RedeemedAt: time.Now().UTC(),
		}
		if err := s.repo.InsertRedemption(ctx, tx, redemption); err != nil {
			if db.IsDuplicateKeyErr(err) {
				// Lost a race with an identical commit; the increment above
				// is rolled back with the transaction.
				return coupondomain.ErrRedemptionContended
			}
			return err
		}
		return nil
	})
}

func (s *Service) acquireLock(ctx context.Context, couponID snowflake.ID) (func(), error) {
	if s.locker == nil {
		return func() {}, nil
	}

	key := "optora:coupon:redeem:" + couponID.String()
	for attempt := 0; attempt < redeemLockAttempts; attempt++ {
		token, ok, err := s.locker.TryLock(ctx, key, redeemLockTTL)
		if err != nil {
			return nil, err
		}
		if ok {
			return func() {
				_ = s.locker.Release(context.WithoutCancel(ctx), key, token)
			}, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(redeemLockBackoff << attempt):
		}
	}
	return nil, coupondomain.ErrRedemptionContended
}

func (s *Service) orgIDFromContext(ctx context.Context) (snowflake.ID, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return 0, coupondomain.ErrInvalidOrganization
	}
	return orgID, nil
}
