package ruleset

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/optora/internal/cache"
	"github.com/smallbiznis/optora/internal/clock"
	combodomain "github.com/smallbiznis/optora/internal/combo/domain"
	"github.com/smallbiznis/optora/internal/config"
	offerruledomain "github.com/smallbiznis/optora/internal/offerrule/domain"
	"github.com/smallbiznis/optora/internal/orgcontext"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Loader produces rule snapshots, serving cached copies within the TTL.
type Loader interface {
	Snapshot(ctx context.Context, storeID snowflake.ID) (*RuleSet, error)
	Invalidate(orgID, storeID snowflake.ID)
}

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Cfg   config.Config
	Clock clock.Clock
}

type loader struct {
	db    *gorm.DB
	log   *zap.Logger
	clock clock.Clock
	ttl   time.Duration
	cache cache.Cache[string, *RuleSet]
}

func New(p Params) Loader {
	return &loader{
		db:    p.DB,
		log:   p.Log.Named("ruleset.loader"),
		clock: p.Clock,
		ttl:   p.Cfg.RuleSnapshotTTL,
		cache: cache.NewTTLCache[string, *RuleSet](),
	}
}

func snapshotKey(orgID, storeID snowflake.ID) string {
	return fmt.Sprintf("%d|%d", orgID, storeID)
}

func (l *loader) Snapshot(ctx context.Context, storeID snowflake.ID) (*RuleSet, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok {
		return nil, offerruledomain.ErrInvalidOrganization
	}

	key := snapshotKey(orgID, storeID)
	if rs, ok := l.cache.Get(key); ok {
		return rs, nil
	}

	rs, err := l.load(ctx, orgID, storeID)
	if err != nil {
		return nil, err
	}
	l.cache.Set(key, rs, l.ttl)

	l.log.Debug("rule snapshot loaded",
		zap.String("org_id", orgID.String()),
		zap.String("store_id", storeID.String()),
		zap.Int("offer_rules", len(rs.OfferRules)),
		zap.Int("combo_tiers", len(rs.ComboTiers)),
		zap.Int("category_discounts", len(rs.CategoryDiscounts)),
	)
	return rs, nil
}

func (l *loader) Invalidate(orgID, storeID snowflake.ID) {
	l.cache.Delete(snapshotKey(orgID, storeID))
}

func (l *loader) load(ctx context.Context, orgID, storeID snowflake.ID) (*RuleSet, error) {
	rs := &RuleSet{
		OrgID:    orgID,
		StoreID:  storeID,
		LoadedAt: l.clock.Now(),
	}

	var rules []offerruledomain.OfferRule
	err := l.db.WithContext(ctx).
		Where("org_id = ? AND is_active = ?", orgID, true).
		Order("priority ASC, code ASC").
		Find(&rules).Error
	if err != nil {
		return nil, err
	}

	var maps []offerruledomain.StoreOfferMap
	err = l.db.WithContext(ctx).
		Where("org_id = ? AND store_id = ?", orgID, storeID).
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
	rs.OfferRules = make([]offerruledomain.OfferRule, 0, len(rules))
	for _, r := range rules {
		if disabled[r.ID] {
			continue
		}
		rs.OfferRules = append(rs.OfferRules, r)
	}

	var tiers []combodomain.ComboTier
	err = l.db.WithContext(ctx).
		Preload("Benefits").
		Preload("Rules").
		Where("org_id = ? AND is_active = ?", orgID, true).
		Order("sort_order ASC").
		Find(&tiers).Error
	if err != nil {
		return nil, err
	}
	rs.ComboTiers = make(map[string]combodomain.ComboTier, len(tiers))
	for _, t := range tiers {
		rs.ComboTiers[t.ComboCode] = t
	}

	err = l.db.WithContext(ctx).
		Where("org_id = ? AND is_active = ?", orgID, true).
		Find(&rs.CategoryDiscounts).Error
	if err != nil {
		return nil, err
	}

	return rs, nil
}
