package ruleset

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	catdiscdomain "github.com/smallbiznis/optora/internal/categorydiscount/domain"
	"github.com/smallbiznis/optora/internal/clock"
	combodomain "github.com/smallbiznis/optora/internal/combo/domain"
	"github.com/smallbiznis/optora/internal/config"
	offerruledomain "github.com/smallbiznis/optora/internal/offerrule/domain"
	"github.com/smallbiznis/optora/internal/orgcontext"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestLoader(t *testing.T, ttl time.Duration) (Loader, *gorm.DB, *snowflake.Node, context.Context) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&offerruledomain.OfferRule{},
		&offerruledomain.StoreOfferMap{},
		&combodomain.ComboTier{},
		&combodomain.ComboBenefit{},
		&combodomain.ComboRule{},
		&catdiscdomain.CategoryDiscount{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	loader := New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		Cfg:   config.Config{RuleSnapshotTTL: ttl},
		Clock: clock.NewFakeClock(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)),
	})
	ctx := orgcontext.WithOrgID(context.Background(), node.Generate())
	return loader, db, node, ctx
}

func insertRule(t *testing.T, db *gorm.DB, node *snowflake.Node, orgID snowflake.ID, code string, priority int) offerruledomain.OfferRule {
	t.Helper()
	rule := offerruledomain.OfferRule{
		ID:       node.Generate(),
		OrgID:    orgID,
		Code:     code,
		Name:     code,
		RuleType: offerruledomain.RuleFlat,
		Value:    100,
		Priority: priority,
		IsActive: true,
	}
	require.NoError(t, db.Create(&rule).Error)
	return rule
}

func TestSnapshot_ExcludesStoreDisabledRules(t *testing.T) {
	loader, db, node, ctx := newTestLoader(t, 0)
	orgID, _ := orgcontext.OrgIDFromContext(ctx)
	storeID := node.Generate()

	kept := insertRule(t, db, node, orgID, "KEPT", 10)
	dropped := insertRule(t, db, node, orgID, "DROPPED", 20)
	require.NoError(t, db.Create(&offerruledomain.StoreOfferMap{
		ID: node.Generate(), OrgID: orgID, StoreID: storeID,
		OfferRuleID: dropped.ID, IsActive: false,
	}).Error)

	rs, err := loader.Snapshot(ctx, storeID)
	require.NoError(t, err)
	require.Len(t, rs.OfferRules, 1)
	require.Equal(t, kept.Code, rs.OfferRules[0].Code)

	// Another store is unaffected by the first store's override.
	other, err := loader.Snapshot(ctx, node.Generate())
	require.NoError(t, err)
	require.Len(t, other.OfferRules, 2)
}

func TestSnapshot_CachesUntilInvalidated(t *testing.T) {
	loader, db, node, ctx := newTestLoader(t, time.Minute)
	orgID, _ := orgcontext.OrgIDFromContext(ctx)
	storeID := node.Generate()

	insertRule(t, db, node, orgID, "FIRST", 10)
	rs, err := loader.Snapshot(ctx, storeID)
	require.NoError(t, err)
	require.Len(t, rs.OfferRules, 1)

	insertRule(t, db, node, orgID, "SECOND", 20)
	cached, err := loader.Snapshot(ctx, storeID)
	require.NoError(t, err)
	require.Len(t, cached.OfferRules, 1)

	loader.Invalidate(orgID, storeID)
	fresh, err := loader.Snapshot(ctx, storeID)
	require.NoError(t, err)
	require.Len(t, fresh.OfferRules, 2)
}

func TestSnapshot_RequiresOrganization(t *testing.T) {
	loader, _, node, _ := newTestLoader(t, 0)
	_, err := loader.Snapshot(context.Background(), node.Generate())
	require.ErrorIs(t, err, offerruledomain.ErrInvalidOrganization)
}

func TestRuleSet_CategoryDiscountPrefersBrandRow(t *testing.T) {
	wildcard := catdiscdomain.CategoryDiscount{
		CustomerCategory: catdiscdomain.CategoryStudent, BrandCode: "*",
		DiscountPercent: 10, IsActive: true,
	}
	branded := catdiscdomain.CategoryDiscount{
		CustomerCategory: catdiscdomain.CategoryStudent, BrandCode: "VINCENT",
		DiscountPercent: 15, IsActive: true,
	}
	rs := &RuleSet{CategoryDiscounts: []catdiscdomain.CategoryDiscount{wildcard, branded}}

	got := rs.CategoryDiscount(catdiscdomain.CategoryStudent, "VINCENT")
	require.NotNil(t, got)
	require.Equal(t, float64(15), got.DiscountPercent)

	got = rs.CategoryDiscount(catdiscdomain.CategoryStudent, "JOHNJACOBS")
	require.NotNil(t, got)
	require.Equal(t, "*", got.BrandCode)

	require.Nil(t, rs.CategoryDiscount(catdiscdomain.CategorySeniorCitizen, "VINCENT"))
}
