// Package ruleset loads an immutable snapshot of the pricing rule tables.
// The engine evaluates one snapshot per calculation so that concurrent rule
// edits never produce a mixed read.
package ruleset

import (
	"time"

	"github.com/bwmarrin/snowflake"
	catdiscdomain "github.com/smallbiznis/optora/internal/categorydiscount/domain"
	combodomain "github.com/smallbiznis/optora/internal/combo/domain"
	offerruledomain "github.com/smallbiznis/optora/internal/offerrule/domain"
)

// RuleSet is a point-in-time view of every rule table the engine reads.
// Callers must treat it as read-only; the loader shares one instance across
// calculations until the TTL lapses.
type RuleSet struct {
	OrgID    snowflake.ID
	StoreID  snowflake.ID
	LoadedAt time.Time

	// OfferRules are org-active rules usable at the store, sorted by
	// (priority, code).
	OfferRules []offerruledomain.OfferRule

	// ComboTiers indexes active tiers by combo code.
	ComboTiers map[string]combodomain.ComboTier

	CategoryDiscounts []catdiscdomain.CategoryDiscount
}

// Tier returns the combo tier for a code, if the snapshot holds one.
func (rs *RuleSet) Tier(comboCode string) (combodomain.ComboTier, bool) {
	tier, ok := rs.ComboTiers[comboCode]
	return tier, ok
}

// CategoryDiscount resolves the discount row for a customer category and
// brand, preferring a brand-specific row over the wildcard row.
func (rs *RuleSet) CategoryDiscount(category catdiscdomain.CustomerCategory, brandCode string) *catdiscdomain.CategoryDiscount {
	var wildcard *catdiscdomain.CategoryDiscount
	for i := range rs.CategoryDiscounts {
		d := &rs.CategoryDiscounts[i]
		if d.CustomerCategory != category || !d.IsActive {
			continue
		}
		if d.BrandCode == brandCode {
			return d
		}
		if d.BrandCode == "*" && wildcard == nil {
			wildcard = d
		}
	}
	return wildcard
}
