// Package domain holds reward thresholds used for spend-more nudges.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// RewardThreshold marks a spend level that unlocks a reward. The advisor
// surfaces the nearest threshold above the current payable amount.
type RewardThreshold struct {
	ID        snowflake.ID `json:"id" gorm:"primaryKey"`
	OrgID     snowflake.ID `json:"organization_id" gorm:"column:org_id;not null;uniqueIndex:idx_reward_org_threshold"`
	Threshold int64        `json:"threshold" gorm:"not null;uniqueIndex:idx_reward_org_threshold"`
	Label     string       `json:"label" gorm:"type:text;not null"`
	IsActive  bool         `json:"is_active" gorm:"not null;default:true"`
	CreatedAt time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time    `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (RewardThreshold) TableName() string { return "reward_thresholds" }
