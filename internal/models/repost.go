package models

import (
	"time"
)

type Repost struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	IssueID   uint      `gorm:"not null;uniqueIndex:idx_issue_user" json:"issue_id"`
	Issue     Issue     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_issue_user;index" json:"user_id"`
	User      User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// The composite unique index on (issue_id, user_id) is what actually holds
// the one-repost-per-user invariant under concurrent requests; the handler
// level duplicate check only exists for a friendlier error message.
