package models

import (
	"time"

	"civicdesk/internal/utils"
)

// Issue statuses run 0 (pending) through 5 (resolved). The steps in
// between are up to the municipality's triage workflow.
const (
	IssueStatusPending  = 0
	IssueStatusResolved = 5
)

type Issue struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	Title            string    `gorm:"not null" json:"title"`
	Description      string    `gorm:"type:text;not null" json:"description"`
	Image            string    `json:"image"` // optional image URL
	ImportanceRating int       `gorm:"not null;default:0" json:"importance_rating"` // 0-5, set by the reporter at creation
	Status           int       `gorm:"not null;default:0;index" json:"status"`      // 0-5, admin controlled
	UserID           uint      `gorm:"not null;index" json:"user_id"`
	User             User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user"`
	CategoryID       uint      `gorm:"not null;index" json:"category_id"`
	Category         Category  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"category"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`

	// Not database columns, filled in at query time.
	RepostCount int                      `gorm:"-" json:"repost_count"`
	Priority    *utils.PriorityBreakdown `gorm:"-" json:"priority,omitempty"`
}
