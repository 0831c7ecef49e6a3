package models

import (
	"time"
)

type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	IssueID   uint      `gorm:"not null;index" json:"issue_id"`
	Issue     Issue     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	AdminID   uint      `gorm:"not null;index" json:"admin_id"`
	Admin     Admin     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"admin"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
