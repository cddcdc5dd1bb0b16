package models

import "time"

// Goal is a savings target. CurrentAmount only changes through
// contributions, and IsCompleted mirrors CurrentAmount >= TargetAmount.
type Goal struct {
	Base
	UserID        string     `gorm:"type:uuid;not null;index" json:"user_id"`
	Name          string     `gorm:"not null" json:"name"`
	TargetAmount  int64      `gorm:"type:bigint;not null" json:"target_amount"`
	CurrentAmount int64      `gorm:"type:bigint;not null" json:"current_amount"`
	TargetDate    *time.Time `json:"target_date,omitempty"`
	IsCompleted   bool       `gorm:"not null" json:"is_completed"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
	ShareToken    *string    `gorm:"size:64;uniqueIndex" json:"-"`
}

// SyncCompletion sets the completion flag and timestamp from the amounts.
func (g *Goal) SyncCompletion(now time.Time) {
	done := g.TargetAmount > 0 && g.CurrentAmount >= g.TargetAmount
	switch {
	case done && !g.IsCompleted:
		g.IsCompleted = true
		g.CompletedAt = &now
	case !done:
		g.IsCompleted = false
		g.CompletedAt = nil
	}
}

// GoalContribution records money put toward a goal.
type GoalContribution struct {
	Record
	UserID string    `gorm:"type:uuid;not null;index" json:"user_id"`
	GoalID string    `gorm:"type:uuid;not null;index" json:"goal_id"`
	Amount int64     `gorm:"type:bigint;not null" json:"amount"`
	Date   time.Time `gorm:"not null" json:"date"`
	Note   string    `json:"note,omitempty"`
}
