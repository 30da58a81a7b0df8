package plan

import (
	"time"

	"github.com/google/uuid"
)

const (
	ContentTypeBook    = "book"
	ContentTypeLecture = "lecture"
	ContentTypeCustom  = "custom"
)

const (
	StatusNotStarted = "not_started"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
)

// Plan is one scheduled day's worth of content study.
type Plan struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	PlanGroupID uuid.UUID  `gorm:"type:uuid;not null;index" json:"plan_group_id"`
	Group       *PlanGroup `gorm:"constraint:OnDelete:CASCADE;foreignKey:PlanGroupID;references:ID" json:"group,omitempty"`

	ContentID   uuid.UUID `gorm:"type:uuid;not null;index" json:"content_id"`
	ContentType string    `gorm:"column:content_type;not null" json:"content_type"`

	PlanDate  string  `gorm:"column:plan_date;type:date;not null;index" json:"plan_date"`
	StartTime *string `gorm:"column:start_time" json:"start_time,omitempty"`
	EndTime   *string `gorm:"column:end_time" json:"end_time,omitempty"`

	PlannedStartPageOrTime int `gorm:"column:planned_start_page_or_time;not null" json:"planned_start_page_or_time"`
	PlannedEndPageOrTime   int `gorm:"column:planned_end_page_or_time;not null" json:"planned_end_page_or_time"`

	Status   string `gorm:"column:status;not null;default:'not_started';index" json:"status"`
	IsActive bool   `gorm:"column:is_active;not null;default:true;index" json:"is_active"`

	// Set only by the student's study activity, never by the reschedule engine.
	CompletedAmount *int    `gorm:"column:completed_amount" json:"completed_amount,omitempty"`
	ActualEndTime   *string `gorm:"column:actual_end_time" json:"actual_end_time,omitempty"`

	// Links freshly inserted plans back to the commit that produced them,
	// so a rollback can find and deactivate exactly those rows.
	RescheduleLogID *uuid.UUID `gorm:"type:uuid;index" json:"reschedule_log_id,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Plan) TableName() string { return "plan" }

// Reschedulable reports whether the reschedule engine may touch this plan.
// Completed plans are immutable under reschedule; inactive rows are already
// superseded.
func (p *Plan) Reschedulable() bool {
	return p.IsActive && p.Status != StatusCompleted
}

// Timed reports whether the plan carries a concrete time-of-day window.
func (p *Plan) Timed() bool {
	return p.StartTime != nil && p.EndTime != nil
}
