package plan

import (
	"time"

	"github.com/google/uuid"
)

// TimeSlot is a weekly recurring study window for a plan group.
// Weekday follows time.Weekday numbering (Sunday = 0).
type TimeSlot struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	PlanGroupID uuid.UUID `gorm:"type:uuid;not null;index" json:"plan_group_id"`

	Weekday   int    `gorm:"column:weekday;not null" json:"weekday"`
	StartTime string `gorm:"column:start_time;not null" json:"start_time"`
	EndTime   string `gorm:"column:end_time;not null" json:"end_time"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (TimeSlot) TableName() string { return "time_slot" }

// ScheduleExclusion blacks out a single date entirely, regardless of any
// recurring slots that would otherwise apply.
type ScheduleExclusion struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	PlanGroupID uuid.UUID `gorm:"type:uuid;not null;index" json:"plan_group_id"`

	ExclusionDate string `gorm:"column:exclusion_date;type:date;not null" json:"exclusion_date"`
	ExclusionType string `gorm:"column:exclusion_type;not null" json:"exclusion_type"`
	Reason        string `gorm:"column:reason" json:"reason,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (ScheduleExclusion) TableName() string { return "schedule_exclusion" }

// AcademySchedule is a weekly external commitment subtracted from availability,
// padded by travel time on both sides.
type AcademySchedule struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	PlanGroupID uuid.UUID `gorm:"type:uuid;not null;index" json:"plan_group_id"`

	Weekday     int    `gorm:"column:weekday;not null" json:"weekday"`
	StartTime   string `gorm:"column:start_time;not null" json:"start_time"`
	EndTime     string `gorm:"column:end_time;not null" json:"end_time"`
	AcademyName string `gorm:"column:academy_name" json:"academy_name,omitempty"`
	Subject     string `gorm:"column:subject" json:"subject,omitempty"`
	TravelTime  int    `gorm:"column:travel_time;not null;default:0" json:"travel_time"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (AcademySchedule) TableName() string { return "academy_schedule" }
