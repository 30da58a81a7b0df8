package plan

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type PlanGroup struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	StudentID uuid.UUID `gorm:"type:uuid;not null;index" json:"student_id"`

	Name          string `gorm:"column:name;not null" json:"name"`
	PeriodStart   string `gorm:"column:period_start;type:date;not null" json:"period_start"`
	PeriodEnd     string `gorm:"column:period_end;type:date;not null" json:"period_end"`
	SchedulerType string `gorm:"column:scheduler_type;not null;default:'daily'" json:"scheduler_type"`

	// Version guards against two commits racing on stale plan snapshots.
	Version int64 `gorm:"column:version;not null;default:0" json:"version"`

	SchedulerOptions datatypes.JSON `gorm:"column:scheduler_options;type:jsonb" json:"scheduler_options,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (PlanGroup) TableName() string { return "plan_group" }

// PlanContent assigns one content item (with a page/episode range) to a plan group.
type PlanContent struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	PlanGroupID uuid.UUID  `gorm:"type:uuid;not null;index" json:"plan_group_id"`
	Group       *PlanGroup `gorm:"constraint:OnDelete:CASCADE;foreignKey:PlanGroupID;references:ID" json:"group,omitempty"`

	ContentID   uuid.UUID `gorm:"type:uuid;not null;index" json:"content_id"`
	ContentType string    `gorm:"column:content_type;not null" json:"content_type"`

	// Inclusive range; StartRange <= EndRange always.
	StartRange   int `gorm:"column:start_range;not null" json:"start_range"`
	EndRange     int `gorm:"column:end_range;not null" json:"end_range"`
	DisplayOrder int `gorm:"column:display_order;not null;default:0" json:"display_order"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (PlanContent) TableName() string { return "plan_content" }
