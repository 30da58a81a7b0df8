package plan

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	RescheduleStatusCommitted  = "committed"
	RescheduleStatusRolledBack = "rolled_back"
)

// RollbackWindow is how long after a commit the prior schedule can be restored.
const RollbackWindow = 24 * time.Hour

// RescheduleLog records one committed reschedule and carries its rollback window.
type RescheduleLog struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	PlanGroupID uuid.UUID `gorm:"type:uuid;not null;index" json:"plan_group_id"`

	Adjustments      datatypes.JSON `gorm:"column:adjustments;type:jsonb" json:"adjustments"`
	PlansBeforeCount int            `gorm:"column:plans_before_count;not null" json:"plans_before_count"`
	PlansAfterCount  int            `gorm:"column:plans_after_count;not null" json:"plans_after_count"`
	Reason           string         `gorm:"column:reason" json:"reason,omitempty"`
	Status           string         `gorm:"column:status;not null;default:'committed'" json:"status"`

	// After ExpiresAt the deactivated rows become eligible for physical cleanup.
	ExpiresAt time.Time `gorm:"column:expires_at;not null;index" json:"expires_at"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (RescheduleLog) TableName() string { return "reschedule_log" }

// Expired reports whether the rollback window has closed at the given instant.
func (l *RescheduleLog) Expired(now time.Time) bool {
	return now.After(l.ExpiresAt)
}

// PlanHistory snapshots a superseded plan row at commit time so a rollback
// can restore it.
type PlanHistory struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	PlanID          uuid.UUID `gorm:"type:uuid;not null;index" json:"plan_id"`
	PlanGroupID     uuid.UUID `gorm:"type:uuid;not null;index" json:"plan_group_id"`
	RescheduleLogID uuid.UUID `gorm:"type:uuid;not null;index" json:"reschedule_log_id"`

	ContentID uuid.UUID      `gorm:"type:uuid;not null" json:"content_id"`
	PlanData  datatypes.JSON `gorm:"column:plan_data;type:jsonb;not null" json:"plan_data"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (PlanHistory) TableName() string { return "plan_history" }
