package plan

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/planforge/planforge-backend/internal/domain/plan"
	"github.com/planforge/planforge-backend/internal/platform/dbctx"
	"github.com/planforge/planforge-backend/internal/platform/logger"
)

// ScheduleRepo loads the recurring slots, exclusions, and academy schedules
// that feed the availability calculator.
type ScheduleRepo interface {
	GetTimeSlotsByGroup(dbc dbctx.Context, groupID uuid.UUID) ([]*types.TimeSlot, error)
	GetExclusionsByGroup(dbc dbctx.Context, groupID uuid.UUID) ([]*types.ScheduleExclusion, error)
	GetAcademiesByGroup(dbc dbctx.Context, groupID uuid.UUID) ([]*types.AcademySchedule, error)
}

type scheduleRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewScheduleRepo(db *gorm.DB, baseLog *logger.Logger) ScheduleRepo {
	return &scheduleRepo{db: db, log: baseLog.With("repo", "ScheduleRepo")}
}

func (r *scheduleRepo) conn(dbc dbctx.Context) *gorm.DB {
	if dbc.Tx != nil {
		return dbc.Tx
	}
	return r.db
}

func (r *scheduleRepo) GetTimeSlotsByGroup(dbc dbctx.Context, groupID uuid.UUID) ([]*types.TimeSlot, error) {
	var results []*types.TimeSlot
	if err := r.conn(dbc).WithContext(dbc.Ctx).
		Where("plan_group_id = ?", groupID).
		Order("weekday ASC, start_time ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *scheduleRepo) GetExclusionsByGroup(dbc dbctx.Context, groupID uuid.UUID) ([]*types.ScheduleExclusion, error) {
	var results []*types.ScheduleExclusion
	if err := r.conn(dbc).WithContext(dbc.Ctx).
		Where("plan_group_id = ?", groupID).
		Order("exclusion_date ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *scheduleRepo) GetAcademiesByGroup(dbc dbctx.Context, groupID uuid.UUID) ([]*types.AcademySchedule, error) {
	var results []*types.AcademySchedule
	if err := r.conn(dbc).WithContext(dbc.Ctx).
		Where("plan_group_id = ?", groupID).
		Order("weekday ASC, start_time ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
