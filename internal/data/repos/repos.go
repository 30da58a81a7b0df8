package repos

import (
	"gorm.io/gorm"

	planrepos "github.com/planforge/planforge-backend/internal/data/repos/plan"
	"github.com/planforge/planforge-backend/internal/platform/logger"
)

type PlanGroupRepo = planrepos.PlanGroupRepo
type PlanContentRepo = planrepos.PlanContentRepo
type PlanRepo = planrepos.PlanRepo
type ScheduleRepo = planrepos.ScheduleRepo
type RescheduleLogRepo = planrepos.RescheduleLogRepo
type PlanHistoryRepo = planrepos.PlanHistoryRepo

func NewPlanGroupRepo(db *gorm.DB, baseLog *logger.Logger) PlanGroupRepo {
	return planrepos.NewPlanGroupRepo(db, baseLog)
}
func NewPlanContentRepo(db *gorm.DB, baseLog *logger.Logger) PlanContentRepo {
	return planrepos.NewPlanContentRepo(db, baseLog)
}
func NewPlanRepo(db *gorm.DB, baseLog *logger.Logger) PlanRepo {
	return planrepos.NewPlanRepo(db, baseLog)
}
func NewScheduleRepo(db *gorm.DB, baseLog *logger.Logger) ScheduleRepo {
	return planrepos.NewScheduleRepo(db, baseLog)
}
func NewRescheduleLogRepo(db *gorm.DB, baseLog *logger.Logger) RescheduleLogRepo {
	return planrepos.NewRescheduleLogRepo(db, baseLog)
}
func NewPlanHistoryRepo(db *gorm.DB, baseLog *logger.Logger) PlanHistoryRepo {
	return planrepos.NewPlanHistoryRepo(db, baseLog)
}
