package db

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/planforge/planforge-backend/internal/domain/plan"
)

// AutoMigrateAll migrates the plan schema. Order matters: groups before the
// tables that reference them.
func AutoMigrateAll(db *gorm.DB) error {
	models := []interface{}{
		&plan.PlanGroup{},
		&plan.PlanContent{},
		&plan.Plan{},
		&plan.TimeSlot{},
		&plan.ScheduleExclusion{},
		&plan.AcademySchedule{},
		&plan.RescheduleLog{},
		&plan.PlanHistory{},
	}
	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

func (s *Service) AutoMigrateAll() error {
	return AutoMigrateAll(s.db)
}
