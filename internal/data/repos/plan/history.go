package plan

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/planforge/planforge-backend/internal/domain/plan"
	"github.com/planforge/planforge-backend/internal/platform/dbctx"
	"github.com/planforge/planforge-backend/internal/platform/logger"
)

type PlanHistoryRepo interface {
	Create(dbc dbctx.Context, rows []*types.PlanHistory) ([]*types.PlanHistory, error)
	GetByLogID(dbc dbctx.Context, logID uuid.UUID) ([]*types.PlanHistory, error)
}

type planHistoryRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPlanHistoryRepo(db *gorm.DB, baseLog *logger.Logger) PlanHistoryRepo {
	return &planHistoryRepo{db: db, log: baseLog.With("repo", "PlanHistoryRepo")}
}

func (r *planHistoryRepo) conn(dbc dbctx.Context) *gorm.DB {
	if dbc.Tx != nil {
		return dbc.Tx
	}
	return r.db
}

func (r *planHistoryRepo) Create(dbc dbctx.Context, rows []*types.PlanHistory) ([]*types.PlanHistory, error) {
	if len(rows) == 0 {
		return []*types.PlanHistory{}, nil
	}
	if err := r.conn(dbc).WithContext(dbc.Ctx).CreateInBatches(&rows, createBatchSize).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *planHistoryRepo) GetByLogID(dbc dbctx.Context, logID uuid.UUID) ([]*types.PlanHistory, error) {
	var results []*types.PlanHistory
	if err := r.conn(dbc).WithContext(dbc.Ctx).
		Where("reschedule_log_id = ?", logID).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
