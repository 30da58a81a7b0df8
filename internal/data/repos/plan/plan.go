package plan

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/planforge/planforge-backend/internal/domain/plan"
	"github.com/planforge/planforge-backend/internal/platform/dbctx"
	"github.com/planforge/planforge-backend/internal/platform/logger"
)

const createBatchSize = 100

type PlanRepo interface {
	Create(dbc dbctx.Context, plans []*types.Plan) ([]*types.Plan, error)
	// GetActiveByGroup returns active plans for the group, optionally
	// restricted to an inclusive [from, to] date window (empty strings skip
	// the filter), ordered by plan_date.
	GetActiveByGroup(dbc dbctx.Context, groupID uuid.UUID, from, to string) ([]*types.Plan, error)
	DeactivateByIDs(dbc dbctx.Context, planIDs []uuid.UUID) error
	ReactivateByIDs(dbc dbctx.Context, planIDs []uuid.UUID) error
	// DeactivateByLogID deactivates every plan a given commit inserted.
	DeactivateByLogID(dbc dbctx.Context, logID uuid.UUID) error
}

type planRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPlanRepo(db *gorm.DB, baseLog *logger.Logger) PlanRepo {
	return &planRepo{db: db, log: baseLog.With("repo", "PlanRepo")}
}

func (r *planRepo) conn(dbc dbctx.Context) *gorm.DB {
	if dbc.Tx != nil {
		return dbc.Tx
	}
	return r.db
}

func (r *planRepo) Create(dbc dbctx.Context, plans []*types.Plan) ([]*types.Plan, error) {
	if len(plans) == 0 {
		return []*types.Plan{}, nil
	}
	if err := r.conn(dbc).WithContext(dbc.Ctx).CreateInBatches(&plans, createBatchSize).Error; err != nil {
		return nil, err
	}
	return plans, nil
}

func (r *planRepo) GetActiveByGroup(dbc dbctx.Context, groupID uuid.UUID, from, to string) ([]*types.Plan, error) {
	query := r.conn(dbc).WithContext(dbc.Ctx).
		Where("plan_group_id = ? AND is_active = ?", groupID, true)
	if from != "" && to != "" {
		query = query.Where("plan_date >= ? AND plan_date <= ?", from, to)
	}

	var results []*types.Plan
	if err := query.Order("plan_date ASC, start_time ASC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *planRepo) DeactivateByIDs(dbc dbctx.Context, planIDs []uuid.UUID) error {
	if len(planIDs) == 0 {
		return nil
	}
	return r.conn(dbc).WithContext(dbc.Ctx).
		Model(&types.Plan{}).
		Where("id IN ?", planIDs).
		Update("is_active", false).Error
}

func (r *planRepo) ReactivateByIDs(dbc dbctx.Context, planIDs []uuid.UUID) error {
	if len(planIDs) == 0 {
		return nil
	}
	return r.conn(dbc).WithContext(dbc.Ctx).
		Model(&types.Plan{}).
		Where("id IN ?", planIDs).
		Update("is_active", true).Error
}

func (r *planRepo) DeactivateByLogID(dbc dbctx.Context, logID uuid.UUID) error {
	return r.conn(dbc).WithContext(dbc.Ctx).
		Model(&types.Plan{}).
		Where("reschedule_log_id = ?", logID).
		Update("is_active", false).Error
}
