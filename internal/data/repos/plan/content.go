package plan

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/planforge/planforge-backend/internal/domain/plan"
	"github.com/planforge/planforge-backend/internal/platform/dbctx"
	"github.com/planforge/planforge-backend/internal/platform/logger"
)

type PlanContentRepo interface {
	Create(dbc dbctx.Context, contents []*types.PlanContent) ([]*types.PlanContent, error)
	GetByGroupID(dbc dbctx.Context, groupID uuid.UUID) ([]*types.PlanContent, error)
}

type planContentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPlanContentRepo(db *gorm.DB, baseLog *logger.Logger) PlanContentRepo {
	return &planContentRepo{db: db, log: baseLog.With("repo", "PlanContentRepo")}
}

func (r *planContentRepo) conn(dbc dbctx.Context) *gorm.DB {
	if dbc.Tx != nil {
		return dbc.Tx
	}
	return r.db
}

func (r *planContentRepo) Create(dbc dbctx.Context, contents []*types.PlanContent) ([]*types.PlanContent, error) {
	if len(contents) == 0 {
		return []*types.PlanContent{}, nil
	}
	if err := r.conn(dbc).WithContext(dbc.Ctx).Create(&contents).Error; err != nil {
		return nil, err
	}
	return contents, nil
}

func (r *planContentRepo) GetByGroupID(dbc dbctx.Context, groupID uuid.UUID) ([]*types.PlanContent, error) {
	var results []*types.PlanContent
	if err := r.conn(dbc).WithContext(dbc.Ctx).
		Where("plan_group_id = ?", groupID).
		Order("display_order ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
