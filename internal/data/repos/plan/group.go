package plan

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/planforge/planforge-backend/internal/domain/plan"
	apperrors "github.com/planforge/planforge-backend/internal/pkg/errors"
	"github.com/planforge/planforge-backend/internal/platform/dbctx"
	"github.com/planforge/planforge-backend/internal/platform/logger"
)

type PlanGroupRepo interface {
	Create(dbc dbctx.Context, groups []*types.PlanGroup) ([]*types.PlanGroup, error)
	GetByID(dbc dbctx.Context, groupID uuid.UUID) (*types.PlanGroup, error)
	// GetByIDForUpdate row-locks the group so concurrent commits against the
	// same plan group serialize.
	GetByIDForUpdate(dbc dbctx.Context, groupID uuid.UUID) (*types.PlanGroup, error)
	// BumpVersion advances the optimistic version; a zero-row update means
	// another commit got there first.
	BumpVersion(dbc dbctx.Context, groupID uuid.UUID, fromVersion int64) error
}

type planGroupRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPlanGroupRepo(db *gorm.DB, baseLog *logger.Logger) PlanGroupRepo {
	return &planGroupRepo{db: db, log: baseLog.With("repo", "PlanGroupRepo")}
}

func (r *planGroupRepo) conn(dbc dbctx.Context) *gorm.DB {
	if dbc.Tx != nil {
		return dbc.Tx
	}
	return r.db
}

func (r *planGroupRepo) Create(dbc dbctx.Context, groups []*types.PlanGroup) ([]*types.PlanGroup, error) {
	if len(groups) == 0 {
		return []*types.PlanGroup{}, nil
	}
	if err := r.conn(dbc).WithContext(dbc.Ctx).Create(&groups).Error; err != nil {
		return nil, err
	}
	return groups, nil
}

func (r *planGroupRepo) GetByID(dbc dbctx.Context, groupID uuid.UUID) (*types.PlanGroup, error) {
	var group types.PlanGroup
	err := r.conn(dbc).WithContext(dbc.Ctx).
		Where("id = ?", groupID).
		First(&group).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *planGroupRepo) GetByIDForUpdate(dbc dbctx.Context, groupID uuid.UUID) (*types.PlanGroup, error) {
	conn := r.conn(dbc).WithContext(dbc.Ctx)
	// sqlite has no SELECT FOR UPDATE; its writer lock serializes commits on
	// its own. BumpVersion still catches races either way.
	if conn.Dialector.Name() != "sqlite" {
		conn = conn.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var group types.PlanGroup
	err := conn.Where("id = ?", groupID).First(&group).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *planGroupRepo) BumpVersion(dbc dbctx.Context, groupID uuid.UUID, fromVersion int64) error {
	res := r.conn(dbc).WithContext(dbc.Ctx).
		Model(&types.PlanGroup{}).
		Where("id = ? AND version = ?", groupID, fromVersion).
		Update("version", fromVersion+1)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrVersionConflict
	}
	return nil
}
