package plan

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/planforge/planforge-backend/internal/domain/plan"
	"github.com/planforge/planforge-backend/internal/platform/dbctx"
	"github.com/planforge/planforge-backend/internal/platform/logger"
)

type RescheduleLogRepo interface {
	Create(dbc dbctx.Context, log *types.RescheduleLog) (*types.RescheduleLog, error)
	GetByID(dbc dbctx.Context, logID uuid.UUID) (*types.RescheduleLog, error)
	MarkStatus(dbc dbctx.Context, logID uuid.UUID, status string) error
}

type rescheduleLogRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRescheduleLogRepo(db *gorm.DB, baseLog *logger.Logger) RescheduleLogRepo {
	return &rescheduleLogRepo{db: db, log: baseLog.With("repo", "RescheduleLogRepo")}
}

func (r *rescheduleLogRepo) conn(dbc dbctx.Context) *gorm.DB {
	if dbc.Tx != nil {
		return dbc.Tx
	}
	return r.db
}

func (r *rescheduleLogRepo) Create(dbc dbctx.Context, row *types.RescheduleLog) (*types.RescheduleLog, error) {
	if err := r.conn(dbc).WithContext(dbc.Ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *rescheduleLogRepo) GetByID(dbc dbctx.Context, logID uuid.UUID) (*types.RescheduleLog, error) {
	var row types.RescheduleLog
	err := r.conn(dbc).WithContext(dbc.Ctx).
		Where("id = ?", logID).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *rescheduleLogRepo) MarkStatus(dbc dbctx.Context, logID uuid.UUID, status string) error {
	return r.conn(dbc).WithContext(dbc.Ctx).
		Model(&types.RescheduleLog{}).
		Where("id = ?", logID).
		Update("status", status).Error
}
