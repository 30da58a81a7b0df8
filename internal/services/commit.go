package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/planforge/planforge-backend/internal/data/repos"
	types "github.com/planforge/planforge-backend/internal/domain/plan"
	apperrors "github.com/planforge/planforge-backend/internal/pkg/errors"
	"github.com/planforge/planforge-backend/internal/platform/dbctx"
	"github.com/planforge/planforge-backend/internal/platform/logger"
)

// CommitResult reports what a committed reschedule did.
type CommitResult struct {
	LogID             uuid.UUID `json:"log_id"`
	PlansDeactivated  int       `json:"plans_deactivated"`
	PlansCreated      int       `json:"plans_created"`
	RollbackExpiresAt time.Time `json:"rollback_expires_at"`
}

// RollbackResult reports what a rollback restored.
type RollbackResult struct {
	LogID          uuid.UUID `json:"log_id"`
	PlansRestored  int       `json:"plans_restored"`
	PlansRetracted int       `json:"plans_retracted"`
}

type CommitService interface {
	// Commit atomically applies a reschedule: it recomputes the candidate
	// under a row lock on the group, snapshots superseded plans, deactivates
	// them, inserts the new plans, and records a reschedule log whose
	// rollback window starts now. Either everything lands or nothing does.
	Commit(ctx context.Context, req PreviewRequest, reason string) (*CommitResult, error)
	// Rollback restores the schedule as it was before the given commit, if
	// its rollback window is still open.
	Rollback(ctx context.Context, logID uuid.UUID) (*RollbackResult, error)
}

type commitService struct {
	db      *gorm.DB
	log     *logger.Logger
	preview PreviewService
	groups  repos.PlanGroupRepo
	plans   repos.PlanRepo
	logs    repos.RescheduleLogRepo
	history repos.PlanHistoryRepo
	now     func() time.Time
}

func NewCommitService(
	db *gorm.DB,
	baseLog *logger.Logger,
	preview PreviewService,
	groups repos.PlanGroupRepo,
	plans repos.PlanRepo,
	logs repos.RescheduleLogRepo,
	history repos.PlanHistoryRepo,
) CommitService {
	return &commitService{
		db:      db,
		log:     baseLog.With("service", "CommitService"),
		preview: preview,
		groups:  groups,
		plans:   plans,
		logs:    logs,
		history: history,
		now:     time.Now,
	}
}

func (s *commitService) Commit(ctx context.Context, req PreviewRequest, reason string) (*CommitResult, error) {
	if req.GroupID == uuid.Nil {
		return nil, fmt.Errorf("commit: %w: missing group id", apperrors.ErrInvalidArgument)
	}
	if req.empty() {
		return nil, fmt.Errorf("commit: %w: nothing to apply", apperrors.ErrInvalidArgument)
	}

	var result CommitResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}

		group, err := s.groups.GetByIDForUpdate(dbc, req.GroupID)
		if err != nil {
			return fmt.Errorf("lock group: %w", err)
		}
		if group == nil {
			return fmt.Errorf("group %s: %w", req.GroupID, apperrors.ErrNotFound)
		}

		// Recompute from current state under the lock; a stale preview on
		// the client cannot smuggle in plans that no longer exist.
		candidate, _, err := s.preview.ComputeCandidate(dbc, group, req)
		if err != nil {
			return err
		}
		// Committing an unplaced adjustment would silently drop its units.
		for _, p := range candidate.Placements {
			if !p.Placed {
				return fmt.Errorf("content %s has no dates to land on: %w", p.ContentID, apperrors.ErrNoPlacement)
			}
		}

		adjustmentsJSON, err := json.Marshal(req.Adjustments)
		if err != nil {
			return fmt.Errorf("marshal adjustments: %w", err)
		}
		now := s.now().UTC()
		entry := &types.RescheduleLog{
			ID:               uuid.New(),
			PlanGroupID:      group.ID,
			Adjustments:      datatypes.JSON(adjustmentsJSON),
			PlansBeforeCount: len(candidate.Superseded),
			PlansAfterCount:  len(candidate.NewPlans),
			Reason:           reason,
			Status:           types.RescheduleStatusCommitted,
			ExpiresAt:        now.Add(types.RollbackWindow),
		}
		if _, err := s.logs.Create(dbc, entry); err != nil {
			return fmt.Errorf("create reschedule log: %w", err)
		}

		snapshots := make([]*types.PlanHistory, 0, len(candidate.Superseded))
		supersededIDs := make([]uuid.UUID, 0, len(candidate.Superseded))
		for i := range candidate.Superseded {
			p := candidate.Superseded[i]
			body, err := json.Marshal(p)
			if err != nil {
				return fmt.Errorf("snapshot plan %s: %w", p.ID, err)
			}
			snapshots = append(snapshots, &types.PlanHistory{
				ID:              uuid.New(),
				PlanID:          p.ID,
				PlanGroupID:     group.ID,
				RescheduleLogID: entry.ID,
				ContentID:       p.ContentID,
				PlanData:        datatypes.JSON(body),
			})
			supersededIDs = append(supersededIDs, p.ID)
		}
		if _, err := s.history.Create(dbc, snapshots); err != nil {
			return fmt.Errorf("write plan history: %w", err)
		}
		if err := s.plans.DeactivateByIDs(dbc, supersededIDs); err != nil {
			return fmt.Errorf("deactivate superseded plans: %w", err)
		}

		inserts := make([]*types.Plan, 0, len(candidate.NewPlans))
		for i := range candidate.NewPlans {
			p := candidate.NewPlans[i]
			p.ID = uuid.New()
			p.PlanGroupID = group.ID
			logID := entry.ID
			p.RescheduleLogID = &logID
			inserts = append(inserts, &p)
		}
		if _, err := s.plans.Create(dbc, inserts); err != nil {
			return fmt.Errorf("insert new plans: %w", err)
		}

		if err := s.groups.BumpVersion(dbc, group.ID, group.Version); err != nil {
			return err
		}

		result = CommitResult{
			LogID:             entry.ID,
			PlansDeactivated:  len(supersededIDs),
			PlansCreated:      len(inserts),
			RollbackExpiresAt: entry.ExpiresAt,
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	s.log.Info("reschedule committed",
		"group_id", req.GroupID,
		"log_id", result.LogID,
		"plans_deactivated", result.PlansDeactivated,
		"plans_created", result.PlansCreated,
	)
	return &result, nil
}

func (s *commitService) Rollback(ctx context.Context, logID uuid.UUID) (*RollbackResult, error) {
	if logID == uuid.Nil {
		return nil, fmt.Errorf("rollback: %w: missing log id", apperrors.ErrInvalidArgument)
	}

	var result RollbackResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}

		entry, err := s.logs.GetByID(dbc, logID)
		if err != nil {
			return fmt.Errorf("load reschedule log: %w", err)
		}
		if entry == nil {
			return fmt.Errorf("reschedule log %s: %w", logID, apperrors.ErrNotFound)
		}
		if entry.Status != types.RescheduleStatusCommitted {
			return fmt.Errorf("reschedule log %s already %s: %w", logID, entry.Status, apperrors.ErrInvalidArgument)
		}
		if entry.Expired(s.now().UTC()) {
			return fmt.Errorf("reschedule log %s: %w", logID, apperrors.ErrRollbackExpired)
		}

		group, err := s.groups.GetByIDForUpdate(dbc, entry.PlanGroupID)
		if err != nil {
			return fmt.Errorf("lock group: %w", err)
		}
		if group == nil {
			return fmt.Errorf("group %s: %w", entry.PlanGroupID, apperrors.ErrNotFound)
		}

		if err := s.plans.DeactivateByLogID(dbc, entry.ID); err != nil {
			return fmt.Errorf("retract committed plans: %w", err)
		}

		snapshots, err := s.history.GetByLogID(dbc, entry.ID)
		if err != nil {
			return fmt.Errorf("load plan history: %w", err)
		}
		restoreIDs := make([]uuid.UUID, 0, len(snapshots))
		for _, h := range snapshots {
			restoreIDs = append(restoreIDs, h.PlanID)
		}
		if err := s.plans.ReactivateByIDs(dbc, restoreIDs); err != nil {
			return fmt.Errorf("restore superseded plans: %w", err)
		}

		if err := s.logs.MarkStatus(dbc, entry.ID, types.RescheduleStatusRolledBack); err != nil {
			return fmt.Errorf("mark reschedule log: %w", err)
		}
		if err := s.groups.BumpVersion(dbc, group.ID, group.Version); err != nil {
			return err
		}

		result = RollbackResult{
			LogID:          entry.ID,
			PlansRestored:  len(restoreIDs),
			PlansRetracted: entry.PlansAfterCount,
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("rollback: %w", err)
	}

	s.log.Info("reschedule rolled back",
		"log_id", result.LogID,
		"plans_restored", result.PlansRestored,
		"plans_retracted", result.PlansRetracted,
	)
	return &result, nil
}
