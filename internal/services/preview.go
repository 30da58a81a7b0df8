package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/planforge/planforge-backend/internal/cache"
	"github.com/planforge/planforge-backend/internal/data/repos"
	types "github.com/planforge/planforge-backend/internal/domain/plan"
	apperrors "github.com/planforge/planforge-backend/internal/pkg/errors"
	"github.com/planforge/planforge-backend/internal/platform/dbctx"
	"github.com/planforge/planforge-backend/internal/platform/logger"
	"github.com/planforge/planforge-backend/internal/scheduler/availability"
	"github.com/planforge/planforge-backend/internal/scheduler/conflict"
	"github.com/planforge/planforge-backend/internal/scheduler/engine"
)

const previewCacheTTL = 5 * time.Minute

// PreviewRequest carries one reschedule request through preview and commit.
type PreviewRequest struct {
	GroupID       uuid.UUID               `json:"group_id"`
	Adjustments   []types.AdjustmentInput `json:"adjustments"`
	RescheduleWin engine.DateWindow       `json:"reschedule_window"`
	PlacementWin  engine.DateWindow       `json:"placement_window"`
	IncludeToday  bool                    `json:"include_today"`
}

func (r PreviewRequest) empty() bool {
	return len(r.Adjustments) == 0 && r.RescheduleWin.Zero() && r.PlacementWin.Zero()
}

// PreviewResult is the derived diff summary. It is never persisted.
type PreviewResult struct {
	PlansBeforeCount int                `json:"plans_before_count"`
	PlansAfterCount  int                `json:"plans_after_count"`
	AffectedDates    []string           `json:"affected_dates"`
	EstimatedHours   float64            `json:"estimated_hours"`
	PlansAfter       []types.Plan       `json:"plans_after"`
	Placements       []engine.Placement `json:"placements,omitempty"`
}

type PreviewService interface {
	// Preview computes what a commit would do, with zero persisted side
	// effects. Conflicts ride alongside the result; they never block it.
	Preview(ctx context.Context, req PreviewRequest) (*PreviewResult, []conflict.Conflict, error)
	// ComputeCandidate rebuilds the candidate set from current state. The
	// commit path calls this inside its transaction so it never trusts a
	// client-supplied preview.
	ComputeCandidate(dbc dbctx.Context, group *types.PlanGroup, req PreviewRequest) (*engine.Candidate, engine.DateWindow, error)
}

type previewService struct {
	db        *gorm.DB
	log       *logger.Logger
	groups    repos.PlanGroupRepo
	contents  repos.PlanContentRepo
	plans     repos.PlanRepo
	schedules repos.ScheduleRepo

	// previewCache may be nil; previews then run uncached.
	previewCache cache.PreviewCache

	pacing         PacingStrategy
	maxHoursPerDay float64
	now            func() time.Time
}

func NewPreviewService(
	db *gorm.DB,
	baseLog *logger.Logger,
	groups repos.PlanGroupRepo,
	contents repos.PlanContentRepo,
	plans repos.PlanRepo,
	schedules repos.ScheduleRepo,
	previewCache cache.PreviewCache,
	pacing PacingStrategy,
	maxHoursPerDay float64,
) PreviewService {
	if pacing == nil {
		pacing = DefaultPacing()
	}
	if maxHoursPerDay <= 0 {
		maxHoursPerDay = conflict.DefaultMaxHoursPerDay
	}
	return &previewService{
		db:             db,
		log:            baseLog.With("service", "PreviewService"),
		groups:         groups,
		contents:       contents,
		plans:          plans,
		schedules:      schedules,
		previewCache:   previewCache,
		pacing:         pacing,
		maxHoursPerDay: maxHoursPerDay,
		now:            time.Now,
	}
}

type cachedPreview struct {
	Result    *PreviewResult      `json:"result"`
	Conflicts []conflict.Conflict `json:"conflicts"`
}

func (s *previewService) Preview(ctx context.Context, req PreviewRequest) (*PreviewResult, []conflict.Conflict, error) {
	if req.GroupID == uuid.Nil {
		return nil, nil, fmt.Errorf("preview: %w: missing group id", apperrors.ErrInvalidArgument)
	}

	dbc := dbctx.Context{Ctx: ctx}
	group, err := s.groups.GetByID(dbc, req.GroupID)
	if err != nil {
		return nil, nil, fmt.Errorf("preview: load group: %w", err)
	}
	if group == nil {
		return nil, nil, fmt.Errorf("preview: group %s: %w", req.GroupID, apperrors.ErrNotFound)
	}

	// Nothing requested is a no-op precondition, not a fault.
	if req.empty() {
		return &PreviewResult{AffectedDates: []string{}, PlansAfter: []types.Plan{}}, nil, nil
	}

	key := s.cacheKey(group, req)
	if s.previewCache != nil {
		if body, ok, cerr := s.previewCache.Get(ctx, key); cerr != nil {
			s.log.Warn("preview cache get failed, recomputing", "error", cerr)
		} else if ok {
			var hit cachedPreview
			if uerr := json.Unmarshal(body, &hit); uerr == nil && hit.Result != nil {
				return hit.Result, hit.Conflicts, nil
			}
		}
	}

	candidate, _, err := s.ComputeCandidate(dbc, group, req)
	if err != nil {
		return nil, nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	conflicts := conflict.Detect(candidate.Plans, s.maxHoursPerDay)
	result := s.buildResult(candidate)

	for _, p := range candidate.Placements {
		if !p.Placed {
			s.log.Warn("no placement possible for content", "content_id", p.ContentID, "requested_units", p.Requested)
		}
	}

	if s.previewCache != nil {
		if body, merr := json.Marshal(cachedPreview{Result: result, Conflicts: conflicts}); merr == nil {
			if cerr := s.previewCache.Set(ctx, key, body, previewCacheTTL); cerr != nil {
				s.log.Warn("preview cache set failed", "error", cerr)
			}
		}
	}

	return result, conflicts, nil
}

func (s *previewService) ComputeCandidate(dbc dbctx.Context, group *types.PlanGroup, req PreviewRequest) (*engine.Candidate, engine.DateWindow, error) {
	today := s.now().UTC().Format(dateLayout)
	period, err := resolvePeriod(group, req.RescheduleWin, req.PlacementWin, today, req.IncludeToday)
	if err != nil {
		return nil, engine.DateWindow{}, err
	}

	var (
		contents   []*types.PlanContent
		current    []*types.Plan
		slots      []*types.TimeSlot
		exclusions []*types.ScheduleExclusion
		academies  []*types.AcademySchedule
	)
	loaders := []func(dbctx.Context) error{
		func(d dbctx.Context) (err error) {
			contents, err = s.contents.GetByGroupID(d, group.ID)
			return err
		},
		func(d dbctx.Context) (err error) {
			current, err = s.plans.GetActiveByGroup(d, group.ID, period.From, period.To)
			return err
		},
		func(d dbctx.Context) (err error) {
			slots, err = s.schedules.GetTimeSlotsByGroup(d, group.ID)
			return err
		},
		func(d dbctx.Context) (err error) {
			exclusions, err = s.schedules.GetExclusionsByGroup(d, group.ID)
			return err
		},
		func(d dbctx.Context) (err error) {
			academies, err = s.schedules.GetAcademiesByGroup(d, group.ID)
			return err
		},
	}
	if dbc.Tx != nil {
		// A gorm transaction is not safe for concurrent use; inside one the
		// loads run sequentially.
		for _, load := range loaders {
			if err := load(dbc); err != nil {
				return nil, engine.DateWindow{}, fmt.Errorf("preview: load group state: %w", err)
			}
		}
	} else {
		g, gctx := errgroup.WithContext(dbc.Ctx)
		for _, load := range loaders {
			load := load
			g.Go(func() error { return load(dbctx.Context{Ctx: gctx}) })
		}
		if err := g.Wait(); err != nil {
			return nil, engine.DateWindow{}, fmt.Errorf("preview: load group state: %w", err)
		}
	}

	if err := validateAdjustments(req.Adjustments, contents); err != nil {
		return nil, engine.DateWindow{}, err
	}

	var avail []availability.Window
	if len(slots) > 0 {
		avail, err = availability.Compute(
			derefSlots(slots),
			derefExclusions(exclusions),
			derefAcademies(academies),
			period.From, period.To,
			availability.Options{IncludeToday: req.IncludeToday, Today: today},
		)
		if err != nil {
			return nil, engine.DateWindow{}, err
		}
		if avail == nil {
			// Slots are configured but none fall in the period; that is an
			// empty availability set, not an absent one.
			avail = []availability.Window{}
		}
	}

	candidate, err := engine.BuildCandidate(derefPlans(current), req.Adjustments, period, period, avail)
	if err != nil {
		return nil, engine.DateWindow{}, err
	}
	return &candidate, period, nil
}

func (s *previewService) buildResult(candidate *engine.Candidate) *PreviewResult {
	affected := make(map[string]bool)
	for _, p := range candidate.Superseded {
		affected[p.PlanDate] = true
	}
	for _, p := range candidate.NewPlans {
		affected[p.PlanDate] = true
	}
	dates := make([]string, 0, len(affected))
	for d := range affected {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	minutes := 0
	for i := range candidate.NewPlans {
		p := &candidate.NewPlans[i]
		if p.Timed() {
			minutes += clockSpanMinutes(*p.StartTime, *p.EndTime)
			continue
		}
		units := p.PlannedEndPageOrTime - p.PlannedStartPageOrTime + 1
		minutes += s.pacing.EstimateMinutes(p.ContentType, units)
	}

	return &PreviewResult{
		PlansBeforeCount: len(candidate.Superseded),
		PlansAfterCount:  len(candidate.NewPlans),
		AffectedDates:    dates,
		EstimatedHours:   math.Round(float64(minutes)/60.0*10) / 10,
		PlansAfter:       append([]types.Plan{}, candidate.NewPlans...),
		Placements:       candidate.Placements,
	}
}

// cacheKey hashes everything the result depends on, including the group
// version so a commit invalidates older entries implicitly.
func (s *previewService) cacheKey(group *types.PlanGroup, req PreviewRequest) string {
	payload := struct {
		Req     PreviewRequest `json:"req"`
		Version int64          `json:"version"`
		Today   string         `json:"today"`
	}{Req: req, Version: group.Version, Today: s.now().UTC().Format(dateLayout)}
	body, err := json.Marshal(payload)
	if err != nil {
		return group.ID.String()
	}
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}

func validateAdjustments(adjustments []types.AdjustmentInput, contents []*types.PlanContent) error {
	known := make(map[uuid.UUID]bool, len(contents))
	for _, c := range contents {
		known[c.ID] = true
	}
	for _, adj := range adjustments {
		if err := adj.Validate(); err != nil {
			return err
		}
		if !known[adj.PlanContentID] {
			return fmt.Errorf("adjustment references unknown plan content %s: %w", adj.PlanContentID, apperrors.ErrInvalidArgument)
		}
	}
	return nil
}

func clockSpanMinutes(start, end string) int {
	var sh, sm, eh, em int
	if _, err := fmt.Sscanf(start, "%d:%d", &sh, &sm); err != nil {
		return 0
	}
	if _, err := fmt.Sscanf(end, "%d:%d", &eh, &em); err != nil {
		return 0
	}
	return (eh*60 + em) - (sh*60 + sm)
}

func derefPlans(in []*types.Plan) []types.Plan {
	out := make([]types.Plan, 0, len(in))
	for _, p := range in {
		out = append(out, *p)
	}
	return out
}

func derefSlots(in []*types.TimeSlot) []types.TimeSlot {
	out := make([]types.TimeSlot, 0, len(in))
	for _, s := range in {
		out = append(out, *s)
	}
	return out
}

func derefExclusions(in []*types.ScheduleExclusion) []types.ScheduleExclusion {
	out := make([]types.ScheduleExclusion, 0, len(in))
	for _, e := range in {
		out = append(out, *e)
	}
	return out
}

func derefAcademies(in []*types.AcademySchedule) []types.AcademySchedule {
	out := make([]types.AcademySchedule, 0, len(in))
	for _, a := range in {
		out = append(out, *a)
	}
	return out
}
