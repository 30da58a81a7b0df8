// Package wizard models the reschedule flow as an explicit state machine:
// ContentSelect -> Adjust -> PreviewConfirm. Each transition validates its
// payload and carries it forward; the engine itself knows nothing about the
// flow.
package wizard

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/planforge/planforge-backend/internal/domain/plan"
	apperrors "github.com/planforge/planforge-backend/internal/pkg/errors"
	"github.com/planforge/planforge-backend/internal/scheduler/engine"
)

type State string

const (
	StateContentSelect  State = "content_select"
	StateAdjust         State = "adjust"
	StatePreviewConfirm State = "preview_confirm"
)

// Request is the validated payload the completed flow hands to the preview
// and commit services.
type Request struct {
	GroupID       uuid.UUID
	Adjustments   []plan.AdjustmentInput
	RescheduleWin engine.DateWindow
	PlacementWin  engine.DateWindow
	IncludeToday  bool
}

// Flow builds a Request step by step. A Flow is single-use and not safe for
// concurrent use.
type Flow struct {
	state       State
	groupID     uuid.UUID
	selected    map[uuid.UUID]bool
	adjustments []plan.AdjustmentInput

	rescheduleWin engine.DateWindow
	placementWin  engine.DateWindow
	includeToday  bool
}

func NewFlow(groupID uuid.UUID) (*Flow, error) {
	if groupID == uuid.Nil {
		return nil, fmt.Errorf("wizard: %w: missing group id", apperrors.ErrInvalidArgument)
	}
	return &Flow{state: StateContentSelect, groupID: groupID, selected: make(map[uuid.UUID]bool)}, nil
}

func (f *Flow) State() State { return f.state }

// SelectContents records which plan contents the adjustments may touch and
// advances to Adjust.
func (f *Flow) SelectContents(planContentIDs []uuid.UUID) error {
	if f.state != StateContentSelect {
		return f.transitionError(StateContentSelect)
	}
	if len(planContentIDs) == 0 {
		return fmt.Errorf("wizard: %w: no contents selected", apperrors.ErrInvalidArgument)
	}
	for _, id := range planContentIDs {
		if id == uuid.Nil {
			return fmt.Errorf("wizard: %w: nil plan content id", apperrors.ErrInvalidArgument)
		}
		f.selected[id] = true
	}
	f.state = StateAdjust
	return nil
}

// SetAdjustments validates the adjustments against the selected contents and
// records the date windows, advancing to PreviewConfirm.
func (f *Flow) SetAdjustments(
	adjustments []plan.AdjustmentInput,
	rescheduleWin, placementWin engine.DateWindow,
	includeToday bool,
) error {
	if f.state != StateAdjust {
		return f.transitionError(StateAdjust)
	}
	if len(adjustments) == 0 {
		return fmt.Errorf("wizard: %w: no adjustments supplied", apperrors.ErrInvalidArgument)
	}
	for _, adj := range adjustments {
		if err := adj.Validate(); err != nil {
			return err
		}
		if !f.selected[adj.PlanContentID] {
			return fmt.Errorf("wizard: %w: adjustment references unselected content %s", apperrors.ErrInvalidArgument, adj.PlanContentID)
		}
	}
	f.adjustments = adjustments
	f.rescheduleWin = rescheduleWin
	f.placementWin = placementWin
	f.includeToday = includeToday
	f.state = StatePreviewConfirm
	return nil
}

// BuildRequest hands out the finished payload; valid only in PreviewConfirm.
func (f *Flow) BuildRequest() (Request, error) {
	if f.state != StatePreviewConfirm {
		return Request{}, f.transitionError(StatePreviewConfirm)
	}
	return Request{
		GroupID:       f.groupID,
		Adjustments:   append([]plan.AdjustmentInput(nil), f.adjustments...),
		RescheduleWin: f.rescheduleWin,
		PlacementWin:  f.placementWin,
		IncludeToday:  f.includeToday,
	}, nil
}

func (f *Flow) transitionError(want State) error {
	return fmt.Errorf("wizard: %w: step requires state %q, flow is in %q", apperrors.ErrInvalidArgument, want, f.state)
}
