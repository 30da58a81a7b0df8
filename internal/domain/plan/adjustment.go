package plan

import (
	"fmt"

	"github.com/google/uuid"

	apperrors "github.com/planforge/planforge-backend/internal/pkg/errors"
)

type ChangeType string

const (
	ChangeRange     ChangeType = "range"
	ChangeDateShift ChangeType = "date"
	ChangeRemove    ChangeType = "remove"
)

// Range is an inclusive page/episode span. Start <= End always; Units is the
// amount of work it represents.
type Range struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

func (r Range) Units() int { return r.End - r.Start + 1 }

func (r Range) Valid() bool { return r.Start <= r.End }

// ContentSnapshot captures the content identity and range an adjustment refers to.
type ContentSnapshot struct {
	ContentID   uuid.UUID `json:"content_id"`
	ContentType string    `json:"content_type"`
	Range       Range     `json:"range"`
}

// AdjustmentInput is one requested change to a plan content. Build values
// through the constructors below; they keep illegal shapes (a Remove with an
// After, a Range with an inverted span) unrepresentable.
type AdjustmentInput struct {
	PlanContentID uuid.UUID        `json:"plan_content_id"`
	Change        ChangeType       `json:"change_type"`
	Before        ContentSnapshot  `json:"before"`
	After         *ContentSnapshot `json:"after,omitempty"`
}

func NewRangeAdjustment(planContentID uuid.UUID, before, after ContentSnapshot) (AdjustmentInput, error) {
	if !before.Range.Valid() || !after.Range.Valid() {
		return AdjustmentInput{}, fmt.Errorf("range adjustment %s: %w: start must not exceed end", planContentID, apperrors.ErrInvalidArgument)
	}
	a := after
	return AdjustmentInput{
		PlanContentID: planContentID,
		Change:        ChangeRange,
		Before:        before,
		After:         &a,
	}, nil
}

func NewDateShiftAdjustment(planContentID uuid.UUID, before, after ContentSnapshot) (AdjustmentInput, error) {
	if !before.Range.Valid() || !after.Range.Valid() {
		return AdjustmentInput{}, fmt.Errorf("date adjustment %s: %w: start must not exceed end", planContentID, apperrors.ErrInvalidArgument)
	}
	a := after
	return AdjustmentInput{
		PlanContentID: planContentID,
		Change:        ChangeDateShift,
		Before:        before,
		After:         &a,
	}, nil
}

func NewRemoveAdjustment(planContentID uuid.UUID, before ContentSnapshot) (AdjustmentInput, error) {
	if !before.Range.Valid() {
		return AdjustmentInput{}, fmt.Errorf("remove adjustment %s: %w: start must not exceed end", planContentID, apperrors.ErrInvalidArgument)
	}
	return AdjustmentInput{
		PlanContentID: planContentID,
		Change:        ChangeRemove,
		Before:        before,
	}, nil
}

// Validate re-checks an adjustment that arrived over the wire rather than
// through a constructor.
func (a AdjustmentInput) Validate() error {
	switch a.Change {
	case ChangeRange, ChangeDateShift:
		if a.After == nil {
			return fmt.Errorf("%s adjustment %s: %w: missing after snapshot", a.Change, a.PlanContentID, apperrors.ErrInvalidArgument)
		}
		if !a.Before.Range.Valid() || !a.After.Range.Valid() {
			return fmt.Errorf("%s adjustment %s: %w: start must not exceed end", a.Change, a.PlanContentID, apperrors.ErrInvalidArgument)
		}
	case ChangeRemove:
		if a.After != nil {
			return fmt.Errorf("remove adjustment %s: %w: unexpected after snapshot", a.PlanContentID, apperrors.ErrInvalidArgument)
		}
		if !a.Before.Range.Valid() {
			return fmt.Errorf("remove adjustment %s: %w: start must not exceed end", a.PlanContentID, apperrors.ErrInvalidArgument)
		}
	default:
		return fmt.Errorf("adjustment %s: %w: unknown change type %q", a.PlanContentID, apperrors.ErrInvalidArgument, a.Change)
	}
	return nil
}
