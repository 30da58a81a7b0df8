// Package engine turns a set of content adjustments into the candidate plan
// set that would exist after commit. It is pure: no persistence, no conflict
// validation, no clock reads.
package engine

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/planforge/planforge-backend/internal/domain/plan"
	apperrors "github.com/planforge/planforge-backend/internal/pkg/errors"
	"github.com/planforge/planforge-backend/internal/scheduler/availability"
)

// DateWindow is an inclusive [From, To] range of YYYY-MM-DD dates.
// The zero value means "unbounded".
type DateWindow struct {
	From string `json:"from"`
	To   string `json:"to"`
}

func (w DateWindow) Zero() bool { return w.From == "" && w.To == "" }

func (w DateWindow) Contains(date string) bool {
	if w.Zero() {
		return true
	}
	return date >= w.From && date <= w.To
}

// Placement reports how one adjustment's units landed. Placed is false when
// the placement window offered no dates; the caller must surface that rather
// than drop it.
type Placement struct {
	ContentID uuid.UUID `json:"content_id"`
	Requested int       `json:"requested_units"`
	PlanCount int       `json:"plan_count"`
	Placed    bool      `json:"placed"`
}

// Candidate is the full hypothetical plan set produced by the engine.
type Candidate struct {
	// Plans is everything that would exist after commit: untouched plans,
	// completed plans, and the freshly generated ones.
	Plans []plan.Plan
	// NewPlans are the freshly generated rows, in generation order. Their
	// IDs are uuid.Nil; the commit path assigns identities at insert.
	NewPlans []plan.Plan
	// Superseded are the active, non-completed plans the adjustments replace.
	Superseded []plan.Plan
	Placements []Placement
}

// BuildCandidate applies adjustments in caller order; order is observable
// because later adjustments may reference content already touched by earlier
// ones. When availability windows are supplied, new plans land only on dates
// carrying a window and inherit that date's first window as their time of
// day; otherwise every calendar day in the placement window is eligible and
// plans stay untimed.
func BuildCandidate(
	current []plan.Plan,
	adjustments []plan.AdjustmentInput,
	rescheduleWin, placementWin DateWindow,
	avail []availability.Window,
) (Candidate, error) {
	var c Candidate

	for _, adj := range adjustments {
		if err := adj.Validate(); err != nil {
			return Candidate{}, err
		}
	}

	placementDates, err := resolvePlacementDates(placementWin, avail)
	if err != nil {
		return Candidate{}, err
	}
	windowsByDate := availability.ByDate(avail)

	working := append([]plan.Plan(nil), current...)

	for _, adj := range adjustments {
		working, c.Superseded = supersede(working, c.Superseded, adj.Before.ContentID, rescheduleWin)

		if adj.Change == plan.ChangeRemove {
			continue
		}

		generated := distribute(*adj.After, placementDates, windowsByDate)
		c.NewPlans = append(c.NewPlans, generated...)
		c.Placements = append(c.Placements, Placement{
			ContentID: adj.After.ContentID,
			Requested: adj.After.Range.Units(),
			PlanCount: len(generated),
			Placed:    len(generated) > 0,
		})
	}

	c.Plans = append(append([]plan.Plan(nil), working...), c.NewPlans...)
	return c, nil
}

func resolvePlacementDates(placementWin DateWindow, avail []availability.Window) ([]string, error) {
	if avail != nil {
		var dates []string
		for _, d := range availability.Dates(avail) {
			if placementWin.Contains(d) {
				dates = append(dates, d)
			}
		}
		return dates, nil
	}
	if placementWin.Zero() {
		return nil, fmt.Errorf("placement window: %w: neither availability nor a date range supplied", apperrors.ErrInvalidArgument)
	}
	return calendarDays(placementWin)
}

// supersede moves every reschedulable plan for contentID inside the window
// from working to superseded. Completed plans stay in working untouched.
func supersede(working, superseded []plan.Plan, contentID uuid.UUID, window DateWindow) ([]plan.Plan, []plan.Plan) {
	kept := working[:0]
	for _, p := range working {
		if p.ContentID == contentID && p.Reschedulable() && window.Contains(p.PlanDate) {
			superseded = append(superseded, p)
			continue
		}
		kept = append(kept, p)
	}
	return kept, superseded
}

// distribute splits the snapshot's range into sequential sub-ranges, one plan
// per date, units split evenly with the remainder landing on the earliest
// dates. A zero-length range (start == end) still yields exactly one plan.
func distribute(
	after plan.ContentSnapshot,
	dates []string,
	windowsByDate map[string][]availability.Window,
) []plan.Plan {
	amount := after.Range.Units()
	n := len(dates)
	if n == 0 || amount <= 0 {
		return nil
	}

	base := amount / n
	rem := amount % n

	var out []plan.Plan
	cursor := after.Range.Start
	for i, date := range dates {
		units := base
		if i < rem {
			units++
		}
		if units == 0 {
			continue
		}

		p := plan.Plan{
			ContentID:              after.ContentID,
			ContentType:            after.ContentType,
			PlanDate:               date,
			PlannedStartPageOrTime: cursor,
			PlannedEndPageOrTime:   cursor + units - 1,
			Status:                 plan.StatusNotStarted,
			IsActive:               true,
		}
		if ws := windowsByDate[date]; len(ws) > 0 {
			start, end := ws[0].Start, ws[0].End
			p.StartTime = &start
			p.EndTime = &end
		}
		out = append(out, p)
		cursor += units
	}
	return out
}

func parseDate(v string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return time.Time{}, fmt.Errorf("date %q: %w", v, apperrors.ErrInvalidArgument)
	}
	return t, nil
}

func calendarDays(window DateWindow) ([]string, error) {
	from, err := parseDate(window.From)
	if err != nil {
		return nil, err
	}
	to, err := parseDate(window.To)
	if err != nil {
		return nil, err
	}
	if to.Before(from) {
		return nil, fmt.Errorf("placement window %s..%s: %w: end before start", window.From, window.To, apperrors.ErrInvalidArgument)
	}
	var dates []string
	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		dates = append(dates, day.Format("2006-01-02"))
	}
	return dates, nil
}
