package services

import (
	"fmt"
	"time"

	types "github.com/planforge/planforge-backend/internal/domain/plan"
	apperrors "github.com/planforge/planforge-backend/internal/pkg/errors"
	"github.com/planforge/planforge-backend/internal/scheduler/engine"
)

const dateLayout = "2006-01-02"

// resolvePeriod decides the effective window plans are regenerated into.
// An explicit placement window wins. Otherwise the reschedule window is
// clamped to start after today (or at today when includeToday is set), and
// with no windows at all the remainder of the group period is used.
func resolvePeriod(
	group *types.PlanGroup,
	rescheduleWin, placementWin engine.DateWindow,
	today string,
	includeToday bool,
) (engine.DateWindow, error) {
	if !placementWin.Zero() {
		if placementWin.From > placementWin.To {
			return engine.DateWindow{}, fmt.Errorf("placement window %s..%s: %w: end before start", placementWin.From, placementWin.To, apperrors.ErrInvalidArgument)
		}
		win := clampToPeriod(placementWin, group)
		if win.From > win.To {
			return engine.DateWindow{}, fmt.Errorf("placement window %s..%s: %w: outside group period", placementWin.From, placementWin.To, apperrors.ErrInvalidArgument)
		}
		return win, nil
	}

	earliest := today
	if !includeToday {
		earliest = nextDay(today)
	}

	win := engine.DateWindow{From: earliest, To: group.PeriodEnd}
	if !rescheduleWin.Zero() {
		win.To = rescheduleWin.To
		if rescheduleWin.From > win.From {
			win.From = rescheduleWin.From
		}
	}
	win = clampToPeriod(win, group)
	if win.From > win.To {
		return engine.DateWindow{}, fmt.Errorf("reschedule period %s..%s: %w: no days remain after today", win.From, win.To, apperrors.ErrInvalidArgument)
	}
	return win, nil
}

// clampToPeriod keeps generated plan dates inside the group period.
func clampToPeriod(win engine.DateWindow, group *types.PlanGroup) engine.DateWindow {
	if win.From < group.PeriodStart {
		win.From = group.PeriodStart
	}
	if win.To > group.PeriodEnd {
		win.To = group.PeriodEnd
	}
	return win
}

func nextDay(date string) string {
	t, err := time.Parse(dateLayout, date)
	if err != nil {
		return date
	}
	return t.AddDate(0, 0, 1).Format(dateLayout)
}
