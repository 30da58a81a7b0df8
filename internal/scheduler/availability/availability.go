// Package availability computes the date+time windows on which study is
// permitted. It is pure: no I/O, no clock reads, identical inputs always
// produce identical output.
package availability

import (
	"fmt"
	"sort"
	"time"

	"github.com/planforge/planforge-backend/internal/domain/plan"
	apperrors "github.com/planforge/planforge-backend/internal/pkg/errors"
)

const dateLayout = "2006-01-02"

// Window is one bookable interval on a concrete date.
type Window struct {
	Date  string `json:"date"`
	Start string `json:"start_time"`
	End   string `json:"end_time"`
}

// Options tune the computation. Today is injected rather than read from the
// clock so two calls with identical inputs return identical output.
type Options struct {
	// IncludeToday keeps windows on the Today date; otherwise placement
	// starts strictly after Today.
	IncludeToday bool
	// Today in YYYY-MM-DD form. Empty disables the today cutoff entirely.
	Today string
}

// Compute expands weekly recurring slots over [from, to], removes excluded
// dates, subtracts academy commitments (padded by travel time), and returns
// the merged windows ordered by date then start time. Dates with zero
// availability are absent from the result. Exclusions always win over
// recurring slots on the same date.
func Compute(
	slots []plan.TimeSlot,
	exclusions []plan.ScheduleExclusion,
	academies []plan.AcademySchedule,
	from, to string,
	opts Options,
) ([]Window, error) {
	fromDay, err := time.Parse(dateLayout, from)
	if err != nil {
		return nil, fmt.Errorf("availability window start %q: %w", from, apperrors.ErrInvalidArgument)
	}
	toDay, err := time.Parse(dateLayout, to)
	if err != nil {
		return nil, fmt.Errorf("availability window end %q: %w", to, apperrors.ErrInvalidArgument)
	}
	if toDay.Before(fromDay) {
		return nil, fmt.Errorf("availability window %s..%s: %w: end before start", from, to, apperrors.ErrInvalidArgument)
	}

	slotsByWeekday := make(map[int][]span, 7)
	for _, s := range slots {
		sp, err := parseSpan(s.StartTime, s.EndTime)
		if err != nil {
			return nil, fmt.Errorf("time slot weekday=%d: %w", s.Weekday, err)
		}
		slotsByWeekday[s.Weekday] = append(slotsByWeekday[s.Weekday], sp)
	}
	for wd := range slotsByWeekday {
		sortSpans(slotsByWeekday[wd])
	}

	academiesByWeekday := make(map[int][]span, 7)
	for _, a := range academies {
		sp, err := parseSpan(a.StartTime, a.EndTime)
		if err != nil {
			return nil, fmt.Errorf("academy schedule weekday=%d: %w", a.Weekday, err)
		}
		// Travel time blocks study on both sides of the commitment.
		sp.start -= a.TravelTime
		sp.end += a.TravelTime
		if sp.start < 0 {
			sp.start = 0
		}
		if sp.end > 24*60 {
			sp.end = 24 * 60
		}
		academiesByWeekday[a.Weekday] = append(academiesByWeekday[a.Weekday], sp)
	}

	excluded := make(map[string]bool, len(exclusions))
	for _, e := range exclusions {
		excluded[e.ExclusionDate] = true
	}

	var out []Window
	for day := fromDay; !day.After(toDay); day = day.AddDate(0, 0, 1) {
		date := day.Format(dateLayout)
		if opts.Today != "" {
			if date < opts.Today {
				continue
			}
			if date == opts.Today && !opts.IncludeToday {
				continue
			}
		}
		if excluded[date] {
			continue
		}

		free := append([]span(nil), slotsByWeekday[int(day.Weekday())]...)
		for _, busy := range academiesByWeekday[int(day.Weekday())] {
			free = subtractSpan(free, busy)
		}
		for _, sp := range mergeSpans(free) {
			out = append(out, Window{
				Date:  date,
				Start: formatClock(sp.start),
				End:   formatClock(sp.end),
			})
		}
	}
	return out, nil
}

// Dates returns the distinct dates carrying at least one window, in order.
func Dates(windows []Window) []string {
	var dates []string
	seen := make(map[string]bool, len(windows))
	for _, w := range windows {
		if !seen[w.Date] {
			seen[w.Date] = true
			dates = append(dates, w.Date)
		}
	}
	return dates
}

// ByDate groups windows per date, preserving window order within a date.
func ByDate(windows []Window) map[string][]Window {
	m := make(map[string][]Window)
	for _, w := range windows {
		m[w.Date] = append(m[w.Date], w)
	}
	return m
}

type span struct {
	start int // minutes since midnight
	end   int
}

func parseClock(v string) (int, error) {
	var h, m int
	if _, err := fmt.Sscanf(v, "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("clock value %q: %w", v, apperrors.ErrInvalidArgument)
	}
	// 24:00 is a valid end-of-day boundary; anything past it is not.
	if h < 0 || h > 24 || m < 0 || m > 59 || (h == 24 && m > 0) {
		return 0, fmt.Errorf("clock value %q: %w", v, apperrors.ErrInvalidArgument)
	}
	return h*60 + m, nil
}

func formatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

func parseSpan(start, end string) (span, error) {
	s, err := parseClock(start)
	if err != nil {
		return span{}, err
	}
	e, err := parseClock(end)
	if err != nil {
		return span{}, err
	}
	if e <= s {
		return span{}, fmt.Errorf("time range %s..%s: %w: end not after start", start, end, apperrors.ErrInvalidArgument)
	}
	return span{start: s, end: e}, nil
}

func sortSpans(spans []span) {
	sort.Slice(spans, func(i, j int) bool {
		if spans[i].start != spans[j].start {
			return spans[i].start < spans[j].start
		}
		return spans[i].end < spans[j].end
	})
}

// subtractSpan removes busy from every span in free, splitting spans that
// straddle it.
func subtractSpan(free []span, busy span) []span {
	var out []span
	for _, f := range free {
		if busy.end <= f.start || busy.start >= f.end {
			out = append(out, f)
			continue
		}
		if busy.start > f.start {
			out = append(out, span{start: f.start, end: busy.start})
		}
		if busy.end < f.end {
			out = append(out, span{start: busy.end, end: f.end})
		}
	}
	return out
}

// mergeSpans coalesces overlapping or adjacent spans into maximal intervals.
func mergeSpans(spans []span) []span {
	if len(spans) == 0 {
		return nil
	}
	sorted := append([]span(nil), spans...)
	sortSpans(sorted)

	out := []span{sorted[0]}
	for _, sp := range sorted[1:] {
		last := &out[len(out)-1]
		if sp.start <= last.end {
			if sp.end > last.end {
				last.end = sp.end
			}
			continue
		}
		out = append(out, sp)
	}
	return out
}
