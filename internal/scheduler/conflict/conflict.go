// Package conflict scans a candidate plan set for time-range overlaps and
// daily workload overload. Conflicts are advisory; the engine never rejects a
// schedule on its own.
package conflict

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/planforge/planforge-backend/internal/domain/plan"
)

type Type string

const (
	TypeOverlap  Type = "overlap"
	TypeOverload Type = "overload"
)

// DefaultMaxHoursPerDay is the workload ceiling applied when the caller
// passes no explicit limit.
const DefaultMaxHoursPerDay = 12.0

type Conflict struct {
	Type   Type   `json:"type"`
	Date   string `json:"date"`
	Detail string `json:"detail"`
	// PlanIDs identifies the pair for overlap conflicts; empty for overload.
	PlanIDs []uuid.UUID `json:"plan_ids,omitempty"`
	// TotalHours carries the computed daily total for overload conflicts.
	TotalHours float64 `json:"total_hours,omitempty"`
}

// Detect returns every overlap and overload in the candidate set. Input is
// never mutated. Plans without a time of day are exempt from overlap checks
// and contribute nothing to daily totals; inactive and completed plans are
// ignored entirely. maxHoursPerDay <= 0 selects the default ceiling.
func Detect(plans []plan.Plan, maxHoursPerDay float64) []Conflict {
	if maxHoursPerDay <= 0 {
		maxHoursPerDay = DefaultMaxHoursPerDay
	}

	byDate := make(map[string][]plan.Plan)
	for _, p := range plans {
		if !p.Reschedulable() {
			continue
		}
		byDate[p.PlanDate] = append(byDate[p.PlanDate], p)
	}

	dates := make([]string, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	var out []Conflict
	for _, date := range dates {
		timed := timedPlans(byDate[date])

		for i := 0; i < len(timed); i++ {
			for j := i + 1; j < len(timed); j++ {
				if overlaps(timed[i], timed[j]) {
					out = append(out, Conflict{
						Type: TypeOverlap,
						Date: date,
						Detail: fmt.Sprintf("plans overlap between %s-%s and %s-%s",
							*timed[i].StartTime, *timed[i].EndTime, *timed[j].StartTime, *timed[j].EndTime),
						PlanIDs: []uuid.UUID{timed[i].ID, timed[j].ID},
					})
				}
			}
		}

		total := 0.0
		for _, p := range timed {
			total += hours(p)
		}
		if total > maxHoursPerDay {
			out = append(out, Conflict{
				Type:       TypeOverload,
				Date:       date,
				Detail:     fmt.Sprintf("%.1f scheduled hours exceed the %.1fh daily ceiling", total, maxHoursPerDay),
				TotalHours: total,
			})
		}
	}
	return out
}

// timedPlans filters to plans carrying a parseable time of day, ordered by
// start time so conflict output is deterministic. A row whose stored times do
// not parse would otherwise deflate daily totals, so it is treated as untimed.
func timedPlans(plans []plan.Plan) []plan.Plan {
	var timed []plan.Plan
	for _, p := range plans {
		if !p.Timed() {
			continue
		}
		if _, ok := clockMinutes(*p.StartTime); !ok {
			continue
		}
		if _, ok := clockMinutes(*p.EndTime); !ok {
			continue
		}
		timed = append(timed, p)
	}
	sort.Slice(timed, func(i, j int) bool {
		if *timed[i].StartTime != *timed[j].StartTime {
			return *timed[i].StartTime < *timed[j].StartTime
		}
		if *timed[i].EndTime != *timed[j].EndTime {
			return *timed[i].EndTime < *timed[j].EndTime
		}
		return timed[i].ID.String() < timed[j].ID.String()
	})
	return timed
}

// overlaps reports whether two timed plans intersect as half-open [start, end)
// intervals; plans that merely touch do not conflict.
func overlaps(a, b plan.Plan) bool {
	return *a.StartTime < *b.EndTime && *b.StartTime < *a.EndTime
}

// hours is only called on plans that passed timedPlans, so both clocks parse.
func hours(p plan.Plan) float64 {
	start, _ := clockMinutes(*p.StartTime)
	end, _ := clockMinutes(*p.EndTime)
	return float64(end-start) / 60.0
}

func clockMinutes(v string) (int, bool) {
	var h, m int
	if _, err := fmt.Sscanf(v, "%d:%d", &h, &m); err != nil {
		return 0, false
	}
	if h < 0 || h > 24 || m < 0 || m > 59 || (h == 24 && m > 0) {
		return 0, false
	}
	return h*60 + m, true
}
