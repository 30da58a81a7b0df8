package engine

import (
	"errors"
	"reflect"
	"testing"

	"github.com/google/uuid"

	"github.com/planforge/planforge-backend/internal/domain/plan"
	apperrors "github.com/planforge/planforge-backend/internal/pkg/errors"
	"github.com/planforge/planforge-backend/internal/scheduler/availability"
)

func activePlan(contentID uuid.UUID, date string, start, end int) plan.Plan {
	return plan.Plan{
		ID:                     uuid.New(),
		ContentID:              contentID,
		ContentType:            plan.ContentTypeBook,
		PlanDate:               date,
		PlannedStartPageOrTime: start,
		PlannedEndPageOrTime:   end,
		Status:                 plan.StatusNotStarted,
		IsActive:               true,
	}
}

func rangeAdjustment(t *testing.T, contentID uuid.UUID, before, after plan.Range) plan.AdjustmentInput {
	t.Helper()
	adj, err := plan.NewRangeAdjustment(contentID, plan.ContentSnapshot{
		ContentID:   contentID,
		ContentType: plan.ContentTypeBook,
		Range:       before,
	}, plan.ContentSnapshot{
		ContentID:   contentID,
		ContentType: plan.ContentTypeBook,
		Range:       after,
	})
	if err != nil {
		t.Fatalf("build adjustment: %v", err)
	}
	return adj
}

func TestBuildCandidate_DistributesUnitsEvenly(t *testing.T) {
	contentID := uuid.New()
	current := []plan.Plan{
		activePlan(contentID, "2025-03-03", 1, 25),
		activePlan(contentID, "2025-03-04", 26, 50),
	}
	adj := rangeAdjustment(t, contentID, plan.Range{Start: 1, End: 50}, plan.Range{Start: 1, End: 50})
	win := DateWindow{From: "2025-03-03", To: "2025-03-07"}

	c, err := BuildCandidate(current, []plan.AdjustmentInput{adj}, win, win, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(c.Superseded) != 2 {
		t.Fatalf("expected 2 superseded plans, got %d", len(c.Superseded))
	}
	if len(c.NewPlans) != 5 {
		t.Fatalf("expected 5 new plans, got %d", len(c.NewPlans))
	}
	for i, p := range c.NewPlans {
		if got := p.PlannedEndPageOrTime - p.PlannedStartPageOrTime + 1; got != 10 {
			t.Fatalf("plan %d: expected 10 units, got %d", i, got)
		}
		if p.ID != uuid.Nil {
			t.Fatalf("plan %d: expected unset id before commit", i)
		}
	}
	if c.NewPlans[0].PlannedStartPageOrTime != 1 || c.NewPlans[4].PlannedEndPageOrTime != 50 {
		t.Fatalf("expected sequential coverage of 1..50, got %+v", c.NewPlans)
	}
}

func TestBuildCandidate_ConservesTotalUnits(t *testing.T) {
	contentID := uuid.New()
	adj := rangeAdjustment(t, contentID, plan.Range{Start: 11, End: 47}, plan.Range{Start: 11, End: 47})
	win := DateWindow{From: "2025-03-03", To: "2025-03-09"}

	c, err := BuildCandidate(nil, []plan.AdjustmentInput{adj}, win, win, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	total := 0
	prevEnd := 10
	for _, p := range c.NewPlans {
		if p.PlannedStartPageOrTime != prevEnd+1 {
			t.Fatalf("gap or overlap at %d..%d after %d", p.PlannedStartPageOrTime, p.PlannedEndPageOrTime, prevEnd)
		}
		total += p.PlannedEndPageOrTime - p.PlannedStartPageOrTime + 1
		prevEnd = p.PlannedEndPageOrTime
	}
	if total != 37 {
		t.Fatalf("expected 37 units total, got %d", total)
	}
}

func TestBuildCandidate_RemainderLandsOnEarliestDates(t *testing.T) {
	contentID := uuid.New()
	adj := rangeAdjustment(t, contentID, plan.Range{Start: 1, End: 11}, plan.Range{Start: 1, End: 11})
	win := DateWindow{From: "2025-03-03", To: "2025-03-05"}

	c, err := BuildCandidate(nil, []plan.AdjustmentInput{adj}, win, win, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	units := make([]int, 0, len(c.NewPlans))
	for _, p := range c.NewPlans {
		units = append(units, p.PlannedEndPageOrTime-p.PlannedStartPageOrTime+1)
	}
	if !reflect.DeepEqual(units, []int{4, 4, 3}) {
		t.Fatalf("expected 4,4,3 split, got %v", units)
	}
}

func TestBuildCandidate_CompletedPlansStayUntouched(t *testing.T) {
	contentID := uuid.New()
	done := activePlan(contentID, "2025-03-03", 1, 10)
	done.Status = plan.StatusCompleted
	current := []plan.Plan{
		done,
		activePlan(contentID, "2025-03-04", 11, 20),
	}
	adj := rangeAdjustment(t, contentID, plan.Range{Start: 11, End: 20}, plan.Range{Start: 11, End: 20})
	win := DateWindow{From: "2025-03-03", To: "2025-03-06"}

	c, err := BuildCandidate(current, []plan.AdjustmentInput{adj}, win, win, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(c.Superseded) != 1 || c.Superseded[0].ID == done.ID {
		t.Fatalf("completed plan must not be superseded: %+v", c.Superseded)
	}
	found := false
	for _, p := range c.Plans {
		if p.ID == done.ID {
			found = true
			if !reflect.DeepEqual(p, done) {
				t.Fatalf("completed plan was modified: %+v", p)
			}
		}
	}
	if !found {
		t.Fatalf("completed plan missing from candidate set")
	}
}

func TestBuildCandidate_ZeroLengthRangeYieldsOnePlan(t *testing.T) {
	contentID := uuid.New()
	adj := rangeAdjustment(t, contentID, plan.Range{Start: 7, End: 7}, plan.Range{Start: 7, End: 7})
	win := DateWindow{From: "2025-03-03", To: "2025-03-07"}

	c, err := BuildCandidate(nil, []plan.AdjustmentInput{adj}, win, win, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(c.NewPlans) != 1 {
		t.Fatalf("expected exactly one plan, got %d", len(c.NewPlans))
	}
	p := c.NewPlans[0]
	if p.PlannedStartPageOrTime != 7 || p.PlannedEndPageOrTime != 7 {
		t.Fatalf("expected range 7..7, got %d..%d", p.PlannedStartPageOrTime, p.PlannedEndPageOrTime)
	}
}

func TestBuildCandidate_NoAvailableDatesReportsUnplaced(t *testing.T) {
	contentID := uuid.New()
	adj := rangeAdjustment(t, contentID, plan.Range{Start: 1, End: 10}, plan.Range{Start: 1, End: 10})
	win := DateWindow{From: "2025-03-03", To: "2025-03-07"}

	// Availability supplied but empty for the window: nothing can land.
	c, err := BuildCandidate(nil, []plan.AdjustmentInput{adj}, win, win, []availability.Window{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(c.NewPlans) != 0 {
		t.Fatalf("expected no plans, got %d", len(c.NewPlans))
	}
	if len(c.Placements) != 1 || c.Placements[0].Placed {
		t.Fatalf("expected an unplaced placement report, got %+v", c.Placements)
	}
	if c.Placements[0].Requested != 10 {
		t.Fatalf("expected 10 requested units, got %d", c.Placements[0].Requested)
	}
}

func TestBuildCandidate_NewPlansInheritFirstWindowOfDate(t *testing.T) {
	contentID := uuid.New()
	adj := rangeAdjustment(t, contentID, plan.Range{Start: 1, End: 4}, plan.Range{Start: 1, End: 4})
	win := DateWindow{From: "2025-03-03", To: "2025-03-04"}
	avail := []availability.Window{
		{Date: "2025-03-03", Start: "07:00", End: "08:00"},
		{Date: "2025-03-03", Start: "19:00", End: "21:00"},
		{Date: "2025-03-04", Start: "18:00", End: "20:00"},
	}

	c, err := BuildCandidate(nil, []plan.AdjustmentInput{adj}, win, win, avail)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(c.NewPlans) != 2 {
		t.Fatalf("expected 2 plans, got %d", len(c.NewPlans))
	}
	if *c.NewPlans[0].StartTime != "07:00" || *c.NewPlans[0].EndTime != "08:00" {
		t.Fatalf("unexpected time slot: %v-%v", *c.NewPlans[0].StartTime, *c.NewPlans[0].EndTime)
	}
	if *c.NewPlans[1].StartTime != "18:00" {
		t.Fatalf("unexpected second-day slot: %v", *c.NewPlans[1].StartTime)
	}
}

func TestBuildCandidate_RemoveSupersedesWithoutReplacement(t *testing.T) {
	contentID := uuid.New()
	other := uuid.New()
	current := []plan.Plan{
		activePlan(contentID, "2025-03-03", 1, 10),
		activePlan(other, "2025-03-03", 1, 5),
	}
	adj, err := plan.NewRemoveAdjustment(contentID, plan.ContentSnapshot{
		ContentID:   contentID,
		ContentType: plan.ContentTypeBook,
		Range:       plan.Range{Start: 1, End: 10},
	})
	if err != nil {
		t.Fatalf("build adjustment: %v", err)
	}
	win := DateWindow{From: "2025-03-03", To: "2025-03-07"}

	c, err := BuildCandidate(current, []plan.AdjustmentInput{adj}, win, win, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(c.Superseded) != 1 || c.Superseded[0].ContentID != contentID {
		t.Fatalf("expected the removed content superseded, got %+v", c.Superseded)
	}
	if len(c.NewPlans) != 0 {
		t.Fatalf("remove must not generate plans, got %d", len(c.NewPlans))
	}
	if len(c.Plans) != 1 || c.Plans[0].ContentID != other {
		t.Fatalf("unrelated content must survive, got %+v", c.Plans)
	}
}

func TestBuildCandidate_RescheduleWindowLimitsSupersede(t *testing.T) {
	contentID := uuid.New()
	inside := activePlan(contentID, "2025-03-04", 11, 20)
	outside := activePlan(contentID, "2025-03-20", 21, 30)
	adj := rangeAdjustment(t, contentID, plan.Range{Start: 11, End: 20}, plan.Range{Start: 11, End: 20})

	c, err := BuildCandidate(
		[]plan.Plan{inside, outside},
		[]plan.AdjustmentInput{adj},
		DateWindow{From: "2025-03-03", To: "2025-03-07"},
		DateWindow{From: "2025-03-05", To: "2025-03-07"},
		nil,
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(c.Superseded) != 1 || c.Superseded[0].ID != inside.ID {
		t.Fatalf("expected only the in-window plan superseded, got %+v", c.Superseded)
	}
}

func TestBuildCandidate_RejectsMissingWindowAndAvailability(t *testing.T) {
	contentID := uuid.New()
	adj := rangeAdjustment(t, contentID, plan.Range{Start: 1, End: 10}, plan.Range{Start: 1, End: 10})

	_, err := BuildCandidate(nil, []plan.AdjustmentInput{adj}, DateWindow{}, DateWindow{}, nil)
	if !errors.Is(err, apperrors.ErrInvalidArgument) {
		t.Fatalf("expected invalid argument, got %v", err)
	}
}

func TestBuildCandidate_Deterministic(t *testing.T) {
	contentID := uuid.New()
	current := []plan.Plan{activePlan(contentID, "2025-03-03", 1, 50)}
	adj := rangeAdjustment(t, contentID, plan.Range{Start: 1, End: 50}, plan.Range{Start: 1, End: 50})
	win := DateWindow{From: "2025-03-03", To: "2025-03-09"}

	first, err := BuildCandidate(current, []plan.AdjustmentInput{adj}, win, win, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := BuildCandidate(current, []plan.AdjustmentInput{adj}, win, win, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d differs from first", i)
		}
	}
}
