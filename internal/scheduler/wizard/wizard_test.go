package wizard

import (
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/planforge/planforge-backend/internal/domain/plan"
	apperrors "github.com/planforge/planforge-backend/internal/pkg/errors"
	"github.com/planforge/planforge-backend/internal/scheduler/engine"
)

func testAdjustment(t *testing.T, contentID uuid.UUID) plan.AdjustmentInput {
	t.Helper()
	snap := plan.ContentSnapshot{
		ContentID:   contentID,
		ContentType: plan.ContentTypeBook,
		Range:       plan.Range{Start: 1, End: 10},
	}
	adj, err := plan.NewRangeAdjustment(contentID, snap, snap)
	if err != nil {
		t.Fatalf("build adjustment: %v", err)
	}
	return adj
}

func TestFlow_HappyPath(t *testing.T) {
	groupID := uuid.New()
	contentID := uuid.New()
	win := engine.DateWindow{From: "2025-03-03", To: "2025-03-09"}

	f, err := NewFlow(groupID)
	if err != nil {
		t.Fatalf("new flow: %v", err)
	}
	if f.State() != StateContentSelect {
		t.Fatalf("expected initial state %q, got %q", StateContentSelect, f.State())
	}
	if err := f.SelectContents([]uuid.UUID{contentID}); err != nil {
		t.Fatalf("select contents: %v", err)
	}
	if err := f.SetAdjustments([]plan.AdjustmentInput{testAdjustment(t, contentID)}, win, win, false); err != nil {
		t.Fatalf("set adjustments: %v", err)
	}
	req, err := f.BuildRequest()
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if req.GroupID != groupID || len(req.Adjustments) != 1 || req.RescheduleWin != win {
		t.Fatalf("unexpected request: %+v", req)
	}
}

func TestFlow_RejectsSkippedSteps(t *testing.T) {
	f, err := NewFlow(uuid.New())
	if err != nil {
		t.Fatalf("new flow: %v", err)
	}
	win := engine.DateWindow{From: "2025-03-03", To: "2025-03-09"}

	if err := f.SetAdjustments([]plan.AdjustmentInput{testAdjustment(t, uuid.New())}, win, win, false); !errors.Is(err, apperrors.ErrInvalidArgument) {
		t.Fatalf("expected transition error before content selection, got %v", err)
	}
	if _, err := f.BuildRequest(); !errors.Is(err, apperrors.ErrInvalidArgument) {
		t.Fatalf("expected transition error before adjustments, got %v", err)
	}
}

func TestFlow_RejectsRepeatedStep(t *testing.T) {
	f, _ := NewFlow(uuid.New())
	contentID := uuid.New()
	if err := f.SelectContents([]uuid.UUID{contentID}); err != nil {
		t.Fatalf("select contents: %v", err)
	}
	if err := f.SelectContents([]uuid.UUID{contentID}); !errors.Is(err, apperrors.ErrInvalidArgument) {
		t.Fatalf("expected transition error on repeated selection, got %v", err)
	}
}

func TestFlow_RejectsUnselectedContent(t *testing.T) {
	f, _ := NewFlow(uuid.New())
	if err := f.SelectContents([]uuid.UUID{uuid.New()}); err != nil {
		t.Fatalf("select contents: %v", err)
	}
	win := engine.DateWindow{From: "2025-03-03", To: "2025-03-09"}
	err := f.SetAdjustments([]plan.AdjustmentInput{testAdjustment(t, uuid.New())}, win, win, false)
	if !errors.Is(err, apperrors.ErrInvalidArgument) {
		t.Fatalf("expected rejection of unselected content, got %v", err)
	}
	if f.State() != StateAdjust {
		t.Fatalf("failed step must not advance the flow, got %q", f.State())
	}
}

func TestFlow_RejectsEmptyInputs(t *testing.T) {
	if _, err := NewFlow(uuid.Nil); !errors.Is(err, apperrors.ErrInvalidArgument) {
		t.Fatalf("expected rejection of nil group id, got %v", err)
	}
	f, _ := NewFlow(uuid.New())
	if err := f.SelectContents(nil); !errors.Is(err, apperrors.ErrInvalidArgument) {
		t.Fatalf("expected rejection of empty selection, got %v", err)
	}
	if err := f.SelectContents([]uuid.UUID{uuid.New()}); err != nil {
		t.Fatalf("select contents: %v", err)
	}
	win := engine.DateWindow{From: "2025-03-03", To: "2025-03-09"}
	if err := f.SetAdjustments(nil, win, win, false); !errors.Is(err, apperrors.ErrInvalidArgument) {
		t.Fatalf("expected rejection of empty adjustments, got %v", err)
	}
}
