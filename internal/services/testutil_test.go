package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/planforge/planforge-backend/internal/cache"
	"github.com/planforge/planforge-backend/internal/data/db"
	"github.com/planforge/planforge-backend/internal/data/repos"
	types "github.com/planforge/planforge-backend/internal/domain/plan"
	"github.com/planforge/planforge-backend/internal/platform/logger"
	"github.com/planforge/planforge-backend/internal/scheduler/engine"
)

func rangeWindow(from, to string) engine.DateWindow {
	return engine.DateWindow{From: from, To: to}
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrateAll(conn); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return conn
}

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	return log
}

// fixedNow keeps every clock read inside one test on the same instant.
var fixedNow = time.Date(2025, 3, 2, 12, 0, 0, 0, time.UTC)

type fixture struct {
	db      *gorm.DB
	group   *types.PlanGroup
	content *types.PlanContent
	plans   []*types.Plan

	groups    repos.PlanGroupRepo
	contents  repos.PlanContentRepo
	planRepo  repos.PlanRepo
	schedules repos.ScheduleRepo
	logs      repos.RescheduleLogRepo
	history   repos.PlanHistoryRepo

	preview PreviewService
	commit  CommitService
}

// newFixture seeds one group (period 2025-03-01..2025-03-31) with a 50-page
// book split over two active plans, and wires services whose clock reads
// 2025-03-02.
func newFixture(t *testing.T, previewCache *memPreviewCache) *fixture {
	t.Helper()
	conn := newTestDB(t)
	log := newTestLogger(t)

	f := &fixture{
		db:        conn,
		groups:    repos.NewPlanGroupRepo(conn, log),
		contents:  repos.NewPlanContentRepo(conn, log),
		planRepo:  repos.NewPlanRepo(conn, log),
		schedules: repos.NewScheduleRepo(conn, log),
		logs:      repos.NewRescheduleLogRepo(conn, log),
		history:   repos.NewPlanHistoryRepo(conn, log),
	}

	f.group = &types.PlanGroup{
		ID:          uuid.New(),
		StudentID:   uuid.New(),
		Name:        "march study plan",
		PeriodStart: "2025-03-01",
		PeriodEnd:   "2025-03-31",
	}
	if err := conn.Create(f.group).Error; err != nil {
		t.Fatalf("seed group: %v", err)
	}

	f.content = &types.PlanContent{
		ID:          uuid.New(),
		PlanGroupID: f.group.ID,
		ContentID:   uuid.New(),
		ContentType: types.ContentTypeBook,
		StartRange:  1,
		EndRange:    50,
	}
	if err := conn.Create(f.content).Error; err != nil {
		t.Fatalf("seed content: %v", err)
	}

	f.plans = []*types.Plan{
		seedPlan(f.group.ID, f.content.ContentID, "2025-03-03", 1, 25),
		seedPlan(f.group.ID, f.content.ContentID, "2025-03-04", 26, 50),
	}
	if err := conn.Create(f.plans).Error; err != nil {
		t.Fatalf("seed plans: %v", err)
	}

	var pc cache.PreviewCache
	if previewCache != nil {
		pc = previewCache
	}
	ps := NewPreviewService(conn, log, f.groups, f.contents, f.planRepo, f.schedules, pc, nil, 0).(*previewService)
	ps.now = func() time.Time { return fixedNow }
	f.preview = ps

	cs := NewCommitService(conn, log, f.preview, f.groups, f.planRepo, f.logs, f.history).(*commitService)
	cs.now = func() time.Time { return fixedNow }
	f.commit = cs

	return f
}

func seedPlan(groupID, contentID uuid.UUID, date string, start, end int) *types.Plan {
	return &types.Plan{
		ID:                     uuid.New(),
		PlanGroupID:            groupID,
		ContentID:              contentID,
		ContentType:            types.ContentTypeBook,
		PlanDate:               date,
		PlannedStartPageOrTime: start,
		PlannedEndPageOrTime:   end,
		Status:                 types.StatusNotStarted,
		IsActive:               true,
	}
}

func (f *fixture) rangeRequest(t *testing.T) PreviewRequest {
	t.Helper()
	snap := types.ContentSnapshot{
		ContentID:   f.content.ContentID,
		ContentType: types.ContentTypeBook,
		Range:       types.Range{Start: 1, End: 50},
	}
	adj, err := types.NewRangeAdjustment(f.content.ID, snap, snap)
	if err != nil {
		t.Fatalf("build adjustment: %v", err)
	}
	return PreviewRequest{
		GroupID:       f.group.ID,
		Adjustments:   []types.AdjustmentInput{adj},
		RescheduleWin: rangeWindow("2025-03-03", "2025-03-07"),
	}
}

func (f *fixture) activePlans(t *testing.T) []*types.Plan {
	t.Helper()
	var out []*types.Plan
	err := f.db.Where("plan_group_id = ? AND is_active = ?", f.group.ID, true).
		Order("plan_date, planned_start_page_or_time").Find(&out).Error
	if err != nil {
		t.Fatalf("load active plans: %v", err)
	}
	return out
}

func (f *fixture) groupVersion(t *testing.T) int64 {
	t.Helper()
	var g types.PlanGroup
	if err := f.db.First(&g, "id = ?", f.group.ID).Error; err != nil {
		t.Fatalf("load group: %v", err)
	}
	return g.Version
}

// memPreviewCache satisfies the preview cache port in-process and counts
// traffic so tests can assert cache behavior.
type memPreviewCache struct {
	store map[string][]byte
	gets  int
	hits  int
	sets  int
}

func newMemPreviewCache() *memPreviewCache {
	return &memPreviewCache{store: make(map[string][]byte)}
}

func (m *memPreviewCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	m.gets++
	body, ok := m.store[key]
	if ok {
		m.hits++
	}
	return body, ok, nil
}

func (m *memPreviewCache) Set(ctx context.Context, key string, body []byte, ttl time.Duration) error {
	m.sets++
	m.store[key] = append([]byte(nil), body...)
	return nil
}

func (m *memPreviewCache) Close() error { return nil }
