package repos

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/xuanji/bazi-backend/internal/logger"
	"github.com/xuanji/bazi-backend/internal/types"
)

var repoTestSeq int64

func openDB(t *testing.T, migrate bool) *gorm.DB {
	t.Helper()
	n := atomic.AddInt64(&repoTestSeq, 1)
	dsn := fmt.Sprintf("file:repo_test_%d?mode=memory&cache=shared", n)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if migrate {
		err := db.AutoMigrate(
			&types.FourPillar{},
			&types.DayunMeta{},
			&types.DayunPillar{},
			&types.SupportDetail{},
			&types.SupportSummary{},
			&types.DrainDetail{},
			&types.DrainSummary{},
		)
		if err != nil {
			t.Fatalf("migrate: %v", err)
		}
	}
	return db
}

func TestMigrateAllModelsOnSQLite(t *testing.T) {
	db := openDB(t, false)
	err := db.AutoMigrate(
		&types.FourPillar{},
		&types.Ruleset{},
		&types.TenGod{},
		&types.SeasonElementState{},
		&types.DayunMeta{},
		&types.DayunPillar{},
		&types.SupportDetail{},
		&types.SupportSummary{},
		&types.DrainDetail{},
		&types.DrainSummary{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}

	// Timestamps come from gorm's client-side autofill, not a column
	// default, so created_at ordering must hold on any dialect.
	row := &types.SupportSummary{ChartID: uuid.New(), RulesetID: "default", TotalScore: 1}
	if err := db.Create(row).Error; err != nil {
		t.Fatalf("create: %v", err)
	}
	if row.CreatedAt.IsZero() {
		t.Fatalf("created_at not autofilled: %+v", row)
	}
}

func TestSupportRepoReplaceDropsOldGeneration(t *testing.T) {
	db := openDB(t, true)
	repo := NewSupportRepo(db, logger.NewNop())
	chartID := uuid.New()
	ctx := context.Background()

	firstGen := []*types.SupportDetail{
		{ChartID: chartID, RulesetID: "default", Pillar: types.PillarYear, SourceKind: types.SourceStem, Stem: "甲", Element: types.ElementWood, SupportType: types.SupportSameClass, BaseScore: 1, PositionWeight: 1, HiddenWeight: 1, FinalScore: 1},
		{ChartID: chartID, RulesetID: "default", Pillar: types.PillarHour, SourceKind: types.SourceStem, Stem: "壬", Element: types.ElementWater, SupportType: types.SupportShengfu, BaseScore: 1, PositionWeight: 0.8, HiddenWeight: 1, FinalScore: 0.8},
	}
	firstSummary := &types.SupportSummary{ChartID: chartID, RulesetID: "default", Strategy: types.StrategyElementRelation, SameClassScore: 1, ShengfuScore: 0.8, TotalScore: 1.8}
	if err := repo.ReplaceForChart(ctx, chartID, "default", firstGen, firstSummary); err != nil {
		t.Fatalf("first replace: %v", err)
	}

	secondGen := []*types.SupportDetail{
		{ChartID: chartID, RulesetID: "default", Pillar: types.PillarYear, SourceKind: types.SourceStem, Stem: "甲", Element: types.ElementWood, SupportType: types.SupportSameClass, BaseScore: 2, PositionWeight: 1, HiddenWeight: 1, FinalScore: 2},
	}
	secondSummary := &types.SupportSummary{ChartID: chartID, RulesetID: "default", Strategy: types.StrategyElementRelation, SameClassScore: 2, TotalScore: 2}
	if err := repo.ReplaceForChart(ctx, chartID, "default", secondGen, secondSummary); err != nil {
		t.Fatalf("second replace: %v", err)
	}

	details, err := repo.GetDetails(ctx, nil, chartID, "default")
	if err != nil {
		t.Fatalf("GetDetails: %v", err)
	}
	if len(details) != 1 {
		t.Fatalf("store holds %d details after replace, want 1 (no mixed generations)", len(details))
	}
	summary, err := repo.GetLatestSummary(ctx, nil, chartID)
	if err != nil {
		t.Fatalf("GetLatestSummary: %v", err)
	}
	if summary == nil || summary.TotalScore != 2 {
		t.Fatalf("latest summary = %+v, want the second generation", summary)
	}
}

func TestSupportRepoMissingTablesDegrade(t *testing.T) {
	db := openDB(t, false)
	repo := NewSupportRepo(db, logger.NewNop())
	chartID := uuid.New()
	ctx := context.Background()

	summary := &types.SupportSummary{ChartID: chartID, RulesetID: "default", TotalScore: 1}
	if err := repo.ReplaceForChart(ctx, chartID, "default", nil, summary); err != nil {
		t.Fatalf("write with missing tables should warn, not error: %v", err)
	}

	got, err := repo.GetLatestSummary(ctx, nil, chartID)
	if err != nil {
		t.Fatalf("read with missing tables should degrade, not error: %v", err)
	}
	if got != nil {
		t.Fatalf("read returned %+v from a missing table", got)
	}
}

func TestDrainRepoRulesetScopedReplace(t *testing.T) {
	db := openDB(t, true)
	repo := NewDrainRepo(db, logger.NewNop())
	chartID := uuid.New()
	ctx := context.Background()

	forDefault := &types.DrainSummary{ChartID: chartID, RulesetID: "default", TotalScore: 1}
	forStrict := &types.DrainSummary{ChartID: chartID, RulesetID: "strict", TotalScore: 5}
	if err := repo.ReplaceForChart(ctx, chartID, "default", nil, forDefault); err != nil {
		t.Fatalf("replace default: %v", err)
	}
	if err := repo.ReplaceForChart(ctx, chartID, "strict", nil, forStrict); err != nil {
		t.Fatalf("replace strict: %v", err)
	}

	// Replacing one ruleset's evidence must not clobber the other's.
	if err := repo.ReplaceForChart(ctx, chartID, "default", nil, &types.DrainSummary{ChartID: chartID, RulesetID: "default", TotalScore: 2}); err != nil {
		t.Fatalf("re-replace default: %v", err)
	}

	var count int64
	if err := db.Model(&types.DrainSummary{}).Where("chart_id = ?", chartID).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 2 {
		t.Fatalf("store holds %d summaries, want one per ruleset", count)
	}
}

func TestDayunRepoReplaceAndReadBack(t *testing.T) {
	db := openDB(t, true)
	repo := NewDayunRepo(db, logger.NewNop())
	chartID := uuid.New()
	ctx := context.Background()

	meta := &types.DayunMeta{
		ChartID:          chartID,
		Direction:        types.DirectionForward,
		StartAge:         8.5,
		YearStemPolarity: types.PolarityYang,
		Gender:           types.GenderMale,
		RuleVersion:      "v1",
	}
	pillars := []*types.DayunPillar{
		{ChartID: chartID, Sequence: 1, Stem: "丁", Branch: "卯", Direction: types.DirectionForward},
		{ChartID: chartID, Sequence: 2, Stem: "戊", Branch: "辰", Direction: types.DirectionForward},
	}
	if err := repo.ReplaceForChart(ctx, meta, pillars); err != nil {
		t.Fatalf("replace: %v", err)
	}

	gotMeta, err := repo.GetLatestMeta(ctx, nil, chartID)
	if err != nil {
		t.Fatalf("GetLatestMeta: %v", err)
	}
	if gotMeta == nil || gotMeta.StartAge != 8.5 {
		t.Fatalf("meta = %+v", gotMeta)
	}
	gotPillars, err := repo.GetPillars(ctx, nil, chartID)
	if err != nil {
		t.Fatalf("GetPillars: %v", err)
	}
	if len(gotPillars) != 2 || gotPillars[0].Sequence != 1 {
		t.Fatalf("pillars = %+v", gotPillars)
	}

	missing, err := repo.GetLatestMeta(ctx, nil, uuid.New())
	if err != nil {
		t.Fatalf("GetLatestMeta for unknown chart: %v", err)
	}
	if missing != nil {
		t.Fatalf("unknown chart returned meta %+v", missing)
	}
}
