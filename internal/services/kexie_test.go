package services

import (
	"context"
	"math"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/xuanji/bazi-backend/internal/repos"
	"github.com/xuanji/bazi-backend/internal/types"
)

func newKexieFixture(t *testing.T) (KexieService, *gorm.DB) {
	t.Helper()
	db := newTestDB(t, allModels()...)
	pillarRepo := repos.NewFourPillarRepo(db, nopLog())
	seasonRepo := repos.NewSeasonStateRepo(db, nopLog())
	drainRepo := repos.NewDrainRepo(db, nopLog())
	rulesetRepo := repos.NewRulesetRepo(db, nopLog())
	resolver := NewRulesetResolver(db, nopLog(), rulesetRepo)
	svc := NewKexieService(db, nopLog(), resolver, pillarRepo, seasonRepo, drainRepo)
	return svc, db
}

func findDrainDetail(details []*types.DrainDetail, evType types.EvidenceType) *types.DrainDetail {
	for _, d := range details {
		if d.EvidenceType == evType {
			return d
		}
	}
	return nil
}

func TestKexieXieExposedNotRooted(t *testing.T) {
	svc, db := newKexieFixture(t)
	chartID := uuid.New()
	// Day master 甲 (wood); XIE target is fire. Fire shows as the two 丙
	// stems but hides in no branch of this chart, so touGan is set and
	// tongGen is not.
	seedChart(t, db, chartID, []pillarSpec{
		{types.PillarYear, "丙", "子"},
		{types.PillarMonth, "丙", "申"},
		{types.PillarDay, "甲", "亥"},
		{types.PillarHour, "甲", "子"},
	})

	result, err := svc.Compute(context.Background(), KexieComputeRequest{ChartID: chartID})
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}

	xie := findDrainDetail(result.Details, types.EvidenceXie)
	if xie == nil {
		t.Fatal("no XIE detail for fire")
	}
	if xie.TargetElement != types.ElementFire || xie.SourceType != types.SourceShishang {
		t.Errorf("XIE detail = %s/%s, want fire/SHISHANG", xie.TargetElement, xie.SourceType)
	}
	if !xie.TouGan || xie.TongGen {
		t.Errorf("flags touGan=%v tongGen=%v, want true/false", xie.TouGan, xie.TongGen)
	}
	if xie.ChengShi {
		t.Error("chengShi set on XIE, only the restraint category gathers")
	}

	// Month branch 申 makes fire trapped; with the default weights the
	// score is seasonWeight + touGanWeight times the XIE type weight.
	cfg := types.DefaultRuleset()
	want := (cfg.SeasonStateWeights[types.StateTrapped] + cfg.TouGanWeight) * cfg.TypeWeights[types.EvidenceXie]
	if math.Abs(xie.Score-want) > 1e-9 {
		t.Errorf("XIE score=%v, want %v", xie.Score, want)
	}
}

func TestKexieChengShiNeedsMultiplicity(t *testing.T) {
	svc, db := newKexieFixture(t)

	// KE target for a wood day master is metal. One occurrence: the hidden
	// 庚 in 申 only.
	single := uuid.New()
	seedChart(t, db, single, []pillarSpec{
		{types.PillarYear, "丁", "亥"},
		{types.PillarMonth, "丙", "子"},
		{types.PillarDay, "甲", "子"},
		{types.PillarHour, "丁", "申"},
	})
	result, err := svc.Compute(context.Background(), KexieComputeRequest{ChartID: single})
	if err != nil {
		t.Fatalf("Compute single: %v", err)
	}
	ke := findDrainDetail(result.Details, types.EvidenceKe)
	if ke == nil {
		t.Fatal("no KE detail for metal")
	}
	if ke.ChengShi {
		t.Error("chengShi set with a single metal occurrence")
	}
	if ke.TouGan || !ke.TongGen {
		t.Errorf("flags touGan=%v tongGen=%v, want false/true", ke.TouGan, ke.TongGen)
	}

	// Two occurrences: visible 庚 plus the hidden 庚 in 申.
	double := uuid.New()
	seedChart(t, db, double, []pillarSpec{
		{types.PillarYear, "丁", "亥"},
		{types.PillarMonth, "丙", "子"},
		{types.PillarDay, "甲", "子"},
		{types.PillarHour, "庚", "申"},
	})
	result, err = svc.Compute(context.Background(), KexieComputeRequest{ChartID: double})
	if err != nil {
		t.Fatalf("Compute double: %v", err)
	}
	ke = findDrainDetail(result.Details, types.EvidenceKe)
	if ke == nil {
		t.Fatal("no KE detail for metal")
	}
	if !ke.ChengShi {
		t.Error("chengShi not set with two metal occurrences")
	}
}

func TestKexieAbsentTargetContributesNoRow(t *testing.T) {
	svc, db := newKexieFixture(t)
	chartID := uuid.New()
	// Wood day master; no fire anywhere: XIE has no row.
	seedChart(t, db, chartID, []pillarSpec{
		{types.PillarYear, "壬", "子"},
		{types.PillarMonth, "癸", "亥"},
		{types.PillarDay, "甲", "子"},
		{types.PillarHour, "壬", "申"},
	})

	result, err := svc.Compute(context.Background(), KexieComputeRequest{ChartID: chartID})
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if d := findDrainDetail(result.Details, types.EvidenceXie); d != nil {
		t.Errorf("XIE row emitted for absent fire: %+v", d)
	}
	if result.Summary.XieScore != 0 {
		t.Errorf("xieScore=%v, want 0", result.Summary.XieScore)
	}
}

func TestKexieZhihuaOnlyFromSignal(t *testing.T) {
	svc, db := newKexieFixture(t)
	chartID := uuid.New()
	seedChart(t, db, chartID, []pillarSpec{
		{types.PillarYear, "丙", "子"},
		{types.PillarMonth, "丙", "申"},
		{types.PillarDay, "甲", "亥"},
		{types.PillarHour, "甲", "子"},
	})

	without, err := svc.Compute(context.Background(), KexieComputeRequest{ChartID: chartID})
	if err != nil {
		t.Fatalf("Compute without signal: %v", err)
	}
	if without.Summary.ZhihuaScore != 0 {
		t.Errorf("zhihuaScore=%v without combination signal, want 0", without.Summary.ZhihuaScore)
	}

	with, err := svc.Compute(context.Background(), KexieComputeRequest{
		ChartID:     chartID,
		Combination: &CombinationSignal{Element: types.ElementEarth, Stem: "甲", Partner: "己"},
	})
	if err != nil {
		t.Fatalf("Compute with signal: %v", err)
	}
	zhihua := findDrainDetail(with.Details, types.EvidenceZhihua)
	if zhihua == nil {
		t.Fatal("no ZHIHUA detail despite combination signal")
	}
	if !zhihua.HeHua || zhihua.SourceType != types.SourceHehua {
		t.Errorf("ZHIHUA detail = heHua=%v source=%s", zhihua.HeHua, zhihua.SourceType)
	}
	if with.Summary.ZhihuaScore <= 0 {
		t.Errorf("zhihuaScore=%v with combination signal, want > 0", with.Summary.ZhihuaScore)
	}
}

func TestKexieStoredSeasonSnapshotWins(t *testing.T) {
	svc, db := newKexieFixture(t)
	chartID := uuid.New()
	seedChart(t, db, chartID, []pillarSpec{
		{types.PillarYear, "丙", "子"},
		{types.PillarMonth, "丙", "申"},
		{types.PillarDay, "甲", "亥"},
		{types.PillarHour, "甲", "子"},
	})
	snapshot := &types.SeasonElementState{
		ChartID:   chartID,
		RulesetID: DefaultRulesetName,
		Element:   types.ElementFire,
		State:     types.StateFlourishing,
		Score:     1.2,
	}
	if err := db.Create(snapshot).Error; err != nil {
		t.Fatalf("seed season snapshot: %v", err)
	}

	result, err := svc.Compute(context.Background(), KexieComputeRequest{ChartID: chartID})
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	xie := findDrainDetail(result.Details, types.EvidenceXie)
	if xie == nil {
		t.Fatal("no XIE detail")
	}
	if xie.SeasonState != types.StateFlourishing {
		t.Errorf("season state=%s, want stored flourishing over derived", xie.SeasonState)
	}
}

func TestKexieRoundTripTotalsMatchDetails(t *testing.T) {
	svc, db := newKexieFixture(t)
	chartID := uuid.New()
	seedChart(t, db, chartID, []pillarSpec{
		{types.PillarYear, "丙", "午"},
		{types.PillarMonth, "戊", "申"},
		{types.PillarDay, "甲", "戌"},
		{types.PillarHour, "庚", "辰"},
	})

	if _, err := svc.Compute(context.Background(), KexieComputeRequest{ChartID: chartID}); err != nil {
		t.Fatalf("Compute: %v", err)
	}

	stored, err := svc.Get(context.Background(), chartID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	var total float64
	for _, d := range stored.Details {
		total += d.Score
	}
	if math.Abs(total-stored.Summary.TotalScore) > 1e-9 {
		t.Errorf("stored details sum %v != summary total %v", total, stored.Summary.TotalScore)
	}
}
