package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"gorm.io/datatypes"

	"github.com/xuanji/bazi-backend/internal/repos"
	"github.com/xuanji/bazi-backend/internal/types"
)

func TestRulesetResolverFallsBackToDefaults(t *testing.T) {
	db := newTestDB(t, &types.Ruleset{})
	resolver := NewRulesetResolver(db, nopLog(), repos.NewRulesetRepo(db, nopLog()))

	cfg, err := resolver.Resolve(context.Background(), "nonexistent")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if cfg.Name != "nonexistent" {
		t.Errorf("fallback config name=%s", cfg.Name)
	}
	if cfg.SeasonStateWeights[types.StateFlourishing] != 1.2 ||
		cfg.SeasonStateWeights[types.StateDead] != 0.3 {
		t.Errorf("fallback season weights = %v", cfg.SeasonStateWeights)
	}
	if cfg.IncludeDayStem {
		t.Error("fallback includes the day stem")
	}
}

func TestRulesetResolverMissingTableIsDegradedNotError(t *testing.T) {
	db := newTestDB(t) // no tables at all
	resolver := NewRulesetResolver(db, nopLog(), repos.NewRulesetRepo(db, nopLog()))

	cfg, err := resolver.Resolve(context.Background(), "default")
	if err != nil {
		t.Fatalf("Resolve with missing table: %v", err)
	}
	if cfg == nil || cfg.TouGanWeight != 0.4 {
		t.Errorf("degraded resolve returned %+v", cfg)
	}
}

func TestRulesetResolverLoadsExplicitRow(t *testing.T) {
	db := newTestDB(t, &types.Ruleset{})
	repo := repos.NewRulesetRepo(db, nopLog())
	resolver := NewRulesetResolver(db, nopLog(), repo)

	custom := types.DefaultRuleset()
	custom.Name = "strict"
	custom.TouGanWeight = 0.9
	encoded, err := custom.EncodeConfig()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	row := &types.Ruleset{Name: "strict", Version: "v2", Config: encoded}
	if err := repo.Upsert(context.Background(), nil, row); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	cfg, err := resolver.Resolve(context.Background(), "strict")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if cfg.TouGanWeight != 0.9 {
		t.Errorf("touGanWeight=%v, want explicit 0.9", cfg.TouGanWeight)
	}
}

func TestRulesetResolverRejectsMalformedRow(t *testing.T) {
	db := newTestDB(t, &types.Ruleset{})
	repo := repos.NewRulesetRepo(db, nopLog())
	resolver := NewRulesetResolver(db, nopLog(), repo)

	bad := &types.Ruleset{Name: "broken", Config: datatypes.JSON([]byte(`{"base_scores": "not a map"}`))}
	if err := db.Create(bad).Error; err != nil {
		t.Fatalf("seed malformed row: %v", err)
	}

	_, err := resolver.Resolve(context.Background(), "broken")
	if !errors.Is(err, ErrDataIntegrity) {
		t.Errorf("malformed row: got %v, want ErrDataIntegrity", err)
	}
}

func TestRulesetResolverRejectsPartialRow(t *testing.T) {
	db := newTestDB(t, &types.Ruleset{})
	repo := repos.NewRulesetRepo(db, nopLog())
	resolver := NewRulesetResolver(db, nopLog(), repo)

	// Well-formed JSON but missing individual keys. Without full coverage
	// these would weight their contributors zero with no signal.
	partials := map[string]func(*types.RulesetConfig){
		"no-hour-position": func(c *types.RulesetConfig) { delete(c.StemPositionWeights, types.PillarHour) },
		"no-residual-rank": func(c *types.RulesetConfig) { delete(c.HiddenRankWeights, types.RankResidual) },
		"no-shengfu-base":  func(c *types.RulesetConfig) { delete(c.BaseScores, types.SupportShengfu) },
		"no-ke-type":       func(c *types.RulesetConfig) { delete(c.TypeWeights, types.EvidenceKe) },
	}
	for name, mutate := range partials {
		cfg := types.DefaultRuleset()
		cfg.Name = name
		mutate(cfg)
		encoded, err := cfg.EncodeConfig()
		if err != nil {
			t.Fatalf("%s: encode: %v", name, err)
		}
		row := &types.Ruleset{Name: name, Config: encoded}
		if err := db.Create(row).Error; err != nil {
			t.Fatalf("%s: seed row: %v", name, err)
		}

		_, err = resolver.Resolve(context.Background(), name)
		if !errors.Is(err, ErrDataIntegrity) {
			t.Errorf("%s: got %v, want ErrDataIntegrity", name, err)
		}
	}
}

func TestRulesetSeedFromFile(t *testing.T) {
	db := newTestDB(t, &types.Ruleset{})
	repo := repos.NewRulesetRepo(db, nopLog())
	resolver := NewRulesetResolver(db, nopLog(), repo)

	seed := `rulesets:
  - name: seeded
    version: v3
    stem_position_weights: {year: 1.0, month: 1.5, day: 1.0, hour: 0.5}
    hidden_position_weights: {year: 0.8, month: 1.2, day: 0.8, hour: 0.4}
    hidden_rank_weights: {main: 1.0, middle: 0.5, residual: 0.2}
    base_scores: {same_class: 1.0, shengfu: 0.8}
    type_weights: {XIE: 1.0, HAO: 1.0, KE: 1.5, ZHIHUA: 1.0}
    season_state_weights: {flourishing: 1.3, supported: 1.0, resting: 0.6, trapped: 0.4, dead: 0.2, unknown: 1.0}
    tou_gan_weight: 0.5
    tong_gen_weight: 0.3
    cheng_shi_weight: 0.2
`
	path := filepath.Join(t.TempDir(), "rulesets.yaml")
	if err := os.WriteFile(path, []byte(seed), 0o644); err != nil {
		t.Fatalf("write seed: %v", err)
	}

	if err := resolver.SeedFromFile(context.Background(), path); err != nil {
		t.Fatalf("SeedFromFile: %v", err)
	}
	cfg, err := resolver.Resolve(context.Background(), "seeded")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if cfg.StemPositionWeights[types.PillarMonth] != 1.5 || cfg.TouGanWeight != 0.5 {
		t.Errorf("seeded config not loaded: %+v", cfg)
	}
}
