package types

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Ruleset is the stored form of a named weighting configuration. The weight
// maps live in one jsonb column; RulesetConfig is the parsed working form
// every calculator consumes.
type Ruleset struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string         `gorm:"column:name;not null;uniqueIndex" json:"name"`
	Version   string         `gorm:"column:version;not null;default:'v1'" json:"version"`
	Config    datatypes.JSON `gorm:"column:config" json:"config"`
	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
}

func (Ruleset) TableName() string { return "ruleset" }

func (r *Ruleset) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

type RulesetConfig struct {
	Name                  string                   `json:"name" yaml:"name"`
	Version               string                   `json:"version" yaml:"version"`
	StemPositionWeights   map[PillarKind]float64   `json:"stem_position_weights" yaml:"stem_position_weights"`
	HiddenPositionWeights map[PillarKind]float64   `json:"hidden_position_weights" yaml:"hidden_position_weights"`
	HiddenRankWeights     map[HiddenRank]float64   `json:"hidden_rank_weights" yaml:"hidden_rank_weights"`
	BaseScores            map[SupportType]float64  `json:"base_scores" yaml:"base_scores"`
	TypeWeights           map[EvidenceType]float64 `json:"type_weights" yaml:"type_weights"`
	SeasonStateWeights    map[SeasonState]float64  `json:"season_state_weights" yaml:"season_state_weights"`
	TouGanWeight          float64                  `json:"tou_gan_weight" yaml:"tou_gan_weight"`
	TongGenWeight         float64                  `json:"tong_gen_weight" yaml:"tong_gen_weight"`
	ChengShiWeight        float64                  `json:"cheng_shi_weight" yaml:"cheng_shi_weight"`
	IncludeDayStem        bool                     `json:"include_day_stem" yaml:"include_day_stem"`
}

// DefaultRuleset is the single source of the built-in weighting defaults.
// Every consumer goes through the resolver, which hands this out whenever
// the named ruleset (or its table) is absent.
func DefaultRuleset() *RulesetConfig {
	return &RulesetConfig{
		Name:    "default",
		Version: "v1",
		StemPositionWeights: map[PillarKind]float64{
			PillarYear: 1.0, PillarMonth: 1.2, PillarDay: 1.0, PillarHour: 0.8,
		},
		HiddenPositionWeights: map[PillarKind]float64{
			PillarYear: 0.9, PillarMonth: 1.1, PillarDay: 0.9, PillarHour: 0.7,
		},
		HiddenRankWeights: map[HiddenRank]float64{
			RankMain: 1.0, RankMiddle: 0.6, RankResidual: 0.3,
		},
		BaseScores: map[SupportType]float64{
			SupportSameClass: 1.0, SupportShengfu: 1.0,
		},
		TypeWeights: map[EvidenceType]float64{
			EvidenceXie: 1.0, EvidenceHao: 1.0, EvidenceKe: 1.2, EvidenceZhihua: 1.0,
		},
		SeasonStateWeights: map[SeasonState]float64{
			StateFlourishing: 1.2, StateSupported: 1.0, StateResting: 0.7,
			StateTrapped: 0.5, StateDead: 0.3, StateUnknown: 1.0,
		},
		TouGanWeight:   0.4,
		TongGenWeight:  0.4,
		ChengShiWeight: 0.3,
		IncludeDayStem: false,
	}
}

// SeasonWeight returns the configured weight for a state, falling back to
// the unknown-state weight rather than zeroing a contributor silently.
func (c *RulesetConfig) SeasonWeight(state SeasonState) float64 {
	if w, ok := c.SeasonStateWeights[state]; ok {
		return w
	}
	if w, ok := c.SeasonStateWeights[StateUnknown]; ok {
		return w
	}
	return 1.0
}

// Validate rejects explicit ruleset rows that would make scoring undefined.
// Every enum domain a calculator looks up must be fully keyed; a missing key
// would multiply its contributor by zero without any signal. The season map
// is the one exception, since SeasonWeight has its own unknown-state
// fallback.
func (c *RulesetConfig) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("ruleset has no name")
	}
	pillars := []PillarKind{PillarYear, PillarMonth, PillarDay, PillarHour}
	for _, p := range pillars {
		if _, ok := c.StemPositionWeights[p]; !ok {
			return fmt.Errorf("ruleset %q has no stem position weight for %s", c.Name, p)
		}
		if _, ok := c.HiddenPositionWeights[p]; !ok {
			return fmt.Errorf("ruleset %q has no hidden position weight for %s", c.Name, p)
		}
	}
	for _, r := range []HiddenRank{RankMain, RankMiddle, RankResidual} {
		if _, ok := c.HiddenRankWeights[r]; !ok {
			return fmt.Errorf("ruleset %q has no hidden rank weight for %s", c.Name, r)
		}
	}
	for _, s := range []SupportType{SupportSameClass, SupportShengfu} {
		if _, ok := c.BaseScores[s]; !ok {
			return fmt.Errorf("ruleset %q has no base score for %s", c.Name, s)
		}
	}
	for _, e := range []EvidenceType{EvidenceXie, EvidenceHao, EvidenceKe, EvidenceZhihua} {
		if _, ok := c.TypeWeights[e]; !ok {
			return fmt.Errorf("ruleset %q has no type weight for %s", c.Name, e)
		}
	}
	if len(c.SeasonStateWeights) == 0 {
		return fmt.Errorf("ruleset %q has no season state weights", c.Name)
	}
	return nil
}

// ParseConfig decodes the stored jsonb column.
func (r *Ruleset) ParseConfig() (*RulesetConfig, error) {
	var cfg RulesetConfig
	if err := json.Unmarshal(r.Config, &cfg); err != nil {
		return nil, fmt.Errorf("decode ruleset %q config: %w", r.Name, err)
	}
	if cfg.Name == "" {
		cfg.Name = r.Name
	}
	if cfg.Version == "" {
		cfg.Version = r.Version
	}
	return &cfg, nil
}

// EncodeConfig is the inverse of ParseConfig, used by the seed loader.
func (c *RulesetConfig) EncodeConfig() (datatypes.JSON, error) {
	raw, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encode ruleset %q config: %w", c.Name, err)
	}
	return datatypes.JSON(raw), nil
}
