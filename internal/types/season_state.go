package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SeasonElementState is an optional per-chart snapshot of each element's
// seasonal vitality under a ruleset. One row per element per chart/ruleset.
type SeasonElementState struct {
	ID        uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	ChartID   uuid.UUID   `gorm:"type:uuid;not null;index:idx_season_state_chart" json:"chart_id"`
	RulesetID string      `gorm:"column:ruleset_id;not null;index:idx_season_state_chart" json:"ruleset_id"`
	Element   Element     `gorm:"column:element;not null" json:"element"`
	State     SeasonState `gorm:"column:state;not null" json:"state"`
	Score     float64     `gorm:"column:score;not null" json:"score"`
	CreatedAt time.Time   `gorm:"not null" json:"created_at"`
}

func (SeasonElementState) TableName() string { return "season_element_state" }

func (s *SeasonElementState) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
