package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TenGod is an optional precomputed classification of a chart stem relative
// to the day master. When rows exist for a chart the Dezhu scorer prefers
// them over re-deriving support from raw element relations.
type TenGod struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	ChartID    uuid.UUID  `gorm:"type:uuid;not null;index:idx_ten_god_chart" json:"chart_id"`
	Pillar     PillarKind `gorm:"column:pillar;not null" json:"pillar"`
	SourceKind SourceKind `gorm:"column:source_kind;not null" json:"source_kind"`
	Stem       string     `gorm:"column:stem;not null" json:"stem"`
	HiddenRank HiddenRank `gorm:"column:hidden_rank" json:"hidden_rank,omitempty"`
	Label      string     `gorm:"column:label;not null" json:"label"`
	CreatedAt  time.Time  `gorm:"not null" json:"created_at"`
}

func (TenGod) TableName() string { return "ten_god" }

func (t *TenGod) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
