package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type FourPillar struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	ChartID   uuid.UUID  `gorm:"type:uuid;not null;index:idx_four_pillar_chart" json:"chart_id"`
	Pillar    PillarKind `gorm:"column:pillar;not null" json:"pillar"`
	Order     int        `gorm:"column:position;not null" json:"order"`
	Stem      string     `gorm:"column:stem;not null" json:"stem"`
	Branch    string     `gorm:"column:branch;not null" json:"branch"`
	CreatedAt time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time  `gorm:"not null" json:"updated_at"`
}

func (FourPillar) TableName() string { return "four_pillar" }

func (p *FourPillar) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
