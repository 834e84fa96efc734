package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SupportDetail is one itemized Dezhu contributor: a visible or hidden stem
// that reinforces the day master, with the full weight breakdown that
// produced its final score.
type SupportDetail struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ChartID        uuid.UUID      `gorm:"type:uuid;not null;index:idx_support_detail_chart" json:"chart_id"`
	RulesetID      string         `gorm:"column:ruleset_id;not null" json:"ruleset_id"`
	Pillar         PillarKind     `gorm:"column:pillar;not null" json:"pillar"`
	SourceKind     SourceKind     `gorm:"column:source_kind;not null" json:"source_kind"`
	Stem           string         `gorm:"column:stem;not null" json:"stem"`
	Element        Element        `gorm:"column:element;not null" json:"element"`
	TenGod         string         `gorm:"column:ten_god" json:"ten_god,omitempty"`
	SupportType    SupportType    `gorm:"column:support_type;not null" json:"support_type"`
	HiddenRank     HiddenRank     `gorm:"column:hidden_rank" json:"hidden_rank,omitempty"`
	BaseScore      float64        `gorm:"column:base_score;not null" json:"base_score"`
	PositionWeight float64        `gorm:"column:position_weight;not null" json:"position_weight"`
	HiddenWeight   float64        `gorm:"column:hidden_weight;not null" json:"hidden_weight"`
	FinalScore     float64        `gorm:"column:final_score;not null" json:"final_score"`
	Evidence       datatypes.JSON `gorm:"column:evidence" json:"evidence"`
	CreatedAt      time.Time      `gorm:"not null" json:"created_at"`
}

func (SupportDetail) TableName() string { return "support_detail" }

func (d *SupportDetail) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

type SupportSummary struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ChartID        uuid.UUID      `gorm:"type:uuid;not null;index:idx_support_summary_chart" json:"chart_id"`
	RulesetID      string         `gorm:"column:ruleset_id;not null" json:"ruleset_id"`
	Strategy       DezhuStrategy  `gorm:"column:strategy;not null" json:"strategy"`
	SameClassScore float64        `gorm:"column:same_class_score;not null" json:"same_class_score"`
	ShengfuScore   float64        `gorm:"column:shengfu_score;not null" json:"shengfu_score"`
	TotalScore     float64        `gorm:"column:total_score;not null" json:"total_score"`
	Evidence       datatypes.JSON `gorm:"column:evidence" json:"evidence"`
	CreatedAt      time.Time      `gorm:"not null" json:"created_at"`
}

func (SupportSummary) TableName() string { return "support_summary" }

func (s *SupportSummary) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
