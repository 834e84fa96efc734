package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// DrainDetail is one itemized Ke-Xie contributor: a target element present
// in the chart that depletes, overcomes, or redirects the day master.
type DrainDetail struct {
	ID               uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ChartID          uuid.UUID      `gorm:"type:uuid;not null;index:idx_drain_detail_chart" json:"chart_id"`
	RulesetID        string         `gorm:"column:ruleset_id;not null" json:"ruleset_id"`
	DayMasterStem    string         `gorm:"column:day_master_stem;not null" json:"day_master_stem"`
	DayMasterElement Element        `gorm:"column:day_master_element;not null" json:"day_master_element"`
	EvidenceType     EvidenceType   `gorm:"column:evidence_type;not null" json:"evidence_type"`
	SourceType       SourceType     `gorm:"column:source_type;not null" json:"source_type"`
	TargetElement    Element        `gorm:"column:target_element;not null" json:"target_element"`
	SeasonState      SeasonState    `gorm:"column:season_state;not null" json:"season_state"`
	TouGan           bool           `gorm:"column:tou_gan;not null" json:"tou_gan"`
	TongGen          bool           `gorm:"column:tong_gen;not null" json:"tong_gen"`
	ChengShi         bool           `gorm:"column:cheng_shi;not null" json:"cheng_shi"`
	HeHua            bool           `gorm:"column:he_hua;not null" json:"he_hua"`
	Score            float64        `gorm:"column:score;not null" json:"score"`
	WeightBreakdown  datatypes.JSON `gorm:"column:weight_breakdown" json:"weight_breakdown"`
	Reason           string         `gorm:"column:reason" json:"reason"`
	Evidence         datatypes.JSON `gorm:"column:evidence" json:"evidence"`
	CreatedAt        time.Time      `gorm:"not null" json:"created_at"`
}

func (DrainDetail) TableName() string { return "drain_detail" }

func (d *DrainDetail) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

type DrainSummary struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ChartID     uuid.UUID      `gorm:"type:uuid;not null;index:idx_drain_summary_chart" json:"chart_id"`
	RulesetID   string         `gorm:"column:ruleset_id;not null" json:"ruleset_id"`
	XieScore    float64        `gorm:"column:xie_score;not null" json:"xie_score"`
	HaoScore    float64        `gorm:"column:hao_score;not null" json:"hao_score"`
	KeScore     float64        `gorm:"column:ke_score;not null" json:"ke_score"`
	ZhihuaScore float64        `gorm:"column:zhihua_score;not null" json:"zhihua_score"`
	TotalScore  float64        `gorm:"column:total_score;not null" json:"total_score"`
	Evidence    datatypes.JSON `gorm:"column:evidence" json:"evidence"`
	CreatedAt   time.Time      `gorm:"not null" json:"created_at"`
}

func (DrainSummary) TableName() string { return "drain_summary" }

func (s *DrainSummary) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
