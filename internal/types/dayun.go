package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type DayunMeta struct {
	ID                      uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ChartID                 uuid.UUID      `gorm:"type:uuid;not null;index:idx_dayun_meta_chart" json:"chart_id"`
	Direction               Direction      `gorm:"column:direction;not null" json:"direction"`
	StartAge                float64        `gorm:"column:start_age;not null" json:"start_age"`
	StartDateTime           time.Time      `gorm:"column:start_date_time" json:"start_date_time"`
	StartYear               int            `gorm:"column:start_year" json:"start_year"`
	StartMonth              int            `gorm:"column:start_month" json:"start_month"`
	YearStemPolarity        Polarity       `gorm:"column:year_stem_polarity;not null" json:"year_stem_polarity"`
	Gender                  Gender         `gorm:"column:gender;not null" json:"gender"`
	RuleVersion             string         `gorm:"column:rule_version;not null" json:"rule_version"`
	DiffDays                float64        `gorm:"column:diff_days" json:"diff_days"`
	TargetSolarTermName     string         `gorm:"column:target_solar_term_name" json:"target_solar_term_name"`
	TargetSolarTermDateTime time.Time      `gorm:"column:target_solar_term_date_time" json:"target_solar_term_date_time"`
	Evidence                datatypes.JSON `gorm:"column:evidence" json:"evidence"`
	CreatedAt               time.Time      `gorm:"not null" json:"created_at"`
}

func (DayunMeta) TableName() string { return "dayun_meta" }

func (m *DayunMeta) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

type DayunPillar struct {
	ID                uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ChartID           uuid.UUID      `gorm:"type:uuid;not null;index:idx_dayun_pillar_chart" json:"chart_id"`
	Sequence          int            `gorm:"column:sequence;not null" json:"sequence"`
	Stem              string         `gorm:"column:stem;not null" json:"stem"`
	Branch            string         `gorm:"column:branch;not null" json:"branch"`
	StartAge          float64        `gorm:"column:start_age" json:"start_age"`
	StartYear         int            `gorm:"column:start_year" json:"start_year"`
	StartMonth        int            `gorm:"column:start_month" json:"start_month"`
	EndYear           int            `gorm:"column:end_year" json:"end_year"`
	EndMonth          int            `gorm:"column:end_month" json:"end_month"`
	Direction         Direction      `gorm:"column:direction;not null" json:"direction"`
	SourceMonthPillar string         `gorm:"column:source_month_pillar" json:"source_month_pillar"`
	Evidence          datatypes.JSON `gorm:"column:evidence" json:"evidence"`
	CreatedAt         time.Time      `gorm:"not null" json:"created_at"`
}

func (DayunPillar) TableName() string { return "dayun_pillar" }

func (p *DayunPillar) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
