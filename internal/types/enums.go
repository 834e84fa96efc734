package types

// Enum-style string constants shared by the calculators. Stored as plain
// text columns so the evidence rows stay readable straight out of the DB.

type PillarKind string

const (
	PillarYear  PillarKind = "year"
	PillarMonth PillarKind = "month"
	PillarDay   PillarKind = "day"
	PillarHour  PillarKind = "hour"
)

func (p PillarKind) Valid() bool {
	switch p {
	case PillarYear, PillarMonth, PillarDay, PillarHour:
		return true
	}
	return false
}

type HiddenRank string

const (
	RankMain     HiddenRank = "main"
	RankMiddle   HiddenRank = "middle"
	RankResidual HiddenRank = "residual"
)

type Element string

const (
	ElementWood  Element = "wood"
	ElementFire  Element = "fire"
	ElementEarth Element = "earth"
	ElementMetal Element = "metal"
	ElementWater Element = "water"
)

type Polarity string

const (
	PolarityYang Polarity = "yang"
	PolarityYin  Polarity = "yin"
)

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// NormalizeGender accepts the loose values upstream systems send.
func NormalizeGender(raw string) (Gender, bool) {
	switch raw {
	case "male", "m", "M", "1", "男":
		return GenderMale, true
	case "female", "f", "F", "0", "2", "女":
		return GenderFemale, true
	}
	return "", false
}

type Direction string

const (
	DirectionForward  Direction = "forward"
	DirectionBackward Direction = "backward"
)

type SupportType string

const (
	SupportSameClass SupportType = "same_class"
	SupportShengfu   SupportType = "shengfu"
)

type SourceKind string

const (
	SourceStem       SourceKind = "stem"
	SourceHiddenStem SourceKind = "hidden_stem"
)

type EvidenceType string

const (
	EvidenceXie    EvidenceType = "XIE"
	EvidenceHao    EvidenceType = "HAO"
	EvidenceKe     EvidenceType = "KE"
	EvidenceZhihua EvidenceType = "ZHIHUA"
)

type SourceType string

const (
	SourceShishang SourceType = "SHISHANG"
	SourceCai      SourceType = "CAI"
	SourceGuansha  SourceType = "GUANSHA"
	SourceHehua    SourceType = "HEHUA"
)

type SeasonState string

const (
	StateFlourishing SeasonState = "flourishing"
	StateSupported   SeasonState = "supported"
	StateResting     SeasonState = "resting"
	StateTrapped     SeasonState = "trapped"
	StateDead        SeasonState = "dead"
	StateUnknown     SeasonState = "unknown"
)

type DezhuStrategy string

const (
	StrategyTenGod          DezhuStrategy = "ten_god"
	StrategyElementRelation DezhuStrategy = "element_relation"
)
