package almanac

import (
	"github.com/xuanji/bazi-backend/internal/types"
)

// SupportClass says whether a ten-god label counts as support for the day
// master, and which kind.
type SupportClass int

const (
	SupportNone SupportClass = iota
	SupportSameClass
	SupportShengfu
)

// tenGodClasses accepts both the Chinese labels upstream classifiers
// persist and their pinyin spellings.
var tenGodClasses = map[string]SupportClass{
	"比肩": SupportSameClass, "bijian": SupportSameClass,
	"劫财": SupportSameClass, "jiecai": SupportSameClass,
	"正印": SupportShengfu, "zhengyin": SupportShengfu,
	"偏印": SupportShengfu, "pianyin": SupportShengfu,
}

// TenGodSupportClass classifies a ten-god label. Companion and rival count
// as same-class support, direct and indirect seal as generative support;
// every other label is not support.
func TenGodSupportClass(label string) SupportClass {
	return tenGodClasses[label]
}

// SupportType converts a support class to its stored detail type.
func (c SupportClass) SupportType() (types.SupportType, bool) {
	switch c {
	case SupportSameClass:
		return types.SupportSameClass, true
	case SupportShengfu:
		return types.SupportShengfu, true
	}
	return "", false
}
