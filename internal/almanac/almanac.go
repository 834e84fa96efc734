// Package almanac holds the static symbolic dictionaries of the chart
// model: the ten heavenly stems, twelve earthly branches, the stem/branch
// element and polarity mappings, the hidden-stem composition of each
// branch, the five-element generate/overcome cycles, and the sixty-term
// stem-branch cycle. Everything here is pure lookup; no I/O.
package almanac

import (
	"github.com/xuanji/bazi-backend/internal/types"
)

var Stems = []string{"甲", "乙", "丙", "丁", "戊", "己", "庚", "辛", "壬", "癸"}

var Branches = []string{"子", "丑", "寅", "卯", "辰", "巳", "午", "未", "申", "酉", "戌", "亥"}

var stemElements = map[string]types.Element{
	"甲": types.ElementWood, "乙": types.ElementWood,
	"丙": types.ElementFire, "丁": types.ElementFire,
	"戊": types.ElementEarth, "己": types.ElementEarth,
	"庚": types.ElementMetal, "辛": types.ElementMetal,
	"壬": types.ElementWater, "癸": types.ElementWater,
}

var branchElements = map[string]types.Element{
	"子": types.ElementWater, "丑": types.ElementEarth,
	"寅": types.ElementWood, "卯": types.ElementWood,
	"辰": types.ElementEarth, "巳": types.ElementFire,
	"午": types.ElementFire, "未": types.ElementEarth,
	"申": types.ElementMetal, "酉": types.ElementMetal,
	"戌": types.ElementEarth, "亥": types.ElementWater,
}

// StemElement maps a heavenly stem to its element.
func StemElement(stem string) (types.Element, bool) {
	e, ok := stemElements[stem]
	return e, ok
}

// BranchElement maps an earthly branch to its dominant element.
func BranchElement(branch string) (types.Element, bool) {
	e, ok := branchElements[branch]
	return e, ok
}

// StemPolarity returns yang for even-indexed stems, yin for odd.
func StemPolarity(stem string) (types.Polarity, bool) {
	for i, s := range Stems {
		if s == stem {
			if i%2 == 0 {
				return types.PolarityYang, true
			}
			return types.PolarityYin, true
		}
	}
	return "", false
}

// HiddenStem is one latent stem of a branch, ranked by strength of
// presence.
type HiddenStem struct {
	Stem string
	Rank types.HiddenRank
}

var hiddenStems = map[string][]HiddenStem{
	"子": {{"癸", types.RankMain}},
	"丑": {{"己", types.RankMain}, {"癸", types.RankMiddle}, {"辛", types.RankResidual}},
	"寅": {{"甲", types.RankMain}, {"丙", types.RankMiddle}, {"戊", types.RankResidual}},
	"卯": {{"乙", types.RankMain}},
	"辰": {{"戊", types.RankMain}, {"乙", types.RankMiddle}, {"癸", types.RankResidual}},
	"巳": {{"丙", types.RankMain}, {"戊", types.RankMiddle}, {"庚", types.RankResidual}},
	"午": {{"丁", types.RankMain}, {"己", types.RankMiddle}},
	"未": {{"己", types.RankMain}, {"丁", types.RankMiddle}, {"乙", types.RankResidual}},
	"申": {{"庚", types.RankMain}, {"壬", types.RankMiddle}, {"戊", types.RankResidual}},
	"酉": {{"辛", types.RankMain}},
	"戌": {{"戊", types.RankMain}, {"辛", types.RankMiddle}, {"丁", types.RankResidual}},
	"亥": {{"壬", types.RankMain}, {"甲", types.RankMiddle}},
}

// HiddenStems returns the ordered hidden-stem composition of a branch.
func HiddenStems(branch string) []HiddenStem {
	return hiddenStems[branch]
}

var generates = map[types.Element]types.Element{
	types.ElementWood:  types.ElementFire,
	types.ElementFire:  types.ElementEarth,
	types.ElementEarth: types.ElementMetal,
	types.ElementMetal: types.ElementWater,
	types.ElementWater: types.ElementWood,
}

var overcomes = map[types.Element]types.Element{
	types.ElementWood:  types.ElementEarth,
	types.ElementEarth: types.ElementWater,
	types.ElementWater: types.ElementFire,
	types.ElementFire:  types.ElementMetal,
	types.ElementMetal: types.ElementWood,
}

// Generates returns the element e generates (sheng).
func Generates(e types.Element) types.Element { return generates[e] }

// GeneratedBy returns the element that generates e.
func GeneratedBy(e types.Element) types.Element {
	for src, dst := range generates {
		if dst == e {
			return src
		}
	}
	return ""
}

// Overcomes returns the element e overcomes (ke).
func Overcomes(e types.Element) types.Element { return overcomes[e] }

// OvercomeBy returns the element that overcomes e.
func OvercomeBy(e types.Element) types.Element {
	for src, dst := range overcomes {
		if dst == e {
			return src
		}
	}
	return ""
}
