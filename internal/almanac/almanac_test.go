package almanac

import (
	"testing"

	"github.com/xuanji/bazi-backend/internal/types"
)

func TestStemElementCoversAllStems(t *testing.T) {
	for _, stem := range Stems {
		if _, ok := StemElement(stem); !ok {
			t.Errorf("no element for stem %s", stem)
		}
		if _, ok := StemPolarity(stem); !ok {
			t.Errorf("no polarity for stem %s", stem)
		}
	}
}

func TestStemPolarityAlternates(t *testing.T) {
	cases := []struct {
		stem string
		want types.Polarity
	}{
		{"甲", types.PolarityYang},
		{"乙", types.PolarityYin},
		{"壬", types.PolarityYang},
		{"癸", types.PolarityYin},
	}
	for _, tc := range cases {
		got, ok := StemPolarity(tc.stem)
		if !ok || got != tc.want {
			t.Errorf("StemPolarity(%s)=%v,%v, want %v", tc.stem, got, ok, tc.want)
		}
	}
}

func TestHiddenStemsComposition(t *testing.T) {
	for _, branch := range Branches {
		hs := HiddenStems(branch)
		if len(hs) < 1 || len(hs) > 3 {
			t.Errorf("branch %s hosts %d hidden stems, want 1-3", branch, len(hs))
		}
		if hs[0].Rank != types.RankMain {
			t.Errorf("branch %s first hidden stem ranked %s, want main", branch, hs[0].Rank)
		}
	}
	yin := HiddenStems("寅")
	if len(yin) != 3 || yin[0].Stem != "甲" || yin[1].Stem != "丙" || yin[2].Stem != "戊" {
		t.Errorf("寅 hidden stems = %v", yin)
	}
}

func TestGenerateCycleClosesOverFiveElements(t *testing.T) {
	elements := []types.Element{
		types.ElementWood, types.ElementFire, types.ElementEarth,
		types.ElementMetal, types.ElementWater,
	}
	seen := map[types.Element]bool{}
	e := types.ElementWood
	for range elements {
		seen[e] = true
		e = Generates(e)
	}
	if e != types.ElementWood || len(seen) != 5 {
		t.Errorf("generate cycle does not close over all five elements: %v", seen)
	}

	for _, el := range elements {
		if GeneratedBy(Generates(el)) != el {
			t.Errorf("GeneratedBy(Generates(%s)) != %s", el, el)
		}
		if OvercomeBy(Overcomes(el)) != el {
			t.Errorf("OvercomeBy(Overcomes(%s)) != %s", el, el)
		}
		if Generates(el) == Overcomes(el) {
			t.Errorf("%s generates and overcomes the same element", el)
		}
	}
}

func TestSixtyCycle(t *testing.T) {
	if len(SixtyCycle) != 60 {
		t.Fatalf("sixty cycle has %d terms", len(SixtyCycle))
	}
	if SixtyCycle[0] != "甲子" {
		t.Errorf("cycle starts at %s, want 甲子", SixtyCycle[0])
	}

	i, ok := CycleIndex("丙寅")
	if !ok || i != 2 {
		t.Fatalf("CycleIndex(丙寅)=%d,%v, want 2,true", i, ok)
	}
	if got := CycleStep(i, 1); got != "丁卯" {
		t.Errorf("CycleStep(2, 1)=%s, want 丁卯", got)
	}
	if got := CycleStep(0, -1); got != SixtyCycle[59] {
		t.Errorf("CycleStep(0, -1)=%s, want %s", got, SixtyCycle[59])
	}
	if got := CycleStep(59, 1); got != "甲子" {
		t.Errorf("CycleStep(59, 1)=%s, want 甲子", got)
	}
}

func TestTenGodSupportClass(t *testing.T) {
	cases := []struct {
		label string
		want  SupportClass
	}{
		{"比肩", SupportSameClass},
		{"劫财", SupportSameClass},
		{"jiecai", SupportSameClass},
		{"正印", SupportShengfu},
		{"偏印", SupportShengfu},
		{"zhengyin", SupportShengfu},
		{"食神", SupportNone},
		{"七杀", SupportNone},
		{"", SupportNone},
	}
	for _, tc := range cases {
		if got := TenGodSupportClass(tc.label); got != tc.want {
			t.Errorf("TenGodSupportClass(%q)=%v, want %v", tc.label, got, tc.want)
		}
	}
}
