package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/xuanji/bazi-backend/internal/almanac"
	"github.com/xuanji/bazi-backend/internal/clients/jieqi"
	"github.com/xuanji/bazi-backend/internal/logger"
	"github.com/xuanji/bazi-backend/internal/repos"
	"github.com/xuanji/bazi-backend/internal/types"
)

const (
	dayunRuleVersion   = "v1"
	defaultDayunCycles = 8
)

type PillarInput struct {
	Pillar types.PillarKind `json:"pillar"`
	Stem   string           `json:"stem"`
	Branch string           `json:"branch"`
}

type DayunComputeRequest struct {
	ChartID       uuid.UUID     `json:"chart_id"`
	Gender        string        `json:"gender"`
	BirthDateTime time.Time     `json:"birth_date_time"`
	Cycles        int           `json:"cycles,omitempty"`
	// Pillars lets the caller supply the chart inline when it has not been
	// persisted yet; otherwise they are loaded from the store.
	Pillars []PillarInput `json:"pillars,omitempty"`
}

type DayunResult struct {
	Meta    *types.DayunMeta     `json:"meta"`
	Pillars []*types.DayunPillar `json:"pillars"`
}

type DayunService interface {
	Compute(ctx context.Context, req DayunComputeRequest) (*DayunResult, error)
	Get(ctx context.Context, chartID uuid.UUID) (*DayunResult, error)
}

type dayunService struct {
	db         *gorm.DB
	log        *logger.Logger
	pillarRepo repos.FourPillarRepo
	dayunRepo  repos.DayunRepo
	terms      jieqi.Provider
	approx     jieqi.Provider
}

// NewDayunService wires the luck-pillar calculator. terms may be nil when
// no astronomical source is configured; the approximate calendar is then
// the only source and every result is flagged as such.
func NewDayunService(db *gorm.DB, baseLog *logger.Logger, pillarRepo repos.FourPillarRepo, dayunRepo repos.DayunRepo, terms jieqi.Provider) DayunService {
	svcLog := baseLog.With("service", "DayunService")
	return &dayunService{
		db:         db,
		log:        svcLog,
		pillarRepo: pillarRepo,
		dayunRepo:  dayunRepo,
		terms:      terms,
		approx:     jieqi.NewApproxProvider(),
	}
}

// DirectionFor applies the single governing direction rule: forward iff
// yang year stem and male, or yin year stem and female.
func DirectionFor(polarity types.Polarity, gender types.Gender) types.Direction {
	if (polarity == types.PolarityYang && gender == types.GenderMale) ||
		(polarity == types.PolarityYin && gender == types.GenderFemale) {
		return types.DirectionForward
	}
	return types.DirectionBackward
}

func (s *dayunService) Compute(ctx context.Context, req DayunComputeRequest) (*DayunResult, error) {
	if req.ChartID == uuid.Nil {
		return nil, fmt.Errorf("%w: chart id is required", ErrValidation)
	}
	gender, ok := types.NormalizeGender(req.Gender)
	if !ok {
		return nil, fmt.Errorf("%w: unrecognized gender %q", ErrValidation, req.Gender)
	}
	if req.BirthDateTime.IsZero() {
		return nil, fmt.Errorf("%w: birth date/time is required", ErrValidation)
	}
	cycles := req.Cycles
	if cycles <= 0 {
		cycles = defaultDayunCycles
	}

	byKind, err := s.loadPillars(ctx, req)
	if err != nil {
		return nil, err
	}
	yearPillar := byKind[types.PillarYear]
	monthPillar := byKind[types.PillarMonth]

	polarity, ok := almanac.StemPolarity(yearPillar.Stem)
	if !ok {
		return nil, fmt.Errorf("%w: unknown year stem %q", ErrDataIntegrity, yearPillar.Stem)
	}
	direction := DirectionFor(polarity, gender)

	target, precision, err := s.locateBoundary(ctx, req.BirthDateTime, direction)
	if err != nil {
		return nil, err
	}

	diffDays := round2(math.Abs(target.Time.Sub(req.BirthDateTime).Hours() / 24))
	startAge := round2(diffDays / 3)

	wholeYears := int(startAge)
	extraMonths := int(math.Round((startAge - float64(wholeYears)) * 12))
	startDateTime := req.BirthDateTime.AddDate(wholeYears, extraMonths, 0)

	anchor := monthPillar.Stem + monthPillar.Branch
	metaEvidence := map[string]interface{}{
		"direction_rule":  "forward iff (yang year stem and male) or (yin year stem and female)",
		"year_stem":       yearPillar.Stem,
		"polarity":        string(polarity),
		"gender":          string(gender),
		"anchor":          anchor,
		"diff_days":       diffDays,
		"solar_term":      target.Name,
		"solar_term_time": target.Time.Format(time.RFC3339),
		"precision":       precision,
	}

	meta := &types.DayunMeta{
		ChartID:                 req.ChartID,
		Direction:               direction,
		StartAge:                startAge,
		StartDateTime:           startDateTime,
		StartYear:               target.Time.Year(),
		StartMonth:              int(target.Time.Month()),
		YearStemPolarity:        polarity,
		Gender:                  gender,
		RuleVersion:             dayunRuleVersion,
		DiffDays:                diffDays,
		TargetSolarTermName:     target.Name,
		TargetSolarTermDateTime: target.Time,
		Evidence:                jsonEvidence(metaEvidence),
	}

	pillars := s.walkCycle(meta, anchor, direction, cycles, precision)

	result := &DayunResult{Meta: meta, Pillars: pillars}
	if err := s.dayunRepo.ReplaceForChart(ctx, meta, pillars); err != nil {
		return result, fmt.Errorf("persist dayun for chart %s: %w", req.ChartID, err)
	}
	return result, nil
}

func (s *dayunService) Get(ctx context.Context, chartID uuid.UUID) (*DayunResult, error) {
	if chartID == uuid.Nil {
		return nil, fmt.Errorf("%w: chart id is required", ErrValidation)
	}

	meta, err := s.dayunRepo.GetLatestMeta(ctx, nil, chartID)
	if err != nil {
		return nil, err
	}
	pillars, err := s.dayunRepo.GetPillars(ctx, nil, chartID)
	if err != nil {
		return nil, err
	}
	if meta == nil && len(pillars) == 0 {
		return nil, fmt.Errorf("%w: no dayun computed for chart %s", ErrNotFound, chartID)
	}
	return &DayunResult{Meta: meta, Pillars: pillars}, nil
}

func (s *dayunService) loadPillars(ctx context.Context, req DayunComputeRequest) (map[types.PillarKind]PillarInput, error) {
	inputs := req.Pillars
	if len(inputs) == 0 {
		stored, err := s.pillarRepo.GetByChartID(ctx, nil, req.ChartID)
		if err != nil {
			return nil, err
		}
		for _, p := range stored {
			inputs = append(inputs, PillarInput{Pillar: p.Pillar, Stem: p.Stem, Branch: p.Branch})
		}
	}

	byKind := make(map[types.PillarKind]PillarInput, len(inputs))
	for _, p := range inputs {
		if !p.Pillar.Valid() {
			return nil, fmt.Errorf("%w: unknown pillar kind %q", ErrDataIntegrity, p.Pillar)
		}
		byKind[p.Pillar] = p
	}
	if len(byKind) < 4 {
		return nil, fmt.Errorf("%w: chart %s has %d of 4 pillars", ErrDataIntegrity, req.ChartID, len(byKind))
	}
	return byKind, nil
}

// locateBoundary finds the solar term strictly after birth (forward) or
// strictly before it (backward). Three consecutive calendar years are
// queried to cover month and year boundaries.
func (s *dayunService) locateBoundary(ctx context.Context, birth time.Time, direction types.Direction) (jieqi.Term, string, error) {
	terms, precision := s.collectTerms(ctx, birth)

	var best *jieqi.Term
	for i := range terms {
		t := terms[i]
		if direction == types.DirectionForward {
			if t.Time.After(birth) && (best == nil || t.Time.Before(best.Time)) {
				best = &terms[i]
			}
		} else {
			if t.Time.Before(birth) && (best == nil || t.Time.After(best.Time)) {
				best = &terms[i]
			}
		}
	}
	if best == nil {
		return jieqi.Term{}, precision, fmt.Errorf("%w: no solar term found around %s", ErrDataIntegrity, birth.Format(time.RFC3339))
	}
	return *best, precision, nil
}

func (s *dayunService) collectTerms(ctx context.Context, birth time.Time) ([]jieqi.Term, string) {
	years := []int{birth.Year() - 1, birth.Year(), birth.Year() + 1}

	if s.terms != nil {
		all := make([]jieqi.Term, 0, 36)
		ok := true
		for _, y := range years {
			terms, err := s.terms.TermsForYear(ctx, y)
			if err != nil {
				s.log.Warn("Solar term source unavailable, falling back to approximate calendar", "year", y, "error", err)
				ok = false
				break
			}
			all = append(all, terms...)
		}
		if ok {
			return all, s.terms.Precision()
		}
	}

	all := make([]jieqi.Term, 0, 36)
	for _, y := range years {
		terms, _ := s.approx.TermsForYear(ctx, y)
		all = append(all, terms...)
	}
	return all, s.approx.Precision()
}

// walkCycle steps through the sixty-term cycle from the month pillar
// anchor, one term per decade. An anchor missing from the cycle table is a
// data-integrity signal: meta is still persisted, but no pillars are
// emitted.
func (s *dayunService) walkCycle(meta *types.DayunMeta, anchor string, direction types.Direction, cycles int, precision string) []*types.DayunPillar {
	idx, ok := almanac.CycleIndex(anchor)
	if !ok {
		s.log.Warn("Month pillar not found in sixty cycle, emitting no luck pillars", "chart_id", meta.ChartID, "anchor", anchor)
		return []*types.DayunPillar{}
	}

	step := 1
	if direction == types.DirectionBackward {
		step = -1
	}

	pillars := make([]*types.DayunPillar, 0, cycles)
	for k := 0; k < cycles; k++ {
		term := almanac.CycleStep(idx, step*(k+1))
		startYear := meta.StartYear + 10*k
		startMonth := meta.StartMonth
		evidence := map[string]interface{}{
			"anchor":     anchor,
			"cycle_step": step * (k + 1),
			"direction":  string(direction),
			"diff_days":  meta.DiffDays,
			"precision":  precision,
		}
		pillars = append(pillars, &types.DayunPillar{
			ChartID:           meta.ChartID,
			Sequence:          k + 1,
			Stem:              string([]rune(term)[0]),
			Branch:            string([]rune(term)[1]),
			StartAge:          round2(meta.StartAge + float64(10*k)),
			StartYear:         startYear,
			StartMonth:        startMonth,
			EndYear:           startYear + 10,
			EndMonth:          startMonth,
			Direction:         direction,
			SourceMonthPillar: anchor,
			Evidence:          jsonEvidence(evidence),
		})
	}
	return pillars
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
