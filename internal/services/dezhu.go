package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/xuanji/bazi-backend/internal/almanac"
	"github.com/xuanji/bazi-backend/internal/logger"
	"github.com/xuanji/bazi-backend/internal/repos"
	"github.com/xuanji/bazi-backend/internal/types"
)

type DezhuComputeRequest struct {
	ChartID   uuid.UUID `json:"chart_id"`
	RulesetID string    `json:"ruleset_id,omitempty"`
}

type DezhuResult struct {
	Summary *types.SupportSummary  `json:"summary"`
	Details []*types.SupportDetail `json:"details"`
}

type DezhuService interface {
	Compute(ctx context.Context, req DezhuComputeRequest) (*DezhuResult, error)
	Get(ctx context.Context, chartID uuid.UUID) (*DezhuResult, error)
}

type dezhuService struct {
	db          *gorm.DB
	log         *logger.Logger
	rulesets    RulesetResolver
	pillarRepo  repos.FourPillarRepo
	tenGodRepo  repos.TenGodRepo
	supportRepo repos.SupportRepo
}

func NewDezhuService(db *gorm.DB, baseLog *logger.Logger, rulesets RulesetResolver, pillarRepo repos.FourPillarRepo, tenGodRepo repos.TenGodRepo, supportRepo repos.SupportRepo) DezhuService {
	svcLog := baseLog.With("service", "DezhuService")
	return &dezhuService{
		db:          db,
		log:         svcLog,
		rulesets:    rulesets,
		pillarRepo:  pillarRepo,
		tenGodRepo:  tenGodRepo,
		supportRepo: supportRepo,
	}
}

// pickDezhuStrategy is the explicit decision between the two scoring
// strategies: precomputed ten-god classifications win when present,
// otherwise support is re-derived from raw element relations.
func pickDezhuStrategy(tenGods []*types.TenGod) types.DezhuStrategy {
	if len(tenGods) > 0 {
		return types.StrategyTenGod
	}
	return types.StrategyElementRelation
}

func (s *dezhuService) Compute(ctx context.Context, req DezhuComputeRequest) (*DezhuResult, error) {
	if req.ChartID == uuid.Nil {
		return nil, fmt.Errorf("%w: chart id is required", ErrValidation)
	}
	rulesetName := req.RulesetID
	if rulesetName == "" {
		rulesetName = DefaultRulesetName
	}

	cfg, err := s.rulesets.Resolve(ctx, rulesetName)
	if err != nil {
		return nil, err
	}

	var (
		pillars []*types.FourPillar
		tenGods []*types.TenGod
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var e error
		pillars, e = s.pillarRepo.GetByChartID(gctx, nil, req.ChartID)
		return e
	})
	g.Go(func() error {
		var e error
		tenGods, e = s.tenGodRepo.GetByChartID(gctx, nil, req.ChartID)
		return e
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	byKind, err := indexPillars(req.ChartID, pillars)
	if err != nil {
		return nil, err
	}
	dayStem := byKind[types.PillarDay].Stem
	dayElement, ok := almanac.StemElement(dayStem)
	if !ok {
		return nil, fmt.Errorf("%w: unknown day stem %q", ErrDataIntegrity, dayStem)
	}

	strategy := pickDezhuStrategy(tenGods)

	var details []*types.SupportDetail
	switch strategy {
	case types.StrategyTenGod:
		details, err = s.scoreFromTenGods(req.ChartID, rulesetName, cfg, tenGods)
	default:
		details, err = s.scoreFromElements(req.ChartID, rulesetName, cfg, byKind, dayStem, dayElement)
	}
	if err != nil {
		return nil, err
	}

	var sameClass, shengfu float64
	for _, d := range details {
		switch d.SupportType {
		case types.SupportSameClass:
			sameClass += d.FinalScore
		case types.SupportShengfu:
			shengfu += d.FinalScore
		}
	}

	summary := &types.SupportSummary{
		ChartID:        req.ChartID,
		RulesetID:      rulesetName,
		Strategy:       strategy,
		SameClassScore: sameClass,
		ShengfuScore:   shengfu,
		TotalScore:     sameClass + shengfu,
		Evidence: jsonEvidence(map[string]interface{}{
			"strategy":           string(strategy),
			"day_master_stem":    dayStem,
			"day_master_element": string(dayElement),
			"ruleset":            rulesetName,
			"detail_count":       len(details),
			"include_day_stem":   cfg.IncludeDayStem,
		}),
	}

	result := &DezhuResult{Summary: summary, Details: details}
	if err := s.supportRepo.ReplaceForChart(ctx, req.ChartID, rulesetName, details, summary); err != nil {
		return result, fmt.Errorf("persist dezhu for chart %s: %w", req.ChartID, err)
	}
	return result, nil
}

func (s *dezhuService) Get(ctx context.Context, chartID uuid.UUID) (*DezhuResult, error) {
	if chartID == uuid.Nil {
		return nil, fmt.Errorf("%w: chart id is required", ErrValidation)
	}

	summary, err := s.supportRepo.GetLatestSummary(ctx, nil, chartID)
	if err != nil {
		return nil, err
	}
	if summary == nil {
		return nil, fmt.Errorf("%w: no dezhu computed for chart %s", ErrNotFound, chartID)
	}
	details, err := s.supportRepo.GetDetails(ctx, nil, chartID, summary.RulesetID)
	if err != nil {
		return nil, err
	}
	return &DezhuResult{Summary: summary, Details: details}, nil
}

func (s *dezhuService) scoreFromTenGods(chartID uuid.UUID, rulesetName string, cfg *types.RulesetConfig, tenGods []*types.TenGod) ([]*types.SupportDetail, error) {
	details := make([]*types.SupportDetail, 0, len(tenGods))
	for _, row := range tenGods {
		class := almanac.TenGodSupportClass(row.Label)
		supportType, isSupport := class.SupportType()
		if !isSupport {
			continue
		}
		if row.Pillar == types.PillarDay && row.SourceKind == types.SourceStem && !cfg.IncludeDayStem {
			continue
		}

		element, ok := almanac.StemElement(row.Stem)
		if !ok {
			return nil, fmt.Errorf("%w: unknown stem %q in ten-god row", ErrDataIntegrity, row.Stem)
		}

		base := cfg.BaseScores[supportType]
		var position, hidden float64
		if row.SourceKind == types.SourceHiddenStem {
			position = cfg.HiddenPositionWeights[row.Pillar]
			hidden = cfg.HiddenRankWeights[row.HiddenRank]
		} else {
			position = cfg.StemPositionWeights[row.Pillar]
			hidden = 1.0
		}

		details = append(details, &types.SupportDetail{
			ChartID:        chartID,
			RulesetID:      rulesetName,
			Pillar:         row.Pillar,
			SourceKind:     row.SourceKind,
			Stem:           row.Stem,
			Element:        element,
			TenGod:         row.Label,
			SupportType:    supportType,
			HiddenRank:     row.HiddenRank,
			BaseScore:      base,
			PositionWeight: position,
			HiddenWeight:   hidden,
			FinalScore:     base * position * hidden,
			Evidence: jsonEvidence(map[string]interface{}{
				"strategy": string(types.StrategyTenGod),
				"ten_god":  row.Label,
				"reason":   fmt.Sprintf("ten god %s classed as %s", row.Label, supportType),
			}),
		})
	}
	return details, nil
}

func (s *dezhuService) scoreFromElements(chartID uuid.UUID, rulesetName string, cfg *types.RulesetConfig, byKind map[types.PillarKind]*types.FourPillar, dayStem string, dayElement types.Element) ([]*types.SupportDetail, error) {
	classify := func(e types.Element) (types.SupportType, bool) {
		if e == dayElement {
			return types.SupportSameClass, true
		}
		if almanac.Generates(e) == dayElement {
			return types.SupportShengfu, true
		}
		return "", false
	}

	var details []*types.SupportDetail
	for _, kind := range []types.PillarKind{types.PillarYear, types.PillarMonth, types.PillarDay, types.PillarHour} {
		pillar := byKind[kind]

		// Visible stem. The day stem is the reference point, not evidence
		// for itself, unless the ruleset opts it in.
		if kind != types.PillarDay || cfg.IncludeDayStem {
			element, ok := almanac.StemElement(pillar.Stem)
			if !ok {
				return nil, fmt.Errorf("%w: unknown stem %q in %s pillar", ErrDataIntegrity, pillar.Stem, kind)
			}
			if supportType, isSupport := classify(element); isSupport {
				base := cfg.BaseScores[supportType]
				position := cfg.StemPositionWeights[kind]
				details = append(details, &types.SupportDetail{
					ChartID:        chartID,
					RulesetID:      rulesetName,
					Pillar:         kind,
					SourceKind:     types.SourceStem,
					Stem:           pillar.Stem,
					Element:        element,
					SupportType:    supportType,
					BaseScore:      base,
					PositionWeight: position,
					HiddenWeight:   1.0,
					FinalScore:     base * position,
					Evidence: jsonEvidence(map[string]interface{}{
						"strategy": string(types.StrategyElementRelation),
						"reason":   relationReason(element, dayElement, supportType),
					}),
				})
			}
		}

		for _, hs := range almanac.HiddenStems(pillar.Branch) {
			element, ok := almanac.StemElement(hs.Stem)
			if !ok {
				return nil, fmt.Errorf("%w: unknown hidden stem %q in branch %q", ErrDataIntegrity, hs.Stem, pillar.Branch)
			}
			supportType, isSupport := classify(element)
			if !isSupport {
				continue
			}
			base := cfg.BaseScores[supportType]
			position := cfg.HiddenPositionWeights[kind]
			hidden := cfg.HiddenRankWeights[hs.Rank]
			details = append(details, &types.SupportDetail{
				ChartID:        chartID,
				RulesetID:      rulesetName,
				Pillar:         kind,
				SourceKind:     types.SourceHiddenStem,
				Stem:           hs.Stem,
				Element:        element,
				SupportType:    supportType,
				HiddenRank:     hs.Rank,
				BaseScore:      base,
				PositionWeight: position,
				HiddenWeight:   hidden,
				FinalScore:     base * position * hidden,
				Evidence: jsonEvidence(map[string]interface{}{
					"strategy": string(types.StrategyElementRelation),
					"branch":   pillar.Branch,
					"rank":     string(hs.Rank),
					"reason":   relationReason(element, dayElement, supportType),
				}),
			})
		}
	}
	return details, nil
}

func relationReason(e, dayElement types.Element, supportType types.SupportType) string {
	if supportType == types.SupportSameClass {
		return fmt.Sprintf("%s matches day master element %s", e, dayElement)
	}
	return fmt.Sprintf("%s generates day master element %s", e, dayElement)
}

// indexPillars validates that the chart carries exactly one pillar per
// kind and indexes them.
func indexPillars(chartID uuid.UUID, pillars []*types.FourPillar) (map[types.PillarKind]*types.FourPillar, error) {
	byKind := make(map[types.PillarKind]*types.FourPillar, len(pillars))
	for _, p := range pillars {
		byKind[p.Pillar] = p
	}
	if len(byKind) < 4 {
		return nil, fmt.Errorf("%w: chart %s has %d of 4 pillars", ErrDataIntegrity, chartID, len(byKind))
	}
	return byKind, nil
}
