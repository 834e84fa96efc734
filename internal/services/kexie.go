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

// CombinationSignal is the externally-detected transformative combination
// (he-hua) input. This scorer never detects combinations itself; absent
// the signal the ZHIHUA category scores zero.
type CombinationSignal struct {
	Element types.Element `json:"element"`
	Stem    string        `json:"stem,omitempty"`
	Partner string        `json:"partner,omitempty"`
	Note    string        `json:"note,omitempty"`
}

type KexieComputeRequest struct {
	ChartID     uuid.UUID          `json:"chart_id"`
	RulesetID   string             `json:"ruleset_id,omitempty"`
	Combination *CombinationSignal `json:"combination,omitempty"`
}

type KexieResult struct {
	Summary *types.DrainSummary  `json:"summary"`
	Details []*types.DrainDetail `json:"details"`
}

type KexieService interface {
	Compute(ctx context.Context, req KexieComputeRequest) (*KexieResult, error)
	Get(ctx context.Context, chartID uuid.UUID) (*KexieResult, error)
}

type kexieService struct {
	db         *gorm.DB
	log        *logger.Logger
	rulesets   RulesetResolver
	pillarRepo repos.FourPillarRepo
	seasonRepo repos.SeasonStateRepo
	drainRepo  repos.DrainRepo
}

func NewKexieService(db *gorm.DB, baseLog *logger.Logger, rulesets RulesetResolver, pillarRepo repos.FourPillarRepo, seasonRepo repos.SeasonStateRepo, drainRepo repos.DrainRepo) KexieService {
	svcLog := baseLog.With("service", "KexieService")
	return &kexieService{
		db:         db,
		log:        svcLog,
		rulesets:   rulesets,
		pillarRepo: pillarRepo,
		seasonRepo: seasonRepo,
		drainRepo:  drainRepo,
	}
}

// drainTarget is one of the relations evaluated against the day master.
type drainTarget struct {
	evidenceType types.EvidenceType
	sourceType   types.SourceType
	element      types.Element
	relation     string
}

func (s *kexieService) Compute(ctx context.Context, req KexieComputeRequest) (*KexieResult, error) {
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
		states  []*types.SeasonElementState
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var e error
		pillars, e = s.pillarRepo.GetByChartID(gctx, nil, req.ChartID)
		return e
	})
	g.Go(func() error {
		var e error
		states, e = s.seasonRepo.GetByChartAndRuleset(gctx, nil, req.ChartID, rulesetName)
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

	seasons := newSeasonLookup(states, byKind[types.PillarMonth].Branch)
	presence, err := scanElementPresence(byKind, dayStem)
	if err != nil {
		return nil, err
	}

	targets := []drainTarget{
		{types.EvidenceXie, types.SourceShishang, almanac.Generates(dayElement), "day master generates"},
		{types.EvidenceHao, types.SourceCai, almanac.Overcomes(dayElement), "day master overcomes"},
		{types.EvidenceKe, types.SourceGuansha, almanac.OvercomeBy(dayElement), "overcomes day master"},
	}

	var details []*types.DrainDetail
	for _, target := range targets {
		p := presence[target.element]
		if p.total() == 0 {
			continue
		}

		exposed := p.visible > 0
		rooted := p.hidden > 0
		gathered := target.evidenceType == types.EvidenceKe && p.total() >= 2

		state, seasonSource := seasons.stateFor(target.element)
		seasonWeight := cfg.SeasonWeight(state)

		base := seasonWeight
		if exposed {
			base += cfg.TouGanWeight
		}
		if rooted {
			base += cfg.TongGenWeight
		}
		if gathered {
			base += cfg.ChengShiWeight
		}
		typeWeight := cfg.TypeWeights[target.evidenceType]
		score := base * typeWeight

		breakdown := map[string]interface{}{
			"season_weight": seasonWeight,
			"type_weight":   typeWeight,
			"base_score":    base,
		}
		if exposed {
			breakdown["tou_gan_weight"] = cfg.TouGanWeight
		}
		if rooted {
			breakdown["tong_gen_weight"] = cfg.TongGenWeight
		}
		if gathered {
			breakdown["cheng_shi_weight"] = cfg.ChengShiWeight
		}

		details = append(details, &types.DrainDetail{
			ChartID:          req.ChartID,
			RulesetID:        rulesetName,
			DayMasterStem:    dayStem,
			DayMasterElement: dayElement,
			EvidenceType:     target.evidenceType,
			SourceType:       target.sourceType,
			TargetElement:    target.element,
			SeasonState:      state,
			TouGan:           exposed,
			TongGen:          rooted,
			ChengShi:         gathered,
			Score:            score,
			WeightBreakdown:  jsonEvidence(breakdown),
			Reason:           fmt.Sprintf("%s %s: %s present %d time(s)", target.relation, target.element, target.element, p.total()),
			Evidence: jsonEvidence(map[string]interface{}{
				"relation":      target.relation,
				"visible_count": p.visible,
				"hidden_count":  p.hidden,
				"season_state":  string(state),
				"season_source": seasonSource,
			}),
		})
	}

	if req.Combination != nil {
		detail, err := s.scoreCombination(req, rulesetName, cfg, dayStem, dayElement, seasons)
		if err != nil {
			return nil, err
		}
		details = append(details, detail)
	}

	summary := summarizeDrain(req.ChartID, rulesetName, dayStem, dayElement, details)

	result := &KexieResult{Summary: summary, Details: details}
	if err := s.drainRepo.ReplaceForChart(ctx, req.ChartID, rulesetName, details, summary); err != nil {
		return result, fmt.Errorf("persist kexie for chart %s: %w", req.ChartID, err)
	}
	return result, nil
}

func (s *kexieService) Get(ctx context.Context, chartID uuid.UUID) (*KexieResult, error) {
	if chartID == uuid.Nil {
		return nil, fmt.Errorf("%w: chart id is required", ErrValidation)
	}

	summary, err := s.drainRepo.GetLatestSummary(ctx, nil, chartID)
	if err != nil {
		return nil, err
	}
	if summary == nil {
		return nil, fmt.Errorf("%w: no kexie computed for chart %s", ErrNotFound, chartID)
	}
	details, err := s.drainRepo.GetDetails(ctx, nil, chartID, summary.RulesetID)
	if err != nil {
		return nil, err
	}
	return &KexieResult{Summary: summary, Details: details}, nil
}

func (s *kexieService) scoreCombination(req KexieComputeRequest, rulesetName string, cfg *types.RulesetConfig, dayStem string, dayElement types.Element, seasons *seasonLookup) (*types.DrainDetail, error) {
	sig := req.Combination
	if sig.Element == "" {
		return nil, fmt.Errorf("%w: combination signal has no element", ErrValidation)
	}

	state, seasonSource := seasons.stateFor(sig.Element)
	seasonWeight := cfg.SeasonWeight(state)
	typeWeight := cfg.TypeWeights[types.EvidenceZhihua]
	score := seasonWeight * typeWeight

	return &types.DrainDetail{
		ChartID:          req.ChartID,
		RulesetID:        rulesetName,
		DayMasterStem:    dayStem,
		DayMasterElement: dayElement,
		EvidenceType:     types.EvidenceZhihua,
		SourceType:       types.SourceHehua,
		TargetElement:    sig.Element,
		SeasonState:      state,
		HeHua:            true,
		Score:            score,
		WeightBreakdown: jsonEvidence(map[string]interface{}{
			"season_weight": seasonWeight,
			"type_weight":   typeWeight,
			"base_score":    seasonWeight,
		}),
		Reason: fmt.Sprintf("combination transforms toward %s", sig.Element),
		Evidence: jsonEvidence(map[string]interface{}{
			"stem":          sig.Stem,
			"partner":       sig.Partner,
			"note":          sig.Note,
			"season_state":  string(state),
			"season_source": seasonSource,
		}),
	}, nil
}

func summarizeDrain(chartID uuid.UUID, rulesetName, dayStem string, dayElement types.Element, details []*types.DrainDetail) *types.DrainSummary {
	summary := &types.DrainSummary{
		ChartID:   chartID,
		RulesetID: rulesetName,
	}
	for _, d := range details {
		switch d.EvidenceType {
		case types.EvidenceXie:
			summary.XieScore += d.Score
		case types.EvidenceHao:
			summary.HaoScore += d.Score
		case types.EvidenceKe:
			summary.KeScore += d.Score
		case types.EvidenceZhihua:
			summary.ZhihuaScore += d.Score
		}
	}
	summary.TotalScore = summary.XieScore + summary.HaoScore + summary.KeScore + summary.ZhihuaScore
	summary.Evidence = jsonEvidence(map[string]interface{}{
		"day_master_stem":    dayStem,
		"day_master_element": string(dayElement),
		"ruleset":            rulesetName,
		"detail_count":       len(details),
	})
	return summary
}

// elementPresence counts where an element shows up in the chart: visible
// stems versus hidden stems of any branch.
type elementPresence struct {
	visible int
	hidden  int
}

func (p elementPresence) total() int { return p.visible + p.hidden }

func scanElementPresence(byKind map[types.PillarKind]*types.FourPillar, dayStem string) (map[types.Element]elementPresence, error) {
	presence := make(map[types.Element]elementPresence)
	for _, kind := range []types.PillarKind{types.PillarYear, types.PillarMonth, types.PillarDay, types.PillarHour} {
		pillar := byKind[kind]

		// The day stem is the day master itself, never a drain target.
		if !(kind == types.PillarDay && pillar.Stem == dayStem) {
			element, ok := almanac.StemElement(pillar.Stem)
			if !ok {
				return nil, fmt.Errorf("%w: unknown stem %q in %s pillar", ErrDataIntegrity, pillar.Stem, kind)
			}
			p := presence[element]
			p.visible++
			presence[element] = p
		}

		for _, hs := range almanac.HiddenStems(pillar.Branch) {
			element, ok := almanac.StemElement(hs.Stem)
			if !ok {
				return nil, fmt.Errorf("%w: unknown hidden stem %q in branch %q", ErrDataIntegrity, hs.Stem, pillar.Branch)
			}
			p := presence[element]
			p.hidden++
			presence[element] = p
		}
	}
	return presence, nil
}

// seasonLookup answers each element's seasonal state, preferring the
// stored snapshot and deriving from the month branch otherwise.
type seasonLookup struct {
	stored       map[types.Element]types.SeasonState
	monthElement types.Element
}

func newSeasonLookup(states []*types.SeasonElementState, monthBranch string) *seasonLookup {
	stored := make(map[types.Element]types.SeasonState, len(states))
	for _, row := range states {
		stored[row.Element] = row.State
	}
	me, _ := almanac.BranchElement(monthBranch)
	return &seasonLookup{stored: stored, monthElement: me}
}

func (l *seasonLookup) stateFor(e types.Element) (types.SeasonState, string) {
	if state, ok := l.stored[e]; ok {
		return state, "stored"
	}
	return l.derive(e), "derived"
}

// derive reads the element's vitality off the month branch element: an
// element flourishes in its own month, is supported when the month element
// generates it, rests when it generates the month element, is trapped when
// it overcomes the month element, and dead when the month element
// overcomes it.
func (l *seasonLookup) derive(e types.Element) types.SeasonState {
	if l.monthElement == "" {
		return types.StateUnknown
	}
	switch {
	case e == l.monthElement:
		return types.StateFlourishing
	case almanac.Generates(l.monthElement) == e:
		return types.StateSupported
	case almanac.Generates(e) == l.monthElement:
		return types.StateResting
	case almanac.Overcomes(e) == l.monthElement:
		return types.StateTrapped
	case almanac.Overcomes(l.monthElement) == e:
		return types.StateDead
	}
	return types.StateUnknown
}
