package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/xuanji/bazi-backend/internal/logger"
	"github.com/xuanji/bazi-backend/internal/types"
)

type SeasonStateRepo interface {
	// GetByChartAndRuleset returns an empty slice when no snapshot exists
	// or the optional table is absent; callers derive states instead.
	GetByChartAndRuleset(ctx context.Context, tx *gorm.DB, chartID uuid.UUID, rulesetID string) ([]*types.SeasonElementState, error)
	Create(ctx context.Context, tx *gorm.DB, rows []*types.SeasonElementState) ([]*types.SeasonElementState, error)
}

type seasonStateRepo struct {
	db    *gorm.DB
	log   *logger.Logger
	probe tableProbe
}

func NewSeasonStateRepo(db *gorm.DB, baseLog *logger.Logger) SeasonStateRepo {
	repoLog := baseLog.With("repo", "SeasonStateRepo")
	return &seasonStateRepo{db: db, log: repoLog}
}

func (r *seasonStateRepo) ready() bool {
	return r.probe.check(r.db, &types.SeasonElementState{}, types.SeasonElementState{}.TableName(), r.log)
}

func (r *seasonStateRepo) GetByChartAndRuleset(ctx context.Context, tx *gorm.DB, chartID uuid.UUID, rulesetID string) ([]*types.SeasonElementState, error) {
	if !r.ready() {
		return []*types.SeasonElementState{}, nil
	}

	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.SeasonElementState
	if err := transaction.WithContext(ctx).
		Where("chart_id = ? AND ruleset_id = ?", chartID, rulesetID).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *seasonStateRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.SeasonElementState) ([]*types.SeasonElementState, error) {
	if !r.ready() {
		r.log.Warn("Season state table missing, create skipped")
		return rows, nil
	}

	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(rows) == 0 {
		return []*types.SeasonElementState{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
