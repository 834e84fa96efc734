package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/xuanji/bazi-backend/internal/logger"
	"github.com/xuanji/bazi-backend/internal/types"
)

type DayunRepo interface {
	// ReplaceForChart deletes the chart's previous meta (for the same rule
	// version) and pillar rows, then inserts the fresh computation, all in
	// one transaction. With the tables unprovisioned it warns and returns
	// nil; the computed result stays with the caller.
	ReplaceForChart(ctx context.Context, meta *types.DayunMeta, pillars []*types.DayunPillar) error
	GetLatestMeta(ctx context.Context, tx *gorm.DB, chartID uuid.UUID) (*types.DayunMeta, error)
	GetPillars(ctx context.Context, tx *gorm.DB, chartID uuid.UUID) ([]*types.DayunPillar, error)
}

type dayunRepo struct {
	db          *gorm.DB
	log         *logger.Logger
	metaProbe   tableProbe
	pillarProbe tableProbe
}

func NewDayunRepo(db *gorm.DB, baseLog *logger.Logger) DayunRepo {
	repoLog := baseLog.With("repo", "DayunRepo")
	return &dayunRepo{db: db, log: repoLog}
}

func (r *dayunRepo) metaReady() bool {
	return r.metaProbe.check(r.db, &types.DayunMeta{}, types.DayunMeta{}.TableName(), r.log)
}

func (r *dayunRepo) pillarsReady() bool {
	return r.pillarProbe.check(r.db, &types.DayunPillar{}, types.DayunPillar{}.TableName(), r.log)
}

func (r *dayunRepo) ReplaceForChart(ctx context.Context, meta *types.DayunMeta, pillars []*types.DayunPillar) error {
	if !r.metaReady() || !r.pillarsReady() {
		r.log.Warn("Dayun tables missing, computed result not persisted", "chart_id", meta.ChartID)
		return nil
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Where("chart_id = ? AND rule_version = ?", meta.ChartID, meta.RuleVersion).
			Delete(&types.DayunMeta{}).Error; err != nil {
			return err
		}
		if err := tx.
			Where("chart_id = ?", meta.ChartID).
			Delete(&types.DayunPillar{}).Error; err != nil {
			return err
		}
		if err := tx.Create(meta).Error; err != nil {
			return err
		}
		if len(pillars) > 0 {
			if err := tx.Create(&pillars).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *dayunRepo) GetLatestMeta(ctx context.Context, tx *gorm.DB, chartID uuid.UUID) (*types.DayunMeta, error) {
	if !r.metaReady() {
		return nil, nil
	}

	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.DayunMeta
	if err := transaction.WithContext(ctx).
		Where("chart_id = ?", chartID).
		Order("created_at DESC").
		Limit(1).
		Find(&results).Error; err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return results[0], nil
}

func (r *dayunRepo) GetPillars(ctx context.Context, tx *gorm.DB, chartID uuid.UUID) ([]*types.DayunPillar, error) {
	if !r.pillarsReady() {
		return []*types.DayunPillar{}, nil
	}

	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.DayunPillar
	if err := transaction.WithContext(ctx).
		Where("chart_id = ?", chartID).
		Order("sequence ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
