package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/xuanji/bazi-backend/internal/logger"
	"github.com/xuanji/bazi-backend/internal/types"
)

type DrainRepo interface {
	// ReplaceForChart swaps out the chart's previous Ke-Xie evidence for
	// the given ruleset in one transaction.
	ReplaceForChart(ctx context.Context, chartID uuid.UUID, rulesetID string, details []*types.DrainDetail, summary *types.DrainSummary) error
	GetLatestSummary(ctx context.Context, tx *gorm.DB, chartID uuid.UUID) (*types.DrainSummary, error)
	GetDetails(ctx context.Context, tx *gorm.DB, chartID uuid.UUID, rulesetID string) ([]*types.DrainDetail, error)
}

type drainRepo struct {
	db           *gorm.DB
	log          *logger.Logger
	detailProbe  tableProbe
	summaryProbe tableProbe
}

func NewDrainRepo(db *gorm.DB, baseLog *logger.Logger) DrainRepo {
	repoLog := baseLog.With("repo", "DrainRepo")
	return &drainRepo{db: db, log: repoLog}
}

func (r *drainRepo) detailsReady() bool {
	return r.detailProbe.check(r.db, &types.DrainDetail{}, types.DrainDetail{}.TableName(), r.log)
}

func (r *drainRepo) summaryReady() bool {
	return r.summaryProbe.check(r.db, &types.DrainSummary{}, types.DrainSummary{}.TableName(), r.log)
}

func (r *drainRepo) ReplaceForChart(ctx context.Context, chartID uuid.UUID, rulesetID string, details []*types.DrainDetail, summary *types.DrainSummary) error {
	if !r.detailsReady() || !r.summaryReady() {
		r.log.Warn("Drain tables missing, computed result not persisted", "chart_id", chartID)
		return nil
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Where("chart_id = ? AND ruleset_id = ?", chartID, rulesetID).
			Delete(&types.DrainDetail{}).Error; err != nil {
			return err
		}
		if err := tx.
			Where("chart_id = ? AND ruleset_id = ?", chartID, rulesetID).
			Delete(&types.DrainSummary{}).Error; err != nil {
			return err
		}
		if len(details) > 0 {
			if err := tx.Create(&details).Error; err != nil {
				return err
			}
		}
		return tx.Create(summary).Error
	})
}

func (r *drainRepo) GetLatestSummary(ctx context.Context, tx *gorm.DB, chartID uuid.UUID) (*types.DrainSummary, error) {
	if !r.summaryReady() {
		return nil, nil
	}

	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.DrainSummary
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

func (r *drainRepo) GetDetails(ctx context.Context, tx *gorm.DB, chartID uuid.UUID, rulesetID string) ([]*types.DrainDetail, error) {
	if !r.detailsReady() {
		return []*types.DrainDetail{}, nil
	}

	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.DrainDetail
	if err := transaction.WithContext(ctx).
		Where("chart_id = ? AND ruleset_id = ?", chartID, rulesetID).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
