package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/xuanji/bazi-backend/internal/logger"
	"github.com/xuanji/bazi-backend/internal/types"
)

type SupportRepo interface {
	// ReplaceForChart swaps out the chart's previous Dezhu evidence for the
	// given ruleset in one transaction, so readers never observe a
	// half-replaced result.
	ReplaceForChart(ctx context.Context, chartID uuid.UUID, rulesetID string, details []*types.SupportDetail, summary *types.SupportSummary) error
	GetLatestSummary(ctx context.Context, tx *gorm.DB, chartID uuid.UUID) (*types.SupportSummary, error)
	GetDetails(ctx context.Context, tx *gorm.DB, chartID uuid.UUID, rulesetID string) ([]*types.SupportDetail, error)
}

type supportRepo struct {
	db           *gorm.DB
	log          *logger.Logger
	detailProbe  tableProbe
	summaryProbe tableProbe
}

func NewSupportRepo(db *gorm.DB, baseLog *logger.Logger) SupportRepo {
	repoLog := baseLog.With("repo", "SupportRepo")
	return &supportRepo{db: db, log: repoLog}
}

func (r *supportRepo) detailsReady() bool {
	return r.detailProbe.check(r.db, &types.SupportDetail{}, types.SupportDetail{}.TableName(), r.log)
}

func (r *supportRepo) summaryReady() bool {
	return r.summaryProbe.check(r.db, &types.SupportSummary{}, types.SupportSummary{}.TableName(), r.log)
}

func (r *supportRepo) ReplaceForChart(ctx context.Context, chartID uuid.UUID, rulesetID string, details []*types.SupportDetail, summary *types.SupportSummary) error {
	if !r.detailsReady() || !r.summaryReady() {
		r.log.Warn("Support tables missing, computed result not persisted", "chart_id", chartID)
		return nil
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Where("chart_id = ? AND ruleset_id = ?", chartID, rulesetID).
			Delete(&types.SupportDetail{}).Error; err != nil {
			return err
		}
		if err := tx.
			Where("chart_id = ? AND ruleset_id = ?", chartID, rulesetID).
			Delete(&types.SupportSummary{}).Error; err != nil {
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

func (r *supportRepo) GetLatestSummary(ctx context.Context, tx *gorm.DB, chartID uuid.UUID) (*types.SupportSummary, error) {
	if !r.summaryReady() {
		return nil, nil
	}

	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.SupportSummary
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

func (r *supportRepo) GetDetails(ctx context.Context, tx *gorm.DB, chartID uuid.UUID, rulesetID string) ([]*types.SupportDetail, error) {
	if !r.detailsReady() {
		return []*types.SupportDetail{}, nil
	}

	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.SupportDetail
	if err := transaction.WithContext(ctx).
		Where("chart_id = ? AND ruleset_id = ?", chartID, rulesetID).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
