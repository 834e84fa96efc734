package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/xuanji/bazi-backend/internal/logger"
	"github.com/xuanji/bazi-backend/internal/types"
)

type FourPillarRepo interface {
	GetByChartID(ctx context.Context, tx *gorm.DB, chartID uuid.UUID) ([]*types.FourPillar, error)
	Create(ctx context.Context, tx *gorm.DB, pillars []*types.FourPillar) ([]*types.FourPillar, error)
}

type fourPillarRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewFourPillarRepo(db *gorm.DB, baseLog *logger.Logger) FourPillarRepo {
	repoLog := baseLog.With("repo", "FourPillarRepo")
	return &fourPillarRepo{db: db, log: repoLog}
}

func (r *fourPillarRepo) GetByChartID(ctx context.Context, tx *gorm.DB, chartID uuid.UUID) ([]*types.FourPillar, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.FourPillar
	if err := transaction.WithContext(ctx).
		Where("chart_id = ?", chartID).
		Order("position ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *fourPillarRepo) Create(ctx context.Context, tx *gorm.DB, pillars []*types.FourPillar) ([]*types.FourPillar, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(pillars) == 0 {
		return []*types.FourPillar{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&pillars).Error; err != nil {
		return nil, err
	}
	return pillars, nil
}
