package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/xuanji/bazi-backend/internal/logger"
	"github.com/xuanji/bazi-backend/internal/types"
)

type TenGodRepo interface {
	// GetByChartID returns an empty slice when no classifications exist or
	// the optional table is absent.
	GetByChartID(ctx context.Context, tx *gorm.DB, chartID uuid.UUID) ([]*types.TenGod, error)
	Create(ctx context.Context, tx *gorm.DB, rows []*types.TenGod) ([]*types.TenGod, error)
}

type tenGodRepo struct {
	db    *gorm.DB
	log   *logger.Logger
	probe tableProbe
}

func NewTenGodRepo(db *gorm.DB, baseLog *logger.Logger) TenGodRepo {
	repoLog := baseLog.With("repo", "TenGodRepo")
	return &tenGodRepo{db: db, log: repoLog}
}

func (r *tenGodRepo) ready() bool {
	return r.probe.check(r.db, &types.TenGod{}, types.TenGod{}.TableName(), r.log)
}

func (r *tenGodRepo) GetByChartID(ctx context.Context, tx *gorm.DB, chartID uuid.UUID) ([]*types.TenGod, error) {
	if !r.ready() {
		return []*types.TenGod{}, nil
	}

	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.TenGod
	if err := transaction.WithContext(ctx).
		Where("chart_id = ?", chartID).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *tenGodRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.TenGod) ([]*types.TenGod, error) {
	if !r.ready() {
		r.log.Warn("Ten-god table missing, create skipped")
		return rows, nil
	}

	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(rows) == 0 {
		return []*types.TenGod{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
