package repos

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xuanji/bazi-backend/internal/logger"
	"github.com/xuanji/bazi-backend/internal/types"
)

type RulesetRepo interface {
	// GetByName returns (nil, nil) when the row or the table is absent.
	GetByName(ctx context.Context, tx *gorm.DB, name string) (*types.Ruleset, error)
	Upsert(ctx context.Context, tx *gorm.DB, ruleset *types.Ruleset) error
	TableReady() bool
}

type rulesetRepo struct {
	db    *gorm.DB
	log   *logger.Logger
	probe tableProbe
}

func NewRulesetRepo(db *gorm.DB, baseLog *logger.Logger) RulesetRepo {
	repoLog := baseLog.With("repo", "RulesetRepo")
	return &rulesetRepo{db: db, log: repoLog}
}

func (r *rulesetRepo) TableReady() bool {
	return r.probe.check(r.db, &types.Ruleset{}, types.Ruleset{}.TableName(), r.log)
}

func (r *rulesetRepo) GetByName(ctx context.Context, tx *gorm.DB, name string) (*types.Ruleset, error) {
	if !r.TableReady() {
		return nil, nil
	}

	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var result types.Ruleset
	err := transaction.WithContext(ctx).
		Where("name = ?", name).
		First(&result).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &result, nil
}

func (r *rulesetRepo) Upsert(ctx context.Context, tx *gorm.DB, ruleset *types.Ruleset) error {
	if !r.TableReady() {
		r.log.Warn("Ruleset table missing, upsert skipped", "name", ruleset.Name)
		return nil
	}

	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	return transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{"version", "config", "updated_at"}),
		}).
		Create(ruleset).Error
}
