package services

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/xuanji/bazi-backend/internal/logger"
	"github.com/xuanji/bazi-backend/internal/types"
)

var testDBSeq int64

// newTestDB opens a fresh in-memory sqlite database and migrates the given
// models. Passing no models leaves the schema unprovisioned, which is how
// the degraded-mode paths are exercised.
func newTestDB(t *testing.T, models ...interface{}) *gorm.DB {
	t.Helper()
	n := atomic.AddInt64(&testDBSeq, 1)
	dsn := fmt.Sprintf("file:svc_test_%d?mode=memory&cache=shared", n)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if len(models) > 0 {
		if err := db.AutoMigrate(models...); err != nil {
			t.Fatalf("migrate: %v", err)
		}
	}
	return db
}

func allModels() []interface{} {
	return []interface{}{
		&types.FourPillar{},
		&types.Ruleset{},
		&types.TenGod{},
		&types.SeasonElementState{},
		&types.DayunMeta{},
		&types.DayunPillar{},
		&types.SupportDetail{},
		&types.SupportSummary{},
		&types.DrainDetail{},
		&types.DrainSummary{},
	}
}

type pillarSpec struct {
	kind   types.PillarKind
	stem   string
	branch string
}

func seedChart(t *testing.T, db *gorm.DB, chartID uuid.UUID, specs []pillarSpec) {
	t.Helper()
	for i, spec := range specs {
		row := &types.FourPillar{
			ChartID: chartID,
			Pillar:  spec.kind,
			Order:   i + 1,
			Stem:    spec.stem,
			Branch:  spec.branch,
		}
		if err := db.Create(row).Error; err != nil {
			t.Fatalf("seed pillar %s: %v", spec.kind, err)
		}
	}
}

func nopLog() *logger.Logger {
	return logger.NewNop()
}
