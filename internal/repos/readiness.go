package repos

import (
	"sync"

	"gorm.io/gorm"

	"github.com/xuanji/bazi-backend/internal/logger"
)

// tableProbe is the capability check for optionally-provisioned tables.
// Instead of catching missing-relation errors per query, each repo probes
// the schema once per process and branches on the result; a missing table
// is a degraded mode, not an error.
type tableProbe struct {
	once  sync.Once
	ready bool
}

func (p *tableProbe) check(db *gorm.DB, model interface{}, table string, log *logger.Logger) bool {
	p.once.Do(func() {
		p.ready = db.Migrator().HasTable(model)
		if !p.ready {
			log.Warn("Optional table not provisioned, running degraded", "table", table)
		}
	})
	return p.ready
}
