package services

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"

	"github.com/xuanji/bazi-backend/internal/logger"
	"github.com/xuanji/bazi-backend/internal/repos"
	"github.com/xuanji/bazi-backend/internal/types"
)

const DefaultRulesetName = "default"

// RulesetResolver loads a named weighting configuration. A missing table
// or missing row falls back to the built-in defaults; only an explicit row
// that fails to parse or validate is rejected.
type RulesetResolver interface {
	Resolve(ctx context.Context, name string) (*types.RulesetConfig, error)
	SeedFromFile(ctx context.Context, path string) error
}

type rulesetResolver struct {
	db   *gorm.DB
	log  *logger.Logger
	repo repos.RulesetRepo
}

func NewRulesetResolver(db *gorm.DB, baseLog *logger.Logger, repo repos.RulesetRepo) RulesetResolver {
	svcLog := baseLog.With("service", "RulesetResolver")
	return &rulesetResolver{db: db, log: svcLog, repo: repo}
}

func (s *rulesetResolver) Resolve(ctx context.Context, name string) (*types.RulesetConfig, error) {
	if name == "" {
		name = DefaultRulesetName
	}

	row, err := s.repo.GetByName(ctx, nil, name)
	if err != nil {
		return nil, err
	}
	if row == nil {
		s.log.Debug("Ruleset not resolvable, using built-in defaults", "name", name)
		cfg := types.DefaultRuleset()
		cfg.Name = name
		return cfg, nil
	}

	cfg, err := row.ParseConfig()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDataIntegrity, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDataIntegrity, err)
	}
	return cfg, nil
}

// SeedFromFile upserts rulesets from a YAML file. Named rulesets are data
// provisioned by the admin surface upstream; the seed file is the
// core-local way to load them at startup.
func (s *rulesetResolver) SeedFromFile(ctx context.Context, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read ruleset seed file: %w", err)
	}

	var seed struct {
		Rulesets []types.RulesetConfig `yaml:"rulesets"`
	}
	if err := yaml.Unmarshal(raw, &seed); err != nil {
		return fmt.Errorf("parse ruleset seed file: %w", err)
	}

	for i := range seed.Rulesets {
		cfg := &seed.Rulesets[i]
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("%w: seed ruleset %d: %v", ErrDataIntegrity, i, err)
		}
		encoded, err := cfg.EncodeConfig()
		if err != nil {
			return err
		}
		version := cfg.Version
		if version == "" {
			version = "v1"
		}
		row := &types.Ruleset{Name: cfg.Name, Version: version, Config: encoded}
		if err := s.repo.Upsert(ctx, nil, row); err != nil {
			return fmt.Errorf("upsert seed ruleset %q: %w", cfg.Name, err)
		}
		s.log.Info("Seeded ruleset", "name", cfg.Name, "version", version)
	}
	return nil
}
