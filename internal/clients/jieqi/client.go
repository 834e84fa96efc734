// Package jieqi supplies solar-term (jieqi) timestamps per calendar year.
// The primary implementation calls an external astronomical service; the
// fallback builds terms from the fixed approximate calendar in the
// almanac package.
package jieqi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/xuanji/bazi-backend/internal/almanac"
	"github.com/xuanji/bazi-backend/internal/logger"
	"github.com/xuanji/bazi-backend/internal/utils"
)

const (
	PrecisionAstronomical = "astronomical"
	PrecisionApproximate  = "approximate"
)

// Term is one jieqi boundary of a calendar year.
type Term struct {
	Name string    `json:"name"`
	Time time.Time `json:"time"`
}

type Provider interface {
	TermsForYear(ctx context.Context, year int) ([]Term, error)
	Precision() string
}

type Config struct {
	BaseURL string
	Timeout time.Duration
}

func ConfigFromEnv(log *logger.Logger) Config {
	timeoutSec := utils.GetEnvAsInt("JIEQI_TIMEOUT_SECONDS", 10, log)
	return Config{
		BaseURL: strings.TrimSpace(utils.GetEnv("JIEQI_BASE_URL", "", log)),
		Timeout: time.Duration(timeoutSec) * time.Second,
	}
}

type HTTPProvider struct {
	cfg  Config
	http *http.Client
	log  *logger.Logger
}

// NewHTTPProvider returns nil when no base URL is configured; callers
// treat a nil provider as "no astronomical source available".
func NewHTTPProvider(log *logger.Logger, cfg Config) *HTTPProvider {
	if cfg.BaseURL == "" {
		return nil
	}
	return &HTTPProvider{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
		log:  log.With("client", "JieqiHTTPProvider"),
	}
}

func (p *HTTPProvider) Precision() string { return PrecisionAstronomical }

func (p *HTTPProvider) TermsForYear(ctx context.Context, year int) ([]Term, error) {
	url := fmt.Sprintf("%s/v1/solar-terms/%d", strings.TrimRight(p.cfg.BaseURL, "/"), year)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := p.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch solar terms for %d: %w", year, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("solar term source returned %d for %d: %s", resp.StatusCode, year, string(body))
	}
	var out struct {
		Terms []Term `json:"terms"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode solar terms for %d: %w", year, err)
	}
	return out.Terms, nil
}

// ApproxProvider derives terms from the fixed month/day calendar. It is
// explicitly lower precision: actual solar terms drift around a day from
// these positions across years.
type ApproxProvider struct{}

func NewApproxProvider() *ApproxProvider { return &ApproxProvider{} }

func (p *ApproxProvider) Precision() string { return PrecisionApproximate }

func (p *ApproxProvider) TermsForYear(ctx context.Context, year int) ([]Term, error) {
	terms := make([]Term, 0, len(almanac.ApproxSolarTerms))
	for _, t := range almanac.ApproxSolarTerms {
		terms = append(terms, Term{
			Name: t.Name,
			Time: time.Date(year, time.Month(t.Month), t.Day, 0, 0, 0, 0, time.UTC),
		})
	}
	return terms, nil
}
