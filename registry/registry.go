// Package registry resolves questionnaires by industry and year, caching
// loaded taxonomies so repeated access is cheap. Taxonomy locations come from
// a YAML configuration file or programmatic registration.
package registry

import (
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/regkit/taxform"
	taxerrors "github.com/regkit/taxform/errors"
)

// Config maps industries to per-year taxonomy directories.
type Config struct {
	Industries map[string]map[int]string `yaml:"industries"`
}

type cacheKey struct {
	industry string
	year     int
}

// Registry resolves and caches questionnaires. Safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	sources map[string]map[int]string
	cache   map[cacheKey]*taxform.Questionnaire
	logger  *slog.Logger
	opts    []taxform.LoadOption
}

// New creates an empty registry.
func New(logger *slog.Logger, opts ...taxform.LoadOption) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		sources: make(map[string]map[int]string),
		cache:   make(map[cacheKey]*taxform.Questionnaire),
		logger:  logger,
		opts:    opts,
	}
}

// LoadConfig builds a registry from a YAML configuration file.
func LoadConfig(path string, logger *slog.Logger, opts ...taxform.LoadOption) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read registry config %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse registry config %s: %w", path, err)
	}

	r := New(logger, opts...)
	for industry, years := range cfg.Industries {
		for year, dir := range years {
			r.Register(industry, year, dir)
		}
	}
	return r, nil
}

// Register maps an industry and year to a taxonomy directory.
func (r *Registry) Register(industry string, year int, dir string) {
	key := strings.ToLower(strings.TrimSpace(industry))
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sources[key] == nil {
		r.sources[key] = make(map[int]string)
	}
	r.sources[key][year] = dir
}

// Registered reports whether the industry is known.
func (r *Registry) Registered(industry string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.sources[strings.ToLower(strings.TrimSpace(industry))]
	return ok
}

// SupportedYears returns the known years for an industry, sorted ascending.
func (r *Registry) SupportedYears(industry string) []int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	years := make([]int, 0, 4)
	for y := range r.sources[strings.ToLower(strings.TrimSpace(industry))] {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}

// Resolve returns the questionnaire for an industry and year, loading the
// taxonomy on first use and caching it. Unknown industries and years fail
// with the currently-known alternatives in the error message.
func (r *Registry) Resolve(industry string, year int) (*taxform.Questionnaire, error) {
	key := strings.ToLower(strings.TrimSpace(industry))

	r.mu.RLock()
	if q, ok := r.cache[cacheKey{key, year}]; ok {
		r.mu.RUnlock()
		return q, nil
	}
	years, known := r.sources[key]
	dir, yearKnown := years[year]
	r.mu.RUnlock()

	if !known {
		return nil, taxerrors.Newf(taxerrors.ErrUnknownIndustry, "",
			"unknown industry %q (known: %s)", industry, strings.Join(r.industries(), ", "))
	}
	if !yearKnown {
		return nil, taxerrors.Newf(taxerrors.ErrUnknownYear, "",
			"industry %q has no taxonomy for %d (known: %s)", industry, year, joinYears(r.SupportedYears(industry)))
	}

	q, err := taxform.LoadDir(dir, key, year, r.opts...)
	if err != nil {
		return nil, fmt.Errorf("resolve %s/%d: %w", key, year, err)
	}

	r.mu.Lock()
	r.cache[cacheKey{key, year}] = q
	r.mu.Unlock()
	r.logger.Debug("taxonomy loaded",
		slog.String("industry", key), slog.Int("year", year), slog.String("dir", dir))
	return q, nil
}

func (r *Registry) industries() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.sources))
	for k := range r.sources {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func joinYears(years []int) string {
	parts := make([]string, len(years))
	for i, y := range years {
		parts[i] = fmt.Sprintf("%d", y)
	}
	return strings.Join(parts, ", ")
}
