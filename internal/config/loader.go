package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"slices"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultYAML []byte

// Loader reads the embedded defaults and merges an optional override file
// over them. Results are cached until Invalidate.
type Loader struct {
	path string // override file; empty means defaults only

	mu     sync.RWMutex
	cached *Balance
}

// NewLoader creates a loader for the given override path.
func NewLoader(path string) *Loader {
	return &Loader{path: path}
}

// Path returns the override file the loader watches.
func (l *Loader) Path() string { return l.path }

// Balance returns the validated, normalized balance.
func (l *Loader) Balance() (Balance, error) {
	l.mu.RLock()
	if l.cached != nil {
		b := *l.cached
		l.mu.RUnlock()
		return b, nil
	}
	l.mu.RUnlock()

	b, err := Load(l.path)
	if err != nil {
		return Balance{}, err
	}
	l.mu.Lock()
	l.cached = &b
	l.mu.Unlock()
	return b, nil
}

// Invalidate clears the cache. Call after hot-reload detects changes.
func (l *Loader) Invalidate() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cached = nil
}

// LoadMerged returns the defaults merged with the file at path, without
// normalization.
func LoadMerged(path string) (RawConfig, error) {
	var def RawConfig
	if err := yaml.Unmarshal(defaultYAML, &def); err != nil {
		return RawConfig{}, fmt.Errorf("embedded default: %w", err)
	}
	if path == "" {
		return def, nil
	}
	over, err := readYAML(path)
	if err != nil {
		return RawConfig{}, fmt.Errorf("read %s: %w", path, err)
	}
	return mergeRaw(def, over), nil
}

// Load merges, validates and normalizes. A missing override file is not an
// error.
func Load(path string) (Balance, error) {
	raw, err := LoadMerged(path)
	if err != nil {
		return Balance{}, err
	}
	if err := ValidateRaw(raw); err != nil {
		return Balance{}, err
	}
	return Normalize(raw), nil
}

// Default returns the shipped balance.
func Default() (Balance, error) { return Load("") }

// MustDefault is Default for tests and tools; it panics on a broken embed.
func MustDefault() Balance {
	b, err := Default()
	if err != nil {
		panic(err)
	}
	return b
}

// readYAML loads a YAML file into RawConfig. Missing files return zero cfg, no error.
func readYAML(path string) (RawConfig, error) {
	var cfg RawConfig
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return RawConfig{}, nil
		}
		return RawConfig{}, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return RawConfig{}, err
	}
	return cfg, nil
}

// pick returns b when set, else a.
func pick[T any](a, b *T) *T {
	if b != nil {
		return b
	}
	return a
}

// mergeRaw performs a deep merge: 'b' overrides 'a' where set.
// Lists (producers, storage, names, packs) are replaced, not appended.
func mergeRaw(a, b RawConfig) RawConfig {
	out := a

	if b.Version != "" {
		out.Version = b.Version
	}
	if b.Notes != "" {
		out.Notes = b.Notes
	}
	out.TickHz = pick(a.TickHz, b.TickHz)
	out.UIPulseSeconds = pick(a.UIPulseSeconds, b.UIPulseSeconds)
	out.AutosaveSeconds = pick(a.AutosaveSeconds, b.AutosaveSeconds)
	out.ProducerCostRatio = pick(a.ProducerCostRatio, b.ProducerCostRatio)
	out.ManualBasePerTap = pick(a.ManualBasePerTap, b.ManualBasePerTap)

	if len(b.Producers) > 0 {
		out.Producers = slices.Clone(b.Producers)
	}
	if len(b.Storage) > 0 {
		out.Storage = slices.Clone(b.Storage)
	}
	out.Materials = mergeTrack(a.Materials, b.Materials)
	out.Recipes = mergeTrack(a.Recipes, b.Recipes)

	// milestones
	switch {
	case a.Milestones == nil:
		out.Milestones = b.Milestones
	case b.Milestones != nil:
		m := *a.Milestones
		m.ProducerReward = pick(m.ProducerReward, b.Milestones.ProducerReward)
		m.ProducerStep = pick(m.ProducerStep, b.Milestones.ProducerStep)
		m.RecipeReward = pick(m.RecipeReward, b.Milestones.RecipeReward)
		out.Milestones = &m
	}

	// ads
	switch {
	case a.Ads == nil:
		out.Ads = b.Ads
	case b.Ads != nil:
		c := *a.Ads
		c.BuffPct = pick(c.BuffPct, b.Ads.BuffPct)
		c.BuffSeconds = pick(c.BuffSeconds, b.Ads.BuffSeconds)
		c.BonusStepSeconds = pick(c.BonusStepSeconds, b.Ads.BonusStepSeconds)
		c.BonusCapSeconds = pick(c.BonusCapSeconds, b.Ads.BonusCapSeconds)
		c.CoinDailyLimit = pick(c.CoinDailyLimit, b.Ads.CoinDailyLimit)
		c.CoinReward = pick(c.CoinReward, b.Ads.CoinReward)
		c.BoostSeconds = pick(c.BoostSeconds, b.Ads.BoostSeconds)
		out.Ads = &c
	}

	// offline
	switch {
	case a.Offline == nil:
		out.Offline = b.Offline
	case b.Offline != nil:
		c := *a.Offline
		c.KimchiCapHours = pick(c.KimchiCapHours, b.Offline.KimchiCapHours)
		c.CountKeys = pick(c.CountKeys, b.Offline.CountKeys)
		c.KeyCapHours = pick(c.KeyCapHours, b.Offline.KeyCapHours)
		c.MinSeconds = pick(c.MinSeconds, b.Offline.MinSeconds)
		c.MaxSeconds = pick(c.MaxSeconds, b.Offline.MaxSeconds)
		out.Offline = &c
	}

	if b.Drip != nil && b.Drip.SecondsPerKey != nil {
		out.Drip = b.Drip
	}

	// shop
	switch {
	case a.Shop == nil:
		out.Shop = b.Shop
	case b.Shop != nil:
		c := *a.Shop
		if b.Shop.Currency != "" {
			c.Currency = b.Shop.Currency
		}
		c.TaxRate = pick(c.TaxRate, b.Shop.TaxRate)
		if len(b.Shop.Packs) > 0 {
			c.Packs = slices.Clone(b.Shop.Packs)
		}
		out.Shop = &c
	}

	// persistence
	switch {
	case a.Persistence == nil:
		out.Persistence = b.Persistence
	case b.Persistence != nil:
		c := *a.Persistence
		if b.Persistence.Dir != "" {
			c.Dir = b.Persistence.Dir
		}
		if b.Persistence.File != "" {
			c.File = b.Persistence.File
		}
		c.Compress = pick(c.Compress, b.Persistence.Compress)
		out.Persistence = &c
	}

	return out
}

func mergeTrack(a, b *RawTrack) *RawTrack {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	c := *a
	if len(b.Names) > 0 {
		c.Names = slices.Clone(b.Names)
	}
	c.BaseCost = pick(c.BaseCost, b.BaseCost)
	c.CostGrowth = pick(c.CostGrowth, b.CostGrowth)
	c.MaxLevel = pick(c.MaxLevel, b.MaxLevel)
	return &c
}
