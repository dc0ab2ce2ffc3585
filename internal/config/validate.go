package config

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalid marks a configuration that failed validation.
var ErrInvalid = errors.New("invalid config")

// ValidateRaw checks semantic constraints of a merged RawConfig. Every
// problem is reported, joined into one error.
func ValidateRaw(cfg RawConfig) error {
	var errs []string
	need := func(ok bool, msg string) {
		if !ok {
			errs = append(errs, msg)
		}
	}

	need(cfg.TickHz != nil && *cfg.TickHz >= 1, "tick_hz must be >= 1")
	need(cfg.UIPulseSeconds != nil && *cfg.UIPulseSeconds > 0, "ui_pulse_seconds must be > 0")
	need(cfg.AutosaveSeconds != nil && *cfg.AutosaveSeconds > 0, "autosave_seconds must be > 0")
	need(cfg.ProducerCostRatio != nil && *cfg.ProducerCostRatio >= 1, "producer_cost_ratio must be >= 1")
	need(cfg.ManualBasePerTap != nil && *cfg.ManualBasePerTap >= 1, "manual_base_per_tap must be >= 1")

	// producers
	need(len(cfg.Producers) > 0, "producers must not be empty")
	for i, p := range cfg.Producers {
		need(!p.BaseRate.IsZero(), fmt.Sprintf("producers[%d].base_rate must be > 0", i))
		need(!p.BaseCost.IsZero(), fmt.Sprintf("producers[%d].base_cost must be > 0", i))
	}

	// tracks
	for _, tr := range []struct {
		name string
		t    *RawTrack
	}{{"materials", cfg.Materials}, {"recipes", cfg.Recipes}} {
		name, t := tr.name, tr.t
		if t == nil {
			errs = append(errs, name+" is required")
			continue
		}
		need(t.BaseCost != nil && *t.BaseCost > 0, name+".base_cost must be > 0")
		need(t.CostGrowth != nil && *t.CostGrowth >= 1, name+".cost_growth must be >= 1")
	}
	if cfg.Recipes != nil {
		need(cfg.Recipes.MaxLevel != nil && *cfg.Recipes.MaxLevel >= 1, "recipes.max_level must be >= 1")
	}

	// storage
	need(len(cfg.Storage) > 0, "storage must not be empty")
	for i, s := range cfg.Storage {
		need(!s.Threshold.IsZero(), fmt.Sprintf("storage[%d].threshold must be > 0", i))
		need(s.BuffPct >= 0, fmt.Sprintf("storage[%d].buff_pct must be >= 0", i))
		need(s.CoinReward >= 0, fmt.Sprintf("storage[%d].coin_reward must be >= 0", i))
		if i > 0 {
			need(!s.Threshold.Less(cfg.Storage[i-1].Threshold), fmt.Sprintf("storage[%d].threshold must not decrease", i))
		}
	}

	// milestones
	if m := cfg.Milestones; m == nil {
		errs = append(errs, "milestones is required")
	} else {
		need(m.ProducerReward != nil && *m.ProducerReward >= 0, "milestones.producer_reward must be >= 0")
		need(m.ProducerStep != nil && *m.ProducerStep >= 1, "milestones.producer_step must be >= 1")
		need(m.RecipeReward != nil && *m.RecipeReward >= 0, "milestones.recipe_reward must be >= 0")
	}

	// ads
	if a := cfg.Ads; a == nil {
		errs = append(errs, "ads is required")
	} else {
		need(a.BuffPct != nil && *a.BuffPct >= 0, "ads.buff_pct must be >= 0")
		need(a.BuffSeconds != nil && *a.BuffSeconds > 0, "ads.buff_seconds must be > 0")
		need(a.BonusStepSeconds != nil && *a.BonusStepSeconds >= 0, "ads.buff_bonus_step_seconds must be >= 0")
		need(a.BonusCapSeconds != nil && *a.BonusCapSeconds >= 0, "ads.buff_bonus_cap_seconds must be >= 0")
		need(a.CoinDailyLimit != nil && *a.CoinDailyLimit >= 0, "ads.coin_daily_limit must be >= 0")
		need(a.CoinReward != nil && *a.CoinReward >= 0, "ads.coin_reward must be >= 0")
		need(a.BoostSeconds != nil && *a.BoostSeconds >= 0, "ads.boost_seconds must be >= 0")
	}

	// offline
	if o := cfg.Offline; o == nil {
		errs = append(errs, "offline is required")
	} else {
		need(o.KimchiCapHours != nil && *o.KimchiCapHours >= 0, "offline.kimchi_cap_hours must be >= 0 (0 means no cap)")
		need(o.KeyCapHours != nil && *o.KeyCapHours >= 0, "offline.key_cap_hours must be >= 0 (0 means no cap)")
		need(o.MinSeconds != nil && *o.MinSeconds >= 0, "offline.min_seconds must be >= 0")
		if o.MinSeconds != nil {
			need(o.MaxSeconds != nil && *o.MaxSeconds > *o.MinSeconds, "offline.max_seconds must be > min_seconds")
		}
	}

	need(cfg.Drip != nil && cfg.Drip.SecondsPerKey != nil && *cfg.Drip.SecondsPerKey >= 0, "drip.seconds_per_key must be >= 0 (0 disables the drip)")

	// shop (optional)
	if s := cfg.Shop; s != nil {
		need(s.TaxRate == nil || (*s.TaxRate >= 0 && *s.TaxRate < 1), "shop.tax_rate must be in [0,1)")
		seen := map[string]bool{}
		for i, p := range s.Packs {
			need(p.ID != "", fmt.Sprintf("shop.packs[%d].id is required", i))
			need(!seen[p.ID], fmt.Sprintf("shop.packs[%d].id %q is duplicated", i, p.ID))
			seen[p.ID] = true
			need(p.Keys > 0, fmt.Sprintf("shop.packs[%d].keys must be > 0", i))
			need(p.BonusKeys >= 0, fmt.Sprintf("shop.packs[%d].bonus_keys must be >= 0", i))
			need(p.PriceCents >= 0, fmt.Sprintf("shop.packs[%d].price_cents must be >= 0", i))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(errs, "; "))
	}
	return nil
}
