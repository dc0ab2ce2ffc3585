package config

import (
	"github.com/khwan789/KimchiClicker/internal/economy"
	"github.com/khwan789/KimchiClicker/internal/shop"
	"github.com/khwan789/KimchiClicker/internal/sim"
)

// Persistence selects where and how saves are written.
type Persistence struct {
	Dir      string // empty: resolve from the environment
	File     string
	Compress bool
}

// Balance is the normalized configuration the engine runs on.
type Balance struct {
	Version string

	Defs            economy.Definitions
	TickHz          int
	UIPulseSeconds  float64
	AutosaveSeconds float64
	SecondsPerKey   float64
	Offline         sim.OfflinePolicy

	Shop        shop.Catalog
	Persistence Persistence
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

// Normalize turns a validated RawConfig into a Balance.
func Normalize(raw RawConfig) Balance {
	b := Balance{
		Version:         raw.Version,
		TickHz:          deref(raw.TickHz),
		UIPulseSeconds:  deref(raw.UIPulseSeconds),
		AutosaveSeconds: deref(raw.AutosaveSeconds),
	}
	if raw.Drip != nil {
		b.SecondsPerKey = deref(raw.Drip.SecondsPerKey)
	}

	d := &b.Defs
	d.CostRatio = deref(raw.ProducerCostRatio)
	d.ManualBasePerTap = deref(raw.ManualBasePerTap)
	for _, p := range raw.Producers {
		d.Producers = append(d.Producers, economy.ProducerDef{Name: p.Name, BaseRate: p.BaseRate, BaseCost: p.BaseCost})
	}
	if m := raw.Materials; m != nil {
		d.MaterialNames = append([]string(nil), m.Names...)
		d.MaterialBaseCost = deref(m.BaseCost)
		d.MaterialCostGrowth = deref(m.CostGrowth)
	}
	if r := raw.Recipes; r != nil {
		d.RecipeNames = append([]string(nil), r.Names...)
		d.RecipeBaseCost = deref(r.BaseCost)
		d.RecipeCostGrowth = deref(r.CostGrowth)
		d.RecipeMaxLevel = deref(r.MaxLevel)
	}
	for _, s := range raw.Storage {
		d.Storage = append(d.Storage, economy.StorageDef{Name: s.Name, Threshold: s.Threshold, BuffPct: s.BuffPct, CoinReward: s.CoinReward})
	}
	if m := raw.Milestones; m != nil {
		d.ProducerReward = deref(m.ProducerReward)
		d.ProducerStep = deref(m.ProducerStep)
		d.RecipeReward = deref(m.RecipeReward)
	}
	if a := raw.Ads; a != nil {
		d.Ads = economy.AdRules{
			BuffPct:          deref(a.BuffPct),
			BuffSeconds:      deref(a.BuffSeconds),
			BonusStepSeconds: deref(a.BonusStepSeconds),
			BonusCapSeconds:  deref(a.BonusCapSeconds),
			CoinDailyLimit:   deref(a.CoinDailyLimit),
			CoinReward:       deref(a.CoinReward),
			BoostSeconds:     deref(a.BoostSeconds),
		}
	}
	if o := raw.Offline; o != nil {
		b.Offline = sim.OfflinePolicy{
			KimchiCapHours: deref(o.KimchiCapHours),
			CountKeys:      deref(o.CountKeys),
			KeyCapHours:    deref(o.KeyCapHours),
			MinSeconds:     deref(o.MinSeconds),
			MaxSeconds:     deref(o.MaxSeconds),
			SecondsPerKey:  b.SecondsPerKey,
		}
	}
	if s := raw.Shop; s != nil {
		b.Shop = shop.Catalog{Currency: s.Currency, TaxRate: deref(s.TaxRate), Packs: append([]shop.Pack(nil), s.Packs...)}
	}
	if p := raw.Persistence; p != nil {
		b.Persistence = Persistence{Dir: p.Dir, File: p.File, Compress: deref(p.Compress)}
	}
	if b.Persistence.File == "" {
		b.Persistence.File = "kimchi_save.json"
	}
	return b
}
