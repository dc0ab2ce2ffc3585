package engine

import (
	"time"

	"github.com/khwan789/KimchiClicker/internal/economy"
	"github.com/khwan789/KimchiClicker/internal/magnitude"
	"github.com/khwan789/KimchiClicker/internal/shop"
)

func (e *Engine) Kimchi() magnitude.Magnitude { return e.game.State.Kimchi }
func (e *Engine) Coins() int64 { return e.game.State.Coins }
func (e *Engine) GoldKeys() int64 { return e.game.State.GoldKeys }
func (e *Engine) TotalRate() magnitude.Magnitude { return e.game.TotalRate() }
func (e *Engine) GlobalMultiplier() float64 { return e.game.GlobalMultiplier() }
func (e *Engine) BuyBatchSize() int { return e.batch }
func (e *Engine) BuffRemaining() float64 { return e.game.State.AdBuffRemain }
func (e *Engine) PrestigeEligible() bool { return e.game.Eligible() }
func (e *Engine) ManualGainPreview() magnitude.Magnitude { return e.game.ManualGain() }

func (e *Engine) ProducerRate(i int) magnitude.Magnitude { return e.game.ProducerRate(i) }

// ProducerCost prices the current batch of producer i.
func (e *Engine) ProducerCost(i int) magnitude.Magnitude { return e.game.ProducerCost(i, e.batch) }

func (e *Engine) CanAffordProducer(i int) bool {
	cost := e.ProducerCost(i)
	return !cost.IsZero() && e.game.CanAfford(cost)
}

// PurchaseDelta is the rate the current batch of producer i would add.
func (e *Engine) PurchaseDelta(i int) magnitude.Magnitude { return e.game.PurchaseDelta(i, e.batch) }

func (e *Engine) ProducerClaimable(i int) int { return e.game.ProducerClaimable(i) }
func (e *Engine) RecipeClaimable(i int) int { return e.game.RecipeClaimable(i) }
func (e *Engine) StorageClaimable(i int) bool { return e.game.StorageClaimable(i) }
func (e *Engine) CanUnlockStorage(i int) bool { return e.game.CanUnlockStorage(i) }
func (e *Engine) PreviewClaimAll() economy.ClaimSummary { return e.game.PreviewClaimAll() }

func (e *Engine) MaterialContributionPct(i int) int { return e.game.MaterialContributionPct(i) }
func (e *Engine) RecipeContributionPct(i int) int { return e.game.RecipeContributionPct(i) }
func (e *Engine) StorageContributionPct(i int) int { return e.game.StorageContributionPct(i) }
func (e *Engine) TotalContributionPct() int { return e.game.TotalContributionPct() }
func (e *Engine) ShareOfTotal(partPct int) float64 { return e.game.ShareOfTotal(partPct) }

// PlanKeyPurchase returns the cheapest pack combination for at least target
// keys, honoring first-purchase doubling not yet used.
func (e *Engine) PlanKeyPurchase(target int) shop.Plan {
	cat := e.bal.Shop
	return shop.MinCostAtLeastKeys(cat, target, cat.FirstTime(e.game.State.PurchasedPacks))
}

// PlanKeyBudget returns the most keys budgetCents buys after tax.
func (e *Engine) PlanKeyBudget(budgetCents int) shop.Plan {
	cat := e.bal.Shop
	return shop.MaxKeysUnderBudget(cat, budgetCents, cat.FirstTime(e.game.State.PurchasedPacks))
}

// State returns a deep copy of the run state.
func (e *Engine) State() economy.State { return e.game.State.Clone() }

// ProducerView is one row of the producer panel.
type ProducerView struct {
	Name       string `json:"name"`
	Level      int    `json:"level"`
	Rate       string `json:"rate"`
	Cost       string `json:"cost"`
	Delta      string `json:"delta"`
	Affordable bool   `json:"affordable"`
	Claimable  int    `json:"claimable"`
}

// TrackView is one material or recipe row.
type TrackView struct {
	Name            string  `json:"name"`
	Level           int     `json:"level"`
	Cost            int64   `json:"cost"`
	ContributionPct int     `json:"contribution_pct"`
	SharePct        float64 `json:"share_pct"`
	Claimable       int     `json:"claimable,omitempty"`
}

// StageView is one storage stage row.
type StageView struct {
	Name      string `json:"name"`
	Threshold string `json:"threshold"`
	Unlocked  bool   `json:"unlocked"`
	Claimed   bool   `json:"claimed"`
	CanUnlock bool   `json:"can_unlock"`
	Reward    int64  `json:"reward"`
}

// Snapshot is a read-only, display-ready copy of everything a host shows.
type Snapshot struct {
	At               time.Time            `json:"at"`
	Kimchi           string               `json:"kimchi"`
	Coins            int64                `json:"coins"`
	GoldKeys         int64                `json:"gold_keys"`
	TotalRate        string               `json:"total_rate"`
	ManualGain       string               `json:"manual_gain"`
	Multiplier       float64              `json:"multiplier"`
	PermanentBonus   int                  `json:"permanent_bonus_pct"`
	BuffPct          int                  `json:"buff_pct"`
	BuffRemaining    float64              `json:"buff_remaining"`
	BuyBatch         int                  `json:"buy_batch"`
	PrestigeEligible bool                 `json:"prestige_eligible"`
	ClaimAll         economy.ClaimSummary `json:"claim_all"`
	Producers        []ProducerView       `json:"producers"`
	Materials        []TrackView          `json:"materials"`
	Recipes          []TrackView          `json:"recipes"`
	Storage          []StageView          `json:"storage"`

	State economy.State `json:"-"`
}

func (e *Engine) Snapshot() Snapshot {
	g, st := e.game, e.game.State
	s := Snapshot{
		At:               e.clk.Now(),
		Kimchi:           st.Kimchi.String(),
		Coins:            st.Coins,
		GoldKeys:         st.GoldKeys,
		TotalRate:        g.TotalRate().String(),
		ManualGain:       g.ManualGain().String(),
		Multiplier:       g.GlobalMultiplier(),
		PermanentBonus:   st.PermanentBonusPct,
		BuffPct:          st.AdBuffPct,
		BuffRemaining:    st.AdBuffRemain,
		BuyBatch:         e.batch,
		PrestigeEligible: g.Eligible(),
		ClaimAll:         g.PreviewClaimAll(),
		State:            st.Clone(),
	}
	for i, d := range g.Defs.Producers {
		s.Producers = append(s.Producers, ProducerView{
			Name:       d.Name,
			Level:      st.Producers[i].Level,
			Rate:       g.ProducerRate(i).String(),
			Cost:       e.ProducerCost(i).String(),
			Delta:      e.PurchaseDelta(i).String(),
			Affordable: e.CanAffordProducer(i),
			Claimable:  g.ProducerClaimable(i),
		})
	}
	for i, name := range g.Defs.MaterialNames {
		pct := g.MaterialContributionPct(i)
		s.Materials = append(s.Materials, TrackView{
			Name: name, Level: st.Materials[i].Level, Cost: st.Materials[i].Cost,
			ContributionPct: pct, SharePct: g.ShareOfTotal(pct),
		})
	}
	for i, name := range g.Defs.RecipeNames {
		pct := g.RecipeContributionPct(i)
		s.Recipes = append(s.Recipes, TrackView{
			Name: name, Level: st.Recipes[i].Level, Cost: st.Recipes[i].Cost,
			ContributionPct: pct, SharePct: g.ShareOfTotal(pct),
			Claimable: g.RecipeClaimable(i),
		})
	}
	for i, d := range g.Defs.Storage {
		s.Storage = append(s.Storage, StageView{
			Name:      d.Name,
			Threshold: d.Threshold.String(),
			Unlocked:  st.Storage[i].Unlocked,
			Claimed:   st.Storage[i].Claimed,
			CanUnlock: g.CanUnlockStorage(i),
			Reward:    d.CoinReward,
		})
	}
	return s
}
