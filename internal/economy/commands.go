package economy

import (
	"github.com/khwan789/KimchiClicker/internal/magnitude"
)

// Every command returns true only when it changed state. Invalid indices,
// missing funds and caps are silent no-ops.

// Tap adds one manual gain and returns it.
func (g *Game) Tap() magnitude.Magnitude {
	gain := g.ManualGain()
	g.State.Kimchi = g.State.Kimchi.Add(gain)
	return gain
}

// BuyProducer buys k levels of producer i when affordable.
func (g *Game) BuyProducer(i, k int) bool {
	if !g.validProducer(i) || k <= 0 {
		return false
	}
	cost := g.ProducerCost(i, k)
	if !g.CanAfford(cost) {
		return false
	}
	g.State.Kimchi = g.State.Kimchi.Sub(cost)
	g.State.Producers[i].Level += k
	return true
}

// UpgradeMaterial spends coins for one material level; the cost then grows.
func (g *Game) UpgradeMaterial(i int) bool {
	if !g.validMaterial(i) {
		return false
	}
	m := &g.State.Materials[i]
	if g.State.Coins < m.Cost {
		return false
	}
	g.State.Coins -= m.Cost
	m.Level++
	m.Cost = grow(m.Cost, g.Defs.MaterialCostGrowth)
	return true
}

// UpgradeRecipe spends gold keys for one recipe level, up to the cap.
func (g *Game) UpgradeRecipe(i int) bool {
	if !g.validRecipe(i) {
		return false
	}
	r := &g.State.Recipes[i]
	if r.Level >= g.Defs.RecipeMaxLevel || g.State.GoldKeys < r.Cost {
		return false
	}
	g.State.GoldKeys -= r.Cost
	r.Level++
	r.Cost = grow(r.Cost, g.Defs.RecipeCostGrowth)
	return true
}

// CanUnlockStorage reports whether stage i is locked and the total rate has
// reached its threshold.
func (g *Game) CanUnlockStorage(i int) bool {
	if !g.validStorage(i) || g.State.Storage[i].Unlocked {
		return false
	}
	return g.TotalRate().GreaterOrEqual(g.Defs.Storage[i].Threshold)
}

// UnlockStorage unlocks stage i for this run.
func (g *Game) UnlockStorage(i int) bool {
	if !g.CanUnlockStorage(i) {
		return false
	}
	g.State.Storage[i].Unlocked = true
	g.State.UnlockedStorage++
	g.RefreshPrestige()
	return true
}

// ApplyTemporaryBuff starts (or refreshes) the ad buff. Every 10 watches add
// BonusStepSeconds to its duration, up to BonusCapSeconds.
func (g *Game) ApplyTemporaryBuff() bool {
	rules := g.Defs.Ads
	g.State.AdBuffWatched++
	bonus := min(float64(g.State.AdBuffWatched/10)*rules.BonusStepSeconds, rules.BonusCapSeconds)
	g.State.AdBuffPct = rules.BuffPct
	g.State.AdBuffRemain = rules.BuffSeconds + bonus
	return true
}

// GrantDailyAdCurrency pays the daily ad coin reward. dateKey is the current
// calendar day (YYYYMMDD); a new key resets the counter. A refused grant
// leaves the counter and its date untouched.
func (g *Game) GrantDailyAdCurrency(dateKey string) bool {
	used := g.State.AdCoinUsed
	if g.State.AdCoinDate != dateKey {
		used = 0
	}
	if used >= g.Defs.Ads.CoinDailyLimit {
		return false
	}
	g.State.AdCoinDate = dateKey
	g.State.AdCoinUsed = used + 1
	g.State.Coins += g.Defs.Ads.CoinReward
	return true
}

// GrantProductionBoost adds BoostSeconds worth of the current total rate.
func (g *Game) GrantProductionBoost() magnitude.Magnitude {
	gain := g.TotalRate().Scale(g.Defs.Ads.BoostSeconds)
	g.State.Kimchi = g.State.Kimchi.Add(gain)
	return gain
}

// GrantPremiumCurrency adds gold keys. Non-positive amounts are ignored.
func (g *Game) GrantPremiumCurrency(n int64) bool {
	if n <= 0 {
		return false
	}
	g.State.GoldKeys += n
	return true
}

// MarkPurchased records a shop pack id so first-purchase bonuses apply once.
func (g *Game) MarkPurchased(id string) {
	if !g.State.HasPurchased(id) {
		g.State.PurchasedPacks = append(g.State.PurchasedPacks, id)
	}
}
