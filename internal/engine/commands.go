package engine

import (
	"github.com/khwan789/KimchiClicker/internal/events"
	"github.com/khwan789/KimchiClicker/internal/magnitude"
)

// Each command validates, mutates, then notifies once and saves once. A
// rejected command changes nothing and stays silent.

func (e *Engine) apply(cmd string, ok bool) bool {
	if ok {
		e.commit(cmd, events.Changed, nil)
	}
	return ok
}

// Tap notifies but leaves the write to autosave.
func (e *Engine) Tap() magnitude.Magnitude {
	gain := e.game.Tap()
	e.notify("tap", events.Changed, gain)
	return gain
}

// BuyProducer buys the current batch size of producer i.
func (e *Engine) BuyProducer(i int) bool {
	return e.apply("buy_producer", e.game.BuyProducer(i, e.batch))
}

// SetBuyBatchSize clamps n to [1,100]. The batch size is session state and
// is not saved.
func (e *Engine) SetBuyBatchSize(n int) bool {
	e.batch = min(max(n, MinBatch), MaxBatch)
	e.notify("set_batch", events.Changed, e.batch)
	return true
}

func (e *Engine) UpgradeMaterial(i int) bool {
	return e.apply("upgrade_material", e.game.UpgradeMaterial(i))
}

func (e *Engine) UpgradeRecipe(i int) bool {
	return e.apply("upgrade_recipe", e.game.UpgradeRecipe(i))
}

func (e *Engine) UnlockStorage(i int) bool {
	return e.apply("unlock_storage", e.game.UnlockStorage(i))
}

// Prestige resets the run when every stage is unlocked.
func (e *Engine) Prestige() bool {
	if !e.game.Prestige() {
		return false
	}
	e.log.Info("prestige", "permanent_bonus_pct", e.game.State.PermanentBonusPct)
	e.commit("prestige", events.Prestiged, e.game.State.PermanentBonusPct)
	return true
}

// ClaimProducerMilestones applies whenever the cursor moves, even when the
// configured reward is zero.
func (e *Engine) ClaimProducerMilestones(i int) bool {
	if e.game.ProducerClaimable(i) == 0 {
		return false
	}
	e.game.ClaimProducerMilestones(i)
	return e.apply("claim_producer", true)
}

func (e *Engine) ClaimRecipeMilestones(i int) bool {
	if e.game.RecipeClaimable(i) == 0 {
		return false
	}
	e.game.ClaimRecipeMilestones(i)
	return e.apply("claim_recipe", true)
}

func (e *Engine) ClaimStorageMilestone(i int) bool {
	if !e.game.StorageClaimable(i) {
		return false
	}
	e.game.ClaimStorageMilestone(i)
	return e.apply("claim_storage", true)
}

// ClaimAllAchievements claims every family at once.
func (e *Engine) ClaimAllAchievements() bool {
	res := e.game.ClaimAll()
	if res.Items() == 0 {
		return false
	}
	e.commit("claim_all", events.Changed, res)
	return true
}

func (e *Engine) ClaimAllStorage() bool {
	return e.apply("claim_all_storage", e.game.ClaimAllStorage() > 0)
}

func (e *Engine) ApplyTemporaryBuff() bool {
	return e.apply("ad_buff", e.game.ApplyTemporaryBuff())
}

// GrantDailyAdCurrency is limited per calendar day of the engine clock.
func (e *Engine) GrantDailyAdCurrency() bool {
	return e.apply("ad_coins", e.game.GrantDailyAdCurrency(e.clk.Now().Format("20060102")))
}

func (e *Engine) GrantProductionBoost() bool {
	return e.apply("ad_boost", !e.game.GrantProductionBoost().IsZero())
}

func (e *Engine) GrantPremiumCurrency(n int64) bool {
	return e.apply("grant_keys", e.game.GrantPremiumCurrency(n))
}

// BuyKeyPack grants a catalog pack, doubled on its first purchase when the
// pack says so.
func (e *Engine) BuyKeyPack(id string) bool {
	p, ok := e.bal.Shop.Lookup(id)
	if !ok {
		return false
	}
	keys := p.Grant(!e.game.State.HasPurchased(id))
	if !e.game.GrantPremiumCurrency(int64(keys)) {
		return false
	}
	e.game.MarkPurchased(id)
	e.commit("buy_key_pack", events.Changed, keys)
	return true
}
