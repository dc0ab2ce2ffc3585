package engine

import (
	"errors"
	"fmt"
	"sort"
)

// ErrUnknownCommand is returned by Dispatch for names it does not know.
var ErrUnknownCommand = errors.New("unknown command")

// Args carries the optional parameters of a named command.
type Args struct {
	Index int
	N     int64
	ID    string
}

var commands = map[string]func(*Engine, Args) bool{
	"tap":               func(e *Engine, _ Args) bool { return !e.Tap().IsZero() },
	"buy_producer":      func(e *Engine, a Args) bool { return e.BuyProducer(a.Index) },
	"set_batch":         func(e *Engine, a Args) bool { return e.SetBuyBatchSize(int(a.N)) },
	"upgrade_material":  func(e *Engine, a Args) bool { return e.UpgradeMaterial(a.Index) },
	"upgrade_recipe":    func(e *Engine, a Args) bool { return e.UpgradeRecipe(a.Index) },
	"unlock_storage":    func(e *Engine, a Args) bool { return e.UnlockStorage(a.Index) },
	"prestige":          func(e *Engine, _ Args) bool { return e.Prestige() },
	"claim_producer":    func(e *Engine, a Args) bool { return e.ClaimProducerMilestones(a.Index) },
	"claim_recipe":      func(e *Engine, a Args) bool { return e.ClaimRecipeMilestones(a.Index) },
	"claim_storage":     func(e *Engine, a Args) bool { return e.ClaimStorageMilestone(a.Index) },
	"claim_all":         func(e *Engine, _ Args) bool { return e.ClaimAllAchievements() },
	"claim_all_storage": func(e *Engine, _ Args) bool { return e.ClaimAllStorage() },
	"ad_buff":           func(e *Engine, _ Args) bool { return e.ApplyTemporaryBuff() },
	"ad_coins":          func(e *Engine, _ Args) bool { return e.GrantDailyAdCurrency() },
	"ad_boost":          func(e *Engine, _ Args) bool { return e.GrantProductionBoost() },
	"grant_keys":        func(e *Engine, a Args) bool { return e.GrantPremiumCurrency(a.N) },
	"buy_key_pack":      func(e *Engine, a Args) bool { return e.BuyKeyPack(a.ID) },
}

// Commands lists the names Dispatch accepts.
func Commands() []string {
	names := make([]string, 0, len(commands))
	for n := range commands {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Dispatch runs a command by name and reports whether it applied.
func (e *Engine) Dispatch(name string, a Args) (bool, error) {
	fn, ok := commands[name]
	if !ok {
		return false, fmt.Errorf("%w: %q", ErrUnknownCommand, name)
	}
	return fn(e, a), nil
}
