package economy

import "github.com/khwan789/KimchiClicker/internal/magnitude"

// ProducerDef is the static description of one auto producer.
type ProducerDef struct {
	Name     string
	BaseRate magnitude.Magnitude // per-second output per level before self-scaling and multipliers
	BaseCost magnitude.Magnitude // price of the first level
}

// StorageDef describes one storage stage. Unlocking needs the total rate to
// reach Threshold; the stage then adds BuffPct to the global multiplier.
type StorageDef struct {
	Name       string
	Threshold  magnitude.Magnitude
	BuffPct    int
	CoinReward int64
}

// AdRules tunes the monetization effects.
type AdRules struct {
	BuffPct          int
	BuffSeconds      float64
	BonusStepSeconds float64 // extra buff seconds per 10 watches
	BonusCapSeconds  float64
	CoinDailyLimit   int
	CoinReward       int64
	BoostSeconds     float64 // seconds of production granted by GrantProductionBoost
}

// Definitions is the immutable balance table a run is played against.
type Definitions struct {
	Producers        []ProducerDef
	CostRatio        float64
	ManualBasePerTap int

	MaterialNames      []string
	MaterialBaseCost   int64
	MaterialCostGrowth int64

	RecipeNames      []string
	RecipeBaseCost   int64
	RecipeCostGrowth int64
	RecipeMaxLevel   int

	Storage []StorageDef

	ProducerReward int64 // coins per producer milestone
	ProducerStep   int   // levels between producer milestones
	RecipeReward   int64 // coins per recipe level

	Ads AdRules
}

// PrestigeBonusPct is the permanent bonus one prestige grants: the sum of all
// stage buffs (five stages at +100% each gives +500).
func (d *Definitions) PrestigeBonusPct() int {
	total := 0
	for _, s := range d.Storage {
		total += s.BuffPct
	}
	return total
}
