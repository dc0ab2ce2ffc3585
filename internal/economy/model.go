package economy

import (
	"github.com/khwan789/KimchiClicker/internal/magnitude"
)

// Game binds the mutable run state to the definitions it is played against.
// It is not safe for concurrent use.
type Game struct {
	Defs  *Definitions
	State State
}

// NewGame starts a fresh run.
func NewGame(d *Definitions) *Game {
	return &Game{Defs: d, State: NewState(d)}
}

func (g *Game) validProducer(i int) bool {
	return i >= 0 && i < len(g.Defs.Producers) && i < len(g.State.Producers)
}

func (g *Game) validMaterial(i int) bool { return i >= 0 && i < len(g.State.Materials) }
func (g *Game) validRecipe(i int) bool   { return i >= 0 && i < len(g.State.Recipes) }

func (g *Game) validStorage(i int) bool {
	return i >= 0 && i < len(g.Defs.Storage) && i < len(g.State.Storage)
}

// MaterialContributionPct: +1% per level.
func (g *Game) MaterialContributionPct(i int) int {
	if !g.validMaterial(i) {
		return 0
	}
	return g.State.Materials[i].Level
}

// RecipeContributionPct: +100% per level.
func (g *Game) RecipeContributionPct(i int) int {
	if !g.validRecipe(i) {
		return 0
	}
	return g.State.Recipes[i].Level * 100
}

// StorageContributionPct is the stage buff while unlocked, 0 otherwise.
func (g *Game) StorageContributionPct(i int) int {
	if !g.validStorage(i) || !g.State.Storage[i].Unlocked {
		return 0
	}
	return g.Defs.Storage[i].BuffPct
}

// TotalContributionPct sums every source feeding the global multiplier.
func (g *Game) TotalContributionPct() int {
	total := g.State.AdBuffPct + g.State.PermanentBonusPct
	for i := range g.State.Materials {
		total += g.MaterialContributionPct(i)
	}
	for i := range g.State.Recipes {
		total += g.RecipeContributionPct(i)
	}
	for i := range g.State.Storage {
		total += g.StorageContributionPct(i)
	}
	return total
}

// ShareOfTotal returns partPct as a percentage of the total contribution.
func (g *Game) ShareOfTotal(partPct int) float64 {
	total := g.TotalContributionPct()
	if total <= 0 {
		return 0
	}
	return float64(partPct) * 100 / float64(total)
}

// GlobalMultiplier = 1 + total%/100.
func (g *Game) GlobalMultiplier() float64 {
	return 1 + float64(g.TotalContributionPct())/100
}

// ProducerBaseAtLevel is baseRate × L × (1 + 0.1×L), without the global
// multiplier.
func (g *Game) ProducerBaseAtLevel(i, level int) magnitude.Magnitude {
	if i < 0 || i >= len(g.Defs.Producers) || level <= 0 {
		return magnitude.Zero
	}
	l := float64(level)
	return g.Defs.Producers[i].BaseRate.Scale(l * (1 + 0.1*l))
}

// ProducerBase is the unbuffed output of producer i at its current level.
func (g *Game) ProducerBase(i int) magnitude.Magnitude {
	if !g.validProducer(i) {
		return magnitude.Zero
	}
	return g.ProducerBaseAtLevel(i, g.State.Producers[i].Level)
}

// ProducerRate is the buffed per-second output of producer i.
func (g *Game) ProducerRate(i int) magnitude.Magnitude {
	return g.ProducerBase(i).Scale(g.GlobalMultiplier())
}

// TotalRate is the buffed per-second output of every producer.
func (g *Game) TotalRate() magnitude.Magnitude {
	sum := magnitude.Zero
	for i := range g.State.Producers {
		sum = sum.Add(g.ProducerBase(i))
	}
	return sum.Scale(g.GlobalMultiplier())
}

// PurchaseDelta is the rate gained by raising producer i by k levels, at the
// multiplier in effect now.
func (g *Game) PurchaseDelta(i, k int) magnitude.Magnitude {
	if !g.validProducer(i) || k <= 0 {
		return magnitude.Zero
	}
	l := g.State.Producers[i].Level
	return g.ProducerBaseAtLevel(i, l+k).Sub(g.ProducerBaseAtLevel(i, l)).Scale(g.GlobalMultiplier())
}

// ManualGain is what one tap earns: max(ManualBasePerTap, Σ L×(1+⌊L/10⌋))
// × global multiplier. The level bonus is truncated here, unlike the
// continuous rate formula.
func (g *Game) ManualGain() magnitude.Magnitude {
	sum := 0
	for _, p := range g.State.Producers {
		sum += p.Level * (1 + p.Level/10)
	}
	base := max(g.Defs.ManualBasePerTap, sum)
	return magnitude.FromFloat(float64(base)).Scale(g.GlobalMultiplier())
}
