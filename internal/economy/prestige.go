package economy

import "github.com/khwan789/KimchiClicker/internal/magnitude"

// Eligible reports whether every storage stage is unlocked this run.
func (g *Game) Eligible() bool {
	n := len(g.Defs.Storage)
	return n > 0 && g.State.UnlockedStorage >= n
}

// RefreshPrestige latches the eligibility flag. The flag only resets on
// prestige.
func (g *Game) RefreshPrestige() {
	if g.Eligible() {
		g.State.PrestigeAvailable = true
	}
}

// Prestige ends the run in exchange for a permanent bonus. Coins, gold keys,
// material levels, milestone cursors and storage claimed flags carry over.
// It is a no-op unless eligible.
func (g *Game) Prestige() bool {
	g.RefreshPrestige()
	if !g.State.PrestigeAvailable {
		return false
	}
	st := &g.State
	st.PermanentBonusPct += g.Defs.PrestigeBonusPct()
	st.Kimchi = magnitude.Zero
	for i := range st.Producers {
		st.Producers[i].Level = 0
	}
	for i := range st.Storage {
		st.Storage[i].Unlocked = false
	}
	st.UnlockedStorage = 0
	st.PrestigeAvailable = false
	for i := range st.Recipes {
		st.Recipes[i].Level = 0
		st.Recipes[i].Cost = g.Defs.RecipeBaseCost
	}
	return true
}
