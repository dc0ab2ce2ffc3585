package economy

// ClaimSummary is the preview of a bulk claim.
type ClaimSummary struct {
	Coins int64 `json:"coins"`
	Items int   `json:"items"`
}

// ClaimResult reports what a bulk claim granted, per family.
type ClaimResult struct {
	Coins     int64
	Producers int
	Recipes   int
	Storage   int
}

// Items is the total number of milestones claimed.
func (r ClaimResult) Items() int { return r.Producers + r.Recipes + r.Storage }

// ProducerMilestones is (level ≥ 1 ? 1 : 0) + ⌊level/step⌋.
func (g *Game) ProducerMilestones(i int) int {
	if !g.validProducer(i) {
		return 0
	}
	l := g.State.Producers[i].Level
	n := 0
	if l >= 1 {
		n = 1
	}
	if step := g.Defs.ProducerStep; step > 0 {
		n += l / step
	}
	return n
}

// ProducerClaimable is the number of producer milestones not yet claimed.
func (g *Game) ProducerClaimable(i int) int {
	if !g.validProducer(i) {
		return 0
	}
	return max(0, g.ProducerMilestones(i)-g.State.Producers[i].Claimed)
}

// RecipeClaimable is the number of recipe levels not yet claimed. After a
// prestige the cursor may sit above the level; that reads as 0.
func (g *Game) RecipeClaimable(i int) int {
	if !g.validRecipe(i) {
		return 0
	}
	r := g.State.Recipes[i]
	return max(0, r.Level-r.Claimed)
}

// StorageClaimable reports whether stage i is unlocked and unclaimed.
func (g *Game) StorageClaimable(i int) bool {
	if !g.validStorage(i) {
		return false
	}
	s := g.State.Storage[i]
	return s.Unlocked && !s.Claimed
}

// ClaimProducerMilestones pays every open milestone of producer i and
// returns the coins granted.
func (g *Game) ClaimProducerMilestones(i int) int64 {
	c := g.ProducerClaimable(i)
	if c <= 0 {
		return 0
	}
	g.State.Producers[i].Claimed += c
	coins := g.Defs.ProducerReward * int64(c)
	g.State.Coins += coins
	return coins
}

// ClaimRecipeMilestones pays every unclaimed level of recipe i.
func (g *Game) ClaimRecipeMilestones(i int) int64 {
	c := g.RecipeClaimable(i)
	if c <= 0 {
		return 0
	}
	g.State.Recipes[i].Claimed += c
	coins := g.Defs.RecipeReward * int64(c)
	g.State.Coins += coins
	return coins
}

// ClaimStorageMilestone pays the one-time reward of stage i.
func (g *Game) ClaimStorageMilestone(i int) int64 {
	if !g.StorageClaimable(i) {
		return 0
	}
	g.State.Storage[i].Claimed = true
	coins := g.Defs.Storage[i].CoinReward
	g.State.Coins += coins
	return coins
}

// ClaimAllStorage claims every open storage stage and returns how many.
func (g *Game) ClaimAllStorage() int {
	n := 0
	for i := range g.State.Storage {
		if g.StorageClaimable(i) {
			g.ClaimStorageMilestone(i)
			n++
		}
	}
	return n
}

// PreviewClaimAll totals what ClaimAll would grant without mutating state.
func (g *Game) PreviewClaimAll() ClaimSummary {
	var s ClaimSummary
	for i := range g.State.Producers {
		if c := g.ProducerClaimable(i); c > 0 {
			s.Coins += g.Defs.ProducerReward * int64(c)
			s.Items += c
		}
	}
	for i := range g.State.Recipes {
		if c := g.RecipeClaimable(i); c > 0 {
			s.Coins += g.Defs.RecipeReward * int64(c)
			s.Items += c
		}
	}
	for i := range g.State.Storage {
		if g.StorageClaimable(i) {
			s.Coins += g.Defs.Storage[i].CoinReward
			s.Items++
		}
	}
	return s
}

// ClaimAll claims every family. The totals equal the sum of the individual
// claims.
func (g *Game) ClaimAll() ClaimResult {
	var r ClaimResult
	for i := range g.State.Producers {
		c := g.ProducerClaimable(i)
		r.Coins += g.ClaimProducerMilestones(i)
		r.Producers += c
	}
	for i := range g.State.Recipes {
		c := g.RecipeClaimable(i)
		r.Coins += g.ClaimRecipeMilestones(i)
		r.Recipes += c
	}
	for i := range g.State.Storage {
		if g.StorageClaimable(i) {
			r.Coins += g.ClaimStorageMilestone(i)
			r.Storage++
		}
	}
	return r
}
