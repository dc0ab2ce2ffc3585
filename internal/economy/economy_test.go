package economy

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khwan789/KimchiClicker/internal/magnitude"
)

func TestCostMatchesIterativeSum(t *testing.T) {
	base := magnitude.FromFloat(100)
	for _, r := range []float64{1.2, 1.07, 2} {
		for n := 0; n <= 200; n += 7 {
			for _, k := range []int{1, 10, 100} {
				want := 0.0
				for j := n; j < n+k; j++ {
					want += 100 * math.Pow(r, float64(j))
				}
				got := CostToBuy(base, n, k, r).Float64()
				if math.IsInf(want, 0) {
					continue
				}
				assert.InEpsilon(t, want, got, 1e-9, "r=%v n=%d k=%d", r, n, k)
			}
		}
	}
}

func TestCostEdgeCases(t *testing.T) {
	base := magnitude.FromFloat(50)
	assert.True(t, CostToBuy(base, 3, 0, 1.2).IsZero())
	assert.True(t, CostToBuy(base, 3, -2, 1.2).IsZero())
	assert.True(t, CostToBuy(magnitude.Zero, 3, 5, 1.2).IsZero())
	assert.InDelta(t, 250, CostToBuy(base, 10, 5, 1).Float64(), 1e-9)

	// far beyond float64 range the curve still grows
	a := CostToBuy(base, 5000, 1, 1.2)
	b := CostToBuy(base, 5001, 1, 1.2)
	assert.True(t, a.Less(b))
	assert.Greater(t, a.Tier(), 100)
}

func TestBuyProducerExample(t *testing.T) {
	g := NewGame(testDefs())
	g.State.Kimchi = g.Defs.Producers[0].BaseCost

	require.True(t, g.BuyProducer(0, 1))
	assert.Equal(t, 1, g.State.Producers[0].Level)
	assert.True(t, g.State.Kimchi.IsZero())

	assert.Equal(t, int64(10), g.ClaimProducerMilestones(0))
	assert.Equal(t, int64(10), g.State.Coins)
	assert.Equal(t, int64(0), g.ClaimProducerMilestones(0))
}

func TestBuyProducerRejects(t *testing.T) {
	g := NewGame(testDefs())
	g.State.Kimchi = magnitude.FromFloat(99)
	before := g.State.Clone()

	assert.False(t, g.BuyProducer(0, 1))
	assert.False(t, g.BuyProducer(-1, 1))
	assert.False(t, g.BuyProducer(len(g.Defs.Producers), 1))
	assert.False(t, g.BuyProducer(0, 0))
	assert.Equal(t, before, g.State)
}

func TestRates(t *testing.T) {
	g := NewGame(testDefs())
	assert.True(t, g.TotalRate().IsZero())
	assert.Equal(t, 1.0, g.GlobalMultiplier())

	g.State.Producers[0].Level = 10 // 1 × 10 × 2
	g.State.Producers[1].Level = 1  // 100 × 1 × 1.1
	assert.InDelta(t, 20, g.ProducerRate(0).Float64(), 1e-9)
	assert.InDelta(t, 130, g.TotalRate().Float64(), 1e-9)

	g.State.Materials[0].Level = 50
	g.State.PermanentBonusPct = 50
	assert.Equal(t, 2.0, g.GlobalMultiplier())
	assert.InDelta(t, 260, g.TotalRate().Float64(), 1e-9)

	delta := g.PurchaseDelta(0, 1) // (11×2.1 − 20) × 2
	assert.InDelta(t, 6.2, delta.Float64(), 1e-9)
}

func TestContributionShares(t *testing.T) {
	g := NewGame(testDefs())
	assert.Zero(t, g.ShareOfTotal(10))

	g.State.Materials[1].Level = 20
	g.State.Recipes[0].Level = 1
	g.State.Storage[0].Unlocked = true
	g.State.AdBuffPct = 100

	assert.Equal(t, 20, g.MaterialContributionPct(1))
	assert.Equal(t, 100, g.RecipeContributionPct(0))
	assert.Equal(t, 100, g.StorageContributionPct(0))
	assert.Equal(t, 0, g.StorageContributionPct(1))
	assert.Equal(t, 320, g.TotalContributionPct())
	assert.InDelta(t, 31.25, g.ShareOfTotal(g.RecipeContributionPct(0)), 1e-9)
	assert.Zero(t, g.MaterialContributionPct(99))
}

// Tap truncates the per-level bonus to whole tens; continuous production does
// not. Both behaviors are intended.
func TestTapUsesTruncatedLevelBonus(t *testing.T) {
	g := NewGame(testDefs())
	assert.InDelta(t, 1, g.Tap().Float64(), 1e-9)

	g.State.Kimchi = magnitude.Zero
	g.State.Producers[0].Level = 15
	gain := g.Tap()
	assert.InDelta(t, 30, gain.Float64(), 1e-9) // 15 × (1 + 1)
	assert.InDelta(t, 37.5, g.ProducerBase(0).Float64(), 1e-9)
	assert.True(t, g.State.Kimchi.Equal(gain))
}

func TestUpgradeMaterial(t *testing.T) {
	g := NewGame(testDefs())
	assert.False(t, g.UpgradeMaterial(0))

	g.State.Coins = 1100
	require.True(t, g.UpgradeMaterial(0))
	assert.Equal(t, int64(1000), g.State.Coins)
	assert.Equal(t, int64(1000), g.State.Materials[0].Cost)
	require.True(t, g.UpgradeMaterial(0))
	assert.Equal(t, 2, g.State.Materials[0].Level)
	assert.Equal(t, int64(0), g.State.Coins)
	assert.False(t, g.UpgradeMaterial(5))
}

func TestUpgradeRecipeCap(t *testing.T) {
	g := NewGame(testDefs())
	g.State.GoldKeys = 1 << 20
	for i := 0; i < 10; i++ {
		require.True(t, g.UpgradeRecipe(2), "level %d", i)
	}
	assert.False(t, g.UpgradeRecipe(2))
	assert.Equal(t, 10, g.State.Recipes[2].Level)
	assert.Equal(t, int64(100<<10), g.State.Recipes[2].Cost)
	assert.Equal(t, int64(1<<20-100*1023), g.State.GoldKeys)
}

func TestUnlockStorage(t *testing.T) {
	g := NewGame(testDefs())
	assert.False(t, g.CanUnlockStorage(0))
	assert.False(t, g.UnlockStorage(0))

	g.State.Producers[3].Level = 100 // 1B × 100 × 11 ≥ 1C
	require.True(t, g.UnlockStorage(0))
	assert.False(t, g.UnlockStorage(0))
	assert.False(t, g.UnlockStorage(1))
	assert.Equal(t, 1, g.State.UnlockedStorage)
	assert.True(t, g.StorageClaimable(0))
}

func TestMilestonesMonotone(t *testing.T) {
	g := NewGame(testDefs())
	prev := 0
	for l := 0; l <= 250; l++ {
		g.State.Producers[4].Level = l
		m := g.ProducerMilestones(4)
		assert.GreaterOrEqual(t, m, prev)
		prev = m
	}
	assert.Equal(t, 26, prev)

	g.State.Producers[4].Level = 35
	c := g.ProducerClaimable(4)
	assert.Equal(t, 4, c)
	assert.Equal(t, int64(40), g.ClaimProducerMilestones(4))
	assert.Equal(t, 0, g.ProducerClaimable(4))
	assert.Equal(t, 4, g.State.Producers[4].Claimed)

	g.State.Producers[4].Level = 40
	assert.Equal(t, 1, g.ProducerClaimable(4))
}

func TestRecipeClaimAfterPrestigeBaseline(t *testing.T) {
	g := NewGame(testDefs())
	g.State.Recipes[0].Level = 3
	assert.Equal(t, int64(300), g.ClaimRecipeMilestones(0))

	unlockAll(g)
	require.True(t, g.Prestige())
	assert.Equal(t, 3, g.State.Recipes[0].Claimed)
	assert.Equal(t, 0, g.RecipeClaimable(0))

	g.State.Recipes[0].Level = 4
	assert.Equal(t, 1, g.RecipeClaimable(0))
}

func claimableGame() *Game {
	g := NewGame(testDefs())
	g.State.Producers[0].Level = 23
	g.State.Producers[0].Claimed = 1
	g.State.Producers[2].Level = 1
	g.State.Recipes[1].Level = 4
	g.State.Recipes[5].Level = 2
	g.State.Recipes[5].Claimed = 1
	g.State.Storage[0] = StorageTrack{Unlocked: true}
	g.State.Storage[1] = StorageTrack{Unlocked: true, Claimed: true}
	g.State.Storage[3] = StorageTrack{Unlocked: true}
	return g
}

func TestClaimAllMatchesIndividualClaims(t *testing.T) {
	a := claimableGame()
	b := claimableGame()

	preview := a.PreviewClaimAll()
	snapshot := a.State.Clone()
	assert.Equal(t, snapshot, a.State, "preview must not mutate")

	res := a.ClaimAll()

	var coins int64
	for i := range b.State.Producers {
		coins += b.ClaimProducerMilestones(i)
	}
	for i := range b.State.Recipes {
		coins += b.ClaimRecipeMilestones(i)
	}
	for i := range b.State.Storage {
		coins += b.ClaimStorageMilestone(i)
	}

	assert.Equal(t, coins, res.Coins)
	assert.Equal(t, b.State, a.State)
	assert.Equal(t, preview.Coins, res.Coins)
	assert.Equal(t, preview.Items, res.Items())
	assert.Equal(t, 3, res.Producers) // 2 + 1
	assert.Equal(t, 5, res.Recipes)   // 4 + 1
	assert.Equal(t, 2, res.Storage)
	assert.Equal(t, int64(30+500+100+750), res.Coins)

	assert.Zero(t, a.ClaimAll().Coins)
}

func TestClaimAllStorage(t *testing.T) {
	g := claimableGame()
	assert.Equal(t, 2, g.ClaimAllStorage())
	assert.Equal(t, int64(850), g.State.Coins)
	assert.Equal(t, 0, g.ClaimAllStorage())
}

func TestPrestige(t *testing.T) {
	g := NewGame(testDefs())
	g.State.Kimchi = magnitude.FromSuffix(5, 4)
	g.State.Coins = 1234
	g.State.GoldKeys = 77
	g.State.Producers[0] = ProducerState{Level: 40, Claimed: 5}
	g.State.Materials[2] = MaterialTrack{Level: 3, Cost: 100000}
	g.State.Recipes[1] = RecipeTrack{Level: 6, Cost: 6400, Claimed: 6}

	before := g.State.Clone()
	assert.False(t, g.Prestige())
	assert.Equal(t, before, g.State)

	unlockAll(g)
	g.State.Storage[2].Claimed = true
	g.RefreshPrestige()
	require.True(t, g.State.PrestigeAvailable)
	require.True(t, g.Prestige())

	st := g.State
	assert.Equal(t, 500, st.PermanentBonusPct)
	assert.True(t, st.Kimchi.IsZero())
	assert.Equal(t, 0, st.UnlockedStorage)
	assert.False(t, st.PrestigeAvailable)
	for i, s := range st.Storage {
		assert.False(t, s.Unlocked, "stage %d", i)
	}
	assert.True(t, st.Storage[2].Claimed)
	for _, p := range st.Producers {
		assert.Zero(t, p.Level)
	}
	assert.Equal(t, 5, st.Producers[0].Claimed)
	assert.Equal(t, int64(1234), st.Coins)
	assert.Equal(t, int64(77), st.GoldKeys)
	assert.Equal(t, before.Materials, st.Materials)
	assert.Equal(t, RecipeTrack{Level: 0, Cost: 100, Claimed: 6}, st.Recipes[1])

	assert.False(t, g.Prestige())
	assert.Equal(t, 500, g.State.PermanentBonusPct)
}

func TestTemporaryBuff(t *testing.T) {
	g := NewGame(testDefs())
	require.True(t, g.ApplyTemporaryBuff())
	assert.Equal(t, 100, g.State.AdBuffPct)
	assert.Equal(t, 300.0, g.State.AdBuffRemain)

	for range 9 {
		g.ApplyTemporaryBuff()
	}
	assert.Equal(t, 310.0, g.State.AdBuffRemain)

	g.State.AdBuffWatched = 1000
	g.ApplyTemporaryBuff()
	assert.Equal(t, 600.0, g.State.AdBuffRemain)
	assert.Equal(t, 100, g.State.AdBuffPct)
}

func TestDailyAdCurrency(t *testing.T) {
	g := NewGame(testDefs())
	for i := 0; i < 5; i++ {
		require.True(t, g.GrantDailyAdCurrency("20260101"))
	}
	assert.False(t, g.GrantDailyAdCurrency("20260101"))
	assert.Equal(t, int64(100), g.State.Coins)

	require.True(t, g.GrantDailyAdCurrency("20260102"))
	assert.Equal(t, 1, g.State.AdCoinUsed)
	assert.Equal(t, "20260102", g.State.AdCoinDate)
}

func TestDailyAdCurrencyDisabledLeavesState(t *testing.T) {
	d := testDefs()
	d.Ads.CoinDailyLimit = 0
	g := NewGame(d)
	g.State.AdCoinDate, g.State.AdCoinUsed = "20260101", 3

	assert.False(t, g.GrantDailyAdCurrency("20260102"))
	assert.Equal(t, "20260101", g.State.AdCoinDate)
	assert.Equal(t, 3, g.State.AdCoinUsed)
	assert.Zero(t, g.State.Coins)
}

func TestBoostAndPremium(t *testing.T) {
	g := NewGame(testDefs())
	g.State.Producers[1].Level = 1
	gain := g.GrantProductionBoost()
	assert.InDelta(t, 110*300, gain.Float64(), 1e-6)

	assert.False(t, g.GrantPremiumCurrency(0))
	assert.False(t, g.GrantPremiumCurrency(-5))
	assert.True(t, g.GrantPremiumCurrency(100))
	assert.Equal(t, int64(100), g.State.GoldKeys)

	g.MarkPurchased("keys_100")
	g.MarkPurchased("keys_100")
	assert.Equal(t, []string{"keys_100"}, g.State.PurchasedPacks)
}
