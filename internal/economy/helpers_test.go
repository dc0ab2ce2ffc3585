package economy

import "github.com/khwan789/KimchiClicker/internal/magnitude"

// testDefs mirrors the shipped balance table.
func testDefs() *Definitions {
	rates := []magnitude.Magnitude{
		magnitude.FromFloat(1), magnitude.FromFloat(100),
		magnitude.FromSuffix(1, 1), magnitude.FromSuffix(1, 2), magnitude.FromSuffix(1, 3),
		magnitude.FromSuffix(1, 4), magnitude.FromSuffix(1, 5), magnitude.FromSuffix(1, 6),
		magnitude.FromSuffix(1, 7), magnitude.FromSuffix(1, 8),
	}
	d := &Definitions{
		CostRatio:          1.2,
		ManualBasePerTap:   1,
		MaterialNames:      []string{"Chili", "Garlic", "Ginger", "Scallion", "Fish Sauce"},
		MaterialBaseCost:   100,
		MaterialCostGrowth: 10,
		RecipeNames:        []string{"Kkakdugi", "Mul Kimchi", "Buchu", "Oi Sobagi", "Pa", "Yeolmu"},
		RecipeBaseCost:     100,
		RecipeCostGrowth:   2,
		RecipeMaxLevel:     10,
		ProducerReward:     10,
		ProducerStep:       10,
		RecipeReward:       100,
		Ads: AdRules{
			BuffPct:          100,
			BuffSeconds:      300,
			BonusStepSeconds: 10,
			BonusCapSeconds:  300,
			CoinDailyLimit:   5,
			CoinReward:       20,
			BoostSeconds:     300,
		},
	}
	for i, r := range rates {
		cost := magnitude.FromFloat(100)
		if i > 0 {
			cost = magnitude.FromSuffix(1, 2*i-1)
		}
		d.Producers = append(d.Producers, ProducerDef{Name: "p", BaseRate: r, BaseCost: cost})
	}
	rewards := []int64{100, 300, 500, 750, 1000}
	for i, tier := range []int{3, 6, 9, 12, 15} {
		d.Storage = append(d.Storage, StorageDef{
			Name:       "stage",
			Threshold:  magnitude.FromSuffix(1, tier),
			BuffPct:    100,
			CoinReward: rewards[i],
		})
	}
	return d
}

func unlockAll(g *Game) {
	for i := range g.State.Storage {
		g.State.Storage[i].Unlocked = true
	}
	g.State.UnlockedStorage = len(g.State.Storage)
}
