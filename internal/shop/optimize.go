package shop

import (
	"math"
	"sort"
)

// A first-time doubled purchase is a one-off item; the regular variant of
// every pack can be bought any number of times. Plans enumerate subsets of
// the one-off items and fill the rest with an unbounded knapsack.

type item struct {
	id, name    string
	keys, price int
}

func (c Catalog) items(first FirstTimeState) (regular, once []item) {
	for _, p := range c.Packs {
		if p.PriceCents <= 0 || p.Grant(false) <= 0 {
			continue
		}
		if p.FirstTimeX2 && first[p.ID] {
			once = append(once, item{p.ID + "#x2", p.Name + " (x2)", p.Grant(true), p.PriceCents})
		}
		regular = append(regular, item{p.ID, p.Name, p.Grant(false), p.PriceCents})
	}
	return regular, once
}

// maxOnce bounds the subset enumeration.
const maxOnce = 12

// The tables are sized by the request, so requests are bounded. Larger
// inputs plan nothing.
const (
	MaxTargetKeys  = 1_000_000
	MaxBudgetCents = 1_000_000
)

// MinCostAtLeastKeys finds the cheapest combination yielding at least target
// keys.
func MinCostAtLeastKeys(cat Catalog, target int, first FirstTimeState) Plan {
	regular, once := cat.items(first)
	if target <= 0 || target > MaxTargetKeys || len(regular) == 0 {
		return Plan{Currency: cat.Currency}
	}
	once = once[:min(len(once), maxOnce)]

	// best[t] = min cost to obtain at least t keys from regular packs.
	const inf = math.MaxInt
	best := make([]int, target+1)
	pick := make([]int, target+1)
	for t := 1; t <= target; t++ {
		best[t], pick[t] = inf, -1
		for i, it := range regular {
			rest := max(0, t-it.keys)
			if best[rest] == inf {
				continue
			}
			if c := best[rest] + it.price; c < best[t] {
				best[t], pick[t] = c, i
			}
		}
	}

	bestCost, bestMask := inf, 0
	for mask := 0; mask < 1<<len(once); mask++ {
		cost, keys := 0, 0
		for i, it := range once {
			if mask&(1<<i) != 0 {
				cost += it.price
				keys += it.keys
			}
		}
		rest := max(0, target-keys)
		if best[rest] == inf {
			continue
		}
		if cost += best[rest]; cost < bestCost {
			bestCost, bestMask = cost, mask
		}
	}
	if bestCost == inf {
		return Plan{Currency: cat.Currency}
	}

	var chosen []item
	keys := 0
	for i, it := range once {
		if bestMask&(1<<i) != 0 {
			chosen = append(chosen, it)
			keys += it.keys
		}
	}
	for t := max(0, target-keys); t > 0; {
		it := regular[pick[t]]
		chosen = append(chosen, it)
		t = max(0, t-it.keys)
	}
	return buildPlan(cat, chosen)
}

// MaxKeysUnderBudget computes the most keys purchasable for budgetCents,
// tax included.
func MaxKeysUnderBudget(cat Catalog, budgetCents int, first FirstTimeState) Plan {
	regular, once := cat.items(first)
	if budgetCents <= 0 || budgetCents > MaxBudgetCents || len(regular)+len(once) == 0 {
		return Plan{Currency: cat.Currency}
	}
	once = once[:min(len(once), maxOnce)]

	effBudget := budgetCents
	if cat.TaxRate > 0 {
		effBudget = int(math.Floor(float64(budgetCents) / (1 + cat.TaxRate)))
	}

	// dp[c] = max keys with pre-tax cost at most c.
	dp := make([]int, effBudget+1)
	pick := make([]int, effBudget+1)
	for c := range pick {
		pick[c] = -1
		if c > 0 {
			dp[c] = dp[c-1]
		}
		for i, it := range regular {
			if it.price <= c && dp[c-it.price]+it.keys > dp[c] {
				dp[c], pick[c] = dp[c-it.price]+it.keys, i
			}
		}
	}

	bestKeys, bestMask := -1, 0
	for mask := 0; mask < 1<<len(once); mask++ {
		cost, keys := 0, 0
		for i, it := range once {
			if mask&(1<<i) != 0 {
				cost += it.price
				keys += it.keys
			}
		}
		if cost > effBudget {
			continue
		}
		if keys += dp[effBudget-cost]; keys > bestKeys {
			bestKeys, bestMask = keys, mask
		}
	}

	var chosen []item
	spent := 0
	for i, it := range once {
		if bestMask&(1<<i) != 0 {
			chosen = append(chosen, it)
			spent += it.price
		}
	}
	for c := effBudget - spent; c > 0; {
		if pick[c] == -1 {
			c--
			continue
		}
		it := regular[pick[c]]
		chosen = append(chosen, it)
		c -= it.price
	}
	return buildPlan(cat, chosen)
}

func buildPlan(cat Catalog, chosen []item) Plan {
	qty := map[item]int{}
	for _, it := range chosen {
		qty[it]++
	}
	plan := Plan{Currency: cat.Currency}
	for it, n := range qty {
		sub := it.price * n
		plan.Purchases = append(plan.Purchases, Purchase{
			PackID:    it.id,
			Name:      it.name,
			Qty:       n,
			UnitPrice: it.price,
			UnitKeys:  it.keys,
			Subtotal:  sub,
		})
		plan.SubCents += sub
		plan.TotalKeys += it.keys * n
	}
	sort.Slice(plan.Purchases, func(i, j int) bool {
		return plan.Purchases[i].PackID < plan.Purchases[j].PackID
	})
	plan.TaxCents, plan.TotalCents = applyTax(plan.SubCents, cat.TaxRate)
	return plan
}
