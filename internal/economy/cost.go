package economy

import (
	"math"

	"github.com/khwan789/KimchiClicker/internal/magnitude"
)

// float64 keeps ~15 significant digits; past this exponent the geometric
// factor is built in log space instead.
const maxLinearLog10 = 15.0

// CostToBuy prices levels N+1..N+K at constant growth ratio r:
// baseCost × r^N × (r^K − 1)/(r − 1). For r == 1 it is K × baseCost.
func CostToBuy(baseCost magnitude.Magnitude, n, k int, r float64) magnitude.Magnitude {
	if k <= 0 || baseCost.IsZero() {
		return magnitude.Zero
	}
	if n < 0 {
		n = 0
	}
	if r == 1 || r <= 0 {
		return baseCost.Scale(float64(k))
	}
	return baseCost.Mul(powMagnitude(r, n)).Mul(geometricFactor(r, k))
}

// powMagnitude returns r^n without overflowing for large n.
func powMagnitude(r float64, n int) magnitude.Magnitude {
	l := float64(n) * math.Log10(r)
	if l < maxLinearLog10 {
		return magnitude.FromFloat(math.Pow(r, float64(n)))
	}
	return magnitude.FromLog10(l)
}

// geometricFactor returns (r^k − 1)/(r − 1).
func geometricFactor(r float64, k int) magnitude.Magnitude {
	l := float64(k) * math.Log10(r)
	if r < 1 || l < maxLinearLog10 {
		return magnitude.FromFloat((math.Pow(r, float64(k)) - 1) / (r - 1))
	}
	// r^k dwarfs the -1 term here.
	return magnitude.FromLog10(l - math.Log10(r-1))
}

// ProducerCost is the price of the next k levels of producer i.
func (g *Game) ProducerCost(i, k int) magnitude.Magnitude {
	if !g.validProducer(i) {
		return magnitude.Zero
	}
	return CostToBuy(g.Defs.Producers[i].BaseCost, g.State.Producers[i].Level, k, g.Defs.CostRatio)
}

// CanAfford reports whether the primary currency covers cost.
func (g *Game) CanAfford(cost magnitude.Magnitude) bool {
	return g.State.Kimchi.GreaterOrEqual(cost)
}
