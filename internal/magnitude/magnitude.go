package magnitude

import (
	"math"
)

// Base is the value of one tier step.
const Base = 1000.0

// MaxTierGap is the largest tier difference at which add/sub still combine
// operands. Beyond it the lower-tier operand is discarded.
const MaxTierGap = 16

// Magnitude is a non-negative number stored as mantissa × 1000^tier.
// Normalized form: mantissa == 0 ⇒ tier == 0, otherwise 1 <= mantissa < 1000
// (a tier-0 value may sit below 1, e.g. 0.5).
type Magnitude struct {
	mantissa float64
	tier     int
}

var (
	Zero = Magnitude{}
	One  = Magnitude{mantissa: 1}
)

// New builds a normalized magnitude from a raw (mantissa, tier) pair.
func New(mantissa float64, tier int) Magnitude {
	if tier < 0 {
		mantissa *= math.Pow(Base, float64(tier))
		tier = 0
	}
	return normalize(mantissa, tier)
}

// FromFloat converts a real number. Zero, negative, NaN and infinite inputs
// collapse to Zero.
func FromFloat(v float64) Magnitude {
	return normalize(v, 0)
}

// FromSuffix builds mantissa × 1000^suffixIndex (1=A, 2=B, ...).
func FromSuffix(mantissa float64, suffixIndex int) Magnitude {
	return New(mantissa, max(0, suffixIndex))
}

// FromLog10 returns 10^l. Unlike FromFloat(math.Pow(10, l)) it never
// overflows, so it is safe for very large exponents.
func FromLog10(l float64) Magnitude {
	if math.IsNaN(l) || math.IsInf(l, 0) {
		return Zero
	}
	if l < 0 {
		return FromFloat(math.Pow(10, l))
	}
	tier := int(math.Floor(l / 3))
	return normalize(math.Pow(10, l-float64(tier)*3), tier)
}

func normalize(m float64, t int) Magnitude {
	if m <= 0 || math.IsNaN(m) || math.IsInf(m, 0) {
		return Zero
	}
	for m >= Base {
		m /= Base
		t++
	}
	for m < 1 && t > 0 {
		m *= Base
		t--
	}
	return Magnitude{mantissa: m, tier: t}
}

// Mantissa returns the normalized mantissa.
func (a Magnitude) Mantissa() float64 { return a.mantissa }

// Tier returns the power-of-1000 bucket.
func (a Magnitude) Tier() int { return a.tier }

// IsZero reports whether a is the zero value.
func (a Magnitude) IsZero() bool { return a.mantissa == 0 }

// Float64 converts back to a float. Huge tiers overflow to +Inf.
func (a Magnitude) Float64() float64 {
	if a.mantissa == 0 {
		return 0
	}
	return a.mantissa * math.Pow(Base, float64(a.tier))
}

// Add returns a + b.
func (a Magnitude) Add(b Magnitude) Magnitude {
	if a.mantissa == 0 {
		return b
	}
	if b.mantissa == 0 {
		return a
	}
	if a.tier == b.tier {
		return normalize(a.mantissa+b.mantissa, a.tier)
	}
	hi, lo := a, b
	if b.tier > a.tier {
		hi, lo = b, a
	}
	diff := hi.tier - lo.tier
	if diff > MaxTierGap {
		return hi
	}
	return normalize(hi.mantissa+lo.mantissa/math.Pow(Base, float64(diff)), hi.tier)
}

// Sub returns a - b, clamped at Zero when b > a.
func (a Magnitude) Sub(b Magnitude) Magnitude {
	if b.mantissa == 0 {
		return a
	}
	if a.tier < b.tier {
		return Zero
	}
	if a.tier == b.tier {
		return normalize(a.mantissa-b.mantissa, a.tier)
	}
	diff := a.tier - b.tier
	if diff > MaxTierGap {
		return a
	}
	return normalize(a.mantissa-b.mantissa/math.Pow(Base, float64(diff)), a.tier)
}

// Mul returns a × b: mantissas multiply, tiers add.
func (a Magnitude) Mul(b Magnitude) Magnitude {
	return normalize(a.mantissa*b.mantissa, a.tier+b.tier)
}

// Scale returns a × f. A negative factor yields Zero.
func (a Magnitude) Scale(f float64) Magnitude {
	return normalize(a.mantissa*f, a.tier)
}

// Div returns a / d. Non-positive divisors leave a unchanged.
func (a Magnitude) Div(d float64) Magnitude {
	if d <= 0 || math.IsNaN(d) {
		return a
	}
	return normalize(a.mantissa/d, a.tier)
}

// Cmp returns -1, 0 or +1 ordering a against b.
func (a Magnitude) Cmp(b Magnitude) int {
	switch {
	case a.tier != b.tier && a.mantissa != 0 && b.mantissa != 0:
		if a.tier < b.tier {
			return -1
		}
		return 1
	case a.mantissa < b.mantissa && (a.tier == b.tier || a.mantissa == 0):
		return -1
	case a.mantissa > b.mantissa && (a.tier == b.tier || b.mantissa == 0):
		return 1
	}
	return 0
}

func (a Magnitude) Less(b Magnitude) bool           { return a.Cmp(b) < 0 }
func (a Magnitude) GreaterOrEqual(b Magnitude) bool { return a.Cmp(b) >= 0 }
func (a Magnitude) Equal(b Magnitude) bool          { return a.Cmp(b) == 0 }

// Max returns the larger of a and b.
func Max(a, b Magnitude) Magnitude {
	if a.Less(b) {
		return b
	}
	return a
}
