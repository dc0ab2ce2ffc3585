package sim

import (
	"github.com/khwan789/KimchiClicker/internal/economy"
	"github.com/khwan789/KimchiClicker/internal/magnitude"
)

// OfflinePolicy bounds what a resume may grant.
type OfflinePolicy struct {
	KimchiCapHours float64 // 0 means uncapped
	CountKeys      bool    // feed offline time to the key drip
	KeyCapHours    float64 // 0 means uncapped
	MinSeconds     float64 // elapsed time must be strictly above this
	MaxSeconds     float64 // and strictly below this
	SecondsPerKey  float64
}

// Offline describes a granted catch-up.
type Offline struct {
	Elapsed     float64
	Credited    float64 // seconds of production granted
	Kimchi      magnitude.Magnitude
	KeySeconds  float64
	KeysGranted int64
}

// Window reports whether elapsed seconds pass the sanity bound.
func (p OfflinePolicy) Window(seconds float64) bool {
	return seconds > p.MinSeconds && seconds < p.MaxSeconds
}

func capSeconds(seconds, hours float64) float64 {
	if hours <= 0 {
		return seconds
	}
	return min(seconds, hours*3600)
}

// CatchUp credits seconds of absence. Production uses the rate at resume
// time rather than replaying ticks. It returns false, changing nothing, when
// seconds falls outside the policy window.
func CatchUp(g *economy.Game, seconds float64, p OfflinePolicy) (Offline, bool) {
	if !p.Window(seconds) {
		return Offline{}, false
	}
	out := Offline{Elapsed: seconds, Credited: capSeconds(seconds, p.KimchiCapHours)}
	out.Kimchi = g.TotalRate().Scale(out.Credited)
	g.State.Kimchi = g.State.Kimchi.Add(out.Kimchi)

	if p.CountKeys {
		out.KeySeconds = capSeconds(seconds, p.KeyCapHours)
		out.KeysGranted = Drip(g, out.KeySeconds, p.SecondsPerKey)
	}
	return out, true
}
