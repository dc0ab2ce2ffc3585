// Package sim advances an economy through time: fixed-step production,
// the ad buff timer, the hourly gold-key drip and offline catch-up.
package sim

import (
	"github.com/khwan789/KimchiClicker/internal/economy"
)

// Clock is a fixed-step accumulator. The zero value is unusable; build one
// with NewClock.
type Clock struct {
	Interval      float64 // seconds per production tick
	SecondsPerKey float64 // active seconds per dripped gold key; 0 disables the drip

	accum float64
}

// NewClock returns a clock ticking hz times per second.
func NewClock(hz int, secondsPerKey float64) *Clock {
	if hz <= 0 {
		hz = 10
	}
	return &Clock{Interval: 1 / float64(hz), SecondsPerKey: secondsPerKey}
}

// StepResult tells the caller what changed during a Step.
type StepResult struct {
	Ticks       int
	BuffExpired bool
	KeysGranted int64
}

// Dirty reports whether anything observable beyond currency accrual changed.
func (r StepResult) Dirty() bool { return r.BuffExpired || r.KeysGranted > 0 }

// Step feeds dt seconds of real time into g.
func (c *Clock) Step(g *economy.Game, dt float64) StepResult {
	var res StepResult
	if dt <= 0 {
		return res
	}

	c.accum += dt
	for c.accum >= c.Interval {
		c.accum -= c.Interval
		g.State.Kimchi = g.State.Kimchi.Add(g.TotalRate().Scale(c.Interval))
		g.RefreshPrestige()
		res.Ticks++
	}

	st := &g.State
	if st.AdBuffRemain > 0 {
		st.AdBuffRemain -= dt
		if st.AdBuffRemain <= 0 {
			st.AdBuffRemain = 0
			st.AdBuffPct = 0
			res.BuffExpired = true
		}
	}

	res.KeysGranted = Drip(g, dt, c.SecondsPerKey)
	return res
}

// Pending is the real time accumulated toward the next tick.
func (c *Clock) Pending() float64 { return c.accum }

// Drip adds seconds of active play and grants one gold key per full
// secondsPerKey, carrying the remainder in ActiveSeconds.
func Drip(g *economy.Game, seconds, secondsPerKey float64) int64 {
	if seconds <= 0 || secondsPerKey <= 0 {
		return 0
	}
	st := &g.State
	st.ActiveSeconds += seconds
	var keys int64
	for st.ActiveSeconds >= secondsPerKey {
		st.ActiveSeconds -= secondsPerKey
		keys++
	}
	st.GoldKeys += keys
	return keys
}
