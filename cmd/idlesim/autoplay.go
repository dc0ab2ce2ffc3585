package main

import (
	"fmt"
	"io"
	"time"

	"github.com/khwan789/KimchiClicker/internal/clock"
	"github.com/khwan789/KimchiClicker/internal/engine"
)

type plan struct {
	Seconds     float64
	TapsPerSec  float64
	AutoBuy     bool
	StepSeconds float64
}

type report struct {
	Seconds  float64
	Taps     int
	Bought   int
	Unlocked int
}

// autoplay drives eng in fixed steps. Once per simulated second it taps,
// buys the cheapest affordable producer and unlocks any reachable stage.
func autoplay(eng *engine.Engine, clk *clock.Fake, p plan) report {
	var rep report
	if p.StepSeconds <= 0 {
		p.StepSeconds = 0.1
	}
	var second, taps float64
	for rep.Seconds < p.Seconds {
		dt := min(p.StepSeconds, p.Seconds-rep.Seconds)
		eng.Step(dt)
		clk.Advance(time.Duration(dt * float64(time.Second)))
		rep.Seconds += dt

		second += dt
		if second < 1 {
			continue
		}
		second--

		for taps += p.TapsPerSec; taps >= 1; taps-- {
			eng.Tap()
			rep.Taps++
		}
		if p.AutoBuy {
			for buyCheapest(eng) {
				rep.Bought++
			}
		}
		for i := range eng.Snapshot().Storage {
			if eng.UnlockStorage(i) {
				rep.Unlocked++
			}
		}
	}
	return rep
}

// buyCheapest buys one batch of the cheapest affordable producer.
func buyCheapest(eng *engine.Engine) bool {
	best := -1
	n := len(eng.State().Producers)
	for i := range n {
		if !eng.CanAffordProducer(i) {
			continue
		}
		if best < 0 || eng.ProducerCost(i).Less(eng.ProducerCost(best)) {
			best = i
		}
	}
	return best >= 0 && eng.BuyProducer(best)
}

func printSnapshot(w io.Writer, s engine.Snapshot) {
	fmt.Fprintf(w, "%s %s  %s %s/s  %s %d  %s %d\n",
		bold("kimchi"), green(s.Kimchi),
		bold("rate"), green(s.TotalRate),
		bold("coins"), s.Coins,
		bold("keys"), s.GoldKeys)
	fmt.Fprintf(w, "%s x%.2f  %s +%d%%", bold("multiplier"), s.Multiplier, bold("prestige bonus"), s.PermanentBonus)
	if s.BuffRemaining > 0 {
		fmt.Fprintf(w, "  %s +%d%% %.0fs", yellow("buff"), s.BuffPct, s.BuffRemaining)
	}
	if s.PrestigeEligible {
		fmt.Fprintf(w, "  %s", yellow("prestige ready"))
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, bold("\nproducers"))
	for _, p := range s.Producers {
		cost := red(p.Cost)
		if p.Affordable {
			cost = green(p.Cost)
		}
		fmt.Fprintf(w, "  %-18s lv %-4d %12s/s  next %s", p.Name, p.Level, p.Rate, cost)
		if p.Claimable > 0 {
			fmt.Fprintf(w, "  %s", yellow(fmt.Sprintf("%d to claim", p.Claimable)))
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, bold("\nstorage"))
	for _, st := range s.Storage {
		mark := faint("locked")
		switch {
		case st.Unlocked && !st.Claimed:
			mark = yellow("unlocked, reward open")
		case st.Unlocked:
			mark = green("unlocked")
		case st.CanUnlock:
			mark = yellow("can unlock")
		}
		fmt.Fprintf(w, "  %-18s at %8s/s  %s\n", st.Name, st.Threshold, mark)
	}
	if s.ClaimAll.Items > 0 {
		fmt.Fprintf(w, "\n%s %d items for %d coins\n", yellow("claim all:"), s.ClaimAll.Items, s.ClaimAll.Coins)
	}
}
