package economy

import (
	"math"
	"slices"

	"github.com/khwan789/KimchiClicker/internal/magnitude"
)

// ProducerState is the run-scoped progress of one producer.
type ProducerState struct {
	Level   int
	Claimed int // milestones already claimed; survives prestige
}

// MaterialTrack is a coin upgrade (+1% per level). Survives prestige.
type MaterialTrack struct {
	Level int
	Cost  int64
}

// RecipeTrack is a gold-key upgrade (+100% per level, capped).
type RecipeTrack struct {
	Level   int
	Cost    int64
	Claimed int // claim cursor; kept on prestige as history baseline
}

// StorageTrack holds the flags of one storage stage.
type StorageTrack struct {
	Unlocked bool // this run only
	Claimed  bool // reward taken; never cleared
}

// State is the aggregate root of a save. Every collection is index-aligned
// with the matching slice in Definitions.
type State struct {
	Kimchi   magnitude.Magnitude
	Coins    int64
	GoldKeys int64

	Producers []ProducerState
	Materials []MaterialTrack
	Recipes   []RecipeTrack
	Storage   []StorageTrack

	UnlockedStorage   int
	PermanentBonusPct int
	PrestigeAvailable bool

	AdBuffPct     int
	AdBuffRemain  float64
	AdBuffWatched int
	AdCoinUsed    int
	AdCoinDate    string // YYYYMMDD

	ActiveSeconds  float64
	PurchasedPacks []string
}

// NewState returns a fresh run shaped for d.
func NewState(d *Definitions) State {
	st := State{
		Producers: make([]ProducerState, len(d.Producers)),
		Materials: make([]MaterialTrack, len(d.MaterialNames)),
		Recipes:   make([]RecipeTrack, len(d.RecipeNames)),
		Storage:   make([]StorageTrack, len(d.Storage)),
	}
	for i := range st.Materials {
		st.Materials[i].Cost = d.MaterialBaseCost
	}
	for i := range st.Recipes {
		st.Recipes[i].Cost = d.RecipeBaseCost
	}
	return st
}

// Clone deep-copies the state so callers never share slices with the owner.
func (s State) Clone() State {
	out := s
	out.Producers = slices.Clone(s.Producers)
	out.Materials = slices.Clone(s.Materials)
	out.Recipes = slices.Clone(s.Recipes)
	out.Storage = slices.Clone(s.Storage)
	out.PurchasedPacks = slices.Clone(s.PurchasedPacks)
	return out
}

// HasPurchased reports whether the shop pack id was bought before.
func (s *State) HasPurchased(id string) bool {
	return slices.Contains(s.PurchasedPacks, id)
}

// grow multiplies a cost, saturating instead of overflowing.
func grow(cost, factor int64) int64 {
	if factor <= 1 {
		return cost
	}
	if cost > math.MaxInt64/factor {
		return math.MaxInt64
	}
	return cost * factor
}
