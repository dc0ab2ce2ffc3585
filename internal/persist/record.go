// Package persist maps the economy state to a versioned save document and
// back, repairing whatever an older or damaged document gets wrong.
package persist

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/khwan789/KimchiClicker/internal/economy"
	"github.com/khwan789/KimchiClicker/internal/magnitude"
)

const (
	RecordType     = "kimchi_save"
	CurrentVersion = 2 // v2 added storage_claimed
)

var (
	ErrNotFound           = errors.New("save not found")
	ErrBadType            = errors.New("not a kimchi save")
	ErrUnsupportedVersion = errors.New("unsupported save version")
)

// Record is the persisted document.
type Record struct {
	Type    string    `json:"type"`
	Version int       `json:"version"`
	SavedAt time.Time `json:"saved_at"`

	KimchiMantissa float64 `json:"kimchi_mantissa"`
	KimchiTier     int     `json:"kimchi_tier"`
	Coins          int64   `json:"coins"`
	GoldKeys       int64   `json:"gold_keys"`

	ProducerLevels  []int   `json:"producer_levels"`
	ProducerClaimed []int   `json:"producer_claimed"`
	MaterialLevels  []int   `json:"material_levels"`
	MaterialCosts   []int64 `json:"material_costs"`
	RecipeLevels    []int   `json:"recipe_levels"`
	RecipeClaimed   []int   `json:"recipe_claimed"`
	RecipeCosts     []int64 `json:"recipe_costs"`
	StorageUnlocked []bool  `json:"storage_unlocked"`
	StorageClaimed  []bool  `json:"storage_claimed,omitempty"`

	UnlockedStorageCount int `json:"unlocked_storage_count"`
	PermanentBonusPct    int `json:"permanent_bonus_pct"`

	AdBuffPct     int     `json:"ad_buff_pct"`
	AdBuffRemain  float64 `json:"ad_buff_remain"`
	AdBuffWatched int     `json:"ad_buff_watched"`
	AdCoinUsed    int     `json:"ad_coin_used"`
	AdCoinDate    string  `json:"ad_coin_date"`

	ActiveSeconds  float64  `json:"active_seconds"`
	PurchasedPacks []string `json:"purchased_packs,omitempty"`
}

// FromState captures st as a current-version record.
func FromState(st economy.State, now time.Time) Record {
	r := Record{
		Type:                 RecordType,
		Version:              CurrentVersion,
		SavedAt:              now.UTC(),
		KimchiMantissa:       st.Kimchi.Mantissa(),
		KimchiTier:           st.Kimchi.Tier(),
		Coins:                st.Coins,
		GoldKeys:             st.GoldKeys,
		UnlockedStorageCount: st.UnlockedStorage,
		PermanentBonusPct:    st.PermanentBonusPct,
		AdBuffPct:            st.AdBuffPct,
		AdBuffRemain:         st.AdBuffRemain,
		AdBuffWatched:        st.AdBuffWatched,
		AdCoinUsed:           st.AdCoinUsed,
		AdCoinDate:           st.AdCoinDate,
		ActiveSeconds:        st.ActiveSeconds,
		PurchasedPacks:       append([]string(nil), st.PurchasedPacks...),
	}
	for _, p := range st.Producers {
		r.ProducerLevels = append(r.ProducerLevels, p.Level)
		r.ProducerClaimed = append(r.ProducerClaimed, p.Claimed)
	}
	for _, m := range st.Materials {
		r.MaterialLevels = append(r.MaterialLevels, m.Level)
		r.MaterialCosts = append(r.MaterialCosts, m.Cost)
	}
	for _, rc := range st.Recipes {
		r.RecipeLevels = append(r.RecipeLevels, rc.Level)
		r.RecipeClaimed = append(r.RecipeClaimed, rc.Claimed)
		r.RecipeCosts = append(r.RecipeCosts, rc.Cost)
	}
	for _, s := range st.Storage {
		r.StorageUnlocked = append(r.StorageUnlocked, s.Unlocked)
		r.StorageClaimed = append(r.StorageClaimed, s.Claimed)
	}
	return r
}

// Check rejects documents that are not saves of this game or are newer
// than this build understands. A missing type or version is a legacy save.
func (r Record) Check() error {
	if r.Type != "" && r.Type != RecordType {
		return fmt.Errorf("%w: type %q", ErrBadType, r.Type)
	}
	if r.Version > CurrentVersion {
		return fmt.Errorf("%w: %d (max %d)", ErrUnsupportedVersion, r.Version, CurrentVersion)
	}
	return nil
}

// fit truncates or pads s to n elements, padding with def.
func fit[T any](s []T, n int, def T) ([]T, bool) {
	out := make([]T, n)
	for i := range out {
		if i < len(s) {
			out[i] = s[i]
		} else {
			out[i] = def
		}
	}
	return out, len(s) != n
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

// Apply rebuilds a state for d from r. Arrays are reshaped to the current
// definition counts first, then fields are copied, then out-of-range values
// are repaired. The returned notes describe every reshape, migration and
// repair.
func Apply(r Record, d *economy.Definitions) (economy.State, []string, error) {
	if err := r.Check(); err != nil {
		return economy.State{}, nil, err
	}
	var notes []string
	note := func(format string, args ...any) { notes = append(notes, fmt.Sprintf(format, args...)) }

	// v1 saves predate storage_claimed: every unlocked stage counts as claimed.
	if r.StorageClaimed == nil && len(r.StorageUnlocked) > 0 {
		r.StorageClaimed = append([]bool(nil), r.StorageUnlocked...)
		note("migrated storage_claimed from storage_unlocked (version %d)", r.Version)
	}

	np, nm, nr, ns := len(d.Producers), len(d.MaterialNames), len(d.RecipeNames), len(d.Storage)
	reshape := func(name string, changed bool, from, to int) {
		if changed {
			note("%s: reshaped %d -> %d", name, from, to)
		}
	}
	pLevels, c := fit(r.ProducerLevels, np, 0)
	reshape("producer_levels", c, len(r.ProducerLevels), np)
	pClaimed, c := fit(r.ProducerClaimed, np, 0)
	reshape("producer_claimed", c, len(r.ProducerClaimed), np)
	mLevels, c := fit(r.MaterialLevels, nm, 0)
	reshape("material_levels", c, len(r.MaterialLevels), nm)
	mCosts, c := fit(r.MaterialCosts, nm, d.MaterialBaseCost)
	reshape("material_costs", c, len(r.MaterialCosts), nm)
	rLevels, c := fit(r.RecipeLevels, nr, 0)
	reshape("recipe_levels", c, len(r.RecipeLevels), nr)
	rClaimed, c := fit(r.RecipeClaimed, nr, 0)
	reshape("recipe_claimed", c, len(r.RecipeClaimed), nr)
	rCosts, c := fit(r.RecipeCosts, nr, d.RecipeBaseCost)
	reshape("recipe_costs", c, len(r.RecipeCosts), nr)
	sUnlocked, c := fit(r.StorageUnlocked, ns, false)
	reshape("storage_unlocked", c, len(r.StorageUnlocked), ns)
	sClaimed, c := fit(r.StorageClaimed, ns, false)
	reshape("storage_claimed", c, len(r.StorageClaimed), ns)

	st := economy.NewState(d)
	st.Kimchi = magnitude.New(r.KimchiMantissa, r.KimchiTier)
	st.Coins = r.Coins
	st.GoldKeys = r.GoldKeys
	st.PermanentBonusPct = r.PermanentBonusPct
	st.AdBuffPct = r.AdBuffPct
	st.AdBuffRemain = r.AdBuffRemain
	st.AdBuffWatched = r.AdBuffWatched
	st.AdCoinUsed = r.AdCoinUsed
	st.AdCoinDate = r.AdCoinDate
	st.ActiveSeconds = r.ActiveSeconds
	st.PurchasedPacks = append([]string(nil), r.PurchasedPacks...)
	for i := range st.Producers {
		st.Producers[i] = economy.ProducerState{Level: pLevels[i], Claimed: pClaimed[i]}
	}
	for i := range st.Materials {
		st.Materials[i] = economy.MaterialTrack{Level: mLevels[i], Cost: mCosts[i]}
	}
	for i := range st.Recipes {
		st.Recipes[i] = economy.RecipeTrack{Level: rLevels[i], Cost: rCosts[i], Claimed: rClaimed[i]}
	}
	for i := range st.Storage {
		st.Storage[i] = economy.StorageTrack{Unlocked: sUnlocked[i], Claimed: sClaimed[i]}
	}

	repair(&st, d, r, note)

	g := &economy.Game{Defs: d, State: st}
	g.RefreshPrestige()
	return g.State, notes, nil
}

func repair(st *economy.State, d *economy.Definitions, r Record, note func(string, ...any)) {
	if r.KimchiMantissa < 0 || math.IsNaN(r.KimchiMantissa) || math.IsInf(r.KimchiMantissa, 0) {
		note("kimchi: invalid mantissa %v reset to zero", r.KimchiMantissa)
	}
	nonNeg := func(name string, v *int64) {
		if *v < 0 {
			note("%s: %d clamped to 0", name, *v)
			*v = 0
		}
	}
	nonNeg("coins", &st.Coins)
	nonNeg("gold_keys", &st.GoldKeys)

	nonNegInt := func(name string, v *int) {
		if *v < 0 {
			note("%s: %d clamped to 0", name, *v)
			*v = 0
		}
	}
	for i := range st.Producers {
		nonNegInt(fmt.Sprintf("producer_levels[%d]", i), &st.Producers[i].Level)
		nonNegInt(fmt.Sprintf("producer_claimed[%d]", i), &st.Producers[i].Claimed)
	}
	for i := range st.Materials {
		m := &st.Materials[i]
		nonNegInt(fmt.Sprintf("material_levels[%d]", i), &m.Level)
		if m.Cost <= 0 {
			note("material_costs[%d]: %d reset to base", i, m.Cost)
			m.Cost = d.MaterialBaseCost
		}
	}
	for i := range st.Recipes {
		rc := &st.Recipes[i]
		nonNegInt(fmt.Sprintf("recipe_levels[%d]", i), &rc.Level)
		nonNegInt(fmt.Sprintf("recipe_claimed[%d]", i), &rc.Claimed)
		if d.RecipeMaxLevel > 0 && rc.Level > d.RecipeMaxLevel {
			note("recipe_levels[%d]: %d clamped to %d", i, rc.Level, d.RecipeMaxLevel)
			rc.Level = d.RecipeMaxLevel
		}
		if rc.Cost <= 0 {
			note("recipe_costs[%d]: %d reset to base", i, rc.Cost)
			rc.Cost = d.RecipeBaseCost
		}
	}

	unlocked := 0
	for _, s := range st.Storage {
		if s.Unlocked {
			unlocked++
		}
	}
	if unlocked != r.UnlockedStorageCount {
		note("unlocked_storage_count: %d recomputed as %d", r.UnlockedStorageCount, unlocked)
	}
	st.UnlockedStorage = unlocked

	nonNegInt("permanent_bonus_pct", &st.PermanentBonusPct)
	nonNegInt("ad_buff_watched", &st.AdBuffWatched)
	nonNegInt("ad_coin_used", &st.AdCoinUsed)
	st.AdBuffRemain = finite(st.AdBuffRemain)
	if st.AdBuffRemain == 0 && st.AdBuffPct != 0 {
		note("ad_buff_pct: %d cleared, no time remaining", st.AdBuffPct)
		st.AdBuffPct = 0
	}
	nonNegInt("ad_buff_pct", &st.AdBuffPct)
	st.ActiveSeconds = finite(st.ActiveSeconds)
}
