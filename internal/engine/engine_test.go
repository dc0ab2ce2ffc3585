package engine

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khwan789/KimchiClicker/internal/clock"
	"github.com/khwan789/KimchiClicker/internal/config"
	"github.com/khwan789/KimchiClicker/internal/events"
	"github.com/khwan789/KimchiClicker/internal/magnitude"
	"github.com/khwan789/KimchiClicker/internal/persist"
)

var start = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

type harness struct {
	e     *Engine
	store *persist.MemoryStore
	clk   *clock.Fake
	seen  []events.Event
	saves int
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	return newHarnessWith(t, config.MustDefault())
}

func newHarnessWith(t *testing.T, bal config.Balance) *harness {
	t.Helper()
	h := &harness{store: persist.NewMemoryStore(), clk: clock.NewFake(start)}
	h.e = New(bal, h.store,
		WithClock(h.clk),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	require.NoError(t, h.e.Load())
	h.saves = h.store.Saves()
	h.e.Subscribe(func(ev events.Event) { h.seen = append(h.seen, ev) })
	return h
}

// expect asserts how many notifications and saves happened since the last
// call.
func (h *harness) expect(t *testing.T, notes, saves int) {
	t.Helper()
	assert.Len(t, h.seen, notes, "notifications")
	assert.Equal(t, saves, h.store.Saves()-h.saves, "saves")
	h.seen = nil
	h.saves = h.store.Saves()
}

func TestFirstLoadWritesBaseline(t *testing.T) {
	store := persist.NewMemoryStore()
	e := New(config.MustDefault(), store, WithClock(clock.NewFake(start)))
	var types []events.EventType
	e.Subscribe(func(ev events.Event) { types = append(types, ev.Type) })

	require.NoError(t, e.Load())
	assert.Equal(t, 1, store.Saves())
	assert.Equal(t, []events.EventType{events.Loaded}, types)
	assert.True(t, e.Kimchi().IsZero())
}

func TestExampleScenario(t *testing.T) {
	h := newHarness(t)
	h.expect(t, 0, 0)

	for range 100 {
		h.e.Tap()
	}
	h.expect(t, 100, 0)
	assert.True(t, h.e.Kimchi().Equal(magnitude.FromFloat(100)))
	assert.True(t, h.e.CanAffordProducer(0))

	require.True(t, h.e.BuyProducer(0))
	h.expect(t, 1, 1)
	assert.True(t, h.e.Kimchi().IsZero())
	assert.Equal(t, 1, h.e.State().Producers[0].Level)

	assert.Equal(t, 1, h.e.ProducerClaimable(0))
	require.True(t, h.e.ClaimProducerMilestones(0))
	h.expect(t, 1, 1)
	assert.Equal(t, int64(10), h.e.Coins())

	assert.False(t, h.e.ClaimProducerMilestones(0))
	assert.False(t, h.e.BuyProducer(0))
	assert.False(t, h.e.UpgradeRecipe(0))
	assert.False(t, h.e.Prestige())
	assert.False(t, h.e.ClaimAllAchievements())
	assert.False(t, h.e.UnlockStorage(9))
	h.expect(t, 0, 0)
}

func TestTapLeavesWriteToAutosave(t *testing.T) {
	h := newHarness(t)
	h.e.Tap()
	h.expect(t, 1, 0)

	rec, err := h.store.Load()
	require.NoError(t, err)
	assert.Zero(t, rec.KimchiMantissa)
	require.NoError(t, h.e.Save())
	rec, err = h.store.Load()
	require.NoError(t, err)
	assert.Equal(t, 1.0, rec.KimchiMantissa)
}

func TestZeroRewardClaimsStillCommit(t *testing.T) {
	bal := config.MustDefault()
	bal.Defs.ProducerReward = 0
	bal.Defs.RecipeReward = 0
	h := newHarnessWith(t, bal)
	h.e.game.State.Producers[0].Level = 1
	h.e.game.State.Recipes[0].Level = 2

	require.True(t, h.e.ClaimProducerMilestones(0))
	h.expect(t, 1, 1)
	require.True(t, h.e.ClaimRecipeMilestones(0))
	h.expect(t, 1, 1)
	assert.Zero(t, h.e.Coins())

	rec, err := h.store.Load()
	require.NoError(t, err)
	assert.Equal(t, 1, rec.ProducerClaimed[0])
	assert.Equal(t, 2, rec.RecipeClaimed[0])

	assert.False(t, h.e.ClaimProducerMilestones(0))
	assert.False(t, h.e.ClaimRecipeMilestones(0))
	h.expect(t, 0, 0)
}

func TestBatchSize(t *testing.T) {
	h := newHarness(t)
	assert.True(t, h.e.SetBuyBatchSize(0))
	assert.Equal(t, 1, h.e.BuyBatchSize())
	h.e.SetBuyBatchSize(1000)
	assert.Equal(t, 100, h.e.BuyBatchSize())
	h.e.SetBuyBatchSize(10)
	h.expect(t, 3, 0)

	// 100 × (1.2^10 − 1)/0.2
	assert.InEpsilon(t, 2595.8682112, h.e.ProducerCost(0).Float64(), 1e-9)
	require.True(t, h.e.GrantPremiumCurrency(1))
	h.expect(t, 1, 1)
}

func TestClaimAllNotifiesOnce(t *testing.T) {
	h := newHarness(t)
	h.e.game.State.Producers[0].Level = 20
	h.e.game.State.Recipes[2].Level = 2
	preview := h.e.PreviewClaimAll()
	assert.Equal(t, int64(3*10+2*100), preview.Coins)
	assert.Equal(t, 5, preview.Items)

	require.True(t, h.e.ClaimAllAchievements())
	h.expect(t, 1, 1)
	assert.Equal(t, preview.Coins, h.e.Coins())
	assert.False(t, h.e.ClaimAllAchievements())
	h.expect(t, 0, 0)
}

func TestPrestigeThroughEngine(t *testing.T) {
	h := newHarness(t)
	st := &h.e.game.State
	for i := range st.Storage {
		st.Storage[i].Unlocked = true
	}
	st.UnlockedStorage = len(st.Storage)
	st.Coins = 42
	assert.True(t, h.e.PrestigeEligible())

	var got events.EventType
	h.e.Subscribe(func(ev events.Event) { got = ev.Type })
	require.True(t, h.e.Prestige())
	assert.Equal(t, events.Prestiged, got)
	assert.Equal(t, 500, h.e.State().PermanentBonusPct)
	assert.Equal(t, int64(42), h.e.Coins())
	assert.False(t, h.e.PrestigeEligible())
}

func TestSaveFailureIsNonFatal(t *testing.T) {
	h := newHarness(t)
	h.store.SaveErr = assert.AnError
	require.True(t, h.e.GrantPremiumCurrency(5))
	assert.Equal(t, int64(5), h.e.GoldKeys())
	assert.ErrorIs(t, h.e.Save(), assert.AnError)
}

func TestCorruptSaveRecovers(t *testing.T) {
	store := persist.NewMemoryStore()
	store.SetRaw([]byte(`{"type": "kimchi_save", "coins": "lots"`))
	e := New(config.MustDefault(), store, WithClock(clock.NewFake(start)),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	var types []events.EventType
	e.Subscribe(func(ev events.Event) { types = append(types, ev.Type) })

	err := e.Load()
	require.ErrorIs(t, err, ErrSaveRecovered)
	assert.Equal(t, []events.EventType{events.Recovered}, types)
	assert.Equal(t, 1, store.Saves())

	rec, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, persist.RecordType, rec.Type)
}

func TestForeignSaveRecovers(t *testing.T) {
	store := persist.NewMemoryStore()
	store.SetRaw([]byte(`{"type": "state_save", "version": 1}`))
	e := New(config.MustDefault(), store)
	err := e.Load()
	assert.ErrorIs(t, err, ErrSaveRecovered)
	assert.ErrorIs(t, err, persist.ErrBadType)
}

func TestReloadReproducesState(t *testing.T) {
	h := newHarness(t)
	h.e.game.State.Kimchi = magnitude.FromSuffix(3, 20)
	h.e.GrantPremiumCurrency(500)
	h.e.SetBuyBatchSize(10)
	h.e.BuyProducer(4)
	h.e.UpgradeRecipe(1)
	h.e.ApplyTemporaryBuff()
	h.e.GrantDailyAdCurrency()
	h.e.BuyKeyPack("keys_550")
	h.e.ClaimAllAchievements()
	require.NoError(t, h.e.Save())

	other := New(config.MustDefault(), h.e.store, WithClock(h.clk))
	require.NoError(t, other.Load())
	assert.Equal(t, h.e.State(), other.State())
}

func TestSuspendResume(t *testing.T) {
	h := newHarness(t)
	h.e.game.State.Producers[1].Level = 1 // 110/s
	require.NoError(t, h.e.Suspend())

	h.clk.Advance(10000 * time.Second)
	off, ok := h.e.Resume()
	require.True(t, ok)
	assert.Equal(t, 7200.0, off.Credited)
	assert.InEpsilon(t, 110*7200, h.e.Kimchi().Float64(), 1e-9)
	assert.Equal(t, int64(2), off.KeysGranted)
	assert.Equal(t, int64(2), h.e.GoldKeys())

	// the stamp is consumed; an immediate second resume grants nothing
	_, ok = h.e.Resume()
	assert.False(t, ok)
}

func TestResumeWithoutStamp(t *testing.T) {
	h := newHarness(t)
	_, ok := h.e.Resume()
	assert.False(t, ok)
	h.expect(t, 0, 0)
}

func TestResumeOutsideWindow(t *testing.T) {
	h := newHarness(t)
	h.e.game.State.Producers[0].Level = 1
	require.NoError(t, h.e.Suspend())
	h.clk.Advance(8 * 24 * time.Hour)
	_, ok := h.e.Resume()
	assert.False(t, ok)
	assert.True(t, h.e.Kimchi().IsZero())
}

func TestStepPulseAndAutosave(t *testing.T) {
	h := newHarness(t)
	h.e.game.State.Producers[0].Level = 10 // 20/s

	var pulses int
	h.e.Subscribe(func(ev events.Event) {
		if ev.Type == events.Pulse {
			pulses++
		}
	})
	for range 40 {
		h.e.Step(0.25)
	}
	assert.Equal(t, 40, pulses)
	h.expect(t, 40, 0)
	// float accumulation may leave the last 0.1 s tick pending
	assert.InDelta(t, 200, h.e.Kimchi().Float64(), 2.001)

	for range 81 {
		h.e.Step(0.25)
	}
	h.expect(t, 81, 1)
	assert.Zero(t, h.e.Step(0).Ticks)
}

func TestDailyAdCoinsFollowClock(t *testing.T) {
	h := newHarness(t)
	for range 5 {
		require.True(t, h.e.GrantDailyAdCurrency())
	}
	assert.False(t, h.e.GrantDailyAdCurrency())
	h.clk.Advance(24 * time.Hour)
	assert.True(t, h.e.GrantDailyAdCurrency())
	assert.Equal(t, int64(120), h.e.Coins())
}

func TestBuyKeyPack(t *testing.T) {
	h := newHarness(t)
	require.True(t, h.e.BuyKeyPack("keys_550"))
	assert.Equal(t, int64(1050), h.e.GoldKeys())
	require.True(t, h.e.BuyKeyPack("keys_550"))
	assert.Equal(t, int64(1600), h.e.GoldKeys())
	assert.False(t, h.e.BuyKeyPack("nope"))

	plan := h.e.PlanKeyPurchase(1000)
	assert.GreaterOrEqual(t, plan.TotalKeys, 1000)

	// keys_1200 still has its first-purchase doubling.
	plan = h.e.PlanKeyBudget(999)
	assert.LessOrEqual(t, plan.TotalCents, 999)
	assert.GreaterOrEqual(t, plan.TotalKeys, 2200)
}

func TestDispatch(t *testing.T) {
	h := newHarness(t)
	ok, err := h.e.Dispatch("grant_keys", Args{N: 3})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(3), h.e.GoldKeys())

	_, err = h.e.Dispatch("launch_rocket", Args{})
	assert.ErrorIs(t, err, ErrUnknownCommand)
	assert.Contains(t, Commands(), "claim_all")
}

func TestReconfigureReshapes(t *testing.T) {
	h := newHarness(t)
	h.e.game.State.Producers[9].Level = 3
	h.e.GrantPremiumCurrency(7)

	b := config.MustDefault()
	b.Defs.Producers = b.Defs.Producers[:5]
	require.NoError(t, h.e.Reconfigure(b))
	assert.Len(t, h.e.State().Producers, 5)
	assert.Equal(t, int64(7), h.e.GoldKeys())
	assert.Len(t, h.e.Snapshot().Producers, 5)
}

func TestSnapshotIsACopy(t *testing.T) {
	h := newHarness(t)
	s := h.e.Snapshot()
	s.State.Producers[0].Level = 99
	assert.Zero(t, h.e.State().Producers[0].Level)
	assert.Len(t, s.Storage, 5)
	assert.Equal(t, "0", s.Kimchi)
	assert.Equal(t, "100", s.Producers[0].Cost)
}
