package persist

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khwan789/KimchiClicker/internal/config"
	"github.com/khwan789/KimchiClicker/internal/economy"
	"github.com/khwan789/KimchiClicker/internal/magnitude"
)

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func defs() *economy.Definitions {
	b := config.MustDefault()
	return &b.Defs
}

// playedGame reaches a varied state using commands only.
func playedGame(t *testing.T) *economy.Game {
	t.Helper()
	g := economy.NewGame(defs())
	g.State.Kimchi = magnitude.FromSuffix(5, 30)
	g.State.Coins = 5000
	g.State.GoldKeys = 1000
	require.True(t, g.BuyProducer(0, 25))
	require.True(t, g.BuyProducer(3, 100))
	require.True(t, g.UpgradeMaterial(1))
	require.True(t, g.UpgradeRecipe(4))
	require.True(t, g.UnlockStorage(0))
	g.ClaimAll()
	g.ApplyTemporaryBuff()
	g.GrantDailyAdCurrency("20260301")
	g.MarkPurchased("keys_550")
	g.State.ActiveSeconds = 1234.5
	return g
}

func TestRoundTrip(t *testing.T) {
	g := playedGame(t)
	d := g.Defs

	stores := map[string]Store{"memory": NewMemoryStore()}
	for _, compress := range []bool{false, true} {
		fs, err := NewFileStore(t.TempDir(), "", compress)
		require.NoError(t, err)
		stores[fs.File] = fs
	}
	for name, s := range stores {
		require.NoError(t, s.Save(FromState(g.State, now)), name)
		rec, err := s.Load()
		require.NoError(t, err, name)
		assert.True(t, now.Equal(rec.SavedAt), name)

		st, notes, err := Apply(rec, d)
		require.NoError(t, err, name)
		assert.Empty(t, notes, name)
		assert.Equal(t, g.State, st, name)
	}
}

func TestCompressedFileIsFramed(t *testing.T) {
	fs, err := NewFileStore(t.TempDir(), "save.json", true)
	require.NoError(t, err)
	assert.Equal(t, "save.json.lz4", fs.File)

	data, err := Encode(FromState(playedGame(t).State, now), true)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, lz4Magic))
	rec, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, RecordType, rec.Type)
}

func TestLoadMissing(t *testing.T) {
	fs, err := NewFileStore(t.TempDir(), "", false)
	require.NoError(t, err)
	_, err = fs.Load()
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = fs.LoadSuspend()
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = NewMemoryStore().Load()
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSuspendSidecar(t *testing.T) {
	fs, err := NewFileStore(t.TempDir(), "", false)
	require.NoError(t, err)
	stamp := time.Date(2026, 3, 1, 8, 30, 0, 123456789, time.FixedZone("KST", 9*3600))
	require.NoError(t, fs.SaveSuspend(stamp))
	got, err := fs.LoadSuspend()
	require.NoError(t, err)
	assert.True(t, stamp.Equal(got))

	require.NoError(t, fs.Save(FromState(economy.NewState(defs()), now)))
	require.NoError(t, fs.Delete())
	_, err = fs.Load()
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = fs.LoadSuspend()
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDataDirOverride(t *testing.T) {
	t.Setenv("KIMCHI_DATA_DIR", "/tmp/kimchi-test")
	assert.Equal(t, "/tmp/kimchi-test", DataDir())
}

func TestShapeRepair(t *testing.T) {
	d := defs()
	rec := Record{
		Type:            RecordType,
		Version:         CurrentVersion,
		KimchiMantissa:  12,
		KimchiTier:      1,
		ProducerLevels:  []int{3, 2},
		MaterialLevels:  []int{1, 2, 3, 4, 5, 6, 7},
		RecipeCosts:     []int64{400},
		StorageUnlocked: []bool{true, true},
		StorageClaimed:  []bool{true},
	}
	st, notes, err := Apply(rec, d)
	require.NoError(t, err)

	require.Len(t, st.Producers, 10)
	assert.Equal(t, 3, st.Producers[0].Level)
	assert.Equal(t, 0, st.Producers[9].Level)
	require.Len(t, st.Materials, 5)
	assert.Equal(t, 5, st.Materials[4].Level)
	assert.Equal(t, int64(100), st.Materials[0].Cost, "padded with base cost")
	assert.Equal(t, int64(400), st.Recipes[0].Cost)
	assert.Equal(t, int64(100), st.Recipes[5].Cost)
	require.Len(t, st.Storage, 5)
	assert.Equal(t, economy.StorageTrack{Unlocked: true, Claimed: false}, st.Storage[1])
	assert.Equal(t, 2, st.UnlockedStorage)
	assert.True(t, st.Kimchi.Equal(magnitude.FromFloat(12000)))

	assert.Contains(t, notes, "producer_levels: reshaped 2 -> 10")
	assert.Contains(t, notes, "material_levels: reshaped 7 -> 5")
	assert.Contains(t, notes, "unlocked_storage_count: 0 recomputed as 2")
}

func TestMigrateV1StorageClaimed(t *testing.T) {
	st, notes, err := Apply(Record{
		Version:         1,
		StorageUnlocked: []bool{true, false, true, false, false},
	}, defs())
	require.NoError(t, err)
	assert.True(t, st.Storage[0].Claimed)
	assert.False(t, st.Storage[1].Claimed)
	assert.True(t, st.Storage[2].Claimed)
	assert.NotEmpty(t, notes)
}

func TestRepairsOutOfRange(t *testing.T) {
	d := defs()
	rec := FromState(economy.NewState(d), now)
	rec.KimchiMantissa = -5
	rec.Coins = -1
	rec.GoldKeys = -2
	rec.ProducerLevels[0] = -3
	rec.RecipeLevels[1] = 99
	rec.MaterialCosts[2] = 0
	rec.AdBuffPct = 100
	rec.AdBuffRemain = -1
	rec.StorageUnlocked = []bool{true, true, true, true, true}
	rec.UnlockedStorageCount = 1

	st, notes, err := Apply(rec, d)
	require.NoError(t, err)
	assert.True(t, st.Kimchi.IsZero())
	assert.Zero(t, st.Coins)
	assert.Zero(t, st.GoldKeys)
	assert.Zero(t, st.Producers[0].Level)
	assert.Equal(t, 10, st.Recipes[1].Level)
	assert.Equal(t, int64(100), st.Materials[2].Cost)
	assert.Zero(t, st.AdBuffPct)
	assert.Zero(t, st.AdBuffRemain)
	assert.Equal(t, 5, st.UnlockedStorage)
	assert.True(t, st.PrestigeAvailable)
	assert.GreaterOrEqual(t, len(notes), 8)
}

func TestRejectsForeignAndFuture(t *testing.T) {
	_, _, err := Apply(Record{Type: "state_save"}, defs())
	assert.ErrorIs(t, err, ErrBadType)

	_, _, err = Apply(Record{Type: RecordType, Version: CurrentVersion + 1}, defs())
	assert.ErrorIs(t, err, ErrUnsupportedVersion)

	_, err = Decode([]byte("{not json"))
	assert.Error(t, err)
}

func TestMemoryStoreFailures(t *testing.T) {
	m := NewMemoryStore()
	m.SaveErr = assert.AnError
	assert.ErrorIs(t, m.Save(Record{}), assert.AnError)
	assert.Zero(t, m.Saves())

	m.SaveErr = nil
	require.NoError(t, m.Save(Record{Type: RecordType}))
	assert.Equal(t, 1, m.Saves())

	m.SetRaw([]byte("garbage"))
	_, err := m.Load()
	assert.Error(t, err)
}
