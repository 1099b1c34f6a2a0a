package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuas-radar/tracker/internal/tracker/imm"
	"github.com/cuas-radar/tracker/internal/tracker/matkernel"
	"github.com/cuas-radar/tracker/internal/tracker/motion"
	"github.com/cuas-radar/tracker/internal/tracker/track"
)

func newTestTrack(id uint32) *track.Track {
	models := [imm.NumModels]motion.Model{
		motion.CV{ProcessNoiseStd: 1},
		motion.CA{ProcessNoiseStd: 1, AccelDecayRate: 0.9},
		motion.CA{ProcessNoiseStd: 1, AccelDecayRate: 0.9},
		motion.CTR{ProcessNoiseStd: 1, TurnRateNoiseStd: 0.1},
		motion.CTR{ProcessNoiseStd: 1, TurnRateNoiseStd: 0.1},
	}
	transition := [imm.NumModels][imm.NumModels]float64{
		{0.9, 0.025, 0.025, 0.025, 0.025},
		{0.025, 0.9, 0.025, 0.025, 0.025},
		{0.025, 0.025, 0.9, 0.025, 0.025},
		{0.025, 0.025, 0.025, 0.9, 0.025},
		{0.025, 0.025, 0.025, 0.025, 0.9},
	}
	modeProbs := [imm.NumModels]float64{0.8, 0.05, 0.05, 0.05, 0.05}

	var x0 matkernel.State
	x0[0], x0[3], x0[6] = 1000, 2000, 100

	var p0 matkernel.StateMatrix
	for i := 0; i < matkernel.StateDim; i++ {
		p0[i][i] = 100
	}

	f := imm.NewFilter(models, transition, modeProbs, x0, p0)
	tr := track.New(id, f, 0)
	tr.Filter.Predict(0.1)
	return tr
}

func openTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tracks.db")
	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenAppliesMigrations(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)

	var name string
	err := s.db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name='track_snapshots'`).Scan(&name)
	require.NoError(t, err)
	assert.Equal(t, "track_snapshots", name)
}

func TestInsertSnapshotThenHistoryRoundTrips(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)

	tr := newTestTrack(7)
	require.NoError(t, s.InsertSnapshot(tr, 1000))
	require.NoError(t, s.InsertSnapshot(tr, 2000))

	hist, err := s.History(7)
	require.NoError(t, err)
	require.Len(t, hist, 2)
	assert.Equal(t, uint32(7), hist[0].TrackID)
	assert.Equal(t, uint64(1000), hist[0].TimestampUs)
	assert.Equal(t, uint64(2000), hist[1].TimestampUs)
}

func TestInsertSnapshotsBatchesInOneTransaction(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)

	tracks := []*track.Track{newTestTrack(1), newTestTrack(2), newTestTrack(3)}
	require.NoError(t, s.InsertSnapshots(tracks, 5000))

	active, err := s.ActiveTrackIDs()
	require.NoError(t, err)
	assert.Equal(t, []uint32{1, 2, 3}, active)
}

func TestMarkDeletedRemovesTrackFromActiveSet(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)

	tr := newTestTrack(42)
	require.NoError(t, s.InsertSnapshot(tr, 100))
	require.NoError(t, s.MarkDeleted(42, 200))

	active, err := s.ActiveTrackIDs()
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestInRangeFiltersByTimestamp(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)

	tr := newTestTrack(9)
	require.NoError(t, s.InsertSnapshot(tr, 100))
	require.NoError(t, s.InsertSnapshot(tr, 9000))
	require.NoError(t, s.InsertSnapshot(tr, 20000))

	rows, err := s.InRange(0, 10000)
	require.NoError(t, err)
	require.Len(t, rows, 2)
}

func TestInsertTransitionThenTransitionsRoundTrips(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)

	require.NoError(t, s.InsertTransition(Transition{
		TrackID: 3, TimestampUs: 100, FromStatus: 0, ToStatus: 1,
	}))
	require.NoError(t, s.InsertTransition(Transition{
		TrackID: 3, TimestampUs: 500, FromStatus: 1, ToStatus: 2,
	}))

	got, err := s.Transitions(3)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, uint32(0), got[0].FromStatus)
	assert.Equal(t, uint32(1), got[0].ToStatus)
	assert.Equal(t, uint32(2), got[1].ToStatus)
}
