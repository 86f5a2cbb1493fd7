package mocap

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *RunStore {
	t.Helper()
	store, err := NewRunStore(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestRunStore_RunLifecycle(t *testing.T) {
	store := newTestStore(t)

	rec := RunRecord{
		SourceFile:          "capture_001.csv",
		MarkerCount:         2,
		MaxPositionChangeMM: 5.0,
		OriginRateHz:        60,
		TargetRateHz:        100,
		Matching:            "first-candidate",
		RawFrames:           120,
	}
	runID, err := store.CreateRun(rec)
	require.NoError(t, err)
	require.NotEmpty(t, runID)

	got, err := store.GetRun(runID)
	require.NoError(t, err)
	assert.Equal(t, RunStatusStarted, got.Status)
	assert.Equal(t, "capture_001.csv", got.SourceFile)
	assert.Equal(t, 2, got.MarkerCount)
	assert.Equal(t, 120, got.RawFrames)
	assert.Zero(t, got.LabelledFrames)
	assert.Empty(t, got.Error)

	require.NoError(t, store.CompleteRun(runID, 118, 196))
	got, err = store.GetRun(runID)
	require.NoError(t, err)
	assert.Equal(t, RunStatusCompleted, got.Status)
	assert.Equal(t, 118, got.LabelledFrames)
	assert.Equal(t, 196, got.ResampledFrames)
}

func TestRunStore_FailRun(t *testing.T) {
	store := newTestStore(t)

	runID, err := store.CreateRun(RunRecord{SourceFile: "bad.csv", MarkerCount: 2})
	require.NoError(t, err)

	require.NoError(t, store.FailRun(runID, errors.New("marker identity lost at frame 17")))

	got, err := store.GetRun(runID)
	require.NoError(t, err)
	assert.Equal(t, RunStatusFailed, got.Status)
	assert.Contains(t, got.Error, "frame 17")
}

func TestRunStore_TrackRoundTrip(t *testing.T) {
	store := newTestStore(t)

	runID, err := store.CreateRun(RunRecord{SourceFile: "capture.csv", MarkerCount: 2})
	require.NoError(t, err)

	track := NewTrack([]LabelledFrame{
		{{X: 1.5, Y: 2.5, Z: 3.5}, {X: -1, Y: -2, Z: -3}},
		{{X: 1.6, Y: 2.6, Z: 3.6}, {X: -1.1, Y: -2.1, Z: -3.1}},
		{{X: 1.7, Y: 2.7, Z: 3.7}, {X: -1.2, Y: -2.2, Z: -3.2}},
	}, 2)
	require.NoError(t, store.InsertTrack(runID, "labelled", track))

	got, err := store.GetTrack(runID, "labelled")
	require.NoError(t, err)
	require.Equal(t, track.Len(), got.Len())
	require.Equal(t, track.Markers(), got.Markers())
	for i := 0; i < track.Len(); i++ {
		assert.Equal(t, track.Frame(i), got.Frame(i), "frame %d", i)
	}

	// Stages are independent; the other stage is still empty.
	empty, err := store.GetTrack(runID, "resampled")
	require.NoError(t, err)
	assert.Zero(t, empty.Len())
}

func TestRunStore_GetRunUnknown(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetRun("no-such-run")
	assert.Error(t, err)
}
