package storage_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitos/futures-trader/internal/domain"
	"github.com/vitos/futures-trader/internal/infrastructure/storage"
)

func TestStateFile_MissingFileYieldsFreshState(t *testing.T) {
	s := storage.NewStateFile(filepath.Join(t.TempDir(), "state.json"))

	state, err := s.Load()
	require.NoError(t, err)
	assert.Zero(t, state.TotalTrades)
	assert.Zero(t, state.CurrentBalance)
}

func TestStateFile_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	s := storage.NewStateFile(path)

	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	in := &domain.BotState{
		TotalTrades:    7,
		WinningTrades:  4,
		LosingTrades:   3,
		TotalProfit:    12.5,
		StartBalance:   50,
		CurrentBalance: 62.5,
		DailyProfit:    2.5,
		LastTradeTime:  &now,
	}
	require.NoError(t, s.Save(in))

	out, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, in, out)
	assert.InDelta(t, 57.14, out.WinRate(), 0.01)
}

func TestStateFile_CorruptedFileBackedUp(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	s := storage.NewStateFile(path)
	state, err := s.Load()
	require.NoError(t, err)
	assert.Zero(t, state.TotalTrades)

	// The broken file was moved aside, not deleted.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].Name(), "state.json.corrupted.")

	// A fresh save works on the now-clean path.
	require.NoError(t, s.Save(state))
	_, err = os.Stat(path)
	assert.NoError(t, err)
}
