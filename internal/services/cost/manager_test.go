package cost

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thomas-vilte/promptcache/internal/models"
)

func setupTestManager(t *testing.T) *Manager {
	m, err := NewManager(t.TempDir())
	require.NoError(t, err)
	return m
}

func TestNewManager_CreatesDirectory(t *testing.T) {
	// Arrange
	dir := filepath.Join(t.TempDir(), "nested", "promptcache")

	// Act
	m, err := NewManager(dir)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "history.json"), m.Path())
	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestManager_SaveAndLoadActivity(t *testing.T) {
	// Arrange
	m := setupTestManager(t)
	analysis := Analyze(models.UsageRecord{InputTokens: 100, CacheReadTokens: 9000, OutputTokens: 50}, DefaultPricing)
	record := NewActivityRecord("run-1", "demo", "claude-3-5-haiku-20241022", analysis, 1500*time.Millisecond)

	// Act
	require.NoError(t, m.SaveActivity(record))
	history, err := m.GetHistory()

	// Assert
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "run-1", history[0].RunID)
	assert.True(t, history[0].CacheHit)
	assert.Equal(t, int64(1500), history[0].DurationMs)
	assert.InDelta(t, 0.00648, history[0].SavedUSD, 1e-12)
}

func TestManager_EmptyHistory(t *testing.T) {
	m := setupTestManager(t)

	history, err := m.GetHistory()
	require.NoError(t, err)
	assert.Empty(t, history)

	today, err := m.RecordsFor(PeriodDay, time.Now())
	require.NoError(t, err)
	assert.Empty(t, today)
}

func TestManager_CorruptHistory(t *testing.T) {
	m := setupTestManager(t)
	require.NoError(t, os.WriteFile(m.Path(), []byte("{not json"), 0644))

	_, err := m.GetHistory()
	assert.Error(t, err)
}

func TestManager_SaveActivityKeepsUnreadableHistory(t *testing.T) {
	// Arrange
	m := setupTestManager(t)
	truncated := []byte(`[{"run_id":"old-1"},{"run_id":"old-2"}`)
	require.NoError(t, os.WriteFile(m.Path(), truncated, 0644))

	// Act
	err := m.SaveActivity(ActivityRecord{RunID: "new"})

	// Assert
	require.Error(t, err)
	data, readErr := os.ReadFile(m.Path())
	require.NoError(t, readErr)
	assert.Equal(t, truncated, data)
}

func TestManager_RecordsFor(t *testing.T) {
	// Arrange
	m := setupTestManager(t)
	now := time.Date(2025, 3, 14, 12, 0, 0, 0, time.Local)
	records := []ActivityRecord{
		{Timestamp: now, RunID: "today-miss", CostUSD: 0.009, SavedUSD: -0.0082},
		{Timestamp: now.Add(-time.Hour), RunID: "today-hit", CostUSD: 0.0008, SavedUSD: 0.00648, CacheHit: true},
		{Timestamp: now.AddDate(0, 0, -3), RunID: "this-month", CostUSD: 0.5},
		{Timestamp: now.AddDate(-1, 0, 0), RunID: "last-year", CostUSD: 1, SavedUSD: 1, CacheHit: true},
	}
	for _, r := range records {
		require.NoError(t, m.SaveActivity(r))
	}

	// Act
	daily, err := m.RecordsFor(PeriodDay, now)
	require.NoError(t, err)
	monthly, err := m.RecordsFor(PeriodMonth, now)
	require.NoError(t, err)

	// Assert
	require.Len(t, daily, 2)
	assert.Equal(t, "today-miss", daily[0].RunID)
	assert.Equal(t, "today-hit", daily[1].RunID)
	totals := Summarize(daily)
	assert.Equal(t, 2, totals.Requests)
	assert.Equal(t, 1, totals.Hits)
	assert.InDelta(t, 0.0098, totals.CostUSD, 1e-12)
	assert.InDelta(t, 0.00648, totals.SavedUSD, 1e-12)
	assert.Len(t, monthly, 3)
}

func TestManager_RecordsForCorruptHistory(t *testing.T) {
	m := setupTestManager(t)
	require.NoError(t, os.WriteFile(m.Path(), []byte("{not json"), 0644))

	_, err := m.RecordsFor(PeriodMonth, time.Now())

	assert.Error(t, err)
}

func TestSummarize(t *testing.T) {
	totals := Summarize([]ActivityRecord{
		{CostUSD: 0.5, SavedUSD: 0.25, CacheHit: true},
		{CostUSD: 0.5},
	})

	assert.Equal(t, Totals{Requests: 2, Hits: 1, CostUSD: 1, SavedUSD: 0.25}, totals)
}
