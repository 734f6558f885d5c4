package stats

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	"github.com/thomas-vilte/promptcache/internal/cli/flags"
	"github.com/thomas-vilte/promptcache/internal/config"
	apperrors "github.com/thomas-vilte/promptcache/internal/errors"
	"github.com/thomas-vilte/promptcache/internal/i18n"
	"github.com/thomas-vilte/promptcache/internal/services/cost"
)

type fakeHistory struct {
	manager *cost.Manager
	err     error
}

func (f *fakeHistory) GetActivityManager() (*cost.Manager, error) {
	return f.manager, f.err
}

func setupTest(t *testing.T, records ...cost.ActivityRecord) (*StatsCommand, *cli.Command, *i18n.Translations) {
	t.Helper()
	color.NoColor = true

	manager, err := cost.NewManager(t.TempDir())
	require.NoError(t, err)
	for _, r := range records {
		require.NoError(t, manager.SaveActivity(r))
	}

	trans, err := i18n.NewTranslations("en", "")
	require.NoError(t, err)
	cfg := &config.Config{
		Model:         string(config.DefaultModel),
		DataPath:      config.DefaultDataPath,
		Language:      config.LangEN,
		MaxTokens:     config.DefaultMaxTokens,
		ChatMaxTokens: config.DefaultChatMaxTokens,
	}

	statsCmd := NewStatsCommand(&fakeHistory{manager: manager})
	statsCmd.now = func() time.Time { return time.Date(2025, 3, 14, 18, 0, 0, 0, time.Local) }
	return statsCmd, statsCmd.CreateCommand(trans, cfg), trans
}

func runCommand(t *testing.T, cmd *cli.Command, trans *i18n.Translations, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := &cli.Command{
		Name:     "promptcache",
		Writer:   &out,
		Flags:    flags.Global(trans),
		Commands: []*cli.Command{cmd},
	}
	err := app.Run(context.Background(), append([]string{"promptcache", "stats"}, args...))
	return out.String(), err
}

func TestStatsCommand_Daily(t *testing.T) {
	// Arrange
	today := time.Date(2025, 3, 14, 10, 30, 0, 0, time.Local)
	_, cmd, trans := setupTest(t,
		cost.ActivityRecord{Timestamp: today, Mode: "demo", Model: "claude-3-5-haiku-20241022", CostUSD: 0.009, SavedUSD: -0.0082},
		cost.ActivityRecord{Timestamp: today.Add(time.Minute), Mode: "demo", Model: "claude-3-5-haiku-20241022", CostUSD: 0.0008, SavedUSD: 0.00648, CacheHit: true},
		cost.ActivityRecord{Timestamp: today.AddDate(0, 0, -1), Mode: "chat", Model: "m", CostUSD: 5},
	)

	// Act
	out, err := runCommand(t, cmd, trans)

	// Assert
	require.NoError(t, err)
	assert.Contains(t, out, "Prompt cache activity today")
	assert.Contains(t, out, "10:30 - demo (claude-3-5-haiku-20241022): $0.009000\n")
	assert.Contains(t, out, "10:31 - demo (claude-3-5-haiku-20241022): $0.000800 [CACHE]\n")
	assert.Contains(t, out, "Total cost: $0.009800 USD")
	assert.Contains(t, out, "Saved by caching: $0.006480 USD")
	assert.Contains(t, out, "1 of 2 requests hit the cache")
	assert.NotContains(t, out, "chat")
}

func TestStatsCommand_Monthly(t *testing.T) {
	_, cmd, trans := setupTest(t,
		cost.ActivityRecord{Timestamp: time.Date(2025, 3, 2, 9, 0, 0, 0, time.Local), CostUSD: 0.5},
		cost.ActivityRecord{Timestamp: time.Date(2025, 3, 1, 9, 0, 0, 0, time.Local), CostUSD: 0.25, SavedUSD: 0.1, CacheHit: true},
		cost.ActivityRecord{Timestamp: time.Date(2025, 3, 1, 11, 0, 0, 0, time.Local), CostUSD: 0.25},
		cost.ActivityRecord{Timestamp: time.Date(2025, 2, 28, 9, 0, 0, 0, time.Local), CostUSD: 9},
	)

	out, err := runCommand(t, cmd, trans, "--monthly")

	require.NoError(t, err)
	assert.Contains(t, out, "Prompt cache activity for March 2025")
	assert.Contains(t, out, "2025-03-01: $0.500000\n2025-03-02: $0.500000\n")
	assert.NotContains(t, out, "2025-02-28")
	assert.Contains(t, out, "Total cost: $1.000000 USD")
	assert.Contains(t, out, "1 of 3 requests hit the cache")
}

func TestStatsCommand_NoActivity(t *testing.T) {
	_, cmd, trans := setupTest(t)

	out, err := runCommand(t, cmd, trans)

	require.NoError(t, err)
	assert.Contains(t, out, "No activity recorded")
}

func TestStatsCommand_HistoryError(t *testing.T) {
	trans, err := i18n.NewTranslations("en", "")
	require.NoError(t, err)
	cfg := &config.Config{
		Model:         string(config.DefaultModel),
		DataPath:      config.DefaultDataPath,
		Language:      config.LangEN,
		MaxTokens:     config.DefaultMaxTokens,
		ChatMaxTokens: config.DefaultChatMaxTokens,
	}
	boom := errors.New("no home")
	cmd := NewStatsCommand(&fakeHistory{err: boom}).CreateCommand(trans, cfg)

	_, err = runCommand(t, cmd, trans)

	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.True(t, errors.Is(err, apperrors.ErrHistoryUnavailable))
}
