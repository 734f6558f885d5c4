package cost

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/thomas-vilte/promptcache/internal/models"
)

type ActivityRecord struct {
	Timestamp           time.Time `json:"timestamp"`
	RunID               string    `json:"run_id"`
	Mode                string    `json:"mode"`
	Model               string    `json:"model"`
	TokensInput         int       `json:"tokens_input"`
	TokensCacheRead     int       `json:"tokens_cache_read"`
	TokensCacheCreation int       `json:"tokens_cache_creation"`
	TokensOutput        int       `json:"tokens_output"`
	CostUSD             float64   `json:"cost_usd"`
	CostWithoutCacheUSD float64   `json:"cost_without_cache_usd"`
	SavedUSD            float64   `json:"saved_usd"`
	DurationMs          int64     `json:"duration_ms"`
	CacheHit            bool      `json:"cache_hit"`
}

// NewActivityRecord builds a history entry from an analysis.
func NewActivityRecord(runID, mode, model string, a Analysis, duration time.Duration) ActivityRecord {
	return ActivityRecord{
		Timestamp:           time.Now(),
		RunID:               runID,
		Mode:                mode,
		Model:               model,
		TokensInput:         a.Usage.InputTokens,
		TokensCacheRead:     a.Usage.CacheReadTokens,
		TokensCacheCreation: a.Usage.CacheCreationTokens,
		TokensOutput:        a.Usage.OutputTokens,
		CostUSD:             a.CostWithCache,
		CostWithoutCacheUSD: a.CostWithoutCache,
		SavedUSD:            a.Saved,
		DurationMs:          duration.Milliseconds(),
		CacheHit:            a.Status == models.CacheHit,
	}
}

// Totals aggregates a set of activity records.
type Totals struct {
	Requests int
	Hits     int
	CostUSD  float64
	SavedUSD float64
}

func (t *Totals) add(r ActivityRecord) {
	t.Requests++
	if r.CacheHit {
		t.Hits++
	}
	t.CostUSD += r.CostUSD
	if r.SavedUSD > 0 {
		t.SavedUSD += r.SavedUSD
	}
}

// Manager persists activity records as a JSON array in history.json.
type Manager struct {
	mu          sync.Mutex
	historyPath string
}

// NewManager stores the history under dir, creating it if needed.
func NewManager(dir string) (*Manager, error) {
	if dir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("error getting home directory: %w", err)
		}
		dir = filepath.Join(homeDir, ".promptcache")
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("error creating %s directory: %w", dir, err)
	}

	return &Manager{
		historyPath: filepath.Join(dir, "history.json"),
	}, nil
}

// Path returns the history file location.
func (m *Manager) Path() string {
	return m.historyPath
}

// SaveActivity appends an activity record. An existing history that cannot be
// read is left untouched and the record is not saved.
func (m *Manager) SaveActivity(record ActivityRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	slog.Debug("saving activity record",
		"run_id", record.RunID,
		"mode", record.Mode,
		"model", record.Model,
		"tokens_input", record.TokensInput,
		"tokens_cache_read", record.TokensCacheRead,
		"cost_usd", record.CostUSD,
		"cache_hit", record.CacheHit)

	records, err := m.loadHistory()
	if err != nil {
		slog.Error("failed to load activity history",
			"path", m.historyPath,
			"error", err)
		return err
	}

	records = append(records, record)

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		slog.Error("failed to serialize activity history",
			"error", err)
		return fmt.Errorf("error serializing history: %w", err)
	}

	if err := os.WriteFile(m.historyPath, data, 0644); err != nil {
		slog.Error("failed to write activity history",
			"path", m.historyPath,
			"error", err)
		return fmt.Errorf("error saving history: %w", err)
	}

	slog.Debug("activity record saved successfully",
		"total", len(records))

	return nil
}

// Period layouts select the records of one day or one month.
const (
	PeriodDay   = "2006-01-02"
	PeriodMonth = "2006-01"
)

// RecordsFor returns the records whose timestamp falls in the same period as
// now, formatted with the given period layout.
func (m *Manager) RecordsFor(period string, now time.Time) ([]ActivityRecord, error) {
	records, err := m.GetHistory()
	if err != nil {
		return nil, err
	}

	current := now.Format(period)
	var out []ActivityRecord
	for _, record := range records {
		if record.Timestamp.Format(period) == current {
			out = append(out, record)
		}
	}
	return out, nil
}

// GetHistory gets all records
func (m *Manager) GetHistory() ([]ActivityRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loadHistory()
}

// Summarize aggregates arbitrary records.
func Summarize(records []ActivityRecord) Totals {
	var totals Totals
	for _, r := range records {
		totals.add(r)
	}
	return totals
}

func (m *Manager) loadHistory() ([]ActivityRecord, error) {
	data, err := os.ReadFile(m.historyPath)
	if err != nil {
		if os.IsNotExist(err) {
			return []ActivityRecord{}, nil
		}
		return nil, fmt.Errorf("error reading history: %w", err)
	}

	var records []ActivityRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("error deserializing history: %w", err)
	}

	return records, nil
}
