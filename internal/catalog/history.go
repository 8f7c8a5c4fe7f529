package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// maxHistoryEntries is the maximum number of previous build summaries kept.
const maxHistoryEntries = 10

// BuildMetrics summarizes one catalog build.
type BuildMetrics struct {
	StartedAt   time.Time
	CompletedAt time.Time
	Duration    time.Duration
	AssetRoot   string
	Items       int
	Written     int
	Staged      int
	Skips       map[string]int
}

// BuildSummary is a condensed record of a previous build.
type BuildSummary struct {
	StartedAt time.Time
	Duration  time.Duration
	Items     int
	Written   int
	Staged    int
}

// historyFile is the TOML-serializable representation of the metrics
// file: the most recent build plus a bounded history of previous ones.
type historyFile struct {
	Current buildRecord    `toml:"current"`
	History []buildSummary `toml:"history"`
}

// buildRecord is the TOML-serializable form of one build's metrics.
// Durations are stored as nanosecond int64 values since the TOML library
// does not natively support Go durations.
type buildRecord struct {
	StartedAt   time.Time      `toml:"started_at"`
	CompletedAt time.Time      `toml:"completed_at"`
	DurationNs  int64          `toml:"duration_ns"`
	AssetRoot   string         `toml:"asset_root"`
	Items       int            `toml:"items"`
	Written     int            `toml:"written"`
	Staged      int            `toml:"staged"`
	Skips       map[string]int `toml:"skips"`
}

type buildSummary struct {
	StartedAt  time.Time `toml:"started_at"`
	DurationNs int64     `toml:"duration_ns"`
	Items      int       `toml:"items"`
	Written    int       `toml:"written"`
	Staged     int       `toml:"staged"`
}

// SaveHistory writes m as the current build. If a previous metrics file
// exists, its current section rotates into the history array, capped at
// the maxHistoryEntries most recent entries. A corrupt existing file is
// replaced rather than failing the build.
func SaveHistory(path string, m BuildMetrics) error {
	existing, err := loadHistoryFile(path)
	if err != nil {
		existing = nil
	}

	var history []buildSummary
	if existing != nil {
		history = append(existing.History, summaryOf(existing.Current))
	}
	if len(history) > maxHistoryEntries {
		history = history[len(history)-maxHistoryEntries:]
	}

	file := historyFile{
		Current: recordOf(m),
		History: history,
	}

	data, err := toml.Marshal(file)
	if err != nil {
		return fmt.Errorf("marshaling build metrics: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing temp metrics file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("renaming metrics file: %w", err)
	}
	return nil
}

// LoadHistory reads the current build metrics and the rotated summaries.
// If no file exists, all return values are nil (no error).
func LoadHistory(path string) (*BuildMetrics, []BuildSummary, error) {
	file, err := loadHistoryFile(path)
	if err != nil {
		return nil, nil, err
	}
	if file == nil {
		return nil, nil, nil
	}

	current := metricsOf(file.Current)

	history := make([]BuildSummary, len(file.History))
	for i, h := range file.History {
		history[i] = BuildSummary{
			StartedAt: h.StartedAt,
			Duration:  time.Duration(h.DurationNs),
			Items:     h.Items,
			Written:   h.Written,
			Staged:    h.Staged,
		}
	}
	return &current, history, nil
}

// loadHistoryFile reads and parses the raw metrics file. Returns nil, nil
// if the file does not exist.
func loadHistoryFile(path string) (*historyFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading metrics file: %w", err)
	}

	var file historyFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing metrics file: %w", err)
	}
	return &file, nil
}

func recordOf(m BuildMetrics) buildRecord {
	return buildRecord{
		StartedAt:   m.StartedAt,
		CompletedAt: m.CompletedAt,
		DurationNs:  int64(m.Duration),
		AssetRoot:   m.AssetRoot,
		Items:       m.Items,
		Written:     m.Written,
		Staged:      m.Staged,
		Skips:       m.Skips,
	}
}

func metricsOf(r buildRecord) BuildMetrics {
	return BuildMetrics{
		StartedAt:   r.StartedAt,
		CompletedAt: r.CompletedAt,
		Duration:    time.Duration(r.DurationNs),
		AssetRoot:   r.AssetRoot,
		Items:       r.Items,
		Written:     r.Written,
		Staged:      r.Staged,
		Skips:       r.Skips,
	}
}

func summaryOf(r buildRecord) buildSummary {
	return buildSummary{
		StartedAt:  r.StartedAt,
		DurationNs: r.DurationNs,
		Items:      r.Items,
		Written:    r.Written,
		Staged:     r.Staged,
	}
}
