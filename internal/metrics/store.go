package metrics

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	metricsdb "chefmate/internal/metrics/metricsdb"
)

// ActionMetric records one user action against the shopping list or recipes.
// Model calls also carry their token usage.
type ActionMetric struct {
	Action           string
	Items            int
	Success          bool
	Latency          time.Duration
	Model            string
	PromptTokens     int
	CompletionTokens int
	Timestamp        time.Time
}

// Store handles persistence of metrics to SQLite.
type Store struct {
	queries *metricsdb.Queries
	db      *sql.DB
	now     func() time.Time
}

// NewStore initializes the Store with an existing database connection.
func NewStore(db *sql.DB) *Store {
	return &Store{
		queries: metricsdb.New(db),
		db:      db,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Record saves a metric to the database.
func (s *Store) Record(ctx context.Context, m ActionMetric) error {
	ts := m.Timestamp
	if ts.IsZero() {
		ts = s.now()
	}

	err := s.queries.InsertActionMetric(ctx, metricsdb.InsertActionMetricParams{
		Action:           m.Action,
		Items:            int64(m.Items),
		Success:          m.Success,
		LatencyMs:        m.Latency.Milliseconds(),
		Model:            m.Model,
		PromptTokens:     int64(m.PromptTokens),
		CompletionTokens: int64(m.CompletionTokens),
		Timestamp:        ts.UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to record metric %s: %w", m.Action, err)
	}
	return nil
}

// DB returns the underlying connection for other tables in the metrics
// database.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DailyUsage represents action and token totals for a single day.
type DailyUsage struct {
	Date             string
	Actions          int
	Failures         int
	Items            int
	AvgLatencyMS     float64
	PromptTokens     int
	CompletionTokens int
}

// GetDailyUsage retrieves usage for the last N days, most recent day first.
func (s *Store) GetDailyUsage(ctx context.Context, days int) ([]DailyUsage, error) {
	since := s.now().AddDate(0, 0, -days)
	rows, err := s.queries.GetDailyUsage(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("failed to get daily usage: %w", err)
	}

	results := make([]DailyUsage, 0, len(rows))
	for _, r := range rows {
		u := DailyUsage{
			Date:    r.Day,
			Actions: int(r.Count),
		}
		if u.Date == "" {
			u.Date = "Unknown"
		}
		if r.Failures.Valid {
			u.Failures = int(r.Failures.Float64)
		}
		if r.Items.Valid {
			u.Items = int(r.Items.Float64)
		}
		if r.AvgLatencyMs.Valid {
			u.AvgLatencyMS = r.AvgLatencyMs.Float64
		}
		if r.PromptTokens.Valid {
			u.PromptTokens = int(r.PromptTokens.Float64)
		}
		if r.CompletionTokens.Valid {
			u.CompletionTokens = int(r.CompletionTokens.Float64)
		}
		results = append(results, u)
	}
	return results, nil
}

// Cleanup removes records older than the specified number of days and
// returns how many were removed.
func (s *Store) Cleanup(ctx context.Context, olderThanDays int) (int64, error) {
	threshold := s.now().AddDate(0, 0, -olderThanDays)
	n, err := s.queries.CleanupActionMetrics(ctx, threshold)
	if err != nil {
		return 0, fmt.Errorf("failed to clean up metrics: %w", err)
	}
	return n, nil
}
