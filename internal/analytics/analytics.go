package analytics

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// DefaultCacheTTL is how long computed stats are reused
const DefaultCacheTTL = 5 * time.Second

// Stats summarizes the recorded exchanges of one endpoint and method
type Stats struct {
	Endpoint      string
	Method        string
	TotalCalls    int
	SuccessCount  int
	ErrorCount    int
	NetworkErrors int // transport failures (status 0)
	Validation    int // rejected before sending
	AvgDurationMs float64
	MinDurationMs int64
	MaxDurationMs int64
	TotalReqSize  int64
	TotalRespSize int64
	StatusCodes   map[int]int
	LastCalled    time.Time
}

// SuccessRate is the share of 2xx responses, 0 when nothing was sent
func (s Stats) SuccessRate() float64 {
	if s.TotalCalls == 0 {
		return 0
	}
	return float64(s.SuccessCount) / float64(s.TotalCalls)
}

// Manager computes stats over the history table of the console database
type Manager struct {
	db    *sql.DB
	cache *statsCache
}

// NewManager uses an open console database (see migrations.Open)
func NewManager(db *sql.DB) *Manager {
	return &Manager{db: db, cache: newStatsCache(DefaultCacheTTL)}
}

// PerEndpoint returns one row per endpoint and method, most recently called first
func (m *Manager) PerEndpoint(ctx context.Context) ([]Stats, error) {
	if stats, ok := m.cache.get(); ok {
		return stats, nil
	}

	query := `
		WITH status_codes_agg AS (
			SELECT
				endpoint,
				method,
				json_group_object(CAST(response_status AS TEXT), count) AS status_codes_json
			FROM (
				SELECT COALESCE(endpoint, '') AS endpoint, method, response_status, COUNT(*) AS count
				FROM history
				WHERE outcome = 'ok'
				GROUP BY 1, method, response_status
			)
			GROUP BY endpoint, method
		)
		SELECT
			COALESCE(h.endpoint, '') AS ep,
			h.method,
			COUNT(*) AS total_calls,
			SUM(CASE WHEN h.outcome = 'ok' AND h.response_status >= 200 AND h.response_status < 300 THEN 1 ELSE 0 END),
			SUM(CASE WHEN h.outcome = 'ok' AND h.response_status >= 400 THEN 1 ELSE 0 END),
			SUM(CASE WHEN h.outcome = 'transport_error' THEN 1 ELSE 0 END),
			SUM(CASE WHEN h.outcome = 'validation_error' THEN 1 ELSE 0 END),
			AVG(h.duration_ms),
			MIN(h.duration_ms),
			MAX(h.duration_ms),
			COALESCE(SUM(h.request_size), 0),
			COALESCE(SUM(h.response_size), 0),
			MAX(h.timestamp),
			COALESCE(s.status_codes_json, '{}')
		FROM history h
		LEFT JOIN status_codes_agg s ON COALESCE(h.endpoint, '') = s.endpoint AND h.method = s.method
		GROUP BY ep, h.method
		ORDER BY MAX(h.timestamp) DESC, ep
	`

	rows, err := m.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get stats per endpoint: %w", err)
	}
	defer rows.Close()

	var statsList []Stats
	for rows.Next() {
		var s Stats
		var lastCalled sql.NullString
		var statusCodesJSON string

		err := rows.Scan(
			&s.Endpoint,
			&s.Method,
			&s.TotalCalls,
			&s.SuccessCount,
			&s.ErrorCount,
			&s.NetworkErrors,
			&s.Validation,
			&s.AvgDurationMs,
			&s.MinDurationMs,
			&s.MaxDurationMs,
			&s.TotalReqSize,
			&s.TotalRespSize,
			&lastCalled,
			&statusCodesJSON,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan stats: %w", err)
		}

		if lastCalled.Valid {
			// Stored in local time without zone
			if t, err := time.ParseInLocation("2006-01-02 15:04:05", lastCalled.String, time.Local); err == nil {
				s.LastCalled = t
			}
		}

		s.StatusCodes, err = parseStatusCodes(statusCodesJSON)
		if err != nil {
			return nil, err
		}

		statsList = append(statsList, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	m.cache.set(statsList)
	return statsList, nil
}

// Invalidate drops cached stats, e.g. after history is cleared
func (m *Manager) Invalidate() {
	m.cache.invalidate()
}

func parseStatusCodes(raw string) (map[int]int, error) {
	codes := make(map[int]int)
	if raw == "" || raw == "{}" {
		return codes, nil
	}

	var byText map[string]int
	if err := json.Unmarshal([]byte(raw), &byText); err != nil {
		return nil, fmt.Errorf("failed to unmarshal status codes: %w", err)
	}
	for text, count := range byText {
		if code, err := strconv.Atoi(text); err == nil {
			codes[code] = count
		}
	}
	return codes, nil
}
