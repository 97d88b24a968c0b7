package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Iampro1712/apiconsole/internal/types"
)

const timestampLayout = "2006-01-02 15:04:05"

type Manager struct {
	db *sql.DB
}

// NewManager uses an open console database (see migrations.Open)
func NewManager(db *sql.DB) *Manager {
	return &Manager{db: db}
}

// Record is one exchange to store
type Record struct {
	ExchangeID string
	Endpoint   string
	Request    *types.RequestDescriptor
	// Method and URL are used when Request is nil (validation failures)
	Method  string
	URL     string
	Outcome types.Outcome
}

func (m *Manager) Save(ctx context.Context, rec Record) error {
	method, url := rec.Method, rec.URL
	headers := map[string]string{}
	var body sql.NullString
	if rec.Request != nil {
		method, url = rec.Request.Method, rec.Request.URL
		headers = RedactHeaders(rec.Request.Headers)
		if rec.Request.Body != nil {
			body = sql.NullString{String: RedactBody(*rec.Request.Body), Valid: true}
		}
	}

	headersJSON, err := json.Marshal(headers)
	if err != nil {
		return fmt.Errorf("failed to marshal headers: %w", err)
	}

	query := `
		INSERT INTO history (
			exchange_id, timestamp, endpoint, method, url, headers, body,
			outcome, response_status, response_body,
			duration_ms, request_size, response_size, error
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	// Format timestamp for SQLite in local time
	timestampStr := time.Now().Local().Format(timestampLayout)

	o := rec.Outcome
	_, err = m.db.ExecContext(ctx, query,
		rec.ExchangeID,
		timestampStr,
		rec.Endpoint,
		method,
		url,
		string(headersJSON),
		body,
		o.Kind.String(),
		o.Status,
		RedactBody(o.RawBody),
		o.Duration.Milliseconds(),
		o.RequestSize,
		o.ResponseSize,
		o.Message,
	)
	if err != nil {
		return fmt.Errorf("failed to save history entry: %w", err)
	}

	return nil
}

// Load returns the most recent entries first; limit <= 0 means all
func (m *Manager) Load(ctx context.Context, limit int) ([]types.HistoryEntry, error) {
	query := `
		SELECT id, exchange_id, timestamp, endpoint, method, url, headers, body,
		       outcome, response_status, response_body,
		       duration_ms, request_size, response_size, error
		FROM history
		ORDER BY timestamp DESC, id DESC
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := m.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	defer rows.Close()

	return m.scanEntries(rows)
}

func (m *Manager) scanEntries(rows *sql.Rows) ([]types.HistoryEntry, error) {
	var entries []types.HistoryEntry

	for rows.Next() {
		var entry types.HistoryEntry
		var timestamp string
		var endpoint sql.NullString
		var headersJSON string
		var body sql.NullString
		var requestSize sql.NullInt64
		var responseSize sql.NullInt64
		var errorMsg sql.NullString

		err := rows.Scan(
			&entry.ID,
			&entry.ExchangeID,
			&timestamp,
			&endpoint,
			&entry.Method,
			&entry.URL,
			&headersJSON,
			&body,
			&entry.Outcome,
			&entry.ResponseStatus,
			&entry.ResponseBody,
			&entry.Duration,
			&requestSize,
			&responseSize,
			&errorMsg,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}

		if err := json.Unmarshal([]byte(headersJSON), &entry.Headers); err != nil {
			entry.Headers = make(map[string]string)
		}

		// Parse timestamp as local time
		parsedTime, err := time.ParseInLocation(timestampLayout, timestamp, time.Local)
		if err != nil {
			// Try RFC3339 format as fallback
			parsedTime, err = time.Parse(time.RFC3339, timestamp)
			if err != nil {
				parsedTime = time.Now()
			}
		}

		entry.Timestamp = parsedTime.Format(time.RFC3339)
		entry.Endpoint = endpoint.String
		entry.Body = body.String
		entry.RequestSize = int(requestSize.Int64)
		entry.ResponseSize = int(responseSize.Int64)
		entry.Error = errorMsg.String

		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

func (m *Manager) Clear(ctx context.Context) error {
	_, err := m.db.ExecContext(ctx, "DELETE FROM history")
	if err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}

func (m *Manager) Delete(ctx context.Context, id int64) error {
	_, err := m.db.ExecContext(ctx, "DELETE FROM history WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete history entry: %w", err)
	}
	return nil
}

func (m *Manager) GetCount(ctx context.Context) (int, error) {
	var count int
	err := m.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM history").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get history count: %w", err)
	}
	return count, nil
}
