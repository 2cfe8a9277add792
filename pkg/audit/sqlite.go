package audit

import (
	"context"
	"database/sql"
	"errors"

	_ "modernc.org/sqlite"

	"github.com/jllopis/gremio/pkg/core"
)

// SQLiteStore persists decision records in SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a SQLite-backed audit store and ensures schema.
func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	if db == nil {
		return nil, errors.New("db is nil")
	}
	if err := ensureDecisionSchema(db); err != nil {
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

// Record stores a single decision record.
func (s *SQLiteStore) Record(ctx context.Context, rec Record) error {
	results, err := encodeResults(rec.Results)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO assessment_decisions (
			id, session_id, role, outcome, justification, results_json, decided_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		rec.ID,
		rec.SessionID,
		rec.Role,
		string(rec.Outcome),
		rec.Justification,
		string(results),
		normalizeTime(rec.DecidedAt),
	)
	return err
}

// List returns decision records matching the filter.
func (s *SQLiteStore) List(ctx context.Context, filter Filter) ([]Record, error) {
	query := `
		SELECT id, session_id, role, outcome, justification, results_json, decided_at
		FROM assessment_decisions
	`
	var args []any
	where := ""
	addFilter := func(clause string, value any) {
		if where == "" {
			where = " WHERE " + clause
		} else {
			where += " AND " + clause
		}
		args = append(args, value)
	}
	if filter.SessionID != "" {
		addFilter("session_id = ?", filter.SessionID)
	}
	if filter.Role != "" {
		addFilter("role = ?", filter.Role)
	}
	if filter.Outcome != "" {
		addFilter("outcome = ?", string(filter.Outcome))
	}
	query += where + " ORDER BY decided_at ASC, rowid ASC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var (
			rec         Record
			outcome     string
			resultsJSON string
			decided     sql.NullTime
		)
		if err := rows.Scan(
			&rec.ID,
			&rec.SessionID,
			&rec.Role,
			&outcome,
			&rec.Justification,
			&resultsJSON,
			&decided,
		); err != nil {
			return nil, err
		}
		rec.Outcome = core.Outcome(outcome)
		if resultsJSON != "" {
			if results, err := decodeResults([]byte(resultsJSON)); err == nil {
				rec.Results = results
			}
		}
		if decided.Valid {
			rec.DecidedAt = decided.Time
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

func ensureDecisionSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS assessment_decisions (
			id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL,
			role TEXT NOT NULL,
			outcome TEXT NOT NULL,
			justification TEXT,
			results_json TEXT,
			decided_at TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_assessment_decisions_session ON assessment_decisions(session_id);
		CREATE INDEX IF NOT EXISTS idx_assessment_decisions_role ON assessment_decisions(role);
		CREATE INDEX IF NOT EXISTS idx_assessment_decisions_outcome ON assessment_decisions(outcome);
	`)
	return err
}
