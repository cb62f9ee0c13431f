package escalation

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sahayak-health/beacon/pkg/risk"
)

// PostgresStore persists the escalation log in Postgres via pgx.
// The table name comes from BEACON_ESCALATION_COLLECTION so deployments
// can namespace logs per environment.
type PostgresStore struct {
	pool  *pgxpool.Pool
	table string
}

// NewPostgresStore wraps an existing connection pool.
func NewPostgresStore(pool *pgxpool.Pool, table string) *PostgresStore {
	if table == "" {
		table = "escalations"
	}
	return &PostgresStore{pool: pool, table: table}
}

// EnsureSchema creates the escalation log table if it does not exist.
// The log is append-only; there is deliberately no UPDATE or DELETE path.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id         TEXT PRIMARY KEY,
			user_id    TEXT NOT NULL,
			risk_score INTEGER NOT NULL,
			risk_level TEXT NOT NULL,
			action     TEXT NOT NULL,
			ts         TIMESTAMPTZ NOT NULL,
			consent    BOOLEAN,
			notes      TEXT NOT NULL DEFAULT ''
		)`, s.table))
	if err != nil {
		return fmt.Errorf("escalation schema: %w", err)
	}
	// The cooldown guard's only query shape is (user_id, ts > cutoff).
	_, err = s.pool.Exec(ctx, fmt.Sprintf(
		`CREATE INDEX IF NOT EXISTS %s_user_ts ON %s (user_id, ts)`, s.table, s.table))
	if err != nil {
		return fmt.Errorf("escalation index: %w", err)
	}
	return nil
}

// Append persists one record.
func (s *PostgresStore) Append(ctx context.Context, rec *Record) error {
	_, err := s.pool.Exec(ctx, fmt.Sprintf(`
		INSERT INTO %s (id, user_id, risk_score, risk_level, action, ts, consent, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`, s.table),
		rec.ID, rec.UserID, rec.RiskScore, string(rec.RiskLevel),
		string(rec.Action), rec.Timestamp, rec.Consent, rec.Notes)
	if err != nil {
		return fmt.Errorf("escalation append: %w", err)
	}
	return nil
}

// Since returns records for a user newer than cutoff, oldest first.
func (s *PostgresStore) Since(ctx context.Context, userID string, cutoff time.Time) ([]Record, error) {
	rows, err := s.pool.Query(ctx, fmt.Sprintf(`
		SELECT id, user_id, risk_score, risk_level, action, ts, consent, notes
		FROM %s WHERE user_id = $1 AND ts > $2 ORDER BY ts`, s.table),
		userID, cutoff)
	if err != nil {
		return nil, fmt.Errorf("escalation query: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var rec Record
		var level, action string
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.RiskScore, &level,
			&action, &rec.Timestamp, &rec.Consent, &rec.Notes); err != nil {
			return nil, fmt.Errorf("escalation scan: %w", err)
		}
		rec.RiskLevel = risk.Level(level)
		rec.Action = Action(action)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("escalation rows: %w", err)
	}
	return out, nil
}
