package metrics

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"
)

// PostgresSink stores every sample as one row.
type PostgresSink struct {
	// db is the connection pool.
	db *sql.DB
	// insert is the prepared statement text bound to the target table.
	insert string
	// timeout bounds every write.
	timeout time.Duration
}

// OpenPostgres connects to dsn, checks the connection and makes sure the table exists.
func OpenPostgres(ctx context.Context, dsn, table string, timeout time.Duration) (*PostgresSink, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	sink := NewPostgresSink(db, table, timeout)

	if err := sink.migrate(ctx, table); err != nil {
		_ = db.Close()

		return nil, err
	}

	return sink, nil
}

// NewPostgresSink wraps an existing connection pool.
func NewPostgresSink(db *sql.DB, table string, timeout time.Duration) *PostgresSink {
	return &PostgresSink{
		db: db,
		insert: "INSERT INTO " + pq.QuoteIdentifier(table) +
			" (measurement, room_number, tags, fields, recorded_at) VALUES ($1, $2, $3, $4, $5)",
		timeout: timeout,
	}
}

// migrate creates the samples table when it is missing.
func (p *PostgresSink) migrate(ctx context.Context, table string) error {
	ctx, cancel := p.callContext(ctx)
	defer cancel()

	if err := p.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping postgres: %w", err)
	}

	ddl := "CREATE TABLE IF NOT EXISTS " + pq.QuoteIdentifier(table) + ` (
	id BIGSERIAL PRIMARY KEY,
	measurement TEXT NOT NULL,
	room_number TEXT NOT NULL,
	tags JSONB NOT NULL,
	fields JSONB NOT NULL,
	recorded_at TIMESTAMPTZ NOT NULL
)`

	if _, err := p.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create table %s: %w", table, err)
	}

	return nil
}

// Write inserts the sample.
func (p *PostgresSink) Write(ctx context.Context, s Sample) error {
	tags, err := json.Marshal(s.Tags)
	if err != nil {
		return fmt.Errorf("encode tags: %w", err)
	}

	fields, err := json.Marshal(s.Fields)
	if err != nil {
		return fmt.Errorf("encode fields: %w", err)
	}

	ctx, cancel := p.callContext(ctx)
	defer cancel()

	_, err = p.db.ExecContext(ctx, p.insert, s.Measurement, s.RoomNumber(), tags, fields, s.Time.UTC())
	if err != nil {
		return fmt.Errorf("insert %s sample: %w", s.Measurement, err)
	}

	return nil
}

// Close closes the connection pool.
func (p *PostgresSink) Close() error {
	return p.db.Close()
}

func (p *PostgresSink) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.timeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, p.timeout)
}
