package domtimeline

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type (
	// PgExecer is the part of *pgx.Conn (and pgxpool.Pool) the Postgres
	// journal needs
	PgExecer interface {
		Exec(ctx context.Context, sql string, args ...any) (
			pgconn.CommandTag, error,
		)
	}

	// PostgresJournal inserts one row per record
	PostgresJournal struct {
		db        PgExecer
		createSQL string
		insertSQL string
		close     func() error
	}
)

// NewPostgresJournal writes to table through db. The caller keeps
// ownership of db
func NewPostgresJournal(db PgExecer, table string) (*PostgresJournal, error) {
	if table == "" {
		return nil, ErrInvalidTableName
	}
	name := pgx.Identifier{table}.Sanitize()
	return &PostgresJournal{
		db: db,
		createSQL: fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	id          BIGSERIAL PRIMARY KEY,
	decision    TEXT NOT NULL,
	label       TEXT NOT NULL,
	stack       TEXT NOT NULL DEFAULT '',
	recorded_at TIMESTAMPTZ NOT NULL,
	payload     JSONB NOT NULL
)`, name),
		insertSQL: fmt.Sprintf(
			`INSERT INTO %s (decision, label, stack, recorded_at, payload) `+
				`VALUES ($1, $2, $3, $4, $5)`, name,
		),
		close: func() error { return nil },
	}, nil
}

// OpenPostgresJournal connects to dsn and makes sure table exists. Close
// releases the connection
func OpenPostgresJournal(
	ctx context.Context, dsn, table string,
) (*PostgresJournal, error) {
	conn, err := pgx.Connect(ctx, dsn)
	if err != nil {
		return nil, err
	}
	j, err := NewPostgresJournal(conn, table)
	if err != nil {
		_ = conn.Close(ctx)
		return nil, err
	}
	if err := j.CreateTable(ctx); err != nil {
		_ = conn.Close(ctx)
		return nil, err
	}
	j.close = func() error {
		return conn.Close(context.Background())
	}
	return j, nil
}

// CreateTable creates the journal table if it does not exist yet
func (j *PostgresJournal) CreateTable(ctx context.Context) error {
	_, err := j.db.Exec(ctx, j.createSQL)
	return err
}

func (j *PostgresJournal) Append(ctx context.Context, rec *JournalRecord) error {
	data, err := marshalJournalRecord(rec)
	if err != nil {
		return err
	}
	_, err = j.db.Exec(ctx, j.insertSQL,
		string(rec.Decision), rec.Label, rec.Stack, rec.Timestamp, string(data),
	)
	return err
}

func (j *PostgresJournal) Close() error {
	return j.close()
}
