package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/samirwankhede/pagila-reports/internal/metrics"
)

// Connector opens a fresh database connection. Implementations must not pool:
// every Connect is paired with exactly one Conn.Close.
type Connector interface {
	Connect(ctx context.Context) (Conn, error)
}

// Conn is a single open connection.
type Conn interface {
	Query(ctx context.Context, sql string) (Rows, error)
	Close(ctx context.Context) error
}

// Rows iterates a result set. Columns is valid before the first Next.
type Rows interface {
	Columns() []string
	Next() bool
	Values() ([]any, error)
	Err() error
	Close()
}

// DB is the data access layer. It holds no connection between calls.
type DB struct {
	connector Connector
	log       *zap.Logger
}

func NewDB(connector Connector, log *zap.Logger) *DB {
	return &DB{connector: connector, log: log}
}

// QueryTable runs a literal, parameter-free statement and materialises the
// whole result set. The connection is released on every return path.
func (d *DB) QueryTable(ctx context.Context, sql string) (t *Table, err error) {
	start := time.Now()
	defer func() {
		metrics.ReportQueryDuration.Observe(time.Since(start).Seconds())
		metrics.ReportQueriesTotal.WithLabelValues(outcome(err)).Inc()
	}()

	conn, err := d.connector.Connect(ctx)
	if err != nil {
		return nil, &ConnectionError{Err: err}
	}
	metrics.DBOpenConnections.Inc()
	defer func() {
		if cerr := conn.Close(context.WithoutCancel(ctx)); cerr != nil {
			d.log.Warn("close connection", zap.Error(cerr))
		}
		metrics.DBOpenConnections.Dec()
	}()

	rows, err := conn.Query(ctx, sql)
	if err != nil {
		return nil, &QueryError{SQL: sql, Err: err}
	}
	defer rows.Close()

	t = NewTable(rows.Columns())
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, &QueryError{SQL: sql, Err: fmt.Errorf("read row %d: %w", t.Len(), err)}
		}
		t.Rows = append(t.Rows, values)
	}
	if err := rows.Err(); err != nil {
		return nil, &QueryError{SQL: sql, Err: err}
	}

	d.log.Debug("query done",
		zap.Int("rows", t.Len()),
		zap.Strings("columns", t.Columns),
		zap.Duration("took", time.Since(start)),
	)
	return t, nil
}

// Ping checks that a connection can be opened and a trivial statement runs.
func (d *DB) Ping(ctx context.Context) error {
	_, err := d.QueryTable(ctx, "SELECT 1")
	return err
}

func outcome(err error) string {
	var connErr *ConnectionError
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &connErr):
		return "connection_error"
	default:
		return "query_error"
	}
}
