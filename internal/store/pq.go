package store

import (
	"context"
	"database/sql"
	"strconv"

	"github.com/lib/pq"
)

// PQConnector opens a database/sql handle over lib/pq limited to a single
// connection, and tears the whole handle down on Close.
type PQConnector struct {
	connector *pq.Connector
}

func NewPQConnector(dsn string) (*PQConnector, error) {
	c, err := pq.NewConnector(dsn)
	if err != nil {
		return nil, err
	}
	return &PQConnector{connector: c}, nil
}

func (p *PQConnector) Connect(ctx context.Context) (Conn, error) {
	db := sql.OpenDB(p.connector)
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	// sql.OpenDB is lazy; ping so unreachable hosts fail here and not at Query.
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &pqConn{db: db}, nil
}

type pqConn struct {
	db *sql.DB
}

func (c *pqConn) Query(ctx context.Context, query string) (Rows, error) {
	rows, err := c.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	types, err := rows.ColumnTypes()
	if err != nil {
		_ = rows.Close()
		return nil, err
	}
	cols := make([]string, len(types))
	dbTypes := make([]string, len(types))
	for i, ct := range types {
		cols[i] = ct.Name()
		dbTypes[i] = ct.DatabaseTypeName()
	}
	return &pqRows{rows: rows, cols: cols, dbTypes: dbTypes}, nil
}

func (c *pqConn) Close(context.Context) error { return c.db.Close() }

type pqRows struct {
	rows    *sql.Rows
	cols    []string
	dbTypes []string
}

func (r *pqRows) Columns() []string { return r.cols }

func (r *pqRows) Next() bool { return r.rows.Next() }

func (r *pqRows) Values() ([]any, error) {
	values := make([]any, len(r.cols))
	dest := make([]any, len(r.cols))
	for i := range values {
		dest[i] = &values[i]
	}
	if err := r.rows.Scan(dest...); err != nil {
		return nil, err
	}
	for i, v := range values {
		values[i] = normalizePQ(v, r.dbTypes[i])
	}
	return values, nil
}

func (r *pqRows) Err() error { return r.rows.Err() }

func (r *pqRows) Close() { _ = r.rows.Close() }

// normalizePQ converts lib/pq driver values to the same shapes the pgx
// connector produces. lib/pq hands NUMERIC back as its text form.
func normalizePQ(v any, dbType string) any {
	b, ok := v.([]byte)
	if !ok {
		return v
	}
	s := string(b)
	if dbType != "NUMERIC" {
		return s
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}
