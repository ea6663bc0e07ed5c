package store

import "fmt"

// NewConnector picks the driver named in configuration. "pgx" uses the native
// pgx protocol, "postgres" goes through database/sql and lib/pq.
func NewConnector(driver, dsn string) (Connector, error) {
	switch driver {
	case "", "pgx":
		c, err := NewPgxConnector(dsn)
		if err != nil {
			return nil, fmt.Errorf("pgx config: %w", err)
		}
		return c, nil
	case "postgres", "pq":
		c, err := NewPQConnector(dsn)
		if err != nil {
			return nil, fmt.Errorf("pq config: %w", err)
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", driver)
	}
}
