package store

import "fmt"

// ConnectionError reports that no connection could be established:
// unreachable host, bad credentials, unknown database.
type ConnectionError struct {
	Err error
}

func (e *ConnectionError) Error() string { return fmt.Sprintf("database connection: %v", e.Err) }

func (e *ConnectionError) Unwrap() error { return e.Err }

// QueryError reports a failure after the connection was open: malformed SQL,
// a missing relation or column, or an error while reading rows.
type QueryError struct {
	SQL string
	Err error
}

func (e *QueryError) Error() string { return fmt.Sprintf("database query: %v", e.Err) }

func (e *QueryError) Unwrap() error { return e.Err }
