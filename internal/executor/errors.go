package executor

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrorKind classifies an execution failure.
type ErrorKind string

// Execution failure categories.
const (
	KindSyntax     ErrorKind = "syntax_error"
	KindSchema     ErrorKind = "schema_error"
	KindTimeout    ErrorKind = "timeout"
	KindConnection ErrorKind = "connection_error"
)

// QueryError wraps a database failure with its category and the SQL that
// triggered it.
type QueryError struct {
	Kind ErrorKind
	SQL  string
	Err  error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("query execution failed (%s): %v", e.Kind, e.Err)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// classify maps a pgx error to an ErrorKind. Schema codes are checked
// before the broader syntax class because Postgres files undefined-table
// and undefined-column under the same class 42.
func classify(err error) ErrorKind {
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.UndefinedTable, pgerrcode.UndefinedColumn:
			return KindSchema
		}
		if pgerrcode.IsSyntaxErrororAccessRuleViolation(pgErr.Code) {
			return KindSyntax
		}
	}
	return KindConnection
}
