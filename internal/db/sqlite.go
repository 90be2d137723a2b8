package db

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"modernc.org/sqlite"
)

// CaseFoldFunc names a scalar SQL function that lowercases its argument with
// Unicode rules. The built-in lower() and LIKE only fold ASCII.
const CaseFoldFunc = "casefold"

func init() {
	sqlite.MustRegisterDeterministicScalarFunction(CaseFoldFunc, 1, caseFold)
}

func caseFold(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case nil:
		return nil, nil
	case string:
		return strings.ToLower(v), nil
	case []byte:
		return strings.ToLower(string(v)), nil
	default:
		return v, nil
	}
}

// OpenSQLite opens a bun handle over modernc sqlite. A single connection
// serialises writers so concurrent inserts surface as constraint errors
// rather than SQLITE_BUSY.
func OpenSQLite(ctx context.Context, dsn string) (*bun.DB, error) {
	sqldb, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	sqldb.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := sqldb.PingContext(ctx); err != nil {
		_ = sqldb.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return bun.NewDB(sqldb, sqlitedialect.New()), nil
}
