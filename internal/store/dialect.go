package store

import (
	"database/sql/driver"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"modernc.org/sqlite"
)

type dialect struct {
	name string
	// driver is the database/sql driver name.
	driver string
	// dateSelect renders entry_date as YYYY-MM-DD text.
	dateSelect string
	// dateParam is the placeholder for a YYYY-MM-DD date argument.
	dateParam string
	// lowerFunc folds case for text search. SQLite's LOWER only folds ASCII.
	lowerFunc string
}

const sqliteLowerFunc = "journal_lower"

func init() {
	sqlite.MustRegisterDeterministicScalarFunction(sqliteLowerFunc, 1, unicodeLower)
}

func unicodeLower(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
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

var (
	sqliteDialect = dialect{
		name:       "sqlite",
		driver:     "sqlite",
		dateSelect: "entry_date",
		dateParam:  "?",
		lowerFunc:  sqliteLowerFunc,
	}
	postgresDialect = dialect{
		name:       "postgres",
		driver:     "pgx",
		dateSelect: "to_char(entry_date, 'YYYY-MM-DD')",
		dateParam:  "CAST(? AS date)",
		lowerFunc:  "LOWER",
	}
)

func (d dialect) isPostgres() bool {
	return d.name == postgresDialect.name
}

// rebind rewrites ? placeholders into $n for postgres.
func (d dialect) rebind(query string) string {
	if !d.isPostgres() {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	inQuote := false
	for _, r := range query {
		switch {
		case r == '\'':
			inQuote = !inQuote
		case r == '?' && !inQuote:
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// placeholders returns "?, ?, ..." with n entries.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// resolveDSN picks the dialect for dsn and returns the connection string
// handed to the driver.
func resolveDSN(dsn string, busyTimeout time.Duration) (dialect, string, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return dialect{}, "", fmt.Errorf("database url required")
	}
	lower := strings.ToLower(dsn)
	if strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://") {
		return postgresDialect, dsn, nil
	}

	path := dsn
	for _, prefix := range []string{"sqlite://", "sqlite3://", "file:"} {
		if strings.HasPrefix(lower, prefix) {
			path = dsn[len(prefix):]
			break
		}
	}
	query := ""
	if i := strings.Index(path, "?"); i >= 0 {
		path, query = path[:i], path[i+1:]
	}
	if path == "" {
		return dialect{}, "", fmt.Errorf("sqlite path required in %q", dsn)
	}
	values, err := url.ParseQuery(query)
	if err != nil {
		return dialect{}, "", fmt.Errorf("parse sqlite options: %w", err)
	}
	if busyTimeout > 0 {
		values.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", busyTimeout.Milliseconds()))
	}
	values.Add("_pragma", "foreign_keys(1)")
	values.Add("_pragma", "journal_mode(WAL)")
	return sqliteDialect, "file:" + path + "?" + values.Encode(), nil
}
