package database

import (
	"database/sql/driver"
	"strings"

	"modernc.org/sqlite"
)

// UnicodeLower is a scalar function available on SQLite connections. The
// built-in LOWER only folds ASCII there, while MySQL and Postgres fold the
// whole of Unicode.
const UnicodeLower = "unicode_lower"

func init() {
	sqlite.MustRegisterDeterministicScalarFunction(UnicodeLower, 1, unicodeLower)
}

func unicodeLower(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case string:
		return strings.ToLower(v), nil
	case []byte:
		return strings.ToLower(string(v)), nil
	}
	return args[0], nil
}

// LowerFunc names the SQL function that lowercases text for the dialect.
func (d Dialect) LowerFunc() string {
	if d == SQLite {
		return UnicodeLower
	}
	return "LOWER"
}
