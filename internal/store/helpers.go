package store

import (
	"database/sql"
	"strings"
)

// execer is satisfied by both *sql.DB and *sql.Tx so write helpers can run
// directly or inside CommitBatch's transaction.
type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

// querier is the read counterpart of execer.
type querier interface {
	QueryRow(query string, args ...any) *sql.Row
	Query(query string, args ...any) (*sql.Rows, error)
}

// placeholderList returns "?,?,?" for n placeholders.
func placeholderList(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("?,", n-1) + "?"
}

// stringsToArgs converts []string to []any for use with database/sql.
func stringsToArgs(ids []string) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}

// affected returns the number of rows a statement changed, treating a driver
// that cannot report it as zero.
func affected(res sql.Result) int {
	n, err := res.RowsAffected()
	if err != nil {
		return 0
	}
	return int(n)
}

// prefixColumns qualifies every column of a comma-separated list with a
// table alias.
func prefixColumns(alias, columns string) string {
	cols := strings.Split(columns, ",")
	for i, c := range cols {
		cols[i] = alias + "." + strings.TrimSpace(c)
	}
	return strings.Join(cols, ", ")
}
