package search

import (
	"strconv"
	"strings"
)

// Dialect selects the placeholder style of the target database.
type Dialect int

const (
	SQLite Dialect = iota
	Postgres
)

// DialectFor maps a database/sql driver name to its dialect.
func DialectFor(driver string) Dialect {
	if driver == "postgres" {
		return Postgres
	}
	return SQLite
}

// Placeholder returns the n-th (1-based) bind marker.
func (d Dialect) Placeholder(n int) string {
	if d == Postgres {
		return "$" + strconv.Itoa(n)
	}
	return "?"
}

// rebind rewrites every '?' in query into the dialect's marker, numbering
// from start+1. Clause text never contains a literal '?'.
func (d Dialect) rebind(query string, start int) (string, int) {
	if d == SQLite {
		return query, start + strings.Count(query, "?")
	}
	var b strings.Builder
	n := start
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString(d.Placeholder(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String(), n
}
