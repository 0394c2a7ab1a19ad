package sqlstore

import (
	"strconv"
	"strings"
)

// Dialect selects placeholder syntax.
type Dialect int

const (
	SQLite   Dialect = iota // ? placeholders
	Postgres                // $1, $2, ... placeholders
)

func (d Dialect) String() string {
	if d == Postgres {
		return "postgres"
	}
	return "sqlite"
}

// Rebind rewrites ? placeholders for the dialect. Statements in this package
// never contain a literal question mark.
func (d Dialect) Rebind(query string) string {
	if d != Postgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
