package query

import (
	"strconv"
	"strings"
	"unicode"
)

// Dialect isolates the SQL differences between the supported stores.
// Every method returns SQL built from constants and placeholders only.
type Dialect interface {
	Name() string
	// Placeholder returns the bind marker for the n-th (1-based) argument.
	Placeholder(n int) string
	// Match returns a predicate over alias r that is true when the document
	// name matches the full-text query bound at ph.
	Match(ph string) string
	// MatchArg converts a keyword into the bound value for Match.
	// ok is false when the keyword has no indexable terms.
	MatchArg(keyword string) (arg string, ok bool)
	// Relevance returns an ORDER BY expression ranking matches best first,
	// or "" when the dialect cannot rank inside a join.
	Relevance(ph string) string
	// ReusesPlaceholders reports whether one placeholder may appear several times.
	ReusesPlaceholders() bool
}

// Terms splits a keyword into the letter and digit runs a full-text index tokenizes on.
func Terms(keyword string) []string {
	return strings.FieldsFunc(keyword, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

// Postgres uses the generated search_vector column and the 'simple' text search
// configuration, which lowercases terms without stemming.
var Postgres Dialect = postgres{}

type postgres struct{}

func (postgres) Name() string { return "postgres" }

func (postgres) Placeholder(n int) string { return "$" + strconv.Itoa(n) }

func (postgres) Match(ph string) string {
	return "r.search_vector @@ plainto_tsquery('simple', " + ph + ")"
}

func (postgres) MatchArg(keyword string) (string, bool) {
	terms := Terms(keyword)
	if len(terms) == 0 {
		return "", false
	}
	return strings.Join(terms, " "), true
}

func (postgres) Relevance(ph string) string {
	return "ts_rank(r.search_vector, plainto_tsquery('simple', " + ph + ")) DESC"
}

func (postgres) ReusesPlaceholders() bool { return true }

// SQLite queries the referensi_fts FTS5 table. Each term is sent as a quoted
// FTS5 string so user input can never be parsed as FTS5 operators.
var SQLite Dialect = sqlite{}

type sqlite struct{}

func (sqlite) Name() string { return "sqlite" }

func (sqlite) Placeholder(int) string { return "?" }

func (sqlite) Match(ph string) string {
	return "r.id IN (SELECT rowid FROM referensi_fts WHERE referensi_fts MATCH " + ph + ")"
}

func (sqlite) MatchArg(keyword string) (string, bool) {
	terms := Terms(keyword)
	if len(terms) == 0 {
		return "", false
	}
	quoted := make([]string, len(terms))
	for i, t := range terms {
		quoted[i] = `"` + strings.ReplaceAll(t, `"`, `""`) + `"`
	}
	return strings.Join(quoted, " "), true
}

func (sqlite) Relevance(string) string { return "" }

func (sqlite) ReusesPlaceholders() bool { return false }

// DialectFor maps a configured driver name to its Dialect.
func DialectFor(driver string) (Dialect, bool) {
	switch driver {
	case "postgres", "":
		return Postgres, true
	case "sqlite":
		return SQLite, true
	default:
		return nil, false
	}
}
