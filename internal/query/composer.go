// Package query turns search and listing requests into parameterized SQL.
//
// User input only ever reaches the store as bound arguments. The SQL text of
// every Statement is assembled from constants in this package and dialect
// placeholders, so the same Filter always yields the same predicate for the
// data query and its count query.
package query

import (
	"strings"
)

const selectDocuments = `SELECT r.id, r.name, r.folder_id, r.file_id, r.download_url, r.category_id, c.name AS category_name
FROM referensi r
LEFT JOIN category c ON c.id = r.category_id`

// Statement is SQL text with its bound arguments.
type Statement struct {
	SQL  string
	Args []any
}

// Composer builds statements for one dialect. It is stateless and safe for concurrent use.
type Composer struct {
	dialect Dialect
}

// New returns a Composer for d.
func New(d Dialect) *Composer {
	return &Composer{dialect: d}
}

// Dialect returns the dialect statements are built for.
func (c *Composer) Dialect() Dialect {
	return c.dialect
}

type binder struct {
	dialect Dialect
	args    []any
}

func (b *binder) bind(v any) string {
	b.args = append(b.args, v)
	return b.dialect.Placeholder(len(b.args))
}

type predicate struct {
	where   string
	matchPH string
}

func (c *Composer) predicate(b *binder, f Filter) predicate {
	var (
		p     predicate
		conds []string
	)
	if f.HasKeyword() {
		arg, ok := c.dialect.MatchArg(f.Keyword)
		if ok {
			p.matchPH = b.bind(arg)
			conds = append(conds, c.dialect.Match(p.matchPH))
		} else {
			// keyword without indexable terms
			conds = append(conds, "1 = 0")
		}
	}
	if f.CategoryID != nil {
		conds = append(conds, "r.category_id = "+b.bind(*f.CategoryID))
	}
	if len(conds) > 0 {
		p.where = "\nWHERE " + strings.Join(conds, " AND ")
	}
	return p
}

// Search selects every document matching f, best matches first when the dialect can rank.
func (c *Composer) Search(f Filter) Statement {
	b := &binder{dialect: c.dialect}
	p := c.predicate(b, f)

	order := "r.id ASC"
	if p.matchPH != "" && c.dialect.ReusesPlaceholders() {
		if rel := c.dialect.Relevance(p.matchPH); rel != "" {
			order = rel + ", " + order
		}
	}

	return Statement{
		SQL:  selectDocuments + p.where + "\nORDER BY " + order,
		Args: b.args,
	}
}

// Page selects one page of documents matching f in stable id order.
func (c *Composer) Page(f Filter, limit int, offset int64) Statement {
	b := &binder{dialect: c.dialect}
	p := c.predicate(b, f)
	limitPH := b.bind(limit)
	offsetPH := b.bind(offset)

	return Statement{
		SQL:  selectDocuments + p.where + "\nORDER BY r.id ASC\nLIMIT " + limitPH + " OFFSET " + offsetPH,
		Args: b.args,
	}
}

// Count counts the documents matching f with the same predicate as Page.
func (c *Composer) Count(f Filter) Statement {
	b := &binder{dialect: c.dialect}
	p := c.predicate(b, f)

	return Statement{
		SQL:  "SELECT COUNT(*) FROM referensi r" + p.where,
		Args: b.args,
	}
}

// Random selects n documents in random order for discovery listings.
func (c *Composer) Random(n int) Statement {
	b := &binder{dialect: c.dialect}
	ph := b.bind(n)

	return Statement{
		SQL:  selectDocuments + "\nORDER BY RANDOM()\nLIMIT " + ph,
		Args: b.args,
	}
}

// ByID selects a single document.
func (c *Composer) ByID(id int64) Statement {
	b := &binder{dialect: c.dialect}
	ph := b.bind(id)

	return Statement{
		SQL:  selectDocuments + "\nWHERE r.id = " + ph,
		Args: b.args,
	}
}

// Categories selects all categories ordered by id.
func (c *Composer) Categories() Statement {
	return Statement{SQL: "SELECT id, name FROM category ORDER BY id"}
}

// CategoryExists checks whether id names a stored category.
func (c *Composer) CategoryExists(id int64) Statement {
	b := &binder{dialect: c.dialect}
	ph := b.bind(id)

	return Statement{
		SQL:  "SELECT EXISTS (SELECT 1 FROM category WHERE id = " + ph + ")",
		Args: b.args,
	}
}
