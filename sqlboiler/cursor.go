package sqlboiler

import (
	"fmt"
	"strings"

	"github.com/aarondl/sqlboiler/v4/queries"
	"github.com/aarondl/sqlboiler/v4/queries/qm"
	"github.com/aarondl/strmangle"
	"github.com/friendsofgo/errors"

	"github.com/nrfta/keyset-paging"
)

// CursorToQueryMods converts FetchParams into SQLBoiler query mods for keyset
// pagination, quoting identifiers with double quotes (PostgreSQL, SQLite).
//
// The conversion follows these rules:
//   - Filter AND Boundary → one parameterized WHERE clause
//   - Order + Scan → qm.OrderBy("\"created_at\" DESC, \"id\"")
//   - Limit → qm.Limit(n)
//
// The boundary is expanded rather than written as a row comparison, because
// the id may sort in a different direction than the sort field:
//
//	("created_at" < ? OR ("created_at" = ? AND "id" > ?))
//
// Requirements:
//   - An index on the sort columns: CREATE INDEX idx ON posts(created_at DESC, id)
func CursorToQueryMods(params paging.FetchParams) ([]qm.QueryMod, error) {
	return QueryBuilder{LQ: '"', RQ: '"'}.QueryMods(params)
}

// QueryBuilder converts FetchParams into query mods for one SQL dialect.
type QueryBuilder struct {
	LQ byte
	RQ byte
}

// QueryMods converts params into WHERE, ORDER BY and LIMIT query mods.
func (b QueryBuilder) QueryMods(params paging.FetchParams) ([]qm.QueryMod, error) {
	mods := []qm.QueryMod{}

	clause, args, err := b.Where(params.Where())
	if err != nil {
		return nil, err
	}
	if clause != "" {
		mods = append(mods, rawWhereClause(clause, args))
	}

	if order := params.Order.Effective(params.Scan); order.Sort.Field != "" {
		mods = append(mods, qm.OrderBy(b.orderByClause(order)))
	}

	if params.Limit > 0 {
		mods = append(mods, qm.Limit(params.Limit))
	}

	return mods, nil
}

// Where renders pred as a WHERE clause with ? placeholders.
// A nil predicate yields an empty clause.
func (b QueryBuilder) Where(pred paging.Predicate) (string, []interface{}, error) {
	var args []interface{}
	clause, err := b.render(pred, &args)
	if err != nil {
		return "", nil, err
	}
	return clause, args, nil
}

func (b QueryBuilder) render(pred paging.Predicate, args *[]interface{}) (string, error) {
	switch p := pred.(type) {
	case nil:
		return "", nil

	case paging.Eq:
		*args = append(*args, p.Value)
		return b.ident(p.Field) + " = ?", nil

	case paging.In:
		if len(p.Values) == 0 {
			return "FALSE", nil
		}
		marks := make([]string, len(p.Values))
		for i, v := range p.Values {
			marks[i] = "?"
			*args = append(*args, v)
		}
		return fmt.Sprintf("%s IN (%s)", b.ident(p.Field), strings.Join(marks, ", ")), nil

	case paging.NotTrue:
		return b.ident(p.Field) + " IS NOT TRUE", nil

	case paging.Cmp:
		*args = append(*args, p.Value)
		return fmt.Sprintf("%s %s ?", b.ident(p.Field), p.Op), nil

	case paging.And:
		if len(p) == 0 {
			return "TRUE", nil
		}
		return b.join(p, " AND ", args)

	case paging.Or:
		if len(p) == 0 {
			return "FALSE", nil
		}
		return b.join(p, " OR ", args)
	}

	return "", errors.Errorf("sqlboiler: unsupported predicate %T", pred)
}

func (b QueryBuilder) join(preds []paging.Predicate, sep string, args *[]interface{}) (string, error) {
	parts := make([]string, 0, len(preds))
	for _, member := range preds {
		part, err := b.render(member, args)
		if err != nil {
			return "", err
		}
		parts = append(parts, part)
	}
	return "(" + strings.Join(parts, sep) + ")", nil
}

// orderByClause renders the sort field and the id tie-breaker.
//
// Example:
//
//	Order{Sort: {Field: "created_at", Desc: true}, IDField: "id"}
//	→ "\"created_at\" DESC, \"id\""
func (b QueryBuilder) orderByClause(order paging.Order) string {
	parts := []string{b.direction(order.Sort.Field, order.Sort.Desc)}
	if order.IDField != "" && order.IDField != order.Sort.Field {
		parts = append(parts, b.direction(order.IDField, order.IDDesc))
	}
	return strings.Join(parts, ", ")
}

func (b QueryBuilder) direction(field string, desc bool) string {
	if desc {
		return b.ident(field) + " DESC"
	}
	return b.ident(field)
}

func (b QueryBuilder) ident(field string) string {
	return strmangle.IdentQuote(rune(b.LQ), rune(b.RQ), field)
}

// rawWhereClause creates a query mod that appends a WHERE clause with its
// arguments directly to the query.
func rawWhereClause(clause string, args []interface{}) qm.QueryMod {
	return qm.QueryModFunc(func(q *queries.Query) {
		queries.AppendWhere(q, clause, args...)
	})
}
