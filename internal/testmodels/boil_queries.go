// Package testmodels holds hand-maintained SQLBoiler-style models for the
// integration tests. They follow the layout sqlboiler generates: a package
// dialect, a NewQuery helper and one query type per table.
package testmodels

import (
	"github.com/aarondl/sqlboiler/v4/drivers"
	"github.com/aarondl/sqlboiler/v4/queries"
	"github.com/aarondl/sqlboiler/v4/queries/qm"
)

var dialect = drivers.Dialect{
	LQ: 0x22,
	RQ: 0x22,

	UseIndexPlaceholders: true,
}

// NewQuery initializes a new Query using the passed in QueryMods.
func NewQuery(mods ...qm.QueryMod) *queries.Query {
	q := &queries.Query{}
	queries.SetDialect(q, &dialect)
	qm.Apply(q, mods...)

	return q
}

// Schema creates the tables used by the models.
const Schema = `
CREATE TABLE posts (
	id UUID PRIMARY KEY,
	author_id UUID NOT NULL,
	text TEXT NOT NULL,
	blocked BOOLEAN,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX idx_posts_created_at ON posts(created_at DESC, id);
CREATE INDEX idx_posts_author_created_at ON posts(author_id, created_at DESC, id);
`
