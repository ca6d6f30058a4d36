package testmodels

import (
	"context"
	"time"

	"github.com/aarondl/null/v8"
	"github.com/aarondl/sqlboiler/v4/boil"
	"github.com/aarondl/sqlboiler/v4/queries"
	"github.com/aarondl/sqlboiler/v4/queries/qm"
	"github.com/friendsofgo/errors"
)

// Post is an object representing the database table.
type Post struct {
	ID        string    `boil:"id" json:"id"`
	AuthorID  string    `boil:"author_id" json:"author_id"`
	Text      string    `boil:"text" json:"text"`
	Blocked   null.Bool `boil:"blocked" json:"blocked,omitempty"`
	CreatedAt time.Time `boil:"created_at" json:"created_at"`
}

var PostColumns = struct {
	ID        string
	AuthorID  string
	Text      string
	Blocked   string
	CreatedAt string
}{
	ID:        "id",
	AuthorID:  "author_id",
	Text:      "text",
	Blocked:   "blocked",
	CreatedAt: "created_at",
}

type postQuery struct {
	*queries.Query
}

// Posts retrieves all the records using an executor.
func Posts(mods ...qm.QueryMod) postQuery {
	mods = append(mods, qm.From("\"posts\""))
	q := NewQuery(mods...)
	if len(queries.GetSelect(q)) == 0 {
		queries.SetSelect(q, []string{"\"posts\".*"})
	}

	return postQuery{q}
}

// All returns all Post records from the query.
func (q postQuery) All(ctx context.Context, exec boil.ContextExecutor) ([]*Post, error) {
	var o []*Post

	err := q.Bind(ctx, exec, &o)
	if err != nil {
		return nil, errors.Wrap(err, "testmodels: failed to assign all query results to Post slice")
	}

	return o, nil
}

// Insert a single record using an executor.
func (o *Post) Insert(ctx context.Context, exec boil.ContextExecutor) error {
	_, err := exec.ExecContext(ctx,
		`INSERT INTO "posts" ("id", "author_id", "text", "blocked", "created_at") VALUES ($1, $2, $3, $4, $5)`,
		o.ID, o.AuthorID, o.Text, o.Blocked, o.CreatedAt,
	)
	if err != nil {
		return errors.Wrap(err, "testmodels: unable to insert into posts")
	}
	return nil
}
