// Package sqlboiler provides a SQLBoiler adapter for cursor pagination.
//
// The Fetcher is ORM-specific but pagination-agnostic: it converts
// paging.FetchParams into SQLBoiler query mods and hands them to a query
// function over a generated model.
//
// Example usage:
//
//	fetcher := sqlboiler.NewFetcher(
//	    func(ctx context.Context, mods ...qm.QueryMod) ([]*models.Post, error) {
//	        return models.Posts(mods...).All(ctx, db)
//	    },
//	)
//
//	paginator := cursor.New(fetcher, postSchema, paging.Sort{Field: "created_at", Desc: true})
package sqlboiler

import (
	"context"
	"errors"

	"github.com/aarondl/sqlboiler/v4/queries/qm"
	pkgerrors "github.com/friendsofgo/errors"

	"github.com/nrfta/keyset-paging"
)

// QueryFunc executes a SQLBoiler query and returns results.
//
// Type parameter T is the SQLBoiler model type (e.g., *models.Post).
type QueryFunc[T any] func(ctx context.Context, mods ...qm.QueryMod) ([]T, error)

// Fetcher implements paging.Fetcher[T] for SQLBoiler queries.
type Fetcher[T any] struct {
	queryFunc QueryFunc[T]
	builder   QueryBuilder
	baseMods  []qm.QueryMod
}

// Option configures a Fetcher.
type Option func(*options)

type options struct {
	builder  QueryBuilder
	baseMods []qm.QueryMod
}

// WithIdentQuote sets the identifier quote characters, e.g. '`' for MySQL.
func WithIdentQuote(lq, rq byte) Option {
	return func(o *options) {
		o.builder = QueryBuilder{LQ: lq, RQ: rq}
	}
}

// WithQueryMods adds mods to every query, such as qm.Select or qm.Load.
// They are applied before the pagination mods.
func WithQueryMods(mods ...qm.QueryMod) Option {
	return func(o *options) {
		o.baseMods = append(o.baseMods, mods...)
	}
}

// NewFetcher creates a new SQLBoiler fetcher.
//
// Parameters:
//   - queryFunc: function that executes SQLBoiler queries with query mods
//   - opts: identifier quoting, extra query mods
func NewFetcher[T any](queryFunc QueryFunc[T], opts ...Option) *Fetcher[T] {
	o := &options{builder: QueryBuilder{LQ: '"', RQ: '"'}}
	for _, opt := range opts {
		opt(o)
	}

	return &Fetcher[T]{
		queryFunc: queryFunc,
		builder:   o.builder,
		baseMods:  o.baseMods,
	}
}

// Fetch retrieves items from the database using SQLBoiler query mods.
func (f *Fetcher[T]) Fetch(ctx context.Context, params paging.FetchParams) ([]T, error) {
	mods, err := f.builder.QueryMods(params)
	if err != nil {
		return nil, err
	}

	all := make([]qm.QueryMod, 0, len(f.baseMods)+len(mods))
	all = append(all, f.baseMods...)
	all = append(all, mods...)

	items, err := f.queryFunc(ctx, all...)
	if err != nil {
		return nil, queryError(ctx, err)
	}
	return items, nil
}

// Exists reports whether any row matches params, fetching at most one.
func (f *Fetcher[T]) Exists(ctx context.Context, params paging.FetchParams) (bool, error) {
	params.Limit = 1
	items, err := f.Fetch(ctx, params)
	if err != nil {
		return false, err
	}
	return len(items) > 0, nil
}

func queryError(ctx context.Context, err error) error {
	if ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return &paging.StoreUnavailableError{
		Op:  "query",
		Err: pkgerrors.Wrap(err, "sqlboiler: failed to execute paginated query"),
	}
}
