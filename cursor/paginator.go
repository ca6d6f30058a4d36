package cursor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/nrfta/keyset-paging"
)

// Paginator is the cursor pagination entry point for one logical collection.
// It binds a Fetcher, a Schema and the collection's default sort.
//
// A Paginator holds no per-request state: every call runs the pipeline
// decode → boundary → fetch → trim → page info from its explicit inputs.
// One instance can serve any number of concurrent requests.
type Paginator[T any] struct {
	fetcher     paging.Fetcher[T]
	schema      *Schema[T]
	defaultSort paging.Sort
	config      *paging.PageConfig
	logger      logrus.FieldLogger
	name        string
}

// Option configures a Paginator.
type Option func(*options)

type options struct {
	config *paging.PageConfig
	logger logrus.FieldLogger
	name   string
}

// WithPageConfig sets the default and maximum page sizes.
func WithPageConfig(config *paging.PageConfig) Option {
	return func(o *options) {
		if config != nil {
			o.config = config
		}
	}
}

// WithPaginateOptions sets page sizes from functional options.
func WithPaginateOptions(opts ...paging.PaginateOption) Option {
	return func(o *options) {
		o.config = paging.ApplyPaginateOptions(opts...)
	}
}

// WithLogger sets the logger used for per-call debug entries.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithName names the collection in log entries.
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// New creates a cursor paginator.
//
// Parameters:
//   - fetcher: store accessor for the collection
//   - schema: sortable fields and tie-breaker id
//   - defaultSort: sort used when the request does not name one
//   - opts: page sizes, logger, collection name
//
// Example usage:
//
//	posts := cursor.New(fetcher, postSchema,
//	    paging.Sort{Field: "createdAt", Desc: true},
//	    cursor.WithName("posts"),
//	    cursor.WithLogger(log),
//	)
func New[T any](
	fetcher paging.Fetcher[T],
	schema *Schema[T],
	defaultSort paging.Sort,
	opts ...Option,
) *Paginator[T] {
	o := &options{
		config: paging.NewPageConfig(),
		logger: discardLogger(),
	}
	for _, opt := range opts {
		opt(o)
	}

	return &Paginator[T]{
		fetcher:     fetcher,
		schema:      schema,
		defaultSort: defaultSort,
		config:      o.config,
		logger:      o.logger,
		name:        o.name,
	}
}

// Edges is the result of GetEdges: the page's edges in forward connection
// order plus what GetPageInfo needs to finish the page without re-deriving
// the request.
type Edges[T any] struct {
	edges     []paging.Edge[T]
	positions []paging.CursorPosition

	page   paging.Page
	order  paging.Order
	filter paging.Predicate
	near   *paging.CursorPosition

	// more is true when the over-fetch found a document beyond the page on
	// the scan side.
	more bool

	meta paging.Metadata
}

// All returns the edges in forward connection order.
func (e *Edges[T]) All() []paging.Edge[T] {
	return e.edges
}

// Len returns the number of edges.
func (e *Edges[T]) Len() int {
	return len(e.edges)
}

// Page returns the validated page the edges were fetched for.
func (e *Edges[T]) Page() paging.Page {
	return e.page
}

// Paginate fetches one page of the collection matching filter and returns it
// as a connection.
//
// Errors:
//   - paging.ErrInvalidArgument: contradictory or out-of-range args
//   - paging.ErrInvalidCursor: malformed after/before
//   - paging.ErrStoreUnavailable: the fetcher failed
//   - paging.ErrCanceled: ctx ended before the page was complete
func (p *Paginator[T]) Paginate(ctx context.Context, filter paging.Predicate, args *paging.QueryArgs) (*paging.Connection[T], error) {
	edges, err := p.GetEdges(ctx, filter, args)
	if err != nil {
		return nil, err
	}

	pageInfo, probe, err := p.resolvePageInfo(ctx, edges)
	if err != nil {
		return nil, err
	}

	conn := paging.NewConnection(edges.edges, pageInfo)
	conn.Metadata.QueriesIssued = edges.meta.QueriesIssued + probe.QueriesIssued
	conn.Metadata.ItemsExamined = edges.meta.ItemsExamined + probe.ItemsExamined
	conn.Metadata.QueryTimeMs = edges.meta.QueryTimeMs + probe.QueryTimeMs

	p.logger.WithFields(logrus.Fields{
		"collection": p.name,
		"direction":  edges.page.Scan().String(),
		"limit":      edges.page.Size(),
		"edges":      len(conn.Edges),
		"queries":    conn.Metadata.QueriesIssued,
		"query_ms":   conn.Metadata.QueryTimeMs,
	}).Debug("paginated connection")

	return conn, nil
}

// GetEdges validates args and fetches the edges of one page.
// Edges are always in forward connection order, whichever direction was
// requested.
func (p *Paginator[T]) GetEdges(ctx context.Context, filter paging.Predicate, args *paging.QueryArgs) (*Edges[T], error) {
	if err := paging.Canceled(ctx); err != nil {
		return nil, err
	}

	page, err := args.PageWith(p.config)
	if err != nil {
		return nil, err
	}

	sort := p.defaultSort
	if args != nil && args.Sort != nil {
		sort = *args.Sort
	}

	spec, err := p.schema.EncoderFor(sort)
	if err != nil {
		return nil, err
	}

	near, far, err := decodeWindow(spec, page)
	if err != nil {
		return nil, err
	}

	return p.fetchEdges(ctx, spec, filter, page, near, far)
}

// GetPageInfo computes the page info for edges returned by GetEdges.
// It issues at most one existence probe.
func (p *Paginator[T]) GetPageInfo(ctx context.Context, edges *Edges[T]) (paging.PageInfo, error) {
	if edges == nil {
		return paging.PageInfo{}, &paging.InvalidArgumentError{Field: "edges", Reason: "edges must come from GetEdges"}
	}

	pageInfo, _, err := p.resolvePageInfo(ctx, edges)
	return pageInfo, err
}

// decodeWindow decodes the near and far cursors of page and rejects windows
// that are empty or inverted.
func decodeWindow[T any](spec *Spec[T], page paging.Page) (near, far *paging.CursorPosition, err error) {
	if c := page.Near(); c != nil {
		if near, err = spec.Decode(*c); err != nil {
			return nil, nil, err
		}
	}
	if c := page.Far(); c != nil {
		if far, err = spec.Decode(*c); err != nil {
			return nil, nil, err
		}
	}

	if near == nil || far == nil {
		return near, far, nil
	}

	// In scan order the near cursor must strictly precede the far cursor.
	cmp, err := ComparePositions(spec.Order().Effective(page.Scan()), *near, *far)
	if err != nil {
		return nil, nil, &paging.InvalidCursorError{Cursor: *page.Far(), Reason: "after and before cursors are not comparable"}
	}
	if cmp >= 0 {
		return nil, nil, &paging.InvalidArgumentError{Field: "before", Reason: "after and before cursors describe an empty or inverted window"}
	}

	return near, far, nil
}

// storeError classifies a Fetcher failure.
func storeError(ctx context.Context, op string, err error) error {
	if cerr := paging.Canceled(ctx); cerr != nil {
		return cerr
	}

	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return &paging.CancellationError{Err: err}
	case errors.Is(err, paging.ErrStoreUnavailable), errors.Is(err, paging.ErrCanceled), paging.IsClientError(err):
		return fmt.Errorf("%s: %w", op, err)
	}

	return &paging.StoreUnavailableError{Op: op, Err: err}
}

func sinceMs(start time.Time) int64 {
	return time.Since(start).Milliseconds()
}

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
