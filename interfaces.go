package paging

import "context"

// Fetcher abstracts range queries against an ordered document collection.
// This interface allows the cursor paginator to work with MongoDB, SQLBoiler,
// an in-memory collection, or any store with range-query and equality-filter
// support, without being coupled to a specific driver.
//
// Type parameter T is the document type (e.g., *content.Post).
//
// Implementations in this module:
//   - mongostore.Fetcher: MongoDB collections
//   - sqlboiler.Fetcher: SQLBoiler-generated models
//   - memstore.Store: in-memory collections
//   - quotafill.Fetcher: decorator applying an in-process filter
type Fetcher[T any] interface {
	// Fetch returns at most params.Limit documents matching
	// params.Filter AND params.Boundary, ordered by params.Order scanned in
	// params.Scan direction.
	Fetch(ctx context.Context, params FetchParams) ([]T, error)

	// Exists reports whether at least one document matches
	// params.Filter AND params.Boundary. Limit is ignored.
	Exists(ctx context.Context, params FetchParams) (bool, error)
}

// FetchParams contains all parameters needed to query a range of documents.
type FetchParams struct {
	// Filter is the caller's domain filter. Nil matches everything.
	Filter Predicate

	// Boundary selects documents strictly beyond a cursor. Nil is unconstrained.
	Boundary Predicate

	// Order is the canonical connection order.
	Order Order

	// Scan says whether to walk Order forwards or in reverse.
	Scan ScanDirection

	// Limit is the maximum number of documents to return.
	Limit int
}

// Where returns the conjunction of Filter and Boundary.
// Nil parts are dropped; the result is nil when both are nil.
func (p FetchParams) Where() Predicate {
	return Conjoin(p.Filter, p.Boundary)
}

// Sort is a single sort directive (one logical sort field per query).
type Sort struct {
	// Field is the document field to sort by.
	Field string `json:"field"`

	// Desc indicates descending order. False means ascending.
	Desc bool `json:"desc,omitempty"`
}

// Order is the full ordering of a connection: one sort field plus an
// always-unique tie-breaker.
//
// Example for sorting by (createdAt DESC, _id ASC):
//
//	Order{Sort: Sort{Field: "createdAt", Desc: true}, IDField: "_id"}
type Order struct {
	Sort    Sort
	IDField string
	IDDesc  bool
}

// Reversed returns the order with both fields flipped.
func (o Order) Reversed() Order {
	return Order{
		Sort:    Sort{Field: o.Sort.Field, Desc: !o.Sort.Desc},
		IDField: o.IDField,
		IDDesc:  !o.IDDesc,
	}
}

// Effective returns the order a store should apply for the given scan.
func (o Order) Effective(scan ScanDirection) Order {
	if scan == ScanReverse {
		return o.Reversed()
	}
	return o
}

// ScanDirection is the direction a store walks an Order.
type ScanDirection int

const (
	// ScanForward walks the order as declared (used with first/after).
	ScanForward ScanDirection = iota

	// ScanReverse walks the order backwards (used with last/before).
	ScanReverse
)

func (d ScanDirection) String() string {
	if d == ScanReverse {
		return "reverse"
	}
	return "forward"
}

// CursorPosition is a decoded cursor: the sort value and unique id of the
// document it points at.
type CursorPosition struct {
	SortValue any
	ID        any
}

// CursorEncoder handles cursor serialization for one sort configuration.
// It converts documents into opaque cursor strings and decodes cursor strings
// back into CursorPosition values.
//
// Type parameter T is the document type.
type CursorEncoder[T any] interface {
	// Encode creates an opaque cursor string from a document.
	Encode(item T) (string, error)

	// Position extracts the cursor position of a document without encoding it.
	Position(item T) (CursorPosition, error)

	// Decode extracts the cursor position from an opaque cursor string.
	// Malformed cursors return an *InvalidCursorError.
	Decode(cursor string) (*CursorPosition, error)
}

// FilterFunc is an in-process filter applied to a batch of documents.
// It receives a batch of items and returns the subset that passes, in order.
//
// Common uses are checks the store cannot express: viewer-specific
// visibility, moderation hooks, feature flags.
//
// Example visibility filter:
//
//	filterFunc := func(ctx context.Context, posts []*content.Post) ([]*content.Post, error) {
//	    muted, err := mutes.For(ctx, viewerID)
//	    if err != nil {
//	        return nil, err
//	    }
//	    return lo.Filter(posts, func(p *content.Post, _ int) bool {
//	        return !muted[p.AuthorProfileID]
//	    }), nil
//	}
type FilterFunc[T any] func(ctx context.Context, items []T) ([]T, error)
