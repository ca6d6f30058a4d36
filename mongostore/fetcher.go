// Package mongostore provides a MongoDB adapter for cursor pagination.
//
// It translates paging.FetchParams into a bson filter, a sort document and a
// limit, and runs them with Collection.Find (or an equivalent aggregation
// when optional fields need defaults). Every keyset query is a range scan
// on an index over (sortField, _id):
//
//	db.posts.createIndex({ createdAt: -1, _id: 1 })
//
// Example usage:
//
//	fetcher := mongostore.NewFetcher[*content.Post](db.Collection("posts"),
//	    mongostore.WithObjectIDFields("_id", "authorProfileId"),
//	)
//	paginator := cursor.New(fetcher, postSchema, paging.Sort{Field: "createdAt", Desc: true})
package mongostore

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/nrfta/keyset-paging"
)

// Collection is the subset of *mongo.Collection used by the fetcher.
type Collection interface {
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (*mongo.Cursor, error)
	Aggregate(ctx context.Context, pipeline interface{}, opts ...*options.AggregateOptions) (*mongo.Cursor, error)
}

// Fetcher implements paging.Fetcher[T] for a MongoDB collection.
// It is safe for concurrent use.
type Fetcher[T any] struct {
	coll       Collection
	translator Translator
}

// Option configures a Fetcher.
type Option func(*Translator)

// WithObjectIDFields marks fields that hold ObjectIDs. String values for those
// fields (cursor ids, filter values) are converted from hex before querying.
func WithObjectIDFields(fields ...string) Option {
	return func(t *Translator) {
		if t.objectIDFields == nil {
			t.objectIDFields = make(map[string]bool, len(fields))
		}
		for _, f := range fields {
			t.objectIDFields[f] = true
		}
	}
}

// WithFieldDefault makes documents where field is missing or null behave as
// if it held value, both when filtering and when sorting. Mongo sorts a
// missing field before every string, so an optional sort field needs a
// default that matches what the cursor schema extracts from a decoded
// document.
//
// Fetchers with defaults query through an aggregation that fills the
// defaults in before matching, which can not use an index on the field.
func WithFieldDefault(field string, value any) Option {
	return func(t *Translator) {
		if t.defaults == nil {
			t.defaults = make(map[string]any)
		}
		t.defaults[field] = value
	}
}

// NewFetcher creates a fetcher over coll.
func NewFetcher[T any](coll Collection, opts ...Option) *Fetcher[T] {
	return &Fetcher[T]{coll: coll, translator: NewTranslator(opts...)}
}

// Fetch implements paging.Fetcher.
func (f *Fetcher[T]) Fetch(ctx context.Context, params paging.FetchParams) ([]T, error) {
	filter, err := f.filter(params)
	if err != nil {
		return nil, err
	}

	cur, err := f.query(ctx, filter, params, int64(params.Limit), nil)
	if err != nil {
		return nil, driverError(ctx, "find", err)
	}
	defer cur.Close(ctx)

	items := make([]T, 0, params.Limit)
	if err := cur.All(ctx, &items); err != nil {
		return nil, driverError(ctx, "decode", err)
	}
	return items, nil
}

// Exists implements paging.Fetcher.
func (f *Fetcher[T]) Exists(ctx context.Context, params paging.FetchParams) (bool, error) {
	filter, err := f.filter(params)
	if err != nil {
		return false, err
	}

	cur, err := f.query(ctx, filter, params, 1, bson.M{"_id": 1})
	if err != nil {
		return false, driverError(ctx, "exists", err)
	}
	defer cur.Close(ctx)

	found := cur.Next(ctx)
	if err := cur.Err(); err != nil {
		return false, driverError(ctx, "exists", err)
	}
	return found, nil
}

// query runs a Find, or an aggregation when field defaults are configured.
func (f *Fetcher[T]) query(ctx context.Context, filter bson.M, params paging.FetchParams, limit int64, projection bson.M) (*mongo.Cursor, error) {
	sort := SortDocument(params.Order.Effective(params.Scan))

	defaults := f.translator.DefaultsStage()
	if defaults == nil {
		opts := options.Find().SetSort(sort).SetLimit(limit)
		if projection != nil {
			opts.SetProjection(projection)
		}
		return f.coll.Find(ctx, filter, opts)
	}

	pipeline := mongo.Pipeline{
		{{Key: "$addFields", Value: defaults}},
		{{Key: "$match", Value: filter}},
		{{Key: "$sort", Value: sort}},
		{{Key: "$limit", Value: limit}},
	}
	if projection != nil {
		pipeline = append(pipeline, bson.D{{Key: "$project", Value: projection}})
	}
	return f.coll.Aggregate(ctx, pipeline)
}

// filter translates the query predicate. Values the store cannot represent
// are reported against the cursor when they come from the boundary.
func (f *Fetcher[T]) filter(params paging.FetchParams) (bson.M, error) {
	if params.Boundary != nil {
		if _, err := f.translator.Filter(params.Boundary); err != nil {
			var argErr *paging.InvalidArgumentError
			if errors.As(err, &argErr) {
				return nil, &paging.InvalidCursorError{Reason: argErr.Field + ": " + argErr.Reason}
			}
			return nil, err
		}
	}
	return f.translator.Filter(params.Where())
}

// SortDocument converts an order into a Mongo sort specification.
func SortDocument(order paging.Order) bson.D {
	sort := bson.D{{Key: order.Sort.Field, Value: direction(order.Sort.Desc)}}
	if order.IDField != "" && order.IDField != order.Sort.Field {
		sort = append(sort, bson.E{Key: order.IDField, Value: direction(order.IDDesc)})
	}
	return sort
}

func direction(desc bool) int {
	if desc {
		return -1
	}
	return 1
}

// Translator converts paging predicates into bson filters.
type Translator struct {
	objectIDFields map[string]bool
	defaults       map[string]any
}

// DefaultsStage returns the $addFields stage that fills in field defaults,
// or nil when none are configured.
func (t Translator) DefaultsStage() bson.M {
	if len(t.defaults) == 0 {
		return nil
	}
	stage := make(bson.M, len(t.defaults))
	for field, value := range t.defaults {
		stage[field] = bson.M{"$ifNull": bson.A{"$" + field, value}}
	}
	return stage
}

// NewTranslator creates a Translator configured by the fetcher options.
func NewTranslator(opts ...Option) Translator {
	var t Translator
	for _, opt := range opts {
		opt(&t)
	}
	return t
}

// Filter translates pred into a bson filter document. A nil predicate
// matches every document.
func (t Translator) Filter(pred paging.Predicate) (bson.M, error) {
	switch p := pred.(type) {
	case nil:
		return bson.M{}, nil

	case paging.Eq:
		v, err := t.value(p.Field, p.Value)
		if err != nil {
			return nil, err
		}
		return bson.M{p.Field: v}, nil

	case paging.In:
		values := make(bson.A, 0, len(p.Values))
		for _, raw := range p.Values {
			v, err := t.value(p.Field, raw)
			if err != nil {
				return nil, err
			}
			values = append(values, v)
		}
		return bson.M{p.Field: bson.M{"$in": values}}, nil

	case paging.NotTrue:
		return bson.M{p.Field: bson.M{"$ne": true}}, nil

	case paging.Cmp:
		v, err := t.value(p.Field, p.Value)
		if err != nil {
			return nil, err
		}
		op := "$gt"
		if p.Op == paging.Lt {
			op = "$lt"
		}
		return bson.M{p.Field: bson.M{op: v}}, nil

	case paging.And:
		if len(p) == 0 {
			return bson.M{}, nil
		}
		parts, err := t.all(p)
		if err != nil {
			return nil, err
		}
		return bson.M{"$and": parts}, nil

	case paging.Or:
		if len(p) == 0 {
			return bson.M{"_id": bson.M{"$in": bson.A{}}}, nil
		}
		parts, err := t.all(p)
		if err != nil {
			return nil, err
		}
		return bson.M{"$or": parts}, nil
	}

	return nil, fmt.Errorf("unsupported predicate %T", pred)
}

func (t Translator) all(preds []paging.Predicate) (bson.A, error) {
	parts := make(bson.A, 0, len(preds))
	for _, member := range preds {
		doc, err := t.Filter(member)
		if err != nil {
			return nil, err
		}
		parts = append(parts, doc)
	}
	return parts, nil
}

func (t Translator) value(field string, v any) (any, error) {
	if !t.objectIDFields[field] {
		return v, nil
	}

	s, ok := v.(string)
	if !ok {
		return v, nil
	}

	id, err := primitive.ObjectIDFromHex(s)
	if err != nil {
		return nil, &paging.InvalidArgumentError{Field: field, Reason: "not a valid object id"}
	}
	return id, nil
}

func driverError(ctx context.Context, op string, err error) error {
	if ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return &paging.StoreUnavailableError{Op: op, Err: err}
}
