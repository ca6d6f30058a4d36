// Package memstore provides an in-memory ordered collection that implements
// paging.Fetcher.
//
// It evaluates the paging.Predicate tree directly against documents and is
// useful for tests, fixtures and small read-mostly collections. Every Fetch
// and Exists call reads a consistent snapshot under a read lock.
//
// Example usage:
//
//	store := memstore.New(func(p *Post, field string) (any, bool) {
//	    switch field {
//	    case "_id":
//	        return p.ID, true
//	    case "createdAt":
//	        return p.CreatedAt, true
//	    }
//	    return nil, false
//	})
//	store.Insert(posts...)
package memstore

import (
	"context"
	"fmt"
	"reflect"
	"slices"
	"sync"

	"github.com/nrfta/keyset-paging"
)

// FieldFunc returns the value of a named field of a document.
// The second result is false when the document has no such field.
type FieldFunc[T any] func(item T, field string) (any, bool)

// Store is an in-memory collection safe for concurrent use.
type Store[T any] struct {
	mu    sync.RWMutex
	items []T
	field FieldFunc[T]
}

// New creates an empty Store that reads document fields through field.
func New[T any](field FieldFunc[T], items ...T) *Store[T] {
	s := &Store[T]{field: field}
	s.items = append(s.items, items...)
	return s
}

// Insert adds documents to the collection.
func (s *Store[T]) Insert(items ...T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, items...)
}

// Update replaces every document for which match returns true with the
// result of apply, and returns how many were replaced.
func (s *Store[T]) Update(match func(T) bool, apply func(T) T) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for i, item := range s.items {
		if match(item) {
			s.items[i] = apply(item)
			n++
		}
	}
	return n
}

// Delete removes every document for which match returns true, and returns
// how many were removed.
func (s *Store[T]) Delete(match func(T) bool) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	before := len(s.items)
	s.items = slices.DeleteFunc(s.items, match)
	return before - len(s.items)
}

// Len returns the number of documents.
func (s *Store[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Fetch implements paging.Fetcher.
func (s *Store[T]) Fetch(ctx context.Context, params paging.FetchParams) ([]T, error) {
	matched, err := s.match(ctx, params)
	if err != nil {
		return nil, err
	}

	order := params.Order.Effective(params.Scan)

	var sortErr error
	slices.SortStableFunc(matched, func(a, b T) int {
		c, err := s.compare(order, a, b)
		if err != nil && sortErr == nil {
			sortErr = err
		}
		return c
	})
	if sortErr != nil {
		return nil, sortErr
	}

	if params.Limit >= 0 && len(matched) > params.Limit {
		matched = matched[:params.Limit]
	}
	return matched, nil
}

// Exists implements paging.Fetcher.
func (s *Store[T]) Exists(ctx context.Context, params paging.FetchParams) (bool, error) {
	matched, err := s.match(ctx, params)
	if err != nil {
		return false, err
	}
	return len(matched) > 0, nil
}

func (s *Store[T]) match(ctx context.Context, params paging.FetchParams) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	snapshot := slices.Clone(s.items)
	s.mu.RUnlock()

	where := params.Where()
	matched := make([]T, 0, len(snapshot))
	for _, item := range snapshot {
		ok, err := s.eval(item, where)
		if err != nil {
			return nil, err
		}
		if ok {
			matched = append(matched, item)
		}
	}
	return matched, nil
}

func (s *Store[T]) compare(order paging.Order, a, b T) (int, error) {
	av, _ := s.field(a, order.Sort.Field)
	bv, _ := s.field(b, order.Sort.Field)
	c, err := paging.CompareValues(av, bv)
	if err != nil {
		return 0, fmt.Errorf("sort by %s: %w", order.Sort.Field, err)
	}
	if c != 0 {
		if order.Sort.Desc {
			return -c, nil
		}
		return c, nil
	}

	aid, _ := s.field(a, order.IDField)
	bid, _ := s.field(b, order.IDField)
	c, err = paging.CompareValues(aid, bid)
	if err != nil {
		return 0, fmt.Errorf("sort by %s: %w", order.IDField, err)
	}
	if order.IDDesc {
		return -c, nil
	}
	return c, nil
}

func (s *Store[T]) eval(item T, pred paging.Predicate) (bool, error) {
	switch p := pred.(type) {
	case nil:
		return true, nil

	case paging.Eq:
		v, ok := s.field(item, p.Field)
		if !ok {
			return false, nil
		}
		return equal(v, p.Value), nil

	case paging.In:
		v, ok := s.field(item, p.Field)
		if !ok {
			return false, nil
		}
		for _, candidate := range p.Values {
			if equal(v, candidate) {
				return true, nil
			}
		}
		return false, nil

	case paging.NotTrue:
		v, ok := s.field(item, p.Field)
		if !ok || v == nil {
			return true, nil
		}
		switch b := v.(type) {
		case bool:
			return !b, nil
		case *bool:
			return b == nil || !*b, nil
		}
		return false, fmt.Errorf("field %s is %T, not a bool", p.Field, v)

	case paging.Cmp:
		v, ok := s.field(item, p.Field)
		if !ok || v == nil {
			return false, nil
		}
		c, err := paging.CompareValues(v, p.Value)
		if err != nil {
			return false, fmt.Errorf("compare %s: %w", p.Field, err)
		}
		if p.Op == paging.Gt {
			return c > 0, nil
		}
		return c < 0, nil

	case paging.And:
		for _, member := range p {
			ok, err := s.eval(item, member)
			if err != nil || !ok {
				return false, err
			}
		}
		return true, nil

	case paging.Or:
		for _, member := range p {
			ok, err := s.eval(item, member)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
		return false, nil
	}

	return false, fmt.Errorf("unsupported predicate %T", pred)
}

// equal compares with CompareValues when possible so that an int64 decoded
// from a cursor equals an int field.
func equal(a, b any) bool {
	if c, err := paging.CompareValues(a, b); err == nil {
		return c == 0
	}
	return reflect.DeepEqual(a, b)
}
