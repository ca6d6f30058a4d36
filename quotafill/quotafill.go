// Package quotafill decorates a paging.Fetcher with an in-process filter.
//
// Some visibility rules can not be expressed as a store predicate (an
// authorization service, a per-viewer block list). The quota-fill fetcher
// asks the base fetcher for batches, applies the filter, and keeps fetching
// past the last examined document until the requested number of documents
// pass. The paginator above it never sees a short page caused by filtering,
// so its N+1 check and page info stay correct.
//
// Safeguards bound the work done for very selective filters. When one trips
// the fetch fails with a *SafeguardError rather than returning a silently
// short page.
package quotafill

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/nrfta/keyset-paging"
	"github.com/nrfta/keyset-paging/cursor"
)

// Default configuration values
const (
	defaultMaxIterations      = 5
	defaultMaxRecordsExamined = 100
	defaultTimeout            = 3 * time.Second
)

// Default adaptive backoff multipliers (Fibonacci-like progression)
var defaultBackoffMultipliers = []int{1, 2, 3, 5, 8}

// Fetcher wraps a base fetcher with quota-fill filtering.
// It implements paging.Fetcher[T] and is safe for concurrent use.
//
// Type parameter T is the document type being fetched and filtered.
type Fetcher[T any] struct {
	base               paging.Fetcher[T]
	filter             paging.FilterFunc[T]
	schema             *cursor.Schema[T]
	maxIterations      int
	maxRecordsExamined int
	timeout            time.Duration
	backoffMultipliers []int
	logger             logrus.FieldLogger
}

// Option configures a quota-fill fetcher.
type Option func(*config)

type config struct {
	maxIterations      int
	maxRecordsExamined int
	timeout            time.Duration
	backoffMultipliers []int
	logger             logrus.FieldLogger
}

// WithMaxIterations sets the maximum number of batches per fetch.
// Default: 5
func WithMaxIterations(n int) Option {
	return func(c *config) {
		c.maxIterations = n
	}
}

// WithMaxRecordsExamined sets the maximum number of documents read from the
// base fetcher per fetch. Fetches whose first batch is larger than n get
// the first batch size as their budget instead.
// Default: 100
func WithMaxRecordsExamined(n int) Option {
	return func(c *config) {
		c.maxRecordsExamined = n
	}
}

// WithTimeout sets the maximum time allowed for one fetch.
// Default: 3 seconds
func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		c.timeout = d
	}
}

// WithBackoffMultipliers sets the adaptive backoff multipliers.
// Default: [1, 2, 3, 5, 8]
//
// Batch n asks for the number of documents still missing times the n-th
// multiplier, so selective filters read ahead further on later batches.
func WithBackoffMultipliers(multipliers []int) Option {
	return func(c *config) {
		if len(multipliers) > 0 {
			c.backoffMultipliers = multipliers
		}
	}
}

// WithLogger sets the logger used to report safeguard trips.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Wrap decorates base with filter.
//
// Parameters:
//   - base: the store fetcher
//   - filter: keeps the documents the caller may see
//   - schema: the collection's cursor schema, used to continue each batch
//     strictly after the last document examined
//   - opts: safeguards and logger
//
// Example usage:
//
//	visible := func(ctx context.Context, posts []*content.Post) ([]*content.Post, error) {
//	    return authz.FilterVisible(ctx, viewerID, posts)
//	}
//	fetcher := quotafill.Wrap(mongostore.NewFetcher[*content.Post](coll), visible, postSchema,
//	    quotafill.WithMaxRecordsExamined(500),
//	)
func Wrap[T any](
	base paging.Fetcher[T],
	filter paging.FilterFunc[T],
	schema *cursor.Schema[T],
	opts ...Option,
) *Fetcher[T] {
	cfg := &config{
		maxIterations:      defaultMaxIterations,
		maxRecordsExamined: defaultMaxRecordsExamined,
		timeout:            defaultTimeout,
		backoffMultipliers: defaultBackoffMultipliers,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		cfg.logger = l
	}

	return &Fetcher[T]{
		base:               base,
		filter:             filter,
		schema:             schema,
		maxIterations:      cfg.maxIterations,
		maxRecordsExamined: cfg.maxRecordsExamined,
		timeout:            cfg.timeout,
		backoffMultipliers: cfg.backoffMultipliers,
		logger:             cfg.logger,
	}
}

// fillState tracks state across batches of one fetch.
type fillState[T any] struct {
	kept      []T
	examined  int
	iteration int
	last      *paging.CursorPosition
}

// Fetch returns up to params.Limit documents that pass the filter, in the
// order the base fetcher returns them.
func (f *Fetcher[T]) Fetch(ctx context.Context, params paging.FetchParams) ([]T, error) {
	if params.Limit <= 0 {
		return []T{}, nil
	}

	spec, err := f.schema.EncoderFor(params.Order.Sort)
	if err != nil {
		return nil, err
	}

	fillCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	budget := f.recordBudget(params.Limit)
	state := &fillState[T]{}
	for len(state.kept) < params.Limit {
		if state.iteration >= f.maxIterations {
			return nil, f.trip(params, state, SafeguardMaxIterations)
		}

		batch := (params.Limit - len(state.kept)) * f.multiplier(state.iteration)
		batch = min(batch, budget-state.examined)
		if batch <= 0 {
			return nil, f.trip(params, state, SafeguardMaxRecords)
		}

		items, err := f.base.Fetch(fillCtx, paging.FetchParams{
			Filter:   params.Filter,
			Boundary: paging.Conjoin(params.Boundary, cursor.Beyond(params.Order, state.last, params.Scan)),
			Order:    params.Order,
			Scan:     params.Scan,
			Limit:    batch,
		})
		if err != nil {
			if ctx.Err() == nil && errors.Is(err, context.DeadlineExceeded) {
				return nil, f.trip(params, state, SafeguardTimeout)
			}
			return nil, fmt.Errorf("fetch batch (iteration %d): %w", state.iteration+1, err)
		}

		passed, err := f.filter(fillCtx, items)
		if err != nil {
			if ctx.Err() == nil && errors.Is(err, context.DeadlineExceeded) {
				return nil, f.trip(params, state, SafeguardTimeout)
			}
			return nil, fmt.Errorf("apply filter (iteration %d): %w", state.iteration+1, err)
		}

		state.kept = append(state.kept, passed...)
		state.examined += len(items)
		state.iteration++

		if len(items) < batch {
			break
		}

		pos, err := spec.Position(items[len(items)-1])
		if err != nil {
			return nil, fmt.Errorf("position of last examined item (iteration %d): %w", state.iteration, err)
		}
		state.last = &pos
	}

	if len(state.kept) > params.Limit {
		state.kept = state.kept[:params.Limit]
	}
	return state.kept, nil
}

// Exists reports whether any document matching params passes the filter.
func (f *Fetcher[T]) Exists(ctx context.Context, params paging.FetchParams) (bool, error) {
	params.Limit = 1
	items, err := f.Fetch(ctx, params)
	if err != nil {
		return false, err
	}
	return len(items) > 0, nil
}

// recordBudget returns the number of documents one fetch may examine. It
// never falls below what the first batch asks for, so a page the paginator
// accepted can always be served when the filter keeps everything.
func (f *Fetcher[T]) recordBudget(limit int) int {
	return max(f.maxRecordsExamined, limit*f.multiplier(0))
}

// multiplier returns the backoff multiplier for the given iteration.
func (f *Fetcher[T]) multiplier(iteration int) int {
	return f.backoffMultipliers[min(iteration, len(f.backoffMultipliers)-1)]
}

func (f *Fetcher[T]) trip(params paging.FetchParams, state *fillState[T], safeguard string) error {
	err := &SafeguardError{
		Safeguard:  safeguard,
		Iterations: state.iteration,
		Examined:   state.examined,
		Passed:     len(state.kept),
		Wanted:     params.Limit,
	}

	f.logger.WithFields(logrus.Fields{
		"safeguard":  safeguard,
		"iterations": state.iteration,
		"examined":   state.examined,
		"passed":     len(state.kept),
		"wanted":     params.Limit,
	}).Warn("quota fill safeguard tripped")

	return err
}
