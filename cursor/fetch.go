package cursor

import (
	"context"
	"fmt"
	"time"

	"github.com/samber/lo"

	"github.com/nrfta/keyset-paging"
)

// fetchEdges runs the primary range query of a page.
//
// N+1 pattern: the store is asked for size+1 documents beyond the near
// cursor, walking in the page's scan direction. Only the near side is sent to
// the store; a far cursor is applied here, so any document the store returned
// past the kept edges proves that more exist on the scan side.
//
// Documents fetched in reverse are flipped back so edges are always in
// forward connection order.
func (p *Paginator[T]) fetchEdges(
	ctx context.Context,
	spec *Spec[T],
	filter paging.Predicate,
	page paging.Page,
	near, far *paging.CursorPosition,
) (*Edges[T], error) {
	order := spec.Order()
	scan := page.Scan()
	size := page.Size()

	start := time.Now()
	items, err := p.fetcher.Fetch(ctx, paging.FetchParams{
		Filter:   filter,
		Boundary: Beyond(order, near, scan),
		Order:    order,
		Scan:     scan,
		Limit:    size + 1,
	})
	if err != nil {
		return nil, storeError(ctx, "fetch edges", err)
	}
	if err := paging.Canceled(ctx); err != nil {
		return nil, err
	}

	positions := make([]paging.CursorPosition, 0, len(items))
	for i, item := range items {
		pos, err := spec.Position(item)
		if err != nil {
			return nil, fmt.Errorf("position of item at index %d: %w", i, err)
		}
		positions = append(positions, pos)
	}

	fetched := len(items)
	kept, err := keepWithin(order.Effective(scan), positions, far, size)
	if err != nil {
		return nil, err
	}

	items, positions = items[:kept], positions[:kept]
	if scan == paging.ScanReverse {
		items = lo.Reverse(items)
		positions = lo.Reverse(positions)
	}

	edges := make([]paging.Edge[T], len(items))
	for i, item := range items {
		c, err := spec.codec.Encode(spec.field.cursorKey, positions[i])
		if err != nil {
			return nil, fmt.Errorf("encode cursor of item at index %d: %w", i, err)
		}
		edges[i] = paging.Edge[T]{Cursor: c, Node: item}
	}

	return &Edges[T]{
		edges:     edges,
		positions: positions,
		page:      page,
		order:     order,
		filter:    filter,
		near:      near,
		more:      kept < fetched,
		meta: paging.Metadata{
			Strategy:      "cursor",
			QueriesIssued: 1,
			ItemsExamined: fetched,
			QueryTimeMs:   sinceMs(start),
		},
	}, nil
}

// keepWithin returns how many leading positions (in scan order) belong to the
// page: at most size, and only those strictly before far.
func keepWithin(scanOrder paging.Order, positions []paging.CursorPosition, far *paging.CursorPosition, size int) (int, error) {
	kept := min(len(positions), size)
	if far == nil {
		return kept, nil
	}

	for i := 0; i < kept; i++ {
		cmp, err := ComparePositions(scanOrder, positions[i], *far)
		if err != nil {
			return 0, fmt.Errorf("compare with window bound: %w", err)
		}
		if cmp >= 0 {
			return i, nil
		}
	}
	return kept, nil
}
