package cursor

import (
	"context"
	"time"

	"github.com/nrfta/keyset-paging"
)

// resolvePageInfo computes the page info for edges.
//
//   - StartCursor/EndCursor: cursors of the first/last returned edge, nil when
//     the page is empty.
//   - The flag on the scan side (HasNextPage for first, HasPreviousPage for
//     last) comes from the over-fetch: true iff the store returned a document
//     the page did not keep.
//   - The opposite flag is false when the request had no near cursor (the
//     page starts at the edge of the connection). Otherwise one existence
//     probe looks for any document on the other side of the first edge in
//     scan order, or of the near cursor itself when the page is empty.
//
// The returned metadata describes the probe, if one ran.
func (p *Paginator[T]) resolvePageInfo(ctx context.Context, edges *Edges[T]) (paging.PageInfo, paging.Metadata, error) {
	var meta paging.Metadata

	if err := paging.Canceled(ctx); err != nil {
		return paging.PageInfo{}, meta, err
	}

	info := paging.PageInfo{}
	if n := len(edges.edges); n > 0 {
		start, end := edges.edges[0].Cursor, edges.edges[n-1].Cursor
		info.StartCursor = &start
		info.EndCursor = &end
	}

	scan := edges.page.Scan()
	behind, err := p.existsBehind(ctx, edges, scan, &meta)
	if err != nil {
		return paging.PageInfo{}, meta, err
	}

	if scan == paging.ScanForward {
		info.HasNextPage = edges.more
		info.HasPreviousPage = behind
	} else {
		info.HasPreviousPage = edges.more
		info.HasNextPage = behind
	}

	return info, meta, nil
}

// existsBehind reports whether any document lies behind the page, i.e. on the
// side the scan started from.
func (p *Paginator[T]) existsBehind(ctx context.Context, edges *Edges[T], scan paging.ScanDirection, meta *paging.Metadata) (bool, error) {
	if edges.near == nil {
		return false, nil
	}

	back := sideOf(scan).Opposite()

	var boundary paging.Predicate
	if len(edges.positions) == 0 {
		boundary = Through(edges.order, edges.near, back)
	} else {
		anchor := edges.positions[0]
		if scan == paging.ScanReverse {
			anchor = edges.positions[len(edges.positions)-1]
		}
		boundary = Boundary(edges.order, &anchor, back)
	}

	reverse := paging.ScanReverse
	if scan == paging.ScanReverse {
		reverse = paging.ScanForward
	}

	start := time.Now()
	found, err := p.fetcher.Exists(ctx, paging.FetchParams{
		Filter:   edges.filter,
		Boundary: boundary,
		Order:    edges.order,
		Scan:     reverse,
		Limit:    1,
	})
	meta.QueriesIssued++
	meta.QueryTimeMs += sinceMs(start)
	if err != nil {
		return false, storeError(ctx, "probe page boundary", err)
	}
	if err := paging.Canceled(ctx); err != nil {
		return false, err
	}

	return found, nil
}
