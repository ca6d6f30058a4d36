package cursor

import (
	"github.com/nrfta/keyset-paging"
)

// Side says which side of a cursor a boundary selects.
type Side int

const (
	// After selects documents strictly after the cursor in connection order.
	After Side = iota
	// Before selects documents strictly before the cursor in connection order.
	Before
)

// Opposite returns the other side.
func (s Side) Opposite() Side {
	if s == After {
		return Before
	}
	return After
}

// Boundary builds the keyset condition selecting documents strictly on the
// given side of pos under order. A nil pos yields a nil (unconstrained)
// predicate.
//
// Uses the expanded comparison form every store understands:
//
//	After, ASC sort, ASC id:   sort > v OR (sort = v AND id > i)
//	After, DESC sort, ASC id:  sort < v OR (sort = v AND id > i)
//	Before flips both operators.
//
// The result is meant to be combined with the domain filter through
// paging.Conjoin; it never references filter fields.
func Boundary(order paging.Order, pos *paging.CursorPosition, side Side) paging.Predicate {
	if pos == nil {
		return nil
	}

	sortOp, idOp := paging.Gt, paging.Gt
	if order.Sort.Desc {
		sortOp = paging.Lt
	}
	if order.IDDesc {
		idOp = paging.Lt
	}
	if side == Before {
		sortOp, idOp = sortOp.Flip(), idOp.Flip()
	}

	return paging.Or{
		paging.Cmp{Field: order.Sort.Field, Op: sortOp, Value: pos.SortValue},
		paging.And{
			paging.Eq{Field: order.Sort.Field, Value: pos.SortValue},
			paging.Cmp{Field: order.IDField, Op: idOp, Value: pos.ID},
		},
	}
}

// Through is Boundary widened to include the document at pos itself.
// It is the complement of Boundary(order, pos, side.Opposite()).
func Through(order paging.Order, pos *paging.CursorPosition, side Side) paging.Predicate {
	if pos == nil {
		return nil
	}

	return paging.Or{
		Boundary(order, pos, side),
		paging.And{
			paging.Eq{Field: order.Sort.Field, Value: pos.SortValue},
			paging.Eq{Field: order.IDField, Value: pos.ID},
		},
	}
}

// Beyond selects documents that come after pos when walking order in the
// scan direction.
func Beyond(order paging.Order, pos *paging.CursorPosition, scan paging.ScanDirection) paging.Predicate {
	return Boundary(order, pos, sideOf(scan))
}

// sideOf returns the side a scan moves towards.
func sideOf(scan paging.ScanDirection) Side {
	if scan == paging.ScanReverse {
		return Before
	}
	return After
}

// ComparePositions orders two positions under order: negative when a comes
// first, positive when b does, zero when they are the same document.
func ComparePositions(order paging.Order, a, b paging.CursorPosition) (int, error) {
	c, err := paging.CompareValues(a.SortValue, b.SortValue)
	if err != nil {
		return 0, err
	}
	if c != 0 {
		if order.Sort.Desc {
			return -c, nil
		}
		return c, nil
	}

	c, err = paging.CompareValues(a.ID, b.ID)
	if err != nil {
		return 0, err
	}
	if order.IDDesc {
		return -c, nil
	}
	return c, nil
}
