package paging

import (
	"fmt"
	"strings"
	"time"
)

// CompareValues orders two sort values of the same kind.
// It returns -1, 0 or 1, or an error when the values are not comparable.
//
// Supported kinds: string, time.Time, signed integers, float64 and bool
// (false < true). Integers and floats compare with each other so that
// values round-tripped through JSON still order correctly.
func CompareValues(a, b any) (int, error) {
	switch av := a.(type) {
	case string:
		if bv, ok := b.(string); ok {
			return strings.Compare(av, bv), nil
		}

	case time.Time:
		if bv, ok := b.(time.Time); ok {
			return av.Compare(bv), nil
		}

	case bool:
		if bv, ok := b.(bool); ok {
			switch {
			case av == bv:
				return 0, nil
			case !av:
				return -1, nil
			}
			return 1, nil
		}

	default:
		an, aok := toNumber(a)
		bn, bok := toNumber(b)
		if aok && bok {
			return an.compare(bn), nil
		}
	}

	return 0, fmt.Errorf("cannot compare %T with %T", a, b)
}

// number keeps integers exact and only falls back to float64 when needed.
type number struct {
	i       int64
	f       float64
	isFloat bool
}

func (n number) compare(o number) int {
	if !n.isFloat && !o.isFloat {
		switch {
		case n.i < o.i:
			return -1
		case n.i > o.i:
			return 1
		}
		return 0
	}

	nf, of := n.float(), o.float()
	switch {
	case nf < of:
		return -1
	case nf > of:
		return 1
	}
	return 0
}

func (n number) float() float64 {
	if n.isFloat {
		return n.f
	}
	return float64(n.i)
}

func toNumber(v any) (number, bool) {
	switch n := v.(type) {
	case int:
		return number{i: int64(n)}, true
	case int8:
		return number{i: int64(n)}, true
	case int16:
		return number{i: int64(n)}, true
	case int32:
		return number{i: int64(n)}, true
	case int64:
		return number{i: n}, true
	case float32:
		return number{f: float64(n), isFloat: true}, true
	case float64:
		return number{f: n, isFloat: true}, true
	}
	return number{}, false
}
