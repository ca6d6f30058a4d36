package paging

// Predicate is a closed set of conditions over document fields.
// Store adapters translate a Predicate tree into their native query form
// (bson.M, a parameterized WHERE clause, or in-memory evaluation).
//
// Filters and pagination boundaries are only ever combined with And, never by
// merging field maps, so a boundary can not overwrite a filter on the same
// field.
type Predicate interface {
	predicate()
}

// CmpOp is a strict comparison operator.
type CmpOp int

const (
	// Gt selects values strictly greater than the operand.
	Gt CmpOp = iota
	// Lt selects values strictly less than the operand.
	Lt
)

// Flip returns the opposite operator.
func (op CmpOp) Flip() CmpOp {
	if op == Gt {
		return Lt
	}
	return Gt
}

func (op CmpOp) String() string {
	if op == Gt {
		return ">"
	}
	return "<"
}

// Eq matches documents whose Field equals Value.
type Eq struct {
	Field string
	Value any
}

// In matches documents whose Field equals any of Values.
// An empty In matches nothing.
type In struct {
	Field  string
	Values []any
}

// NotTrue matches documents whose boolean Field is false, null or missing.
type NotTrue struct {
	Field string
}

// Cmp matches documents whose Field compares to Value under Op.
type Cmp struct {
	Field string
	Op    CmpOp
	Value any
}

// And matches documents satisfying every member. An empty And matches everything.
type And []Predicate

// Or matches documents satisfying any member. An empty Or matches nothing.
type Or []Predicate

func (Eq) predicate()      {}
func (In) predicate()      {}
func (NotTrue) predicate() {}
func (Cmp) predicate()     {}
func (And) predicate()     {}
func (Or) predicate()      {}

// Conjoin combines predicates with And, dropping nil members.
// It returns nil when nothing is left and the sole member when only one is.
func Conjoin(preds ...Predicate) Predicate {
	out := make(And, 0, len(preds))
	for _, p := range preds {
		if p == nil {
			continue
		}
		if and, ok := p.(And); ok && len(and) == 0 {
			continue
		}
		out = append(out, p)
	}

	switch len(out) {
	case 0:
		return nil
	case 1:
		return out[0]
	}
	return out
}
