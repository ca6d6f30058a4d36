package cursor

import (
	"fmt"

	"github.com/nrfta/keyset-paging"
)

// Direction represents the sort direction for a field.
type Direction bool

const (
	ASC  Direction = false
	DESC Direction = true
)

// fieldSpec defines a single field in a schema.
type fieldSpec[T any] struct {
	name      string      // store field name: "createdAt"
	cursorKey string      // short key for cursor: "c"
	kind      Kind        // value kind the extractor returns
	extractor func(T) any // extract value from item
	validate  func(any) error
}

// Schema defines the sortable fields and the tie-breaker id of a collection.
// It enforces that cursors and store ordering match by providing a single
// source of truth for field configuration.
//
// Schema solves several issues:
//  1. Information leakage: cursors carry short keys instead of field names
//  2. Encoder/order mismatch: the same spec builds both
//  3. Dynamic sorting: client sort choices are validated against the schema
//  4. Tie-breaking: the id field is always appended to the order
//
// A Schema is built once and is read-only afterwards; it is safe for
// concurrent use.
//
// Example:
//
//	var postSchema = cursor.NewSchema[*Post]().
//	    Field("createdAt", "c", cursor.KindTime, func(p *Post) any { return p.CreatedAt }).
//	    ID("_id", cursor.ASC, "i", cursor.KindString, func(p *Post) any { return p.ID.Hex() }).
//	    Validate("_id", validObjectID)
type Schema[T any] struct {
	sortableFields map[string]*fieldSpec[T]
	id             *fieldSpec[T]
	idDirection    Direction
}

// NewSchema creates a new Schema for cursor pagination.
func NewSchema[T any]() *Schema[T] {
	return &Schema[T]{
		sortableFields: make(map[string]*fieldSpec[T]),
	}
}

// Field adds a sortable field to the schema.
// Sortable fields can be chosen by clients at runtime.
//
// Parameters:
//   - name: store field name (column or document path)
//   - cursorKey: short key for cursor encoding (e.g., "c")
//   - kind: the value kind extractor returns; cursors carrying another kind
//     are rejected
//   - extractor: function to extract the value from an item
func (s *Schema[T]) Field(name, cursorKey string, kind Kind, extractor func(T) any) *Schema[T] {
	s.sortableFields[name] = &fieldSpec[T]{
		name:      name,
		cursorKey: cursorKey,
		kind:      kind,
		extractor: extractor,
	}
	return s
}

// ID sets the unique tie-breaker field. It is always the last component of
// the order and is sorted in the given direction regardless of the sort
// field's direction.
func (s *Schema[T]) ID(name string, direction Direction, cursorKey string, kind Kind, extractor func(T) any) *Schema[T] {
	s.id = &fieldSpec[T]{
		name:      name,
		cursorKey: cursorKey,
		kind:      kind,
		extractor: extractor,
	}
	s.idDirection = direction
	return s
}

// Validate registers an extra check for decoded cursor values of the named
// field, e.g. that an id is well formed. It must be called after the field
// is declared. A failing check makes the cursor invalid.
func (s *Schema[T]) Validate(name string, check func(any) error) *Schema[T] {
	if s.id != nil && s.id.name == name {
		s.id.validate = check
	}
	if f, ok := s.sortableFields[name]; ok {
		f.validate = check
	}
	return s
}

// HasField reports whether name is a registered sortable field.
func (s *Schema[T]) HasField(name string) bool {
	_, ok := s.sortableFields[name]
	return ok
}

// EncoderFor validates sort against the schema and returns the Spec that
// encodes and decodes cursors for it.
//
// Returns an *paging.InvalidArgumentError if the sort field is not registered.
func (s *Schema[T]) EncoderFor(sort paging.Sort) (*Spec[T], error) {
	if s.id == nil {
		return nil, fmt.Errorf("cursor schema has no id field")
	}

	field, ok := s.sortableFields[sort.Field]
	if !ok {
		return nil, &paging.InvalidArgumentError{
			Field:  "sort",
			Reason: fmt.Sprintf("invalid sort field: %s (not registered in schema)", sort.Field),
		}
	}

	return &Spec[T]{
		field: field,
		id:    s.id,
		order: paging.Order{
			Sort:    sort,
			IDField: s.id.name,
			IDDesc:  bool(s.idDirection),
		},
	}, nil
}

// Spec is the runtime configuration for one sort choice.
// It implements paging.CursorEncoder[T].
type Spec[T any] struct {
	field *fieldSpec[T]
	id    *fieldSpec[T]
	order paging.Order
	codec Codec
}

// Order returns the full connection order, tie-breaker included.
func (s *Spec[T]) Order() paging.Order {
	return s.order
}

// Position extracts the sort value and id of item.
func (s *Spec[T]) Position(item T) (paging.CursorPosition, error) {
	pos := paging.CursorPosition{
		SortValue: s.field.extractor(item),
		ID:        s.id.extractor(item),
	}
	if pos.SortValue == nil {
		return pos, fmt.Errorf("item has no value for sort field %s", s.field.name)
	}
	if pos.ID == nil {
		return pos, fmt.Errorf("item has no value for id field %s", s.id.name)
	}
	if kind, _ := KindOf(pos.SortValue); kind != s.field.kind {
		return pos, fmt.Errorf("sort field %s holds %T, schema declares kind %q", s.field.name, pos.SortValue, s.field.kind)
	}
	if kind, _ := KindOf(pos.ID); kind != s.id.kind {
		return pos, fmt.Errorf("id field %s holds %T, schema declares kind %q", s.id.name, pos.ID, s.id.kind)
	}
	return pos, nil
}

// Encode implements CursorEncoder.Encode.
func (s *Spec[T]) Encode(item T) (string, error) {
	pos, err := s.Position(item)
	if err != nil {
		return "", err
	}
	return s.codec.Encode(s.field.cursorKey, pos)
}

// Decode implements CursorEncoder.Decode.
// A cursor issued for a different sort field, or carrying values of another
// kind than the schema declares, is rejected.
func (s *Spec[T]) Decode(cursor string) (*paging.CursorPosition, error) {
	key, pos, err := s.codec.Decode(cursor)
	if err != nil {
		return nil, err
	}

	if key != s.field.cursorKey {
		return nil, &paging.InvalidCursorError{
			Cursor: cursor,
			Reason: "cursor was issued for a different sort field",
		}
	}

	if err := s.field.check(pos.SortValue); err != nil {
		return nil, &paging.InvalidCursorError{Cursor: cursor, Reason: "sort value: " + err.Error()}
	}
	if err := s.id.check(pos.ID); err != nil {
		return nil, &paging.InvalidCursorError{Cursor: cursor, Reason: "id: " + err.Error()}
	}

	return pos, nil
}

func (f *fieldSpec[T]) check(v any) error {
	if kind, _ := KindOf(v); kind != f.kind {
		return fmt.Errorf("has kind %q, want %q", kind, f.kind)
	}
	if f.validate != nil {
		return f.validate(v)
	}
	return nil
}
