// Package cursor provides cursor-based (keyset) pagination over ordered
// document collections.
//
// Cursor pagination uses the values of the sort field plus a unique
// tie-breaker to navigate a collection without the skip cost and offset drift
// of offset pagination. It supports both directions of the Relay connection
// model (first/after and last/before).
//
// Key Features:
//   - Constant cost regardless of page depth
//   - Stable results during concurrent writes
//   - Opaque, typed cursor encoding (Base64 JSON)
//   - Tie-breaking on a unique id for deterministic ordering
//   - At most two store queries per call, no counts
//
// Example usage:
//
//	schema := cursor.NewSchema[*content.Post]().
//	    Field("createdAt", "c", cursor.KindTime, func(p *content.Post) any { return p.CreatedAt }).
//	    ID("_id", cursor.ASC, "i", cursor.KindString, func(p *content.Post) any { return p.ID.Hex() })
//
//	paginator := cursor.New(fetcher, schema, paging.Sort{Field: "createdAt", Desc: true})
//	conn, err := paginator.Paginate(ctx, filter, args)
//
// Cursor Format:
//
//	Cursors are base64url-encoded JSON objects holding the sort field key and
//	the kind-tagged sort value and id:
//	{"k":"c","sk":"t","sv":"2024-01-01T00:00:00Z","ik":"s","iv":"65a0..."}
//
// Limitations:
//   - One sort field per query plus the tie-breaker
//   - Eventually consistent (a document whose sort value changes after a
//     cursor was issued may be shown twice or skipped)
package cursor

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nrfta/keyset-paging"
)

// Kind is the type tag of a value stored in a cursor.
type Kind string

// Value kinds stored in cursors.
const (
	KindString Kind = "s"
	KindTime   Kind = "t"
	KindInt    Kind = "i"
	KindFloat  Kind = "f"
	KindBool   Kind = "b"
)

// KindOf returns the cursor kind of v. Ints of any width share KindInt.
func KindOf(v any) (Kind, bool) {
	switch v.(type) {
	case string:
		return KindString, true
	case time.Time:
		return KindTime, true
	case int, int32, int64:
		return KindInt, true
	case float64:
		return KindFloat, true
	case bool:
		return KindBool, true
	}
	return "", false
}

// Codec encodes and decodes opaque cursor tokens.
// The zero value is ready to use and safe for concurrent use.
type Codec struct{}

// cursorPayload is the JSON shape inside a cursor token.
type cursorPayload struct {
	Key      string          `json:"k"`
	SortKind Kind            `json:"sk"`
	Sort     json.RawMessage `json:"sv"`
	IDKind   Kind            `json:"ik"`
	ID       json.RawMessage `json:"iv"`
}

// Encode creates a cursor token for pos under the sort field identified by key.
// Encoding fails only when a value is of an unsupported kind.
func (Codec) Encode(key string, pos paging.CursorPosition) (string, error) {
	sortKind, sortValue, err := encodeValue(pos.SortValue)
	if err != nil {
		return "", fmt.Errorf("encode sort value: %w", err)
	}

	idKind, idValue, err := encodeValue(pos.ID)
	if err != nil {
		return "", fmt.Errorf("encode id: %w", err)
	}

	data, err := json.Marshal(cursorPayload{
		Key:      key,
		SortKind: sortKind,
		Sort:     sortValue,
		IDKind:   idKind,
		ID:       idValue,
	})
	if err != nil {
		return "", err
	}

	return base64.RawURLEncoding.EncodeToString(data), nil
}

// Decode extracts the sort field key and position from a cursor token.
// Malformed tokens return an *paging.InvalidCursorError.
func (Codec) Decode(cursor string) (string, *paging.CursorPosition, error) {
	invalid := func(reason string) (string, *paging.CursorPosition, error) {
		return "", nil, &paging.InvalidCursorError{Cursor: cursor, Reason: reason}
	}

	data, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return invalid("not base64")
	}

	var payload cursorPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return invalid("not JSON")
	}

	if payload.Key == "" || payload.SortKind == "" || payload.IDKind == "" ||
		len(payload.Sort) == 0 || len(payload.ID) == 0 {
		return invalid("truncated")
	}

	sortValue, err := decodeValue(payload.SortKind, payload.Sort)
	if err != nil {
		return invalid("sort value: " + err.Error())
	}

	id, err := decodeValue(payload.IDKind, payload.ID)
	if err != nil {
		return invalid("id: " + err.Error())
	}

	return payload.Key, &paging.CursorPosition{SortValue: sortValue, ID: id}, nil
}

func encodeValue(v any) (Kind, json.RawMessage, error) {
	kind, ok := KindOf(v)
	if !ok {
		return "", nil, fmt.Errorf("unsupported cursor value type %T", v)
	}

	out := v
	switch val := v.(type) {
	case time.Time:
		out = val.UTC().Format(time.RFC3339Nano)
	case int:
		out = int64(val)
	case int32:
		out = int64(val)
	}

	raw, err := json.Marshal(out)
	if err != nil {
		return "", nil, err
	}
	return kind, raw, nil
}

func decodeValue(kind Kind, raw json.RawMessage) (any, error) {
	switch kind {
	case KindString:
		var s string
		err := json.Unmarshal(raw, &s)
		return s, err

	case KindTime:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		t, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return nil, err
		}
		return t.UTC(), nil

	case KindInt:
		var i int64
		err := json.Unmarshal(raw, &i)
		return i, err

	case KindFloat:
		var f float64
		err := json.Unmarshal(raw, &f)
		return f, err

	case KindBool:
		var b bool
		err := json.Unmarshal(raw, &b)
		return b, err
	}

	return nil, fmt.Errorf("unknown kind %q", kind)
}
