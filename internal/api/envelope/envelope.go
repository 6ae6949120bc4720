// Package envelope unwraps the JSON envelopes the employee API uses.
//
// The server is inconsistent about where it puts payloads: lists arrive as
// {"employees":[...]}, {"data":[...]} or {"results":[...]}, and aggregates as
// {"data":{...}}, {"stats":{...}} or a bare object. Each variant is an
// explicit shape; anything else resolves to the Unknown shape and an empty
// value instead of an error.
package envelope

import (
	"bytes"
	"context"
	"encoding/json"

	"empadmin/internal/logger"
)

type ListShape int

const (
	ListUnknown ListShape = iota
	ListEmployees
	ListData
	ListResults
)

func (s ListShape) String() string {
	switch s {
	case ListEmployees:
		return "employees"
	case ListData:
		return "data"
	case ListResults:
		return "results"
	default:
		return "unknown"
	}
}

type ObjectShape int

const (
	ObjectUnknown ObjectShape = iota
	ObjectData
	ObjectStats
	ObjectBare
)

func (s ObjectShape) String() string {
	switch s {
	case ObjectData:
		return "data"
	case ObjectStats:
		return "stats"
	case ObjectBare:
		return "bare"
	default:
		return "unknown"
	}
}

// ListChain is an ordered set of list shapes; the first match wins.
type ListChain []ListShape

var (
	// AggregateLists is used for the dashboard sub-requests.
	AggregateLists = ListChain{ListEmployees, ListData, ListResults}
	// PageLists is used for the paginated employee list.
	PageLists = ListChain{ListEmployees, ListData}
)

// MatchList returns the raw array for the first shape in chain that matches.
func MatchList(body []byte, chain ListChain) (json.RawMessage, ListShape) {
	fields, ok := objectFields(body)
	if !ok {
		return nil, ListUnknown
	}
	for _, shape := range chain {
		raw, ok := fields[shape.String()]
		if ok && isArray(raw) {
			return raw, shape
		}
	}
	return nil, ListUnknown
}

// MatchObject returns the raw aggregate object. A bare body matches only
// when it carries at least one of the recognizable keys.
func MatchObject(body []byte, recognizable ...string) (json.RawMessage, ObjectShape) {
	fields, ok := objectFields(body)
	if !ok {
		return nil, ObjectUnknown
	}
	if raw, ok := fields["data"]; ok && isObject(raw) {
		return raw, ObjectData
	}
	if raw, ok := fields["stats"]; ok && isObject(raw) {
		return raw, ObjectStats
	}
	for _, key := range recognizable {
		if _, ok := fields[key]; ok {
			return bytes.TrimSpace(body), ObjectBare
		}
	}
	return nil, ObjectUnknown
}

// DecodeList extracts and decodes a list payload. It never fails: an
// unmatched or undecodable body yields an empty, non-nil slice.
func DecodeList[T any](ctx context.Context, body []byte, chain ListChain) ([]T, ListShape) {
	raw, shape := MatchList(body, chain)
	if shape == ListUnknown {
		logger.FromContext(ctx).Warn().
			Int("bytes", len(body)).
			Msg("unrecognized list envelope, using empty list")
		return []T{}, ListUnknown
	}
	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		logger.FromContext(ctx).Warn().Err(err).
			Str("shape", shape.String()).
			Msg("undecodable list items, using empty list")
		return []T{}, ListUnknown
	}
	if items == nil {
		items = []T{}
	}
	return items, shape
}

// DecodeObject extracts and decodes an aggregate payload. It never fails:
// an unmatched or undecodable body yields the zero value.
func DecodeObject[T any](ctx context.Context, body []byte, recognizable ...string) (T, ObjectShape) {
	var out T
	raw, shape := MatchObject(body, recognizable...)
	if shape == ObjectUnknown {
		logger.FromContext(ctx).Warn().
			Int("bytes", len(body)).
			Msg("unrecognized object envelope, using empty object")
		return out, ObjectUnknown
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		logger.FromContext(ctx).Warn().Err(err).
			Str("shape", shape.String()).
			Msg("undecodable object payload, using empty object")
		var zero T
		return zero, ObjectUnknown
	}
	return out, shape
}

// ReportedTotal returns the positive item count from "total" or "count",
// and whether the body carried one. A zero count counts as missing.
func ReportedTotal(body []byte) (int, bool) {
	fields, ok := objectFields(body)
	if !ok {
		return 0, false
	}
	for _, key := range []string{"total", "count"} {
		raw, ok := fields[key]
		if !ok {
			continue
		}
		var n float64
		if err := json.Unmarshal(raw, &n); err != nil {
			continue
		}
		if n > 0 {
			return int(n), true
		}
	}
	return 0, false
}

func objectFields(body []byte) (map[string]json.RawMessage, bool) {
	if !isObject(body) {
		return nil, false
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, false
	}
	return fields, true
}

func isArray(raw []byte) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '['
}

func isObject(raw []byte) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '{'
}
