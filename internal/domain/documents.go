package domain

import (
	"encoding/json"
	"math"
	"time"

	"github.com/cockroachdb/errors"
)

// Document is the schemaless shape exchanged with the Document Store.
// Stores put the record id they assigned under IDField on read.
type Document map[string]any

const IDField = "_id"

// reader pulls typed fields out of a Document and remembers the first failure,
// so parsers can read every field and check once.
type reader struct {
	doc Document
	err error
}

func (r *reader) fail(field, why string) {
	if r.err == nil {
		r.err = errors.Wrapf(ErrMalformedDocument, "field %q %s", field, why)
	}
}

func (r *reader) optStr(field string) string {
	v, ok := r.doc[field]
	if !ok || v == nil {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		r.fail(field, "is not a string")
		return ""
	}
	return s
}

func (r *reader) str(field string) string {
	s := r.optStr(field)
	if s == "" {
		r.fail(field, "is required")
	}
	return s
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

func (r *reader) number(field string, required bool) float64 {
	v, ok := r.doc[field]
	if !ok || v == nil {
		if required {
			r.fail(field, "is required")
		}
		return 0
	}
	f, ok := toFloat(v)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		r.fail(field, "is not a number")
		return 0
	}
	return f
}

func (r *reader) num(field string) float64    { return r.number(field, true) }
func (r *reader) optNum(field string) float64 { return r.number(field, false) }

func (r *reader) integer(field string, required bool) int {
	f := r.number(field, required)
	if f != math.Trunc(f) {
		r.fail(field, "is not an integer")
		return 0
	}
	return int(f)
}

func (r *reader) count(field string) int    { return r.integer(field, true) }
func (r *reader) optCount(field string) int { return r.integer(field, false) }

func (r *reader) stamp(field string) time.Time {
	switch v := r.doc[field].(type) {
	case time.Time:
		return v.UTC()
	case string:
		t, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			r.fail(field, "is not an RFC3339 timestamp")
			return time.Time{}
		}
		return t.UTC()
	case nil:
		r.fail(field, "is required")
	default:
		r.fail(field, "is not a timestamp")
	}
	return time.Time{}
}
