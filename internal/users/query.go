package users

import (
	"net/url"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
)

// reservedKeys are pagination/projection directives, never data filters.
var reservedKeys = map[string]struct{}{
	"page":     {},
	"sort":     {},
	"limit":    {},
	"fields":   {},
	"offset":   {},
	"populate": {},
}

// boolFields get their query-string values coerced so filters match the
// stored BSON booleans instead of comparing against the string "true".
var boolFields = map[string]struct{}{
	"isAdmin":         {},
	"isProfilePublic": {},
}

// ListQuery is the per-request listing specification. Nil Limit/Offset
// mean "no constraint": an absent or unparsable value is not coerced to
// zero and passed downstream.
type ListQuery struct {
	Filter   bson.M
	Limit    *int64
	Offset   *int64
	Sort     string
	Fields   []string
	Populate []string
}

// ParseListQuery builds a ListQuery from raw URL query values. Every
// non-reserved key becomes a filter term.
func ParseListQuery(values url.Values) *ListQuery {
	q := &ListQuery{Filter: bson.M{}}
	for key, vals := range values {
		if _, reserved := reservedKeys[key]; reserved || len(vals) == 0 {
			continue
		}
		q.Filter[key] = coerceFilterValue(key, vals[0])
	}
	q.Limit = parseOptionalInt(values.Get("limit"))
	q.Offset = parseOptionalInt(values.Get("offset"))
	q.Sort = values.Get("sort")
	q.Fields = splitList(values.Get("fields"))
	q.Populate = splitList(values.Get("populate"))
	return q
}

func parseOptionalInt(s string) *int64 {
	if s == "" {
		return nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n < 0 {
		return nil
	}
	return &n
}

// splitList accepts both comma- and space-separated field lists.
func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' })
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func coerceFilterValue(field, raw string) interface{} {
	if _, ok := boolFields[field]; ok {
		return raw == "true"
	}
	return raw
}

// SortSpec converts sort keys ("field" ascending, "-field" descending)
// into a Mongo sort document.
func (q *ListQuery) SortSpec() bson.D {
	var d bson.D
	for _, k := range splitList(q.Sort) {
		if rest, ok := strings.CutPrefix(k, "-"); ok {
			d = append(d, bson.E{Key: rest, Value: -1})
		} else {
			d = append(d, bson.E{Key: k, Value: 1})
		}
	}
	return d
}

// Projection builds the field projection. The password hash is excluded
// no matter what the client asked for. Mongo forbids mixing inclusion
// and exclusion, so a leading "-" on the first field switches the whole
// list to exclusion mode.
func (q *ListQuery) Projection() bson.M {
	if len(q.Fields) == 0 {
		return bson.M{"password": 0}
	}
	if strings.HasPrefix(q.Fields[0], "-") {
		p := bson.M{"password": 0}
		for _, f := range q.Fields {
			name := strings.TrimPrefix(f, "-")
			if name != "" && name != "password" {
				p[name] = 0
			}
		}
		return p
	}
	p := bson.M{}
	for _, f := range q.Fields {
		if f != "" && f != "password" {
			p[f] = 1
		}
	}
	if len(p) == 0 {
		return bson.M{"password": 0}
	}
	return p
}
