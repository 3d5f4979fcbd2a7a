// Package query implements the small search language used by
// getIfMatching and the read-side view aggregators: free terms plus
// field:value filters, with quoted phrases and a `*` wildcard.
package query

import (
	"strings"
	"unicode"
)

// Wildcard matches any value, whether used as a filter value or as a
// free term.
const Wildcard = "*"

// Filter is one field:value condition. All filters of a query must
// hold for a record to match.
type Filter struct {
	Field string
	Value string
}

// Query is a parsed search expression.
type Query struct {
	Filters []Filter
	Terms   []string
}

// Record is anything a query can be evaluated against.
//
// MatchField reports (matched, known): known is false when the record
// has no field with that name, which counts as a non-match.
// MatchTerm reports whether a free term occurs in the record's
// searchable text.
type Record interface {
	MatchField(field, value string) (matched bool, known bool)
	MatchTerm(term string) bool
}

// Parse tokenizes a query string. Tokens split on unquoted whitespace;
// a double quote toggles a no-split region and is stripped from the
// token. A token whose first colon precedes any whitespace is a filter
// with a lowercased field name; everything else is a free term.
func Parse(s string) Query {
	var q Query
	for _, tok := range tokenize(s) {
		if field, value, ok := splitFilter(tok); ok {
			q.Filters = append(q.Filters, Filter{Field: field, Value: value})
		} else {
			q.Terms = append(q.Terms, tok)
		}
	}
	return q
}

// IsEmpty reports whether the query has no conditions at all.
func (q Query) IsEmpty() bool {
	return len(q.Filters) == 0 && len(q.Terms) == 0
}

// Matches evaluates the query: every filter must match (AND) and, if
// any free terms exist, at least one must match (OR).
func (q Query) Matches(r Record) bool {
	for _, f := range q.Filters {
		if f.Value == Wildcard {
			continue
		}
		matched, _ := r.MatchField(f.Field, f.Value)
		if !matched {
			return false
		}
	}

	if len(q.Terms) == 0 {
		return true
	}
	for _, t := range q.Terms {
		if t == Wildcard || r.MatchTerm(t) {
			return true
		}
	}
	return false
}

// Match is a convenience for one-shot evaluation of a raw query string.
func Match(s string, r Record) bool {
	return Parse(s).Matches(r)
}

func tokenize(s string) []string {
	var tokens []string
	var cur strings.Builder
	quoted := false
	wrote := false

	flush := func() {
		if wrote {
			tokens = append(tokens, cur.String())
			cur.Reset()
			wrote = false
		}
	}

	for _, r := range s {
		switch {
		case r == '"':
			// Quotes toggle splitting; they are not part of the token.
			quoted = !quoted
			wrote = true
		case unicode.IsSpace(r) && !quoted:
			flush()
		default:
			cur.WriteRune(r)
			wrote = true
		}
	}
	flush()
	return tokens
}

// splitFilter classifies a token. The colon must appear before any
// whitespace inside the token (whitespace can occur inside quoted
// tokens).
func splitFilter(tok string) (field, value string, ok bool) {
	colon := strings.IndexByte(tok, ':')
	if colon < 0 {
		return "", "", false
	}
	if space := strings.IndexFunc(tok, unicode.IsSpace); space >= 0 && space < colon {
		return "", "", false
	}
	return strings.ToLower(tok[:colon]), tok[colon+1:], true
}
