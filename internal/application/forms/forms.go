// Package forms maps between HTML form values and stored entities.
//
// Each editable entity has a XToRecord function (form -> entity, with inline
// validation errors) and a XToForm function (entity -> form). Fields present
// on only one side are dropped silently.
package forms

import (
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// Errors maps a form field name to a message shown next to that input.
type Errors map[string]string

// Add records msg for field unless the field already has a message.
func (e Errors) Add(field, msg string) {
	if _, ok := e[field]; !ok {
		e[field] = msg
	}
}

// Any reports whether any field failed.
func (e Errors) Any() bool {
	return len(e) > 0
}

// Fields returns the failing field names in sorted order.
func (e Errors) Fields() []string {
	out := make([]string, 0, len(e))
	for k := range e {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func get(v url.Values, key string) string {
	return strings.TrimSpace(v.Get(key))
}

func required(v url.Values, errs Errors, key, label string) string {
	s := get(v, key)
	if s == "" {
		errs.Add(key, label+" is required.")
	}
	return s
}

// splitTags splits a comma-separated list, trimming whitespace and dropping empties.
func splitTags(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// normalizeList rewrites a comma-separated list in the canonical ", " form.
func normalizeList(s string) string {
	return strings.Join(splitTags(s), ", ")
}

// withSuffix appends suffix to a non-empty count, leaving existing suffixes alone.
func withSuffix(s, suffix string) string {
	s = strings.TrimSpace(s)
	if s == "" || strings.HasSuffix(s, suffix) {
		return s
	}
	return s + suffix
}

func withoutSuffix(s, suffix string) string {
	return strings.TrimSuffix(strings.TrimSpace(s), suffix)
}

func parsePercent(v url.Values, errs Errors, key string) int {
	raw := get(v, key)
	if raw == "" {
		errs.Add(key, "Proficiency is required.")
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 || n > 100 {
		errs.Add(key, "Proficiency must be a whole number from 0 to 100.")
		return 0
	}
	return n
}

func looksLikeEmail(s string) bool {
	at := strings.Index(s, "@")
	return at > 0 && at < len(s)-1
}
