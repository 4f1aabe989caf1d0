package authz

import (
	"errors"
	"strings"
)

// Owner is the capability that satisfies every check: shop owners
// bypass all finer-grained grants.
const Owner = "owner"

// ErrInvalidCapabilities is returned when a capability argument has a
// shape other than a single string or a list of strings, or contains
// blank entries. It is the only error HasPermission propagates.
var ErrInvalidCapabilities = errors.New("capabilities must be a string or a list of non-empty strings")

// Capabilities is a one-or-many capability request. The zero value
// means "unqualified check" and normalizes to {owner}.
type Capabilities []string

// Cap wraps a single capability string.
func Cap(c string) Capabilities { return Capabilities{c} }

// Caps wraps a list of capability strings.
func Caps(cs ...string) Capabilities { return Capabilities(cs) }

// ParseCapabilities validates a dynamically-shaped value (typically a
// decoded JSON field) into Capabilities. Accepted shapes: string,
// []string, and []any whose elements are all strings. Anything else
// fails fast with ErrInvalidCapabilities rather than being coerced.
func ParseCapabilities(v any) (Capabilities, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case string:
		return Cap(t), nil
	case []string:
		return Caps(t...), nil
	case []any:
		out := make(Capabilities, 0, len(t))
		for _, e := range t {
			s, ok := e.(string)
			if !ok {
				return nil, ErrInvalidCapabilities
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, ErrInvalidCapabilities
	}
}

// normalize produces the effective request list: default {owner} when
// empty, owner unconditionally appended (the owner-superset rule),
// duplicates removed. Blank entries are rejected.
func (c Capabilities) normalize() ([]string, error) {
	requested := []string(c)
	if len(requested) == 0 {
		requested = []string{Owner}
	}
	out := make([]string, 0, len(requested)+1)
	seen := map[string]struct{}{}
	for _, p := range append(requested, Owner) {
		if strings.TrimSpace(p) == "" {
			return nil, ErrInvalidCapabilities
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out, nil
}
