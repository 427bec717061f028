// Package redact produces role-aware safe views of raw match events.
//
// Two composable stages: a structural private-key stripper that walks
// any payload shape, and a mode-aware gate that substitutes
// spoiler-bearing content per viewer mode. The stripper runs as stage
// one of the gate and is also exported for direct payload use.
//
// Everything here is pure: inputs are never mutated, outputs never
// alias inputs, and repeated application yields identical results.
package redact

import (
	"strings"

	"github.com/roach88/kibitz/internal/match"
)

// Visibility is the tri-state policy for the structural stripper.
type Visibility string

const (
	// VisibilityLiveSafe removes every private-prefixed key.
	VisibilityLiveSafe Visibility = "live_safe"

	// VisibilityPostMatchReveal currently behaves exactly like
	// VisibilityLiveSafe. It stays a distinct policy value so a later
	// milestone can relax it without an API change.
	VisibilityPostMatchReveal Visibility = "post_match_reveal"

	// VisibilityAlwaysFull performs a pure structural copy, no
	// stripping.
	VisibilityAlwaysFull Visibility = "always_full"
)

// DefaultPrivatePrefix is the reserved key prefix marking a payload
// field as never-for-unprivileged-viewers.
const DefaultPrivatePrefix = "private_"

// StripPolicy configures the structural stripper.
type StripPolicy struct {
	Visibility Visibility
	// Prefix overrides DefaultPrivatePrefix when non-empty.
	Prefix string
}

func (p StripPolicy) prefix() string {
	if p.Prefix != "" {
		return p.Prefix
	}
	return DefaultPrivatePrefix
}

// StripPrivate removes every key carrying the private prefix from the
// payload, at any nesting depth including inside arrays.
//
// Null, primitive, and array-only payloads pass through unchanged
// (after the recursive strip) rather than erroring. The result is a
// structurally independent copy under every policy, including
// always_full.
func StripPrivate(v match.Doc, pol StripPolicy) match.Doc {
	if pol.Visibility == VisibilityAlwaysFull {
		return match.CloneDoc(v)
	}
	return strip(v, pol.prefix())
}

// StripPrivateObject is StripPrivate specialized to object payloads,
// preserving the DocObject type for callers that have one.
func StripPrivateObject(obj match.DocObject, pol StripPolicy) match.DocObject {
	if obj == nil {
		return nil
	}
	out, _ := StripPrivate(obj, pol).(match.DocObject)
	return out
}

func strip(v match.Doc, prefix string) match.Doc {
	switch val := v.(type) {
	case match.DocObject:
		out := make(match.DocObject, len(val))
		for k, elem := range val {
			if strings.HasPrefix(k, prefix) {
				continue
			}
			out[k] = strip(elem, prefix)
		}
		return out
	case match.DocArray:
		out := make(match.DocArray, len(val))
		for i, elem := range val {
			out[i] = strip(elem, prefix)
		}
		return out
	default:
		// Null and primitives pass through; they carry no keys.
		return val
	}
}

// strippedAny reports whether the strip removed at least one key, and
// countKeys counts an object's top-level keys. The gate uses both to
// distinguish "fully private" from "partially private" observations.
func strippedAny(before, after match.Doc) bool {
	return countKeysDeep(before) != countKeysDeep(after)
}

func countKeysDeep(v match.Doc) int {
	switch val := v.(type) {
	case match.DocObject:
		n := len(val)
		for _, elem := range val {
			n += countKeysDeep(elem)
		}
		return n
	case match.DocArray:
		n := 0
		for _, elem := range val {
			n += countKeysDeep(elem)
		}
		return n
	default:
		return 0
	}
}
