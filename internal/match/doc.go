// Package match provides the foundational event model for kibitz.
//
// This package contains the typed event log consumed by every other
// internal package. All other internal packages import match; match
// imports nothing internal. This keeps the event model the foundational
// layer with no circular dependencies.
//
// Key design constraints:
//   - NO float types anywhere - use int64 for numbers (floats break
//     cross-platform determinism of derived artifacts)
//   - Event payloads are a closed set of tagged variants; free-form
//     content (observations, adjudication detail, match outcome) uses
//     the sealed Doc tree
//   - All JSON tags use snake_case
//   - Sequence numbers (seq) only, never wall-clock timestamps, in
//     anything that feeds a hash or a golden file
package match
