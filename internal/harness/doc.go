// Package harness runs declarative detection scenarios for conformance
// testing.
//
// A scenario is a YAML file naming an event log (inline or on disk), a
// detector configuration, and assertions over the detected moments. The
// harness replays the log through the full pipeline (scene reduction,
// detection, collapsing, presentation ordering) and checks the
// assertions.
//
// Golden trace files pin the exact pipeline output: the trace snapshot
// is serialized with RFC 8785 canonical JSON, so any nondeterminism or
// behavior drift shows up as a byte diff. Regenerate with:
//
//	go test ./internal/harness -update
package harness
