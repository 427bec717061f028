// Package detect derives moment candidates from a match event log.
//
// Two detector families run over one pass:
//
//   - the stateless candidate detector classifies single adjudication
//     events against static code tables (candidate.go, codes.go)
//   - the stateful detector set runs once per turn boundary and holds
//     small persistent state: cooldown timers, a stall counter, and
//     fired-threshold guards (stateful.go, state.go)
//
// The whole pass is a pure fold: State is threaded explicitly through
// an (state, turn) -> (state', candidates) transition, never cached at
// package scope. Recomputing a pass over identical input yields
// byte-identical candidates; nothing here reads a clock or an RNG.
//
// Detectors are defensive: a missing scene field, an unknown outcome
// code, or absent adjacency data produces no candidate rather than an
// error. The only failure signal a pass can emit is a warnings list.
package detect
