package detect

// Config holds the stateful detector tunables. The zero value is not
// useful; start from DefaultConfig.
type Config struct {
	// ProximityCooldownTurns suppresses repeat guard-closing candidates
	// from the same guard for this many turns after it fires.
	ProximityCooldownTurns int64 `koanf:"proximity_cooldown_turns"`

	// StallPeriod fires a stalled-objective candidate every Nth
	// consecutive turn without progress.
	StallPeriod int64 `koanf:"stall_period"`

	// ThresholdFractions are the percentages of the inter-threshold gap
	// at which noise-creep fires, ascending.
	ThresholdFractions []int64 `koanf:"threshold_fractions"`
}

// DefaultConfig returns the tunables the reference engine ships with.
func DefaultConfig() Config {
	return Config{
		ProximityCooldownTurns: 3,
		StallPeriod:            3,
		ThresholdFractions:     []int64{50, 75},
	}
}

// State is the only mutable object in a detection pass. It is owned
// exclusively by one pass over one match's events: never share it
// across matches or concurrent passes, and never cache it at package
// scope - a fresh pass must start clean to reproduce identical output.
//
// Step treats State as a value: it returns a new State and leaves its
// input untouched, so a fold over turns is trivially replayable.
type State struct {
	// LastProcessedTurn enforces the once-per-turn guarantee.
	LastProcessedTurn int64

	// GuardCooldownUntil maps guard id to the first turn on which that
	// guard may fire guard-closing again.
	GuardCooldownUntil map[string]int64

	// StallTurns counts consecutive turns without a progress candidate.
	StallTurns int64

	// FiredThresholds guards noise-creep idempotence, keyed
	// "level:fraction". Including the level in the key means a level
	// change implicitly resets eligibility.
	FiredThresholds map[string]bool
}

// NewState returns a clean detector state for one pass.
func NewState() State {
	return State{
		GuardCooldownUntil: make(map[string]int64),
		FiredThresholds:    make(map[string]bool),
	}
}

// copy returns an independent State so Step can write without touching
// its input.
func (st State) copy() State {
	out := st
	out.GuardCooldownUntil = make(map[string]int64, len(st.GuardCooldownUntil))
	for k, v := range st.GuardCooldownUntil {
		out.GuardCooldownUntil[k] = v
	}
	out.FiredThresholds = make(map[string]bool, len(st.FiredThresholds))
	for k, v := range st.FiredThresholds {
		out.FiredThresholds[k] = v
	}
	return out
}
