package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario defines a conformance test scenario: an event log plus
// assertions over the detection pipeline's output.
type Scenario struct {
	// Name uniquely identifies this scenario. It doubles as the golden
	// file name.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Config overrides the default detector configuration. Absent
	// fields keep their defaults.
	Config *ConfigOverrides `yaml:"config,omitempty"`

	// Events is the inline event log, one object per event in the wire
	// format. Exactly one of Events and EventsFile must be set.
	Events []map[string]any `yaml:"events,omitempty"`

	// EventsFile is a path to a JSON event log, relative to the
	// scenario file unless absolute.
	EventsFile string `yaml:"events_file,omitempty"`

	// Assertions validate the pipeline output.
	// Supported types: moments_order, ranked_order, moment_count, card_count
	Assertions []Assertion `yaml:"assertions"`
}

// ConfigOverrides mirrors the detector tunables a scenario may pin.
// Pointer fields distinguish "absent" from zero.
type ConfigOverrides struct {
	ProximityCooldownTurns *int64  `yaml:"proximity_cooldown_turns,omitempty"`
	StallPeriod            *int64  `yaml:"stall_period,omitempty"`
	ThresholdFractions     []int64 `yaml:"threshold_fractions,omitempty"`
}

// Assertion validates one aspect of the pipeline output.
type Assertion struct {
	// Type specifies the assertion type:
	// - "moments_order": collapsed cards carry these ids, chronologically
	// - "ranked_order": presentation-ordered cards carry these ids
	// - "moment_count": the id appears exactly Count times among candidates
	// - "card_count": exactly Count collapsed cards exist
	Type string `yaml:"type"`

	// ID is the taxonomy id (used by moment_count).
	ID string `yaml:"id,omitempty"`

	// IDs is the expected id sequence (used by moments_order, ranked_order).
	IDs []string `yaml:"ids,omitempty"`

	// Count is the expected occurrence count (used by moment_count, card_count).
	Count int `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertMomentsOrder = "moments_order"
	AssertRankedOrder  = "ranked_order"
	AssertMomentCount  = "moment_count"
	AssertCardCount    = "card_count"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed, contains
// unknown fields (typos), or is missing required fields. A relative
// events_file resolves against the scenario file's directory.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.EventsFile != "" && !filepath.IsAbs(scenario.EventsFile) {
		scenario.EventsFile = filepath.Join(filepath.Dir(path), scenario.EventsFile)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Events) == 0 && s.EventsFile == "" {
		return fmt.Errorf("either events or events_file is required")
	}
	if len(s.Events) > 0 && s.EventsFile != "" {
		return fmt.Errorf("events and events_file are mutually exclusive")
	}

	if s.EventsFile != "" {
		if _, err := os.Stat(s.EventsFile); os.IsNotExist(err) {
			return fmt.Errorf("events file not found: %s", s.EventsFile)
		}
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertMomentsOrder, AssertRankedOrder:
		if len(a.IDs) == 0 {
			return fmt.Errorf("assertions[%d]: ids list is required for %s", index, a.Type)
		}
	case AssertMomentCount:
		if a.ID == "" {
			return fmt.Errorf("assertions[%d]: id is required for moment_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for moment_count", index)
		}
	case AssertCardCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for card_count", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
