package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/roach88/lizard/internal/engine"
	"github.com/roach88/lizard/internal/ir"
)

// Scenario defines a conformance test scenario: a configuration, the
// strings to explore with it and what the run must produce.
type Scenario struct {
	// Name uniquely identifies this scenario. It names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Config is the run configuration (.cue, .yaml or .yml).
	// Relative paths are resolved against the scenario file location.
	Config string `yaml:"config"`

	// Strings replaces the configured generators when non-empty. Repeated
	// strings count as generated but are attempted once.
	Strings []string `yaml:"strings,omitempty"`

	// Trace lists strings whose step-by-step replay is recorded in the
	// snapshot.
	Trace []string `yaml:"trace,omitempty"`

	// Assertions validate the run and the stored records.
	Assertions []Assertion `yaml:"assertions"`

	// RunID is an optional fixed run id for deterministic tests.
	// If empty, defaults to "test-run-default".
	RunID string `yaml:"run_id,omitempty"`
}

// Assertion validates one aspect of a run.
type Assertion struct {
	// Type specifies the assertion type:
	// - "outcome": String ended with Code (a failure code or "survived")
	// - "stats": run counters match Expect
	// - "same_bucket": Strings share a feature key
	// - "distinct_buckets": Strings have pairwise different feature keys
	// - "stored_count": Table holds Count rows for the run
	Type string `yaml:"type"`

	// String is the attempted string (used by outcome).
	String string `yaml:"string,omitempty"`

	// Code is the expected outcome (used by outcome) or a filter on the
	// attempts table (used by stored_count).
	Code string `yaml:"code,omitempty"`

	// Position is the expected failing symbol position (used by outcome).
	Position *int `yaml:"position,omitempty"`

	// Strings are the strings compared (used by same_bucket and
	// distinct_buckets).
	Strings []string `yaml:"strings,omitempty"`

	// Expect maps counter names to values (used by stats). Counters are
	// generated, unique, attempted, succeeded, survivors,
	// unique_meshes_pre, unique_meshes, duplicates and every failure code.
	Expect map[string]int `yaml:"expect,omitempty"`

	// Table is runs, attempts, buckets or meshes (used by stored_count).
	Table string `yaml:"table,omitempty"`

	// Count is the expected row count (used by stored_count).
	Count *int `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertOutcome         = "outcome"
	AssertStats           = "stats"
	AssertSameBucket      = "same_bucket"
	AssertDistinctBuckets = "distinct_buckets"
	AssertStoredCount     = "stored_count"
)

// Counter names accepted by stats assertions besides the failure codes.
var statCounters = []string{
	"generated", "unique", "attempted", "succeeded", "survivors",
	"unique_meshes_pre", "unique_meshes", "duplicates",
}

var storedTables = []string{"runs", "attempts", "buckets", "meshes"}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Parse YAML with strict field validation (catches typos like "assertion:" vs "assertions:")
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.Config != "" && !filepath.IsAbs(scenario.Config) {
		scenario.Config = filepath.Join(filepath.Dir(path), scenario.Config)
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

	if s.Config == "" {
		return fmt.Errorf("config is required")
	}
	if _, err := os.Stat(s.Config); os.IsNotExist(err) {
		return fmt.Errorf("config file not found: %s", s.Config)
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, str := range s.Trace {
		if str == "" {
			return fmt.Errorf("trace[%d]: empty string", i)
		}
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
	case AssertOutcome:
		if a.String == "" {
			return fmt.Errorf("assertions[%d]: string is required for outcome", index)
		}
		if !isOutcome(a.Code) {
			return fmt.Errorf("assertions[%d]: unknown outcome %q", index, a.Code)
		}
	case AssertStats:
		if len(a.Expect) == 0 {
			return fmt.Errorf("assertions[%d]: expect is required for stats", index)
		}
		for name := range a.Expect {
			if !slices.Contains(statCounters, name) && !slices.Contains(ir.FailureCodes, ir.FailureCode(name)) {
				return fmt.Errorf("assertions[%d]: unknown counter %q", index, name)
			}
		}
	case AssertSameBucket, AssertDistinctBuckets:
		if len(a.Strings) < 2 {
			return fmt.Errorf("assertions[%d]: at least two strings are required for %s", index, a.Type)
		}
	case AssertStoredCount:
		if !slices.Contains(storedTables, a.Table) {
			return fmt.Errorf("assertions[%d]: table must be one of %v", index, storedTables)
		}
		if a.Count == nil || *a.Count < 0 {
			return fmt.Errorf("assertions[%d]: non-negative count is required for stored_count", index)
		}
		if a.Code != "" && (a.Table != "attempts" || !isOutcome(a.Code)) {
			return fmt.Errorf("assertions[%d]: code filters apply to the attempts table only", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}

func isOutcome(code string) bool {
	return code == engine.OutcomeSurvived || slices.Contains(ir.FailureCodes, ir.FailureCode(code))
}
