package harness

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"gopkg.in/yaml.v3"
)

// Scenario defines a conformance test scenario for one protocol.
type Scenario struct {
	// Name uniquely identifies this scenario; the golden file is
	// testdata/golden/{Name}.golden.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Start is the RFC 3339 instant the manual clock begins at.
	Start time.Time `yaml:"start"`

	// Protocol holds the creation parameters.
	Protocol ProtocolSpec `yaml:"protocol"`

	// Steps is the ordered list of actions to execute.
	Steps []Step `yaml:"steps"`

	// Final optionally asserts on the protocol after the last step.
	Final *FinalState `yaml:"final,omitempty"`
}

// ProtocolSpec holds protocol creation parameters.
type ProtocolSpec struct {
	IncidentID          string `yaml:"incident_id"`
	PlayerID            string `yaml:"player_id"`
	SymptomFreeRequired bool   `yaml:"symptom_free_required"`
}

// Step is one scenario action.
//
// Exactly one of Tick or Op must be set. Tick advances the manual
// clock; Op runs a protocol operation with Expect as its anticipated
// outcome ("ok" or an outcome code, see outcomes.go).
type Step struct {
	// Tick advances the clock, e.g. "23h" or "90m".
	Tick string `yaml:"tick,omitempty"`

	// Op is one of: advance, check, reset, ack, alert, eligibility.
	Op string `yaml:"op,omitempty"`

	// Expect is the anticipated outcome. Defaults to "ok".
	Expect string `yaml:"expect,omitempty"`

	// advance / reset fields
	Supervisor string `yaml:"supervisor,omitempty"`
	Notes      string `yaml:"notes,omitempty"`
	Reason     string `yaml:"reason,omitempty"`

	// check fields
	SymptomFree bool `yaml:"symptom_free,omitempty"`

	// ack fields
	AlertIndex int `yaml:"alert_index,omitempty"`

	// alert fields
	AlertType string `yaml:"alert_type,omitempty"`
	Message   string `yaml:"message,omitempty"`
	Severity  string `yaml:"severity,omitempty"`
}

// FinalState asserts on the protocol after the last step.
type FinalState struct {
	Stage        string `yaml:"stage"`
	Version      int64  `yaml:"version"`
	HistoryLen   int    `yaml:"history_len"`
	AlertCount   int    `yaml:"alert_count"`
	Acknowledged int    `yaml:"acknowledged"`
}

// LoadScenario parses a scenario YAML file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}

	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}

	if err := s.validate(); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}
	return &s, nil
}

// LoadScenarioDir loads every *.yaml scenario in a directory, sorted by
// file name for stable test order.
func LoadScenarioDir(dir string) ([]*Scenario, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)

	var scenarios []*Scenario
	for _, path := range matches {
		s, err := LoadScenario(path)
		if err != nil {
			return nil, err
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

func (s *Scenario) validate() error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Start.IsZero() {
		return fmt.Errorf("start is required")
	}
	if s.Protocol.IncidentID == "" || s.Protocol.PlayerID == "" {
		return fmt.Errorf("protocol.incident_id and protocol.player_id are required")
	}
	for i, step := range s.Steps {
		hasTick := step.Tick != ""
		hasOp := step.Op != ""
		if hasTick == hasOp {
			return fmt.Errorf("step %d: exactly one of tick or op must be set", i)
		}
		if hasTick {
			d, err := time.ParseDuration(step.Tick)
			if err != nil {
				return fmt.Errorf("step %d: bad tick %q: %w", i, step.Tick, err)
			}
			if d < 0 {
				return fmt.Errorf("step %d: tick must not be negative", i)
			}
		}
		if hasOp && !knownOps[step.Op] {
			return fmt.Errorf("step %d: unknown op %q", i, step.Op)
		}
		if step.Expect != "" && step.Expect != OutcomeOK && !knownOutcomes[step.Expect] {
			return fmt.Errorf("step %d: unknown expect %q", i, step.Expect)
		}
	}
	return nil
}

var knownOps = map[string]bool{
	"advance":     true,
	"check":       true,
	"reset":       true,
	"ack":         true,
	"alert":       true,
	"eligibility": true,
}
