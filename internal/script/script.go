// Package script loads and runs declarative scenario walkthroughs: a TOML
// file names a primitive and a list of steps to drive against it, and the
// runner narrates each transition, including expected faults.
package script

import (
	"errors"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"golang.org/x/text/unicode/norm"
)

var (
	// ErrScenarioSectionMissing indicates that [scenario] is missing.
	ErrScenarioSectionMissing = errors.New("missing [scenario]")
	// ErrUnknownPrimitive indicates an unsupported primitive name.
	ErrUnknownPrimitive = errors.New("unknown primitive")
	// ErrUnknownOp indicates an unsupported step op.
	ErrUnknownOp = errors.New("unknown op")
	// ErrUnknownHandle indicates a step referring to a handle that was
	// never bound.
	ErrUnknownHandle = errors.New("unknown handle")
	// ErrFaultMismatch indicates a step whose outcome did not match its
	// want_fault expectation.
	ErrFaultMismatch = errors.New("fault expectation not met")
)

// Step is one operation in a scenario. Handle binds the step result under a
// name; From names the handle to operate on (default "root"). WantFault
// declares that the step must fail with the given code ("GR2001", ...).
type Step struct {
	Op        string `toml:"op"`
	Handle    string `toml:"handle"`
	From      string `toml:"from"`
	Value     int64  `toml:"value"`
	WantFault string `toml:"want_fault"`
}

// Scenario is a parsed walkthrough.
type Scenario struct {
	Name      string
	Primitive string
	Value     int64
	Steps     []Step
}

type scenarioFile struct {
	Scenario struct {
		Name      string `toml:"name"`
		Primitive string `toml:"primitive"`
		Value     int64  `toml:"value"`
	} `toml:"scenario"`
	Steps []Step `toml:"step"`
}

// primitive name -> allowed ops
var opsByPrimitive = map[string]map[string]bool{
	"owner": {"get": true, "set": true, "take": true, "move": true, "drop": true},
	"rc":    {"clone": true, "drop": true, "get": true, "count": true},
	"arc":   {"clone": true, "drop": true, "get": true, "count": true},
	"cell":  {"borrow": true, "borrow_mut": true, "release": true, "get": true, "set": true},
	"mutex": {"lock": true, "unlock": true, "get": true, "set": true},
}

// Load parses and validates a scenario file.
func Load(path string) (*Scenario, error) {
	var cfg scenarioFile
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if !meta.IsDefined("scenario") {
		return nil, fmt.Errorf("%s: %w", path, ErrScenarioSectionMissing)
	}
	s := &Scenario{
		// Scenario names end up in trace labels; normalize so visually
		// identical names compare equal.
		Name:      norm.NFC.String(strings.TrimSpace(cfg.Scenario.Name)),
		Primitive: strings.ToLower(strings.TrimSpace(cfg.Scenario.Primitive)),
		Value:     cfg.Scenario.Value,
		Steps:     cfg.Steps,
	}
	if s.Name == "" {
		s.Name = "unnamed"
	}
	if err := s.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

func (s *Scenario) validate() error {
	ops, ok := opsByPrimitive[s.Primitive]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownPrimitive, s.Primitive)
	}
	for i, step := range s.Steps {
		if !ops[strings.ToLower(step.Op)] {
			return fmt.Errorf("step %d: %w: %q for primitive %q", i+1, ErrUnknownOp, step.Op, s.Primitive)
		}
	}
	return nil
}
