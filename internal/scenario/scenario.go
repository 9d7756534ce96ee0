// internal/scenario/scenario.go
package scenario

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"
	"gopkg.in/yaml.v3"

	"github.com/xkilldash9x/embody-cli/internal/humanoid"
	"github.com/xkilldash9x/embody-cli/internal/scene"
)

// Step kinds accepted in a scenario's action list.
const (
	StepWalk  = "walk"
	StepTouch = "touch"
	StepPick  = "pick"
	StepDrop  = "drop"
)

// Scenario is a headless world description: props, an optional navigation
// grid and agents with the actions they should queue.
type Scenario struct {
	Name   string  `yaml:"name"`
	Engine Engine  `yaml:"engine,omitempty"`
	Nav    *Nav    `yaml:"nav,omitempty"`
	Props  []Prop  `yaml:"props"`
	Agents []Agent `yaml:"agents"`
}

// Engine overrides the configured frame loop for one scenario. Zero values
// keep the configuration.
type Engine struct {
	FrameRate int `yaml:"frame_rate,omitempty"`
	MaxFrames int `yaml:"max_frames,omitempty"`
}

// Nav describes a walkable grid; see locomotion.NewNavGrid for the row
// format.
type Nav struct {
	Origin   Point    `yaml:"origin"`
	CellSize float64  `yaml:"cell_size"`
	Rows     []string `yaml:"rows"`
}

type Prop struct {
	Name     string `yaml:"name"`
	Position Point  `yaml:"position"`
	Pickable bool   `yaml:"pickable,omitempty"`
	// Interactable defaults to true.
	Interactable *bool `yaml:"interactable,omitempty"`
}

func (p Prop) interactable() bool {
	return p.Interactable == nil || *p.Interactable
}

type Agent struct {
	Name     string  `yaml:"name"`
	Position Point   `yaml:"position"`
	Speed    float64 `yaml:"speed,omitempty"`
	Actions  []Step  `yaml:"actions"`
}

// Step is one queued action. Target names a prop; Effector defaults to the
// right hand.
type Step struct {
	Do          string `yaml:"do"`
	Target      string `yaml:"target,omitempty"`
	Effector    string `yaml:"effector,omitempty"`
	Destination *Point `yaml:"destination,omitempty"`
}

func (s Step) effector() (humanoid.EffectorType, error) {
	if s.Effector == "" {
		return humanoid.RightHand, nil
	}
	return humanoid.ParseEffectorType(s.Effector)
}

// Point is a world position written either as [x, y, z] or {x:, y:, z:}.
type Point struct {
	X, Y, Z float64
}

func (p Point) Vector() scene.Vector3 { return scene.Vector3{X: p.X, Y: p.Y, Z: p.Z} }

func (p *Point) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.SequenceNode:
		var xs []float64
		if err := node.Decode(&xs); err != nil {
			return err
		}
		if len(xs) != 3 {
			return fmt.Errorf("line %d: a point needs 3 coordinates, got %d", node.Line, len(xs))
		}
		p.X, p.Y, p.Z = xs[0], xs[1], xs[2]
		return nil
	case yaml.MappingNode:
		var m struct {
			X float64 `yaml:"x"`
			Y float64 `yaml:"y"`
			Z float64 `yaml:"z"`
		}
		if err := node.Decode(&m); err != nil {
			return err
		}
		p.X, p.Y, p.Z = m.X, m.Y, m.Z
		return nil
	}
	return fmt.Errorf("line %d: a point must be a sequence or a mapping", node.Line)
}

func (p Point) MarshalYAML() (any, error) {
	return []float64{p.X, p.Y, p.Z}, nil
}

func decode(data []byte) (*Scenario, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var s Scenario
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to decode scenario: %w", err)
	}
	return &s, nil
}

// Parse decodes and validates a scenario. Unknown keys are rejected.
func Parse(data []byte) (*Scenario, error) {
	s, err := decode(data)
	if err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Load reads a scenario file. A leading ~ is expanded and a missing name
// defaults to the file name without extension.
func Load(path string) (*Scenario, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return nil, fmt.Errorf("failed to expand scenario path %q: %w", path, err)
	}
	data, err := os.ReadFile(expanded)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario: %w", err)
	}

	s, err := decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", expanded, err)
	}
	if s.Name == "" {
		s.Name = strings.TrimSuffix(filepath.Base(expanded), filepath.Ext(expanded))
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scenario %s: %w", expanded, err)
	}
	return s, nil
}

// Validate checks names, references and step arguments. Every problem is
// reported, not only the first.
func (s *Scenario) Validate() error {
	var errs []error
	if s.Name == "" {
		errs = append(errs, errors.New("scenario name is required"))
	}
	if s.Engine.FrameRate < 0 || s.Engine.MaxFrames < 0 {
		errs = append(errs, errors.New("engine overrides must not be negative"))
	}
	if s.Nav != nil {
		if s.Nav.CellSize <= 0 {
			errs = append(errs, errors.New("nav.cell_size must be positive"))
		}
		if len(s.Nav.Rows) == 0 {
			errs = append(errs, errors.New("nav.rows must not be empty"))
		}
	}

	props := make(map[string]Prop, len(s.Props))
	for n, p := range s.Props {
		switch {
		case p.Name == "":
			errs = append(errs, fmt.Errorf("props[%d]: name is required", n))
		case props[p.Name].Name != "":
			errs = append(errs, fmt.Errorf("props[%d]: duplicate prop %q", n, p.Name))
		default:
			props[p.Name] = p
		}
	}

	agents := make(map[string]bool, len(s.Agents))
	for n, a := range s.Agents {
		if a.Name == "" {
			errs = append(errs, fmt.Errorf("agents[%d]: name is required", n))
		} else if agents[a.Name] {
			errs = append(errs, fmt.Errorf("agents[%d]: duplicate agent %q", n, a.Name))
		}
		agents[a.Name] = true
		if a.Speed < 0 {
			errs = append(errs, fmt.Errorf("agent %q: speed must not be negative", a.Name))
		}
		for k, step := range a.Actions {
			if err := s.validateStep(step, props); err != nil {
				errs = append(errs, fmt.Errorf("agent %q action %d: %w", a.Name, k, err))
			}
		}
	}
	return errors.Join(errs...)
}

func (s *Scenario) validateStep(step Step, props map[string]Prop) error {
	if _, err := step.effector(); err != nil {
		return err
	}
	switch step.Do {
	case StepWalk:
		if step.Destination == nil {
			return errors.New("walk needs a destination")
		}
		if s.Nav == nil {
			return errors.New("walk needs a nav grid")
		}
	case StepTouch:
		if _, ok := props[step.Target]; !ok {
			return fmt.Errorf("unknown target %q", step.Target)
		}
	case StepPick, StepDrop:
		p, ok := props[step.Target]
		if !ok {
			return fmt.Errorf("unknown target %q", step.Target)
		}
		if !p.Pickable {
			return fmt.Errorf("%s target %q is not pickable", step.Do, step.Target)
		}
		if step.Do == StepDrop && step.Destination == nil {
			return errors.New("drop needs a destination")
		}
	default:
		return fmt.Errorf("unknown action %q", step.Do)
	}
	return nil
}
