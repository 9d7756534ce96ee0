// internal/scenario/report.go
package scenario

import (
	"fmt"
	"io"

	json "github.com/json-iterator/go"

	"github.com/xkilldash9x/embody-cli/internal/action"
	"github.com/xkilldash9x/embody-cli/internal/scene"
)

// Report summarises one scenario run.
type Report struct {
	Scenario string        `json:"scenario"`
	Frames   int           `json:"frames"`
	Finished bool          `json:"finished"`
	Error    string        `json:"error,omitempty"`
	Agents   []AgentReport `json:"agents"`
	Props    []PropReport  `json:"props"`
}

type AgentReport struct {
	Name     string         `json:"name"`
	Position [3]float64     `json:"position"`
	Actions  []ActionReport `json:"actions"`
	// Pending counts actions that never ran.
	Pending int `json:"pending"`
}

type ActionReport struct {
	ID    string `json:"id"`
	Kind  string `json:"kind"`
	State string `json:"state"`
	Code  string `json:"code,omitempty"`
	Log   string `json:"log,omitempty"`
	// Fallback is the nearest reachable point of a walk that stopped short.
	Fallback *[3]float64 `json:"fallback,omitempty"`
}

type PropReport struct {
	Name     string     `json:"name"`
	Position [3]float64 `json:"position"`
	Carried  bool       `json:"carried"`
	Parent   string     `json:"parent,omitempty"`
}

func triple(v scene.Vector3) [3]float64 { return [3]float64{v.X, v.Y, v.Z} }

func actionReport(a action.Action) ActionReport {
	r := ActionReport{
		ID:    a.ID(),
		Kind:  string(a.Kind()),
		State: a.State().String(),
		Code:  string(a.Code()),
		Log:   a.Log(),
	}
	if w, ok := a.(*action.Walk); ok {
		if p, ok := w.Fallback(); ok {
			t := triple(p)
			r.Fallback = &t
		}
	}
	return r
}

// Report snapshots the world after a run of frames that ended with runErr.
func (w *World) Report(frames int, runErr error) *Report {
	r := &Report{
		Scenario: w.Scenario.Name,
		Frames:   frames,
		Finished: runErr == nil,
	}
	if runErr != nil {
		r.Error = runErr.Error()
	}

	for _, ent := range w.Engine.Entities() {
		ar := AgentReport{Name: ent.Name, Actions: []ActionReport{}}
		if ent.Walker != nil {
			ar.Position = triple(ent.Walker.Body().Position())
		} else {
			ar.Position = triple(ent.Interactions.Registry().Root().Position())
		}
		for _, a := range ent.Agent.Archive() {
			ar.Actions = append(ar.Actions, actionReport(a))
		}
		if cur := ent.Agent.Current(); cur != nil {
			ar.Actions = append(ar.Actions, actionReport(cur))
		}
		ar.Pending = len(ent.Agent.Pending())
		r.Agents = append(r.Agents, ar)
	}

	for _, p := range w.Scenario.Props {
		prop := w.props[p.Name]
		pr := PropReport{Name: p.Name, Position: triple(prop.InteractionPoint())}
		if item, ok := w.items[p.Name]; ok {
			pr.Carried = item.IsBeingCarried()
		}
		if parent := prop.Transform().Parent(); parent != nil {
			pr.Parent = parent.Name()
		}
		r.Props = append(r.Props, pr)
	}
	return r
}

// Encode writes r as JSON, indented when pretty is set.
func (r *Report) Encode(out io.Writer, pretty bool) error {
	var (
		data []byte
		err  error
	)
	if pretty {
		data, err = json.MarshalIndent(r, "", "  ")
	} else {
		data, err = json.Marshal(r)
	}
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	data = append(data, '\n')
	_, err = out.Write(data)
	return err
}

// DecodeReport reads a report written by Encode.
func DecodeReport(data []byte) (*Report, error) {
	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to decode report: %w", err)
	}
	return &r, nil
}
