package engine

import "github.com/roach88/lizard/internal/mesh"

// OutcomeSurvived is the report outcome of a string that passed every stage.
const OutcomeSurvived = "survived"

// ReplayReport is the presentation form of a Replay.
type ReplayReport struct {
	String string       `json:"string"`
	Start  [2]int       `json:"start"`
	Steps  []ReportStep `json:"steps"`
	// Outcome is OutcomeSurvived or a failure code.
	Outcome    string `json:"outcome"`
	Position   int    `json:"position"`
	Message    string `json:"message,omitempty"`
	Signature  string `json:"signature,omitempty"`
	FeatureKey string `json:"feature_key,omitempty"`
}

// ReportStep is one applied rule.
type ReportStep struct {
	Position int    `json:"position"`
	Symbol   string `json:"symbol"`
	Rule     string `json:"rule"`
	Tail     int    `json:"tail"`
	Head     int    `json:"head"`
	Polyedge []int  `json:"polyedge,omitempty"`
	Mutation string `json:"mutation,omitempty"`
}

// Report flattens r for display and snapshots.
func (r Replay) Report() ReplayReport {
	rep := ReplayReport{
		String:     string(r.Record.String),
		Steps:      []ReportStep{},
		Outcome:    OutcomeSurvived,
		Position:   r.Record.Position,
		Message:    r.Record.Message,
		FeatureKey: r.Record.Key,
	}
	if !r.Record.Survived() {
		rep.Outcome = string(r.Record.Code)
	}
	if r.Mesh != nil {
		rep.Signature = r.Mesh.Signature()
	}
	if r.Trace == nil {
		return rep
	}

	rep.Start = [2]int{int(r.Trace.Start.Tail), int(r.Trace.Start.Head)}
	for _, step := range r.Trace.Steps {
		rep.Steps = append(rep.Steps, ReportStep{
			Position: step.Position,
			Symbol:   string(step.Symbol),
			Rule:     step.Rule,
			Tail:     int(step.Cursor.Tail),
			Head:     int(step.Cursor.Head),
			Polyedge: vertexInts(step.Cursor.Polyedge),
			Mutation: string(step.Mutation.Kind),
		})
	}
	return rep
}

func vertexInts(vs []mesh.VertexID) []int {
	if vs == nil {
		return nil
	}
	out := make([]int, len(vs))
	for i, v := range vs {
		out[i] = int(v)
	}
	return out
}
