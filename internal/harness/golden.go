package harness

import (
	"slices"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/lizard/internal/engine"
	"github.com/roach88/lizard/internal/ir"
)

// Snapshot captures the deterministic part of a scenario execution:
// attempt outcomes, buckets in claimant order, counters and traces.
// Wall-clock fields and feature keys are left out.
type Snapshot struct {
	ScenarioName string
	Run          *engine.Result
	Traces       []engine.ReplayReport
}

// canonical converts the snapshot to IR values for canonical JSON
// serialization; ir.MarshalCanonical only handles IR types and
// primitives.
func (s *Snapshot) canonical() ir.IRObject {
	attempts := make(ir.IRArray, len(s.Run.Attempts))
	for i, a := range s.Run.Attempts {
		attempts[i] = ir.IRObject{
			"seq":      ir.IRInt(a.Seq),
			"string":   ir.IRString(a.String),
			"outcome":  ir.IRString(outcomeOf(a)),
			"position": ir.IRInt(a.Position),
		}
	}

	buckets := s.Run.Pool.Buckets()
	slices.SortFunc(buckets, func(a, b *engine.Bucket) int {
		return int(a.Claimant().Seq - b.Claimant().Seq)
	})
	bucketList := make(ir.IRArray, len(buckets))
	for i, b := range buckets {
		members := make(ir.IRArray, len(b.Members))
		for k, m := range b.Members {
			members[k] = ir.IRString(m.String)
		}
		bucketList[i] = ir.IRObject{
			"claimant": ir.IRString(b.Claimant().String),
			"members":  members,
		}
	}

	stats := s.Run.Stats
	failures := ir.IRObject{}
	for _, code := range ir.FailureCodes {
		failures[string(code)] = ir.IRInt(stats.Failures[code])
	}

	traces := make(ir.IRArray, len(s.Traces))
	for i, t := range s.Traces {
		traces[i] = canonicalReport(t)
	}

	return ir.IRObject{
		"scenario_name": ir.IRString(s.ScenarioName),
		"run_id":        ir.IRString(s.Run.RunID),
		"interrupted":   ir.IRBool(s.Run.Interrupted),
		"stats": ir.IRObject{
			"generated":         ir.IRInt(stats.Generated),
			"unique":            ir.IRInt(stats.Unique),
			"attempted":         ir.IRInt(stats.Attempted),
			"succeeded":         ir.IRInt(stats.Succeeded),
			"survivors":         ir.IRInt(stats.Survivors),
			"unique_meshes_pre": ir.IRInt(stats.UniqueMeshesPre),
			"unique_meshes":     ir.IRInt(stats.UniqueMeshes),
			"duplicates":        ir.IRInt(stats.Duplicates),
			"failures":          failures,
		},
		"attempts": attempts,
		"buckets":  bucketList,
		"traces":   traces,
	}
}

func canonicalReport(r engine.ReplayReport) ir.IRObject {
	steps := make(ir.IRArray, len(r.Steps))
	for i, st := range r.Steps {
		step := ir.IRObject{
			"position": ir.IRInt(st.Position),
			"symbol":   ir.IRString(st.Symbol),
			"rule":     ir.IRString(st.Rule),
			"tail":     ir.IRInt(st.Tail),
			"head":     ir.IRInt(st.Head),
		}
		if st.Polyedge != nil {
			polyedge := make(ir.IRArray, len(st.Polyedge))
			for k, v := range st.Polyedge {
				polyedge[k] = ir.IRInt(v)
			}
			step["polyedge"] = polyedge
		}
		if st.Mutation != "" {
			step["mutation"] = ir.IRString(st.Mutation)
		}
		steps[i] = step
	}

	obj := ir.IRObject{
		"string":   ir.IRString(r.String),
		"start":    ir.IRArray{ir.IRInt(r.Start[0]), ir.IRInt(r.Start[1])},
		"steps":    steps,
		"outcome":  ir.IRString(r.Outcome),
		"position": ir.IRInt(r.Position),
	}
	if r.Signature != "" {
		obj["signature"] = ir.IRString(r.Signature)
	}
	return obj
}

// Marshal renders the snapshot as canonical JSON.
func (s *Snapshot) Marshal() ([]byte, error) {
	return ir.MarshalCanonical(s.canonical())
}

// RunWithGolden executes a scenario and compares its snapshot against a
// golden file stored in testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns the result so callers can inspect assertion failures.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result against the golden file named
// after the scenario, without re-running it.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	snapshot := Snapshot{
		ScenarioName: scenarioName,
		Run:          result.Run,
		Traces:       result.Traces,
	}
	data, err := snapshot.Marshal()
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)

	return nil
}
