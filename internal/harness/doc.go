// Package harness provides conformance testing for lizard run
// configurations.
//
// The harness loads a run configuration, explores a fixed list of strings
// (or the configured generators), stores the run and checks assertions
// against the result as executable contract tests.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	config: ../configs/grid.yaml
//	run_id: scenario-grid
//	strings: [tttt, atta, x]
//	trace: [atta]
//	assertions:
//	  - type: outcome
//	    string: x
//	    code: UNKNOWN_SYMBOL
//	    position: 0
//	  - type: stats
//	    expect: { attempted: 3, unique_meshes: 2 }
//	  - type: stored_count
//	    table: buckets
//	    count: 2
//
// # Assertion Types
//
//   - outcome: a string ended with a failure code or "survived"
//   - stats: run counters and per-code failure counts
//   - same_bucket: strings share a feature key
//   - distinct_buckets: strings have pairwise different feature keys
//   - stored_count: rows stored for the run in a table
//
// # Deterministic Testing
//
// The harness uses:
//   - a fixed run id (testutil.FixedRunIDGenerator)
//   - a stepping wall clock (testutil.DeterministicClock)
//   - a single engine worker
//   - an in-memory SQLite database, isolated per scenario
//
// Snapshots leave out wall-clock fields and feature keys, so golden files
// only change when outcomes, grouping or traces change.
//
// # Usage
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/grid_basics.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := harness.Run(scenario)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, msg := range result.Errors {
//	    log.Println(msg)
//	}
package harness
