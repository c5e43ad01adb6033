package store

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/lizard/internal/ir"
)

// marshalFailures converts per-code counts to canonical JSON TEXT.
// Every known code is written, zero counts included, so rows compare equal
// across runs with the same outcome.
func marshalFailures(failures map[ir.FailureCode]int) (string, error) {
	obj := make(ir.IRObject, len(ir.FailureCodes))
	for _, code := range ir.FailureCodes {
		obj[string(code)] = ir.IRInt(failures[code])
	}
	for code, n := range failures {
		obj[string(code)] = ir.IRInt(n)
	}
	data, err := ir.MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("marshal failures: %w", err)
	}
	return string(data), nil
}

// unmarshalFailures parses per-code counts.
func unmarshalFailures(data string) (map[ir.FailureCode]int, error) {
	var raw map[string]int
	if err := json.Unmarshal([]byte(data), &raw); err != nil {
		return nil, fmt.Errorf("unmarshal failures: %w", err)
	}
	out := make(map[ir.FailureCode]int, len(raw))
	for code, n := range raw {
		out[ir.FailureCode(code)] = n
	}
	return out, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
