package cli

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/roach88/lizard/internal/config"
	"github.com/roach88/lizard/internal/engine"
	"github.com/roach88/lizard/internal/store"
)

// Error codes for CLI responses.
const (
	ErrCodeGeneric       = "E001" // Generic/unknown error
	ErrCodeInvalidConfig = "E002" // Configuration rejected
	ErrCodeNotFound      = "E003" // Path, run or string not found
	ErrCodeSetupFailed   = "E004" // Seed mesh or start cursor rejected
	ErrCodeStoreFailed   = "E005" // Database open/read/write error
	ErrCodeWriteFailed   = "E006" // File write error
	ErrCodeRunFailed     = "E007" // Run aborted or accounting mismatch
)

// codeFor maps an error to the CLI error code describing it.
func codeFor(err error) string {
	var cfgErr *config.Error
	switch {
	case errors.Is(err, fs.ErrNotExist), errors.Is(err, store.ErrRunNotFound):
		return ErrCodeNotFound
	case errors.As(err, &cfgErr):
		return ErrCodeInvalidConfig
	case engine.IsSetupError(err):
		return ErrCodeSetupFailed
	case engine.IsAccountingError(err):
		return ErrCodeRunFailed
	default:
		return ErrCodeGeneric
	}
}

// errorDetails extracts structured context for JSON error output.
func errorDetails(err error) map[string]any {
	var cfgErr *config.Error
	if errors.As(err, &cfgErr) {
		details := map[string]any{"field": cfgErr.Field}
		if cfgErr.Pos.IsValid() {
			details["line"] = cfgErr.Pos.Line()
		}
		return details
	}
	var rtErr *engine.RuntimeError
	if errors.As(err, &rtErr) && len(rtErr.Details) > 0 {
		details := make(map[string]any, len(rtErr.Details))
		for k, v := range rtErr.Details {
			details[k] = v
		}
		return details
	}
	return nil
}

// fail reports err through the formatter and returns the matching
// ExitError.
func fail(formatter *OutputFormatter, exitCode int, code, message string, err error) error {
	_ = formatter.Error(code, fmt.Sprintf("%s: %v", message, err), errorDetails(err))
	return WrapExitError(exitCode, fmt.Sprintf("%s: %s", code, message), err)
}

// commandError reports err as a command error (exit code 2), deriving the
// CLI code from the error.
func commandError(formatter *OutputFormatter, message string, err error) error {
	return fail(formatter, ExitCommandError, codeFor(err), message, err)
}
