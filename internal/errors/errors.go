package errors

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/julianstephens/studyplan/internal/logger"
)

// Error kinds surfaced by the planner. Wrap them with fmt.Errorf("%w: ...") and
// match with errors.Is.
var (
	ErrInvalidWindow          = stderrors.New("invalid window")
	ErrInvalidStateTransition = stderrors.New("invalid state transition")
	ErrNotFound               = stderrors.New("not found")
	ErrInvalidDeadline        = stderrors.New("invalid deadline")
	ErrInvalidCheckIn         = stderrors.New("invalid check-in")
	ErrInvalidConfig          = stderrors.New("invalid config")
	ErrInvalidPlan            = stderrors.New("invalid plan")
)

// Machine-readable error codes
const (
	CodeInvalidWindow          = "invalid_window"
	CodeInvalidStateTransition = "invalid_state_transition"
	CodeNotFound               = "not_found"
	CodeInvalidDeadline        = "invalid_deadline"
	CodeInvalidCheckIn         = "invalid_check_in"
	CodeInvalidConfig          = "invalid_config"
	CodeInvalidPlan            = "invalid_plan"
	CodeInternal               = "internal"
)

var codes = []struct {
	err  error
	code string
}{
	{ErrInvalidWindow, CodeInvalidWindow},
	{ErrInvalidStateTransition, CodeInvalidStateTransition},
	{ErrNotFound, CodeNotFound},
	{ErrInvalidDeadline, CodeInvalidDeadline},
	{ErrInvalidCheckIn, CodeInvalidCheckIn},
	{ErrInvalidConfig, CodeInvalidConfig},
	{ErrInvalidPlan, CodeInvalidPlan},
}

// Code returns the machine-readable kind of err, or "internal" when it wraps none
// of the known sentinels. A nil error has no code.
func Code(err error) string {
	if err == nil {
		return ""
	}
	for _, c := range codes {
		if stderrors.Is(err, c.err) {
			return c.code
		}
	}
	return CodeInternal
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// Format formats an error message with a consistent "Error: " prefix
func Format(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Error: %v", err)
}

// Formatf formats an error message with a consistent "Error: " prefix using a format string
func Formatf(format string, args ...interface{}) string {
	return fmt.Sprintf("Error: "+format, args...)
}

// Fatal logs an error and exits the program with exit code 1
func Fatal(err error) {
	if err != nil {
		logger.Error("Command execution failed", "error", err, "code", Code(err))
		fmt.Fprintf(os.Stderr, "%s\n", Format(err))
		os.Exit(1)
	}
}

// Fatalf logs and formats an error message, then exits the program with exit code 1
func Fatalf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	logger.Error("Command execution failed", "error", msg)
	fmt.Fprintf(os.Stderr, "%s\n", Formatf(format, args...))
	os.Exit(1)
}
