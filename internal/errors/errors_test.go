package errors

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"os"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", err: nil, want: ""},
		{name: "bare sentinel", err: ErrNotFound, want: CodeNotFound},
		{name: "wrapped window", err: fmt.Errorf("%w: end before start", ErrInvalidWindow), want: CodeInvalidWindow},
		{name: "double wrapped", err: fmt.Errorf("generate: %w", fmt.Errorf("%w: bad id", ErrInvalidDeadline)), want: CodeInvalidDeadline},
		{name: "state transition", err: fmt.Errorf("%w: session s1 already done", ErrInvalidStateTransition), want: CodeInvalidStateTransition},
		{name: "check-in", err: ErrInvalidCheckIn, want: CodeInvalidCheckIn},
		{name: "config", err: ErrInvalidConfig, want: CodeInvalidConfig},
		{name: "unknown", err: stderrors.New("disk on fire"), want: CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Code(tt.err))
		})
	}
}

func TestIs(t *testing.T) {
	err := fmt.Errorf("%w: s1", ErrNotFound)
	assert.True(t, Is(err, ErrNotFound))
	assert.False(t, Is(err, ErrInvalidCheckIn))
}

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "nil error",
			err:      nil,
			expected: "",
		},
		{
			name:     "simple error",
			err:      stderrors.New("something went wrong"),
			expected: "Error: something went wrong",
		},
		{
			name:     "wrapped sentinel",
			err:      fmt.Errorf("%w: window end precedes start", ErrInvalidWindow),
			expected: "Error: invalid window: window end precedes start",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Format(tt.err))
		})
	}
}

func TestFormatf(t *testing.T) {
	assert.Equal(t, "Error: failed to load database", Formatf("failed to load %s", "database"))
	assert.Equal(t, "Error: connection to localhost:5432 failed", Formatf("connection to %s:%d failed", "localhost", 5432))
}

// TestFatal runs Fatal in a subprocess and checks the exit code and stderr
func TestFatal(t *testing.T) {
	if os.Getenv("GO_TEST_FATAL") == "1" {
		Fatal(stderrors.New("test error"))
		return
	}

	cmd := exec.Command(os.Args[0], "-test.run=^TestFatal$")
	cmd.Env = append(os.Environ(), "GO_TEST_FATAL=1")
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	var exitErr *exec.ExitError
	if assert.ErrorAs(t, err, &exitErr) {
		assert.Equal(t, 1, exitErr.ExitCode())
		assert.Contains(t, stderr.String(), "Error: test error")
	}
}

func TestFatal_NilError(t *testing.T) {
	if os.Getenv("GO_TEST_FATAL_NIL") == "1" {
		Fatal(nil)
		os.Exit(0)
	}

	cmd := exec.Command(os.Args[0], "-test.run=^TestFatal_NilError$")
	cmd.Env = append(os.Environ(), "GO_TEST_FATAL_NIL=1")
	assert.NoError(t, cmd.Run())
}
