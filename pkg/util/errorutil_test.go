package util

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitOK},
		{"probe", NewAuthProbeFailure(401, "unauthorized", nil), ExitProbeFailed},
		{"wrapped probe", fmt.Errorf("run: %w", NewAuthProbeFailure(0, "", errors.New("dial tcp"))), ExitProbeFailed},
		{"validation", NewValidationError("bad csv", nil), ExitFailure},
		{"plain", errors.New("boom"), ExitFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestToDomainErrorWrapsUnknown(t *testing.T) {
	cause := errors.New("disk full")
	de := ToDomainError(cause)
	if de.Code != "INTERNAL_ERROR" {
		t.Errorf("Code = %q, want INTERNAL_ERROR", de.Code)
	}
	if !errors.Is(de, cause) {
		t.Error("expected DomainError to unwrap to the cause")
	}
	if ToDomainError(nil) != nil {
		t.Error("ToDomainError(nil) should be nil")
	}
}

func TestAuthProbeFailureBoundsBody(t *testing.T) {
	err := NewAuthProbeFailure(500, strings.Repeat("x", 1000), nil)
	de := ToDomainError(err)
	body, _ := de.Details["body"].(string)
	if len(body) != DiagnosticLimit {
		t.Errorf("body length = %d, want %d", len(body), DiagnosticLimit)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"hello", 10, "hello"},
		{"hello", 3, "hel"},
		{"hello", 0, ""},
		{"팀이름중복", 2, "팀이"},
		{"", 5, ""},
	}
	for _, tt := range tests {
		if got := Truncate(tt.in, tt.n); got != tt.want {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}
