package errors

import (
	"errors"
	"testing"
)

func TestSentinelErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrPipeClosed", ErrPipeClosed},
		{"ErrWriteClosed", ErrWriteClosed},
		{"ErrRelayClosed", ErrRelayClosed},
		{"ErrUpstreamUnavailable", ErrUpstreamUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err == nil {
				t.Errorf("%s should not be nil", tt.name)
			}
			if tt.err.Error() == "" {
				t.Errorf("%s should have an error message", tt.name)
			}
		})
	}
}

func TestRelayError(t *testing.T) {
	baseErr := errors.New("connection reset")
	relayErr := &RelayError{
		ConnID:    "conn-123",
		Direction: "upstream",
		Err:       baseErr,
	}

	if relayErr.Error() == "" {
		t.Error("RelayError should have an error message")
	}

	if !errors.Is(relayErr, baseErr) {
		t.Error("RelayError should wrap base error")
	}
}

func TestDialError(t *testing.T) {
	baseErr := errors.New("connection refused")
	dialErr := &DialError{
		Addr: "localhost:9000",
		Err:  baseErr,
	}

	if dialErr.Error() == "" {
		t.Error("DialError should have an error message")
	}

	if !errors.Is(dialErr, baseErr) {
		t.Error("DialError should wrap base error")
	}
}

func TestIsClosed(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"pipe closed", ErrPipeClosed, true},
		{"write closed", ErrWriteClosed, true},
		{"relay closed", ErrRelayClosed, true},
		{"wrapped pipe closed", &RelayError{ConnID: "c", Direction: "up", Err: ErrPipeClosed}, true},
		{"upstream unavailable", ErrUpstreamUnavailable, false},
		{"other", errors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsClosed(tt.err); got != tt.want {
				t.Errorf("IsClosed() = %v, want %v", got, tt.want)
			}
		})
	}
}
