package domain

import (
	"errors"
	"strings"
	"testing"
)

func TestOpErrorWrapUnwrap(t *testing.T) {
	root := errors.New("root")
	err := &OpError{
		Op:   "scan.walk",
		Kind: KindExecution,
		Path: "/tmp/x",
		Err:  root,
	}

	if !errors.Is(err, root) {
		t.Fatalf("expected errors.Is to match cause")
	}

	var got *OpError
	if !errors.As(err, &got) {
		t.Fatalf("expected errors.As to match OpError")
	}
	if got.Kind != KindExecution {
		t.Fatalf("expected kind %s", KindExecution)
	}

	msg := err.Error()
	for _, want := range []string{"scan.walk", "execution", "path=/tmp/x", "root"} {
		if !strings.Contains(msg, want) {
			t.Fatalf("expected %q in %q", want, msg)
		}
	}
}

func TestIsKind(t *testing.T) {
	err := &OpError{Op: "backup.plan", Kind: KindNotFound, Err: ErrNoMatches}

	if !IsKind(err, KindNotFound) {
		t.Fatalf("expected IsKind to match")
	}
	if IsKind(err, KindConflict) {
		t.Fatalf("expected IsKind not to match another kind")
	}
	if !errors.Is(err, ErrNoMatches) {
		t.Fatalf("expected sentinel to be reachable")
	}
	if IsKind(errors.New("plain"), KindNotFound) {
		t.Fatalf("plain errors have no kind")
	}
}

func TestKindOf_DefaultsToExecution(t *testing.T) {
	if k := KindOf(errors.New("x")); k != KindExecution {
		t.Fatalf("expected execution, got %s", k)
	}
	if k := KindOf(&OpError{Kind: KindMismatch}); k != KindMismatch {
		t.Fatalf("expected mismatch, got %s", k)
	}
}

func TestOpError_MatchesKindSentinel(t *testing.T) {
	cases := []struct {
		kind ErrorKind
		want error
	}{
		{KindNotFound, ErrNotFound},
		{KindInvalidConfig, ErrInvalidConfig},
		{KindMissingVar, ErrMissingVar},
		{KindExecution, ErrExecution},
		{KindMismatch, ErrMismatch},
	}
	for _, c := range cases {
		err := &OpError{Op: "test", Kind: c.kind, Err: errors.New("cause")}
		if !errors.Is(err, c.want) {
			t.Errorf("%s: expected errors.Is(err, %v)", c.kind, c.want)
		}
	}

	conflict := &OpError{Op: "test", Kind: KindConflict, Err: errors.New("exists")}
	if errors.Is(conflict, ErrExecution) {
		t.Fatalf("conflict must not match ErrExecution")
	}
}

func TestOpError_NilSafe(t *testing.T) {
	var e *OpError
	if e.Error() != "<nil>" {
		t.Fatalf("unexpected nil message %q", e.Error())
	}
	if e.Unwrap() != nil {
		t.Fatalf("expected nil unwrap")
	}
}
