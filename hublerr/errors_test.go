package hublerr

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOfUnwrapsChain(t *testing.T) {
	base := errors.New("connection reset")
	wrapped := New(Transport, "provider.stopsNear", base)
	outer := fmt.Errorf("query.filter: %w", wrapped)

	if KindOf(outer) != Transport {
		t.Fatalf("expected Transport, got %s", KindOf(outer))
	}
}

func TestKindOfUnknownForPlainError(t *testing.T) {
	if KindOf(errors.New("boom")) != Unknown {
		t.Fatalf("expected Unknown for a plain error")
	}
}

func TestIsRetryable(t *testing.T) {
	cases := []struct {
		kind Kind
		want bool
	}{
		{Transport, true},
		{RateLimited, true},
		{NotFound, false},
		{Malformed, false},
		{Auth, false},
	}
	for _, c := range cases {
		err := New(c.kind, "op", nil)
		if got := IsRetryable(err); got != c.want {
			t.Fatalf("IsRetryable(%s) = %v, want %v", c.kind, got, c.want)
		}
	}
}

func TestErrorMessageIncludesOpAndKind(t *testing.T) {
	err := New(NotFound, "provider.timetable", errors.New("no such line"))
	msg := err.Error()
	if msg != "provider.timetable: not_found: no such line" {
		t.Fatalf("unexpected message: %s", msg)
	}
}
