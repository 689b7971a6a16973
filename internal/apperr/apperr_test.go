package apperr

import (
	"testing"

	"github.com/go-faster/errors"
)

func TestKindOf_WrappedSentinel(t *testing.T) {
	sentinel := NotFound("cart not found")
	wrapped := errors.Wrap(sentinel, "load cart 7")

	if got := KindOf(wrapped); got != KindNotFound {
		t.Fatalf("expected NOT_FOUND, got %s", got)
	}
	if !errors.Is(wrapped, sentinel) {
		t.Fatalf("expected wrapped error to match its sentinel")
	}
	if got := Message(wrapped); got != "cart not found" {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestKindOf_PlainError(t *testing.T) {
	err := errors.New("connection reset")
	if got := KindOf(err); got != KindInternal {
		t.Fatalf("expected INTERNAL, got %s", got)
	}
	if got := Message(err); got != "internal error" {
		t.Fatalf("internal errors must not leak, got %q", got)
	}
}

func TestKindStrings(t *testing.T) {
	cases := map[Kind]string{
		KindNotFound:         "NOT_FOUND",
		KindValidation:       "VALIDATION",
		KindAuthorization:    "AUTHORIZATION",
		KindInvalidCoupon:    "INVALID_COUPON",
		KindInvalidReference: "INVALID_REFERENCE",
		KindConflict:         "CONFLICT",
		KindInternal:         "INTERNAL",
	}
	for k, want := range cases {
		if k.String() != want {
			t.Errorf("kind %d: expected %s, got %s", k, want, k.String())
		}
	}
}
