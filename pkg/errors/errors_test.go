package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestErrorFormatting(t *testing.T) {
	err := Newf(CodeAlreadyExists, "agent %q is already registered", "alpha")
	if !strings.Contains(err.Error(), "ALREADY_EXISTS") {
		t.Fatalf("expected code in message, got %q", err.Error())
	}
	if !strings.Contains(err.Error(), `"alpha"`) {
		t.Fatalf("expected agent name in message, got %q", err.Error())
	}
}

func TestUnwrap(t *testing.T) {
	cause := stderrors.New("disk full")
	err := New(CodeStorage, "writing store file", cause)
	if !stderrors.Is(err, cause) {
		t.Fatal("expected errors.Is to find the cause")
	}

	wrapped := fmt.Errorf("pipeline: %w", err)
	var re *RegistryError
	if !stderrors.As(wrapped, &re) {
		t.Fatal("expected errors.As to find RegistryError through wrapping")
	}
	if re.Code != CodeStorage {
		t.Fatalf("unexpected code %s", re.Code)
	}
}

func TestPredicates(t *testing.T) {
	if !IsAlreadyExists(Newf(CodeAlreadyExists, "dup")) {
		t.Fatal("IsAlreadyExists failed")
	}
	if !IsInvalidCard(Newf(CodeInvalidCard, "bad field")) {
		t.Fatal("IsInvalidCard failed")
	}
	if !IsFetchFailed(Newf(CodeFetchFailed, "down")) {
		t.Fatal("IsFetchFailed failed")
	}
	if IsAlreadyExists(stderrors.New("plain")) {
		t.Fatal("plain error misclassified")
	}
	if IsAlreadyExists(nil) {
		t.Fatal("nil misclassified")
	}
}

func TestStatusCodes(t *testing.T) {
	cases := map[ErrorCode]int{
		CodeNotFound:      404,
		CodeAlreadyExists: 409,
		CodeInvalidCard:   400,
		CodeFetchFailed:   502,
		CodeStorage:       500,
		CodeInternal:      500,
	}
	for code, want := range cases {
		if got := New(code, "x", nil).StatusCode; got != want {
			t.Errorf("status for %s = %d, want %d", code, got, want)
		}
	}
}

func TestAsRegistryError(t *testing.T) {
	if AsRegistryError(nil) != nil {
		t.Fatal("nil should stay nil")
	}
	re := AsRegistryError(stderrors.New("boom"))
	if re.Code != CodeInternal {
		t.Fatalf("untyped error should wrap as internal, got %s", re.Code)
	}
	original := Newf(CodeFetchFailed, "down")
	if AsRegistryError(original) != original {
		t.Fatal("typed error should pass through unchanged")
	}
}
