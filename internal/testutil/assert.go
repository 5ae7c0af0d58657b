// Package testutil provides shared test assertions.
package testutil

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// AssertEqual compares got and want with cmp.Diff. Nil and empty slices are
// treated as equal.
func AssertEqual(t *testing.T, got, want interface{}, msgAndArgs ...interface{}) {
	t.Helper()
	if diff := cmp.Diff(want, got, cmpopts.EquateEmpty()); diff != "" {
		if msg := formatMessage(msgAndArgs...); msg != "" {
			t.Errorf("%s: mismatch (-want +got):\n%s", msg, diff)
		} else {
			t.Errorf("mismatch (-want +got):\n%s", diff)
		}
	}
}

// AssertSameElements compares two slices ignoring order.
func AssertSameElements[T any](t *testing.T, got, want []T, less func(a, b T) bool, msgAndArgs ...interface{}) {
	t.Helper()
	if diff := cmp.Diff(want, got, cmpopts.EquateEmpty(), cmpopts.SortSlices(less)); diff != "" {
		if msg := formatMessage(msgAndArgs...); msg != "" {
			t.Errorf("%s: mismatch (-want +got):\n%s", msg, diff)
		} else {
			t.Errorf("mismatch (-want +got):\n%s", diff)
		}
	}
}

// AssertNoError fails the test immediately if err is not nil.
func AssertNoError(t *testing.T, err error, msgAndArgs ...interface{}) {
	t.Helper()
	if err != nil {
		if msg := formatMessage(msgAndArgs...); msg != "" {
			t.Fatalf("%s: unexpected error: %v", msg, err)
		}
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertErrorIs fails if err does not wrap target.
func AssertErrorIs(t *testing.T, err, target error, msgAndArgs ...interface{}) {
	t.Helper()
	if !errors.Is(err, target) {
		if msg := formatMessage(msgAndArgs...); msg != "" {
			t.Errorf("%s: got error %v, want %v", msg, err, target)
		} else {
			t.Errorf("got error %v, want %v", err, target)
		}
	}
}

func formatMessage(msgAndArgs ...interface{}) string {
	if len(msgAndArgs) == 0 {
		return ""
	}
	if s, ok := msgAndArgs[0].(string); ok {
		if len(msgAndArgs) == 1 {
			return s
		}
		return fmt.Sprintf(s, msgAndArgs[1:]...)
	}
	return fmt.Sprintf("%v", msgAndArgs[0])
}
