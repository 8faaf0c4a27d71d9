// 指示: miu200521358
package merrors

import (
	"errors"
	"fmt"
	"testing"
)

func TestPredicatesSeeThroughWrapping(t *testing.T) {
	cause := errors.New("linked")
	cases := []struct {
		name  string
		err   error
		check func(error) bool
	}{
		{name: "precondition", err: NewPreconditionError("編集できません", cause), check: IsPreconditionError},
		{name: "empty", err: NewEmptySelectionError("Armature"), check: IsEmptySelectionError},
		{name: "degenerate", err: NewDegenerateTransformError("Bone", "特異行列です"), check: IsDegenerateTransformError},
		{name: "conflict", err: NewNameConflictError("Bone"), check: IsNameConflictError},
	}
	for _, tc := range cases {
		wrapped := fmt.Errorf("焼き込みに失敗しました: %w", tc.err)
		if !tc.check(wrapped) {
			t.Fatalf("%s: predicate should match wrapped error: %v", tc.name, wrapped)
		}
		if tc.check(cause) {
			t.Fatalf("%s: predicate should not match unrelated error", tc.name)
		}
	}
}

func TestPreconditionErrorUnwrap(t *testing.T) {
	cause := errors.New("cause")
	err := NewPreconditionError("前提条件違反", cause)
	if !errors.Is(err, cause) {
		t.Fatalf("cause should be reachable: got=%v", err)
	}
	if got, want := err.Error(), "前提条件違反: cause"; got != want {
		t.Fatalf("message mismatch: got=%s want=%s", got, want)
	}
}

func TestDegenerateTransformErrorWithBoneName(t *testing.T) {
	err := NewDegenerateTransformError("", "特異行列です").WithBoneName("Arm")
	if got, want := err.Error(), "特異行列です: Arm"; got != want {
		t.Fatalf("message mismatch: got=%s want=%s", got, want)
	}
}
