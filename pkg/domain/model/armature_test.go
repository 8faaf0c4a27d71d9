// 指示: miu200521358
package model

import (
	"testing"

	"github.com/miu200521358/mu_restbake/pkg/domain/mmath"
)

func TestArmatureValidatePoseDetectsMismatch(t *testing.T) {
	armature := NewArmature("Armature")
	armature.Bones = newTestBones(t, nil, "a", "b")
	if err := armature.Pose.Append(NewPoseChannel("a")); err != nil {
		t.Fatalf("append failed: %v", err)
	}
	if err := armature.Pose.Append(NewPoseChannel("x")); err != nil {
		t.Fatalf("append failed: %v", err)
	}

	if err := armature.ValidatePose(); err == nil {
		t.Fatalf("mismatched channels should fail")
	}
}

func TestArmatureEnsurePoseRebuildsChannels(t *testing.T) {
	armature := NewArmature("Armature")
	armature.Bones = newTestBones(t, nil, "a", "b")
	existing := NewPoseChannel("b")
	existing.Local.Location = mmath.NewVec3(1, 0, 0)
	_ = armature.Pose.Append(existing)
	_ = armature.Pose.Append(NewPoseChannel("orphan"))

	if err := armature.EnsurePose(); err != nil {
		t.Fatalf("ensure failed: %v", err)
	}
	if err := armature.ValidatePose(); err != nil {
		t.Fatalf("pose should be valid after ensure: %v", err)
	}
	if armature.Pose.Len() != 2 {
		t.Fatalf("channel count mismatch: got=%d", armature.Pose.Len())
	}
	b, _ := armature.Pose.GetByName("b")
	if b != existing || b.BoneIndex != 1 {
		t.Fatalf("existing channel should be kept with bone index: got=%+v", b)
	}
	a, _ := armature.Pose.GetByName("a")
	boneA, _ := armature.Bones.GetByName("a")
	if !a.PoseHead.NearEquals(boneA.Head, 1e-12) || !a.PoseTail.NearEquals(boneA.Tail, 1e-12) {
		t.Fatalf("new channel should start at rest: head=%v tail=%v", a.PoseHead, a.PoseTail)
	}
}

func TestArmatureIsEditable(t *testing.T) {
	armature := NewArmature("Armature")
	if !armature.IsEditable() {
		t.Fatalf("local armature should be editable")
	}
	armature.Linked = true
	if armature.IsEditable() {
		t.Fatalf("linked armature should not be editable")
	}
	var missing *Armature
	if missing.IsEditable() {
		t.Fatalf("nil armature should not be editable")
	}
}
