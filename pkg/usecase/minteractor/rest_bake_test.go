// 指示: miu200521358
package minteractor

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/miu200521358/mu_restbake/pkg/domain/mmath"
	"github.com/miu200521358/mu_restbake/pkg/domain/model"
	"github.com/miu200521358/mu_restbake/pkg/domain/model/merrors"
	"github.com/miu200521358/mu_restbake/pkg/domain/pose"
	"github.com/miu200521358/mu_restbake/pkg/shared/base/logging"
)

type testBoneDef struct {
	name   string
	parent string
	head   mmath.Vec3
	tail   mmath.Vec3
	flag   model.BoneFlag
}

func vec3(x, y, z float64) mmath.Vec3 {
	return mmath.NewVec3(x, y, z)
}

// newTestArmature はボーン定義からポーズ付きアーマチュアを生成する。
func newTestArmature(t *testing.T, defs ...testBoneDef) *model.Armature {
	t.Helper()
	armature := model.NewArmature("Armature")
	for _, def := range defs {
		bone := model.NewBone(def.name, def.head, def.tail)
		bone.Flag = def.flag
		if def.parent != "" {
			parent, err := armature.Bones.GetByName(def.parent)
			if err != nil {
				t.Fatalf("parent missing: %s", def.parent)
			}
			bone.ParentIndex = parent.Index
		}
		if err := armature.Bones.Append(bone); err != nil {
			t.Fatalf("append bone failed: %v", err)
		}
	}
	if err := armature.EnsurePose(); err != nil {
		t.Fatalf("ensure pose failed: %v", err)
	}
	return armature
}

func evaluateTestArmature(t *testing.T, armature *model.Armature) {
	t.Helper()
	if err := pose.NewEvaluator().Evaluate(armature); err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}
}

func testChannel(t *testing.T, armature *model.Armature, name string) *model.PoseChannel {
	t.Helper()
	channel, ok := armature.Pose.GetByName(name)
	if !ok {
		t.Fatalf("channel missing: %s", name)
	}
	return channel
}

func testBone(t *testing.T, armature *model.Armature, name string) *model.Bone {
	t.Helper()
	bone, err := armature.Bones.GetByName(name)
	if err != nil {
		t.Fatalf("bone missing: %s", name)
	}
	return bone
}

func rotation(angle float64, axis mgl64.Vec3) mgl64.Quat {
	return mgl64.QuatRotate(angle, axis)
}

type poseSnapshot struct {
	head        mmath.Vec3
	tail        mmath.Vec3
	orientation mgl64.Mat4
}

// snapshotPose はボーンごとの頭・末端・正規化した向きを記録する。
func snapshotPose(t *testing.T, armature *model.Armature) map[string]poseSnapshot {
	t.Helper()
	snapshots := make(map[string]poseSnapshot, armature.Pose.Len())
	for _, channel := range armature.Pose.Values() {
		normalized, _ := mmath.NormalizeMat4(channel.PoseMatrix)
		snapshots[channel.Name] = poseSnapshot{
			head:        channel.PoseHead,
			tail:        channel.PoseTail,
			orientation: mmath.WithTranslation(normalized, mmath.ZERO_VEC3),
		}
	}
	return snapshots
}

func assertPosePreserved(t *testing.T, before, after map[string]poseSnapshot, names ...string) {
	t.Helper()
	for _, name := range names {
		want := before[name]
		got := after[name]
		if !got.head.NearEquals(want.head, 1e-6) {
			t.Fatalf("head moved: bone=%s got=%v want=%v", name, got.head, want.head)
		}
		if !got.tail.NearEquals(want.tail, 1e-6) {
			t.Fatalf("tail moved: bone=%s got=%v want=%v", name, got.tail, want.tail)
		}
		if !mmath.Mat4NearEquals(got.orientation, want.orientation, 1e-6) {
			t.Fatalf("orientation changed: bone=%s got=%v want=%v", name, got.orientation, want.orientation)
		}
	}
}

type restSnapshot struct {
	head  mmath.Vec3
	tail  mmath.Vec3
	roll  float64
	flag  model.BoneFlag
	local model.PoseTransform
}

func snapshotRest(t *testing.T, armature *model.Armature) map[string]restSnapshot {
	t.Helper()
	snapshots := make(map[string]restSnapshot, armature.Bones.Len())
	for _, bone := range armature.Bones.Values() {
		snapshots[bone.Name] = restSnapshot{
			head:  bone.Head,
			tail:  bone.Tail,
			roll:  bone.Roll,
			flag:  bone.Flag,
			local: testChannel(t, armature, bone.Name).Local,
		}
	}
	return snapshots
}

func assertRestUnchanged(t *testing.T, before map[string]restSnapshot, armature *model.Armature) {
	t.Helper()
	after := snapshotRest(t, armature)
	for name, want := range before {
		got := after[name]
		if !got.head.NearEquals(want.head, 0) || !got.tail.NearEquals(want.tail, 0) || got.roll != want.roll || got.flag != want.flag {
			t.Fatalf("bone should not be mutated: bone=%s got=%+v want=%+v", name, got, want)
		}
		if !got.local.Location.NearEquals(want.local.Location, 0) ||
			!got.local.Scale.NearEquals(want.local.Scale, 0) ||
			got.local.Quaternion != want.local.Quaternion {
			t.Fatalf("channel should not be mutated: bone=%s got=%+v want=%+v", name, got.local, want.local)
		}
	}
}

func newChainDefs() []testBoneDef {
	return []testBoneDef{
		{name: "root", head: vec3(0, 0, 0), tail: vec3(0, 1, 0)},
		{name: "child", parent: "root", head: vec3(0, 1, 0), tail: vec3(0, 2, 0)},
		{name: "grandchild", parent: "child", head: vec3(0, 2, 0), tail: vec3(0, 3, 0)},
	}
}

func TestBakeAllMovesRestToPose(t *testing.T) {
	armature := newTestArmature(t, testBoneDef{name: "root", head: vec3(0, 0, 0), tail: vec3(0, 1, 0)})
	channel := testChannel(t, armature, "root")
	channel.Local.Location = vec3(1, 0, 0)
	evaluateTestArmature(t, armature)

	uc := NewRestBakeUsecase(RestBakeUsecaseDeps{})
	result, err := uc.Bake(BakeRequest{Armature: armature, Mode: BAKE_MODE_ALL})
	if err != nil {
		t.Fatalf("bake failed: %v", err)
	}

	bone := testBone(t, armature, "root")
	if !bone.Head.NearEquals(vec3(1, 0, 0), 1e-9) {
		t.Fatalf("head mismatch: got=%v", bone.Head)
	}
	if !bone.Tail.NearEquals(vec3(1, 1, 0), 1e-9) {
		t.Fatalf("tail mismatch: got=%v", bone.Tail)
	}
	if !channel.Local.Location.NearEquals(mmath.ZERO_VEC3, 1e-12) {
		t.Fatalf("location should be cleared: got=%v", channel.Local.Location)
	}
	if !bone.Flag.Has(model.BONE_FLAG_UNKEYED) {
		t.Fatalf("bone should be marked unkeyed")
	}
	if len(result.BakedBoneNames) != 1 || result.BakedBoneNames[0] != "root" {
		t.Fatalf("baked bones mismatch: got=%v", result.BakedBoneNames)
	}
	if result.BakeID == "" {
		t.Fatalf("bake id should be assigned")
	}
	if !channel.PoseHead.NearEquals(vec3(1, 0, 0), 1e-9) {
		t.Fatalf("re-evaluated head mismatch: got=%v", channel.PoseHead)
	}
}

func TestBakeAllKeepsPoseAndIsIdempotent(t *testing.T) {
	armature := newTestArmature(t, newChainDefs()...)
	testChannel(t, armature, "root").Local.Quaternion = rotation(0.4, mgl64.Vec3{0, 0, 1})
	child := testChannel(t, armature, "child")
	child.Local.Quaternion = rotation(0.7, mgl64.Vec3{1, 0, 0})
	child.Local.Location = vec3(0.2, 0, -0.1)
	grandchild := testChannel(t, armature, "grandchild")
	grandchild.Local.RotationMode = model.ROTATION_MODE_EULER
	grandchild.Local.Euler = vec3(0.1, 0.2, 0.3)
	evaluateTestArmature(t, armature)
	before := snapshotPose(t, armature)

	uc := NewRestBakeUsecase(RestBakeUsecaseDeps{})
	if _, err := uc.Bake(BakeRequest{Armature: armature, Mode: BAKE_MODE_ALL}); err != nil {
		t.Fatalf("bake failed: %v", err)
	}
	assertPosePreserved(t, before, snapshotPose(t, armature), "root", "child", "grandchild")
	for _, channel := range armature.Pose.Values() {
		if !channel.Local.IsIdentity(1e-12) {
			t.Fatalf("channel should be identity after bake: bone=%s local=%+v", channel.Name, channel.Local)
		}
	}

	first := snapshotRest(t, armature)
	if _, err := uc.Bake(BakeRequest{Armature: armature, Mode: BAKE_MODE_ALL}); err != nil {
		t.Fatalf("second bake failed: %v", err)
	}
	second := snapshotRest(t, armature)
	for name, want := range first {
		got := second[name]
		if !got.head.NearEquals(want.head, 1e-9) || !got.tail.NearEquals(want.tail, 1e-9) || math.Abs(got.roll-want.roll) > 1e-9 {
			t.Fatalf("second bake should not change rest: bone=%s got=%+v want=%+v", name, got, want)
		}
	}
}

func TestBakeAllKeepsRollOfZeroLengthBone(t *testing.T) {
	armature := newTestArmature(t, testBoneDef{name: "point", head: vec3(0, 1, 0), tail: vec3(0, 1, 0)})
	testBone(t, armature, "point").Roll = 0.7
	testChannel(t, armature, "point").Local.Location = vec3(0, 2, 0)
	evaluateTestArmature(t, armature)

	uc := NewRestBakeUsecase(RestBakeUsecaseDeps{})
	result, err := uc.Bake(BakeRequest{Armature: armature, Mode: BAKE_MODE_ALL})
	if err != nil {
		t.Fatalf("bake failed: %v", err)
	}
	bone := testBone(t, armature, "point")
	if bone.Roll != 0.7 {
		t.Fatalf("roll should be kept: got=%f", bone.Roll)
	}
	if !bone.Head.NearEquals(vec3(0, 3, 0), 1e-9) {
		t.Fatalf("head mismatch: got=%v", bone.Head)
	}
	if !result.HasWarning(model.BakeWarningZeroLengthBone) {
		t.Fatalf("zero length warning missing: got=%v", result.Warnings)
	}
}

func TestBakeSelectedCompensatesUnselectedChild(t *testing.T) {
	armature := newTestArmature(t,
		testBoneDef{name: "R", head: vec3(0, 0, 0), tail: vec3(0, 1, 0)},
		testBoneDef{name: "C", parent: "R", head: vec3(0, 1, 0), tail: vec3(0, 2, 0)},
	)
	root := testChannel(t, armature, "R")
	root.Local.Scale = vec3(2, 2, 2)
	root.Selected = true
	evaluateTestArmature(t, armature)
	before := snapshotPose(t, armature)

	uc := NewRestBakeUsecase(RestBakeUsecaseDeps{})
	result, err := uc.Bake(BakeRequest{Armature: armature, Mode: BAKE_MODE_SELECTED})
	if err != nil {
		t.Fatalf("bake failed: %v", err)
	}

	if !root.Local.IsIdentity(1e-12) {
		t.Fatalf("selected channel should be identity: got=%+v", root.Local)
	}
	if got := testBone(t, armature, "R").Tail; !got.NearEquals(vec3(0, 2, 0), 1e-9) {
		t.Fatalf("selected tail should include scale: got=%v", got)
	}
	child := testBone(t, armature, "C")
	if !child.Head.NearEquals(vec3(0, 2, 0), 1e-9) {
		t.Fatalf("child head mismatch: got=%v", child.Head)
	}
	if child.Flag.Has(model.BONE_FLAG_UNKEYED) {
		t.Fatalf("unselected child should not be marked unkeyed")
	}
	after := snapshotPose(t, armature)
	if !after["C"].head.NearEquals(before["C"].head, 1e-9) || !after["C"].tail.NearEquals(before["C"].tail, 1e-9) {
		t.Fatalf("child world placement changed: got=%+v want=%+v", after["C"], before["C"])
	}
	if len(result.AdjustedBoneNames) != 1 || result.AdjustedBoneNames[0] != "C" {
		t.Fatalf("adjusted bones mismatch: got=%v", result.AdjustedBoneNames)
	}
}

func TestBakeSelectedPreservesDescendantWorldPose(t *testing.T) {
	armature := newTestArmature(t, newChainDefs()...)
	root := testChannel(t, armature, "root")
	root.Local.Quaternion = rotation(0.4, mgl64.Vec3{0, 0, 1})
	root.Local.Location = vec3(0.5, 0, 0)
	root.Selected = true
	child := testChannel(t, armature, "child")
	child.Local.Location = vec3(0.3, 0, 0.2)
	child.Local.Quaternion = rotation(0.5, mgl64.Vec3{1, 0, 0})
	testChannel(t, armature, "grandchild").Local.Quaternion = rotation(0.3, mgl64.Vec3{0, 1, 0})
	evaluateTestArmature(t, armature)
	before := snapshotPose(t, armature)

	uc := NewRestBakeUsecase(RestBakeUsecaseDeps{})
	if _, err := uc.Bake(BakeRequest{Armature: armature, Mode: BAKE_MODE_SELECTED}); err != nil {
		t.Fatalf("bake failed: %v", err)
	}
	assertPosePreserved(t, before, snapshotPose(t, armature), "root", "child", "grandchild")
	if !child.Local.Location.NearEquals(vec3(0.3, 0, 0.2), 1e-9) {
		t.Fatalf("child location should be expressed in new rest frame: got=%v", child.Local.Location)
	}
}

// newScaledRootArmature は拡大・回転した選択ルートと、位置を持つ非選択の子を生成する。
func newScaledRootArmature(t *testing.T, childFlag model.BoneFlag) *model.Armature {
	t.Helper()
	defs := newChainDefs()
	defs[1].flag = childFlag
	armature := newTestArmature(t, defs...)
	root := testChannel(t, armature, "root")
	root.Local.Scale = vec3(2, 2, 2)
	root.Local.Quaternion = rotation(0.4, mgl64.Vec3{0, 0, 1})
	root.Selected = true
	testChannel(t, armature, "child").Local.Location = vec3(0.3, 0.1, 0.2)
	evaluateTestArmature(t, armature)
	return armature
}

func TestBakeSelectedRewritesChildLocationUnderScaledParent(t *testing.T) {
	armature := newScaledRootArmature(t, 0)
	before := snapshotPose(t, armature)

	uc := NewRestBakeUsecase(RestBakeUsecaseDeps{})
	if _, err := uc.Bake(BakeRequest{Armature: armature, Mode: BAKE_MODE_SELECTED}); err != nil {
		t.Fatalf("bake failed: %v", err)
	}
	after := snapshotPose(t, armature)
	for _, name := range []string{"child", "grandchild"} {
		if !after[name].head.NearEquals(before[name].head, 1e-6) || !after[name].tail.NearEquals(before[name].tail, 1e-6) {
			t.Fatalf("world placement changed: bone=%s got=%+v want=%+v", name, after[name], before[name])
		}
	}
	child := testChannel(t, armature, "child")
	if !child.Local.Location.NearEquals(vec3(0.6, 0.2, 0.4), 1e-6) {
		t.Fatalf("child location should absorb parent scale: got=%v", child.Local.Location)
	}
}

func TestBakeSelectedKeepsNoLocalLocationChildInPlace(t *testing.T) {
	armature := newScaledRootArmature(t, model.BONE_FLAG_NO_LOCAL_LOCATION)
	before := snapshotPose(t, armature)

	uc := NewRestBakeUsecase(RestBakeUsecaseDeps{})
	if _, err := uc.Bake(BakeRequest{Armature: armature, Mode: BAKE_MODE_SELECTED}); err != nil {
		t.Fatalf("bake failed: %v", err)
	}
	after := snapshotPose(t, armature)
	for _, name := range []string{"child", "grandchild"} {
		if !after[name].head.NearEquals(before[name].head, 1e-6) || !after[name].tail.NearEquals(before[name].tail, 1e-6) {
			t.Fatalf("world placement changed: bone=%s got=%+v want=%+v", name, after[name], before[name])
		}
	}
	child := testChannel(t, armature, "child")
	if !child.Local.Location.NearEquals(vec3(0.6, 0.2, 0.4), 1e-6) {
		t.Fatalf("child location should be expressed in parent rest orientation: got=%v", child.Local.Location)
	}
}

func TestBakeSelectedSnapsSelectedChildUnderPosedParent(t *testing.T) {
	armature := newTestArmature(t, newChainDefs()...)
	testChannel(t, armature, "root").Local.Quaternion = rotation(-0.6, mgl64.Vec3{0, 0, 1})
	child := testChannel(t, armature, "child")
	child.Local.Quaternion = rotation(0.8, mgl64.Vec3{1, 0, 0})
	child.Local.Location = vec3(0, 0.2, 0.4)
	child.Selected = true
	evaluateTestArmature(t, armature)
	before := snapshotPose(t, armature)
	rootRest := testBone(t, armature, "root").RestMatrix()

	uc := NewRestBakeUsecase(RestBakeUsecaseDeps{})
	result, err := uc.Bake(BakeRequest{Armature: armature, Mode: BAKE_MODE_SELECTED})
	if err != nil {
		t.Fatalf("bake failed: %v", err)
	}
	if !child.Local.IsIdentity(1e-12) {
		t.Fatalf("selected channel should be identity: got=%+v", child.Local)
	}
	if !mmath.Mat4NearEquals(testBone(t, armature, "root").RestMatrix(), rootRest, 1e-12) {
		t.Fatalf("unselected parent rest should not change")
	}
	assertPosePreserved(t, before, snapshotPose(t, armature), "root", "child", "grandchild")
	if len(result.BakedBoneNames) != 1 || len(result.AdjustedBoneNames) != 1 || result.AdjustedBoneNames[0] != "grandchild" {
		t.Fatalf("bake scope mismatch: baked=%v adjusted=%v", result.BakedBoneNames, result.AdjustedBoneNames)
	}
}

func TestBakeSelectedSiblingOrderDoesNotMatter(t *testing.T) {
	build := func(order []string) *model.Armature {
		defs := map[string]testBoneDef{
			"A": {name: "A", parent: "R", head: vec3(0.5, 1, 0), tail: vec3(1, 2, 0)},
			"B": {name: "B", parent: "R", head: vec3(-0.5, 1, 0), tail: vec3(-1, 2, 0.5)},
		}
		all := []testBoneDef{{name: "R", head: vec3(0, 0, 0), tail: vec3(0, 1, 0)}}
		for _, name := range order {
			all = append(all, defs[name])
		}
		armature := newTestArmature(t, all...)
		root := testChannel(t, armature, "R")
		root.Local.Quaternion = rotation(0.9, mgl64.Vec3{0, 1, 1}.Normalize())
		root.Selected = true
		testChannel(t, armature, "A").Local.Location = vec3(0.1, 0.2, 0.3)
		b := testChannel(t, armature, "B")
		b.Local.Location = vec3(-0.2, 0, 0.1)
		b.Selected = true
		evaluateTestArmature(t, armature)
		return armature
	}

	first := build([]string{"A", "B"})
	second := build([]string{"B", "A"})
	uc := NewRestBakeUsecase(RestBakeUsecaseDeps{})
	for _, armature := range []*model.Armature{first, second} {
		if _, err := uc.Bake(BakeRequest{Armature: armature, Mode: BAKE_MODE_SELECTED}); err != nil {
			t.Fatalf("bake failed: %v", err)
		}
	}
	firstRest := snapshotRest(t, first)
	secondRest := snapshotRest(t, second)
	for name, want := range firstRest {
		got := secondRest[name]
		if !got.head.NearEquals(want.head, 1e-12) || !got.tail.NearEquals(want.tail, 1e-12) || math.Abs(got.roll-want.roll) > 1e-12 {
			t.Fatalf("sibling order changed rest: bone=%s got=%+v want=%+v", name, got, want)
		}
		if !got.local.Location.NearEquals(want.local.Location, 1e-12) {
			t.Fatalf("sibling order changed location: bone=%s got=%v want=%v", name, got.local.Location, want.local.Location)
		}
	}
}

func TestBakeSelectedRejectsEmptySelection(t *testing.T) {
	armature := newTestArmature(t, newChainDefs()...)
	testChannel(t, armature, "root").Local.Location = vec3(1, 0, 0)
	evaluateTestArmature(t, armature)
	before := snapshotRest(t, armature)

	uc := NewRestBakeUsecase(RestBakeUsecaseDeps{})
	_, err := uc.Bake(BakeRequest{Armature: armature, Mode: BAKE_MODE_SELECTED})
	if !merrors.IsEmptySelectionError(err) {
		t.Fatalf("empty selection should be rejected: got=%v", err)
	}
	assertRestUnchanged(t, before, armature)
}

func TestBakeSelectedRejectsDegenerateParentWithoutMutation(t *testing.T) {
	armature := newTestArmature(t,
		testBoneDef{name: "other", head: vec3(2, 0, 0), tail: vec3(2, 1, 0)},
		testBoneDef{name: "R", head: vec3(0, 0, 0), tail: vec3(0, 1, 0)},
		testBoneDef{name: "C", parent: "R", head: vec3(0, 1, 0), tail: vec3(0, 2, 0)},
	)
	other := testChannel(t, armature, "other")
	other.Local.Location = vec3(0, 0, 1)
	other.Selected = true
	testChannel(t, armature, "R").Local.Scale = vec3(0, 1, 1)
	child := testChannel(t, armature, "C")
	child.Local.Location = vec3(0, 0, 1)
	child.Selected = true
	evaluateTestArmature(t, armature)
	before := snapshotRest(t, armature)

	uc := NewRestBakeUsecase(RestBakeUsecaseDeps{})
	_, err := uc.Bake(BakeRequest{Armature: armature, Mode: BAKE_MODE_SELECTED})
	if !merrors.IsDegenerateTransformError(err) {
		t.Fatalf("singular parent should be rejected: got=%v", err)
	}
	var degenerate *merrors.DegenerateTransformError
	if !errors.As(err, &degenerate) || degenerate.BoneName != "C" {
		t.Fatalf("error should name the failing bone: got=%v", err)
	}
	assertRestUnchanged(t, before, armature)
}

func TestBakeRejectsInvalidTargets(t *testing.T) {
	uc := NewRestBakeUsecase(RestBakeUsecaseDeps{})
	if _, err := uc.Bake(BakeRequest{}); !merrors.IsPreconditionError(err) {
		t.Fatalf("nil armature should be precondition error: got=%v", err)
	}

	linked := newTestArmature(t, newChainDefs()...)
	linked.Linked = true
	if _, err := uc.Bake(BakeRequest{Armature: linked}); !merrors.IsPreconditionError(err) {
		t.Fatalf("linked armature should be precondition error: got=%v", err)
	}

	broken := newTestArmature(t, newChainDefs()...)
	if err := broken.Pose.Append(model.NewPoseChannel("orphan")); err != nil {
		t.Fatalf("append channel failed: %v", err)
	}
	if _, err := uc.Bake(BakeRequest{Armature: broken}); !merrors.IsPreconditionError(err) {
		t.Fatalf("broken channel correspondence should be precondition error: got=%v", err)
	}

	named := newTestArmature(t, newChainDefs()...)
	evaluateTestArmature(t, named)
	before := snapshotRest(t, named)
	_, err := uc.Bake(BakeRequest{Armature: named, Mode: BAKE_MODE_SELECTED, Selection: NewNameSelection("root,missing")})
	if !merrors.IsPreconditionError(err) {
		t.Fatalf("unknown selected name should be precondition error: got=%v", err)
	}
	assertRestUnchanged(t, before, named)
}

func TestBakeResetsStretchToAndKeepsStretch(t *testing.T) {
	armature := newTestArmature(t, testBoneDef{name: "stretch", head: vec3(0, 0, 0), tail: vec3(0, 1, 0)})
	channel := testChannel(t, armature, "stretch")
	constraint := model.NewStretchToConstraint("StretchTo", model.ConstraintTarget{Point: vec3(0, 2, 0)})
	channel.Constraints = append(channel.Constraints, constraint)
	evaluateTestArmature(t, armature)
	constraint.Target.Point = vec3(0, 4, 0)
	evaluateTestArmature(t, armature)
	beforeLength := constraint.RestLength
	beforeTail := channel.PoseTail

	uc := NewRestBakeUsecase(RestBakeUsecaseDeps{})
	result, err := uc.Bake(BakeRequest{Armature: armature, Mode: BAKE_MODE_ALL})
	if err != nil {
		t.Fatalf("bake failed: %v", err)
	}
	if result.ResetConstraintCount != 1 {
		t.Fatalf("reset count mismatch: got=%d want=1", result.ResetConstraintCount)
	}
	if math.Abs(constraint.RestLength-beforeLength) < 1e-9 {
		t.Fatalf("rest length should be re-measured: got=%f before=%f", constraint.RestLength, beforeLength)
	}
	if math.Abs(constraint.RestLength-4) > 1e-9 {
		t.Fatalf("rest length mismatch: got=%f want=4", constraint.RestLength)
	}
	if !channel.PoseTail.NearEquals(beforeTail, 1e-9) {
		t.Fatalf("stretch should be reproduced: got=%v want=%v", channel.PoseTail, beforeTail)
	}
}

func TestBakeSelectedResetsOnlySelectedConstraints(t *testing.T) {
	armature := newTestArmature(t,
		testBoneDef{name: "A", head: vec3(0, 0, 0), tail: vec3(0, 1, 0)},
		testBoneDef{name: "B", head: vec3(1, 0, 0), tail: vec3(1, 1, 0)},
	)
	a := testChannel(t, armature, "A")
	a.Selected = true
	limitA := model.NewLimitDistanceConstraint("LimitA", model.ConstraintTarget{Point: vec3(0, 5, 0)})
	limitA.Distance = 10
	a.Constraints = append(a.Constraints, limitA)
	b := testChannel(t, armature, "B")
	limitB := model.NewLimitDistanceConstraint("LimitB", model.ConstraintTarget{Point: vec3(1, 5, 0)})
	limitB.Distance = 10
	b.Constraints = append(b.Constraints, limitB)
	evaluateTestArmature(t, armature)

	uc := NewRestBakeUsecase(RestBakeUsecaseDeps{})
	result, err := uc.Bake(BakeRequest{Armature: armature, Mode: BAKE_MODE_SELECTED})
	if err != nil {
		t.Fatalf("bake failed: %v", err)
	}
	if result.ResetConstraintCount != 1 {
		t.Fatalf("reset count mismatch: got=%d want=1", result.ResetConstraintCount)
	}
	if math.Abs(limitA.Distance-5) > 1e-9 {
		t.Fatalf("selected constraint should be re-measured: got=%f", limitA.Distance)
	}
	if limitB.Distance != 10 {
		t.Fatalf("unselected constraint should be kept: got=%f", limitB.Distance)
	}
}

func TestRegisterConstraintResetOverridesDefault(t *testing.T) {
	armature := newTestArmature(t, testBoneDef{name: "stretch", head: vec3(0, 0, 0), tail: vec3(0, 1, 0)})
	channel := testChannel(t, armature, "stretch")
	constraint := model.NewStretchToConstraint("StretchTo", model.ConstraintTarget{Point: vec3(0, 3, 0)})
	channel.Constraints = append(channel.Constraints, constraint)
	evaluateTestArmature(t, armature)

	uc := NewRestBakeUsecase(RestBakeUsecaseDeps{})
	uc.RegisterConstraintReset(model.CONSTRAINT_TYPE_STRETCH_TO, func(model.Constraint) bool { return false })
	result, err := uc.Bake(BakeRequest{Armature: armature, Mode: BAKE_MODE_ALL})
	if err != nil {
		t.Fatalf("bake failed: %v", err)
	}
	if result.ResetConstraintCount != 0 || math.Abs(constraint.RestLength-3) > 1e-9 {
		t.Fatalf("override should keep rest length: count=%d length=%f", result.ResetConstraintCount, constraint.RestLength)
	}
}

func TestBakeTransfersBendyShape(t *testing.T) {
	armature := newTestArmature(t,
		testBoneDef{name: "bendy", head: vec3(0, 0, 0), tail: vec3(0, 1, 0)},
		testBoneDef{name: "plain", head: vec3(1, 0, 0), tail: vec3(1, 1, 0)},
	)
	bendy := testBone(t, armature, "bendy")
	bendy.Segments = 3
	bendy.BBone.CurveInX = 0.1
	bendy.BBone.ScaleIn = vec3(2, 1, 1)
	bendyChannel := testChannel(t, armature, "bendy")
	bendyChannel.Local.BBone.CurveInX = 0.2
	bendyChannel.Local.BBone.Ease1 = 0.5
	bendyChannel.Local.BBone.Roll2 = 0.25
	bendyChannel.Local.BBone.ScaleIn = vec3(1.5, 1, 1)
	plainChannel := testChannel(t, armature, "plain")
	plainChannel.Local.BBone.CurveInX = 0.2
	evaluateTestArmature(t, armature)

	uc := NewRestBakeUsecase(RestBakeUsecaseDeps{})
	if _, err := uc.Bake(BakeRequest{Armature: armature, Mode: BAKE_MODE_ALL}); err != nil {
		t.Fatalf("bake failed: %v", err)
	}
	bendy = testBone(t, armature, "bendy")
	if math.Abs(bendy.BBone.CurveInX-0.3) > 1e-12 || math.Abs(bendy.BBone.Ease1-1.5) > 1e-12 || math.Abs(bendy.BBone.Roll2-0.25) > 1e-12 {
		t.Fatalf("bendy deltas should be added: got=%+v", bendy.BBone)
	}
	if !bendy.BBone.ScaleIn.NearEquals(vec3(3, 1, 1), 1e-12) {
		t.Fatalf("bendy scale should be multiplied: got=%v", bendy.BBone.ScaleIn)
	}
	if bendyChannel.Local.BBone != model.NewPoseBBoneShape() {
		t.Fatalf("bendy pose should be reset: got=%+v", bendyChannel.Local.BBone)
	}

	plain := testBone(t, armature, "plain")
	if plain.BBone.CurveInX != 0 {
		t.Fatalf("non bendy rest shape should be kept: got=%+v", plain.BBone)
	}
	if plainChannel.Local.BBone.CurveInX != 0.2 {
		t.Fatalf("non bendy pose shape should be kept: got=%+v", plainChannel.Local.BBone)
	}
}

func TestBakeFixesBoneParentedObject(t *testing.T) {
	armature := newTestArmature(t,
		testBoneDef{name: "R", head: vec3(0, 0, 0), tail: vec3(0, 1, 0)},
		testBoneDef{name: "C", parent: "R", head: vec3(0, 1, 0), tail: vec3(0, 2, 0)},
	)
	root := testChannel(t, armature, "R")
	root.Local.Scale = vec3(2, 2, 2)
	root.Selected = true
	evaluateTestArmature(t, armature)

	scene := model.NewScene()
	scene.Armatures = append(scene.Armatures, armature)
	object := model.NewObject("Cube")
	object.ParentArmature = armature.Name
	object.ParentType = model.PARENT_TYPE_BONE
	object.ParentBone = "C"
	object.Location = vec3(0, 0, 1)
	untouched := model.NewObject("Lamp")
	untouched.Location = vec3(3, 0, 0)
	scene.Objects = append(scene.Objects, object, untouched)
	before, err := pose.ObjectWorldMatrix(armature, object)
	if err != nil {
		t.Fatalf("world matrix failed: %v", err)
	}

	uc := NewRestBakeUsecase(RestBakeUsecaseDeps{})
	result, err := uc.Bake(BakeRequest{Armature: armature, Scene: scene, Mode: BAKE_MODE_SELECTED})
	if err != nil {
		t.Fatalf("bake failed: %v", err)
	}
	after, err := pose.ObjectWorldMatrix(armature, object)
	if err != nil {
		t.Fatalf("world matrix failed: %v", err)
	}
	if !mmath.Mat4NearEquals(after, before, 1e-6) {
		t.Fatalf("object world should be preserved: got=%v want=%v", after, before)
	}
	if len(result.FixedObjectNames) != 1 || result.FixedObjectNames[0] != "Cube" {
		t.Fatalf("fixed objects mismatch: got=%v", result.FixedObjectNames)
	}
	if !untouched.Location.NearEquals(vec3(3, 0, 0), 0) {
		t.Fatalf("unrelated object should not move: got=%v", untouched.Location)
	}
}

type recordingNotifier struct {
	names []string
}

func (n *recordingNotifier) NotifyRestChanged(armatureName string) {
	n.names = append(n.names, armatureName)
}

type recordingReporter struct {
	events []BakeProgressEventType
}

func (r *recordingReporter) ReportBakeProgress(event BakeProgressEvent) {
	r.events = append(r.events, event.Type)
}

func TestBakeReportsProgressNotifiesAndLogs(t *testing.T) {
	logger := logging.NewLogger(nil)
	logger.SetLevel(logging.LOG_LEVEL_INFO)
	logger.MessageBuffer().Clear()
	prevLogger := logging.DefaultLogger()
	logging.SetDefaultLogger(logger)
	t.Cleanup(func() {
		logging.SetDefaultLogger(prevLogger)
	})

	armature := newTestArmature(t, newChainDefs()...)
	armature.HasAction = true
	evaluateTestArmature(t, armature)
	notifier := &recordingNotifier{}
	reporter := &recordingReporter{}

	uc := NewRestBakeUsecase(RestBakeUsecaseDeps{ChangeNotifier: notifier})
	result, err := uc.Bake(BakeRequest{Armature: armature, Mode: BAKE_MODE_ALL, ProgressReporter: reporter})
	if err != nil {
		t.Fatalf("bake failed: %v", err)
	}
	if !result.HasWarning(model.BakeWarningActionInvalidated) {
		t.Fatalf("action warning missing: got=%v", result.Warnings)
	}
	if len(notifier.names) != 1 || notifier.names[0] != armature.Name {
		t.Fatalf("notification mismatch: got=%v", notifier.names)
	}
	want := []BakeProgressEventType{
		BakeProgressEventTypeValidated,
		BakeProgressEventTypeSelectionResolved,
		BakeProgressEventTypeObjectsCaptured,
		BakeProgressEventTypeBonesBaked,
		BakeProgressEventTypeConstraintsReset,
		BakeProgressEventTypePoseEvaluated,
		BakeProgressEventTypeObjectsFixed,
	}
	if len(reporter.events) != len(want) {
		t.Fatalf("progress events mismatch: got=%v want=%v", reporter.events, want)
	}
	for i := range want {
		if reporter.events[i] != want[i] {
			t.Fatalf("progress event order mismatch: index=%d got=%s want=%s", i, reporter.events[i], want[i])
		}
	}

	hasStart := false
	hasActionWarning := false
	for _, line := range logger.MessageBuffer().Lines() {
		if strings.Contains(line, "レスト焼き込み開始") {
			hasStart = true
		}
		if strings.Contains(line, "アクションのキー") {
			hasActionWarning = true
		}
	}
	if !hasStart || !hasActionWarning {
		t.Fatalf("bake logs missing: lines=%v", logger.MessageBuffer().Lines())
	}
}

func TestParseBakeMode(t *testing.T) {
	cases := map[string]BakeMode{"": BAKE_MODE_ALL, "all": BAKE_MODE_ALL, "Selected": BAKE_MODE_SELECTED}
	for name, want := range cases {
		got, err := ParseBakeMode(name)
		if err != nil || got != want {
			t.Fatalf("parse mismatch: name=%q got=%v err=%v want=%v", name, got, err, want)
		}
	}
	if _, err := ParseBakeMode("partial"); err == nil {
		t.Fatalf("unknown mode should fail")
	}
}
