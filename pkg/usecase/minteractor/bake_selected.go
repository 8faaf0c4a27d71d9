// 指示: miu200521358
package minteractor

import (
	"errors"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/miu200521358/mu_restbake/pkg/domain/mmath"
	"github.com/miu200521358/mu_restbake/pkg/domain/model"
	"github.com/miu200521358/mu_restbake/pkg/domain/model/merrors"
	"github.com/miu200521358/mu_restbake/pkg/domain/pose"
)

// bakeNodeKind は選択焼き込みでのボーンの扱いを表す。
type bakeNodeKind int

const (
	// bakeNodePlain は変更しないボーン。
	bakeNodePlain bakeNodeKind = iota
	// bakeNodeSelected は現在ポーズをレストへ焼き込むボーン。
	bakeNodeSelected
	// bakeNodeInherited は親の焼き込みに合わせて見た目を維持するボーン。
	bakeNodeInherited
)

// parentState は今回の焼き込みで変更されたボーンの新しいレスト情報を表す。
type parentState struct {
	boneIndex     int
	newRestMatrix mgl64.Mat4
	newArmMatrix  mgl64.Mat4
}

// classifyBakeNode はボーンの扱いを判定する。
func classifyBakeNode(boneIndex int, selected map[int]struct{}, state *parentState) bakeNodeKind {
	if _, ok := selected[boneIndex]; ok {
		return bakeNodeSelected
	}
	if state != nil {
		return bakeNodeInherited
	}
	return bakeNodePlain
}

// bakeSelected は選択ボーンのみ焼き込み、その子孫の見た目を維持するよう補正する。
// 旧レストは常に元のボーンから参照し、作業領域のボーンへ書き込む。
func bakeSelected(armature *model.Armature, arena *bakeArena, selected map[int]struct{}) (*bakeOutcome, error) {
	order, err := armature.Bones.TopologicalOrder()
	if err != nil {
		return nil, err
	}

	outcome := &bakeOutcome{}
	states := make([]*parentState, armature.Bones.Len())
	for _, index := range order {
		original, err := armature.Bones.Get(index)
		if err != nil {
			return nil, err
		}
		bone, err := arena.bones.Get(index)
		if err != nil {
			return nil, err
		}
		parent := armature.Bones.Parent(original)
		var state *parentState
		if parent != nil {
			state = states[parent.Index]
		}

		switch classifyBakeNode(index, selected, state) {
		case bakeNodeSelected:
			next, ok, err := bakeSelectedNode(armature, original, parent, state, bone, &arena.locals[index])
			if err != nil {
				return nil, withBoneName(err, original.Name)
			}
			if !ok {
				outcome.zeroLengthBoneNames = append(outcome.zeroLengthBoneNames, original.Name)
			}
			states[index] = next
			outcome.bakedBoneNames = append(outcome.bakedBoneNames, original.Name)
		case bakeNodeInherited:
			next, ok, err := bakeInheritedNode(original, parent, state, bone, &arena.locals[index])
			if err != nil {
				return nil, withBoneName(err, original.Name)
			}
			if !ok {
				outcome.zeroLengthBoneNames = append(outcome.zeroLengthBoneNames, original.Name)
			}
			states[index] = next
			outcome.adjustedBoneNames = append(outcome.adjustedBoneNames, original.Name)
		}
	}
	return outcome, nil
}

// bakeSelectedNode は選択ボーンの現在ポーズを、親の新しいレスト基準で焼き込む。
func bakeSelectedNode(
	armature *model.Armature,
	original *model.Bone,
	parent *model.Bone,
	state *parentState,
	bone *model.Bone,
	local *model.PoseTransform,
) (*parentState, bool, error) {
	channel, err := armature.Channel(original)
	if err != nil {
		return nil, false, err
	}

	var oldBpt, newBpt pose.BoneParentTransform
	if parent == nil {
		oldBpt = pose.CalcRootBoneParentTransform(original.Flag, original.RestMatrix())
		newBpt = oldBpt
	} else {
		parentChannel, err := armature.Channel(parent)
		if err != nil {
			return nil, false, err
		}
		offset := original.OffsetMatrix(parent)
		parentRest := parent.RestMatrix()
		oldBpt = pose.CalcBoneParentTransformFromMatrices(
			original.Flag, original.InheritScaleMode, offset, parentRest, parentChannel.PoseMatrix)
		parentNewRest := parentRest
		if state != nil {
			parentNewRest = state.newRestMatrix
		}
		newBpt = pose.CalcBoneParentTransformFromMatrices(
			original.Flag, original.InheritScaleMode, offset, parentRest, parentNewRest)
	}

	oldInverted, err := oldBpt.Inverted()
	if err != nil {
		return nil, false, err
	}
	newRest := newBpt.Combined(oldInverted).Apply(channel.PoseMatrix)
	if !mmath.Mat4IsFinite(newRest) {
		return nil, false, merrors.NewDegenerateTransformError(original.Name, "新しいレスト行列が有限値ではありません")
	}
	newTail := mmath.MulMat4Point(newRest, mmath.NewVec3(0, original.Length(), 0))

	newArm, ok := setEditPosition(bone, newRest, newTail)
	transferPoseToRest(bone, local)
	return &parentState{boneIndex: original.Index, newRestMatrix: newRest, newArmMatrix: newArm}, ok, nil
}

// bakeInheritedNode は親の新しいレストに合わせて非選択ボーンのレストと位置チャンネルを補正する。
func bakeInheritedNode(
	original *model.Bone,
	parent *model.Bone,
	state *parentState,
	bone *model.Bone,
	local *model.PoseTransform,
) (*parentState, bool, error) {
	bpt := pose.CalcBoneParentTransformFromMatrices(
		original.Flag, original.InheritScaleMode, original.OffsetMatrix(parent), parent.RestMatrix(), state.newRestMatrix)
	newRest := bpt.Apply(mgl64.Ident4())
	oldChannelLocation := bpt.ApplyLocation(local.Location)

	oldRestInverted, ok := mmath.InvertMat4(original.RestMatrix())
	if !ok {
		return nil, false, merrors.NewDegenerateTransformError(original.Name, "旧レスト行列が特異です")
	}
	delta := newRest.Mul4(oldRestInverted)
	if !mmath.Mat4IsFinite(delta) {
		return nil, false, merrors.NewDegenerateTransformError(original.Name, "レスト差分行列が有限値ではありません")
	}
	newArm, hasLength := adjustEditPosition(bone, delta)

	if !original.Flag.Has(model.BONE_FLAG_CONNECTED) && !local.Location.IsZero() {
		// 焼き込み後に評価器が使う親の新しいレスト基準で、元のワールド位置を再現する
		parentNewArmInverted, ok := mmath.InvertMat4(state.newArmMatrix)
		if !ok {
			return nil, false, merrors.NewDegenerateTransformError(original.Name, "親の新しいレスト行列が特異です")
		}
		newOffset := parentNewArmInverted.Mul4(newArm)
		newBpt := pose.CalcBoneParentTransformFromMatrices(
			original.Flag, original.InheritScaleMode, newOffset, state.newArmMatrix, state.newArmMatrix)
		inverted, err := newBpt.Inverted()
		if err != nil {
			return nil, false, err
		}
		local.Location = inverted.ApplyLocation(oldChannelLocation)
	}
	return &parentState{boneIndex: original.Index, newRestMatrix: newRest, newArmMatrix: newArm}, hasLength, nil
}

// withBoneName は退化変換エラーへボーン名を補う。
func withBoneName(err error, boneName string) error {
	var degenerate *merrors.DegenerateTransformError
	if errors.As(err, &degenerate) && degenerate.BoneName == "" {
		return degenerate.WithBoneName(boneName)
	}
	return err
}
