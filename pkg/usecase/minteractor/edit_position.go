// 指示: miu200521358
package minteractor

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/miu200521358/mu_restbake/pkg/domain/mmath"
	"github.com/miu200521358/mu_restbake/pkg/domain/model"
)

// setEditPosition はワールド行列と末端位置からボーンの頭・末端・ロールを設定し、
// スケールを含まない新しいレスト行列を返す。
// 長さゼロのボーンはロールを維持し、第2戻り値で false を返す。
func setEditPosition(bone *model.Bone, worldMatrix mgl64.Mat4, worldTail mmath.Vec3) (mgl64.Mat4, bool) {
	bone.Head = mmath.Mat4Translation(worldMatrix)
	bone.Tail = worldTail
	if bone.IsZeroLength() {
		return bone.RestMatrix(), false
	}
	bone.Roll = mmath.Mat3VecToRoll(worldMatrix.Mat3(), bone.Vector())
	return bone.RestMatrix(), true
}

// adjustEditPosition は既存のレストボーンを差分行列で移し替え、新しいレスト行列を返す。
func adjustEditPosition(bone *model.Bone, delta mgl64.Mat4) (mgl64.Mat4, bool) {
	moved := delta.Mul4(bone.RestMatrix())
	normalized, size := mmath.NormalizeMat4(moved)
	bone.SetRestMatrix(normalized, bone.Length()*size.Y)
	if bone.IsZeroLength() {
		return bone.RestMatrix(), false
	}
	return bone.RestMatrix(), true
}

// transferPoseToRest はポーズの変形をレストへ移し、チャンネルを恒等に戻す。
// ベンディボーンは形状差分をレストへ加算し、スケールは乗算する。
func transferPoseToRest(bone *model.Bone, local *model.PoseTransform) {
	if bone.IsBendy() {
		rest := &bone.BBone
		delta := local.BBone
		rest.CurveInX += delta.CurveInX
		rest.CurveInZ += delta.CurveInZ
		rest.CurveOutX += delta.CurveOutX
		rest.CurveOutZ += delta.CurveOutZ
		rest.Roll1 += delta.Roll1
		rest.Roll2 += delta.Roll2
		rest.Ease1 += delta.Ease1
		rest.Ease2 += delta.Ease2
		rest.ScaleIn = rest.ScaleIn.Muled(delta.ScaleIn)
		rest.ScaleOut = rest.ScaleOut.Muled(delta.ScaleOut)
		local.BBone = model.NewPoseBBoneShape()
	}
	local.ClearTransform()
	bone.Flag |= model.BONE_FLAG_UNKEYED
}

// bakeArena は焼き込み中の作業用ボーンとチャンネル変形を表す。
// 全ボーンの計算が成功した場合のみアーマチュアへ反映する。
type bakeArena struct {
	bones  *model.BoneCollection
	locals []model.PoseTransform
}

// newBakeArena はアーマチュアから作業領域を複製する。
func newBakeArena(armature *model.Armature) (*bakeArena, error) {
	bones, err := armature.Bones.Copy()
	if err != nil {
		return nil, fmt.Errorf("作業用ボーンの複製に失敗しました: %w", err)
	}
	locals := make([]model.PoseTransform, bones.Len())
	for _, bone := range armature.Bones.Values() {
		channel, err := armature.Channel(bone)
		if err != nil {
			return nil, err
		}
		locals[bone.Index] = channel.Local
	}
	return &bakeArena{bones: bones, locals: locals}, nil
}

// commit は作業領域をアーマチュアへ反映する。
func (a *bakeArena) commit(armature *model.Armature) error {
	for _, bone := range a.bones.Values() {
		channel, err := armature.Channel(bone)
		if err != nil {
			return err
		}
		channel.Local = a.locals[bone.Index]
	}
	armature.Bones = a.bones
	return nil
}

// bakeOutcome はボーン焼き込みの集計を表す。
type bakeOutcome struct {
	bakedBoneNames      []string
	adjustedBoneNames   []string
	zeroLengthBoneNames []string
}
