// 指示: miu200521358
package minteractor

import (
	"github.com/miu200521358/mu_restbake/pkg/domain/mmath"
	"github.com/miu200521358/mu_restbake/pkg/domain/model"
	"github.com/miu200521358/mu_restbake/pkg/domain/model/merrors"
)

// bakeAll は全ボーンの現在ポーズをそれぞれのレストへ焼き込む。
// 各ボーンは自身のチャンネルのみ参照するので処理順に依存しない。
func bakeAll(armature *model.Armature, arena *bakeArena) (*bakeOutcome, error) {
	outcome := &bakeOutcome{}
	for _, bone := range arena.bones.Values() {
		channel, err := armature.Channel(bone)
		if err != nil {
			return nil, err
		}
		if !mmath.Mat4IsFinite(channel.PoseMatrix) {
			return nil, merrors.NewDegenerateTransformError(bone.Name, "ポーズ行列が有限値ではありません")
		}
		if _, ok := setEditPosition(bone, channel.PoseMatrix, channel.PoseTail); !ok {
			outcome.zeroLengthBoneNames = append(outcome.zeroLengthBoneNames, bone.Name)
		}
		transferPoseToRest(bone, &arena.locals[bone.Index])
		outcome.bakedBoneNames = append(outcome.bakedBoneNames, bone.Name)
	}
	return outcome, nil
}
