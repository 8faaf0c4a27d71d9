// 指示: miu200521358
package pose

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/miu200521358/mu_restbake/pkg/domain/mmath"
	"github.com/miu200521358/mu_restbake/pkg/domain/model"
	"github.com/miu200521358/mu_restbake/pkg/shared/base/logging"
)

// ConstraintSolveFunc はコンストレイントを行列へ適用する関数を表す。
// target はアーマチュア空間のターゲット位置。
type ConstraintSolveFunc func(constraint model.Constraint, matrix mgl64.Mat4, target mmath.Vec3) mgl64.Mat4

// Evaluator は順運動学とコンストレイントでポーズ行列を求める評価器を表す。
type Evaluator struct {
	solvers map[model.ConstraintType]ConstraintSolveFunc
}

// NewEvaluator は既定のコンストレイント解決を登録した評価器を生成する。
func NewEvaluator() *Evaluator {
	return &Evaluator{
		solvers: map[model.ConstraintType]ConstraintSolveFunc{
			model.CONSTRAINT_TYPE_STRETCH_TO:     solveStretchTo,
			model.CONSTRAINT_TYPE_LIMIT_DISTANCE: solveLimitDistance,
		},
	}
}

// Evaluate は全ボーンのポーズ行列・頭・末端を親から順に更新する。
func (e *Evaluator) Evaluate(armature *model.Armature) error {
	if armature == nil {
		return fmt.Errorf("評価対象アーマチュアが未設定です")
	}
	if err := armature.ValidatePose(); err != nil {
		return fmt.Errorf("ポーズ評価の前提を満たしていません: %w", err)
	}
	order, err := armature.Bones.TopologicalOrder()
	if err != nil {
		return fmt.Errorf("ボーン評価順の解決に失敗しました: %w", err)
	}

	for _, index := range order {
		bone, err := armature.Bones.Get(index)
		if err != nil {
			return err
		}
		channel, err := armature.Channel(bone)
		if err != nil {
			return err
		}

		bpt, err := CalcBoneParentTransformFromPose(armature, bone)
		if err != nil {
			return err
		}
		connected := bone.Flag.Has(model.BONE_FLAG_CONNECTED)
		poseMatrix := bpt.Apply(channel.Local.Matrix(connected))
		poseMatrix = e.solveConstraints(armature, bone, channel, poseMatrix)

		channel.PoseMatrix = poseMatrix
		channel.PoseHead = mmath.Mat4Translation(poseMatrix)
		channel.PoseTail = PoseTail(poseMatrix, bone.Length())
	}
	return nil
}

// CalcBoneParentTransformFromPose は親の現在のポーズ行列からボーンへの寄与を返す。
func CalcBoneParentTransformFromPose(armature *model.Armature, bone *model.Bone) (BoneParentTransform, error) {
	parent := armature.Bones.Parent(bone)
	if parent == nil {
		return CalcRootBoneParentTransform(bone.Flag, bone.RestMatrix()), nil
	}
	parentChannel, err := armature.Channel(parent)
	if err != nil {
		return NewBoneParentTransform(), err
	}
	return CalcBoneParentTransformFromMatrices(
		bone.Flag,
		bone.InheritScaleMode,
		bone.OffsetMatrix(parent),
		parent.RestMatrix(),
		parentChannel.PoseMatrix,
	), nil
}

// PoseTail はポーズ行列のY軸をボーン長だけ進めた末端位置を返す。
func PoseTail(poseMatrix mgl64.Mat4, length float64) mmath.Vec3 {
	return mmath.Mat4Translation(poseMatrix).Added(mmath.Mat4Col(poseMatrix, 1).MuledScalar(length))
}

func (e *Evaluator) solveConstraints(
	armature *model.Armature,
	bone *model.Bone,
	channel *model.PoseChannel,
	poseMatrix mgl64.Mat4,
) mgl64.Mat4 {
	if len(channel.Constraints) == 0 {
		return poseMatrix
	}
	head := mmath.Mat4Translation(poseMatrix)
	for _, constraint := range channel.Constraints {
		solve, ok := e.solvers[constraint.Type()]
		if !ok {
			continue
		}
		target, ok := resolveConstraintTarget(armature, constraint.ConstraintTarget())
		if !ok {
			logging.DefaultLogger().Debug("コンストレイントのターゲットが見つかりません: bone=%s constraint=%s",
				bone.Name, constraint.ConstraintName())
			continue
		}
		poseMatrix = solve(constraint, poseMatrix, target)
	}
	if bone.Flag.Has(model.BONE_FLAG_CONNECTED) {
		// 接続ボーンは鎖が切れないよう頭位置を戻す
		poseMatrix = mmath.WithTranslation(poseMatrix, head)
	}
	return poseMatrix
}

// resolveConstraintTarget はターゲット位置を返す。ボーンターゲットは評価済みの頭・末端を補間する。
func resolveConstraintTarget(armature *model.Armature, target model.ConstraintTarget) (mmath.Vec3, bool) {
	if target.BoneName == "" {
		return target.Point, true
	}
	channel, ok := armature.Pose.GetByName(target.BoneName)
	if !ok {
		return mmath.ZERO_VEC3, false
	}
	direction := channel.PoseTail.Subed(channel.PoseHead)
	return channel.PoseHead.Added(direction.MuledScalar(target.HeadTail)), true
}
