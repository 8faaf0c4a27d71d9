// 指示: miu200521358
package minteractor

import (
	"github.com/miu200521358/mu_restbake/pkg/domain/model"
	"github.com/miu200521358/mu_restbake/pkg/shared/base/logging"
)

// constraintResetFunc はコンストレイントのレスト依存キャッシュを初期化する。
// 初期化した場合は true を返す。
type constraintResetFunc func(constraint model.Constraint) bool

// defaultConstraintResets は既定のコンストレイント初期化を返す。
func defaultConstraintResets() map[model.ConstraintType]constraintResetFunc {
	return map[model.ConstraintType]constraintResetFunc{
		model.CONSTRAINT_TYPE_STRETCH_TO:     resetStretchTo,
		model.CONSTRAINT_TYPE_LIMIT_DISTANCE: resetLimitDistance,
	}
}

func resetStretchTo(constraint model.Constraint) bool {
	data, ok := constraint.(*model.StretchToConstraint)
	if !ok {
		return false
	}
	data.RestLength = 0
	return true
}

func resetLimitDistance(constraint model.Constraint) bool {
	data, ok := constraint.(*model.LimitDistanceConstraint)
	if !ok {
		return false
	}
	data.Distance = 0
	return true
}

// RegisterConstraintReset はコンストレイント初期化を登録する。
func (uc *RestBakeUsecase) RegisterConstraintReset(constraintType model.ConstraintType, reset func(model.Constraint) bool) {
	uc.constraintResets[constraintType] = reset
}

// resetConstraints は対象ボーンのコンストレイントを初期化し、初期化件数を返す。
// 未登録の種別は変更しない。
func (uc *RestBakeUsecase) resetConstraints(armature *model.Armature, boneNames []string) int {
	count := 0
	for _, name := range boneNames {
		channel, ok := armature.Pose.GetByName(name)
		if !ok {
			continue
		}
		for _, constraint := range channel.Constraints {
			reset, ok := uc.constraintResets[constraint.Type()]
			if !ok {
				continue
			}
			if reset(constraint) {
				count++
				logging.DefaultLogger().Debug("コンストレイントを初期化しました: bone=%s constraint=%s type=%s",
					name, constraint.ConstraintName(), constraint.Type())
			}
		}
	}
	return count
}
