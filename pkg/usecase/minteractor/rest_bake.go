// 指示: miu200521358
package minteractor

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/miu200521358/mu_restbake/pkg/domain/model"
	"github.com/miu200521358/mu_restbake/pkg/domain/model/merrors"
	"github.com/miu200521358/mu_restbake/pkg/domain/pose"
	"github.com/miu200521358/mu_restbake/pkg/shared/base/logging"
	"github.com/miu200521358/mu_restbake/pkg/usecase/port/moutput"
)

// RestBakeUsecaseDeps はレスト焼き込みユースケースの依存を表す。
type RestBakeUsecaseDeps struct {
	PoseEvaluator  moutput.IPoseEvaluator
	ChangeNotifier moutput.IChangeNotifier
	RigReader      moutput.IRigReader
	RigWriter      moutput.IRigWriter
}

// RestBakeUsecase は現在ポーズをレストへ焼き込む処理をまとめたユースケースを表す。
type RestBakeUsecase struct {
	poseEvaluator    moutput.IPoseEvaluator
	changeNotifier   moutput.IChangeNotifier
	rigReader        moutput.IRigReader
	rigWriter        moutput.IRigWriter
	constraintResets map[model.ConstraintType]constraintResetFunc
}

// NewRestBakeUsecase はレスト焼き込みユースケースを生成する。
// 評価器が未指定の場合は既定の順運動学評価器を使う。
func NewRestBakeUsecase(deps RestBakeUsecaseDeps) *RestBakeUsecase {
	evaluator := deps.PoseEvaluator
	if evaluator == nil {
		evaluator = pose.NewEvaluator()
	}
	return &RestBakeUsecase{
		poseEvaluator:    evaluator,
		changeNotifier:   deps.ChangeNotifier,
		rigReader:        deps.RigReader,
		rigWriter:        deps.RigWriter,
		constraintResets: defaultConstraintResets(),
	}
}

// Bake は評価済みポーズをレストへ焼き込む。
// 前提検証と全ボーンの計算が成功するまでアーマチュアは変更しない。
func (uc *RestBakeUsecase) Bake(request BakeRequest) (*BakeResult, error) {
	armature := request.Armature
	if err := validateBakeTarget(armature); err != nil {
		return nil, err
	}
	reportBakeProgress(request.ProgressReporter, BakeProgressEvent{
		Type:      BakeProgressEventTypeValidated,
		BoneCount: armature.Bones.Len(),
	})

	result := &BakeResult{
		BakeID:       uuid.NewString(),
		ArmatureName: armature.Name,
		Mode:         request.Mode,
	}
	logger := logging.DefaultLogger().With("bake", result.BakeID)

	var selected map[int]struct{}
	scopeNames := make([]string, 0, armature.Bones.Len())
	switch request.Mode {
	case BAKE_MODE_ALL:
		for _, bone := range armature.Bones.Values() {
			scopeNames = append(scopeNames, bone.Name)
		}
	case BAKE_MODE_SELECTED:
		indexes, names, err := resolveSelection(armature, request.Selection)
		if err != nil {
			return nil, err
		}
		selected = indexes
		scopeNames = names
	default:
		return nil, merrors.NewPreconditionError(fmt.Sprintf("未対応の焼き込み範囲です: %s", request.Mode), nil)
	}
	reportBakeProgress(request.ProgressReporter, BakeProgressEvent{
		Type:      BakeProgressEventTypeSelectionResolved,
		BoneCount: len(scopeNames),
	})
	logger.Info("レスト焼き込み開始: armature=%s mode=%s bones=%d", armature.Name, request.Mode, len(scopeNames))

	if armature.HasAction {
		logger.Warn("アクションのキーは新しいレストを基準に解釈されます: armature=%s", armature.Name)
		result.addWarning(model.BakeWarningActionInvalidated)
	}

	captured := captureDependentObjects(armature, request.Scene, result)
	reportBakeProgress(request.ProgressReporter, BakeProgressEvent{
		Type:        BakeProgressEventTypeObjectsCaptured,
		ObjectCount: len(captured),
	})

	arena, err := newBakeArena(armature)
	if err != nil {
		return nil, err
	}
	var outcome *bakeOutcome
	if request.Mode == BAKE_MODE_SELECTED {
		outcome, err = bakeSelected(armature, arena, selected)
	} else {
		outcome, err = bakeAll(armature, arena)
	}
	if err != nil {
		return nil, fmt.Errorf("レスト焼き込みを中止しました: armature=%s: %w", armature.Name, err)
	}
	if err := arena.commit(armature); err != nil {
		return nil, err
	}
	result.BakedBoneNames = outcome.bakedBoneNames
	result.AdjustedBoneNames = outcome.adjustedBoneNames
	for _, name := range outcome.zeroLengthBoneNames {
		logger.Warn("長さゼロのボーンはロールを維持しました: bone=%s", name)
		result.addWarning(model.BakeWarningZeroLengthBone)
	}
	reportBakeProgress(request.ProgressReporter, BakeProgressEvent{
		Type:      BakeProgressEventTypeBonesBaked,
		BoneCount: len(outcome.bakedBoneNames) + len(outcome.adjustedBoneNames),
	})

	result.ResetConstraintCount = uc.resetConstraints(armature, scopeNames)
	reportBakeProgress(request.ProgressReporter, BakeProgressEvent{
		Type:            BakeProgressEventTypeConstraintsReset,
		ConstraintCount: result.ResetConstraintCount,
	})

	if err := uc.poseEvaluator.Evaluate(armature); err != nil {
		return nil, fmt.Errorf("焼き込み後のポーズ再評価に失敗しました: armature=%s: %w", armature.Name, err)
	}
	reportBakeProgress(request.ProgressReporter, BakeProgressEvent{
		Type:      BakeProgressEventTypePoseEvaluated,
		BoneCount: armature.Bones.Len(),
	})

	fixDependentObjects(armature, captured, result)
	reportBakeProgress(request.ProgressReporter, BakeProgressEvent{
		Type:        BakeProgressEventTypeObjectsFixed,
		ObjectCount: len(result.FixedObjectNames),
	})

	if uc.changeNotifier != nil {
		uc.changeNotifier.NotifyRestChanged(armature.Name)
	}
	logger.Info("レスト焼き込み完了: armature=%s baked=%d adjusted=%d constraints=%d objects=%d",
		armature.Name,
		len(result.BakedBoneNames),
		len(result.AdjustedBoneNames),
		result.ResetConstraintCount,
		len(result.FixedObjectNames),
	)
	return result, nil
}

// EvaluatePose は評価器でポーズ行列を更新する。
func (uc *RestBakeUsecase) EvaluatePose(armature *model.Armature) error {
	if armature == nil {
		return merrors.NewPreconditionError("評価対象アーマチュアが未設定です", nil)
	}
	return uc.poseEvaluator.Evaluate(armature)
}

// validateBakeTarget は焼き込み対象の前提を検証する。
func validateBakeTarget(armature *model.Armature) error {
	if armature == nil {
		return merrors.NewPreconditionError("焼き込み対象アーマチュアが未設定です", nil)
	}
	if !armature.IsEditable() {
		return merrors.NewPreconditionError(fmt.Sprintf("リンクされたアーマチュアは編集できません: %s", armature.Name), nil)
	}
	if err := armature.ValidatePose(); err != nil {
		return merrors.NewPreconditionError(fmt.Sprintf("ポーズチャンネルを確認してください: %s", armature.Name), err)
	}
	if _, err := armature.Bones.TopologicalOrder(); err != nil {
		return merrors.NewPreconditionError(fmt.Sprintf("ボーン階層が不正です: %s", armature.Name), err)
	}
	return nil
}
