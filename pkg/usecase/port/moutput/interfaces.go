// 指示: miu200521358
package moutput

import "github.com/miu200521358/mu_restbake/pkg/domain/model"

// IPoseEvaluator はポーズ行列を評価する契約を表す。
type IPoseEvaluator interface {
	// Evaluate は全ボーンのポーズ行列・頭・末端を更新する。
	Evaluate(armature *model.Armature) error
}

// ISelectionProvider は選択ボーン名を解決する契約を表す。
type ISelectionProvider interface {
	// SelectedBoneNames は選択ボーン名を返す。
	SelectedBoneNames(armature *model.Armature) ([]string, error)
}

// IChangeNotifier はレスト変更を通知する契約を表す。
type IChangeNotifier interface {
	// NotifyRestChanged はアーマチュアのレストが変わったことを通知する。
	NotifyRestChanged(armatureName string)
}

// IRigReader はリグ読み込みの契約を表す。
type IRigReader interface {
	// CanLoad は読み込み可能なパスか判定する。
	CanLoad(path string) bool
	// Load はシーンを読み込む。
	Load(path string) (*model.Scene, error)
}

// IRigWriter はリグ保存の契約を表す。
type IRigWriter interface {
	// Save はシーンを保存する。
	Save(path string, scene *model.Scene) error
}
