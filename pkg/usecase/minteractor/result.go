// 指示: miu200521358
package minteractor

import (
	"fmt"
	"strings"

	"github.com/miu200521358/mu_restbake/pkg/domain/model"
	"github.com/miu200521358/mu_restbake/pkg/usecase/port/moutput"
)

// BakeMode は焼き込み範囲を表す。
type BakeMode int

const (
	// BAKE_MODE_ALL は全ボーンを焼き込む。
	BAKE_MODE_ALL BakeMode = iota
	// BAKE_MODE_SELECTED は選択ボーンのみ焼き込み、非選択ボーンの見た目を維持する。
	BAKE_MODE_SELECTED
)

// String は表示名を返す。
func (m BakeMode) String() string {
	switch m {
	case BAKE_MODE_ALL:
		return "all"
	case BAKE_MODE_SELECTED:
		return "selected"
	default:
		return fmt.Sprintf("BakeMode(%d)", int(m))
	}
}

// ParseBakeMode は表示名から焼き込み範囲を返す。空文字は全ボーン。
func ParseBakeMode(name string) (BakeMode, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "all":
		return BAKE_MODE_ALL, nil
	case "selected":
		return BAKE_MODE_SELECTED, nil
	default:
		return BAKE_MODE_ALL, fmt.Errorf("未対応の焼き込み範囲です: %s", name)
	}
}

// BakeProgressEventType は焼き込み処理の進捗イベント種別を表す。
type BakeProgressEventType string

const (
	// BakeProgressEventTypeValidated は前提検証完了イベントを表す。
	BakeProgressEventTypeValidated BakeProgressEventType = "validated"
	// BakeProgressEventTypeSelectionResolved は選択解決完了イベントを表す。
	BakeProgressEventTypeSelectionResolved BakeProgressEventType = "selection_resolved"
	// BakeProgressEventTypeObjectsCaptured は子オブジェクトのワールド行列記録完了イベントを表す。
	BakeProgressEventTypeObjectsCaptured BakeProgressEventType = "objects_captured"
	// BakeProgressEventTypeBonesBaked はボーン焼き込み完了イベントを表す。
	BakeProgressEventTypeBonesBaked BakeProgressEventType = "bones_baked"
	// BakeProgressEventTypeConstraintsReset はコンストレイント初期化完了イベントを表す。
	BakeProgressEventTypeConstraintsReset BakeProgressEventType = "constraints_reset"
	// BakeProgressEventTypePoseEvaluated はポーズ再評価完了イベントを表す。
	BakeProgressEventTypePoseEvaluated BakeProgressEventType = "pose_evaluated"
	// BakeProgressEventTypeObjectsFixed は子オブジェクト補正完了イベントを表す。
	BakeProgressEventTypeObjectsFixed BakeProgressEventType = "objects_fixed"
)

// BakeProgressEvent は焼き込み処理の進捗イベントを表す。
type BakeProgressEvent struct {
	Type            BakeProgressEventType
	BoneCount       int
	ObjectCount     int
	ConstraintCount int
}

// IBakeProgressReporter は焼き込み処理の進捗通知契約を表す。
type IBakeProgressReporter interface {
	// ReportBakeProgress は焼き込み進捗を通知する。
	ReportBakeProgress(event BakeProgressEvent)
}

// BakeRequest はレスト焼き込み要求を表す。
type BakeRequest struct {
	Armature         *model.Armature
	Scene            *model.Scene
	Mode             BakeMode
	Selection        moutput.ISelectionProvider
	ProgressReporter IBakeProgressReporter
}

// BakeResult はレスト焼き込み結果を表す。
type BakeResult struct {
	BakeID               string
	ArmatureName         string
	Mode                 BakeMode
	BakedBoneNames       []string
	AdjustedBoneNames    []string
	ResetConstraintCount int
	FixedObjectNames     []string
	Warnings             []string
}

// HasWarning は警告IDを含むか判定する。
func (r *BakeResult) HasWarning(id string) bool {
	if r == nil {
		return false
	}
	for _, warning := range r.Warnings {
		if warning == id {
			return true
		}
	}
	return false
}

// addWarning は重複しないよう警告IDを追加する。
func (r *BakeResult) addWarning(id string) {
	if r.HasWarning(id) {
		return
	}
	r.Warnings = append(r.Warnings, id)
}

// BakeFileRequest はリグファイルの焼き込み要求を表す。
type BakeFileRequest struct {
	InputPath        string
	OutputPath       string
	ArmatureName     string
	Mode             BakeMode
	Selection        moutput.ISelectionProvider
	Reader           moutput.IRigReader
	Writer           moutput.IRigWriter
	ProgressReporter IBakeProgressReporter
}

// BakeFileResult はリグファイルの焼き込み結果を表す。
type BakeFileResult struct {
	Scene      *model.Scene
	OutputPath string
	Results    []*BakeResult
}

// reportBakeProgress は焼き込み進捗を通知する。
func reportBakeProgress(reporter IBakeProgressReporter, event BakeProgressEvent) {
	if reporter == nil {
		return
	}
	reporter.ReportBakeProgress(event)
}
