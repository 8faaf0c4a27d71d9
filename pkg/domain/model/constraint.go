// 指示: miu200521358
package model

import (
	"fmt"
	"strings"

	"github.com/miu200521358/mu_restbake/pkg/domain/mmath"
)

// ConstraintType はコンストレイントの種類を表す。
type ConstraintType int

const (
	// CONSTRAINT_TYPE_STRETCH_TO はターゲットへ伸縮するコンストレイント。
	CONSTRAINT_TYPE_STRETCH_TO ConstraintType = iota + 1
	// CONSTRAINT_TYPE_LIMIT_DISTANCE はターゲットとの距離を制限するコンストレイント。
	CONSTRAINT_TYPE_LIMIT_DISTANCE
)

// String は表示名を返す。
func (t ConstraintType) String() string {
	switch t {
	case CONSTRAINT_TYPE_STRETCH_TO:
		return "STRETCH_TO"
	case CONSTRAINT_TYPE_LIMIT_DISTANCE:
		return "LIMIT_DISTANCE"
	default:
		return fmt.Sprintf("ConstraintType(%d)", int(t))
	}
}

// ParseConstraintType は表示名からコンストレイントの種類を返す。
func ParseConstraintType(name string) (ConstraintType, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "STRETCH_TO":
		return CONSTRAINT_TYPE_STRETCH_TO, nil
	case "LIMIT_DISTANCE":
		return CONSTRAINT_TYPE_LIMIT_DISTANCE, nil
	default:
		return 0, fmt.Errorf("未対応のコンストレイントです: %s", name)
	}
}

// Constraint はポーズチャンネルに付くコンストレイントを表す。
type Constraint interface {
	Type() ConstraintType
	ConstraintName() string
	ConstraintTarget() ConstraintTarget
}

// ConstraintTarget はコンストレイントのターゲットを表す。
// BoneName が空の場合はアーマチュア空間の Point を使う。
type ConstraintTarget struct {
	BoneName string
	HeadTail float64
	Point    mmath.Vec3
}

// StretchVolumeMode は伸縮時の体積維持方法を表す。
type StretchVolumeMode int

const (
	STRETCH_VOLUME_XZ StretchVolumeMode = iota
	STRETCH_VOLUME_X
	STRETCH_VOLUME_Z
	STRETCH_VOLUME_NONE
)

// StretchPlane は伸縮時に保持する平面を表す。
type StretchPlane int

const (
	STRETCH_PLANE_X StretchPlane = iota
	STRETCH_PLANE_Z
	STRETCH_PLANE_SWING_Y
)

// StretchToConstraint はターゲットまで伸縮するコンストレイントを表す。
// RestLength はレスト基準の長さで、ゼロの場合は次回評価時に測り直す。
type StretchToConstraint struct {
	Name       string
	Target     ConstraintTarget
	RestLength float64
	Bulge      float64
	VolumeMode StretchVolumeMode
	Plane      StretchPlane
}

// NewStretchToConstraint は既定値のコンストレイントを生成する。
func NewStretchToConstraint(name string, target ConstraintTarget) *StretchToConstraint {
	return &StretchToConstraint{Name: name, Target: target, Bulge: 1}
}

func (c *StretchToConstraint) Type() ConstraintType               { return CONSTRAINT_TYPE_STRETCH_TO }
func (c *StretchToConstraint) ConstraintName() string             { return c.Name }
func (c *StretchToConstraint) ConstraintTarget() ConstraintTarget { return c.Target }

// LimitDistanceMode は距離制限の方法を表す。
type LimitDistanceMode int

const (
	LIMIT_DISTANCE_INSIDE LimitDistanceMode = iota
	LIMIT_DISTANCE_OUTSIDE
	LIMIT_DISTANCE_ON_SURFACE
)

// LimitDistanceConstraint はターゲットとの距離を制限するコンストレイントを表す。
// Distance がゼロの場合は次回評価時の距離を記録する。
type LimitDistanceConstraint struct {
	Name     string
	Target   ConstraintTarget
	Distance float64
	Mode     LimitDistanceMode
}

// NewLimitDistanceConstraint は既定値のコンストレイントを生成する。
func NewLimitDistanceConstraint(name string, target ConstraintTarget) *LimitDistanceConstraint {
	return &LimitDistanceConstraint{Name: name, Target: target}
}

func (c *LimitDistanceConstraint) Type() ConstraintType               { return CONSTRAINT_TYPE_LIMIT_DISTANCE }
func (c *LimitDistanceConstraint) ConstraintName() string             { return c.Name }
func (c *LimitDistanceConstraint) ConstraintTarget() ConstraintTarget { return c.Target }

var (
	stretchVolumeModeNames = []string{"VOLUME_XZ", "VOLUME_X", "VOLUME_Z", "NO_VOLUME"}
	stretchPlaneNames      = []string{"PLANE_X", "PLANE_Z", "SWING_Y"}
	limitDistanceModeNames = []string{"LIMITDIST_INSIDE", "LIMITDIST_OUTSIDE", "LIMITDIST_ONSURFACE"}
)

// String は表示名を返す。
func (m StretchVolumeMode) String() string { return enumName(stretchVolumeModeNames, int(m)) }

// String は表示名を返す。
func (p StretchPlane) String() string { return enumName(stretchPlaneNames, int(p)) }

// String は表示名を返す。
func (m LimitDistanceMode) String() string { return enumName(limitDistanceModeNames, int(m)) }

// ParseStretchVolumeMode は表示名から体積維持方法を返す。空文字は VOLUME_XZ。
func ParseStretchVolumeMode(name string) (StretchVolumeMode, error) {
	index, err := parseEnumName("体積維持方法", stretchVolumeModeNames, name)
	return StretchVolumeMode(index), err
}

// ParseStretchPlane は表示名から保持平面を返す。空文字は PLANE_X。
func ParseStretchPlane(name string) (StretchPlane, error) {
	index, err := parseEnumName("保持平面", stretchPlaneNames, name)
	return StretchPlane(index), err
}

// ParseLimitDistanceMode は表示名から距離制限方法を返す。空文字は LIMITDIST_INSIDE。
func ParseLimitDistanceMode(name string) (LimitDistanceMode, error) {
	index, err := parseEnumName("距離制限方法", limitDistanceModeNames, name)
	return LimitDistanceMode(index), err
}

func enumName(names []string, index int) string {
	if index < 0 || index >= len(names) {
		return fmt.Sprintf("%d", index)
	}
	return names[index]
}

func parseEnumName(kind string, names []string, name string) (int, error) {
	if name == "" {
		return 0, nil
	}
	for i, candidate := range names {
		if candidate == name {
			return i, nil
		}
	}
	return 0, fmt.Errorf("未対応の%sです: %s", kind, name)
}
