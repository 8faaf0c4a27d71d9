// 指示: miu200521358
package mmath

import (
	"fmt"
	"math"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
)

// EulerOrder はオイラー角の適用順を表す。
type EulerOrder int

const (
	EULER_ORDER_XYZ EulerOrder = iota
	EULER_ORDER_XZY
	EULER_ORDER_YXZ
	EULER_ORDER_YZX
	EULER_ORDER_ZXY
	EULER_ORDER_ZYX
)

var eulerOrderNames = [...]string{"XYZ", "XZY", "YXZ", "YZX", "ZXY", "ZYX"}

// String は表示名を返す。
func (o EulerOrder) String() string {
	if o < 0 || int(o) >= len(eulerOrderNames) {
		return fmt.Sprintf("EulerOrder(%d)", int(o))
	}
	return eulerOrderNames[o]
}

// ParseEulerOrder は表示名から適用順を返す。
func ParseEulerOrder(name string) (EulerOrder, error) {
	upper := strings.ToUpper(strings.TrimSpace(name))
	for i, candidate := range eulerOrderNames {
		if candidate == upper {
			return EulerOrder(i), nil
		}
	}
	return EULER_ORDER_XYZ, fmt.Errorf("未対応のオイラー順序です: %s", name)
}

// EulerToMat3 はラジアンのオイラー角から回転行列を生成する。
// 順序の先頭の軸から順に適用する。
func EulerToMat3(euler Vec3, order EulerOrder) mgl64.Mat3 {
	rx := mgl64.Rotate3DX(euler.X)
	ry := mgl64.Rotate3DY(euler.Y)
	rz := mgl64.Rotate3DZ(euler.Z)
	switch order {
	case EULER_ORDER_XZY:
		return ry.Mul3(rz).Mul3(rx)
	case EULER_ORDER_YXZ:
		return rz.Mul3(rx).Mul3(ry)
	case EULER_ORDER_YZX:
		return rx.Mul3(rz).Mul3(ry)
	case EULER_ORDER_ZXY:
		return ry.Mul3(rx).Mul3(rz)
	case EULER_ORDER_ZYX:
		return rx.Mul3(ry).Mul3(rz)
	default:
		return rz.Mul3(ry).Mul3(rx)
	}
}

// AxisAngleToMat3 は軸と角度から回転行列を生成する。軸がゼロの場合は単位行列。
func AxisAngleToMat3(axis Vec3, angle float64) mgl64.Mat3 {
	if axis.Length() <= VEC3_EPSILON {
		return mgl64.Ident3()
	}
	return mgl64.HomogRotate3D(angle, axis.Normalized().Gl()).Mat3()
}

// ComposeMat4 は位置・回転・スケールから行列を合成する。
func ComposeMat4(location Vec3, rotation mgl64.Mat3, scale Vec3) mgl64.Mat4 {
	m := Mat4FromMat3(rotation, ZERO_VEC3)
	m = RescaleMat4(m, scale)
	return WithTranslation(m, location)
}

// DecomposeMat4 は行列を位置・回転・スケールへ分解する。せん断成分は失われる。
func DecomposeMat4(m mgl64.Mat4) (Vec3, mgl64.Quat, Vec3) {
	location := Mat4Translation(m)
	normalized, scale := NormalizeMat4(m)
	if Mat4VolumeScale(m) < 0 {
		scale = NewVec3(-scale.X, scale.Y, scale.Z)
		normalized = SetMat4Col(normalized, 0, Mat4Col(normalized, 0).Negated())
	}
	normalized = OrthogonalizeMat4Stable(normalized, 1, true)
	rotation := mgl64.Mat4ToQuat(WithTranslation(normalized, ZERO_VEC3)).Normalize()
	return location, rotation, scale
}

// QuatNearEquals は同じ回転を表すか判定する。
func QuatNearEquals(a, b mgl64.Quat, epsilon float64) bool {
	return math.Abs(math.Abs(a.Normalize().Dot(b.Normalize()))-1) <= epsilon
}
