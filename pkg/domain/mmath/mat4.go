// 指示: miu200521358
package mmath

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	// MAT_DETERMINANT_EPSILON は行列式をゼロとみなす閾値。
	MAT_DETERMINANT_EPSILON = 1e-12
)

// Mat4Col は4x4行列の列(xyz)を返す。
func Mat4Col(m mgl64.Mat4, col int) Vec3 {
	return NewVec3(m[col*4], m[col*4+1], m[col*4+2])
}

// SetMat4Col は4x4行列の列(xyz)を差し替えた行列を返す。
func SetMat4Col(m mgl64.Mat4, col int, v Vec3) mgl64.Mat4 {
	m[col*4] = v.X
	m[col*4+1] = v.Y
	m[col*4+2] = v.Z
	return m
}

// Mat4Translation は平行移動成分を返す。
func Mat4Translation(m mgl64.Mat4) Vec3 {
	return Mat4Col(m, 3)
}

// WithTranslation は平行移動成分を差し替えた行列を返す。
func WithTranslation(m mgl64.Mat4, v Vec3) mgl64.Mat4 {
	return SetMat4Col(m, 3, v)
}

// Mat4FromMat3 は3x3行列と平行移動から4x4行列を生成する。
func Mat4FromMat3(m mgl64.Mat3, translation Vec3) mgl64.Mat4 {
	return WithTranslation(m.Mat4(), translation)
}

// MulMat4Point は点として行列を適用する。
func MulMat4Point(m mgl64.Mat4, v Vec3) Vec3 {
	return NewVec3FromGl(m.Mul4x1(v.Gl().Vec4(1)).Vec3())
}

// MulMat4Direction は平行移動を除いた3x3部分のみ適用する。
func MulMat4Direction(m mgl64.Mat4, v Vec3) Vec3 {
	return NewVec3FromGl(m.Mat3().Mul3x1(v.Gl()))
}

// Mat4Size は各軸のスケール(列ベクトル長)を返す。
func Mat4Size(m mgl64.Mat4) Vec3 {
	return NewVec3(Mat4Col(m, 0).Length(), Mat4Col(m, 1).Length(), Mat4Col(m, 2).Length())
}

// Mat4VolumeScale は3x3部分の行列式を返す。
func Mat4VolumeScale(m mgl64.Mat4) float64 {
	return m.Mat3().Det()
}

// Mat4SizeFixShear はせん断の影響を考慮し体積を保つスケールを返す。
func Mat4SizeFixShear(m mgl64.Mat4) Vec3 {
	size := Mat4Size(m)
	volume := size.X * size.Y * size.Z
	if volume != 0 {
		size = size.MuledScalar(math.Cbrt(math.Abs(Mat4VolumeScale(m) / volume)))
	}
	return size
}

// RescaleMat4 は各軸の列ベクトルをスケールした行列を返す。
func RescaleMat4(m mgl64.Mat4, scale Vec3) mgl64.Mat4 {
	m = SetMat4Col(m, 0, Mat4Col(m, 0).MuledScalar(scale.X))
	m = SetMat4Col(m, 1, Mat4Col(m, 1).MuledScalar(scale.Y))
	m = SetMat4Col(m, 2, Mat4Col(m, 2).MuledScalar(scale.Z))
	return m
}

// NormalizeMat4 は各軸を正規化した行列と元のスケールを返す。
func NormalizeMat4(m mgl64.Mat4) (mgl64.Mat4, Vec3) {
	size := Mat4Size(m)
	for col := 0; col < 3; col++ {
		m = SetMat4Col(m, col, Mat4Col(m, col).Normalized())
	}
	return m, size
}

// OrthogonalizeMat4Stable は主軸を保ったまま残り2軸を直交化する。
// normalize が false の場合は体積を保つようにスケールを残す。
func OrthogonalizeMat4Stable(m mgl64.Mat4, axis int, normalize bool) mgl64.Mat4 {
	primary, second, third := 1, 0, 2
	switch axis {
	case 0:
		primary, second, third = 0, 1, 2
	case 2:
		primary, second, third = 2, 0, 1
	}

	v1 := Mat4Col(m, primary)
	v2 := Mat4Col(m, second)
	v3 := Mat4Col(m, third)

	lenSq := v1.Dot(v1)
	if lenSq > 0 {
		v2 = v2.Subed(v1.MuledScalar(v2.Dot(v1) / lenSq))
		v3 = v3.Subed(v1.MuledScalar(v3.Dot(v1) / lenSq))
		if normalize {
			v1 = v1.MuledScalar(1 / math.Sqrt(lenSq))
		}
	}

	v2, v3 = orthogonalizePairStable(v2, v3)
	if normalize {
		v2 = v2.Normalized()
		v3 = v3.Normalized()
	}

	m = SetMat4Col(m, primary, v1)
	m = SetMat4Col(m, second, v2)
	m = SetMat4Col(m, third, v3)
	return m
}

// orthogonalizePairStable は2軸の角度を対称に90度へ補正する。
func orthogonalizePairStable(v2, v3 Vec3) (Vec3, Vec3) {
	len2 := v2.Length()
	len3 := v3.Length()
	if len2 <= VEC3_EPSILON || len3 <= VEC3_EPSILON {
		return v2, v3
	}

	n2 := v2.MuledScalar(1 / len2)
	n3 := v3.MuledScalar(1 / len3)
	cosAngle := n2.Dot(n3)
	absCos := math.Abs(cosAngle)
	if absCos <= MAT_DETERMINANT_EPSILON || absCos >= 1-MAT_DETERMINANT_EPSILON {
		return v2, v3
	}

	bisector := n2.Added(n3).Normalized()
	perpendicular := n2.Subed(n3).Normalized()
	// 2軸が張る面積を保つ
	areaFactor := math.Sqrt(math.Sqrt(1 - cosAngle*cosAngle))

	newN2 := bisector.Added(perpendicular).MuledScalar(1 / math.Sqrt2)
	newN3 := bisector.Subed(perpendicular).MuledScalar(1 / math.Sqrt2)
	return newN2.MuledScalar(len2 * areaFactor), newN3.MuledScalar(len3 * areaFactor)
}

// InvertMat4 は逆行列を返す。特異行列の場合は false を返す。
func InvertMat4(m mgl64.Mat4) (mgl64.Mat4, bool) {
	det := m.Det()
	if math.Abs(det) <= MAT_DETERMINANT_EPSILON || math.IsNaN(det) {
		return mgl64.Ident4(), false
	}
	return m.Inv(), true
}

// Mat4NearEquals は許容誤差内で一致するか判定する。
func Mat4NearEquals(a, b mgl64.Mat4, epsilon float64) bool {
	for i := range a {
		if math.Abs(a[i]-b[i]) > epsilon {
			return false
		}
	}
	return true
}

// Mat4IsFinite は全要素が有限値か判定する。
func Mat4IsFinite(m mgl64.Mat4) bool {
	for _, f := range m {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}
