// 指示: miu200521358
// Package mmath はボーン計算で使うベクトル・行列演算を提供する。
package mmath

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/spatial/r3"
)

// VEC3_EPSILON はベクトル長をゼロとみなす閾値。
const VEC3_EPSILON = 1e-8

// Vec3 は3次元ベクトルを表す。
type Vec3 struct {
	r3.Vec
}

var (
	ZERO_VEC3       = Vec3{}
	ONE_VEC3        = Vec3{Vec: r3.Vec{X: 1, Y: 1, Z: 1}}
	UNIT_X_VEC3     = Vec3{Vec: r3.Vec{X: 1}}
	UNIT_Y_VEC3     = Vec3{Vec: r3.Vec{Y: 1}}
	UNIT_Z_VEC3     = Vec3{Vec: r3.Vec{Z: 1}}
	UNIT_Y_NEG_VEC3 = Vec3{Vec: r3.Vec{Y: -1}}
)

// NewVec3 は成分からベクトルを生成する。
func NewVec3(x, y, z float64) Vec3 {
	return Vec3{Vec: r3.Vec{X: x, Y: y, Z: z}}
}

// NewVec3FromGl はmgl64ベクトルから生成する。
func NewVec3FromGl(v mgl64.Vec3) Vec3 {
	return NewVec3(v[0], v[1], v[2])
}

// Gl はmgl64ベクトルへ変換する。
func (v Vec3) Gl() mgl64.Vec3 {
	return mgl64.Vec3{v.X, v.Y, v.Z}
}

// Added は加算結果を返す。
func (v Vec3) Added(other Vec3) Vec3 {
	return Vec3{Vec: r3.Add(v.Vec, other.Vec)}
}

// Subed は減算結果を返す。
func (v Vec3) Subed(other Vec3) Vec3 {
	return Vec3{Vec: r3.Sub(v.Vec, other.Vec)}
}

// MuledScalar はスカラー倍を返す。
func (v Vec3) MuledScalar(f float64) Vec3 {
	return Vec3{Vec: r3.Scale(f, v.Vec)}
}

// Muled は成分ごとの積を返す。
func (v Vec3) Muled(other Vec3) Vec3 {
	return NewVec3(v.X*other.X, v.Y*other.Y, v.Z*other.Z)
}

// Dot は内積を返す。
func (v Vec3) Dot(other Vec3) float64 {
	return r3.Dot(v.Vec, other.Vec)
}

// Cross は外積を返す。
func (v Vec3) Cross(other Vec3) Vec3 {
	return Vec3{Vec: r3.Cross(v.Vec, other.Vec)}
}

// Length はベクトル長を返す。
func (v Vec3) Length() float64 {
	return r3.Norm(v.Vec)
}

// Normalized は正規化したベクトルを返す。長さがゼロの場合はそのまま返す。
func (v Vec3) Normalized() Vec3 {
	if v.Length() <= VEC3_EPSILON {
		return v
	}
	return Vec3{Vec: r3.Unit(v.Vec)}
}

// Negated は符号反転を返す。
func (v Vec3) Negated() Vec3 {
	return v.MuledScalar(-1)
}

// SafeInverted は各成分の逆数を返す。ゼロ成分はゼロのまま。
func (v Vec3) SafeInverted() Vec3 {
	inv := func(f float64) float64 {
		if f == 0 {
			return 0
		}
		return 1 / f
	}
	return NewVec3(inv(v.X), inv(v.Y), inv(v.Z))
}

// IsZero は全成分がゼロか判定する。
func (v Vec3) IsZero() bool {
	return v.X == 0 && v.Y == 0 && v.Z == 0
}

// NearEquals は許容誤差内で一致するか判定する。
func (v Vec3) NearEquals(other Vec3, epsilon float64) bool {
	return math.Abs(v.X-other.X) <= epsilon &&
		math.Abs(v.Y-other.Y) <= epsilon &&
		math.Abs(v.Z-other.Z) <= epsilon
}

// IsFinite は全成分が有限値か判定する。
func (v Vec3) IsFinite() bool {
	for _, f := range []float64{v.X, v.Y, v.Z} {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}

// String は表示用文字列を返す。
func (v Vec3) String() string {
	return fmt.Sprintf("[x=%.6f, y=%.6f, z=%.6f]", v.X, v.Y, v.Z)
}

// DegToRad は度をラジアンへ変換する。
func DegToRad(degree float64) float64 {
	return degree * math.Pi / 180.0
}

// RadToDeg はラジアンを度へ変換する。
func RadToDeg(radian float64) float64 {
	return radian * 180.0 / math.Pi
}
