// 指示: miu200521358
package mmath

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	// ROLL_SAFE_THRESHOLD は 1+y をそのまま除数に使える下限。
	ROLL_SAFE_THRESHOLD = 6.1e-3
	// ROLL_CRITICAL_THRESHOLD はXZ平面距離がこれ未満なら -Y 軸上の特異点とみなす値。
	ROLL_CRITICAL_THRESHOLD = 2.5e-4
)

// VecRollToMat3 はボーン方向ベクトルとロールから回転行列を生成する。
// 長さゼロのベクトルは +Y 方向として扱う。
func VecRollToMat3(vec Vec3, roll float64) mgl64.Mat3 {
	if vec.Length() <= VEC3_EPSILON {
		return VecRollToMat3Normalized(UNIT_Y_VEC3, roll)
	}
	return VecRollToMat3Normalized(vec.Normalized(), roll)
}

// VecRollToMat3Normalized は正規化済みのボーン方向とロールから回転行列を生成する。
// Y軸をボーン方向へ向ける最短回転にロール回転を合成する。
func VecRollToMat3Normalized(nor Vec3, roll float64) mgl64.Mat3 {
	x, y, z := nor.X, nor.Y, nor.Z
	theta := 1.0 + y
	thetaAlt := x*x + z*z

	var bMatrix mgl64.Mat3
	if theta > ROLL_SAFE_THRESHOLD || thetaAlt > ROLL_CRITICAL_THRESHOLD*ROLL_CRITICAL_THRESHOLD {
		if theta <= ROLL_SAFE_THRESHOLD {
			// -Y 付近では 1+y の精度が落ちるため x,z から級数展開で求める
			theta = thetaAlt*0.5 + thetaAlt*thetaAlt*0.125
		}
		bMatrix = mgl64.Mat3{
			1 - x*x/theta, -x, -x * z / theta,
			x, y, z,
			-x * z / theta, -z, 1 - z*z/theta,
		}
	} else {
		bMatrix = mgl64.Mat3{
			-1, 0, 0,
			0, -1, 0,
			0, 0, 1,
		}
	}

	if roll == 0 {
		return bMatrix
	}
	rollMatrix := mgl64.HomogRotate3D(roll, nor.Gl()).Mat3()
	return rollMatrix.Mul3(bMatrix)
}

// Mat3VecToRoll は回転行列がボーン方向まわりに持つねじれ角(ロール)を返す。
func Mat3VecToRoll(m mgl64.Mat3, vec Vec3) float64 {
	vecMatrix := VecRollToMat3(vec, 0)
	// 回転行列の逆行列は転置
	rollMatrix := vecMatrix.Transpose().Mul3(normalizeMat3(m))

	q := mgl64.Mat4ToQuat(rollMatrix.Mat4()).Normalize()
	if q.W < 0 {
		q = q.Scale(-1)
	}
	return 2 * math.Atan2(q.V[1], q.W)
}

// normalizeMat3 は各列を正規化した行列を返す。
func normalizeMat3(m mgl64.Mat3) mgl64.Mat3 {
	for col := 0; col < 3; col++ {
		v := NewVec3FromGl(m.Col(col)).Normalized()
		m.SetCol(col, v.Gl())
	}
	return m
}
