// 指示: miu200521358
package pose

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/miu200521358/mu_restbake/pkg/domain/mmath"
	"github.com/miu200521358/mu_restbake/pkg/domain/model"
)

// solveStretchTo はボーンのY軸をターゲットへ向け、距離に応じて伸縮させる。
// RestLength がゼロの場合は現在の距離を基準長として記録する。
func solveStretchTo(constraint model.Constraint, matrix mgl64.Mat4, target mmath.Vec3) mgl64.Mat4 {
	data, ok := constraint.(*model.StretchToConstraint)
	if !ok {
		return matrix
	}

	if data.Plane == model.STRETCH_PLANE_SWING_Y {
		matrix = mmath.OrthogonalizeMat4Stable(matrix, 1, false)
	}
	normalized, size := mmath.NormalizeMat4(matrix)
	xAxis := mmath.Mat4Col(normalized, 0)
	yAxis := mmath.Mat4Col(normalized, 1)
	zAxis := mmath.Mat4Col(normalized, 2)

	direction := target.Subed(mmath.Mat4Translation(normalized))
	dist := direction.Length()
	direction = direction.Normalized()
	if size.Y != 0 {
		dist /= size.Y
	} else {
		dist = 0
	}

	if data.RestLength == 0 {
		data.RestLength = dist
	}
	if data.RestLength <= mmath.VEC3_EPSILON || dist <= mmath.VEC3_EPSILON {
		return matrix
	}

	scaleY := dist / data.RestLength
	bulge := math.Pow(data.RestLength/dist, data.Bulge)
	scaleX, scaleZ := 1.0, 1.0
	switch data.VolumeMode {
	case model.STRETCH_VOLUME_XZ:
		scaleX = math.Sqrt(bulge)
		scaleZ = scaleX
	case model.STRETCH_VOLUME_X:
		scaleX = bulge
	case model.STRETCH_VOLUME_Z:
		scaleZ = bulge
	}
	size = size.Muled(mmath.NewVec3(scaleX, scaleY, scaleZ))

	switch data.Plane {
	case model.STRETCH_PLANE_SWING_Y:
		swing := mgl64.QuatBetweenVectors(yAxis.Gl(), direction.Gl()).Mat4()
		xAxis = mmath.MulMat4Direction(swing, xAxis)
		zAxis = mmath.MulMat4Direction(swing, zAxis)
		yAxis = direction
	case model.STRETCH_PLANE_Z:
		orth := zAxis.Cross(direction).Normalized()
		xAxis = orth.Negated()
		zAxis = direction.Cross(orth).Normalized()
		yAxis = direction
	default:
		orth := xAxis.Cross(direction).Normalized()
		zAxis = orth
		xAxis = direction.Cross(orth).Normalized()
		yAxis = direction
	}

	normalized = mmath.SetMat4Col(normalized, 0, xAxis)
	normalized = mmath.SetMat4Col(normalized, 1, yAxis)
	normalized = mmath.SetMat4Col(normalized, 2, zAxis)
	return mmath.RescaleMat4(normalized, size)
}

// solveLimitDistance はターゲットとの距離を記録距離に収める。
// Distance がゼロの場合は現在の距離を記録する。
func solveLimitDistance(constraint model.Constraint, matrix mgl64.Mat4, target mmath.Vec3) mgl64.Mat4 {
	data, ok := constraint.(*model.LimitDistanceConstraint)
	if !ok {
		return matrix
	}

	head := mmath.Mat4Translation(matrix)
	dist := head.Subed(target).Length()
	if data.Distance == 0 {
		data.Distance = dist
	}

	clamp := false
	switch data.Mode {
	case model.LIMIT_DISTANCE_OUTSIDE:
		clamp = dist <= data.Distance
	case model.LIMIT_DISTANCE_ON_SURFACE:
		clamp = math.Abs(dist-data.Distance) > mmath.VEC3_EPSILON
	default:
		clamp = dist >= data.Distance
	}
	if !clamp || dist == 0 {
		return matrix
	}

	factor := data.Distance / dist
	clamped := target.Added(head.Subed(target).MuledScalar(factor))
	return mmath.WithTranslation(matrix, clamped)
}
