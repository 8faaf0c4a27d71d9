// 指示: miu200521358
// Package pose はボーンの親変形とポーズ評価を提供する。
package pose

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/miu200521358/mu_restbake/pkg/domain/mmath"
	"github.com/miu200521358/mu_restbake/pkg/domain/model"
	"github.com/miu200521358/mu_restbake/pkg/domain/model/merrors"
)

// BoneParentTransform は親が子のワールド変形へ与える寄与を表す。
// 位置成分と回転・スケール成分を分けて保持する。
type BoneParentTransform struct {
	RotScaleMatrix mgl64.Mat4
	LocationMatrix mgl64.Mat4
	PostScale      mmath.Vec3
}

// NewBoneParentTransform は恒等の寄与を返す。
func NewBoneParentTransform() BoneParentTransform {
	return BoneParentTransform{
		RotScaleMatrix: mgl64.Ident4(),
		LocationMatrix: mgl64.Ident4(),
		PostScale:      mmath.ONE_VEC3,
	}
}

// CalcRootBoneParentTransform は親を持たないボーンの寄与を返す。
func CalcRootBoneParentTransform(flag model.BoneFlag, offset mgl64.Mat4) BoneParentTransform {
	bpt := NewBoneParentTransform()
	bpt.RotScaleMatrix = offset
	if flag.Has(model.BONE_FLAG_NO_LOCAL_LOCATION) {
		bpt.LocationMatrix = mmath.WithTranslation(mgl64.Ident4(), mmath.Mat4Translation(offset))
	} else {
		bpt.LocationMatrix = offset
	}
	return bpt
}

// CalcBoneParentTransformFromMatrices は親のレスト行列と親のポーズ行列から寄与を返す。
func CalcBoneParentTransformFromMatrices(
	flag model.BoneFlag,
	mode model.InheritScaleMode,
	offset mgl64.Mat4,
	parentRest mgl64.Mat4,
	parentPose mgl64.Mat4,
) BoneParentTransform {
	bpt := NewBoneParentTransform()
	useRotation := !flag.Has(model.BONE_FLAG_HINGE)
	fullTransform := useRotation && mode == model.INHERIT_SCALE_FULL

	if fullTransform {
		bpt.RotScaleMatrix = parentPose.Mul4(offset)
	} else {
		var parentMatrix mgl64.Mat4
		if useRotation {
			parentMatrix = parentPose
			switch mode {
			case model.INHERIT_SCALE_NONE, model.INHERIT_SCALE_UNIFORM:
				parentMatrix = mmath.OrthogonalizeMat4Stable(parentMatrix, 1, true)
			case model.INHERIT_SCALE_ALIGNED:
				parentMatrix = mmath.OrthogonalizeMat4Stable(parentMatrix, 1, false)
				parentMatrix, bpt.PostScale = mmath.NormalizeMat4(parentMatrix)
			case model.INHERIT_SCALE_FULL_NO_SCALE:
				parentMatrix, _ = mmath.NormalizeMat4(parentMatrix)
			}
		} else {
			// ヒンジは親のレスト向きを使う
			parentMatrix = parentRest
			switch mode {
			case model.INHERIT_SCALE_FULL:
				parentMatrix = mmath.RescaleMat4(parentMatrix, mmath.Mat4Size(parentPose))
			case model.INHERIT_SCALE_FIX_SHEAR:
				parentMatrix = mmath.RescaleMat4(parentMatrix, mmath.Mat4SizeFixShear(parentPose))
			case model.INHERIT_SCALE_ALIGNED:
				bpt.PostScale = mmath.Mat4SizeFixShear(parentPose)
			}
		}

		if mode == model.INHERIT_SCALE_UNIFORM {
			uniform := math.Cbrt(math.Abs(mmath.Mat4VolumeScale(parentPose)))
			parentMatrix = mmath.RescaleMat4(parentMatrix, mmath.NewVec3(uniform, uniform, uniform))
		}

		bpt.RotScaleMatrix = parentMatrix.Mul4(offset)
		if mode == model.INHERIT_SCALE_FIX_SHEAR {
			bpt.RotScaleMatrix = mmath.OrthogonalizeMat4Stable(bpt.RotScaleMatrix, 1, false)
		}
	}

	switch {
	case flag.Has(model.BONE_FLAG_NO_LOCAL_LOCATION):
		// 位置は親ポーズの向きで解釈し、ボーン自身のレスト回転は含めない
		head := mmath.MulMat4Point(parentPose, mmath.Mat4Translation(offset))
		bpt.LocationMatrix = mmath.Mat4FromMat3(parentPose.Mat3(), head)
	case !fullTransform:
		bpt.LocationMatrix = parentPose.Mul4(offset)
	default:
		bpt.LocationMatrix = bpt.RotScaleMatrix
	}
	return bpt
}

// Inverted は寄与を取り除く逆変換を返す。特異行列の場合は DegenerateTransformError。
func (t BoneParentTransform) Inverted() (BoneParentTransform, error) {
	rotScale, ok := mmath.InvertMat4(t.RotScaleMatrix)
	if !ok {
		return NewBoneParentTransform(), merrors.NewDegenerateTransformError("", "親の回転スケール行列が特異です")
	}
	location, ok := mmath.InvertMat4(t.LocationMatrix)
	if !ok {
		return NewBoneParentTransform(), merrors.NewDegenerateTransformError("", "親の位置行列が特異です")
	}
	return BoneParentTransform{
		RotScaleMatrix: rotScale,
		LocationMatrix: location,
		PostScale:      t.PostScale.SafeInverted(),
	}, nil
}

// Combined は other を適用した後にこの寄与を適用する合成を返す。
func (t BoneParentTransform) Combined(other BoneParentTransform) BoneParentTransform {
	return BoneParentTransform{
		RotScaleMatrix: t.RotScaleMatrix.Mul4(other.RotScaleMatrix),
		LocationMatrix: t.LocationMatrix.Mul4(other.LocationMatrix),
		PostScale:      t.PostScale.Muled(other.PostScale),
	}
}

// Apply はローカル行列へ寄与を適用した行列を返す。
func (t BoneParentTransform) Apply(m mgl64.Mat4) mgl64.Mat4 {
	out := t.RotScaleMatrix.Mul4(m)
	out = mmath.WithTranslation(out, mmath.MulMat4Point(t.LocationMatrix, mmath.Mat4Translation(m)))
	return mmath.RescaleMat4(out, t.PostScale)
}

// ApplyLocation は位置チャンネルを位置行列の向き・スケールで変換する。
func (t BoneParentTransform) ApplyLocation(location mmath.Vec3) mmath.Vec3 {
	return mmath.MulMat4Direction(t.LocationMatrix, location)
}
