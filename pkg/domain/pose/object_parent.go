// 指示: miu200521358
package pose

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/miu200521358/mu_restbake/pkg/domain/mmath"
	"github.com/miu200521358/mu_restbake/pkg/domain/model"
)

// ObjectParentMatrix はオブジェクトの親行列を返す。
// ボーン親の場合は評価済みポーズ行列をボーン末端へ移動したものを使う。
func ObjectParentMatrix(armature *model.Armature, object *model.Object) (mgl64.Mat4, error) {
	switch object.ParentType {
	case model.PARENT_TYPE_OBJECT:
		return armature.ObjectMatrix, nil
	case model.PARENT_TYPE_BONE:
		bone, err := armature.Bones.GetByName(object.ParentBone)
		if err != nil {
			return mgl64.Ident4(), fmt.Errorf("親ボーンの解決に失敗しました: object=%s: %w", object.Name, err)
		}
		channel, err := armature.Channel(bone)
		if err != nil {
			return mgl64.Ident4(), err
		}
		boneMatrix := mmath.WithTranslation(channel.PoseMatrix, PoseTail(channel.PoseMatrix, bone.Length()))
		return armature.ObjectMatrix.Mul4(boneMatrix), nil
	default:
		return mgl64.Ident4(), nil
	}
}

// ObjectWorldMatrix はオブジェクトのワールド行列を返す。
func ObjectWorldMatrix(armature *model.Armature, object *model.Object) (mgl64.Mat4, error) {
	if object.ParentType == model.PARENT_TYPE_NONE {
		return object.LocalMatrix(), nil
	}
	parentMatrix, err := ObjectParentMatrix(armature, object)
	if err != nil {
		return mgl64.Ident4(), err
	}
	return parentMatrix.Mul4(object.ParentInverse).Mul4(object.LocalMatrix()), nil
}
