// 指示: miu200521358
package minteractor

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/miu200521358/mu_restbake/pkg/domain/mmath"
	"github.com/miu200521358/mu_restbake/pkg/domain/model"
	"github.com/miu200521358/mu_restbake/pkg/domain/pose"
	"github.com/miu200521358/mu_restbake/pkg/shared/base/logging"
)

// capturedObject は焼き込み前に記録した子オブジェクトのワールド行列を表す。
type capturedObject struct {
	object *model.Object
	world  mgl64.Mat4
}

// captureDependentObjects はボーンへ親子付けされたオブジェクトのワールド行列を記録する。
// 親ボーンが見つからないオブジェクトは警告して対象外にする。
func captureDependentObjects(armature *model.Armature, scene *model.Scene, result *BakeResult) []capturedObject {
	objects := scene.BoneParentedObjects(armature.Name)
	captured := make([]capturedObject, 0, len(objects))
	for _, object := range objects {
		world, err := pose.ObjectWorldMatrix(armature, object)
		if err != nil {
			logging.DefaultLogger().Warn("子オブジェクトの親ボーンが見つかりません: object=%s bone=%s",
				object.Name, object.ParentBone)
			result.addWarning(model.BakeWarningObjectParentBoneMissing)
			continue
		}
		captured = append(captured, capturedObject{object: object, world: world})
	}
	return captured
}

// fixDependentObjects は再評価後の親行列に合わせて子オブジェクトのローカル変形と親逆行列を更新し、
// ワールド行列を焼き込み前と一致させる。
func fixDependentObjects(armature *model.Armature, captured []capturedObject, result *BakeResult) {
	for _, entry := range captured {
		object := entry.object
		parentMatrix, err := pose.ObjectParentMatrix(armature, object)
		if err != nil {
			logging.DefaultLogger().Warn("子オブジェクトの親ボーンが見つかりません: object=%s bone=%s",
				object.Name, object.ParentBone)
			result.addWarning(model.BakeWarningObjectParentBoneMissing)
			continue
		}
		parentInverse, ok := mmath.InvertMat4(parentMatrix)
		if !ok {
			logging.DefaultLogger().Warn("子オブジェクトの親行列が特異なため補正しません: object=%s", object.Name)
			result.addWarning(model.BakeWarningObjectParentSingular)
			continue
		}
		object.ApplyMatrix(entry.world)
		object.ParentInverse = parentInverse
		result.FixedObjectNames = append(result.FixedObjectNames, object.Name)
	}
}
