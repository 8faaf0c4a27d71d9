// 指示: miu200521358
package model

import (
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/miu200521358/mu_restbake/pkg/domain/mmath"
)

// ParentType はオブジェクトの親子付け方法を表す。
type ParentType int

const (
	// PARENT_TYPE_NONE は親なし。
	PARENT_TYPE_NONE ParentType = iota
	// PARENT_TYPE_OBJECT はアーマチュアオブジェクトへの親子付け。
	PARENT_TYPE_OBJECT
	// PARENT_TYPE_BONE はボーンへの親子付け。
	PARENT_TYPE_BONE
)

var parentTypeNames = [...]string{"NONE", "OBJECT", "BONE"}

// String は表示名を返す。
func (p ParentType) String() string {
	if p < 0 || int(p) >= len(parentTypeNames) {
		return fmt.Sprintf("ParentType(%d)", int(p))
	}
	return parentTypeNames[p]
}

// ParseParentType は表示名から親子付け方法を返す。空文字は親なし。
func ParseParentType(name string) (ParentType, error) {
	upper := strings.ToUpper(strings.TrimSpace(name))
	if upper == "" {
		return PARENT_TYPE_NONE, nil
	}
	for i, candidate := range parentTypeNames {
		if candidate == upper {
			return ParentType(i), nil
		}
	}
	return PARENT_TYPE_NONE, fmt.Errorf("未対応の親子付け方法です: %s", name)
}

// Object はシーン上のオブジェクトを表す。
type Object struct {
	Name           string
	ParentArmature string
	ParentType     ParentType
	ParentBone     string
	Location       mmath.Vec3
	Rotation       mgl64.Quat
	Scale          mmath.Vec3
	ParentInverse  mgl64.Mat4
}

// NewObject は親なしのオブジェクトを生成する。
func NewObject(name string) *Object {
	return &Object{
		Name:          name,
		Rotation:      mgl64.QuatIdent(),
		Scale:         mmath.ONE_VEC3,
		ParentInverse: mgl64.Ident4(),
	}
}

// LocalMatrix は位置・回転・スケールから求めたローカル行列を返す。
func (o *Object) LocalMatrix() mgl64.Mat4 {
	return mmath.ComposeMat4(o.Location, o.Rotation.Normalize().Mat4().Mat3(), o.Scale)
}

// ApplyMatrix は行列を位置・回転・スケールへ分解して設定する。
func (o *Object) ApplyMatrix(m mgl64.Mat4) {
	o.Location, o.Rotation, o.Scale = mmath.DecomposeMat4(m)
}

// IsBoneParentedTo はアーマチュアのボーンへ親子付けされているか判定する。
func (o *Object) IsBoneParentedTo(armatureName string) bool {
	return o.ParentType == PARENT_TYPE_BONE && o.ParentArmature == armatureName && o.ParentBone != ""
}

// Scene はアーマチュアとオブジェクトの集合を表す。
type Scene struct {
	Armatures []*Armature
	Objects   []*Object
}

// NewScene はシーンを生成する。
func NewScene() *Scene {
	return &Scene{}
}

// Armature は名前でアーマチュアを返す。
func (s *Scene) Armature(name string) *Armature {
	if s == nil {
		return nil
	}
	for _, armature := range s.Armatures {
		if armature.Name == name {
			return armature
		}
	}
	return nil
}

// BoneParentedObjects はアーマチュアのボーンへ親子付けされたオブジェクトを返す。
func (s *Scene) BoneParentedObjects(armatureName string) []*Object {
	if s == nil {
		return nil
	}
	objects := make([]*Object, 0)
	for _, object := range s.Objects {
		if object.IsBoneParentedTo(armatureName) {
			objects = append(objects, object)
		}
	}
	return objects
}
