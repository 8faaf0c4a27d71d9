// 指示: miu200521358
package model

import (
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/miu200521358/mu_restbake/pkg/domain/mmath"
)

// BoneFlag はボーンの挙動フラグを表す。
type BoneFlag int

const (
	// BONE_FLAG_CONNECTED は親の末端に接続され、位置チャンネルを無視する。
	BONE_FLAG_CONNECTED BoneFlag = 1 << iota
	// BONE_FLAG_HINGE は親の回転を継承しない。
	BONE_FLAG_HINGE
	// BONE_FLAG_NO_LOCAL_LOCATION は位置チャンネルを親の向きで解釈する。
	BONE_FLAG_NO_LOCAL_LOCATION
	// BONE_FLAG_UNKEYED はレスト焼き込み後にキー未設定扱いとする。
	BONE_FLAG_UNKEYED
)

// Has は指定フラグを持つか判定する。
func (f BoneFlag) Has(flag BoneFlag) bool {
	return f&flag != 0
}

// InheritScaleMode は親スケールの継承方法を表す。
type InheritScaleMode int

const (
	// INHERIT_SCALE_FULL は親のスケールとせん断をそのまま継承する。
	INHERIT_SCALE_FULL InheritScaleMode = iota
	// INHERIT_SCALE_FIX_SHEAR は体積を保ったまません断を取り除く。
	INHERIT_SCALE_FIX_SHEAR
	// INHERIT_SCALE_UNIFORM は親の体積スケールの立方根のみ継承する。
	INHERIT_SCALE_UNIFORM
	// INHERIT_SCALE_NONE は親スケールを継承しない。
	INHERIT_SCALE_NONE
	// INHERIT_SCALE_FULL_NO_SCALE は各軸の正規化のみ行う旧方式。
	INHERIT_SCALE_FULL_NO_SCALE
	// INHERIT_SCALE_ALIGNED は親スケールを子の軸に沿って後掛けする。
	INHERIT_SCALE_ALIGNED
)

var inheritScaleModeNames = [...]string{"FULL", "FIX_SHEAR", "UNIFORM", "NONE", "FULL_NO_SCALE", "ALIGNED"}

// String は表示名を返す。
func (m InheritScaleMode) String() string {
	if m < 0 || int(m) >= len(inheritScaleModeNames) {
		return fmt.Sprintf("InheritScaleMode(%d)", int(m))
	}
	return inheritScaleModeNames[m]
}

// ParseInheritScaleMode は表示名から継承方法を返す。空文字は FULL。
func ParseInheritScaleMode(name string) (InheritScaleMode, error) {
	upper := strings.ToUpper(strings.TrimSpace(name))
	if upper == "" {
		return INHERIT_SCALE_FULL, nil
	}
	for i, candidate := range inheritScaleModeNames {
		if candidate == upper {
			return InheritScaleMode(i), nil
		}
	}
	return INHERIT_SCALE_FULL, fmt.Errorf("未対応のスケール継承方法です: %s", name)
}

// BBoneShape はベンディボーンの形状パラメータを表す。
type BBoneShape struct {
	CurveInX  float64
	CurveInZ  float64
	CurveOutX float64
	CurveOutZ float64
	Roll1     float64
	Roll2     float64
	Ease1     float64
	Ease2     float64
	ScaleIn   mmath.Vec3
	ScaleOut  mmath.Vec3
}

// NewRestBBoneShape はレスト側の初期形状を返す。
func NewRestBBoneShape() BBoneShape {
	return BBoneShape{Ease1: 1, Ease2: 1, ScaleIn: mmath.ONE_VEC3, ScaleOut: mmath.ONE_VEC3}
}

// NewPoseBBoneShape はポーズ側の初期差分を返す。
func NewPoseBBoneShape() BBoneShape {
	return BBoneShape{ScaleIn: mmath.ONE_VEC3, ScaleOut: mmath.ONE_VEC3}
}

// Bone はボーンのレスト情報を表す。Head/Tail はアーマチュア空間の座標。
type Bone struct {
	Index            int
	Name             string
	ParentIndex      int
	Head             mmath.Vec3
	Tail             mmath.Vec3
	Roll             float64
	Flag             BoneFlag
	InheritScaleMode InheritScaleMode
	Segments         int
	BBone            BBoneShape
}

// NewBone はボーンを生成する。
func NewBone(name string, head, tail mmath.Vec3) *Bone {
	return &Bone{
		Index:       -1,
		Name:        name,
		ParentIndex: -1,
		Head:        head,
		Tail:        tail,
		Segments:    1,
		BBone:       NewRestBBoneShape(),
	}
}

// Vector は頭から末端へのベクトルを返す。
func (b *Bone) Vector() mmath.Vec3 {
	return b.Tail.Subed(b.Head)
}

// Length はボーン長を返す。
func (b *Bone) Length() float64 {
	return b.Vector().Length()
}

// IsZeroLength はボーン長がゼロか判定する。
func (b *Bone) IsZeroLength() bool {
	return b.Length() <= mmath.VEC3_EPSILON
}

// IsBendy はベンディボーンか判定する。
func (b *Bone) IsBendy() bool {
	return b.Segments > 1
}

// HasParent は親を持つか判定する。
func (b *Bone) HasParent() bool {
	return b.ParentIndex >= 0
}

// RestMatrix は頭・末端・ロールから求めたスケールなしのレスト行列を返す。
func (b *Bone) RestMatrix() mgl64.Mat4 {
	return mmath.Mat4FromMat3(mmath.VecRollToMat3(b.Vector(), b.Roll), b.Head)
}

// OffsetMatrix は親のレスト空間内での静的オフセット行列を返す。
// 親がない場合はレスト行列そのもの。
func (b *Bone) OffsetMatrix(parent *Bone) mgl64.Mat4 {
	if parent == nil {
		return b.RestMatrix()
	}
	// レスト行列は正規直交なので常に逆行列を持つ
	return parent.RestMatrix().Inv().Mul4(b.RestMatrix())
}

// SetRestMatrix はレスト行列と長さから頭・末端・ロールを設定する。
func (b *Bone) SetRestMatrix(rest mgl64.Mat4, length float64) {
	b.Head = mmath.Mat4Translation(rest)
	b.Tail = mmath.MulMat4Point(rest, mmath.NewVec3(0, length, 0))
	if length > mmath.VEC3_EPSILON {
		b.Roll = mmath.Mat3VecToRoll(rest.Mat3(), b.Vector())
	}
}
