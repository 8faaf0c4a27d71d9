// 指示: miu200521358
package model

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/miu200521358/mu_restbake/pkg/domain/mmath"
	"github.com/miu200521358/mu_restbake/pkg/domain/model/merrors"
)

// RotationMode はポーズ回転の表現方法を表す。
type RotationMode int

const (
	// ROTATION_MODE_QUATERNION はクォータニオン回転。
	ROTATION_MODE_QUATERNION RotationMode = iota
	// ROTATION_MODE_EULER はオイラー角回転。
	ROTATION_MODE_EULER
	// ROTATION_MODE_AXIS_ANGLE は軸角度回転。
	ROTATION_MODE_AXIS_ANGLE
)

var rotationModeNames = [...]string{"QUATERNION", "EULER", "AXIS_ANGLE"}

// String は表示名を返す。
func (m RotationMode) String() string {
	if m < 0 || int(m) >= len(rotationModeNames) {
		return fmt.Sprintf("RotationMode(%d)", int(m))
	}
	return rotationModeNames[m]
}

// ParseRotationMode は表示名から回転表現を返す。空文字はクォータニオン。
func ParseRotationMode(name string) (RotationMode, error) {
	if name == "" {
		return ROTATION_MODE_QUATERNION, nil
	}
	for i, candidate := range rotationModeNames {
		if candidate == name {
			return RotationMode(i), nil
		}
	}
	return ROTATION_MODE_QUATERNION, fmt.Errorf("未対応の回転表現です: %s", name)
}

// PoseTransform はポーズチャンネルのローカル変形を表す。
type PoseTransform struct {
	Location      mmath.Vec3
	RotationMode  RotationMode
	EulerOrder    mmath.EulerOrder
	Quaternion    mgl64.Quat
	Euler         mmath.Vec3
	AxisAngleAxis mmath.Vec3
	AxisAngle     float64
	Scale         mmath.Vec3
	BBone         BBoneShape
}

// NewPoseTransform は恒等変形を返す。
func NewPoseTransform() PoseTransform {
	return PoseTransform{
		Quaternion:    mgl64.QuatIdent(),
		AxisAngleAxis: mmath.UNIT_Y_VEC3,
		Scale:         mmath.ONE_VEC3,
		BBone:         NewPoseBBoneShape(),
	}
}

// RotationMatrix は回転表現に応じた回転行列を返す。
func (p PoseTransform) RotationMatrix() mgl64.Mat3 {
	switch p.RotationMode {
	case ROTATION_MODE_EULER:
		return mmath.EulerToMat3(p.Euler, p.EulerOrder)
	case ROTATION_MODE_AXIS_ANGLE:
		return mmath.AxisAngleToMat3(p.AxisAngleAxis, p.AxisAngle)
	default:
		q := p.Quaternion
		if q.Len() <= mmath.VEC3_EPSILON {
			return mgl64.Ident3()
		}
		return q.Normalize().Mat4().Mat3()
	}
}

// Matrix はチャンネル行列(位置・回転・スケール)を返す。
// 接続ボーンは位置を無視する。
func (p PoseTransform) Matrix(connected bool) mgl64.Mat4 {
	location := p.Location
	if connected {
		location = mmath.ZERO_VEC3
	}
	return mmath.ComposeMat4(location, p.RotationMatrix(), p.Scale)
}

// ClearTransform は位置・全回転表現・スケールを恒等に戻す。回転モードは保持する。
func (p *PoseTransform) ClearTransform() {
	p.Location = mmath.ZERO_VEC3
	p.Quaternion = mgl64.QuatIdent()
	p.Euler = mmath.ZERO_VEC3
	p.AxisAngleAxis = mmath.UNIT_Y_VEC3
	p.AxisAngle = 0
	p.Scale = mmath.ONE_VEC3
}

// IsIdentity は恒等変形か判定する。
func (p PoseTransform) IsIdentity(epsilon float64) bool {
	return p.Location.NearEquals(mmath.ZERO_VEC3, epsilon) &&
		p.Scale.NearEquals(mmath.ONE_VEC3, epsilon) &&
		p.RotationMatrix().ApproxEqualThreshold(mgl64.Ident3(), epsilon)
}

// PoseChannel はボーンごとのポーズ状態を表す。
type PoseChannel struct {
	Name        string
	BoneIndex   int
	Selected    bool
	Local       PoseTransform
	PoseMatrix  mgl64.Mat4
	PoseHead    mmath.Vec3
	PoseTail    mmath.Vec3
	Constraints []Constraint
}

// NewPoseChannel は恒等変形のポーズチャンネルを生成する。
func NewPoseChannel(name string) *PoseChannel {
	return &PoseChannel{
		Name:       name,
		BoneIndex:  -1,
		Local:      NewPoseTransform(),
		PoseMatrix: mgl64.Ident4(),
	}
}

// Pose はポーズチャンネル集合を表す。
type Pose struct {
	channels    []*PoseChannel
	nameIndexes map[string]int
}

// NewPose はポーズを生成する。
func NewPose(capacity int) *Pose {
	return &Pose{
		channels:    make([]*PoseChannel, 0, capacity),
		nameIndexes: make(map[string]int, capacity),
	}
}

// Append はチャンネルを追加する。
func (p *Pose) Append(channel *PoseChannel) error {
	if channel == nil {
		return fmt.Errorf("追加対象ポーズチャンネルが未設定です")
	}
	if _, exists := p.nameIndexes[channel.Name]; exists {
		return merrors.NewNameConflictError(channel.Name)
	}
	p.nameIndexes[channel.Name] = len(p.channels)
	p.channels = append(p.channels, channel)
	return nil
}

// Len は件数を返す。
func (p *Pose) Len() int {
	if p == nil {
		return 0
	}
	return len(p.channels)
}

// Values はチャンネル一覧を返す。
func (p *Pose) Values() []*PoseChannel {
	return p.channels
}

// GetByName は名前でチャンネルを返す。
func (p *Pose) GetByName(name string) (*PoseChannel, bool) {
	index, ok := p.nameIndexes[name]
	if !ok {
		return nil, false
	}
	return p.channels[index], true
}

// SelectedNames は選択中チャンネル名を返す。
func (p *Pose) SelectedNames() []string {
	names := make([]string, 0)
	for _, channel := range p.channels {
		if channel.Selected {
			names = append(names, channel.Name)
		}
	}
	return names
}
