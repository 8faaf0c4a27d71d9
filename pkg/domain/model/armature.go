// 指示: miu200521358
package model

import (
	"fmt"
	"sort"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
)

// Armature はボーン階層とポーズを持つアーマチュアを表す。
type Armature struct {
	Name         string
	Linked       bool
	HasAction    bool
	ObjectMatrix mgl64.Mat4
	Bones        *BoneCollection
	Pose         *Pose
}

// NewArmature はアーマチュアを生成する。
func NewArmature(name string) *Armature {
	return &Armature{
		Name:         name,
		ObjectMatrix: mgl64.Ident4(),
		Bones:        NewBoneCollection(0),
		Pose:         NewPose(0),
	}
}

// IsEditable はレストを編集できるか判定する。
func (a *Armature) IsEditable() bool {
	return a != nil && !a.Linked
}

// ValidatePose はボーンとポーズチャンネルが名前で1対1に対応するか検証し、
// チャンネルのボーンインデックスを更新する。
func (a *Armature) ValidatePose() error {
	if a.Bones == nil || a.Pose == nil {
		return fmt.Errorf("ボーンまたはポーズが未設定です: %s", a.Name)
	}
	missing := make([]string, 0)
	for _, bone := range a.Bones.Values() {
		if _, ok := a.Pose.GetByName(bone.Name); !ok {
			missing = append(missing, bone.Name)
		}
	}
	orphans := make([]string, 0)
	for _, channel := range a.Pose.Values() {
		bone, err := a.Bones.GetByName(channel.Name)
		if err != nil {
			orphans = append(orphans, channel.Name)
			continue
		}
		channel.BoneIndex = bone.Index
	}
	if len(missing) > 0 || len(orphans) > 0 {
		sort.Strings(missing)
		sort.Strings(orphans)
		return fmt.Errorf("ボーンとポーズチャンネルが対応していません: missing=[%s] orphans=[%s]",
			strings.Join(missing, ","), strings.Join(orphans, ","))
	}
	return nil
}

// EnsurePose はチャンネルのないボーンへ恒等チャンネルを追加し、
// 対応するボーンのないチャンネルを取り除く。
func (a *Armature) EnsurePose() error {
	if a.Pose == nil {
		a.Pose = NewPose(a.Bones.Len())
	}
	rebuilt := NewPose(a.Bones.Len())
	for _, bone := range a.Bones.Values() {
		channel, ok := a.Pose.GetByName(bone.Name)
		if !ok {
			channel = NewPoseChannel(bone.Name)
			channel.PoseMatrix = bone.RestMatrix()
			channel.PoseHead = bone.Head
			channel.PoseTail = bone.Tail
		}
		channel.BoneIndex = bone.Index
		if err := rebuilt.Append(channel); err != nil {
			return err
		}
	}
	a.Pose = rebuilt
	return nil
}

// Channel はボーンに対応するポーズチャンネルを返す。
func (a *Armature) Channel(bone *Bone) (*PoseChannel, error) {
	channel, ok := a.Pose.GetByName(bone.Name)
	if !ok {
		return nil, fmt.Errorf("ポーズチャンネルが見つかりません: %s", bone.Name)
	}
	return channel, nil
}
