// 指示: miu200521358
package model

import (
	"fmt"
	"sort"

	"github.com/miu200521358/mu_restbake/pkg/domain/model/merrors"
	"github.com/tiendc/go-deepcopy"
)

// BoneCollection はインデックスで管理するボーン集合を表す。
type BoneCollection struct {
	values      []*Bone
	nameIndexes map[string]int
}

// NewBoneCollection はボーン集合を生成する。
func NewBoneCollection(capacity int) *BoneCollection {
	return &BoneCollection{
		values:      make([]*Bone, 0, capacity),
		nameIndexes: make(map[string]int, capacity),
	}
}

// Append はボーンを末尾に追加し、インデックスを採番する。
func (c *BoneCollection) Append(bone *Bone) error {
	if bone == nil {
		return fmt.Errorf("追加対象ボーンが未設定です")
	}
	if _, exists := c.nameIndexes[bone.Name]; exists {
		return merrors.NewNameConflictError(bone.Name)
	}
	bone.Index = len(c.values)
	c.values = append(c.values, bone)
	c.nameIndexes[bone.Name] = bone.Index
	return nil
}

// Len は件数を返す。
func (c *BoneCollection) Len() int {
	if c == nil {
		return 0
	}
	return len(c.values)
}

// Values はボーン一覧を返す。
func (c *BoneCollection) Values() []*Bone {
	return c.values
}

// Get はインデックスのボーンを返す。
func (c *BoneCollection) Get(index int) (*Bone, error) {
	if index < 0 || index >= len(c.values) {
		return nil, fmt.Errorf("ボーンインデックスが範囲外です: %d", index)
	}
	return c.values[index], nil
}

// GetByName は名前でボーンを返す。
func (c *BoneCollection) GetByName(name string) (*Bone, error) {
	index, ok := c.nameIndexes[name]
	if !ok {
		return nil, fmt.Errorf("ボーンが見つかりません: %s", name)
	}
	return c.values[index], nil
}

// ContainsName は名前のボーンが存在するか判定する。
func (c *BoneCollection) ContainsName(name string) bool {
	_, ok := c.nameIndexes[name]
	return ok
}

// Parent は親ボーンを返す。親がない場合は nil。
func (c *BoneCollection) Parent(bone *Bone) *Bone {
	if bone == nil || bone.ParentIndex < 0 || bone.ParentIndex >= len(c.values) {
		return nil
	}
	return c.values[bone.ParentIndex]
}

// ChildrenByParent は親インデックスごとの子インデックス一覧を返す。ルートは -1 に入る。
func (c *BoneCollection) ChildrenByParent() map[int][]int {
	childrenByParent := make(map[int][]int, len(c.values))
	for _, bone := range c.values {
		childrenByParent[bone.ParentIndex] = append(childrenByParent[bone.ParentIndex], bone.Index)
	}
	for parentIndex := range childrenByParent {
		sort.Ints(childrenByParent[parentIndex])
	}
	return childrenByParent
}

// TopologicalOrder は親が子より先に並ぶインデックス順を返す。
// 親参照が範囲外、または循環している場合はエラーを返す。
func (c *BoneCollection) TopologicalOrder() ([]int, error) {
	for _, bone := range c.values {
		if bone.ParentIndex >= len(c.values) || bone.ParentIndex < -1 {
			return nil, fmt.Errorf("親ボーンインデックスが不正です: bone=%s parent=%d", bone.Name, bone.ParentIndex)
		}
		if bone.ParentIndex == bone.Index {
			return nil, fmt.Errorf("ボーンが自身を親にしています: %s", bone.Name)
		}
	}

	childrenByParent := c.ChildrenByParent()
	order := make([]int, 0, len(c.values))
	queue := append([]int{}, childrenByParent[-1]...)
	for len(queue) > 0 {
		index := queue[0]
		queue = queue[1:]
		order = append(order, index)
		queue = append(queue, childrenByParent[index]...)
	}
	if len(order) != len(c.values) {
		return nil, fmt.Errorf("ボーン階層が循環しています: visited=%d total=%d", len(order), len(c.values))
	}
	return order, nil
}

// Copy はボーン集合の深いコピーを返す。
func (c *BoneCollection) Copy() (*BoneCollection, error) {
	copied := make([]*Bone, 0, len(c.values))
	if err := deepcopy.Copy(&copied, c.values); err != nil {
		return nil, fmt.Errorf("ボーン集合の複製に失敗しました: %w", err)
	}
	nameIndexes := make(map[string]int, len(c.nameIndexes))
	for name, index := range c.nameIndexes {
		nameIndexes[name] = index
	}
	return &BoneCollection{values: copied, nameIndexes: nameIndexes}, nil
}
