// 指示: miu200521358
package minteractor

import (
	"fmt"
	"sort"
	"strings"

	"github.com/miu200521358/mu_restbake/pkg/domain/model"
	"github.com/miu200521358/mu_restbake/pkg/domain/model/merrors"
	"github.com/miu200521358/mu_restbake/pkg/usecase/port/moutput"
	"gopkg.in/Knetic/govaluate.v3"
)

// ChannelSelection はポーズチャンネルの選択フラグで選択ボーンを解決する。
type ChannelSelection struct{}

// SelectedBoneNames は選択フラグの立ったチャンネル名を返す。
func (ChannelSelection) SelectedBoneNames(armature *model.Armature) ([]string, error) {
	return armature.Pose.SelectedNames(), nil
}

// NameSelection はボーン名の一覧で選択ボーンを解決する。
type NameSelection struct {
	Names []string
}

// NewNameSelection はカンマ区切りのボーン名から選択を生成する。
func NewNameSelection(names string) *NameSelection {
	selection := &NameSelection{}
	for _, name := range strings.Split(names, ",") {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			selection.Names = append(selection.Names, trimmed)
		}
	}
	return selection
}

// SelectedBoneNames は指定名を返す。存在しない名前はエラー。
func (s *NameSelection) SelectedBoneNames(armature *model.Armature) ([]string, error) {
	names := make([]string, 0, len(s.Names))
	seen := make(map[string]struct{}, len(s.Names))
	missing := make([]string, 0)
	for _, name := range s.Names {
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		if !armature.Bones.ContainsName(name) {
			missing = append(missing, name)
			continue
		}
		names = append(names, name)
	}
	if len(missing) > 0 {
		return nil, merrors.NewPreconditionError(
			fmt.Sprintf("選択ボーンが見つかりません: [%s]", strings.Join(missing, ",")), nil)
	}
	return names, nil
}

// ExpressionSelection は真偽式を満たすボーンを選択する。
// 式では name, parent, selected, connected, bendy, length, depth, head_x/y/z, tail_x/y/z を参照できる。
type ExpressionSelection struct {
	source     string
	expression *govaluate.EvaluableExpression
}

// NewExpressionSelection は選択式を解析する。
func NewExpressionSelection(source string) (*ExpressionSelection, error) {
	expression, err := govaluate.NewEvaluableExpressionWithFunctions(source, selectionFunctions)
	if err != nil {
		return nil, merrors.NewPreconditionError(fmt.Sprintf("選択式を解析できません: %s", source), err)
	}
	return &ExpressionSelection{source: source, expression: expression}, nil
}

// SelectedBoneNames は式が真となるボーン名を返す。
func (s *ExpressionSelection) SelectedBoneNames(armature *model.Armature) ([]string, error) {
	depths, err := boneDepths(armature.Bones)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0)
	for _, bone := range armature.Bones.Values() {
		channel, err := armature.Channel(bone)
		if err != nil {
			return nil, err
		}
		value, err := s.expression.Evaluate(selectionParameters(armature, bone, channel, depths[bone.Index]))
		if err != nil {
			return nil, merrors.NewPreconditionError(
				fmt.Sprintf("選択式の評価に失敗しました: bone=%s expr=%s", bone.Name, s.source), err)
		}
		matched, ok := value.(bool)
		if !ok {
			return nil, merrors.NewPreconditionError(
				fmt.Sprintf("選択式の結果が真偽値ではありません: expr=%s result=%v", s.source, value), nil)
		}
		if matched {
			names = append(names, bone.Name)
		}
	}
	return names, nil
}

var selectionFunctions = map[string]govaluate.ExpressionFunction{
	"has_prefix": stringPredicate(strings.HasPrefix),
	"has_suffix": stringPredicate(strings.HasSuffix),
	"contains":   stringPredicate(strings.Contains),
}

// stringPredicate は文字列2引数の判定関数を式関数へ変換する。
func stringPredicate(predicate func(s, sub string) bool) govaluate.ExpressionFunction {
	return func(arguments ...interface{}) (interface{}, error) {
		if len(arguments) != 2 {
			return nil, fmt.Errorf("引数は2つ必要です: got=%d", len(arguments))
		}
		s, ok := arguments[0].(string)
		if !ok {
			return nil, fmt.Errorf("第1引数が文字列ではありません: %v", arguments[0])
		}
		sub, ok := arguments[1].(string)
		if !ok {
			return nil, fmt.Errorf("第2引数が文字列ではありません: %v", arguments[1])
		}
		return predicate(s, sub), nil
	}
}

func selectionParameters(
	armature *model.Armature,
	bone *model.Bone,
	channel *model.PoseChannel,
	depth int,
) map[string]interface{} {
	parentName := ""
	if parent := armature.Bones.Parent(bone); parent != nil {
		parentName = parent.Name
	}
	return map[string]interface{}{
		"name":      bone.Name,
		"parent":    parentName,
		"selected":  channel.Selected,
		"connected": bone.Flag.Has(model.BONE_FLAG_CONNECTED),
		"bendy":     bone.IsBendy(),
		"length":    bone.Length(),
		"depth":     float64(depth),
		"head_x":    bone.Head.X,
		"head_y":    bone.Head.Y,
		"head_z":    bone.Head.Z,
		"tail_x":    bone.Tail.X,
		"tail_y":    bone.Tail.Y,
		"tail_z":    bone.Tail.Z,
	}
}

// boneDepths はルートを0とした階層の深さを返す。
func boneDepths(bones *model.BoneCollection) ([]int, error) {
	order, err := bones.TopologicalOrder()
	if err != nil {
		return nil, err
	}
	depths := make([]int, bones.Len())
	for _, index := range order {
		bone, err := bones.Get(index)
		if err != nil {
			return nil, err
		}
		if bone.HasParent() {
			depths[index] = depths[bone.ParentIndex] + 1
		}
	}
	return depths, nil
}

// resolveSelection は選択ボーン名をインデックス集合へ解決する。
// 選択が空の場合は EmptySelectionError。
func resolveSelection(armature *model.Armature, provider moutput.ISelectionProvider) (map[int]struct{}, []string, error) {
	if provider == nil {
		provider = ChannelSelection{}
	}
	names, err := provider.SelectedBoneNames(armature)
	if err != nil {
		return nil, nil, err
	}
	selected := make(map[int]struct{}, len(names))
	resolved := make([]string, 0, len(names))
	for _, name := range names {
		bone, err := armature.Bones.GetByName(name)
		if err != nil {
			return nil, nil, merrors.NewPreconditionError(fmt.Sprintf("選択ボーンが見つかりません: %s", name), err)
		}
		if _, ok := selected[bone.Index]; ok {
			continue
		}
		selected[bone.Index] = struct{}{}
		resolved = append(resolved, name)
	}
	if len(selected) == 0 {
		return nil, nil, merrors.NewEmptySelectionError(armature.Name)
	}
	sort.Strings(resolved)
	return selected, resolved, nil
}

// BuildSelection は名前一覧または選択式から選択解決を生成する。
// どちらも空の場合は nil を返し、焼き込み時にチャンネルの選択フラグを使う。
func BuildSelection(names string, expression string) (moutput.ISelectionProvider, error) {
	names = strings.TrimSpace(names)
	expression = strings.TrimSpace(expression)
	switch {
	case names != "" && expression != "":
		return nil, merrors.NewPreconditionError("選択ボーン名と選択式は同時に指定できません", nil)
	case expression != "":
		selection, err := NewExpressionSelection(expression)
		if err != nil {
			return nil, err
		}
		return selection, nil
	case names != "":
		return NewNameSelection(names), nil
	default:
		return nil, nil
	}
}
