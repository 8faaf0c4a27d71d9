// 指示: miu200521358
package minteractor

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/miu200521358/mu_restbake/pkg/domain/model"
	"github.com/miu200521358/mu_restbake/pkg/usecase/port/moutput"
)

// SaveRig はリグファイルを保存する。
func (uc *RestBakeUsecase) SaveRig(rep moutput.IRigWriter, path string, scene *model.Scene) error {
	writer := rep
	if writer == nil {
		writer = uc.rigWriter
	}
	if writer == nil {
		return fmt.Errorf("リグ保存リポジトリが設定されていません")
	}
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("保存先パスが未指定です")
	}
	if scene == nil {
		return fmt.Errorf("保存対象シーンが未設定です")
	}
	return writer.Save(path, scene)
}

// BakeFile はリグファイルを読み込み、ポーズを評価して焼き込み、保存する。
// ArmatureName が空の場合はシーン内の全アーマチュアを対象にする。
func (uc *RestBakeUsecase) BakeFile(request BakeFileRequest) (*BakeFileResult, error) {
	if strings.TrimSpace(request.InputPath) == "" {
		return nil, fmt.Errorf("入力リグパスが未指定です")
	}
	outputPath := strings.TrimSpace(request.OutputPath)
	if outputPath == "" {
		outputPath = BuildDefaultOutputPath(request.InputPath)
	}
	if outputPath == "" {
		return nil, fmt.Errorf("保存先リグパスが未指定です")
	}

	scene, err := uc.LoadRig(request.Reader, request.InputPath)
	if err != nil {
		return nil, err
	}
	armatures, err := resolveTargetArmatures(scene, request.ArmatureName)
	if err != nil {
		return nil, err
	}

	results := make([]*BakeResult, 0, len(armatures))
	for _, armature := range armatures {
		if err := uc.EvaluatePose(armature); err != nil {
			return nil, fmt.Errorf("ポーズ評価に失敗しました: armature=%s: %w", armature.Name, err)
		}
		result, err := uc.Bake(BakeRequest{
			Armature:         armature,
			Scene:            scene,
			Mode:             request.Mode,
			Selection:        request.Selection,
			ProgressReporter: request.ProgressReporter,
		})
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}

	if err := uc.SaveRig(request.Writer, outputPath, scene); err != nil {
		return nil, err
	}
	return &BakeFileResult{Scene: scene, OutputPath: outputPath, Results: results}, nil
}

// BuildDefaultOutputPath は入力リグパスから既定の出力パスを生成する。
func BuildDefaultOutputPath(inputPath string) string {
	dir := filepath.Dir(inputPath)
	ext := filepath.Ext(inputPath)
	base := strings.TrimSpace(strings.TrimSuffix(filepath.Base(inputPath), ext))
	if base == "" {
		return ""
	}
	if ext == "" {
		ext = ".toml"
	}
	return filepath.Join(dir, base+"_baked"+ext)
}

// resolveTargetArmatures は焼き込み対象のアーマチュアを解決する。
func resolveTargetArmatures(scene *model.Scene, name string) ([]*model.Armature, error) {
	if strings.TrimSpace(name) != "" {
		armature := scene.Armature(name)
		if armature == nil {
			return nil, fmt.Errorf("アーマチュアが見つかりません: %s", name)
		}
		return []*model.Armature{armature}, nil
	}
	if len(scene.Armatures) == 0 {
		return nil, fmt.Errorf("シーンにアーマチュアがありません")
	}
	return scene.Armatures, nil
}
