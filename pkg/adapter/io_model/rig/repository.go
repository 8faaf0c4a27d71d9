// 指示: miu200521358
// Package rig はTOML形式のリグファイルを読み書きする。
package rig

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/miu200521358/mu_restbake/pkg/adapter/io_common"
	"github.com/miu200521358/mu_restbake/pkg/domain/model"
	"github.com/miu200521358/mu_restbake/pkg/shared/base/logging"
)

// RigRepository はTOMLリグファイルの入出力を表す。
type RigRepository struct{}

// NewRigRepository はRigRepositoryを生成する。
func NewRigRepository() *RigRepository {
	return &RigRepository{}
}

// CanLoad は拡張子に応じて読み込み可否を判定する。
func (r *RigRepository) CanLoad(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

// InferName はパスから表示名を推定する。
func (r *RigRepository) InferName(path string) string {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	if ext == "" {
		return base
	}
	return strings.TrimSuffix(base, ext)
}

// Load はリグファイルを読み込む。
func (r *RigRepository) Load(path string) (*model.Scene, error) {
	if !r.CanLoad(path) {
		return nil, io_common.NewIoExtInvalid(path, nil)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, io_common.NewIoFileNotFound(path, err)
		}
		return nil, io_common.NewIoParseFailed("リグファイルの読み取りに失敗しました", err)
	}
	doc := rigDocument{}
	if err := toml.Unmarshal(b, &doc); err != nil {
		return nil, io_common.NewIoParseFailed("リグファイルのTOML解析に失敗しました", err)
	}
	scene, err := doc.toScene()
	if err != nil {
		return nil, io_common.NewIoParseFailed("リグファイルの内容が不正です", err)
	}
	logRigInfo("リグ読込完了: file=%s armatures=%d objects=%d",
		filepath.Base(path), len(scene.Armatures), len(scene.Objects))
	return scene, nil
}

// Save はシーンをリグファイルへ保存する。
func (r *RigRepository) Save(path string, scene *model.Scene) error {
	if scene == nil {
		return io_common.NewIoSaveFailed("保存対象シーンが未設定です", nil)
	}
	doc, err := newRigDocument(scene)
	if err != nil {
		return io_common.NewIoSaveFailed("リグファイルへ変換できません", err)
	}
	buf := bytes.Buffer{}
	if err := toml.NewEncoder(&buf).Encode(doc); err != nil {
		return io_common.NewIoSaveFailed("リグファイルのTOML出力に失敗しました", err)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return io_common.NewIoSaveFailed("出力先フォルダを作成できません", err)
		}
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return io_common.NewIoSaveFailed("リグファイルの書き込みに失敗しました", err)
	}
	logRigInfo("リグ保存完了: file=%s", filepath.Base(path))
	return nil
}

// logRigInfo はリグ入出力の情報ログを出力する。
func logRigInfo(format string, params ...any) {
	logger := logging.DefaultLogger()
	if logger == nil {
		return
	}
	logger.Info(format, params...)
}
