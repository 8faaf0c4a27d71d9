// 指示: miu200521358
package minteractor

import (
	"fmt"
	"strings"

	"github.com/miu200521358/mu_restbake/pkg/domain/model"
	"github.com/miu200521358/mu_restbake/pkg/usecase/port/moutput"
)

// LoadRig はリグファイルを読み込む。
func (uc *RestBakeUsecase) LoadRig(rep moutput.IRigReader, path string) (*model.Scene, error) {
	repo := rep
	if repo == nil {
		repo = uc.rigReader
	}
	if repo == nil {
		return nil, fmt.Errorf("リグ読み込みリポジトリが設定されていません")
	}
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("入力リグパスが未指定です")
	}
	if !repo.CanLoad(path) {
		return nil, fmt.Errorf("読み込みできないリグファイルです: %s", path)
	}
	scene, err := repo.Load(path)
	if err != nil {
		return nil, err
	}
	if scene == nil {
		return nil, fmt.Errorf("リグ読み込み結果が空です: %s", path)
	}
	return scene, nil
}
