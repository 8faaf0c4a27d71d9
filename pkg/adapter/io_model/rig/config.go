// 指示: miu200521358
package rig

import (
	"os"

	"github.com/BurntSushi/toml"
	"github.com/miu200521358/mu_restbake/pkg/adapter/io_common"
)

// BakeConfig は焼き込み設定ファイルの内容を表す。
type BakeConfig struct {
	Mode       string `toml:"mode"`
	Select     string `toml:"select"`
	Expression string `toml:"expression"`
	Verbose    bool   `toml:"verbose"`
	Output     string `toml:"output"`
}

// LoadBakeConfig は焼き込み設定ファイルを読み込む。パスが空の場合は空の設定を返す。
func LoadBakeConfig(path string) (BakeConfig, error) {
	config := BakeConfig{}
	if path == "" {
		return config, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return config, io_common.NewIoFileNotFound(path, err)
		}
		return config, io_common.NewIoParseFailed("焼き込み設定の読み取りに失敗しました", err)
	}
	meta, err := toml.Decode(string(b), &config)
	if err != nil {
		return config, io_common.NewIoParseFailed("焼き込み設定のTOML解析に失敗しました", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return config, io_common.NewIoParseFailed("焼き込み設定に未対応の項目があります: "+undecoded[0].String(), nil)
	}
	return config, nil
}
