// 指示: miu200521358
// Package messages はCLI表示に使うメッセージを提供する。
package messages

// コマンド説明。
const (
	CommandShort      = "評価済みポーズをレストへ焼き込む"
	CommandLong       = "リグファイル(TOML)を読み込み、ポーズを評価して現在の姿勢を新しいレストとして保存します。"
	BatchCommandShort = "フォルダ内のリグファイルをまとめて焼き込む"
)

// フラグ説明。
const (
	FlagInput    = "入力リグファイルパス(.toml)"
	FlagOutput   = "出力リグファイルパス(.toml)。省略時は <入力名>_baked.toml"
	FlagMode     = "焼き込み範囲 (all|selected)"
	FlagSelect   = "選択ボーン名(カンマ区切り)"
	FlagExpr     = "選択式 (例: has_prefix(name, \"arm\") && depth > 0)"
	FlagConfig   = "焼き込み設定ファイル(.toml)"
	FlagArmature = "対象アーマチュア名。省略時は全アーマチュア"
	FlagVerbose  = "詳細ログを出力する"
	FlagRoot     = "リグファイルを探索するフォルダ"
	FlagOutDir   = "出力先フォルダ。省略時は入力と同じフォルダ"
	FlagDryRun   = "保存せずに焼き込みだけを確認する"
	FlagFailFast = "最初の失敗で中断する"
)

// エラーメッセージ。
const (
	MessageInputRequired     = "入力リグファイルを指定してください (--in)"
	MessageInputExtInvalid   = "入力拡張子が .toml ではありません: %s"
	MessageOutputExtInvalid  = "出力拡張子が .toml ではありません: %s"
	MessageSelectionConflict = "--select と --expr は同時に指定できません"
	MessageRootRequired      = "探索フォルダを指定してください (--root)"
	MessageBatchFailed       = "焼き込みに失敗したファイルがあります: failed=%d"
)

// 出力メッセージ。
const (
	LogLoadStart      = "[mu_restbake] 読み込み開始: %s"
	LogRestChanged    = "[mu_restbake] レスト更新: armature=%s"
	LogBakeSummary    = "[mu_restbake] 焼き込み結果: armature=%s mode=%s baked=%d adjusted=%d constraints=%d objects=%d"
	LogBakeWarning    = "[mu_restbake] 警告: armature=%s id=%s"
	LogSaveSuccess    = "[mu_restbake] 保存完了: %s"
	LogDryRunComplete = "[mu_restbake] 確認完了(保存なし): %s"
	LogBakeProgress   = "焼き込み進捗: type=%s bones=%d objects=%d constraints=%d"

	LogBatchStart   = "[mu_restbake] 一括焼き込み開始: root=%s files=%d"
	LogBatchFailed  = "[mu_restbake] 焼き込み失敗: %s: %v"
	LogBatchSummary = "[mu_restbake] 一括焼き込み完了: success=%d failed=%d"
)
