// 指示: miu200521358
// Package io_common は入出力アダプタで共有するエラーを提供する。
package io_common

import "errors"

const (
	// ErrorIDFileNotFound はファイルが存在しないエラーID。
	ErrorIDFileNotFound = "14101"
	// ErrorIDExtInvalid は拡張子が対象外のエラーID。
	ErrorIDExtInvalid = "14102"
	// ErrorIDParseFailed は解析に失敗したエラーID。
	ErrorIDParseFailed = "14103"
	// ErrorIDSaveFailed は保存に失敗したエラーID。
	ErrorIDSaveFailed = "14201"
)

// IoError は入出力で発生したエラーを表す。
type IoError struct {
	ID      string
	message string
	cause   error
}

// Error はエラーメッセージを返す。
func (e *IoError) Error() string {
	if e.cause == nil {
		return e.message
	}
	return e.message + ": " + e.cause.Error()
}

// Unwrap は原因エラーを返す。
func (e *IoError) Unwrap() error { return e.cause }

// NewIoFileNotFound はファイル未検出エラーを生成する。
func NewIoFileNotFound(path string, cause error) *IoError {
	return &IoError{ID: ErrorIDFileNotFound, message: "ファイルが見つかりません: " + path, cause: cause}
}

// NewIoExtInvalid は拡張子不正エラーを生成する。
func NewIoExtInvalid(path string, cause error) *IoError {
	return &IoError{ID: ErrorIDExtInvalid, message: "対応していない拡張子です: " + path, cause: cause}
}

// NewIoParseFailed は解析失敗エラーを生成する。
func NewIoParseFailed(message string, cause error) *IoError {
	return &IoError{ID: ErrorIDParseFailed, message: message, cause: cause}
}

// NewIoSaveFailed は保存失敗エラーを生成する。
func NewIoSaveFailed(message string, cause error) *IoError {
	return &IoError{ID: ErrorIDSaveFailed, message: message, cause: cause}
}

// ExtractErrorID はエラー連鎖から入出力エラーIDを取り出す。見つからない場合は空文字。
func ExtractErrorID(err error) string {
	var target *IoError
	if errors.As(err, &target) {
		return target.ID
	}
	return ""
}
