// 指示: miu200521358
// Package merrors はレスト焼き込みで返す型付きエラーを提供する。
package merrors

import "errors"

// PreconditionError は焼き込み開始前の前提条件違反を表す。
type PreconditionError struct {
	message string
	cause   error
}

// NewPreconditionError は前提条件違反エラーを生成する。
func NewPreconditionError(message string, cause error) *PreconditionError {
	return &PreconditionError{message: message, cause: cause}
}

// Error はエラーメッセージを返す。
func (e *PreconditionError) Error() string {
	return joinMessage(e.message, e.cause)
}

// Unwrap は原因エラーを返す。
func (e *PreconditionError) Unwrap() error { return e.cause }

// IsPreconditionError は前提条件違反エラーか判定する。
func IsPreconditionError(err error) bool {
	var target *PreconditionError
	return errors.As(err, &target)
}

// EmptySelectionError は選択焼き込みで対象ボーンが空であることを表す。
type EmptySelectionError struct {
	ArmatureName string
}

// NewEmptySelectionError は選択なしエラーを生成する。
func NewEmptySelectionError(armatureName string) *EmptySelectionError {
	return &EmptySelectionError{ArmatureName: armatureName}
}

// Error はエラーメッセージを返す。
func (e *EmptySelectionError) Error() string {
	return "選択ボーンがありません: " + e.ArmatureName
}

// IsEmptySelectionError は選択なしエラーか判定する。
func IsEmptySelectionError(err error) bool {
	var target *EmptySelectionError
	return errors.As(err, &target)
}

// DegenerateTransformError は逆行列を持たない変換に遭遇したことを表す。
type DegenerateTransformError struct {
	BoneName string
	message  string
}

// NewDegenerateTransformError は退化変換エラーを生成する。
func NewDegenerateTransformError(boneName string, message string) *DegenerateTransformError {
	return &DegenerateTransformError{BoneName: boneName, message: message}
}

// WithBoneName はボーン名を設定したコピーを返す。
func (e *DegenerateTransformError) WithBoneName(boneName string) *DegenerateTransformError {
	return &DegenerateTransformError{BoneName: boneName, message: e.message}
}

// Error はエラーメッセージを返す。
func (e *DegenerateTransformError) Error() string {
	if e.BoneName == "" {
		return e.message
	}
	return e.message + ": " + e.BoneName
}

// IsDegenerateTransformError は退化変換エラーか判定する。
func IsDegenerateTransformError(err error) bool {
	var target *DegenerateTransformError
	return errors.As(err, &target)
}

// NameConflictError は名前の重複を表す。
type NameConflictError struct {
	Name string
}

// NewNameConflictError は名前重複エラーを生成する。
func NewNameConflictError(name string) *NameConflictError {
	return &NameConflictError{Name: name}
}

// Error はエラーメッセージを返す。
func (e *NameConflictError) Error() string {
	return "名前が重複しています: " + e.Name
}

// IsNameConflictError は名前重複エラーか判定する。
func IsNameConflictError(err error) bool {
	var target *NameConflictError
	return errors.As(err, &target)
}

func joinMessage(message string, cause error) string {
	if cause == nil {
		return message
	}
	return message + ": " + cause.Error()
}
