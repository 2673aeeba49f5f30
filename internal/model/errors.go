// Package model はドメインモデルを定義する。
package model

import (
	"fmt"
	"strings"
)

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string   // エラーコード
	Message  string   // エラーメッセージ
	Category string   // カテゴリ: validation, person, system
	Action   string   // ユーザー向け対処方法
	Details  []string // バリデーション違反の一覧（該当する場合のみ）
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeValidationFailed          = "VALIDATION_FAILED"
	ErrCodeDuplicateIdentityDocument = "DUPLICATE_IDENTITY_DOCUMENT"
	ErrCodePersonNotFound            = "PERSON_NOT_FOUND"
	ErrCodeInvalidRequest            = "INVALID_REQUEST"
	ErrCodeRouteNotFound             = "ROUTE_NOT_FOUND"
	ErrCodeMethodNotAllowed          = "METHOD_NOT_ALLOWED"
	ErrCodeInternal                  = "INTERNAL_ERROR"
)

// NewValidationError はバリデーション違反をまとめたエラーを生成する。
// Messageには全違反をカンマ区切りで連結し、Detailsには一覧をそのまま保持する。
func NewValidationError(violations []string) *APIError {
	details := make([]string, len(violations))
	copy(details, violations)
	return &APIError{
		Code:     ErrCodeValidationFailed,
		Message:  strings.Join(violations, ", "),
		Category: "validation",
		Action:   "入力内容を確認し、すべての必須項目を正しく入力してください。",
		Details:  details,
	}
}

// NewDuplicateIdentityDocumentError は身分証番号の重複エラーを生成する。
func NewDuplicateIdentityDocumentError(identityDocument string) *APIError {
	return &APIError{
		Code:     ErrCodeDuplicateIdentityDocument,
		Message:  fmt.Sprintf("identityDocument already exists: %s", identityDocument),
		Category: "person",
		Action:   "別の身分証番号を入力するか、既存のレコードを編集してください。",
	}
}

// NewPersonNotFoundError は人物レコード未検出エラーを生成する。
func NewPersonNotFoundError(id string) *APIError {
	return &APIError{
		Code:     ErrCodePersonNotFound,
		Message:  fmt.Sprintf("person not found: %s", id),
		Category: "person",
		Action:   "IDを確認してください。一覧を再読み込みすると最新の状態を確認できます。",
	}
}

// NewInvalidRequestError はリクエストボディの解析失敗エラーを生成する。
func NewInvalidRequestError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRequest,
		Message:  "リクエストボディの解析に失敗しました。",
		Category: "validation",
		Action:   "正しいJSON形式でリクエストしてください。",
	}
}

// NewRouteNotFoundError は存在しないルートへのアクセスエラーを生成する。
func NewRouteNotFoundError(method, path string) *APIError {
	return &APIError{
		Code:     ErrCodeRouteNotFound,
		Message:  fmt.Sprintf("route not found: %s %s", method, path),
		Category: "system",
		Action:   "エンドポイントのパスとメソッドを確認してください。",
	}
}

// NewMethodNotAllowedError は許可されていないメソッドでのアクセスエラーを生成する。
func NewMethodNotAllowedError(method, path string) *APIError {
	return &APIError{
		Code:     ErrCodeMethodNotAllowed,
		Message:  fmt.Sprintf("method not allowed: %s %s", method, path),
		Category: "system",
		Action:   "エンドポイントがサポートするメソッドを確認してください。",
	}
}

// NewInternalError は内部エラーを生成する。
// 詳細はログのみに記録し、ユーザーには一般的なメッセージを返す。
func NewInternalError() *APIError {
	return &APIError{
		Code:     ErrCodeInternal,
		Message:  "内部エラーが発生しました。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	}
}
