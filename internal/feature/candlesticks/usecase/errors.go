// Package usecase はローソク足履歴取得のビジネスロジックを実装します。
package usecase

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidQuery はプロバイダ呼び出し前のバリデーションで拒否されたクエリを表します。
	ErrInvalidQuery = errors.New("invalid history query")

	// ErrCancelled は呼び出し元がコンテキストをキャンセルした場合に返されます。
	ErrCancelled = errors.New("history request cancelled")

	// ErrTimeout はリクエストが期限内に完了しなかった場合に返されます。
	ErrTimeout = errors.New("history request timed out")

	// ErrSessionUnavailable はプロバイダセッションを確立できなかった場合に返されます。
	// 設定不備（認証情報の欠落など）や接続先に到達できない場合が該当します。
	ErrSessionUnavailable = errors.New("provider session unavailable")
)

// ValidationError はクエリの特定フィールドが不正であることを表します。
// errors.Is(err, ErrInvalidQuery) で判定できます。
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s %s", ErrInvalidQuery, e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidQuery
}

// ProviderError はプロバイダが返したエラーをそのまま保持します。
// Error() はプロバイダのメッセージを加工せずに返します。
type ProviderError struct {
	Code    int    // プロバイダ固有のエラーコード（不明な場合は0）
	Message string // プロバイダのメッセージ
	Err     error  // 元のエラー（任意）
}

func (e *ProviderError) Error() string {
	return e.Message
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}
