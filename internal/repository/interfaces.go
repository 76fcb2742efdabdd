// Package repository はデータ永続化のインターフェースと実装を提供する。
package repository

import (
	"context"
	"time"
)

// ViewerIdentityRepository は閲覧者Identityの永続化インターフェース。
// identity.Storeを満たし、クリーンアップ用の操作を追加で持つ。
type ViewerIdentityRepository interface {
	// Find は指定キーのメールアドレスを返す。存在しないか期限切れの場合は空文字列を返す。
	Find(ctx context.Context, key string) (string, error)

	// Save はキーにメールアドレスを保存する。既存の行はUPSERTで上書きする。
	Save(ctx context.Context, key, email string, expiresAt time.Time) error

	// Delete は指定キーの行を削除する。
	Delete(ctx context.Context, key string) error

	// DeleteExpired は期限切れの行を削除し、削除件数を返す。
	DeleteExpired(ctx context.Context) (int64, error)
}
