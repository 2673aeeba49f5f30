// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"errors"

	"github.com/hitoshi/personreg/internal/model"
)

var (
	// ErrNotFound は指定IDのレコードが存在しない場合に返される。
	ErrNotFound = errors.New("repository: person not found")

	// ErrDuplicateIdentityDocument は身分証番号が他の生存レコードと重複する場合に返される。
	ErrDuplicateIdentityDocument = errors.New("repository: duplicate identity document")
)

// PersonRepository は人物レコードの永続化インターフェース。
// インメモリ実装とPostgreSQL実装のどちらも同じ契約を満たす。
// IDは一意で単調増加する。インメモリ実装は挿入成功時のみ採番するが、
// PostgreSQL実装はBIGSERIALのため重複で失敗した挿入でも番号を消費し、IDに欠番が生じうる。
type PersonRepository interface {
	// Insert は新しいレコードを末尾に追加する。
	// IDを採番し、氏名をトリムし、created_at = updated_at = 現在時刻を設定する。
	// 同じ身分証番号の生存レコードがある場合はErrDuplicateIdentityDocumentを返す。
	Insert(ctx context.Context, fields model.PersonFields) (*model.Person, error)

	// FindByID は指定IDのレコードを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id int64) (*model.Person, error)

	// List は全レコードを挿入順（古い順）で返す。
	List(ctx context.Context) ([]*model.Person, error)

	// Update は指定IDのレコードの変更可能フィールドを全て置き換え、updated_atを更新する。
	// IDとcreated_atは変更しない。
	// 存在しない場合はErrNotFound、他レコードと身分証番号が重複する場合は
	// ErrDuplicateIdentityDocumentを返す。自身の身分証番号は重複とみなさない。
	Update(ctx context.Context, id int64, fields model.PersonFields) (*model.Person, error)

	// Delete は指定IDのレコードを削除し、削除したレコードを返す。
	// 存在しない場合はErrNotFoundを返す。削除したIDは再利用しない。
	Delete(ctx context.Context, id int64) (*model.Person, error)

	// Count は生存レコード数を返す。
	Count(ctx context.Context) (int, error)
}
