package repository

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/hitoshi/personreg/internal/model"
)

// MemoryPersonRepo はプロセス内メモリに人物レコードを保持するリポジトリ。
// 1つのRWMutexでレコード列とID採番カウンタを保護し、
// 身分証番号の重複チェックと更新を同一ロック内で行う。
type MemoryPersonRepo struct {
	mu      sync.RWMutex
	people  []*model.Person // 挿入順
	nextID  int64
	nowFunc func() time.Time
}

// NewMemoryPersonRepo はMemoryPersonRepoを生成する。IDは1から採番する。
func NewMemoryPersonRepo() *MemoryPersonRepo {
	return &MemoryPersonRepo{
		nextID:  1,
		nowFunc: time.Now,
	}
}

// SetNowFunc は現在時刻の取得関数を差し替える。テスト用。
func (r *MemoryPersonRepo) SetNowFunc(fn func() time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nowFunc = fn
}

// Insert は新しいレコードを末尾に追加する。
func (r *MemoryPersonRepo) Insert(_ context.Context, fields model.PersonFields) (*model.Person, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.indexByDocument(fields.IdentityDocument, 0) >= 0 {
		return nil, ErrDuplicateIdentityDocument
	}

	now := r.nowFunc()
	p := &model.Person{
		ID:           r.nextID,
		PersonFields: fields.Normalize(),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	r.nextID++
	r.people = append(r.people, p)

	return clonePerson(p), nil
}

// FindByID は指定IDのレコードを取得する。見つからない場合はnilを返す。
func (r *MemoryPersonRepo) FindByID(_ context.Context, id int64) (*model.Person, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i := r.indexByID(id)
	if i < 0 {
		return nil, nil
	}
	return clonePerson(r.people[i]), nil
}

// List は全レコードのコピーを挿入順で返す。
func (r *MemoryPersonRepo) List(_ context.Context) ([]*model.Person, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*model.Person, len(r.people))
	for i, p := range r.people {
		result[i] = clonePerson(p)
	}
	return result, nil
}

// Update は指定IDのレコードを置き換える。
func (r *MemoryPersonRepo) Update(_ context.Context, id int64, fields model.PersonFields) (*model.Person, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexByID(id)
	if i < 0 {
		return nil, ErrNotFound
	}
	if r.indexByDocument(fields.IdentityDocument, id) >= 0 {
		return nil, ErrDuplicateIdentityDocument
	}

	current := r.people[i]
	now := r.nowFunc()
	// 時計が巻き戻ってもupdated_atがcreated_atより前にならないようにする
	if now.Before(current.CreatedAt) {
		now = current.CreatedAt
	}

	updated := &model.Person{
		ID:           current.ID,
		PersonFields: fields.Normalize(),
		CreatedAt:    current.CreatedAt,
		UpdatedAt:    now,
	}
	r.people[i] = updated

	return clonePerson(updated), nil
}

// Delete は指定IDのレコードを削除する。nextIDは戻さない。
func (r *MemoryPersonRepo) Delete(_ context.Context, id int64) (*model.Person, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexByID(id)
	if i < 0 {
		return nil, ErrNotFound
	}

	removed := r.people[i]
	r.people = slices.Delete(r.people, i, i+1)

	return removed, nil
}

// Count は生存レコード数を返す。
func (r *MemoryPersonRepo) Count(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.people), nil
}

// indexByID はIDに一致するレコードの位置を返す。ロック取得済みで呼び出すこと。
func (r *MemoryPersonRepo) indexByID(id int64) int {
	for i, p := range r.people {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// indexByDocument は身分証番号が一致するレコードの位置を返す。
// excludeIDに一致するレコードは対象外とする（0は除外なし）。
// ロック取得済みで呼び出すこと。
func (r *MemoryPersonRepo) indexByDocument(doc string, excludeID int64) int {
	for i, p := range r.people {
		if p.IdentityDocument == doc && p.ID != excludeID {
			return i
		}
	}
	return -1
}

func clonePerson(p *model.Person) *model.Person {
	c := *p
	return &c
}

// compile-time interface check
var _ PersonRepository = (*MemoryPersonRepo)(nil)
