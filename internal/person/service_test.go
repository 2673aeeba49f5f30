package person

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/hitoshi/personreg/internal/model"
	"github.com/hitoshi/personreg/internal/repository"
)

// --- モック ---

// mockPersonRepo はPersonRepositoryのモック実装。
// 未設定の関数が呼ばれた場合はテストを失敗させる。
type mockPersonRepo struct {
	t          *testing.T
	insertFn   func(ctx context.Context, fields model.PersonFields) (*model.Person, error)
	findByIDFn func(ctx context.Context, id int64) (*model.Person, error)
	listFn     func(ctx context.Context) ([]*model.Person, error)
	updateFn   func(ctx context.Context, id int64, fields model.PersonFields) (*model.Person, error)
	deleteFn   func(ctx context.Context, id int64) (*model.Person, error)
	countFn    func(ctx context.Context) (int, error)
}

func (m *mockPersonRepo) Insert(ctx context.Context, fields model.PersonFields) (*model.Person, error) {
	if m.insertFn == nil {
		m.t.Fatal("unexpected call to Insert")
	}
	return m.insertFn(ctx, fields)
}
func (m *mockPersonRepo) FindByID(ctx context.Context, id int64) (*model.Person, error) {
	if m.findByIDFn == nil {
		m.t.Fatal("unexpected call to FindByID")
	}
	return m.findByIDFn(ctx, id)
}
func (m *mockPersonRepo) List(ctx context.Context) ([]*model.Person, error) {
	if m.listFn == nil {
		m.t.Fatal("unexpected call to List")
	}
	return m.listFn(ctx)
}
func (m *mockPersonRepo) Update(ctx context.Context, id int64, fields model.PersonFields) (*model.Person, error) {
	if m.updateFn == nil {
		m.t.Fatal("unexpected call to Update")
	}
	return m.updateFn(ctx, id, fields)
}
func (m *mockPersonRepo) Delete(ctx context.Context, id int64) (*model.Person, error) {
	if m.deleteFn == nil {
		m.t.Fatal("unexpected call to Delete")
	}
	return m.deleteFn(ctx, id)
}
func (m *mockPersonRepo) Count(ctx context.Context) (int, error) {
	if m.countFn == nil {
		return 0, nil
	}
	return m.countFn(ctx)
}

// mockCollector はMetricsCollectorのモック実装。
type mockCollector struct {
	operations  []string
	liveRecords int
}

func (m *mockCollector) RecordOperation(operation, result string) {
	m.operations = append(m.operations, operation+"/"+result)
}
func (m *mockCollector) RecordHTTPStatus(statusCode int) {}
func (m *mockCollector) SetLiveRecords(count int)        { m.liveRecords = count }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(&bytes.Buffer{}, nil))
}

func newMemoryService() (*Service, *mockCollector) {
	collector := &mockCollector{}
	return NewService(repository.NewMemoryPersonRepo(), collector, discardLogger()), collector
}

func assertAPIErrorCode(t *testing.T, err error, code string) *model.APIError {
	t.Helper()
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want *model.APIError with code %s", err, code)
	}
	if apiErr.Code != code {
		t.Fatalf("Code = %q, want %q", apiErr.Code, code)
	}
	return apiErr
}

// --- テスト ---

// TestService_Scenario は作成・重複・更新・削除の一連の流れを検証する。
func TestService_Scenario(t *testing.T) {
	svc, collector := newMemoryService()
	ctx := context.Background()

	created, err := svc.Create(ctx, validInput())
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if created.ID != 1 {
		t.Errorf("ID = %d, want 1", created.ID)
	}
	if created.GivenNames != "Ana" {
		t.Errorf("GivenNames = %q, want %q", created.GivenNames, "Ana")
	}

	_, err = svc.Create(ctx, validInput())
	assertAPIErrorCode(t, err, model.ErrCodeDuplicateIdentityDocument)

	time.Sleep(time.Millisecond)

	update := validInput()
	update.City = strPtr("Loja")
	updated, err := svc.Update(ctx, created.ID, update)
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if updated.City != "Loja" {
		t.Errorf("City = %q, want %q", updated.City, "Loja")
	}
	if !updated.CreatedAt.Equal(created.CreatedAt) {
		t.Error("CreatedAt must not change on update")
	}
	if updated.UpdatedAt.Before(created.UpdatedAt) {
		t.Errorf("UpdatedAt = %v, want >= %v", updated.UpdatedAt, created.UpdatedAt)
	}

	removed, err := svc.Delete(ctx, created.ID)
	if err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if removed.ID != created.ID {
		t.Errorf("removed.ID = %d, want %d", removed.ID, created.ID)
	}

	_, err = svc.Get(ctx, created.ID)
	assertAPIErrorCode(t, err, model.ErrCodePersonNotFound)

	wantOps := []string{
		"create/success",
		"create/duplicate",
		"update/success",
		"delete/success",
		"get/not_found",
	}
	if len(collector.operations) != len(wantOps) {
		t.Fatalf("operations = %v, want %v", collector.operations, wantOps)
	}
	for i := range wantOps {
		if collector.operations[i] != wantOps[i] {
			t.Errorf("operations[%d] = %q, want %q", i, collector.operations[i], wantOps[i])
		}
	}
	if collector.liveRecords != 0 {
		t.Errorf("liveRecords = %d, want 0", collector.liveRecords)
	}
}

// TestService_Create_ValidationShortCircuits はバリデーション違反時にストアへ触れないことを検証する。
func TestService_Create_ValidationShortCircuits(t *testing.T) {
	repo := &mockPersonRepo{t: t}
	svc := NewService(repo, nil, discardLogger())

	in := validInput()
	in.IdentityDocument = strPtr("123")
	in.City = nil

	_, err := svc.Create(context.Background(), in)
	apiErr := assertAPIErrorCode(t, err, model.ErrCodeValidationFailed)

	want := []string{"identityDocument must be exactly 10 characters", "city is required"}
	if len(apiErr.Details) != len(want) {
		t.Fatalf("Details = %v, want %v", apiErr.Details, want)
	}
	for i := range want {
		if apiErr.Details[i] != want[i] {
			t.Errorf("Details[%d] = %q, want %q", i, apiErr.Details[i], want[i])
		}
	}
	if apiErr.Message != "identityDocument must be exactly 10 characters, city is required" {
		t.Errorf("Message = %q", apiErr.Message)
	}
}

// TestService_Update_ValidationShortCircuits は更新時もバリデーションが先に行われることを検証する。
// 存在しないIDでも、違反があればVALIDATION_FAILEDになる。
func TestService_Update_ValidationShortCircuits(t *testing.T) {
	repo := &mockPersonRepo{t: t}
	svc := NewService(repo, nil, discardLogger())

	_, err := svc.Update(context.Background(), 999, model.PersonInput{})
	assertAPIErrorCode(t, err, model.ErrCodeValidationFailed)
}

func TestService_Create_PassesPromotedFieldsToStore(t *testing.T) {
	var got model.PersonFields
	repo := &mockPersonRepo{
		t: t,
		insertFn: func(ctx context.Context, fields model.PersonFields) (*model.Person, error) {
			got = fields
			return &model.Person{ID: 7, PersonFields: fields.Normalize()}, nil
		},
	}
	svc := NewService(repo, nil, discardLogger())

	p, err := svc.Create(context.Background(), validInput())
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if p.ID != 7 {
		t.Errorf("ID = %d, want 7", p.ID)
	}
	if got.IdentityDocument != "1234567890" || got.Gender != model.GenderFeminine || got.City != "Quito" {
		t.Errorf("unexpected fields passed to store: %+v", got)
	}
}

func TestService_Create_InternalFailureIsOpaque(t *testing.T) {
	backendErr := errors.New("connection refused")
	collector := &mockCollector{}
	repo := &mockPersonRepo{
		t: t,
		insertFn: func(ctx context.Context, fields model.PersonFields) (*model.Person, error) {
			return nil, backendErr
		},
	}
	svc := NewService(repo, collector, discardLogger())

	_, err := svc.Create(context.Background(), validInput())
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		t.Errorf("internal failures must not be categorised as APIError, got %v", apiErr)
	}
	if !errors.Is(err, backendErr) {
		t.Error("expected backend error to be wrapped for logging")
	}
	if len(collector.operations) != 1 || collector.operations[0] != "create/error" {
		t.Errorf("operations = %v, want [create/error]", collector.operations)
	}
}

func TestService_List_NewestFirst(t *testing.T) {
	svc, _ := newMemoryService()
	ctx := context.Background()

	for _, doc := range []string{"aaaaaaaaaa", "bbbbbbbbbb", "cccccccccc"} {
		in := validInput()
		in.IdentityDocument = strPtr(doc)
		if _, err := svc.Create(ctx, in); err != nil {
			t.Fatalf("Create(%s) returned error: %v", doc, err)
		}
	}

	people, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(people) != 3 {
		t.Fatalf("len = %d, want 3", len(people))
	}
	for i, want := range []int64{3, 2, 1} {
		if people[i].ID != want {
			t.Errorf("people[%d].ID = %d, want %d", i, people[i].ID, want)
		}
	}
}

func TestService_List_EmptyStore(t *testing.T) {
	svc, _ := newMemoryService()

	people, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(people) != 0 {
		t.Errorf("len = %d, want 0", len(people))
	}
}

func TestService_List_StoreFailure(t *testing.T) {
	repo := &mockPersonRepo{
		t: t,
		listFn: func(ctx context.Context) ([]*model.Person, error) {
			return nil, errors.New("backend down")
		},
	}
	svc := NewService(repo, nil, discardLogger())

	if _, err := svc.List(context.Background()); err == nil {
		t.Fatal("expected error, got nil")
	}
}

func TestService_Get_Found(t *testing.T) {
	svc, _ := newMemoryService()
	ctx := context.Background()

	created, _ := svc.Create(ctx, validInput())

	p, err := svc.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if p.IdentityDocument != "1234567890" {
		t.Errorf("IdentityDocument = %q, want %q", p.IdentityDocument, "1234567890")
	}
}

func TestService_Update_NotFound(t *testing.T) {
	svc, _ := newMemoryService()

	_, err := svc.Update(context.Background(), 42, validInput())
	apiErr := assertAPIErrorCode(t, err, model.ErrCodePersonNotFound)
	if apiErr.Message != "person not found: 42" {
		t.Errorf("Message = %q", apiErr.Message)
	}
}

func TestService_Update_DuplicateOfOtherRecord(t *testing.T) {
	svc, _ := newMemoryService()
	ctx := context.Background()

	first, _ := svc.Create(ctx, validInput())

	other := validInput()
	other.IdentityDocument = strPtr("0987654321")
	second, err := svc.Create(ctx, other)
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	update := validInput()
	update.IdentityDocument = strPtr(first.IdentityDocument)
	_, err = svc.Update(ctx, second.ID, update)
	assertAPIErrorCode(t, err, model.ErrCodeDuplicateIdentityDocument)

	// 自身の身分証番号のままの更新は成功する
	if _, err := svc.Update(ctx, first.ID, validInput()); err != nil {
		t.Fatalf("Update with own document returned error: %v", err)
	}
}

func TestService_Delete_NotFound(t *testing.T) {
	svc, _ := newMemoryService()

	_, err := svc.Delete(context.Background(), 1)
	assertAPIErrorCode(t, err, model.ErrCodePersonNotFound)
}

func TestService_Delete_IDNotReused(t *testing.T) {
	svc, _ := newMemoryService()
	ctx := context.Background()

	first, _ := svc.Create(ctx, validInput())
	if _, err := svc.Delete(ctx, first.ID); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}

	second, err := svc.Create(ctx, validInput())
	if err != nil {
		t.Fatalf("Create after delete returned error: %v", err)
	}
	if second.ID == first.ID {
		t.Errorf("ID %d was reused", second.ID)
	}
}

func TestService_Count(t *testing.T) {
	svc, _ := newMemoryService()
	ctx := context.Background()

	if _, err := svc.Create(ctx, validInput()); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	count, err := svc.Count(ctx)
	if err != nil {
		t.Fatalf("Count returned error: %v", err)
	}
	if count != 1 {
		t.Errorf("Count = %d, want 1", count)
	}
}

func TestNewService_NilLoggerUsesDefault(t *testing.T) {
	svc := NewService(repository.NewMemoryPersonRepo(), nil, nil)
	if svc.logger == nil {
		t.Fatal("expected default logger")
	}
}
