package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/personreg/internal/middleware"
	"github.com/hitoshi/personreg/internal/model"
)

// PersonServiceInterface は人物ハンドラーが必要とするサービスインターフェース。
// person.Service が満たす。
type PersonServiceInterface interface {
	// Create はバリデーション後に新しいレコードを登録する。
	Create(ctx context.Context, in model.PersonInput) (*model.Person, error)
	// List は全レコードを新しい順で返す。
	List(ctx context.Context) ([]*model.Person, error)
	// Get は指定IDのレコードを返す。
	Get(ctx context.Context, id int64) (*model.Person, error)
	// Update はバリデーション後に指定IDのレコードを置き換える。
	Update(ctx context.Context, id int64, in model.PersonInput) (*model.Person, error)
	// Delete は指定IDのレコードを削除する。
	Delete(ctx context.Context, id int64) (*model.Person, error)
	// Count は生存レコード数を返す。
	Count(ctx context.Context) (int, error)
}

// PersonHandler は人物レコード管理のHTTPハンドラー。
type PersonHandler struct {
	service PersonServiceInterface
}

// NewPersonHandler はPersonHandlerを生成する。
func NewPersonHandler(service PersonServiceInterface) *PersonHandler {
	return &PersonHandler{service: service}
}

// personResponse は人物レコードのAPIレスポンス。
type personResponse struct {
	ID               int64     `json:"id"`
	IdentityDocument string    `json:"identityDocument"`
	GivenNames       string    `json:"givenNames"`
	FamilyNames      string    `json:"familyNames"`
	BirthDate        string    `json:"birthDate"`
	Gender           string    `json:"gender"`
	City             string    `json:"city"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// CreatePerson は人物レコードを登録する。
// POST /api/persons
func (h *PersonHandler) CreatePerson(w http.ResponseWriter, r *http.Request) {
	in, ok := decodePersonRequest(w, r)
	if !ok {
		return
	}

	p, err := h.service.Create(r.Context(), in)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toPersonResponse(p))
}

// ListPersons は全人物レコードを新しい順で返す。
// GET /api/persons
func (h *PersonHandler) ListPersons(w http.ResponseWriter, r *http.Request) {
	people, err := h.service.List(r.Context())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	results := make([]personResponse, len(people))
	for i, p := range people {
		results[i] = toPersonResponse(p)
	}

	writeJSON(w, http.StatusOK, results)
}

// GetPerson は人物レコードを1件返す。
// GET /api/persons/:id
func (h *PersonHandler) GetPerson(w http.ResponseWriter, r *http.Request) {
	id, ok := parsePersonID(w, r)
	if !ok {
		return
	}

	p, err := h.service.Get(r.Context(), id)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toPersonResponse(p))
}

// UpdatePerson は人物レコードを置き換える。
// PUT /api/persons/:id
func (h *PersonHandler) UpdatePerson(w http.ResponseWriter, r *http.Request) {
	id, ok := parsePersonID(w, r)
	if !ok {
		return
	}

	in, ok := decodePersonRequest(w, r)
	if !ok {
		return
	}

	p, err := h.service.Update(r.Context(), id, in)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toPersonResponse(p))
}

// DeletePerson は人物レコードを削除する。
// DELETE /api/persons/:id
func (h *PersonHandler) DeletePerson(w http.ResponseWriter, r *http.Request) {
	id, ok := parsePersonID(w, r)
	if !ok {
		return
	}

	if _, err := h.service.Delete(r.Context(), id); err != nil {
		handleServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// --- ヘルパー関数 ---

// decodePersonRequest はリクエストボディをPersonInputに変換する。
// ボディがJSONオブジェクトでない場合はINVALID_REQUESTを書き込みfalseを返す。
// 個々のフィールドの型不一致はバリデーションに委ねる。
func decodePersonRequest(w http.ResponseWriter, r *http.Request) (model.PersonInput, bool) {
	var raw map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil || raw == nil {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError())
		return model.PersonInput{}, false
	}

	var in model.PersonInput
	in.IdentityDocument = decodeStringField(raw, model.FieldIdentityDocument, &in)
	in.GivenNames = decodeStringField(raw, model.FieldGivenNames, &in)
	in.FamilyNames = decodeStringField(raw, model.FieldFamilyNames, &in)
	in.BirthDate = decodeStringField(raw, model.FieldBirthDate, &in)
	in.Gender = decodeStringField(raw, model.FieldGender, &in)
	in.City = decodeStringField(raw, model.FieldCity, &in)
	return in, true
}

// decodeStringField は1フィールドを文字列として取り出す。
// 欠落またはnullはnil、文字列以外の値はNonStringに記録してnilを返す。
func decodeStringField(raw map[string]json.RawMessage, field string, in *model.PersonInput) *string {
	v, ok := raw[field]
	if !ok || bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
		return nil
	}

	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		in.MarkNonString(field)
		return nil
	}
	return &s
}

// parsePersonID はURLパラメータのIDを数値に変換する。
// 数値でないIDは存在しないレコードとして扱う。
func parsePersonID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		middleware.WriteErrorResponse(w, http.StatusNotFound, model.NewPersonNotFoundError(raw))
		return 0, false
	}
	return id, true
}

// toPersonResponse はmodel.PersonからAPIレスポンスに変換する。
func toPersonResponse(p *model.Person) personResponse {
	return personResponse{
		ID:               p.ID,
		IdentityDocument: p.IdentityDocument,
		GivenNames:       p.GivenNames,
		FamilyNames:      p.FamilyNames,
		BirthDate:        p.BirthDate,
		Gender:           string(p.Gender),
		City:             p.City,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}

// writeJSON はJSONレスポンスを書き込む。
func writeJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body)
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
func handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		middleware.WriteErrorResponse(w, mapAPIErrorToHTTPStatus(apiErr), apiErr)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	slog.Error("internal server error",
		slog.String("error", err.Error()),
		slog.String("request_id", middleware.RequestIDFromContext(r.Context())),
	)
	middleware.WriteInternalServerError(w)
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeValidationFailed, model.ErrCodeInvalidRequest:
		return http.StatusBadRequest
	case model.ErrCodeDuplicateIdentityDocument:
		return http.StatusConflict
	case model.ErrCodePersonNotFound, model.ErrCodeRouteNotFound:
		return http.StatusNotFound
	case model.ErrCodeMethodNotAllowed:
		return http.StatusMethodNotAllowed
	default:
		return http.StatusInternalServerError
	}
}
