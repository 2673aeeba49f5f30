package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/personreg/internal/middleware"
	"github.com/hitoshi/personreg/internal/model"
)

// Version はAPIのバージョン。
const Version = "1.0.0"

// HealthChecker はストアの疎通確認を行うインターフェース。
// *sql.DB が満たす。
type HealthChecker interface {
	PingContext(ctx context.Context) error
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Logger             *slog.Logger
	StatusRecorder     middleware.StatusRecorder
	CORSAllowedOrigins []string
	RateLimiter        *middleware.RateLimiter

	// 人物レコード
	PersonService PersonServiceInterface
	Backend       string

	// 運用
	HealthChecker  HealthChecker // nilの場合は常に正常
	MetricsHandler http.Handler  // nilの場合は/metricsを公開しない
}

// infoResponse はGET /のAPI情報レスポンス。
type infoResponse struct {
	Name      string            `json:"name"`
	Version   string            `json:"version"`
	Backend   string            `json:"backend"`
	Persons   int               `json:"persons"`
	Endpoints map[string]string `json:"endpoints"`
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → Logging → SecurityHeaders → CORS → RateLimit
//
// /health と /metrics はレート制限の外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewLoggingMiddleware(logger, deps.StatusRecorder))
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigins))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteErrorResponse(w, http.StatusNotFound, model.NewRouteNotFoundError(r.Method, r.URL.Path))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteErrorResponse(w, http.StatusMethodNotAllowed, model.NewMethodNotAllowedError(r.Method, r.URL.Path))
	})

	// --- 運用エンドポイント ---
	r.Get("/health", healthHandler(deps.HealthChecker))
	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	personHandler := NewPersonHandler(deps.PersonService)

	// --- APIエンドポイント ---
	r.Group(func(r chi.Router) {
		if deps.RateLimiter != nil {
			r.Use(deps.RateLimiter.Middleware())
		}

		r.Get("/", infoHandler(deps.PersonService, deps.Backend))

		r.Route("/api/persons", func(r chi.Router) {
			r.Post("/", personHandler.CreatePerson)
			r.Get("/", personHandler.ListPersons)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", personHandler.GetPerson)
				r.Put("/", personHandler.UpdatePerson)
				r.Delete("/", personHandler.DeletePerson)
			})
		})
	})

	return r
}

// infoHandler はAPIの概要と現在のレコード数を返す。
// GET /
func infoHandler(service PersonServiceInterface, backend string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		count, err := service.Count(r.Context())
		if err != nil {
			handleServiceError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, infoResponse{
			Name:    "personreg",
			Version: Version,
			Backend: backend,
			Persons: count,
			Endpoints: map[string]string{
				"list":   "GET /api/persons",
				"get":    "GET /api/persons/{id}",
				"create": "POST /api/persons",
				"update": "PUT /api/persons/{id}",
				"delete": "DELETE /api/persons/{id}",
				"health": "GET /health",
			},
		})
	}
}

// healthHandler はヘルスチェック結果を返す。
// GET /health
func healthHandler(checker HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if checker != nil {
			if err := checker.PingContext(r.Context()); err != nil {
				slog.Error("health check failed", slog.String("error", err.Error()))
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
