package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/campushub/internal/metrics"
	"github.com/hitoshi/campushub/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	SessionFinder     middleware.SessionFinder
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	Logger            *slog.Logger

	// メトリクス
	Gatherer prometheus.Gatherer

	// グループ
	GroupService  GroupServiceInterface
	SearchTracker SearchTrackerInterface

	// レコメンド
	RecommendService RecommendServiceInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	CORS → SecurityHeaders → Logging → Recovery → Session → RateLimit(General)
//
// ヘルスチェック（/health）とメトリクス（/metrics）は認証の外に配置する。
// グループ検索には検索専用レート制限を追加で適用する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	// 全ルートに効くミドルウェア
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewLoggingMiddleware(deps.Logger))
	r.Use(middleware.NewRecoveryMiddleware(deps.Logger))

	groupHandler := NewGroupHandler(deps.GroupService, deps.SearchTracker)
	recHandler := NewRecommendationHandler(deps.RecommendService)

	// --- 認証不要のルート ---

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.Gatherer))
	}

	// --- 認証が必要なルート ---
	// ミドルウェアスタック: Session → RateLimit(General)
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewSessionMiddleware(deps.SessionFinder))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		// グループ閲覧・検索
		r.Route("/api/groups", func(r chi.Router) {
			r.Get("/", groupHandler.ListGroups)

			// GET /api/groups/search - 検索専用レート制限を追加
			r.With(deps.RateLimiter.SearchMiddleware()).Get("/search", groupHandler.SearchGroups)

			r.Get("/{id}", groupHandler.GetGroup)
		})

		// レコメンド
		r.Route("/api/recommendations", func(r chi.Router) {
			r.Get("/", recHandler.GetRecommendations)
			r.Get("/debug", recHandler.GetRecommendationsDebug)
		})
	})

	return r
}
