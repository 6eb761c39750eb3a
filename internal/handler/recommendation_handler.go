package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/hitoshi/campushub/internal/middleware"
	"github.com/hitoshi/campushub/internal/model"
	"github.com/hitoshi/campushub/internal/recommend"
)

// RecommendServiceInterface はレコメンドハンドラーが必要とするサービスインターフェース。
type RecommendServiceInterface interface {
	// Recommend はユーザーに合わせたグループのレコメンドを生成する。
	Recommend(ctx context.Context, userID string) ([]*model.Group, error)
	// RecommendDebug はレコメンドパイプラインの診断情報を生成する。
	RecommendDebug(ctx context.Context, userID string) (*recommend.Debug, error)
}

// RecommendationHandler はグループレコメンドのHTTPハンドラー。
type RecommendationHandler struct {
	service RecommendServiceInterface
}

// NewRecommendationHandler はRecommendationHandlerを生成する。
func NewRecommendationHandler(service RecommendServiceInterface) *RecommendationHandler {
	return &RecommendationHandler{service: service}
}

// recommendationListResponse はレコメンド一覧のAPIレスポンス。
type recommendationListResponse struct {
	Recommendations []groupResponse `json:"recommendations"`
	Count           int             `json:"count"`
}

// GetRecommendations は認証済みユーザー向けのグループレコメンドを返す。
// 候補が見つからない場合も空の配列を200で返す。
// GET /api/recommendations
func (h *RecommendationHandler) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, newUnauthorizedError())
		return
	}

	groups, err := h.service.Recommend(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := recommendationListResponse{
		Recommendations: make([]groupResponse, 0, len(groups)),
		Count:           len(groups),
	}
	for _, g := range groups {
		resp.Recommendations = append(resp.Recommendations, toGroupResponse(g))
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// GetRecommendationsDebug はレコメンドパイプラインの診断情報を返す。
// 運用時の「なぜこのユーザーに候補が出ないか」の調査に使用する。
// GET /api/recommendations/debug
func (h *RecommendationHandler) GetRecommendationsDebug(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, newUnauthorizedError())
		return
	}

	debug, err := h.service.RecommendDebug(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(debug)
}
