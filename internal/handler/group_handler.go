package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/campushub/internal/middleware"
	"github.com/hitoshi/campushub/internal/model"
)

// GroupServiceInterface はグループハンドラーが必要とするサービスインターフェース。
type GroupServiceInterface interface {
	// ListGroups は公開中のアクティブなグループ一覧を取得する。
	ListGroups(ctx context.Context) ([]*model.Group, error)
	// SearchGroups はクエリに一致する公開グループを検索する。
	SearchGroups(ctx context.Context, query string) ([]*model.Group, error)
	// GetGroup はグループ情報を取得する。
	GetGroup(ctx context.Context, groupID string) (*model.Group, error)
}

// SearchTrackerInterface は検索クエリの履歴記録のためのインターフェース。
// 検索履歴はレコメンドの関心シグナルとして利用される。
type SearchTrackerInterface interface {
	// Track は検索クエリを履歴に記録する。
	Track(ctx context.Context, userID, query string, searchType model.SearchType) error
}

// GroupHandler はグループ閲覧・検索のHTTPハンドラー。
type GroupHandler struct {
	service GroupServiceInterface
	tracker SearchTrackerInterface
}

// NewGroupHandler はGroupHandlerを生成する。
func NewGroupHandler(service GroupServiceInterface, tracker SearchTrackerInterface) *GroupHandler {
	return &GroupHandler{
		service: service,
		tracker: tracker,
	}
}

// groupResponse はグループ情報のAPIレスポンス。
type groupResponse struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Description    string `json:"description"`
	CourseName     string `json:"courseName"`
	CourseCode     string `json:"courseCode,omitempty"`
	Topic          string `json:"topic,omitempty"`
	MaxSize        int    `json:"maxSize"`
	CurrentSize    int    `json:"currentSize"`
	CreatorID      string `json:"creatorId"`
	Status         string `json:"status"`
	Visibility     string `json:"visibility"`
	RequiresInvite bool   `json:"requiresInvite"`
	CreatedAt      string `json:"createdAt"`
}

// groupListResponse はグループ一覧のAPIレスポンス。
type groupListResponse struct {
	Groups []groupResponse `json:"groups"`
	Count  int             `json:"count"`
}

// apiErrorResponse は統一エラーフォーマットのレスポンス。
type apiErrorResponse struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Category string `json:"category"`
	Action   string `json:"action"`
}

// ListGroups は公開グループ一覧を返す。
// GET /api/groups
func (h *GroupHandler) ListGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := h.service.ListGroups(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeGroupListResponse(w, groups)
}

// SearchGroups はクエリに一致する公開グループを検索し、
// クエリを検索履歴に記録する。
// GET /api/groups/search?q=...&type=...
func (h *GroupHandler) SearchGroups(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, newUnauthorizedError())
		return
	}

	query := r.URL.Query().Get("q")
	searchType := model.ParseSearchType(r.URL.Query().Get("type"))

	groups, err := h.service.SearchGroups(r.Context(), query)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	// 履歴記録の失敗は検索結果に影響させない
	if err := h.tracker.Track(r.Context(), userID, query, searchType); err != nil {
		slog.Warn("failed to track search query",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
	}

	writeGroupListResponse(w, groups)
}

// GetGroup はグループ詳細を返す。
// GET /api/groups/:id
func (h *GroupHandler) GetGroup(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "id")

	group, err := h.service.GetGroup(r.Context(), groupID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toGroupResponse(group))
}

// --- ヘルパー関数 ---

// toGroupResponse はmodel.GroupからAPIレスポンスに変換する。
func toGroupResponse(group *model.Group) groupResponse {
	return groupResponse{
		ID:             group.ID,
		Name:           group.Name,
		Description:    group.Description,
		CourseName:     group.CourseName,
		CourseCode:     group.CourseCode,
		Topic:          group.Topic,
		MaxSize:        group.MaxSize,
		CurrentSize:    group.CurrentSize(),
		CreatorID:      group.CreatorID,
		Status:         string(group.Status),
		Visibility:     string(group.Visibility),
		RequiresInvite: group.RequiresInvite,
		CreatedAt:      group.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// writeGroupListResponse はグループ一覧をJSONで書き込む。
func writeGroupListResponse(w http.ResponseWriter, groups []*model.Group) {
	resp := groupListResponse{
		Groups: make([]groupResponse, 0, len(groups)),
		Count:  len(groups),
	}
	for _, g := range groups {
		resp.Groups = append(resp.Groups, toGroupResponse(g))
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// newUnauthorizedError は認証エラーを生成する。
func newUnauthorizedError() *model.APIError {
	return &model.APIError{
		Code:     "UNAUTHORIZED",
		Message:  "認証が必要です。",
		Category: "auth",
		Action:   "ログインしてください。",
	}
}

// writeAPIErrorResponse は統一エラーフォーマットでエラーレスポンスを書き込む。
func writeAPIErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(apiErrorResponse{
		Code:     apiErr.Code,
		Message:  apiErr.Message,
		Category: apiErr.Category,
		Action:   apiErr.Action,
	})
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		statusCode := mapAPIErrorToHTTPStatus(apiErr)
		writeAPIErrorResponse(w, statusCode, apiErr)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	slog.Error("internal server error", slog.String("error", err.Error()))
	writeAPIErrorResponse(w, http.StatusInternalServerError, &model.APIError{
		Code:     model.ErrCodeInternal,
		Message:  "内部エラーが発生しました。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	})
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeUserNotFound, model.ErrCodeGroupNotFound:
		return http.StatusNotFound
	case model.ErrCodeInvalidRequest:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
