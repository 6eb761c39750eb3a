package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/hitoshi/campushub/internal/model"
)

// ErrorResponseBody は統一エラーフォーマットのJSONボディを表す。
type ErrorResponseBody struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Category string `json:"category"`
	Action   string `json:"action"`
}

// WriteErrorResponse は指定されたステータスコードとAPIErrorで
// JSONエラーレスポンスを書き込む。
func WriteErrorResponse(w http.ResponseWriter, status int, apiErr *model.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ErrorResponseBody{
		Code:     apiErr.Code,
		Message:  apiErr.Message,
		Category: apiErr.Category,
		Action:   apiErr.Action,
	})
}

// WriteInternalServerError は500エラーレスポンスを書き込む。
// 内部エラーの詳細はクライアントに露出しない。
func WriteInternalServerError(w http.ResponseWriter) {
	WriteErrorResponse(w, http.StatusInternalServerError, &model.APIError{
		Code:     model.ErrCodeInternal,
		Message:  "サーバー内部でエラーが発生しました。",
		Category: "system",
		Action:   "しばらく時間をおいて再度お試しください。",
	})
}
