// Package handler はHTTP APIのハンドラーを提供する。
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hitoshi/loanman/internal/model"
)

// envelope は全APIレスポンス共通の外形。
// 成功時は {"success":true,"data":...}、
// 失敗時は {"success":false,"error":{"code":N,"message":...},"data"?:...} となる。
// 失敗時のdataは拒否が診断情報（現在の保持者、衝突予約）を添付する場合のみ現れる。
type envelope struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *errorBody `json:"error,omitempty"`
}

// errorBody は失敗レスポンスのエラー部。
type errorBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// writeSuccess は成功エンベロープを書き込む。
func writeSuccess(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(envelope{
		Success: true,
		Data:    data,
	})
}

// writeFailed は失敗エンベロープを書き込む。dataはnil可。
func writeFailed(w http.ResponseWriter, statusCode int, code int, message string, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(envelope{
		Success: false,
		Data:    data,
		Error: &errorBody{
			Code:    code,
			Message: message,
		},
	})
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPレスポンスに変換する。
// 方針拒否とバリデーションエラーは400、対象不在は404、それ以外は500として扱う。
func handleServiceError(w http.ResponseWriter, err error) {
	var denial *model.DenialError
	if errors.As(err, &denial) {
		writeFailed(w, http.StatusBadRequest, denial.Code, denial.Message, denial.Data)
		return
	}

	var validation *model.ValidationError
	if errors.As(err, &validation) {
		writeFailed(w, http.StatusBadRequest, 0, validation.Message, nil)
		return
	}

	var notFound *model.NotFoundError
	if errors.As(err, &notFound) {
		writeFailed(w, http.StatusNotFound, 0, notFound.Error(), nil)
		return
	}

	// 型付きエラー以外は内部サーバーエラーとして扱う
	slog.Error("internal server error", slog.String("error", err.Error()))
	writeFailed(w, http.StatusInternalServerError, 0, "内部エラーが発生しました。", nil)
}

// writeInvalidRequest はリクエストボディの解析失敗に対する400レスポンスを書き込む。
func writeInvalidRequest(w http.ResponseWriter) {
	writeFailed(w, http.StatusBadRequest, 0, "リクエストボディの解析に失敗しました。", nil)
}

// writeNotFound は対象リソース不在の404レスポンスを書き込む。
func writeNotFound(w http.ResponseWriter, resource string, id int64) {
	writeFailed(w, http.StatusNotFound, 0, model.NewNotFoundError(resource, id).Error(), nil)
}
