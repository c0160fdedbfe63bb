package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/shouni/illustration-studio/internal/log"
	"github.com/shouni/illustration-studio/pkg/domain"
)

const fallbackErrorMessage = "An unexpected error occurred"

type errorResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, message string) {
	if message == "" {
		message = fallbackErrorMessage
	}
	writeJSON(w, code, errorResponse{Message: message})
}

// fail は委譲先の失敗をログに残し、エラーボディに変換します。
// 入力起因のものは 400、それ以外はすべて 500 です。
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	log.FromContext(r.Context()).ErrorContext(r.Context(), "リクエストの処理に失敗しました",
		"route", r.URL.Path, "request_id", RequestIDFromContext(r.Context()), "error", err)

	code := http.StatusInternalServerError
	if errors.Is(err, domain.ErrInvalidRequest) {
		code = http.StatusBadRequest
	}
	writeError(w, code, err.Error())
}

// postOnly は POST 以外のメソッドを 405 と Allow ヘッダで拒否します。
func postOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			writeError(w, http.StatusMethodNotAllowed, "Only POST requests are allowed")
			return
		}
		next(w, r)
	}
}
