// Package server は生成・編集・プロンプト拡張の3つのステートレスなエンドポイントを提供します。
package server

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	"github.com/shouni/illustration-studio/pkg/domain"
)

// ルート
const (
	RouteGenerate = "/api/generate"
	RouteEdit     = "/api/edit"
	RouteThink    = "/api/think"
	RouteHealth   = "/healthz"
)

// DefaultMaxBodyBytes はリクエストボディの既定上限です。編集で画像を base64 で受けるため大きめです。
const DefaultMaxBodyBytes int64 = 20 << 20

// Server はハンドラが共有する依存関係を保持します。リクエスト間で共有する可変状態はありません。
type Server struct {
	illustrator domain.Illustrator
	validate    *validator.Validate
}

// New は illustrator に処理を委譲する Server を作成します。
func New(illustrator domain.Illustrator) (*Server, error) {
	if illustrator == nil {
		return nil, errors.New("illustrator is required")
	}

	v := validator.New()
	// エラーメッセージには JSON のフィールド名を使う
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})

	return &Server{illustrator: illustrator, validate: v}, nil
}

// RouterConfig はルーターのミドルウェア設定です。
type RouterConfig struct {
	MaxBodyBytes   int64
	AllowedOrigins []string
}

// NewRouter は chi ルーターに3つのエンドポイントとヘルスチェックを登録します。
// 各エンドポイントは POST 以外を 405 で拒否します。
func NewRouter(s *Server, cfg RouterConfig) http.Handler {
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}

	r := chi.NewRouter()
	r.Use(
		RequestID,
		middleware.RealIP,
		AccessLog,
		middleware.Recoverer,
		CORS(cfg.AllowedOrigins),
		MaxBody(cfg.MaxBodyBytes),
	)

	r.Get(RouteHealth, s.Health)
	r.HandleFunc(RouteGenerate, postOnly(s.Generate))
	r.HandleFunc(RouteEdit, postOnly(s.Edit))
	r.HandleFunc(RouteThink, postOnly(s.Think))

	return r
}
