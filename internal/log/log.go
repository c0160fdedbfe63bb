package log

import (
	"context"
	"io"
	"log/slog"

	"github.com/samber/lo"
)

type contextKey struct{}

// Options は New の設定です。
type Options struct {
	Level    slog.Level
	OmitTime bool
}

// New は JSON 形式の slog.Logger を作成します。
func New(w io.Writer, opts Options) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: opts.Level,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			return lo.Ternary(opts.OmitTime && a.Key == slog.TimeKey, slog.Attr{}, a)
		},
	}))
}

// LevelFor は APP_ENV に応じたログレベルを返します。
func LevelFor(appEnv string) slog.Level {
	return lo.Ternary(appEnv == "development", slog.LevelDebug, slog.LevelInfo)
}

func NewContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, logger)
}

// FromContext はコンテキストのロガーを返します。無ければ slog.Default です。
func FromContext(ctx context.Context) *slog.Logger {
	if v, ok := ctx.Value(contextKey{}).(*slog.Logger); ok {
		return v
	}
	return slog.Default()
}
