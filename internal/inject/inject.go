// Package inject は2つのバイナリが使う依存関係を samber/do のインジェクタに登録します。
package inject

import (
	"context"
	"fmt"
	"net/http"

	"github.com/samber/do"

	"github.com/shouni/illustration-studio/internal/config"
	"github.com/shouni/illustration-studio/internal/log"
	"github.com/shouni/illustration-studio/pkg/client"
	"github.com/shouni/illustration-studio/pkg/domain"
	"github.com/shouni/illustration-studio/pkg/generator"
	"github.com/shouni/illustration-studio/pkg/history"
	"github.com/shouni/illustration-studio/pkg/kvstore"
	"github.com/shouni/illustration-studio/pkg/server"
	"github.com/shouni/illustration-studio/pkg/studio"
)

// Setup は cfg をもとにインジェクタを組み立てます。各依存は最初に要求されたときに作られます。
func Setup(ctx context.Context, cfg config.Config) *do.Injector {
	logger := log.FromContext(ctx)

	injector := do.NewWithOpts(&do.InjectorOpts{
		Logf: func(format string, args ...any) {
			logger.Debug(fmt.Sprintf(format, args...))
		},
	})
	do.ProvideValue[config.Config](injector, cfg)

	do.Provide[generator.GenerativeModel](injector, func(i *do.Injector) (generator.GenerativeModel, error) {
		cfg := do.MustInvoke[config.Config](i)
		if err := cfg.RequireAPIKey(); err != nil {
			return nil, err
		}
		return generator.NewGenAIClient(ctx, cfg.APIKey)
	})
	do.Provide[generator.ImageExecutor](injector, func(i *do.Injector) (generator.ImageExecutor, error) {
		model, err := do.Invoke[generator.GenerativeModel](i)
		if err != nil {
			return nil, err
		}
		return generator.NewGeminiImageCore(model)
	})
	do.Provide[*generator.GeminiGenerator](injector, func(i *do.Injector) (*generator.GeminiGenerator, error) {
		executor, err := do.Invoke[generator.ImageExecutor](i)
		if err != nil {
			return nil, err
		}
		cfg := do.MustInvoke[config.Config](i)
		return generator.NewGeminiGenerator(executor, generator.Models{
			Image:      cfg.ImageModel,
			Multimodal: cfg.MultimodalModel,
			Thinking:   cfg.ThinkingModel,
		})
	})

	do.Provide[*server.Server](injector, func(i *do.Injector) (*server.Server, error) {
		gen, err := do.Invoke[*generator.GeminiGenerator](i)
		if err != nil {
			return nil, err
		}
		return server.New(gen)
	})
	do.Provide[http.Handler](injector, func(i *do.Injector) (http.Handler, error) {
		srv, err := do.Invoke[*server.Server](i)
		if err != nil {
			return nil, err
		}
		cfg := do.MustInvoke[config.Config](i)
		return server.NewRouter(srv, server.RouterConfig{
			MaxBodyBytes:   cfg.MaxBodyBytes,
			AllowedOrigins: cfg.AllowedOrigins,
		}), nil
	})

	do.Provide[domain.Illustrator](injector, newIllustrator)

	do.Provide[kvstore.Store](injector, func(i *do.Injector) (kvstore.Store, error) {
		cfg := do.MustInvoke[config.Config](i)
		return kvstore.Open(ctx, kvstore.Options{
			Backend:   cfg.HistoryBackend,
			Dir:       cfg.HistoryDir,
			RedisAddr: cfg.RedisAddr,
			Bucket:    cfg.HistoryBucket,
			Prefix:    cfg.HistoryPrefix,
		})
	})
	do.Provide[*history.Store](injector, func(i *do.Injector) (*history.Store, error) {
		kv, err := do.Invoke[kvstore.Store](i)
		if err != nil {
			return nil, err
		}
		return history.New(kv), nil
	})
	do.Provide[*studio.Studio](injector, func(i *do.Injector) (*studio.Studio, error) {
		ill, err := do.Invoke[domain.Illustrator](i)
		if err != nil {
			return nil, err
		}
		store, err := do.Invoke[*history.Store](i)
		if err != nil {
			return nil, err
		}
		cfg := do.MustInvoke[config.Config](i)
		var opts []studio.Option
		if cfg.CompressUploads {
			opts = append(opts, studio.WithCompression(cfg.JPEGQuality))
		}
		return studio.New(ill, store, opts...)
	})

	return injector
}

// newIllustrator は設定に応じて、プロバイダを直接呼ぶか自前のサーバー経由で呼ぶかを選びます。
func newIllustrator(i *do.Injector) (domain.Illustrator, error) {
	cfg := do.MustInvoke[config.Config](i)
	switch cfg.Binding {
	case config.BindingDirect:
		return do.Invoke[*generator.GeminiGenerator](i)
	case config.BindingProxied:
		return client.New(cfg.APIBaseURL)
	default:
		return nil, fmt.Errorf("unknown studio binding: %q", cfg.Binding)
	}
}
