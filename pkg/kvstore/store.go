// Package kvstore はスタジオの履歴などを保存する小さなキー・バリューストアを提供します。
// ブラウザの localStorage に相当するもので、値は不透明なバイト列として扱います。
package kvstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/go-redis/redis/v8"
)

// ErrNotFound はキーが存在しないことを示します。
var ErrNotFound = errors.New("kvstore: key not found")

// Store はキー単位で値を読み書きするインターフェースです。
// 同じキーへの並行書き込みは後勝ちで、排他は行いません。
type Store interface {
	// Get はキーの値を返します。存在しなければ ErrNotFound を返します。
	Get(ctx context.Context, key string) ([]byte, error)
	// Set はキーの値を丸ごと置き換えます。
	Set(ctx context.Context, key string, value []byte) error
	// Delete はキーを削除します。存在しないキーの削除はエラーになりません。
	Delete(ctx context.Context, key string) error
}

// バックエンド名
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendS3     = "s3"
)

// Options はバックエンドの選択と接続先です。
type Options struct {
	Backend   string
	Dir       string // file
	RedisAddr string // redis
	Bucket    string // s3
	Prefix    string // s3
}

// Open は Options に従ってバックエンドを作成します。
func Open(ctx context.Context, opts Options) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Backend)) {
	case BackendMemory:
		return NewMemory(), nil
	case "", BackendFile:
		return NewFileStore(opts.Dir)
	case BackendRedis:
		client := redis.NewClient(&redis.Options{Addr: opts.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("kvstore: redis ping: %w", err)
		}
		return NewRedisStore(client), nil
	case BackendS3:
		cfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("kvstore: load aws config: %w", err)
		}
		return NewS3Store(s3.NewFromConfig(cfg), opts.Bucket, opts.Prefix)
	default:
		return nil, fmt.Errorf("kvstore: unknown backend %q", opts.Backend)
	}
}
