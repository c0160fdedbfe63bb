// Package config は環境変数と .env から設定を読み込みます。
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/samber/lo"
)

// ErrMissingAPIKey は API キーが設定されていないことを示します。
var ErrMissingAPIKey = errors.New("GEMINI_API_KEY (or API_KEY) is not set")

// バインディング
const (
	BindingDirect  = "direct"
	BindingProxied = "proxied"
)

type Config struct {
	APIKey string
	Env    string
	Port   string

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	MaxBodyBytes int64

	AllowedOrigins []string

	ImageModel      string
	MultimodalModel string
	ThinkingModel   string

	Binding    string
	APIBaseURL string

	HistoryBackend string
	HistoryDir     string
	RedisAddr      string
	HistoryBucket  string
	HistoryPrefix  string

	CompressUploads bool
	JPEGQuality     int
}

// Load は設定を読み込みます。API キーが無くてもエラーにはしません。
func Load() (Config, error) {
	// .env が無くてもエラーにしない
	_ = godotenv.Load(".env", ".env.local")

	c := Config{
		APIKey: lo.Ternary(os.Getenv("GEMINI_API_KEY") != "", os.Getenv("GEMINI_API_KEY"), os.Getenv("API_KEY")),
		Env:    getenv("APP_ENV", "development"),
		Port:   getenv("PORT", "3000"),

		AllowedOrigins: splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),

		ImageModel:      os.Getenv("IMAGE_MODEL"),
		MultimodalModel: os.Getenv("MULTIMODAL_MODEL"),
		ThinkingModel:   os.Getenv("THINKING_MODEL"),

		Binding:    strings.ToLower(getenv("STUDIO_BINDING", BindingProxied)),
		APIBaseURL: getenv("STUDIO_API_BASE_URL", "http://localhost:3000"),

		HistoryBackend: strings.ToLower(getenv("HISTORY_BACKEND", "file")),
		HistoryDir:     getenv("HISTORY_DIR", defaultHistoryDir()),
		RedisAddr:      getenv("REDIS_ADDR", "localhost:6379"),
		HistoryBucket:  os.Getenv("HISTORY_BUCKET"),
		HistoryPrefix:  getenv("HISTORY_PREFIX", "studio/"),
	}

	var err error
	if c.ReadTimeout, err = seconds("HTTP_READ_TIMEOUT_SECONDS", 15); err != nil {
		return Config{}, err
	}
	if c.WriteTimeout, err = seconds("HTTP_WRITE_TIMEOUT_SECONDS", 0); err != nil {
		return Config{}, err
	}
	if c.IdleTimeout, err = seconds("HTTP_IDLE_TIMEOUT_SECONDS", 60); err != nil {
		return Config{}, err
	}
	if c.MaxBodyBytes, err = getint64("MAX_BODY_BYTES", 20<<20); err != nil {
		return Config{}, err
	}
	if c.CompressUploads, err = getbool("COMPRESS_UPLOADS", false); err != nil {
		return Config{}, err
	}
	quality, err := getint64("UPLOAD_JPEG_QUALITY", 85)
	if err != nil {
		return Config{}, err
	}
	c.JPEGQuality = int(quality)

	if c.Binding != BindingDirect && c.Binding != BindingProxied {
		return Config{}, fmt.Errorf("STUDIO_BINDING must be %q or %q: %q", BindingDirect, BindingProxied, c.Binding)
	}
	return c, nil
}

// LoadServer はサーバー用に設定を読み込みます。API キーが無ければ起動できません。
func LoadServer() (Config, error) {
	c, err := Load()
	if err != nil {
		return Config{}, err
	}
	if err := c.RequireAPIKey(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// RequireAPIKey は API キーが設定されているか確認します。
func (c Config) RequireAPIKey() error {
	if c.APIKey == "" {
		return ErrMissingAPIKey
	}
	return nil
}

// IsDevelopment は開発環境かどうかを返します。
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Addr は待ち受けアドレスです。
func (c Config) Addr() string {
	return ":" + c.Port
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getint64(k string, def int64) (int64, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer: %q", k, v)
	}
	return n, nil
}

func getbool(k string, def bool) (bool, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean: %q", k, v)
	}
	return b, nil
}

// seconds は秒数を読みます。0 は期限なしを意味します。
func seconds(k string, def int64) (time.Duration, error) {
	v := os.Getenv(k)
	if v == "" {
		return time.Duration(def) * time.Second, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%s must be a non-negative integer: %q", k, v)
	}
	return time.Duration(n) * time.Second, nil
}

func splitList(v string) []string {
	items := lo.Map(strings.Split(v, ","), func(s string, _ int) string {
		return strings.TrimSpace(s)
	})
	return lo.Filter(items, func(s string, _ int) bool { return s != "" })
}

func defaultHistoryDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "illustration-studio")
	}
	return ".studio"
}
