// Package client は HTTP エンドポイント経由で画像生成を呼び出すクライアントです。
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/shouni/illustration-studio/pkg/domain"
	"github.com/shouni/illustration-studio/pkg/server"
)

// StatusError は 2xx 以外の応答を表します。Message はサーバーが返したメッセージです。
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string { return e.Message }

// Client は3つのエンドポイントを叩く domain.Illustrator の実装です。
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option は Client の設定を変更します。
type Option func(*Client)

// WithHTTPClient は内部で使う http.Client を差し替えます。タイムアウトを付けたい場合はこちらで指定します。
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New は baseURL を起点とする Client を作成します。
func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("baseURL is required")
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		// 期限は呼び出し側の ctx に任せる
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

var _ domain.Illustrator = (*Client)(nil)

type generateBody struct {
	Prompt      string             `json:"prompt"`
	AspectRatio domain.AspectRatio `json:"aspectRatio"`
	Model       domain.Model       `json:"model"`
	Resolution  domain.Resolution  `json:"resolution"`
}

type editBody struct {
	Prompt      string             `json:"prompt"`
	ImageBase64 string             `json:"imageBase64"`
	MimeType    string             `json:"mimeType"`
	AspectRatio domain.AspectRatio `json:"aspectRatio"`
}

type thinkBody struct {
	Query string `json:"query"`
}

// Generate は /api/generate を呼び出します。
func (c *Client) Generate(ctx context.Context, req domain.GenerateRequest) (domain.ImageAsset, error) {
	var asset domain.ImageAsset
	err := c.post(ctx, server.RouteGenerate, generateBody{
		Prompt:      req.Prompt,
		AspectRatio: req.AspectRatio,
		Model:       req.Model,
		Resolution:  req.Resolution,
	}, &asset)
	return asset, err
}

// Edit は /api/edit を呼び出します。
func (c *Client) Edit(ctx context.Context, req domain.EditRequest) (domain.ImageAsset, error) {
	var asset domain.ImageAsset
	err := c.post(ctx, server.RouteEdit, editBody{
		Prompt:      req.Prompt,
		ImageBase64: req.SourceImage.Base64,
		MimeType:    req.SourceImage.MimeType,
		AspectRatio: req.AspectRatio,
	}, &asset)
	return asset, err
}

// ExpandPrompt は /api/think を呼び出し、idea だけを返します。
func (c *Client) ExpandPrompt(ctx context.Context, req domain.ThinkRequest) (string, error) {
	var out struct {
		Idea string `json:"idea"`
	}
	if err := c.post(ctx, server.RouteThink, thinkBody{Query: req.Query}, &out); err != nil {
		return "", err
	}
	return out.Idea, nil
}

func (c *Client) post(ctx context.Context, route string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("リクエストのエンコードに失敗しました: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+route, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("リクエストの作成に失敗しました: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s の呼び出しに失敗しました: %w", route, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("レスポンスの読み込みに失敗しました: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp.StatusCode, body)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("レスポンスの解析に失敗しました: %w", err)
	}
	return nil
}

// statusError はボディの message を取り出します。取れなければステータスから文言を作ります。
func statusError(code int, body []byte) error {
	var e struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &e); err != nil || e.Message == "" {
		return &StatusError{Code: code, Message: fmt.Sprintf("request failed with status %d", code)}
	}
	return &StatusError{Code: code, Message: e.Message}
}
