package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shouni/illustration-studio/pkg/domain"
)

func newTestRouter(t *testing.T, ill domain.Illustrator) http.Handler {
	t.Helper()
	s, err := New(ill)
	require.NoError(t, err)
	return NewRouter(s, RouterConfig{})
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

var validBodies = map[string]map[string]any{
	RouteGenerate: {"prompt": "a girl in a garden", "aspectRatio": "1:1", "model": "imagen-4.0-generate-001", "resolution": "2k"},
	RouteEdit:     {"prompt": "add a hat", "imageBase64": "QUJD", "mimeType": "image/png", "aspectRatio": "3:4"},
	RouteThink:    {"query": "summer festival"},
}

func TestNew_RequiresIllustrator(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)
}

func TestHandlers_MethodNotAllowed(t *testing.T) {
	h := newTestRouter(t, &stubIllustrator{})

	for route := range validBodies {
		for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete, http.MethodPatch} {
			t.Run(route+" "+method, func(t *testing.T) {
				rec := do(t, h, method, route, "")

				assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
				assert.Equal(t, http.MethodPost, rec.Header().Get("Allow"))
				assert.Equal(t, "Only POST requests are allowed", decodeBody(t, rec)["message"])
			})
		}
	}
}

func TestHandlers_MissingField(t *testing.T) {
	stub := &stubIllustrator{}
	h := newTestRouter(t, stub)

	for route, body := range validBodies {
		for field := range body {
			t.Run(fmt.Sprintf("%s without %s", route, field), func(t *testing.T) {
				partial := map[string]any{}
				for k, v := range body {
					if k != field {
						partial[k] = v
					}
				}
				raw, _ := json.Marshal(partial)

				rec := do(t, h, http.MethodPost, route, string(raw))

				assert.Equal(t, http.StatusBadRequest, rec.Code)
				msg, _ := decodeBody(t, rec)["message"].(string)
				assert.NotEmpty(t, msg)
				assert.Contains(t, msg, field)
			})
		}
	}
	assert.Zero(t, stub.calls, "検証に失敗したらプロバイダは呼ばれないのだ")
}

func TestHandlers_EmptyStringCountsAsMissing(t *testing.T) {
	h := newTestRouter(t, &stubIllustrator{})
	rec := do(t, h, http.MethodPost, RouteThink, `{"query": ""}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Missing required parameter: query", decodeBody(t, rec)["message"])
}

func TestHandlers_InvalidEnum(t *testing.T) {
	h := newTestRouter(t, &stubIllustrator{})
	rec := do(t, h, http.MethodPost, RouteGenerate,
		`{"prompt":"x","aspectRatio":"2:1","model":"imagen-4.0-generate-001","resolution":"standard"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid parameter value: aspectRatio", decodeBody(t, rec)["message"])
}

func TestHandlers_InvalidJSON(t *testing.T) {
	h := newTestRouter(t, &stubIllustrator{})
	rec := do(t, h, http.MethodPost, RouteGenerate, `{"prompt":`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid JSON body", decodeBody(t, rec)["message"])
}

func TestGenerate_Success(t *testing.T) {
	var got domain.GenerateRequest
	stub := &stubIllustrator{
		generateFunc: func(ctx context.Context, req domain.GenerateRequest) (domain.ImageAsset, error) {
			got = req
			return domain.ImageAsset{Base64: "<stub>", MimeType: "image/jpeg"}, nil
		},
	}
	h := newTestRouter(t, stub)

	raw, _ := json.Marshal(validBodies[RouteGenerate])
	rec := do(t, h, http.MethodPost, RouteGenerate, string(raw))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"base64":"<stub>","mimeType":"image/jpeg"}`, rec.Body.String())
	assert.Equal(t, domain.GenerateRequest{
		Prompt:      "a girl in a garden",
		AspectRatio: domain.AspectSquare,
		Model:       domain.ModelImagen,
		Resolution:  domain.Resolution2K,
	}, got)
}

func TestEdit_Success(t *testing.T) {
	var got domain.EditRequest
	stub := &stubIllustrator{
		editFunc: func(ctx context.Context, req domain.EditRequest) (domain.ImageAsset, error) {
			got = req
			return domain.ImageAsset{Base64: "<edited>", MimeType: "image/png"}, nil
		},
	}
	h := newTestRouter(t, stub)

	raw, _ := json.Marshal(validBodies[RouteEdit])
	rec := do(t, h, http.MethodPost, RouteEdit, string(raw))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"base64":"<edited>","mimeType":"image/png"}`, rec.Body.String())
	assert.Equal(t, "add a hat", got.Prompt)
	assert.Equal(t, domain.ImageAsset{Base64: "QUJD", MimeType: "image/png"}, got.SourceImage)
	assert.Equal(t, domain.AspectPortrait, got.AspectRatio)
}

func TestEdit_UnpaddedBase64(t *testing.T) {
	var decoded []byte
	stub := &stubIllustrator{
		editFunc: func(ctx context.Context, req domain.EditRequest) (domain.ImageAsset, error) {
			data, err := req.SourceImage.Bytes()
			if err != nil {
				return domain.ImageAsset{}, err
			}
			decoded = data
			return domain.ImageAsset{Base64: "<edited>", MimeType: "image/png"}, nil
		},
	}
	h := newTestRouter(t, stub)

	rec := do(t, h, http.MethodPost, RouteEdit,
		`{"prompt":"add a hat","imageBase64":"QUJDRA","mimeType":"image/png","aspectRatio":"1:1"}`)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, []byte("ABCD"), decoded)
}

func TestThink_Success(t *testing.T) {
	h := newTestRouter(t, &stubIllustrator{})

	rec := do(t, h, http.MethodPost, RouteThink, `{"query":"summer festival"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"idea":"masterpiece, best quality"}`, rec.Body.String())
}

func TestHandlers_ProviderFailure(t *testing.T) {
	t.Run("プロバイダのメッセージが500で返るのだ", func(t *testing.T) {
		stub := &stubIllustrator{
			generateFunc: func(ctx context.Context, req domain.GenerateRequest) (domain.ImageAsset, error) {
				return domain.ImageAsset{}, fmt.Errorf("Imagen画像生成エラー: %w", domain.ErrGenerationFailed)
			},
		}
		h := newTestRouter(t, stub)
		raw, _ := json.Marshal(validBodies[RouteGenerate])

		rec := do(t, h, http.MethodPost, RouteGenerate, string(raw))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "Imagen画像生成エラー: image generation failed", decodeBody(t, rec)["message"])
	})

	t.Run("空のメッセージは既定の文言になるのだ", func(t *testing.T) {
		stub := &stubIllustrator{
			expandFunc: func(ctx context.Context, req domain.ThinkRequest) (string, error) {
				return "", errors.New("")
			},
		}
		h := newTestRouter(t, stub)

		rec := do(t, h, http.MethodPost, RouteThink, `{"query":"x"}`)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, fallbackErrorMessage, decodeBody(t, rec)["message"])
	})

	t.Run("入力起因の失敗は400なのだ", func(t *testing.T) {
		stub := &stubIllustrator{
			editFunc: func(ctx context.Context, req domain.EditRequest) (domain.ImageAsset, error) {
				return domain.ImageAsset{}, fmt.Errorf("%w: bad base64", domain.ErrInvalidRequest)
			},
		}
		h := newTestRouter(t, stub)
		raw, _ := json.Marshal(validBodies[RouteEdit])

		rec := do(t, h, http.MethodPost, RouteEdit, string(raw))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHealth(t *testing.T) {
	h := newTestRouter(t, &stubIllustrator{})
	rec := do(t, h, http.MethodGet, RouteHealth, "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
