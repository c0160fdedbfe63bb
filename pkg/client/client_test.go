package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shouni/illustration-studio/pkg/domain"
	"github.com/shouni/illustration-studio/pkg/server"
)

type stubIllustrator struct {
	lastGenerate domain.GenerateRequest
	lastEdit     domain.EditRequest
	lastThink    domain.ThinkRequest
	err          error
}

func (s *stubIllustrator) Generate(_ context.Context, req domain.GenerateRequest) (domain.ImageAsset, error) {
	s.lastGenerate = req
	if s.err != nil {
		return domain.ImageAsset{}, s.err
	}
	return domain.ImageAsset{Base64: "<stub>", MimeType: "image/jpeg"}, nil
}

func (s *stubIllustrator) Edit(_ context.Context, req domain.EditRequest) (domain.ImageAsset, error) {
	s.lastEdit = req
	if s.err != nil {
		return domain.ImageAsset{}, s.err
	}
	return domain.ImageAsset{Base64: "<edited>", MimeType: "image/png"}, nil
}

func (s *stubIllustrator) ExpandPrompt(_ context.Context, req domain.ThinkRequest) (string, error) {
	s.lastThink = req
	if s.err != nil {
		return "", s.err
	}
	return "expanded idea", nil
}

func newTestClient(t *testing.T, stub *stubIllustrator) *Client {
	t.Helper()
	s, err := server.New(stub)
	require.NoError(t, err)
	ts := httptest.NewServer(server.NewRouter(s, server.RouterConfig{}))
	t.Cleanup(ts.Close)

	c, err := New(ts.URL+"/", WithHTTPClient(ts.Client()))
	require.NoError(t, err)
	return c
}

func TestNew_RequiresBaseURL(t *testing.T) {
	_, err := New("")
	assert.Error(t, err)
}

func TestNew_NoDeadline(t *testing.T) {
	c, err := New("http://localhost:3000")
	require.NoError(t, err)
	assert.Zero(t, c.httpClient.Timeout, "期限は呼び出し側の ctx に任せるのだ")

	custom := &http.Client{Timeout: time.Minute}
	c, err = New("http://localhost:3000", WithHTTPClient(custom))
	require.NoError(t, err)
	assert.Same(t, custom, c.httpClient)
}

func TestClient_RoundTrip(t *testing.T) {
	stub := &stubIllustrator{}
	c := newTestClient(t, stub)
	ctx := context.Background()

	t.Run("Generate", func(t *testing.T) {
		req := domain.GenerateRequest{
			Prompt:      "a girl in a garden",
			AspectRatio: domain.AspectSquare,
			Model:       domain.ModelImagen,
			Resolution:  domain.Resolution2K,
		}
		asset, err := c.Generate(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, domain.ImageAsset{Base64: "<stub>", MimeType: "image/jpeg"}, asset)
		assert.Equal(t, req, stub.lastGenerate)
	})

	t.Run("Edit", func(t *testing.T) {
		req := domain.EditRequest{
			Prompt:      "add a hat",
			SourceImage: domain.ImageAsset{Base64: "QUJD", MimeType: "image/png"},
			AspectRatio: domain.AspectWide,
		}
		asset, err := c.Edit(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, "<edited>", asset.Base64)
		assert.Equal(t, req, stub.lastEdit)
	})

	t.Run("ExpandPrompt は idea だけを返すのだ", func(t *testing.T) {
		idea, err := c.ExpandPrompt(ctx, domain.ThinkRequest{Query: "summer"})
		require.NoError(t, err)
		assert.Equal(t, "expanded idea", idea)
		assert.Equal(t, "summer", stub.lastThink.Query)
	})
}

func TestClient_ServerMessage(t *testing.T) {
	stub := &stubIllustrator{err: errors.New("Imagen画像生成エラー: quota exceeded")}
	c := newTestClient(t, stub)

	_, err := c.ExpandPrompt(context.Background(), domain.ThinkRequest{Query: "x"})
	require.Error(t, err)

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusInternalServerError, se.Code)
	assert.Equal(t, "Imagen画像生成エラー: quota exceeded", err.Error())
}

func TestClient_ValidationMessage(t *testing.T) {
	c := newTestClient(t, &stubIllustrator{})

	_, err := c.ExpandPrompt(context.Background(), domain.ThinkRequest{})
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusBadRequest, se.Code)
	assert.Equal(t, "Missing required parameter: query", se.Message)
}

func TestClient_FallbackMessage(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>bad gateway</html>"))
	}))
	t.Cleanup(ts.Close)

	c, err := New(ts.URL)
	require.NoError(t, err)

	_, err = c.Generate(context.Background(), domain.GenerateRequest{Prompt: "x"})
	require.Error(t, err)
	assert.Equal(t, "request failed with status 502", err.Error())
}
