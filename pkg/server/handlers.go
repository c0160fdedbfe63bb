package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/shouni/illustration-studio/pkg/domain"
)

type generateRequest struct {
	Prompt      string             `json:"prompt" validate:"required"`
	AspectRatio domain.AspectRatio `json:"aspectRatio" validate:"required,oneof=1:1 3:4 4:3 9:16 16:9"`
	Model       domain.Model       `json:"model" validate:"required,oneof=imagen-4.0-generate-001 gemini-2.5-flash-image"`
	Resolution  domain.Resolution  `json:"resolution" validate:"required,oneof=standard 1k 2k"`
}

type editRequest struct {
	Prompt      string             `json:"prompt" validate:"required"`
	ImageBase64 string             `json:"imageBase64" validate:"required"`
	MimeType    string             `json:"mimeType" validate:"required"`
	AspectRatio domain.AspectRatio `json:"aspectRatio" validate:"required,oneof=1:1 3:4 4:3 9:16 16:9"`
}

type thinkRequest struct {
	Query string `json:"query" validate:"required"`
}

type thinkResponse struct {
	Idea string `json:"idea"`
}

// Generate は POST /api/generate を処理します。成功時のボディは {base64, mimeType} です。
func (s *Server) Generate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if !s.decode(w, r, &req, "Missing required parameters") {
		return
	}

	asset, err := s.illustrator.Generate(r.Context(), domain.GenerateRequest{
		Prompt:      req.Prompt,
		AspectRatio: req.AspectRatio,
		Model:       req.Model,
		Resolution:  req.Resolution,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, asset)
}

// Edit は POST /api/edit を処理します。成功時のボディは {base64, mimeType} です。
func (s *Server) Edit(w http.ResponseWriter, r *http.Request) {
	var req editRequest
	if !s.decode(w, r, &req, "Missing required parameters") {
		return
	}

	asset, err := s.illustrator.Edit(r.Context(), domain.EditRequest{
		Prompt:      req.Prompt,
		SourceImage: domain.ImageAsset{Base64: req.ImageBase64, MimeType: req.MimeType},
		AspectRatio: req.AspectRatio,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, asset)
}

// Think は POST /api/think を処理します。成功時のボディは {idea} です。
func (s *Server) Think(w http.ResponseWriter, r *http.Request) {
	var req thinkRequest
	if !s.decode(w, r, &req, "Missing required parameter") {
		return
	}

	idea, err := s.illustrator.ExpandPrompt(r.Context(), domain.ThinkRequest{Query: req.Query})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, thinkResponse{Idea: idea})
}

// Health は GET /healthz を処理します。
func (s *Server) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// decode はボディを読み込んで検証します。失敗時は 400 を書き込み false を返します。
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any, missingMsg string) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	if err := s.validate.Struct(dst); err != nil {
		writeError(w, http.StatusBadRequest, validationError(err, missingMsg).Error())
		return false
	}
	return true
}

// validationError は validator のエラーを欠落項目と不正値に分けて ValidationError にまとめます。
func validationError(err error, missingMsg string) *domain.ValidationError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &domain.ValidationError{Message: err.Error()}
	}

	var missing, invalid []string
	for _, fe := range verrs {
		if fe.Tag() == "required" {
			missing = append(missing, fe.Field())
		} else {
			invalid = append(invalid, fe.Field())
		}
	}
	if len(missing) > 0 {
		return &domain.ValidationError{Fields: missing, Message: missingMsg}
	}
	return &domain.ValidationError{Fields: invalid, Message: "Invalid parameter value"}
}
