package server

import (
	"context"

	"github.com/shouni/illustration-studio/pkg/domain"
)

// stubIllustrator は domain.Illustrator のテスト用スタブなのだ。
type stubIllustrator struct {
	generateFunc func(ctx context.Context, req domain.GenerateRequest) (domain.ImageAsset, error)
	editFunc     func(ctx context.Context, req domain.EditRequest) (domain.ImageAsset, error)
	expandFunc   func(ctx context.Context, req domain.ThinkRequest) (string, error)

	calls int
}

func (s *stubIllustrator) Generate(ctx context.Context, req domain.GenerateRequest) (domain.ImageAsset, error) {
	s.calls++
	if s.generateFunc != nil {
		return s.generateFunc(ctx, req)
	}
	return domain.ImageAsset{Base64: "<stub>", MimeType: "image/jpeg"}, nil
}

func (s *stubIllustrator) Edit(ctx context.Context, req domain.EditRequest) (domain.ImageAsset, error) {
	s.calls++
	if s.editFunc != nil {
		return s.editFunc(ctx, req)
	}
	return domain.ImageAsset{Base64: "<edited>", MimeType: "image/png"}, nil
}

func (s *stubIllustrator) ExpandPrompt(ctx context.Context, req domain.ThinkRequest) (string, error) {
	s.calls++
	if s.expandFunc != nil {
		return s.expandFunc(ctx, req)
	}
	return "masterpiece, best quality", nil
}
