package studio

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/shouni/illustration-studio/pkg/domain"
)

// stubIllustrator は呼び出し回数と最後の要求を記録するスタブなのだ。
type stubIllustrator struct {
	generateCalls atomic.Int32
	editCalls     atomic.Int32
	thinkCalls    atomic.Int32

	mu           sync.Mutex
	lastGenerate domain.GenerateRequest
	lastEdit     domain.EditRequest
	prompts      []string

	// echoPrompt なら生成画像のペイロードにプロンプトをそのまま使うのだ
	echoPrompt bool

	// release が nil でなければ Generate は閉じられるまで待つのだ
	release chan struct{}
	started chan struct{}

	err  error
	idea string
}

func (s *stubIllustrator) Generate(ctx context.Context, req domain.GenerateRequest) (domain.ImageAsset, error) {
	s.generateCalls.Add(1)
	s.mu.Lock()
	s.lastGenerate = req
	s.prompts = append(s.prompts, req.Prompt)
	s.mu.Unlock()
	if s.started != nil {
		s.started <- struct{}{}
	}
	if s.release != nil {
		<-s.release
	}
	if s.err != nil {
		return domain.ImageAsset{}, s.err
	}
	if s.echoPrompt {
		return domain.ImageAsset{Base64: req.Prompt, MimeType: "image/jpeg"}, nil
	}
	return domain.ImageAsset{Base64: "<stub>", MimeType: "image/jpeg"}, nil
}

func (s *stubIllustrator) Edit(ctx context.Context, req domain.EditRequest) (domain.ImageAsset, error) {
	s.editCalls.Add(1)
	s.mu.Lock()
	s.lastEdit = req
	s.mu.Unlock()
	if s.err != nil {
		return domain.ImageAsset{}, s.err
	}
	return domain.ImageAsset{Base64: "<edited>", MimeType: "image/png"}, nil
}

func (s *stubIllustrator) ExpandPrompt(ctx context.Context, req domain.ThinkRequest) (string, error) {
	s.thinkCalls.Add(1)
	if s.err != nil {
		return "", s.err
	}
	return s.idea, nil
}
