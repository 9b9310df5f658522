package generator

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrBusy is returned when a session already has a generation in flight.
var ErrBusy = errors.New("a generation is already in progress")

// Session 是 UI 侧的调用方：串联上一轮产物作为下一轮的 PriorArtifact。
type Session struct {
	ID       string
	Artifact string
	History  []Turn

	// OnArtifactReady is invoked with every new artifact.
	OnArtifactReady func(html string)

	agent      *Agent
	mu         sync.Mutex
	generating bool
}

// NewSession 创建 session，尚未生成任何产物。
func NewSession(id string, agent *Agent) *Session {
	return &Session{ID: id, agent: agent}
}

// Submit sends text (and an optional image URL) through the pipeline with the
// current artifact as context, and returns the human-readable summary.
func (s *Session) Submit(ctx context.Context, text, image string) (string, error) {
	s.mu.Lock()
	if s.generating {
		s.mu.Unlock()
		return "", ErrBusy
	}
	s.generating = true
	prior := s.Artifact
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.generating = false
		s.mu.Unlock()
	}()

	res, err := s.agent.Generate(ctx, Request{Prompt: text, Image: image, PriorArtifact: prior})
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	s.Artifact = res.Artifact
	s.History = append(s.History, Turn{
		Prompt:    text,
		Image:     image,
		RunID:     res.RunID,
		Summary:   res.Summary,
		CreatedAt: time.Now(),
	})
	cb := s.OnArtifactReady
	s.mu.Unlock()

	if cb != nil {
		cb(res.Artifact)
	}
	return res.Summary, nil
}

// Reset 丢弃当前产物，下一次提交将从零生成。
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Artifact = ""
	s.History = nil
}
