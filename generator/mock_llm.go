package generator

import (
	"context"
	"encoding/json"
	"html"
	"strings"
	"sync"
)

// MockLLM 一个简单的占位实现，便于本地调试，不调用外部模型。
type MockLLM struct{}

func (m MockLLM) Complete(_ context.Context, req CompletionRequest) (Completion, error) {
	if req.Stage == StageEnhance {
		b, _ := json.Marshal(Brief{
			EnhancedPrompt: firstLine(req.Prompt.User),
			Notes:          "offline mock brief",
		})
		return Completion{Content: string(b)}, nil
	}

	var sb strings.Builder
	sb.WriteString("```html\n<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n<meta charset=\"utf-8\">\n")
	sb.WriteString("<title>Preview</title>\n<style>body{font-family:sans-serif;margin:2rem}</style>\n</head>\n<body>\n")
	sb.WriteString("<nav><a href=\"#about\">About</a> <a href=\"#\">Home</a></nav>\n")
	sb.WriteString("<section id=\"about\"><h1>Mock preview</h1>\n<pre>")
	sb.WriteString(html.EscapeString(req.Prompt.User))
	sb.WriteString("</pre></section>\n<script></script>\n</body>\n</html>\n```")
	return Completion{Content: sb.String()}, nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return strings.TrimSpace(s)
}

// Reply is one canned ScriptedLLM answer.
type Reply struct {
	Content string
	Tokens  int64
	Err     error
}

// ScriptedLLM replays canned replies per stage and records every call.
// When a stage's script runs out the last reply repeats.
type ScriptedLLM struct {
	Enhance  []Reply
	Generate []Reply

	mu    sync.Mutex
	calls []CompletionRequest
}

func (s *ScriptedLLM) Complete(_ context.Context, req CompletionRequest) (Completion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		if c.Stage == req.Stage {
			n++
		}
	}
	s.calls = append(s.calls, req)

	script := s.Generate
	if req.Stage == StageEnhance {
		script = s.Enhance
	}
	if len(script) == 0 {
		return Completion{}, nil
	}
	if n >= len(script) {
		n = len(script) - 1
	}
	r := script[n]
	if r.Err != nil {
		return Completion{}, r.Err
	}
	return Completion{Content: r.Content, TotalTokens: r.Tokens}, nil
}

// Calls returns the recorded requests in order.
func (s *ScriptedLLM) Calls() []CompletionRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]CompletionRequest, len(s.calls))
	copy(out, s.calls)
	return out
}

// CallCount counts recorded calls for one stage.
func (s *ScriptedLLM) CallCount(stage Stage) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		if c.Stage == stage {
			n++
		}
	}
	return n
}
