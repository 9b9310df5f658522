package generator

import (
	"context"
	"net/http"
	"os"
)

// LLMClient 抽象大模型客户端，便于替换/Mock。
type LLMClient interface {
	Complete(ctx context.Context, req CompletionRequest) (Completion, error)
}

// CompletionRequest is one chat-completion call. The credential travels with
// the call so clients never look it up themselves.
type CompletionRequest struct {
	Stage       Stage
	APIKey      string
	Prompt      Prompt
	MaxTokens   int64
	Temperature float64
}

// Completion is the first choice of a chat completion plus usage.
type Completion struct {
	Content     string
	TotalTokens int64
}

// LLMSettings 提供给具体实现的基础配置。
type LLMSettings struct {
	Provider   string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
}

// CredentialSource resolves the model credential at call time.
type CredentialSource interface {
	Credential() (string, error)
}

// EnvCredential reads the named environment variable on every call.
type EnvCredential string

func (e EnvCredential) Credential() (string, error) {
	v := os.Getenv(string(e))
	if v == "" {
		return "", &ConfigurationError{Key: string(e)}
	}
	return v, nil
}

// StaticCredential is a fixed key, mostly for tests and the offline mock.
type StaticCredential string

func (s StaticCredential) Credential() (string, error) {
	if s == "" {
		return "", &ConfigurationError{Key: "api key"}
	}
	return string(s), nil
}
