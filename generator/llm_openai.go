package generator

import (
	"context"
	"errors"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAILLM implements LLMClient using the official openai-go SDK (chat completions)
// against any OpenAI-compatible endpoint.
type OpenAILLM struct {
	Model string
	Opts  []option.RequestOption
}

func NewOpenAILLMFromConfig(cfg *LLMSettings) (*OpenAILLM, error) {
	if cfg == nil {
		return nil, errors.New("llm config is nil")
	}
	if cfg.Model == "" {
		return nil, errors.New("llm model is required")
	}
	// Network-level retries are left to the caller; the SDK default would retry twice.
	opts := []option.RequestOption{option.WithMaxRetries(0)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}
	return &OpenAILLM{Model: cfg.Model, Opts: opts}, nil
}

func (o *OpenAILLM) Complete(ctx context.Context, req CompletionRequest) (Completion, error) {
	if req.APIKey == "" {
		return Completion{}, &ConfigurationError{Key: "api key"}
	}
	opts := make([]option.RequestOption, 0, len(o.Opts)+1)
	opts = append(opts, o.Opts...)
	opts = append(opts, option.WithAPIKey(req.APIKey))
	client := openai.NewClient(opts...)

	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(o.Model),
		Messages:    buildMessages(req.Prompt),
		Temperature: openai.Float(req.Temperature),
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(req.MaxTokens)
	}

	resp, err := client.Chat.Completions.New(ctx, params)
	if err != nil {
		return Completion{}, transportError(req.Stage, err)
	}
	out := Completion{TotalTokens: resp.Usage.TotalTokens}
	if len(resp.Choices) > 0 {
		out.Content = resp.Choices[0].Message.Content
	}
	return out, nil
}

// buildMessages emits system then user; the user turn becomes a multi-part
// array when an image reference is attached.
func buildMessages(p Prompt) []openai.ChatCompletionMessageParamUnion {
	msgs := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(p.System),
	}
	if p.Image == "" {
		return append(msgs, openai.UserMessage(p.User))
	}
	parts := []openai.ChatCompletionContentPartUnionParam{
		openai.TextContentPart(p.User),
		openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{URL: p.Image}),
	}
	return append(msgs, openai.UserMessage(parts))
}

func transportError(stage Stage, err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return &TransportError{Stage: stage, StatusCode: apiErr.StatusCode, Err: err}
	}
	return &TransportError{Stage: stage, Err: err}
}
