package generator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// StageParams are the sampling parameters of one model call.
type StageParams struct {
	MaxTokens   int64
	Temperature float64
}

// Options 控制两阶段流水线的参数。
type Options struct {
	// MaxAttempts bounds generation calls per request, the first one included.
	MaxAttempts int
	Enhancer    StageParams
	Generator   StageParams
}

func DefaultOptions() Options {
	return Options{
		MaxAttempts: 3,
		Enhancer:    StageParams{MaxTokens: 1500, Temperature: 0.7},
		Generator:   StageParams{MaxTokens: 50000, Temperature: 0.75},
	}
}

// AgentOption customises an Agent.
type AgentOption func(*Agent)

func WithLogger(l *zap.Logger) AgentOption {
	return func(a *Agent) {
		if l != nil {
			a.logger = l
		}
	}
}

func WithClassifier(c Classifier) AgentOption {
	return func(a *Agent) {
		if c != nil {
			a.classifier = c
		}
	}
}

func WithOptions(o Options) AgentOption {
	return func(a *Agent) {
		if o.MaxAttempts < 1 {
			o.MaxAttempts = 1
		}
		a.opts = o
	}
}

// WithRunIDFunc overrides run id generation (uuid by default).
func WithRunIDFunc(f func() string) AgentOption {
	return func(a *Agent) {
		if f != nil {
			a.newRunID = f
		}
	}
}

// Agent 负责把用户请求变成可渲染的 HTML：提示词增强 -> HTML 生成 -> 提取/校验 -> 有界重试。
// It holds no per-request state and is safe for concurrent use.
type Agent struct {
	llm        LLMClient
	creds      CredentialSource
	classifier Classifier
	opts       Options
	logger     *zap.Logger
	newRunID   func() string
}

func NewAgent(llm LLMClient, creds CredentialSource, opts ...AgentOption) (*Agent, error) {
	if llm == nil {
		return nil, errors.New("llm client is required")
	}
	if creds == nil {
		return nil, errors.New("credential source is required")
	}
	a := &Agent{
		llm:        llm,
		creds:      creds,
		classifier: NewKeywordClassifier(nil),
		opts:       DefaultOptions(),
		logger:     zap.NewNop(),
		newRunID:   uuid.NewString,
	}
	for _, o := range opts {
		o(a)
	}
	return a, nil
}

// Generate runs the pipeline for one request. On error the Result still
// carries the run id and the trace recorded so far.
func (a *Agent) Generate(ctx context.Context, req Request) (Result, error) {
	res := Result{RunID: a.newRunID()}
	res.Trace = NewTrace(res.RunID)
	log := a.logger.With(zap.String("run_id", res.RunID))
	step := func(msg string) {
		res.Trace.Push(msg)
		log.Debug(msg)
	}

	step("received request")
	if strings.TrimSpace(req.Prompt) == "" && strings.TrimSpace(req.Image) == "" {
		step("validation failed: missing prompt and image")
		return res, errMissingInput
	}

	apiKey, err := a.creds.Credential()
	if err != nil {
		var cfgErr *ConfigurationError
		if errors.As(err, &cfgErr) {
			step("configuration error: missing " + cfgErr.Key)
		} else {
			step("configuration error")
		}
		return res, err
	}

	res.IsSite = a.isSiteRequest(req)

	source := req.Prompt
	step("starting prompt enhancer")
	if brief, ok := a.enhance(ctx, log, apiKey, req, step); ok {
		res.Brief = &brief
		res.EnhancerUsed = true
		source = brief.EnhancedPrompt
	}
	step("final prompt prepared")

	for attempt := 1; attempt <= a.opts.MaxAttempts; attempt++ {
		res.Attempts = attempt
		if attempt == 1 {
			step("starting HTML generation")
		} else {
			step(fmt.Sprintf("starting HTML generation (attempt %d of %d)", attempt, a.opts.MaxAttempts))
		}

		out, err := a.llm.Complete(ctx, CompletionRequest{
			Stage:       StageGenerate,
			APIKey:      apiKey,
			Prompt:      BuildHTMLPrompt(req, source, res.IsSite, attempt > 1),
			MaxTokens:   a.opts.Generator.MaxTokens,
			Temperature: a.opts.Generator.Temperature,
		})
		if err != nil {
			step("HTML generation failed: " + failureLabel(err))
			if attempt > 1 {
				// A payload already exists; a failed corrective retry degrades to it.
				log.Warn("corrective retry failed, keeping previous payload", zap.Error(err))
				break
			}
			return res, err
		}
		if out.TotalTokens > 0 {
			res.Tokens += out.TotalTokens
			res.TokensKnown = true
		}

		step("HTML generation completed; cleaning response")
		res.Artifact = ExtractCode(out.Content)
		res.Complete = IsCompleteDocument(res.Artifact)
		if !res.IsSite || res.Complete {
			break
		}
		if attempt < a.opts.MaxAttempts {
			step("structural validation failed; retrying")
		} else {
			step("structural validation failed; returning best effort")
			log.Info("returning structurally incomplete document", zap.Int("attempts", attempt))
		}
	}

	step("finished; returning response")
	res.Summary = summarize(res, req)
	return res, nil
}

// isSiteRequest applies the classifier and widens it for the two cases where
// a full document is implied regardless of wording: a screenshot with no text
// and an edit of a document that is already complete.
func (a *Agent) isSiteRequest(req Request) bool {
	if strings.TrimSpace(req.Prompt) == "" && req.HasImage() {
		return true
	}
	if IsCompleteDocument(req.PriorArtifact) {
		return true
	}
	return a.classifier.IsSiteRequest(req.Prompt)
}

// enhance runs stage 1. Every failure is absorbed; ok is false when the raw
// prompt should be used instead.
func (a *Agent) enhance(ctx context.Context, log *zap.Logger, apiKey string, req Request, step func(string)) (Brief, bool) {
	out, err := a.llm.Complete(ctx, CompletionRequest{
		Stage:       StageEnhance,
		APIKey:      apiKey,
		Prompt:      BuildEnhancerPrompt(req),
		MaxTokens:   a.opts.Enhancer.MaxTokens,
		Temperature: a.opts.Enhancer.Temperature,
	})
	if err != nil {
		log.Warn("prompt enhancer failed", zap.Error(err))
		step("prompt enhancer failed")
		return Brief{}, false
	}
	brief, err := ParseBrief(out.Content)
	if err != nil || brief.EnhancedPrompt == "" {
		log.Warn("prompt enhancer returned no usable brief", zap.Error(err))
		step("prompt enhancer returned no usable brief")
		return Brief{}, false
	}
	step("prompt enhancer completed")
	return brief, true
}

func failureLabel(err error) string {
	var te *TransportError
	if errors.As(err, &te) && te.StatusCode > 0 {
		return fmt.Sprintf("%d", te.StatusCode)
	}
	return "network error"
}

func summarize(res Result, req Request) string {
	enhancer := "skipped"
	if res.EnhancerUsed {
		enhancer = "used"
	}
	image := "not provided"
	if req.HasImage() {
		image = "provided"
	}
	tokens := "unknown"
	if res.TokensKnown {
		tokens = fmt.Sprintf("%d", res.Tokens)
	}
	return fmt.Sprintf("Completed generation: enhancer %s, image %s, tokens %s, attempts %d",
		enhancer, image, tokens, res.Attempts)
}
