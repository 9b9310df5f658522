package generator

import (
	"context"
	"errors"
	"strings"
	"testing"
)

const minimalDoc = "<!DOCTYPE html>\n<html>\n<head><title>t</title></head>\n<body><h1>hi</h1></body>\n</html>"

func newTestAgent(t *testing.T, llm LLMClient, opts ...AgentOption) *Agent {
	t.Helper()
	opts = append([]AgentOption{WithRunIDFunc(func() string { return "run-1" })}, opts...)
	a, err := NewAgent(llm, StaticCredential("test-key"), opts...)
	if err != nil {
		t.Fatalf("NewAgent: %v", err)
	}
	return a
}

func TestGenerateRejectsMissingInput(t *testing.T) {
	llm := &ScriptedLLM{}
	a := newTestAgent(t, llm)

	res, err := a.Generate(context.Background(), Request{Prompt: "   "})
	if !IsValidation(err) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(llm.Calls()) != 0 {
		t.Errorf("expected no model calls, got %d", len(llm.Calls()))
	}
	if res.RunID != "run-1" {
		t.Errorf("expected run id on error result, got %q", res.RunID)
	}
	msgs := res.Trace.Messages()
	if msgs[len(msgs)-1] != "validation failed: missing prompt and image" {
		t.Errorf("unexpected trace: %v", msgs)
	}
}

func TestGenerateMissingCredential(t *testing.T) {
	t.Setenv("LLAMABLE_TEST_KEY", "")
	llm := &ScriptedLLM{}
	a, err := NewAgent(llm, EnvCredential("LLAMABLE_TEST_KEY"))
	if err != nil {
		t.Fatalf("NewAgent: %v", err)
	}

	res, err := a.Generate(context.Background(), Request{Prompt: "a site"})
	if !IsConfiguration(err) {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}
	if err.Error() != "LLAMABLE_TEST_KEY not configured" {
		t.Errorf("unexpected message %q", err.Error())
	}
	if len(llm.Calls()) != 0 {
		t.Errorf("expected no model calls, got %d", len(llm.Calls()))
	}
	if got := res.Trace.Messages(); got[len(got)-1] != "configuration error: missing LLAMABLE_TEST_KEY" {
		t.Errorf("unexpected trace: %v", got)
	}
}

func TestGenerateSiteRequestEndToEnd(t *testing.T) {
	llm := &ScriptedLLM{
		Enhance:  []Reply{{Content: `{"enhanced_prompt": "Dark streaming homepage with hero and rows", "images": [], "videos": [], "notes": ""}`}},
		Generate: []Reply{{Content: "```html\n" + minimalDoc + "\n```", Tokens: 1200}},
	}
	a := newTestAgent(t, llm)

	res, err := a.Generate(context.Background(), Request{Prompt: "Create a Netflix website clone"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !res.IsSite {
		t.Error("expected site classification")
	}
	for _, want := range []string{"<!DOCTYPE html>", "<html", "<head>", "<body>"} {
		if !strings.Contains(res.Artifact, want) {
			t.Errorf("artifact missing %q", want)
		}
	}
	if strings.Contains(res.Artifact, "```") {
		t.Error("artifact still contains fence markers")
	}
	if llm.CallCount(StageEnhance) != 1 || llm.CallCount(StageGenerate) != 1 {
		t.Errorf("expected one call per stage, got %v", llm.Calls())
	}

	gen := llm.Calls()[1]
	if !strings.Contains(gen.Prompt.User, "Dark streaming homepage") {
		t.Errorf("expected enhanced prompt in generation call, got %q", gen.Prompt.User)
	}
	if !strings.Contains(gen.Prompt.System, "IMAGE REQUIREMENTS") {
		t.Error("expected site template for site request")
	}
	if gen.APIKey != "test-key" || gen.MaxTokens != 50000 || gen.Temperature != 0.75 {
		t.Errorf("unexpected generation params: %+v", gen)
	}
	enh := llm.Calls()[0]
	if enh.MaxTokens != 1500 || enh.Temperature != 0.7 {
		t.Errorf("unexpected enhancer params: %+v", enh)
	}

	want := "Completed generation: enhancer used, image not provided, tokens 1200, attempts 1"
	if res.Summary != want {
		t.Errorf("summary: got %q, want %q", res.Summary, want)
	}
	steps := res.Trace.Messages()
	if steps[0] != "received request" || steps[len(steps)-1] != "finished; returning response" {
		t.Errorf("unexpected trace: %v", steps)
	}
}

func TestGenerateRetryBound(t *testing.T) {
	llm := &ScriptedLLM{
		Generate: []Reply{
			{Content: "<div>first</div>"},
			{Content: "<div>second</div>"},
			{Content: "<div>third</div>"},
		},
	}
	a := newTestAgent(t, llm)

	res, err := a.Generate(context.Background(), Request{Prompt: "make a website"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if n := llm.CallCount(StageGenerate); n != 3 {
		t.Fatalf("expected 3 generation attempts, got %d", n)
	}
	if res.Artifact != "<div>third</div>" {
		t.Errorf("expected last payload, got %q", res.Artifact)
	}
	if res.Complete || res.Attempts != 3 {
		t.Errorf("unexpected result: complete=%v attempts=%d", res.Complete, res.Attempts)
	}

	calls := llm.Calls()
	var gens []CompletionRequest
	for _, c := range calls {
		if c.Stage == StageGenerate {
			gens = append(gens, c)
		}
	}
	if strings.Contains(gens[0].Prompt.User, "must include complete HTML structure") {
		t.Error("first attempt should not carry the corrective instruction")
	}
	for _, g := range gens[1:] {
		if !strings.Contains(g.Prompt.User, "must include complete HTML structure") {
			t.Errorf("retry missing corrective instruction: %q", g.Prompt.User)
		}
	}
}

func TestGenerateRetryStopsOnValidDocument(t *testing.T) {
	llm := &ScriptedLLM{
		Generate: []Reply{{Content: "<div>partial</div>", Tokens: 10}, {Content: minimalDoc, Tokens: 20}},
	}
	a := newTestAgent(t, llm)

	res, err := a.Generate(context.Background(), Request{Prompt: "portfolio site"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if llm.CallCount(StageGenerate) != 2 {
		t.Errorf("expected 2 attempts, got %d", llm.CallCount(StageGenerate))
	}
	if !res.Complete || res.Artifact != minimalDoc {
		t.Errorf("expected complete document, got %q", res.Artifact)
	}
	if res.Tokens != 30 {
		t.Errorf("expected tokens summed across attempts, got %d", res.Tokens)
	}
}

func TestGenerateComponentRequestSkipsValidation(t *testing.T) {
	llm := &ScriptedLLM{Generate: []Reply{{Content: "<button>Buy</button>"}}}
	a := newTestAgent(t, llm)

	res, err := a.Generate(context.Background(), Request{Prompt: "a pricing card component"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if res.IsSite {
		t.Error("expected component classification")
	}
	if llm.CallCount(StageGenerate) != 1 {
		t.Errorf("expected a single attempt, got %d", llm.CallCount(StageGenerate))
	}
	if res.Artifact != "<button>Buy</button>" {
		t.Errorf("unexpected artifact %q", res.Artifact)
	}
	if !strings.Contains(llm.Calls()[1].Prompt.System, "COMPONENT REQUIREMENTS") {
		t.Error("expected component template")
	}
}

func TestGenerateEnhancerFailureIsAbsorbed(t *testing.T) {
	tests := []struct {
		name  string
		reply Reply
		trace string
	}{
		{"transport error", Reply{Err: &TransportError{Stage: StageEnhance, StatusCode: 500}}, "prompt enhancer failed"},
		{"unparseable", Reply{Content: "I think you want a nice site."}, "prompt enhancer returned no usable brief"},
		{"empty enhanced prompt", Reply{Content: `{"enhanced_prompt": ""}`}, "prompt enhancer returned no usable brief"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			llm := &ScriptedLLM{
				Enhance:  []Reply{tt.reply},
				Generate: []Reply{{Content: minimalDoc}},
			}
			a := newTestAgent(t, llm)

			res, err := a.Generate(context.Background(), Request{Prompt: "Create a bakery website"})
			if err != nil {
				t.Fatalf("Generate: %v", err)
			}
			if res.EnhancerUsed || res.Brief != nil {
				t.Error("expected enhancer to be skipped")
			}
			gen := llm.Calls()[1]
			if !strings.HasPrefix(gen.Prompt.User, "Create a bakery website") {
				t.Errorf("expected raw prompt fallback, got %q", gen.Prompt.User)
			}
			found := false
			for _, m := range res.Trace.Messages() {
				if m == tt.trace {
					found = true
				}
			}
			if !found {
				t.Errorf("trace missing %q: %v", tt.trace, res.Trace.Messages())
			}
			if !strings.Contains(res.Summary, "enhancer skipped") {
				t.Errorf("unexpected summary %q", res.Summary)
			}
		})
	}
}

func TestGenerateTransportErrorPropagates(t *testing.T) {
	upstream := &TransportError{Stage: StageGenerate, StatusCode: 503}
	llm := &ScriptedLLM{Generate: []Reply{{Err: upstream}}}
	a := newTestAgent(t, llm)

	res, err := a.Generate(context.Background(), Request{Prompt: "a website"})
	if !IsTransport(err) {
		t.Fatalf("expected TransportError, got %v", err)
	}
	if err.Error() != "model API error: 503" {
		t.Errorf("unexpected message %q", err.Error())
	}
	steps := res.Trace.Messages()
	if steps[len(steps)-1] != "HTML generation failed: 503" {
		t.Errorf("unexpected trace: %v", steps)
	}
}

func TestGenerateFailedRetryKeepsPayload(t *testing.T) {
	llm := &ScriptedLLM{
		Generate: []Reply{{Content: "<div>partial</div>"}, {Err: errors.New("connection reset")}},
	}
	a := newTestAgent(t, llm)

	res, err := a.Generate(context.Background(), Request{Prompt: "landing site"})
	if err != nil {
		t.Fatalf("expected best-effort result, got %v", err)
	}
	if res.Artifact != "<div>partial</div>" {
		t.Errorf("expected previous payload, got %q", res.Artifact)
	}
}

func TestGenerateWithPriorArtifact(t *testing.T) {
	llm := &ScriptedLLM{
		Enhance:  []Reply{{Err: errors.New("offline")}},
		Generate: []Reply{{Content: minimalDoc}},
	}
	a := newTestAgent(t, llm)

	res, err := a.Generate(context.Background(), Request{Prompt: "add a contact form", PriorArtifact: minimalDoc})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	gen := llm.Calls()[1].Prompt.User
	if !strings.Contains(gen, "add a contact form") || !strings.Contains(gen, minimalDoc) {
		t.Errorf("expected instruction and prior document in prompt, got %q", gen)
	}
	if !IsCompleteDocument(res.Artifact) {
		t.Error("expected returned artifact to pass structural validation")
	}
}

func TestGenerateImageAttachedToBothStages(t *testing.T) {
	llm := &ScriptedLLM{Generate: []Reply{{Content: minimalDoc}}}
	a := newTestAgent(t, llm)

	res, err := a.Generate(context.Background(), Request{Image: "https://example.com/shot.png"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	for _, c := range llm.Calls() {
		if c.Prompt.Image != "https://example.com/shot.png" {
			t.Errorf("stage %s missing image", c.Stage)
		}
	}
	if !strings.HasPrefix(llm.Calls()[0].Prompt.User, defaultImagePrompt) {
		t.Errorf("unexpected enhancer text %q", llm.Calls()[0].Prompt.User)
	}
	if !strings.Contains(res.Summary, "image provided") || !strings.Contains(res.Summary, "tokens unknown") {
		t.Errorf("unexpected summary %q", res.Summary)
	}
}

func TestGenerateImageOnlyIsSiteRequest(t *testing.T) {
	llm := &ScriptedLLM{Generate: []Reply{{Content: "<div>partial</div>"}, {Content: minimalDoc}}}
	a := newTestAgent(t, llm)

	res, err := a.Generate(context.Background(), Request{Image: "https://example.com/shot.png"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !res.IsSite {
		t.Error("expected an image-only request to be classified as a site")
	}
	if llm.CallCount(StageGenerate) != 2 || res.Attempts != 2 {
		t.Errorf("expected a structural retry, got %d calls", llm.CallCount(StageGenerate))
	}
	sys := llm.Calls()[1].Prompt.System
	if !strings.Contains(sys, "IMAGE REQUIREMENTS") || strings.Contains(sys, "COMPONENT REQUIREMENTS") {
		t.Error("expected the site template for a screenshot request")
	}
	if res.Artifact != minimalDoc {
		t.Errorf("unexpected artifact %q", res.Artifact)
	}
}

func TestGenerateEditOfCompleteDocumentKeepsStructure(t *testing.T) {
	prior := "<!DOCTYPE html>\n<html>\n<head><title>Shop</title></head>\n<body><h1>Shop</h1></body>\n</html>"
	llm := &ScriptedLLM{
		Enhance:  []Reply{{Err: errors.New("offline")}},
		Generate: []Reply{{Content: "<form></form>"}, {Content: minimalDoc}},
	}
	a := newTestAgent(t, llm)

	res, err := a.Generate(context.Background(), Request{Prompt: "add a contact form", PriorArtifact: prior})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !res.IsSite || !res.Complete {
		t.Errorf("IsSite=%v Complete=%v, want both true", res.IsSite, res.Complete)
	}
	if res.Artifact != minimalDoc {
		t.Errorf("fragment must not replace the prior document, got %q", res.Artifact)
	}
	calls := llm.Calls()
	first, retry := calls[1].Prompt, calls[2].Prompt
	if strings.Contains(first.System, "COMPONENT REQUIREMENTS") {
		t.Error("expected the site template when editing a complete document")
	}
	if !strings.Contains(first.User, prior) || !strings.Contains(retry.User, structureCorrection) {
		t.Error("expected prior document in the edit and the corrective text on retry")
	}
}

func TestGenerateComponentEditOfFragmentStaysComponent(t *testing.T) {
	llm := &ScriptedLLM{Generate: []Reply{{Content: "<button>Buy now</button>"}}}
	a := newTestAgent(t, llm)

	res, err := a.Generate(context.Background(), Request{Prompt: "make the label bolder", PriorArtifact: "<button>Buy</button>"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if res.IsSite || llm.CallCount(StageGenerate) != 1 {
		t.Errorf("IsSite=%v calls=%d, want component with one call", res.IsSite, llm.CallCount(StageGenerate))
	}
}
