package generator

import "time"

// Stage identifies which model call a prompt or error belongs to.
type Stage string

const (
	StageEnhance  Stage = "enhance"
	StageGenerate Stage = "generate"
)

// Request 描述一次生成调用的输入，调用期间不可变。
type Request struct {
	Prompt string
	// Image is an optional screenshot/reference URL attached to both stages.
	Image string
	// PriorArtifact 是上一轮生成的完整 HTML，用于增量修改。
	PriorArtifact string
}

func (r Request) HasImage() bool { return r.Image != "" }

// Brief is the structured result of the enhancement stage.
type Brief struct {
	EnhancedPrompt string   `json:"enhanced_prompt"`
	Images         []string `json:"images"`
	Videos         []string `json:"videos"`
	Notes          string   `json:"notes"`
}

// Result 是一次生成的最终产物与可观测信息。
type Result struct {
	RunID    string
	Artifact string
	Summary  string
	Trace    *Trace

	// Brief is nil when the enhancer was skipped or failed.
	Brief        *Brief
	EnhancerUsed bool

	IsSite   bool
	Complete bool
	Attempts int

	Tokens      int64
	TokensKnown bool
}

// Turn 记录会话中的一次提交。
type Turn struct {
	Prompt    string
	Image     string
	RunID     string
	Summary   string
	CreatedAt time.Time
}
