package generator

import (
	"sync"
	"time"
)

// Step 是一次流水线检查点。
type Step struct {
	TS      time.Time `json:"ts"`
	Message string    `json:"message"`
}

// Trace is the append-only RunTrace of one generation run.
type Trace struct {
	RunID string

	mu    sync.Mutex
	steps []Step
	now   func() time.Time
}

func NewTrace(runID string) *Trace {
	return &Trace{RunID: runID, now: time.Now}
}

// Push records a checkpoint.
func (t *Trace) Push(msg string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.steps = append(t.steps, Step{TS: t.now().UTC(), Message: msg})
}

// Steps returns a copy of the recorded checkpoints.
func (t *Trace) Steps() []Step {
	if t == nil {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Step, len(t.steps))
	copy(out, t.steps)
	return out
}

// Messages 仅返回消息文本，便于测试与 CLI 输出。
func (t *Trace) Messages() []string {
	steps := t.Steps()
	out := make([]string, 0, len(steps))
	for _, s := range steps {
		out = append(out, s.Message)
	}
	return out
}
