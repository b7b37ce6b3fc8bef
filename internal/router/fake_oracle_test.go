// ABOUTME: Scripted oracle used by router tests
// ABOUTME: Answers per stage and records which stages were consulted
package router

import (
	"context"
	"strings"
	"sync"
)

type fakeReply struct {
	text string
	err  error
}

type fakeOracle struct {
	mu      sync.Mutex
	replies map[string]fakeReply
	calls   []string
	block   bool
}

func newFakeOracle() *fakeOracle {
	return &fakeOracle{replies: map[string]fakeReply{}}
}

func (f *fakeOracle) on(stage, text string) *fakeOracle {
	f.replies[stage] = fakeReply{text: text}
	return f
}

func (f *fakeOracle) fail(stage string, err error) *fakeOracle {
	f.replies[stage] = fakeReply{err: err}
	return f
}

func stageOf(prompt string) string {
	switch {
	case strings.Contains(prompt, "is_health_related"):
		return StageScope
	case strings.Contains(prompt, "can_handle"):
		return StageActionability
	case strings.Contains(prompt, "explicit_symptoms"):
		return "symptoms"
	case strings.Contains(prompt, `"intent"`):
		return StageIntent
	}
	return "unknown"
}

func (f *fakeOracle) Complete(ctx context.Context, prompt string) (string, error) {
	stage := stageOf(prompt)

	f.mu.Lock()
	f.calls = append(f.calls, stage)
	reply, ok := f.replies[stage]
	block := f.block
	f.mu.Unlock()

	if block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	if !ok {
		return "", nil
	}
	return reply.text, reply.err
}

func (f *fakeOracle) Name() string { return "fake" }

func (f *fakeOracle) called() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}
