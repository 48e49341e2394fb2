package tui

import (
	"context"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

type jobKind string

const (
	jobKindProbe      jobKind = "probe"
	jobKindLogin      jobKind = "login"
	jobKindLogout     jobKind = "logout"
	jobKindCsrf       jobKind = "csrf"
	jobKindGenerate   jobKind = "generate"
	jobKindRewrite    jobKind = "rewrite"
	jobKindEdit       jobKind = "edit"
	jobKindCapture    jobKind = "capture"
	jobKindTranscribe jobKind = "transcribe"
	jobKindImport     jobKind = "import"
)

// jobStartedMsg marks a job as in flight before its runner blocks.
type jobStartedMsg struct {
	ID   string
	Kind jobKind
}

// jobResultEnvelope delivers the runner's message back into the Update
// loop together with the outcome.
type jobResultEnvelope struct {
	ID       string
	Kind     jobKind
	Duration time.Duration
	Failed   bool
	Payload  tea.Msg
}

type jobRunner func(context.Context) (tea.Msg, error)

// jobBus wraps every network and device call in a command pair: a started
// marker, then the result envelope once the runner returns. All async work
// reports back through the single Update loop.
type jobBus struct {
	counter int64
}

func newJobBus() *jobBus {
	return &jobBus{}
}

func (b *jobBus) Start(kind jobKind, runner jobRunner) tea.Cmd {
	id := fmt.Sprintf("%s-%d", kind, atomic.AddInt64(&b.counter, 1))
	started := time.Now()

	startCmd := func() tea.Msg {
		return jobStartedMsg{ID: id, Kind: kind}
	}
	runCmd := func() tea.Msg {
		payload, err := runner(context.Background())
		duration := time.Since(started)
		outcome := "ok"
		if err != nil {
			outcome = "failed"
		}
		log.Printf("[jobs] %s %s (duration=%s, err=%v)", id, outcome, duration, err)
		return jobResultEnvelope{ID: id, Kind: kind, Duration: duration, Failed: err != nil, Payload: payload}
	}
	return tea.Sequence(startCmd, runCmd)
}
