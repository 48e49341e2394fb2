package tui

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/LegatusConsultingLtd/robotalk/internal/capture"
	"github.com/LegatusConsultingLtd/robotalk/internal/draft"
	"github.com/LegatusConsultingLtd/robotalk/internal/mailctx"
)

func probeJob(backend Backend) jobRunner {
	return func(parent context.Context) (tea.Msg, error) {
		ctx, cancel := context.WithTimeout(parent, 15*time.Second)
		defer cancel()
		user, err := backend.CurrentUser(ctx)
		return probeResultMsg{user: user, err: err}, err
	}
}

func loginJob(backend Backend, email, password string) jobRunner {
	return func(parent context.Context) (tea.Msg, error) {
		ctx, cancel := context.WithTimeout(parent, 15*time.Second)
		defer cancel()
		err := backend.Login(ctx, email, password)
		return loginResultMsg{err: err}, err
	}
}

func logoutJob(backend Backend) jobRunner {
	return func(parent context.Context) (tea.Msg, error) {
		ctx, cancel := context.WithTimeout(parent, 10*time.Second)
		defer cancel()
		backend.Logout(ctx)
		return logoutDoneMsg{}, nil
	}
}

func csrfBootstrapJob(backend Backend) jobRunner {
	return func(parent context.Context) (tea.Msg, error) {
		ctx, cancel := context.WithTimeout(parent, 10*time.Second)
		defer cancel()
		_, err := backend.EnsureCSRFToken(ctx, false)
		return csrfReadyMsg{err: err}, err
	}
}

func generateJob(kind jobKind, orch *draft.Orchestrator, state draft.State) jobRunner {
	return func(parent context.Context) (tea.Msg, error) {
		ctx, cancel := context.WithTimeout(parent, 2*time.Minute)
		defer cancel()
		var (
			result draft.Result
			err    error
		)
		switch kind {
		case jobKindRewrite:
			result, err = orch.Rewrite(ctx, state)
		case jobKindEdit:
			result, err = orch.ApplyEdit(ctx, state)
		default:
			result, err = orch.GenerateDraft(ctx, state)
		}
		return generateResultMsg{kind: kind, result: result, err: err}, err
	}
}

// stopCaptureJob waits for the device to flush the recording the controller
// already asked it to stop.
func stopCaptureJob(done <-chan capture.Result) jobRunner {
	return func(parent context.Context) (tea.Msg, error) {
		ctx, cancel := context.WithTimeout(parent, 30*time.Second)
		defer cancel()
		select {
		case result := <-done:
			return captureStoppedMsg{result: result}, result.Err
		case <-ctx.Done():
			err := fmt.Errorf("timed out waiting for the recorder to flush")
			return captureStoppedMsg{result: capture.Result{Err: err}}, err
		}
	}
}

func transcribeJob(backend Backend, payload capture.Payload) jobRunner {
	return func(parent context.Context) (tea.Msg, error) {
		ctx, cancel := context.WithTimeout(parent, 2*time.Minute)
		defer cancel()
		transcript, err := backend.Transcribe(ctx, payload.Data, payload.Filename, payload.ContentType)
		return transcriptMsg{target: payload.Target, transcript: transcript, err: err}, err
	}
}

func importContextJob(path string) jobRunner {
	return func(parent context.Context) (tea.Msg, error) {
		text, err := mailctx.Load(path)
		return contextImportMsg{path: path, text: text, err: err}, err
	}
}
