package tui

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/LegatusConsultingLtd/robotalk/internal/api"
	"github.com/LegatusConsultingLtd/robotalk/internal/capture"
	"github.com/LegatusConsultingLtd/robotalk/internal/draft"
	"github.com/LegatusConsultingLtd/robotalk/internal/history"
)

type fakeBackend struct {
	user       api.User
	userErr    error
	loginErr   error
	transcript api.Transcript
}

func (b *fakeBackend) Login(ctx context.Context, email, password string) error { return b.loginErr }

func (b *fakeBackend) Logout(ctx context.Context) {}

func (b *fakeBackend) CurrentUser(ctx context.Context) (api.User, error) {
	return b.user, b.userErr
}

func (b *fakeBackend) EnsureCSRFToken(ctx context.Context, force bool) (string, error) {
	return "token", nil
}

func (b *fakeBackend) Transcribe(ctx context.Context, audio []byte, filename, contentType string) (api.Transcript, error) {
	return b.transcript, nil
}

type fakeGenerator struct {
	resp api.DraftResponse
}

func (g *fakeGenerator) Draft(ctx context.Context, req api.DraftRequest) (api.DraftResponse, error) {
	return g.resp, nil
}

func newTestModel(backend *fakeBackend) (*model, *history.Store) {
	store := history.NewStore(nil)
	orch := draft.NewOrchestrator(&fakeGenerator{}, store, draft.DefaultStyle())
	m := New(Config{
		Backend:      backend,
		Orchestrator: orch,
		Versions:     store,
		Recorder:     capture.NewController(nil),
		DeviceName:   "fake",
	})
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return m, store
}

func workspaceModel(t *testing.T) (*model, *history.Store) {
	t.Helper()
	m, store := newTestModel(&fakeBackend{})
	m.Update(probeResultMsg{user: api.User{Email: "pat@radbury.example"}})
	if m.stage != stageWorkspace {
		t.Fatalf("stage = %v, want workspace", m.stage)
	}
	return m, store
}

func key(kt tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: kt}
}

// dyingDevice hands out sessions that end immediately with the given error,
// as a recorder process that crashes right after starting would.
type dyingDevice struct {
	err    error
	starts int
}

func (d *dyingDevice) Start(ctx context.Context) (capture.Session, error) {
	d.starts++
	chunks := make(chan []byte)
	close(chunks)
	return &deadSession{chunks: chunks, err: d.err}, nil
}

func (d *dyingDevice) Format() (string, string) { return "capture.wav", "audio/wav" }

func (d *dyingDevice) Name() string { return "dying" }

type deadSession struct {
	chunks chan []byte
	err    error
}

func (s *deadSession) Chunks() <-chan []byte { return s.chunks }

func (s *deadSession) Stop() error { return nil }

func (s *deadSession) Err() error { return s.err }

func waitForIdle(t *testing.T, controller *capture.Controller) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for controller.State() != capture.StateIdle {
		if time.Now().After(deadline) {
			t.Fatalf("controller never returned to idle")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestProbeFailureShowsLoginWithoutErrorBanner(t *testing.T) {
	m, _ := newTestModel(&fakeBackend{})
	m.Update(probeResultMsg{err: &api.RequestError{Status: 401, Message: "Unauthorized"}})

	if m.stage != stageLogin {
		t.Fatalf("stage = %v, want login", m.stage)
	}
	if m.errorMessage != "" {
		t.Fatalf("an expired session must not show an error: %q", m.errorMessage)
	}
}

func TestProbeFailureKeepsUnexpectedErrorVisible(t *testing.T) {
	m, _ := newTestModel(&fakeBackend{})
	m.Update(probeResultMsg{err: &api.RequestError{Status: 500, Message: "boom"}})

	if m.stage != stageLogin {
		t.Fatalf("stage = %v, want login", m.stage)
	}
	if m.errorMessage == "" {
		t.Fatalf("a backend failure should be surfaced")
	}
}

func TestProbeSuccessEntersWorkspace(t *testing.T) {
	m, _ := newTestModel(&fakeBackend{})
	_, cmd := m.Update(probeResultMsg{user: api.User{Email: "pat@radbury.example"}})

	if m.stage != stageWorkspace {
		t.Fatalf("stage = %v, want workspace", m.stage)
	}
	if m.user.Email != "pat@radbury.example" {
		t.Fatalf("user = %+v", m.user)
	}
	if cmd == nil {
		t.Fatalf("entering the workspace must kick off the csrf bootstrap")
	}
}

func TestLoginRequiresBothFields(t *testing.T) {
	m, _ := newTestModel(&fakeBackend{})
	m.Update(probeResultMsg{err: &api.RequestError{Status: 401}})

	m.loginOnEmail = false
	m.Update(key(tea.KeyEnter))
	if m.loggingIn {
		t.Fatalf("empty credentials must not submit")
	}
	if m.errorMessage == "" {
		t.Fatalf("expected a validation message")
	}

	m.emailInput.SetValue("pat@radbury.example")
	m.passwordInput.SetValue("hunter2")
	m.Update(key(tea.KeyEnter))
	if !m.loggingIn {
		t.Fatalf("filled credentials must submit")
	}
}

func TestGenerateGuardsOnMissingInputs(t *testing.T) {
	m, _ := workspaceModel(t)

	m.Update(key(tea.KeyCtrlG))
	if m.generating {
		t.Fatalf("generation must not start without context")
	}
	if m.errorMessage == "" {
		t.Fatalf("expected a guard message")
	}

	m.contextArea.SetValue("customer thread")
	m.Update(key(tea.KeyCtrlG))
	if m.generating {
		t.Fatalf("generation must not start without an instruction")
	}

	m.instructionInput.SetValue("say thanks")
	_, cmd := m.Update(key(tea.KeyCtrlG))
	if !m.generating {
		t.Fatalf("generation should have started")
	}
	if cmd == nil {
		t.Fatalf("expected the generation command")
	}

	// A second trigger while in flight is refused.
	m.Update(key(tea.KeyCtrlG))
	if m.errorMessage != "" {
		t.Fatalf("an in-flight refusal is informational, got error %q", m.errorMessage)
	}
}

func TestGenerateResultAppliesDraft(t *testing.T) {
	m, _ := workspaceModel(t)
	m.generating = true

	m.Update(generateResultMsg{
		kind: jobKindGenerate,
		result: draft.Result{
			State:       draft.State{DraftSubject: "Re: Quote", DraftBody: "Thanks for reaching out."},
			Assumptions: []string{"standard uPVC"},
			Questions:   []string{"which colour?"},
		},
	})

	if m.generating {
		t.Fatalf("generating flag not cleared")
	}
	if m.subjectInput.Value() != "Re: Quote" {
		t.Fatalf("subject = %q", m.subjectInput.Value())
	}
	if m.bodyArea.Value() != "Thanks for reaching out." {
		t.Fatalf("body = %q", m.bodyArea.Value())
	}
	if len(m.assumptions) != 1 || len(m.questions) != 1 {
		t.Fatalf("side panel content missing")
	}
}

func TestEditResultClearsSelectionAndInstruction(t *testing.T) {
	m, _ := workspaceModel(t)
	m.editing = true
	m.selectedText = "old span"
	m.editInput.SetValue("make it firmer")

	m.Update(generateResultMsg{
		kind:   jobKindEdit,
		result: draft.Result{State: draft.State{DraftBody: "Firmer body."}},
	})

	if m.editInput.Value() != "" {
		t.Fatalf("edit instruction not cleared")
	}
	if m.selectedText != "" || m.selectionActive {
		t.Fatalf("selection not cleared")
	}
	if m.bodyArea.Value() != "Firmer body." {
		t.Fatalf("body = %q", m.bodyArea.Value())
	}
}

func TestGenerateErrorSurfacesMessage(t *testing.T) {
	m, _ := workspaceModel(t)
	m.generating = true

	m.Update(generateResultMsg{kind: jobKindGenerate, err: &api.GenerationError{Status: 503, Body: "model overloaded"}})

	if m.generating {
		t.Fatalf("generating flag not cleared on error")
	}
	if m.errorMessage == "" {
		t.Fatalf("expected the generation error to surface")
	}
	if m.bodyArea.Value() != "" {
		t.Fatalf("a failed generation must not touch the draft")
	}
}

func TestTranscriptRoutesToTargetField(t *testing.T) {
	m, _ := workspaceModel(t)
	m.transcribing = true

	m.Update(transcriptMsg{
		target:     capture.TargetInstruction,
		transcript: api.Transcript{Text: "thank them for the enquiry"},
	})
	if m.instructionInput.Value() != "thank them for the enquiry" {
		t.Fatalf("instruction = %q", m.instructionInput.Value())
	}
	if m.focus != focusInstruction {
		t.Fatalf("focus = %v, want instruction", m.focus)
	}

	m.transcribing = true
	m.Update(transcriptMsg{
		target:     capture.TargetEdit,
		transcript: api.Transcript{Text: "shorten the second paragraph", Changes: []api.TranscriptChange{{From: "2nd", To: "second"}}},
	})
	if m.editInput.Value() != "shorten the second paragraph" {
		t.Fatalf("edit instruction = %q", m.editInput.Value())
	}
	if m.focus != focusEdit {
		t.Fatalf("focus = %v, want edit", m.focus)
	}
}

func TestDeadSessionIsCollectedOnNextToggle(t *testing.T) {
	device := &dyingDevice{err: errors.New("microphone went away")}
	m, _ := workspaceModel(t)
	m.config.Recorder = capture.NewController(device)

	m.Update(key(tea.KeyCtrlR))
	if !m.recording {
		t.Fatalf("recording did not start")
	}
	// The session dies right away; wait for the controller to notice.
	waitForIdle(t, m.config.Recorder)

	_, cmd := m.Update(key(tea.KeyCtrlR))
	if device.starts != 1 {
		t.Fatalf("device started %d times, want 1", device.starts)
	}
	if m.recording {
		t.Fatalf("recording flag not cleared after the session died")
	}
	if !m.transcribing {
		t.Fatalf("the pending result is not being collected")
	}
	if cmd == nil {
		t.Fatalf("expected the collect command")
	}

	// The pending future was handed to the collect job exactly once.
	if _, err := m.config.Recorder.Stop(); err == nil {
		t.Fatalf("the pending future must be handed out exactly once")
	}

	// Once the collect job resolves, the session error reaches the user.
	m.Update(captureStoppedMsg{result: capture.Result{Err: &capture.CaptureError{Op: "recording failed", Err: device.err}}})
	if m.transcribing {
		t.Fatalf("transcribing flag not cleared")
	}
	if m.errorMessage == "" {
		t.Fatalf("the device error never reached the user")
	}
}

func TestCaptureStopErrorClearsTranscribing(t *testing.T) {
	m, _ := workspaceModel(t)
	m.transcribing = true

	m.Update(captureStoppedMsg{result: capture.Result{Err: &capture.CaptureError{Op: "no audio captured"}}})

	if m.transcribing {
		t.Fatalf("transcribing flag not cleared")
	}
	if m.errorMessage == "" {
		t.Fatalf("expected the capture error to surface")
	}
}

func TestComposeModeToggle(t *testing.T) {
	m, _ := workspaceModel(t)
	if m.composeMode != draft.ModeReply {
		t.Fatalf("initial mode = %q", m.composeMode)
	}
	m.Update(key(tea.KeyCtrlP))
	if m.composeMode != draft.ModeCompose {
		t.Fatalf("mode = %q, want compose", m.composeMode)
	}
	m.Update(key(tea.KeyCtrlP))
	if m.composeMode != draft.ModeReply {
		t.Fatalf("mode = %q, want reply", m.composeMode)
	}
}

func TestHistoryOverlayRestoresVersion(t *testing.T) {
	m, store := workspaceModel(t)
	store.Record(draft.KindDraft, draft.State{DraftSubject: "Old", DraftBody: "Old body."})
	store.Record(draft.KindDraft, draft.State{DraftSubject: "New", DraftBody: "New body."})

	m.Update(key(tea.KeyCtrlH))
	if !m.historyVisible {
		t.Fatalf("history overlay did not open")
	}
	if len(m.historyItems) != 2 {
		t.Fatalf("history items = %d", len(m.historyItems))
	}

	m.Update(key(tea.KeyDown))
	m.Update(key(tea.KeyEnter))

	if m.historyVisible {
		t.Fatalf("overlay should close after restore")
	}
	if m.bodyArea.Value() != "Old body." || m.subjectInput.Value() != "Old" {
		t.Fatalf("restore did not apply: subject=%q body=%q", m.subjectInput.Value(), m.bodyArea.Value())
	}
	if store.Len() != 2 {
		t.Fatalf("restore must not change the version list")
	}
	if store.ActiveID() != m.historyItems[1].ID {
		t.Fatalf("restored version must become active")
	}
}

func TestContextImportFillsContextArea(t *testing.T) {
	m, _ := workspaceModel(t)
	m.promptingPath = true

	m.Update(contextImportMsg{path: "/tmp/thread.txt", text: "imported thread"})

	if m.promptingPath {
		t.Fatalf("path prompt should close")
	}
	if m.contextArea.Value() != "imported thread" {
		t.Fatalf("context = %q", m.contextArea.Value())
	}
}

func TestLogoutReturnsToLogin(t *testing.T) {
	m, _ := workspaceModel(t)
	m.Update(logoutDoneMsg{})

	if m.stage != stageLogin {
		t.Fatalf("stage = %v, want login", m.stage)
	}
	if m.user.Email != "" {
		t.Fatalf("user not cleared: %+v", m.user)
	}
}

func TestFocusCycleWraps(t *testing.T) {
	m, _ := workspaceModel(t)
	if m.focus != focusContext {
		t.Fatalf("initial focus = %v", m.focus)
	}
	for range focusOrder {
		m.Update(key(tea.KeyTab))
	}
	if m.focus != focusContext {
		t.Fatalf("focus did not wrap, got %v", m.focus)
	}
	m.Update(key(tea.KeyShiftTab))
	if m.focus != focusEdit {
		t.Fatalf("reverse cycle broken, got %v", m.focus)
	}
}

func TestSelectionRequiresBodyFocus(t *testing.T) {
	m, _ := workspaceModel(t)
	m.Update(key(tea.KeyCtrlV))
	if m.selectionActive {
		t.Fatalf("selection must not start outside the draft")
	}

	m.bodyArea.SetValue("Dear customer, thank you.")
	m.setFocus(focusBody)
	m.Update(key(tea.KeyCtrlV))
	if !m.selectionActive {
		t.Fatalf("selection did not start")
	}
	m.Update(key(tea.KeyCtrlV))
	if m.selectionActive {
		t.Fatalf("second toggle must end the selection")
	}
}
