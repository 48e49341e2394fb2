// Package tui is the terminal front end: a login gate, then a drafting
// workspace where dictated instructions become email replies. Every network
// and device call runs through the job bus so the Update loop never blocks.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/LegatusConsultingLtd/robotalk/internal/api"
	"github.com/LegatusConsultingLtd/robotalk/internal/capture"
	"github.com/LegatusConsultingLtd/robotalk/internal/draft"
	"github.com/LegatusConsultingLtd/robotalk/internal/history"
)

// Backend is the slice of the API client the TUI drives directly. Draft
// generation goes through the orchestrator instead of this interface.
type Backend interface {
	Login(ctx context.Context, email, password string) error
	Logout(ctx context.Context)
	CurrentUser(ctx context.Context) (api.User, error)
	EnsureCSRFToken(ctx context.Context, force bool) (string, error)
	Transcribe(ctx context.Context, audio []byte, filename, contentType string) (api.Transcript, error)
}

// Config wires the model's collaborators.
type Config struct {
	Backend      Backend
	Orchestrator *draft.Orchestrator
	Versions     *history.Store
	Recorder     *capture.Controller
	DeviceName   string
}

type probeResultMsg struct {
	user api.User
	err  error
}

type loginResultMsg struct {
	err error
}

type logoutDoneMsg struct{}

type csrfReadyMsg struct {
	err error
}

type generateResultMsg struct {
	kind   jobKind
	result draft.Result
	err    error
}

type captureStoppedMsg struct {
	result capture.Result
}

type transcriptMsg struct {
	target     capture.Target
	transcript api.Transcript
	err        error
}

type contextImportMsg struct {
	path string
	text string
	err  error
}

type model struct {
	config Config
	jobs   *jobBus

	stage stage
	user  api.User

	emailInput    textinput.Model
	passwordInput textinput.Model
	loginOnEmail  bool

	contextArea      textarea.Model
	instructionInput textinput.Model
	subjectInput     textinput.Model
	bodyArea         textarea.Model
	editInput        textinput.Model
	pathInput        textinput.Model
	spinner          spinner.Model

	focus       focusField
	composeMode string

	probing      bool
	loggingIn    bool
	generating   bool
	editing      bool
	transcribing bool

	recording    bool
	recordTarget capture.Target

	selectionActive bool
	selectionAnchor int
	selectedText    string

	assumptions []string
	questions   []string

	historyVisible bool
	historyCursor  int
	historyItems   []history.Version

	promptingPath bool
	helpVisible   bool

	infoMessage  string
	errorMessage string

	width  int
	height int
}

// New builds the initial model. The program starts on the session probe.
func New(config Config) *model {
	email := textinput.New()
	email.Placeholder = "you@radbury.example"
	email.CharLimit = 254
	email.Width = 48

	password := textinput.New()
	password.Placeholder = "password"
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'
	password.CharLimit = 128
	password.Width = 48

	contextArea := textarea.New()
	contextArea.Placeholder = contextPlaceholder
	contextArea.ShowLineNumbers = false
	contextArea.CharLimit = 0

	instruction := textinput.New()
	instruction.Placeholder = instructionPlaceholder
	instruction.CharLimit = 0

	subject := textinput.New()
	subject.Placeholder = subjectPlaceholder
	subject.CharLimit = 0

	body := textarea.New()
	body.Placeholder = bodyPlaceholder
	body.ShowLineNumbers = false
	body.CharLimit = 0

	edit := textinput.New()
	edit.Placeholder = editPlaceholder
	edit.CharLimit = 0

	path := textinput.New()
	path.Placeholder = pathPlaceholder
	path.CharLimit = 0
	path.Width = 60

	spin := spinner.New(spinner.WithSpinner(spinner.Dot))

	return &model{
		config:           config,
		jobs:             newJobBus(),
		stage:            stageProbe,
		emailInput:       email,
		passwordInput:    password,
		loginOnEmail:     true,
		contextArea:      contextArea,
		instructionInput: instruction,
		subjectInput:     subject,
		bodyArea:         body,
		editInput:        edit,
		pathInput:        path,
		spinner:          spin,
		focus:            focusContext,
		composeMode:      draft.ModeReply,
		probing:          true,
	}
}

func (m *model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		m.spinner.Tick,
		m.jobs.Start(jobKindProbe, probeJob(m.config.Backend)),
	)
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeWidgets()
		return m, nil

	case spinner.TickMsg:
		if !m.busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case jobStartedMsg:
		// Start markers only feed the debug log.
		return m, nil

	case jobResultEnvelope:
		if msg.Payload == nil {
			return m, nil
		}
		return m.Update(msg.Payload)

	case probeResultMsg:
		return m.handleProbeResult(msg)

	case loginResultMsg:
		return m.handleLoginResult(msg)

	case logoutDoneMsg:
		m.resetToLogin("Signed out.")
		return m, textinput.Blink

	case csrfReadyMsg:
		if msg.err != nil {
			m.infoMessage = "Session token fetch failed; it will be retried on the first action."
		}
		return m, nil

	case generateResultMsg:
		return m.handleGenerateResult(msg)

	case captureStoppedMsg:
		return m.handleCaptureStopped(msg)

	case transcriptMsg:
		return m.handleTranscript(msg)

	case contextImportMsg:
		return m.handleContextImport(msg)

	case tea.KeyMsg:
		switch m.stage {
		case stageProbe:
			if msg.String() == "ctrl+c" {
				return m, tea.Quit
			}
			return m, nil
		case stageLogin:
			return m.updateLogin(msg)
		default:
			return m.updateWorkspace(msg)
		}
	}
	return m, nil
}

func (m *model) handleProbeResult(msg probeResultMsg) (tea.Model, tea.Cmd) {
	m.probing = false
	if msg.err != nil {
		m.stage = stageLogin
		m.loginOnEmail = true
		m.passwordInput.Blur()
		if !isUnauthenticated(msg.err) {
			m.errorMessage = msg.err.Error()
		}
		return m, m.emailInput.Focus()
	}
	m.stage = stageWorkspace
	m.user = msg.user
	m.errorMessage = ""
	m.infoMessage = fmt.Sprintf("Signed in as %s.", msg.user.Email)
	cmds := []tea.Cmd{
		m.jobs.Start(jobKindCsrf, csrfBootstrapJob(m.config.Backend)),
	}
	cmds = append(cmds, m.setFocus(focusContext)...)
	return m, tea.Batch(cmds...)
}

func (m *model) handleLoginResult(msg loginResultMsg) (tea.Model, tea.Cmd) {
	m.loggingIn = false
	if msg.err != nil {
		m.errorMessage = msg.err.Error()
		return m, nil
	}
	m.errorMessage = ""
	m.passwordInput.Reset()
	m.probing = true
	return m, tea.Batch(m.spinner.Tick, m.jobs.Start(jobKindProbe, probeJob(m.config.Backend)))
}

func (m *model) handleGenerateResult(msg generateResultMsg) (tea.Model, tea.Cmd) {
	m.generating = false
	m.editing = false
	if msg.err != nil {
		m.errorMessage = msg.err.Error()
		return m, nil
	}
	m.errorMessage = ""
	m.subjectInput.SetValue(msg.result.State.DraftSubject)
	m.bodyArea.SetValue(msg.result.State.DraftBody)
	m.assumptions = msg.result.Assumptions
	m.questions = msg.result.Questions
	switch msg.kind {
	case jobKindEdit:
		m.editInput.Reset()
		m.clearSelection()
		m.infoMessage = "Edit applied."
	case jobKindRewrite:
		m.infoMessage = "Draft rewritten."
	default:
		m.infoMessage = "Draft ready."
	}
	return m, nil
}

func (m *model) handleCaptureStopped(msg captureStoppedMsg) (tea.Model, tea.Cmd) {
	if msg.result.Err != nil {
		m.transcribing = false
		m.errorMessage = msg.result.Err.Error()
		return m, nil
	}
	m.infoMessage = fmt.Sprintf("Transcribing %s of audio…", msg.result.Payload.Duration.Round(time.Second))
	return m, tea.Batch(
		m.spinner.Tick,
		m.jobs.Start(jobKindTranscribe, transcribeJob(m.config.Backend, msg.result.Payload)),
	)
}

func (m *model) handleTranscript(msg transcriptMsg) (tea.Model, tea.Cmd) {
	m.transcribing = false
	if msg.err != nil {
		m.errorMessage = msg.err.Error()
		return m, nil
	}
	m.errorMessage = ""
	var cmds []tea.Cmd
	if msg.target == capture.TargetEdit {
		m.editInput.SetValue(msg.transcript.Text)
		cmds = m.setFocus(focusEdit)
	} else {
		m.instructionInput.SetValue(msg.transcript.Text)
		cmds = m.setFocus(focusInstruction)
	}
	if n := len(msg.transcript.Changes); n > 0 {
		m.infoMessage = fmt.Sprintf("Transcript ready (%d spoken forms normalized).", n)
	} else {
		m.infoMessage = "Transcript ready."
	}
	return m, tea.Batch(cmds...)
}

func (m *model) handleContextImport(msg contextImportMsg) (tea.Model, tea.Cmd) {
	m.promptingPath = false
	m.pathInput.Blur()
	if msg.err != nil {
		m.errorMessage = msg.err.Error()
		return m, nil
	}
	m.errorMessage = ""
	m.contextArea.SetValue(msg.text)
	m.infoMessage = fmt.Sprintf("Imported email context from %s.", msg.path)
	return m, tea.Batch(m.setFocus(focusInstruction)...)
}

func (m *model) updateLogin(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "tab", "shift+tab", "up", "down":
		m.loginOnEmail = !m.loginOnEmail
		if m.loginOnEmail {
			m.passwordInput.Blur()
			return m, m.emailInput.Focus()
		}
		m.emailInput.Blur()
		return m, m.passwordInput.Focus()
	case "enter":
		if m.loginOnEmail {
			m.loginOnEmail = false
			m.emailInput.Blur()
			return m, m.passwordInput.Focus()
		}
		return m.submitLogin()
	}
	var cmd tea.Cmd
	if m.loginOnEmail {
		m.emailInput, cmd = m.emailInput.Update(msg)
	} else {
		m.passwordInput, cmd = m.passwordInput.Update(msg)
	}
	return m, cmd
}

func (m *model) submitLogin() (tea.Model, tea.Cmd) {
	if m.loggingIn {
		return m, nil
	}
	email := strings.TrimSpace(m.emailInput.Value())
	password := m.passwordInput.Value()
	if email == "" || password == "" {
		m.errorMessage = "Email and password are both required."
		return m, nil
	}
	m.loggingIn = true
	m.errorMessage = ""
	m.infoMessage = "Signing in…"
	return m, tea.Batch(
		m.spinner.Tick,
		m.jobs.Start(jobKindLogin, loginJob(m.config.Backend, email, password)),
	)
}

func (m *model) updateWorkspace(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.historyVisible {
		return m.updateHistoryOverlay(msg)
	}
	if m.promptingPath {
		return m.updatePathPrompt(msg)
	}

	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "f1":
		m.helpVisible = !m.helpVisible
		return m, nil
	case "tab":
		return m, tea.Batch(m.cycleFocus(1)...)
	case "shift+tab":
		return m, tea.Batch(m.cycleFocus(-1)...)
	case "ctrl+g":
		return m.startGeneration(jobKindGenerate)
	case "f5":
		return m.startGeneration(jobKindRewrite)
	case "ctrl+e":
		return m.startEdit()
	case "ctrl+r":
		return m.toggleCapture(capture.TargetInstruction)
	case "ctrl+t":
		return m.toggleCapture(capture.TargetEdit)
	case "ctrl+v":
		return m.toggleSelection()
	case "ctrl+p":
		m.toggleComposeMode()
		return m, nil
	case "ctrl+o":
		m.promptingPath = true
		m.pathInput.Reset()
		m.blurAll()
		return m, m.pathInput.Focus()
	case "ctrl+h":
		m.openHistory()
		return m, nil
	case "ctrl+l":
		if m.loggingIn {
			return m, nil
		}
		m.infoMessage = "Signing out…"
		return m, tea.Batch(m.spinner.Tick, m.jobs.Start(jobKindLogout, logoutJob(m.config.Backend)))
	case "esc":
		if m.selectionActive {
			m.clearSelection()
			m.infoMessage = "Selection cancelled."
			return m, nil
		}
		m.infoMessage = ""
		m.errorMessage = ""
		return m, nil
	}

	return m, m.routeToFocused(msg)
}

func (m *model) updateHistoryOverlay(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc", "ctrl+h":
		m.historyVisible = false
		return m, nil
	case "up", "k":
		if m.historyCursor > 0 {
			m.historyCursor--
		}
		return m, nil
	case "down", "j":
		if m.historyCursor < len(m.historyItems)-1 {
			m.historyCursor++
		}
		return m, nil
	case "enter":
		return m.restoreSelectedVersion()
	}
	return m, nil
}

func (m *model) updatePathPrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.promptingPath = false
		m.pathInput.Blur()
		return m, tea.Batch(m.setFocus(m.focus)...)
	case "enter":
		path := strings.TrimSpace(m.pathInput.Value())
		if path == "" {
			m.errorMessage = "Enter a file path to import."
			return m, nil
		}
		m.infoMessage = "Importing…"
		return m, tea.Batch(m.spinner.Tick, m.jobs.Start(jobKindImport, importContextJob(path)))
	}
	var cmd tea.Cmd
	m.pathInput, cmd = m.pathInput.Update(msg)
	return m, cmd
}

func (m *model) startGeneration(kind jobKind) (tea.Model, tea.Cmd) {
	if m.generating || m.editing {
		m.infoMessage = "A generation is already running."
		return m, nil
	}
	state := m.currentState()
	if strings.TrimSpace(state.EmailContext) == "" {
		m.errorMessage = "Add email context before generating."
		return m, nil
	}
	if strings.TrimSpace(state.Instruction) == "" {
		m.errorMessage = "Add an instruction before generating."
		return m, nil
	}
	m.generating = true
	m.errorMessage = ""
	if kind == jobKindRewrite {
		m.infoMessage = "Rewriting the draft from scratch…"
	} else {
		m.infoMessage = "Generating a draft…"
	}
	return m, tea.Batch(
		m.spinner.Tick,
		m.jobs.Start(kind, generateJob(kind, m.config.Orchestrator, state)),
	)
}

func (m *model) startEdit() (tea.Model, tea.Cmd) {
	if m.generating || m.editing {
		m.infoMessage = "A generation is already running."
		return m, nil
	}
	state := m.currentState()
	switch {
	case strings.TrimSpace(state.DraftBody) == "":
		m.errorMessage = "Generate a draft before editing it."
		return m, nil
	case strings.TrimSpace(state.SelectedText) == "":
		m.errorMessage = "Select the text to change first (Ctrl+V in the draft)."
		return m, nil
	case strings.TrimSpace(state.EditInstruction) == "":
		m.errorMessage = "Describe the change to apply."
		return m, nil
	}
	m.editing = true
	m.errorMessage = ""
	m.infoMessage = "Applying the edit…"
	return m, tea.Batch(
		m.spinner.Tick,
		m.jobs.Start(jobKindEdit, generateJob(jobKindEdit, m.config.Orchestrator, state)),
	)
}

func (m *model) toggleCapture(target capture.Target) (tea.Model, tea.Cmd) {
	switch m.config.Recorder.State() {
	case capture.StateIdle:
		if m.recording {
			// The session ended on its own (device failure or EOF). Collect
			// the pending result so the error surfaces instead of starting
			// another capture over a dead device.
			m.recording = false
			done, err := m.config.Recorder.Stop()
			if err != nil {
				m.errorMessage = err.Error()
				return m, nil
			}
			m.transcribing = true
			m.infoMessage = "Recording ended early; collecting what was captured…"
			return m, tea.Batch(m.spinner.Tick, m.jobs.Start(jobKindCapture, stopCaptureJob(done)))
		}
		if m.transcribing {
			m.infoMessage = "Still transcribing the previous recording."
			return m, nil
		}
		if err := m.config.Recorder.Start(context.Background(), target); err != nil {
			m.errorMessage = err.Error()
			return m, nil
		}
		m.recording = true
		m.recordTarget = target
		m.errorMessage = ""
		m.infoMessage = fmt.Sprintf("Recording for the %s. Press the same key to stop.", targetLabel(target))
		return m, nil

	case capture.StateRecording:
		if m.recordTarget != target {
			m.infoMessage = fmt.Sprintf("Already recording for the %s; stop that first.", targetLabel(m.recordTarget))
			return m, nil
		}
		done, err := m.config.Recorder.Stop()
		if err != nil {
			m.errorMessage = err.Error()
			return m, nil
		}
		m.recording = false
		m.transcribing = true
		m.infoMessage = "Finishing the recording…"
		return m, tea.Batch(m.spinner.Tick, m.jobs.Start(jobKindCapture, stopCaptureJob(done)))

	default:
		m.infoMessage = "Still finishing the previous recording."
		return m, nil
	}
}

func (m *model) toggleSelection() (tea.Model, tea.Cmd) {
	if m.focus != focusBody {
		m.infoMessage = "Move focus to the draft (Tab) before selecting."
		return m, nil
	}
	if !m.selectionActive {
		m.selectionActive = true
		m.selectionAnchor = m.bodyCursorOffset()
		m.selectedText = ""
		m.infoMessage = "Selection started; move the cursor and press Ctrl+V again."
		return m, nil
	}
	m.selectedText = draft.ComputeSelection(m.bodyArea.Value(), m.selectionAnchor, m.bodyCursorOffset())
	m.selectionActive = false
	if m.selectedText == "" {
		m.infoMessage = "Empty selection; nothing marked."
	} else {
		m.infoMessage = fmt.Sprintf("Selected %d characters for editing.", len([]rune(m.selectedText)))
	}
	return m, nil
}

func (m *model) toggleComposeMode() {
	if m.composeMode == draft.ModeCompose {
		m.composeMode = draft.ModeReply
		m.infoMessage = "Reply mode: drafting an answer to the thread in context."
	} else {
		m.composeMode = draft.ModeCompose
		m.infoMessage = "Compose mode: drafting a fresh email; context describes the situation."
	}
}

func (m *model) openHistory() {
	m.historyItems = m.config.Versions.List()
	m.historyCursor = 0
	if active := m.config.Versions.ActiveID(); active != "" {
		for idx, version := range m.historyItems {
			if version.ID == active {
				m.historyCursor = idx
				break
			}
		}
	}
	m.historyVisible = true
}

func (m *model) restoreSelectedVersion() (tea.Model, tea.Cmd) {
	if m.historyCursor < 0 || m.historyCursor >= len(m.historyItems) {
		m.historyVisible = false
		return m, nil
	}
	version := m.historyItems[m.historyCursor]
	state, ok := m.config.Versions.Restore(version.ID)
	m.historyVisible = false
	if !ok {
		m.errorMessage = "That version is no longer available."
		return m, nil
	}
	m.applyState(state)
	m.infoMessage = fmt.Sprintf("Restored %s version from %s.", version.Kind, version.CreatedAt.Format("15:04:05"))
	return m, nil
}

// routeToFocused feeds ordinary keys to whichever widget has focus. A live
// selection tracks the body cursor as it moves.
func (m *model) routeToFocused(msg tea.KeyMsg) tea.Cmd {
	var cmd tea.Cmd
	switch m.focus {
	case focusContext:
		m.contextArea, cmd = m.contextArea.Update(msg)
	case focusInstruction:
		m.instructionInput, cmd = m.instructionInput.Update(msg)
	case focusSubject:
		m.subjectInput, cmd = m.subjectInput.Update(msg)
	case focusBody:
		m.bodyArea, cmd = m.bodyArea.Update(msg)
		if m.selectionActive {
			m.selectedText = draft.ComputeSelection(m.bodyArea.Value(), m.selectionAnchor, m.bodyCursorOffset())
		}
	case focusEdit:
		m.editInput, cmd = m.editInput.Update(msg)
	}
	return cmd
}

func (m *model) cycleFocus(step int) []tea.Cmd {
	idx := 0
	for i, field := range focusOrder {
		if field == m.focus {
			idx = i
			break
		}
	}
	idx = (idx + step + len(focusOrder)) % len(focusOrder)
	return m.setFocus(focusOrder[idx])
}

func (m *model) setFocus(field focusField) []tea.Cmd {
	m.blurAll()
	m.focus = field
	switch field {
	case focusContext:
		return []tea.Cmd{m.contextArea.Focus()}
	case focusInstruction:
		return []tea.Cmd{m.instructionInput.Focus()}
	case focusSubject:
		return []tea.Cmd{m.subjectInput.Focus()}
	case focusBody:
		return []tea.Cmd{m.bodyArea.Focus()}
	case focusEdit:
		return []tea.Cmd{m.editInput.Focus()}
	}
	return nil
}

func (m *model) blurAll() {
	m.contextArea.Blur()
	m.instructionInput.Blur()
	m.subjectInput.Blur()
	m.bodyArea.Blur()
	m.editInput.Blur()
}

// currentState snapshots the widgets into the drafting state the
// orchestrator and version store work with.
func (m *model) currentState() draft.State {
	selected := m.selectedText
	if m.selectionActive {
		selected = draft.ComputeSelection(m.bodyArea.Value(), m.selectionAnchor, m.bodyCursorOffset())
	}
	return draft.State{
		ComposeMode:     m.composeMode,
		EmailContext:    m.contextArea.Value(),
		Instruction:     m.instructionInput.Value(),
		DraftSubject:    m.subjectInput.Value(),
		DraftBody:       m.bodyArea.Value(),
		EditInstruction: m.editInput.Value(),
		SelectedText:    selected,
	}
}

func (m *model) applyState(state draft.State) {
	if state.ComposeMode != "" {
		m.composeMode = state.ComposeMode
	}
	m.contextArea.SetValue(state.EmailContext)
	m.instructionInput.SetValue(state.Instruction)
	m.subjectInput.SetValue(state.DraftSubject)
	m.bodyArea.SetValue(state.DraftBody)
	m.editInput.SetValue(state.EditInstruction)
	m.clearSelection()
}

func (m *model) clearSelection() {
	m.selectionActive = false
	m.selectionAnchor = 0
	m.selectedText = ""
}

// bodyCursorOffset maps the textarea cursor to a byte offset into the draft.
// The soft-wrap column arithmetic is approximate for double-width runes,
// which is acceptable for marking an edit region.
func (m *model) bodyCursorOffset() int {
	value := m.bodyArea.Value()
	lines := strings.Split(value, "\n")
	row := m.bodyArea.Line()
	if row < 0 {
		row = 0
	}
	if row >= len(lines) {
		row = len(lines) - 1
	}
	offset := 0
	for i := 0; i < row; i++ {
		offset += len(lines[i]) + 1
	}
	info := m.bodyArea.LineInfo()
	col := info.StartColumn + info.ColumnOffset
	runes := []rune(lines[row])
	if col > len(runes) {
		col = len(runes)
	}
	if col < 0 {
		col = 0
	}
	return offset + len(string(runes[:col]))
}

func (m *model) resetToLogin(info string) {
	m.stage = stageLogin
	m.user = api.User{}
	m.loginOnEmail = true
	m.passwordInput.Reset()
	m.emailInput.Focus()
	m.passwordInput.Blur()
	m.infoMessage = info
	m.errorMessage = ""
}

func (m *model) busy() bool {
	return m.probing || m.loggingIn || m.generating || m.editing || m.transcribing
}

func (m *model) resizeWidgets() {
	width := m.width
	if width <= 0 {
		width = 80
	}
	paneWidth := (width - paneGap - 2) / 2
	if paneWidth < minPaneWidth {
		paneWidth = minPaneWidth
	}

	usable := m.height - chromeHeight
	if usable < minBodyHeight+minContextRows {
		usable = minBodyHeight + minContextRows
	}
	contextRows := usable / 3
	if contextRows < minContextRows {
		contextRows = minContextRows
	}
	bodyRows := usable - contextRows
	if bodyRows < minBodyHeight {
		bodyRows = minBodyHeight
	}

	m.contextArea.SetWidth(paneWidth)
	m.contextArea.SetHeight(contextRows)
	m.bodyArea.SetWidth(paneWidth)
	m.bodyArea.SetHeight(bodyRows)
	m.instructionInput.Width = paneWidth - 2
	m.subjectInput.Width = paneWidth - 2
	m.editInput.Width = paneWidth - 2
}

func targetLabel(target capture.Target) string {
	if target == capture.TargetEdit {
		return "edit instruction"
	}
	return "instruction"
}

func isUnauthenticated(err error) bool {
	if reqErr, ok := err.(*api.RequestError); ok {
		return reqErr.Status == 401 || reqErr.Status == 403
	}
	return false
}

var (
	titleStyle         = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205")).Underline(true)
	sectionHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("81"))
	errorStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	helperStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	taglineStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#9a86a8")).Italic(true)
	statusBarStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#0f0f0f")).Background(lipgloss.Color("#8ecae6")).Padding(0, 1)
	recordingStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#0f0f0f")).Background(lipgloss.Color("#e63946")).Padding(0, 1)
	keyStyle           = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#0f0f0f")).Background(lipgloss.Color("#ffd166")).Padding(0, 1)
	keyDescStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#e0def4"))
	legendBoxStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#56526e")).Padding(1, 2)
	panelBoxStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#56526e")).Padding(0, 1)
	currentLineStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#0f0f0f")).Background(lipgloss.Color("#8ecae6"))
	focusedLabelStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
)
