package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/LegatusConsultingLtd/robotalk/internal/draft"
)

func (m *model) View() string {
	switch m.stage {
	case stageProbe:
		return m.viewProbe()
	case stageLogin:
		return m.viewLogin()
	default:
		return m.viewWorkspace()
	}
}

func (m *model) viewProbe() string {
	return joinNonEmpty([]string{
		m.heroView(),
		helperStyle.Render(fmt.Sprintf("%s Checking for an existing session…", m.spinner.View())),
	})
}

func (m *model) viewLogin() string {
	var b strings.Builder
	b.WriteString(sectionHeaderStyle.Render("Sign In"))
	b.WriteRune('\n')
	b.WriteString(m.loginFieldLabel("Email", m.loginOnEmail))
	b.WriteRune('\n')
	b.WriteString(m.emailInput.View())
	b.WriteRune('\n')
	b.WriteString(m.loginFieldLabel("Password", !m.loginOnEmail))
	b.WriteRune('\n')
	b.WriteString(m.passwordInput.View())

	parts := []string{m.heroView(), b.String()}
	if m.errorMessage != "" {
		parts = append(parts, errorStyle.Render(m.errorMessage))
	}
	if m.loggingIn {
		parts = append(parts, helperStyle.Render(fmt.Sprintf("%s %s", m.spinner.View(), m.infoMessage)))
	} else if m.infoMessage != "" {
		parts = append(parts, helperStyle.Render(m.infoMessage))
	}
	parts = append(parts, helperStyle.Render("Tab switches fields • Enter submits • Ctrl+C quits"))
	return joinNonEmpty(parts)
}

func (m *model) loginFieldLabel(label string, focused bool) string {
	if focused {
		return focusedLabelStyle.Render("▸ " + label)
	}
	return helperStyle.Render("  " + label)
}

func (m *model) viewWorkspace() string {
	parts := []string{m.heroView()}

	if m.historyVisible {
		parts = append(parts, m.historyOverlayView())
	} else {
		parts = append(parts, m.workspaceColumns())
		if panel := m.assumptionsPanel(); panel != "" {
			parts = append(parts, panel)
		}
	}
	if m.promptingPath {
		parts = append(parts, m.pathPromptView())
	}
	parts = append(parts, m.statusLine())
	if m.errorMessage != "" {
		parts = append(parts, errorStyle.Render(m.errorMessage))
	}
	if m.infoMessage != "" {
		message := m.infoMessage
		if m.busy() {
			message = fmt.Sprintf("%s %s", m.spinner.View(), message)
		}
		parts = append(parts, helperStyle.Render(message))
	}
	if m.helpVisible {
		parts = append(parts, m.keyLegendView())
	}
	return joinNonEmpty(parts)
}

func (m *model) workspaceColumns() string {
	left := joinNonEmpty([]string{
		m.fieldHeader("Email Context", focusContext),
		m.contextArea.View(),
		m.fieldHeader("Instruction", focusInstruction),
		m.instructionInput.View(),
	})
	right := joinNonEmpty([]string{
		m.fieldHeader("Subject", focusSubject),
		m.subjectInput.View(),
		m.fieldHeader(m.draftHeader(), focusBody),
		m.bodyArea.View(),
		m.fieldHeader("Edit Instruction", focusEdit),
		m.editInput.View(),
	})
	gap := strings.Repeat(" ", paneGap)
	return lipgloss.JoinHorizontal(lipgloss.Top, left, gap, right)
}

func (m *model) fieldHeader(label string, field focusField) string {
	if m.focus == field && !m.promptingPath {
		return focusedLabelStyle.Render("▸ " + label)
	}
	return sectionHeaderStyle.Render(label)
}

func (m *model) draftHeader() string {
	switch {
	case m.selectionActive:
		return "Draft (selecting…)"
	case m.selectedText != "":
		return fmt.Sprintf("Draft (%d chars selected)", len([]rune(m.selectedText)))
	default:
		return "Draft"
	}
}

func (m *model) assumptionsPanel() string {
	if len(m.assumptions) == 0 && len(m.questions) == 0 {
		return ""
	}
	wrap := m.wrapWidth(6)
	var b strings.Builder
	if len(m.assumptions) > 0 {
		b.WriteString(sectionHeaderStyle.Render("Assumptions"))
		for _, item := range m.assumptions {
			b.WriteRune('\n')
			b.WriteString(" • ")
			b.WriteString(wordwrap.String(item, wrap))
		}
	}
	if len(m.questions) > 0 {
		if b.Len() > 0 {
			b.WriteRune('\n')
		}
		b.WriteString(sectionHeaderStyle.Render("Questions to Confirm"))
		for _, item := range m.questions {
			b.WriteRune('\n')
			b.WriteString(" • ")
			b.WriteString(wordwrap.String(item, wrap))
		}
	}
	return panelBoxStyle.Render(b.String())
}

func (m *model) historyOverlayView() string {
	var b strings.Builder
	b.WriteString(sectionHeaderStyle.Render("Version History"))
	b.WriteRune('\n')
	if len(m.historyItems) == 0 {
		b.WriteString(helperStyle.Render("No versions recorded yet. Generate a draft first."))
	} else {
		active := m.config.Versions.ActiveID()
		for idx, version := range m.historyItems {
			marker := "  "
			if version.ID == active {
				marker = "● "
			}
			preview := previewText(version.Snapshot.DraftBody, 60)
			line := fmt.Sprintf("%s%s  %-5s  %s", marker, version.CreatedAt.Format("15:04:05"), version.Kind, preview)
			if idx == m.historyCursor {
				line = currentLineStyle.Render(line)
			}
			b.WriteString(line)
			if idx < len(m.historyItems)-1 {
				b.WriteRune('\n')
			}
		}
	}
	b.WriteRune('\n')
	b.WriteString(helperStyle.Render("↑/↓ select • Enter restore • Esc close"))
	return panelBoxStyle.Render(b.String())
}

func (m *model) pathPromptView() string {
	return joinNonEmpty([]string{
		sectionHeaderStyle.Render("Import Email Context"),
		m.pathInput.View(),
		helperStyle.Render("Enter imports the file • Esc cancels"),
	})
}

func (m *model) statusLine() string {
	stats := []string{
		fmt.Sprintf("Mode %s", modeLabel(m.composeMode)),
		fmt.Sprintf("Versions %d", m.config.Versions.Len()),
	}
	if m.user.Email != "" {
		stats = append(stats, m.user.Email)
	}
	if m.config.DeviceName != "" {
		stats = append(stats, m.config.DeviceName)
	}
	switch {
	case m.generating:
		stats = append(stats, "Generating…")
	case m.editing:
		stats = append(stats, "Editing…")
	case m.transcribing:
		stats = append(stats, "Transcribing…")
	}
	bar := statusBarStyle.Render(strings.Join(stats, "  •  "))
	if m.recording {
		bar = lipgloss.JoinHorizontal(lipgloss.Top, recordingStyle.Render("● REC"), " ", bar)
	}
	return bar
}

type keyHint struct {
	Key         string
	Description string
}

func (m *model) keyLegendView() string {
	hints := []keyHint{
		{"Tab", "Next field"},
		{"Ctrl+G", "Generate draft"},
		{"F5", "Rewrite from scratch"},
		{"Ctrl+R", "Dictate instruction"},
		{"Ctrl+T", "Dictate edit"},
		{"Ctrl+V", "Mark selection"},
		{"Ctrl+E", "Apply edit"},
		{"Ctrl+P", "Reply/compose mode"},
		{"Ctrl+O", "Import context file"},
		{"Ctrl+H", "Version history"},
		{"Ctrl+L", "Sign out"},
		{"Ctrl+C", "Quit"},
	}
	rows := []string{sectionHeaderStyle.Render("Keyboard Reference")}
	const columns = 3
	for i := 0; i < len(hints); i += columns {
		end := i + columns
		if end > len(hints) {
			end = len(hints)
		}
		var cells []string
		for _, hint := range hints[i:end] {
			key := keyStyle.Render(hint.Key)
			desc := keyDescStyle.Render(" " + hint.Description)
			cells = append(cells, lipgloss.JoinHorizontal(lipgloss.Top, key, desc))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return legendBoxStyle.Render(strings.Join(rows, "\n"))
}

func (m *model) heroView() string {
	title := titleStyle.Render("Robotalk")
	return lipgloss.JoinVertical(
		lipgloss.Left,
		title,
		taglineStyle.Render(heroTagline),
	)
}

func (m *model) wrapWidth(padding int) int {
	width := m.width
	if width <= 0 {
		width = 80
	}
	available := width - padding
	if available < 20 {
		available = 20
	}
	return available
}

func modeLabel(mode string) string {
	if mode == draft.ModeCompose {
		return "COMPOSE"
	}
	return "REPLY"
}

func previewText(value string, limit int) string {
	value = strings.Join(strings.Fields(value), " ")
	runes := []rune(value)
	if limit <= 0 || len(runes) <= limit {
		return value
	}
	return strings.TrimSpace(string(runes[:limit])) + "…"
}

func joinNonEmpty(parts []string) string {
	filtered := make([]string, 0, len(parts))
	for _, part := range parts {
		if strings.TrimSpace(part) == "" {
			continue
		}
		filtered = append(filtered, part)
	}
	return strings.Join(filtered, "\n\n")
}
