package tui

type stage int

const (
	stageProbe stage = iota
	stageLogin
	stageWorkspace
)

type focusField int

const (
	focusContext focusField = iota
	focusInstruction
	focusSubject
	focusBody
	focusEdit
)

var focusOrder = []focusField{
	focusContext,
	focusInstruction,
	focusSubject,
	focusBody,
	focusEdit,
}

const heroTagline = "Dictate, draft, and polish email replies with Robotalk."

const (
	minPaneWidth   = 36
	paneGap        = 2
	chromeHeight   = 14
	minBodyHeight  = 6
	minContextRows = 4
)

const (
	contextPlaceholder     = "Paste the email thread you are replying to, or press Ctrl+O to import a file…"
	instructionPlaceholder = "What should the reply say? Press Ctrl+R to dictate."
	subjectPlaceholder     = "Subject suggestion appears here after generating."
	bodyPlaceholder        = "The generated draft lands here. Edit freely."
	editPlaceholder        = "Describe the change for the selected text. Press Ctrl+T to dictate."
	pathPlaceholder        = "Path to a .txt, .eml, or .pdf file…"
)
