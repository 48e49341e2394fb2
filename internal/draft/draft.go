// Package draft owns the editable drafting state and the two generation
// operations that mutate it. The orchestrator talks to the backend through a
// narrow Generator interface and records every successful result with a
// Recorder, so both collaborators swap out cleanly in tests.
package draft

import (
	"context"
	"fmt"
	"strings"

	"github.com/LegatusConsultingLtd/robotalk/internal/api"
)

// Compose modes. Reply drafts answer an inbound thread; compose drafts start
// a fresh email. The backend request is identical either way, the mode only
// steers labels and snapshots on the client.
const (
	ModeReply   = "reply"
	ModeCompose = "compose"
)

// State is the full drafting state at one point in time. It is the snapshot
// unit for version history, so every field is JSON-tagged.
type State struct {
	ComposeMode     string `json:"composeMode"`
	EmailContext    string `json:"emailContext"`
	Instruction     string `json:"instruction"`
	DraftSubject    string `json:"draftSubject"`
	DraftBody       string `json:"draftBody"`
	EditInstruction string `json:"editInstruction"`
	SelectedText    string `json:"selectedText"`
}

// StyleControls are the fixed generation style parameters sent with every
// request. Defaults mirror the backend's own.
type StyleControls struct {
	Tone        string
	Length      string
	Detail      string
	CompanyName string
}

// DefaultStyle returns the backend's default style parameters.
func DefaultStyle() StyleControls {
	return StyleControls{
		Tone:        "professional",
		Length:      "same",
		Detail:      "same",
		CompanyName: "Radbury Double Glazing",
	}
}

// Generator is the slice of the backend client the orchestrator needs.
type Generator interface {
	Draft(ctx context.Context, req api.DraftRequest) (api.DraftResponse, error)
}

// Recorder receives a snapshot after every successful generation.
type Recorder interface {
	Record(kind string, snapshot State)
}

// Version kinds recorded with each snapshot.
const (
	KindDraft = "draft"
	KindEdit  = "edit"
)

// Result is the outcome of a successful generation: the updated state plus
// the model's stated assumptions and open questions for the side panel.
type Result struct {
	State       State
	Assumptions []string
	Questions   []string
}

// Orchestrator builds generation requests, applies responses to the drafting
// state, and checkpoints each success.
type Orchestrator struct {
	gen      Generator
	versions Recorder
	style    StyleControls
}

// NewOrchestrator wires a generator, a version recorder, and style controls.
func NewOrchestrator(gen Generator, versions Recorder, style StyleControls) *Orchestrator {
	if style == (StyleControls{}) {
		style = DefaultStyle()
	}
	return &Orchestrator{gen: gen, versions: versions, style: style}
}

// GenerateDraft produces a fresh draft from the email context and
// instruction. Both must be non-blank; the UI gates the action on that, so a
// violation here is a caller bug, not a runtime state to recover from.
func (o *Orchestrator) GenerateDraft(ctx context.Context, state State) (Result, error) {
	return o.generate(ctx, state, api.ModeDraft)
}

// Rewrite regenerates the reply from scratch with the same inputs,
// discarding the current draft body.
func (o *Orchestrator) Rewrite(ctx context.Context, state State) (Result, error) {
	return o.generate(ctx, state, api.ModeRewrite)
}

func (o *Orchestrator) generate(ctx context.Context, state State, mode string) (Result, error) {
	if strings.TrimSpace(state.EmailContext) == "" {
		return Result{}, fmt.Errorf("email context is required before generating")
	}
	if strings.TrimSpace(state.Instruction) == "" {
		return Result{}, fmt.Errorf("an instruction is required before generating")
	}

	resp, err := o.gen.Draft(ctx, api.DraftRequest{
		EmailContext: state.EmailContext,
		Instruction:  state.Instruction,
		Mode:         mode,
		Tone:         o.style.Tone,
		Length:       o.style.Length,
		Detail:       o.style.Detail,
		CompanyName:  o.style.CompanyName,
	})
	if err != nil {
		return Result{}, err
	}

	state.DraftSubject = resp.SubjectSuggestion
	state.DraftBody = resp.ReplyDraft
	o.versions.Record(KindDraft, state)
	return Result{State: state, Assumptions: resp.Assumptions, Questions: resp.QuestionsToConfirm}, nil
}

// ApplyEdit rewrites the selected span of the current draft per the edit
// instruction. The response body is the complete updated email, which
// replaces the draft body wholesale.
func (o *Orchestrator) ApplyEdit(ctx context.Context, state State) (Result, error) {
	if strings.TrimSpace(state.DraftBody) == "" {
		return Result{}, fmt.Errorf("no draft body to edit")
	}
	if strings.TrimSpace(state.SelectedText) == "" {
		return Result{}, fmt.Errorf("select the text to change first")
	}
	if strings.TrimSpace(state.EditInstruction) == "" {
		return Result{}, fmt.Errorf("an edit instruction is required")
	}

	resp, err := o.gen.Draft(ctx, api.DraftRequest{
		EmailContext: state.EmailContext,
		Instruction:  state.EditInstruction,
		Mode:         api.ModeEdit,
		SelectedText: state.SelectedText,
		CurrentDraft: state.DraftBody,
		Tone:         o.style.Tone,
		Length:       o.style.Length,
		Detail:       o.style.Detail,
		CompanyName:  o.style.CompanyName,
	})
	if err != nil {
		return Result{}, err
	}

	state.DraftBody = resp.ReplyDraft
	if resp.SubjectSuggestion != "" {
		state.DraftSubject = resp.SubjectSuggestion
	}
	o.versions.Record(KindEdit, state)
	return Result{State: state, Assumptions: resp.Assumptions, Questions: resp.QuestionsToConfirm}, nil
}

// ComputeSelection returns the substring of text between two rune-safe byte
// offsets, tolerating reversed or out-of-range bounds. The presentation
// layer calls this on every selection change so SelectedText never drifts
// from what is actually highlighted.
func ComputeSelection(text string, start, end int) string {
	if start > end {
		start, end = end, start
	}
	if start < 0 {
		start = 0
	}
	if end > len(text) {
		end = len(text)
	}
	if start >= end {
		return ""
	}
	return text[start:end]
}
