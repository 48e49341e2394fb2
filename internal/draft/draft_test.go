package draft

import (
	"context"
	"errors"
	"testing"

	"github.com/LegatusConsultingLtd/robotalk/internal/api"
)

type stubGenerator struct {
	calls []api.DraftRequest
	resp  api.DraftResponse
	err   error
}

func (g *stubGenerator) Draft(ctx context.Context, req api.DraftRequest) (api.DraftResponse, error) {
	g.calls = append(g.calls, req)
	return g.resp, g.err
}

type stubRecorder struct {
	kinds     []string
	snapshots []State
}

func (r *stubRecorder) Record(kind string, snapshot State) {
	r.kinds = append(r.kinds, kind)
	r.snapshots = append(r.snapshots, snapshot)
}

func TestGenerateDraftAppliesResponseAndRecords(t *testing.T) {
	gen := &stubGenerator{resp: api.DraftResponse{
		SubjectSuggestion:  "Re: Quote",
		ReplyDraft:         "Thanks for getting in touch about the windows.",
		Assumptions:        []string{"the customer wants uPVC"},
		QuestionsToConfirm: []string{"installation date?"},
	}}
	rec := &stubRecorder{}
	orch := NewOrchestrator(gen, rec, DefaultStyle())

	result, err := orch.GenerateDraft(context.Background(), State{
		ComposeMode:  ModeReply,
		EmailContext: "Hi, can you quote for two windows?",
		Instruction:  "thank them and promise a quote tomorrow",
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if result.State.DraftSubject != "Re: Quote" {
		t.Fatalf("subject = %q", result.State.DraftSubject)
	}
	if result.State.DraftBody != "Thanks for getting in touch about the windows." {
		t.Fatalf("body = %q", result.State.DraftBody)
	}
	if len(result.Assumptions) != 1 || len(result.Questions) != 1 {
		t.Fatalf("side panel content missing: %+v", result)
	}

	if len(gen.calls) != 1 {
		t.Fatalf("generator calls = %d", len(gen.calls))
	}
	req := gen.calls[0]
	if req.Mode != api.ModeDraft {
		t.Fatalf("mode = %q", req.Mode)
	}
	if req.SelectedText != "" || req.CurrentDraft != "" {
		t.Fatalf("draft mode must not send edit fields: %+v", req)
	}
	if req.Tone != "professional" || req.CompanyName != "Radbury Double Glazing" {
		t.Fatalf("style controls not applied: %+v", req)
	}

	if len(rec.kinds) != 1 || rec.kinds[0] != KindDraft {
		t.Fatalf("recorded kinds = %v", rec.kinds)
	}
	if rec.snapshots[0].DraftBody != result.State.DraftBody {
		t.Fatalf("snapshot does not match the applied state")
	}
}

func TestRewriteUsesRewriteMode(t *testing.T) {
	gen := &stubGenerator{resp: api.DraftResponse{ReplyDraft: "Fresh take."}}
	orch := NewOrchestrator(gen, &stubRecorder{}, StyleControls{})

	_, err := orch.Rewrite(context.Background(), State{
		EmailContext: "thread",
		Instruction:  "try again, warmer",
		DraftBody:    "old draft",
	})
	if err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	if gen.calls[0].Mode != api.ModeRewrite {
		t.Fatalf("mode = %q, want rewrite", gen.calls[0].Mode)
	}
}

func TestGeneratePreconditionsSkipNetwork(t *testing.T) {
	cases := []struct {
		name  string
		state State
	}{
		{"missing context", State{Instruction: "say hi"}},
		{"missing instruction", State{EmailContext: "thread"}},
		{"blank instruction", State{EmailContext: "thread", Instruction: "   "}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gen := &stubGenerator{}
			rec := &stubRecorder{}
			orch := NewOrchestrator(gen, rec, DefaultStyle())
			if _, err := orch.GenerateDraft(context.Background(), tc.state); err == nil {
				t.Fatalf("expected a precondition error")
			}
			if len(gen.calls) != 0 {
				t.Fatalf("backend was called despite failed precondition")
			}
			if len(rec.kinds) != 0 {
				t.Fatalf("a version was recorded despite failed precondition")
			}
		})
	}
}

func TestApplyEditReplacesBodyWholesale(t *testing.T) {
	gen := &stubGenerator{resp: api.DraftResponse{ReplyDraft: "Updated body with a firmer tone."}}
	rec := &stubRecorder{}
	orch := NewOrchestrator(gen, rec, DefaultStyle())

	state := State{
		EmailContext:    "thread",
		DraftSubject:    "Re: Quote",
		DraftBody:       "Original body.",
		SelectedText:    "Original",
		EditInstruction: "make it firmer",
	}
	result, err := orch.ApplyEdit(context.Background(), state)
	if err != nil {
		t.Fatalf("edit: %v", err)
	}

	if result.State.DraftBody != "Updated body with a firmer tone." {
		t.Fatalf("body = %q", result.State.DraftBody)
	}
	// No subject in the response, so the existing one stays.
	if result.State.DraftSubject != "Re: Quote" {
		t.Fatalf("subject = %q", result.State.DraftSubject)
	}

	req := gen.calls[0]
	if req.Mode != api.ModeEdit {
		t.Fatalf("mode = %q", req.Mode)
	}
	if req.SelectedText != "Original" || req.CurrentDraft != "Original body." {
		t.Fatalf("edit fields missing: %+v", req)
	}
	if req.Instruction != "make it firmer" {
		t.Fatalf("instruction = %q", req.Instruction)
	}

	if len(rec.kinds) != 1 || rec.kinds[0] != KindEdit {
		t.Fatalf("recorded kinds = %v", rec.kinds)
	}
}

func TestApplyEditPreconditions(t *testing.T) {
	cases := []struct {
		name  string
		state State
	}{
		{"no body", State{SelectedText: "x", EditInstruction: "y"}},
		{"no selection", State{DraftBody: "body", EditInstruction: "y"}},
		{"no instruction", State{DraftBody: "body", SelectedText: "x"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gen := &stubGenerator{}
			orch := NewOrchestrator(gen, &stubRecorder{}, DefaultStyle())
			if _, err := orch.ApplyEdit(context.Background(), tc.state); err == nil {
				t.Fatalf("expected a precondition error")
			}
			if len(gen.calls) != 0 {
				t.Fatalf("backend was called despite failed precondition")
			}
		})
	}
}

func TestGenerateErrorRecordsNothing(t *testing.T) {
	gen := &stubGenerator{err: errors.New("backend down")}
	rec := &stubRecorder{}
	orch := NewOrchestrator(gen, rec, DefaultStyle())

	_, err := orch.GenerateDraft(context.Background(), State{EmailContext: "a", Instruction: "b"})
	if err == nil {
		t.Fatalf("expected the generator error")
	}
	if len(rec.kinds) != 0 {
		t.Fatalf("recorded %v on failure", rec.kinds)
	}
}

func TestComputeSelection(t *testing.T) {
	text := "Dear customer, thank you."
	cases := []struct {
		name       string
		start, end int
		want       string
	}{
		{"forward", 0, 4, "Dear"},
		{"reversed", 4, 0, "Dear"},
		{"clamped end", 15, 999, "thank you."},
		{"clamped start", -3, 4, "Dear"},
		{"empty", 7, 7, ""},
		{"whole", 0, len(text), text},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ComputeSelection(text, tc.start, tc.end); got != tc.want {
				t.Fatalf("ComputeSelection = %q, want %q", got, tc.want)
			}
		})
	}
}
