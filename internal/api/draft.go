package api

import (
	"context"
	"encoding/json"
	"net/http"
)

// Generation modes understood by the backend.
const (
	ModeDraft   = "draft"
	ModeRewrite = "rewrite"
	ModeEdit    = "edit"
)

// DraftRequest is the generation payload for POST /draft. selected_text and
// current_draft are only sent in edit mode.
type DraftRequest struct {
	EmailContext string `json:"email_context"`
	Instruction  string `json:"instruction"`
	Mode         string `json:"mode"`
	SelectedText string `json:"selected_text,omitempty"`
	CurrentDraft string `json:"current_draft,omitempty"`
	Tone         string `json:"tone"`
	Length       string `json:"length"`
	Detail       string `json:"detail"`
	CompanyName  string `json:"company_name"`
}

// DraftResponse carries the generated reply. ReplyDraft is always the full
// email body, never a patch, including in edit mode.
type DraftResponse struct {
	SubjectSuggestion  string   `json:"subject_suggestion"`
	ReplyDraft         string   `json:"reply_draft"`
	Assumptions        []string `json:"assumptions"`
	QuestionsToConfirm []string `json:"questions_to_confirm"`
}

// Draft asks the backend to generate or edit a reply draft.
func (c *Client) Draft(ctx context.Context, req DraftRequest) (DraftResponse, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return DraftResponse{}, err
	}
	var resp DraftResponse
	if err := c.do(ctx, http.MethodPost, "/draft", payload, "application/json", &resp); err != nil {
		if reqErr, ok := err.(*RequestError); ok {
			return DraftResponse{}, &GenerationError{Status: reqErr.Status, Body: reqErr.Message}
		}
		return DraftResponse{}, err
	}
	return resp, nil
}
