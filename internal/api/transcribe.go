package api

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
)

// Transcript is the result of an audio upload. Text has the backend's
// vocabulary normalizations applied; RawText is the untouched model output.
type Transcript struct {
	Text    string             `json:"text"`
	RawText string             `json:"raw_text"`
	Changes []TranscriptChange `json:"normalization_changes"`
}

// TranscriptChange records one normalization the backend applied.
type TranscriptChange struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Transcribe uploads a finished capture payload as the multipart "audio"
// part and returns the recognized text.
func (c *Client) Transcribe(ctx context.Context, audio []byte, filename, contentType string) (Transcript, error) {
	if filename == "" {
		filename = "capture.wav"
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="audio"; filename="%s"`, escapeQuotes(filename)))
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	if err != nil {
		return Transcript{}, err
	}
	if _, err := part.Write(audio); err != nil {
		return Transcript{}, err
	}
	if err := writer.Close(); err != nil {
		return Transcript{}, err
	}

	var transcript Transcript
	if err := c.do(ctx, http.MethodPost, "/transcribe", buf.Bytes(), writer.FormDataContentType(), &transcript); err != nil {
		if reqErr, ok := err.(*RequestError); ok {
			return Transcript{}, &TranscriptionError{Status: reqErr.Status, Body: reqErr.Message}
		}
		return Transcript{}, err
	}
	return transcript, nil
}

func escapeQuotes(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `"`, `\"`)
}
