package api

import "fmt"

// AuthError reports a rejected credential exchange.
type AuthError struct {
	Detail string
}

func (e *AuthError) Error() string {
	if e.Detail == "" {
		return "login rejected"
	}
	return fmt.Sprintf("login rejected: %s", e.Detail)
}

// CsrfFetchError reports a failed CSRF token issuance. While it stands,
// every mutating call is blocked.
type CsrfFetchError struct {
	Err error
}

func (e *CsrfFetchError) Error() string {
	return fmt.Sprintf("csrf token fetch failed: %v", e.Err)
}

func (e *CsrfFetchError) Unwrap() error {
	return e.Err
}

// RequestError is the generic non-2xx outcome of a backend call.
type RequestError struct {
	Status  int
	Message string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("request failed (%d): %s", e.Status, e.Message)
}

// TranscriptionError reports a failed audio upload.
type TranscriptionError struct {
	Status int
	Body   string
}

func (e *TranscriptionError) Error() string {
	return fmt.Sprintf("transcription failed (%d): %s", e.Status, e.Body)
}

// GenerationError reports a failed draft or edit generation.
type GenerationError struct {
	Status int
	Body   string
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation failed (%d): %s", e.Status, e.Body)
}
