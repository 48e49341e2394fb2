// Package mailctx imports the email thread a draft is written against.
// Plain text passes through as-is; PDF attachments go through text
// extraction so a forwarded quote or contract can be used directly.
package mailctx

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

// maxContextBytes caps imported context. Email threads fit comfortably; the
// cap guards against someone pointing the importer at a book.
const maxContextBytes = 200_000

const clipMarker = "\n\n[... context truncated ...]"

// Load reads the file at path into email-context text. ".pdf" extracts the
// plain text; every other extension is treated as UTF-8 text.
func Load(path string) (string, error) {
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		return loadPDF(path)
	}
	return loadText(path)
}

func loadText(path string) (string, error) {
	data, err := readFileCapped(path)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%s is not UTF-8 text; only text and PDF files can be imported", filepath.Base(path))
	}
	return clip(strings.TrimSpace(string(data))), nil
}

func loadPDF(path string) (string, error) {
	file, reader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open pdf: %w", err)
	}
	defer file.Close()

	content, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("failed to extract pdf text: %w", err)
	}
	var builder strings.Builder
	if _, err := io.Copy(&builder, content); err != nil {
		return "", err
	}
	text := strings.TrimSpace(builder.String())
	if text == "" {
		return "", fmt.Errorf("%s contains no extractable text", filepath.Base(path))
	}
	return clip(text), nil
}

// readFileCapped reads a little past the cap so clip can tell truncation
// happened without slurping arbitrarily large files.
func readFileCapped(path string) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return io.ReadAll(io.LimitReader(file, maxContextBytes+1))
}

func clip(text string) string {
	if len(text) <= maxContextBytes {
		return text
	}
	cut := maxContextBytes
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut] + clipMarker
}
