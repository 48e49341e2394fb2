package logging

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSetupWritesToRotatingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "robotalk.log")
	closeLog := Setup(path, 1, 1)
	defer func() {
		log.SetOutput(os.Stderr)
	}()

	log.Printf("hello from the test")
	if err := closeLog(); err != nil {
		t.Fatalf("close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "hello from the test") {
		t.Fatalf("log line missing: %q", data)
	}
}

func TestSetupEmptyPathDiscards(t *testing.T) {
	closeLog := Setup("", 0, 0)
	defer log.SetOutput(os.Stderr)

	log.Printf("this goes nowhere")
	if err := closeLog(); err != nil {
		t.Fatalf("close: %v", err)
	}
}
