package cli

import (
	"strings"
	"testing"

	"github.com/LegatusConsultingLtd/robotalk/internal/config"
)

func TestStyleControlsOverlayConfig(t *testing.T) {
	cfg := config.Config{}
	cfg.Style.Tone = "friendly"
	cfg.Style.CompanyName = "Radbury Windows Ltd"

	style := styleControls(cfg)
	if style.Tone != "friendly" {
		t.Fatalf("tone = %q", style.Tone)
	}
	if style.CompanyName != "Radbury Windows Ltd" {
		t.Fatalf("company = %q", style.CompanyName)
	}
	// Unset fields keep the backend defaults.
	if style.Length != "same" || style.Detail != "same" {
		t.Fatalf("defaults lost: %+v", style)
	}
}

func TestBuildDeviceSelection(t *testing.T) {
	cfg := config.Config{}
	cfg.Capture.Device = "watch"
	cfg.Capture.WatchDir = "/tmp/inbox"
	if name := buildDevice(cfg).Name(); !strings.HasPrefix(name, "watch") {
		t.Fatalf("device = %q, want a watch device", name)
	}

	cfg.Capture.Device = "recorder"
	if name := buildDevice(cfg).Name(); !strings.HasPrefix(name, "recorder") {
		t.Fatalf("device = %q, want a recorder device", name)
	}
}

func TestRootCommandHasSubcommands(t *testing.T) {
	root := NewRootCmd()
	names := map[string]bool{}
	for _, cmd := range root.Commands() {
		names[cmd.Name()] = true
	}
	if !names["health"] || !names["versions"] {
		t.Fatalf("missing subcommands: %v", names)
	}
}
