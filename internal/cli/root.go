// Package cli wires configuration, storage, capture, and the backend client
// into the robotalk commands. The bare command launches the TUI; subcommands
// cover scriptable checks that do not need a terminal takeover.
package cli

import (
	"fmt"
	"log"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/LegatusConsultingLtd/robotalk/internal/api"
	"github.com/LegatusConsultingLtd/robotalk/internal/capture"
	"github.com/LegatusConsultingLtd/robotalk/internal/config"
	"github.com/LegatusConsultingLtd/robotalk/internal/draft"
	"github.com/LegatusConsultingLtd/robotalk/internal/history"
	"github.com/LegatusConsultingLtd/robotalk/internal/logging"
	"github.com/LegatusConsultingLtd/robotalk/internal/tui"
)

var (
	flagConfig      string
	flagBackendURL  string
	flagNoAltScreen bool
)

// NewRootCmd builds the robotalk command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "robotalk",
		Short:         "Voice-driven email drafting against a Robotalk backend",
		Long:          "Robotalk is a terminal client for drafting email replies by voice:\ndictate an instruction, generate a draft, select text, and apply spoken edits.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI()
		},
	}

	root.PersistentFlags().StringVar(&flagConfig, "config", "", "path to the config file (default "+config.DefaultPath()+")")
	root.PersistentFlags().StringVar(&flagBackendURL, "backend", "", "backend base URL (overrides config)")
	root.Flags().BoolVar(&flagNoAltScreen, "no-alt-screen", false, "disable the alternate screen buffer")

	root.AddCommand(newHealthCmd())
	root.AddCommand(newVersionsCmd())
	return root
}

// Execute runs the command tree and returns the process exit code.
func Execute() int {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Println("robotalk:", err)
		return 1
	}
	return 0
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return config.Config{}, err
	}
	if flagBackendURL != "" {
		cfg.Backend.URL = flagBackendURL
	}
	return cfg, nil
}

func buildClient(cfg config.Config) (*api.Client, error) {
	return api.New(api.Config{BaseURL: cfg.Backend.URL})
}

func buildRepository(cfg config.Config) (history.Repository, func() error, error) {
	if cfg.Storage.Backend == "sqlite" {
		repo, err := history.OpenSQLite(cfg.Storage.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open history database: %w", err)
		}
		return repo, repo.Close, nil
	}
	return history.NewFileRepository(cfg.Storage.Path), func() error { return nil }, nil
}

func buildDevice(cfg config.Config) capture.Device {
	if cfg.Capture.Device == "watch" {
		return capture.NewWatchDevice(cfg.Capture.WatchDir)
	}
	return capture.NewRecorderDevice(cfg.Capture.RecorderCommand)
}

func styleControls(cfg config.Config) draft.StyleControls {
	style := draft.DefaultStyle()
	if cfg.Style.Tone != "" {
		style.Tone = cfg.Style.Tone
	}
	if cfg.Style.Length != "" {
		style.Length = cfg.Style.Length
	}
	if cfg.Style.Detail != "" {
		style.Detail = cfg.Style.Detail
	}
	if cfg.Style.CompanyName != "" {
		style.CompanyName = cfg.Style.CompanyName
	}
	return style
}

func runTUI() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	closeLog := logging.Setup(cfg.Log.File, cfg.Log.MaxSizeMB, cfg.Log.MaxBackups)
	defer closeLog()

	client, err := buildClient(cfg)
	if err != nil {
		return err
	}

	repo, closeRepo, err := buildRepository(cfg)
	if err != nil {
		return err
	}
	defer closeRepo()

	store := history.NewStore(repo)
	device := buildDevice(cfg)
	orchestrator := draft.NewOrchestrator(client, store, styleControls(cfg))

	log.Printf("[cli] starting (backend=%s, storage=%s, device=%s)", cfg.Backend.URL, cfg.Storage.Backend, device.Name())

	opts := []tea.ProgramOption{}
	if !flagNoAltScreen {
		opts = append(opts, tea.WithAltScreen())
	}
	program := tea.NewProgram(
		tui.New(tui.Config{
			Backend:      client,
			Orchestrator: orchestrator,
			Versions:     store,
			Recorder:     capture.NewController(device),
			DeviceName:   device.Name(),
		}),
		opts...,
	)

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("program error: %w", err)
	}
	return nil
}
