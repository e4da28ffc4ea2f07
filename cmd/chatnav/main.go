// chatnav is a terminal navigator for chat session transcripts: a table of
// contents over the turns of a conversation, with animated jump-to-turn
// scrolling, persistent per-turn renames, and optional AI-generated names.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/chatnav/chatnav/internal/config"
	"github.com/chatnav/chatnav/internal/panel"
	"github.com/chatnav/chatnav/internal/renames"
	"github.com/chatnav/chatnav/internal/summarize"
	"github.com/chatnav/chatnav/internal/watch"
)

var version = "0.1.0"

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "chatnav.yaml"
	}
	return filepath.Join(home, ".chatnav", "chatnav.yaml")
}

func main() {
	var (
		configPath     string
		transcriptsDir string
		dbPath         string
	)

	root := &cobra.Command{
		Use:   "chatnav [transcript.jsonl]",
		Short: "Navigate chat transcripts with a live table of contents",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if transcriptsDir != "" {
				cfg.TranscriptsDir = transcriptsDir
			}
			if dbPath != "" {
				cfg.DBPath = dbPath
			}
			if cfg.TranscriptsDir == "" && len(args) == 0 {
				cfg.TranscriptsDir = "."
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return run(cfg, args)
		},
		SilenceUsage: true,
	}
	root.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath(), "path to the config file")
	root.Flags().StringVarP(&transcriptsDir, "transcripts", "t", "", "directory of JSONL transcripts")
	root.Flags().StringVar(&dbPath, "db", "", "path to the rename database")
	root.AddCommand(versionCmd(), configCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, args []string) error {
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}
	store, err := renames.Open(cfg.DBPath)
	if err != nil {
		return err
	}

	var gateway *summarize.Client
	if cfg.Gateway.Endpoint != "" {
		gateway = &summarize.Client{
			Endpoint:  cfg.Gateway.Endpoint,
			APIKey:    cfg.APIKey(),
			Model:     cfg.Gateway.Model,
			ElideMax:  cfg.ElideMaxRunes,
			ElideHalf: cfg.ElideHalfRunes,
		}
	}

	watchDir := cfg.TranscriptsDir
	if watchDir == "" && len(args) == 1 {
		watchDir = filepath.Dir(args[0])
	}
	var watcher *watch.Watcher
	if watchDir != "" {
		watcher, err = watch.New(watchDir, cfg.Debounce())
		if err != nil {
			store.Close()
			return err
		}
	}

	m := panel.NewModel(panel.Options{
		Config:  cfg,
		Store:   store,
		Gateway: gateway,
		Watcher: watcher,
	})
	if len(args) == 1 {
		m.OpenPath(args[0])
	}

	_, runErr := tea.NewProgram(m, tea.WithAltScreen()).Run()
	if closeErr := m.Close(); runErr == nil {
		runErr = closeErr
	}
	return runErr
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the chatnav version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("chatnav " + version)
		},
	}
}

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the chatnav configuration",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Write a default config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := defaultConfigPath()
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("config already exists at %s", path)
			}
			if err := config.DefaultConfig().Save(path); err != nil {
				return err
			}
			fmt.Println("wrote " + path)
			return nil
		},
	})
	return cmd
}
