package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/rewind/internal/cli"
	"github.com/aretw0/rewind/internal/settings"
	"github.com/aretw0/rewind/pkg/domain"
	"github.com/aretw0/rewind/pkg/loader"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "rewind",
	Short: "rewind is a finite state machine with undo/redo history",
	Long: `rewind loads a state machine definition (YAML or JSON) and lets you drive it
interactively, validate it, or expose it over HTTP and MCP.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("env-file", "", "Dotenv file to read REWIND_* settings from (default .env)")
	rootCmd.PersistentFlags().String("store", "", "Session store: memory, file or redis (overrides REWIND_STORE)")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
}

// environment resolves settings and the logger, applying flag overrides.
func environment(cmd *cobra.Command) (settings.Settings, *slog.Logger, error) {
	envFile, _ := cmd.Flags().GetString("env-file")
	var files []string
	if envFile != "" {
		files = append(files, envFile)
	}
	s, err := settings.Load(files...)
	if err != nil {
		return s, nil, err
	}

	if store, _ := cmd.Flags().GetString("store"); store != "" {
		s.Store = store
		if err := s.Validate(); err != nil {
			return s, nil, err
		}
	}
	if cmd.Flags().Changed("port") {
		s.Port, _ = cmd.Flags().GetInt("port")
	}

	debug, _ := cmd.Flags().GetBool("debug")
	return s, cli.NewLogger(s, debug), nil
}

// loadDefinition reads a definition file strictly.
func loadDefinition(path string) (*domain.Config, error) {
	return loader.LoadFile(path, loader.Strict())
}
