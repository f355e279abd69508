package main

import (
	"os"

	"github.com/aretw0/rewind/internal/cli"
	"github.com/aretw0/rewind/internal/presentation/tui"
	"github.com/aretw0/rewind/pkg/loader"
	"github.com/spf13/cobra"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run <file>",
	Short: "Drive a machine interactively",
	Long: `Starts a REPL over the machine defined in <file>. With --session the machine is
resumed from and saved to the configured store after every change.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, logger, err := environment(cmd)
		if err != nil {
			return err
		}
		cfg, err := loadDefinition(args[0])
		if err != nil {
			return err
		}

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		sessionID, _ := cmd.Flags().GetString("session")
		headless, _ := cmd.Flags().GetBool("headless")

		opts := cli.RunOptions{
			Config:       cfg,
			Name:         loader.NameOf(args[0]),
			SessionID:    sessionID,
			Logger:       logger,
			Input:        cmd.InOrStdin(),
			Output:       cmd.OutOrStdout(),
			Headless:     headless,
			Interactive:  !headless && tui.IsTerminal(os.Stdout),
			MaxInputSize: s.MaxInputSize,
		}
		if sessionID != "" {
			backend, err := cli.OpenBackend(ctx, s)
			if err != nil {
				return err
			}
			defer backend.Close()
			opts.Backend = backend
		}
		return cli.RunREPL(ctx, opts)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().String("session", "", "Session ID to resume and persist")
	runCmd.Flags().Bool("headless", false, "Run in headless mode (no banner or prompts)")
}
