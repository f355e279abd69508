package main

import (
	"github.com/aretw0/rewind"
	"github.com/aretw0/rewind/internal/cli"
	"github.com/aretw0/rewind/pkg/adapters/mcp"
	"github.com/aretw0/rewind/pkg/observability"
	"github.com/aretw0/rewind/pkg/session"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp <file>",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Exposes sessions of the machine defined in <file> as MCP tools over
Standard Input/Output, so agents can drive the machine and its history.`,
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

		backend, err := cli.OpenBackend(cmd.Context(), s)
		if err != nil {
			return err
		}
		defer backend.Close()

		mgr := session.NewManager(cfg, backend.Store,
			session.WithLocker(backend.Locker),
			session.WithLogger(logger),
			session.WithMachineOptions(
				rewind.WithLifecycleHooks(observability.LoggingHooks(logger)),
				rewind.WithLogger(logger),
			),
		)

		// Logs go to Stderr; Stdout carries JSON-RPC.
		logger.Info("Starting rewind MCP Server (Stdio)...", "file", args[0])
		return mcp.NewServer(mgr, mcp.WithLogger(logger)).ServeStdio()
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
