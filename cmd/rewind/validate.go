package main

import (
	"fmt"

	"github.com/aretw0/rewind/internal/validator"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Check a definition for consistency",
	Long: `Loads the definition and reports unknown or duplicated states and transitions to undeclared targets.
Unreachable states and dead ends are printed as warnings.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadDefinition(args[0])
		if err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
		out := cmd.OutOrStdout()
		for _, w := range validator.Analyze(cfg).Warnings() {
			fmt.Fprintf(out, "warning: %s\n", w)
		}
		fmt.Fprintf(out, "Definition is valid! %d states, initial '%s'\n", len(cfg.States), cfg.Initial)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
