package main

import (
	"fmt"

	"github.com/aretw0/rewind"
	"github.com/spf13/cobra"
)

var statesCmd = &cobra.Command{
	Use:   "states <file>",
	Short: "List the states of a definition",
	Long:  `Prints every state in declaration order, or only those handling --event.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := rewind.Load(args[0])
		if err != nil {
			return err
		}

		states := m.StatesForEvent()
		if cmd.Flags().Changed("event") {
			event, _ := cmd.Flags().GetString("event")
			states = m.StatesForEvent(event)
		}
		for _, s := range states {
			fmt.Fprintln(cmd.OutOrStdout(), s)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statesCmd)
	statesCmd.Flags().StringP("event", "e", "", "Only list states that handle this event")
}
