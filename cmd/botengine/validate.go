package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KIIGIN/bot-constructor/internal/validator"
)

var validateCmd = &cobra.Command{
	Use:   "validate <scenario.json>",
	Short: "Check a scenario for consistency",
	Long:  `Reports duplicate or unknown blocks, missing start blocks, dangling connections, unreachable blocks and loops that never wait for the participant.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		graph, err := readScenario(args[0])
		if err != nil {
			return err
		}

		report := validator.ValidateGraph(graph)
		out := cmd.OutOrStdout()
		for _, issue := range report.Issues {
			fmt.Fprintln(out, issue)
		}
		if err := report.Err(); err != nil {
			return err
		}
		if len(report.Warnings()) > 0 {
			fmt.Fprintf(out, "Scenario is usable with %d warnings.\n", len(report.Warnings()))
			return nil
		}
		fmt.Fprintln(out, "Scenario is valid! ✅")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
