package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KIIGIN/bot-constructor/internal/presentation/graph"
)

var graphCmd = &cobra.Command{
	Use:   "graph <scenario.json>",
	Short: "Export the scenario as a Mermaid diagram",
	Long:  `Outputs a Mermaid flowchart (graph TD) of the scenario blocks and connections.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		g, err := readScenario(args[0])
		if err != nil {
			return err
		}
		var overlay *graph.GraphOverlay
		if current, _ := cmd.Flags().GetString("current"); current != "" {
			overlay = &graph.GraphOverlay{CurrentBlock: current}
		}
		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(g, overlay))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().String("current", "", "Highlight the block with this id")
}
