package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	botengine "github.com/KIIGIN/bot-constructor"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of botengine",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "botengine version %s\n", strings.TrimSpace(botengine.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
