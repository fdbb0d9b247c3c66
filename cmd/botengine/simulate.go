package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	botengine "github.com/KIIGIN/bot-constructor"
	"github.com/KIIGIN/bot-constructor/internal/config"
	"github.com/KIIGIN/bot-constructor/internal/presentation/tui"
	"github.com/KIIGIN/bot-constructor/pkg/adapters/console"
	"github.com/KIIGIN/bot-constructor/pkg/adapters/memory"
	"github.com/KIIGIN/bot-constructor/pkg/domain"
	"github.com/KIIGIN/bot-constructor/pkg/ports"
)

const simulateWebhook = "console"

var simulateCmd = &cobra.Command{
	Use:   "simulate <scenario.json>",
	Short: "Play a scenario in the terminal",
	Long: `Drives a scenario from standard input as a single participant. Typing the id or
caption of a shown button clicks it, anything else is sent as a text message.
With --state file the conversation survives restarts.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		graph, err := readScenario(args[0])
		if err != nil {
			return err
		}

		cfg := config.Default()
		cfg.State.Backend, _ = cmd.Flags().GetString("state")
		cfg.State.Dir, _ = cmd.Flags().GetString("dir")
		if cfg.State.Backend != config.BackendMemory && cfg.State.Backend != config.BackendFile {
			return fmt.Errorf("simulate supports the memory and file state backends, got %q", cfg.State.Backend)
		}
		if yes, _ := cmd.Flags().GetStringSlice("yes"); len(yes) > 0 {
			cfg.Validation.YesWords = yes
		}
		if no, _ := cmd.Flags().GetStringSlice("no"); len(no) > 0 {
			cfg.Validation.NoWords = no
		}

		scenarioID := strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
		scenarios := memory.NewScenarios()
		scenarios.Bind(simulateWebhook, &domain.Scenario{ID: scenarioID, Graph: *graph})

		out := cmd.OutOrStdout()
		headless, _ := cmd.Flags().GetBool("headless")
		profile := termenv.Ascii
		if f, ok := out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
			profile = termenv.ColorProfile()
		}
		if !headless {
			tui.PrintBanner(out, profile, botengine.Version)
		}
		messenger := console.New(out, console.WithRenderer(tui.NewRenderer(profile).Render))

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		app, err := botengine.New(ctx, cfg,
			botengine.WithLogger(newLogger(cmd, "warn")),
			botengine.WithScenarios(scenarios),
			botengine.WithTokens(ports.StaticTokens{simulateWebhook: "console"}),
			botengine.WithMessengers(messenger.Factory()),
		)
		if err != nil {
			return err
		}
		defer app.Close()

		runner := botengine.NewRunner()
		runner.Input = cmd.InOrStdin()
		runner.Output = out
		runner.ParticipantID, _ = cmd.Flags().GetInt64("participant")
		runner.ChatID = runner.ParticipantID
		runner.Headless = headless
		return runner.Run(ctx, app.Orchestrator(), simulateWebhook, messenger)
	},
}

func init() {
	rootCmd.AddCommand(simulateCmd)
	simulateCmd.Flags().String("state", config.BackendMemory, "State backend: memory or file")
	simulateCmd.Flags().String("dir", ".botengine/state", "Directory for the file state backend")
	simulateCmd.Flags().Int64("participant", 1, "Participant id to play as")
	simulateCmd.Flags().Bool("headless", false, "Suppress the banner and prompts")
	simulateCmd.Flags().StringSlice("yes", nil, "Words accepted as yes by yes/no fields")
	simulateCmd.Flags().StringSlice("no", nil, "Words accepted as no by yes/no fields")
}
