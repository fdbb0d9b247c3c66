package botengine

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/KIIGIN/bot-constructor/pkg/domain"
)

// UpdateHandler processes one inbound event for a webhook.
type UpdateHandler interface {
	Handle(ctx context.Context, webhookToken string, ev domain.Event) error
}

// ButtonFinder maps typed input to a button currently shown to the participant.
type ButtonFinder interface {
	Button(input string) (buttonID string, messageID int, ok bool)
}

// Runner drives a scenario from line-oriented input, playing the part of
// a single chat participant. Lines naming a visible button become clicks,
// anything else is sent as text.
type Runner struct {
	Input    io.Reader
	Output   io.Writer
	Headless bool

	ParticipantID int64
	ChatID        int64
	SenderName    string
}

// NewRunner creates a Runner for participant 1 in chat 1.
// Input and Output must be set before Run.
func NewRunner() *Runner {
	return &Runner{
		ParticipantID: 1,
		ChatID:        1,
		SenderName:    "console",
	}
}

// Run reads lines until EOF, "exit" or "quit", handing each one to handler.
// Handler errors are printed and do not stop the loop.
func (r *Runner) Run(ctx context.Context, handler UpdateHandler, webhookToken string, buttons ButtonFinder) error {
	if r.Input == nil {
		return fmt.Errorf("input reader must be set (use os.Stdin)")
	}
	if r.Output == nil {
		return fmt.Errorf("output writer must be set (use os.Stdout)")
	}
	lineReader := bufio.NewReader(r.Input)

	if !r.Headless {
		fmt.Fprintln(r.Output, "--- botengine simulator (type /start, exit to quit) ---")
	}

	updateID := 0
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !r.Headless {
			fmt.Fprint(r.Output, "> ")
		}

		text, err := lineReader.ReadString('\n')
		if err != nil && err != io.EOF {
			return fmt.Errorf("input error: %w", err)
		}
		eof := err == io.EOF
		input := strings.TrimSpace(text)

		if input == "exit" || input == "quit" {
			fmt.Fprintln(r.Output, "Bye!")
			return nil
		}
		if input != "" {
			updateID++
			ev := r.event(updateID, input, buttons)
			if err := handler.Handle(ctx, webhookToken, ev); err != nil {
				fmt.Fprintf(r.Output, "error: %v\n", err)
			}
		}
		if eof {
			return nil
		}
	}
}

func (r *Runner) event(updateID int, input string, buttons ButtonFinder) domain.Event {
	if buttons != nil {
		if id, msgID, ok := buttons.Button(input); ok {
			return domain.Event{
				UpdateID: updateID,
				Click: &domain.ButtonClick{
					CallbackID: fmt.Sprintf("console-%d", updateID),
					ButtonID:   id,
					SenderID:   r.ParticipantID,
					SenderName: r.SenderName,
					ChatID:     r.ChatID,
					MessageID:  msgID,
				},
			}
		}
	}
	return domain.Event{
		UpdateID: updateID,
		Text: &domain.TextMessage{
			MessageID:  updateID,
			Text:       input,
			SenderID:   r.ParticipantID,
			SenderName: r.SenderName,
			ChatID:     r.ChatID,
		},
	}
}
