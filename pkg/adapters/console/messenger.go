// Package console renders outbound bot actions as plain text, for driving
// scenarios from a terminal.
package console

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/KIIGIN/bot-constructor/pkg/domain"
	"github.com/KIIGIN/bot-constructor/pkg/ports"
)

// Messenger implements ports.Messenger on an io.Writer. It remembers the
// keyboards it printed so typed captions can be turned back into clicks.
type Messenger struct {
	mu        sync.Mutex
	out       io.Writer
	nextID    int
	keyboards map[int][]domain.Button
	lastKB    int
	render    func(string) string
}

// Option configures the Messenger.
type Option func(*Messenger)

// WithRenderer formats outgoing HTML text before it is printed.
func WithRenderer(render func(string) string) Option {
	return func(m *Messenger) {
		if render != nil {
			m.render = render
		}
	}
}

// New creates a Messenger writing to out. Text is printed as sent unless a
// renderer is configured.
func New(out io.Writer, opts ...Option) *Messenger {
	m := &Messenger{
		out:       out,
		keyboards: make(map[int][]domain.Button),
		render:    func(s string) string { return s },
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Factory returns a factory handing out m for every bot token.
func (m *Messenger) Factory() ports.MessengerFactory {
	return ports.MessengerFactoryFunc(func(context.Context, string) (ports.Messenger, error) {
		return m, nil
	})
}

func (m *Messenger) SendText(_ context.Context, _ int64, text string, kb *domain.Keyboard) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	id := m.nextID
	fmt.Fprintf(m.out, "bot: %s\n", m.render(text))
	if kb != nil {
		var buttons []domain.Button
		for _, row := range kb.Rows {
			for _, b := range row {
				fmt.Fprintf(m.out, "  [%s] %s\n", b.ID, b.Text)
				buttons = append(buttons, b)
			}
		}
		m.keyboards[id] = buttons
		m.lastKB = id
	}
	return id, nil
}

func (m *Messenger) SendMedia(_ context.Context, _ int64, caption string, attachments []domain.Attachment, mode domain.MediaMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	fmt.Fprintf(m.out, "bot: %s\n", m.render(caption))
	for _, a := range attachments {
		name := a.Filename
		if name == "" {
			name = a.URL
		}
		fmt.Fprintf(m.out, "  (%s) %s %s\n", mode, name, a.ContentType)
	}
	return nil
}

// ClearKeyboard forgets the buttons of a message. Unknown ids report
// domain.ErrMessageGone, as Telegram does for deleted messages.
func (m *Messenger) ClearKeyboard(_ context.Context, _ int64, messageID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.keyboards[messageID]; !ok {
		return fmt.Errorf("message %d: %w", messageID, domain.ErrMessageGone)
	}
	delete(m.keyboards, messageID)
	if m.lastKB == messageID {
		m.lastKB = 0
	}
	return nil
}

func (m *Messenger) AnswerCallback(_ context.Context, _, text string) error {
	if text == "" {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	fmt.Fprintf(m.out, "bot (notice): %s\n", text)
	return nil
}

// Close is a no-op; the same Messenger serves the whole session.
func (m *Messenger) Close() error { return nil }

// Button matches input against the id or caption of a button on the most
// recent keyboard still shown. Captions compare case-insensitively.
func (m *Messenger) Button(input string) (buttonID string, messageID int, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	input = strings.TrimSpace(input)
	for _, b := range m.keyboards[m.lastKB] {
		if b.ID == input || strings.EqualFold(b.Text, input) {
			return b.ID, m.lastKB, true
		}
	}
	return "", 0, false
}
