package testutils

import (
	"context"
	"sync"

	"github.com/KIIGIN/bot-constructor/pkg/domain"
)

// Sent records one outbound call made through FakeMessenger.
type Sent struct {
	Kind        string // text, media, clear, answer
	ChatID      int64
	MessageID   int
	Text        string
	Keyboard    *domain.Keyboard
	Attachments []domain.Attachment
	Mode        domain.MediaMode
	CallbackID  string
}

// FakeMessenger is an in-memory ports.Messenger.
type FakeMessenger struct {
	mu     sync.Mutex
	sent   []Sent
	nextID int
	fails  []error

	// ClearErrs maps message ids to the error ClearKeyboard returns for them.
	ClearErrs map[int]error
	// MediaErr is returned by SendMedia when set.
	MediaErr error
	Closed   bool
}

// NewFakeMessenger creates a messenger whose message ids start at 100.
func NewFakeMessenger() *FakeMessenger {
	return &FakeMessenger{nextID: 100, ClearErrs: make(map[int]error)}
}

// FailNext makes the next n SendText calls return err.
func (f *FakeMessenger) FailNext(n int, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := 0; i < n; i++ {
		f.fails = append(f.fails, err)
	}
}

func (f *FakeMessenger) SendText(_ context.Context, chatID int64, text string, kb *domain.Keyboard) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.fails) > 0 {
		err := f.fails[0]
		f.fails = f.fails[1:]
		f.sent = append(f.sent, Sent{Kind: "failed", ChatID: chatID, Text: text, Keyboard: kb})
		return 0, err
	}
	f.nextID++
	f.sent = append(f.sent, Sent{Kind: "text", ChatID: chatID, MessageID: f.nextID, Text: text, Keyboard: kb})
	return f.nextID, nil
}

func (f *FakeMessenger) SendMedia(_ context.Context, chatID int64, caption string, attachments []domain.Attachment, mode domain.MediaMode) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.MediaErr != nil {
		return f.MediaErr
	}
	f.nextID++
	f.sent = append(f.sent, Sent{Kind: "media", ChatID: chatID, MessageID: f.nextID, Text: caption, Attachments: attachments, Mode: mode})
	return nil
}

func (f *FakeMessenger) ClearKeyboard(_ context.Context, chatID int64, messageID int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, Sent{Kind: "clear", ChatID: chatID, MessageID: messageID})
	return f.ClearErrs[messageID]
}

func (f *FakeMessenger) AnswerCallback(_ context.Context, callbackID, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, Sent{Kind: "answer", CallbackID: callbackID, Text: text})
	return nil
}

func (f *FakeMessenger) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Closed = true
	return nil
}

// Sent returns every recorded call.
func (f *FakeMessenger) Sent() []Sent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Sent(nil), f.sent...)
}

// Of returns the recorded calls of one kind.
func (f *FakeMessenger) Of(kind string) []Sent {
	var out []Sent
	for _, s := range f.Sent() {
		if s.Kind == kind {
			out = append(out, s)
		}
	}
	return out
}

// Texts returns the bodies of successfully sent text messages.
func (f *FakeMessenger) Texts() []string {
	var out []string
	for _, s := range f.Of("text") {
		out = append(out, s.Text)
	}
	return out
}
