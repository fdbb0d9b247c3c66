package domain

// TextMessage is an inbound text sent by a participant.
type TextMessage struct {
	MessageID  int
	Text       string
	SenderID   int64
	SenderName string
	ChatID     int64
}

// ButtonClick is an inbound click on an inline keyboard button.
type ButtonClick struct {
	CallbackID string
	ButtonID   string
	SenderID   int64
	SenderName string
	ChatID     int64
	MessageID  int
}

// Event is the inbound update. Exactly one of Text or Click is set.
type Event struct {
	UpdateID int
	Text     *TextMessage
	Click    *ButtonClick
}

// IsClick reports whether the event is a button click.
func (e Event) IsClick() bool { return e.Click != nil }

// ParticipantID returns the sender identity.
func (e Event) ParticipantID() int64 {
	switch {
	case e.Text != nil:
		return e.Text.SenderID
	case e.Click != nil:
		return e.Click.SenderID
	}
	return 0
}

// ChatID returns the chat the event originates from.
func (e Event) ChatID() int64 {
	switch {
	case e.Text != nil:
		return e.Text.ChatID
	case e.Click != nil:
		return e.Click.ChatID
	}
	return 0
}

// SenderName returns the sender display name, if any.
func (e Event) SenderName() string {
	switch {
	case e.Text != nil:
		return e.Text.SenderName
	case e.Click != nil:
		return e.Click.SenderName
	}
	return ""
}

// Valid reports whether exactly one variant is present.
func (e Event) Valid() bool {
	return (e.Text != nil) != (e.Click != nil)
}
