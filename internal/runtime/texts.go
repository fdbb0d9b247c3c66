package runtime

// Texts are the participant-visible fallbacks used by blocks.
type Texts struct {
	// DefaultMessage replaces missing text on message and input blocks.
	DefaultMessage string
	// DefaultMenu replaces missing text on menu blocks.
	DefaultMenu string
	// DeliveryFailed prefixes the notice sent when content cannot be delivered.
	DeliveryFailed string
}

// DefaultTexts returns the built-in English texts.
func DefaultTexts() Texts {
	return Texts{
		DefaultMessage: "Message",
		DefaultMenu:    "Menu:",
		DeliveryFailed: "⚠️ Failed to send message",
	}
}

func (t Texts) merge(override Texts) Texts {
	if override.DefaultMessage != "" {
		t.DefaultMessage = override.DefaultMessage
	}
	if override.DefaultMenu != "" {
		t.DefaultMenu = override.DefaultMenu
	}
	if override.DeliveryFailed != "" {
		t.DeliveryFailed = override.DeliveryFailed
	}
	return t
}
