// Package trigger decides whether inbound text activates a scenario.
package trigger

import (
	"fmt"
	"strings"

	"github.com/KIIGIN/bot-constructor/pkg/domain"
	"github.com/mitchellh/mapstructure"
)

// Type is the kind of a trigger.
type Type string

const (
	// TypeStart matches the literal start command.
	TypeStart Type = "start"
	// TypeKeyWord matches when a keyword is contained in the text.
	TypeKeyWord Type = "key_word"
)

// StartCommand is the command text matched by start triggers.
const StartCommand = "/start"

// Data is the type-specific payload of a trigger.
type Data struct {
	KeyWords []string `mapstructure:"key_words"`
}

// Trigger is an entry condition declared on a start block.
type Trigger struct {
	Type    Type `mapstructure:"type"`
	Enabled bool `mapstructure:"enabled"`
	Data    Data `mapstructure:"data"`
}

type startData struct {
	Triggers []Trigger `mapstructure:"triggers"`
}

// FromBlock decodes the triggers declared on a start block.
func FromBlock(block domain.Block) ([]Trigger, error) {
	var data startData
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &data,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(block.Data); err != nil {
		return nil, fmt.Errorf("decode triggers of block %s: %w", block.ID, err)
	}
	return data.Triggers, nil
}

// Matches reports whether the trigger accepts the text.
func (t Trigger) Matches(text string) bool {
	if text == "" || !t.Enabled {
		return false
	}
	switch t.Type {
	case TypeStart:
		return text == StartCommand
	case TypeKeyWord:
		lower := strings.ToLower(text)
		for _, kw := range t.Data.KeyWords {
			// An empty keyword would be contained in every text.
			if kw == "" {
				continue
			}
			if strings.Contains(lower, strings.ToLower(kw)) {
				return true
			}
		}
	}
	return false
}

// Match reports whether at least one enabled trigger accepts the text.
func Match(triggers []Trigger, text string) bool {
	for _, t := range triggers {
		if t.Matches(text) {
			return true
		}
	}
	return false
}

// MatchBlock decodes the triggers of a start block and matches them against text.
func MatchBlock(block domain.Block, text string) (bool, error) {
	triggers, err := FromBlock(block)
	if err != nil {
		return false, err
	}
	return Match(triggers, text), nil
}
