package domain

// BlockType is the tag that selects a block's behavior.
type BlockType string

const (
	BlockStart     BlockType = "start"
	BlockMessage   BlockType = "message"
	BlockMenu      BlockType = "menu"
	BlockDelay     BlockType = "delay"
	BlockInputData BlockType = "input_data"
)

// Valid reports whether t is one of the supported block types.
func (t BlockType) Valid() bool {
	switch t {
	case BlockStart, BlockMessage, BlockMenu, BlockDelay, BlockInputData:
		return true
	}
	return false
}

// Block is a node of the scenario graph. Data holds the type-specific payload
// exactly as authored; it is decoded when the scenario is compiled.
type Block struct {
	ID   string         `json:"id" yaml:"id"`
	Type BlockType      `json:"type" yaml:"type"`
	Data map[string]any `json:"data" yaml:"data"`
}

// Endpoint addresses a point on a block.
type Endpoint struct {
	BlockID string `json:"block_id" yaml:"block_id"`
	Point   string `json:"point" yaml:"point"`
}

// Connection links an exit point of one block to an entry point of another.
type Connection struct {
	From Endpoint `json:"from" yaml:"from"`
	To   Endpoint `json:"to" yaml:"to"`
}

// Graph is the declarative scenario document.
type Graph struct {
	Blocks      []Block      `json:"blocks" yaml:"blocks"`
	Connections []Connection `json:"connections" yaml:"connections"`
}

// Block returns the block with the given id.
func (g *Graph) Block(id string) (Block, bool) {
	for _, b := range g.Blocks {
		if b.ID == id {
			return b, true
		}
	}
	return Block{}, false
}

// StartBlock returns the first start block in declaration order.
func (g *Graph) StartBlock() (Block, bool) {
	for _, b := range g.Blocks {
		if b.Type == BlockStart {
			return b, true
		}
	}
	return Block{}, false
}

// Scenario is a compiled-ready scenario bound to a bot.
type Scenario struct {
	ID    string `json:"id" yaml:"id"`
	Name  string `json:"name,omitempty" yaml:"name,omitempty"`
	Graph Graph  `json:"graph" yaml:"graph"`
}

// Button is an inline keyboard button. Its ID doubles as the exit point of the owning block.
type Button struct {
	ID   string `json:"id" mapstructure:"id"`
	Text string `json:"text" mapstructure:"text"`
}

// Keyboard is an inline keyboard laid out in rows.
type Keyboard struct {
	Rows [][]Button
}

// NewColumnKeyboard lays out one button per row.
func NewColumnKeyboard(buttons []Button) *Keyboard {
	if len(buttons) == 0 {
		return nil
	}
	kb := &Keyboard{Rows: make([][]Button, 0, len(buttons))}
	for _, b := range buttons {
		kb.Rows = append(kb.Rows, []Button{b})
	}
	return kb
}

// MediaMode selects how message attachments are delivered.
type MediaMode string

const (
	MediaModeMedia    MediaMode = "media"
	MediaModeDocument MediaMode = "document"
)

// Attachment is a file referenced by a message block.
type Attachment struct {
	URL         string `json:"url" mapstructure:"url"`
	ContentType string `json:"content_type" mapstructure:"content_type"`
	Filename    string `json:"filename" mapstructure:"filename"`
	Size        int64  `json:"size,omitempty" mapstructure:"size"`
}
