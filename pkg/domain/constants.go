package domain

// Connection points shared by every block type.
// Menu buttons use their own identifiers as additional exit points.
const (
	// PointStart is the entry point that triggers a block's on-entry rendering.
	PointStart = "start"
	// PointNext is the generic exit point of immediate blocks.
	PointNext = "next"
	// PointCompleted is the exit point of blocks that finish a unit of work (delay, input).
	PointCompleted = "completed"
)

// MaxButtons is the maximum number of buttons rendered on a keyboard.
const MaxButtons = 10
