package visibility

import (
	"github.com/hupe1980/haggle/core"
)

// Filter returns the messages visible to the given participant,
// preserving their original order. Messages without an explicit
// visibility set are treated as public.
func Filter(messages []core.Message, participantID string) []core.Message {
	visible := make([]core.Message, 0, len(messages))

	for _, msg := range messages {
		if msg.VisibleTo(participantID) {
			visible = append(visible, msg)
		}
	}

	return visible
}
