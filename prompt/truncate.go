package prompt

import "github.com/hupe1980/haggle/core"

const (
	// TurnHistoryMaxMessages bounds the history context of buyer and
	// seller turns.
	TurnHistoryMaxMessages = 10
	// TurnHistoryMaxChars bounds the history character budget of buyer
	// and seller turns.
	TurnHistoryMaxChars = 4000
	// DecisionHistoryMaxMessages bounds the history context of decision
	// classification.
	DecisionHistoryMaxMessages = 5
	// DecisionHistoryMaxChars bounds the history character budget of
	// decision classification.
	DecisionHistoryMaxChars = 2000
)

// TruncateHistory bounds a conversation history to at most maxMessages
// recent messages whose combined content stays within maxChars. The most
// recent message is always kept, even when it alone exceeds the character
// budget. A non-positive limit disables the corresponding bound.
func TruncateHistory(messages []core.Message, maxMessages, maxChars int) []core.Message {
	if maxMessages > 0 && len(messages) > maxMessages {
		messages = messages[len(messages)-maxMessages:]
	}

	if maxChars <= 0 || len(messages) == 0 {
		return messages
	}

	total := 0
	start := 0

	for i := len(messages) - 1; i >= 0; i-- {
		total += len(messages[i].Content)

		if total > maxChars {
			start = i + 1
			break
		}
	}

	if start >= len(messages) {
		start = len(messages) - 1
	}

	return messages[start:]
}
