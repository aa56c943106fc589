package agent

import (
	"encoding/json"
	"strings"

	"github.com/hupe1980/haggle/core"
)

// StripThinkTags removes <think>...</think> reasoning blocks that some
// models emit despite instructions. An unclosed block is cut to the end
// of the text.
func StripThinkTags(s string) string {
	for {
		start := strings.Index(s, "<think>")
		if start < 0 {
			break
		}

		rest := s[start:]

		end := strings.Index(rest, "</think>")
		if end < 0 {
			s = s[:start]

			break
		}

		s = s[:start] + rest[end+len("</think>"):]
	}

	return strings.TrimSpace(s)
}

// ParseMentions returns the ids of sellers addressed with @Name in the
// message, in seller listing order. Matching is case-insensitive and
// requires a word boundary after the name, so @Tech does not claim a
// mention of @TechStore and vice versa.
func ParseMentions(content string, sellers []core.Seller) []string {
	lower := strings.ToLower(content)

	var mentioned []string

	for _, seller := range sellers {
		if seller.Name == "" {
			continue
		}

		if mentionsName(lower, strings.ToLower(seller.Name)) {
			mentioned = append(mentioned, seller.ID)
		}
	}

	return mentioned
}

func mentionsName(lowerContent, lowerName string) bool {
	needle := "@" + lowerName

	off := 0

	for {
		idx := strings.Index(lowerContent[off:], needle)
		if idx < 0 {
			return false
		}

		end := off + idx + len(needle)
		if end >= len(lowerContent) || !isWordChar(lowerContent[end]) {
			return true
		}

		off = end
	}
}

func isWordChar(c byte) bool {
	return c == '_' || ('0' <= c && c <= '9') || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

// offerEnvelope mirrors the JSON block sellers are instructed to append
// to their replies.
type offerEnvelope struct {
	Offer *struct {
		Price    float64 `json:"price"`
		Quantity int     `json:"quantity"`
	} `json:"offer"`
}

// ParseOffer extracts the offer JSON block from a seller reply. It
// returns the message with the block removed plus the parsed offer, or
// the trimmed original text and nil when no usable block is present.
// Fenced blocks are preferred; a bare {"offer": ...} object is accepted
// as a fallback.
func ParseOffer(content string) (string, *core.Offer) {
	for _, sp := range fencedSpans(content) {
		body := strings.TrimSpace(content[sp.start+3 : sp.end-3])

		body = strings.TrimSpace(strings.TrimPrefix(body, "json"))

		if offer := decodeOffer(body); offer != nil {
			return strings.TrimSpace(content[:sp.start] + content[sp.end:]), offer
		}
	}

	if start, end, ok := bareOfferSpan(content); ok {
		if offer := decodeOffer(content[start:end]); offer != nil {
			return strings.TrimSpace(content[:start] + content[end:]), offer
		}
	}

	return strings.TrimSpace(content), nil
}

func decodeOffer(candidate string) *core.Offer {
	var env offerEnvelope

	if err := json.Unmarshal([]byte(candidate), &env); err != nil || env.Offer == nil {
		return nil
	}

	if env.Offer.Price <= 0 || env.Offer.Quantity <= 0 {
		return nil
	}

	return &core.Offer{Price: env.Offer.Price, Quantity: env.Offer.Quantity}
}

type fenceSpan struct {
	start, end int
}

// fencedSpans locates paired ``` fences, returned last (and therefore
// most likely to hold the trailing offer block) first.
func fencedSpans(s string) []fenceSpan {
	var spans []fenceSpan

	off := 0

	for {
		open := strings.Index(s[off:], "```")
		if open < 0 {
			break
		}

		open += off

		closing := strings.Index(s[open+3:], "```")
		if closing < 0 {
			break
		}

		closing += open + 3

		spans = append(spans, fenceSpan{start: open, end: closing + 3})

		off = closing + 3
	}

	for i, j := 0, len(spans)-1; i < j; i, j = i+1, j-1 {
		spans[i], spans[j] = spans[j], spans[i]
	}

	return spans
}

// bareOfferSpan finds the last unfenced {"offer": ...} object by
// balancing braces from the opening brace before the "offer" key. The
// block carries only numeric values, so quote-awareness is not needed.
func bareOfferSpan(s string) (int, int, bool) {
	key := strings.LastIndex(s, `"offer"`)
	if key < 0 {
		return 0, 0, false
	}

	start := strings.LastIndexByte(s[:key], '{')
	if start < 0 {
		return 0, 0, false
	}

	depth := 0

	for i := start; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--

			if depth == 0 {
				return start, i + 1, true
			}
		}
	}

	return 0, 0, false
}
