package negotiate

import (
	"github.com/hupe1980/haggle/core"
)

// RouteSellers decides which sellers must respond this round. When the
// buyer mentioned at least one seller, only those sellers respond;
// otherwise everyone does. Room listing order is preserved either way.
// An empty result means there is no one left to answer and the caller
// must end the negotiation.
func RouteSellers(mentionedIDs []string, sellers []core.Seller) []core.Seller {
	if len(mentionedIDs) == 0 {
		return append([]core.Seller(nil), sellers...)
	}

	mentioned := make(map[string]struct{}, len(mentionedIDs))

	for _, id := range mentionedIDs {
		mentioned[id] = struct{}{}
	}

	responding := make([]core.Seller, 0, len(mentionedIDs))

	for _, seller := range sellers {
		if _, ok := mentioned[seller.ID]; ok {
			responding = append(responding, seller)
		}
	}

	return responding
}
