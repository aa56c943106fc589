package visibility

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/haggle/core"
)

func TestFilter(t *testing.T) {
	sellerIDs := []string{"seller_1", "seller_2"}

	buyerMsg := core.NewBuyerMessage(1, "buyer_1", "Alice", "Looking for laptops.", nil, sellerIDs)

	offer := &core.Offer{Price: 700, Quantity: 2}

	s1Msg := core.NewSellerMessage(1, "seller_1", "TechStore", "buyer_1", "Can do $700.", offer)

	s2Msg := core.NewSellerMessage(1, "seller_2", "GadgetHub", "buyer_1", "How about $720?", nil)

	history := []core.Message{buyerMsg, s1Msg, s2Msg}

	t.Run("buyer sees everything", func(t *testing.T) {
		visible := Filter(history, "buyer_1")

		require.Len(t, visible, 3)
		assert.Equal(t, buyerMsg.ID, visible[0].ID)
		assert.Equal(t, s1Msg.ID, visible[1].ID)
		assert.Equal(t, s2Msg.ID, visible[2].ID)
	})

	t.Run("seller sees buyer plus own messages only", func(t *testing.T) {
		visible := Filter(history, "seller_1")

		require.Len(t, visible, 2)
		assert.Equal(t, buyerMsg.ID, visible[0].ID)
		assert.Equal(t, s1Msg.ID, visible[1].ID)
	})

	t.Run("unknown participant sees only public messages", func(t *testing.T) {
		public := core.Message{ID: "m_public", Content: "announcement"}

		visible := Filter([]core.Message{public, s1Msg}, "stranger")

		require.Len(t, visible, 1)
		assert.Equal(t, "m_public", visible[0].ID)
	})

	t.Run("empty history", func(t *testing.T) {
		assert.Empty(t, Filter(nil, "buyer_1"))
	})
}
