package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/haggle/core"
	"github.com/hupe1980/haggle/internal/testutil"
)

func openStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(filepath.Join(t.TempDir(), "rooms.db"))
	require.NoError(t, err)

	t.Cleanup(func() { store.Close() })

	return store
}

func buildRoom() *core.Room {
	return testutil.NewRoomBuilder().
		Item("Laptop", 2, 500, 900).
		Seller("seller_1", "TechStore", testutil.Item("Laptop", 400, 550, 800, 10)).
		Seller("seller_2", "GadgetHub", testutil.Item("Laptop", 420, 560, 820, 10)).
		MaxRounds(5).
		Build()
}

func TestSQLiteStore(t *testing.T) {
	ctx := context.Background()

	t.Run("round trips a fresh room", func(t *testing.T) {
		store := openStore(t)

		room := buildRoom()
		require.NoError(t, store.Create(ctx, room))

		got, err := store.Get(ctx, room.ID)
		require.NoError(t, err)

		assert.Equal(t, room.ID, got.ID)
		assert.Equal(t, room.BuyerName, got.BuyerName)
		assert.Equal(t, core.RoomStatusPending, got.Status())
		assert.Equal(t, 5, got.MaxRounds)
		assert.Len(t, got.Sellers, 2)
		assert.Equal(t, room.Constraints, got.Constraints)
	})

	t.Run("create rejects duplicates", func(t *testing.T) {
		store := openStore(t)

		room := buildRoom()
		require.NoError(t, store.Create(ctx, room))
		assert.Error(t, store.Create(ctx, room))
	})

	t.Run("get unknown id", func(t *testing.T) {
		store := openStore(t)

		_, err := store.Get(ctx, "missing")

		assert.ErrorIs(t, err, core.ErrRoomNotFound)
	})

	t.Run("save persists lifecycle and conversation", func(t *testing.T) {
		store := openStore(t)

		room := buildRoom()
		require.NoError(t, store.Create(ctx, room))

		require.NoError(t, room.Begin())

		_, err := room.AdvanceRound()
		require.NoError(t, err)

		room.Conversation.Append(core.NewBuyerMessage(1, room.BuyerID, room.BuyerName, "Who can do $700?", nil, room.SellerIDs()))
		room.Conversation.Append(core.NewSellerMessage(1, "seller_1", "TechStore", room.BuyerID, "I can.", &core.Offer{Price: 700, Quantity: 2}))

		require.NoError(t, store.Save(ctx, room))

		got, err := store.Get(ctx, room.ID)
		require.NoError(t, err)

		assert.Equal(t, core.RoomStatusActive, got.Status())
		assert.Equal(t, 1, got.CurrentRound())
		require.Equal(t, 2, got.Conversation.Len())

		offers := got.Conversation.StandingOffers()
		require.Len(t, offers, 1)
		assert.Equal(t, 700.0, offers[0].Offer.Price)
	})

	t.Run("save requires an existing room", func(t *testing.T) {
		store := openStore(t)

		assert.ErrorIs(t, store.Save(ctx, buildRoom()), core.ErrRoomNotFound)
	})

	t.Run("outcome survives the round trip", func(t *testing.T) {
		store := openStore(t)

		room := buildRoom()
		require.NoError(t, store.Create(ctx, room))

		require.NoError(t, room.Begin())

		_, err := room.AdvanceRound()
		require.NoError(t, err)

		_, err = room.Complete(core.Decision{
			SellerID:   "seller_1",
			SellerName: "TechStore",
			Offer:      core.Offer{Price: 700, Quantity: 2},
			Reason:     "Buyer accepted offer from TechStore: $700.00 per unit",
		})
		require.NoError(t, err)

		require.NoError(t, store.Save(ctx, room))

		got, err := store.Get(ctx, room.ID)
		require.NoError(t, err)

		assert.Equal(t, core.RoomStatusCompleted, got.Status())

		outcome := got.Outcome()
		require.NotNil(t, outcome)
		assert.Equal(t, "seller_1", outcome.SelectedSellerID)
		require.NotNil(t, outcome.FinalOffer)
		assert.Equal(t, 700.0, outcome.FinalOffer.Price)
	})

	t.Run("transcript reads the message mirror", func(t *testing.T) {
		store := openStore(t)

		room := buildRoom()
		require.NoError(t, store.Create(ctx, room))

		room.Conversation.Append(core.NewBuyerMessage(1, room.BuyerID, room.BuyerName, "Opening bid.", nil, room.SellerIDs()))
		room.Conversation.Append(core.NewSellerMessage(1, "seller_2", "GadgetHub", room.BuyerID, "Counter.", &core.Offer{Price: 720, Quantity: 2}))

		require.NoError(t, store.Save(ctx, room))

		messages, err := store.Transcript(ctx, room.ID)
		require.NoError(t, err)
		require.Len(t, messages, 2)

		assert.Equal(t, core.BuyerMessageID(1), messages[0].ID)
		assert.Nil(t, messages[0].Offer)

		assert.Equal(t, core.SellerMessageID(1, "seller_2"), messages[1].ID)
		require.NotNil(t, messages[1].Offer)
		assert.Equal(t, 720.0, messages[1].Offer.Price)
	})

	t.Run("list orders newest first", func(t *testing.T) {
		store := openStore(t)

		first := buildRoom()
		require.NoError(t, store.Create(ctx, first))

		second := buildRoom()
		require.NoError(t, store.Create(ctx, second))

		rooms, err := store.List(ctx)
		require.NoError(t, err)
		require.Len(t, rooms, 2)

		assert.False(t, rooms[0].Created.Before(rooms[1].Created))
	})

	t.Run("delete removes every trace", func(t *testing.T) {
		store := openStore(t)

		room := buildRoom()
		require.NoError(t, store.Create(ctx, room))

		room.Conversation.Append(core.NewBuyerMessage(1, room.BuyerID, room.BuyerName, "Opening bid.", nil, room.SellerIDs()))
		require.NoError(t, store.Save(ctx, room))

		require.NoError(t, store.Delete(ctx, room.ID))

		_, err := store.Get(ctx, room.ID)
		assert.ErrorIs(t, err, core.ErrRoomNotFound)

		messages, err := store.Transcript(ctx, room.ID)
		require.NoError(t, err)
		assert.Empty(t, messages)

		assert.ErrorIs(t, store.Delete(ctx, room.ID), core.ErrRoomNotFound)
	})
}
