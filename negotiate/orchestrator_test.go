package negotiate

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/haggle/core"
	"github.com/hupe1980/haggle/internal/testutil"
	"github.com/hupe1980/haggle/model"
	"github.com/hupe1980/haggle/wallet"
)

func orchestratorRoom(maxRounds int) *core.Room {
	return testutil.NewRoomBuilder().
		Item("Laptop", 2, 300, 900).
		Seller("seller_1", "TechStore", testutil.Item("Laptop", 400, 550, 800, 10)).
		Seller("seller_2", "GadgetHub", testutil.Item("Laptop", 420, 560, 820, 10)).
		MaxRounds(maxRounds).
		Build()
}

func sellerIDsOf(events []core.Event) []string {
	ids := make([]string, 0, len(events))

	for _, ev := range events {
		ids = append(ids, ev.Data["seller_id"].(string))
	}

	return ids
}

func TestOrchestratorRun(t *testing.T) {
	t.Run("accepted offer completes the room", func(t *testing.T) {
		m := testutil.NewScriptedModel().
			Respond("making a decision about offers", "ACCEPT TechStore").
			Respond("You are TechStore", sellerReply("700")).
			Respond("You are GadgetHub", sellerReply("720")).
			Respond("savvy and experienced buyer", "Can anyone sharpen the price on the Laptop?")

		room := orchestratorRoom(5)

		events := testutil.CollectEvents(t, NewOrchestrator(m).Run(context.Background(), room))

		require.Len(t, events, 12)

		types := testutil.EventTypes(events)

		assert.Equal(t, core.EventTypeHeartbeat, types[0])
		assert.Equal(t, core.EventTypeRoundStart, types[1])
		assert.Equal(t, core.EventTypeBuyerMessage, types[2])
		assert.Equal(t, core.EventTypeSellerResponse, types[3])
		assert.Equal(t, core.EventTypeSellerResponse, types[4])
		assert.Equal(t, core.EventTypeHeartbeat, types[5])
		assert.Equal(t, core.EventTypeRoundStart, types[6])
		assert.Equal(t, core.EventTypeBuyerMessage, types[7])
		assert.Equal(t, core.EventTypeSellerResponse, types[8])
		assert.Equal(t, core.EventTypeSellerResponse, types[9])
		assert.Equal(t, core.EventTypeDecision, types[10])
		assert.Equal(t, core.EventTypeNegotiationComplete, types[11])

		assert.Equal(t, 1, testutil.CountTerminal(events))

		for _, ev := range events {
			assert.Equal(t, room.ID, ev.RoomID)
		}

		// Same-round seller responses arrive in finish order, so only
		// membership is fixed.
		assert.ElementsMatch(t, []string{"seller_1", "seller_2"}, sellerIDsOf(events[3:5]))
		assert.ElementsMatch(t, []string{"seller_1", "seller_2"}, sellerIDsOf(events[8:10]))

		assert.Equal(t, "Negotiation started", events[0].Data["message"])
		assert.Equal(t, 1, events[1].Data["round_number"])
		assert.Equal(t, 5, events[1].Data["max_rounds"])
		assert.Equal(t, "Round 1 complete", events[5].Data["message"])

		decision := events[10]
		assert.Equal(t, "accept", decision.Data["decision"])
		assert.Equal(t, "seller_1", decision.Data["chosen_seller_id"])
		assert.Equal(t, "TechStore", decision.Data["chosen_seller_name"])
		assert.Equal(t, 700.0, decision.Data["final_price"])
		assert.Equal(t, 2, decision.Data["final_quantity"])
		assert.Equal(t, 1400.0, decision.Data["total_cost"])
		assert.Equal(t, 1400.0, decision.Data["effective_total"])
		assert.Nil(t, decision.Data["recommended_card"])

		complete := events[11]
		assert.Equal(t, "seller_1", complete.Data["selected_seller_id"])
		assert.Equal(t, "TechStore", complete.Data["selected_seller_name"])
		assert.Equal(t, core.Offer{Price: 700, Quantity: 2}, complete.Data["final_offer"])
		assert.Equal(t, 2, complete.Data["rounds"])

		assert.Equal(t, core.RoomStatusCompleted, room.Status())

		outcome := room.Outcome()
		require.NotNil(t, outcome)
		assert.Equal(t, "seller_1", outcome.SelectedSellerID)
		assert.Equal(t, 2, outcome.Rounds)
	})

	t.Run("round limit ends without a winner", func(t *testing.T) {
		m := testutil.NewScriptedModel().
			Respond("making a decision about offers", "CONTINUE").
			Respond("You are TechStore", sellerReply("700")).
			Respond("You are GadgetHub", sellerReply("720")).
			Respond("savvy and experienced buyer", "Keep the offers coming.")

		room := orchestratorRoom(2)

		events := testutil.CollectEvents(t, NewOrchestrator(m).Run(context.Background(), room))

		require.NotEmpty(t, events)
		assert.Equal(t, 1, testutil.CountTerminal(events))

		last := events[len(events)-1]
		assert.Equal(t, core.EventTypeNegotiationComplete, last.Type)
		assert.Nil(t, last.Data["selected_seller_id"])
		assert.Nil(t, last.Data["final_offer"])
		assert.Equal(t, "Max rounds reached", last.Data["reason"])
		assert.Equal(t, 2, last.Data["rounds"])

		assert.Equal(t, core.RoomStatusAborted, room.Status())
		require.NotNil(t, room.Outcome())
		assert.Equal(t, "Max rounds reached", room.Outcome().Reason)

		// Two full rounds ran: round starts for 1 and 2, nothing beyond.
		starts := testutil.EventsOfType(events, core.EventTypeRoundStart)
		require.Len(t, starts, 2)
		assert.Equal(t, 1, starts[0].Data["round_number"])
		assert.Equal(t, 2, starts[1].Data["round_number"])
	})

	t.Run("buyer failure aborts with one error event", func(t *testing.T) {
		m := testutil.NewScriptedModel().
			RespondErr("savvy and experienced buyer", errors.New("provider down"))

		room := orchestratorRoom(5)

		events := testutil.CollectEvents(t, NewOrchestrator(m).Run(context.Background(), room))

		types := testutil.EventTypes(events)
		assert.Equal(t, []core.EventType{core.EventTypeHeartbeat, core.EventTypeRoundStart, core.EventTypeError}, types)

		errEvent := events[2]
		assert.Equal(t, 1, errEvent.Data["round"])
		assert.Contains(t, errEvent.Data["error"], "buyer turn failed")
		assert.Contains(t, errEvent.Data["error"], "provider down")

		assert.Equal(t, core.RoomStatusAborted, room.Status())
		require.NotNil(t, room.Outcome())
		assert.Contains(t, room.Outcome().Reason, "buyer turn failed")
	})

	t.Run("mentions route the round to a single seller", func(t *testing.T) {
		m := testutil.NewScriptedModel().
			Respond("You are TechStore", sellerReply("700")).
			Respond("You are GadgetHub", sellerReply("720")).
			Respond("You are ByteMart", sellerReply("710")).
			Respond("savvy and experienced buyer", "@GadgetHub your last offer interests me, can you drop to $650?")

		room := testutil.NewRoomBuilder().
			Item("Laptop", 2, 300, 900).
			Seller("seller_1", "TechStore", testutil.Item("Laptop", 400, 550, 800, 10)).
			Seller("seller_2", "GadgetHub", testutil.Item("Laptop", 420, 560, 820, 10)).
			Seller("seller_3", "ByteMart", testutil.Item("Laptop", 410, 540, 790, 10)).
			MaxRounds(1).
			Build()

		events := testutil.CollectEvents(t, NewOrchestrator(m).Run(context.Background(), room))

		buyerEvents := testutil.EventsOfType(events, core.EventTypeBuyerMessage)
		require.Len(t, buyerEvents, 1)
		assert.Equal(t, []string{"seller_2"}, buyerEvents[0].Data["mentioned_sellers"])

		responses := testutil.EventsOfType(events, core.EventTypeSellerResponse)
		require.Len(t, responses, 1)
		assert.Equal(t, "seller_2", responses[0].Data["seller_id"])

		for _, req := range m.Requests() {
			for _, msg := range req.Messages {
				assert.NotContains(t, msg.Content, "You are TechStore", "unmentioned sellers must not be asked")
				assert.NotContains(t, msg.Content, "You are ByteMart", "unmentioned sellers must not be asked")
			}
		}
	})

	t.Run("seller failures never abort the run", func(t *testing.T) {
		m := testutil.NewScriptedModel().
			Respond("making a decision about offers", "ACCEPT GadgetHub").
			RespondErr("You are TechStore", errors.New("model unavailable")).
			Respond("You are GadgetHub", sellerReply("720")).
			Respond("savvy and experienced buyer", "Who can beat $750?")

		room := orchestratorRoom(5)

		events := testutil.CollectEvents(t, NewOrchestrator(m).Run(context.Background(), room))

		assert.Empty(t, testutil.EventsOfType(events, core.EventTypeError))

		responses := testutil.EventsOfType(events, core.EventTypeSellerResponse)
		require.Len(t, responses, 2, "one response per round, both from the healthy seller")

		for _, ev := range responses {
			assert.Equal(t, "seller_2", ev.Data["seller_id"])
		}

		last := events[len(events)-1]
		assert.Equal(t, core.EventTypeNegotiationComplete, last.Type)
		assert.Equal(t, "seller_2", last.Data["selected_seller_id"])
		assert.Equal(t, core.RoomStatusCompleted, room.Status())
	})

	t.Run("decision failures fall back to continue", func(t *testing.T) {
		m := testutil.NewScriptedModel().
			RespondErr("making a decision about offers", errors.New("classifier down")).
			Respond("You are TechStore", sellerReply("700")).
			Respond("You are GadgetHub", sellerReply("720")).
			Respond("savvy and experienced buyer", "Offers please.")

		room := orchestratorRoom(1)

		orchestrator := NewOrchestrator(m, func(o *OrchestratorOptions) {
			o.MinRounds = 1
		})

		events := testutil.CollectEvents(t, orchestrator.Run(context.Background(), room))

		assert.Empty(t, testutil.EventsOfType(events, core.EventTypeError))

		last := events[len(events)-1]
		assert.Equal(t, core.EventTypeNegotiationComplete, last.Type)
		assert.Equal(t, "Max rounds reached", last.Data["reason"])
	})

	t.Run("exhausted call budget aborts on the buyer turn", func(t *testing.T) {
		m := testutil.NewScriptedModel().
			Respond("You are TechStore", sellerReply("700")).
			Respond("You are GadgetHub", sellerReply("720")).
			Respond("savvy and experienced buyer", "Offers please.")

		room := orchestratorRoom(5)

		orchestrator := NewOrchestrator(m, func(o *OrchestratorOptions) {
			o.MaxModelCalls = 1
		})

		events := testutil.CollectEvents(t, orchestrator.Run(context.Background(), room))

		require.Equal(t, 1, testutil.CountTerminal(events))

		last := events[len(events)-1]
		require.Equal(t, core.EventTypeError, last.Type)
		assert.Contains(t, last.Data["error"], "buyer turn failed")
		assert.Contains(t, last.Data["error"], "model call budget exhausted")
		assert.Equal(t, 2, last.Data["round"])

		assert.Empty(t, testutil.EventsOfType(events, core.EventTypeSellerResponse), "seller turns were over budget")
		assert.Equal(t, core.RoomStatusAborted, room.Status())
	})

	t.Run("panic surfaces as a single error event", func(t *testing.T) {
		m := testutil.NewScriptedModel().
			Respond("You are TechStore", sellerReply("700")).
			Respond("savvy and experienced buyer", "Offers please.")

		room := testutil.NewRoomBuilder().
			Session("sess_1").
			Item("Laptop", 2, 300, 900).
			Seller("seller_1", "TechStore", testutil.Item("Laptop", 400, 550, 800, 10)).
			MaxRounds(5).
			Build()

		orchestrator := NewOrchestrator(m, func(o *OrchestratorOptions) {
			o.WalletStore = &panicWalletStore{}
		})

		events := testutil.CollectEvents(t, orchestrator.Run(context.Background(), room))

		require.Equal(t, 1, testutil.CountTerminal(events))

		last := events[len(events)-1]
		require.Equal(t, core.EventTypeError, last.Type)
		assert.Contains(t, last.Data["error"], "negotiation fault")

		assert.Equal(t, core.RoomStatusAborted, room.Status())
	})

	t.Run("cancellation closes the stream without a terminal event", func(t *testing.T) {
		m := &blockingModel{started: make(chan struct{})}

		room := orchestratorRoom(5)

		ctx, cancel := context.WithCancel(context.Background())

		stream := NewOrchestrator(m).Run(ctx, room)

		<-m.started
		cancel()

		events := testutil.CollectEvents(t, stream)

		assert.Zero(t, testutil.CountTerminal(events))
		assert.Equal(t, core.RoomStatusAborted, room.Status())
		require.NotNil(t, room.Outcome())
		assert.Equal(t, "negotiation cancelled", room.Outcome().Reason)
	})

	t.Run("pinned seed fixes the seller listing order", func(t *testing.T) {
		listing := func() string {
			m := testutil.NewScriptedModel().
				Respond("savvy and experienced buyer", "Offers please.").
				Fallback(sellerReply("700"))

			room := testutil.NewRoomBuilder().
				Item("Laptop", 2, 300, 900).
				Seller("seller_1", "Alpha", testutil.Item("Laptop", 400, 550, 800, 10)).
				Seller("seller_2", "Bravo", testutil.Item("Laptop", 400, 550, 800, 10)).
				Seller("seller_3", "Carol", testutil.Item("Laptop", 400, 550, 800, 10)).
				Seller("seller_4", "Delta", testutil.Item("Laptop", 400, 550, 800, 10)).
				MaxRounds(1).
				Seed(42).
				Build()

			testutil.CollectEvents(t, NewOrchestrator(m).Run(context.Background(), room))

			for _, req := range m.Requests() {
				for _, msg := range req.Messages {
					if idx := strings.Index(msg.Content, "Available Sellers:"); idx >= 0 {
						line := msg.Content[idx:]
						if end := strings.IndexByte(line, '\n'); end >= 0 {
							line = line[:end]
						}

						return line
					}
				}
			}

			t.Fatal("buyer prompt with seller listing not found")

			return ""
		}

		assert.Equal(t, listing(), listing())
	})

	t.Run("terminal room cannot be rerun", func(t *testing.T) {
		m := testutil.NewScriptedModel()

		room := orchestratorRoom(5)
		_, err := room.Abort("done elsewhere")
		require.NoError(t, err)

		events := testutil.CollectEvents(t, NewOrchestrator(m).Run(context.Background(), room))

		require.Len(t, events, 1)
		assert.Equal(t, core.EventTypeError, events[0].Type)
		assert.Zero(t, m.Calls())
	})
}

// panicWalletStore serves its first lookup, then blows up. The first
// lookup lands in an isolated seller goroutine; the second runs on the
// orchestrator goroutine and exercises its panic containment.
type panicWalletStore struct {
	mu    sync.Mutex
	calls int
}

func (p *panicWalletStore) WalletForSession(context.Context, string) (wallet.Wallet, error) {
	p.mu.Lock()
	p.calls++
	n := p.calls
	p.mu.Unlock()

	if n > 1 {
		panic("wallet store corrupted")
	}

	return wallet.Wallet{}, nil
}

func (p *panicWalletStore) AddCard(context.Context, string, wallet.CreditCard) error {
	return nil
}

func (p *panicWalletStore) RemoveCard(context.Context, string, string) error {
	return nil
}

func (p *panicWalletStore) ReplaceWallet(context.Context, string, wallet.Wallet) error {
	return nil
}

// blockingModel parks every call until the context is cancelled.
type blockingModel struct {
	started chan struct{}
	once    sync.Once
}

func (b *blockingModel) Generate(ctx context.Context, _ model.Request) (<-chan model.Response, <-chan error) {
	respCh := make(chan model.Response)
	errCh := make(chan error, 1)

	b.once.Do(func() { close(b.started) })

	go func() {
		defer close(respCh)
		defer close(errCh)

		<-ctx.Done()
		errCh <- ctx.Err()
	}()

	return respCh, errCh
}

func (b *blockingModel) Info() model.Info {
	return model.Info{Name: "blocking", Provider: "testutil"}
}
