package intake

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueue(t *testing.T) {
	t.Run("enqueue stamps and stores items in order", func(t *testing.T) {
		q := NewQueue()

		first, err := q.Enqueue(Item{ItemName: "Laptop", MaxBudget: 900, Quantity: 2})
		require.NoError(t, err)
		assert.False(t, first.ReceivedAt.IsZero())

		_, err = q.Enqueue(Item{ItemName: "Phone", MaxBudget: 400})
		require.NoError(t, err)

		assert.Equal(t, 2, q.Len())

		items := q.Snapshot()
		require.Len(t, items, 2)
		assert.Equal(t, "Laptop", items[0].ItemName)
		assert.Equal(t, "Phone", items[1].ItemName)
	})

	t.Run("zero quantity defaults to one", func(t *testing.T) {
		q := NewQueue()

		item, err := q.Enqueue(Item{ItemName: "Phone", MaxBudget: 400})
		require.NoError(t, err)
		assert.Equal(t, 1, item.Quantity)
	})

	t.Run("invalid items are rejected", func(t *testing.T) {
		q := NewQueue()

		_, err := q.Enqueue(Item{MaxBudget: 400})
		assert.Error(t, err)

		_, err = q.Enqueue(Item{ItemName: "Phone", MaxBudget: 0})
		assert.Error(t, err)

		_, err = q.Enqueue(Item{ItemName: "Phone", MaxBudget: 400, Quantity: -1})
		assert.Error(t, err)

		assert.Equal(t, 0, q.Len())
	})

	t.Run("full queue rejects further items", func(t *testing.T) {
		q := NewQueue(func(o *QueueOptions) {
			o.Capacity = 2
		})

		_, err := q.Enqueue(Item{ItemName: "A", MaxBudget: 1})
		require.NoError(t, err)
		_, err = q.Enqueue(Item{ItemName: "B", MaxBudget: 1})
		require.NoError(t, err)

		_, err = q.Enqueue(Item{ItemName: "C", MaxBudget: 1})
		require.ErrorIs(t, err, ErrQueueFull)
		assert.Equal(t, 2, q.Len())
	})

	t.Run("snapshot does not consume", func(t *testing.T) {
		q := NewQueue()

		_, err := q.Enqueue(Item{ItemName: "A", MaxBudget: 1})
		require.NoError(t, err)

		items := q.Snapshot()
		items[0].ItemName = "mutated"

		assert.Equal(t, 1, q.Len())
		assert.Equal(t, "A", q.Snapshot()[0].ItemName)
	})

	t.Run("drain consumes everything", func(t *testing.T) {
		q := NewQueue()

		_, err := q.Enqueue(Item{ItemName: "A", MaxBudget: 1})
		require.NoError(t, err)
		_, err = q.Enqueue(Item{ItemName: "B", MaxBudget: 1})
		require.NoError(t, err)

		items := q.Drain()
		require.Len(t, items, 2)
		assert.Equal(t, 0, q.Len())
		assert.Empty(t, q.Drain())
	})

	t.Run("clear empties the queue", func(t *testing.T) {
		q := NewQueue()

		_, err := q.Enqueue(Item{ItemName: "A", MaxBudget: 1})
		require.NoError(t, err)

		q.Clear()

		assert.Equal(t, 0, q.Len())
	})
}
