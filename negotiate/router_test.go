package negotiate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hupe1980/haggle/core"
)

func TestRouteSellers(t *testing.T) {
	sellers := []core.Seller{
		{ID: "seller_1", Name: "TechStore"},
		{ID: "seller_2", Name: "GadgetHub"},
		{ID: "seller_3", Name: "ByteMart"},
	}

	t.Run("no mentions routes to everyone", func(t *testing.T) {
		responding := RouteSellers(nil, sellers)

		assert.Equal(t, sellers, responding)
	})

	t.Run("mentions route to the named subset", func(t *testing.T) {
		responding := RouteSellers([]string{"seller_3", "seller_1"}, sellers)

		ids := make([]string, 0, len(responding))
		for _, s := range responding {
			ids = append(ids, s.ID)
		}

		// Roster order wins over mention order.
		assert.Equal(t, []string{"seller_1", "seller_3"}, ids)
	})

	t.Run("unknown mentions resolve to nobody", func(t *testing.T) {
		responding := RouteSellers([]string{"seller_99"}, sellers)

		assert.Empty(t, responding)
	})

	t.Run("result is a copy", func(t *testing.T) {
		responding := RouteSellers(nil, sellers)

		responding[0].Name = "changed"

		assert.Equal(t, "TechStore", sellers[0].Name)
	})

	t.Run("empty roster", func(t *testing.T) {
		assert.Empty(t, RouteSellers(nil, nil))
		assert.Empty(t, RouteSellers([]string{"seller_1"}, nil))
	})
}
