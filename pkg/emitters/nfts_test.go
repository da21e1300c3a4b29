package emitters

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tracelake/evmetl/internal/tests"
	"github.com/tracelake/evmetl/pkg/protocols"
	"github.com/tracelake/evmetl/pkg/protocols/nftmarkets"
	"github.com/tracelake/evmetl/pkg/tables"
)

func Test_EmitNfts_SeaportExpandsItems(t *testing.T) {
	e := newTestEmitter()
	acc := tables.New()

	events := &protocols.Events{
		Protocol: nftmarkets.ProtocolName,
		Transactions: []*protocols.Transaction{{
			Hash:  tests.Hash(0x10),
			From:  tests.Addr(0x01),
			To:    tests.Addr(0xe5),
			Index: 0,
			Logs: []*protocols.DecodedLog{{
				Address: tests.Addr(0xe5),
				Index:   0,
				Event:   "OrderFulfilled",
				Payload: &nftmarkets.SeaportOrderFulfilled{
					OrderHash: tests.Hash(0x77),
					Offerer:   tests.Addr(0x01),
					Recipient: tests.Addr(0x02),
					Offer: []nftmarkets.SpentItem{
						{ItemType: 2, Token: tests.Addr(0xc0), Identifier: "55", Amount: "1"},
					},
					Consideration: []nftmarkets.ReceivedItem{
						{ItemType: 0, Identifier: "0", Amount: "1000000", Recipient: tests.Addr(0x01)},
						{ItemType: 0, Identifier: "0", Amount: "25000", Recipient: tests.Addr(0x09)},
					},
				},
			}},
		}},
	}

	err := e.EmitNfts(tests.NewBlock(100), events, acc)
	assert.Nil(t, err)

	rows := acc.RowsFor("nft_fills")
	assert.Equal(t, 3, len(rows))

	// Key extension keeps the expanded rows unique.
	seen := make(map[string]bool)
	for _, row := range rows {
		side, _ := row.Keys.Get("side")
		idx, _ := row.Keys.Get("item_index")
		assert.False(t, seen[side+idx])
		seen[side+idx] = true
	}
}
