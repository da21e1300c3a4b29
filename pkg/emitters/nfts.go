package emitters

import (
	"strconv"

	"github.com/tracelake/evmetl/pkg/chaindata"
	"github.com/tracelake/evmetl/pkg/protocols"
	"github.com/tracelake/evmetl/pkg/protocols/nftmarkets"
	"github.com/tracelake/evmetl/pkg/tables"
)

// EmitNfts renders marketplace fill rows. Seaport fills expand into one
// row per offer/consideration item; the older markets emit one row per
// fill with the clearing price.
func (e *Emitter) EmitNfts(block *chaindata.Block, events *protocols.Events, t *tables.Tables) error {
	if events == nil || len(events.Transactions) == 0 {
		return nil
	}
	env, err := e.relationalEnvelope(block)
	if err != nil {
		return err
	}
	for _, tx := range events.Transactions {
		for _, lg := range tx.Logs {
			switch p := lg.Payload.(type) {
			case *nftmarkets.SeaportOrderFulfilled:
				if err := e.emitSeaportFill(block, tx, lg, p, env, t); err != nil {
					return err
				}
			case *nftmarkets.LooksRareTakerBid:
				key, err := e.logKey(block, tx.Index, lg.Index)
				if err != nil {
					return err
				}
				cols := append(append(e.envelope(tx, lg), env...),
					"market", "looksrare",
					"side", "taker_bid",
					"order_hash", e.id(p.OrderHash),
					"order_nonce", p.OrderNonce,
					"taker", e.addr(p.Taker),
					"maker", e.addr(p.Maker),
					"strategy", e.addr(p.Strategy),
					"currency", e.addr(p.Currency),
					"collection", e.addr(p.Collection),
					"token_id", p.TokenId,
					"amount", p.Amount,
					"price", p.Price,
				)
				t.AppendRow("nft_fills", key, tables.Cols(cols...))
			case *nftmarkets.LooksRareTakerAsk:
				key, err := e.logKey(block, tx.Index, lg.Index)
				if err != nil {
					return err
				}
				cols := append(append(e.envelope(tx, lg), env...),
					"market", "looksrare",
					"side", "taker_ask",
					"order_hash", e.id(p.OrderHash),
					"order_nonce", p.OrderNonce,
					"taker", e.addr(p.Taker),
					"maker", e.addr(p.Maker),
					"strategy", e.addr(p.Strategy),
					"currency", e.addr(p.Currency),
					"collection", e.addr(p.Collection),
					"token_id", p.TokenId,
					"amount", p.Amount,
					"price", p.Price,
				)
				t.AppendRow("nft_fills", key, tables.Cols(cols...))
			case *nftmarkets.WyvernOrdersMatched:
				key, err := e.logKey(block, tx.Index, lg.Index)
				if err != nil {
					return err
				}
				cols := append(append(e.envelope(tx, lg), env...),
					"market", "wyvern",
					"buy_hash", e.id(p.BuyHash),
					"sell_hash", e.id(p.SellHash),
					"maker", e.addr(p.Maker),
					"taker", e.addr(p.Taker),
					"price", p.Price,
					"metadata", e.id(p.Metadata),
				)
				t.AppendRow("nft_fills", key, tables.Cols(cols...))
			}
		}
	}
	return nil
}

func (e *Emitter) emitSeaportFill(block *chaindata.Block, tx *protocols.Transaction, lg *protocols.DecodedLog, p *nftmarkets.SeaportOrderFulfilled, env []string, t *tables.Tables) error {
	base := append(append(e.envelope(tx, lg), env...),
		"market", "seaport",
		"order_hash", e.id(p.OrderHash),
		"offerer", e.addr(p.Offerer),
		"zone", e.addr(p.Zone),
		"recipient", e.addr(p.Recipient),
	)
	emitItem := func(side string, i int, itemType uint8, token []byte, identifier, amount string, itemRecipient []byte) error {
		key, err := e.logKey(block, tx.Index, lg.Index)
		if err != nil {
			return err
		}
		key.Set("side", side)
		key.Set("item_index", strconv.Itoa(i))
		cols := append(append([]string{}, base...),
			"side", side,
			"item_index", strconv.Itoa(i),
			"item_type", strconv.FormatUint(uint64(itemType), 10),
			"token", e.addr(token),
			"identifier", identifier,
			"amount", amount,
			"item_recipient", e.addr(itemRecipient),
		)
		t.AppendRow("nft_fills", key, tables.Cols(cols...))
		return nil
	}
	for i, item := range p.Offer {
		if err := emitItem("offer", i, item.ItemType, item.Token, item.Identifier, item.Amount, nil); err != nil {
			return err
		}
	}
	for i, item := range p.Consideration {
		if err := emitItem("consideration", i, item.ItemType, item.Token, item.Identifier, item.Amount, item.Recipient); err != nil {
			return err
		}
	}
	return nil
}
