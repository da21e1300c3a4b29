package emitters

import (
	"strconv"

	"github.com/tracelake/evmetl/pkg/chaindata"
	"github.com/tracelake/evmetl/pkg/protocols"
	"github.com/tracelake/evmetl/pkg/protocols/erc1155"
	"github.com/tracelake/evmetl/pkg/protocols/erc20"
	"github.com/tracelake/evmetl/pkg/protocols/erc721"
	"github.com/tracelake/evmetl/pkg/tables"
)

// EmitTransfers renders token transfer and approval rows for the ERC-20,
// ERC-721 and ERC-1155 standards. The emitting contract is the log address.
func (e *Emitter) EmitTransfers(block *chaindata.Block, events *protocols.Events, t *tables.Tables) error {
	if events == nil || len(events.Transactions) == 0 {
		return nil
	}
	env, err := e.relationalEnvelope(block)
	if err != nil {
		return err
	}
	for _, tx := range events.Transactions {
		for _, lg := range tx.Logs {
			row := e.transferRowFor(lg)
			if row == nil {
				continue
			}
			key, err := e.logKey(block, tx.Index, lg.Index)
			if err != nil {
				return err
			}
			cols := append(append(e.envelope(tx, lg), env...), row.data...)
			t.AppendRow(row.table, key, tables.Cols(cols...))
		}
	}
	return nil
}

func (e *Emitter) transferRowFor(lg *protocols.DecodedLog) *dexRow {
	switch p := lg.Payload.(type) {
	case *erc20.Transfer:
		return &dexRow{table: "erc20_transfers", data: []string{
			"contract", e.addr(lg.Address),
			"from", e.addr(p.From),
			"to", e.addr(p.To),
			"amount", p.Amount,
		}}
	case *erc20.Approval:
		return &dexRow{table: "erc20_approvals", data: []string{
			"contract", e.addr(lg.Address),
			"owner", e.addr(p.Owner),
			"spender", e.addr(p.Spender),
			"amount", p.Amount,
		}}
	case *erc721.Transfer:
		return &dexRow{table: "erc721_transfers", data: []string{
			"contract", e.addr(lg.Address),
			"from", e.addr(p.From),
			"to", e.addr(p.To),
			"token_id", p.TokenId,
		}}
	case *erc721.Approval:
		return &dexRow{table: "erc721_approvals", data: []string{
			"contract", e.addr(lg.Address),
			"owner", e.addr(p.Owner),
			"approved", e.addr(p.Approved),
			"token_id", p.TokenId,
		}}
	case *erc721.ApprovalForAll:
		return &dexRow{table: "erc721_approvals_for_all", data: []string{
			"contract", e.addr(lg.Address),
			"owner", e.addr(p.Owner),
			"operator", e.addr(p.Operator),
			"approved", boolString(p.Approved),
		}}
	case *erc1155.TransferSingle:
		return &dexRow{table: "erc1155_transfers", data: []string{
			"contract", e.addr(lg.Address),
			"operator", e.addr(p.Operator),
			"from", e.addr(p.From),
			"to", e.addr(p.To),
			"token_id", p.Id,
			"amount", p.Amount,
			"batch_index", "0",
		}}
	case *erc1155.ApprovalForAll:
		return &dexRow{table: "erc1155_approvals_for_all", data: []string{
			"contract", e.addr(lg.Address),
			"account", e.addr(p.Account),
			"operator", e.addr(p.Operator),
			"approved", boolString(p.Approved),
		}}
	case *erc1155.URI:
		return &dexRow{table: "erc1155_uris", data: []string{
			"contract", e.addr(lg.Address),
			"token_id", p.Id,
			"value", p.Value,
		}}
	case *erc1155.TransferBatch:
		// handled below, one row per batch entry
		return nil
	}
	return nil
}

// EmitTransferBatches expands ERC-1155 TransferBatch events into one row
// per (id, amount) entry, disambiguated by batch_index since the log key
// alone would collide.
func (e *Emitter) EmitTransferBatches(block *chaindata.Block, events *protocols.Events, t *tables.Tables) error {
	if events == nil || len(events.Transactions) == 0 {
		return nil
	}
	env, err := e.relationalEnvelope(block)
	if err != nil {
		return err
	}
	for _, tx := range events.Transactions {
		for _, lg := range tx.Logs {
			p, ok := lg.Payload.(*erc1155.TransferBatch)
			if !ok {
				continue
			}
			for i := range p.Ids {
				key, err := e.logKey(block, tx.Index, lg.Index)
				if err != nil {
					return err
				}
				key.Set("batch_index", strconv.Itoa(i))
				cols := append(append(e.envelope(tx, lg), env...),
					"contract", e.addr(lg.Address),
					"operator", e.addr(p.Operator),
					"from", e.addr(p.From),
					"to", e.addr(p.To),
					"token_id", p.Ids[i],
					"amount", p.Amounts[i],
					"batch_index", strconv.Itoa(i),
				)
				t.AppendRow("erc1155_transfers", key, tables.Cols(cols...))
			}
		}
	}
	return nil
}
