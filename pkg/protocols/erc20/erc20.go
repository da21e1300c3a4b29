// Package erc20 decodes ERC-20 Transfer and Approval events. The Transfer
// signature hash is shared with ERC-721; the two are told apart by indexed
// arity (ERC-20 carries the value in data, ERC-721 indexes the token id).
package erc20

import (
	"go.uber.org/zap"

	"github.com/tracelake/evmetl/internal/metrics"
	"github.com/tracelake/evmetl/pkg/chaindata"
	"github.com/tracelake/evmetl/pkg/evmabi"
	"github.com/tracelake/evmetl/pkg/protocols"
)

const ProtocolName = "erc20"

type Transfer struct {
	From   []byte
	To     []byte
	Amount string
}

type Approval struct {
	Owner   []byte
	Spender []byte
	Amount  string
}

var (
	transferEvent = evmabi.MustEvent("Transfer",
		evmabi.Field{Name: "from", Type: "address", Indexed: true},
		evmabi.Field{Name: "to", Type: "address", Indexed: true},
		evmabi.Field{Name: "value", Type: "uint256"},
	)
	approvalEvent = evmabi.MustEvent("Approval",
		evmabi.Field{Name: "owner", Type: "address", Indexed: true},
		evmabi.Field{Name: "spender", Type: "address", Indexed: true},
		evmabi.Field{Name: "value", Type: "uint256"},
	)
)

var Registry = protocols.NewRegistry(ProtocolName,
	protocols.Handler{Event: transferEvent, Decode: decodeTransfer},
	protocols.Handler{Event: approvalEvent, Decode: decodeApproval},
)

func Decode(block *chaindata.Block, l *zap.Logger, mc *metrics.MetricsClient) *protocols.Events {
	return Registry.Decode(block, l, mc)
}

func decodeTransfer(ctx *protocols.DecodeCtx, m map[string]interface{}, lg *chaindata.Log) (interface{}, error) {
	from, err := evmabi.AsAddress(m, "from")
	if err != nil {
		return nil, err
	}
	to, err := evmabi.AsAddress(m, "to")
	if err != nil {
		return nil, err
	}
	value, err := evmabi.AsBig(m, "value")
	if err != nil {
		return nil, err
	}
	return &Transfer{From: from, To: to, Amount: evmabi.DecimalString(value)}, nil
}

func decodeApproval(ctx *protocols.DecodeCtx, m map[string]interface{}, lg *chaindata.Log) (interface{}, error) {
	owner, err := evmabi.AsAddress(m, "owner")
	if err != nil {
		return nil, err
	}
	spender, err := evmabi.AsAddress(m, "spender")
	if err != nil {
		return nil, err
	}
	value, err := evmabi.AsBig(m, "value")
	if err != nil {
		return nil, err
	}
	return &Approval{Owner: owner, Spender: spender, Amount: evmabi.DecimalString(value)}, nil
}
