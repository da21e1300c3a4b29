// Package erc721 decodes ERC-721 transfer and approval events.
package erc721

import (
	"go.uber.org/zap"

	"github.com/tracelake/evmetl/internal/metrics"
	"github.com/tracelake/evmetl/pkg/chaindata"
	"github.com/tracelake/evmetl/pkg/evmabi"
	"github.com/tracelake/evmetl/pkg/protocols"
)

const ProtocolName = "erc721"

type Transfer struct {
	From    []byte
	To      []byte
	TokenId string
}

type Approval struct {
	Owner    []byte
	Approved []byte
	TokenId  string
}

type ApprovalForAll struct {
	Owner    []byte
	Operator []byte
	Approved bool
}

var (
	transferEvent = evmabi.MustEvent("Transfer",
		evmabi.Field{Name: "from", Type: "address", Indexed: true},
		evmabi.Field{Name: "to", Type: "address", Indexed: true},
		evmabi.Field{Name: "tokenId", Type: "uint256", Indexed: true},
	)
	approvalEvent = evmabi.MustEvent("Approval",
		evmabi.Field{Name: "owner", Type: "address", Indexed: true},
		evmabi.Field{Name: "approved", Type: "address", Indexed: true},
		evmabi.Field{Name: "tokenId", Type: "uint256", Indexed: true},
	)
	approvalForAllEvent = evmabi.MustEvent("ApprovalForAll",
		evmabi.Field{Name: "owner", Type: "address", Indexed: true},
		evmabi.Field{Name: "operator", Type: "address", Indexed: true},
		evmabi.Field{Name: "approved", Type: "bool"},
	)
)

var Registry = protocols.NewRegistry(ProtocolName,
	protocols.Handler{Event: transferEvent, Decode: decodeTransfer},
	protocols.Handler{Event: approvalEvent, Decode: decodeApproval},
	protocols.Handler{Event: approvalForAllEvent, Decode: decodeApprovalForAll},
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
	tokenId, err := evmabi.AsBig(m, "tokenId")
	if err != nil {
		return nil, err
	}
	return &Transfer{From: from, To: to, TokenId: evmabi.DecimalString(tokenId)}, nil
}

func decodeApproval(ctx *protocols.DecodeCtx, m map[string]interface{}, lg *chaindata.Log) (interface{}, error) {
	owner, err := evmabi.AsAddress(m, "owner")
	if err != nil {
		return nil, err
	}
	approved, err := evmabi.AsAddress(m, "approved")
	if err != nil {
		return nil, err
	}
	tokenId, err := evmabi.AsBig(m, "tokenId")
	if err != nil {
		return nil, err
	}
	return &Approval{Owner: owner, Approved: approved, TokenId: evmabi.DecimalString(tokenId)}, nil
}

func decodeApprovalForAll(ctx *protocols.DecodeCtx, m map[string]interface{}, lg *chaindata.Log) (interface{}, error) {
	owner, err := evmabi.AsAddress(m, "owner")
	if err != nil {
		return nil, err
	}
	operator, err := evmabi.AsAddress(m, "operator")
	if err != nil {
		return nil, err
	}
	approved, err := evmabi.AsBool(m, "approved")
	if err != nil {
		return nil, err
	}
	return &ApprovalForAll{Owner: owner, Operator: operator, Approved: approved}, nil
}
