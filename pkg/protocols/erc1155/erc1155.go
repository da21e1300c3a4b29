// Package erc1155 decodes ERC-1155 multi-token events.
package erc1155

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/tracelake/evmetl/internal/metrics"
	"github.com/tracelake/evmetl/pkg/chaindata"
	"github.com/tracelake/evmetl/pkg/evmabi"
	"github.com/tracelake/evmetl/pkg/protocols"
)

const ProtocolName = "erc1155"

type TransferSingle struct {
	Operator []byte
	From     []byte
	To       []byte
	Id       string
	Amount   string
}

type TransferBatch struct {
	Operator []byte
	From     []byte
	To       []byte
	Ids      []string
	Amounts  []string
}

type ApprovalForAll struct {
	Account  []byte
	Operator []byte
	Approved bool
}

type URI struct {
	Value string
	Id    string
}

var (
	transferSingleEvent = evmabi.MustEvent("TransferSingle",
		evmabi.Field{Name: "operator", Type: "address", Indexed: true},
		evmabi.Field{Name: "from", Type: "address", Indexed: true},
		evmabi.Field{Name: "to", Type: "address", Indexed: true},
		evmabi.Field{Name: "id", Type: "uint256"},
		evmabi.Field{Name: "value", Type: "uint256"},
	)
	transferBatchEvent = evmabi.MustEvent("TransferBatch",
		evmabi.Field{Name: "operator", Type: "address", Indexed: true},
		evmabi.Field{Name: "from", Type: "address", Indexed: true},
		evmabi.Field{Name: "to", Type: "address", Indexed: true},
		evmabi.Field{Name: "ids", Type: "uint256[]"},
		evmabi.Field{Name: "values", Type: "uint256[]"},
	)
	approvalForAllEvent = evmabi.MustEvent("ApprovalForAll",
		evmabi.Field{Name: "account", Type: "address", Indexed: true},
		evmabi.Field{Name: "operator", Type: "address", Indexed: true},
		evmabi.Field{Name: "approved", Type: "bool"},
	)
	uriEvent = evmabi.MustEvent("URI",
		evmabi.Field{Name: "value", Type: "string"},
		evmabi.Field{Name: "id", Type: "uint256", Indexed: true},
	)
)

var Registry = protocols.NewRegistry(ProtocolName,
	protocols.Handler{Event: transferSingleEvent, Decode: decodeTransferSingle},
	protocols.Handler{Event: transferBatchEvent, Decode: decodeTransferBatch},
	protocols.Handler{Event: approvalForAllEvent, Decode: decodeApprovalForAll},
	protocols.Handler{Event: uriEvent, Decode: decodeURI},
)

func Decode(block *chaindata.Block, l *zap.Logger, mc *metrics.MetricsClient) *protocols.Events {
	return Registry.Decode(block, l, mc)
}

func decodeTransferSingle(ctx *protocols.DecodeCtx, m map[string]interface{}, lg *chaindata.Log) (interface{}, error) {
	operator, err := evmabi.AsAddress(m, "operator")
	if err != nil {
		return nil, err
	}
	from, err := evmabi.AsAddress(m, "from")
	if err != nil {
		return nil, err
	}
	to, err := evmabi.AsAddress(m, "to")
	if err != nil {
		return nil, err
	}
	id, err := evmabi.AsBig(m, "id")
	if err != nil {
		return nil, err
	}
	value, err := evmabi.AsBig(m, "value")
	if err != nil {
		return nil, err
	}
	return &TransferSingle{
		Operator: operator,
		From:     from,
		To:       to,
		Id:       evmabi.DecimalString(id),
		Amount:   evmabi.DecimalString(value),
	}, nil
}

func decodeTransferBatch(ctx *protocols.DecodeCtx, m map[string]interface{}, lg *chaindata.Log) (interface{}, error) {
	operator, err := evmabi.AsAddress(m, "operator")
	if err != nil {
		return nil, err
	}
	from, err := evmabi.AsAddress(m, "from")
	if err != nil {
		return nil, err
	}
	to, err := evmabi.AsAddress(m, "to")
	if err != nil {
		return nil, err
	}
	ids, err := evmabi.AsBigSlice(m, "ids")
	if err != nil {
		return nil, err
	}
	values, err := evmabi.AsBigSlice(m, "values")
	if err != nil {
		return nil, err
	}
	if len(ids) != len(values) {
		return nil, fmt.Errorf("ids/values length mismatch: %d != %d", len(ids), len(values))
	}
	return &TransferBatch{
		Operator: operator,
		From:     from,
		To:       to,
		Ids:      evmabi.DecimalStrings(ids),
		Amounts:  evmabi.DecimalStrings(values),
	}, nil
}

func decodeApprovalForAll(ctx *protocols.DecodeCtx, m map[string]interface{}, lg *chaindata.Log) (interface{}, error) {
	account, err := evmabi.AsAddress(m, "account")
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
	return &ApprovalForAll{Account: account, Operator: operator, Approved: approved}, nil
}

func decodeURI(ctx *protocols.DecodeCtx, m map[string]interface{}, lg *chaindata.Log) (interface{}, error) {
	value, err := evmabi.AsString(m, "value")
	if err != nil {
		return nil, err
	}
	id, err := evmabi.AsBig(m, "id")
	if err != nil {
		return nil, err
	}
	return &URI{Value: value, Id: evmabi.DecimalString(id)}, nil
}
