// Package traderjoe decodes Trader Joe Liquidity Book factory and pair
// events. LB packs token amounts for both sides of a pair into one bytes32:
// bits 0..127 carry the X amount and bits 128..255 the Y amount.
package traderjoe

import (
	"math/big"

	"go.uber.org/zap"

	"github.com/tracelake/evmetl/internal/metrics"
	"github.com/tracelake/evmetl/pkg/chaindata"
	"github.com/tracelake/evmetl/pkg/evmabi"
	"github.com/tracelake/evmetl/pkg/protocols"
)

const ProtocolName = "traderjoe"

type LBPairCreated struct {
	TokenX  []byte
	TokenY  []byte
	BinStep uint64
	LBPair  []byte
	Pid     string
}

type Swap struct {
	Sender                []byte
	To                    []byte
	Id                    uint32
	AmountInX             string
	AmountInY             string
	AmountOutX            string
	AmountOutY            string
	VolatilityAccumulator uint32
	TotalFeeX             string
	TotalFeeY             string
	ProtocolFeeX          string
	ProtocolFeeY          string
}

type DepositedToBins struct {
	Sender   []byte
	To       []byte
	Ids      []string
	AmountsX []string
	AmountsY []string
}

type WithdrawnFromBins struct {
	Sender   []byte
	To       []byte
	Ids      []string
	AmountsX []string
	AmountsY []string
}

var (
	lbPairCreatedEvent = evmabi.MustEvent("LBPairCreated",
		evmabi.Field{Name: "tokenX", Type: "address", Indexed: true},
		evmabi.Field{Name: "tokenY", Type: "address", Indexed: true},
		evmabi.Field{Name: "binStep", Type: "uint256", Indexed: true},
		evmabi.Field{Name: "LBPair", Type: "address"},
		evmabi.Field{Name: "pid", Type: "uint256"},
	)
	swapEvent = evmabi.MustEvent("Swap",
		evmabi.Field{Name: "sender", Type: "address", Indexed: true},
		evmabi.Field{Name: "to", Type: "address", Indexed: true},
		evmabi.Field{Name: "id", Type: "uint24"},
		evmabi.Field{Name: "amountsIn", Type: "bytes32"},
		evmabi.Field{Name: "amountsOut", Type: "bytes32"},
		evmabi.Field{Name: "volatilityAccumulator", Type: "uint24"},
		evmabi.Field{Name: "totalFees", Type: "bytes32"},
		evmabi.Field{Name: "protocolFees", Type: "bytes32"},
	)
	depositedToBinsEvent = evmabi.MustEvent("DepositedToBins",
		evmabi.Field{Name: "sender", Type: "address", Indexed: true},
		evmabi.Field{Name: "to", Type: "address", Indexed: true},
		evmabi.Field{Name: "ids", Type: "uint256[]"},
		evmabi.Field{Name: "amounts", Type: "bytes32[]"},
	)
	withdrawnFromBinsEvent = evmabi.MustEvent("WithdrawnFromBins",
		evmabi.Field{Name: "sender", Type: "address", Indexed: true},
		evmabi.Field{Name: "to", Type: "address", Indexed: true},
		evmabi.Field{Name: "ids", Type: "uint256[]"},
		evmabi.Field{Name: "amounts", Type: "bytes32[]"},
	)
)

var Registry = protocols.NewRegistry(ProtocolName,
	protocols.Handler{Event: lbPairCreatedEvent, Decode: decodeLBPairCreated},
	protocols.Handler{Event: swapEvent, Decode: decodeSwap},
	protocols.Handler{Event: depositedToBinsEvent, Decode: decodeDepositedToBins},
	protocols.Handler{Event: withdrawnFromBinsEvent, Decode: decodeWithdrawnFromBins},
)

func Decode(block *chaindata.Block, l *zap.Logger, mc *metrics.MetricsClient) *protocols.Events {
	return Registry.Decode(block, l, mc)
}

// splitPacked unpacks an LB packed-amounts word into (x, y).
func splitPacked(word []byte) (*big.Int, *big.Int) {
	full := new(big.Int).SetBytes(word)
	mask := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))
	x := new(big.Int).And(full, mask)
	y := new(big.Int).Rsh(full, 128)
	return x, y
}

func decodeLBPairCreated(ctx *protocols.DecodeCtx, m map[string]interface{}, lg *chaindata.Log) (interface{}, error) {
	tokenX, err := evmabi.AsAddress(m, "tokenX")
	if err != nil {
		return nil, err
	}
	tokenY, err := evmabi.AsAddress(m, "tokenY")
	if err != nil {
		return nil, err
	}
	binStep, err := evmabi.AsBig(m, "binStep")
	if err != nil {
		return nil, err
	}
	lbPair, err := evmabi.AsAddress(m, "LBPair")
	if err != nil {
		return nil, err
	}
	pid, err := evmabi.AsBig(m, "pid")
	if err != nil {
		return nil, err
	}
	return &LBPairCreated{
		TokenX:  tokenX,
		TokenY:  tokenY,
		BinStep: ctx.U64("binStep", binStep),
		LBPair:  lbPair,
		Pid:     evmabi.DecimalString(pid),
	}, nil
}

func decodeSwap(ctx *protocols.DecodeCtx, m map[string]interface{}, lg *chaindata.Log) (interface{}, error) {
	sender, err := evmabi.AsAddress(m, "sender")
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
	amountsIn, err := evmabi.AsBytes32(m, "amountsIn")
	if err != nil {
		return nil, err
	}
	amountsOut, err := evmabi.AsBytes32(m, "amountsOut")
	if err != nil {
		return nil, err
	}
	volAcc, err := evmabi.AsBig(m, "volatilityAccumulator")
	if err != nil {
		return nil, err
	}
	totalFees, err := evmabi.AsBytes32(m, "totalFees")
	if err != nil {
		return nil, err
	}
	protocolFees, err := evmabi.AsBytes32(m, "protocolFees")
	if err != nil {
		return nil, err
	}
	inX, inY := splitPacked(amountsIn)
	outX, outY := splitPacked(amountsOut)
	feeX, feeY := splitPacked(totalFees)
	protoFeeX, protoFeeY := splitPacked(protocolFees)
	return &Swap{
		Sender:                sender,
		To:                    to,
		Id:                    ctx.U32("id", id),
		AmountInX:             evmabi.DecimalString(inX),
		AmountInY:             evmabi.DecimalString(inY),
		AmountOutX:            evmabi.DecimalString(outX),
		AmountOutY:            evmabi.DecimalString(outY),
		VolatilityAccumulator: ctx.U32("volatilityAccumulator", volAcc),
		TotalFeeX:             evmabi.DecimalString(feeX),
		TotalFeeY:             evmabi.DecimalString(feeY),
		ProtocolFeeX:          evmabi.DecimalString(protoFeeX),
		ProtocolFeeY:          evmabi.DecimalString(protoFeeY),
	}, nil
}

func decodeDepositedToBins(ctx *protocols.DecodeCtx, m map[string]interface{}, lg *chaindata.Log) (interface{}, error) {
	sender, to, ids, amountsX, amountsY, err := decodeBinAmounts(m)
	if err != nil {
		return nil, err
	}
	return &DepositedToBins{Sender: sender, To: to, Ids: ids, AmountsX: amountsX, AmountsY: amountsY}, nil
}

func decodeWithdrawnFromBins(ctx *protocols.DecodeCtx, m map[string]interface{}, lg *chaindata.Log) (interface{}, error) {
	sender, to, ids, amountsX, amountsY, err := decodeBinAmounts(m)
	if err != nil {
		return nil, err
	}
	return &WithdrawnFromBins{Sender: sender, To: to, Ids: ids, AmountsX: amountsX, AmountsY: amountsY}, nil
}

func decodeBinAmounts(m map[string]interface{}) ([]byte, []byte, []string, []string, []string, error) {
	sender, err := evmabi.AsAddress(m, "sender")
	if err != nil {
		return nil, nil, nil, nil, nil, err
	}
	to, err := evmabi.AsAddress(m, "to")
	if err != nil {
		return nil, nil, nil, nil, nil, err
	}
	ids, err := evmabi.AsBigSlice(m, "ids")
	if err != nil {
		return nil, nil, nil, nil, nil, err
	}
	amounts, err := evmabi.AsBytes32Slice(m, "amounts")
	if err != nil {
		return nil, nil, nil, nil, nil, err
	}
	amountsX := make([]string, 0, len(amounts))
	amountsY := make([]string, 0, len(amounts))
	for _, word := range amounts {
		x, y := splitPacked(word)
		amountsX = append(amountsX, evmabi.DecimalString(x))
		amountsY = append(amountsY, evmabi.DecimalString(y))
	}
	return sender, to, evmabi.DecimalStrings(ids), amountsX, amountsY, nil
}
