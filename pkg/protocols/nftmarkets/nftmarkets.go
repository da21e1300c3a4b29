// Package nftmarkets decodes marketplace fill events from Seaport,
// LooksRare and Wyvern (OpenSea v1/v2). Seaport carries the full offer and
// consideration item lists; the older markets only emit the clearing price.
package nftmarkets

import (
	"go.uber.org/zap"

	"github.com/tracelake/evmetl/internal/metrics"
	"github.com/tracelake/evmetl/pkg/chaindata"
	"github.com/tracelake/evmetl/pkg/evmabi"
	"github.com/tracelake/evmetl/pkg/protocols"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

const ProtocolName = "nftmarkets"

type SpentItem struct {
	ItemType   uint8
	Token      []byte
	Identifier string
	Amount     string
}

type ReceivedItem struct {
	ItemType   uint8
	Token      []byte
	Identifier string
	Amount     string
	Recipient  []byte
}

type SeaportOrderFulfilled struct {
	OrderHash     []byte
	Offerer       []byte
	Zone          []byte
	Recipient     []byte
	Offer         []SpentItem
	Consideration []ReceivedItem
}

type LooksRareTakerBid struct {
	OrderHash  []byte
	OrderNonce string
	Taker      []byte
	Maker      []byte
	Strategy   []byte
	Currency   []byte
	Collection []byte
	TokenId    string
	Amount     string
	Price      string
}

type LooksRareTakerAsk struct {
	OrderHash  []byte
	OrderNonce string
	Taker      []byte
	Maker      []byte
	Strategy   []byte
	Currency   []byte
	Collection []byte
	TokenId    string
	Amount     string
	Price      string
}

type WyvernOrdersMatched struct {
	BuyHash  []byte
	SellHash []byte
	Maker    []byte
	Taker    []byte
	Price    string
	Metadata []byte
}

var (
	seaportOrderFulfilledEvent = evmabi.MustEvent("OrderFulfilled",
		evmabi.Field{Name: "orderHash", Type: "bytes32"},
		evmabi.Field{Name: "offerer", Type: "address", Indexed: true},
		evmabi.Field{Name: "zone", Type: "address", Indexed: true},
		evmabi.Field{Name: "recipient", Type: "address"},
		evmabi.Field{Name: "offer", Type: "tuple[]", Components: []abi.ArgumentMarshaling{
			{Name: "itemType", Type: "uint8"},
			{Name: "token", Type: "address"},
			{Name: "identifier", Type: "uint256"},
			{Name: "amount", Type: "uint256"},
		}},
		evmabi.Field{Name: "consideration", Type: "tuple[]", Components: []abi.ArgumentMarshaling{
			{Name: "itemType", Type: "uint8"},
			{Name: "token", Type: "address"},
			{Name: "identifier", Type: "uint256"},
			{Name: "amount", Type: "uint256"},
			{Name: "recipient", Type: "address"},
		}},
	)
	looksRareTakerBidEvent = evmabi.MustEvent("TakerBid",
		evmabi.Field{Name: "orderHash", Type: "bytes32"},
		evmabi.Field{Name: "orderNonce", Type: "uint256"},
		evmabi.Field{Name: "taker", Type: "address", Indexed: true},
		evmabi.Field{Name: "maker", Type: "address", Indexed: true},
		evmabi.Field{Name: "strategy", Type: "address", Indexed: true},
		evmabi.Field{Name: "currency", Type: "address"},
		evmabi.Field{Name: "collection", Type: "address"},
		evmabi.Field{Name: "tokenId", Type: "uint256"},
		evmabi.Field{Name: "amount", Type: "uint256"},
		evmabi.Field{Name: "price", Type: "uint256"},
	)
	looksRareTakerAskEvent = evmabi.MustEvent("TakerAsk",
		evmabi.Field{Name: "orderHash", Type: "bytes32"},
		evmabi.Field{Name: "orderNonce", Type: "uint256"},
		evmabi.Field{Name: "taker", Type: "address", Indexed: true},
		evmabi.Field{Name: "maker", Type: "address", Indexed: true},
		evmabi.Field{Name: "strategy", Type: "address", Indexed: true},
		evmabi.Field{Name: "currency", Type: "address"},
		evmabi.Field{Name: "collection", Type: "address"},
		evmabi.Field{Name: "tokenId", Type: "uint256"},
		evmabi.Field{Name: "amount", Type: "uint256"},
		evmabi.Field{Name: "price", Type: "uint256"},
	)
	wyvernOrdersMatchedEvent = evmabi.MustEvent("OrdersMatched",
		evmabi.Field{Name: "buyHash", Type: "bytes32"},
		evmabi.Field{Name: "sellHash", Type: "bytes32"},
		evmabi.Field{Name: "maker", Type: "address", Indexed: true},
		evmabi.Field{Name: "taker", Type: "address", Indexed: true},
		evmabi.Field{Name: "price", Type: "uint256"},
		evmabi.Field{Name: "metadata", Type: "bytes32", Indexed: true},
	)
)

var Registry = protocols.NewRegistry(ProtocolName,
	protocols.Handler{Event: seaportOrderFulfilledEvent, Decode: decodeSeaportOrderFulfilled},
	protocols.Handler{Event: looksRareTakerBidEvent, Decode: decodeLooksRareTakerBid},
	protocols.Handler{Event: looksRareTakerAskEvent, Decode: decodeLooksRareTakerAsk},
	protocols.Handler{Event: wyvernOrdersMatchedEvent, Decode: decodeWyvernOrdersMatched},
)

func Decode(block *chaindata.Block, l *zap.Logger, mc *metrics.MetricsClient) *protocols.Events {
	return Registry.Decode(block, l, mc)
}

func decodeSeaportOrderFulfilled(ctx *protocols.DecodeCtx, m map[string]interface{}, lg *chaindata.Log) (interface{}, error) {
	orderHash, err := evmabi.AsBytes32(m, "orderHash")
	if err != nil {
		return nil, err
	}
	offerer, err := evmabi.AsAddress(m, "offerer")
	if err != nil {
		return nil, err
	}
	zone, err := evmabi.AsAddress(m, "zone")
	if err != nil {
		return nil, err
	}
	recipient, err := evmabi.AsAddress(m, "recipient")
	if err != nil {
		return nil, err
	}
	rawOffer, err := evmabi.TupleSlice(m, "offer")
	if err != nil {
		return nil, err
	}
	offer := make([]SpentItem, 0, len(rawOffer))
	for _, item := range rawOffer {
		itemType, err := evmabi.AsBig(item, "itemType")
		if err != nil {
			return nil, err
		}
		token, err := evmabi.AsAddress(item, "token")
		if err != nil {
			return nil, err
		}
		identifier, err := evmabi.AsBig(item, "identifier")
		if err != nil {
			return nil, err
		}
		amount, err := evmabi.AsBig(item, "amount")
		if err != nil {
			return nil, err
		}
		offer = append(offer, SpentItem{
			ItemType:   uint8(ctx.U64("itemType", itemType)),
			Token:      token,
			Identifier: evmabi.DecimalString(identifier),
			Amount:     evmabi.DecimalString(amount),
		})
	}
	rawConsideration, err := evmabi.TupleSlice(m, "consideration")
	if err != nil {
		return nil, err
	}
	consideration := make([]ReceivedItem, 0, len(rawConsideration))
	for _, item := range rawConsideration {
		itemType, err := evmabi.AsBig(item, "itemType")
		if err != nil {
			return nil, err
		}
		token, err := evmabi.AsAddress(item, "token")
		if err != nil {
			return nil, err
		}
		identifier, err := evmabi.AsBig(item, "identifier")
		if err != nil {
			return nil, err
		}
		amount, err := evmabi.AsBig(item, "amount")
		if err != nil {
			return nil, err
		}
		itemRecipient, err := evmabi.AsAddress(item, "recipient")
		if err != nil {
			return nil, err
		}
		consideration = append(consideration, ReceivedItem{
			ItemType:   uint8(ctx.U64("itemType", itemType)),
			Token:      token,
			Identifier: evmabi.DecimalString(identifier),
			Amount:     evmabi.DecimalString(amount),
			Recipient:  itemRecipient,
		})
	}
	return &SeaportOrderFulfilled{
		OrderHash:     orderHash,
		Offerer:       offerer,
		Zone:          zone,
		Recipient:     recipient,
		Offer:         offer,
		Consideration: consideration,
	}, nil
}

func decodeLooksRareTakerBid(ctx *protocols.DecodeCtx, m map[string]interface{}, lg *chaindata.Log) (interface{}, error) {
	f, err := decodeLooksRareFill(m)
	if err != nil {
		return nil, err
	}
	return &LooksRareTakerBid{
		OrderHash:  f.orderHash,
		OrderNonce: f.orderNonce,
		Taker:      f.taker,
		Maker:      f.maker,
		Strategy:   f.strategy,
		Currency:   f.currency,
		Collection: f.collection,
		TokenId:    f.tokenId,
		Amount:     f.amount,
		Price:      f.price,
	}, nil
}

func decodeLooksRareTakerAsk(ctx *protocols.DecodeCtx, m map[string]interface{}, lg *chaindata.Log) (interface{}, error) {
	f, err := decodeLooksRareFill(m)
	if err != nil {
		return nil, err
	}
	return &LooksRareTakerAsk{
		OrderHash:  f.orderHash,
		OrderNonce: f.orderNonce,
		Taker:      f.taker,
		Maker:      f.maker,
		Strategy:   f.strategy,
		Currency:   f.currency,
		Collection: f.collection,
		TokenId:    f.tokenId,
		Amount:     f.amount,
		Price:      f.price,
	}, nil
}

type looksRareFill struct {
	orderHash  []byte
	orderNonce string
	taker      []byte
	maker      []byte
	strategy   []byte
	currency   []byte
	collection []byte
	tokenId    string
	amount     string
	price      string
}

func decodeLooksRareFill(m map[string]interface{}) (*looksRareFill, error) {
	orderHash, err := evmabi.AsBytes32(m, "orderHash")
	if err != nil {
		return nil, err
	}
	orderNonce, err := evmabi.AsBig(m, "orderNonce")
	if err != nil {
		return nil, err
	}
	taker, err := evmabi.AsAddress(m, "taker")
	if err != nil {
		return nil, err
	}
	maker, err := evmabi.AsAddress(m, "maker")
	if err != nil {
		return nil, err
	}
	strategy, err := evmabi.AsAddress(m, "strategy")
	if err != nil {
		return nil, err
	}
	currency, err := evmabi.AsAddress(m, "currency")
	if err != nil {
		return nil, err
	}
	collection, err := evmabi.AsAddress(m, "collection")
	if err != nil {
		return nil, err
	}
	tokenId, err := evmabi.AsBig(m, "tokenId")
	if err != nil {
		return nil, err
	}
	amount, err := evmabi.AsBig(m, "amount")
	if err != nil {
		return nil, err
	}
	price, err := evmabi.AsBig(m, "price")
	if err != nil {
		return nil, err
	}
	return &looksRareFill{
		orderHash:  orderHash,
		orderNonce: evmabi.DecimalString(orderNonce),
		taker:      taker,
		maker:      maker,
		strategy:   strategy,
		currency:   currency,
		collection: collection,
		tokenId:    evmabi.DecimalString(tokenId),
		amount:     evmabi.DecimalString(amount),
		price:      evmabi.DecimalString(price),
	}, nil
}

func decodeWyvernOrdersMatched(ctx *protocols.DecodeCtx, m map[string]interface{}, lg *chaindata.Log) (interface{}, error) {
	buyHash, err := evmabi.AsBytes32(m, "buyHash")
	if err != nil {
		return nil, err
	}
	sellHash, err := evmabi.AsBytes32(m, "sellHash")
	if err != nil {
		return nil, err
	}
	maker, err := evmabi.AsAddress(m, "maker")
	if err != nil {
		return nil, err
	}
	taker, err := evmabi.AsAddress(m, "taker")
	if err != nil {
		return nil, err
	}
	price, err := evmabi.AsBig(m, "price")
	if err != nil {
		return nil, err
	}
	metadata, err := evmabi.AsBytes32(m, "metadata")
	if err != nil {
		return nil, err
	}
	return &WyvernOrdersMatched{
		BuyHash:  buyHash,
		SellHash: sellHash,
		Maker:    maker,
		Taker:    taker,
		Price:    evmabi.DecimalString(price),
		Metadata: metadata,
	}, nil
}
