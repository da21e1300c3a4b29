package evmabi

import (
	"encoding/hex"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"

	"github.com/tracelake/evmetl/pkg/chaindata"
)

var transferEvent = MustEvent("Transfer",
	Field{Name: "from", Type: "address", Indexed: true},
	Field{Name: "to", Type: "address", Indexed: true},
	Field{Name: "value", Type: "uint256"},
)

func Test_EventID(t *testing.T) {
	want := crypto.Keccak256([]byte("Transfer(address,address,uint256)"))
	assert.Equal(t, want, transferEvent.ID())

	assert.True(t, transferEvent.Matches(want))
	assert.False(t, transferEvent.Matches(want[:31]))
	assert.False(t, transferEvent.Matches(make([]byte, 32)))
}

func paddedAddress(hexAddr string) []byte {
	return common.LeftPadBytes(common.HexToAddress(hexAddr).Bytes(), 32)
}

func Test_Unpack(t *testing.T) {
	amount := new(big.Int).Mul(big.NewInt(1000), big.NewInt(1e18))
	lg := &chaindata.Log{
		Topics: [][]byte{
			transferEvent.ID(),
			paddedAddress("0x1111111111111111111111111111111111111111"),
			paddedAddress("0x2222222222222222222222222222222222222222"),
		},
		Data: common.LeftPadBytes(amount.Bytes(), 32),
	}

	m, err := transferEvent.Unpack(lg)
	assert.Nil(t, err)

	from, err := AsAddress(m, "from")
	assert.Nil(t, err)
	assert.Equal(t, "1111111111111111111111111111111111111111", hex.EncodeToString(from))

	value, err := AsBig(m, "value")
	assert.Nil(t, err)
	assert.Equal(t, amount.String(), value.String())
}

func Test_Unpack_TopicCountMismatch(t *testing.T) {
	lg := &chaindata.Log{
		Topics: [][]byte{transferEvent.ID()},
		Data:   make([]byte, 32),
	}
	_, err := transferEvent.Unpack(lg)
	assert.NotNil(t, err)
}

func Test_Unpack_MalformedData(t *testing.T) {
	lg := &chaindata.Log{
		Topics: [][]byte{
			transferEvent.ID(),
			paddedAddress("0x1111111111111111111111111111111111111111"),
			paddedAddress("0x2222222222222222222222222222222222222222"),
		},
		Data: []byte{0x01, 0x02},
	}
	_, err := transferEvent.Unpack(lg)
	assert.NotNil(t, err)
}

func Test_SignedIndexedTopic(t *testing.T) {
	// int24 ticks arrive sign-extended in topics.
	ev := MustEvent("Probe",
		Field{Name: "tick", Type: "int24", Indexed: true},
	)
	neg := big.NewInt(-887272)
	topic := make([]byte, 32)
	copy(topic, new(big.Int).Add(new(big.Int).Lsh(big.NewInt(1), 256), neg).Bytes())

	lg := &chaindata.Log{Topics: [][]byte{ev.ID(), topic}}
	m, err := ev.Unpack(lg)
	assert.Nil(t, err)

	tick, err := AsBig(m, "tick")
	assert.Nil(t, err)
	assert.Equal(t, "-887272", tick.String())
}

func Test_Narrowing(t *testing.T) {
	v, ok := I32FromBig(big.NewInt(-887272))
	assert.True(t, ok)
	assert.Equal(t, int32(-887272), v)

	_, ok = I32FromBig(new(big.Int).Lsh(big.NewInt(1), 33))
	assert.False(t, ok)

	_, ok = I32FromBig(nil)
	assert.False(t, ok)

	u, ok := U64FromBig(big.NewInt(3000))
	assert.True(t, ok)
	assert.Equal(t, uint64(3000), u)

	_, ok = U64FromBig(new(big.Int).Lsh(big.NewInt(1), 64))
	assert.False(t, ok)

	_, ok = U32FromBig(new(big.Int).Lsh(big.NewInt(1), 32))
	assert.False(t, ok)
}

func Test_DecimalStrings(t *testing.T) {
	assert.Equal(t, []string{"1", "0", "300"}, DecimalStrings([]*big.Int{big.NewInt(1), nil, big.NewInt(300)}))
}
