package rpcbatch

import (
	"testing"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/tracelake/evmetl/internal/tests"
)

func Test_PairKey(t *testing.T) {
	contract := tests.Addr(0xee)
	owner := tests.Addr(0x01)
	key := PairKey(contract, owner)
	assert.Contains(t, key, ":")
	assert.NotEqual(t, key, PairKey(owner, contract))
}

func Test_DecodeWord(t *testing.T) {
	c := &Caller{}

	word := make(hexutil.Bytes, 32)
	word[31] = 0x2a
	v, ok := c.decodeWord(nil, word, "balanceOf", "k")
	assert.True(t, ok)
	assert.Equal(t, "42", v.String())

	// Empty returndata: the contract did not answer the selector.
	_, ok = c.decodeWord(nil, hexutil.Bytes{}, "balanceOf", "k")
	assert.False(t, ok)

	// Short word.
	_, ok = c.decodeWord(nil, make(hexutil.Bytes, 31), "balanceOf", "k")
	assert.False(t, ok)

	// A transport error on one element never decodes.
	_, ok = c.decodeWord(errors.New("execution reverted"), word, "balanceOf", "k")
	assert.False(t, ok)
}
