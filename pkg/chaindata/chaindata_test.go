package chaindata

import (
	"encoding/hex"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func Test_MustTimestamp(t *testing.T) {
	t.Run("recorded timestamp wins", func(t *testing.T) {
		b := &Block{Number: 100, Timestamp: time.Unix(1656549600, 0)}
		ts, err := b.MustTimestamp()
		assert.Nil(t, err)
		assert.Equal(t, int64(1656549600), ts.Unix())
	})

	t.Run("genesis override for mainnet", func(t *testing.T) {
		hash, _ := hex.DecodeString("d4e56740f876aef8c010b86a40d5f56745a118d0906a34e69aec8c0db1cb8fa3")
		b := &Block{Number: 0, Hash: hash}
		ts, err := b.MustTimestamp()
		assert.Nil(t, err)
		assert.Equal(t, int64(1438269973), ts.Unix())
	})

	t.Run("non-genesis block with zero timestamp fails", func(t *testing.T) {
		b := &Block{Number: 5}
		_, err := b.MustTimestamp()
		assert.NotNil(t, err)
		assert.Contains(t, err.Error(), "missing timestamp")
	})

	t.Run("unknown genesis hash fails", func(t *testing.T) {
		b := &Block{Number: 0, Hash: []byte{0x01, 0x02}}
		_, err := b.MustTimestamp()
		assert.NotNil(t, err)
	})
}

func Test_LogsWithCalls(t *testing.T) {
	logA := &Log{Index: 0, Ordinal: 1}
	logB := &Log{Index: 1, Ordinal: 5}

	t.Run("extended detail attributes calls", func(t *testing.T) {
		call := &Call{Index: 2, Logs: []*Log{logA, logB}}
		tx := &TransactionTrace{Calls: []*Call{call}, Receipt: &Receipt{Logs: []*Log{logA, logB}}}
		b := &Block{DetailLevel: DetailLevel_Extended, Transactions: []*TransactionTrace{tx}}

		pairs := b.LogsWithCalls(tx)
		assert.Equal(t, 2, len(pairs))
		assert.Equal(t, call, pairs[0].Call)
	})

	t.Run("base detail falls back to receipt logs", func(t *testing.T) {
		tx := &TransactionTrace{Receipt: &Receipt{Logs: []*Log{logA, logB}}}
		b := &Block{DetailLevel: DetailLevel_Base, Transactions: []*TransactionTrace{tx}}

		pairs := b.LogsWithCalls(tx)
		assert.Equal(t, 2, len(pairs))
		assert.Nil(t, pairs[0].Call)
		assert.Nil(t, pairs[1].Call)
	})
}

func Test_CreatesContract(t *testing.T) {
	tx := &TransactionTrace{From: []byte{0x01}}
	assert.True(t, tx.CreatesContract())

	tx.To = make([]byte, 20)
	assert.False(t, tx.CreatesContract())
}

func Test_GasRelatedReasons(t *testing.T) {
	assert.True(t, BalanceChangeReason_GasBuy.IsGasRelated())
	assert.True(t, BalanceChangeReason_GasRefund.IsGasRelated())
	assert.True(t, BalanceChangeReason_RewardTransactionFee.IsGasRelated())
	assert.False(t, BalanceChangeReason_Transfer.IsGasRelated())
	assert.False(t, BalanceChangeReason_SuicideRefund.IsGasRelated())
}
