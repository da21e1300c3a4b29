package nativebalance

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"

	"github.com/tracelake/evmetl/internal/tests"
	"github.com/tracelake/evmetl/pkg/chaindata"
)

func change(addr []byte, oldV, newV uint64, reason chaindata.BalanceChangeReason, ordinal uint64) *chaindata.BalanceChange {
	return &chaindata.BalanceChange{
		Address:  addr,
		OldValue: uint256.NewInt(oldV),
		NewValue: uint256.NewInt(newV),
		Reason:   reason,
		Ordinal:  ordinal,
	}
}

func Test_Reconstruct_BlockRewards(t *testing.T) {
	miner := tests.Addr(0x01)
	block := tests.NewBlock(100)
	block.BalanceChanges = []*chaindata.BalanceChange{
		change(miner, 1000, 3000, chaindata.BalanceChangeReason_RewardMineBlock, 1),
	}

	r := Reconstruct(block)
	assert.Equal(t, 1, len(r.Rewards))
	assert.Equal(t, "2000", r.Rewards[0].Value.String())
	assert.Equal(t, chaindata.BalanceChangeReason_RewardMineBlock, r.Rewards[0].Reason)

	balance, ok := r.Balance(miner)
	assert.True(t, ok)
	assert.Equal(t, "3000", balance.Dec())
}

func Test_Reconstruct_RevertedTxKeepsGasDeltas(t *testing.T) {
	sender := tests.Addr(0x01)
	other := tests.Addr(0x02)

	tx := tests.NewTx(0, sender, tests.Addr(0x03))
	tx.Status = chaindata.TxStatus_Reverted
	tx.Calls = []*chaindata.Call{{
		Depth: 0,
		BalanceChanges: []*chaindata.BalanceChange{
			change(sender, 10000, 9000, chaindata.BalanceChangeReason_GasBuy, 2),
			change(other, 0, 500, chaindata.BalanceChangeReason_Transfer, 3),
		},
	}}
	block := tests.NewBlock(101, tx)

	r := Reconstruct(block)

	balance, ok := r.Balance(sender)
	assert.True(t, ok)
	assert.Equal(t, "9000", balance.Dec())

	_, ok = r.Balance(other)
	assert.False(t, ok)

	assert.Equal(t, 0, len(r.ValueTransactions))
}

func Test_Reconstruct_QualifyingCalls(t *testing.T) {
	sender := tests.Addr(0x01)

	tx := tests.NewTx(0, sender, tests.Addr(0x03))
	tx.Value = "0"
	tx.Calls = []*chaindata.Call{
		{Depth: 0, CallType: chaindata.CallType_Call, Value: uint256.NewInt(100)},
		{Depth: 1, CallType: chaindata.CallType_Call, Value: uint256.NewInt(100)},
		{Depth: 1, CallType: chaindata.CallType_Delegate, Value: uint256.NewInt(100)},
		{Depth: 1, CallType: chaindata.CallType_Call, Value: uint256.NewInt(0)},
		{Depth: 2, CallType: chaindata.CallType_Create, Value: uint256.NewInt(5)},
	}
	block := tests.NewBlock(102, tx)

	r := Reconstruct(block)
	assert.Equal(t, 1, len(r.ValueTransactions))
	assert.Equal(t, 2, len(r.Calls))
}

func Test_Reconstruct_SelfdestructSkipsZeroResidual(t *testing.T) {
	victim := tests.Addr(0x0a)
	heir := tests.Addr(0x0b)

	tx := tests.NewTx(0, tests.Addr(0x01), victim)
	tx.Calls = []*chaindata.Call{{
		Depth:   1,
		Address: victim,
		Suicide: true,
		BalanceChanges: []*chaindata.BalanceChange{
			change(heir, 100, 100, chaindata.BalanceChangeReason_SuicideRefund, 4),
		},
	}}
	block := tests.NewBlock(103, tx)

	r := Reconstruct(block)
	assert.Equal(t, 0, len(r.Selfdestructs))
}

func Test_Reconstruct_SelfdestructTransfersResidual(t *testing.T) {
	victim := tests.Addr(0x0a)
	heir := tests.Addr(0x0b)

	tx := tests.NewTx(0, tests.Addr(0x01), victim)
	tx.Calls = []*chaindata.Call{{
		Depth:   1,
		Address: victim,
		Suicide: true,
		BalanceChanges: []*chaindata.BalanceChange{
			change(heir, 100, 700, chaindata.BalanceChangeReason_SuicideRefund, 4),
		},
	}}
	block := tests.NewBlock(104, tx)

	r := Reconstruct(block)
	assert.Equal(t, 1, len(r.Selfdestructs))
	sd := r.Selfdestructs[0]
	assert.Equal(t, victim, sd.From)
	assert.Equal(t, heir, sd.To)
	assert.Equal(t, "600", sd.Value.Dec())
}

func Test_Reconstruct_DaoBothDirections(t *testing.T) {
	block := tests.NewBlock(1920000)
	block.BalanceChanges = []*chaindata.BalanceChange{
		change(tests.Addr(0x01), 500, 0, chaindata.BalanceChangeReason_DaoRefundContract, 1),
		change(tests.Addr(0x02), 0, 500, chaindata.BalanceChangeReason_DaoAdjustBalance, 2),
		change(tests.Addr(0x03), 500, 0, chaindata.BalanceChangeReason_Withdrawal, 3),
	}

	r := Reconstruct(block)
	assert.Equal(t, 2, len(r.DaoEvents))
	assert.Equal(t, "-500", r.DaoEvents[0].Value.String())
	assert.Equal(t, "500", r.DaoEvents[1].Value.String())
	// A negative withdrawal delta never emits.
	assert.Equal(t, 0, len(r.Withdrawals))
}

func Test_Override(t *testing.T) {
	r := Reconstruct(tests.NewBlock(105))
	addr := tests.Addr(0x01)

	r.Override(addr, uint256.NewInt(12345))
	balance, ok := r.Balance(addr)
	assert.True(t, ok)
	assert.Equal(t, "12345", balance.Dec())
	assert.Equal(t, 1, len(r.Balances()))
}

func Test_TouchedAddresses_Dedup(t *testing.T) {
	from := tests.Addr(0x01)
	to := tests.Addr(0x02)

	tx := tests.NewTx(0, from, to)
	tx.Calls = []*chaindata.Call{{Address: to, Caller: from}}
	block := tests.NewBlock(106, tx)

	touched := TouchedAddresses(block)
	assert.Equal(t, 2, len(touched))
	assert.Equal(t, from, touched[0])
	assert.Equal(t, to, touched[1])
}
