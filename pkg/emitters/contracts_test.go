package emitters

import (
	"context"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"

	"github.com/tracelake/evmetl/internal/tests"
	"github.com/tracelake/evmetl/pkg/chaindata"
	"github.com/tracelake/evmetl/pkg/encoding"
	"github.com/tracelake/evmetl/pkg/tables"
)

func Test_EmitContracts_TopLevelCreation(t *testing.T) {
	e := newTestEmitter()
	acc := tables.New()

	deployer := tests.Addr(0x01)
	deployed := tests.Addr(0xcd)
	code := []byte{0x60, 0x80, 0x60, 0x40}

	tx := tests.NewTx(0, deployer, nil)
	tx.Input = []byte{0x60, 0x01}
	tx.Receipt.ContractAddress = deployed
	tx.Calls = []*chaindata.Call{{
		Depth:       0,
		CodeChanges: []*chaindata.CodeChange{{Address: deployed, NewCode: code}},
	}}
	block := tests.NewBlock(100, tx)

	err := e.EmitContracts(block, acc)
	assert.Nil(t, err)

	rows := acc.RowsFor("contracts")
	assert.Equal(t, 1, len(rows))

	deployerCol, _ := rows[0].Columns.Get("deployer")
	assert.Equal(t, e.addr(deployer), deployerCol)
	factory, _ := rows[0].Columns.Get("factory")
	assert.Equal(t, "", factory)
	codeHash, _ := rows[0].Columns.Get("code_hash")
	assert.Equal(t, 66, len(codeHash))
}

func Test_EmitContracts_FactoryCreate(t *testing.T) {
	e := newTestEmitter()
	acc := tables.New()

	factory := tests.Addr(0xfa)
	child := tests.Addr(0xcd)

	tx := tests.NewTx(0, tests.Addr(0x01), factory)
	tx.Calls = []*chaindata.Call{
		{Depth: 0, CallType: chaindata.CallType_Call, Address: factory},
		{Depth: 1, CallType: chaindata.CallType_Create, Address: child, Caller: factory},
	}
	block := tests.NewBlock(101, tx)

	err := e.EmitContracts(block, acc)
	assert.Nil(t, err)

	rows := acc.RowsFor("contracts")
	assert.Equal(t, 1, len(rows))
	factoryCol, _ := rows[0].Columns.Get("factory")
	assert.Equal(t, e.addr(factory), factoryCol)
	address, _ := rows[0].Columns.Get("address")
	assert.Equal(t, e.addr(child), address)
}

func Test_EmitContracts_KeyUsesCreationOrdinal(t *testing.T) {
	e := newTestEmitter()
	acc := tables.New()

	factory := tests.Addr(0xfa)
	child := tests.Addr(0xcd)

	tx := tests.NewTx(0, tests.Addr(0x01), factory)
	tx.Calls = []*chaindata.Call{
		{Depth: 0, CallType: chaindata.CallType_Call, Address: factory},
		{Depth: 1, CallType: chaindata.CallType_Create, Address: child, Caller: factory, BeginOrdinal: 7},
	}
	block := tests.NewBlock(101, tx)

	err := e.EmitContracts(block, acc)
	assert.Nil(t, err)

	rows := acc.RowsFor("contracts")
	assert.Equal(t, 1, len(rows))
	ordinal, ok := rows[0].Keys.Get("ordinal")
	assert.True(t, ok)
	assert.Equal(t, "7", ordinal)
	_, hasLogIndex := rows[0].Keys.Get("log_index")
	assert.False(t, hasLogIndex)
}

func Test_EmitContracts_FailedTxDeploysNothing(t *testing.T) {
	e := newTestEmitter()
	acc := tables.New()

	tx := tests.NewTx(0, tests.Addr(0x01), nil)
	tx.Status = chaindata.TxStatus_Reverted
	tx.Receipt.ContractAddress = tests.Addr(0xcd)
	block := tests.NewBlock(102, tx)

	err := e.EmitContracts(block, acc)
	assert.Nil(t, err)
	assert.Equal(t, 0, acc.RowCount())
}

func Test_EmitNative_RevertedTxGasStillApplies(t *testing.T) {
	e := newTestEmitter()
	acc := tables.New()

	sender := tests.Addr(0x01)
	tx := tests.NewTx(0, sender, tests.Addr(0x02))
	tx.Status = chaindata.TxStatus_Reverted
	tx.Value = "500"
	tx.Calls = []*chaindata.Call{{
		Depth: 0,
		BalanceChanges: []*chaindata.BalanceChange{{
			Address:  sender,
			OldValue: uint256.NewInt(10000),
			NewValue: uint256.NewInt(9000),
			Reason:   chaindata.BalanceChangeReason_GasBuy,
			Ordinal:  2,
		}},
	}}
	block := tests.NewBlock(103, tx)

	err := e.EmitNative(context.Background(), block, nil, 50, acc)
	assert.Nil(t, err)

	// No transactions row: the value never moved.
	assert.Equal(t, 0, len(acc.RowsFor("transactions")))

	rows := acc.RowsFor("balances_native")
	assert.Equal(t, 1, len(rows))
	amount, _ := rows[0].Columns.Get("amount")
	assert.Equal(t, "9000", amount)
}

func Test_EmitNative_RowsCarryBlockEnvelope(t *testing.T) {
	e := newTestEmitter()
	acc := tables.New()

	miner := tests.Addr(0x0f)
	block := tests.NewBlock(105)
	block.BalanceChanges = []*chaindata.BalanceChange{{
		Address:  miner,
		OldValue: uint256.NewInt(0),
		NewValue: uint256.NewInt(2000000),
		Reason:   chaindata.BalanceChangeReason_RewardMineBlock,
		Ordinal:  1,
	}}

	err := e.EmitNative(context.Background(), block, nil, 50, acc)
	assert.Nil(t, err)

	wantHash := encoding.RenderHash(tests.Hash(0xbb))

	balRows := acc.RowsFor("balances_native")
	assert.Equal(t, 1, len(balRows))
	ts, ok := balRows[0].Columns.Get("timestamp")
	assert.True(t, ok)
	assert.Equal(t, "1700000040", ts)
	blockHash, ok := balRows[0].Columns.Get("block_hash")
	assert.True(t, ok)
	assert.Equal(t, wantHash, blockHash)

	rewardRows := acc.RowsFor("block_rewards")
	assert.Equal(t, 1, len(rewardRows))
	reason, ok := rewardRows[0].Columns.Get("reason")
	assert.True(t, ok)
	assert.Equal(t, "reward_mine_block", reason)
	ts, _ = rewardRows[0].Columns.Get("timestamp")
	assert.Equal(t, "1700000040", ts)
	blockHash, _ = rewardRows[0].Columns.Get("block_hash")
	assert.Equal(t, wantHash, blockHash)
}

func Test_EmitNative_ValueTransactionAndCalls(t *testing.T) {
	e := newTestEmitter()
	acc := tables.New()

	sender := tests.Addr(0x01)
	tx := tests.NewTx(0, sender, tests.Addr(0x02))
	tx.Value = "1000"
	tx.GasPrice = "20000000000"
	tx.Calls = []*chaindata.Call{
		{Depth: 0, CallType: chaindata.CallType_Call, Value: uint256.NewInt(1000)},
		{
			Depth:       1,
			Index:       2,
			ParentIndex: 1,
			CallType:    chaindata.CallType_Call,
			Caller:      tests.Addr(0x02),
			Address:     tests.Addr(0x03),
			Value:       uint256.NewInt(400),
			GasConsumed: 21000,
			GasLimit:    50000,
		},
	}
	block := tests.NewBlock(104, tx)

	err := e.EmitNative(context.Background(), block, nil, 50, acc)
	assert.Nil(t, err)

	txRows := acc.RowsFor("transactions")
	assert.Equal(t, 1, len(txRows))
	value, _ := txRows[0].Columns.Get("value")
	assert.Equal(t, "1000", value)

	callRows := acc.RowsFor("calls")
	assert.Equal(t, 1, len(callRows))
	callValue, _ := callRows[0].Columns.Get("value")
	assert.Equal(t, "400", callValue)
	callType, _ := callRows[0].Columns.Get("call_type")
	assert.Equal(t, "call", callType)
	parentIndex, _ := callRows[0].Columns.Get("parent_index")
	assert.Equal(t, "1", parentIndex)
}
