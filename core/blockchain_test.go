package core

import (
	"context"
	"github.com/chain-lab/go-molecule/common"
	"github.com/chain-lab/go-molecule/utils"
	"github.com/stretchr/testify/require"
	"github.com/syndtr/goleveldb/leveldb"
	"math/big"
	"testing"
	"time"
)

// buildTransaction 仅用于测试，也是一个构建交易的例子
func buildTransaction(seed byte) *common.Transaction {
	lock := common.Script{HashType: common.HashTypeType, Args: []byte{seed}}
	lock.CodeHash[0] = seed

	return &common.Transaction{
		RawTransaction: common.RawTransaction{
			Inputs: []common.CellInput{{
				PreviousOutput: common.OutPoint{Index: uint32(seed)},
			}},
			Outputs:     []common.CellOutput{{Capacity: 6100000000, Lock: lock}},
			OutputsData: [][]byte{{seed}},
		},
		Witnesses: [][]byte{{seed}},
	}
}

// buildBlock 构建 parent 的下一个区块，parent 为 nil 时构建创世区块
func buildBlock(t *testing.T, parent *common.Block, txs ...*common.Transaction) *common.Block {
	t.Helper()
	block := &common.Block{
		Header: common.Header{
			RawHeader: common.RawHeader{CompactTarget: 0x1a2d3494, Timestamp: 1600000000000},
			Nonce:     big.NewInt(1),
		},
	}

	if parent != nil {
		parentHash, err := parent.Header.Hash()
		require.NoError(t, err)
		block.Header.ParentHash = parentHash
		block.Header.Number = parent.Header.Number + 1
		block.Header.Timestamp = parent.Header.Timestamp + 1000
	}
	for _, tx := range txs {
		block.Transactions = append(block.Transactions, *tx)
	}

	root, err := TransactionsRoot(block.Transactions)
	require.NoError(t, err)
	block.Header.TransactionsRoot = root
	return block
}

func newTestChain(t *testing.T) (*BlockChain, *utils.LevelDB) {
	t.Helper()
	db, err := utils.NewMemoryLevelDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	chain, err := NewBlockchain(db)
	require.NoError(t, err)
	return chain, db
}

func TestBlockChain_InsertBlock(t *testing.T) {
	chain, _ := newTestChain(t)
	require.Equal(t, int64(-1), chain.Height())

	genesis := buildBlock(t, nil)
	block := buildBlock(t, genesis, buildTransaction(1), buildTransaction(2))

	require.ErrorIs(t, chain.InsertBlock(block), ErrGenesisMissing)
	require.NoError(t, chain.InsertBlock(genesis))
	require.Equal(t, int64(0), chain.Height())
	require.ErrorIs(t, chain.InsertBlock(genesis), ErrBlockExists)

	wrongParent := buildBlock(t, block)
	require.ErrorIs(t, chain.InsertBlock(wrongParent), ErrPrevBlockMismatch)

	wrongRoot := buildBlock(t, genesis, buildTransaction(3))
	wrongRoot.Header.TransactionsRoot = common.Hash{0x01}
	require.ErrorIs(t, chain.InsertBlock(wrongRoot), ErrTransactionsRoot)

	require.NoError(t, chain.InsertBlock(block))
	require.Equal(t, int64(1), chain.Height())

	latest, err := chain.GetLatestBlock()
	require.NoError(t, err)
	require.Equal(t, block, latest)

	byHeight, err := chain.GetBlockByHeight(1)
	require.NoError(t, err)
	require.Equal(t, block.BlockHash(), byHeight.BlockHash())

	_, err = chain.GetBlockByHeight(5)
	require.ErrorIs(t, err, ErrBlockHeight)
}

// 数据库不可用时不能当作区块不存在继续插入
func TestBlockChain_InsertBlockDatabaseError(t *testing.T) {
	chain, db := newTestChain(t)
	require.NoError(t, db.Close())

	err := chain.InsertBlock(buildBlock(t, nil))
	require.ErrorIs(t, err, leveldb.ErrClosed)
	require.NotErrorIs(t, err, ErrBlockExists)
	require.Equal(t, int64(-1), chain.Height())
}

func TestBlockChain_GetTransactionByHash(t *testing.T) {
	chain, _ := newTestChain(t)

	genesis := buildBlock(t, nil, buildTransaction(7))
	require.NoError(t, chain.InsertBlock(genesis))

	hash, err := genesis.Transactions[0].Hash()
	require.NoError(t, err)

	tx, err := chain.GetTransactionByHash(hash)
	require.NoError(t, err)
	require.Equal(t, genesis.Transactions[0], *tx)

	// 第二次读取命中缓存
	cached, err := chain.GetTransactionByHash(hash)
	require.NoError(t, err)
	require.Same(t, tx, cached)

	_, err = chain.GetTransactionByHash(common.Hash{0x01})
	require.ErrorIs(t, err, ErrTransactionMissing)
}

func TestBlockChain_Reopen(t *testing.T) {
	chain, db := newTestChain(t)

	genesis := buildBlock(t, nil)
	block := buildBlock(t, genesis, buildTransaction(1))
	require.NoError(t, chain.InsertBlock(genesis))
	require.NoError(t, chain.InsertBlock(block))

	reopened, err := NewBlockchain(db)
	require.NoError(t, err)
	require.Equal(t, int64(1), reopened.Height())

	latest, err := reopened.GetLatestBlock()
	require.NoError(t, err)
	require.Equal(t, block.BlockHash(), latest.BlockHash())
	require.Equal(t, block.Transactions, latest.Transactions)

	first, err := reopened.GetBlockByHeight(0)
	require.NoError(t, err)
	require.True(t, first.IsGenesisBlock())
}

func TestBlockChain_BlockProcessRoutine(t *testing.T) {
	chain, _ := newTestChain(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go chain.BlockProcessRoutine(ctx)

	genesis := buildBlock(t, nil)
	chain.AppendBlockTask(genesis)
	chain.AppendBlockTask(buildBlock(t, genesis))

	require.Eventually(t, func() bool {
		return chain.Height() == 1
	}, time.Second, 10*time.Millisecond)
}
