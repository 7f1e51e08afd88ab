package core

import (
	"context"
	"github.com/chain-lab/go-molecule/common"
	"github.com/chain-lab/go-molecule/interfaces"
	"github.com/chain-lab/go-molecule/metrics"
	"github.com/chain-lab/go-molecule/utils"
	lru "github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"sync"
)

const (
	maxBlockChannel       = 128
	transactionStartIndex = 3
)

var (
	ErrBlockExists        = errors.New("block already exists")
	ErrPrevBlockMismatch  = errors.New("prev block hash not match")
	ErrGenesisMissing     = errors.New("genesis block missing")
	ErrTransactionsRoot   = errors.New("transactions root not match")
	ErrBlockHeight        = errors.New("block height error")
	ErrTransactionMissing = errors.New("transaction not found")
)

// !! 为了避免潜在的数据不一致的情况，任何情况下不要对一个 block 实例进行数据的修改
// 如果需要对区块进行校验或者哈希的修改，对数据进行深拷贝得到一份复制来进行处理

// BlockChain 保存编码后的区块和交易，维护高度索引和最新区块
type BlockChain struct {
	// 数据库相关的成员变量
	db interfaces.Database

	// 当前的链所维护的区块高度对应区块 blockHeightMap、区块 cache 和交易 cache
	blockHeightMap *lru.Cache
	blockCache     *lru.Cache
	txCache        *lru.Cache

	// 当前的最新区块 latestBlock、最新高度 latestHeight，没有区块时高度为 -1
	latestBlock  *common.Block
	latestHash   common.Hash
	latestHeight int64
	// 最新状态的同步锁
	latestLock sync.RWMutex
	// 插入区块的过程需要串行执行
	appendLock sync.Mutex

	blockChan chan *common.Block
}

// NewBlockchain 创建一个 BlockChain 实例，需要传入一个数据库实例 db，缓存大小从配置中读取
func NewBlockchain(db interfaces.Database) (*BlockChain, error) {
	// 实例化一系列的 cache 并处理可能出现的错误
	blockCache, err := lru.New(blockCacheSize())
	if err != nil {
		log.WithField("error", err).Debugln("Create block cache failed")
		return nil, err
	}

	txCache, err := lru.New(transactionCacheSize())
	if err != nil {
		log.WithField("error", err).Debugln("Create transaction cache failed.")
		return nil, err
	}

	blockHeightMap, err := lru.New(blockCacheSize())
	if err != nil {
		log.WithField("error", err).Debugln("Create block map cache failed.")
		return nil, err
	}

	chain := &BlockChain{
		db: db,

		blockHeightMap: blockHeightMap,
		blockCache:     blockCache,
		txCache:        txCache,

		latestBlock:  nil,
		latestHeight: -1,

		blockChan: make(chan *common.Block, maxBlockChannel),
	}

	// 初始化一下最新区块，数据库为空时返回 ErrNotFound
	_, err = chain.GetLatestBlock()
	if err != nil && !errors.Is(err, utils.ErrNotFound) {
		return nil, err
	}
	return chain, nil
}

// BlockProcessRoutine 接收处理 channel 中的区块，ctx 结束时返回
func (bc *BlockChain) BlockProcessRoutine(ctx context.Context) {
	for {
		select {
		case block := <-bc.blockChan:
			if err := bc.InsertBlock(block); err != nil {
				log.WithField("error", err).Debugln("Insert block from channel failed.")
			}
		case <-ctx.Done():
			return
		}
	}
}

// AppendBlockTask 向处理队列中添加区块，由 BlockProcessRoutine 插入
func (bc *BlockChain) AppendBlockTask(block *common.Block) {
	bc.blockChan <- block
}

// GetLatestBlock 获取当前的最新区块
func (bc *BlockChain) GetLatestBlock() (*common.Block, error) {
	// 首先尝试获取变量下存储的区块
	bc.latestLock.RLock()
	latest := bc.latestBlock
	bc.latestLock.RUnlock()
	if latest != nil {
		return latest, nil
	}

	// 然后从数据库的索引下查询
	latestBlockHash, err := bc.db.Get(utils.LatestBlockKey)
	if err != nil {
		log.WithField("error", err).Debugln("Get latest index failed.")
		return nil, err
	}

	// 如果索引存在，则从数据库中拉取
	var blockHash common.Hash
	copy(blockHash[:], latestBlockHash)

	block, err := bc.GetBlockByHash(blockHash)
	if err != nil {
		log.WithField("error", err).Errorln("Get block failed.")
		return nil, err
	}

	bc.latestLock.Lock()
	bc.latestBlock = block
	bc.latestHash = blockHash
	bc.latestHeight = int64(block.Header.Number)
	bc.latestLock.Unlock()
	metrics.StoreHeightMetricsSet(block.Header.Number)

	return block, nil
}

// GetBlockByHash 先查询缓存，未命中时从数据库读取并解码
func (bc *BlockChain) GetBlockByHash(hash common.Hash) (*common.Block, error) {
	value, hit := bc.blockCache.Get(hash)
	if hit {
		// 命中缓存， 直接返回区块
		return value.(*common.Block), nil
	}

	byteBlockData, err := bc.db.Get(utils.BlockHash2DBKey(hash))
	if err != nil {
		log.WithField("error", err).Debugln("Get block data in database failed.")
		return nil, err
	}

	block, err := utils.DeserializeBlock(byteBlockData)
	if err != nil {
		log.WithFields(log.Fields{
			"error": err,
			"hash":  hash.Hex()[:10],
		}).Errorln("Deserialize block failed.")
		return nil, err
	}

	bc.writeBlockCache(hash, block)
	return block, nil
}

// GetBlockByHeight 根据高度拉取区块
func (bc *BlockChain) GetBlockByHeight(height uint64) (*common.Block, error) {
	// 先判断一下高度
	if int64(height) > bc.Height() {
		return nil, errors.Wrapf(ErrBlockHeight, "height %d is larger than latest %d", height, bc.Height())
	}

	// 查询缓存里面是否有区块的信息
	if value, hit := bc.blockHeightMap.Get(height); hit {
		return bc.GetBlockByHash(value.(common.Hash))
	}

	// 查询数据库
	heightDBKey := utils.BlockHeight2DBKey(height)
	blockHash, err := bc.db.Get(heightDBKey)
	if err != nil {
		log.WithFields(log.Fields{
			"error": err,
			"key":   string(heightDBKey),
		}).Errorln("Get block hash with height failed.")
		return nil, err
	}

	var hash common.Hash
	copy(hash[:], blockHash)
	return bc.GetBlockByHash(hash)
}

// writeBlockCache 向 哈希 -> 区块 和 高度 -> 哈希 的 cache 下添加区块信息
func (bc *BlockChain) writeBlockCache(hash common.Hash, block *common.Block) {
	bc.blockHeightMap.Add(block.Header.Number, hash)
	bc.blockCache.Add(hash, block)
}

// InsertBlock
//
//	@Description: 校验区块与最新区块相连、交易根正确后，把区块、索引和交易批量写入数据库
//	@receiver bc
//	@param block - 待插入的区块，插入后不应再修改
//	@return error
func (bc *BlockChain) InsertBlock(block *common.Block) error {
	bc.appendLock.Lock()
	defer bc.appendLock.Unlock()

	blockHash, err := block.Header.Hash()
	if err != nil {
		log.WithField("error", err).Debugln("Hash block header failed.")
		return err
	}

	// 获取对应哈希的区块，如果区块存在，说明链上已经存在该区块
	has, err := bc.db.Has(utils.BlockHash2DBKey(blockHash))
	if err != nil {
		log.WithField("error", err).Errorln("Check block in database failed.")
		return err
	}
	if has {
		log.WithField("hash", blockHash.Hex()[:10]).Warning("Block exists.")
		return errors.Wrapf(ErrBlockExists, "block %s", blockHash.Hex())
	}

	latestHeight := bc.Height()
	if latestHeight < 0 && !block.IsGenesisBlock() {
		return ErrGenesisMissing
	}
	if latestHeight >= 0 {
		// 插入区块需要检查前一个区块的哈希值和高度是否符合
		bc.latestLock.RLock()
		latestHash := bc.latestHash
		bc.latestLock.RUnlock()

		if block.Header.ParentHash != latestHash || int64(block.Header.Number) != latestHeight+1 {
			log.WithFields(log.Fields{
				"height": block.Header.Number,
				"prev":   block.PrevBlockHash()[:10],
				"latest": latestHash.Hex()[:10],
			}).Errorln("Block error, prev block hash not match.")
			return ErrPrevBlockMismatch
		}
	}

	root, err := TransactionsRoot(block.Transactions)
	if err != nil {
		return err
	}
	if root != block.Header.TransactionsRoot {
		return errors.Wrapf(ErrTransactionsRoot, "expect %s, got %s", root.Hex(), block.Header.TransactionsRoot.Hex())
	}

	// 交易列表添加到数据库前需要预留三个位置，修改 latest的哈希值、区块、区块高度对应的哈希
	count := len(block.Transactions)
	keys := make([][]byte, count+transactionStartIndex)
	values := make([][]byte, count+transactionStartIndex)

	keys[0] = utils.BlockHash2DBKey(blockHash)
	values[0], err = utils.SerializeBlock(block)
	if err != nil {
		return err
	}

	keys[1] = utils.LatestBlockKey
	values[1] = blockHash[:]
	keys[2] = utils.BlockHeight2DBKey(block.Header.Number)
	values[2] = blockHash[:]

	for idx := range block.Transactions {
		tx := &block.Transactions[idx]
		txHash, err := tx.Hash()
		if err != nil {
			return err
		}

		keys[idx+transactionStartIndex] = utils.TxHash2DBKey(txHash)
		values[idx+transactionStartIndex], err = utils.SerializeTransaction(tx)
		if err != nil {
			log.WithFields(log.Fields{
				"error": err,
				"hash":  txHash.Hex()[:10],
			}).Errorln("Encode transaction failed.")
			return err
		}
	}

	// 批量添加/修改数据到数据库
	if err := bc.db.BatchInsert(keys, values); err != nil {
		log.WithField("error", err).Errorln("Write block to database failed.")
		return err
	}

	log.WithFields(log.Fields{
		"hash":   blockHash.Hex()[:10],
		"height": block.Header.Number,
		"count":  count,
	}).Infoln("Insert block to database.")

	bc.latestLock.Lock()
	bc.latestBlock = block
	bc.latestHash = blockHash
	bc.latestHeight = int64(block.Header.Number)
	bc.latestLock.Unlock()
	bc.writeBlockCache(blockHash, block)

	metrics.StoreBlocksMetricsInc()
	metrics.StoreHeightMetricsSet(block.Header.Number)
	return nil
}

// GetTransactionByHash 通过交易的哈希值来获取交易
func (bc *BlockChain) GetTransactionByHash(hash common.Hash) (*common.Transaction, error) {
	value, hit := bc.txCache.Get(hash)
	if hit {
		return value.(*common.Transaction), nil
	}

	byteTransactionData, err := bc.db.Get(utils.TxHash2DBKey(hash))
	if errors.Is(err, utils.ErrNotFound) {
		return nil, errors.Wrapf(ErrTransactionMissing, "transaction %s", hash.Hex())
	}
	if err != nil {
		log.WithField("error", err).Debugln("Get tx data from database failed.")
		return nil, err
	}

	transaction, err := utils.DeserializeTransaction(byteTransactionData)
	if err != nil {
		log.WithField("error", err).Debugln("Deserialize transaction failed.")
		return nil, err
	}

	bc.txCache.Add(hash, transaction)
	return transaction, nil
}

// Height 返回最新区块的高度，没有区块时为 -1
func (bc *BlockChain) Height() int64 {
	bc.latestLock.RLock()
	defer bc.latestLock.RUnlock()
	return bc.latestHeight
}
