package utils

import (
	"github.com/chain-lab/go-molecule/common"
	"strconv"
)

// LatestBlockKey 保存最新区块的哈希
var LatestBlockKey = []byte("latest")

func BlockHash2DBKey(hash common.Hash) []byte {
	return append([]byte("block#"), hash[:]...)
}

// BlockHeight2DBKey 高度到区块哈希的索引
func BlockHeight2DBKey(height uint64) []byte {
	strHeight := strconv.FormatUint(height, 10)

	return append([]byte("height#"), []byte(strHeight)...)
}

// TxHash2DBKey 交易哈希到所在区块哈希的索引
func TxHash2DBKey(hash common.Hash) []byte {
	return append([]byte("tx#"), hash[:]...)
}
