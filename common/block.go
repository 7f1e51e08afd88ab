/**
  @author: decision
  @date: 2023/3/14
  @note: 区块和区块头的辅助函数
**/

package common

import (
	"github.com/chain-lab/go-molecule/crypto"
)

// Hash 计算区块头的哈希，即编码后 Header 的 ckb-hash
func (h *Header) Hash() (Hash, error) {
	return crypto.HeaderHash(h.ToValue())
}

// BlockHash 获取区块的 hex 格式的区块哈希值，区块头无法编码时返回空字符串
func (b *Block) BlockHash() string {
	hash, err := b.Header.Hash()
	if err != nil {
		return ""
	}
	return hash.Hex()
}

// PrevBlockHash 获取区块的 hex 格式的前一个区块哈希值
func (b *Block) PrevBlockHash() string {
	return b.Header.ParentHash.Hex()
}

// IsGenesisBlock 判断区块是否为创世区块，高度为 0 且前一个区块的哈希值为全 0
func (b *Block) IsGenesisBlock() bool {
	return b.Header.Number == 0 && b.Header.ParentHash.IsZero()
}
