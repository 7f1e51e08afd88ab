// Package core
// @Description: Merkle 树处理逻辑，使用完全二叉 Merkle 树 (CBMT) 计算交易根
package core

import (
	"github.com/chain-lab/go-molecule/common"
	"github.com/chain-lab/go-molecule/crypto"
)

// mergeHash
//
//	@Description: 计算 merkle 树左右节点拼接后的 ckb-hash
//	@param left - merkle 树左节点
//	@param right - merkle 树右节点
//	@return common.Hash - 拼接后的哈希值
func mergeHash(left, right common.Hash) common.Hash {
	return crypto.CKBHash(left[:], right[:])
}

// BuildMerkleTree
//
//	@Description: 完全二叉 Merkle 树构建程序，叶子按顺序放在数组末尾，
//	下标 i 的节点由 2i+1 和 2i+2 合并得到
//	@param leaves - 叶子节点的哈希
//	@return common.Hash - Merkle 树的根哈希值，没有叶子时为全 0
func BuildMerkleTree(leaves []common.Hash) common.Hash {
	length := len(leaves)
	if length == 0 {
		return common.Hash{}
	}

	nodes := make([]common.Hash, 2*length-1)
	copy(nodes[length-1:], leaves)

	for i := length - 2; i >= 0; i-- {
		nodes[i] = mergeHash(nodes[2*i+1], nodes[2*i+2])
	}
	return nodes[0]
}

// TransactionsRoot
//
//	@Description: 区块头中的 transactionsRoot，等于交易哈希树根与 witness 哈希树根拼接后的哈希
//	@param txs - 区块中的交易
//	@return common.Hash
func TransactionsRoot(txs []common.Transaction) (common.Hash, error) {
	txHashes := make([]common.Hash, len(txs))
	witnessHashes := make([]common.Hash, len(txs))

	for idx := range txs {
		var err error
		txHashes[idx], err = txs[idx].Hash()
		if err != nil {
			return common.Hash{}, err
		}
		witnessHashes[idx], err = txs[idx].WitnessHash()
		if err != nil {
			return common.Hash{}, err
		}
	}

	return mergeHash(BuildMerkleTree(txHashes), BuildMerkleTree(witnessHashes)), nil
}

// ProposalsHash 所有提案 id 拼接后的哈希，没有提案时为全 0
func ProposalsHash(proposals []common.ProposalShortId) common.Hash {
	if len(proposals) == 0 {
		return common.Hash{}
	}

	h := crypto.NewHasher()
	for _, id := range proposals {
		h.Write(id[:])
	}

	var result common.Hash
	copy(result[:], h.Sum(nil))
	return result
}

// ExtraHash
//
//	@Description: 区块头中的 extraHash，没有 extension 时等于叔块哈希，
//	否则为叔块哈希与 extension 哈希拼接后的哈希
//	@param uncles - 叔块
//	@param extension - 区块扩展字段，nil 表示不存在
//	@return common.Hash
func ExtraHash(uncles []common.UncleBlock, extension []byte) (common.Hash, error) {
	unclesHash := common.Hash{}
	if len(uncles) > 0 {
		h := crypto.NewHasher()
		for idx := range uncles {
			hash, err := uncles[idx].Header.Hash()
			if err != nil {
				return common.Hash{}, err
			}
			h.Write(hash[:])
		}
		copy(unclesHash[:], h.Sum(nil))
	}

	if extension == nil {
		return unclesHash, nil
	}
	extensionHash := crypto.CKBHash(extension)
	return crypto.CKBHash(unclesHash[:], extensionHash[:]), nil
}
