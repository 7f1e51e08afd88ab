// Package crypto
// @Description: ckb 使用的哈希函数，blake2b-256 加上 ckb-default-hash 个性化参数
package crypto

import (
	"github.com/chain-lab/go-molecule/blockchain"
	"github.com/chain-lab/go-molecule/codec"
	"github.com/minio/blake2b-simd"
	"hash"
)

const (
	HashLength     = 32
	Blake160Length = 20
)

var personalization = []byte("ckb-default-hash")

// NewHasher 创建一个 ckb-hash 的哈希器，用于需要分段写入的场景
func NewHasher() hash.Hash {
	h, err := blake2b.New(&blake2b.Config{
		Size:   HashLength,
		Person: personalization,
	})
	// 参数是固定的，只有在参数非法时才会出错
	if err != nil {
		panic(err)
	}
	return h
}

// CKBHash
//
//	@Description: 计算多段数据拼接后的 ckb-hash
//	@param data - 待计算的数据，按顺序写入
//	@return [32]byte - 哈希值
func CKBHash(data ...[]byte) [HashLength]byte {
	h := NewHasher()
	for _, d := range data {
		h.Write(d)
	}

	var result [HashLength]byte
	copy(result[:], h.Sum(nil))
	return result
}

// Blake160 返回 ckb-hash 的前 20 字节，secp256k1 锁脚本的 args 就是公钥的 Blake160
func Blake160(data []byte) [Blake160Length]byte {
	full := CKBHash(data)

	var result [Blake160Length]byte
	copy(result[:], full[:Blake160Length])
	return result
}

func packedHash(c codec.Codec, value any) ([HashLength]byte, error) {
	packed, err := c.Pack(value)
	if err != nil {
		return [HashLength]byte{}, err
	}
	return CKBHash(packed), nil
}

// ScriptHash 计算脚本的哈希，即编码后 Script 的 ckb-hash
func ScriptHash(script any) ([HashLength]byte, error) {
	return packedHash(blockchain.Script, script)
}

// TransactionHash 计算交易哈希，只对 RawTransaction 部分计算，不包含 witnesses
func TransactionHash(rawTx any) ([HashLength]byte, error) {
	return packedHash(blockchain.RawTransaction, rawTx)
}

// WitnessHash 计算包含 witnesses 的完整交易的哈希
func WitnessHash(tx any) ([HashLength]byte, error) {
	return packedHash(blockchain.Transaction, tx)
}

// HeaderHash 计算区块哈希，即编码后 Header 的 ckb-hash
func HeaderHash(header any) ([HashLength]byte, error) {
	return packedHash(blockchain.Header, header)
}
