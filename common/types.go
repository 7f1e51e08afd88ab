/**
  @author: decision
  @date: 2024/3/18
  @note: 链上数据结构的 Go 类型，和 blockchain 包中的编解码器一一对应
**/

package common

import (
	"github.com/chain-lab/go-molecule/codec"
	"math/big"
)

const (
	HashLength            = 32
	ProposalShortIdLength = 10
)

// Hash 是 32 字节的哈希值
type Hash [HashLength]byte

// Hex 返回 0x 开头的小写十六进制
func (h Hash) Hex() string {
	return codec.Hexify(h[:])
}

func (h Hash) String() string {
	return h.Hex()
}

// IsZero 判断是否为全 0 哈希
func (h Hash) IsZero() bool {
	return h == Hash{}
}

type ProposalShortId [ProposalShortIdLength]byte

type HashType string

const (
	HashTypeData  HashType = "data"
	HashTypeType  HashType = "type"
	HashTypeData1 HashType = "data1"
	HashTypeData2 HashType = "data2"
)

type DepType string

const (
	DepTypeCode     DepType = "code"
	DepTypeDepGroup DepType = "depGroup"
)

type Script struct {
	CodeHash Hash
	HashType HashType
	Args     []byte
}

type OutPoint struct {
	TxHash Hash
	Index  uint32
}

type CellInput struct {
	Since          uint64
	PreviousOutput OutPoint
}

type CellOutput struct {
	Capacity uint64
	Lock     Script
	// Type 为 nil 表示没有 type 脚本
	Type *Script
}

type CellDep struct {
	OutPoint OutPoint
	DepType  DepType
}

type RawTransaction struct {
	Version     uint32
	CellDeps    []CellDep
	HeaderDeps  []Hash
	Inputs      []CellInput
	Outputs     []CellOutput
	OutputsData [][]byte
}

type Transaction struct {
	RawTransaction
	Witnesses [][]byte
}

type RawHeader struct {
	Version          uint32
	CompactTarget    uint32
	Timestamp        uint64
	Number           uint64
	Epoch            uint64
	ParentHash       Hash
	TransactionsRoot Hash
	ProposalsHash    Hash
	ExtraHash        Hash
	Dao              Hash
}

type Header struct {
	RawHeader
	Nonce *big.Int
}

type UncleBlock struct {
	Header    Header
	Proposals []ProposalShortId
}

type Block struct {
	Header       Header
	Uncles       []UncleBlock
	Transactions []Transaction
	Proposals    []ProposalShortId
	// Extension 不为 nil 时按 BlockV1 编码
	Extension []byte
}

// WitnessArgs 的三个字段为 nil 时表示不存在
type WitnessArgs struct {
	Lock       []byte
	InputType  []byte
	OutputType []byte
}

type CellbaseWitness struct {
	Lock    Script
	Message []byte
}
