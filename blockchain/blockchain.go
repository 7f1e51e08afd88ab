// Package blockchain
// @Description: 链上数据结构的编解码器，字段顺序和宽度与链的 blockchain.mol 保持一致
package blockchain

import (
	"github.com/chain-lab/go-molecule/codec"
)

var (
	Uint8   = codec.Uint8
	Uint32  = codec.Uint32LE
	Uint64  = codec.Uint64LE
	Uint128 = codec.Uint128LE
	Uint256 = codec.Uint256LE

	Byte32    = codec.FixedBytes(32)
	Byte32Vec = codec.Vector(Byte32)

	Bytes    = codec.Bytes
	BytesOpt = codec.Option(Bytes)
	BytesVec = codec.Vector(Bytes)

	HashType = byteEnum("hash type", hashTypes)
	DepType  = byteEnum("dep type", depTypes)
)

var (
	Script = codec.Must(codec.Table([]codec.Field{
		{Name: "codeHash", Codec: Byte32},
		{Name: "hashType", Codec: HashType},
		{Name: "args", Codec: Bytes},
	}))

	ScriptOpt = codec.Option(Script)

	OutPoint = codec.Must(codec.Struct([]codec.Field{
		{Name: "txHash", Codec: Byte32},
		{Name: "index", Codec: Uint32},
	}))

	CellInput = codec.Must(codec.Struct([]codec.Field{
		{Name: "since", Codec: Uint64},
		{Name: "previousOutput", Codec: OutPoint},
	}))

	CellInputVec = codec.Vector(CellInput)

	CellOutput = codec.Must(codec.Table([]codec.Field{
		{Name: "capacity", Codec: Uint64},
		{Name: "lock", Codec: Script},
		{Name: "type", Codec: ScriptOpt},
	}))

	CellOutputVec = codec.Vector(CellOutput)

	CellDep = codec.Must(codec.Struct([]codec.Field{
		{Name: "outPoint", Codec: OutPoint},
		{Name: "depType", Codec: DepType},
	}))

	CellDepVec = codec.Vector(CellDep)

	RawTransaction = codec.Must(codec.Table([]codec.Field{
		{Name: "version", Codec: Uint32},
		{Name: "cellDeps", Codec: CellDepVec},
		{Name: "headerDeps", Codec: Byte32Vec},
		{Name: "inputs", Codec: CellInputVec},
		{Name: "outputs", Codec: CellOutputVec},
		{Name: "outputsData", Codec: BytesVec},
	}))

	// BaseTransaction 是 {raw, witnesses} 形式的交易
	BaseTransaction = codec.Must(codec.Table([]codec.Field{
		{Name: "raw", Codec: RawTransaction},
		{Name: "witnesses", Codec: BytesVec},
	}))

	Transaction = flatten(BaseTransaction, "raw", rawTransactionFields, "witnesses")

	TransactionVec = codec.Vector(Transaction)

	RawHeader = codec.Must(codec.Struct([]codec.Field{
		{Name: "version", Codec: Uint32},
		{Name: "compactTarget", Codec: Uint32},
		{Name: "timestamp", Codec: Uint64},
		{Name: "number", Codec: Uint64},
		{Name: "epoch", Codec: Uint64},
		{Name: "parentHash", Codec: Byte32},
		{Name: "transactionsRoot", Codec: Byte32},
		{Name: "proposalsHash", Codec: Byte32},
		{Name: "extraHash", Codec: Byte32},
		{Name: "dao", Codec: Byte32},
	}))

	// BaseHeader 是 {raw, nonce} 形式的区块头
	BaseHeader = codec.Must(codec.Struct([]codec.Field{
		{Name: "raw", Codec: RawHeader},
		{Name: "nonce", Codec: Uint128},
	}))

	Header = flattenFixed(BaseHeader, "raw", rawHeaderFields, "nonce")

	ProposalShortId    = codec.FixedBytes(10)
	ProposalShortIdVec = codec.Vector(ProposalShortId)

	UncleBlock = codec.Must(codec.Table([]codec.Field{
		{Name: "header", Codec: Header},
		{Name: "proposals", Codec: ProposalShortIdVec},
	}))

	UncleBlockVec = codec.Vector(UncleBlock)

	Block = codec.Must(codec.Table([]codec.Field{
		{Name: "header", Codec: Header},
		{Name: "uncles", Codec: UncleBlockVec},
		{Name: "transactions", Codec: TransactionVec},
		{Name: "proposals", Codec: ProposalShortIdVec},
	}))

	BlockV1 = codec.Must(codec.Table([]codec.Field{
		{Name: "header", Codec: Header},
		{Name: "uncles", Codec: UncleBlockVec},
		{Name: "transactions", Codec: TransactionVec},
		{Name: "proposals", Codec: ProposalShortIdVec},
		{Name: "extension", Codec: Bytes},
	}))

	CellbaseWitness = codec.Must(codec.Table([]codec.Field{
		{Name: "lock", Codec: Script},
		{Name: "message", Codec: Bytes},
	}))

	WitnessArgs = WitnessArgsOf(codec.Hex, codec.Hex, codec.Hex)
)

// WitnessArgsOf
//
//	@Description: 三个字段都是 option(byteVecOf(X))，X 可以是自定义的载荷编解码器，例如 secp256k1 签名
//	@return codec.Codec
func WitnessArgsOf(lock, inputType, outputType codec.Codec) codec.Codec {
	return codec.Must(codec.Table([]codec.Field{
		{Name: "lock", Codec: codec.Option(codec.ByteVecOf(lock))},
		{Name: "inputType", Codec: codec.Option(codec.ByteVecOf(inputType))},
		{Name: "outputType", Codec: codec.Option(codec.ByteVecOf(outputType))},
	}))
}

// Codecs 返回类型名到编解码器的映射，名称与 blockchain.mol 一致
func Codecs() map[string]codec.Codec {
	return map[string]codec.Codec{
		"Uint8":              Uint8,
		"Uint32":             Uint32,
		"Uint64":             Uint64,
		"Uint128":            Uint128,
		"Uint256":            Uint256,
		"Byte32":             Byte32,
		"Byte32Vec":          Byte32Vec,
		"Bytes":              Bytes,
		"BytesOpt":           BytesOpt,
		"BytesVec":           BytesVec,
		"HashType":           HashType,
		"DepType":            DepType,
		"Script":             Script,
		"ScriptOpt":          ScriptOpt,
		"OutPoint":           OutPoint,
		"CellInput":          CellInput,
		"CellInputVec":       CellInputVec,
		"CellOutput":         CellOutput,
		"CellOutputVec":      CellOutputVec,
		"CellDep":            CellDep,
		"CellDepVec":         CellDepVec,
		"RawTransaction":     RawTransaction,
		"Transaction":        Transaction,
		"TransactionVec":     TransactionVec,
		"RawHeader":          RawHeader,
		"Header":             Header,
		"ProposalShortId":    ProposalShortId,
		"ProposalShortIdVec": ProposalShortIdVec,
		"UncleBlock":         UncleBlock,
		"UncleBlockVec":      UncleBlockVec,
		"Block":              Block,
		"BlockV1":            BlockV1,
		"CellbaseWitness":    CellbaseWitness,
		"WitnessArgs":        WitnessArgs,
	}
}
