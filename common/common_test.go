package common

import (
	"github.com/chain-lab/go-molecule/blockchain"
	"github.com/chain-lab/go-molecule/codec"
	"github.com/chain-lab/go-molecule/crypto"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"math/big"
	"testing"
)

func mustHash(t *testing.T, s string) Hash {
	t.Helper()
	h, err := hashFromValue(s)
	require.NoError(t, err)
	return h
}

func sampleScript(t *testing.T) Script {
	return Script{
		CodeHash: mustHash(t, "0x9bd7e06f3ecf4be0f2fcd2188b23f1b9fcc88e5d4b65a8637b17723bbda3cce8"),
		HashType: HashTypeType,
		Args:     []byte{0xaa, 0xbb, 0xcc, 0xdd},
	}
}

func sampleTransaction(t *testing.T) Transaction {
	lock := sampleScript(t)
	typeScript := Script{CodeHash: mustHash(t, "0x"+repeat("11")), HashType: HashTypeData1, Args: []byte{0x01}}

	return Transaction{
		RawTransaction: RawTransaction{
			Version: 0,
			CellDeps: []CellDep{{
				OutPoint: OutPoint{TxHash: mustHash(t, "0x"+repeat("22")), Index: 1},
				DepType:  DepTypeDepGroup,
			}},
			HeaderDeps: []Hash{mustHash(t, "0x"+repeat("33"))},
			Inputs: []CellInput{{
				Since:          16,
				PreviousOutput: OutPoint{TxHash: mustHash(t, "0x"+repeat("44")), Index: 2},
			}},
			Outputs: []CellOutput{
				{Capacity: 6100000000, Lock: lock},
				{Capacity: 1, Lock: lock, Type: &typeScript},
			},
			OutputsData: [][]byte{{0xab}, {0xcd, 0xef}},
		},
		Witnesses: [][]byte{{0x31, 0x31}},
	}
}

func sampleHeader(t *testing.T) Header {
	return Header{
		RawHeader: RawHeader{
			Version:          0,
			CompactTarget:    0x1a2d3494,
			Timestamp:        0x170aba663c3,
			Number:           0xfb1bc,
			Epoch:            0x7080612000287,
			ParentHash:       mustHash(t, "0x3134874027b9b2b17391d2fa545344b10bd8b8c49d9ea47d55a447d01142b21b"),
			TransactionsRoot: mustHash(t, "0x68a83c880eb942396d22020aa83343906986f66418e9b8a4488f2866ecc4e86a"),
			Dao:              mustHash(t, "0x40b4d9a3ddc9e730736c7342a2f023001240f362253b780000b6ca2f1e790107"),
		},
		Nonce: big.NewInt(0x1584a00100),
	}
}

func repeat(s string) string {
	result := ""
	for i := 0; i < HashLength; i++ {
		result += s
	}
	return result
}

func roundTrip(t *testing.T, c codec.Codec, v any) any {
	t.Helper()
	packed, err := c.Pack(v)
	require.NoError(t, err)
	unpacked, err := c.Unpack(packed)
	require.NoError(t, err)
	return unpacked
}

// nonce 用 Cmp 比较，避免 big.Int 内部表示不同导致断言失败
func requireHeaderEqual(t *testing.T, want, got Header) {
	t.Helper()
	require.Equal(t, 0, want.Nonce.Cmp(got.Nonce))
	require.Equal(t, want.RawHeader, got.RawHeader)
}

func TestScriptValue(t *testing.T) {
	script := sampleScript(t)

	value := roundTrip(t, blockchain.Script, script.ToValue())
	decoded, err := ScriptFromValue(value)
	require.NoError(t, err)
	require.Equal(t, script, *decoded)

	hash, err := script.Hash()
	require.NoError(t, err)
	want, err := crypto.ScriptHash(value)
	require.NoError(t, err)
	require.Equal(t, Hash(want), hash)
}

func TestTransactionValue(t *testing.T) {
	tx := sampleTransaction(t)

	value := roundTrip(t, blockchain.Transaction, tx.ToValue())
	decoded, err := TransactionFromValue(value)
	require.NoError(t, err)
	require.Equal(t, tx, *decoded)

	// {raw, witnesses} 形式
	nested := codec.Object{"raw": tx.RawTransaction.ToValue(), "witnesses": []any{"0x3131"}}
	decoded, err = TransactionFromValue(nested)
	require.NoError(t, err)
	require.Equal(t, tx, *decoded)
}

func TestTransactionVerify(t *testing.T) {
	tx := sampleTransaction(t)

	hash, err := tx.Hash()
	require.NoError(t, err)
	require.True(t, tx.Verify(hash))

	// witnesses 不影响交易哈希，但会影响 witness hash
	witnessHash, err := tx.WitnessHash()
	require.NoError(t, err)
	tx.Witnesses = append(tx.Witnesses, []byte{0x01})
	require.True(t, tx.Verify(hash))
	changed, err := tx.WitnessHash()
	require.NoError(t, err)
	require.NotEqual(t, witnessHash, changed)

	tx.Version = 1
	require.False(t, tx.Verify(hash))

	tx.CellDeps[0].DepType = "unknown"
	require.False(t, tx.Verify(hash))
}

func TestHeaderValue(t *testing.T) {
	header := sampleHeader(t)

	value := roundTrip(t, blockchain.Header, header.ToValue())
	decoded, err := HeaderFromValue(value)
	require.NoError(t, err)
	requireHeaderEqual(t, header, *decoded)

	nested := codec.Object{"raw": header.RawHeader.ToValue(), "nonce": "0x1584a00100"}
	decoded, err = HeaderFromValue(nested)
	require.NoError(t, err)
	requireHeaderEqual(t, header, *decoded)

	// nonce 为 nil 按 0 编码
	header.Nonce = nil
	packed, err := blockchain.Header.Pack(header.ToValue())
	require.NoError(t, err)
	require.Len(t, packed, 208)
}

func TestBlockValue(t *testing.T) {
	header := sampleHeader(t)
	block := Block{
		Header: header,
		Uncles: []UncleBlock{{
			Header:    header,
			Proposals: []ProposalShortId{{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}},
		}},
		Transactions: []Transaction{sampleTransaction(t)},
		Proposals:    []ProposalShortId{{0xff}},
	}

	value := roundTrip(t, blockchain.Block, block.ToValue())
	decoded, err := BlockFromValue(value)
	require.NoError(t, err)
	require.Nil(t, decoded.Extension)
	requireHeaderEqual(t, block.Header, decoded.Header)
	requireHeaderEqual(t, block.Uncles[0].Header, decoded.Uncles[0].Header)
	require.Equal(t, block.Uncles[0].Proposals, decoded.Uncles[0].Proposals)
	require.Equal(t, block.Transactions, decoded.Transactions)
	require.Equal(t, block.Proposals, decoded.Proposals)

	block.Extension = []byte{0x01, 0x02}
	value = roundTrip(t, blockchain.BlockV1, block.ToValue())
	decoded, err = BlockFromValue(value)
	require.NoError(t, err)
	require.Equal(t, block.Extension, decoded.Extension)

	hash, err := header.Hash()
	require.NoError(t, err)
	require.Equal(t, hash.Hex(), block.BlockHash())
	require.Equal(t, header.ParentHash.Hex(), block.PrevBlockHash())
}

func TestIsGenesisBlock(t *testing.T) {
	block := Block{Header: Header{Nonce: big.NewInt(0)}}
	require.True(t, block.IsGenesisBlock())

	block.Header.Number = 1
	require.False(t, block.IsGenesisBlock())

	block.Header.Number = 0
	block.Header.ParentHash[0] = 1
	require.False(t, block.IsGenesisBlock())
}

func TestWitnessArgsValue(t *testing.T) {
	witness := WitnessArgs{Lock: []byte{0x12, 0x34}}

	value := roundTrip(t, blockchain.WitnessArgs, witness.ToValue())
	decoded, err := WitnessArgsFromValue(value)
	require.NoError(t, err)
	require.Equal(t, witness, *decoded)

	packed, err := blockchain.WitnessArgs.Pack((&WitnessArgs{}).ToValue())
	require.NoError(t, err)
	require.Equal(t, "0x10000000100000001000000010000000", codec.Hexify(packed))
}

func TestCellbaseWitnessValue(t *testing.T) {
	witness := CellbaseWitness{Lock: sampleScript(t), Message: []byte{0x01}}

	value := roundTrip(t, blockchain.CellbaseWitness, witness.ToValue())
	decoded, err := CellbaseWitnessFromValue(value)
	require.NoError(t, err)
	require.Equal(t, witness, *decoded)
}

func TestFromValueErrors(t *testing.T) {
	_, err := ScriptFromValue("script")
	require.True(t, errors.Is(err, codec.ErrType))

	_, err = ScriptFromValue(codec.Object{"codeHash": "0x00", "hashType": "type", "args": "0x"})
	require.True(t, errors.Is(err, codec.ErrLength))
	require.Contains(t, err.Error(), "field codeHash")

	_, err = OutPointFromValue(codec.Object{"txHash": "0x" + repeat("00")})
	require.True(t, errors.Is(err, codec.ErrType))
	require.Contains(t, err.Error(), "field index")

	sampleTx := sampleTransaction(t)
	tx := sampleTx.ToValue()
	tx["inputs"] = []any{codec.Object{"since": "0x1"}}
	_, err = TransactionFromValue(tx)
	require.Error(t, err)
	require.Contains(t, err.Error(), "field inputs")

	_, err = BlockFromValue(codec.Object{"header": codec.Object{}})
	require.Error(t, err)
}
