package core

import (
	"github.com/chain-lab/go-molecule/common"
	"github.com/chain-lab/go-molecule/crypto"
	"github.com/stretchr/testify/require"
	"testing"
)

func leaf(b byte) common.Hash {
	return crypto.CKBHash([]byte{b})
}

func TestBuildMerkleTree(t *testing.T) {
	require.Equal(t, common.Hash{}, BuildMerkleTree(nil))

	a, b, c := leaf(1), leaf(2), leaf(3)
	require.Equal(t, a, BuildMerkleTree([]common.Hash{a}))
	require.Equal(t, mergeHash(a, b), BuildMerkleTree([]common.Hash{a, b}))

	// 三个叶子时 b、c 先合并，a 位于上一层
	require.Equal(t, mergeHash(mergeHash(b, c), a), BuildMerkleTree([]common.Hash{a, b, c}))

	d := leaf(4)
	require.Equal(t, mergeHash(mergeHash(a, b), mergeHash(c, d)), BuildMerkleTree([]common.Hash{a, b, c, d}))
}

func TestTransactionsRoot(t *testing.T) {
	root, err := TransactionsRoot(nil)
	require.NoError(t, err)
	require.Equal(t, mergeHash(common.Hash{}, common.Hash{}), root)

	tx := buildTransaction(1)
	txHash, err := tx.Hash()
	require.NoError(t, err)
	witnessHash, err := tx.WitnessHash()
	require.NoError(t, err)

	root, err = TransactionsRoot([]common.Transaction{*tx})
	require.NoError(t, err)
	require.Equal(t, mergeHash(txHash, witnessHash), root)

	tx.CellDeps = []common.CellDep{{DepType: "unknown"}}
	_, err = TransactionsRoot([]common.Transaction{*tx})
	require.Error(t, err)
}

func TestProposalsAndExtraHash(t *testing.T) {
	require.Equal(t, common.Hash{}, ProposalsHash(nil))

	id := common.ProposalShortId{1, 2, 3}
	require.Equal(t, common.Hash(crypto.CKBHash(id[:])), ProposalsHash([]common.ProposalShortId{id}))

	extra, err := ExtraHash(nil, nil)
	require.NoError(t, err)
	require.Equal(t, common.Hash{}, extra)

	extension := []byte{0xee}
	extensionHash := crypto.CKBHash(extension)
	extra, err = ExtraHash(nil, extension)
	require.NoError(t, err)
	require.Equal(t, common.Hash(crypto.CKBHash(make([]byte, common.HashLength), extensionHash[:])), extra)

	uncle := common.UncleBlock{Header: buildBlock(t, nil).Header}
	uncleHash, err := uncle.Header.Hash()
	require.NoError(t, err)
	extra, err = ExtraHash([]common.UncleBlock{uncle}, nil)
	require.NoError(t, err)
	require.Equal(t, common.Hash(crypto.CKBHash(uncleHash[:])), extra)
}
