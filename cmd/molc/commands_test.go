package main

import (
	"bytes"
	"github.com/chain-lab/go-molecule/codec"
	"github.com/chain-lab/go-molecule/common"
	"github.com/chain-lab/go-molecule/core"
	"github.com/chain-lab/go-molecule/utils"
	"github.com/stretchr/testify/require"
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const (
	scriptJSON = `{"codeHash":"0x9bd7e06f3ecf4be0f2fcd2188b23f1b9fcc88e5d4b65a8637b17723bbda3cce8","hashType":"type","args":"0xaabbccdd44332211"}`
	scriptHex  = "0x3d0000001000000030000000310000009bd7e06f3ecf4be0f2fcd2188b23f1b9fcc88e5d4b65a8637b17723bbda3cce80108000000aabbccdd44332211"
)

func runOutput(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := run(args, &out)
	return strings.TrimSpace(out.String()), err
}

func TestRunUsage(t *testing.T) {
	_, err := runOutput(t)
	require.ErrorIs(t, err, errUsage)

	_, err = runOutput(t, "unknown")
	require.ErrorIs(t, err, errUsage)

	_, err = runOutput(t, "pack", "Script")
	require.ErrorIs(t, err, errUsage)
}

func TestPackAndUnpack(t *testing.T) {
	out, err := runOutput(t, "pack", "Script", scriptJSON)
	require.NoError(t, err)
	require.Equal(t, scriptHex, out)

	out, err = runOutput(t, "unpack", "Script", scriptHex)
	require.NoError(t, err)
	require.JSONEq(t, scriptJSON, out)

	// 大整数使用 json.Number，不会丢失精度
	out, err = runOutput(t, "pack", "Uint64", "18446744073709551615")
	require.NoError(t, err)
	require.Equal(t, "0xffffffffffffffff", out)

	_, err = runOutput(t, "pack", "Script", `{"codeHash":"0x00"}`)
	require.Error(t, err)

	_, err = runOutput(t, "pack", "Missing", "{}")
	require.Error(t, err)

	_, err = runOutput(t, "unpack", "Script", "0x00")
	require.ErrorIs(t, err, codec.ErrStructure)
}

func TestListAndCompile(t *testing.T) {
	out, err := runOutput(t, "list")
	require.NoError(t, err)
	require.Contains(t, out, "Script\tdynamic")
	require.Contains(t, out, "OutPoint\tfixed(36)")

	path := filepath.Join(t.TempDir(), "point.mol")
	require.NoError(t, os.WriteFile(path, []byte(`
array Uint32 [byte; 4];
array Byte32 [byte; 32];
struct OutPoint { tx_hash: Byte32, index: Uint32 }
vector OutPointVec <OutPoint>;
`), 0644))

	out, err = runOutput(t, "compile", path)
	require.NoError(t, err)
	require.Equal(t, "Byte32\tfixed(32)\nOutPoint\tfixed(36)\nOutPointVec\tdynamic\nUint32\tfixed(4)", out)

	schemaPath = path
	defer func() { schemaPath = "" }()
	out, err = runOutput(t, "pack", "Uint32", "16")
	require.NoError(t, err)
	require.Equal(t, "0x10000000", out)
}

func TestStoreAndGet(t *testing.T) {
	datadir = t.TempDir()
	defer func() { datadir = "" }()

	block := &common.Block{
		Header: common.Header{Nonce: big.NewInt(1)},
	}
	root, err := core.TransactionsRoot(nil)
	require.NoError(t, err)
	block.Header.TransactionsRoot = root

	data, err := utils.SerializeBlock(block)
	require.NoError(t, err)

	out, err := runOutput(t, "store", codec.Hexify(data))
	require.NoError(t, err)
	require.Equal(t, block.BlockHash(), out)

	out, err = runOutput(t, "get", "latest")
	require.NoError(t, err)
	require.Contains(t, out, root.Hex())

	byHeight, err := runOutput(t, "get", "block", "0")
	require.NoError(t, err)
	require.Equal(t, out, byHeight)

	byHash, err := runOutput(t, "get", "block", block.BlockHash())
	require.NoError(t, err)
	require.Equal(t, out, byHash)

	_, err = runOutput(t, "get", "tx", "0x1234")
	require.ErrorIs(t, err, codec.ErrLength)

	_, err = runOutput(t, "get", "block", "abc")
	require.ErrorIs(t, err, errUsage)

	// 解码后的 JSON 可以重新编码为 Block
	out, err = runOutput(t, "pack", "Block", out)
	require.NoError(t, err)
	require.Equal(t, codec.Hexify(data), out)
}
