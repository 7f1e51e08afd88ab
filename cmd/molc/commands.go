package main

import (
	"fmt"
	"github.com/chain-lab/go-molecule/blockchain"
	"github.com/chain-lab/go-molecule/codec"
	"github.com/chain-lab/go-molecule/common"
	"github.com/chain-lab/go-molecule/core"
	molmetrics "github.com/chain-lab/go-molecule/metrics"
	"github.com/chain-lab/go-molecule/molecule"
	"github.com/chain-lab/go-molecule/utils"
	"github.com/gookit/config/v2"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"io"
	"strconv"
	"strings"
	"time"
)

var errUsage = errors.New("invalid usage")

// 数字按 json.Number 读取，避免 uint64 和 Uint128 精度丢失
var json = jsoniter.Config{
	EscapeHTML:  false,
	SortMapKeys: true,
	UseNumber:   true,
}.Froze()

type command struct {
	minArgs int
	run     func(args []string, out io.Writer) error
}

var commands map[string]command

func init() {
	commands = map[string]command{
		"compile": {minArgs: 1, run: compileCommand},
		"list":    {minArgs: 0, run: listCommand},
		"pack":    {minArgs: 2, run: packCommand},
		"unpack":  {minArgs: 2, run: unpackCommand},
		"store":   {minArgs: 1, run: storeCommand},
		"get":     {minArgs: 1, run: getCommand},
	}
}

func run(args []string, out io.Writer) error {
	if len(args) == 0 {
		return errors.Wrap(errUsage, "missing command")
	}

	cmd, ok := commands[args[0]]
	if !ok {
		return errors.Wrapf(errUsage, "unknown command %s", args[0])
	}
	if len(args)-1 < cmd.minArgs {
		return errors.Wrapf(errUsage, "%s expects %d arguments", args[0], cmd.minArgs)
	}
	return cmd.run(args[1:], out)
}

// compileSchema 读取并编译 schema 文件，记录编译耗时
func compileSchema(path string) (molecule.Codecs, error) {
	decls, err := molecule.LoadFile(path)
	if err != nil {
		return nil, err
	}

	compileStart := time.Now()
	codecs, err := molecule.Compile(decls, nil)
	if err != nil {
		return nil, err
	}
	molmetrics.CompileSchemaMetricsSet(float64(time.Since(compileStart).Microseconds()))

	log.WithFields(log.Fields{
		"path":  path,
		"types": len(codecs),
	}).Debugln("Compile schema.")
	return codecs, nil
}

// currentCodecs 优先使用 --schema，其次是配置项 schema.path，都没有时使用内置的 blockchain 编解码器
func currentCodecs() (molecule.Codecs, error) {
	path := schemaPath
	if path == "" {
		path = config.String("schema.path")
	}
	if path == "" {
		return molecule.Codecs(blockchain.Codecs()), nil
	}
	return compileSchema(path)
}

func printCodecs(codecs molecule.Codecs, out io.Writer) {
	for _, name := range codecs.Names() {
		if fixed, ok := codec.IsFixed(codecs[name]); ok {
			fmt.Fprintf(out, "%s\tfixed(%d)\n", name, fixed.ByteLength())
		} else {
			fmt.Fprintf(out, "%s\tdynamic\n", name)
		}
	}
}

func compileCommand(args []string, out io.Writer) error {
	codecs, err := compileSchema(args[0])
	if err != nil {
		return err
	}
	printCodecs(codecs, out)
	return nil
}

func listCommand(_ []string, out io.Writer) error {
	codecs, err := currentCodecs()
	if err != nil {
		return err
	}
	printCodecs(codecs, out)
	return nil
}

func packCommand(args []string, out io.Writer) error {
	codecs, err := currentCodecs()
	if err != nil {
		return err
	}
	c, err := codecs.Get(args[0])
	if err != nil {
		return err
	}

	var value any
	if err := json.UnmarshalFromString(args[1], &value); err != nil {
		return errors.Wrap(err, "decode json value")
	}

	packed, err := utils.Pack(args[0], c, value)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, codec.Hexify(packed))
	return nil
}

func unpackCommand(args []string, out io.Writer) error {
	codecs, err := currentCodecs()
	if err != nil {
		return err
	}
	c, err := codecs.Get(args[0])
	if err != nil {
		return err
	}

	data, err := codec.Bytify(args[1])
	if err != nil {
		return err
	}

	value, err := utils.Unpack(args[0], c, data)
	if err != nil {
		return err
	}
	return printJSON(value, out)
}

func printJSON(value any, out io.Writer) error {
	result, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(out, string(result))
	return nil
}

// openChain 打开区块存储，--datadir 优先于配置项 store.path
func openChain() (*core.BlockChain, func(), error) {
	path := datadir
	if path == "" {
		path = core.StorePath()
	}

	db, err := utils.NewLevelDB(path)
	if err != nil {
		return nil, nil, err
	}

	chain, err := core.NewBlockchain(db)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	return chain, func() { db.Close() }, nil
}

func storeCommand(args []string, out io.Writer) error {
	data, err := codec.Bytify(args[0])
	if err != nil {
		return err
	}
	block, err := utils.DeserializeBlock(data)
	if err != nil {
		return err
	}

	chain, closer, err := openChain()
	if err != nil {
		return err
	}
	defer closer()

	if err := chain.InsertBlock(block); err != nil {
		return err
	}
	fmt.Fprintln(out, block.BlockHash())
	return nil
}

func getCommand(args []string, out io.Writer) error {
	chain, closer, err := openChain()
	if err != nil {
		return err
	}
	defer closer()

	switch args[0] {
	case "latest":
		block, err := chain.GetLatestBlock()
		if err != nil {
			return err
		}
		return printJSON(block.ToValue(), out)
	case "block":
		if len(args) < 2 {
			return errors.Wrap(errUsage, "get block expects a hash or height")
		}
		block, err := getBlock(chain, args[1])
		if err != nil {
			return err
		}
		return printJSON(block.ToValue(), out)
	case "tx":
		if len(args) < 2 {
			return errors.Wrap(errUsage, "get tx expects a hash")
		}
		hash, err := parseHash(args[1])
		if err != nil {
			return err
		}
		tx, err := chain.GetTransactionByHash(hash)
		if err != nil {
			return err
		}
		return printJSON(tx.ToValue(), out)
	}
	return errors.Wrapf(errUsage, "unknown get target %s", args[0])
}

func getBlock(chain *core.BlockChain, key string) (*common.Block, error) {
	if strings.HasPrefix(key, "0x") {
		hash, err := parseHash(key)
		if err != nil {
			return nil, err
		}
		return chain.GetBlockByHash(hash)
	}

	height, err := strconv.ParseUint(key, 10, 64)
	if err != nil {
		return nil, errors.Wrapf(errUsage, "invalid block height %s", key)
	}
	return chain.GetBlockByHeight(height)
}

func parseHash(s string) (common.Hash, error) {
	var hash common.Hash
	b, err := codec.Bytify(s)
	if err != nil {
		return hash, err
	}
	if len(b) != common.HashLength {
		return hash, errors.Wrapf(codec.ErrLength, "hash expects %d bytes, got %d", common.HashLength, len(b))
	}
	copy(hash[:], b)
	return hash, nil
}
