package main

import (
	"fmt"
	"github.com/spf13/pflag"
	"os"
)

var (
	datadir    string
	cfg        string
	schemaPath string
	help       bool
	debug      bool
	trace      bool
	metrics    bool
)

func init() {
	pflag.StringVarP(&datadir, "datadir", "d", "", "Data directory path, overrides store.path")
	pflag.StringVarP(&cfg, "config", "c", "", "Config file path")
	pflag.StringVarP(&schemaPath, "schema", "s", "", "Schema file (.mol/.yaml), built-in blockchain schema by default")
	pflag.BoolVarP(&help, "help", "h", false, "Command help")
	pflag.BoolVar(&debug, "debug", false, "Debug log level")
	pflag.BoolVar(&trace, "trace", false, "Track log level")
	pflag.BoolVar(&metrics, "metrics", false, "Open metrics service")

	pflag.Usage = usage
}

func usage() {
	fmt.Fprintf(os.Stderr, `molc version: 1.0.0
Usage: molc [-c config] [-s schema] [-d datadir] [--debug] <command> [args]

Commands:
  compile <schema>          compile a schema file and list its types
  list                      list types of the current schema
  pack <type> <json>        pack a JSON value, print hex
  unpack <type> <hex>       unpack hex bytes, print JSON
  store <hex>               insert a packed block into the store
  get block <hash|height>   print a stored block
  get tx <hash>             print a stored transaction
  get latest                print the latest block

Options:
`)
	pflag.PrintDefaults()
}
