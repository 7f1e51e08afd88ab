package main

import (
	"github.com/chain-lab/go-molecule/core"
	"github.com/gookit/config/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"net/http"
	"os"
)

// 测试指令：
// ./molc list
// ./molc pack Script '{"codeHash":"0x9bd7...","hashType":"type","args":"0x"}'
// ./molc -s ./blockchain.mol unpack Script 0x3d000000...
// ./molc -c config.yml --metrics store 0x...
func main() {
	pflag.Parse()

	// 显示帮助信息，每个选项相关的功能
	if help || pflag.NArg() == 0 {
		pflag.Usage()
		return
	}

	// 当前的日志级别是否设置为 Trace
	if trace {
		log.SetLevel(log.TraceLevel)
	}

	// 当前的日志级别是否设置为 Debug
	if debug {
		log.SetLevel(log.DebugLevel)
	}

	// 加载 config 配置文件
	if cfg != "" {
		if err := core.LoadConfig(cfg); err != nil {
			os.Exit(1)
		}
	}

	if metrics {
		metricPort := ":" + config.String("metrics.port", "9100")
		http.Handle("/metrics", promhttp.Handler())
		go http.ListenAndServe(metricPort, nil)
		log.Infof("Metric server start on localhost%s", metricPort)
	}

	if err := run(pflag.Args(), os.Stdout); err != nil {
		log.WithField("error", err).Errorln("Command failed.")
		os.Exit(1)
	}
}
