// Package metrics
// @Description: 主要是和编解码、存储相关的指标信息
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// 按类型统计的编码次数
	packMetric = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "codec_pack_total",
		Help: "Pack count by type.",
	}, []string{"type"})
	// 按类型统计的解码次数
	unpackMetric = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "codec_unpack_total",
		Help: "Unpack count by type.",
	}, []string{"type"})
	// 编解码失败次数
	codecErrorMetric = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "codec_error_total",
		Help: "Pack or unpack failures by type.",
	}, []string{"type", "op"})
	// 编译 schema 的耗时
	compileSchemaMetric = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "schema_compile_time",
		Help: "Schema compile time usage.",
	})
	// 验证交易哈希所消耗的时间
	verifyTransactionMetric = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "core_transaction_verify_time",
		Help: "Transaction verify time usage.",
	})
	// 存储中最新区块的高度
	storeHeightMetric = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "store_latest_height",
		Help: "Latest block height in store.",
	})
	// 写入存储的区块数量
	storeBlocksMetric = promauto.NewCounter(prometheus.CounterOpts{
		Name: "store_blocks_total",
		Help: "Blocks inserted into store.",
	})
)

func PackMetricsInc(typeName string) {
	packMetric.WithLabelValues(typeName).Inc()
}

func UnpackMetricsInc(typeName string) {
	unpackMetric.WithLabelValues(typeName).Inc()
}

func CodecErrorMetricsInc(typeName, op string) {
	codecErrorMetric.WithLabelValues(typeName, op).Inc()
}

func CompileSchemaMetricsSet(usage float64) {
	compileSchemaMetric.Set(usage)
}

func VerifyTransactionMetricsSet(usage float64) {
	verifyTransactionMetric.Set(usage)
}

func StoreHeightMetricsSet(height uint64) {
	storeHeightMetric.Set(float64(height))
}

func StoreBlocksMetricsInc() {
	storeBlocksMetric.Inc()
}
