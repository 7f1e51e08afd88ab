package utils

import (
	"github.com/chain-lab/go-molecule/blockchain"
	"github.com/chain-lab/go-molecule/codec"
	"github.com/chain-lab/go-molecule/common"
	"github.com/chain-lab/go-molecule/metrics"
	log "github.com/sirupsen/logrus"
)

// Pack 使用指定的编解码器编码，并记录指标
func Pack(typeName string, c codec.Codec, value any) ([]byte, error) {
	result, err := c.Pack(value)
	if err != nil {
		metrics.CodecErrorMetricsInc(typeName, "pack")
		log.WithFields(log.Fields{
			"type":  typeName,
			"error": err,
		}).Debugln("Pack failed.")
		return nil, err
	}

	metrics.PackMetricsInc(typeName)
	return result, nil
}

// Unpack 使用指定的编解码器解码，并记录指标
func Unpack(typeName string, c codec.Codec, data []byte) (any, error) {
	result, err := c.Unpack(data)
	if err != nil {
		metrics.CodecErrorMetricsInc(typeName, "unpack")
		log.WithFields(log.Fields{
			"type":  typeName,
			"error": err,
		}).Debugln("Unpack failed.")
		return nil, err
	}

	metrics.UnpackMetricsInc(typeName)
	return result, nil
}

// SerializeBlock 带 extension 的区块按 BlockV1 编码
func SerializeBlock(block *common.Block) ([]byte, error) {
	if block.Extension != nil {
		return Pack("BlockV1", blockchain.BlockV1, block.ToValue())
	}
	return Pack("Block", blockchain.Block, block.ToValue())
}

// DeserializeBlock
//
//	@Description: 先尝试按 BlockV1 解码，字段数不足时再按 Block 解码
//	@param byteBlockData - 编码后的区块
//	@return *common.Block
func DeserializeBlock(byteBlockData []byte) (*common.Block, error) {
	value, err := blockchain.BlockV1.Unpack(byteBlockData)
	if err == nil {
		metrics.UnpackMetricsInc("BlockV1")
	} else {
		value, err = Unpack("Block", blockchain.Block, byteBlockData)
		if err != nil {
			return nil, err
		}
	}

	return common.BlockFromValue(value)
}

func SerializeTransaction(tx *common.Transaction) ([]byte, error) {
	return Pack("Transaction", blockchain.Transaction, tx.ToValue())
}

func DeserializeTransaction(byteTxData []byte) (*common.Transaction, error) {
	value, err := Unpack("Transaction", blockchain.Transaction, byteTxData)
	if err != nil {
		return nil, err
	}
	return common.TransactionFromValue(value)
}

func SerializeHeader(header *common.Header) ([]byte, error) {
	return Pack("Header", blockchain.Header, header.ToValue())
}

func DeserializeHeader(byteHeaderData []byte) (*common.Header, error) {
	value, err := Unpack("Header", blockchain.Header, byteHeaderData)
	if err != nil {
		return nil, err
	}
	return common.HeaderFromValue(value)
}
