package common

import (
	"github.com/chain-lab/go-molecule/crypto"
	"github.com/chain-lab/go-molecule/metrics"
	log "github.com/sirupsen/logrus"
	"time"
)

// Hash 计算交易哈希，只覆盖 raw 部分
func (tx *RawTransaction) Hash() (Hash, error) {
	return crypto.TransactionHash(tx.ToValue())
}

// WitnessHash 计算包含 witnesses 的交易哈希
func (tx *Transaction) WitnessHash() (Hash, error) {
	return crypto.WitnessHash(tx.ToValue())
}

// Hash 计算 type 脚本和 lock 脚本使用的脚本哈希
func (s *Script) Hash() (Hash, error) {
	return crypto.ScriptHash(s.ToValue())
}

// Verify
//
//	@Description: 交易验证方法，重新编码交易并比较交易哈希
//	@receiver tx
//	@param expected - 交易携带的哈希
//	@return bool - 哈希是否一致
func (tx *Transaction) Verify(expected Hash) bool {
	verifyStart := time.Now()
	defer func() {
		metrics.VerifyTransactionMetricsSet(float64(time.Since(verifyStart).Milliseconds()))
	}()

	hash, err := tx.Hash()
	if err != nil {
		log.WithField("error", err).Debugln("Pack transaction failed.")
		return false
	}

	if hash != expected {
		log.WithFields(log.Fields{
			"hash":  expected.Hex()[:10],
			"local": hash.Hex(),
		}).Debugln("Transaction hash not match.")
		return false
	}
	return true
}
