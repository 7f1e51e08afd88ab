/**
  @author: decision
  @date: 2023/5/18
  @note: 配置文件加载，支持 yaml 和环境变量
**/

package core

import (
	"github.com/gookit/config/v2"
	"github.com/gookit/config/v2/yaml"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const (
	defaultStorePath        = "./data"
	defaultBlockCache       = 1024
	defaultTransactionCache = 32768
)

// LoadConfig 在启动时运行一次，加载配置文件
func LoadConfig(filepath string) error {
	config.WithOptions(config.ParseEnv)

	config.AddDriver(yaml.Driver)

	err := config.LoadFiles(filepath)
	if err != nil {
		log.WithField("error", err).Errorln("Load config file failed.")
		return errors.Wrapf(err, "load config %s", filepath)
	}
	return nil
}

// StorePath 区块数据库的目录，对应配置项 store.path
func StorePath() string {
	return config.String("store.path", defaultStorePath)
}

func blockCacheSize() int {
	return config.Int("store.cache.blocks", defaultBlockCache)
}

func transactionCacheSize() int {
	return config.Int("store.cache.transactions", defaultTransactionCache)
}
