package utils

import (
	"github.com/chain-lab/go-molecule/interfaces"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/storage"
)

// ErrNotFound 是 leveldb 中键不存在时返回的错误
var ErrNotFound = leveldb.ErrNotFound

var _ interfaces.Database = (*LevelDB)(nil)

type LevelDB struct {
	db *leveldb.DB
}

// NewLevelDB 打开 path 下的 leveldb 数据库，目录不存在时会被创建
func NewLevelDB(path string) (*LevelDB, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		log.WithField("error", err).Errorln("Open leveldb failed.")
		return nil, errors.Wrapf(err, "open leveldb %s", path)
	}
	return &LevelDB{db: db}, nil
}

// NewMemoryLevelDB 创建基于内存的数据库，主要用于测试和一次性的命令
func NewMemoryLevelDB() (*LevelDB, error) {
	db, err := leveldb.Open(storage.NewMemStorage(), nil)
	if err != nil {
		log.WithField("error", err).Errorln("Open memory leveldb failed.")
		return nil, err
	}
	return &LevelDB{db: db}, nil
}

func (ld *LevelDB) Get(key []byte) ([]byte, error) {
	return ld.db.Get(key, nil)
}

func (ld *LevelDB) Has(key []byte) (bool, error) {
	return ld.db.Has(key, nil)
}

func (ld *LevelDB) Insert(key []byte, value []byte) error {
	return ld.db.Put(key, value, nil)
}

func (ld *LevelDB) Remove(key []byte) error {
	return ld.db.Delete(key, nil)
}

func (ld *LevelDB) BatchInsert(key [][]byte, value [][]byte) error {
	if len(key) != len(value) {
		log.Errorln("Key/Value length not match.")
		return errors.New("batch insert failed: key/value length not match")
	}

	batch := new(leveldb.Batch)
	for idx := range key {
		batch.Put(key[idx], value[idx])
	}

	return ld.db.Write(batch, nil)
}

func (ld *LevelDB) BatchDelete(key [][]byte) error {
	batch := new(leveldb.Batch)
	for idx := range key {
		batch.Delete(key[idx])
	}

	return ld.db.Write(batch, nil)
}

func (ld *LevelDB) Close() error {
	return ld.db.Close()
}
