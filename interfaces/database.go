package interfaces

// Database 是区块存储使用的键值数据库
type Database interface {
	Get(key []byte) ([]byte, error)
	Has(key []byte) (bool, error)
	Insert(key []byte, value []byte) error
	Remove(key []byte) error
	BatchInsert(key [][]byte, value [][]byte) error
	BatchDelete(key [][]byte) error
	Close() error
}
