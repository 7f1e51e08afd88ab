package blockchain

import (
	"github.com/chain-lab/go-molecule/codec"
	"github.com/pkg/errors"
)

const (
	HashTypeData  = "data"
	HashTypeType  = "type"
	HashTypeData1 = "data1"
	HashTypeData2 = "data2"

	DepTypeCode     = "code"
	DepTypeDepGroup = "depGroup"
)

var (
	hashTypes = []string{HashTypeData, HashTypeType, HashTypeData1, HashTypeData2}
	depTypes  = []string{DepTypeCode, DepTypeDepGroup}
)

// byteEnum
//
//	@Description: 单字节的枚举，字节值为名称在 names 中的下标
//	@param kind - 枚举名称，用于错误信息
//	@param names - 按字节值排列的名称
//	@return codec.FixedCodec
func byteEnum(kind string, names []string) codec.FixedCodec {
	values := make(map[string]byte, len(names))
	for idx, name := range names {
		values[name] = byte(idx)
	}

	return codec.NewFixed(1,
		func(v any) ([]byte, error) {
			name, ok := v.(string)
			if !ok {
				return nil, errors.Wrapf(codec.ErrType, "%s must be a string, got %T", kind, v)
			}

			value, ok := values[name]
			if !ok {
				return nil, errors.Wrapf(codec.ErrUnknownVariant, "invalid %s: %s", kind, name)
			}
			return []byte{value}, nil
		},
		func(buf []byte) (any, error) {
			if int(buf[0]) >= len(names) {
				return nil, errors.Wrapf(codec.ErrUnknownVariant, "invalid %s: %d", kind, buf[0])
			}
			return names[buf[0]], nil
		},
	)
}
