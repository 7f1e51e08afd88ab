/**
  @author: decision
  @date: 2024/3/11
  @note: 定长无符号整数编解码器
**/

package codec

import (
	"encoding/binary"
	"fmt"
	"github.com/pkg/errors"
	"math"
	"math/big"
)

const headerSize = 4

var (
	Uint8 = Uint(1, true)

	Uint16LE = Uint(2, true)
	Uint16BE = Uint(2, false)
	Uint16   = Uint16LE

	Uint32LE = Uint(4, true)
	Uint32BE = Uint(4, false)
	Uint32   = Uint32LE

	Uint64LE = Uint(8, true)
	Uint64BE = Uint(8, false)
	Uint64   = Uint64LE

	Uint128LE = Uint(16, true)
	Uint128BE = Uint(16, false)
	Uint128   = Uint128LE

	Uint256LE = Uint(32, true)
	Uint256BE = Uint(32, false)
	Uint256   = Uint256LE

	Uint512LE = Uint(64, true)
	Uint512BE = Uint(64, false)
	Uint512   = Uint512LE
)

// Uint
//
//	@Description: 创建 byteLength 字节的无符号整数编解码器。解码时宽度不超过 4 字节返回 uint32，
//	8 字节返回 uint64，更宽的返回 *big.Int
//	@param byteLength - 1、2、4、8、16、32、64 之一，其他值会 panic
//	@param littleEndian - 是否小端序
//	@return FixedCodec
func Uint(byteLength int, littleEndian bool) FixedCodec {
	switch byteLength {
	case 1, 2, 4, 8, 16, 32, 64:
	default:
		panic(fmt.Sprintf("unsupported uint byte length %d", byteLength))
	}

	typeName := fmt.Sprintf("Uint%d", byteLength*8)
	if byteLength > 1 {
		if littleEndian {
			typeName += "LE"
		} else {
			typeName += "BE"
		}
	}
	maxValue := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), uint(byteLength*8)), big.NewInt(1))

	return NewFixed(byteLength,
		func(v any) ([]byte, error) {
			n, err := ToBigInt(v)
			if err != nil {
				return nil, errors.WithMessage(err, typeName)
			}

			if n.Sign() < 0 || n.Cmp(maxValue) > 0 {
				return nil, errors.Wrapf(ErrRange, "%s: value must be between 0 and %s, but got %s", typeName, maxValue, n)
			}

			// FillBytes 输出大端序
			result := n.FillBytes(make([]byte, byteLength))
			if littleEndian {
				reverse(result)
			}
			return result, nil
		},
		func(buf []byte) (any, error) {
			be := make([]byte, byteLength)
			copy(be, buf)
			if littleEndian {
				reverse(be)
			}

			switch {
			case byteLength <= 4:
				var n uint32
				for _, b := range be {
					n = n<<8 | uint32(b)
				}
				return n, nil
			case byteLength == 8:
				return binary.BigEndian.Uint64(be), nil
			default:
				return new(big.Int).SetBytes(be), nil
			}
		},
	)
}

func reverse(buf []byte) {
	for i, j := 0, len(buf)-1; i < j; i, j = i+1, j-1 {
		buf[i], buf[j] = buf[j], buf[i]
	}
}

// packUint32 用于长度头和偏移量，超过 uint32 表示范围时返回 ErrRange
func packUint32(n int) ([]byte, error) {
	if n < 0 || uint64(n) > math.MaxUint32 {
		return nil, errors.Wrapf(ErrRange, "%d does not fit in a 4 bytes header", n)
	}

	result := make([]byte, headerSize)
	binary.LittleEndian.PutUint32(result, uint32(n))
	return result, nil
}

func readUint32(buf []byte) uint32 {
	return binary.LittleEndian.Uint32(buf[:headerSize])
}
