package codec

import (
	"encoding/hex"
	"github.com/pkg/errors"
)

// Bytify
//
//	@Description: 把 0x 前缀、偶数位的十六进制字符串转换为字节数组
//	@param s - 十六进制字符串，前缀必须是小写的 0x，数字大小写均可
//	@return []byte - 转换结果
func Bytify(s string) ([]byte, error) {
	if len(s) < 2 || s[0] != '0' || s[1] != 'x' {
		return nil, errors.Wrapf(ErrFormat, "hex string %q must start with 0x", abbreviate(s))
	}

	body := s[2:]
	if len(body)%2 != 0 {
		return nil, errors.Wrapf(ErrFormat, "hex string %q has odd length", abbreviate(s))
	}

	result, err := hex.DecodeString(body)
	if err != nil {
		return nil, errors.Wrapf(ErrFormat, "hex string %q: %v", abbreviate(s), err)
	}
	return result, nil
}

// MustBytify 只用于常量和测试
func MustBytify(s string) []byte {
	result, err := Bytify(s)
	if err != nil {
		panic(err)
	}
	return result
}

// Hexify 把字节数组转换为 0x 前缀的小写十六进制字符串，空数组返回 "0x"
func Hexify(buf []byte) string {
	return "0x" + hex.EncodeToString(buf)
}

// Concat 拼接多个字节数组
func Concat(parts ...[]byte) []byte {
	size := 0
	for _, part := range parts {
		size += len(part)
	}

	result := make([]byte, 0, size)
	for _, part := range parts {
		result = append(result, part...)
	}
	return result
}

func abbreviate(s string) string {
	if len(s) > 20 {
		return s[:20] + "..."
	}
	return s
}

// Hex 是变长的十六进制编解码器，没有长度头
var Hex = New(
	func(v any) ([]byte, error) {
		return ToBytes(v)
	},
	func(buf []byte) (any, error) {
		return Hexify(buf), nil
	},
)

// FixedBytes
//
//	@Description: 定长字节编解码器，例如 32 字节的哈希
//	@param byteLength - 字节长度
//	@return FixedCodec - 编码输入可以是十六进制字符串或字节数组，解码输出十六进制字符串
func FixedBytes(byteLength int) FixedCodec {
	return NewFixed(byteLength,
		func(v any) ([]byte, error) {
			return ToBytes(v)
		},
		func(buf []byte) (any, error) {
			return Hexify(buf), nil
		},
	)
}

// ByteArrayOf 把任意编解码器包装为 byteLength 长度的定长编解码器，对应 array X [byte; n]
func ByteArrayOf(c Codec, byteLength int) FixedCodec {
	return NewFixed(byteLength, c.Pack, c.Unpack)
}

// ByteOf 对应单字节的自定义编解码器
func ByteOf(c Codec) FixedCodec {
	return ByteArrayOf(c, 1)
}

// ByteVecOf
//
//	@Description: 对应 vector X <byte>，在内部编码结果前加上 4 字节小端长度头
//	@param c - 负责载荷部分的编解码器
//	@return Codec
func ByteVecOf(c Codec) Codec {
	return New(
		func(v any) ([]byte, error) {
			payload, err := c.Pack(v)
			if err != nil {
				return nil, err
			}

			header, err := packUint32(len(payload))
			if err != nil {
				return nil, err
			}
			return Concat(header, payload), nil
		},
		func(buf []byte) (any, error) {
			if len(buf) < headerSize {
				return nil, errors.Wrapf(ErrStructure,
					"byte vector is too short, expected at least %d bytes, got %d", headerSize, len(buf))
			}

			size := readUint32(buf)
			if uint64(size) != uint64(len(buf)-headerSize) {
				return nil, errors.Wrapf(ErrStructure,
					"byte vector size %d read from header does not match payload length %d", size, len(buf)-headerSize)
			}
			return c.Unpack(buf[headerSize:])
		},
	)
}

// Bytes 对应 molecule 中的 vector Bytes <byte>
var Bytes = ByteVecOf(Hex)
