package crypto

import (
	"github.com/chain-lab/go-molecule/codec"
	"github.com/pkg/errors"
)

const CompressedPublicKeyLength = 33

// PublicKey2Args
//
//	@Description: 压缩公钥 -> secp256k1 锁脚本的 args
//	@param pub - 33 字节的压缩公钥
//	@return string - 0x 开头的 20 字节 args
func PublicKey2Args(pub []byte) (string, error) {
	if len(pub) != CompressedPublicKeyLength {
		return "", errors.Wrapf(codec.ErrLength, "public key: got %d, should be %d", len(pub), CompressedPublicKeyLength)
	}

	args := Blake160(pub)
	return codec.Hexify(args[:]), nil
}

// Hash2Hex 把哈希值转换为 0x 开头的十六进制字符串
func Hash2Hex(hash [HashLength]byte) string {
	return codec.Hexify(hash[:])
}

// Hex2Hash 把十六进制字符串转换为哈希值，长度必须是 32 字节
func Hex2Hash(s string) ([HashLength]byte, error) {
	var result [HashLength]byte

	buf, err := codec.Bytify(s)
	if err != nil {
		return result, err
	}
	if len(buf) != HashLength {
		return result, errors.Wrapf(codec.ErrLength, "hash: got %d, should be %d", len(buf), HashLength)
	}

	copy(result[:], buf)
	return result, nil
}
