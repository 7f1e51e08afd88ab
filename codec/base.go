// Package codec
// @Description: molecule 编码的基础编解码器和布局组合子
package codec

// Codec 是所有编解码器的统一接口，Pack 把值编码为字节，Unpack 把字节还原为值
type Codec interface {
	Pack(v any) ([]byte, error)
	Unpack(buf []byte) (any, error)
}

// FixedCodec 是编码长度固定的编解码器，只有它可以作为 array 和 struct 的成员
type FixedCodec interface {
	Codec
	ByteLength() int
}

type PackFunc func(v any) ([]byte, error)

type UnpackFunc func(buf []byte) (any, error)

type bytesCodec struct {
	pack   PackFunc
	unpack UnpackFunc
}

func (c *bytesCodec) Pack(v any) ([]byte, error) {
	return c.pack(v)
}

func (c *bytesCodec) Unpack(buf []byte) (any, error) {
	return c.unpack(buf)
}

// New
//
//	@Description: 通过一对函数创建一个变长编解码器
//	@param pack - 编码函数
//	@param unpack - 解码函数
//	@return Codec
func New(pack PackFunc, unpack UnpackFunc) Codec {
	return &bytesCodec{pack: pack, unpack: unpack}
}

type fixedBytesCodec struct {
	byteLength int
	pack       PackFunc
	unpack     UnpackFunc
}

func (c *fixedBytesCodec) ByteLength() int {
	return c.byteLength
}

func (c *fixedBytesCodec) Pack(v any) ([]byte, error) {
	packed, err := c.pack(v)
	if err != nil {
		return nil, err
	}

	if len(packed) != c.byteLength {
		return nil, lengthError(len(packed), c.byteLength)
	}
	return packed, nil
}

func (c *fixedBytesCodec) Unpack(buf []byte) (any, error) {
	if len(buf) != c.byteLength {
		return nil, lengthError(len(buf), c.byteLength)
	}
	return c.unpack(buf)
}

// NewFixed
//
//	@Description: 创建一个定长编解码器，编码结果和解码输入的长度都必须等于 byteLength
//	@param byteLength - 编码后的字节长度
//	@param pack - 编码函数
//	@param unpack - 解码函数
//	@return FixedCodec
func NewFixed(byteLength int, pack PackFunc, unpack UnpackFunc) FixedCodec {
	return &fixedBytesCodec{
		byteLength: byteLength,
		pack:       pack,
		unpack:     unpack,
	}
}

// IsFixed 判断编解码器是否为定长，是则返回对应的 FixedCodec
func IsFixed(c Codec) (FixedCodec, bool) {
	fc, ok := c.(FixedCodec)
	return fc, ok
}

// Must 用于包级别的编解码器初始化，构造失败时 panic
func Must[T Codec](c T, err error) T {
	if err != nil {
		panic(err)
	}
	return c
}
