package common

import (
	"github.com/chain-lab/go-molecule/codec"
	"github.com/pkg/errors"
	"math/big"
)

// objectReader 从解码得到的 Object 中按字段读取值，第一个错误之后的读取都会被忽略
type objectReader struct {
	obj codec.Object
	err error
}

func newObjectReader(v any) *objectReader {
	obj, err := codec.ToObject(v)
	return &objectReader{obj: obj, err: err}
}

func (r *objectReader) fail(name string, err error) {
	if r.err == nil && err != nil {
		r.err = errors.WithMessagef(err, "field %s", name)
	}
}

func (r *objectReader) value(name string) (any, bool) {
	if r.err != nil {
		return nil, false
	}
	v, ok := r.obj[name]
	if !ok {
		r.fail(name, errors.Wrap(codec.ErrType, "missing field"))
	}
	return v, ok
}

func (r *objectReader) uint32(name string) uint32 {
	v, ok := r.value(name)
	if !ok {
		return 0
	}
	n, err := codec.ToUint32(v)
	r.fail(name, err)
	return n
}

func (r *objectReader) uint64(name string) uint64 {
	v, ok := r.value(name)
	if !ok {
		return 0
	}
	n, err := codec.ToUint64(v)
	r.fail(name, err)
	return n
}

func (r *objectReader) bigInt(name string) *big.Int {
	v, ok := r.value(name)
	if !ok {
		return nil
	}
	n, err := codec.ToBigInt(v)
	r.fail(name, err)
	return n
}

func (r *objectReader) string(name string) string {
	v, ok := r.value(name)
	if !ok {
		return ""
	}
	s, isString := v.(string)
	if !isString {
		r.fail(name, errors.Wrapf(codec.ErrType, "expect a string, got %T", v))
	}
	return s
}

func (r *objectReader) bytes(name string) []byte {
	v, ok := r.value(name)
	if !ok {
		return nil
	}
	b, err := codec.ToBytes(v)
	r.fail(name, err)
	return b
}

// optionalBytes 对缺失或 nil 的字段返回 nil，其余情况总是返回非 nil 的切片
func (r *objectReader) optionalBytes(name string) []byte {
	if r.err != nil || r.obj[name] == nil {
		return nil
	}
	b := r.bytes(name)
	if b == nil && r.err == nil {
		b = []byte{}
	}
	return b
}

func (r *objectReader) hash(name string) Hash {
	var h Hash
	b := r.bytes(name)
	if r.err != nil {
		return h
	}
	if len(b) != HashLength {
		r.fail(name, errors.Wrapf(codec.ErrLength, "hash expects %d bytes, got %d", HashLength, len(b)))
		return h
	}
	copy(h[:], b)
	return h
}

// list 读取列表字段，并对每个元素调用 each
func (r *objectReader) list(name string, each func(idx int, item any) error) {
	v, ok := r.value(name)
	if !ok {
		return
	}
	items, err := codec.ToSlice(v)
	if err != nil {
		r.fail(name, err)
		return
	}
	for idx, item := range items {
		if err := each(idx, item); err != nil {
			r.fail(name, errors.WithMessagef(err, "item %d", idx))
			return
		}
	}
}

func hexList(items [][]byte) []any {
	result := make([]any, len(items))
	for idx, item := range items {
		result[idx] = codec.Hexify(item)
	}
	return result
}

func optionalHex(b []byte) any {
	if b == nil {
		return nil
	}
	return codec.Hexify(b)
}
