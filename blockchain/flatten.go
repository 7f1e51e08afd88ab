package blockchain

import (
	"github.com/chain-lab/go-molecule/codec"
)

var (
	rawTransactionFields = []string{"version", "cellDeps", "headerDeps", "inputs", "outputs", "outputsData"}
	rawHeaderFields      = []string{
		"version", "compactTarget", "timestamp", "number", "epoch",
		"parentHash", "transactionsRoot", "proposalsHash", "extraHash", "dao",
	}
)

// ignoredKey 是 RPC 结构中附带的哈希，编码时忽略
const ignoredKey = "hash"

// flattener 在 {raw: {...}, witnesses} 这样的嵌套结构和 RPC 常用的扁平结构之间转换
type flattener struct {
	nestedKey    string
	nestedFields []string
	outerField   string
}

// nest 把扁平结构转换为嵌套结构，两种结构下的 hash 字段都会被忽略
func (f *flattener) nest(v any) (any, error) {
	obj, err := codec.ToObject(v)
	if err != nil {
		return nil, err
	}
	if _, ok := obj[f.nestedKey]; ok {
		if _, ok := obj[ignoredKey]; !ok {
			return obj, nil
		}

		result := make(codec.Object, len(obj)-1)
		for name, value := range obj {
			if name != ignoredKey {
				result[name] = value
			}
		}
		return result, nil
	}

	nested := make(codec.Object, len(f.nestedFields))
	for _, name := range f.nestedFields {
		nested[name] = obj[name]
	}
	return codec.Object{
		f.nestedKey:  nested,
		f.outerField: obj[f.outerField],
	}, nil
}

func (f *flattener) flatten(v any) (any, error) {
	obj, err := codec.ToObject(v)
	if err != nil {
		return nil, err
	}

	// 兼容读取时短表可以没有 raw，此时其余字段同样缺省
	raw, ok := obj[f.nestedKey]
	if !ok {
		result := make(codec.Object, len(obj))
		for _, name := range f.nestedFields {
			if value, ok := obj[name]; ok {
				result[name] = value
			}
		}
		if value, ok := obj[f.outerField]; ok {
			result[f.outerField] = value
		}
		return result, nil
	}

	nested, err := codec.ToObject(raw)
	if err != nil {
		return nil, err
	}

	result := make(codec.Object, len(nested)+1)
	for name, value := range nested {
		result[name] = value
	}
	if value, ok := obj[f.outerField]; ok {
		result[f.outerField] = value
	}
	return result, nil
}

func (f *flattener) pack(base codec.Codec) codec.PackFunc {
	return func(v any) ([]byte, error) {
		nested, err := f.nest(v)
		if err != nil {
			return nil, err
		}
		return base.Pack(nested)
	}
}

func (f *flattener) unpack(base codec.Codec) codec.UnpackFunc {
	return func(buf []byte) (any, error) {
		value, err := base.Unpack(buf)
		if err != nil {
			return nil, err
		}
		return f.flatten(value)
	}
}

func flatten(base codec.Codec, nestedKey string, nestedFields []string, outerField string) codec.Codec {
	f := &flattener{nestedKey: nestedKey, nestedFields: nestedFields, outerField: outerField}
	return codec.New(f.pack(base), f.unpack(base))
}

func flattenFixed(base codec.FixedCodec, nestedKey string, nestedFields []string, outerField string) codec.FixedCodec {
	f := &flattener{nestedKey: nestedKey, nestedFields: nestedFields, outerField: outerField}
	return codec.NewFixed(base.ByteLength(), f.pack(base), f.unpack(base))
}
