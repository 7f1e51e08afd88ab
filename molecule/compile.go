/**
  @author: decision
  @date: 2024/3/14
  @note: 把排好序的声明逐个构建为编解码器
**/

package molecule

import (
	"fmt"
	"github.com/chain-lab/go-molecule/codec"
	"github.com/pkg/errors"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Codecs 是类型名到编解码器的映射
type Codecs map[string]codec.Codec

// Names 返回排好序的类型名
func (c Codecs) Names() []string {
	names := maps.Keys(c)
	slices.Sort(names)
	return names
}

// Get 返回指定名称的编解码器，不存在时返回错误
func (c Codecs) Get(name string) (codec.Codec, error) {
	result, ok := c[name]
	if !ok {
		return nil, errors.Errorf("unknown type %s", name)
	}
	return result, nil
}

// 以 Uint 开头的字节数组按小端无符号整数处理
var uintCodecs = map[string]codec.FixedCodec{
	"Uint8":   codec.Uint8,
	"Uint16":  codec.Uint16,
	"Uint32":  codec.Uint32,
	"Uint64":  codec.Uint64,
	"Uint128": codec.Uint128,
	"Uint256": codec.Uint256,
	"Uint512": codec.Uint512,
}

// Compile
//
//	@Description: 检查并编译声明列表，声明顺序不影响结果
//	@param decls - 声明列表，可以前向引用
//	@param refs - 外部提供的编解码器，可以为 nil
//	@return Codecs - 每个声明对应一个编解码器，不包含 refs
func Compile(decls []Declaration, refs map[string]codec.Codec) (Codecs, error) {
	if err := Validate(decls, refs); err != nil {
		return nil, err
	}

	sorted, err := SortDeclarations(decls, maps.Keys(refs))
	if err != nil {
		return nil, err
	}

	result := make(Codecs, len(sorted))
	lookup := func(name string) codec.Codec {
		if name == Byte {
			return codec.ByteOf(codec.Hex)
		}
		if c, ok := result[name]; ok {
			return c
		}
		return refs[name]
	}

	for idx := range sorted {
		decl := &sorted[idx]
		c, err := build(decl, lookup)
		if err != nil {
			return nil, errors.WithMessagef(err, "build %s", decl.Name)
		}
		result[decl.Name] = c
	}
	return result, nil
}

// MustCompile 用于包级别的 schema，编译失败时 panic
func MustCompile(decls []Declaration, refs map[string]codec.Codec) Codecs {
	result, err := Compile(decls, refs)
	if err != nil {
		panic(fmt.Sprintf("compile molecule schema failed: %v", err))
	}
	return result
}

func build(decl *Declaration, lookup func(string) codec.Codec) (codec.Codec, error) {
	switch decl.Kind {
	case KindArray:
		if decl.Item == Byte {
			if uintCodec, ok := uintCodecs[decl.Name]; ok && uintCodec.ByteLength() == decl.Count {
				return uintCodec, nil
			}
			return codec.FixedBytes(decl.Count), nil
		}
		return codec.Array(lookup(decl.Item), decl.Count)

	case KindVector:
		if decl.Item == Byte {
			return codec.Bytes, nil
		}
		return codec.Vector(lookup(decl.Item)), nil

	case KindOption:
		return codec.Option(lookup(decl.Item)), nil

	case KindStruct, KindTable:
		fields := make([]codec.Field, len(decl.Fields))
		for idx, field := range decl.Fields {
			fields[idx] = codec.Field{Name: field.Name, Codec: lookup(field.Type)}
		}
		if decl.Kind == KindStruct {
			return codec.Struct(fields)
		}
		return codec.Table(fields)

	case KindUnion:
		ids, err := unionIDs(decl)
		if err != nil {
			return nil, err
		}

		variants := make([]codec.UnionVariant, len(decl.Items))
		for idx, item := range decl.Items {
			variants[idx] = codec.UnionVariant{Name: item.Type, ID: ids[idx], Codec: lookup(item.Type)}
		}
		return codec.UnionWithIDs(variants)
	}

	return nil, errors.Wrapf(ErrInvalidDeclaration, "unknown kind %q", decl.Kind)
}
