/**
  @author: decision
  @date: 2024/3/12
  @note: molecule 的布局组合子
**/

// |  Type  |                      Header                      |               Body                |
// |--------+--------------------------------------------------+-----------------------------------|
// | array  |                                                  |  item-0 |  item-1 | ... |  item-N |
// | struct |                                                  | field-0 | field-1 | ... | field-N |
// | fixvec | items-count                                      |  item-0 |  item-1 | ... |  item-N |
// | dynvec | full-size | offset-0 | offset-1 | ... | offset-N |  item-0 |  item-1 | ... |  item-N |
// | table  | full-size | offset-0 | offset-1 | ... | offset-N | field-0 | field-1 | ... | field-N |
// | option |                                                  | item or none (zero bytes)         |
// | union  | item-type-id                                     | item                              |

package codec

import (
	"encoding/binary"
	"github.com/pkg/errors"
	"golang.org/x/exp/slices"
	"math"
	"strings"
)

// Field 是 struct、table 的一个字段，或者 union 的一个变体
type Field struct {
	Name  string
	Codec Codec
}

// UnionVariant 是带显式编号的 union 变体
type UnionVariant struct {
	Name  string
	ID    uint32
	Codec Codec
}

// Array
//
//	@Description: 定长数组，count 个定长元素直接拼接
//	@param item - 元素编解码器，必须是定长的
//	@param count - 元素数量
//	@return FixedCodec - 长度为 item.ByteLength() * count
func Array(item Codec, count int) (FixedCodec, error) {
	fixedItem, ok := IsFixed(item)
	if !ok {
		return nil, errors.Wrap(ErrNotFixedLength, "array item must be fixed length")
	}
	if count < 0 {
		return nil, errors.Wrapf(ErrRange, "array item count %d is negative", count)
	}

	itemLength := fixedItem.ByteLength()
	return NewFixed(itemLength*count,
		func(v any) ([]byte, error) {
			items, err := ToSlice(v)
			if err != nil {
				return nil, err
			}
			if len(items) != count {
				return nil, errors.Wrapf(ErrLength, "array expects %d items, got %d", count, len(items))
			}

			result := make([]byte, 0, itemLength*count)
			for idx, value := range items {
				packed, err := fixedItem.Pack(value)
				if err != nil {
					return nil, trackError(indexKey(idx), err)
				}
				result = append(result, packed...)
			}
			return result, nil
		},
		func(buf []byte) (any, error) {
			result := make([]any, count)
			for idx := range result {
				value, err := fixedItem.Unpack(buf[idx*itemLength : (idx+1)*itemLength])
				if err != nil {
					return nil, trackError(indexKey(idx), err)
				}
				result[idx] = value
			}
			return result, nil
		},
	), nil
}

func checkFields(fields []Field) error {
	names := make(map[string]struct{}, len(fields))
	for _, field := range fields {
		if field.Codec == nil {
			return errors.Wrapf(ErrType, "field %s has no codec", field.Name)
		}
		if _, ok := names[field.Name]; ok {
			return errors.Wrapf(ErrDuplicateField, "field %s", field.Name)
		}
		names[field.Name] = struct{}{}
	}
	return nil
}

// checkShape 拒绝未声明的字段，避免字段名写错时静默丢数据
func checkShape(obj Object, fields []Field) error {
	var unknown []string
	for key := range obj {
		if slices.IndexFunc(fields, func(field Field) bool { return field.Name == key }) < 0 {
			unknown = append(unknown, key)
		}
	}
	if len(unknown) == 0 {
		return nil
	}

	slices.Sort(unknown)
	return errors.Wrapf(ErrType, "unknown fields %s", strings.Join(unknown, ", "))
}

// Struct
//
//	@Description: 定长结构体，按声明顺序拼接各个定长字段
//	@param fields - 字段列表，顺序即编码顺序
//	@return FixedCodec - 长度为所有字段长度之和
func Struct(fields []Field) (FixedCodec, error) {
	if err := checkFields(fields); err != nil {
		return nil, err
	}

	fixedFields := make([]FixedCodec, len(fields))
	// 每个字段在编码中的静态偏移
	offsets := make([]int, len(fields)+1)
	for idx, field := range fields {
		fc, ok := IsFixed(field.Codec)
		if !ok {
			return nil, errors.Wrapf(ErrNotFixedLength, "struct field %s", field.Name)
		}
		fixedFields[idx] = fc
		offsets[idx+1] = offsets[idx] + fc.ByteLength()
	}
	byteLength := offsets[len(fields)]

	return NewFixed(byteLength,
		func(v any) ([]byte, error) {
			obj, err := ToObject(v)
			if err != nil {
				return nil, err
			}
			if err := checkShape(obj, fields); err != nil {
				return nil, err
			}

			result := make([]byte, byteLength)
			for idx, field := range fields {
				packed, err := fixedFields[idx].Pack(obj[field.Name])
				if err != nil {
					return nil, trackError(fieldKey(field.Name), err)
				}
				copy(result[offsets[idx]:], packed)
			}
			return result, nil
		},
		func(buf []byte) (any, error) {
			result := make(Object, len(fields))
			for idx, field := range fields {
				value, err := fixedFields[idx].Unpack(buf[offsets[idx]:offsets[idx+1]])
				if err != nil {
					return nil, trackError(fieldKey(field.Name), err)
				}
				result[field.Name] = value
			}
			return result, nil
		},
	), nil
}

// FixVec
//
//	@Description: 定长元素的向量，4 字节小端的元素数量后接各元素
//	@param item - 定长元素编解码器
//	@return Codec
func FixVec(item FixedCodec) Codec {
	itemLength := item.ByteLength()

	return New(
		func(v any) ([]byte, error) {
			items, err := ToSlice(v)
			if err != nil {
				return nil, err
			}

			header, err := packUint32(len(items))
			if err != nil {
				return nil, err
			}

			result := make([]byte, headerSize, headerSize+itemLength*len(items))
			copy(result, header)
			for idx, value := range items {
				packed, err := item.Pack(value)
				if err != nil {
					return nil, trackError(indexKey(idx), err)
				}
				result = append(result, packed...)
			}
			return result, nil
		},
		func(buf []byte) (any, error) {
			if len(buf) < headerSize {
				return nil, errors.Wrapf(ErrStructure,
					"fixvec: buffer is too short, expected at least %d bytes, got %d", headerSize, len(buf))
			}

			count := uint64(readUint32(buf))
			expected := headerSize + count*uint64(itemLength)
			if uint64(len(buf)) != expected {
				return nil, errors.Wrapf(ErrStructure,
					"fixvec: %d items of %d bytes need %d bytes, got %d", count, itemLength, expected, len(buf))
			}
			if itemLength == 0 && count > 0 {
				return nil, errors.Wrap(ErrStructure, "fixvec: zero sized items with non-zero count")
			}

			result := make([]any, count)
			body := buf[headerSize:]
			for idx := range result {
				value, err := item.Unpack(body[idx*itemLength : (idx+1)*itemLength])
				if err != nil {
					return nil, trackError(indexKey(idx), err)
				}
				result[idx] = value
			}
			return result, nil
		},
	)
}

// packOffsetTable 把已经编码好的各个元素写入 full-size | offsets | items 的结构，一次分配
func packOffsetTable(parts [][]byte) ([]byte, error) {
	headerLength := headerSize * (len(parts) + 1)
	total := uint64(headerLength)
	for _, part := range parts {
		total += uint64(len(part))
	}
	if total > math.MaxUint32 {
		return nil, errors.Wrapf(ErrRange, "encoded size %d does not fit in a 4 bytes header", total)
	}

	result := make([]byte, total)
	binary.LittleEndian.PutUint32(result, uint32(total))

	offset := headerLength
	for idx, part := range parts {
		binary.LittleEndian.PutUint32(result[headerSize*(idx+1):], uint32(offset))
		copy(result[offset:], part)
		offset += len(part)
	}
	return result, nil
}

// unpackOffsetTable
//
//	@Description: 校验 dynvec 和 table 的头部并返回元素边界，先校验再遍历，
//	返回的 offsets 比元素数量多一个，最后一个等于 full-size
//	@param buf - 完整的编码
//	@param minCount - 至少需要的元素数量，table 为字段数量，dynvec 为 0
//	@return []int - 元素边界，buffer 只有 full-size 头部时为 nil
func unpackOffsetTable(buf []byte, minCount int) ([]int, error) {
	if len(buf) < headerSize {
		return nil, errors.Wrapf(ErrStructure,
			"buffer is too short, expected at least %d bytes, got %d", headerSize, len(buf))
	}

	total := uint64(readUint32(buf))
	if total != uint64(len(buf)) {
		return nil, errors.Wrapf(ErrStructure,
			"invalid buffer size, read from header: %d, actual: %d", total, len(buf))
	}
	if total == headerSize {
		return nil, nil
	}
	if total < 2*headerSize {
		return nil, errors.Wrapf(ErrStructure, "buffer of %d bytes cannot hold the first offset", total)
	}

	first := uint64(readUint32(buf[headerSize:]))
	if first%headerSize != 0 || first < 2*headerSize {
		return nil, errors.Wrapf(ErrStructure, "invalid first offset %d", first)
	}
	if first > total {
		return nil, errors.Wrapf(ErrStructure, "first offset %d is larger than total size %d", first, total)
	}

	count := int(first/headerSize) - 1
	if count < minCount {
		return nil, errors.Wrapf(ErrStructure, "header holds %d offsets, expected at least %d", count, minCount)
	}

	offsets := make([]int, count+1)
	for idx := 0; idx < count; idx++ {
		offsets[idx] = int(readUint32(buf[headerSize*(idx+1):]))
	}
	offsets[count] = int(total)

	for idx := 0; idx < count; idx++ {
		if offsets[idx] > offsets[idx+1] {
			return nil, errors.Wrapf(ErrStructure, "offset index %d is larger than next offset", idx)
		}
	}
	return offsets, nil
}

// DynVec
//
//	@Description: 变长元素的向量，带 full-size 和偏移表
//	@param item - 元素编解码器，定长变长均可
//	@return Codec
func DynVec(item Codec) Codec {
	return New(
		func(v any) ([]byte, error) {
			items, err := ToSlice(v)
			if err != nil {
				return nil, err
			}

			parts := make([][]byte, len(items))
			for idx, value := range items {
				parts[idx], err = item.Pack(value)
				if err != nil {
					return nil, trackError(indexKey(idx), err)
				}
			}
			return packOffsetTable(parts)
		},
		func(buf []byte) (any, error) {
			offsets, err := unpackOffsetTable(buf, 0)
			if err != nil {
				return nil, err
			}
			if offsets == nil {
				return []any{}, nil
			}

			result := make([]any, len(offsets)-1)
			for idx := range result {
				value, err := item.Unpack(buf[offsets[idx]:offsets[idx+1]])
				if err != nil {
					return nil, trackError(indexKey(idx), err)
				}
				result[idx] = value
			}
			return result, nil
		},
	)
}

// Vector 根据元素是否定长选择 fixvec 或 dynvec
func Vector(item Codec) Codec {
	if fixedItem, ok := IsFixed(item); ok {
		return FixVec(fixedItem)
	}
	return DynVec(item)
}

// Table
//
//	@Description: 表结构，无论字段是否定长都使用偏移表编码，便于在末尾追加字段。
//	full-size 不超过 4 字节或者没有声明字段时解码为空对象
//	@param fields - 字段列表，顺序即编码顺序
//	@return Codec
func Table(fields []Field) (Codec, error) {
	if err := checkFields(fields); err != nil {
		return nil, err
	}

	return New(
		func(v any) ([]byte, error) {
			obj, err := ToObject(v)
			if err != nil {
				return nil, err
			}
			if err := checkShape(obj, fields); err != nil {
				return nil, err
			}

			parts := make([][]byte, len(fields))
			for idx, field := range fields {
				parts[idx], err = field.Codec.Pack(obj[field.Name])
				if err != nil {
					return nil, trackError(fieldKey(field.Name), err)
				}
			}
			return packOffsetTable(parts)
		},
		func(buf []byte) (any, error) {
			if len(buf) < headerSize {
				return nil, errors.Wrapf(ErrStructure,
					"buffer is too short, expected at least %d bytes, got %d", headerSize, len(buf))
			}
			if total := readUint32(buf); uint64(total) != uint64(len(buf)) {
				return nil, errors.Wrapf(ErrStructure,
					"invalid buffer size, read from header: %d, actual: %d", total, len(buf))
			}
			if len(buf) <= headerSize || len(fields) == 0 {
				return Object{}, nil
			}

			offsets, err := unpackOffsetTable(buf, len(fields))
			if err != nil {
				return nil, err
			}

			// 字段多于声明时只读取声明的部分
			result := make(Object, len(fields))
			for idx, field := range fields {
				value, err := field.Codec.Unpack(buf[offsets[idx]:offsets[idx+1]])
				if err != nil {
					return nil, trackError(fieldKey(field.Name), err)
				}
				result[field.Name] = value
			}
			return result, nil
		},
	), nil
}

// Option 空值编码为零字节，否则直接使用内部编码，没有额外的头部
func Option(item Codec) Codec {
	return New(
		func(v any) ([]byte, error) {
			if v == nil {
				return []byte{}, nil
			}

			packed, err := item.Pack(v)
			if err != nil {
				return nil, trackError(optionalPathKey, err)
			}
			return packed, nil
		},
		func(buf []byte) (any, error) {
			if len(buf) == 0 {
				return nil, nil
			}
			return item.Unpack(buf)
		},
	)
}

// Union 按声明顺序为变体编号，编号从 0 开始
func Union(fields []Field) (Codec, error) {
	variants := make([]UnionVariant, len(fields))
	for idx, field := range fields {
		variants[idx] = UnionVariant{Name: field.Name, ID: uint32(idx), Codec: field.Codec}
	}
	return UnionWithIDs(variants)
}

// UnionWithIDs
//
//	@Description: 带显式编号的 union，编码为 4 字节小端编号后接变体的编码
//	@param variants - 变体列表，名称和编号都不能重复
//	@return Codec - 解码结果为 Variant
func UnionWithIDs(variants []UnionVariant) (Codec, error) {
	byName := make(map[string]UnionVariant, len(variants))
	byID := make(map[uint32]UnionVariant, len(variants))
	names := make([]string, 0, len(variants))

	for _, variant := range variants {
		if variant.Codec == nil {
			return nil, errors.Wrapf(ErrType, "union variant %s has no codec", variant.Name)
		}
		if _, ok := byName[variant.Name]; ok {
			return nil, errors.Wrapf(ErrDuplicateField, "union variant %s", variant.Name)
		}
		if other, ok := byID[variant.ID]; ok {
			return nil, errors.Wrapf(ErrDuplicateField, "union id %d used by %s and %s", variant.ID, other.Name, variant.Name)
		}
		byName[variant.Name] = variant
		byID[variant.ID] = variant
		names = append(names, variant.Name)
	}
	typeName := "Union(" + strings.Join(names, " | ") + ")"

	return New(
		func(v any) ([]byte, error) {
			value, err := ToVariant(v)
			if err != nil {
				return nil, err
			}

			variant, ok := byName[value.Type]
			if !ok {
				return nil, errors.Wrapf(ErrUnknownVariant, "%s: %q", typeName, value.Type)
			}

			packed, err := variant.Codec.Pack(value.Value)
			if err != nil {
				return nil, trackError(fieldKey(variant.Name), err)
			}

			result := make([]byte, headerSize+len(packed))
			binary.LittleEndian.PutUint32(result, variant.ID)
			copy(result[headerSize:], packed)
			return result, nil
		},
		func(buf []byte) (any, error) {
			if len(buf) < headerSize {
				return nil, errors.Wrapf(ErrStructure,
					"union: buffer is too short, expected at least %d bytes, got %d", headerSize, len(buf))
			}

			id := readUint32(buf)
			variant, ok := byID[id]
			if !ok {
				return nil, errors.Wrapf(ErrUnknownVariant, "%s: unknown item type id %d", typeName, id)
			}

			value, err := variant.Codec.Unpack(buf[headerSize:])
			if err != nil {
				return nil, trackError(fieldKey(variant.Name), err)
			}
			return Variant{Type: variant.Name, Value: value}, nil
		},
	), nil
}
