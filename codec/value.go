package codec

import (
	"encoding/json"
	"github.com/pkg/errors"
	"math"
	"math/big"
	"reflect"
	"strings"
)

// Object 是 struct 和 table 解码后的值，key 为字段名
type Object map[string]any

// Variant 是 union 的值，Type 为变体名称
type Variant struct {
	Type  string `json:"type" yaml:"type"`
	Value any    `json:"value" yaml:"value"`
}

// ToSlice 接受 []any 以及任意切片或数组
func ToSlice(v any) ([]any, error) {
	switch items := v.(type) {
	case []any:
		return items, nil
	case nil:
		return nil, errors.Wrap(ErrType, "expect a list, got nil")
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, errors.Wrapf(ErrType, "expect a list, got %T", v)
	}

	items := make([]any, rv.Len())
	for i := range items {
		items[i] = rv.Index(i).Interface()
	}
	return items, nil
}

// ToObject 接受 Object 和 map[string]any
func ToObject(v any) (Object, error) {
	switch obj := v.(type) {
	case Object:
		return obj, nil
	case map[string]any:
		return obj, nil
	case nil:
		return nil, errors.Wrap(ErrType, "expect an object, got nil")
	}
	return nil, errors.Wrapf(ErrType, "expect an object, got %T", v)
}

// ToVariant 接受 Variant、*Variant 以及带 type 和 value 的 map
func ToVariant(v any) (Variant, error) {
	switch variant := v.(type) {
	case Variant:
		return variant, nil
	case *Variant:
		if variant != nil {
			return *variant, nil
		}
	case Object:
		return variantFromMap(variant)
	case map[string]any:
		return variantFromMap(variant)
	}
	return Variant{}, errors.Wrapf(ErrType, "expect a union variant, got %T", v)
}

func variantFromMap(m map[string]any) (Variant, error) {
	name, ok := m["type"].(string)
	if !ok {
		return Variant{}, errors.Wrap(ErrType, "union type must be a string")
	}
	return Variant{Type: name, Value: m["value"]}, nil
}

// ToBigInt
//
//	@Description: 把各种整数表示转换为大整数，支持 Go 整数类型、big.Int、十进制和 0x 前缀的十六进制字符串
//	@param v - 待转换的值
//	@return *big.Int - 转换结果，总是一个新的实例
func ToBigInt(v any) (*big.Int, error) {
	switch n := v.(type) {
	case int:
		return big.NewInt(int64(n)), nil
	case int8:
		return big.NewInt(int64(n)), nil
	case int16:
		return big.NewInt(int64(n)), nil
	case int32:
		return big.NewInt(int64(n)), nil
	case int64:
		return big.NewInt(n), nil
	case uint:
		return new(big.Int).SetUint64(uint64(n)), nil
	case uint8:
		return new(big.Int).SetUint64(uint64(n)), nil
	case uint16:
		return new(big.Int).SetUint64(uint64(n)), nil
	case uint32:
		return new(big.Int).SetUint64(uint64(n)), nil
	case uint64:
		return new(big.Int).SetUint64(n), nil
	case float64:
		// JSON 解码出来的数字，只接受安全整数
		if n != math.Trunc(n) || math.Abs(n) > 1<<53 {
			return nil, errors.Wrapf(ErrRange, "%v is not a safe integer", n)
		}
		return big.NewInt(int64(n)), nil
	case *big.Int:
		if n == nil {
			return nil, errors.Wrap(ErrType, "expect an integer, got nil")
		}
		return new(big.Int).Set(n), nil
	case big.Int:
		return new(big.Int).Set(&n), nil
	case json.Number:
		return parseIntString(string(n))
	case string:
		return parseIntString(n)
	case nil:
		return nil, errors.Wrap(ErrType, "expect an integer, got nil")
	}
	return nil, errors.Wrapf(ErrType, "expect an integer, got %T", v)
}

func parseIntString(s string) (*big.Int, error) {
	result := new(big.Int)
	var ok bool

	if strings.HasPrefix(s, "0x") {
		if len(s) == 2 {
			return nil, errors.Wrapf(ErrFormat, "invalid hex integer %q", s)
		}
		_, ok = result.SetString(s[2:], 16)
	} else {
		_, ok = result.SetString(s, 10)
	}

	if !ok {
		return nil, errors.Wrapf(ErrFormat, "invalid integer %q", s)
	}
	return result, nil
}

// ToUint64 把整数值转换为 uint64，超出范围时返回 ErrRange
func ToUint64(v any) (uint64, error) {
	n, err := ToBigInt(v)
	if err != nil {
		return 0, err
	}

	if n.Sign() < 0 || !n.IsUint64() {
		return 0, errors.Wrapf(ErrRange, "%s does not fit in uint64", n)
	}
	return n.Uint64(), nil
}

// ToUint32 把整数值转换为 uint32，超出范围时返回 ErrRange
func ToUint32(v any) (uint32, error) {
	n, err := ToUint64(v)
	if err != nil {
		return 0, err
	}

	if n > math.MaxUint32 {
		return 0, errors.Wrapf(ErrRange, "%d does not fit in uint32", n)
	}
	return uint32(n), nil
}

// ToBytes 接受 0x 十六进制字符串、[]byte 以及定长字节数组
func ToBytes(v any) ([]byte, error) {
	switch b := v.(type) {
	case string:
		return Bytify(b)
	case []byte:
		result := make([]byte, len(b))
		copy(result, b)
		return result, nil
	case nil:
		return nil, errors.Wrap(ErrType, "expect bytes, got nil")
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Array && rv.Type().Elem().Kind() == reflect.Uint8 {
		result := make([]byte, rv.Len())
		for i := range result {
			result[i] = byte(rv.Index(i).Uint())
		}
		return result, nil
	}
	return nil, errors.Wrapf(ErrType, "expect bytes, got %T", v)
}
