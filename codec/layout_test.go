package codec

import (
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"testing"
)

func mustHex(t *testing.T, c Codec, v any) string {
	t.Helper()
	packed, err := c.Pack(v)
	require.NoError(t, err)
	return Hexify(packed)
}

func TestArray(t *testing.T) {
	arr, err := Array(Uint16, 3)
	require.NoError(t, err)
	require.Equal(t, 6, arr.ByteLength())

	require.Equal(t, "0x010002000300", mustHex(t, arr, []int{1, 2, 3}))

	v, err := arr.Unpack(MustBytify("0x010002000300"))
	require.NoError(t, err)
	require.Equal(t, []any{uint32(1), uint32(2), uint32(3)}, v)

	_, err = arr.Pack([]int{1, 2})
	require.True(t, errors.Is(err, ErrLength))

	_, err = Array(Bytes, 2)
	require.True(t, errors.Is(err, ErrNotFixedLength))
}

func TestStruct(t *testing.T) {
	point, err := Struct([]Field{
		{Name: "x", Codec: Uint8},
		{Name: "y", Codec: Uint32},
		{Name: "tag", Codec: FixedBytes(2)},
	})
	require.NoError(t, err)
	require.Equal(t, 7, point.ByteLength())

	value := Object{"x": 1, "y": 2, "tag": "0xabcd"}
	require.Equal(t, "0x0102000000abcd", mustHex(t, point, value))

	v, err := point.Unpack(MustBytify("0x0102000000abcd"))
	require.NoError(t, err)
	require.Equal(t, Object{"x": uint32(1), "y": uint32(2), "tag": "0xabcd"}, v)

	_, err = point.Pack(Object{"x": 1, "y": 2, "tag": "0xabcd", "z": 3})
	require.True(t, errors.Is(err, ErrType))

	_, err = point.Unpack(MustBytify("0x0102000000ab"))
	require.True(t, errors.Is(err, ErrLength))
}

func TestStructConstruction(t *testing.T) {
	_, err := Struct([]Field{{Name: "a", Codec: Uint8}, {Name: "a", Codec: Uint8}})
	require.True(t, errors.Is(err, ErrDuplicateField))

	_, err = Struct([]Field{{Name: "a", Codec: Bytes}})
	require.True(t, errors.Is(err, ErrNotFixedLength))

	empty, err := Struct(nil)
	require.NoError(t, err)
	require.Equal(t, 0, empty.ByteLength())
	require.Equal(t, "0x", mustHex(t, empty, Object{}))
}

func TestFixVec(t *testing.T) {
	vec := FixVec(Uint16)
	require.Equal(t, "0x00000000", mustHex(t, vec, []any{}))
	require.Equal(t, "0x020000000100ffff", mustHex(t, vec, []any{1, 0xffff}))

	v, err := vec.Unpack(MustBytify("0x020000000100ffff"))
	require.NoError(t, err)
	require.Equal(t, []any{uint32(1), uint32(0xffff)}, v)

	for _, bad := range []string{"0x0200", "0x020000000100", "0x010000000100ffff"} {
		_, err = vec.Unpack(MustBytify(bad))
		require.Truef(t, errors.Is(err, ErrStructure), "input %s", bad)
	}

	// 元素数量头部伪造成很大的值也不能越界
	_, err = vec.Unpack(MustBytify("0xffffffff0100"))
	require.True(t, errors.Is(err, ErrStructure))
}

func TestDynVec(t *testing.T) {
	vec := DynVec(Bytes)
	require.Equal(t, "0x04000000", mustHex(t, vec, []any{}))

	packed := mustHex(t, vec, []any{"0x01", "0x0203"})
	require.Equal(t, "0x170000000c000000110000000100000001020000000203", packed)

	v, err := vec.Unpack(MustBytify(packed))
	require.NoError(t, err)
	require.Equal(t, []any{"0x01", "0x0203"}, v)

	v, err = vec.Unpack(MustBytify("0x04000000"))
	require.NoError(t, err)
	require.Equal(t, []any{}, v)
}

func TestDynVecInvalidHeader(t *testing.T) {
	vec := DynVec(Bytes)
	cases := map[string]string{
		"too short":              "0x0400",
		"total mismatch":         "0x08000000",
		"total shorter":          "0x0500000000",
		"first offset unaligned": "0x0d0000000900000000000000ff",
		"first offset too small": "0x0c0000000400000000000000",
		"first offset too large": "0x0c0000001000000000000000",
		"offsets decrease":       "0x140000000c000000080000000000000000000000",
	}

	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := vec.Unpack(MustBytify(input))
			require.Error(t, err)
			require.True(t, errors.Is(err, ErrStructure), err.Error())
		})
	}
}

func TestVectorDispatch(t *testing.T) {
	_, isDyn := Vector(Bytes).(FixedCodec)
	require.False(t, isDyn)

	require.Equal(t, "0x0100000001", mustHex(t, Vector(Uint8), []any{1}))
	require.Equal(t, "0x0c0000000800000000000000", mustHex(t, Vector(Bytes), []any{"0x"}))
}

func newPair(t *testing.T) Codec {
	t.Helper()
	pair, err := Table([]Field{
		{Name: "a", Codec: Uint8},
		{Name: "b", Codec: Bytes},
	})
	require.NoError(t, err)
	return pair
}

func TestTable(t *testing.T) {
	pair := newPair(t)

	packed := mustHex(t, pair, Object{"a": 7, "b": "0xff"})
	require.Equal(t, "0x120000000c0000000d0000000701000000ff", packed)

	v, err := pair.Unpack(MustBytify(packed))
	require.NoError(t, err)
	require.Equal(t, Object{"a": uint32(7), "b": "0xff"}, v)

	_, err = pair.Pack(Object{"a": 7})
	require.Error(t, err)

	_, err = pair.Pack(map[string]any{"a": 7, "b": "0x", "c": 1})
	require.True(t, errors.Is(err, ErrType))
}

func TestTableEmptyAndCompatible(t *testing.T) {
	pair := newPair(t)

	v, err := pair.Unpack(MustBytify("0x04000000"))
	require.NoError(t, err)
	require.Equal(t, Object{}, v)

	empty, err := Table(nil)
	require.NoError(t, err)
	require.Equal(t, "0x04000000", mustHex(t, empty, Object{}))
	v, err = empty.Unpack(MustBytify("0x120000000c0000000d0000000701000000ff"))
	require.NoError(t, err)
	require.Equal(t, Object{}, v)

	// 多出一个字段 c 时只读取声明的 a 和 b
	extended, err := Table([]Field{
		{Name: "a", Codec: Uint8},
		{Name: "b", Codec: Bytes},
		{Name: "c", Codec: Uint8},
	})
	require.NoError(t, err)
	packed, err := extended.Pack(Object{"a": 1, "b": "0x02", "c": 3})
	require.NoError(t, err)

	v, err = pair.Unpack(packed)
	require.NoError(t, err)
	require.Equal(t, Object{"a": uint32(1), "b": "0x02"}, v)

	// 字段少于声明
	_, err = extended.Unpack(MustBytify("0x120000000c0000000d0000000701000000ff"))
	require.True(t, errors.Is(err, ErrStructure))
}

func TestTableCorruptedFirstOffset(t *testing.T) {
	pair := newPair(t)
	buf := MustBytify("0x120000000c0000000d0000000701000000ff")
	buf[4] = 0x0b

	_, err := pair.Unpack(buf)
	require.True(t, errors.Is(err, ErrStructure))
}

func TestOption(t *testing.T) {
	opt := Option(Uint32)
	require.Equal(t, "0x", mustHex(t, opt, nil))
	require.Equal(t, "0x05000000", mustHex(t, opt, 5))

	v, err := opt.Unpack(nil)
	require.NoError(t, err)
	require.Nil(t, v)

	v, err = opt.Unpack(MustBytify("0x05000000"))
	require.NoError(t, err)
	require.Equal(t, uint32(5), v)

	_, err = opt.Unpack([]byte{1})
	require.True(t, errors.Is(err, ErrLength))
}

func TestUnion(t *testing.T) {
	union, err := Union([]Field{
		{Name: "Small", Codec: Uint8},
		{Name: "Blob", Codec: Bytes},
	})
	require.NoError(t, err)

	packed := mustHex(t, union, Variant{Type: "Blob", Value: "0xaa"})
	require.Equal(t, "0x0100000001000000aa", packed)

	v, err := union.Unpack(MustBytify(packed))
	require.NoError(t, err)
	require.Equal(t, Variant{Type: "Blob", Value: "0xaa"}, v)

	require.Equal(t, "0x0000000009", mustHex(t, union, map[string]any{"type": "Small", "value": 9}))

	_, err = union.Pack(Variant{Type: "Unknown", Value: 1})
	require.True(t, errors.Is(err, ErrUnknownVariant))

	_, err = union.Unpack(MustBytify("0x0200000000"))
	require.True(t, errors.Is(err, ErrUnknownVariant))
}

func TestUnionWithIDs(t *testing.T) {
	union, err := UnionWithIDs([]UnionVariant{
		{Name: "A", ID: 5, Codec: Uint8},
		{Name: "B", ID: 0xff, Codec: Uint16},
	})
	require.NoError(t, err)
	require.Equal(t, "0xff0000000100", mustHex(t, union, Variant{Type: "B", Value: 1}))

	v, err := union.Unpack(MustBytify("0x0500000003"))
	require.NoError(t, err)
	require.Equal(t, Variant{Type: "A", Value: uint32(3)}, v)

	_, err = union.Unpack(MustBytify("0x0000000003"))
	require.True(t, errors.Is(err, ErrUnknownVariant))

	_, err = UnionWithIDs([]UnionVariant{{Name: "A", ID: 1, Codec: Uint8}, {Name: "B", ID: 1, Codec: Uint8}})
	require.True(t, errors.Is(err, ErrDuplicateField))
}

func TestPathError(t *testing.T) {
	inner, err := Table([]Field{{Name: "value", Codec: Uint8}})
	require.NoError(t, err)
	outer, err := Table([]Field{{Name: "items", Codec: Vector(Option(inner))}})
	require.NoError(t, err)

	_, err = outer.Pack(Object{"items": []any{nil, Object{"value": 300}}})
	require.True(t, errors.Is(err, ErrRange))

	var pathErr *PathError
	require.True(t, errors.As(err, &pathErr))
	require.Equal(t, "input.items[1]?.value", pathErr.Path())
}
