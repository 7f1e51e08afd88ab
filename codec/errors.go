/**
  @author: decision
  @date: 2024/3/11
  @note: 编解码过程中的错误类型
**/

package codec

import (
	"fmt"
	"github.com/pkg/errors"
	"strings"
)

var (
	ErrFormat         = errors.New("invalid format")
	ErrLength         = errors.New("invalid buffer length")
	ErrRange          = errors.New("value out of range")
	ErrStructure      = errors.New("invalid molecule structure")
	ErrUnknownVariant = errors.New("unknown union variant")
	ErrType           = errors.New("unexpected value type")
	ErrNotFixedLength = errors.New("not fixed length")
	ErrDuplicateField = errors.New("duplicate field")
)

const optionalPathKey = "?"

// PathError 记录出错元素在输入结构中的位置，例如 input.raw.outputs[0].lock
type PathError struct {
	Keys []string
	Err  error
}

func (e *PathError) Path() string {
	var sb strings.Builder
	sb.WriteString("input")
	for _, key := range e.Keys {
		sb.WriteString(key)
	}
	return sb.String()
}

func (e *PathError) Error() string {
	return fmt.Sprintf("codec error at %s: %v", e.Path(), e.Err)
}

func (e *PathError) Unwrap() error {
	return e.Err
}

// trackError 在错误的路径前追加一级 key，最外层的 key 最先出现
func trackError(key string, err error) error {
	if err == nil {
		return nil
	}

	if pe, ok := err.(*PathError); ok {
		keys := make([]string, 0, len(pe.Keys)+1)
		keys = append(keys, key)
		keys = append(keys, pe.Keys...)
		return &PathError{Keys: keys, Err: pe.Err}
	}

	return &PathError{Keys: []string{key}, Err: err}
}

func fieldKey(name string) string {
	return "." + name
}

func indexKey(index int) string {
	return fmt.Sprintf("[%d]", index)
}

func lengthError(got, want int) error {
	return errors.Wrapf(ErrLength, "got %d, should be %d", got, want)
}
