package molecule

import (
	"github.com/goccy/go-yaml"
	"github.com/pkg/errors"
	"os"
	"path/filepath"
	"strings"
)

// LoadYAML
//
//	@Description: 从 YAML 列表读取声明，格式与 moleculec 输出的 JSON AST 一致，例如
//	- {name: Byte32, type: array, item: byte, item_count: 32}
//	@param data - YAML 文本
//	@return []Declaration
func LoadYAML(data []byte) ([]Declaration, error) {
	var decls []Declaration
	if err := yaml.Unmarshal(data, &decls); err != nil {
		return nil, errors.Wrap(err, "decode yaml declarations")
	}
	return decls, nil
}

// MarshalYAML 把声明列表输出为 YAML，可以再用 LoadYAML 读回
func MarshalYAML(decls []Declaration) ([]byte, error) {
	return yaml.Marshal(decls)
}

// LoadFile 根据扩展名读取 .mol 或者 .yaml/.yml 文件
func LoadFile(path string) ([]Declaration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read schema %s", path)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return LoadYAML(data)
	case ".mol":
		return Parse(string(data))
	}
	return nil, errors.Errorf("unsupported schema file %s", path)
}
