// Package molecule
// @Description: 把 molecule schema 声明编译为编解码器
package molecule

import (
	"github.com/goccy/go-yaml"
	"github.com/pkg/errors"
)

// Byte 是内置的单字节类型，不需要声明
const Byte = "byte"

type Kind string

const (
	KindArray  Kind = "array"
	KindVector Kind = "vector"
	KindOption Kind = "option"
	KindUnion  Kind = "union"
	KindStruct Kind = "struct"
	KindTable  Kind = "table"
)

func (k Kind) valid() bool {
	switch k {
	case KindArray, KindVector, KindOption, KindUnion, KindStruct, KindTable:
		return true
	}
	return false
}

// FieldDecl 是 struct 或 table 的一个字段
type FieldDecl struct {
	Name string `yaml:"name" json:"name"`
	Type string `yaml:"type" json:"type"`
}

// UnionItem 是 union 的一个变体，ID 为空时编号为上一个变体加一
type UnionItem struct {
	Type string  `yaml:"type" json:"type"`
	ID   *uint32 `yaml:"id,omitempty" json:"id,omitempty"`
}

// UnmarshalYAML 同时支持 "Script" 和 {type: Script, id: 3} 两种写法
func (u *UnionItem) UnmarshalYAML(data []byte) error {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return err
	}
	if name, ok := raw.(string); ok {
		u.Type = name
		u.ID = nil
		return nil
	}

	var item struct {
		Type string  `yaml:"type"`
		ID   *uint32 `yaml:"id"`
	}
	if err := yaml.Unmarshal(data, &item); err != nil {
		return errors.Wrap(err, "union item must be a type name or {type, id}")
	}
	u.Type = item.Type
	u.ID = item.ID
	return nil
}

// Declaration 是一个具名的类型声明
type Declaration struct {
	Name   string      `yaml:"name" json:"name"`
	Kind   Kind        `yaml:"type" json:"type"`
	Item   string      `yaml:"item,omitempty" json:"item,omitempty"`
	Count  int         `yaml:"item_count,omitempty" json:"item_count,omitempty"`
	Fields []FieldDecl `yaml:"fields,omitempty" json:"fields,omitempty"`
	Items  []UnionItem `yaml:"items,omitempty" json:"items,omitempty"`
}

// Dependencies 返回直接依赖的类型名，按声明顺序，可能重复
func (d *Declaration) Dependencies() []string {
	switch d.Kind {
	case KindArray, KindVector, KindOption:
		return []string{d.Item}
	case KindStruct, KindTable:
		result := make([]string, len(d.Fields))
		for idx, field := range d.Fields {
			result[idx] = field.Type
		}
		return result
	case KindUnion:
		result := make([]string, len(d.Items))
		for idx, item := range d.Items {
			result[idx] = item.Type
		}
		return result
	}
	return nil
}

// Array 等构造函数用于在代码中书写 schema

func Array(name, item string, count int) Declaration {
	return Declaration{Name: name, Kind: KindArray, Item: item, Count: count}
}

func Vector(name, item string) Declaration {
	return Declaration{Name: name, Kind: KindVector, Item: item}
}

func Option(name, item string) Declaration {
	return Declaration{Name: name, Kind: KindOption, Item: item}
}

func Struct(name string, fields ...FieldDecl) Declaration {
	return Declaration{Name: name, Kind: KindStruct, Fields: fields}
}

func Table(name string, fields ...FieldDecl) Declaration {
	return Declaration{Name: name, Kind: KindTable, Fields: fields}
}

func Union(name string, items ...UnionItem) Declaration {
	return Declaration{Name: name, Kind: KindUnion, Items: items}
}

// F 创建一个字段
func F(name, typ string) FieldDecl {
	return FieldDecl{Name: name, Type: typ}
}

// V 创建一个按顺序编号的 union 变体
func V(typ string) UnionItem {
	return UnionItem{Type: typ}
}

// VID 创建一个显式编号的 union 变体
func VID(typ string, id uint32) UnionItem {
	return UnionItem{Type: typ, ID: &id}
}
