/**
  @author: decision
  @date: 2024/3/15
  @note: molecule 文本 schema 的解析器
**/

package molecule

import (
	"fmt"
	"github.com/pkg/errors"
	"strconv"
	"strings"
	"text/scanner"
)

var ErrSyntax = errors.New("molecule syntax error")

type parser struct {
	s   scanner.Scanner
	tok rune
	err error
}

// Parse
//
//	@Description: 解析 .mol 文本，支持 array、vector、option、union、struct、table 以及注释，
//	import 语句会被忽略，被导入的类型需要通过 refs 或者拼接后的声明提供
//	@param src - schema 文本
//	@return []Declaration - 按出现顺序返回
func Parse(src string) ([]Declaration, error) {
	p := &parser{}
	p.s.Init(strings.NewReader(src))
	p.s.Mode = scanner.ScanIdents | scanner.ScanInts | scanner.ScanStrings | scanner.ScanComments | scanner.SkipComments
	p.s.Error = func(s *scanner.Scanner, msg string) {
		if p.err == nil {
			p.err = errors.Wrapf(ErrSyntax, "%s: %s", s.Position, msg)
		}
	}
	p.next()

	var decls []Declaration
	for p.tok != scanner.EOF {
		decl, ok, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		if ok {
			decls = append(decls, decl)
		}
	}
	if p.err != nil {
		return nil, p.err
	}
	return decls, nil
}

func (p *parser) next() {
	p.tok = p.s.Scan()
}

func (p *parser) errorf(format string, args ...any) error {
	if p.err != nil {
		return p.err
	}
	return errors.Wrapf(ErrSyntax, "%s: %s", p.s.Position, fmt.Sprintf(format, args...))
}

func (p *parser) expect(tok rune) error {
	if p.tok != tok {
		return p.errorf("expected %s, got %q", scanner.TokenString(tok), p.s.TokenText())
	}
	p.next()
	return nil
}

func (p *parser) ident() (string, error) {
	if p.tok != scanner.Ident {
		return "", p.errorf("expected identifier, got %q", p.s.TokenText())
	}
	name := p.s.TokenText()
	p.next()
	return name, nil
}

func (p *parser) parseStatement() (Declaration, bool, error) {
	keyword, err := p.ident()
	if err != nil {
		return Declaration{}, false, err
	}

	if keyword == "import" {
		if p.tok != scanner.String && p.tok != scanner.Ident {
			return Declaration{}, false, p.errorf("expected import path, got %q", p.s.TokenText())
		}
		p.next()
		return Declaration{}, false, p.expect(';')
	}

	kind := Kind(keyword)
	if !kind.valid() {
		return Declaration{}, false, p.errorf("unknown declaration kind %q", keyword)
	}

	name, err := p.ident()
	if err != nil {
		return Declaration{}, false, err
	}
	decl := Declaration{Name: name, Kind: kind}

	switch kind {
	case KindArray:
		// array Byte32 [byte; 32];
		if err = p.expect('['); err != nil {
			return decl, false, err
		}
		if decl.Item, err = p.ident(); err != nil {
			return decl, false, err
		}
		if err = p.expect(';'); err != nil {
			return decl, false, err
		}
		if decl.Count, err = p.integer(); err != nil {
			return decl, false, err
		}
		err = p.expect(']')
	case KindVector:
		// vector Bytes <byte>;
		if err = p.expect('<'); err != nil {
			return decl, false, err
		}
		if decl.Item, err = p.ident(); err != nil {
			return decl, false, err
		}
		err = p.expect('>')
	case KindOption:
		// option ScriptOpt (Script);
		if err = p.expect('('); err != nil {
			return decl, false, err
		}
		if decl.Item, err = p.ident(); err != nil {
			return decl, false, err
		}
		err = p.expect(')')
	case KindStruct, KindTable:
		decl.Fields, err = p.parseFields()
	case KindUnion:
		decl.Items, err = p.parseUnionItems()
	}
	if err != nil {
		return decl, false, err
	}

	// struct、table、union 的右括号后分号可以省略
	if p.tok == ';' {
		p.next()
	} else if kind != KindStruct && kind != KindTable && kind != KindUnion {
		return decl, false, p.errorf("expected ';' after %s", name)
	}
	return decl, true, nil
}

func (p *parser) integer() (int, error) {
	if p.tok != scanner.Int {
		return 0, p.errorf("expected integer, got %q", p.s.TokenText())
	}
	n, err := strconv.ParseUint(p.s.TokenText(), 0, 32)
	if err != nil {
		return 0, p.errorf("invalid integer %q", p.s.TokenText())
	}
	p.next()
	return int(n), nil
}

func (p *parser) parseFields() ([]FieldDecl, error) {
	if err := p.expect('{'); err != nil {
		return nil, err
	}

	var fields []FieldDecl
	for p.tok != '}' {
		name, err := p.ident()
		if err != nil {
			return nil, err
		}
		if err = p.expect(':'); err != nil {
			return nil, err
		}
		typ, err := p.ident()
		if err != nil {
			return nil, err
		}
		fields = append(fields, FieldDecl{Name: name, Type: typ})

		if p.tok != ',' {
			break
		}
		p.next()
	}
	return fields, p.expect('}')
}

func (p *parser) parseUnionItems() ([]UnionItem, error) {
	if err := p.expect('{'); err != nil {
		return nil, err
	}

	var items []UnionItem
	for p.tok != '}' {
		typ, err := p.ident()
		if err != nil {
			return nil, err
		}
		item := UnionItem{Type: typ}

		// 显式编号 Item: 3
		if p.tok == ':' {
			p.next()
			id, err := p.integer()
			if err != nil {
				return nil, err
			}
			value := uint32(id)
			item.ID = &value
		}
		items = append(items, item)

		if p.tok != ',' {
			break
		}
		p.next()
	}
	return items, p.expect('}')
}

// CamelCaseFields 把字段名从 snake_case 转换为 camelCase，例如 code_hash 转换为 codeHash，type_ 转换为 type
func CamelCaseFields(decls []Declaration) []Declaration {
	result := make([]Declaration, len(decls))
	for idx, decl := range decls {
		result[idx] = decl
		if len(decl.Fields) == 0 {
			continue
		}

		fields := make([]FieldDecl, len(decl.Fields))
		for i, field := range decl.Fields {
			fields[i] = FieldDecl{Name: camelCase(field.Name), Type: field.Type}
		}
		result[idx].Fields = fields
	}
	return result
}

func camelCase(s string) string {
	var sb strings.Builder
	upper := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '_' && i+1 < len(s) && s[i+1] >= 'a' && s[i+1] <= 'z' {
			upper = true
			continue
		}
		// type_ 这类为了避开关键字的后缀直接去掉
		if c == '_' && i == len(s)-1 && i > 0 {
			continue
		}
		if upper {
			c -= 'a' - 'A'
			upper = false
		}
		sb.WriteByte(c)
	}
	return sb.String()
}
