package molecule

import (
	"github.com/chain-lab/go-molecule/codec"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
)

var (
	ErrDuplicateName      = errors.New("duplicate declaration name")
	ErrInvalidDeclaration = errors.New("invalid declaration")

	ErrDuplicateField = codec.ErrDuplicateField
	ErrNotFixedLength = codec.ErrNotFixedLength
)

// Validate
//
//	@Description: 一次性检查所有声明，错误会全部收集后返回。依赖是否存在以及是否成环交给排序阶段处理
//	@param decls - 声明列表
//	@param refs - 外部提供的编解码器
//	@return error - *multierror.Error，没有问题时为 nil
func Validate(decls []Declaration, refs map[string]codec.Codec) error {
	var result *multierror.Error

	byName := make(map[string]*Declaration, len(decls))
	for idx := range decls {
		decl := &decls[idx]
		if _, ok := byName[decl.Name]; ok {
			result = multierror.Append(result, errors.Wrapf(ErrDuplicateName, "%s", decl.Name))
			continue
		}
		if _, ok := refs[decl.Name]; ok || decl.Name == Byte {
			result = multierror.Append(result, errors.Wrapf(ErrDuplicateName, "%s shadows a known type", decl.Name))
			continue
		}
		byName[decl.Name] = decl
	}

	for idx := range decls {
		decl := &decls[idx]
		if err := checkDeclaration(decl); err != nil {
			result = multierror.Append(result, err)
			continue
		}

		if decl.Kind == KindArray || decl.Kind == KindStruct {
			for _, dep := range decl.Dependencies() {
				if !isFixed(dep, byName, refs, map[string]bool{decl.Name: true}) {
					result = multierror.Append(result,
						errors.Wrapf(ErrNotFixedLength, "%s %s has non fixed length member %s", decl.Kind, decl.Name, dep))
					break
				}
			}
		}
	}

	return result.ErrorOrNil()
}

func checkDeclaration(decl *Declaration) error {
	if decl.Name == "" {
		return errors.Wrap(ErrInvalidDeclaration, "declaration without name")
	}
	if !decl.Kind.valid() {
		return errors.Wrapf(ErrInvalidDeclaration, "%s has unknown kind %q", decl.Name, decl.Kind)
	}

	switch decl.Kind {
	case KindArray:
		if decl.Count <= 0 {
			return errors.Wrapf(ErrInvalidDeclaration, "array %s must have a positive item count", decl.Name)
		}
		fallthrough
	case KindVector, KindOption:
		if decl.Item == "" {
			return errors.Wrapf(ErrInvalidDeclaration, "%s %s has no item type", decl.Kind, decl.Name)
		}
	case KindStruct, KindTable:
		fields := make(map[string]struct{}, len(decl.Fields))
		for _, field := range decl.Fields {
			if _, ok := fields[field.Name]; ok {
				return errors.Wrapf(ErrDuplicateField, "%s.%s", decl.Name, field.Name)
			}
			fields[field.Name] = struct{}{}
		}
	case KindUnion:
		if len(decl.Items) == 0 {
			return errors.Wrapf(ErrInvalidDeclaration, "union %s has no items", decl.Name)
		}
		if _, err := unionIDs(decl); err != nil {
			return err
		}
	}
	return nil
}

// unionIDs 为变体分配编号，没有显式编号的取上一个编号加一，第一个为 0
func unionIDs(decl *Declaration) ([]uint32, error) {
	ids := make([]uint32, len(decl.Items))
	types := make(map[string]struct{}, len(decl.Items))
	used := make(map[uint32]string, len(decl.Items))

	next := uint32(0)
	for idx, item := range decl.Items {
		if _, ok := types[item.Type]; ok {
			return nil, errors.Wrapf(ErrDuplicateField, "%s has duplicate item %s", decl.Name, item.Type)
		}
		types[item.Type] = struct{}{}

		id := next
		if item.ID != nil {
			id = *item.ID
		}
		if other, ok := used[id]; ok {
			return nil, errors.Wrapf(ErrDuplicateField, "%s uses id %d for both %s and %s", decl.Name, id, other, item.Type)
		}
		used[id] = item.Type
		ids[idx] = id
		next = id + 1
	}
	return ids, nil
}

// isFixed 递归判断类型是否定长，未知类型和正在访问的类型视为定长，让排序阶段去报告它们
func isFixed(name string, byName map[string]*Declaration, refs map[string]codec.Codec, visiting map[string]bool) bool {
	if name == Byte || visiting[name] {
		return true
	}
	if ref, ok := refs[name]; ok {
		_, fixed := codec.IsFixed(ref)
		return fixed
	}

	decl, ok := byName[name]
	if !ok {
		return true
	}

	switch decl.Kind {
	case KindArray, KindStruct:
		visiting[name] = true
		defer delete(visiting, name)
		for _, dep := range decl.Dependencies() {
			if !isFixed(dep, byName, refs, visiting) {
				return false
			}
		}
		return true
	}
	return false
}
