/**
  @author: decision
  @date: 2024/3/14
  @note: 按依赖关系排序声明，保证被依赖的类型先构建
**/

package molecule

import (
	"fmt"
	"github.com/pkg/errors"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"strings"
)

var ErrCircularOrUnknownDependency = errors.New("circular or unknown dependency")

// DependencyError 列出无法解析的声明。Names 为卡住的声明集合，Missing 为既没有声明也不是已知类型的引用，
// Cycle 只有 TopologySort 检测到环时才会设置
type DependencyError struct {
	Names   []string
	Missing []string
	Cycle   []string
}

func (e *DependencyError) Error() string {
	var sb strings.Builder
	sb.WriteString(ErrCircularOrUnknownDependency.Error())

	if len(e.Cycle) > 0 {
		sb.WriteString(": ")
		sb.WriteString(strings.Join(e.Cycle, " -> "))
	} else if len(e.Names) > 0 {
		sb.WriteString(": ")
		sb.WriteString(strings.Join(e.Names, ", "))
	}

	if len(e.Missing) > 0 {
		sb.WriteString(fmt.Sprintf(" (unknown types: %s)", strings.Join(e.Missing, ", ")))
	}
	return sb.String()
}

func (e *DependencyError) Is(target error) bool {
	return target == ErrCircularOrUnknownDependency
}

// circularIterator 循环遍历待处理的声明，删除当前元素后从下一个继续，而不是回到开头
type circularIterator struct {
	items []*Declaration
	index int
}

func newCircularIterator(items []*Declaration) *circularIterator {
	return &circularIterator{items: items}
}

func (it *circularIterator) current() *Declaration {
	if len(it.items) == 0 {
		return nil
	}
	return it.items[it.index]
}

func (it *circularIterator) next() {
	if len(it.items) == 0 {
		return
	}
	it.index = (it.index + 1) % len(it.items)
}

func (it *circularIterator) removeAndNext() {
	it.items = slices.Delete(it.items, it.index, it.index+1)
	if it.index >= len(it.items) {
		it.index = 0
	}
}

func (it *circularIterator) remaining() []*Declaration {
	return it.items
}

// SortDeclarations
//
//	@Description: 循环扫描声明列表，所有直接依赖都已知的声明依次输出。最坏情况是依赖全部排在后面，
//	需要扫描 1 + 2 + ... + n 次，超过次数仍有剩余时返回 *DependencyError
//	@param decls - 待排序的声明
//	@param known - 已知的类型名，byte 总是已知
//	@return []Declaration - 排序后的声明，依赖在前
func SortDeclarations(decls []Declaration, known []string) ([]Declaration, error) {
	available := make(map[string]struct{}, len(known)+len(decls)+1)
	available[Byte] = struct{}{}
	for _, name := range known {
		available[name] = struct{}{}
	}

	pending := make([]*Declaration, len(decls))
	for idx := range decls {
		pending[idx] = &decls[idx]
	}

	sorted := make([]Declaration, 0, len(decls))
	iterator := newCircularIterator(pending)

	n := len(decls)
	maxScanTimes := n * (n + 1) / 2
	for scanTimes := 0; iterator.current() != nil && scanTimes < maxScanTimes; scanTimes++ {
		decl := iterator.current()
		if canResolve(decl, available) {
			sorted = append(sorted, *decl)
			available[decl.Name] = struct{}{}
			iterator.removeAndNext()
			continue
		}
		iterator.next()
	}

	if stuck := iterator.remaining(); len(stuck) > 0 {
		return nil, stuckError(stuck, decls, available)
	}
	return sorted, nil
}

func canResolve(decl *Declaration, available map[string]struct{}) bool {
	for _, dep := range decl.Dependencies() {
		if _, ok := available[dep]; !ok {
			return false
		}
	}
	return true
}

func stuckError(stuck []*Declaration, decls []Declaration, available map[string]struct{}) error {
	declared := make(map[string]struct{}, len(decls))
	for _, decl := range decls {
		declared[decl.Name] = struct{}{}
	}

	names := make([]string, len(stuck))
	missing := make(map[string]struct{})
	for idx, decl := range stuck {
		names[idx] = decl.Name
		for _, dep := range decl.Dependencies() {
			_, isDeclared := declared[dep]
			_, isKnown := available[dep]
			if !isDeclared && !isKnown {
				missing[dep] = struct{}{}
			}
		}
	}

	missingNames := maps.Keys(missing)
	slices.Sort(names)
	slices.Sort(missingNames)
	return &DependencyError{Names: names, Missing: missingNames}
}

// TopologySort
//
//	@Description: 深度优先的拓扑排序，可以给出准确的环路径，例如 A -> B -> A
//	@param decls - 待排序的声明
//	@param known - 已知的类型名，byte 总是已知
//	@return []Declaration - 排序后的声明，依赖在前，同层按输入顺序
func TopologySort(decls []Declaration, known []string) ([]Declaration, error) {
	byName := make(map[string]int, len(decls))
	for idx, decl := range decls {
		byName[decl.Name] = idx
	}

	external := make(map[string]struct{}, len(known)+1)
	external[Byte] = struct{}{}
	for _, name := range known {
		external[name] = struct{}{}
	}

	sorted := make([]Declaration, 0, len(decls))
	visited := make(map[string]bool, len(decls))
	visiting := make(map[string]bool)

	var visit func(idx int, path []string) error
	visit = func(idx int, path []string) error {
		decl := decls[idx]
		if visiting[decl.Name] {
			start := slices.Index(path, decl.Name)
			cycle := append(slices.Clone(path[start:]), decl.Name)
			return &DependencyError{Names: []string{decl.Name}, Cycle: cycle}
		}
		if visited[decl.Name] {
			return nil
		}

		visiting[decl.Name] = true
		path = append(path, decl.Name)
		for _, dep := range decl.Dependencies() {
			if _, ok := external[dep]; ok {
				continue
			}

			depIdx, ok := byName[dep]
			if !ok {
				return &DependencyError{Names: []string{decl.Name}, Missing: []string{dep}}
			}
			if err := visit(depIdx, path); err != nil {
				return err
			}
		}

		visiting[decl.Name] = false
		visited[decl.Name] = true
		sorted = append(sorted, decl)
		return nil
	}

	for idx := range decls {
		if err := visit(idx, nil); err != nil {
			return nil, err
		}
	}
	return sorted, nil
}
