package arguments

import (
	"sort"
	"strconv"
	"strings"
)

type infoKind uint8

const (
	infoNone infoKind = iota
	infoDynamic
	infoArray
)

// info 参数树节点，子节点按偏移索引
// Dynamic(n)/Array(n) 的 n 为观察到的元素个数
type info struct {
	kind     infoKind
	n        uint32
	tname    *Type
	conf     uint8
	children map[uint32]*info
}

func newInfo() *info {
	return &info{children: make(map[uint32]*info)}
}

func (in *info) lastKey() (uint32, bool) {
	var (
		last  uint32
		found bool
	)
	for k := range in.children {
		if !found || k > last {
			last = k
			found = true
		}
	}
	return last, found
}

func (in *info) firstChild() *info {
	keys := make([]int, 0, len(in.children))
	for k := range in.children {
		keys = append(keys, int(k))
	}
	if len(keys) == 0 {
		return nil
	}
	sort.Ints(keys)
	return in.children[uint32(keys[0])]
}

// types 把节点转换为类型列表，根节点不包装成 tuple
func (in *info) types(isRoot bool) []Type {
	if in.tname != nil {
		if in.tname.Kind == KindBytes {
			if (in.kind == infoArray && in.n == 0) || (in.kind == infoDynamic && in.n == 1) || in.kind == infoNone {
				return []Type{*in.tname}
			}
		} else if len(in.children) == 0 {
			if in.kind == infoDynamic || in.kind == infoNone {
				return []Type{*in.tname}
			}
		}
	}

	var startKey uint32
	if in.kind == infoArray {
		startKey = 32
	}
	endKey, _ := in.lastKey()
	if in.kind != infoNone && in.n*32 > endKey {
		endKey = in.n * 32
	}

	var q []Type
	for k := uint64(startKey); k <= uint64(endKey); k += 32 {
		if child, ok := in.children[uint32(k)]; ok {
			q = append(q, child.types(false)...)
		} else {
			q = append(q, Uint256)
		}
	}

	c := q
	if len(q) > 1 && !isRoot {
		c = []Type{Tuple(q)}
	}

	switch in.kind {
	case infoArray:
		if len(q) == 1 {
			return []Type{Array(q[0])}
		}
		return []Type{Array(Tuple(q))}
	case infoDynamic:
		if endKey == 0 && len(in.children) == 0 {
			return []Type{Bytes}
		}
		if endKey == 32 {
			if len(in.children) == 0 {
				return []Type{Array(Uint256)}
			}
			if len(in.children) == 1 && in.firstChild().kind == infoNone && len(q) > 1 {
				return []Type{Array(q[1])}
			}
		}
	}
	return c
}

// result 参数分析的累积结果
type result struct {
	data    *info
	notBool map[string]bool
}

func newResult() *result {
	return &result{
		data:    newInfo(),
		notBool: make(map[string]bool),
	}
}

func pathKey(path []uint32) string {
	parts := make([]string, len(path))
	for i, p := range path {
		parts[i] = strconv.FormatUint(uint64(p), 10)
	}
	return strings.Join(parts, "/")
}

func fullPath(path []uint32, offset uint32) []uint32 {
	r := make([]uint32, 0, len(path)+1)
	r = append(r, path...)
	return append(r, offset)
}

func (r *result) getOrCreate(path []uint32) *info {
	node := r.data
	for _, key := range path {
		child, ok := node.children[key]
		if !ok {
			child = newInfo()
			node.children[key] = child
		}
		node = child
	}
	return node
}

func (r *result) get(path []uint32) *info {
	node := r.data
	for _, key := range path {
		child, ok := node.children[key]
		if !ok {
			return nil
		}
		node = child
	}
	return node
}

func (r *result) markNotBool(path []uint32, offset uint32) {
	full := fullPath(path, offset)
	if el := r.get(full); el != nil && el.tname != nil && el.tname.Kind == KindBool {
		el.tname = nil
		el.conf = 0
	}
	r.notBool[pathKey(full)] = true
}

// setTname 仅在置信度更高时覆盖
func (r *result) setTname(path []uint32, offset uint32, t Type, conf uint8) {
	full := fullPath(path, offset)
	if t.Kind == KindBool && r.notBool[pathKey(full)] {
		return
	}
	el := r.getOrCreate(full)
	if el.tname != nil && conf <= el.conf {
		return
	}
	el.tname = &t
	el.conf = conf
}

// arrayInPath 路径上每一层是否为数组，遇到不存在的节点即停止
func (r *result) arrayInPath(path []uint32) []bool {
	res := make([]bool, 0, len(path))
	node := r.data
	for _, key := range path {
		child, ok := node.children[key]
		if !ok {
			break
		}
		node = child
		res = append(res, node.kind == infoArray)
	}
	return res
}

func (r *result) setInfo(path []uint32, kind infoKind, n uint32) {
	if len(path) == 0 {
		return
	}
	el := r.getOrCreate(path)
	if kind == infoDynamic {
		switch el.kind {
		case infoDynamic:
			if el.n > n {
				return
			}
		case infoArray:
			return
		}
	}
	if el.kind == infoArray && kind == infoArray && n < el.n {
		return
	}
	el.kind = kind
	el.n = n
}

func (r *result) types() []Type {
	if len(r.data.children) == 0 {
		return nil
	}
	return r.data.types(true)
}
