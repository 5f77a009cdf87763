package arguments

import (
	"fmt"
	"strings"
)

// TypeKind Solidity ABI 类型种类
type TypeKind uint8

const (
	KindUint TypeKind = iota
	KindInt
	KindAddress
	KindBool
	KindBytes
	KindString
	KindFixedBytes
	KindArray
	KindTuple
)

// Type ABI 类型
// Size: uint/int 为位数，FixedBytes 为字节数
type Type struct {
	Kind       TypeKind
	Size       int
	Elem       *Type
	Components []Type
}

var (
	Address = Type{Kind: KindAddress}
	Bool    = Type{Kind: KindBool}
	Bytes   = Type{Kind: KindBytes}
	String  = Type{Kind: KindString}
	Uint256 = Uint(256)
)

func Uint(bits int) Type {
	return Type{Kind: KindUint, Size: bits}
}

func Int(bits int) Type {
	return Type{Kind: KindInt, Size: bits}
}

func FixedBytes(n int) Type {
	return Type{Kind: KindFixedBytes, Size: n}
}

func Array(elem Type) Type {
	return Type{Kind: KindArray, Elem: &elem}
}

func Tuple(components []Type) Type {
	return Type{Kind: KindTuple, Components: components}
}

// String 规范类型名，如 uint256, bytes4, (uint8,address)[]
func (t Type) String() string {
	switch t.Kind {
	case KindUint:
		return fmt.Sprintf("uint%d", t.Size)
	case KindInt:
		return fmt.Sprintf("int%d", t.Size)
	case KindAddress:
		return "address"
	case KindBool:
		return "bool"
	case KindBytes:
		return "bytes"
	case KindString:
		return "string"
	case KindFixedBytes:
		return fmt.Sprintf("bytes%d", t.Size)
	case KindArray:
		return t.Elem.String() + "[]"
	case KindTuple:
		return "(" + JoinTypes(t.Components) + ")"
	}
	return fmt.Sprintf("unknown(%d)", t.Kind)
}

// JoinTypes 逗号连接的类型列表
func JoinTypes(types []Type) string {
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = t.String()
	}
	return strings.Join(names, ",")
}
