package evm

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// LabelKind 污点标签种类
// 新增种类时，各分析器中的 switch 必须显式处理
type LabelKind uint8

const (
	LabelNone LabelKind = iota
	LabelCalldata
	LabelSignature
	LabelMulSig
	LabelSelCmp
	LabelArg
	LabelIsZeroResult
	LabelCallValue
	LabelCallValueIsZero
)

var labelKindNames = map[LabelKind]string{
	LabelNone:            "none",
	LabelCalldata:        "calldata",
	LabelSignature:       "signature",
	LabelMulSig:          "mulsig",
	LabelSelCmp:          "selcmp",
	LabelArg:             "arg",
	LabelIsZeroResult:    "iszero_result",
	LabelCallValue:       "callvalue",
	LabelCallValueIsZero: "callvalue_iszero",
}

func (k LabelKind) String() string {
	if name, ok := labelKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("label(%d)", uint8(k))
}

// ArgVal 参数在calldata中的位置
// Path 为外层动态参数的偏移链，Offset 为当前层内的偏移
type ArgVal struct {
	Offset  uint32
	Path    []uint32
	AddVal  uint32
	AndMask *uint256.Int
}

// FullPath 返回 Path+Offset 的新切片
func (v *ArgVal) FullPath() []uint32 {
	return AppendPath(v.Path, v.Offset)
}

func (v *ArgVal) Equal(o *ArgVal) bool {
	if v == nil || o == nil {
		return v == o
	}
	if v.Offset != o.Offset || v.AddVal != o.AddVal || !SamePath(v.Path, o.Path) {
		return false
	}
	if v.AndMask == nil || o.AndMask == nil {
		return v.AndMask == o.AndMask
	}
	return v.AndMask.Eq(o.AndMask)
}

// Label 栈元素或内存写入记录上的标签
type Label struct {
	Kind     LabelKind
	Selector [4]byte // LabelSelCmp
	Arg      *ArgVal // LabelArg, LabelIsZeroResult
}

var NoLabel = Label{}

func KindLabel(kind LabelKind) Label {
	return Label{Kind: kind}
}

func SelCmpLabel(selector [4]byte) Label {
	return Label{Kind: LabelSelCmp, Selector: selector}
}

func ArgLabel(v ArgVal) Label {
	return Label{Kind: LabelArg, Arg: &v}
}

func IsZeroResultLabel(v ArgVal) Label {
	return Label{Kind: LabelIsZeroResult, Arg: &v}
}

func (l Label) Is(kinds ...LabelKind) bool {
	for _, k := range kinds {
		if l.Kind == k {
			return true
		}
	}
	return false
}

func (l Label) Equal(o Label) bool {
	if l.Kind != o.Kind {
		return false
	}
	switch l.Kind {
	case LabelSelCmp:
		return l.Selector == o.Selector
	case LabelArg, LabelIsZeroResult:
		return l.Arg.Equal(o.Arg)
	}
	return true
}

func (l Label) String() string {
	switch l.Kind {
	case LabelSelCmp:
		return fmt.Sprintf("%s(%s)", l.Kind, common.Bytes2Hex(l.Selector[:]))
	case LabelArg, LabelIsZeroResult:
		mask := "-"
		if l.Arg.AndMask != nil {
			mask = l.Arg.AndMask.Hex()
		}
		return fmt.Sprintf("%s(off=%d path=%v add=%d mask=%s)", l.Kind, l.Arg.Offset, l.Arg.Path, l.Arg.AddVal, mask)
	}
	return l.Kind.String()
}

// SamePath 比较两条偏移链
func SamePath(a, b []uint32) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// AppendPath 追加偏移，不修改原切片
func AppendPath(path []uint32, offsets ...uint32) []uint32 {
	r := make([]uint32, 0, len(path)+len(offsets))
	r = append(r, path...)
	return append(r, offsets...)
}
