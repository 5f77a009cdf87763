package evm

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Element 带标签的栈元素
type Element struct {
	Data  Word
	Label Label
}

func NewElement(v *uint256.Int) Element {
	return Element{Data: v.Bytes32()}
}

func (e Element) Uint() *uint256.Int {
	return e.Data.Uint()
}

func (e Element) String() string {
	if e.Label.Kind == LabelNone {
		return common.Bytes2Hex(e.Data[:])
	}
	return fmt.Sprintf("%s[%s]", common.Bytes2Hex(e.Data[:]), e.Label)
}
