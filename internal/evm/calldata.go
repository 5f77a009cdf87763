package evm

import (
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
)

// MaxCalldataCopy CALLDATACOPY 支持的最大长度
const MaxCalldataCopy = 512

// Calldata 合成的调用数据
// size 为 CALLDATASIZE 返回值，可以大于实际数据长度，超出部分读为0
type Calldata struct {
	data  []byte
	size  uint64
	label Label
}

func NewCalldata(data []byte, size uint64, label Label) *Calldata {
	return &Calldata{
		data:  data,
		size:  size,
		label: label,
	}
}

// Selector 前4字节
func (c *Calldata) Selector() [4]byte {
	var r [4]byte
	copy(r[:], c.data)
	return r
}

func (c *Calldata) Size() uint64 {
	return c.size
}

func (c *Calldata) Label() Label {
	return c.label
}

// Load32 CALLDATALOAD
func (c *Calldata) Load32(offset *uint256.Int) Element {
	var w Word
	c.copyAt(w[:], offset)
	return Element{Data: w, Label: c.label}
}

// Load CALLDATACOPY
func (c *Calldata) Load(offset *uint256.Int, size uint64) ([]byte, Label, error) {
	if size > MaxCalldataCopy {
		return nil, NoLabel, errors.Wrapf(ErrUnsupportedOp, "calldatacopy size %d", size)
	}
	data := make([]byte, size)
	c.copyAt(data, offset)
	return data, c.label, nil
}

func (c *Calldata) copyAt(dst []byte, offset *uint256.Int) {
	if !offset.IsUint64() || offset.Uint64() >= uint64(len(c.data)) {
		return
	}
	copy(dst, c.data[offset.Uint64():])
}
