package disassembler

import (
	"encoding/json"

	"sigscan/internal/opcode"
)

type BlockKind int

const (
	BlockTerminate BlockKind = iota
	BlockJump
	BlockJumpi
	BlockDynamicJump
	BlockDynamicJumpi
)

func (k BlockKind) String() string {
	switch k {
	case BlockTerminate:
		return "Terminate"
	case BlockJump:
		return "Jump"
	case BlockJumpi:
		return "Jumpi"
	case BlockDynamicJump:
		return "DynamicJump"
	case BlockDynamicJumpi:
		return "DynamicJumpi"
	}
	return "Unknown"
}

// BasicBlock [Start,End] 为首尾指令的地址
// Jump 的目标在 To；Jumpi 条件成立跳到 To，否则到 FalseTo
type BasicBlock struct {
	Start   int
	End     int
	Kind    BlockKind
	To      int
	FalseTo int
	Success bool
}

// MarshalJSON 输出 [start, end]
func (b BasicBlock) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]int{b.Start, b.End})
}

// staticTarget PUSH1~PUSH4 紧接跳转时的目标
func staticTarget(prev *EvmInstruction) (int, bool) {
	if prev == nil || prev.OPCode < opcode.PUSH1 || prev.OPCode > opcode.PUSH4 {
		return 0, false
	}
	var to int
	for _, b := range prev.Argument {
		to = to<<8 | int(b)
	}
	return to, true
}

// basicBlocks 在JUMPDEST前、跳转和终止指令后切分
// 终止之后直到下一个JUMPDEST的代码不可达，不输出
func basicBlocks(instructions []EvmInstruction) []BasicBlock {
	var (
		blocks       []BasicBlock
		block        = BasicBlock{}
		prev         *EvmInstruction
		waitJumpdest bool
	)
	closeBlock := func(end int) {
		block.End = end
		blocks = append(blocks, block)
	}
	for i := range instructions {
		ins := &instructions[i]
		if waitJumpdest {
			if ins.OPCode == opcode.JUMPDEST {
				block = BasicBlock{Start: ins.Address}
				waitJumpdest = false
			}
			prev = ins
			continue
		}
		next := ins.Address + 1 + len(ins.Argument)
		switch {
		case ins.OPCode == opcode.JUMPDEST:
			if block.Start != ins.Address {
				block.Kind, block.To = BlockJump, ins.Address
				closeBlock(prev.Address)
				block = BasicBlock{Start: ins.Address}
			}
		case ins.OPCode == opcode.JUMPI:
			block.Kind, block.FalseTo = BlockDynamicJumpi, next
			if to, ok := staticTarget(prev); ok {
				block.Kind, block.To = BlockJumpi, to
			}
			closeBlock(ins.Address)
			block = BasicBlock{Start: next}
		case ins.OPCode == opcode.JUMP:
			block.Kind = BlockDynamicJump
			if to, ok := staticTarget(prev); ok {
				block.Kind, block.To = BlockJump, to
			}
			closeBlock(ins.Address)
			waitJumpdest = true
		case opcode.IsHalt(ins.OPCode):
			block.Kind = BlockTerminate
			block.Success = ins.OPCode != opcode.REVERT && ins.OPCode != opcode.INVALID
			closeBlock(ins.Address)
			waitJumpdest = true
		case !opcode.IsDefined(byte(ins.OPCode)):
			if block.Start != ins.Address {
				block.Kind = BlockTerminate
				closeBlock(prev.Address)
			}
			waitJumpdest = true
		}
		prev = ins
	}
	if !waitJumpdest && prev != nil && block.Start <= prev.Address {
		block.Kind = BlockTerminate
		closeBlock(prev.Address)
	}
	return blocks
}
