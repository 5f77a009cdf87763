package disassembler

import (
	"sigscan/internal/opcode"
)

// Disassembly 汇编信息管理
type Disassembly struct {
	bytecode     []byte
	instructions []EvmInstruction
	funcHashes   []string
	blocks       []BasicBlock
}

func NewDisassembly(bytecode []byte) *Disassembly {
	d := &Disassembly{
		bytecode:     bytecode,
		instructions: Disassemble(bytecode),
	}
	// PUSH4 <selector> EQ 形式的分发表，只做参考
	jumpTableIndices := FindOPCodeSequence([][]opcode.OpCode{{opcode.PUSH4}, {opcode.EQ}}, d.instructions)
	for _, index := range jumpTableIndices {
		d.funcHashes = append(d.funcHashes, d.instructions[index].FormatArgument())
	}
	d.blocks = basicBlocks(d.instructions)
	return d
}

func (d *Disassembly) GetBytecode() []byte {
	return d.bytecode
}

func (d *Disassembly) GetEASM() string {
	return instructionListToEASM(d.instructions)
}

func (d *Disassembly) GetInstructions() []EvmInstruction {
	return d.instructions
}

// GetFunctionHashes 按 PUSH4 EQ 模式找到的候选选择器
func (d *Disassembly) GetFunctionHashes() []string {
	return d.funcHashes
}

func (d *Disassembly) GetBasicBlocks() []BasicBlock {
	return d.blocks
}

// GetInstructionIndex 返回地址不小于address的第一条指令
func (d *Disassembly) GetInstructionIndex(address int) int {
	for index, instruction := range d.instructions {
		if instruction.Address >= address {
			return index
		}
	}
	return -1
}
