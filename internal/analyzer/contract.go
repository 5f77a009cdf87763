package analyzer

import (
	"encoding/json"

	"sigscan/internal/disassembler"
	"sigscan/internal/finding"
)

// Options 需要提取的信息，参数和可变性都依赖选择器
type Options struct {
	Selectors       bool
	Arguments       bool
	StateMutability bool
	Explain         bool // 附带可变性判定的依据
	Disassemble     bool
	BasicBlocks     bool
}

type Function struct {
	Selector        string             `json:"selector"`
	BytecodeOffset  int                `json:"bytecodeOffset"`
	Arguments       *string            `json:"arguments,omitempty"`
	StateMutability *string            `json:"stateMutability,omitempty"`
	Findings        []*finding.Finding `json:"findings,omitempty"`
}

// Instruction 序列化为 [pc, "OP arg"]
type Instruction struct {
	Offset int
	Opcode string
}

func (i Instruction) MarshalJSON() ([]byte, error) {
	return json.Marshal([]interface{}{i.Offset, i.Opcode})
}

type Contract struct {
	CodeHash     string                    `json:"codeHash"`
	Functions    []Function                `json:"functions,omitempty"`
	Disassembled []Instruction             `json:"disassembled,omitempty"`
	BasicBlocks  []disassembler.BasicBlock `json:"basicBlocks,omitempty"`
}

// Function 按选择器查找
func (c *Contract) Function(selector string) (*Function, bool) {
	for i := range c.Functions {
		if c.Functions[i].Selector == selector {
			return &c.Functions[i], true
		}
	}
	return nil, false
}
