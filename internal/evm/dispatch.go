package evm

import (
	"sigscan/internal/opcode"
)

// SelectorMatched 判断本步是否为分发器中与 selector 成立的比较
// EQ 结果为1，或 XOR/SUB 结果为0，且比较的一方低4字节等于 selector
func SelectorMatched(vm *VM, ret *StepResult, selector [4]byte) bool {
	if ret.Op != opcode.EQ && ret.Op != opcode.XOR && ret.Op != opcode.SUB {
		return false
	}
	top, err := vm.Stack.Peek()
	if err != nil {
		return false
	}
	if ret.Op == opcode.EQ && top.Data != word1 {
		return false
	}
	if ret.Op != opcode.EQ && !top.Data.IsZero() {
		return false
	}
	return ret.First != nil && ret.First.Data.Low4() == selector
}
