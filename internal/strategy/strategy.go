// Package strategy 实现分支的调度策略
package strategy

import (
	"sigscan/internal/evm"
)

// Branch 一条待执行的路径
type Branch struct {
	VM    *evm.VM
	Gas   *Meter
	Depth int
}

func NewBranch(vm *evm.VM, gas *Meter, depth int) *Branch {
	return &Branch{
		VM:    vm,
		Gas:   gas,
		Depth: depth,
	}
}

type Strategy interface {
	Size() int
	HasNext() bool
	Pop() (*Branch, error)
	Push(...*Branch) error
}
