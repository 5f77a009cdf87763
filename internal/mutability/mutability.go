// Package mutability 判断函数的状态可变性
package mutability

import (
	"sigscan/internal/evm"
	"sigscan/internal/finding"
	"sigscan/internal/module"
	"sigscan/internal/opcode"
	"sigscan/internal/strategy"

	log "github.com/sirupsen/logrus"
)

type StateMutability string

const (
	Pure       StateMutability = "pure"
	View       StateMutability = "view"
	NonPayable StateMutability = "nonpayable"
	Payable    StateMutability = "payable"
)

const (
	DefaultGas = 500000

	maxDepth       = 8
	probeCallValue = 1
	calldataSize   = 131072
)

// Result 判定结果及依据
type Result struct {
	Mutability StateMutability
	Findings   []*finding.Finding
}

// Classify 返回选择器对应函数的状态可变性
func Classify(code []byte, selector [4]byte, gasLimit uint64) StateMutability {
	return Analyze(code, selector, gasLimit).Mutability
}

// Analyze 先检查转账保护，再探索函数体中的状态访问
// 前一步最多使用一半的gas
func Analyze(code []byte, selector [4]byte, gasLimit uint64) *Result {
	if gasLimit == 0 {
		gasLimit = DefaultGas
	}
	vm := evm.New(code, evm.NewCalldata(selector[:], calldataSize, evm.NoLabel))

	payable, used, findings := analyzePayable(vm.Fork(), gasLimit/2)
	if payable {
		return &Result{Mutability: Payable}
	}
	if used > gasLimit/2 {
		used = gasLimit / 2
	}

	c := newClassifier(selector)
	c.explore(vm, gasLimit-used)
	findings = append(findings, c.findings()...)

	r := &Result{Mutability: NonPayable, Findings: findings}
	if c.pure {
		r.Mutability = Pure
	} else if c.view {
		r.Mutability = View
	}
	return r
}

// analyzePayable 以非零 callvalue 执行，遇到转账保护即返回 false
func analyzePayable(vm *evm.VM, gasLimit uint64) (bool, uint64, []*finding.Finding) {
	var (
		mm    = module.NewModuleManager()
		guard = module.NewCallValueGuard(probeCallValue)
		gas   = strategy.NewMeter(gasLimit)
	)
	mm.AddModule(guard)

	for !vm.Stopped() {
		pc := vm.PC()
		ret, err := vm.Step()
		if err != nil {
			log.Debugf("mutability: payable: %v", err)
			break
		}
		if !gas.Charge(ret.Gas) {
			break
		}
		findings, err := mm.ExecutePostHooks(&module.Context{VM: vm, Step: ret, PC: pc})
		if err != nil {
			log.Debugf("mutability: payable: %v", err)
			break
		}
		if len(findings) > 0 {
			return false, gas.Used(), findings
		}
	}
	return true, gas.Used(), nil
}

type classifier struct {
	selector [4]byte
	view     bool
	pure     bool
	manager  *module.ModuleManager
	strategy strategy.Strategy
}

func newClassifier(selector [4]byte) *classifier {
	mm := module.NewModuleManager()
	mm.AddModule(module.NewStateWrite())
	mm.AddModule(module.NewStateRead())
	return &classifier{
		selector: selector,
		view:     true,
		pure:     true,
		manager:  mm,
		strategy: strategy.NewDFS(),
	}
}

func (c *classifier) findings() []*finding.Finding {
	var r []*finding.Finding
	for _, m := range c.manager.Modules {
		r = append(r, m.GetFindings()...)
	}
	return r
}

// explore 从函数入口开始，在每个 JUMPI 处分叉探索未选择的一侧
func (c *classifier) explore(vm *evm.VM, gasLimit uint64) {
	root := strategy.NewMeter(gasLimit)
	if !executeUntilFunctionStart(vm, root, c.selector) {
		return
	}
	_ = c.strategy.Push(strategy.NewBranch(vm, root, 0))
	for c.strategy.HasNext() && c.view {
		branch, err := c.strategy.Pop()
		if err != nil {
			break
		}
		if !branch.Gas.Resolve() || branch.Gas.Exhausted() {
			continue
		}
		c.run(branch)
	}
}

func (c *classifier) run(branch *strategy.Branch) {
	vm := branch.VM
	for !vm.Stopped() && c.view {
		pc := vm.PC()
		ret, err := vm.Step()
		if err != nil {
			log.Debugf("mutability: branch stopped: %v", err)
			return
		}
		if !branch.Gas.Charge(ret.Gas) {
			return
		}

		if ret.Op == opcode.JUMPI {
			to, ok := vm.Target(ret.First)
			if ok && branch.Depth < maxDepth && branch.Gas.Used() < branch.Gas.Limit() {
				other := vm.Fork()
				other.SetPC(to)
				_ = c.strategy.Push(branch)
				_ = c.strategy.Push(strategy.NewBranch(other, branch.Gas.Child(2), branch.Depth+1))
				return
			}
			continue
		}

		findings, err := c.manager.ExecutePostHooks(&module.Context{VM: vm, Step: ret, PC: pc})
		if err != nil {
			log.Debugf("mutability: %v", err)
			return
		}
		for _, f := range findings {
			switch f.ID {
			case module.RuleNotView:
				c.view = false
				c.pure = false
			case module.RuleNotPure:
				c.pure = false
			}
		}
	}
}

// executeUntilFunctionStart 执行到选择器匹配后的第一个 JUMPI
func executeUntilFunctionStart(vm *evm.VM, gas *strategy.Meter, selector [4]byte) bool {
	found := false
	for !vm.Stopped() {
		ret, err := vm.Step()
		if err != nil {
			return false
		}
		if !gas.Charge(ret.Gas) {
			return false
		}
		if found && ret.Op == opcode.JUMPI {
			return true
		}
		if evm.SelectorMatched(vm, ret, selector) {
			found = true
		}
	}
	return false
}
