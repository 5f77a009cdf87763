// Package selectors 从分发器中恢复函数选择器
package selectors

import (
	"sort"

	"sigscan/internal/evm"
	"sigscan/internal/opcode"
	"sigscan/internal/strategy"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	log "github.com/sirupsen/logrus"
)

const DefaultGas = 500000

// 哨兵选择器，用于识别从calldata中截取出的选择器
var sentinel = [4]byte{0xaa, 0xbb, 0xcc, 0xdd}

var maskSelector = uint256.NewInt(0xffffffff)

// Extract 返回 选择器 -> 函数体入口pc，以及消耗的gas
func Extract(code []byte, gasLimit uint64) (map[[4]byte]int, uint64) {
	if gasLimit == 0 {
		gasLimit = DefaultGas
	}
	calldata := evm.NewCalldata(sentinel[:], uint64(len(sentinel)), evm.KindLabel(evm.LabelCalldata))
	e := &extractor{
		selectors: make(map[[4]byte]int),
		strategy:  strategy.NewDFS(),
	}
	root := strategy.NewMeter(gasLimit)
	_ = e.strategy.Push(strategy.NewBranch(evm.New(code, calldata), root, 0))
	for e.strategy.HasNext() {
		branch, err := e.strategy.Pop()
		if err != nil {
			break
		}
		if !branch.Gas.Resolve() || branch.Gas.Exhausted() {
			continue
		}
		e.run(branch)
	}
	return e.selectors, root.Used()
}

// Sorted 排序后的十六进制选择器列表
func Sorted(selectors map[[4]byte]int) []string {
	r := make([]string, 0, len(selectors))
	for s := range selectors {
		r = append(r, common.Bytes2Hex(s[:]))
	}
	sort.Strings(r)
	return r
}

type extractor struct {
	selectors map[[4]byte]int
	strategy  strategy.Strategy
}

// run 执行分支直到停止、出错、耗尽gas或需要分叉
func (e *extractor) run(branch *strategy.Branch) {
	vm := branch.VM
	for !vm.Stopped() {
		ret, err := vm.Step()
		if err != nil {
			log.Debugf("selectors: branch stopped: %v", err)
			return
		}
		if !branch.Gas.Charge(ret.Gas) {
			log.Debugf("selectors: branch out of gas at %d", vm.PC())
			return
		}
		to, err := e.analyze(vm, ret)
		if err != nil {
			log.Debugf("selectors: analyze: %v", err)
			return
		}
		if to > 1 {
			e.fork(branch, to)
			return
		}
	}
}

// fork 为桶 1..to-1 创建分支，当前分支以桶0继续
// 先压入当前分支，子分支逆序压入，桶1最先执行
func (e *extractor) fork(branch *strategy.Branch, to uint64) {
	children := make([]*strategy.Branch, 0, to-1)
	for m := to - 1; m >= 1; m-- {
		vm := branch.VM.Fork()
		top, err := vm.Stack.Peek()
		if err != nil {
			return
		}
		top.Data = evm.WordFromUint64(m)
		children = append(children, strategy.NewBranch(vm, branch.Gas.Child(to), branch.Depth+1))
	}
	log.Tracef("selectors: fork %d buckets at %d", to, branch.VM.PC())
	_ = e.strategy.Push(branch)
	_ = e.strategy.Push(children...)
}

// matchFirstTwo 任一操作数带有 kind 标签时返回另一个操作数
func matchFirstTwo(ret *evm.StepResult, kind evm.LabelKind) (*evm.Element, bool) {
	if ret.First == nil || ret.Second == nil {
		return nil, false
	}
	if ret.First.Label.Kind == kind {
		return ret.Second, true
	}
	if ret.Second.Label.Kind == kind {
		return ret.First, true
	}
	return nil, false
}

// analyze 根据单步结果改写标签，返回需要的分叉数
func (e *extractor) analyze(vm *evm.VM, ret *evm.StepResult) (uint64, error) {
	switch ret.Op {
	case opcode.EQ, opcode.XOR, opcode.SUB:
		if other, ok := matchFirstTwo(ret, evm.LabelSignature); ok {
			return 0, e.compare(vm, ret.Op, other)
		}

	case opcode.JUMPI:
		if ret.Second.Label.Kind == evm.LabelSelCmp {
			if to, ok := vm.Target(ret.First); ok {
				e.selectors[ret.Second.Label.Selector] = to
			}
		}

	case opcode.LT, opcode.GT:
		if _, ok := matchFirstTwo(ret, evm.LabelSignature); ok {
			top, err := vm.Stack.Peek()
			if err != nil {
				return 0, err
			}
			top.Data = evm.Word{}
			return 2, nil
		}

	case opcode.MUL:
		if _, ok := matchFirstTwo(ret, evm.LabelSignature); ok {
			return 0, relabel(vm, evm.LabelMulSig)
		}

	case opcode.SHR:
		switch ret.Second.Label.Kind {
		case evm.LabelMulSig:
			return 0, relabel(vm, evm.LabelMulSig)
		case evm.LabelCalldata:
			return 0, e.extractSignature(vm)
		}

	case opcode.DIV:
		if ret.First.Label.Kind == evm.LabelCalldata {
			return 0, e.extractSignature(vm)
		}

	case opcode.MOD:
		if ret.First.Label.Is(evm.LabelMulSig, evm.LabelSignature) {
			return buckets(vm, ret.Op, ret.Second)
		}

	case opcode.AND:
		if other, ok := matchFirstTwo(ret, evm.LabelSignature); ok {
			if other.Uint().Eq(maskSelector) {
				return 0, relabel(vm, evm.LabelSignature)
			}
			return buckets(vm, ret.Op, other)
		}
		if _, ok := matchFirstTwo(ret, evm.LabelCalldata); ok {
			return 0, relabel(vm, evm.LabelCalldata)
		}

	case opcode.ISZERO:
		switch ret.First.Label.Kind {
		case evm.LabelSelCmp:
			top, err := vm.Stack.Peek()
			if err != nil {
				return 0, err
			}
			top.Label = evm.SelCmpLabel(ret.First.Label.Selector)
		case evm.LabelSignature:
			top, err := vm.Stack.Peek()
			if err != nil {
				return 0, err
			}
			top.Label = evm.SelCmpLabel([4]byte{})
		}

	case opcode.MLOAD:
		for _, l := range ret.MemLabels {
			if l.Kind == evm.LabelCalldata {
				return 0, e.extractSignatureOr(vm, evm.LabelCalldata)
			}
		}

	case opcode.GAS:
		vm.Stop()
	}
	return 0, nil
}

// compare 选择器比较: 结果改为"不匹配"，由后续 JUMPI 记录入口
func (e *extractor) compare(vm *evm.VM, op opcode.OpCode, other *evm.Element) error {
	selector := other.Data.Low4()
	top, err := vm.Stack.Peek()
	if err != nil {
		return err
	}
	top.Data = evm.Word{}
	if op != opcode.EQ {
		top.Data = evm.WordFromUint64(1)
	}
	top.Label = evm.SelCmpLabel(selector)

	// Vyper 稠密/稀疏分发: 下一个栈元素携带跳转目标
	if op == opcode.EQ && vm.Stack.Size() >= 2 {
		fh, err := vm.Stack.Back(1)
		if err != nil {
			return err
		}
		target := int(fh.Data[29])<<8 | int(fh.Data[30])
		code := vm.Code()
		if target < len(code) && opcode.OpCode(code[target]) == opcode.JUMPDEST {
			e.selectors[selector] = target
		}
	}
	return nil
}

// buckets MOD n 或 AND (n-1) 形式的桶分发
func buckets(vm *evm.VM, op opcode.OpCode, ot *evm.Element) (uint64, error) {
	v := ot.Uint()
	if !v.LtUint64(255) {
		return 0, nil
	}
	to := v.Uint64()
	if op == opcode.AND {
		to++
	}
	top, err := vm.Stack.Peek()
	if err != nil {
		return 0, err
	}
	top.Data = evm.Word{}
	return to, nil
}

func relabel(vm *evm.VM, kind evm.LabelKind) error {
	top, err := vm.Stack.Peek()
	if err != nil {
		return err
	}
	top.Label = evm.KindLabel(kind)
	return nil
}

func (e *extractor) extractSignature(vm *evm.VM) error {
	return e.extractSignatureOr(vm, evm.LabelNone)
}

// extractSignatureOr 低4字节等于哨兵时标记为 Signature，否则标记为 fallback
func (e *extractor) extractSignatureOr(vm *evm.VM, fallback evm.LabelKind) error {
	top, err := vm.Stack.Peek()
	if err != nil {
		return err
	}
	if top.Data.Low4() == sentinel {
		top.Label = evm.KindLabel(evm.LabelSignature)
	} else if fallback != evm.LabelNone {
		top.Label = evm.KindLabel(fallback)
	}
	return nil
}
