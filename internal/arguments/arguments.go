// Package arguments 推断函数参数类型
package arguments

import (
	"sigscan/internal/evm"
	"sigscan/internal/opcode"
	"sigscan/internal/strategy"

	"github.com/holiman/uint256"
	log "github.com/sirupsen/logrus"
)

const (
	DefaultGas = 50000

	calldataSize = 131072
	// 末尾 1024 字节不视为参数，避开 trustedForwarder 追加的地址
	calldataTail = 1024
)

var (
	val1    = evm.WordFromUint64(1)
	val31   = evm.WordFromUint64(31)
	maxWord = evm.WordFromUint(new(uint256.Int).SetAllOne())
	val32   = uint256.NewInt(32)
	val3200 = uint256.NewInt(3200)
)

// Extract 返回选择器对应函数的参数类型列表
func Extract(code []byte, selector [4]byte, gasLimit uint64) []Type {
	if gasLimit == 0 {
		gasLimit = DefaultGas
	}
	data := make([]byte, evm.WordSize)
	copy(data, selector[:])
	vm := evm.New(code, evm.NewCalldata(data, calldataSize, evm.KindLabel(evm.LabelCalldata)))

	var (
		args   = newResult()
		gas    = strategy.NewMeter(gasLimit)
		inside = false
	)
	for !vm.Stopped() {
		ret, err := vm.Step()
		if err != nil {
			log.Debugf("arguments: %v", err)
			break
		}
		if err := gas.Spend(ret.Gas); err != nil {
			log.Debugf("arguments: %v at %d", err, vm.PC())
			break
		}
		if !inside {
			inside = evm.SelectorMatched(vm, ret, selector)
			continue
		}
		if err := analyze(vm, args, ret); err != nil {
			log.Debugf("arguments: analyze: %v", err)
			break
		}
	}
	return args.types()
}

// Signature 逗号连接的参数类型
func Signature(code []byte, selector [4]byte, gasLimit uint64) string {
	return JoinTypes(Extract(code, selector, gasLimit))
}

// argOf 返回元素上的 Arg 标签
func argOf(e *evm.Element) (*evm.ArgVal, bool) {
	if e == nil || e.Label.Kind != evm.LabelArg {
		return nil, false
	}
	return e.Label.Arg, true
}

// argPair 返回第一个满足 match 的 Arg 操作数及另一个操作数
func argPair(ret *evm.StepResult, match func(v *evm.ArgVal) bool) (*evm.ArgVal, *evm.Element, *evm.Element, bool) {
	if v, ok := argOf(ret.First); ok && match(v) {
		return v, ret.First, ret.Second, true
	}
	if v, ok := argOf(ret.Second); ok && match(v) {
		return v, ret.Second, ret.First, true
	}
	return nil, nil, nil, false
}

func anyArg(*evm.ArgVal) bool { return true }

func isHead(v *evm.ArgVal) bool { return v.Offset == 0 && v.AddVal == 0 }

func isPlainHead(v *evm.ArgVal) bool { return isHead(v) && v.AndMask == nil }

func noMask(v *evm.ArgVal) bool { return v.AndMask == nil }

func setTop(vm *evm.VM, fn func(e *evm.Element)) error {
	top, err := vm.Stack.Peek()
	if err != nil {
		return err
	}
	fn(top)
	return nil
}

func analyze(vm *evm.VM, args *result, ret *evm.StepResult) error {
	switch ret.Op {
	case opcode.CALLDATALOAD, opcode.CALLDATACOPY:
		if v, ok := argOf(ret.First); ok {
			return loadNested(vm, args, ret, v)
		}
		return loadRoot(vm, args, ret)

	case opcode.ADD:
		if f, ok := argOf(ret.First); ok {
			if s, ok := argOf(ret.Second); ok {
				return addArgs(vm, args, f, s)
			}
		}
		if v, el, ot, ok := argPair(ret, anyArg); ok {
			return addConst(vm, args, v, el, ot)
		}

	case opcode.MUL, opcode.SHL:
		var (
			v  *evm.ArgVal
			ot *evm.Element
			ok bool
		)
		if ret.Op == opcode.MUL {
			v, _, ot, ok = argPair(ret, isHead)
		} else if v, ok = argOf(ret.Second); ok && isHead(v) {
			ot = ret.First
		} else {
			ok = false
		}
		if ok {
			return multiply(vm, args, ret.Op, v, ot)
		}
		if ret.Op == opcode.MUL {
			markOperands(args, ret)
		}

	case opcode.LT, opcode.GT:
		var (
			v  *evm.ArgVal
			ot *evm.Element
			ok bool
		)
		// 0 < arr.len || arr.len > 0
		if ret.Op == opcode.LT {
			v, ok = argOf(ret.Second)
			ot = ret.First
		} else {
			v, ok = argOf(ret.First)
			ot = ret.Second
		}
		if ok && isPlainHead(v) {
			args.markNotBool(v.Path, 0)
			// 31: storage 中的 string
			if ot.Data.IsZero() || ot.Data == val31 {
				return setTop(vm, func(e *evm.Element) { e.Data = val1 })
			}
			return nil
		}
		markOperands(args, ret)

	case opcode.AND:
		if v, _, ot, ok := argPair(ret, noMask); ok {
			args.markNotBool(v.Path, v.Offset)
			mask := ot.Uint()
			if t, ok := andMaskToType(mask); ok {
				args.setTname(v.Path, v.Offset, t, 5)
				masked := *v
				masked.AndMask = mask
				return setTop(vm, func(e *evm.Element) { e.Label = evm.ArgLabel(masked) })
			}
		}

	case opcode.EQ:
		if v, _, ot, ok := argPair(ret, noMask); ok {
			if s, ok := argOf(ot); ok && s.AndMask != nil {
				if s.Offset == v.Offset && evm.SamePath(s.Path, v.Path) && s.AddVal == v.AddVal {
					if t, ok := andMaskToType(s.AndMask); ok {
						args.setTname(v.Path, v.Offset, t, 20)
					}
				}
			}
		}

	case opcode.ISZERO:
		switch ret.First.Label.Kind {
		case evm.LabelArg:
			v := *ret.First.Label.Arg
			return setTop(vm, func(e *evm.Element) { e.Label = evm.IsZeroResultLabel(v) })
		case evm.LabelIsZeroResult:
			if !divisorCheck(vm) {
				v := ret.First.Label.Arg
				args.setTname(v.Path, v.Offset, Bool, 5)
			}
		}

	case opcode.SIGNEXTEND:
		if v, ok := argOf(ret.Second); ok {
			s0 := ret.First.Uint()
			if s0.Lt(val32) {
				args.setTname(v.Path, v.Offset, Int(int(s0.Uint64()+1)*8), 20)
			}
		}

	case opcode.BYTE:
		if v, ok := argOf(ret.Second); ok {
			args.setTname(v.Path, v.Offset, FixedBytes(32), 4)
		}
	}
	return nil
}

// loadNested 经由动态参数偏移读取，产生下一层的参数
func loadNested(vm *evm.VM, args *result, ret *evm.StepResult, v *evm.ArgVal) error {
	// 偏移上界与顶层参数相同，超出时不产生占位元素
	if v.AddVal < 4 || v.AddVal >= calldataSize-calldataTail || (v.AddVal-4)%32 != 0 {
		return nil
	}
	full := v.FullPath()

	var po uint32
	if v.AddVal != 4 {
		for _, isArr := range args.arrayInPath(v.Path) {
			if isArr {
				po += 32
			}
		}
		if po > v.AddVal-4 {
			po = 0
		}
	}
	newOff := v.AddVal - 4 - po
	args.setInfo(full, infoDynamic, newOff/32)

	var rec *evm.Record
	if ret.Op == opcode.CALLDATACOPY {
		rec = vm.Memory.LastAt(uint32(ret.Second.Uint().Uint64()))
	}

	if newOff == 0 {
		inArr := args.arrayInPath(full)
		if len(inArr) > 0 && inArr[len(inArr)-1] {
			if ret.Op == opcode.CALLDATALOAD {
				if err := setTop(vm, func(e *evm.Element) { e.Data = val1 }); err != nil {
					return err
				}
			} else if rec != nil {
				rec.Data = wordOne()
			}
		}
	}

	label := evm.ArgLabel(evm.ArgVal{Offset: newOff, Path: full})
	if ret.Op == opcode.CALLDATALOAD {
		return setTop(vm, func(e *evm.Element) { e.Label = label })
	}
	if rec != nil {
		args.setTname(v.Path, v.Offset, Bytes, 10)
		rec.Label = label
	}
	return nil
}

// loadRoot 直接按常量偏移读取，产生顶层参数
func loadRoot(vm *evm.VM, args *result, ret *evm.StepResult) error {
	off, ok := ret.First.Data.Uint32()
	if !ok || off < 4 || off >= calldataSize-calldataTail {
		return nil
	}
	args.getOrCreate([]uint32{off - 4})
	label := evm.ArgLabel(evm.ArgVal{Offset: off - 4})
	if ret.Op == opcode.CALLDATALOAD {
		return setTop(vm, func(e *evm.Element) { e.Label = label })
	}
	if rec := vm.Memory.LastAt(uint32(ret.Second.Uint().Uint64())); rec != nil {
		rec.Label = label
	}
	return nil
}

func addArgs(vm *evm.VM, args *result, f, s *evm.ArgVal) error {
	args.markNotBool(f.Path, f.Offset)
	args.markNotBool(s.Path, s.Offset)
	var sum evm.ArgVal
	if len(f.Path) > len(s.Path) {
		sum = evm.ArgVal{Offset: f.Offset, Path: f.Path, AddVal: f.AddVal + s.AddVal, AndMask: f.AndMask}
	} else {
		sum = evm.ArgVal{Offset: s.Offset, Path: s.Path, AddVal: s.AddVal + f.AddVal, AndMask: s.AndMask}
	}
	return setTop(vm, func(e *evm.Element) { e.Label = evm.ArgLabel(sum) })
}

func addConst(vm *evm.VM, args *result, v *evm.ArgVal, el, ot *evm.Element) error {
	args.markNotBool(v.Path, v.Offset)
	// sub(-1) 被编译为 add(0xff..ff)
	if v.Offset == 0 && v.AddVal == 0 && len(v.Path) != 0 && el.Data.IsZero() && ot.Data == maxWord {
		if err := setTop(vm, func(e *evm.Element) { e.Data = evm.Word{} }); err != nil {
			return err
		}
	}
	sum := new(uint256.Int).Add(ot.Uint(), uint256.NewInt(uint64(v.AddVal)))
	if !sum.IsUint64() || sum.Uint64() > 0xffffffff {
		return nil
	}
	added := *v
	added.AddVal = uint32(sum.Uint64())
	return setTop(vm, func(e *evm.Element) { e.Label = evm.ArgLabel(added) })
}

// multiply 长度乘以元素大小: 1 为 bytes, 2 为 string, 32k 为数组
func multiply(vm *evm.VM, args *result, op opcode.OpCode, v *evm.ArgVal, ot *evm.Element) error {
	args.markNotBool(v.Path, 0)
	if o, ok := argOf(ot); ok {
		args.markNotBool(o.Path, o.Offset)
	}
	if len(v.Path) == 0 {
		return nil
	}
	mult := ot.Uint()
	if op == opcode.SHL {
		mult = shiftOne(mult)
	}
	last, rest := v.Path[len(v.Path)-1], v.Path[:len(v.Path)-1]
	switch {
	case mult.IsUint64() && mult.Uint64() == 1:
		args.setTname(rest, last, Bytes, 10)
	case mult.IsUint64() && mult.Uint64() == 2:
		// SSTORE 中的 slen*2+1
		args.setTname(rest, last, String, 20)
	case mult.Cmp(val32) >= 0 && mult.Lt(val3200) && mult.Uint64()%32 == 0:
		path := v.Path
		args.setInfo(path, infoArray, uint32(mult.Uint64()/32))
		vm.Stack.Walk(func(e *evm.Element) {
			if isHeadOf(e.Label, path) {
				e.Data = val1
			}
		})
		vm.Memory.Walk(func(r *evm.Record) {
			if isHeadOf(r.Label, path) {
				r.Data = wordOne()
			}
		})
		// 模拟长度为1
		data := ot.Data
		return setTop(vm, func(e *evm.Element) { e.Data = data })
	}
	return nil
}

func wordOne() []byte {
	w := val1
	return w[:]
}

func isHeadOf(l evm.Label, path []uint32) bool {
	return l.Kind == evm.LabelArg && isHead(l.Arg) && evm.SamePath(l.Arg.Path, path)
}

func shiftOne(n *uint256.Int) *uint256.Int {
	r := new(uint256.Int)
	if n.LtUint64(256) {
		r.Lsh(uint256.NewInt(1), uint(n.Uint64()))
	}
	return r
}

func markOperands(args *result, ret *evm.StepResult) {
	if v, _, _, ok := argPair(ret, anyArg); ok {
		args.markNotBool(v.Path, v.Offset)
	}
}

// divisorCheck ISZERO ISZERO PUSHn JUMPI .. JUMPDEST DIV 是除数非零检查，不是 bool
func divisorCheck(vm *evm.VM) bool {
	code, pc := vm.Code(), vm.PC()
	if pc >= len(code) {
		return false
	}
	op := opcode.OpCode(code[pc])
	if op < opcode.PUSH1 || op > opcode.PUSH4 {
		return false
	}
	n := int(op - opcode.PUSH0)
	if pc+n+1 >= len(code) || opcode.OpCode(code[pc+n+1]) != opcode.JUMPI {
		return false
	}
	var dest int
	for _, b := range code[pc+1 : pc+1+n] {
		dest = dest<<8 | int(b)
	}
	return dest+1 < len(code) && opcode.OpCode(code[dest]) == opcode.JUMPDEST && opcode.OpCode(code[dest+1]) == opcode.DIV
}

// andMaskToType 0x00ff.. 为 uintN/address，0xff..00 为 bytesN
func andMaskToType(mask *uint256.Int) (Type, bool) {
	if mask.IsZero() {
		return Type{}, false
	}
	if lowRun(mask) {
		bl := mask.BitLen()
		if bl%8 == 0 {
			if bl == 160 {
				return Address, true
			}
			return Uint(bl), true
		}
		return Type{}, false
	}
	b := mask.Bytes32()
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
	rev := new(uint256.Int).SetBytes(b[:])
	if lowRun(rev) {
		bl := rev.BitLen()
		if bl%8 == 0 {
			return FixedBytes(bl / 8), true
		}
	}
	return Type{}, false
}

// lowRun mask 为 0..01..1 形式
func lowRun(mask *uint256.Int) bool {
	next := new(uint256.Int).AddUint64(mask, 1)
	return next.And(next, mask).IsZero()
}
