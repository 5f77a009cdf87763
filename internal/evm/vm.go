package evm

import (
	"fmt"
	"strings"

	"sigscan/internal/opcode"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"
)

const (
	maxCodeCopy       = 32768
	maxReturnDataCopy = 1024
	returnDataSize    = 1024
	gasPlaceholder    = 1000000
)

// StepResult 单步执行结果
// First/Second 回显被消费的操作数，分析器据此匹配模式
type StepResult struct {
	Op        opcode.OpCode
	Gas       uint64
	First     *Element
	Second    *Element
	MemLabels []Label // MLOAD 读取时参与合成的标签
}

// VM 字节级解释器
// code 与 calldata 在 Fork 之间共享，只读
type VM struct {
	code      []byte
	jumpdests []bool
	pc        int
	stopped   bool
	Stack     *Stack
	Memory    *Memory
	Calldata  *Calldata
}

func New(code []byte, calldata *Calldata) *VM {
	return &VM{
		code:      code,
		jumpdests: analyzeJumpdests(code),
		stopped:   len(code) == 0,
		Stack:     NewStack(),
		Memory:    NewMemory(),
		Calldata:  calldata,
	}
}

func (vm *VM) Code() []byte {
	return vm.code
}

func (vm *VM) PC() int {
	return vm.pc
}

// SetPC 用于分支探索时切换到另一侧，越界即停止
func (vm *VM) SetPC(pc int) {
	vm.pc = pc
	vm.stopped = pc < 0 || pc >= len(vm.code)
}

// Target 把 JUMPI 回显的 pc 转成代码范围内的偏移
func (vm *VM) Target(e *Element) (int, bool) {
	if e == nil {
		return 0, false
	}
	v := e.Uint()
	if !v.IsUint64() || v.Uint64() >= uint64(len(vm.code)) {
		return 0, false
	}
	return int(v.Uint64()), true
}

func (vm *VM) Stopped() bool {
	return vm.stopped
}

func (vm *VM) Stop() {
	vm.stopped = true
}

// Fork 复制栈和内存，代码和calldata共享
func (vm *VM) Fork() *VM {
	return &VM{
		code:      vm.code,
		jumpdests: vm.jumpdests,
		pc:        vm.pc,
		stopped:   vm.stopped,
		Stack:     vm.Stack.Clone(),
		Memory:    vm.Memory.Clone(),
		Calldata:  vm.Calldata,
	}
}

// Step 执行 pc 处的一条指令
func (vm *VM) Step() (*StepResult, error) {
	if vm.stopped || vm.pc < 0 || vm.pc >= len(vm.code) {
		vm.stopped = true
		return nil, errors.Wrap(ErrUnsupportedOp, "vm stopped")
	}
	op := opcode.OpCode(vm.code[vm.pc])
	ret, err := vm.exec(op)
	if err != nil {
		return nil, errors.Wrapf(err, "%s at %d", op, vm.pc)
	}
	if op != opcode.JUMP && op != opcode.JUMPI {
		vm.pc++
	}
	if vm.pc >= len(vm.code) {
		vm.stopped = true
	}
	return ret, nil
}

func newResult(op opcode.OpCode) *StepResult {
	return &StepResult{
		Op:  op,
		Gas: opcode.GetOPCodeInfo(byte(op)).Gas,
	}
}

func (vm *VM) exec(op opcode.OpCode) (*StepResult, error) {
	switch {
	case opcode.IsPush(op):
		return vm.opPush(op)
	case op >= opcode.DUP1 && op <= opcode.DUP16:
		return newResult(op), vm.Stack.Dup(int(op-opcode.DUP1) + 1)
	case op >= opcode.SWAP1 && op <= opcode.SWAP16:
		return newResult(op), vm.Stack.Swap(int(op-opcode.SWAP1) + 1)
	case op >= opcode.LOG0 && op <= opcode.LOG4:
		return vm.opPopN(op, int(op-opcode.LOG0)+2)
	}

	switch op {
	case opcode.JUMP, opcode.JUMPI:
		return vm.opJump(op)
	case opcode.JUMPDEST:
		return newResult(op), nil

	case opcode.ADD, opcode.MUL, opcode.SUB, opcode.DIV, opcode.SDIV, opcode.MOD, opcode.SMOD,
		opcode.EXP, opcode.SIGNEXTEND, opcode.LT, opcode.GT, opcode.SLT, opcode.SGT, opcode.EQ,
		opcode.AND, opcode.OR, opcode.XOR, opcode.BYTE, opcode.SHL, opcode.SHR, opcode.SAR:
		return vm.opBinary(op)
	case opcode.ADDMOD, opcode.MULMOD:
		return vm.opTernary(op)
	case opcode.ISZERO:
		return vm.opIsZero(op)
	case opcode.NOT:
		return vm.opNot(op)

	case opcode.KECCAK256:
		return vm.opReplace(op, 2, word1)
	case opcode.ADDRESS, opcode.ORIGIN, opcode.CALLER, opcode.COINBASE, opcode.CALLVALUE,
		opcode.TIMESTAMP, opcode.NUMBER, opcode.PREVRANDAO, opcode.GASLIMIT, opcode.CHAINID,
		opcode.BASEFEE, opcode.BLOBBASEFEE, opcode.GASPRICE, opcode.SELFBALANCE:
		return vm.opReplace(op, 0, word0)
	case opcode.BALANCE, opcode.BLOBHASH, opcode.TLOAD:
		return vm.opReplace(op, 1, word0)
	case opcode.EXTCODESIZE, opcode.EXTCODEHASH, opcode.BLOCKHASH:
		return vm.opReplace(op, 1, word1)
	case opcode.GAS:
		return vm.opReplace(op, 0, WordFromUint64(gasPlaceholder))
	case opcode.RETURNDATASIZE:
		return vm.opReplace(op, 0, WordFromUint64(returnDataSize))
	case opcode.CODESIZE:
		return vm.opReplace(op, 0, WordFromUint64(uint64(len(vm.code))))
	case opcode.PC:
		return vm.opReplace(op, 0, WordFromUint64(uint64(vm.pc)))
	case opcode.MSIZE:
		return vm.opReplace(op, 0, WordFromUint64(vm.Memory.Size()))
	case opcode.CALLDATASIZE:
		return vm.opReplace(op, 0, WordFromUint64(vm.Calldata.Size()))
	case opcode.CREATE:
		return vm.opReplace(op, 3, word0)
	case opcode.CREATE2:
		return vm.opReplace(op, 4, word0)

	case opcode.CALLDATALOAD:
		return vm.opCalldataLoad(op)
	case opcode.CALLDATACOPY:
		return vm.opCalldataCopy(op)
	case opcode.CODECOPY:
		return vm.opCodeCopy(op)
	case opcode.RETURNDATACOPY:
		return vm.opReturnDataCopy(op)
	case opcode.EXTCODECOPY:
		return vm.opPopN(op, 4)

	case opcode.POP:
		return vm.opPopN(op, 1)
	case opcode.MLOAD:
		return vm.opMload(op)
	case opcode.MSTORE, opcode.MSTORE8:
		return vm.opMstore(op)
	case opcode.SLOAD:
		return vm.opSload(op)
	case opcode.SSTORE, opcode.TSTORE:
		return vm.opSstore(op)

	case opcode.CALL, opcode.CALLCODE, opcode.DELEGATECALL, opcode.STATICCALL:
		return vm.opCall(op)
	case opcode.RETURN, opcode.REVERT:
		return vm.opReturn(op)
	case opcode.STOP, opcode.SELFDESTRUCT:
		vm.stopped = true
		return newResult(op), nil
	}
	return nil, ErrUnsupportedOp
}

// 指令: PUSH0 ~ PUSH32
// gas: 2 / 3
func (vm *VM) opPush(op opcode.OpCode) (*StepResult, error) {
	n := int(op - opcode.PUSH0)
	if vm.pc+1+n > len(vm.code) {
		return nil, errors.Wrap(ErrUnsupportedOp, "truncated push")
	}
	var w Word
	copy(w[WordSize-n:], vm.code[vm.pc+1:vm.pc+1+n])
	if err := vm.Stack.PushWord(w); err != nil {
		return nil, err
	}
	vm.pc += n
	return newResult(op), nil
}

// 指令: JUMP JUMPI
// gas: 8 / 10
// JUMPI 的 First 为未选择的一侧的 pc，Second 为条件
func (vm *VM) opJump(op opcode.OpCode) (*StepResult, error) {
	dest, err := vm.Stack.PopUint()
	if err != nil {
		return nil, err
	}
	ret := newResult(op)
	if op == opcode.JUMPI {
		cond, err := vm.Stack.Pop()
		if err != nil {
			return nil, err
		}
		ret.Second = &cond
		if cond.Data.IsZero() {
			other := NewElement(dest)
			ret.First = &other
			vm.pc++
			return ret, nil
		}
		other := Element{Data: WordFromUint64(uint64(vm.pc + 1))}
		ret.First = &other
	}
	if !dest.IsUint64() || dest.Uint64() >= uint64(len(vm.code)) || !vm.jumpdests[dest.Uint64()] {
		return nil, errors.Wrapf(ErrInvalidJump, "dest %s", dest.Hex())
	}
	vm.pc = int(dest.Uint64())
	return ret, nil
}

// 指令: 二元运算
// gas: 3 / 5, EXP 按指数字节数估算
func (vm *VM) opBinary(op opcode.OpCode) (*StepResult, error) {
	raw0, err := vm.Stack.Pop()
	if err != nil {
		return nil, err
	}
	raw1, err := vm.Stack.Pop()
	if err != nil {
		return nil, err
	}
	var (
		ret = newResult(op)
		s0  = raw0.Uint()
		s1  = raw1.Uint()
		res = new(uint256.Int)
	)
	switch op {
	case opcode.ADD:
		res.Add(s0, s1)
	case opcode.MUL:
		res.Mul(s0, s1)
	case opcode.SUB:
		res.Sub(s0, s1)
	case opcode.DIV:
		res.Div(s0, s1)
	case opcode.SDIV:
		res.SDiv(s0, s1)
	case opcode.MOD:
		res.Mod(s0, s1)
	case opcode.SMOD:
		res.SMod(s0, s1)
	case opcode.EXP:
		ret.Gas = ret.Gas * uint64(1+s1.BitLen()/8)
		res = ModExp(s0, s1)
	case opcode.SIGNEXTEND:
		res.ExtendSign(s1, s0)
	case opcode.LT:
		setBool(res, s0.Lt(s1))
	case opcode.GT:
		setBool(res, s0.Gt(s1))
	case opcode.SLT:
		setBool(res, s0.Slt(s1))
	case opcode.SGT:
		setBool(res, s0.Sgt(s1))
	case opcode.EQ:
		setBool(res, s0.Eq(s1))
	case opcode.AND:
		res.And(s0, s1)
	case opcode.OR:
		res.Or(s0, s1)
	case opcode.XOR:
		res.Xor(s0, s1)
	case opcode.BYTE:
		if s0.LtUint64(WordSize) {
			res.SetUint64(uint64(raw1.Data[s0.Uint64()]))
		}
	case opcode.SHL:
		if s0.LtUint64(256) {
			res.Lsh(s1, uint(s0.Uint64()))
		}
	case opcode.SHR:
		if s0.LtUint64(256) {
			res.Rsh(s1, uint(s0.Uint64()))
		}
	case opcode.SAR:
		if s0.LtUint64(256) {
			res.SRsh(s1, uint(s0.Uint64()))
		} else if s1.Sign() < 0 {
			res.SetAllOne()
		}
	}
	if err := vm.Stack.PushUint(res); err != nil {
		return nil, err
	}
	ret.First = &raw0
	ret.Second = &raw1
	return ret, nil
}

func setBool(z *uint256.Int, b bool) {
	if b {
		z.SetOne()
	} else {
		z.Clear()
	}
}

// 指令: ADDMOD MULMOD
// gas: 8
func (vm *VM) opTernary(op opcode.OpCode) (*StepResult, error) {
	raw0, err := vm.Stack.Pop()
	if err != nil {
		return nil, err
	}
	raw1, err := vm.Stack.Pop()
	if err != nil {
		return nil, err
	}
	m, err := vm.Stack.PopUint()
	if err != nil {
		return nil, err
	}
	res := new(uint256.Int)
	if op == opcode.ADDMOD {
		res.AddMod(raw0.Uint(), raw1.Uint(), m)
	} else {
		res.MulMod(raw0.Uint(), raw1.Uint(), m)
	}
	ret := newResult(op)
	ret.First = &raw0
	ret.Second = &raw1
	return ret, vm.Stack.PushUint(res)
}

// 指令: ISZERO
// gas: 3
func (vm *VM) opIsZero(op opcode.OpCode) (*StepResult, error) {
	raw0, err := vm.Stack.Pop()
	if err != nil {
		return nil, err
	}
	res := word0
	if raw0.Data.IsZero() {
		res = word1
	}
	ret := newResult(op)
	ret.First = &raw0
	return ret, vm.Stack.PushWord(res)
}

// 指令: NOT
// gas: 3
func (vm *VM) opNot(op opcode.OpCode) (*StepResult, error) {
	v, err := vm.Stack.PopUint()
	if err != nil {
		return nil, err
	}
	return newResult(op), vm.Stack.PushUint(v.Not(v))
}

// opReplace 弹出 n 个元素并压入固定的占位值
// 环境类指令、外部代码查询、KECCAK256、CREATE 等
func (vm *VM) opReplace(op opcode.OpCode, n int, value Word) (*StepResult, error) {
	for i := 0; i < n; i++ {
		if _, err := vm.Stack.Pop(); err != nil {
			return nil, err
		}
	}
	return newResult(op), vm.Stack.PushWord(value)
}

// 指令: POP LOGn EXTCODECOPY
func (vm *VM) opPopN(op opcode.OpCode, n int) (*StepResult, error) {
	for i := 0; i < n; i++ {
		if _, err := vm.Stack.Pop(); err != nil {
			return nil, err
		}
	}
	return newResult(op), nil
}

// 指令: CALLDATALOAD
// gas: 3
// First 为读取偏移
func (vm *VM) opCalldataLoad(op opcode.OpCode) (*StepResult, error) {
	raw0, err := vm.Stack.Pop()
	if err != nil {
		return nil, err
	}
	ret := newResult(op)
	ret.First = &raw0
	return ret, vm.Stack.Push(vm.Calldata.Load32(raw0.Uint()))
}

// 指令: CALLDATACOPY
// gas: 4
// First 为calldata偏移，Second 为内存偏移
func (vm *VM) opCalldataCopy(op opcode.OpCode) (*StepResult, error) {
	rawMem, err := vm.Stack.Pop()
	if err != nil {
		return nil, err
	}
	memOff, err := toUint32(rawMem.Uint())
	if err != nil {
		return nil, err
	}
	rawSrc, err := vm.Stack.Pop()
	if err != nil {
		return nil, err
	}
	size, err := vm.Stack.PopUint()
	if err != nil {
		return nil, err
	}
	if !size.IsUint64() {
		return nil, errors.Wrap(ErrUnsupportedOp, "calldatacopy size")
	}
	data, label, err := vm.Calldata.Load(rawSrc.Uint(), size.Uint64())
	if err != nil {
		return nil, err
	}
	vm.Memory.Store(memOff, data, label)
	ret := newResult(op)
	ret.First = &rawSrc
	ret.Second = &rawMem
	return ret, nil
}

// 指令: CODECOPY
// gas: 3
func (vm *VM) opCodeCopy(op opcode.OpCode) (*StepResult, error) {
	memOff, srcOff, size, err := vm.popCopyArgs(maxCodeCopy)
	if err != nil {
		return nil, err
	}
	data := make([]byte, size)
	if srcOff.IsUint64() && srcOff.Uint64() < uint64(len(vm.code)) {
		copy(data, vm.code[srcOff.Uint64():])
	}
	vm.Memory.Store(memOff, data, NoLabel)
	return newResult(op), nil
}

// 指令: RETURNDATACOPY
// gas: 3
// 外部调用不执行，返回数据视为全0
func (vm *VM) opReturnDataCopy(op opcode.OpCode) (*StepResult, error) {
	memOff, _, size, err := vm.popCopyArgs(maxReturnDataCopy)
	if err != nil {
		return nil, err
	}
	vm.Memory.Store(memOff, make([]byte, size), NoLabel)
	return newResult(op), nil
}

func (vm *VM) popCopyArgs(limit uint64) (uint32, *uint256.Int, uint64, error) {
	dst, err := vm.Stack.PopUint()
	if err != nil {
		return 0, nil, 0, err
	}
	memOff, err := toUint32(dst)
	if err != nil {
		return 0, nil, 0, err
	}
	src, err := vm.Stack.PopUint()
	if err != nil {
		return 0, nil, 0, err
	}
	size, err := vm.Stack.PopUint()
	if err != nil {
		return 0, nil, 0, err
	}
	if !size.IsUint64() || size.Uint64() > limit {
		return 0, nil, 0, errors.Wrapf(ErrUnsupportedOp, "copy size %s", size.Hex())
	}
	return memOff, src, size.Uint64(), nil
}

// 指令: MLOAD
// gas: 4
// 结果不带标签，参与合成的标签放在 MemLabels
func (vm *VM) opMload(op opcode.OpCode) (*StepResult, error) {
	off, err := vm.Stack.PopUint()
	if err != nil {
		return nil, err
	}
	off32, err := toUint32(off)
	if err != nil {
		return nil, err
	}
	w, used := vm.Memory.Load(off32)
	ret := newResult(op)
	ret.MemLabels = used
	return ret, vm.Stack.PushWord(w)
}

// 指令: MSTORE MSTORE8
// gas: 3
func (vm *VM) opMstore(op opcode.OpCode) (*StepResult, error) {
	off, err := vm.Stack.PopUint()
	if err != nil {
		return nil, err
	}
	off32, err := toUint32(off)
	if err != nil {
		return nil, err
	}
	val, err := vm.Stack.Pop()
	if err != nil {
		return nil, err
	}
	if op == opcode.MSTORE8 {
		vm.Memory.Store(off32, []byte{val.Data[WordSize-1]}, val.Label)
	} else {
		data := make([]byte, WordSize)
		copy(data, val.Data[:])
		vm.Memory.Store(off32, data, val.Label)
	}
	return newResult(op), nil
}

// 指令: SLOAD
// gas: 100
// 存储视为全0，First 为槽位
func (vm *VM) opSload(op opcode.OpCode) (*StepResult, error) {
	slot, err := vm.Stack.Pop()
	if err != nil {
		return nil, err
	}
	ret := newResult(op)
	ret.First = &slot
	return ret, vm.Stack.PushWord(word0)
}

// 指令: SSTORE TSTORE
// gas: 100
func (vm *VM) opSstore(op opcode.OpCode) (*StepResult, error) {
	slot, err := vm.Stack.Pop()
	if err != nil {
		return nil, err
	}
	val, err := vm.Stack.Pop()
	if err != nil {
		return nil, err
	}
	ret := newResult(op)
	ret.First = &slot
	ret.Second = &val
	return ret, nil
}

// 指令: CALL CALLCODE DELEGATECALL STATICCALL
// gas: 100
// 不执行子调用，压入0表示调用失败
func (vm *VM) opCall(op opcode.OpCode) (*StepResult, error) {
	n := 6
	if op == opcode.CALL || op == opcode.CALLCODE {
		n = 7
	}
	args := make([]Element, n)
	for i := 0; i < n; i++ {
		e, err := vm.Stack.Pop()
		if err != nil {
			return nil, err
		}
		args[i] = e
	}
	ret := newResult(op)
	ret.First = &args[1]
	if n == 7 {
		ret.Second = &args[2]
	}
	return ret, vm.Stack.PushWord(word0)
}

// 指令: RETURN REVERT
// gas: 5
// First 为内存偏移，Second 为长度
func (vm *VM) opReturn(op opcode.OpCode) (*StepResult, error) {
	vm.stopped = true
	offset, err := vm.Stack.Pop()
	if err != nil {
		return nil, err
	}
	size, err := vm.Stack.Pop()
	if err != nil {
		return nil, err
	}
	ret := newResult(op)
	ret.First = &offset
	ret.Second = &size
	return ret, nil
}

// analyzeJumpdests 标记合法的JUMPDEST，跳过PUSH参数中的0x5b
func analyzeJumpdests(code []byte) []bool {
	dests := make([]bool, len(code))
	for pc := 0; pc < len(code); {
		op := opcode.OpCode(code[pc])
		if op == opcode.JUMPDEST {
			dests[pc] = true
		}
		pc += opcode.GetOPCodeInfo(code[pc]).Size
	}
	return dests
}

func toUint32(v *uint256.Int) (uint32, error) {
	if !v.IsUint64() || v.Uint64() > 0xffffffff {
		return 0, errors.Wrapf(ErrUnsupportedOp, "offset %s", v.Hex())
	}
	return uint32(v.Uint64()), nil
}

func (vm *VM) String() string {
	var builder strings.Builder
	name := ""
	if !vm.stopped {
		name = opcode.GetOPCodeInfo(vm.code[vm.pc]).Name.String()
	}
	builder.WriteString(fmt.Sprintf("Vm:\n .pc = 0x%x | %s\n .stack =", vm.pc, name))
	vm.Stack.Walk(func(e *Element) {
		builder.WriteString(" ")
		builder.WriteString(e.String())
	})
	builder.WriteString("\n .memory = ")
	builder.WriteString(vm.Memory.String())
	return builder.String()
}
