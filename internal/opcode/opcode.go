package opcode

import (
	"fmt"

	"github.com/ethereum/go-ethereum/params"
)

// OpCode EVM操作码
// https://ethereum.org/en/developers/docs/evm/opcodes
type OpCode byte

// Operation 操作码助记符
type Operation string

func (op Operation) String() string {
	return string(op)
}

func (op OpCode) String() string {
	return GetOPCodeInfo(byte(op)).Name.String()
}

const (
	STOP           OpCode = 0x00
	ADD            OpCode = 0x01
	MUL            OpCode = 0x02
	SUB            OpCode = 0x03
	DIV            OpCode = 0x04
	SDIV           OpCode = 0x05
	MOD            OpCode = 0x06
	SMOD           OpCode = 0x07
	ADDMOD         OpCode = 0x08
	MULMOD         OpCode = 0x09
	EXP            OpCode = 0x0A
	SIGNEXTEND     OpCode = 0x0B
	LT             OpCode = 0x10
	GT             OpCode = 0x11
	SLT            OpCode = 0x12
	SGT            OpCode = 0x13
	EQ             OpCode = 0x14
	ISZERO         OpCode = 0x15
	AND            OpCode = 0x16
	OR             OpCode = 0x17
	XOR            OpCode = 0x18
	NOT            OpCode = 0x19
	BYTE           OpCode = 0x1A
	SHL            OpCode = 0x1B
	SHR            OpCode = 0x1C
	SAR            OpCode = 0x1D
	KECCAK256      OpCode = 0x20
	ADDRESS        OpCode = 0x30
	BALANCE        OpCode = 0x31
	ORIGIN         OpCode = 0x32
	CALLER         OpCode = 0x33
	CALLVALUE      OpCode = 0x34
	CALLDATALOAD   OpCode = 0x35
	CALLDATASIZE   OpCode = 0x36
	CALLDATACOPY   OpCode = 0x37
	CODESIZE       OpCode = 0x38
	CODECOPY       OpCode = 0x39
	GASPRICE       OpCode = 0x3A
	EXTCODESIZE    OpCode = 0x3B
	EXTCODECOPY    OpCode = 0x3C
	RETURNDATASIZE OpCode = 0x3D
	RETURNDATACOPY OpCode = 0x3E
	EXTCODEHASH    OpCode = 0x3F
	BLOCKHASH      OpCode = 0x40
	COINBASE       OpCode = 0x41
	TIMESTAMP      OpCode = 0x42
	NUMBER         OpCode = 0x43
	PREVRANDAO     OpCode = 0x44
	GASLIMIT       OpCode = 0x45
	CHAINID        OpCode = 0x46
	SELFBALANCE    OpCode = 0x47
	BASEFEE        OpCode = 0x48
	BLOBHASH       OpCode = 0x49
	BLOBBASEFEE    OpCode = 0x4A
	POP            OpCode = 0x50
	MLOAD          OpCode = 0x51
	MSTORE         OpCode = 0x52
	MSTORE8        OpCode = 0x53
	SLOAD          OpCode = 0x54
	SSTORE         OpCode = 0x55
	JUMP           OpCode = 0x56
	JUMPI          OpCode = 0x57
	PC             OpCode = 0x58
	MSIZE          OpCode = 0x59
	GAS            OpCode = 0x5A
	JUMPDEST       OpCode = 0x5B
	TLOAD          OpCode = 0x5C
	TSTORE         OpCode = 0x5D
	MCOPY          OpCode = 0x5E
	PUSH0          OpCode = 0x5F
	PUSH1          OpCode = 0x60
	PUSH4          OpCode = 0x63
	PUSH32         OpCode = 0x7F
	DUP1           OpCode = 0x80
	DUP16          OpCode = 0x8F
	SWAP1          OpCode = 0x90
	SWAP16         OpCode = 0x9F
	LOG0           OpCode = 0xA0
	LOG4           OpCode = 0xA4
	CREATE         OpCode = 0xF0
	CALL           OpCode = 0xF1
	CALLCODE       OpCode = 0xF2
	RETURN         OpCode = 0xF3
	DELEGATECALL   OpCode = 0xF4
	CREATE2        OpCode = 0xF5
	STATICCALL     OpCode = 0xFA
	REVERT         OpCode = 0xFD
	INVALID        OpCode = 0xFE
	SELFDESTRUCT   OpCode = 0xFF
	// PUSH{1~32}
	// DUP{1~16}
	// SWAP{1~16}
	// LOG{0~4}
)

// OPCodeInfo 操作码静态信息
// Gas 为分析用的近似开销，不是真实的链上计费
type OPCodeInfo struct {
	Name             Operation
	OPCode           OpCode
	Size             int // 指令长度，PUSHn 为 1+n
	Gas              uint64
	RequiredElements int // 出栈元素个数
}

var opCodeInfos = map[OpCode]OPCodeInfo{
	STOP:           {Name: "STOP", Gas: 5},
	ADD:            {Name: "ADD", Gas: 3, RequiredElements: 2},
	MUL:            {Name: "MUL", Gas: 5, RequiredElements: 2},
	SUB:            {Name: "SUB", Gas: 3, RequiredElements: 2},
	DIV:            {Name: "DIV", Gas: 5, RequiredElements: 2},
	SDIV:           {Name: "SDIV", Gas: 5, RequiredElements: 2},
	MOD:            {Name: "MOD", Gas: 5, RequiredElements: 2},
	SMOD:           {Name: "SMOD", Gas: 5, RequiredElements: 2},
	ADDMOD:         {Name: "ADDMOD", Gas: 8, RequiredElements: 3},
	MULMOD:         {Name: "MULMOD", Gas: 8, RequiredElements: 3},
	EXP:            {Name: "EXP", Gas: params.ExpByteEIP158, RequiredElements: 2},
	SIGNEXTEND:     {Name: "SIGNEXTEND", Gas: 5, RequiredElements: 2},
	LT:             {Name: "LT", Gas: 3, RequiredElements: 2},
	GT:             {Name: "GT", Gas: 3, RequiredElements: 2},
	SLT:            {Name: "SLT", Gas: 3, RequiredElements: 2},
	SGT:            {Name: "SGT", Gas: 3, RequiredElements: 2},
	EQ:             {Name: "EQ", Gas: 3, RequiredElements: 2},
	ISZERO:         {Name: "ISZERO", Gas: 3, RequiredElements: 1},
	AND:            {Name: "AND", Gas: 3, RequiredElements: 2},
	OR:             {Name: "OR", Gas: 3, RequiredElements: 2},
	XOR:            {Name: "XOR", Gas: 3, RequiredElements: 2},
	NOT:            {Name: "NOT", Gas: 3, RequiredElements: 1},
	BYTE:           {Name: "BYTE", Gas: 3, RequiredElements: 2},
	SHL:            {Name: "SHL", Gas: 3, RequiredElements: 2},
	SHR:            {Name: "SHR", Gas: 3, RequiredElements: 2},
	SAR:            {Name: "SAR", Gas: 3, RequiredElements: 2},
	KECCAK256:      {Name: "KECCAK256", Gas: params.Keccak256Gas, RequiredElements: 2},
	ADDRESS:        {Name: "ADDRESS", Gas: 2},
	BALANCE:        {Name: "BALANCE", Gas: params.WarmStorageReadCostEIP2929, RequiredElements: 1},
	ORIGIN:         {Name: "ORIGIN", Gas: 2},
	CALLER:         {Name: "CALLER", Gas: 2},
	CALLVALUE:      {Name: "CALLVALUE", Gas: 2},
	CALLDATALOAD:   {Name: "CALLDATALOAD", Gas: 3, RequiredElements: 1},
	CALLDATASIZE:   {Name: "CALLDATASIZE", Gas: 2},
	CALLDATACOPY:   {Name: "CALLDATACOPY", Gas: 4, RequiredElements: 3},
	CODESIZE:       {Name: "CODESIZE", Gas: 2},
	CODECOPY:       {Name: "CODECOPY", Gas: 3, RequiredElements: 3},
	GASPRICE:       {Name: "GASPRICE", Gas: 2},
	EXTCODESIZE:    {Name: "EXTCODESIZE", Gas: params.WarmStorageReadCostEIP2929, RequiredElements: 1},
	EXTCODECOPY:    {Name: "EXTCODECOPY", Gas: params.WarmStorageReadCostEIP2929, RequiredElements: 4},
	RETURNDATASIZE: {Name: "RETURNDATASIZE", Gas: 2},
	RETURNDATACOPY: {Name: "RETURNDATACOPY", Gas: 3, RequiredElements: 3},
	EXTCODEHASH:    {Name: "EXTCODEHASH", Gas: params.WarmStorageReadCostEIP2929, RequiredElements: 1},
	BLOCKHASH:      {Name: "BLOCKHASH", Gas: 20, RequiredElements: 1},
	COINBASE:       {Name: "COINBASE", Gas: 2},
	TIMESTAMP:      {Name: "TIMESTAMP", Gas: 2},
	NUMBER:         {Name: "NUMBER", Gas: 2},
	PREVRANDAO:     {Name: "PREVRANDAO", Gas: 2},
	GASLIMIT:       {Name: "GASLIMIT", Gas: 2},
	CHAINID:        {Name: "CHAINID", Gas: 2},
	SELFBALANCE:    {Name: "SELFBALANCE", Gas: 5},
	BASEFEE:        {Name: "BASEFEE", Gas: 2},
	BLOBHASH:       {Name: "BLOBHASH", Gas: 3, RequiredElements: 1},
	BLOBBASEFEE:    {Name: "BLOBBASEFEE", Gas: 2},
	POP:            {Name: "POP", Gas: 2, RequiredElements: 1},
	MLOAD:          {Name: "MLOAD", Gas: 4, RequiredElements: 1},
	MSTORE:         {Name: "MSTORE", Gas: 3, RequiredElements: 2},
	MSTORE8:        {Name: "MSTORE8", Gas: 3, RequiredElements: 2},
	SLOAD:          {Name: "SLOAD", Gas: params.WarmStorageReadCostEIP2929, RequiredElements: 1},
	SSTORE:         {Name: "SSTORE", Gas: params.WarmStorageReadCostEIP2929, RequiredElements: 2},
	JUMP:           {Name: "JUMP", Gas: 8, RequiredElements: 1},
	JUMPI:          {Name: "JUMPI", Gas: 10, RequiredElements: 2},
	PC:             {Name: "PC", Gas: 2},
	MSIZE:          {Name: "MSIZE", Gas: 2},
	GAS:            {Name: "GAS", Gas: 2},
	JUMPDEST:       {Name: "JUMPDEST", Gas: params.JumpdestGas},
	TLOAD:          {Name: "TLOAD", Gas: params.WarmStorageReadCostEIP2929, RequiredElements: 1},
	TSTORE:         {Name: "TSTORE", Gas: params.WarmStorageReadCostEIP2929, RequiredElements: 2},
	MCOPY:          {Name: "MCOPY", Gas: 3, RequiredElements: 3},
	PUSH0:          {Name: "PUSH0", Gas: 2},
	CREATE:         {Name: "CREATE", Gas: params.CreateGas, RequiredElements: 3},
	CALL:           {Name: "CALL", Gas: params.WarmStorageReadCostEIP2929, RequiredElements: 7},
	CALLCODE:       {Name: "CALLCODE", Gas: params.WarmStorageReadCostEIP2929, RequiredElements: 7},
	RETURN:         {Name: "RETURN", Gas: 5, RequiredElements: 2},
	DELEGATECALL:   {Name: "DELEGATECALL", Gas: params.WarmStorageReadCostEIP2929, RequiredElements: 6},
	CREATE2:        {Name: "CREATE2", Gas: params.Create2Gas, RequiredElements: 4},
	STATICCALL:     {Name: "STATICCALL", Gas: params.WarmStorageReadCostEIP2929, RequiredElements: 6},
	REVERT:         {Name: "REVERT", Gas: 5, RequiredElements: 2},
	INVALID:        {Name: "INVALID"},
	SELFDESTRUCT:   {Name: "SELFDESTRUCT", Gas: 5, RequiredElements: 1},
}

var (
	opCodes     [256]OPCodeInfo
	opCodeNames map[Operation]OPCodeInfo
)

func init() {
	// PUSH{1~32}
	for i := 1; i < 33; i++ {
		opCodeInfos[PUSH0+OpCode(i)] = OPCodeInfo{
			Name: Operation(fmt.Sprintf("PUSH%d", i)),
			Size: 1 + i,
			Gas:  3,
		}
	}
	// DUP{1~16} SWAP{1~16}
	for i := 1; i < 17; i++ {
		opCodeInfos[DUP1+OpCode(i-1)] = OPCodeInfo{
			Name:             Operation(fmt.Sprintf("DUP%d", i)),
			Gas:              3,
			RequiredElements: i,
		}
		opCodeInfos[SWAP1+OpCode(i-1)] = OPCodeInfo{
			Name:             Operation(fmt.Sprintf("SWAP%d", i)),
			Gas:              3,
			RequiredElements: i + 1,
		}
	}
	// LOG{0~4}
	for i := 0; i < 5; i++ {
		opCodeInfos[LOG0+OpCode(i)] = OPCodeInfo{
			Name:             Operation(fmt.Sprintf("LOG%d", i)),
			Gas:              params.LogGas * uint64(i+1),
			RequiredElements: i + 2,
		}
	}

	for i := range opCodes {
		opCodes[i] = OPCodeInfo{Name: "?", OPCode: OpCode(i), Size: 1}
	}
	opCodeNames = make(map[Operation]OPCodeInfo, len(opCodeInfos))
	for k, info := range opCodeInfos {
		info.OPCode = k
		if info.Size == 0 {
			info.Size = 1
		}
		opCodeInfos[k] = info
		opCodes[k] = info
		opCodeNames[info.Name] = info
	}
}

// GetOPCodeInfo 按字节取操作码信息，未定义的字节名称为 "?"
func GetOPCodeInfo(b byte) OPCodeInfo {
	return opCodes[b]
}

func GetOPCodeInfoByName(name Operation) (OPCodeInfo, bool) {
	info, ok := opCodeNames[name]
	return info, ok
}

// IsDefined 是否为已分配的操作码
func IsDefined(b byte) bool {
	_, ok := opCodeInfos[OpCode(b)]
	return ok
}

func IsPush(op OpCode) bool {
	return op >= PUSH0 && op <= PUSH32
}

// IsHalt 执行后终止当前路径的指令
func IsHalt(op OpCode) bool {
	switch op {
	case STOP, RETURN, REVERT, INVALID, SELFDESTRUCT:
		return true
	}
	return false
}
