package disassembler

import (
	"encoding/hex"
	"strconv"
	"strings"

	"sigscan/internal/opcode"
)

type EvmInstruction struct {
	Address  int           // 地址
	OPCode   opcode.OpCode // OPCode
	Name     string        // 助记符，未定义的字节为 "?"
	Argument []byte        // 指令参数
}

// String 格式为 "地址 助记符 参数"，参数为不带前缀的hex
func (ei *EvmInstruction) String() string {
	if len(ei.Argument) == 0 {
		return ei.Name
	}
	return ei.Name + " " + hex.EncodeToString(ei.Argument)
}

// FormatArgument 将argument格式化成16进制的字符串
// 格式化之后的长度至少是8，不足补0
// 如[0x1,0x2]格式化之后为0x00000102
func (ei *EvmInstruction) FormatArgument() string {
	if len(ei.Argument) <= 0 {
		return ""
	}
	data := hex.EncodeToString(ei.Argument)
	if len(data) < 8 {
		data = strings.Repeat("0", 8-len(data)) + data
	}
	return "0x" + data
}

func instructionListToEASM(instructions []EvmInstruction) string {
	var builder strings.Builder
	for i := range instructions {
		builder.WriteString(strconv.Itoa(instructions[i].Address))
		builder.WriteString(" ")
		builder.WriteString(instructions[i].String())
		builder.WriteString("\n")
	}
	return builder.String()
}

// patterns从0开始，instructions从index开始，依次匹配
func isSequenceMatch(patterns [][]opcode.OpCode, instructions []EvmInstruction, index int) bool {
	for i, pattern := range patterns {
		if index+i >= len(instructions) {
			return false
		}
		var foundOPCode bool
		for _, p := range pattern {
			if instructions[index+i].OPCode == p {
				foundOPCode = true
			}
		}
		if !foundOPCode {
			return false
		}
	}
	return true
}

func FindOPCodeSequence(patterns [][]opcode.OpCode, instructions []EvmInstruction) []int {
	result := make([]int, 0)
	for i := 0; i < len(instructions)-len(patterns)+1; i++ {
		if isSequenceMatch(patterns, instructions, i) {
			result = append(result, i)
		}
	}
	return result
}

// Disassemble 解码字节码为EvmInstruction
// 末尾被截断的PUSH不输出
func Disassemble(bytecode []byte) []EvmInstruction {
	var (
		instructions []EvmInstruction
		length       = len(bytecode)
	)
	for address := 0; address < length; {
		info := opcode.GetOPCodeInfo(bytecode[address])
		if address+info.Size > length {
			break
		}
		instructions = append(instructions, EvmInstruction{
			Address:  address,
			OPCode:   info.OPCode,
			Name:     info.Name.String(),
			Argument: bytecode[address+1 : address+info.Size],
		})
		address += info.Size
	}
	return instructions
}
