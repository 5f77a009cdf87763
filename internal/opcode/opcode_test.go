package opcode

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOPCode(t *testing.T) {
	assert.Equal(t, 80+32+32+5, len(opCodeInfos))
	assert.Equal(t, 80+32+32+5, len(opCodeNames))
}

func TestGetOPCodeInfo(t *testing.T) {
	tests := []struct {
		b        byte
		name     Operation
		size     int
		required int
	}{
		{0x00, "STOP", 1, 0},
		{0x5f, "PUSH0", 1, 0},
		{0x60, "PUSH1", 2, 0},
		{0x63, "PUSH4", 5, 0},
		{0x7f, "PUSH32", 33, 0},
		{0x80, "DUP1", 1, 1},
		{0x8f, "DUP16", 1, 16},
		{0x90, "SWAP1", 1, 2},
		{0x9f, "SWAP16", 1, 17},
		{0xa2, "LOG2", 1, 4},
		{0xf1, "CALL", 1, 7},
		{0x0c, "?", 1, 0},
		{0xb0, "?", 1, 0},
	}
	for _, tt := range tests {
		info := GetOPCodeInfo(tt.b)
		assert.Equal(t, tt.name, info.Name)
		assert.Equal(t, tt.size, info.Size, tt.name)
		assert.Equal(t, tt.required, info.RequiredElements, tt.name)
		assert.Equal(t, OpCode(tt.b), info.OPCode)
	}
	assert.False(t, IsDefined(0x0c))
	assert.True(t, IsDefined(0x5f))
}

func TestGetOPCodeInfoByName(t *testing.T) {
	info, ok := GetOPCodeInfoByName("JUMPDEST")
	assert.True(t, ok)
	assert.Equal(t, JUMPDEST, info.OPCode)
	assert.Equal(t, uint64(1), info.Gas)

	info, ok = GetOPCodeInfoByName("LOG4")
	assert.True(t, ok)
	assert.Equal(t, uint64(375*5), info.Gas)

	_, ok = GetOPCodeInfoByName("BEGINSUB")
	assert.False(t, ok)

	assert.Equal(t, "SHR", SHR.String())
	assert.True(t, IsPush(PUSH0))
	assert.False(t, IsPush(DUP1))
	assert.True(t, IsHalt(REVERT))
	assert.False(t, IsHalt(JUMP))
}
