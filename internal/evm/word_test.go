package evm

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestDecodeHex(t *testing.T) {
	tests := []struct {
		input  string
		output []byte
	}{
		{"", []byte{}},
		{"0x", []byte{}},
		{"6080", []byte{0x60, 0x80}},
		{"0x6080", []byte{0x60, 0x80}},
		{"0X6080", []byte{0x60, 0x80}},
		{"abc", []byte{0x0a, 0xbc}},
		{"0xf", []byte{0x0f}},
	}
	for _, tt := range tests {
		data, err := DecodeHex(tt.input)
		assert.Nil(t, err, tt.input)
		assert.Equal(t, tt.output, data, tt.input)
	}
}

func TestDecodeHexMalformed(t *testing.T) {
	for _, input := range []string{"0xzz", "60 80", "0x0x60"} {
		_, err := DecodeHex(input)
		assert.NotNil(t, err, input)
		assert.Equal(t, ErrMalformedHex, errors.Cause(err), input)
	}
}

func TestModExp(t *testing.T) {
	tests := []struct {
		base uint64
		exp  uint64
	}{
		{0, 0},
		{2, 0},
		{0, 5},
		{2, 10},
		{3, 200},
		{2, 255},
		{2, 256},
		{7, 0xffffffff},
		{0xffffffffffffffff, 3},
	}
	for _, tt := range tests {
		var (
			base = uint256.NewInt(tt.base)
			exp  = uint256.NewInt(tt.exp)
		)
		expected := new(uint256.Int).Exp(base, exp)
		assert.Equal(t, expected.Hex(), ModExp(base, exp).Hex(), "%d^%d", tt.base, tt.exp)
	}
	// 结果对 2^256 取模
	assert.True(t, ModExp(uint256.NewInt(2), uint256.NewInt(256)).IsZero())
}

func TestWord(t *testing.T) {
	w := WordFromUint64(0xaabbccdd)
	assert.Equal(t, [4]byte{0xaa, 0xbb, 0xcc, 0xdd}, w.Low4())
	v, ok := w.Uint32()
	assert.True(t, ok)
	assert.Equal(t, uint32(0xaabbccdd), v)

	w[0] = 1
	_, ok = w.Uint32()
	assert.False(t, ok)
	assert.True(t, Word{}.IsZero())
}
