package selectors

import (
	"testing"

	"sigscan/internal/evm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	// solc 0.8, 单个函数 fae7ab82(uint32) pure
	fixtureCode = "6080604052348015600e575f80fd5b50600436106026575f3560e01c8063fae7ab8214602a575b5f80fd5b603960353660046062565b6052565b60405163ffffffff909116815260200160405180910390f35b5f605c826001608a565b92915050565b5f602082840312156071575f80fd5b813563ffffffff811681146083575f80fd5b9392505050565b63ffffffff8181168382160190811115605c57634e487b7160e01b5f52601160045260245ffd"
	// 2125b65b(uint32,address,uint224) 与 b69ef8a8()
	twoFuncCode = "6080604052348015600e575f80fd5b50600436106030575f3560e01c80632125b65b146034578063b69ef8a8146044575b5f80fd5b6044603f3660046046565b505050565b005b5f805f606084860312156057575f80fd5b833563ffffffff811681146069575f80fd5b925060208401356001600160a01b03811681146083575f80fd5b915060408401356001600160e01b0381168114609d575f80fd5b80915050925092509256"
	// GT 0x50000000 二分后两侧各两个 EQ 分支
	binarySearchCode = "5f3560e01c8063500000001160265780631111111114603e57806322222222146040575f80fd5b80636666666614604257806377777777146044575f80fd5b005b005b005b00"
	// sig MOD 3 的桶分发
	bucketCode = "5f3560e01c600381068015601857806001146027576036565b50806311111111146045575f80fd5b50806322222222146047575f80fd5b50806333333333146049575f80fd5b005b005b00"
)

func extract(t *testing.T, code string, gas uint64) map[[4]byte]int {
	data, err := evm.DecodeHex(code)
	require.Nil(t, err)
	selectors, _ := Extract(data, gas)
	return selectors
}

func TestExtract(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		expected map[[4]byte]int
	}{
		{"empty", "", map[[4]byte]int{}},
		{"fixture", fixtureCode, map[[4]byte]int{
			{0xfa, 0xe7, 0xab, 0x82}: 0x2a,
		}},
		{"two functions", twoFuncCode, map[[4]byte]int{
			{0x21, 0x25, 0xb6, 0x5b}: 0x34,
			{0xb6, 0x9e, 0xf8, 0xa8}: 0x44,
		}},
		{"binary search", binarySearchCode, map[[4]byte]int{
			{0x11, 0x11, 0x11, 0x11}: 0x3e,
			{0x22, 0x22, 0x22, 0x22}: 0x40,
			{0x66, 0x66, 0x66, 0x66}: 0x42,
			{0x77, 0x77, 0x77, 0x77}: 0x44,
		}},
		{"buckets", bucketCode, map[[4]byte]int{
			{0x11, 0x11, 0x11, 0x11}: 0x45,
			{0x22, 0x22, 0x22, 0x22}: 0x47,
			{0x33, 0x33, 0x33, 0x33}: 0x49,
		}},
		// GAS 之后的代码不是分发器
		{"gas stops", "5a50" + binarySearchCode, map[[4]byte]int{}},
		// 跳转目标超出代码范围时不记录
		{"target beyond int64", "5f3560e01c631111111114678000000000000000" + "5700", map[[4]byte]int{}},
		{"target beyond uint64", "5f3560e01c631111111114680100000000000000" + "005700", map[[4]byte]int{}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, extract(t, tt.code, 0), tt.name)
	}
}

func TestSorted(t *testing.T) {
	assert.Equal(t, []string{"11111111", "22222222", "66666666", "77777777"},
		Sorted(extract(t, binarySearchCode, 0)))
	assert.Equal(t, []string{}, Sorted(extract(t, "", 0)))
}

func TestExtract_Deterministic(t *testing.T) {
	first := Sorted(extract(t, twoFuncCode, 0))
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, Sorted(extract(t, twoFuncCode, 0)))
	}
}

func TestExtract_MonotonicInGas(t *testing.T) {
	full := extract(t, binarySearchCode, 0)
	for _, gas := range []uint64{1, 10, 40, 80, 200, 1000} {
		partial := extract(t, binarySearchCode, gas)
		for s, pc := range partial {
			assert.Equal(t, full[s], pc, "gas %d", gas)
		}
		assert.LessOrEqual(t, len(partial), len(full), "gas %d", gas)
	}
	assert.Empty(t, extract(t, binarySearchCode, 10))
}

func TestExtract_GasUsed(t *testing.T) {
	data, err := evm.DecodeHex(bucketCode)
	require.Nil(t, err)
	_, used := Extract(data, 0)
	assert.Greater(t, used, uint64(0))
	assert.LessOrEqual(t, used, uint64(DefaultGas))
}
