package evm

import (
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
)

// WordSize EVM字长，单位byte
const WordSize = 32

// Word 大端序的32字节
type Word [WordSize]byte

var (
	word0 = Word{}
	word1 = WordFromUint64(1)
)

func WordFromUint64(v uint64) Word {
	return uint256.NewInt(v).Bytes32()
}

func WordFromUint(v *uint256.Int) Word {
	return v.Bytes32()
}

func (w Word) Uint() *uint256.Int {
	return new(uint256.Int).SetBytes(w[:])
}

func (w Word) IsZero() bool {
	return w == word0
}

// Uint32 低4字节, 高位非零时 ok 为 false
func (w Word) Uint32() (uint32, bool) {
	v := w.Uint()
	if !v.IsUint64() || v.Uint64() > 0xffffffff {
		return 0, false
	}
	return uint32(v.Uint64()), true
}

// Low4 最低4字节，即选择器位置
func (w Word) Low4() [4]byte {
	var r [4]byte
	copy(r[:], w[28:])
	return r
}

// DecodeHex 解码十六进制字节码
// 允许 0x 前缀，奇数长度在左侧补0
func DecodeHex(code string) ([]byte, error) {
	code = strings.TrimSpace(code)
	if strings.HasPrefix(code, "0x") || strings.HasPrefix(code, "0X") {
		code = code[2:]
	}
	if len(code)%2 == 1 {
		code = "0" + code
	}
	data, err := hexutil.Decode("0x" + code)
	if err != nil {
		return nil, errors.Wrap(ErrMalformedHex, err.Error())
	}
	return data, nil
}

// ModExp 平方乘求 base^exp mod 2^256
func ModExp(base, exp *uint256.Int) *uint256.Int {
	var (
		result = uint256.NewInt(1)
		b      = new(uint256.Int).Set(base)
		n      = exp.BitLen()
	)
	for i := 0; i < n; i++ {
		if exp[i/64]&(1<<(uint(i)%64)) != 0 {
			result.Mul(result, b)
		}
		b.Mul(b, b)
	}
	return result
}
