package evm

import (
	"github.com/pkg/errors"
)

// 单条路径上的可恢复错误，驱动层遇到后只结束当前路径
var (
	ErrStackUnderflow = errors.New("ErrorStackUnderflow")
	ErrStackOverflow  = errors.New("ErrorStackOverflow")
	ErrInvalidJump    = errors.New("ErrorInvalidJumpDestination")
	ErrUnsupportedOp  = errors.New("ErrorUnsupportedOpcode")
	ErrGasExhausted   = errors.New("ErrorGasBudgetExceeded")
)

// ErrMalformedHex 输入字节码不是合法的十六进制
var ErrMalformedHex = errors.New("malformed hex input")

// IsPathError 判断错误是否只影响当前探索路径
func IsPathError(err error) bool {
	switch errors.Cause(err) {
	case ErrStackUnderflow, ErrStackOverflow, ErrInvalidJump, ErrUnsupportedOp, ErrGasExhausted:
		return true
	}
	return false
}
