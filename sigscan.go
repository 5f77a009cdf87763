// Package sigscan 从运行时字节码恢复合约的函数选择器、参数类型和状态可变性，
// 不需要ABI和源码。
//
// 所有分析都是尽力而为：在限定的gas内对字节码做抽象执行，识别分发器和ABI解码的模式。
// gasLimit 为 0 时使用各分析的默认值。
package sigscan

import (
	"github.com/pkg/errors"

	"sigscan/internal/analyzer"
	"sigscan/internal/arguments"
	"sigscan/internal/config"
	"sigscan/internal/evm"
	"sigscan/internal/mutability"
	"sigscan/internal/selectors"
)

// ErrMalformedHex 字节码或选择器不是合法的十六进制
var ErrMalformedHex = evm.ErrMalformedHex

type (
	Options  = analyzer.Options
	Contract = analyzer.Contract
	Function = analyzer.Function
)

// FunctionSelectors 返回排序去重的选择器，每个为8位hex
func FunctionSelectors(code string, gasLimit uint64) ([]string, error) {
	bytecode, err := evm.DecodeHex(code)
	if err != nil {
		return nil, err
	}
	found, _ := selectors.Extract(bytecode, gasLimit)
	return selectors.Sorted(found), nil
}

// FunctionArguments 返回逗号连接的参数类型，如 "uint256,address[]"
// 选择器未被分发器识别时返回空串
func FunctionArguments(code, selector string, gasLimit uint64) (string, error) {
	bytecode, sel, err := decode(code, selector)
	if err != nil {
		return "", err
	}
	return arguments.Signature(bytecode, sel, gasLimit), nil
}

// FunctionStateMutability 返回 pure、view、nonpayable 或 payable
func FunctionStateMutability(code, selector string, gasLimit uint64) (string, error) {
	bytecode, sel, err := decode(code, selector)
	if err != nil {
		return "", err
	}
	return string(mutability.Classify(bytecode, sel, gasLimit)), nil
}

// ContractInfo 按选项汇总合约信息
func ContractInfo(code string, opts Options) (*Contract, error) {
	bytecode, err := evm.DecodeHex(code)
	if err != nil {
		return nil, err
	}
	return analyzer.New(config.Default()).ContractInfo(bytecode, opts), nil
}

// ParseSelector 解析4字节选择器，允许0x前缀
func ParseSelector(selector string) ([4]byte, error) {
	var sel [4]byte
	data, err := evm.DecodeHex(selector)
	if err != nil {
		return sel, err
	}
	if len(data) != len(sel) {
		return sel, errors.Wrapf(ErrMalformedHex, "selector %q is %d bytes", selector, len(data))
	}
	copy(sel[:], data)
	return sel, nil
}

func decode(code, selector string) ([]byte, [4]byte, error) {
	sel, err := ParseSelector(selector)
	if err != nil {
		return nil, sel, err
	}
	bytecode, err := evm.DecodeHex(code)
	if err != nil {
		return nil, sel, err
	}
	return bytecode, sel, nil
}
