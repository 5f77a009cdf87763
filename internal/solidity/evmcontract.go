package solidity

import (
	"context"
	"encoding/json"
	"regexp"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	"sigscan/internal/disassembler"
	"sigscan/internal/util"
)

const (
	ContractAddressPattern = `(_{2}.{38})`
)

var regCode *regexp.Regexp

func init() {
	regCode, _ = regexp.Compile(ContractAddressPattern)
}

// EVMContract 编译得到的运行时代码及编译器给出的选择器
type EVMContract struct {
	Name string

	Code        []byte
	Disassembly *disassembler.Disassembly

	// 函数签名 -> 选择器hex
	MethodIdentifiers map[string]string
}

func NewEVMContract(code, name string, methods map[string]string) *EVMContract {
	bytecode := common.FromHex(replaceAddress(code))
	return &EVMContract{
		Name:              name,
		Code:              bytecode,
		Disassembly:       disassembler.NewDisassembly(bytecode),
		MethodIdentifiers: methods,
	}
}

func (c *EVMContract) BytecodeHash() string {
	return util.GetCodeHash(c.Code)
}

func (c *EVMContract) GetEASM() string {
	return c.Disassembly.GetEASM()
}

// Selectors 编译器给出的选择器，排序
func (c *EVMContract) Selectors() []string {
	result := make([]string, 0, len(c.MethodIdentifiers))
	for _, sel := range c.MethodIdentifiers {
		result = append(result, sel)
	}
	sort.Strings(result)
	return result
}

// GetContractsFromFile 编译文件，返回有运行时代码的合约
func (c *Compiler) GetContractsFromFile(ctx context.Context, file string) ([]*EVMContract, error) {
	output, err := c.GetSolcJson(ctx, file)
	if err != nil {
		return nil, errors.Wrap(err, "GetSolcJson")
	}
	data, err := json.Marshal(output)
	if err != nil {
		return nil, errors.Wrap(err, "Marshal")
	}
	return parseOutput(data)
}

type compilerOutput struct {
	Errors []struct {
		Severity         string `json:"severity"`
		FormattedMessage string `json:"formattedMessage"`
	} `json:"errors"`
	Contracts map[string]map[string]struct {
		EVM struct {
			DeployedBytecode struct {
				Object string `json:"object"`
			} `json:"deployedBytecode"`
			MethodIdentifiers map[string]string `json:"methodIdentifiers"`
		} `json:"evm"`
	} `json:"contracts"`
}

// parseOutput 解析标准json输出，按 文件:合约名 排序
func parseOutput(data []byte) ([]*EVMContract, error) {
	var out compilerOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, errors.Wrap(err, "Unmarshal")
	}
	for _, e := range out.Errors {
		if e.Severity == "error" {
			return nil, errors.Errorf("compile: %s", strings.TrimSpace(e.FormattedMessage))
		}
	}
	var contracts []*EVMContract
	for file, named := range out.Contracts {
		for name, contract := range named {
			if contract.EVM.DeployedBytecode.Object == "" {
				continue
			}
			contracts = append(contracts, NewEVMContract(
				contract.EVM.DeployedBytecode.Object,
				file+":"+name,
				contract.EVM.MethodIdentifiers,
			))
		}
	}
	sort.Slice(contracts, func(i, j int) bool {
		return contracts[i].Name < contracts[j].Name
	})
	return contracts, nil
}

func replaceAddress(code string) string {
	return regCode.ReplaceAllString(code, strings.Repeat("aa", 20))
}
