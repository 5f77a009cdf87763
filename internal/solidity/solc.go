package solidity

import (
	"context"
	"os"
	"strings"

	"github.com/Notation/solc-go"
	"github.com/pkg/errors"
)

// for older version, compiler wrapper is not standard
// less than version 0.5.0, use compileJSON
// greater or equal 0.5.0 and less than 0.6.0, use solidity_compile('string', 'number')
// greater or equal 0.6.0, use solidity_compile('string', 'number', 'number')

// solc compiler input & output docs:
// https://docs.soliditylang.org/en/v0.5.0/using-the-compiler.html#compiler-input-and-output-json-description

const PragmaSolidity = "pragma solidity "

// Compiler 按pragma版本准备solc，编译单个源文件
type Compiler struct {
	Dir      string
	Endpoint string
}

func (c *Compiler) PrepareSolcBinary(ctx context.Context, version string) (string, error) {
	solcMeta, err := NewSolcBinaryMeta(ctx, c.Dir, c.Endpoint)
	if err != nil {
		return "", errors.Wrap(err, "NewSolcBinaryMeta")
	}
	solcFile, err := solcMeta.GetSolcBinary(ctx, version)
	if err != nil {
		return "", errors.Wrap(err, "GetSolcBinary")
	}
	return solcFile, nil
}

func (c *Compiler) GetSolcJson(ctx context.Context, file string) (*solc.Output, error) {
	fileData, err := os.ReadFile(file)
	if err != nil {
		return nil, errors.Wrap(err, "ReadFile")
	}
	version := ExtractVersionFromData(fileData)
	if version == "" {
		return nil, errors.Errorf("no pragma solidity in %s", file)
	}
	solcFile, err := c.PrepareSolcBinary(ctx, version)
	if err != nil {
		return nil, errors.Wrap(err, "PrepareSolcBinary")
	}
	compiler, err := solc.NewFromFile(solcFile, strings.TrimPrefix(version, "^"))
	if err != nil {
		return nil, errors.Wrap(err, "NewFromFile")
	}
	input := &solc.Input{
		Language: "Solidity",
		Sources: map[string]solc.SourceIn{
			file: {Content: string(fileData)},
		},
		Settings: solc.Settings{
			Optimizer: solc.Optimizer{
				Enabled: false,
			},
			OutputSelection: map[string]map[string][]string{
				"*": {
					"*": []string{
						"evm.deployedBytecode",
						"evm.methodIdentifiers",
					},
				},
			},
		},
	}
	return compiler.Compile(input)
}

// ExtractVersionFromData 提取版本号，没有pragma时为空
func ExtractVersionFromData(fileData []byte) string {
	lines := strings.Split(string(fileData), "\n")
	for i := range lines {
		line := strings.TrimSpace(lines[i])
		if strings.HasPrefix(line, PragmaSolidity) {
			pre := strings.TrimPrefix(line, PragmaSolidity)
			return strings.TrimSpace(strings.TrimRight(pre, ";"))
		}
	}
	return ""
}
