package analyzer

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"

	"sigscan/internal/evm"
)

// Input 待分析的运行时代码
type Input struct {
	Name string
	Code []byte
}

type codeFile struct {
	Code            string `json:"code"`
	RuntimeBytecode string `json:"runtimeBytecode"`
}

// ParseInput 支持 {"code": "0x.."} 或 {"runtimeBytecode": "0x.."}，以及纯hex文本
func ParseInput(name string, data []byte) (Input, error) {
	data = bytes.TrimSpace(data)
	code := string(data)
	if len(data) > 0 && data[0] == '{' {
		var f codeFile
		if err := json.Unmarshal(data, &f); err != nil {
			return Input{}, errors.Wrapf(err, "Unmarshal %s", name)
		}
		code = f.Code
		if f.RuntimeBytecode != "" {
			code = f.RuntimeBytecode
		}
	}
	bytecode, err := evm.DecodeHex(code)
	if err != nil {
		return Input{}, errors.Wrapf(err, "DecodeHex %s", name)
	}
	return Input{Name: name, Code: bytecode}, nil
}

// LoadDir 读取目录下的所有文件，按文件名排序，不递归
func LoadDir(dir string) ([]Input, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrap(err, "ReadDir")
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})
	var inputs []Input
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, errors.Wrap(err, "ReadFile")
		}
		input, err := ParseInput(entry.Name(), data)
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, input)
	}
	return inputs, nil
}
