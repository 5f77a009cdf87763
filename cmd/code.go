package main

import (
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"sigscan/internal/analyzer"
	"sigscan/internal/evm"
)

// NotFound 选择器没有被分发器识别
const NotFound = "notfound"

type codeFlags struct {
	code string
	file string
}

func (f *codeFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.code, "code", "", "runtime bytecode in hex")
	cmd.Flags().StringVar(&f.file, "file", "", "file with hex bytecode or {\"code\": ...} json")
}

func (f *codeFlags) load() ([]byte, error) {
	if f.file != "" {
		data, err := os.ReadFile(f.file)
		if err != nil {
			return nil, errors.Wrap(err, "ReadFile")
		}
		input, err := analyzer.ParseInput(f.file, data)
		if err != nil {
			return nil, err
		}
		return input.Code, nil
	}
	if f.code == "" {
		return nil, errors.New("either --code or --file is required")
	}
	return evm.DecodeHex(f.code)
}
