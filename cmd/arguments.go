package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"sigscan"
	"sigscan/internal/analyzer"
)

var (
	argumentsFlags    codeFlags
	argumentsSelector string
	argumentsGas      uint64
)

var argumentsCommand = &cobra.Command{
	Use:   "arguments",
	Short: "print argument types of a function",
	Long:  ``,
	Run: func(*cobra.Command, []string) {
		exit(printArguments())
	},
}

func init() {
	argumentsFlags.register(argumentsCommand)
	argumentsCommand.Flags().StringVar(&argumentsSelector, "selector", "", "function selector, 4 bytes hex")
	argumentsCommand.Flags().Uint64Var(&argumentsGas, "gas", 0, "gas limit, 0 for default")
}

func printArguments() error {
	if argumentsGas > 0 {
		cfg.ArgumentsGas = argumentsGas
	}
	code, err := argumentsFlags.load()
	if err != nil {
		return err
	}
	sel, err := sigscan.ParseSelector(argumentsSelector)
	if err != nil {
		return err
	}
	f, ok := analyzer.New(cfg).Function(code, sel, analyzer.Options{Arguments: true})
	if !ok {
		fmt.Println(NotFound)
		return nil
	}
	fmt.Printf("(%s)\n", *f.Arguments)
	return nil
}
