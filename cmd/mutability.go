package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"sigscan"
	"sigscan/internal/analyzer"
)

var (
	mutabilityFlags    codeFlags
	mutabilitySelector string
	mutabilityExplain  bool
	mutabilityGas      uint64
)

var mutabilityCommand = &cobra.Command{
	Use:   "mutability",
	Short: "print state mutability of a function",
	Long:  ``,
	Run: func(*cobra.Command, []string) {
		exit(printMutability())
	},
}

func init() {
	mutabilityFlags.register(mutabilityCommand)
	mutabilityCommand.Flags().StringVar(&mutabilitySelector, "selector", "", "function selector, 4 bytes hex")
	mutabilityCommand.Flags().BoolVar(&mutabilityExplain, "explain", false, "print the instructions the decision is based on")
	mutabilityCommand.Flags().Uint64Var(&mutabilityGas, "gas", 0, "gas limit, 0 for default")
}

func printMutability() error {
	if mutabilityGas > 0 {
		cfg.MutabilityGas = mutabilityGas
	}
	code, err := mutabilityFlags.load()
	if err != nil {
		return err
	}
	sel, err := sigscan.ParseSelector(mutabilitySelector)
	if err != nil {
		return err
	}
	f, ok := analyzer.New(cfg).Function(code, sel, analyzer.Options{
		StateMutability: true,
		Explain:         mutabilityExplain,
	})
	if !ok {
		fmt.Println(NotFound)
		return nil
	}
	fmt.Println(*f.StateMutability)
	for _, finding := range f.Findings {
		fmt.Print(finding)
	}
	return nil
}
