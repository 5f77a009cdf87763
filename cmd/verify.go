package main

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"sigscan/internal/analyzer"
	"sigscan/internal/finding"
	"sigscan/internal/solidity"
)

var verifyCommand = &cobra.Command{
	Use:   "verify",
	Short: "compile solidity and compare recovered selectors and arguments with the compiler's",
	Long:  ``,
	Run: func(*cobra.Command, []string) {
		exit(verify())
	},
}

func init() {
	verifyCommand.Flags().StringVar(&SolidityFile, "sol", "", "solidity file")
}

// Mismatch 恢复结果与编译器不一致的函数
type Mismatch struct {
	Selector string
	Expected string
	Actual   string
}

// argumentList 从函数签名中取出参数列表，如 f(uint256,(address,bool)) -> uint256,(address,bool)
func argumentList(signature string) string {
	start := strings.Index(signature, "(")
	if start < 0 || !strings.HasSuffix(signature, ")") {
		return ""
	}
	return signature[start+1 : len(signature)-1]
}

func compareContract(c *solidity.EVMContract, info *analyzer.Contract) []Mismatch {
	var result []Mismatch
	for signature, sel := range c.MethodIdentifiers {
		f, ok := info.Function(sel)
		if !ok {
			result = append(result, Mismatch{Selector: sel, Expected: signature, Actual: NotFound})
			continue
		}
		if expected := argumentList(signature); *f.Arguments != expected {
			result = append(result, Mismatch{Selector: sel, Expected: expected, Actual: *f.Arguments})
		}
	}
	for _, f := range info.Functions {
		if !containsSelector(c.MethodIdentifiers, f.Selector) {
			result = append(result, Mismatch{Selector: f.Selector, Expected: NotFound, Actual: *f.Arguments})
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Selector < result[j].Selector
	})
	return result
}

func containsSelector(methods map[string]string, sel string) bool {
	for _, s := range methods {
		if s == sel {
			return true
		}
	}
	return false
}

func verify() error {
	if SolidityFile == "" {
		return errors.New("--sol is required")
	}
	contracts, err := newCompiler().GetContractsFromFile(context.Background(), SolidityFile)
	if err != nil {
		return err
	}
	a := analyzer.New(cfg)
	var total int
	for _, c := range contracts {
		log.Infof("verifying contract %s", c.Name)
		info := a.ContractInfo(c.Code, analyzer.Options{Arguments: true})
		mismatches := compareContract(c, info)
		fmt.Printf("%s: %d functions, %d mismatches\n", c.Name, len(c.MethodIdentifiers), len(mismatches))
		for _, m := range mismatches {
			fmt.Println(finding.Colour(33, fmt.Sprintf("  %s expected %q got %q", m.Selector, m.Expected, m.Actual)))
		}
		total += len(mismatches)
	}
	if total > 0 {
		return errors.Errorf("%d mismatches", total)
	}
	return nil
}
