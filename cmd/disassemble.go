package main

import (
	"context"
	"fmt"
	"sort"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"sigscan/internal/disassembler"
	"sigscan/internal/selectors"
	"sigscan/internal/solidity"
)

var (
	disassembleFlags     codeFlags
	SolidityFile         string
	disassembleBlocks    bool
	disassembleSelectors bool
)

var disassembleCommand = &cobra.Command{
	Use:   "disassemble",
	Short: "disassemble bytecode and print easm",
	Long:  ``,
	Run: func(*cobra.Command, []string) {
		exit(disassemble())
	},
}

func init() {
	disassembleFlags.register(disassembleCommand)
	disassembleCommand.Flags().StringVar(&SolidityFile, "sol", "", "compile solidity file and disassemble its runtime code")
	disassembleCommand.Flags().BoolVar(&disassembleBlocks, "blocks", false, "print basic blocks")
	disassembleCommand.Flags().BoolVar(&disassembleSelectors, "selectors", false, "print recovered selectors with their entry instruction and the PUSH4/EQ candidates")
}

func newCompiler() *solidity.Compiler {
	return &solidity.Compiler{Dir: cfg.SolcDir, Endpoint: cfg.SolcEndpoint}
}

func disassemble() error {
	if SolidityFile != "" {
		contracts, err := newCompiler().GetContractsFromFile(context.Background(), SolidityFile)
		if err != nil {
			return err
		}
		for _, c := range contracts {
			fmt.Printf("Disassembled runtime code of %s:\n", c.Name)
			printDisassembly(c.Disassembly)
		}
		return nil
	}
	code, err := disassembleFlags.load()
	if err != nil {
		return err
	}
	printDisassembly(disassembler.NewDisassembly(code))
	return nil
}

func printDisassembly(d *disassembler.Disassembly) {
	fmt.Print(d.GetEASM())
	if disassembleBlocks {
		fmt.Println("Basic blocks:")
		for _, b := range d.GetBasicBlocks() {
			fmt.Printf("[%d, %d] %s\n", b.Start, b.End, b.Kind)
		}
	}
	if disassembleSelectors {
		entries, unreached := selectorEntries(d, cfg.SelectorsGas)
		fmt.Println("Selectors:")
		for _, e := range entries {
			mark := ""
			if !e.Pattern {
				mark = " (no PUSH4/EQ)"
			}
			fmt.Printf("%s %d %s%s\n", e.Selector, e.Offset, e.Entry, mark)
		}
		for _, h := range unreached {
			fmt.Printf("PUSH4/EQ candidate %s not reached by the dispatcher\n", h)
		}
	}
}

// selectorEntry 恢复出的选择器及其入口指令
// Pattern 表示该选择器也能由 PUSH4 EQ 模式直接找到
type selectorEntry struct {
	Selector string
	Offset   int
	Entry    string
	Pattern  bool
}

// selectorEntries 对比分发器分析与 PUSH4 EQ 模式匹配的结果
// 第二个返回值为模式匹配到但分发器分析没有到达的候选
func selectorEntries(d *disassembler.Disassembly, gas uint64) ([]selectorEntry, []string) {
	found, _ := selectors.Extract(d.GetBytecode(), gas)
	candidates := make(map[string]bool)
	for _, h := range d.GetFunctionHashes() {
		candidates[h] = false
	}

	entries := make([]selectorEntry, 0, len(found))
	for sel, offset := range found {
		e := selectorEntry{Selector: "0x" + common.Bytes2Hex(sel[:]), Offset: offset}
		if index := d.GetInstructionIndex(offset); index >= 0 {
			e.Entry = d.GetInstructions()[index].String()
		}
		if _, ok := candidates[e.Selector]; ok {
			e.Pattern = true
			candidates[e.Selector] = true
		}
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Selector < entries[j].Selector
	})

	var unreached []string
	for h, reached := range candidates {
		if !reached {
			unreached = append(unreached, h)
		}
	}
	sort.Strings(unreached)
	return entries, unreached
}
