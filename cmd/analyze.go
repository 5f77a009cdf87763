package main

import (
	"context"
	"encoding/json"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"sigscan/internal/analyzer"
)

var (
	analyzeInput     string
	analyzeOutput    string
	analyzeMode      string
	analyzeSelectors string
	analyzeWorkers   int
)

var analyzeCommand = &cobra.Command{
	Use:   "analyze",
	Short: "analyze every contract in a directory and write json results",
	Long: `modes:
  selectors   file -> [duration_us, [selector...]]
  arguments   file -> [duration_us, {selector: arguments}]
  mutability  file -> [duration_us, {selector: mutability}]
  blocks      file -> [duration_us, [[start, end]...]]
  info        file -> contract info with all of the above`,
	Run: func(*cobra.Command, []string) {
		exit(analyzeExec())
	},
}

func init() {
	analyzeCommand.Flags().StringVar(&analyzeInput, "input", "", "directory of hex or json files")
	analyzeCommand.Flags().StringVar(&analyzeOutput, "output", "", "output json file, stdout if empty")
	analyzeCommand.Flags().StringVar(&analyzeMode, "mode", "info", "selectors, arguments, mutability, blocks or info")
	analyzeCommand.Flags().StringVar(&analyzeSelectors, "selectors", "", "selectors json from a previous run, for arguments and mutability")
	analyzeCommand.Flags().IntVar(&analyzeWorkers, "workers", 0, "parallel workers, overrides config")
}

func modeOptions(mode string) (analyzer.Options, error) {
	switch mode {
	case "selectors":
		return analyzer.Options{Selectors: true}, nil
	case "arguments":
		return analyzer.Options{Arguments: true}, nil
	case "mutability":
		return analyzer.Options{StateMutability: true}, nil
	case "blocks":
		return analyzer.Options{BasicBlocks: true}, nil
	case "info":
		return analyzer.Options{Arguments: true, StateMutability: true}, nil
	}
	return analyzer.Options{}, errors.Errorf("unknown mode %q", mode)
}

// readSelectors 读取 selectors 模式的输出: 文件名 -> [耗时, [选择器...]]
func readSelectors(file string) (map[string][]string, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, errors.Wrap(err, "ReadFile")
	}
	var raw map[string][2]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, "Unmarshal")
	}
	result := make(map[string][]string, len(raw))
	for name, v := range raw {
		var sels []string
		if err := json.Unmarshal(v[1], &sels); err != nil {
			return nil, errors.Wrapf(err, "Unmarshal %s", name)
		}
		result[name] = sels
	}
	return result, nil
}

// byFunction 按选择器取值，给定列表中没有找到的记为 notfound
func byFunction(c *analyzer.Contract, expected []string, value func(*analyzer.Function) string) map[string]string {
	result := make(map[string]string)
	if expected == nil {
		for i := range c.Functions {
			result[c.Functions[i].Selector] = value(&c.Functions[i])
		}
		return result
	}
	for _, sel := range expected {
		if f, ok := c.Function(sel); ok {
			result[sel] = value(f)
		} else {
			result[sel] = NotFound
		}
	}
	return result
}

func buildOutput(mode string, reports []*analyzer.Report, expected map[string][]string) map[string]interface{} {
	output := make(map[string]interface{}, len(reports))
	for _, r := range reports {
		var (
			c   = r.Contract
			dur = r.Duration.Microseconds()
		)
		switch mode {
		case "selectors":
			sels := make([]string, 0, len(c.Functions))
			for _, f := range c.Functions {
				sels = append(sels, f.Selector)
			}
			output[r.Name] = []interface{}{dur, sels}
		case "arguments":
			output[r.Name] = []interface{}{dur, byFunction(c, expected[r.Name], func(f *analyzer.Function) string {
				return *f.Arguments
			})}
		case "mutability":
			output[r.Name] = []interface{}{dur, byFunction(c, expected[r.Name], func(f *analyzer.Function) string {
				return *f.StateMutability
			})}
		case "blocks":
			output[r.Name] = []interface{}{dur, c.BasicBlocks}
		default:
			output[r.Name] = c
		}
	}
	return output
}

func analyzeExec() error {
	if analyzeInput == "" {
		return errors.New("--input is required")
	}
	if analyzeWorkers > 0 {
		cfg.Workers = analyzeWorkers
	}
	opts, err := modeOptions(analyzeMode)
	if err != nil {
		return err
	}
	var expected map[string][]string
	if analyzeSelectors != "" {
		expected, err = readSelectors(analyzeSelectors)
		if err != nil {
			return err
		}
	}
	inputs, err := analyzer.LoadDir(analyzeInput)
	if err != nil {
		return err
	}
	reports, err := analyzer.New(cfg).Run(context.Background(), inputs, opts)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(buildOutput(analyzeMode, reports, expected), "", "  ")
	if err != nil {
		return errors.Wrap(err, "Marshal")
	}
	if analyzeOutput == "" {
		_, err = os.Stdout.Write(append(data, '\n'))
		return err
	}
	return errors.Wrap(os.WriteFile(analyzeOutput, data, 0644), "WriteFile")
}
