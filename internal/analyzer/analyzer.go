// Package analyzer 汇总合约的函数信息，并发处理多个合约
package analyzer

import (
	"context"
	"sort"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"sigscan/internal/arguments"
	"sigscan/internal/config"
	"sigscan/internal/disassembler"
	"sigscan/internal/mutability"
	"sigscan/internal/selectors"
	"sigscan/internal/util"
)

type Analyzer struct {
	cfg *config.Config
}

func New(cfg *config.Config) *Analyzer {
	if cfg == nil {
		cfg = config.Default()
	}
	return &Analyzer{cfg: cfg}
}

// ContractInfo 按选项分析一份运行时代码
func (a *Analyzer) ContractInfo(code []byte, opts Options) *Contract {
	c := &Contract{CodeHash: util.GetCodeHash(code)}

	if opts.Selectors || opts.Arguments || opts.StateMutability {
		found, gasUsed := selectors.Extract(code, a.cfg.SelectorsGas)
		log.Debugf("%d selectors, gas used %d", len(found), gasUsed)
		keys := make([][4]byte, 0, len(found))
		for sel := range found {
			keys = append(keys, sel)
		}
		sort.Slice(keys, func(i, j int) bool {
			return common.Bytes2Hex(keys[i][:]) < common.Bytes2Hex(keys[j][:])
		})
		for _, sel := range keys {
			c.Functions = append(c.Functions, a.function(code, sel, found[sel], opts))
		}
	}
	if opts.Disassemble || opts.BasicBlocks {
		d := disassembler.NewDisassembly(code)
		if opts.Disassemble {
			for _, ins := range d.GetInstructions() {
				c.Disassembled = append(c.Disassembled, Instruction{Offset: ins.Address, Opcode: ins.String()})
			}
		}
		if opts.BasicBlocks {
			c.BasicBlocks = d.GetBasicBlocks()
		}
	}
	return c
}

// Function 只分析一个选择器，分发器中没有该选择器时返回 false
func (a *Analyzer) Function(code []byte, sel [4]byte, opts Options) (*Function, bool) {
	found, _ := selectors.Extract(code, a.cfg.SelectorsGas)
	offset, ok := found[sel]
	if !ok {
		return nil, false
	}
	f := a.function(code, sel, offset, opts)
	return &f, true
}

func (a *Analyzer) function(code []byte, sel [4]byte, offset int, opts Options) Function {
	f := Function{
		Selector:       common.Bytes2Hex(sel[:]),
		BytecodeOffset: offset,
	}
	if opts.Arguments {
		args := arguments.Signature(code, sel, a.cfg.ArgumentsGas)
		f.Arguments = &args
	}
	if opts.StateMutability {
		r := mutability.Analyze(code, sel, a.cfg.MutabilityGas)
		m := string(r.Mutability)
		f.StateMutability = &m
		if opts.Explain {
			f.Findings = r.Findings
		}
	}
	return f
}

// Report 单个输入的分析结果
type Report struct {
	Name     string
	Duration time.Duration
	Contract *Contract
}

// Run 并发分析，并发数不超过 Workers，结果与输入顺序一致
func (a *Analyzer) Run(ctx context.Context, inputs []Input, opts Options) ([]*Report, error) {
	var (
		reports   = make([]*Report, len(inputs))
		startTime = time.Now()
	)
	g, gctx := errgroup.WithContext(ctx)
	workers := a.cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	g.SetLimit(workers)
	for i := range inputs {
		i := i
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			log.Infof("analyzing contract %s", inputs[i].Name)
			start := time.Now()
			c := a.ContractInfo(inputs[i].Code, opts)
			reports[i] = &Report{
				Name:     inputs[i].Name,
				Duration: time.Since(start),
				Contract: c,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, errors.Wrap(err, "Run")
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, "Run")
	}
	log.Infof("%d contracts analyzed in %.2fs", len(inputs), time.Since(startTime).Seconds())
	return reports, nil
}
