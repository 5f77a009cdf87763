package module

import (
	"sigscan/internal/evm"
	"sigscan/internal/finding"
	"sigscan/internal/opcode"

	"github.com/pkg/errors"
)

// CallValueGuard 识别 "if (msg.value != 0) revert()" 形式的检查
// CALLVALUE 返回 callValue 并打上标签，标签经 ISZERO 传递到 JUMPI 条件，
// 紧随其后的空数据 REVERT 说明函数不接受转账
type CallValueGuard struct {
	*BaseModule
	callValue      uint64
	lastJumpiGuard bool
}

func NewCallValueGuard(callValue uint64) *CallValueGuard {
	return &CallValueGuard{
		BaseModule: &BaseModule{
			ruleData:  RuleDataMap[RuleNonPayable],
			postHooks: []string{"CALLVALUE", "ISZERO", "JUMPI", "REVERT"},
			Findings:  make([]*finding.Finding, 0),
		},
		callValue: callValue,
	}
}

func (g *CallValueGuard) Execute(ctx *Context) (findings []*finding.Finding, err error) {
	defer func() {
		g.Findings = append(g.Findings, findings...)
	}()

	switch ctx.Step.Op {
	case opcode.CALLVALUE:
		top, err := ctx.VM.Stack.Peek()
		if err != nil {
			return nil, errors.Wrap(err, "Peek")
		}
		top.Data = evm.WordFromUint64(g.callValue)
		top.Label = evm.KindLabel(evm.LabelCallValue)

	case opcode.ISZERO:
		if ctx.Step.First.Label.Kind != evm.LabelCallValue {
			return nil, nil
		}
		top, err := ctx.VM.Stack.Peek()
		if err != nil {
			return nil, errors.Wrap(err, "Peek")
		}
		top.Label = evm.KindLabel(evm.LabelCallValueIsZero)

	case opcode.JUMPI:
		g.lastJumpiGuard = ctx.Step.Second.Label.Is(evm.LabelCallValue, evm.LabelCallValueIsZero)

	case opcode.REVERT:
		if g.lastJumpiGuard && ctx.Step.Second.Data.IsZero() {
			return []*finding.Finding{g.newFinding(ctx)}, nil
		}
	}
	return nil, nil
}
