package module

import (
	"sigscan/internal/evm"
	"sigscan/internal/finding"
)

// Context 一条指令执行后的现场
type Context struct {
	VM   *evm.VM
	Step *evm.StepResult
	PC   int // 已执行指令的pc
}

type BaseModule struct {
	ruleData  *RuleData // 规则信息
	postHooks []string  // 在这些指令执行后，执行本模块的hook
	Findings  []*finding.Finding
}

func (bm *BaseModule) Execute(ctx *Context) ([]*finding.Finding, error) {
	return nil, nil
}

func (bm *BaseModule) GetPostHooks() []string {
	return bm.postHooks
}

func (bm *BaseModule) GetRuleData() *RuleData {
	return bm.ruleData
}

func (bm *BaseModule) GetFindings() []*finding.Finding {
	return bm.Findings
}

// newFinding 按规则信息生成 finding
func (bm *BaseModule) newFinding(ctx *Context) *finding.Finding {
	return &finding.Finding{
		ID:          bm.ruleData.ID,
		Title:       bm.ruleData.Title,
		Description: bm.ruleData.Description,
		Address:     ctx.PC,
		Op:          ctx.Step.Op.String(),
	}
}

type DetectionModule interface {
	Execute(*Context) ([]*finding.Finding, error)
	GetPostHooks() []string
	GetRuleData() *RuleData
	GetFindings() []*finding.Finding
}
