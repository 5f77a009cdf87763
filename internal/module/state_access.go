package module

import (
	"sigscan/internal/finding"
)

// StateWrite 修改状态的指令，函数不能是 view
type StateWrite struct {
	*BaseModule
}

func NewStateWrite() *StateWrite {
	return &StateWrite{
		BaseModule: &BaseModule{
			ruleData: RuleDataMap[RuleNotView],
			postHooks: []string{
				"CALL", "CALLCODE", "CREATE", "CREATE2", "DELEGATECALL", "SELFDESTRUCT",
				"SSTORE", "TSTORE", "LOG0", "LOG1", "LOG2", "LOG3", "LOG4",
			},
			Findings: make([]*finding.Finding, 0),
		},
	}
}

func (sw *StateWrite) Execute(ctx *Context) (findings []*finding.Finding, err error) {
	defer func() {
		sw.Findings = append(sw.Findings, findings...)
	}()
	return []*finding.Finding{sw.newFinding(ctx)}, nil
}

// StateRead 读取状态或环境的指令，函数不能是 pure
type StateRead struct {
	*BaseModule
}

func NewStateRead() *StateRead {
	return &StateRead{
		BaseModule: &BaseModule{
			ruleData: RuleDataMap[RuleNotPure],
			postHooks: []string{
				"BALANCE", "BASEFEE", "BLOBBASEFEE", "BLOBHASH", "BLOCKHASH", "CALLER", "CHAINID",
				"COINBASE", "EXTCODECOPY", "EXTCODEHASH", "EXTCODESIZE", "GASLIMIT", "GASPRICE",
				"NUMBER", "ORIGIN", "PREVRANDAO", "SELFBALANCE", "SLOAD", "STATICCALL", "TIMESTAMP",
				"TLOAD",
			},
			Findings: make([]*finding.Finding, 0),
		},
	}
}

func (sr *StateRead) Execute(ctx *Context) (findings []*finding.Finding, err error) {
	defer func() {
		sr.Findings = append(sr.Findings, findings...)
	}()
	return []*finding.Finding{sr.newFinding(ctx)}, nil
}
