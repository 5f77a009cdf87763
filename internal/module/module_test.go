package module

import (
	"testing"

	"sigscan/internal/evm"
	"sigscan/internal/finding"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newVM(t *testing.T, code string) *evm.VM {
	data, err := evm.DecodeHex(code)
	require.Nil(t, err)
	return evm.New(data, evm.NewCalldata([]byte{1, 2, 3, 4}, 4, evm.NoLabel))
}

// run 执行并返回所有 finding
func run(t *testing.T, mm *ModuleManager, vm *evm.VM) []*finding.Finding {
	var all []*finding.Finding
	for !vm.Stopped() {
		pc := vm.PC()
		ret, err := vm.Step()
		require.Nil(t, err)
		fs, err := mm.ExecutePostHooks(&Context{VM: vm, Step: ret, PC: pc})
		require.Nil(t, err)
		all = append(all, fs...)
	}
	return all
}

func TestModuleManager_Hooks(t *testing.T) {
	mm := NewModuleManager()
	sw, sr := NewStateWrite(), NewStateRead()
	mm.AddModule(sw)
	mm.AddModule(sr)
	assert.Len(t, mm.Modules, 2)
	assert.Len(t, mm.PostHooks["SSTORE"], 1)
	assert.Len(t, mm.PostHooks["SLOAD"], 1)
	assert.Len(t, mm.PostHooks["LOG2"], 1)
	assert.Empty(t, mm.PostHooks["ADD"])

	// PUSH0 SLOAD PUSH0 SSTORE CALLER POP STOP
	fs := run(t, mm, newVM(t, "5f545f55335000"))
	require.Len(t, fs, 3)
	assert.Equal(t, RuleNotPure, fs[0].ID)
	assert.Equal(t, "SLOAD", fs[0].Op)
	assert.Equal(t, 1, fs[0].Address)
	assert.Equal(t, RuleNotView, fs[1].ID)
	assert.Equal(t, 3, fs[1].Address)
	assert.Equal(t, "CALLER", fs[2].Op)

	assert.Len(t, sw.GetFindings(), 1)
	assert.Len(t, sr.GetFindings(), 2)
	assert.Equal(t, RuleDataMap[RuleNotView], sw.GetRuleData())
}

func TestModuleManager_UnknownHook(t *testing.T) {
	m := &StateWrite{BaseModule: &BaseModule{
		ruleData:  RuleDataMap[RuleNotView],
		postHooks: []string{"SSTORE", "SHA3", "sstore"},
	}}
	mm := NewModuleManager()
	mm.AddModule(m)
	assert.Len(t, mm.Modules, 1)
	assert.Len(t, mm.PostHooks, 1)
	assert.Len(t, mm.PostHooks["SSTORE"], 1)
}

func TestCallValueGuard(t *testing.T) {
	tests := []struct {
		name  string
		code  string
		guard bool
	}{
		// CALLVALUE DUP1 ISZERO PUSH1 9 JUMPI PUSH0 DUP1 REVERT JUMPDEST
		{"iszero guard", "3480156009575f80fd5b", true},
		// CALLVALUE ISZERO PUSH1 8 JUMPI PUSH0 DUP1 RETURN JUMPDEST: 返回而不是回滚
		{"return", "3415600857" + "5f80f35b", false},
		// CALLVALUE PUSH1 5 JUMPI STOP JUMPDEST PUSH0 DUP1 REVERT
		{"revert when value", "3460055700" + "5b5f80fd", true},
		// PUSH1 32 PUSH0 REVERT: 与 callvalue 无关
		{"plain revert", "60205ffd", false},
	}
	for _, tt := range tests {
		mm := NewModuleManager()
		guard := NewCallValueGuard(1)
		mm.AddModule(guard)
		fs := run(t, mm, newVM(t, tt.code))
		assert.Equal(t, tt.guard, len(fs) > 0, tt.name)
		if tt.guard {
			assert.Equal(t, RuleNonPayable, fs[0].ID, tt.name)
		}
	}
}
