package module

import (
	"sigscan/internal/finding"
	"sigscan/internal/opcode"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

type Hook func(*Context) ([]*finding.Finding, error)

type ModuleManager struct {
	Modules   []DetectionModule
	PostHooks map[string][]Hook
}

func NewModuleManager() *ModuleManager {
	return &ModuleManager{
		Modules:   make([]DetectionModule, 0),
		PostHooks: make(map[string][]Hook),
	}
}

func (mm *ModuleManager) AddModule(dm DetectionModule) {
	mm.Modules = append(mm.Modules, dm)
	for _, opCode := range dm.GetPostHooks() {
		// 名称必须与操作码表一致，否则 hook 永远不会触发
		if _, ok := opcode.GetOPCodeInfoByName(opcode.Operation(opCode)); !ok {
			log.Warnf("module %s: unknown opcode %s", dm.GetRuleData().ID, opCode)
			continue
		}
		mm.PostHooks[opCode] = append(mm.PostHooks[opCode], dm.Execute)
	}
}

// ExecutePostHooks 执行挂在当前指令上的hook
func (mm *ModuleManager) ExecutePostHooks(ctx *Context) ([]*finding.Finding, error) {
	hooks, ok := mm.PostHooks[ctx.Step.Op.String()]
	if !ok {
		return nil, nil
	}
	var findings []*finding.Finding
	for _, hook := range hooks {
		fs, err := hook(ctx)
		if err != nil {
			return findings, errors.Wrapf(err, "hook %s", ctx.Step.Op)
		}
		findings = append(findings, fs...)
	}
	return findings, nil
}
