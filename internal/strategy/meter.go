package strategy

import (
	"github.com/pkg/errors"

	"sigscan/internal/evm"
)

// Meter 分支的gas计量
// 子计量器的上限在首次使用时由父计量器的剩余量按份额计算，
// 消耗会累加到所有祖先，保证所有分支的总消耗不超过根预算
type Meter struct {
	limit    uint64
	used     uint64
	parent   *Meter
	share    uint64
	resolved bool
}

func NewMeter(limit uint64) *Meter {
	return &Meter{
		limit:    limit,
		resolved: true,
	}
}

// Child 创建获得父计量器剩余量 1/share 的子计量器
func (m *Meter) Child(share uint64) *Meter {
	if share == 0 {
		share = 1
	}
	return &Meter{
		parent: m,
		share:  share,
	}
}

// Resolve 计算子计量器的上限，父计量器已耗尽时返回 false
func (m *Meter) Resolve() bool {
	if m.resolved {
		return true
	}
	if m.parent.Exhausted() {
		return false
	}
	m.limit = (m.parent.limit - m.parent.used) / m.share
	m.resolved = true
	return true
}

// Charge 记录消耗，超过上限时返回 false
func (m *Meter) Charge(gas uint64) bool {
	for p := m; p != nil; p = p.parent {
		p.used += gas
	}
	return !m.Exhausted()
}

// Spend 同 Charge，超过上限时返回 evm.ErrGasExhausted
func (m *Meter) Spend(gas uint64) error {
	if !m.Charge(gas) {
		return errors.Wrapf(evm.ErrGasExhausted, "used %d of %d", m.used, m.limit)
	}
	return nil
}

func (m *Meter) Exhausted() bool {
	return m.used > m.limit
}

func (m *Meter) Limit() uint64 {
	return m.limit
}

func (m *Meter) Used() uint64 {
	return m.used
}

// Remaining 剩余可用gas，耗尽时为0
func (m *Meter) Remaining() uint64 {
	if m.used >= m.limit {
		return 0
	}
	return m.limit - m.used
}
