package evm

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Record 一次内存写入
type Record struct {
	Offset uint32
	Data   []byte
	Label  Label
}

func (r *Record) covers(i uint64) bool {
	return i >= uint64(r.Offset) && i < uint64(r.Offset)+uint64(len(r.Data))
}

// Memory 内存
// 只追加写入记录，读取时按时间倒序逐字节合成
// 记录的 Data 只整体替换，不原地修改，Clone 之间可共享底层数组
type Memory struct {
	records []Record
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Store(offset uint32, data []byte, label Label) {
	m.records = append(m.records, Record{Offset: offset, Data: data, Label: label})
}

// Load 读取 offset 处的32字节，返回参与合成的写入记录的标签（去重）
func (m *Memory) Load(offset uint32) (Word, []Label) {
	var (
		w    Word
		used []Label
	)
	for idx := 0; idx < WordSize; idx++ {
		i := uint64(offset) + uint64(idx)
		for k := len(m.records) - 1; k >= 0; k-- {
			r := &m.records[k]
			if !r.covers(i) {
				continue
			}
			w[idx] = r.Data[i-uint64(r.Offset)]
			if r.Label.Kind != LabelNone && !containsLabel(used, r.Label) {
				used = append(used, r.Label)
			}
			break
		}
	}
	return w, used
}

// Size 最高写入位置
func (m *Memory) Size() uint64 {
	var size uint64
	for i := range m.records {
		if end := uint64(m.records[i].Offset) + uint64(len(m.records[i].Data)); end > size {
			size = end
		}
	}
	return size
}

// LastAt 最近一次恰好写在 offset 处的记录
func (m *Memory) LastAt(offset uint32) *Record {
	for k := len(m.records) - 1; k >= 0; k-- {
		if m.records[k].Offset == offset {
			return &m.records[k]
		}
	}
	return nil
}

// Walk 遍历所有写入记录，可原地替换字段
func (m *Memory) Walk(fn func(r *Record)) {
	for i := range m.records {
		fn(&m.records[i])
	}
}

func (m *Memory) Clone() *Memory {
	r := &Memory{records: make([]Record, len(m.records))}
	copy(r.records, m.records)
	return r
}

func (m *Memory) String() string {
	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("%d elems:", len(m.records)))
	for _, r := range m.records {
		builder.WriteString(fmt.Sprintf("\n  - %d: %s | %s", r.Offset, common.Bytes2Hex(r.Data), r.Label))
	}
	return builder.String()
}

func containsLabel(labels []Label, l Label) bool {
	for i := range labels {
		if labels[i].Equal(l) {
			return true
		}
	}
	return false
}
