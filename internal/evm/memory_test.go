package evm

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func labelN(n uint32) Label {
	return ArgLabel(ArgVal{Offset: n})
}

func TestMemory_Empty(t *testing.T) {
	m := NewMemory()
	w, used := m.Load(0)
	assert.True(t, w.IsZero())
	assert.Empty(t, used)
	assert.Equal(t, uint64(0), m.Size())
}

func TestMemory_StoreOverwrite(t *testing.T) {
	m := NewMemory()
	m.Store(0, bytes.Repeat([]byte{1}, 32), labelN(1))
	m.Store(16, bytes.Repeat([]byte{2}, 32), labelN(2))

	w, used := m.Load(0)
	var expected Word
	copy(expected[:16], bytes.Repeat([]byte{1}, 16))
	copy(expected[16:], bytes.Repeat([]byte{2}, 16))
	assert.Equal(t, expected, w)
	assert.Equal(t, []Label{labelN(1), labelN(2)}, used)
	assert.Equal(t, uint64(48), m.Size())
}

func TestMemory_PartialWrites(t *testing.T) {
	m := NewMemory()
	m.Store(0, bytes.Repeat([]byte{1}, 10), labelN(1))
	m.Store(5, bytes.Repeat([]byte{2}, 10), labelN(2))
	m.Store(20, bytes.Repeat([]byte{3}, 10), labelN(3))
	m.Store(40, bytes.Repeat([]byte{4}, 10), labelN(4))

	w, used := m.Load(0)
	expected := Word{
		1, 1, 1, 1, 1, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 0,
		0, 0, 0, 0, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 0, 0,
	}
	assert.Equal(t, expected, w)
	assert.Len(t, used, 3)
	assert.Equal(t, uint64(50), m.Size())
}

func TestMemory_UnlabeledWrites(t *testing.T) {
	m := NewMemory()
	m.Store(0, bytes.Repeat([]byte{1}, 32), KindLabel(LabelCalldata))
	m.Store(0, bytes.Repeat([]byte{1}, 32), NoLabel)
	_, used := m.Load(0)
	assert.Empty(t, used)
}

func TestMemory_LastAtAndClone(t *testing.T) {
	m := NewMemory()
	m.Store(64, []byte{1}, NoLabel)
	m.Store(64, []byte{2}, NoLabel)
	m.Store(65, []byte{3}, NoLabel)

	r := m.LastAt(64)
	assert.NotNil(t, r)
	assert.Equal(t, []byte{2}, r.Data)
	assert.Nil(t, m.LastAt(66))

	c := m.Clone()
	c.LastAt(64).Label = KindLabel(LabelCalldata)
	c.LastAt(64).Data = []byte{9}
	assert.Equal(t, LabelNone, m.LastAt(64).Label.Kind)
	assert.Equal(t, []byte{2}, m.LastAt(64).Data)
}
