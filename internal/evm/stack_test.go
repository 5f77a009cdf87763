package evm

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func Test_Stack_Overflow(t *testing.T) {
	s := NewStack()
	for i := 0; i < STACK_SIZE; i++ {
		assert.Nil(t, s.Push(Element{}))
	}
	assert.Equal(t, ErrStackOverflow, s.Push(Element{}))
	assert.Equal(t, ErrStackOverflow, errors.Cause(s.Dup(1)))
}

func Test_Stack_Underflow(t *testing.T) {
	s := NewStack()
	_, err := s.Pop()
	assert.Equal(t, ErrStackUnderflow, err)
	_, err = s.Peek()
	assert.Equal(t, ErrStackUnderflow, errors.Cause(err))
	assert.Equal(t, ErrStackUnderflow, errors.Cause(s.Dup(1)))
	assert.Equal(t, ErrStackUnderflow, errors.Cause(s.Swap(1)))

	assert.Nil(t, s.PushUint(uint256.NewInt(1)))
	assert.Equal(t, ErrStackUnderflow, errors.Cause(s.Dup(2)))
	assert.Equal(t, ErrStackUnderflow, errors.Cause(s.Swap(1)))
	assert.True(t, IsPathError(s.Swap(1)))
}

func Test_Stack_DupSwap(t *testing.T) {
	s := NewStack()
	for i := uint64(1); i <= 5; i++ {
		assert.Nil(t, s.PushUint(uint256.NewInt(i)))
	}
	// 1 2 3 4 5
	assert.Nil(t, s.Swap(3))
	// 1 5 3 4 2
	top, err := s.Peek()
	assert.Nil(t, err)
	assert.Equal(t, uint64(2), top.Uint().Uint64())
	e, err := s.Back(3)
	assert.Nil(t, err)
	assert.Equal(t, uint64(5), e.Uint().Uint64())

	assert.Nil(t, s.Dup(4))
	// 1 5 3 4 2 5
	top, _ = s.Peek()
	assert.Equal(t, uint64(5), top.Uint().Uint64())
	assert.Equal(t, 6, s.Size())
}

func Test_Stack_Clone(t *testing.T) {
	s := NewStack()
	assert.Nil(t, s.Push(Element{Label: KindLabel(LabelCalldata)}))
	c := s.Clone()
	top, _ := c.Peek()
	top.Label = KindLabel(LabelSignature)
	top.Data = word1

	orig, _ := s.Peek()
	assert.Equal(t, LabelCalldata, orig.Label.Kind)
	assert.True(t, orig.Data.IsZero())
}
