package evm

import (
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
)

const STACK_SIZE = 1024

// Stack 机器栈，栈顶为切片末尾
type Stack struct {
	data []Element
}

func NewStack() *Stack {
	return &Stack{data: make([]Element, 0, 16)}
}

func (s *Stack) Size() int {
	return len(s.data)
}

func (s *Stack) Push(e Element) error {
	if len(s.data) >= STACK_SIZE {
		return ErrStackOverflow
	}
	s.data = append(s.data, e)
	return nil
}

func (s *Stack) PushUint(v *uint256.Int) error {
	return s.Push(NewElement(v))
}

func (s *Stack) PushWord(w Word) error {
	return s.Push(Element{Data: w})
}

func (s *Stack) Pop() (Element, error) {
	if len(s.data) == 0 {
		return Element{}, ErrStackUnderflow
	}
	e := s.data[len(s.data)-1]
	s.data = s.data[:len(s.data)-1]
	return e, nil
}

func (s *Stack) PopUint() (*uint256.Int, error) {
	e, err := s.Pop()
	if err != nil {
		return nil, err
	}
	return e.Uint(), nil
}

// Peek 返回栈顶指针，可原地修改
func (s *Stack) Peek() (*Element, error) {
	return s.Back(0)
}

// Back 返回距栈顶 n 的元素，n=0 为栈顶
func (s *Stack) Back(n int) (*Element, error) {
	if n < 0 || n >= len(s.data) {
		return nil, errors.Wrapf(ErrStackUnderflow, "back %d of %d", n, len(s.data))
	}
	return &s.data[len(s.data)-1-n], nil
}

// Dup 复制第 n 个元素到栈顶，n 从1开始
func (s *Stack) Dup(n int) error {
	e, err := s.Back(n - 1)
	if err != nil {
		return err
	}
	return s.Push(*e)
}

// Swap 交换栈顶与第 n+1 个元素
func (s *Stack) Swap(n int) error {
	if n < 1 || n >= len(s.data) {
		return errors.Wrapf(ErrStackUnderflow, "swap %d of %d", n, len(s.data))
	}
	var (
		a = len(s.data) - 1
		b = len(s.data) - 1 - n
	)
	s.data[a], s.data[b] = s.data[b], s.data[a]
	return nil
}

// Walk 从栈底到栈顶遍历，可原地修改
func (s *Stack) Walk(fn func(e *Element)) {
	for i := range s.data {
		fn(&s.data[i])
	}
}

func (s *Stack) Clone() *Stack {
	r := &Stack{data: make([]Element, len(s.data), cap(s.data))}
	copy(r.data, s.data)
	return r
}
