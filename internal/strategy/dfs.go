package strategy

import (
	"github.com/pkg/errors"
)

// DFS 深度优先搜索策略
// 后压入的分支先执行，调用方按逆序压入子分支即可得到递归展开的顺序
type DFS struct {
	branches []*Branch
}

func NewDFS() *DFS {
	return &DFS{
		branches: make([]*Branch, 0),
	}
}

func (dfs *DFS) Size() int {
	return len(dfs.branches)
}

func (dfs *DFS) HasNext() bool {
	return len(dfs.branches) > 0
}

func (dfs *DFS) Pop() (*Branch, error) {
	if len(dfs.branches) <= 0 {
		return nil, errors.New("branch queue is empty")
	}
	branch := dfs.branches[len(dfs.branches)-1]
	dfs.branches = dfs.branches[:len(dfs.branches)-1]
	return branch, nil
}

func (dfs *DFS) Push(branches ...*Branch) error {
	dfs.branches = append(dfs.branches, branches...)
	return nil
}
