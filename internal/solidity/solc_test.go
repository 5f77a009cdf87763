package solidity

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractVersionFromData(t *testing.T) {
	tests := []struct {
		source   string
		expected string
	}{
		{"// SPDX\npragma solidity ^0.8.17;\ncontract A {}", "^0.8.17"},
		{"  pragma solidity 0.4.24 ;\n", "0.4.24"},
		{"contract A {}", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, ExtractVersionFromData([]byte(tt.source)))
	}
}

const listJSON = `{"builds":[
  {"path":"soljson-v0.8.18-nightly.2022.11.23+commit.eb2f874e.js","version":"0.8.18","prerelease":"nightly.2022.11.23"},
  {"path":"soljson-v0.8.1+commit.df193b15.js","version":"0.8.1"},
  {"path":"soljson-v0.8.17+commit.8df45f5f.js","version":"0.8.17"}
]}`

func TestSolcBinaryMeta(t *testing.T) {
	var requests []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests = append(requests, r.URL.Path)
		switch r.URL.Path {
		case "/" + SolcBinaryMetaFile:
			fmt.Fprint(w, listJSON)
		case "/soljson-v0.8.17+commit.8df45f5f.js":
			fmt.Fprint(w, "// solc")
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	var (
		ctx = context.Background()
		dir = path.Join(t.TempDir(), "solc")
	)
	meta, err := NewSolcBinaryMeta(ctx, dir, server.URL+"/")
	require.Nil(t, err)
	assert.Equal(t, 3, len(meta.Builds))

	file, err := meta.GetSolcBinary(ctx, "^0.8.17")
	require.Nil(t, err)
	assert.Equal(t, path.Join(dir, "soljson-v0.8.17+commit.8df45f5f.js"), file)
	data, err := os.ReadFile(file)
	require.Nil(t, err)
	assert.Equal(t, "// solc", string(data))

	// 已下载的文件不再请求
	_, err = meta.GetSolcBinary(ctx, "0.8.17")
	assert.Nil(t, err)
	_, err = NewSolcBinaryMeta(ctx, dir, server.URL+"/")
	assert.Nil(t, err)
	assert.Equal(t, []string{"/list.json", "/soljson-v0.8.17+commit.8df45f5f.js"}, requests)

	// 只有nightly
	_, err = meta.GetSolcBinary(ctx, "0.8.18")
	assert.NotNil(t, err)
}
