package util

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetCodeHash(t *testing.T) {
	assert.Equal(t, "0xc5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470", GetCodeHash(nil))
}

func TestSelector(t *testing.T) {
	assert.Equal(t, [4]byte{0xa9, 0x05, 0x9c, 0xbb}, Selector("transfer(address,uint256)"))
	assert.Equal(t, [4]byte{0x70, 0xa0, 0x82, 0x31}, Selector("balanceOf(address)"))
}

func TestFileExists(t *testing.T) {
	dir := t.TempDir()
	ok, err := FileExists(filepath.Join(dir, "missing"))
	assert.Nil(t, err)
	assert.False(t, ok)

	file := filepath.Join(dir, "present")
	require.Nil(t, os.WriteFile(file, nil, 0644))
	ok, err = FileExists(file)
	assert.Nil(t, err)
	assert.True(t, ok)
}

func TestDownloadFile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/list.json" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		fmt.Fprint(w, `{"builds":[]}`)
	}))
	defer server.Close()

	var (
		ctx  = context.Background()
		dir  = t.TempDir()
		file = filepath.Join(dir, "list.json")
	)
	require.Nil(t, DownloadFile(ctx, file, server.URL+"/list.json"))
	data, err := os.ReadFile(file)
	require.Nil(t, err)
	assert.Equal(t, `{"builds":[]}`, string(data))

	missing := filepath.Join(dir, "missing.json")
	assert.NotNil(t, DownloadFile(ctx, missing, server.URL+"/missing.json"))
	ok, _ := FileExists(missing)
	assert.False(t, ok)
}
