package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sigscan/internal/analyzer"
	"sigscan/internal/disassembler"
	"sigscan/internal/solidity"
)

const twoFuncCode = "6080604052348015600e575f80fd5b50600436106030575f3560e01c80632125b65b146034578063b69ef8a8146044575b5f80fd5b6044603f3660046046565b505050565b005b5f805f606084860312156057575f80fd5b833563ffffffff811681146069575f80fd5b925060208401356001600160a01b03811681146083575f80fd5b915060408401356001600160e01b0381168114609d575f80fd5b80915050925092509256"

func TestArgumentList(t *testing.T) {
	tests := []struct {
		signature string
		expected  string
	}{
		{"transfer(address,uint256)", "address,uint256"},
		{"totalSupply()", ""},
		{"f((uint256,address),bool[])", "(uint256,address),bool[]"},
		{"broken", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, argumentList(tt.signature), tt.signature)
	}
}

func TestCompareContract(t *testing.T) {
	c := solidity.NewEVMContract(twoFuncCode, "a.sol:A", map[string]string{
		"save(uint32,address,uint224)": "2125b65b",
		"balance(uint256)":             "b69ef8a8",
		"missing()":                    "01020304",
	})
	info := analyzer.New(nil).ContractInfo(c.Code, analyzer.Options{Arguments: true})
	assert.Equal(t, []Mismatch{
		{Selector: "01020304", Expected: "missing()", Actual: NotFound},
		{Selector: "b69ef8a8", Expected: "uint256", Actual: ""},
	}, compareContract(c, info))

	c.MethodIdentifiers = map[string]string{"save(uint32,address,uint224)": "2125b65b"}
	assert.Equal(t, []Mismatch{
		{Selector: "b69ef8a8", Expected: NotFound, Actual: ""},
	}, compareContract(c, info))
}

func TestModeOptions(t *testing.T) {
	for _, mode := range []string{"selectors", "arguments", "mutability", "blocks", "info"} {
		_, err := modeOptions(mode)
		assert.Nil(t, err, mode)
	}
	_, err := modeOptions("storage")
	assert.NotNil(t, err)
}

func TestBuildOutput(t *testing.T) {
	var (
		a      = analyzer.New(nil)
		code   = common.Hex2Bytes(twoFuncCode)
		report = func(opts analyzer.Options) []*analyzer.Report {
			return []*analyzer.Report{{Name: "a.json", Duration: 5 * time.Microsecond, Contract: a.ContractInfo(code, opts)}}
		}
	)

	data, err := json.Marshal(buildOutput("selectors", report(analyzer.Options{Selectors: true}), nil))
	require.Nil(t, err)
	assert.JSONEq(t, `{"a.json": [5, ["2125b65b", "b69ef8a8"]]}`, string(data))

	expected := map[string][]string{"a.json": {"2125b65b", "01020304"}}
	data, err = json.Marshal(buildOutput("arguments", report(analyzer.Options{Arguments: true}), expected))
	require.Nil(t, err)
	assert.JSONEq(t, `{"a.json": [5, {"2125b65b": "uint32,address,uint224", "01020304": "notfound"}]}`, string(data))

	data, err = json.Marshal(buildOutput("mutability", report(analyzer.Options{StateMutability: true}), nil))
	require.Nil(t, err)
	assert.JSONEq(t, `{"a.json": [5, {"2125b65b": "pure", "b69ef8a8": "pure"}]}`, string(data))
}

func TestReadSelectors(t *testing.T) {
	file := filepath.Join(t.TempDir(), "selectors.json")
	require.Nil(t, os.WriteFile(file, []byte(`{"a.json": [12, ["2125b65b"]], "b.json": [3, []]}`), 0644))
	sels, err := readSelectors(file)
	require.Nil(t, err)
	assert.Equal(t, map[string][]string{"a.json": {"2125b65b"}, "b.json": {}}, sels)

	require.Nil(t, os.WriteFile(file, []byte(`{"a.json": [12, "x"]}`), 0644))
	_, err = readSelectors(file)
	assert.NotNil(t, err)
}

func TestCodeFlags(t *testing.T) {
	f := codeFlags{code: "0x5f00"}
	code, err := f.load()
	require.Nil(t, err)
	assert.Equal(t, []byte{0x5f, 0x00}, code)

	file := filepath.Join(t.TempDir(), "a.json")
	require.Nil(t, os.WriteFile(file, []byte(`{"code": "0x00"}`), 0644))
	f = codeFlags{file: file}
	code, err = f.load()
	require.Nil(t, err)
	assert.Equal(t, []byte{0x00}, code)

	_, err = (&codeFlags{}).load()
	assert.NotNil(t, err)
}

func TestSelectorEntries(t *testing.T) {
	d := disassembler.NewDisassembly(common.FromHex(twoFuncCode))
	entries, unreached := selectorEntries(d, 0)
	assert.Equal(t, []selectorEntry{
		{Selector: "0x2125b65b", Offset: 0x34, Entry: "JUMPDEST", Pattern: true},
		{Selector: "0xb69ef8a8", Offset: 0x44, Entry: "JUMPDEST", Pattern: true},
	}, entries)
	assert.Empty(t, unreached)

	// PUSH0 CALLDATALOAD PUSH4 11223344 EQ POP STOP: 没有取出选择器
	d = disassembler.NewDisassembly(common.FromHex("5f356311223344145000"))
	entries, unreached = selectorEntries(d, 0)
	assert.Empty(t, entries)
	assert.Equal(t, []string{"0x11223344"}, unreached)
}
