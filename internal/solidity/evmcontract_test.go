package solidity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_replaceAddress(t *testing.T) {
	var testCases = []struct {
		Code     string
		Expected string
	}{
		{
			"(__aa.dddddddddddddddddddddddddddddddddddddd)",
			"(aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaddd)",
		},
		{
			"(__55.999ddddddddddddddddddddddddddddd123)",
			"(aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa)",
		},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.Expected, replaceAddress(tc.Code))
	}
}

const compilerOutputJSON = `{
  "contracts": {
    "a.sol": {
      "Token": {
        "evm": {
          "deployedBytecode": {"object": "5f3560e01c00"},
          "methodIdentifiers": {
            "transfer(address,uint256)": "a9059cbb",
            "balanceOf(address)": "70a08231"
          }
        }
      },
      "IToken": {
        "evm": {"deployedBytecode": {"object": ""}, "methodIdentifiers": {"totalSupply()": "18160ddd"}}
      },
      "Lib": {
        "evm": {"deployedBytecode": {"object": "73__$1234567890abcdef1234567890abcdef12$__00"}, "methodIdentifiers": {}}
      }
    }
  },
  "errors": [{"severity": "warning", "formattedMessage": "unused variable"}]
}`

func Test_parseOutput(t *testing.T) {
	contracts, err := parseOutput([]byte(compilerOutputJSON))
	require.Nil(t, err)
	require.Equal(t, 2, len(contracts))

	lib, token := contracts[0], contracts[1]
	assert.Equal(t, "a.sol:Lib", lib.Name)
	assert.Equal(t, 22, len(lib.Code))
	assert.Equal(t, byte(0xaa), lib.Code[1])

	assert.Equal(t, "a.sol:Token", token.Name)
	assert.Equal(t, []byte{0x5f, 0x35, 0x60, 0xe0, 0x1c, 0x00}, token.Code)
	assert.Equal(t, []string{"70a08231", "a9059cbb"}, token.Selectors())
	assert.Equal(t, "0 PUSH0\n1 CALLDATALOAD\n2 PUSH1 e0\n4 SHR\n5 STOP\n", token.GetEASM())
	assert.Equal(t, 66, len(token.BytecodeHash()))
}

func Test_parseOutputError(t *testing.T) {
	_, err := parseOutput([]byte(`{"errors":[{"severity":"error","formattedMessage":"ParserError: expected ';'\n"}]}`))
	assert.NotNil(t, err)
	assert.Contains(t, err.Error(), "ParserError")

	_, err = parseOutput([]byte(`not json`))
	assert.NotNil(t, err)
}
