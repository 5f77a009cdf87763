package sigscan

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sigscan/internal/util"
)

// function getValue(uint32) pure returns (uint32)
const fixtureCode = "0x6080604052348015600e575f80fd5b50600436106026575f3560e01c8063fae7ab8214602a575b5f80fd5b603960353660046062565b6052565b60405163ffffffff909116815260200160405180910390f35b5f605c826001608a565b92915050565b5f602082840312156071575f80fd5b813563ffffffff811681146083575f80fd5b9392505050565b63ffffffff8181168382160190811115605c57634e487b7160e01b5f52601160045260245ffd"

func TestFixture(t *testing.T) {
	sels, err := FunctionSelectors(fixtureCode, 0)
	require.Nil(t, err)
	assert.Equal(t, []string{"fae7ab82"}, sels)

	args, err := FunctionArguments(fixtureCode, "fae7ab82", 0)
	require.Nil(t, err)
	assert.Equal(t, "uint32", args)

	m, err := FunctionStateMutability(fixtureCode, "0xfae7ab82", 0)
	require.Nil(t, err)
	assert.Equal(t, "pure", m)
}

func TestDeterministic(t *testing.T) {
	first, err := ContractInfo(fixtureCode, Options{Arguments: true, StateMutability: true})
	require.Nil(t, err)
	for i := 0; i < 3; i++ {
		again, err := ContractInfo(fixtureCode, Options{Arguments: true, StateMutability: true})
		require.Nil(t, err)
		assert.Equal(t, first, again)
	}
	require.Equal(t, 1, len(first.Functions))
	assert.Equal(t, 0x2a, first.Functions[0].BytecodeOffset)
}

func TestEmptyAndUnknown(t *testing.T) {
	sels, err := FunctionSelectors("", 0)
	assert.Nil(t, err)
	assert.Empty(t, sels)

	args, err := FunctionArguments(fixtureCode, "01020304", 0)
	assert.Nil(t, err)
	assert.Equal(t, "", args)
}

func TestMalformed(t *testing.T) {
	_, err := FunctionSelectors("0xzz", 0)
	assert.Equal(t, ErrMalformedHex, errors.Cause(err))

	_, err = FunctionArguments(fixtureCode, "fae7ab", 0)
	assert.Equal(t, ErrMalformedHex, errors.Cause(err))

	_, err = FunctionStateMutability("6g", "fae7ab82", 0)
	assert.Equal(t, ErrMalformedHex, errors.Cause(err))

	_, err = ContractInfo("0x0x", Options{})
	assert.Equal(t, ErrMalformedHex, errors.Cause(err))
}

func TestParseSelector(t *testing.T) {
	sel, err := ParseSelector("0xa9059cbb")
	require.Nil(t, err)
	assert.Equal(t, util.Selector("transfer(address,uint256)"), sel)
}
