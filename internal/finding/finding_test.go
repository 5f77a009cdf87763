package finding

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFinding_String(t *testing.T) {
	f := &Finding{
		ID:          "not-view",
		Title:       "State write",
		Description: "writes state",
		Address:     0x2a,
		Op:          "SSTORE",
	}
	s := f.String()
	assert.True(t, strings.Contains(s, "ID: not-view"))
	assert.True(t, strings.Contains(s, "At pc 0x2a: SSTORE"))
	assert.True(t, strings.HasPrefix(s, "\033[31m"))
	assert.Equal(t, "\033[33mx\033[0m", Colour(33, "x"))
}
