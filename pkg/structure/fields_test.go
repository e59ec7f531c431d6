package structure

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitFields(t *testing.T) {
	tests := []struct {
		name string
		line string
		want []string
	}{
		{"plain", "ATOM 1 N", []string{"ATOM", "1", "N"}},
		{"extra whitespace", "  ATOM\t1   N  ", []string{"ATOM", "1", "N"}},
		{"single quoted", "ATOM 'C1 X' N", []string{"ATOM", "C1 X", "N"}},
		{"double quoted", `ATOM "O5'" N`, []string{"ATOM", "O5'", "N"}},
		{"embedded quote", "ATOM O5' N", []string{"ATOM", "O5'", "N"}},
		{"unterminated", "ATOM 'abc", []string{"ATOM", "'abc"}},
		{"empty", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, splitFields(tt.line))
		})
	}
}

func TestSplitModelNumber(t *testing.T) {
	prefix, n, err := splitModelNumber("ATOM 1 N GLY 12  ")
	assert.NoError(t, err)
	assert.Equal(t, "ATOM 1 N GLY ", prefix)
	assert.Equal(t, 12, n)

	_, _, err = splitModelNumber("ATOM 1 N GLY 0")
	assert.Error(t, err)

	_, _, err = splitModelNumber("ATOM")
	assert.Error(t, err)
}
