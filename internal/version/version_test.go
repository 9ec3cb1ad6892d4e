package version

import (
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseMajor(t *testing.T) {
	tests := []struct {
		input    string
		expected int
	}{
		{"14.4.1", 14},
		{"13.0", 13},
		{"15", 15},
		{"14.4.1\n", 14},
		{"", 0},
		{"garbage", 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, ParseMajor(tt.input), tt.input)
	}
}

func TestOSMajor_ReturnsZero_WhenToolMissing(t *testing.T) {
	orig := execCommand
	defer func() { execCommand = orig }()
	execCommand = func(name string, args ...string) *exec.Cmd {
		return exec.Command("definitely-not-a-command-xyz")
	}

	assert.Equal(t, 0, OSMajor())
}
