// Package version exposes the build version and the host OS release used to
// gate version-dependent protected paths.
package version

import (
	"os/exec"
	"strconv"
	"strings"
)

// Version is set via ldflags: go build -ldflags "-X .../version.Version=1.0.0"
var Version = "dev"

var execCommand = exec.Command

// OSMajor returns the macOS major release number, or 0 when it cannot be
// determined.
func OSMajor() int {
	cmd := execCommand("sw_vers", "-productVersion")
	output, err := cmd.Output()
	if err != nil {
		return 0
	}
	return ParseMajor(string(output))
}

// ParseMajor extracts the major component from a version string like
// "14.4.1".
func ParseMajor(v string) int {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0
	}
	major, err := strconv.Atoi(strings.SplitN(v, ".", 2)[0])
	if err != nil {
		return 0
	}
	return major
}
