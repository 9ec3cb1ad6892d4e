package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/djherbis/times"
	"golang.org/x/sys/unix"
)

var osUserHomeDir = os.UserHomeDir

// HomeDir returns the current user's home directory, or "/" when it cannot
// be resolved.
func HomeDir() string {
	home, err := osUserHomeDir()
	if err != nil || home == "" {
		return "/"
	}
	return home
}

// ExpandPath resolves a leading "~/" against the user's home directory.
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := osUserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

// FormatSize renders a byte count as a human-readable string.
func FormatSize(bytes int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
		TB = GB * 1024
	)

	switch {
	case bytes >= TB:
		return fmt.Sprintf("%.1f TB", float64(bytes)/TB)
	case bytes >= GB:
		return fmt.Sprintf("%.1f GB", float64(bytes)/GB)
	case bytes >= MB:
		return fmt.Sprintf("%.1f MB", float64(bytes)/MB)
	case bytes >= KB:
		return fmt.Sprintf("%.1f KB", float64(bytes)/KB)
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}

// FormatAge formats a time.Time as a short age string.
// Examples: "5m", "3h", "7d", "2mo", "1y"
func FormatAge(t time.Time) string {
	if t.IsZero() {
		return "-"
	}

	duration := time.Since(t)

	minutes := int(duration.Minutes())
	hours := int(duration.Hours())
	days := hours / 24
	months := days / 30
	years := days / 365

	switch {
	case hours < 1:
		if minutes < 1 {
			return "<1m"
		}
		return fmt.Sprintf("%dm", minutes)
	case hours < 24:
		return fmt.Sprintf("%dh", hours)
	case days < 30:
		return fmt.Sprintf("%dd", days)
	case months < 12:
		return fmt.Sprintf("%dmo", months)
	default:
		return fmt.Sprintf("%dy", years)
	}
}

// PathExists reports whether the (tilde-expanded) path exists.
func PathExists(path string) bool {
	expanded := ExpandPath(path)
	_, err := os.Stat(expanded)
	return err == nil
}

// GlobPaths expands a glob pattern after tilde expansion.
func GlobPaths(pattern string) ([]string, error) {
	expanded := ExpandPath(pattern)
	return filepath.Glob(expanded)
}

// FileTimes carries the extended timestamps not exposed by os.FileInfo.
// Created falls back to the modified time on filesystems without birth time.
type FileTimes struct {
	Created  time.Time
	Modified time.Time
	Accessed time.Time
}

// StatTimes resolves created/modified/accessed timestamps for a path.
func StatTimes(path string, modified time.Time) FileTimes {
	ft := FileTimes{Created: modified, Modified: modified, Accessed: modified}

	ts, err := times.Stat(path)
	if err != nil {
		return ft
	}
	ft.Accessed = ts.AccessTime()
	if ts.HasBirthTime() {
		ft.Created = ts.BirthTime()
	}
	return ft
}

// StatPermissions resolves the effective access triple for a path. Deletable
// means the parent directory is writable, which is what unlink(2) checks.
func StatPermissions(path string) (readable, writable, deletable bool) {
	readable = unix.Access(path, unix.R_OK) == nil
	writable = unix.Access(path, unix.W_OK) == nil
	deletable = unix.Access(filepath.Dir(path), unix.W_OK) == nil
	return readable, writable, deletable
}
