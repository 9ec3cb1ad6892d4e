package utils

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"
)

// Finder can hang on network volumes; cap how long one trash request may
// take.
const finderTimeout = 30 * time.Second

// MoveToTrash asks Finder to move the path into the Trash, keeping the
// removal recoverable from there. Declared as a variable so tests can swap
// in a recorder.
var MoveToTrash = finderTrash

func finderTrash(path string) error {
	literal, err := appleScriptLiteral(path)
	if err != nil {
		return fmt.Errorf("trash %s: %w", path, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), finderTimeout)
	defer cancel()

	script := fmt.Sprintf(`tell application "Finder" to delete POSIX file "%s"`, literal)
	if err := exec.CommandContext(ctx, "osascript", "-e", script).Run(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("trash %s: Finder gave no answer within %s", path, finderTimeout)
		}
		return fmt.Errorf("trash %s: %w", path, err)
	}
	return nil
}
