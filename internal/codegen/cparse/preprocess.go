package cparse

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Preprocess runs the C preprocessor over path and returns its output.
// Line markers are suppressed with -P so the result parses as plain C.
func Preprocess(ctx context.Context, cpp, path string, args []string) ([]byte, error) {
	argv := make([]string, 0, len(args)+2)
	argv = append(argv, "-P")
	argv = append(argv, args...)
	argv = append(argv, path)

	cmd := exec.CommandContext(ctx, cpp, argv...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%s %s failed: %w: %s", cpp, strings.Join(argv, " "), err, strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}
