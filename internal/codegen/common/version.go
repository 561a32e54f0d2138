package common

import (
	"fmt"
	"strings"
)

// Version is set via ldflags at build time: -ldflags "-X github.com/ssfrr/embody/internal/codegen/common.Version=x.y.z"
var Version = ""

// GetVersion returns the build version without a leading "v". Development
// builds without ldflags report "0.0.0-dev".
func GetVersion() (string, error) {
	if Version == "" {
		return "0.0.0-dev", nil
	}

	version := strings.TrimPrefix(Version, "v")
	baseVersion, _, _ := strings.Cut(version, "-")
	if strings.Count(baseVersion, ".") != 2 {
		return "", fmt.Errorf("invalid version format: %s (expected x.y.z)", Version)
	}
	return version, nil
}
