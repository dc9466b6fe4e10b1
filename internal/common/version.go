package common

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
)

// Version variables injected at build time via ldflags
var (
	Version   = "dev"
	Build     = "unknown"
	GitCommit = "unknown"
)

// GetVersion returns the semantic version string
func GetVersion() string {
	return Version
}

// GetBuild returns the build timestamp
func GetBuild() string {
	return Build
}

// GetGitCommit returns the short git commit hash
func GetGitCommit() string {
	return GitCommit
}

// LoadVersionFromFile reads a .version file next to the binary as a fallback
// when ldflags were not set. Missing files are ignored.
func LoadVersionFromFile() {
	if Version != "dev" {
		return
	}

	exe, err := os.Executable()
	if err != nil {
		return
	}

	path := filepath.Join(filepath.Dir(exe), ".version")
	f, err := os.Open(path)
	if err != nil {
		return
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		switch strings.TrimSpace(key) {
		case "version":
			Version = strings.TrimSpace(value)
		case "build":
			Build = strings.TrimSpace(value)
		case "commit":
			GitCommit = strings.TrimSpace(value)
		}
	}
}
