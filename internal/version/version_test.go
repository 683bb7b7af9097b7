package version

import (
	"strings"
	"testing"
)

func TestGet_Defaults(t *testing.T) {
	info := Get()
	if info.Version == "" {
		t.Error("Version should have a default value")
	}
}

func TestGet_TrimsAndOverrides(t *testing.T) {
	origVersion, origCommit, origDate := Version, GitCommit, BuildDate
	t.Cleanup(func() { Version, GitCommit, BuildDate = origVersion, origCommit, origDate })

	// имитация -ldflags
	Version = " 1.2.3 "
	GitCommit = "abc123def456\n"
	BuildDate = "2024-01-15T10:30:00Z"

	info := Get()
	if info.Version != "1.2.3" {
		t.Errorf("Version = %q, want %q", info.Version, "1.2.3")
	}
	if info.GitCommit != "abc123def456" {
		t.Errorf("GitCommit = %q", info.GitCommit)
	}
	if info.BuildDate != "2024-01-15T10:30:00Z" {
		t.Errorf("BuildDate = %q", info.BuildDate)
	}

	Version = "  "
	if got := Get().Version; got != "dev" {
		t.Errorf("blank Version = %q, want dev", got)
	}
}

func TestInfo_Colored(t *testing.T) {
	tests := []struct {
		version string
		plain   string
	}{
		{"0.1.0-dev", "0.1.0-dev"},
		{"1.2.3", "1.2.3"},
		{"1.0.0-beta.1", "1.0.0-beta.1"},
		{"nightly", "nightly"},
	}
	for _, tt := range tests {
		info := Info{Version: tt.version}
		if got := info.Colored(false); got != tt.plain {
			t.Errorf("Colored(false) for %q = %q", tt.version, got)
		}
	}
	colored := Info{Version: "1.2.3-rc.1"}.Colored(true)
	if !strings.Contains(colored, "\x1b[") || !strings.HasSuffix(colored, "-rc.1") {
		t.Errorf("Colored(true) = %q", colored)
	}
}
