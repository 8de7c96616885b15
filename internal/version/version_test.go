package version

import (
	"runtime/debug"
	"strings"
	"testing"
)

func TestGet(t *testing.T) {
	info := Get()
	if info.Version == "" {
		t.Error("Get().Version should not be empty")
	}
	if info.Commit == "" {
		t.Error("Get().Commit should not be empty")
	}
	if !strings.HasPrefix(info.GoVersion, "go") {
		t.Errorf("Get().GoVersion = %q, want go prefix", info.GoVersion)
	}
	if !strings.Contains(Full(), info.Commit) {
		t.Errorf("Full() = %q, should contain commit %q", Full(), info.Commit)
	}
}

func TestResolve(t *testing.T) {
	oldVersion, oldCommit := Version, Commit
	t.Cleanup(func() { Version, Commit = oldVersion, oldCommit })

	tests := []struct {
		name        string
		info        debug.BuildInfo
		wantVersion string
		wantCommit  string
	}{
		{
			name:        "module version",
			info:        debug.BuildInfo{Main: debug.Module{Version: "v0.4.1"}},
			wantVersion: "v0.4.1",
		},
		{
			name: "dirty checkout",
			info: debug.BuildInfo{
				Main: debug.Module{Version: "(devel)"},
				Settings: []debug.BuildSetting{
					{Key: "vcs.revision", Value: "0123456789abcdef"},
					{Key: "vcs.modified", Value: "true"},
					{Key: "vcs.time", Value: "2024-03-05T10:00:00Z"},
				},
			},
			wantVersion: "dev-20240305",
			wantCommit:  "0123456-dirty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			Version, Commit = "", ""
			resolve(&tt.info)
			if Version != tt.wantVersion {
				t.Errorf("Version = %q, want %q", Version, tt.wantVersion)
			}
			if Commit != tt.wantCommit {
				t.Errorf("Commit = %q, want %q", Commit, tt.wantCommit)
			}
		})
	}
}
