package version

import "testing"

func restore() func() {
	v, c, b := Version, GitCommit, BuildTime
	return func() { Version, GitCommit, BuildTime = v, c, b }
}

func TestGet_LinkerValues(t *testing.T) {
	defer restore()()
	Version, GitCommit, BuildTime = "1.2.0", "abcdef0123", "2026-01-15T10:30:00Z"

	info := Get()
	if info.Version != "1.2.0" {
		t.Errorf("got version %q", info.Version)
	}
	if info.GitCommit != "abcdef0" {
		t.Errorf("got commit %q, want it shortened to 7 characters", info.GitCommit)
	}
	if info.BuildTime != "2026-01-15T10:30:00Z" {
		t.Errorf("got build time %q", info.BuildTime)
	}
}

func TestInfo_String(t *testing.T) {
	tests := []struct {
		info Info
		want string
	}{
		{Info{Version: "dev"}, "dev"},
		{Info{Version: "1.0.0", GitCommit: "abc1234"}, "1.0.0 (abc1234)"},
		{Info{Version: "1.0.0", GitCommit: "abc1234", Dirty: true}, "1.0.0 (abc1234)-dirty"},
	}
	for _, tc := range tests {
		if got := tc.info.String(); got != tc.want {
			t.Errorf("got %q, want %q", got, tc.want)
		}
	}
}
