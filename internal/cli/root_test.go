package cli

import (
	"testing"

	"github.com/flexgantt/flexgantt/pkg/buildinfo"
)

func TestSetVersion(t *testing.T) {
	v, c, d := buildinfo.Version, buildinfo.Commit, buildinfo.Date
	t.Cleanup(func() { buildinfo.Version, buildinfo.Commit, buildinfo.Date = v, c, d })

	SetVersion("1.0.0", "abc123", "2024-01-01")
	if buildinfo.Version != "1.0.0" || buildinfo.Commit != "abc123" || buildinfo.Date != "2024-01-01" {
		t.Errorf("buildinfo = %s %s %s", buildinfo.Version, buildinfo.Commit, buildinfo.Date)
	}

	SetVersion("", "", "")
	if buildinfo.Version != "1.0.0" {
		t.Errorf("empty SetVersion() overwrote Version: %q", buildinfo.Version)
	}
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := New(&syncBuffer{}, LogInfo).RootCommand()
	for _, name := range []string{"rows", "position", "browse", "serve", "export", "import", "cache", "completion"} {
		if cmd, _, err := root.Find([]string{name}); err != nil || cmd.Name() != name {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}
