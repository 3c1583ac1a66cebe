package buildinfo

import "testing"

func TestTemplate(t *testing.T) {
	Version, Commit, Date = "v0.3.0", "abc1234", "2026-10-01T00:00:00Z"
	t.Cleanup(func() { Version, Commit, Date = "dev", "none", "unknown" })

	want := "{{.Name}} v0.3.0 (commit abc1234, built 2026-10-01T00:00:00Z)\n"
	if got := Template(); got != want {
		t.Errorf("Template() = %q, want %q", got, want)
	}
	if got := Current(); got.Version != "v0.3.0" || got.Commit != "abc1234" {
		t.Errorf("Current() = %+v", got)
	}
}
