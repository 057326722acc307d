package version

import "testing"

func TestString(t *testing.T) {
	old := [3]string{Version, Commit, Date}
	t.Cleanup(func() { Version, Commit, Date = old[0], old[1], old[2] })

	Version, Commit, Date = "v1.2.3", "abc123", "2026-01-02"
	if got := String(); got != "v1.2.3 (abc123, 2026-01-02)" {
		t.Errorf("String() = %q", got)
	}
}
