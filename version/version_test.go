package version

import (
	"strings"
	"testing"
)

func TestShortStartsWithVersion(t *testing.T) {
	orig := Version
	Version = "1.2.3"
	defer func() { Version = orig }()

	if got := Short(); !strings.HasPrefix(got, "1.2.3") {
		t.Errorf("Short() = %q, want prefix 1.2.3", got)
	}
	if got := UserAgent(); got != "webrequest/1.2.3" {
		t.Errorf("UserAgent() = %q", got)
	}
}

func TestGetTruncatesCommit(t *testing.T) {
	orig := GitCommit
	GitCommit = "0123456789abcdef"
	defer func() { GitCommit = orig }()

	if got := Get().GitCommit; got != "0123456" {
		t.Errorf("GitCommit = %q", got)
	}
}
