package progress

import (
	"bytes"
	"testing"
)

func TestNewReporterInCI(t *testing.T) {
	t.Setenv("CI", "true")
	if _, ok := NewReporter("Importing", nil).(*CIReporter); !ok {
		t.Error("expected a CIReporter when CI is set")
	}
}

func TestNewReporterInTerminal(t *testing.T) {
	t.Setenv("CI", "")
	t.Setenv("GITHUB_ACTIONS", "")
	if _, ok := NewReporter("Importing", nil).(*TerminalReporter); !ok {
		t.Error("expected a TerminalReporter outside CI")
	}
}

func TestCIReporterOutput(t *testing.T) {
	var buf bytes.Buffer
	r := &CIReporter{Task: "Importing decks", Out: &buf}
	r.Start(2)
	r.Update(1, "a.md")
	r.Update(2, "b.md")
	r.Finish()

	want := "Importing decks: 2 files\n[1/2] a.md\n[2/2] b.md\nImporting decks: done\n"
	if got := buf.String(); got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestTerminalReporterWritesToOut(t *testing.T) {
	var buf bytes.Buffer
	r := &TerminalReporter{Task: "Importing decks", Out: &buf}
	r.Start(1)
	r.Update(1, "a.md")
	r.Finish()
	if buf.Len() == 0 {
		t.Error("terminal reporter wrote nothing")
	}
}
