package cmd

import (
	"testing"

	"github.com/spf13/cobra"
)

func newFlagCommand(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	c := &cobra.Command{Use: "test"}
	c.Flags().Bool("dry-run", false, "")
	c.Flags().Int("concurrency", 5, "")
	c.Flags().String("provider", "", "")
	c.Flags().Float64("scale", 1.0, "")
	if err := c.Flags().Parse(args); err != nil {
		t.Fatalf("parsing flags: %v", err)
	}
	return c
}

func TestMustGetFlags(t *testing.T) {
	c := newFlagCommand(t, "--dry-run", "--concurrency=3", "--provider=ollama", "--scale=1.4")

	if !mustGetBool(c, "dry-run") {
		t.Error("expected --dry-run to be set")
	}
	if got := mustGetInt(c, "concurrency"); got != 3 {
		t.Errorf("expected concurrency 3, got %d", got)
	}
	if got := mustGetString(c, "provider"); got != "ollama" {
		t.Errorf("expected provider ollama, got %q", got)
	}
	if got := mustGetFloat64(c, "scale"); got != 1.4 {
		t.Errorf("expected scale 1.4, got %v", got)
	}
}

func TestMustGetFlags_Defaults(t *testing.T) {
	c := newFlagCommand(t)

	if mustGetBool(c, "dry-run") {
		t.Error("expected --dry-run to default to false")
	}
	if got := mustGetInt(c, "concurrency"); got != 5 {
		t.Errorf("expected default concurrency 5, got %d", got)
	}
}

func TestMustGetFlags_PanicsOnWrongType(t *testing.T) {
	c := newFlagCommand(t)

	defer func() {
		if recover() == nil {
			t.Error("expected a panic for a flag read with the wrong type")
		}
	}()
	mustGetInt(c, "provider")
}
