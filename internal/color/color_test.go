package color

import "testing"

func TestDisabledColorIsPlain(t *testing.T) {
	c := New(false)
	if got := c.FormatPlanHeader(1, 2, 3); got != "Plan: 1 to add, 2 to modify, 3 to drop." {
		t.Errorf("FormatPlanHeader() = %q", got)
	}
	if got := c.PlanSymbol("delete"); got != "-" {
		t.Errorf("PlanSymbol() = %q", got)
	}
}

func TestNoColorEnv(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	t.Setenv("TERM", "xterm-256color")
	if got := New(true).Add("x"); got != "x" {
		t.Errorf("expected NO_COLOR to disable color, got %q", got)
	}
}

func TestEnabledColor(t *testing.T) {
	t.Setenv("NO_COLOR", "")
	t.Setenv("TERM", "xterm-256color")
	if got := New(true).Destroy("x"); got != Red+"x"+Reset {
		t.Errorf("Destroy() = %q", got)
	}
}
