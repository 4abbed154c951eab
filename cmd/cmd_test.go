package cmd

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := Execute(context.Background())
	return out.String(), err
}

func TestSeedValidate(t *testing.T) {
	out, err := run(t, "seed", "--memory", "--validate")
	if err != nil {
		t.Fatalf("seed --validate error = %v", err)
	}
	if !strings.Contains(out, "catalog ok: 5 tiers, 10 quests, 7 shop items") {
		t.Errorf("output = %q", out)
	}
}

func TestShopSearch(t *testing.T) {
	out, err := run(t, "shop", "search", "--memory", "booster")
	if err != nil {
		t.Fatalf("shop search error = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) < 3 {
		t.Fatalf("output = %q", out)
	}
	if !strings.HasPrefix(lines[0], "ID") {
		t.Errorf("header = %q", lines[0])
	}
	for _, line := range lines[1:] {
		if !strings.Contains(line, "Boosters") {
			t.Errorf("unexpected match %q", line)
		}
	}
}

func TestSweepMemory(t *testing.T) {
	out, err := run(t, "sweep", "--memory")
	if err != nil {
		t.Fatalf("sweep error = %v", err)
	}
	if !strings.Contains(out, "removed 0 expired items") {
		t.Errorf("output = %q", out)
	}
}

func TestMigrateRejectsMemory(t *testing.T) {
	if _, err := run(t, "migrate", "--memory"); err == nil {
		t.Fatal("expected migrate --memory to fail")
	}
}
